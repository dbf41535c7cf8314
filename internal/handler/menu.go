package handler

import (
	"context"
	"net/http"

	"github.com/ProyectoSpoon/SPOON-sub003/internal/apierror"
	"github.com/ProyectoSpoon/SPOON-sub003/internal/dto"
	"github.com/ProyectoSpoon/SPOON-sub003/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type MenuHandler struct{ svc service.CombinacionService }

func NewMenuHandler(svc service.CombinacionService) *MenuHandler { return &MenuHandler{svc: svc} }

// MenuDelDia godoc
// @Summary      Menú del día
// @Description  Retorna las combinaciones generadas (principio × proteína) con precio vigente y unidades disponibles. Respuesta cacheada en Redis hasta el próximo cambio de stock o ajuste.
// @Tags         menu
// @Produce      json
// @Success      200 {object} dto.MenuResponse
// @Router       /v1/menu [get]
func (h *MenuHandler) MenuDelDia(c *gin.Context) {
	resp, err := h.svc.MenuDelDia(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// FijarPrecioEspecial godoc
// @Summary      Fijar precio especial
// @Description  Asigna un precio promocional a una combinación. Debe ser menor estricto al precio base vigente.
// @Tags         menu
// @Accept       json
// @Produce      json
// @Param        id   path string                   true "UUID de la combinación"
// @Param        body body dto.PrecioEspecialRequest true "Precio especial en pesos"
// @Success      200  {object} dto.CombinacionResponse
// @Failure      404  {object} apierror.APIError
// @Failure      422  {object} apierror.APIError
// @Router       /v1/menu/{id}/precio-especial [put]
func (h *MenuHandler) FijarPrecioEspecial(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.PrecioEspecialRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.FijarPrecioEspecial(c.Request.Context(), id, dto.PesosACentavos(*req.Precio))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// QuitarPrecioEspecial godoc
// @Summary      Quitar precio especial
// @Description  Elimina el precio promocional; la combinación vuelve a su precio base.
// @Tags         menu
// @Produce      json
// @Param        id path string true "UUID de la combinación"
// @Success      200 {object} dto.CombinacionResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/menu/{id}/precio-especial [delete]
func (h *MenuHandler) QuitarPrecioEspecial(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.QuitarPrecioEspecial(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// MarcarFavorita godoc
// @Summary      Marcar/desmarcar favorita
// @Tags         menu
// @Accept       json
// @Produce      json
// @Param        id   path string            true "UUID de la combinación"
// @Param        body body dto.MarcarRequest true "Valor del flag"
// @Success      200  {object} dto.CombinacionResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/menu/{id}/favorita [patch]
func (h *MenuHandler) MarcarFavorita(c *gin.Context) {
	h.marcar(c, h.svc.MarcarFavorita)
}

// MarcarDestacada godoc
// @Summary      Marcar/desmarcar destacada
// @Tags         menu
// @Accept       json
// @Produce      json
// @Param        id   path string            true "UUID de la combinación"
// @Param        body body dto.MarcarRequest true "Valor del flag"
// @Success      200  {object} dto.CombinacionResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/menu/{id}/destacada [patch]
func (h *MenuHandler) MarcarDestacada(c *gin.Context) {
	h.marcar(c, h.svc.MarcarDestacada)
}

func (h *MenuHandler) marcar(c *gin.Context, fn func(ctx context.Context, id uuid.UUID, valor bool) (*dto.CombinacionResponse, error)) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.MarcarRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := fn(c.Request.Context(), id, *req.Valor)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
