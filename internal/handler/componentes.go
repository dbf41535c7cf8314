package handler

import (
	"net/http"

	"github.com/ProyectoSpoon/SPOON-sub003/internal/apierror"
	"github.com/ProyectoSpoon/SPOON-sub003/internal/dto"
	"github.com/ProyectoSpoon/SPOON-sub003/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ComponentesHandler struct{ svc service.ComponenteService }

func NewComponentesHandler(svc service.ComponenteService) *ComponentesHandler {
	return &ComponentesHandler{svc: svc}
}

// Crear godoc
// @Summary      Crear componente
// @Description  Alta de un componente del catálogo (entrada, principio, proteína, acompañamiento, bebida o utensilio).
// @Tags         componentes
// @Accept       json
// @Produce      json
// @Param        body body dto.CrearComponenteRequest true "Datos del componente"
// @Success      201  {object} dto.ComponenteResponse
// @Failure      422  {object} apierror.APIError
// @Router       /v1/componentes [post]
func (h *ComponentesHandler) Crear(c *gin.Context) {
	var req dto.CrearComponenteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Obtener godoc
// @Summary      Obtener componente
// @Tags         componentes
// @Produce      json
// @Param        id path string true "UUID del componente"
// @Success      200 {object} dto.ComponenteResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/componentes/{id} [get]
func (h *ComponentesHandler) Obtener(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Listar godoc
// @Summary      Listar componentes
// @Description  Lista paginada filtrable por categoría y estado activo.
// @Tags         componentes
// @Produce      json
// @Param        categoria query string false "entrada | principio | proteina | acompanamiento | bebida | utensilio"
// @Param        activo    query string false "false = inactivos, all = todos (default: activos)"
// @Param        page      query int    false "Página (default 1)"
// @Param        limit     query int    false "Registros por página (default 50)"
// @Success      200 {object} dto.ComponenteListResponse
// @Router       /v1/componentes [get]
func (h *ComponentesHandler) Listar(c *gin.Context) {
	var filter dto.ComponenteFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Desactivar godoc
// @Summary      Desactivar componente
// @Description  Baja lógica: el componente deja de participar en la generación de combinaciones.
// @Tags         componentes
// @Param        id path string true "UUID del componente"
// @Success      204
// @Failure      404 {object} apierror.APIError
// @Router       /v1/componentes/{id} [delete]
func (h *ComponentesHandler) Desactivar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	if err := h.svc.Desactivar(c.Request.Context(), id); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Reactivar godoc
// @Summary      Reactivar componente
// @Tags         componentes
// @Param        id path string true "UUID del componente"
// @Success      204
// @Failure      404 {object} apierror.APIError
// @Router       /v1/componentes/{id}/reactivar [patch]
func (h *ComponentesHandler) Reactivar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	if err := h.svc.Reactivar(c.Request.Context(), id); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AjustarStock godoc
// @Summary      Ajustar stock
// @Description  Aplica un delta manual (reposición o corrección) y registra el movimiento. Rechaza ajustes que dejen el stock en negativo.
// @Tags         componentes
// @Accept       json
// @Produce      json
// @Param        id   path string                  true "UUID del componente"
// @Param        body body dto.AjustarStockRequest true "Delta y motivo"
// @Success      200  {object} dto.ComponenteResponse
// @Failure      404  {object} apierror.APIError
// @Failure      422  {object} apierror.APIError
// @Router       /v1/componentes/{id}/stock [patch]
func (h *ComponentesHandler) AjustarStock(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.AjustarStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AjustarStock(c.Request.Context(), id, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
