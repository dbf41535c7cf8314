package handler

import (
	"net/http"

	"github.com/ProyectoSpoon/SPOON-sub003/internal/apierror"
	"github.com/ProyectoSpoon/SPOON-sub003/internal/repository"
	"github.com/ProyectoSpoon/SPOON-sub003/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type InventarioHandler struct{ svc service.ComponenteService }

func NewInventarioHandler(svc service.ComponenteService) *InventarioHandler {
	return &InventarioHandler{svc: svc}
}

// ListarMovimientos godoc
// @Summary      Listar movimientos de stock
// @Description  Bitácora inmutable de cambios de inventario (ventas y ajustes manuales).
// @Tags         inventario
// @Produce      json
// @Param        componente_id query string false "UUID del componente"
// @Param        tipo          query string false "venta | ajuste_manual"
// @Param        page          query int    false "Página (default 1)"
// @Param        limit         query int    false "Registros por página (default 100)"
// @Success      200 {object} dto.MovimientoStockListResponse
// @Router       /v1/inventario/movimientos [get]
func (h *InventarioHandler) ListarMovimientos(c *gin.Context) {
	filter := repository.MovimientoStockFilter{Tipo: c.Query("tipo")}

	if raw := c.Query("componente_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("componente_id invalido"))
			return
		}
		filter.ComponenteID = &id
	}
	if err := bindPagination(c, &filter.Page, &filter.Limit); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}

	resp, err := h.svc.ListarMovimientos(c.Request.Context(), filter)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func bindPagination(c *gin.Context, page, limit *int) error {
	var q struct {
		Page  int `form:"page,default=1"`
		Limit int `form:"limit,default=100"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		return err
	}
	*page = q.Page
	*limit = q.Limit
	return nil
}
