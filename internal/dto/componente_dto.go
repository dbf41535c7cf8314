package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearComponenteRequest struct {
	Nombre    string `json:"nombre"    validate:"required,min=2,max=120"`
	Categoria string `json:"categoria" validate:"required,oneof=entrada principio proteina acompanamiento bebida utensilio"`
	// Precio in pesos; stored internally as integer centavos.
	Precio      decimal.Decimal `json:"precio"       validate:"min=0"`
	StockActual int             `json:"stock_actual" validate:"min=0"`
}

type AjustarStockRequest struct {
	// Delta: positive = restock, negative = correction.
	Delta  int    `json:"delta"  validate:"required"`
	Motivo string `json:"motivo" validate:"required,min=3"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ComponenteFilter struct {
	Categoria string `form:"categoria"`
	Activo    string `form:"activo"` // "false" = inactivos, "all" = todos, default activos
	Page      int    `form:"page,default=1"   validate:"min=1"`
	Limit     int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ComponenteResponse struct {
	ID          string          `json:"id"`
	Nombre      string          `json:"nombre"`
	Categoria   string          `json:"categoria"`
	Precio      decimal.Decimal `json:"precio"`
	StockActual int             `json:"stock_actual"`
	Activo      bool            `json:"activo"`
}

type ComponenteListResponse struct {
	Data  []ComponenteResponse `json:"data"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
}

// CentavosAPesos converts an integer minor-unit amount to a decimal peso
// value for API responses (e.g. 1250 → 12.50).
func CentavosAPesos(centavos int64) decimal.Decimal {
	return decimal.NewFromInt(centavos).Shift(-2)
}

// PesosACentavos converts an API decimal peso amount to integer centavos,
// rounding half-up to the nearest centavo.
func PesosACentavos(pesos decimal.Decimal) int64 {
	return pesos.Shift(2).Round(0).IntPart()
}
