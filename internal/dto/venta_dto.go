package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ItemVentaRequest struct {
	// ItemID is either a Componente id or a generated Combinacion id.
	ItemID   string `json:"item_id"  validate:"required,uuid"`
	Tipo     string `json:"tipo"     validate:"required,oneof=componente combinacion"`
	Cantidad int    `json:"cantidad" validate:"required,min=1"`
}

type RegistrarVentaRequest struct {
	Items []ItemVentaRequest `json:"items" validate:"required,min=1,dive"`
}

// ─── Filter / List ──────────────────────────────────────────────────────────

// VentaFilter is bound from query string of GET /v1/ventas.
type VentaFilter struct {
	Fecha  string `form:"fecha"`                     // YYYY-MM-DD; empty = today
	Estado string `form:"estado,default=completada"` // completada | reconciliada | all
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemVentaResponse struct {
	ItemID         string          `json:"item_id"`
	Tipo           string          `json:"tipo"`
	Nombre         string          `json:"nombre"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

// DescuentoStockResponse reports one physical component decrement applied by
// a settlement (combination lines expand to several of these).
type DescuentoStockResponse struct {
	ComponenteID string `json:"componente_id"`
	Nombre       string `json:"nombre"`
	Cantidad     int    `json:"cantidad"`
}

type VentaResponse struct {
	ID           string                   `json:"id"`
	NumeroTicket int                      `json:"numero_ticket"`
	Items        []ItemVentaResponse      `json:"items"`
	Descuentos   []DescuentoStockResponse `json:"descuentos_stock"`
	Total        decimal.Decimal          `json:"total"`
	Estado       string                   `json:"estado"`
	CreatedAt    string                   `json:"created_at"`
}

type VentaListResponse struct {
	Data  []VentaResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}
