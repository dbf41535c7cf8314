package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type PrecioEspecialRequest struct {
	// Precio in pesos; must be strictly below the combination's base price.
	// Pointer so that a legitimate price of 0 (free promotion) is
	// distinguishable from an absent field.
	Precio *decimal.Decimal `json:"precio" validate:"required"`
}

type MarcarRequest struct {
	Valor *bool `json:"valor" validate:"required"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// ComponenteRef is the abbreviated component view embedded in a combination.
type ComponenteRef struct {
	ID     string `json:"id"`
	Nombre string `json:"nombre"`
}

type CombinacionResponse struct {
	ID              string           `json:"id"`
	Nombre          string           `json:"nombre"`
	Entrada         ComponenteRef    `json:"entrada"`
	Principio       ComponenteRef    `json:"principio"`
	Proteina        ComponenteRef    `json:"proteina"`
	Bebida          ComponenteRef    `json:"bebida"`
	Acompanamientos []ComponenteRef  `json:"acompanamientos"`
	PrecioBase      decimal.Decimal  `json:"precio_base"`
	PrecioEspecial  *decimal.Decimal `json:"precio_especial,omitempty"`
	PrecioVigente   decimal.Decimal  `json:"precio_vigente"`
	Favorita        bool             `json:"favorita"`
	Destacada       bool             `json:"destacada"`
	// Disponibles is derived from component stock on every read — it is never
	// stored.
	Disponibles int `json:"disponibles"`
}

type MenuResponse struct {
	Combinaciones []CombinacionResponse `json:"combinaciones"`
	GeneradoEn    string                `json:"generado_en"`
}
