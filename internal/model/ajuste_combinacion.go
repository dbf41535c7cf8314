package model

import (
	"time"

	"github.com/google/uuid"
)

// AjusteCombinacion stores the manual overrides an operator applies to a
// generated combination: special price and display flags. It is keyed by the
// combination's deterministic id, so overrides survive regeneration without
// the combination itself ever being persisted. A row whose combination no
// longer exists in the current catalog is simply ignored by the resolver.
type AjusteCombinacion struct {
	// ID equals the deterministic Combinacion id.
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`
	// PrecioEspecialCentavos must be strictly below the combination's base
	// price at the time it is set; nil means no special price.
	PrecioEspecialCentavos *int64
	Favorita               bool `gorm:"not null;default:false"`
	Destacada              bool `gorm:"not null;default:false"`
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

func (AjusteCombinacion) TableName() string { return "ajustes_combinacion" }
