package model

import (
	"time"

	"github.com/google/uuid"
)

// Categoria classifies every catalog component into one of the fixed
// daily-menu roles. The enumeration is closed: the combination engine
// depends on these exact values.
type Categoria string

const (
	CategoriaEntrada        Categoria = "entrada"
	CategoriaPrincipio      Categoria = "principio"
	CategoriaProteina       Categoria = "proteina"
	CategoriaAcompanamiento Categoria = "acompanamiento"
	CategoriaBebida         Categoria = "bebida"
	CategoriaUtensilio      Categoria = "utensilio"
)

// CategoriasObligatorias are the roles every combination must fill with
// exactly one component.
var CategoriasObligatorias = []Categoria{
	CategoriaEntrada,
	CategoriaPrincipio,
	CategoriaProteina,
	CategoriaBebida,
}

// Valida reports whether c is a known category value.
func (c Categoria) Valida() bool {
	switch c {
	case CategoriaEntrada, CategoriaPrincipio, CategoriaProteina,
		CategoriaAcompanamiento, CategoriaBebida, CategoriaUtensilio:
		return true
	}
	return false
}

// Componente is an individually stocked catalog item. StockActual is mutated
// only through the sale settlement path and the manual adjustment endpoint —
// both record a MovimientoStock entry.
type Componente struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre string    `gorm:"index;not null"`
	// PrecioCentavos is the unit sale price in minor currency units.
	PrecioCentavos int64     `gorm:"not null"`
	Categoria      Categoria `gorm:"type:varchar(20);not null;index"`
	StockActual    int       `gorm:"not null;default:0"`
	Activo         bool      `gorm:"not null;default:true"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName overrides GORM's default pluralization for Spanish names.
func (Componente) TableName() string { return "componentes" }
