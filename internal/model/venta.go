package model

import (
	"time"

	"github.com/google/uuid"
)

// Venta is the durable sale record produced by a successful settlement.
// Estado: "completada" | "reconciliada" — a sale that reached the DB through
// the reconciliation worker (after a first persistence failure) is marked
// "reconciliada" so operators can audit it.
type Venta struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	NumeroTicket  int       `gorm:"uniqueIndex;not null" json:"numero_ticket"`
	TotalCentavos int64     `gorm:"not null" json:"total_centavos"`
	Estado        string    `gorm:"type:varchar(20);not null;default:'completada'" json:"estado"`
	CreatedAt     time.Time `json:"created_at"`

	Items []VentaItem `gorm:"foreignKey:VentaID" json:"items"`
}

func (Venta) TableName() string { return "ventas" }

// VentaItem is one basket line as it was settled. ItemID references either a
// Componente or a generated Combinacion; Tipo disambiguates. Nombre and the
// unit price are captured at settlement time because combinations are
// ephemeral and catalog prices change.
type VentaItem struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	VentaID uuid.UUID `gorm:"type:uuid;not null;index" json:"venta_id"`
	ItemID  uuid.UUID `gorm:"type:uuid;not null" json:"item_id"`
	// Tipo: "componente" | "combinacion"
	Tipo                   string `gorm:"type:varchar(20);not null" json:"tipo"`
	Nombre                 string `gorm:"not null" json:"nombre"`
	Cantidad               int    `gorm:"not null" json:"cantidad"`
	PrecioUnitarioCentavos int64  `gorm:"not null" json:"precio_unitario_centavos"`
	SubtotalCentavos       int64  `gorm:"not null" json:"subtotal_centavos"`
}

func (VentaItem) TableName() string { return "venta_items" }
