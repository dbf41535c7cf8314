package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Domain error taxonomy. Validation failures never mutate stock; only
// ErrPersistencia leaves the system in a state needing reconciliation
// (stock already decremented, sale record not saved).
var (
	// ErrItemDesconocido: a basket or override references a component or
	// combination id absent from the current catalog snapshot.
	ErrItemDesconocido = errors.New("item no existe en el catálogo vigente")

	// ErrDescuentoInvalido: a special price must be strictly below the
	// combination's base price and non-negative.
	ErrDescuentoInvalido = errors.New("el precio especial debe ser menor al precio base")

	// ErrPersistencia: the stock decrement committed but the sale record
	// could not be saved. Distinguishable from every validation failure so
	// callers never retry the decrement.
	ErrPersistencia = errors.New("venta no persistida: stock ya descontado, requiere reconciliación")
)

// StockInsuficienteError rejects a whole settlement, naming the first
// component whose aggregated demand exceeds its current stock.
type StockInsuficienteError struct {
	ComponenteID uuid.UUID
	Nombre       string
	Solicitado   int
	Disponible   int
}

func (e *StockInsuficienteError) Error() string {
	return fmt.Sprintf("stock insuficiente de %s: solicitado %d, disponible %d",
		e.Nombre, e.Solicitado, e.Disponible)
}
