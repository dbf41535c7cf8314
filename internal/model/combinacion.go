package model

import (
	"github.com/google/uuid"
)

// Combinacion is a derived, ephemeral sellable unit synthesized from the
// catalog: one component per mandatory role plus a generic accompaniment
// gate. It is never persisted — it must be regenerated from a fresh Snapshot
// whenever stock changes. Identity is deterministic over the
// (principio, proteina) pair so the same physical pairing always resolves to
// the same id across generation passes of an unchanged catalog.
type Combinacion struct {
	ID      uuid.UUID
	Nombre  string
	Entrada *Componente
	// Principio and Proteina are the varying axes of the cross product.
	Principio *Componente
	Proteina  *Componente
	Bebida    *Componente
	// Acompanamientos is the full set of current side components. They gate
	// availability (no side in stock means nothing sellable) but do not add
	// to the price nor define identity.
	Acompanamientos []*Componente

	PrecioBaseCentavos int64
	// PrecioEspecialCentavos, when set, is strictly less than the base price.
	PrecioEspecialCentavos *int64
	Favorita               bool
	Destacada              bool
}

// Requeridos returns the four mandatory components in role order
// (entrada, principio, proteina, bebida).
func (c *Combinacion) Requeridos() []*Componente {
	return []*Componente{c.Entrada, c.Principio, c.Proteina, c.Bebida}
}

// PrecioVigenteCentavos is the effective sale price: the special price when
// present, the base price otherwise.
func (c *Combinacion) PrecioVigenteCentavos() int64 {
	if c.PrecioEspecialCentavos != nil {
		return *c.PrecioEspecialCentavos
	}
	return c.PrecioBaseCentavos
}

// Snapshot is a consistent read of the active catalog at one instant. All
// generation and availability math runs against a single Snapshot value —
// there is no implicit global inventory state.
type Snapshot struct {
	componentes  map[uuid.UUID]*Componente
	porCategoria map[Categoria][]*Componente
}

// NewSnapshot indexes the given components preserving catalog order within
// each category (the order the repository returned them in).
func NewSnapshot(componentes []Componente) *Snapshot {
	s := &Snapshot{
		componentes:  make(map[uuid.UUID]*Componente, len(componentes)),
		porCategoria: make(map[Categoria][]*Componente),
	}
	for i := range componentes {
		c := &componentes[i]
		s.componentes[c.ID] = c
		s.porCategoria[c.Categoria] = append(s.porCategoria[c.Categoria], c)
	}
	return s
}

// Componente looks up a component by id.
func (s *Snapshot) Componente(id uuid.UUID) (*Componente, bool) {
	c, ok := s.componentes[id]
	return c, ok
}

// PorCategoria returns the components of one category in catalog order.
func (s *Snapshot) PorCategoria(cat Categoria) []*Componente {
	return s.porCategoria[cat]
}

// Stock returns the current available quantity of a component, 0 when the
// component is not part of the snapshot.
func (s *Snapshot) Stock(id uuid.UUID) int {
	if c, ok := s.componentes[id]; ok {
		return c.StockActual
	}
	return 0
}
