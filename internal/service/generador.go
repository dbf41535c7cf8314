package service

import (
	"github.com/ProyectoSpoon/SPOON-sub003/internal/model"

	"github.com/google/uuid"
)

// nsCombinacion is the fixed UUIDv5 namespace for combination identities.
// Changing it would orphan every persisted override, so it never changes.
var nsCombinacion = uuid.MustParse("7d5a3f1c-9b2e-4e8d-a6c4-0f82b31d9e57")

// CombinacionID derives the deterministic identity of a combination from the
// ordered (principio, proteina) pair. Repeated generation passes over an
// unchanged catalog always reproduce the same ids, which lets the POS settle
// against ids shown earlier without ever persisting combinations.
func CombinacionID(principioID, proteinaID uuid.UUID) uuid.UUID {
	return uuid.NewSHA1(nsCombinacion, []byte(principioID.String()+"|"+proteinaID.String()))
}

// GenerarCombinaciones enumerates the sellable combinations for the day from
// one catalog snapshot. Pure function of its input.
//
// Entrada and bebida do not multiply combinatorially: the first component of
// each (in catalog order) is fixed as the representative for every
// combination. Principio and proteina are the varying axes — the result is
// their full cross product. An empty mandatory category yields an empty set;
// that is a valid "nothing sellable" state, not an error.
func GenerarCombinaciones(snap *model.Snapshot) []model.Combinacion {
	entradas := snap.PorCategoria(model.CategoriaEntrada)
	principios := snap.PorCategoria(model.CategoriaPrincipio)
	proteinas := snap.PorCategoria(model.CategoriaProteina)
	bebidas := snap.PorCategoria(model.CategoriaBebida)

	if len(entradas) == 0 || len(principios) == 0 || len(proteinas) == 0 || len(bebidas) == 0 {
		return nil
	}

	entrada := entradas[0]
	bebida := bebidas[0]
	acompanamientos := snap.PorCategoria(model.CategoriaAcompanamiento)

	combinaciones := make([]model.Combinacion, 0, len(principios)*len(proteinas))
	for _, principio := range principios {
		for _, proteina := range proteinas {
			combinaciones = append(combinaciones, model.Combinacion{
				ID:              CombinacionID(principio.ID, proteina.ID),
				Nombre:          principio.Nombre + " con " + proteina.Nombre,
				Entrada:         entrada,
				Principio:       principio,
				Proteina:        proteina,
				Bebida:          bebida,
				Acompanamientos: acompanamientos,
				PrecioBaseCentavos: entrada.PrecioCentavos + principio.PrecioCentavos +
					proteina.PrecioCentavos + bebida.PrecioCentavos,
			})
		}
	}
	return combinaciones
}

// CalcularDisponibilidad computes how many units of a combination are
// sellable right now: the minimum stock across its four required components,
// forced to 0 when no accompaniment has stock (the dish is considered
// incomplete without a side). Recomputed on every read, never stored.
func CalcularDisponibilidad(c *model.Combinacion, snap *model.Snapshot) int {
	conAcompanamiento := false
	for _, a := range snap.PorCategoria(model.CategoriaAcompanamiento) {
		if a.StockActual > 0 {
			conAcompanamiento = true
			break
		}
	}
	if !conAcompanamiento {
		return 0
	}

	disponibles := -1
	for _, comp := range c.Requeridos() {
		stock := snap.Stock(comp.ID)
		if disponibles == -1 || stock < disponibles {
			disponibles = stock
		}
	}
	if disponibles < 0 {
		return 0
	}
	return disponibles
}

// aplicarAjustes overlays persisted operator overrides onto freshly generated
// combinations. A special price is honored only while it remains strictly
// below the recomputed base price; otherwise it is ignored (flags still
// apply). Overrides whose combination no longer exists are skipped.
func aplicarAjustes(combinaciones []model.Combinacion, ajustes []model.AjusteCombinacion) {
	if len(ajustes) == 0 {
		return
	}
	porID := make(map[uuid.UUID]*model.AjusteCombinacion, len(ajustes))
	for i := range ajustes {
		porID[ajustes[i].ID] = &ajustes[i]
	}
	for i := range combinaciones {
		a, ok := porID[combinaciones[i].ID]
		if !ok {
			continue
		}
		combinaciones[i].Favorita = a.Favorita
		combinaciones[i].Destacada = a.Destacada
		if a.PrecioEspecialCentavos != nil && *a.PrecioEspecialCentavos < combinaciones[i].PrecioBaseCentavos {
			precio := *a.PrecioEspecialCentavos
			combinaciones[i].PrecioEspecialCentavos = &precio
		}
	}
}
