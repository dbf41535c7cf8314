package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ProyectoSpoon/SPOON-sub003/internal/dto"
	"github.com/ProyectoSpoon/SPOON-sub003/internal/model"
	"github.com/ProyectoSpoon/SPOON-sub003/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// MenuCacheKey holds the cached daily menu. The cache is strictly derived
// data: every stock mutation and override change deletes it, and a miss just
// regenerates from the catalog.
const MenuCacheKey = "menu:dia"

// CombinacionService generates the daily menu, resolves availability and
// applies operator overrides (special price, favorite/featured flags).
type CombinacionService interface {
	MenuDelDia(ctx context.Context) (*dto.MenuResponse, error)
	FijarPrecioEspecial(ctx context.Context, id uuid.UUID, precioCentavos int64) (*dto.CombinacionResponse, error)
	QuitarPrecioEspecial(ctx context.Context, id uuid.UUID) (*dto.CombinacionResponse, error)
	MarcarFavorita(ctx context.Context, id uuid.UUID, valor bool) (*dto.CombinacionResponse, error)
	MarcarDestacada(ctx context.Context, id uuid.UUID, valor bool) (*dto.CombinacionResponse, error)
	// InvalidarMenuCache drops the cached menu; called after every stock or
	// override mutation.
	InvalidarMenuCache(ctx context.Context)
}

type combinacionService struct {
	componenteRepo repository.ComponenteRepository
	ajusteRepo     repository.AjusteCombinacionRepository
	rdb            *redis.Client // nil in unit tests — cache becomes a no-op
	cacheTTL       time.Duration
}

func NewCombinacionService(
	componenteRepo repository.ComponenteRepository,
	ajusteRepo repository.AjusteCombinacionRepository,
	rdb *redis.Client,
	cacheTTL time.Duration,
) CombinacionService {
	return &combinacionService{
		componenteRepo: componenteRepo,
		ajusteRepo:     ajusteRepo,
		rdb:            rdb,
		cacheTTL:       cacheTTL,
	}
}

// ── MenuDelDia ────────────────────────────────────────────────────────────────

func (s *combinacionService) MenuDelDia(ctx context.Context) (*dto.MenuResponse, error) {
	// 1. Try Redis cache
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, MenuCacheKey).Bytes(); err == nil {
			var resp dto.MenuResponse
			if jsonErr := json.Unmarshal(cached, &resp); jsonErr == nil {
				return &resp, nil
			}
		}
	}

	// 2. Cache miss — regenerate from a fresh catalog snapshot
	snap, combinaciones, err := s.generar(ctx)
	if err != nil {
		return nil, err
	}
	if len(combinaciones) == 0 {
		// A mandatory category is empty: valid "nothing sellable" state.
		log.Info().Msg("menú del día vacío: falta alguna categoría obligatoria")
	}

	resp := &dto.MenuResponse{
		Combinaciones: make([]dto.CombinacionResponse, 0, len(combinaciones)),
		GeneradoEn:    time.Now().UTC().Format(time.RFC3339),
	}
	for i := range combinaciones {
		resp.Combinaciones = append(resp.Combinaciones, combinacionAResponse(&combinaciones[i], snap))
	}

	// 3. Populate cache — best effort, ignore errors
	if s.rdb != nil {
		if b, jsonErr := json.Marshal(resp); jsonErr == nil {
			_ = s.rdb.Set(ctx, MenuCacheKey, b, s.cacheTTL).Err()
		}
	}
	return resp, nil
}

// generar reads one snapshot, generates the cross product and overlays the
// persisted overrides.
func (s *combinacionService) generar(ctx context.Context) (*model.Snapshot, []model.Combinacion, error) {
	componentes, err := s.componenteRepo.ListActivos(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("leyendo catálogo: %w", err)
	}
	snap := model.NewSnapshot(componentes)
	combinaciones := GenerarCombinaciones(snap)

	ajustes, err := s.ajusteRepo.ListAll(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("leyendo ajustes: %w", err)
	}
	aplicarAjustes(combinaciones, ajustes)
	return snap, combinaciones, nil
}

// buscar regenerates and locates one combination by id. Combinations are
// ephemeral: an id that no longer appears in the current snapshot is unknown.
func (s *combinacionService) buscar(ctx context.Context, id uuid.UUID) (*model.Snapshot, *model.Combinacion, error) {
	snap, combinaciones, err := s.generar(ctx)
	if err != nil {
		return nil, nil, err
	}
	for i := range combinaciones {
		if combinaciones[i].ID == id {
			return snap, &combinaciones[i], nil
		}
	}
	return nil, nil, fmt.Errorf("combinación %s: %w", id, ErrItemDesconocido)
}

// ── Overrides ─────────────────────────────────────────────────────────────────

func (s *combinacionService) FijarPrecioEspecial(ctx context.Context, id uuid.UUID, precioCentavos int64) (*dto.CombinacionResponse, error) {
	snap, combinacion, err := s.buscar(ctx, id)
	if err != nil {
		return nil, err
	}
	if precioCentavos < 0 || precioCentavos >= combinacion.PrecioBaseCentavos {
		return nil, fmt.Errorf("precio %d sobre base %d: %w",
			precioCentavos, combinacion.PrecioBaseCentavos, ErrDescuentoInvalido)
	}

	ajuste := s.ajusteActual(ctx, id)
	ajuste.PrecioEspecialCentavos = &precioCentavos
	if err := s.ajusteRepo.Save(ctx, ajuste); err != nil {
		return nil, fmt.Errorf("guardando precio especial: %w", err)
	}
	s.InvalidarMenuCache(ctx)

	combinacion.PrecioEspecialCentavos = &precioCentavos
	resp := combinacionAResponse(combinacion, snap)
	return &resp, nil
}

func (s *combinacionService) QuitarPrecioEspecial(ctx context.Context, id uuid.UUID) (*dto.CombinacionResponse, error) {
	snap, combinacion, err := s.buscar(ctx, id)
	if err != nil {
		return nil, err
	}

	ajuste := s.ajusteActual(ctx, id)
	ajuste.PrecioEspecialCentavos = nil
	if err := s.ajusteRepo.Save(ctx, ajuste); err != nil {
		return nil, fmt.Errorf("quitando precio especial: %w", err)
	}
	s.InvalidarMenuCache(ctx)

	combinacion.PrecioEspecialCentavos = nil
	resp := combinacionAResponse(combinacion, snap)
	return &resp, nil
}

func (s *combinacionService) MarcarFavorita(ctx context.Context, id uuid.UUID, valor bool) (*dto.CombinacionResponse, error) {
	return s.marcar(ctx, id, func(a *model.AjusteCombinacion, c *model.Combinacion) {
		a.Favorita = valor
		c.Favorita = valor
	})
}

func (s *combinacionService) MarcarDestacada(ctx context.Context, id uuid.UUID, valor bool) (*dto.CombinacionResponse, error) {
	return s.marcar(ctx, id, func(a *model.AjusteCombinacion, c *model.Combinacion) {
		a.Destacada = valor
		c.Destacada = valor
	})
}

// marcar updates a display-only flag. Flags never change price nor
// availability.
func (s *combinacionService) marcar(ctx context.Context, id uuid.UUID, set func(*model.AjusteCombinacion, *model.Combinacion)) (*dto.CombinacionResponse, error) {
	snap, combinacion, err := s.buscar(ctx, id)
	if err != nil {
		return nil, err
	}
	ajuste := s.ajusteActual(ctx, id)
	set(ajuste, combinacion)
	if err := s.ajusteRepo.Save(ctx, ajuste); err != nil {
		return nil, fmt.Errorf("guardando ajuste: %w", err)
	}
	s.InvalidarMenuCache(ctx)

	resp := combinacionAResponse(combinacion, snap)
	return &resp, nil
}

// ajusteActual loads the existing override row or starts a fresh one.
func (s *combinacionService) ajusteActual(ctx context.Context, id uuid.UUID) *model.AjusteCombinacion {
	if existente, err := s.ajusteRepo.FindByID(ctx, id); err == nil {
		return existente
	}
	return &model.AjusteCombinacion{ID: id}
}

func (s *combinacionService) InvalidarMenuCache(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, MenuCacheKey).Err(); err != nil {
		log.Warn().Err(err).Msg("no se pudo invalidar la caché del menú")
	}
}

// ── Mapping ───────────────────────────────────────────────────────────────────

func componenteARef(c *model.Componente) dto.ComponenteRef {
	return dto.ComponenteRef{ID: c.ID.String(), Nombre: c.Nombre}
}

func combinacionAResponse(c *model.Combinacion, snap *model.Snapshot) dto.CombinacionResponse {
	acompanamientos := make([]dto.ComponenteRef, 0, len(c.Acompanamientos))
	for _, a := range c.Acompanamientos {
		acompanamientos = append(acompanamientos, componenteARef(a))
	}
	resp := dto.CombinacionResponse{
		ID:              c.ID.String(),
		Nombre:          c.Nombre,
		Entrada:         componenteARef(c.Entrada),
		Principio:       componenteARef(c.Principio),
		Proteina:        componenteARef(c.Proteina),
		Bebida:          componenteARef(c.Bebida),
		Acompanamientos: acompanamientos,
		PrecioBase:      dto.CentavosAPesos(c.PrecioBaseCentavos),
		PrecioVigente:   dto.CentavosAPesos(c.PrecioVigenteCentavos()),
		Favorita:        c.Favorita,
		Destacada:       c.Destacada,
		Disponibles:     CalcularDisponibilidad(c, snap),
	}
	if c.PrecioEspecialCentavos != nil {
		precio := dto.CentavosAPesos(*c.PrecioEspecialCentavos)
		resp.PrecioEspecial = &precio
	}
	return resp
}
