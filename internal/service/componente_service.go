package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ProyectoSpoon/SPOON-sub003/internal/dto"
	"github.com/ProyectoSpoon/SPOON-sub003/internal/model"
	"github.com/ProyectoSpoon/SPOON-sub003/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrStockNegativo rejects a manual adjustment that would leave a component
// with less than zero stock.
var ErrStockNegativo = errors.New("el ajuste dejaría el stock en negativo")

// ComponenteService maneja el catálogo de componentes y los ajustes manuales
// de inventario.
type ComponenteService interface {
	Crear(ctx context.Context, req dto.CrearComponenteRequest) (*dto.ComponenteResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.ComponenteResponse, error)
	Listar(ctx context.Context, filter dto.ComponenteFilter) (*dto.ComponenteListResponse, error)
	Desactivar(ctx context.Context, id uuid.UUID) error
	Reactivar(ctx context.Context, id uuid.UUID) error
	// AjustarStock applies a signed delta and records an "ajuste_manual"
	// movement with the stated reason.
	AjustarStock(ctx context.Context, id uuid.UUID, req dto.AjustarStockRequest) (*dto.ComponenteResponse, error)
	ListarMovimientos(ctx context.Context, filter repository.MovimientoStockFilter) (*dto.MovimientoStockListResponse, error)
}

type componenteService struct {
	componenteRepo repository.ComponenteRepository
	movimientoRepo repository.MovimientoStockRepository
	combos         CombinacionService
}

func NewComponenteService(
	componenteRepo repository.ComponenteRepository,
	movimientoRepo repository.MovimientoStockRepository,
	combos CombinacionService,
) ComponenteService {
	return &componenteService{
		componenteRepo: componenteRepo,
		movimientoRepo: movimientoRepo,
		combos:         combos,
	}
}

func (s *componenteService) Crear(ctx context.Context, req dto.CrearComponenteRequest) (*dto.ComponenteResponse, error) {
	componente := &model.Componente{
		Nombre:         req.Nombre,
		Categoria:      model.Categoria(req.Categoria),
		PrecioCentavos: dto.PesosACentavos(req.Precio),
		StockActual:    req.StockActual,
		Activo:         true,
	}
	if err := s.componenteRepo.Create(ctx, componente); err != nil {
		return nil, fmt.Errorf("creando componente: %w", err)
	}
	// A new component can change the cross product immediately.
	s.combos.InvalidarMenuCache(ctx)
	resp := componenteAResponse(componente)
	return &resp, nil
}

func (s *componenteService) Obtener(ctx context.Context, id uuid.UUID) (*dto.ComponenteResponse, error) {
	componente, err := s.componenteRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("componente %s: %w", id, ErrItemDesconocido)
		}
		return nil, err
	}
	resp := componenteAResponse(componente)
	return &resp, nil
}

func (s *componenteService) Listar(ctx context.Context, filter dto.ComponenteFilter) (*dto.ComponenteListResponse, error) {
	componentes, total, err := s.componenteRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listando componentes: %w", err)
	}
	resp := &dto.ComponenteListResponse{
		Data:  make([]dto.ComponenteResponse, 0, len(componentes)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for i := range componentes {
		resp.Data = append(resp.Data, componenteAResponse(&componentes[i]))
	}
	return resp, nil
}

func (s *componenteService) Desactivar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Obtener(ctx, id); err != nil {
		return err
	}
	if err := s.componenteRepo.SoftDelete(ctx, id); err != nil {
		return fmt.Errorf("desactivando componente: %w", err)
	}
	s.combos.InvalidarMenuCache(ctx)
	return nil
}

func (s *componenteService) Reactivar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Obtener(ctx, id); err != nil {
		return err
	}
	if err := s.componenteRepo.Reactivar(ctx, id); err != nil {
		return fmt.Errorf("reactivando componente: %w", err)
	}
	s.combos.InvalidarMenuCache(ctx)
	return nil
}

func (s *componenteService) AjustarStock(ctx context.Context, id uuid.UUID, req dto.AjustarStockRequest) (*dto.ComponenteResponse, error) {
	componente, err := s.componenteRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("componente %s: %w", id, ErrItemDesconocido)
		}
		return nil, err
	}

	nuevo := componente.StockActual + req.Delta
	if nuevo < 0 {
		return nil, fmt.Errorf("stock %d, delta %d: %w", componente.StockActual, req.Delta, ErrStockNegativo)
	}

	err = runTx(ctx, s.componenteRepo.DB(), func(tx *gorm.DB) error {
		if txErr := s.componenteRepo.UpdateStockTx(tx, id, req.Delta); txErr != nil {
			return txErr
		}
		return s.movimientoRepo.CreateTx(tx, &model.MovimientoStock{
			ComponenteID:  id,
			Tipo:          "ajuste_manual",
			Cantidad:      req.Delta,
			StockAnterior: componente.StockActual,
			StockNuevo:    nuevo,
			Motivo:        req.Motivo,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("ajustando stock: %w", err)
	}
	s.combos.InvalidarMenuCache(ctx)

	componente.StockActual = nuevo
	resp := componenteAResponse(componente)
	return &resp, nil
}

func (s *componenteService) ListarMovimientos(ctx context.Context, filter repository.MovimientoStockFilter) (*dto.MovimientoStockListResponse, error) {
	movimientos, total, err := s.movimientoRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listando movimientos: %w", err)
	}
	resp := &dto.MovimientoStockListResponse{
		Data:  make([]dto.MovimientoStockResponse, 0, len(movimientos)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for i := range movimientos {
		resp.Data = append(resp.Data, movimientoAResponse(&movimientos[i]))
	}
	return resp, nil
}

func movimientoAResponse(m *model.MovimientoStock) dto.MovimientoStockResponse {
	resp := dto.MovimientoStockResponse{
		ID:            m.ID.String(),
		ComponenteID:  m.ComponenteID.String(),
		Tipo:          m.Tipo,
		Cantidad:      m.Cantidad,
		StockAnterior: m.StockAnterior,
		StockNuevo:    m.StockNuevo,
		Motivo:        m.Motivo,
		CreatedAt:     m.CreatedAt.UTC().Format(time.RFC3339),
	}
	if m.Componente != nil {
		resp.Componente = m.Componente.Nombre
	}
	if m.ReferenciaID != nil {
		ref := m.ReferenciaID.String()
		resp.ReferenciaID = &ref
	}
	return resp
}

func componenteAResponse(c *model.Componente) dto.ComponenteResponse {
	return dto.ComponenteResponse{
		ID:          c.ID.String(),
		Nombre:      c.Nombre,
		Categoria:   string(c.Categoria),
		Precio:      dto.CentavosAPesos(c.PrecioCentavos),
		StockActual: c.StockActual,
		Activo:      c.Activo,
	}
}
