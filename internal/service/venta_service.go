package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ProyectoSpoon/SPOON-sub003/internal/dto"
	"github.com/ProyectoSpoon/SPOON-sub003/internal/model"
	"github.com/ProyectoSpoon/SPOON-sub003/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Encolador publica trabajos asincrónicos derivados de una venta. Implemented
// by worker.Dispatcher; nil-safe callers allow unit tests without Redis.
type Encolador interface {
	EncolarReconciliacion(ctx context.Context, venta *model.Venta) error
	EncolarTicket(ctx context.Context, ventaID uuid.UUID) error
}

// VentaService settles baskets against shared component inventory.
type VentaService interface {
	// RegistrarVenta validates and settles one basket atomically: either every
	// component decrement applies or none does. A *StockInsuficienteError or
	// ErrItemDesconocido means stock was not touched; ErrPersistencia means
	// stock was decremented but the sale record is pending reconciliation.
	RegistrarVenta(ctx context.Context, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error)
	ListVentas(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error)
}

type ventaService struct {
	componenteRepo repository.ComponenteRepository
	ventaRepo      repository.VentaRepository
	movimientoRepo repository.MovimientoStockRepository
	ajusteRepo     repository.AjusteCombinacionRepository
	combos         CombinacionService
	encolador      Encolador

	// mu serializes the read-validate-decrement critical section. Persistence
	// of the sale record happens outside the lock.
	mu sync.Mutex
}

func NewVentaService(
	componenteRepo repository.ComponenteRepository,
	ventaRepo repository.VentaRepository,
	movimientoRepo repository.MovimientoStockRepository,
	ajusteRepo repository.AjusteCombinacionRepository,
	combos CombinacionService,
	encolador Encolador,
) VentaService {
	return &ventaService{
		componenteRepo: componenteRepo,
		ventaRepo:      ventaRepo,
		movimientoRepo: movimientoRepo,
		ajusteRepo:     ajusteRepo,
		combos:         combos,
		encolador:      encolador,
	}
}

// runTx wraps fn in a gorm transaction. With a nil db (in-memory unit tests)
// fn runs directly and stubs receive a nil tx.
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// liquidacion is the outcome of the critical section: the sale (still without
// ticket number) plus the per-component decrements applied.
type liquidacion struct {
	venta      *model.Venta
	descuentos []dto.DescuentoStockResponse
}

func (s *ventaService) RegistrarVenta(ctx context.Context, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error) {
	// The sale id is fixed before any side effect so a reconciliation retry
	// can never duplicate the record.
	ventaID := uuid.New()

	s.mu.Lock()
	resultado, err := s.liquidar(ctx, ventaID, req)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	// Stock already changed; the cached menu is stale no matter what happens
	// to the sale record below.
	s.combos.InvalidarMenuCache(ctx)

	venta := resultado.venta
	numero, err := s.ventaRepo.NextTicketNumber(ctx)
	if err == nil {
		venta.NumeroTicket = numero
		err = s.ventaRepo.Create(ctx, venta)
	}
	if err != nil {
		log.Error().Err(err).Str("venta_id", venta.ID.String()).
			Msg("venta no persistida, encolando reconciliación")
		if s.encolador != nil {
			if encErr := s.encolador.EncolarReconciliacion(ctx, venta); encErr != nil {
				log.Error().Err(encErr).Str("venta_id", venta.ID.String()).
					Msg("no se pudo encolar la reconciliación")
			}
		}
		return nil, fmt.Errorf("venta %s: %w", venta.ID, ErrPersistencia)
	}

	if s.encolador != nil {
		if encErr := s.encolador.EncolarTicket(ctx, venta.ID); encErr != nil {
			log.Warn().Err(encErr).Str("venta_id", venta.ID.String()).
				Msg("no se pudo encolar la generación del ticket")
		}
	}

	resp := ventaAResponse(venta)
	resp.Descuentos = resultado.descuentos
	return resp, nil
}

// liquidar runs under s.mu: one snapshot, line resolution, aggregated demand
// validation and the transactional decrement. Any error before the transaction
// leaves stock untouched.
func (s *ventaService) liquidar(ctx context.Context, ventaID uuid.UUID, req dto.RegistrarVentaRequest) (*liquidacion, error) {
	componentes, err := s.componenteRepo.ListActivos(ctx)
	if err != nil {
		return nil, fmt.Errorf("leyendo catálogo: %w", err)
	}
	snap := model.NewSnapshot(componentes)
	combinaciones := GenerarCombinaciones(snap)

	ajustes, err := s.ajusteRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("leyendo ajustes: %w", err)
	}
	aplicarAjustes(combinaciones, ajustes)

	porCombinacion := make(map[uuid.UUID]*model.Combinacion, len(combinaciones))
	for i := range combinaciones {
		porCombinacion[combinaciones[i].ID] = &combinaciones[i]
	}

	// demanda aggregates units per physical component across every line;
	// orden keeps first-occurrence order so the first failing component is
	// deterministic for a given basket.
	demanda := make(map[uuid.UUID]int)
	var orden []uuid.UUID
	exigir := func(c *model.Componente, cantidad int) {
		if _, visto := demanda[c.ID]; !visto {
			orden = append(orden, c.ID)
		}
		demanda[c.ID] += cantidad
	}

	venta := &model.Venta{ID: ventaID, Estado: "completada", CreatedAt: time.Now().UTC()}

	for _, linea := range req.Items {
		itemID, parseErr := uuid.Parse(linea.ItemID)
		if parseErr != nil {
			return nil, fmt.Errorf("item %q: %w", linea.ItemID, ErrItemDesconocido)
		}

		switch linea.Tipo {
		case "componente":
			comp, ok := snap.Componente(itemID)
			if !ok {
				return nil, fmt.Errorf("componente %s: %w", itemID, ErrItemDesconocido)
			}
			exigir(comp, linea.Cantidad)
			venta.Items = append(venta.Items, model.VentaItem{
				ID:                     uuid.New(),
				VentaID:                ventaID,
				ItemID:                 comp.ID,
				Tipo:                   linea.Tipo,
				Nombre:                 comp.Nombre,
				Cantidad:               linea.Cantidad,
				PrecioUnitarioCentavos: comp.PrecioCentavos,
				SubtotalCentavos:       comp.PrecioCentavos * int64(linea.Cantidad),
			})

		case "combinacion":
			combinacion, ok := porCombinacion[itemID]
			if !ok {
				// Ids outlive their snapshot: a combination shown earlier may
				// no longer exist after a catalog change.
				return nil, fmt.Errorf("combinación %s: %w", itemID, ErrItemDesconocido)
			}
			if CalcularDisponibilidad(combinacion, snap) == 0 {
				return nil, &StockInsuficienteError{
					Nombre:     combinacion.Nombre,
					Solicitado: linea.Cantidad,
					Disponible: 0,
				}
			}
			for _, comp := range combinacion.Requeridos() {
				exigir(comp, linea.Cantidad)
			}
			precio := combinacion.PrecioVigenteCentavos()
			venta.Items = append(venta.Items, model.VentaItem{
				ID:                     uuid.New(),
				VentaID:                ventaID,
				ItemID:                 combinacion.ID,
				Tipo:                   linea.Tipo,
				Nombre:                 combinacion.Nombre,
				Cantidad:               linea.Cantidad,
				PrecioUnitarioCentavos: precio,
				SubtotalCentavos:       precio * int64(linea.Cantidad),
			})

		default:
			return nil, fmt.Errorf("tipo %q: %w", linea.Tipo, ErrItemDesconocido)
		}
	}

	// All-or-nothing: reject the whole basket on the first component whose
	// aggregated demand exceeds its stock, before touching anything.
	for _, id := range orden {
		comp, _ := snap.Componente(id)
		if demanda[id] > comp.StockActual {
			return nil, &StockInsuficienteError{
				ComponenteID: id,
				Nombre:       comp.Nombre,
				Solicitado:   demanda[id],
				Disponible:   comp.StockActual,
			}
		}
	}

	descuentos := make([]dto.DescuentoStockResponse, 0, len(orden))
	err = runTx(ctx, s.componenteRepo.DB(), func(tx *gorm.DB) error {
		for _, id := range orden {
			comp, _ := snap.Componente(id)
			cantidad := demanda[id]
			if txErr := s.componenteRepo.UpdateStockTx(tx, id, -cantidad); txErr != nil {
				return txErr
			}
			movimiento := &model.MovimientoStock{
				ComponenteID:  id,
				Tipo:          "venta",
				Cantidad:      -cantidad,
				StockAnterior: comp.StockActual,
				StockNuevo:    comp.StockActual - cantidad,
				Motivo:        "venta",
				ReferenciaID:  &ventaID,
			}
			if txErr := s.movimientoRepo.CreateTx(tx, movimiento); txErr != nil {
				return txErr
			}
			descuentos = append(descuentos, dto.DescuentoStockResponse{
				ComponenteID: id.String(),
				Nombre:       comp.Nombre,
				Cantidad:     cantidad,
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("descontando stock: %w", err)
	}

	for _, item := range venta.Items {
		venta.TotalCentavos += item.SubtotalCentavos
	}
	return &liquidacion{venta: venta, descuentos: descuentos}, nil
}

func (s *ventaService) ListVentas(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error) {
	ventas, total, err := s.ventaRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listando ventas: %w", err)
	}
	resp := &dto.VentaListResponse{
		Data:  make([]dto.VentaResponse, 0, len(ventas)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for i := range ventas {
		resp.Data = append(resp.Data, *ventaAResponse(&ventas[i]))
	}
	return resp, nil
}

func ventaAResponse(v *model.Venta) *dto.VentaResponse {
	items := make([]dto.ItemVentaResponse, 0, len(v.Items))
	for _, item := range v.Items {
		items = append(items, dto.ItemVentaResponse{
			ItemID:         item.ItemID.String(),
			Tipo:           item.Tipo,
			Nombre:         item.Nombre,
			Cantidad:       item.Cantidad,
			PrecioUnitario: dto.CentavosAPesos(item.PrecioUnitarioCentavos),
			Subtotal:       dto.CentavosAPesos(item.SubtotalCentavos),
		})
	}
	return &dto.VentaResponse{
		ID:           v.ID.String(),
		NumeroTicket: v.NumeroTicket,
		Items:        items,
		Descuentos:   []dto.DescuentoStockResponse{},
		Total:        dto.CentavosAPesos(v.TotalCentavos),
		Estado:       v.Estado,
		CreatedAt:    v.CreatedAt.UTC().Format(time.RFC3339),
	}
}
