package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ProyectoSpoon/SPOON-sub003/internal/dto"
	"github.com/ProyectoSpoon/SPOON-sub003/internal/model"
	"github.com/ProyectoSpoon/SPOON-sub003/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

// stubComponenteRepo is an in-memory ComponenteRepository. ListActivos hands
// out copies (like a DB read) while UpdateStockTx mutates the stored rows, so
// consecutive snapshots observe decrements.
type stubComponenteRepo struct {
	mu    sync.Mutex
	orden []*model.Componente
}

func newStubComponenteRepo(componentes []model.Componente) *stubComponenteRepo {
	r := &stubComponenteRepo{}
	for i := range componentes {
		c := componentes[i]
		r.orden = append(r.orden, &c)
	}
	return r
}

func (r *stubComponenteRepo) Create(_ context.Context, c *model.Componente) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	copia := *c
	r.orden = append(r.orden, &copia)
	return nil
}

func (r *stubComponenteRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Componente, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.orden {
		if c.ID == id {
			copia := *c
			return &copia, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubComponenteRepo) List(_ context.Context, _ dto.ComponenteFilter) ([]model.Componente, int64, error) {
	activos, _ := r.ListActivos(context.Background())
	return activos, int64(len(activos)), nil
}

func (r *stubComponenteRepo) ListActivos(_ context.Context) ([]model.Componente, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Componente
	for _, c := range r.orden {
		if c.Activo {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *stubComponenteRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	return r.setActivo(id, false)
}

func (r *stubComponenteRepo) Reactivar(_ context.Context, id uuid.UUID) error {
	return r.setActivo(id, true)
}

func (r *stubComponenteRepo) setActivo(id uuid.UUID, activo bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.orden {
		if c.ID == id {
			c.Activo = activo
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubComponenteRepo) AjustarStock(_ context.Context, id uuid.UUID, delta int) error {
	return r.UpdateStockTx(nil, id, delta)
}

func (r *stubComponenteRepo) UpdateStockTx(_ *gorm.DB, id uuid.UUID, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.orden {
		if c.ID == id {
			c.StockActual += delta
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubComponenteRepo) DB() *gorm.DB { return nil }

func (r *stubComponenteRepo) stock(id uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.orden {
		if c.ID == id {
			return c.StockActual
		}
	}
	return -1
}

var _ repository.ComponenteRepository = (*stubComponenteRepo)(nil)

type stubVentaRepo struct {
	mu         sync.Mutex
	ventas     map[uuid.UUID]*model.Venta
	ticketSeq  int
	failCreate bool
}

func newStubVentaRepo() *stubVentaRepo {
	return &stubVentaRepo{ventas: make(map[uuid.UUID]*model.Venta)}
}

func (r *stubVentaRepo) Create(_ context.Context, v *model.Venta) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate {
		return errors.New("db caída")
	}
	r.ventas[v.ID] = v
	return nil
}

func (r *stubVentaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Venta, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.ventas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return v, nil
}

func (r *stubVentaRepo) List(_ context.Context, _ dto.VentaFilter) ([]model.Venta, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Venta
	for _, v := range r.ventas {
		out = append(out, *v)
	}
	return out, int64(len(out)), nil
}

func (r *stubVentaRepo) NextTicketNumber(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ticketSeq++
	return r.ticketSeq, nil
}

var _ repository.VentaRepository = (*stubVentaRepo)(nil)

type stubMovimientoRepo struct {
	mu          sync.Mutex
	movimientos []model.MovimientoStock
}

func (r *stubMovimientoRepo) Create(_ context.Context, m *model.MovimientoStock) error {
	return r.CreateTx(nil, m)
}

func (r *stubMovimientoRepo) CreateTx(_ *gorm.DB, m *model.MovimientoStock) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.movimientos = append(r.movimientos, *m)
	return nil
}

func (r *stubMovimientoRepo) List(_ context.Context, _ repository.MovimientoStockFilter) ([]model.MovimientoStock, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.MovimientoStock(nil), r.movimientos...), int64(len(r.movimientos)), nil
}

var _ repository.MovimientoStockRepository = (*stubMovimientoRepo)(nil)

type stubAjusteRepo struct {
	mu      sync.Mutex
	ajustes map[uuid.UUID]model.AjusteCombinacion
}

func newStubAjusteRepo() *stubAjusteRepo {
	return &stubAjusteRepo{ajustes: make(map[uuid.UUID]model.AjusteCombinacion)}
}

func (r *stubAjusteRepo) Save(_ context.Context, a *model.AjusteCombinacion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ajustes[a.ID] = *a
	return nil
}

func (r *stubAjusteRepo) FindByID(_ context.Context, id uuid.UUID) (*model.AjusteCombinacion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.ajustes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &a, nil
}

func (r *stubAjusteRepo) ListAll(_ context.Context) ([]model.AjusteCombinacion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.AjusteCombinacion
	for _, a := range r.ajustes {
		out = append(out, a)
	}
	return out, nil
}

var _ repository.AjusteCombinacionRepository = (*stubAjusteRepo)(nil)

type stubEncolador struct {
	mu              sync.Mutex
	reconciliadas   []*model.Venta
	ticketsEncolado []uuid.UUID
}

func (e *stubEncolador) EncolarReconciliacion(_ context.Context, v *model.Venta) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reconciliadas = append(e.reconciliadas, v)
	return nil
}

func (e *stubEncolador) EncolarTicket(_ context.Context, id uuid.UUID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ticketsEncolado = append(e.ticketsEncolado, id)
	return nil
}

var _ Encolador = (*stubEncolador)(nil)

// ── Fixture ───────────────────────────────────────────────────────────────────

type entornoVentas struct {
	svc            VentaService
	componenteRepo *stubComponenteRepo
	ventaRepo      *stubVentaRepo
	movimientoRepo *stubMovimientoRepo
	encolador      *stubEncolador
	snap           *model.Snapshot
	combinaciones  []model.Combinacion
}

func nuevoEntornoVentas(t *testing.T, catalogo []model.Componente) *entornoVentas {
	t.Helper()
	componenteRepo := newStubComponenteRepo(catalogo)
	ventaRepo := newStubVentaRepo()
	movimientoRepo := &stubMovimientoRepo{}
	ajusteRepo := newStubAjusteRepo()
	encolador := &stubEncolador{}

	combos := NewCombinacionService(componenteRepo, ajusteRepo, nil, 0)
	svc := NewVentaService(componenteRepo, ventaRepo, movimientoRepo, ajusteRepo, combos, encolador)

	activos, err := componenteRepo.ListActivos(context.Background())
	require.NoError(t, err)
	snap := model.NewSnapshot(activos)

	return &entornoVentas{
		svc:            svc,
		componenteRepo: componenteRepo,
		ventaRepo:      ventaRepo,
		movimientoRepo: movimientoRepo,
		encolador:      encolador,
		snap:           snap,
		combinaciones:  GenerarCombinaciones(snap),
	}
}

func lineaCombinacion(id uuid.UUID, cantidad int) dto.ItemVentaRequest {
	return dto.ItemVentaRequest{ItemID: id.String(), Tipo: "combinacion", Cantidad: cantidad}
}

func lineaComponente(id uuid.UUID, cantidad int) dto.ItemVentaRequest {
	return dto.ItemVentaRequest{ItemID: id.String(), Tipo: "componente", Cantidad: cantidad}
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestRegistrarVentaDescuentaLosCuatroRequeridos(t *testing.T) {
	env := nuevoEntornoVentas(t, catalogoBase())
	combinacion := env.combinaciones[0]

	resp, err := env.svc.RegistrarVenta(context.Background(),
		dto.RegistrarVentaRequest{Items: []dto.ItemVentaRequest{lineaCombinacion(combinacion.ID, 2)}})
	require.NoError(t, err)

	assert.Equal(t, 1, resp.NumeroTicket)
	assert.Equal(t, "completada", resp.Estado)
	assert.Len(t, resp.Descuentos, 4)

	for _, comp := range combinacion.Requeridos() {
		assert.Equal(t, comp.StockActual-2, env.componenteRepo.stock(comp.ID), comp.Nombre)
	}
	// Los acompañamientos habilitan la venta pero no se descuentan.
	for _, a := range combinacion.Acompanamientos {
		assert.Equal(t, a.StockActual, env.componenteRepo.stock(a.ID), a.Nombre)
	}

	// Un movimiento por componente descontado, referenciando la venta.
	movimientos, _, err := env.movimientoRepo.List(context.Background(), repository.MovimientoStockFilter{})
	require.NoError(t, err)
	require.Len(t, movimientos, 4)
	for _, m := range movimientos {
		assert.Equal(t, "venta", m.Tipo)
		assert.Equal(t, -2, m.Cantidad)
		assert.Equal(t, m.StockAnterior-2, m.StockNuevo)
		require.NotNil(t, m.ReferenciaID)
		assert.Equal(t, resp.ID, m.ReferenciaID.String())
	}

	assert.Len(t, env.encolador.ticketsEncolado, 1)
	assert.Empty(t, env.encolador.reconciliadas)
}

func TestRegistrarVentaPrecioVigenteConDescuento(t *testing.T) {
	env := nuevoEntornoVentas(t, catalogoBase())
	combinacion := env.combinaciones[0]

	ajusteRepo := newStubAjusteRepo()
	especial := combinacion.PrecioBaseCentavos - 500
	require.NoError(t, ajusteRepo.Save(context.Background(), &model.AjusteCombinacion{
		ID:                     combinacion.ID,
		PrecioEspecialCentavos: &especial,
	}))

	svc := NewVentaService(env.componenteRepo, env.ventaRepo, env.movimientoRepo, ajusteRepo,
		NewCombinacionService(env.componenteRepo, ajusteRepo, nil, 0), env.encolador)

	resp, err := svc.RegistrarVenta(context.Background(),
		dto.RegistrarVentaRequest{Items: []dto.ItemVentaRequest{lineaCombinacion(combinacion.ID, 1)}})
	require.NoError(t, err)
	assert.Equal(t, dto.CentavosAPesos(especial).String(), resp.Total.String())
}

func TestRegistrarVentaDemandaAgregadaInsuficiente(t *testing.T) {
	// C1 y C2 comparten proteina "Carne" con stock 10: 6+5 agregados deben
	// rechazarse completos aunque cada línea por separado alcance.
	catalogo := catalogoBase()
	env := nuevoEntornoVentas(t, catalogo)

	var c1, c2 *model.Combinacion
	for i := range env.combinaciones {
		if env.combinaciones[i].Proteina.Nombre == "Carne" {
			if c1 == nil {
				c1 = &env.combinaciones[i]
			} else {
				c2 = &env.combinaciones[i]
			}
		}
	}
	require.NotNil(t, c1)
	require.NotNil(t, c2)

	antes := env.componenteRepo.stock(c1.Proteina.ID)
	_, err := env.svc.RegistrarVenta(context.Background(), dto.RegistrarVentaRequest{
		Items: []dto.ItemVentaRequest{lineaCombinacion(c1.ID, 6), lineaCombinacion(c2.ID, 5)},
	})

	var stockErr *StockInsuficienteError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, c1.Proteina.ID, stockErr.ComponenteID)
	assert.Equal(t, 11, stockErr.Solicitado)
	assert.Equal(t, 10, stockErr.Disponible)

	// Todo-o-nada: ningún componente cambió.
	assert.Equal(t, antes, env.componenteRepo.stock(c1.Proteina.ID))
	movimientos, _, _ := env.movimientoRepo.List(context.Background(), repository.MovimientoStockFilter{})
	assert.Empty(t, movimientos)
}

func TestRegistrarVentaItemDesconocido(t *testing.T) {
	env := nuevoEntornoVentas(t, catalogoBase())

	_, err := env.svc.RegistrarVenta(context.Background(), dto.RegistrarVentaRequest{
		Items: []dto.ItemVentaRequest{lineaCombinacion(uuid.New(), 1)},
	})
	assert.ErrorIs(t, err, ErrItemDesconocido)

	_, err = env.svc.RegistrarVenta(context.Background(), dto.RegistrarVentaRequest{
		Items: []dto.ItemVentaRequest{lineaComponente(uuid.New(), 1)},
	})
	assert.ErrorIs(t, err, ErrItemDesconocido)
}

func TestRegistrarVentaComponenteSuelto(t *testing.T) {
	env := nuevoEntornoVentas(t, catalogoBase())
	bebida := env.snap.PorCategoria(model.CategoriaBebida)[0]

	resp, err := env.svc.RegistrarVenta(context.Background(),
		dto.RegistrarVentaRequest{Items: []dto.ItemVentaRequest{lineaComponente(bebida.ID, 3)}})
	require.NoError(t, err)

	assert.Equal(t, bebida.StockActual-3, env.componenteRepo.stock(bebida.ID))
	assert.Equal(t, dto.CentavosAPesos(bebida.PrecioCentavos*3).String(), resp.Total.String())
}

func TestRegistrarVentaSinAcompanamientoConStock(t *testing.T) {
	catalogo := catalogoBase()
	for i := range catalogo {
		if catalogo[i].Categoria == model.CategoriaAcompanamiento {
			catalogo[i].StockActual = 0
		}
	}
	env := nuevoEntornoVentas(t, catalogo)

	_, err := env.svc.RegistrarVenta(context.Background(),
		dto.RegistrarVentaRequest{Items: []dto.ItemVentaRequest{lineaCombinacion(env.combinaciones[0].ID, 1)}})

	var stockErr *StockInsuficienteError
	require.ErrorAs(t, err, &stockErr)
	assert.Zero(t, stockErr.Disponible)
}

func TestRegistrarVentaFalloDePersistencia(t *testing.T) {
	env := nuevoEntornoVentas(t, catalogoBase())
	env.ventaRepo.failCreate = true
	combinacion := env.combinaciones[0]

	_, err := env.svc.RegistrarVenta(context.Background(),
		dto.RegistrarVentaRequest{Items: []dto.ItemVentaRequest{lineaCombinacion(combinacion.ID, 1)}})
	require.ErrorIs(t, err, ErrPersistencia)

	// El stock SÍ quedó descontado y la venta completa viajó a reconciliación.
	for _, comp := range combinacion.Requeridos() {
		assert.Equal(t, comp.StockActual-1, env.componenteRepo.stock(comp.ID))
	}
	require.Len(t, env.encolador.reconciliadas, 1)
	assert.Len(t, env.encolador.reconciliadas[0].Items, 1)
	assert.Empty(t, env.encolador.ticketsEncolado)
}

func TestRegistrarVentaConcurrenteUltimaUnidad(t *testing.T) {
	// Stock de "Carne" reducido a 1: de dos ventas simultáneas exactamente una
	// debe ganar la última unidad.
	catalogo := catalogoBase()
	for i := range catalogo {
		if catalogo[i].Nombre == "Carne" {
			catalogo[i].StockActual = 1
		}
	}
	env := nuevoEntornoVentas(t, catalogo)

	var objetivo *model.Combinacion
	for i := range env.combinaciones {
		if env.combinaciones[i].Proteina.Nombre == "Carne" {
			objetivo = &env.combinaciones[i]
			break
		}
	}
	require.NotNil(t, objetivo)

	var wg sync.WaitGroup
	errores := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errores[i] = env.svc.RegistrarVenta(context.Background(),
				dto.RegistrarVentaRequest{Items: []dto.ItemVentaRequest{lineaCombinacion(objetivo.ID, 1)}})
		}(i)
	}
	wg.Wait()

	exitos := 0
	for _, err := range errores {
		if err == nil {
			exitos++
		} else {
			var stockErr *StockInsuficienteError
			assert.ErrorAs(t, err, &stockErr)
		}
	}
	assert.Equal(t, 1, exitos)
	assert.Zero(t, env.componenteRepo.stock(objetivo.Proteina.ID))
}
