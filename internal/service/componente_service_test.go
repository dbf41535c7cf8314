package service

import (
	"context"
	"testing"

	"github.com/ProyectoSpoon/SPOON-sub003/internal/dto"
	"github.com/ProyectoSpoon/SPOON-sub003/internal/model"
	"github.com/ProyectoSpoon/SPOON-sub003/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nuevoComponenteSvc(catalogo []model.Componente) (ComponenteService, *stubComponenteRepo, *stubMovimientoRepo) {
	componenteRepo := newStubComponenteRepo(catalogo)
	movimientoRepo := &stubMovimientoRepo{}
	combos := NewCombinacionService(componenteRepo, newStubAjusteRepo(), nil, 0)
	return NewComponenteService(componenteRepo, movimientoRepo, combos), componenteRepo, movimientoRepo
}

func TestCrearComponenteConvierteAPesosCentavos(t *testing.T) {
	svc, repo, _ := nuevoComponenteSvc(nil)

	resp, err := svc.Crear(context.Background(), dto.CrearComponenteRequest{
		Nombre:      "Jugo de lulo",
		Categoria:   "bebida",
		Precio:      decimal.RequireFromString("35.50"),
		StockActual: 12,
	})
	require.NoError(t, err)
	assert.Equal(t, "35.5", resp.Precio.String())
	assert.Equal(t, 12, resp.StockActual)
	assert.True(t, resp.Activo)

	id := uuid.MustParse(resp.ID)
	guardado, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, int64(3550), guardado.PrecioCentavos)
}

func TestAjustarStockRegistraMovimientoManual(t *testing.T) {
	catalogo := catalogoBase()
	svc, repo, movimientos := nuevoComponenteSvc(catalogo)
	objetivo := catalogo[0]

	resp, err := svc.AjustarStock(context.Background(), objetivo.ID, dto.AjustarStockRequest{
		Delta:  -5,
		Motivo: "merma de cocina",
	})
	require.NoError(t, err)
	assert.Equal(t, objetivo.StockActual-5, resp.StockActual)
	assert.Equal(t, objetivo.StockActual-5, repo.stock(objetivo.ID))

	registrados, _, err := movimientos.List(context.Background(), repository.MovimientoStockFilter{})
	require.NoError(t, err)
	require.Len(t, registrados, 1)
	assert.Equal(t, "ajuste_manual", registrados[0].Tipo)
	assert.Equal(t, -5, registrados[0].Cantidad)
	assert.Equal(t, "merma de cocina", registrados[0].Motivo)
	assert.Nil(t, registrados[0].ReferenciaID)
}

func TestAjustarStockRechazaNegativo(t *testing.T) {
	catalogo := catalogoBase()
	svc, repo, movimientos := nuevoComponenteSvc(catalogo)
	objetivo := catalogo[0]

	_, err := svc.AjustarStock(context.Background(), objetivo.ID, dto.AjustarStockRequest{
		Delta:  -(objetivo.StockActual + 1),
		Motivo: "corrección imposible",
	})
	require.ErrorIs(t, err, ErrStockNegativo)

	assert.Equal(t, objetivo.StockActual, repo.stock(objetivo.ID))
	registrados, _, _ := movimientos.List(context.Background(), repository.MovimientoStockFilter{})
	assert.Empty(t, registrados)
}

func TestAjustarStockComponenteInexistente(t *testing.T) {
	svc, _, _ := nuevoComponenteSvc(catalogoBase())

	_, err := svc.AjustarStock(context.Background(), uuid.New(), dto.AjustarStockRequest{
		Delta:  5,
		Motivo: "reposición",
	})
	assert.ErrorIs(t, err, ErrItemDesconocido)
}

func TestDesactivarSacaDelCatalogoActivo(t *testing.T) {
	catalogo := catalogoBase()
	svc, repo, _ := nuevoComponenteSvc(catalogo)
	objetivo := catalogo[0]

	require.NoError(t, svc.Desactivar(context.Background(), objetivo.ID))
	activos, err := repo.ListActivos(context.Background())
	require.NoError(t, err)
	for _, c := range activos {
		assert.NotEqual(t, objetivo.ID, c.ID)
	}

	require.NoError(t, svc.Reactivar(context.Background(), objetivo.ID))
	activos, err = repo.ListActivos(context.Background())
	require.NoError(t, err)
	encontrado := false
	for _, c := range activos {
		if c.ID == objetivo.ID {
			encontrado = true
		}
	}
	assert.True(t, encontrado)
}
