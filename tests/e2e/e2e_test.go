//go:build integration

package e2e

// e2e_test.go
// End-to-end tests against real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./tests/e2e/... -v

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ProyectoSpoon/SPOON-sub003/internal/config"
	"github.com/ProyectoSpoon/SPOON-sub003/internal/infra"
	"github.com/ProyectoSpoon/SPOON-sub003/internal/router"
	"github.com/ProyectoSpoon/SPOON-sub003/internal/worker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body *bytes.Buffer) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, srv.URL+path, body)
	} else {
		req, err = http.NewRequest(method, srv.URL+path, nil)
	}
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// ── Test Suite Setup ─────────────────────────────────────────────────────────

func setupServer(t *testing.T) *httptest.Server {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("menudia_test"),
		tcPostgres.WithUsername("menudia"),
		tcPostgres.WithPassword("menudia"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx,
		testcontainers.WithImage("redis:7-alpine"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Port:                8000,
		Env:                 "test",
		DatabaseURL:         pgURL,
		RedisURL:            rdURL,
		WorkerPoolSize:      1,
		TicketStoragePath:   t.TempDir(),
		MenuCacheTTLMinutes: 5,
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)

	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	dispatcher := worker.NewDispatcher(rdb)
	srv := httptest.NewServer(router.New(cfg, db, rdb, dispatcher))
	t.Cleanup(srv.Close)
	return srv
}

type componenteSeed struct {
	nombre    string
	categoria string
	precio    float64
	stock     int
}

// seedCatalogo creates the minimal catalog for one combination per pairing
// and returns ids by name.
func seedCatalogo(t *testing.T, srv *httptest.Server, seeds []componenteSeed) map[string]string {
	t.Helper()
	ids := make(map[string]string, len(seeds))
	for _, s := range seeds {
		resp := do(t, srv, "POST", "/v1/componentes", jsonBody(t, map[string]any{
			"nombre":       s.nombre,
			"categoria":    s.categoria,
			"precio":       s.precio,
			"stock_actual": s.stock,
		}))
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		var created struct {
			ID string `json:"id"`
		}
		decodeJSON(t, resp, &created)
		ids[s.nombre] = created.ID
	}
	return ids
}

type menuCombinacion struct {
	ID            string  `json:"id"`
	Nombre        string  `json:"nombre"`
	PrecioBase    float64 `json:"precio_base,string"`
	PrecioVigente float64 `json:"precio_vigente,string"`
	Disponibles   int     `json:"disponibles"`
}

func getMenu(t *testing.T, srv *httptest.Server) []menuCombinacion {
	t.Helper()
	resp := do(t, srv, "GET", "/v1/menu", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var menu struct {
		Combinaciones []menuCombinacion `json:"combinaciones"`
	}
	decodeJSON(t, resp, &menu)
	return menu.Combinaciones
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestE2E_MenuYVentaCompleta(t *testing.T) {
	srv := setupServer(t)
	ids := seedCatalogo(t, srv, []componenteSeed{
		{"Sopa", "entrada", 30.0, 20},
		{"Frijoles", "principio", 50.0, 15},
		{"Lentejas", "principio", 45.0, 15},
		{"Pechuga", "proteina", 70.0, 10},
		{"Limonada", "bebida", 25.0, 30},
		{"Arroz", "acompanamiento", 15.0, 50},
	})

	// 2 principios × 1 proteina = 2 combinaciones
	menu := getMenu(t, srv)
	require.Len(t, menu, 2)
	for _, c := range menu {
		assert.Equal(t, c.PrecioBase, c.PrecioVigente)
		assert.Equal(t, 10, c.Disponibles) // min = stock de Pechuga
	}

	// Venta de 3 unidades de la primera combinación
	ventaResp := do(t, srv, "POST", "/v1/ventas", jsonBody(t, map[string]any{
		"items": []map[string]any{
			{"item_id": menu[0].ID, "tipo": "combinacion", "cantidad": 3},
		},
	}))
	require.Equal(t, http.StatusCreated, ventaResp.StatusCode)
	var venta struct {
		NumeroTicket int     `json:"numero_ticket"`
		Total        float64 `json:"total,string"`
		Estado       string  `json:"estado"`
	}
	decodeJSON(t, ventaResp, &venta)
	assert.Equal(t, 1, venta.NumeroTicket)
	assert.Equal(t, "completada", venta.Estado)
	assert.Equal(t, menu[0].PrecioVigente*3, venta.Total)

	// El menú refleja el descuento de stock (la caché se invalidó)
	menuDespues := getMenu(t, srv)
	require.Len(t, menuDespues, 2)
	assert.Equal(t, 7, menuDespues[0].Disponibles)

	// La proteína compartida bajó a 7
	compResp := do(t, srv, "GET", "/v1/componentes/"+ids["Pechuga"], nil)
	require.Equal(t, http.StatusOK, compResp.StatusCode)
	var comp struct {
		StockActual int `json:"stock_actual"`
	}
	decodeJSON(t, compResp, &comp)
	assert.Equal(t, 7, comp.StockActual)
}

func TestE2E_VentaTodoONada(t *testing.T) {
	srv := setupServer(t)
	ids := seedCatalogo(t, srv, []componenteSeed{
		{"Sopa", "entrada", 30.0, 20},
		{"Frijoles", "principio", 50.0, 15},
		{"Pechuga", "proteina", 70.0, 2}, // cuello de botella
		{"Limonada", "bebida", 25.0, 30},
		{"Arroz", "acompanamiento", 15.0, 50},
	})

	menu := getMenu(t, srv)
	require.Len(t, menu, 1)

	// 3 solicitadas, 2 disponibles → 409 sin tocar stock
	ventaResp := do(t, srv, "POST", "/v1/ventas", jsonBody(t, map[string]any{
		"items": []map[string]any{
			{"item_id": menu[0].ID, "tipo": "combinacion", "cantidad": 3},
		},
	}))
	assert.Equal(t, http.StatusConflict, ventaResp.StatusCode)
	ventaResp.Body.Close()

	compResp := do(t, srv, "GET", "/v1/componentes/"+ids["Pechuga"], nil)
	var comp struct {
		StockActual int `json:"stock_actual"`
	}
	decodeJSON(t, compResp, &comp)
	assert.Equal(t, 2, comp.StockActual)
}

func TestE2E_PrecioEspecial(t *testing.T) {
	srv := setupServer(t)
	seedCatalogo(t, srv, []componenteSeed{
		{"Sopa", "entrada", 30.0, 20},
		{"Frijoles", "principio", 50.0, 15},
		{"Pechuga", "proteina", 70.0, 10},
		{"Limonada", "bebida", 25.0, 30},
		{"Arroz", "acompanamiento", 15.0, 50},
	})
	menu := getMenu(t, srv)
	require.Len(t, menu, 1)
	base := menu[0].PrecioBase

	// Mayor o igual al base → 422
	malResp := do(t, srv, "PUT", fmt.Sprintf("/v1/menu/%s/precio-especial", menu[0].ID),
		jsonBody(t, map[string]any{"precio": base}))
	assert.Equal(t, http.StatusUnprocessableEntity, malResp.StatusCode)
	malResp.Body.Close()

	// Válido → el menú lo refleja
	okResp := do(t, srv, "PUT", fmt.Sprintf("/v1/menu/%s/precio-especial", menu[0].ID),
		jsonBody(t, map[string]any{"precio": base - 10}))
	require.Equal(t, http.StatusOK, okResp.StatusCode)
	okResp.Body.Close()

	menuConDescuento := getMenu(t, srv)
	assert.Equal(t, base-10, menuConDescuento[0].PrecioVigente)

	// Quitar → vuelve al base
	delResp := do(t, srv, "DELETE", fmt.Sprintf("/v1/menu/%s/precio-especial", menu[0].ID), nil)
	require.Equal(t, http.StatusOK, delResp.StatusCode)
	delResp.Body.Close()

	menuSinDescuento := getMenu(t, srv)
	assert.Equal(t, base, menuSinDescuento[0].PrecioVigente)

	// Precio 0 (combinación regalada) es válido: [0, base)
	ceroResp := do(t, srv, "PUT", fmt.Sprintf("/v1/menu/%s/precio-especial", menu[0].ID),
		jsonBody(t, map[string]any{"precio": 0}))
	require.Equal(t, http.StatusOK, ceroResp.StatusCode)
	ceroResp.Body.Close()

	menuGratis := getMenu(t, srv)
	assert.Zero(t, menuGratis[0].PrecioVigente)
}

func TestE2E_HealthReportaDLQ(t *testing.T) {
	srv := setupServer(t)

	resp := do(t, srv, "GET", "/health", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var h struct {
		OK  bool             `json:"ok"`
		DLQ map[string]int64 `json:"dlq"`
	}
	decodeJSON(t, resp, &h)
	assert.True(t, h.OK)
	assert.Zero(t, h.DLQ["jobs:reconciliacion"])
	assert.Zero(t, h.DLQ["jobs:ticket"])
}

func TestE2E_AjusteManualYMovimientos(t *testing.T) {
	srv := setupServer(t)
	ids := seedCatalogo(t, srv, []componenteSeed{
		{"Arroz", "acompanamiento", 15.0, 10},
	})

	ajusteResp := do(t, srv, "PATCH", "/v1/componentes/"+ids["Arroz"]+"/stock",
		jsonBody(t, map[string]any{"delta": 25, "motivo": "reposición del mercado"}))
	require.Equal(t, http.StatusOK, ajusteResp.StatusCode)
	var comp struct {
		StockActual int `json:"stock_actual"`
	}
	decodeJSON(t, ajusteResp, &comp)
	assert.Equal(t, 35, comp.StockActual)

	movResp := do(t, srv, "GET", "/v1/inventario/movimientos?componente_id="+ids["Arroz"], nil)
	require.Equal(t, http.StatusOK, movResp.StatusCode)
	var movs struct {
		Data []struct {
			Tipo     string `json:"tipo"`
			Cantidad int    `json:"cantidad"`
		} `json:"data"`
		Total int64 `json:"total"`
	}
	decodeJSON(t, movResp, &movs)
	require.EqualValues(t, 1, movs.Total)
	assert.Equal(t, "ajuste_manual", movs.Data[0].Tipo)
	assert.Equal(t, 25, movs.Data[0].Cantidad)
}
