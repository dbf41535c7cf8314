package router

import (
	"time"

	"github.com/ProyectoSpoon/SPOON-sub003/internal/config"
	"github.com/ProyectoSpoon/SPOON-sub003/internal/handler"
	"github.com/ProyectoSpoon/SPOON-sub003/internal/middleware"
	"github.com/ProyectoSpoon/SPOON-sub003/internal/repository"
	"github.com/ProyectoSpoon/SPOON-sub003/internal/service"
	"github.com/ProyectoSpoon/SPOON-sub003/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, dispatcher *worker.Dispatcher) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	componenteRepo := repository.NewComponenteRepository(db)
	ventaRepo := repository.NewVentaRepository(db)
	movimientoRepo := repository.NewMovimientoStockRepository(db)
	ajusteRepo := repository.NewAjusteCombinacionRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	combinacionSvc := service.NewCombinacionService(componenteRepo, ajusteRepo, rdb, cfg.MenuCacheTTL())
	componenteSvc := service.NewComponenteService(componenteRepo, movimientoRepo, combinacionSvc)
	ventaSvc := service.NewVentaService(componenteRepo, ventaRepo, movimientoRepo, ajusteRepo, combinacionSvc, dispatcher)

	// ── Handlers ─────────────────────────────────────────────────────────────
	menuH := handler.NewMenuHandler(combinacionSvc)
	componentesH := handler.NewComponentesHandler(componenteSvc)
	ventasH := handler.NewVentasHandler(ventaSvc)
	inventarioH := handler.NewInventarioHandler(componenteSvc)

	// ── Routes ───────────────────────────────────────────────────────────────
	r.GET("/health", handler.Health(db, rdb))

	v1 := r.Group("/v1")
	{
		v1.GET("/menu", menuH.MenuDelDia)
		v1.PUT("/menu/:id/precio-especial", menuH.FijarPrecioEspecial)
		v1.DELETE("/menu/:id/precio-especial", menuH.QuitarPrecioEspecial)
		v1.PATCH("/menu/:id/favorita", menuH.MarcarFavorita)
		v1.PATCH("/menu/:id/destacada", menuH.MarcarDestacada)

		v1.POST("/ventas", ventasH.RegistrarVenta)
		v1.GET("/ventas", ventasH.ListarVentas)

		comps := v1.Group("/componentes")
		{
			comps.POST("", componentesH.Crear)
			comps.GET("", componentesH.Listar)
			comps.GET("/:id", componentesH.Obtener)
			comps.DELETE("/:id", componentesH.Desactivar)
			comps.PATCH("/:id/reactivar", componentesH.Reactivar)
			comps.PATCH("/:id/stock", componentesH.AjustarStock)
		}

		v1.GET("/inventario/movimientos", inventarioH.ListarMovimientos)
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
