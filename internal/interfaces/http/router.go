package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jlvas-cloud/vasculares-sub002/internal/application/ledger"
	"github.com/jlvas-cloud/vasculares-sub002/internal/application/reconciliation"
	appsync "github.com/jlvas-cloud/vasculares-sub002/internal/application/sync"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	RecepcionUC    *ledger.RecepcionUseCase
	ConsignacionUC *ledger.ConsignacionUseCase
	ConsumoUC      *ledger.ConsumoUseCase
	QueryUC        *ledger.QueryUseCase
	RecomputeUC    *ledger.RecomputeUseCase
	SyncSvc        *appsync.Service
	ReconEngine    *reconciliation.Engine
	ReconAdmin     *reconciliation.AdminUseCase
	JWTSecret      string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Healthcheck (público)
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Recepciones en bodega (bodeguero)
	recepciones := protected.Group("/recepciones", RequireRole(RoleBodeguero))
	recepcionHandler := NewRecepcionHandler(deps.RecepcionUC, deps.SyncSvc)
	recepciones.Post("/", recepcionHandler.Create)

	// Consignaciones bodega → centro (bodeguero crea, operador confirma)
	consignaciones := protected.Group("/consignaciones")
	consignacionHandler := NewConsignacionHandler(deps.ConsignacionUC, deps.QueryUC, deps.SyncSvc)
	consignaciones.Post("/", RequireRole(RoleBodeguero), consignacionHandler.Create)
	consignaciones.Post("/:id/confirmar", RequireRole(RoleOperador, RoleBodeguero), consignacionHandler.Confirm)
	consignaciones.Get("/pendientes", consignacionHandler.ListPendientes)

	// Consumos en procedimientos (operador)
	consumos := protected.Group("/consumos", RequireRole(RoleOperador))
	consumoHandler := NewConsumoHandler(deps.ConsumoUC, deps.SyncSvc)
	consumos.Post("/", consumoHandler.Create)

	// Consultas de inventario, lotes y movimientos (cualquier rol autenticado)
	inventarioHandler := NewInventarioHandler(deps.QueryUC, deps.RecomputeUC)
	inventario := protected.Group("/inventario")
	inventario.Get("/:centroId", inventarioHandler.ByCentro)
	inventario.Post("/recompute", RequireRole(RoleAdmin), inventarioHandler.Recompute)
	protected.Get("/lotes", inventarioHandler.LotesByProduct)
	protected.Get("/transacciones", inventarioHandler.Transacciones)

	// Sincronización con el ERP (solo admin)
	syncGroup := protected.Group("/sync", RequireRole(RoleAdmin))
	syncHandler := NewSyncHandler(deps.SyncSvc)
	syncGroup.Post("/retry", syncHandler.RetrySweep)
	syncGroup.Post("/recepciones/:id/push", syncHandler.PushRecepcion)
	syncGroup.Post("/consignaciones/:id/push", syncHandler.PushConsignacion)
	syncGroup.Post("/consumos/:id/push", syncHandler.PushConsumo)

	// Conciliación contra el ERP (solo admin)
	recon := protected.Group("/reconciliation", RequireRole(RoleAdmin))
	reconHandler := NewReconciliationHandler(deps.ReconEngine, deps.ReconAdmin)
	recon.Post("/run", reconHandler.Trigger)
	recon.Get("/runs", reconHandler.History)
	recon.Get("/runs/:id", reconHandler.RunStatus)
	recon.Get("/documents", reconHandler.ListDocuments)
	recon.Put("/documents/:id", reconHandler.ResolveDocument)
	recon.Get("/config", reconHandler.GetConfig)
	recon.Put("/config/golive", reconHandler.SetGoLive)
}
