package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jlvas-cloud/vasculares-sub002/internal/application/ledger"
	"github.com/jlvas-cloud/vasculares-sub002/internal/application/reconciliation"
	appsync "github.com/jlvas-cloud/vasculares-sub002/internal/application/sync"
	"github.com/jlvas-cloud/vasculares-sub002/internal/domain/entity"
	"github.com/jlvas-cloud/vasculares-sub002/internal/domain/repository"
	"github.com/jlvas-cloud/vasculares-sub002/internal/infrastructure/postgres"
	"github.com/jlvas-cloud/vasculares-sub002/internal/infrastructure/sapb1"
	httpRouter "github.com/jlvas-cloud/vasculares-sub002/internal/interfaces/http"
	"github.com/jlvas-cloud/vasculares-sub002/pkg/config"
	"github.com/jlvas-cloud/vasculares-sub002/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	companyRepo := postgres.NewCompanyRepository(pool)
	configRepo := postgres.NewConfigRepository(pool)
	productoRepo := postgres.NewProductoRepository(pool)
	centroRepo := postgres.NewCentroRepository(pool)
	loteRepo := postgres.NewLoteRepository(pool)
	inventarioRepo := postgres.NewInventarioRepository(pool)
	transaccionRepo := postgres.NewTransaccionRepository(pool)
	recepcionRepo := postgres.NewRecepcionRepository(pool)
	consignacionRepo := postgres.NewConsignacionRepository(pool)
	consumoRepo := postgres.NewConsumoRepository(pool)
	externoRepo := postgres.NewDocumentoExternoRepository(pool)
	runRepo := postgres.NewReconciliationRunRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	recepcionUC := ledger.NewRecepcionUseCase(txRunner, productoRepo, centroRepo, log)
	consignacionUC := ledger.NewConsignacionUseCase(txRunner, centroRepo, log)
	consumoUC := ledger.NewConsumoUseCase(txRunner, centroRepo, log)
	queryUC := ledger.NewQueryUseCase(loteRepo, inventarioRepo, transaccionRepo, consignacionRepo)
	recomputeUC := ledger.NewRecomputeUseCase(txRunner)

	// Cliente del Service Layer de SAP Business One: todo envío y lectura de
	// documentos del ERP pasa por aquí.
	sapClient := sapb1.NewClient(sapb1.Config{
		BaseURL:   cfg.SAP.BaseURL,
		Username:  cfg.SAP.Username,
		Password:  cfg.SAP.Password,
		DefaultDB: cfg.SAP.DefaultDB,
		Timeout:   time.Duration(cfg.SAP.Timeout) * time.Second,
	})

	syncSvc := appsync.NewService(
		recepcionRepo, consignacionRepo, consumoRepo,
		productoRepo, centroRepo, sapClient, log,
	).WithLease(time.Duration(cfg.Sync.RetryLeaseMinutes) * time.Minute)

	reconEngine := reconciliation.NewEngine(
		companyRepo, configRepo, runRepo, externoRepo,
		recepcionRepo, consignacionRepo, consumoRepo,
		sapClient, log,
	)
	reconAdmin := reconciliation.NewAdminUseCase(runRepo, externoRepo, configRepo)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	httpRouter.Router(app, httpRouter.RouterDeps{
		RecepcionUC:    recepcionUC,
		ConsignacionUC: consignacionUC,
		ConsumoUC:      consumoUC,
		QueryUC:        queryUC,
		RecomputeUC:    recomputeUC,
		SyncSvc:        syncSvc,
		ReconEngine:    reconEngine,
		ReconAdmin:     reconAdmin,
		JWTSecret:      cfg.JWT.Secret,
	})

	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()

	go retrySweepLoop(workerCtx, syncSvc, companyRepo, cfg.Sync, log)
	if cfg.Reconcile.Enabled {
		go nightlyReconciliationLoop(workerCtx, reconEngine, cfg.Reconcile.Hour, log)
	}

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	stopWorkers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// retrySweepLoop corre el barrido de reintentos de sincronización a intervalo
// fijo, por cada empresa activa. El lock CAS con lease en cada documento hace
// seguro correr varios procesos a la vez.
func retrySweepLoop(ctx context.Context, svc *appsync.Service, companies repository.CompanyRepository, cfg config.SyncConfig, log *logger.Logger) {
	interval := time.Duration(cfg.RetryIntervalMinutes) * time.Minute
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			list, err := companies.ListActive()
			if err != nil {
				log.Error().Err(err).Msg("barrido de reintentos: listar empresas")
				continue
			}
			for _, company := range list {
				stats, err := svc.RetrySweep(ctx, company.ID)
				if err != nil {
					log.Error().Err(err).Str("company_id", company.ID).Msg("barrido de reintentos")
					continue
				}
				if stats.Claimed > 0 {
					log.Info().
						Str("company_id", company.ID).
						Int("claimed", stats.Claimed).
						Int("recovered", stats.Recovered).
						Int("failed", stats.Failed).
						Msg("barrido de reintentos completado")
				}
			}
		}
	}
}

// nightlyReconciliationLoop dispara la conciliación de todas las empresas una
// vez al día a la hora configurada.
func nightlyReconciliationLoop(ctx context.Context, engine *reconciliation.Engine, hour int, log *logger.Logger) {
	for {
		next := nextRunAt(time.Now(), hour)
		log.Info().Time("next_run", next).Msg("conciliación nocturna programada")

		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Until(next)):
		}

		runs := engine.RunAll(ctx, entity.RunTypeNightly)
		log.Info().Int("companies", len(runs)).Msg("conciliación nocturna finalizada")
	}
}

// nextRunAt devuelve la próxima ocurrencia de la hora dada.
func nextRunAt(now time.Time, hour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next
}
