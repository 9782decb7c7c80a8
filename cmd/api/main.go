package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/imanod-api/internal/application/credit"
	"github.com/jhoicas/imanod-api/internal/application/inventory"
	"github.com/jhoicas/imanod-api/internal/application/media"
	"github.com/jhoicas/imanod-api/internal/application/orders"
	"github.com/jhoicas/imanod-api/internal/application/ports"
	"github.com/jhoicas/imanod-api/internal/domain/entity"
	infrapdf "github.com/jhoicas/imanod-api/internal/infrastructure/pdf"
	"github.com/jhoicas/imanod-api/internal/infrastructure/postgres"
	"github.com/jhoicas/imanod-api/internal/infrastructure/storage"
	"github.com/jhoicas/imanod-api/internal/infrastructure/worker"
	httpRouter "github.com/jhoicas/imanod-api/internal/interfaces/http"
	"github.com/jhoicas/imanod-api/pkg/config"
	"github.com/jhoicas/imanod-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.Setup(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
	}

	// Almacenamiento de fotos: disco local o GCS
	var objectStorage ports.ObjectStorage
	switch cfg.Storage.Driver {
	case "gcs":
		gcs, err := storage.NewGCS(ctx, cfg.Storage.Bucket, cfg.Storage.CredentialsFile)
		if err != nil {
			log.Fatal().Err(err).Msg("cliente GCS")
		}
		defer gcs.Close()
		objectStorage = gcs
	default:
		local, err := storage.NewLocal(cfg.Storage.LocalDir)
		if err != nil {
			log.Fatal().Err(err).Msg("almacenamiento local")
		}
		objectStorage = local
	}

	// Cola de borrados: Redis si está configurado; si no, en proceso.
	var cleanup ports.CleanupQueue
	var inline *worker.InlineCleanupQueue
	if cfg.Redis.URL != "" {
		rdb, err := worker.NewRedis(ctx, cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rdb.Close()
		worker.StartCleanupPool(ctx, rdb, cfg.Redis.WorkerPoolSize, objectStorage)
		cleanup = worker.NewRedisCleanupQueue(rdb)
	} else {
		inline = worker.NewInlineCleanupQueue(objectStorage)
		cleanup = inline
	}

	txRunner := postgres.NewTxRunner(pool)
	photos := media.NewPhotos(objectStorage, cleanup)
	invOpts := inventory.Options{CreditBack: cfg.Inventory.CreditBack}

	replenishmentUC := inventory.NewReplenishmentUseCase(postgres.NewAlertRepository(pool))
	ledgerUC := credit.NewLedgerUseCase(txRunner, photos)
	pdfGenerator := infrapdf.NewMarotoPDFGenerator(cfg.App.Name)

	if cfg.Alert.Enabled() {
		mailer := worker.NewSMTPMailer(cfg.Alert.SMTPHost, cfg.Alert.SMTPPort, cfg.Alert.SMTPUser, cfg.Alert.SMTPPassword, cfg.Alert.From)
		digest := worker.NewAlertDigest(replenishmentUC, mailer, cfg.Alert.To, time.Duration(cfg.Alert.IntervalMinutes)*time.Minute)
		digest.Start(ctx)
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    10 << 20,
		ErrorHandler: httpRouter.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat("./docs/swagger.json"); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     "docs",
			Title:    "Imanod API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Materials:     inventory.NewMaterialUseCase(txRunner, photos),
		PlankTypes:    inventory.NewDerivedPartUseCase(txRunner, photos, entity.StockPlankType, invOpts),
		PegTypes:      inventory.NewDerivedPartUseCase(txRunner, photos, entity.StockPegType, invOpts),
		SkidTypes:     inventory.NewSkidTypeUseCase(txRunner, photos, invOpts),
		Prototypes:    inventory.NewPrototypeUseCase(txRunner, photos),
		Replenishment: replenishmentUC,
		Customers:     orders.NewCustomerUseCase(txRunner),
		Purchases:     orders.NewPurchaseOrderUseCase(txRunner),
		SalesOrders:   orders.NewSalesOrderUseCase(txRunner),
		SalesOrderPDF: orders.NewPDFUseCase(txRunner, pdfGenerator),
		Products:      credit.NewProductUseCase(txRunner, photos),
		Ledger:        ledgerUC,
		JWTSecret:     cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	stop()
	if inline != nil {
		inline.Wait()
	}

	log.Info().Msg("aplicación detenida")
}
