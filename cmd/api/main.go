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
	"github.com/medintegra/salud-ocupacional-api/internal/application/engine"
	"github.com/medintegra/salud-ocupacional-api/internal/application/usecase"
	"github.com/medintegra/salud-ocupacional-api/internal/domain/repository"
	"github.com/medintegra/salud-ocupacional-api/internal/infrastructure/cache"
	"github.com/medintegra/salud-ocupacional-api/internal/infrastructure/postgres"
	httpRouter "github.com/medintegra/salud-ocupacional-api/internal/interfaces/http"
	"github.com/medintegra/salud-ocupacional-api/pkg/config"
	"github.com/medintegra/salud-ocupacional-api/pkg/logger"
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

	var userRepo repository.UserRepository = postgres.NewUserRepository(pool)
	unitRepo := postgres.NewOrgUnitRepository(pool)
	patientRepo := postgres.NewPatientRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	auditRepo := postgres.NewAuditRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Caché de directorio opcional: REDIS_ADDR vacío lo desactiva.
	if cfg.Redis.Addr != "" {
		rdb, err := cache.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rdb.Close()
		ttl := time.Duration(cfg.Redis.TTLMin) * time.Minute
		userRepo = cache.NewUserCache(userRepo, rdb, ttl, log)
		log.Info().Str("addr", cfg.Redis.Addr).Dur("ttl", ttl).Msg("caché de directorio activado")
	}

	eng := engine.New(userRepo, unitRepo, auditRepo, txRunner, log)

	userUC := usecase.NewUserUseCase(userRepo, eng)
	orgUC := usecase.NewOrgUseCase(unitRepo, eng)
	patientUC := usecase.NewPatientUseCase(patientRepo, eng)
	invoiceUC := usecase.NewInvoiceUseCase(invoiceRepo, patientRepo, eng)
	auditUC := usecase.NewAuditUseCase(auditRepo, eng)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Salud Ocupacional API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Engine:    eng,
		UserUC:    userUC,
		OrgUC:     orgUC,
		PatientUC: patientUC,
		InvoiceUC: invoiceUC,
		AuditUC:   auditUC,
		JWTSecret: cfg.JWT.Secret,
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

	log.Info().Msg("aplicación detenida")
}
