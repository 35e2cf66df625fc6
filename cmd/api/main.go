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
	appauth "github.com/smartup/onec-supply-sync/internal/application/auth"
	"github.com/smartup/onec-supply-sync/internal/application/sync"
	"github.com/smartup/onec-supply-sync/internal/infrastructure/postgres"
	"github.com/smartup/onec-supply-sync/internal/infrastructure/supply"
	httpRouter "github.com/smartup/onec-supply-sync/internal/interfaces/http"
	"github.com/smartup/onec-supply-sync/pkg/config"
	"github.com/smartup/onec-supply-sync/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("load configuration: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("starting application")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("PostgreSQL connection")
	}
	defer pool.Close()

	nomRepo := postgres.NewNomenclatureRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Supply chain: token cache -> sender. The cache is process-local; a
	// second worker acquires its own token independently.
	tokenCache := supply.NewTokenCache(cfg.Supply.BaseURL, cfg.Supply.Phone, cfg.Supply.Password, cfg.Supply.TokenLifetime)
	supplyClient := supply.NewClient(cfg.Supply.BaseURL, tokenCache, cfg.Supply.RetryDelay, log.Zerolog())

	nomenclatureUC := sync.NewNomenclatureUseCase(
		txRunner, nomRepo, supplyClient,
		cfg.Supply.BranchID, cfg.Supply.MaxRetries, log.Zerolog(),
	)
	contrAgentUC := sync.NewContrAgentUseCase(txRunner, log.Zerolog())

	authUC := appauth.NewUseCase(appauth.Config{
		Username:     cfg.Auth.Username,
		PasswordHash: cfg.Auth.PasswordHash,
		JWTSecret:    cfg.JWT.Secret,
		Issuer:       cfg.JWT.Issuer,
		ExpMinutes:   cfg.JWT.Expiration,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI locally: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "1C-Supply Sync API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		NomenclatureUC: nomenclatureUC,
		ContrAgentUC:   contrAgentUC,
		AuthUC:         authUC,
		SupplyClient:   supplyClient,
		JWTSecret:      cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("HTTP server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutdown signal received, closing server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}

	log.Info().Msg("application stopped")
}
