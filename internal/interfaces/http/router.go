package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/smartup/onec-supply-sync/internal/application/auth"
	"github.com/smartup/onec-supply-sync/internal/application/sync"
	"github.com/smartup/onec-supply-sync/internal/infrastructure/supply"
)

// RouterDeps dependencies for the router.
type RouterDeps struct {
	NomenclatureUC *sync.NomenclatureUseCase
	ContrAgentUC   *sync.ContrAgentUseCase
	AuthUC         *auth.UseCase
	SupplyClient   *supply.Client
	JWTSecret      string
}

// Router registers the API routes.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Token issue (public)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/token", authHandler.Token)

	// Protected routes (require Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// 1C pushes (protected)
	integrations := protected.Group("/integrations")
	syncHandler := NewSyncHandler(deps.NomenclatureUC, deps.ContrAgentUC)
	integrations.Post("/nomenclature/update", syncHandler.NomenclatureUpdate)
	integrations.Post("/contr_agents/update", syncHandler.ContrAgentsUpdate)
	integrations.Post("/contr_agents/balances", syncHandler.ContrAgentBalances)

	// Operator console (protected)
	admin := protected.Group("/admin")
	adminHandler := NewAdminHandler(deps.NomenclatureUC, deps.SupplyClient)
	admin.Get("/nomenclatures", adminHandler.ListNomenclatures)
	admin.Post("/nomenclatures/redrive", adminHandler.Redrive)
	admin.Get("/supply/branches", adminHandler.Branches)
	admin.Get("/supply/warehouses", adminHandler.Warehouses)
}
