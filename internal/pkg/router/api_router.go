package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/lromand/matchpoint/app/controllers"
	"github.com/lromand/matchpoint/internal/pkg/env"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New())

	api.Get("/health", controllers.HandleHealth)
	api.Get("/plans", controllers.HandleListPlans)
	api.Post("/subscribe", controllers.HandleSubscribe)

	api.Get("/profile", controllers.HandleGetProfile)
	api.Put("/profile/payment-method", controllers.HandleUpdatePaymentMethod)

	// Admin routes sit behind basic auth; the reporting surface is for
	// back-office use only.
	admin := api.Group("/admin", basicauth.New(basicauth.Config{
		Users: map[string]string{
			env.GetEnv("ADMIN_USER", "admin"): env.GetEnv("ADMIN_PASSWORD", "admin"),
		},
	}))
	admin.Get("/users", controllers.HandleAdminUsers)
	admin.Get("/revenue", controllers.HandleAdminRevenue)
	admin.Get("/revenue/transactions", controllers.HandleAdminRevenueTransactions)
	admin.Post("/revenue/export", controllers.HandleAdminRevenueExport)
	admin.Post("/plans", controllers.HandleAdminSavePlan)
	admin.Get("/reconciliation", controllers.HandleAdminReconciliation)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
