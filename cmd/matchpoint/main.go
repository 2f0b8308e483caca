package main

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/lromand/matchpoint/app/repository"
	"github.com/lromand/matchpoint/internal/pkg/cache"
	"github.com/lromand/matchpoint/internal/pkg/database"
	"github.com/lromand/matchpoint/internal/pkg/env"
	"github.com/lromand/matchpoint/internal/pkg/router"
	"github.com/lromand/matchpoint/internal/pkg/subscription"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()
	repository.InitializeFactory(database.GetDB())

	// Surface charges that never made it into the local records before the
	// last shutdown. Detection only; repair is operator work.
	if n := subscription.SweepStalledAttempts(subscription.NewRepository(database.GetDB())); n > 0 {
		log.Printf("[RECONCILE] %d stalled enrollment attempt(s) need attention", n)
	}

	app := fiber.New(fiber.Config{
		AppName: "MatchPoint",
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// fiber metrics
	app.Get("/metrics", basicauth.New(basicauth.Config{
		Users: map[string]string{
			env.GetEnv("ADMIN_USER", "admin"): env.GetEnv("ADMIN_PASSWORD", "admin"),
		},
	}), monitor.New())

	// ROUTER
	router.InstallRouter(app)

	return app
}
