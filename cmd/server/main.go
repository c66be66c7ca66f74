// main.go
//
// Form builder and response collection service with plan-gated submissions
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of snapform-api.
// snapform-api is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// snapform-api is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with snapform-api.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/snapform/snapform-api/internal/config"
	"github.com/snapform/snapform-api/internal/database"
	"github.com/snapform/snapform-api/internal/handlers"
	"github.com/snapform/snapform-api/internal/logging"
	"github.com/snapform/snapform-api/internal/metrics"
	"github.com/snapform/snapform-api/internal/middleware"
	"github.com/snapform/snapform-api/internal/plans"
	"github.com/snapform/snapform-api/internal/services"
	"github.com/snapform/snapform-api/internal/sheets"

	_ "github.com/snapform/snapform-api/docs/api" // Swagger docs
)

// @title Snapform API
// @version 1.0.0
// @description Form builder and response collection service with plan-gated submissions
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/snapform/snapform-api
// @contact.email info@localnerve.com

// @license.name AGPL-3.0
// @license.url https://www.gnu.org/licenses/agpl-3.0.html

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name cookie_session

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Failed to load configuration: %v", err)
	}
	logging.Configure(cfg.LogLevel, cfg.LogFormat)

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		logging.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	// Run migrations
	if err := database.Migrate(db); err != nil {
		logging.Fatalf("Failed to run migrations: %v", err)
	}

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		logging.Fatalf("Failed to register metrics: %v", err)
	}

	// Post-commit hooks
	hooks := &services.HookRunner{Timeout: cfg.SheetMirrorTimeout}
	forms := &services.FormService{DB: db}
	if cfg.SheetsEnabled() {
		sheetService, err := sheets.NewGoogleService(context.Background(), cfg.GoogleCredentialsFile)
		if err != nil {
			logging.Fatalf("Failed to create Google Sheets client: %v", err)
		}
		forms.Sheets = sheetService
		mirror := &sheets.Mirror{Service: sheetService}
		hooks.Add(mirror.OnCommit)
		logging.Infof("Google Sheets export enabled")
	}

	roles := services.RoleResolver{SuperAdmins: cfg.SuperAdmins}
	routes := &handlers.Routes{
		Auth: &middleware.Authenticator{
			DB:       db,
			Sessions: services.AuthorizerSessions{Roles: []string{"user"}},
			Roles:    roles,
		},
		Forms:           &handlers.FormHandler{Forms: forms},
		Submissions:     &handlers.SubmissionHandler{Service: services.NewSubmissionService(db, cfg.CommitTimeout, hooks)},
		Admin:           &handlers.AdminHandler{DB: db, Forms: forms, Roles: roles},
		Templates:       &handlers.TemplateHandler{DB: db},
		Health:          &handlers.HealthHandler{Config: cfg, DB: db},
		SubmitRateLimit: cfg.SubmitRateLimit,
	}
	if cfg.BillingEnabled() {
		priceTiers := map[string]plans.Tier{}
		if cfg.StripePricePremium != "" {
			priceTiers[cfg.StripePricePremium] = plans.TierPremium
		}
		if cfg.StripePriceBusiness != "" {
			priceTiers[cfg.StripePriceBusiness] = plans.TierBusiness
		}
		routes.Billing = &handlers.BillingHandler{Billing: &services.BillingService{
			DB:            db,
			WebhookSecret: cfg.StripeWebhookSecret,
			PriceTiers:    priceTiers,
		}}
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{Output: logging.Writer()}))
	app.Use(compress.New())

	// Prometheus metrics
	prom := fiberprometheus.New("snapform")
	prom.RegisterAt(app, "/metrics")
	app.Use(prom.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Initialize the Authorizer client from the first request's origin
	app.Use(func(c *fiber.Ctx) error {
		if !services.IsAuthorizerInitialized() {
			if err := services.InitAuthorizer(cfg, c.Protocol(), c.Hostname()); err != nil {
				logging.Warnf("Authorizer initialization failed: %v", err)
			}
		}
		return c.Next()
	})

	// API routes under /api
	api := app.Group("/api", middleware.VersionMiddleware())
	routes.Register(api)

	// 404 handler
	app.Use(handlers.NotFound)

	// Graceful shutdown
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigs
		logging.Infof("Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	// Start server
	logging.Infof("Starting server on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		logging.Fatalf("Failed to start server: %v", err)
	}

	// let in-flight sheet appends finish
	hooks.Wait()
	logging.Infof("Server stopped")
}
