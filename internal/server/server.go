// server.go
//
// Project portal and backup/restore service for VEX
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of vexpm.
// vexpm is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// vexpm is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with vexpm.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

// Package server assembles the fiber application: middleware, routes and
// the global error handler.
package server

import (
	"errors"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/localnerve/vexpm/internal/config"
	"github.com/localnerve/vexpm/internal/handlers"
	"github.com/localnerve/vexpm/internal/logging"
	"github.com/localnerve/vexpm/internal/middleware"
	"github.com/localnerve/vexpm/internal/services"
	"github.com/localnerve/vexpm/internal/types"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

// bodyLimit admits restore uploads up to the archive size limit
const bodyLimit = 512 << 20

// Deps are the collaborators the routes need
type Deps struct {
	Cfg       *config.Config
	DB        *gorm.DB
	Validator services.SessionValidator
	Cloud     services.CloudDrive // nil when no drive is configured

	// Registry receives the HTTP metrics; nil uses the default registerer
	Registry prometheus.Registerer

	// AccessLog enables the fiber request logger
	AccessLog bool
}

// New builds the application with every route mounted
func New(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler:          customErrorHandler,
		BodyLimit:             bodyLimit,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		DisableStartupMessage: true,
	})

	// Global middleware
	app.Use(recover.New())
	if d.AccessLog {
		app.Use(logger.New())
	}
	app.Use(compress.New())

	// Prometheus metrics
	var prom *fiberprometheus.FiberPrometheus
	if d.Registry != nil {
		prom = fiberprometheus.NewWithRegistry(d.Registry, "vexpm", "", "", nil)
	} else {
		prom = fiberprometheus.New("vexpm")
	}
	prom.RegisterAt(app, "/metrics")
	app.Use(prom.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	app.Get("/health", func(c *fiber.Ctx) error {
		result := services.HealthCheck(c.UserContext(), d.Cfg, d.DB)
		status := fiber.StatusOK
		if result.Status != "healthy" {
			status = fiber.StatusServiceUnavailable
		}
		return c.Status(status).JSON(result)
	})

	// API routes under /api
	api := app.Group("/api")
	api.Use(middleware.VersionMiddleware())

	backupHandler := &handlers.BackupHandler{DB: d.DB, Cloud: d.Cloud, Cfg: d.Cfg}
	projectHandler := &handlers.ProjectHandler{DB: d.DB}

	// Admin-only backup routes
	admin := api.Group("/admin", middleware.AuthAdmin(d.Validator))
	admin.Post("/backup", backupHandler.CreateBackup)
	admin.Post("/restore", backupHandler.Restore)
	admin.Get("/backups", backupHandler.ListBackups)
	admin.Get("/backup/schedule", backupHandler.GetSchedule)
	admin.Put("/backup/schedule", backupHandler.UpdateSchedule)
	admin.Post("/backup/schedule/run", backupHandler.RunSchedule)
	admin.Get("/cloud-backups", backupHandler.ListCloudBackups)
	admin.Post("/cloud-backups/:id/restore", backupHandler.RestoreCloudBackup)
	admin.Delete("/cloud-backups/:id", backupHandler.DeleteCloudBackup)

	// Portal routes
	user := middleware.AuthUser(d.Validator)
	api.Get("/projects", user, projectHandler.ListProjects)
	api.Get("/projects/:id", user, projectHandler.GetProject)
	api.Patch("/milestones/:id/status", user, projectHandler.UpdateMilestoneStatus)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":    fiber.StatusNotFound,
			"message":   "[404] Resource Not Found",
			"ok":        false,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"url":       c.OriginalURL(),
		})
	})

	return app
}

// customErrorHandler handles errors globally
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()
	errorType := "unknown"

	var fe *fiber.Error
	var ce *types.CustomError
	switch {
	case errors.As(err, &ce):
		code = ce.Code
		message = ce.Message
		errorType = ce.Type
	case errors.As(err, &fe):
		code = fe.Code
		message = fe.Message
	}

	if code >= fiber.StatusInternalServerError {
		logging.Error().Err(err).Str("url", c.OriginalURL()).Msg("request failed")
	}

	return c.Status(code).JSON(fiber.Map{
		"status":    code,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
		"type":      errorType,
	})
}
