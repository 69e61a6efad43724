// main.go
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

package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/localnerve/vexpm/internal/config"
	"github.com/localnerve/vexpm/internal/database"
	"github.com/localnerve/vexpm/internal/logging"
	"github.com/localnerve/vexpm/internal/scheduler"
	"github.com/localnerve/vexpm/internal/server"
	"github.com/localnerve/vexpm/internal/services"
	"github.com/thejerf/suture/v4"

	_ "github.com/localnerve/vexpm/docs/api" // Swagger docs
)

// @title VEX Project Management API
// @version 1.0.0
// @description Project portal and backup/restore service for VEX
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/localnerve/vexpm
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
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	db, err := database.Connect(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer database.Close(db)

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		logging.Fatal().Err(err).Msg("failed to run migrations")
	}

	cloud := services.NewCloudDrive(cfg)
	if cloud == nil {
		logging.Info().Msg("cloud drive disabled, backups stay local")
	}

	// Authorizer is initialized on the first authenticated request
	app := server.New(server.Deps{
		Cfg:       cfg,
		DB:        db,
		Validator: services.NewAuthorizerValidator(cfg),
		Cloud:     cloud,
		AccessLog: true,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sup := suture.New("vexpm", suture.Spec{
		EventHook: func(e suture.Event) {
			logging.Warn().Str("event", e.String()).Msg("supervisor event")
		},
		Timeout: 15 * time.Second,
	})
	sup.Add(server.NewService(app, ":"+cfg.Port))
	sup.Add(scheduler.New(db, cloud, cfg.BackupDir, cfg.ScheduleCheckInterval))

	if err := sup.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("supervisor stopped")
	}

	logging.Info().Msg("server stopped")
}
