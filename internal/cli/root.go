// root.go
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

// Package cli implements vexctl, the operator command line for backups.
package cli

import (
	"fmt"

	"github.com/localnerve/vexpm/internal/config"
	"github.com/localnerve/vexpm/internal/database"
	"github.com/localnerve/vexpm/internal/logging"
	"github.com/localnerve/vexpm/internal/services"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// Env supplies the collaborators commands need. Open returns the database,
// the configuration and a function releasing the connection.
type Env struct {
	Open  func() (*gorm.DB, *config.Config, func(), error)
	Cloud func(cfg *config.Config) services.CloudDrive
}

// DefaultEnv connects with the environment configuration
func DefaultEnv() *Env {
	return &Env{
		Open: func() (*gorm.DB, *config.Config, func(), error) {
			cfg, err := config.Load()
			if err != nil {
				return nil, nil, nil, fmt.Errorf("failed to load configuration: %w", err)
			}
			logging.Init(logging.Config{Level: cfg.LogLevel, Format: "console"})
			db, err := database.Connect(cfg)
			if err != nil {
				return nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
			}
			return db, cfg, func() { _ = database.Close(db) }, nil
		},
		Cloud: services.NewCloudDrive,
	}
}

// NewRootCmd builds the vexctl command tree
func NewRootCmd(env *Env) *cobra.Command {
	root := &cobra.Command{
		Use:           "vexctl",
		Short:         "Back up, restore and inspect VEX project data",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newBackupCmd(env),
		newRestoreCmd(env),
		newInspectCmd(),
		newHistoryCmd(env),
	)
	return root
}
