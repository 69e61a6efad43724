// scheduler.go
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

// Package scheduler runs the persisted backup schedule as a supervised service.
package scheduler

import (
	"context"
	"time"

	"github.com/localnerve/vexpm/internal/logging"
	"github.com/localnerve/vexpm/internal/services"
	"gorm.io/gorm"
)

// RunFunc runs one schedule check
type RunFunc func(ctx context.Context, db *gorm.DB, opts services.ScheduleRunOptions) (*services.ScheduleRunResult, error)

// Service checks the backup schedule every Interval and runs it when due.
// It implements suture.Service.
type Service struct {
	DB       *gorm.DB
	Cloud    services.CloudDrive
	LocalDir string
	Interval time.Duration

	// Run defaults to services.RunScheduledBackup
	Run RunFunc
}

// New creates a schedule checker
func New(db *gorm.DB, cloud services.CloudDrive, localDir string, interval time.Duration) *Service {
	return &Service{DB: db, Cloud: cloud, LocalDir: localDir, Interval: interval}
}

// Serve implements suture.Service. A failed check is logged and retried on
// the next tick; only context cancellation stops the loop.
func (s *Service) Serve(ctx context.Context) error {
	interval := s.Interval
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logging.Info().Dur("interval", interval).Msg("backup scheduler started")
	s.check(ctx)

	for {
		select {
		case <-ctx.Done():
			logging.Info().Msg("backup scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.check(ctx)
		}
	}
}

func (s *Service) check(ctx context.Context) {
	run := s.Run
	if run == nil {
		run = services.RunScheduledBackup
	}

	result, err := run(ctx, s.DB, services.ScheduleRunOptions{Cloud: s.Cloud, LocalDir: s.LocalDir})
	if err != nil {
		if ctx.Err() == nil {
			logging.Error().Err(err).Msg("scheduled backup check failed")
		}
		return
	}
	if result.Ran {
		logging.Info().
			Str("filename", result.Filename).
			Str("cloud", string(result.Cloud)).
			Msg("scheduled backup completed")
		return
	}
	logging.Debug().Str("reason", result.Reason).Msg("scheduled backup skipped")
}

// String names the service in supervisor logs
func (s *Service) String() string {
	return "backup-scheduler"
}
