// restore.go
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

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/localnerve/vexpm/internal/logging"
	"github.com/localnerve/vexpm/internal/metrics"
	"github.com/localnerve/vexpm/internal/snapshot"
	"gorm.io/gorm"
)

// Restore sources, used as a metrics label
const (
	RestoreSourceUpload = "upload"
	RestoreSourceCloud  = "cloud"
	RestoreSourceCLI    = "cli"
)

// RestoreOptions configures one restore run
type RestoreOptions struct {
	Source        string
	Transactional bool
}

// RestoreBackup reads an archive, replaces the entity tables with its
// contents and verifies the result. Archive errors are returned before any
// table is touched and match the snapshot input error sentinels.
func RestoreBackup(ctx context.Context, db *gorm.DB, archive []byte, opts RestoreOptions) (*RestoreResult, error) {
	if opts.Source == "" {
		opts.Source = RestoreSourceUpload
	}

	doc, err := snapshot.ReadArchive(archive)
	if err != nil {
		metrics.RestoresTotal.WithLabelValues(opts.Source, "rejected").Inc()
		return nil, err
	}

	start := time.Now()
	if err := LoadSnapshot(ctx, db, doc, LoadOptions{Transactional: opts.Transactional}); err != nil {
		metrics.RestoresTotal.WithLabelValues(opts.Source, "failure").Inc()
		logging.Error().Err(err).Bool("transactional", opts.Transactional).Msg("restore failed while loading")
		return nil, fmt.Errorf("restore failed: %w", err)
	}
	metrics.RestoreDuration.Observe(time.Since(start).Seconds())

	result, err := VerifyRestore(ctx, db, doc)
	if err != nil {
		metrics.RestoresTotal.WithLabelValues(opts.Source, "failure").Inc()
		return nil, fmt.Errorf("restore verification error: %w", err)
	}

	if result.Success {
		metrics.RestoresTotal.WithLabelValues(opts.Source, "success").Inc()
		logging.Info().Str("source", opts.Source).Interface("counts", result.RestoredCounts).Msg("restore completed")
	} else {
		metrics.RestoresTotal.WithLabelValues(opts.Source, "mismatch").Inc()
		logging.Warn().Str("source", opts.Source).Interface("counts", result.RestoredCounts).Msg(result.Message)
	}

	return result, nil
}
