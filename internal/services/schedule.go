// schedule.go
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
	"errors"
	"fmt"
	"time"

	"github.com/localnerve/vexpm/internal/logging"
	"github.com/localnerve/vexpm/internal/models"
	"github.com/localnerve/vexpm/internal/validation"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// scheduleID is the primary key of the single schedule row
const scheduleID = 1

// ScheduleInput is the admin-editable part of the schedule
type ScheduleInput struct {
	Enabled       bool       `json:"enabled"`
	Frequency     string     `json:"frequency" validate:"required,oneof=daily weekly monthly"`
	StartTime     *time.Time `json:"startTime,omitempty"`
	UploadToCloud bool       `json:"uploadToCloud"`
	OwnerEmail    string     `json:"ownerEmail" validate:"omitempty,email"`
}

// ScheduleRunOptions configures a scheduled run
type ScheduleRunOptions struct {
	Cloud    CloudDrive
	LocalDir string
	Force    bool
	Now      time.Time
}

// ScheduleRunResult describes what a schedule check did
type ScheduleRunResult struct {
	Ran      bool                   `json:"ran"`
	Reason   string                 `json:"reason,omitempty"`
	Filename string                 `json:"filename,omitempty"`
	Cloud    CloudStatus            `json:"cloud,omitempty"`
	Schedule *models.BackupSchedule `json:"schedule"`
}

func defaultSchedule() *models.BackupSchedule {
	return &models.BackupSchedule{ID: scheduleID, Frequency: models.FrequencyDaily}
}

// GetSchedule returns the persisted schedule, or a disabled daily default
func GetSchedule(ctx context.Context, db *gorm.DB) (*models.BackupSchedule, error) {
	var schedule models.BackupSchedule
	err := db.WithContext(ctx).First(&schedule, scheduleID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return defaultSchedule(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load backup schedule: %w", err)
	}
	return &schedule, nil
}

// UpdateSchedule validates and stores the schedule settings. Run history is kept.
func UpdateSchedule(ctx context.Context, db *gorm.DB, in ScheduleInput) (*models.BackupSchedule, error) {
	if err := validation.ValidateStruct(&in); err != nil {
		return nil, err
	}

	var schedule *models.BackupSchedule
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := lockSchedule(tx)
		if err != nil {
			return err
		}
		current.Enabled = in.Enabled
		current.Frequency = in.Frequency
		current.StartTime = in.StartTime
		current.UploadToCloud = in.UploadToCloud
		current.OwnerEmail = in.OwnerEmail
		if err := tx.Save(current).Error; err != nil {
			return fmt.Errorf("failed to save backup schedule: %w", err)
		}
		schedule = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return schedule, nil
}

func lockSchedule(tx *gorm.DB) (*models.BackupSchedule, error) {
	var schedule models.BackupSchedule
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&schedule, scheduleID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return defaultSchedule(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock backup schedule: %w", err)
	}
	return &schedule, nil
}

// RunScheduledBackup runs a backup when the schedule is due, or always with
// Force. The run is claimed under a row lock so concurrent checkers do not
// both back up.
func RunScheduledBackup(ctx context.Context, db *gorm.DB, opts ScheduleRunOptions) (*ScheduleRunResult, error) {
	now := opts.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	var schedule *models.BackupSchedule
	var previousRun *time.Time
	claimed := false
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := lockSchedule(tx)
		if err != nil {
			return err
		}
		schedule = current
		if !opts.Force && !current.Due(now) {
			return nil
		}
		previousRun = current.LastRunAt
		current.LastRunAt = &now
		if err := tx.Save(current).Error; err != nil {
			return fmt.Errorf("failed to claim scheduled backup: %w", err)
		}
		claimed = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !claimed {
		reason := "not due"
		if !schedule.Enabled {
			reason = "schedule disabled"
		}
		return &ScheduleRunResult{Ran: false, Reason: reason, Schedule: schedule}, nil
	}

	backupOpts := BackupOptions{
		Trigger:       models.BackupTriggerScheduled,
		UploadToCloud: schedule.UploadToCloud,
		Cloud:         opts.Cloud,
		LocalDir:      opts.LocalDir,
	}
	if schedule.UploadToCloud {
		owner, err := FindUserByEmail(ctx, db, schedule.OwnerEmail)
		if err != nil {
			logging.Warn().Err(err).Msg("failed to load schedule owner")
		}
		backupOpts.User = owner
	}

	result, backupErr := CreateBackup(ctx, db, backupOpts)

	status := models.ScheduleStatusSuccess
	var lastError *string
	if backupErr != nil {
		status = models.ScheduleStatusFailed
		msg := backupErr.Error()
		lastError = &msg
	} else if result.Cloud.Status == CloudFailed {
		msg := result.Cloud.Err.Error()
		lastError = &msg
	}
	schedule.LastStatus = &status
	schedule.LastError = lastError

	updates := map[string]interface{}{"last_status": status, "last_error": lastError}
	if backupErr != nil {
		// Release the claim so the next check retries instead of waiting a full interval
		schedule.LastRunAt = previousRun
		updates["last_run_at"] = previousRun
	}
	err = db.WithContext(ctx).Model(&models.BackupSchedule{}).Where("id = ?", schedule.ID).
		Updates(updates).Error
	if err != nil {
		logging.Error().Err(err).Msg("failed to record scheduled backup status")
	}

	if backupErr != nil {
		return nil, fmt.Errorf("scheduled backup failed: %w", backupErr)
	}

	return &ScheduleRunResult{
		Ran:      true,
		Filename: result.Filename,
		Cloud:    result.Cloud.Status,
		Schedule: schedule,
	}, nil
}
