// backup.go
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

package models

import (
	"time"
)

// Backup triggers
const (
	BackupTriggerManual    = "manual"
	BackupTriggerScheduled = "scheduled"
)

// BackupRecord is the history row written for every produced archive.
// It is not part of the snapshot and survives restores.
type BackupRecord struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Filename    string    `gorm:"size:255;not null" json:"filename"`
	SizeBytes   int64     `gorm:"not null" json:"sizeBytes"`
	Counts      JSON      `json:"counts"`
	Trigger     string    `gorm:"column:trigger_type;size:16;not null" json:"trigger"`
	InitiatedBy string    `gorm:"size:255" json:"initiatedBy"`
	CloudItemID *string   `gorm:"size:255" json:"cloudItemId,omitempty"`
	CloudWebURL *string   `gorm:"type:text" json:"cloudWebUrl,omitempty"`
	CloudError  *string   `gorm:"type:text" json:"cloudError,omitempty"`
	LocalPath   *string   `gorm:"size:1024" json:"localPath,omitempty"`
	CreatedAt   time.Time `gorm:"index" json:"createdAt"`
}

// TableName overrides the table name for BackupRecord
func (BackupRecord) TableName() string {
	return "backup_records"
}

// Schedule frequencies
const (
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
)

// Schedule run statuses
const (
	ScheduleStatusSuccess = "success"
	ScheduleStatusFailed  = "failed"
)

// BackupSchedule is the single persisted schedule record
type BackupSchedule struct {
	ID            uint64     `gorm:"primaryKey" json:"id"`
	Enabled       bool       `gorm:"not null;default:false" json:"enabled"`
	Frequency     string     `gorm:"size:16;not null;default:daily" json:"frequency" validate:"required,oneof=daily weekly monthly"`
	StartTime     *time.Time `json:"startTime,omitempty"`
	UploadToCloud bool       `gorm:"not null;default:false" json:"uploadToCloud"`
	OwnerEmail    string     `gorm:"size:255" json:"ownerEmail" validate:"omitempty,email"`
	LastRunAt     *time.Time `json:"lastRunAt,omitempty"`
	LastStatus    *string    `gorm:"size:16" json:"lastStatus,omitempty"`
	LastError     *string    `gorm:"type:text" json:"lastError,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// TableName overrides the table name for BackupSchedule
func (BackupSchedule) TableName() string {
	return "backup_schedules"
}

// Interval returns the time between runs for the configured frequency
func (s *BackupSchedule) Interval() time.Duration {
	switch s.Frequency {
	case FrequencyWeekly:
		return 7 * 24 * time.Hour
	case FrequencyMonthly:
		return 30 * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}

// Due reports whether a scheduled backup should run at now
func (s *BackupSchedule) Due(now time.Time) bool {
	if !s.Enabled {
		return false
	}
	if s.StartTime != nil && now.Before(*s.StartTime) {
		return false
	}
	if s.LastRunAt == nil {
		return true
	}
	return now.Sub(*s.LastRunAt) >= s.Interval()
}
