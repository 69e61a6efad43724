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

package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/localnerve/vexpm/internal/clouddrive"
	"github.com/localnerve/vexpm/internal/logging"
	"github.com/localnerve/vexpm/internal/metrics"
	"github.com/localnerve/vexpm/internal/models"
	"github.com/localnerve/vexpm/internal/snapshot"
	"gorm.io/gorm"
)

// CloudStatus is the result kind of the optional upload step
type CloudStatus string

const (
	CloudSkipped  CloudStatus = "skipped"
	CloudUploaded CloudStatus = "uploaded"
	CloudFailed   CloudStatus = "failed"
)

// CloudOutcome is the explicit result of the upload step. Exactly one of
// Reason, Item or Err is meaningful, chosen by Status.
type CloudOutcome struct {
	Status CloudStatus
	Reason string
	Item   *clouddrive.Item
	Err    error
}

// BackupOptions configures one backup run
type BackupOptions struct {
	Trigger       string       // models.BackupTriggerManual or models.BackupTriggerScheduled
	User          *models.User // operating user, may be nil
	UploadToCloud bool
	Cloud         CloudDrive // nil when no drive is configured
	LocalDir      string     // when set the archive is also written here
}

// BackupResult is a produced archive
type BackupResult struct {
	Filename string
	Archive  []byte
	Document *snapshot.Document
	Cloud    CloudOutcome
	Record   *models.BackupRecord
}

// CreateBackup captures a snapshot, archives it and optionally uploads it.
// A failed upload never fails the backup.
func CreateBackup(ctx context.Context, db *gorm.DB, opts BackupOptions) (*BackupResult, error) {
	if opts.Trigger == "" {
		opts.Trigger = models.BackupTriggerManual
	}
	start := time.Now()

	result, err := buildArchive(ctx, db)
	if err != nil {
		metrics.BackupsTotal.WithLabelValues(opts.Trigger, "failure").Inc()
		return nil, err
	}
	metrics.BackupDuration.WithLabelValues(opts.Trigger).Observe(time.Since(start).Seconds())

	result.Cloud = uploadArchive(ctx, opts, result.Filename, result.Archive)
	metrics.CloudUploads.WithLabelValues(string(result.Cloud.Status)).Inc()

	record := &models.BackupRecord{
		Filename:  result.Filename,
		SizeBytes: int64(len(result.Archive)),
		Trigger:   opts.Trigger,
	}
	if opts.User != nil {
		record.InitiatedBy = opts.User.Email
	}

	switch result.Cloud.Status {
	case CloudUploaded:
		record.CloudItemID = &result.Cloud.Item.ID
		record.CloudWebURL = &result.Cloud.Item.WebURL
		logging.Info().Str("filename", result.Filename).Str("item", result.Cloud.Item.ID).Msg("backup uploaded to cloud drive")
	case CloudFailed:
		msg := result.Cloud.Err.Error()
		record.CloudError = &msg
		logging.Warn().Err(result.Cloud.Err).Str("filename", result.Filename).Msg("cloud upload failed, returning local archive")
	case CloudSkipped:
		if opts.UploadToCloud {
			logging.Info().Str("reason", result.Cloud.Reason).Msg("cloud upload skipped")
		}
	}

	if opts.LocalDir != "" {
		path, err := writeLocal(opts.LocalDir, result.Filename, result.Archive)
		if err != nil {
			metrics.BackupsTotal.WithLabelValues(opts.Trigger, "failure").Inc()
			return nil, err
		}
		record.LocalPath = &path
	}

	if record.Counts, err = models.NewJSON(result.Document.Metadata.Counts); err != nil {
		return nil, fmt.Errorf("failed to encode backup counts: %w", err)
	}
	if err := db.WithContext(ctx).Create(record).Error; err != nil {
		logging.Error().Err(err).Str("filename", result.Filename).Msg("failed to record backup history")
	} else {
		result.Record = record
	}

	metrics.BackupsTotal.WithLabelValues(opts.Trigger, "success").Inc()
	metrics.BackupSizeBytes.Set(float64(len(result.Archive)))

	logging.Info().
		Str("filename", result.Filename).
		Str("trigger", opts.Trigger).
		Int("bytes", len(result.Archive)).
		Str("cloud", string(result.Cloud.Status)).
		Dur("elapsed", time.Since(start)).
		Msg("backup created")

	return result, nil
}

func buildArchive(ctx context.Context, db *gorm.DB) (*BackupResult, error) {
	doc, err := CaptureSnapshot(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("snapshot failed: %w", err)
	}

	archive, err := snapshot.WriteArchive(doc)
	if err != nil {
		return nil, err
	}

	return &BackupResult{
		Filename: snapshot.Filename(doc.Metadata.CreatedAt),
		Archive:  archive,
		Document: doc,
	}, nil
}

// uploadArchive only calls the drive for users signed in through Azure AD
// with an unexpired token.
func uploadArchive(ctx context.Context, opts BackupOptions, filename string, archive []byte) CloudOutcome {
	if !opts.UploadToCloud {
		return CloudOutcome{Status: CloudSkipped, Reason: "upload not requested"}
	}
	if opts.Cloud == nil {
		return CloudOutcome{Status: CloudSkipped, Reason: "cloud drive not configured"}
	}
	if opts.User == nil {
		return CloudOutcome{Status: CloudSkipped, Reason: "no operating user"}
	}
	token, ok := opts.User.CloudToken(time.Now())
	if !ok {
		return CloudOutcome{Status: CloudSkipped, Reason: "user has no azure-ad access token"}
	}

	item, err := opts.Cloud.Upload(ctx, token, filename, archive)
	if err != nil {
		return CloudOutcome{Status: CloudFailed, Err: err}
	}
	return CloudOutcome{Status: CloudUploaded, Item: item}
}

func writeLocal(dir, filename string, archive []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, archive, 0o640); err != nil {
		return "", fmt.Errorf("failed to write backup file: %w", err)
	}
	return path, nil
}

// ListBackupRecords returns the most recent backup history rows
func ListBackupRecords(ctx context.Context, db *gorm.DB, limit int) ([]models.BackupRecord, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	var records []models.BackupRecord
	if err := db.WithContext(ctx).Order("created_at DESC, id DESC").Limit(limit).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list backup records: %w", err)
	}
	return records, nil
}
