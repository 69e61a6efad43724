// schedule_test.go
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

package services_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/localnerve/vexpm/internal/models"
	"github.com/localnerve/vexpm/internal/services"
	"github.com/localnerve/vexpm/internal/testutil"
	"github.com/localnerve/vexpm/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetScheduleDefault(t *testing.T) {
	db := testutil.NewDB(t)

	schedule, err := services.GetSchedule(context.Background(), db)
	require.NoError(t, err)
	assert.False(t, schedule.Enabled)
	assert.Equal(t, models.FrequencyDaily, schedule.Frequency)
	assert.Nil(t, schedule.LastRunAt)
}

func TestUpdateScheduleValidates(t *testing.T) {
	db := testutil.NewDB(t)

	_, err := services.UpdateSchedule(context.Background(), db, services.ScheduleInput{Frequency: "hourly"})
	var ve *validation.RequestValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "Frequency", ve.Fields[0].Field)

	_, err = services.UpdateSchedule(context.Background(), db, services.ScheduleInput{Frequency: "daily", OwnerEmail: "not-an-email"})
	require.True(t, errors.As(err, &ve))
}

func TestUpdateSchedulePersistsAndKeepsHistory(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()

	_, err := services.UpdateSchedule(ctx, db, services.ScheduleInput{Enabled: true, Frequency: models.FrequencyDaily})
	require.NoError(t, err)

	now := time.Date(2026, 4, 1, 2, 0, 0, 0, time.UTC)
	run, err := services.RunScheduledBackup(ctx, db, services.ScheduleRunOptions{Now: now})
	require.NoError(t, err)
	require.True(t, run.Ran)

	updated, err := services.UpdateSchedule(ctx, db, services.ScheduleInput{
		Enabled:       true,
		Frequency:     models.FrequencyWeekly,
		UploadToCloud: true,
		OwnerEmail:    testutil.AdminEmail,
	})
	require.NoError(t, err)
	assert.Equal(t, models.FrequencyWeekly, updated.Frequency)
	require.NotNil(t, updated.LastRunAt)
	assert.True(t, now.Equal(*updated.LastRunAt))

	stored, err := services.GetSchedule(ctx, db)
	require.NoError(t, err)
	assert.True(t, stored.UploadToCloud)
	assert.Equal(t, testutil.AdminEmail, stored.OwnerEmail)
	require.NotNil(t, stored.LastStatus)
	assert.Equal(t, models.ScheduleStatusSuccess, *stored.LastStatus)
}

func TestRunScheduledBackupDisabled(t *testing.T) {
	db := testutil.NewDB(t)

	run, err := services.RunScheduledBackup(context.Background(), db, services.ScheduleRunOptions{})
	require.NoError(t, err)
	assert.False(t, run.Ran)
	assert.Equal(t, "schedule disabled", run.Reason)

	var records int64
	require.NoError(t, db.Model(&models.BackupRecord{}).Count(&records).Error)
	assert.Zero(t, records)
}

func TestRunScheduledBackupHonoursInterval(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.Seed(t, db)
	ctx := context.Background()

	_, err := services.UpdateSchedule(ctx, db, services.ScheduleInput{Enabled: true, Frequency: models.FrequencyDaily})
	require.NoError(t, err)

	first := time.Date(2026, 4, 1, 2, 0, 0, 0, time.UTC)
	run, err := services.RunScheduledBackup(ctx, db, services.ScheduleRunOptions{Now: first})
	require.NoError(t, err)
	assert.True(t, run.Ran)
	assert.NotEmpty(t, run.Filename)
	assert.Equal(t, services.CloudSkipped, run.Cloud)

	run, err = services.RunScheduledBackup(ctx, db, services.ScheduleRunOptions{Now: first.Add(time.Hour)})
	require.NoError(t, err)
	assert.False(t, run.Ran)
	assert.Equal(t, "not due", run.Reason)

	run, err = services.RunScheduledBackup(ctx, db, services.ScheduleRunOptions{Now: first.Add(time.Hour), Force: true})
	require.NoError(t, err)
	assert.True(t, run.Ran)

	run, err = services.RunScheduledBackup(ctx, db, services.ScheduleRunOptions{Now: first.Add(26 * time.Hour)})
	require.NoError(t, err)
	assert.True(t, run.Ran)

	records, err := services.ListBackupRecords(ctx, db, 0)
	require.NoError(t, err)
	require.Len(t, records, 3)
	for _, r := range records {
		assert.Equal(t, models.BackupTriggerScheduled, r.Trigger)
	}
}

func TestRunScheduledBackupUploadsAsOwner(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.Seed(t, db)
	ctx := context.Background()
	drive := testutil.NewFakeDrive()

	_, err := services.UpdateSchedule(ctx, db, services.ScheduleInput{
		Enabled:       true,
		Frequency:     models.FrequencyMonthly,
		UploadToCloud: true,
		OwnerEmail:    testutil.AdminEmail,
	})
	require.NoError(t, err)

	run, err := services.RunScheduledBackup(ctx, db, services.ScheduleRunOptions{Cloud: drive})
	require.NoError(t, err)
	require.True(t, run.Ran)
	assert.Equal(t, services.CloudUploaded, run.Cloud)
	assert.Equal(t, []string{testutil.AdminToken}, drive.Tokens)
}

func TestRunScheduledBackupRecordsCloudFailure(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.Seed(t, db)
	ctx := context.Background()
	drive := testutil.NewFakeDrive()
	drive.UploadErr = errors.New("throttled")

	_, err := services.UpdateSchedule(ctx, db, services.ScheduleInput{
		Enabled:       true,
		Frequency:     models.FrequencyDaily,
		UploadToCloud: true,
		OwnerEmail:    testutil.AdminEmail,
	})
	require.NoError(t, err)

	run, err := services.RunScheduledBackup(ctx, db, services.ScheduleRunOptions{Cloud: drive})
	require.NoError(t, err)
	assert.True(t, run.Ran)
	assert.Equal(t, services.CloudFailed, run.Cloud)

	stored, err := services.GetSchedule(ctx, db)
	require.NoError(t, err)
	require.NotNil(t, stored.LastStatus)
	assert.Equal(t, models.ScheduleStatusSuccess, *stored.LastStatus)
	require.NotNil(t, stored.LastError)
	assert.Equal(t, "throttled", *stored.LastError)
}

func TestRunScheduledBackupFailureStaysDue(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.Seed(t, db)
	ctx := context.Background()

	_, err := services.UpdateSchedule(ctx, db, services.ScheduleInput{Enabled: true, Frequency: models.FrequencyDaily})
	require.NoError(t, err)

	first := time.Date(2026, 4, 1, 2, 0, 0, 0, time.UTC)
	run, err := services.RunScheduledBackup(ctx, db, services.ScheduleRunOptions{Now: first})
	require.NoError(t, err)
	require.True(t, run.Ran)

	// A regular file where the backup directory should be makes the local write fail
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	failedAt := first.Add(25 * time.Hour)
	run, err = services.RunScheduledBackup(ctx, db, services.ScheduleRunOptions{Now: failedAt, LocalDir: filepath.Join(blocker, "backups")})
	require.Error(t, err)
	assert.Nil(t, run)

	stored, err := services.GetSchedule(ctx, db)
	require.NoError(t, err)
	require.NotNil(t, stored.LastStatus)
	assert.Equal(t, models.ScheduleStatusFailed, *stored.LastStatus)
	require.NotNil(t, stored.LastError)
	require.NotNil(t, stored.LastRunAt)
	assert.True(t, first.Equal(*stored.LastRunAt), "got %v", stored.LastRunAt)
	assert.True(t, stored.Due(failedAt.Add(time.Minute)))

	run, err = services.RunScheduledBackup(ctx, db, services.ScheduleRunOptions{Now: failedAt.Add(15 * time.Minute)})
	require.NoError(t, err)
	assert.True(t, run.Ran)
}
