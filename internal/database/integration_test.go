// integration_test.go
//
// Backup and restore against a real MariaDB server
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

package database_test

import (
	"context"
	"testing"

	"github.com/localnerve/vexpm/internal/config"
	"github.com/localnerve/vexpm/internal/database"
	"github.com/localnerve/vexpm/internal/models"
	"github.com/localnerve/vexpm/internal/services"
	"github.com/localnerve/vexpm/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBackupRestoreWithMariaDB runs the backup pipeline against the
// embedded MariaDB schema
func TestBackupRestoreWithMariaDB(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	containers, err := testutil.CreateTestContainers(t, false)
	require.NoError(t, err)
	t.Cleanup(func() { containers.Terminate(t) })

	cfg := &config.Config{
		DBType:            "mysql",
		DBHost:            containers.DBHost,
		DBPort:            containers.DBPort,
		DBDatabase:        containers.DBDatabase,
		DBUser:            containers.DBUser,
		DBPassword:        containers.DBPassword,
		DBConnectionLimit: 5,
		DBLogLevel:        "silent",
	}

	db, err := database.Connect(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	// The schema comes from the init SQL; migrating over it must be a no-op
	require.NoError(t, database.AutoMigrate(db))

	fixture := testutil.Seed(t, db)
	ctx := context.Background()

	backup, err := services.CreateBackup(ctx, db, services.BackupOptions{})
	require.NoError(t, err)
	assert.Equal(t, fixture.Counts(), backup.Document.Metadata.Counts)

	require.NoError(t, db.Model(&models.Project{}).Where("id = ?", testutil.ProjectAID).Update("name", "Renamed").Error)
	require.NoError(t, db.Where("project_id = ?", testutil.ProjectBID).Delete(&models.Milestone{}).Error)

	for _, transactional := range []bool{false, true} {
		result, err := services.RestoreBackup(ctx, db, backup.Archive, services.RestoreOptions{Transactional: transactional})
		require.NoError(t, err)
		assert.True(t, result.Success, result.Message)
		assert.Equal(t, fixture.Counts(), result.RestoredCounts)
		assert.Equal(t, []string{"Annex Fit-out", "Depot Renovation"}, result.Projects)
	}

	health := services.HealthCheck(ctx, cfg, db)
	assert.Equal(t, "ok", health.Database)
}
