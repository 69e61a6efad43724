// connection_test.go
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

package database

import (
	"path/filepath"
	"testing"

	"github.com/localnerve/vexpm/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestDialector(t *testing.T) {
	tests := []struct {
		dbType string
		name   string
	}{
		{"mysql", "mysql"},
		{"mariadb", "mysql"},
		{"postgres", "postgres"},
		{"postgresql", "postgres"},
		{"sqlite", "sqlite"},
		{"sqlserver", "sqlserver"},
		{"mssql", "sqlserver"},
	}
	for _, tt := range tests {
		t.Run(tt.dbType, func(t *testing.T) {
			d, err := Dialector(&config.Config{DBType: tt.dbType, DBDatabase: "vexpm"})
			require.NoError(t, err)
			assert.Equal(t, tt.name, d.Name())
		})
	}

	_, err := Dialector(&config.Config{DBType: "oracle"})
	assert.EqualError(t, err, "unsupported database type: oracle")
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "vex.db?_pragma=foreign_keys(1)", SQLiteDSN("vex.db"))
	assert.Equal(t, "file:vex.db?mode=rwc&_pragma=foreign_keys(1)", SQLiteDSN("file:vex.db?mode=rwc"))
}

func TestNewLoggerLevels(t *testing.T) {
	for _, level := range []string{"silent", "error", "warn", "info", ""} {
		assert.NotNil(t, NewLogger(level).LogMode(logger.Silent), level)
	}
}

func TestConnectSQLiteAndMigrate(t *testing.T) {
	cfg := &config.Config{
		DBType:            "sqlite",
		DBDatabase:        filepath.Join(t.TempDir(), "vexpm.db"),
		DBConnectionLimit: 5,
		DBLogLevel:        "silent",
	}

	db, err := Connect(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)

	require.NoError(t, AutoMigrate(db))
	for _, table := range []string{"users", "projects", "milestones", "calendar_events", "backup_records", "backup_schedules"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}

	var fk int
	require.NoError(t, db.Raw("PRAGMA foreign_keys").Scan(&fk).Error)
	assert.Equal(t, 1, fk)
}
