// config_test.go
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

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DB_DATABASE", "vex")
	t.Setenv("DB_USER", "vex")
	t.Setenv("AUTHZ_URL", "http://authorizer:8080")
	t.Setenv("AUTHZ_CLIENT_ID", "client")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "mysql", cfg.DBType)
	assert.Equal(t, "https://graph.microsoft.com/v1.0", cfg.GraphBaseURL)
	assert.Equal(t, "VEX-Backups", cfg.BackupFolderName)
	assert.Equal(t, 15*time.Minute, cfg.ScheduleCheckInterval)
	assert.False(t, cfg.RestoreTransactional)
	assert.True(t, cfg.GraphEnabled)
	assert.Equal(t, "http://localhost:3000", cfg.AuthzRedirectURL)
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("GRAPH_BASE_URL", "http://graph.local/v1.0/")
	t.Setenv("RESTORE_TRANSACTIONAL", "true")
	t.Setenv("SCHEDULE_CHECK_INTERVAL", "5m")
	t.Setenv("SHAREPOINT_SITE_ID", "site-1")
	t.Setenv("DB_CONNECTION_LIMIT", "not-a-number")
	t.Setenv("GRAPH_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://graph.local/v1.0", cfg.GraphBaseURL)
	assert.True(t, cfg.RestoreTransactional)
	assert.Equal(t, 5*time.Minute, cfg.ScheduleCheckInterval)
	assert.Equal(t, "site-1", cfg.SharePointSiteID)
	assert.Equal(t, 5, cfg.DBConnectionLimit)
	assert.False(t, cfg.GraphEnabled)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"missing database", func(c *Config) { c.DBDatabase = "" }, "DB_DATABASE is required"},
		{"missing user", func(c *Config) { c.DBUser = "" }, "DB_USER is required"},
		{"sqlite needs no user", func(c *Config) { c.DBType = "sqlite"; c.DBUser = "" }, ""},
		{"missing authorizer", func(c *Config) { c.AuthzURL = "" }, "AUTHZ_URL is required"},
		{"short interval", func(c *Config) { c.ScheduleCheckInterval = time.Second }, "SCHEDULE_CHECK_INTERVAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				DBType:                "mysql",
				DBDatabase:            "vex",
				DBUser:                "vex",
				AuthzURL:              "http://authorizer",
				AuthzClientID:         "client",
				ScheduleCheckInterval: time.Minute,
			}
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
