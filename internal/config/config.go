// config.go
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
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port string

	// Database configuration
	DBType            string // mysql, postgres, sqlite, sqlserver
	DBHost            string
	DBPort            string
	DBDatabase        string
	DBUser            string
	DBPassword        string
	DBConnectionLimit int
	DBLogLevel        string // silent, error, warn, info

	// Logging configuration
	LogLevel  string
	LogFormat string

	// Authorizer configuration
	AuthzURL         string
	AuthzClientID    string
	AuthzRedirectURL string

	// Microsoft Graph (SharePoint/OneDrive) configuration
	GraphEnabled      bool
	GraphBaseURL      string
	SharePointSiteID  string
	SharePointDriveID string
	BackupFolderName  string

	// Backup pipeline configuration
	BackupDir             string
	RestoreTransactional  bool
	ScheduleCheckInterval time.Duration
}

// Load loads configuration from environment variables.
// A .env file in the working directory is read first when present.
func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	port := getEnv("PORT", "3000")

	cfg := &Config{
		Port:                  port,
		DBType:                getEnv("DB_TYPE", "mysql"),
		DBHost:                getEnv("DB_HOST", "localhost"),
		DBPort:                getEnv("DB_PORT", "3306"),
		DBDatabase:            getEnv("DB_DATABASE", ""),
		DBUser:                getEnv("DB_USER", ""),
		DBPassword:            getEnv("DB_PASSWORD", ""),
		DBConnectionLimit:     getEnvAsInt("DB_CONNECTION_LIMIT", 5),
		DBLogLevel:            getEnv("DB_LOG_LEVEL", "warn"),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogFormat:             getEnv("LOG_FORMAT", "json"),
		AuthzURL:              getEnv("AUTHZ_URL", ""),
		AuthzClientID:         getEnv("AUTHZ_CLIENT_ID", ""),
		AuthzRedirectURL:      getEnv("AUTHZ_REDIRECT_URL", "http://localhost:"+port),
		GraphEnabled:          getEnvAsBool("GRAPH_ENABLED", true),
		GraphBaseURL:          strings.TrimSuffix(getEnv("GRAPH_BASE_URL", "https://graph.microsoft.com/v1.0"), "/"),
		SharePointSiteID:      getEnv("SHAREPOINT_SITE_ID", ""),
		SharePointDriveID:     getEnv("SHAREPOINT_DRIVE_ID", ""),
		BackupFolderName:      getEnv("BACKUP_FOLDER_NAME", "VEX-Backups"),
		BackupDir:             getEnv("BACKUP_DIR", "backups"),
		RestoreTransactional:  getEnvAsBool("RESTORE_TRANSACTIONAL", false),
		ScheduleCheckInterval: getEnvAsDuration("SCHEDULE_CHECK_INTERVAL", 15*time.Minute),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the fields the service cannot start without
func (c *Config) Validate() error {
	if c.DBDatabase == "" {
		return fmt.Errorf("DB_DATABASE is required")
	}
	if c.DBType != "sqlite" && c.DBUser == "" {
		return fmt.Errorf("DB_USER is required")
	}
	if c.AuthzURL == "" {
		return fmt.Errorf("AUTHZ_URL is required")
	}
	if c.AuthzClientID == "" {
		return fmt.Errorf("AUTHZ_CLIENT_ID is required")
	}
	if c.ScheduleCheckInterval < time.Minute {
		return fmt.Errorf("SCHEDULE_CHECK_INTERVAL must be at least 1m, got %s", c.ScheduleCheckInterval)
	}
	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
