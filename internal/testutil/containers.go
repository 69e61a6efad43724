// containers.go
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

package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	_ "github.com/go-sql-driver/mysql"
	"github.com/localnerve/vexpm/data"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/network"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Defaults used when the environment does not name them
const (
	defaultDBImage      = "mariadb:11.4"
	defaultDBPort       = "3306"
	defaultRootPassword = "vexpm-root"
	defaultDatabase     = "vexpm"
	defaultUser         = "vexpm"
	defaultPassword     = "vexpm-pass"
	defaultAuthzPort    = "8080"
	defaultAuthzDB      = "authorizer"
)

// TestContainers is a running MariaDB and, optionally, an Authorizer
type TestContainers struct {
	Network             *testcontainers.DockerNetwork
	DBContainer         testcontainers.Container
	AuthorizerContainer testcontainers.Container

	// DBHost and DBPort reach the database from the host
	DBHost     string
	DBPort     string
	DBDatabase string
	DBUser     string
	DBPassword string

	// AuthzURL reaches the Authorizer from the host, when started
	AuthzURL string
}

// Terminate stops every started container and removes the network
func (tc *TestContainers) Terminate(t *testing.T) {
	ctx := context.Background()
	if tc.AuthorizerContainer != nil {
		if err := tc.AuthorizerContainer.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate Authorizer: %v", err)
		}
	}
	if tc.DBContainer != nil {
		if err := tc.DBContainer.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate MariaDB: %v", err)
		}
	}
	if tc.Network != nil {
		if err := tc.Network.Remove(ctx); err != nil {
			logMessage(t, "Failed to remove network: %v", err)
		}
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// CreateTestContainers starts MariaDB, loads the embedded schema and, when
// withAuthorizer is set, an Authorizer backed by the same server.
// A nil t logs to stdout and exits on failure.
func CreateTestContainers(t *testing.T, withAuthorizer bool) (*TestContainers, error) {
	ctx := context.Background()
	tc := &TestContainers{
		DBDatabase: envOr("DB_DATABASE", defaultDatabase),
		DBUser:     envOr("DB_USER", defaultUser),
		DBPassword: envOr("DB_PASSWORD", defaultPassword),
	}
	rootPassword := envOr("DB_ROOT_PASSWORD", defaultRootPassword)

	nw, err := network.New(ctx)
	if err != nil {
		exitWithError(t, err, "Failed to create network")
		return nil, err
	}
	tc.Network = nw
	networkName := nw.Name
	dbNetworkName := "mariadb"

	tcpDbPort, err := nat.NewPort("tcp", envOr("DB_PORT", defaultDBPort))
	if err != nil {
		tc.Terminate(t)
		exitWithError(t, err, "Failed to create DB port")
		return nil, err
	}

	dbContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        envOr("DB_IMAGE", defaultDBImage),
			ExposedPorts: []string{string(tcpDbPort)},
			Env: map[string]string{
				"MARIADB_ROOT_PASSWORD": rootPassword,
			},
			WaitingFor: wait.ForListeningPort(tcpDbPort).WithStartupTimeout(90 * time.Second),
			Networks:   []string{networkName},
			NetworkAliases: map[string][]string{
				networkName: {dbNetworkName},
			},
		},
		Started: true,
	})
	if err != nil {
		tc.Terminate(t)
		exitWithError(t, err, "Failed to start MariaDB")
		return nil, err
	}
	tc.DBContainer = dbContainer

	dbHost, _ := dbContainer.Host(ctx)
	dbPort, _ := dbContainer.MappedPort(ctx, tcpDbPort)
	tc.DBHost = dbHost
	tc.DBPort = dbPort.Port()

	if err := performMySqlDBInit(tc, rootPassword); err != nil {
		tc.Terminate(t)
		exitWithError(t, err, "Failed to initialize database")
		return nil, err
	}
	logMessage(t, "DB_HOST=%s DB_PORT=%s", tc.DBHost, tc.DBPort)

	if !withAuthorizer {
		return tc, nil
	}

	authzPortNumber := envOr("AUTHZ_PORT", defaultAuthzPort)
	tcpAuthzPort, err := nat.NewPort("tcp", authzPortNumber)
	if err != nil {
		tc.Terminate(t)
		exitWithError(t, err, "Failed to create Authorizer port")
		return nil, err
	}
	authzDatabase := envOr("AUTHZ_DATABASE", defaultAuthzDB)
	authorizerContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        envOr("AUTHZ_IMAGE", "lakhansamani/authorizer:latest"),
			ExposedPorts: []string{string(tcpAuthzPort)},
			Env: map[string]string{
				"ENV":           "production",
				"CLIENT_ID":     envOr("AUTHZ_CLIENT_ID", "vexpm"),
				"PORT":          authzPortNumber,
				"DATABASE_TYPE": "mariadb",
				"DATABASE_NAME": authzDatabase,
				"DATABASE_URL":  fmt.Sprintf("root:%s@tcp(%s:%s)/%s", rootPassword, dbNetworkName, tcpDbPort.Port(), authzDatabase),
				"ADMIN_SECRET":  envOr("AUTHZ_ADMIN_SECRET", "vexpm-admin"),
				"ROLES":         "admin,user",
				"DEFAULT_ROLES": "user",
				"LOG_LEVEL":     envOr("AUTHZ_LOG_LEVEL", "info"),
			},
			WaitingFor: wait.ForLog("Authorizer running at PORT:").WithStartupTimeout(30 * time.Second),
			Networks:   []string{networkName},
			NetworkAliases: map[string][]string{
				networkName: {"authorizer"},
			},
		},
		Started: true,
	})
	if err != nil {
		tc.Terminate(t)
		exitWithError(t, err, "Failed to start Authorizer")
		return nil, err
	}
	tc.AuthorizerContainer = authorizerContainer

	authzHost, _ := authorizerContainer.Host(ctx)
	authzPort, _ := authorizerContainer.MappedPort(ctx, tcpAuthzPort)
	tc.AuthzURL = fmt.Sprintf("http://%s:%s", authzHost, authzPort.Port())
	logMessage(t, "AUTHZ_URL=%s", tc.AuthzURL)

	return tc, nil
}

func performMySqlDBInit(tc *TestContainers, rootPassword string) error {
	root, err := sql.Open("mysql", fmt.Sprintf("root:%s@tcp(%s:%s)/", rootPassword, tc.DBHost, tc.DBPort))
	if err != nil {
		return fmt.Errorf("failed to connect to MariaDB for setup: %w", err)
	}
	defer root.Close()

	// The port opens before the server accepts logins
	for i := 0; i < 30; i++ {
		err = root.Ping()
		if err == nil {
			break
		}
		time.Sleep(1 * time.Second)
	}
	if err != nil {
		return fmt.Errorf("MariaDB not ready after 30 seconds: %w", err)
	}

	stmts := []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", tc.DBDatabase),
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", envOr("AUTHZ_DATABASE", defaultAuthzDB)),
		fmt.Sprintf("CREATE USER IF NOT EXISTS '%s'@'%%' IDENTIFIED BY '%s'", tc.DBUser, tc.DBPassword),
	}
	for _, stmt := range stmts {
		if _, err := root.Exec(stmt); err != nil {
			return fmt.Errorf("%w : when executing > %s", err, stmt)
		}
	}

	schema, err := sql.Open("mysql", fmt.Sprintf("root:%s@tcp(%s:%s)/%s", rootPassword, tc.DBHost, tc.DBPort, tc.DBDatabase))
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", tc.DBDatabase, err)
	}
	defer schema.Close()

	if err := executeSQL(schema, data.InitdbMariaDBTables); err != nil {
		return fmt.Errorf("failed to execute tables init sql: %w", err)
	}
	if err := executeSQL(schema, data.MariaDBPrivileges(tc.DBDatabase, tc.DBUser)); err != nil {
		return fmt.Errorf("failed to execute privileges init sql: %w", err)
	}
	return nil
}

// executeSQL runs a script of semicolon terminated statements, ignoring -- comments
func executeSQL(db *sql.DB, script string) error {
	lines := strings.Split(script, "\n")

	var ncls []string
	for _, l := range lines {
		ncls = append(ncls, excludeComment(l))
	}

	queries := strings.Split(strings.Join(ncls, "\n"), ";")
	for _, q := range queries {
		if strings.TrimSpace(q) == "" {
			continue
		}
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("%s : when executing > %s", err.Error(), q)
		}
	}
	return nil
}

// excludeComment strips a trailing -- comment that is not inside quotes
func excludeComment(line string) string {
	d := "\""
	s := "'"
	c := "--"

	var nc string
	ck := line
	mx := len(line) + 1

	for {
		if len(ck) == 0 {
			return nc
		}

		di := strings.Index(ck, d)
		si := strings.Index(ck, s)
		ci := strings.Index(ck, c)

		if di < 0 {
			di = mx
		}
		if si < 0 {
			si = mx
		}
		if ci < 0 {
			ci = mx
		}

		var ei int

		if di < si && di < ci {
			nc += ck[:di+1]
			ck = ck[di+1:]
			ei = strings.Index(ck, d)
		} else if si < di && si < ci {
			nc += ck[:si+1]
			ck = ck[si+1:]
			ei = strings.Index(ck, s)
		} else if ci < di && ci < si {
			return nc + ck[:ci]
		} else {
			return nc + ck
		}

		if ei < 0 {
			return nc + ck
		}
		nc += ck[:ei+1]
		ck = ck[ei+1:]
	}
}

func exitWithError(t *testing.T, err error, msg string) {
	if t != nil {
		t.Fatalf(msg+": %v", err)
	} else {
		fmt.Printf(msg+": %v\n", err)
		os.Exit(1)
	}
}

func logMessage(t *testing.T, format string, args ...any) {
	if t != nil {
		t.Logf(format, args...)
	} else {
		fmt.Printf(format+"\n", args...)
	}
}
