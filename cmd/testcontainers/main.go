// main.go
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

package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/localnerve/vexpm/internal/logging"
	"github.com/localnerve/vexpm/internal/testutil"
)

func main() {
	var showHelp bool
	flag.BoolVar(&showHelp, "h", false, "show help")
	var envFilename string
	flag.StringVar(&envFilename, "f", "", "path to the .env file")
	flag.Parse()

	usage := `
Run the vexpm testcontainers (MariaDB and Authorizer) with the environment variables from the .env file.

Usage:

testcontainers [-h] [-f ENV_FILE_PATH]

ENV_FILE_PATH: path to the .env file

example
  testcontainers -f /path/to/something/.env
`
	// if -h flag print usage and return
	if showHelp {
		fmt.Println(usage)
		return
	}

	if envFilename != "" {
		logging.Info().Str("file", envFilename).Msg("loading environment variables")
		if err := godotenv.Load(envFilename); err != nil {
			logging.Fatal().Err(err).Msg("failed to load environment variables")
		}
	} else {
		logging.Info().Msg("no environment file specified, using current environment variables")
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGTSTP, syscall.SIGQUIT)

	ready := make(chan *testutil.TestContainers, 1)
	go func() {
		containers, err := testutil.CreateTestContainers(nil, true)
		if err != nil {
			logging.Fatal().Err(err).Msg("failed to create test containers")
		}
		ready <- containers
	}()

	var containers *testutil.TestContainers
	select {
	case containers = <-ready:
		fmt.Printf("DB_TYPE=mysql\nDB_HOST=%s\nDB_PORT=%s\nDB_DATABASE=%s\nDB_USER=%s\nDB_PASSWORD=%s\nAUTHZ_URL=%s\n",
			containers.DBHost, containers.DBPort, containers.DBDatabase, containers.DBUser, containers.DBPassword, containers.AuthzURL)
	case sig := <-sigs:
		logging.Info().Str("signal", sig.String()).Msg("interrupted before containers were ready")
		return
	}

	sig := <-sigs
	logging.Info().Str("signal", sig.String()).Msg("terminating test containers")
	containers.Terminate(nil)
}
