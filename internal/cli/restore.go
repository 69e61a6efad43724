// restore.go
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

package cli

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/localnerve/vexpm/internal/services"
	"github.com/spf13/cobra"
)

func newRestoreCmd(env *Env) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "restore FILE",
		Short: "Replace every entity table with the contents of a backup archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			archive, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}

			if !yes {
				fmt.Fprint(cmd.OutOrStdout(), "This deletes all current project data. Type 'yes' to continue: ")
				answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if strings.TrimSpace(answer) != "yes" {
					return fmt.Errorf("restore cancelled")
				}
			}

			db, cfg, closeDB, err := env.Open()
			if err != nil {
				return err
			}
			defer closeDB()

			result, err := services.RestoreBackup(cmd.Context(), db, archive, services.RestoreOptions{
				Source:        services.RestoreSourceCLI,
				Transactional: cfg.RestoreTransactional,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, result.Message)
			keys := make([]string, 0, len(result.RestoredCounts))
			for k := range result.RestoredCounts {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(w, "  %-20s %d\n", k, result.RestoredCounts[k])
			}
			if !result.Success {
				return fmt.Errorf("restore verification failed")
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}
