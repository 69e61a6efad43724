// inspect.go
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
	"fmt"
	"os"
	"time"

	"github.com/localnerve/vexpm/internal/snapshot"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect FILE",
		Short: "Validate a backup archive and print its contents without touching the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			archive, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}

			doc, err := snapshot.ReadArchive(archive)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "application: %s\nversion:     %s\ncreated:     %s\n",
				doc.Metadata.Application, doc.Metadata.Version, doc.Metadata.CreatedAt.UTC().Format(time.RFC3339))

			actual := doc.Data.Counts()
			tw := tablewriter.NewWriter(w)
			tw.SetHeader([]string{"ENTITY", "RECORDS", "METADATA"})
			for _, key := range snapshot.Keys {
				recorded := "-"
				if n, ok := doc.Metadata.ExpectedCount(key); ok {
					recorded = fmt.Sprintf("%d", n)
				}
				tw.Append([]string{key, fmt.Sprintf("%d", actual[key]), recorded})
			}
			tw.Render()
			return nil
		},
	}
}
