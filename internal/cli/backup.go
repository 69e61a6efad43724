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

package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/localnerve/vexpm/internal/models"
	"github.com/localnerve/vexpm/internal/services"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newBackupCmd(env *Env) *cobra.Command {
	var (
		out    string
		upload bool
		as     string
	)

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write a backup archive of every entity table",
		RunE: func(cmd *cobra.Command, args []string) error {
			if upload && as == "" {
				return fmt.Errorf("--upload requires --as EMAIL")
			}

			db, cfg, closeDB, err := env.Open()
			if err != nil {
				return err
			}
			defer closeDB()

			opts := services.BackupOptions{Trigger: models.BackupTriggerManual, UploadToCloud: upload}
			if upload {
				user, err := services.FindUserByEmail(cmd.Context(), db, as)
				if err != nil {
					return err
				}
				if user == nil {
					return fmt.Errorf("no user with email %s", as)
				}
				opts.User = user
				opts.Cloud = env.Cloud(cfg)
			}

			result, err := services.CreateBackup(cmd.Context(), db, opts)
			if err != nil {
				return err
			}

			path := out
			if path == "" {
				path = result.Filename
			} else if info, err := os.Stat(path); err == nil && info.IsDir() {
				path = filepath.Join(path, result.Filename)
			}
			if err := os.WriteFile(path, result.Archive, 0o600); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "wrote %s (%d bytes)\n", path, len(result.Archive))
			switch result.Cloud.Status {
			case services.CloudUploaded:
				fmt.Fprintf(w, "uploaded %s\n", result.Cloud.Item.WebURL)
			case services.CloudFailed:
				fmt.Fprintf(w, "upload failed: %v\n", result.Cloud.Err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "archive path or directory (default ./<generated name>)")
	cmd.Flags().BoolVar(&upload, "upload", false, "also upload the archive to SharePoint")
	cmd.Flags().StringVar(&as, "as", "", "email of the user whose Azure AD token uploads")
	return cmd
}

func newHistoryCmd(env *Env) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent backups",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, closeDB, err := env.Open()
			if err != nil {
				return err
			}
			defer closeDB()

			records, err := services.ListBackupRecords(cmd.Context(), db, limit)
			if err != nil {
				return err
			}

			tw := tablewriter.NewWriter(cmd.OutOrStdout())
			tw.SetHeader([]string{"ID", "CREATED_AT", "FILENAME", "TRIGGER", "BY", "SIZE", "CLOUD"})
			for _, r := range records {
				tw.Append([]string{
					fmt.Sprintf("%d", r.ID),
					r.CreatedAt.UTC().Format(time.RFC3339),
					r.Filename,
					r.Trigger,
					r.InitiatedBy,
					fmt.Sprintf("%d", r.SizeBytes),
					cloudColumn(r),
				})
			}
			tw.Render()
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum records")
	return cmd
}

func cloudColumn(r models.BackupRecord) string {
	switch {
	case r.CloudItemID != nil:
		return *r.CloudItemID
	case r.CloudError != nil:
		return "failed"
	default:
		return ""
	}
}
