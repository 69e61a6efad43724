// verify.go
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

package services

import (
	"context"
	"fmt"

	"github.com/localnerve/vexpm/internal/models"
	"github.com/localnerve/vexpm/internal/snapshot"
	"gorm.io/gorm"
)

// RestoreResult reports the outcome of a restore after the data was loaded
type RestoreResult struct {
	Success        bool             `json:"success"`
	Message        string           `json:"message"`
	RestoredCounts map[string]int64 `json:"restoredCounts"`
	Projects       []string         `json:"projects,omitempty"`
}

// CountEntities counts the rows of every entity table
func CountEntities(ctx context.Context, db *gorm.DB) (map[string]int64, error) {
	tables := []struct {
		key   string
		model interface{}
	}{
		{snapshot.KeyUsers, &models.User{}},
		{snapshot.KeyTemplates, &models.ProjectTemplate{}},
		{snapshot.KeyTemplateMilestones, &models.TemplateMilestone{}},
		{snapshot.KeyProjects, &models.Project{}},
		{snapshot.KeyMilestones, &models.Milestone{}},
		{snapshot.KeyFiles, &models.ProjectFile{}},
		{snapshot.KeyCommunications, &models.Communication{}},
		{snapshot.KeyComments, &models.MilestoneComment{}},
		{snapshot.KeyStatusChanges, &models.StatusChange{}},
		{snapshot.KeyCalendarEvents, &models.CalendarEvent{}},
	}

	counts := make(map[string]int64, len(tables))
	for _, t := range tables {
		var n int64
		if err := db.WithContext(ctx).Model(t.model).Count(&n).Error; err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", t.key, err)
		}
		counts[t.key] = n
	}
	return counts, nil
}

// VerifyRestore re-counts the restored tables and compares projects with the
// count recorded in the document. A mismatch is reported, not rolled back.
func VerifyRestore(ctx context.Context, db *gorm.DB, doc *snapshot.Document) (*RestoreResult, error) {
	counts, err := CountEntities(ctx, db)
	if err != nil {
		return nil, err
	}

	if expected, ok := doc.Metadata.ExpectedCount(snapshot.KeyProjects); ok && expected != counts[snapshot.KeyProjects] {
		return &RestoreResult{
			Success:        false,
			Message:        fmt.Sprintf("Restore verification failed: expected %d projects, found %d", expected, counts[snapshot.KeyProjects]),
			RestoredCounts: counts,
		}, nil
	}

	var names []string
	if err := db.WithContext(ctx).Model(&models.Project{}).Order("name").Pluck("name", &names).Error; err != nil {
		return nil, fmt.Errorf("failed to list restored projects: %w", err)
	}

	return &RestoreResult{
		Success:        true,
		Message:        "Database restored successfully",
		RestoredCounts: counts,
		Projects:       names,
	}, nil
}
