// projects.go
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
	"errors"
	"fmt"
	"time"

	"github.com/localnerve/vexpm/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// ErrNotFound is returned when a requested row does not exist
var ErrNotFound = errors.New("not found")

// ListProjects returns all projects with their milestones, optionally filtered by status
func ListProjects(ctx context.Context, db *gorm.DB, status string) ([]models.Project, error) {
	query := db.WithContext(ctx).Session(&gorm.Session{Logger: db.Logger.LogMode(logger.Silent)}).
		Preload("Milestones", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("sort_order, created_at")
		})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var projects []models.Project
	if err := query.Order("name").Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// GetProject returns one project with milestones, files and communications
func GetProject(ctx context.Context, db *gorm.DB, id string) (*models.Project, error) {
	var project models.Project
	err := db.WithContext(ctx).Session(&gorm.Session{Logger: db.Logger.LogMode(logger.Silent)}).
		Preload("Milestones", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("sort_order, created_at")
		}).
		Preload("Files", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("uploaded_at DESC")
		}).
		Preload("Communications", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("created_at DESC")
		}).
		Where("id = ?", id).
		First(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load project %s: %w", id, err)
	}
	return &project, nil
}

// UpdateMilestoneStatus changes a milestone's status and appends the audit
// row in the same transaction. Completing a milestone stamps completedDate.
func UpdateMilestoneStatus(ctx context.Context, db *gorm.DB, milestoneID, status string, actor *models.User) (*models.Milestone, error) {
	var updated models.Milestone

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var milestone models.Milestone
		if err := tx.Session(&gorm.Session{Logger: tx.Logger.LogMode(logger.Silent)}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", milestoneID).
			First(&milestone).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if milestone.Status == status {
			updated = milestone
			return nil
		}

		old := milestone.Status
		updates := map[string]interface{}{"status": status}
		if status == models.MilestoneStatusCompleted {
			updates["completed_date"] = time.Now().UTC()
		} else if old == models.MilestoneStatusCompleted {
			updates["completed_date"] = nil
		}
		if err := tx.Model(&milestone).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update milestone: %w", err)
		}

		change := models.StatusChange{
			EntityType:  "milestone",
			EntityID:    milestone.ID,
			OldStatus:   &old,
			NewStatus:   status,
			ProjectID:   milestone.ProjectID,
			MilestoneID: &milestone.ID,
		}
		if actor != nil {
			change.UserID = &actor.ID
		}
		if err := tx.Create(&change).Error; err != nil {
			return fmt.Errorf("failed to record status change: %w", err)
		}

		return tx.First(&updated, "id = ?", milestone.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
