// loader.go
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
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// insertBatchSize bounds the rows per INSERT statement
const insertBatchSize = 200

// LoadOptions controls the destructive load
type LoadOptions struct {
	// Transactional wraps the delete and insert phases in one transaction.
	// Without it a failure part way leaves the tables partially restored.
	Transactional bool
}

// deleteTiers lists the entity tables children first. Tables inside a tier
// do not reference each other and are cleared concurrently.
func deleteTiers() [][]interface{} {
	return [][]interface{}{
		{&models.StatusChange{}, &models.Communication{}, &models.MilestoneComment{}, &models.CalendarEvent{}, &models.ProjectFile{}},
		{&models.Milestone{}},
		{&models.Project{}, &models.TemplateMilestone{}},
		{&models.ProjectTemplate{}, &models.User{}},
	}
}

// LoadSnapshot replaces the contents of every entity table with doc's records.
// All deletes complete before the first insert; inserts run parent to child.
func LoadSnapshot(ctx context.Context, db *gorm.DB, doc *snapshot.Document, opts LoadOptions) error {
	if doc == nil || doc.Data == nil {
		return snapshot.ErrMissingData
	}

	load := func(tx *gorm.DB) error {
		if err := deleteAll(ctx, tx); err != nil {
			return err
		}
		return insertAll(ctx, tx, doc.Data)
	}

	if opts.Transactional {
		return db.WithContext(ctx).Transaction(load)
	}
	return load(db)
}

func deleteAll(ctx context.Context, db *gorm.DB) error {
	for i, tier := range deleteTiers() {
		g, gctx := errgroup.WithContext(ctx)
		for _, model := range tier {
			g.Go(func() error {
				err := db.WithContext(gctx).
					Session(&gorm.Session{AllowGlobalUpdate: true}).
					Delete(model).Error
				if err != nil {
					return fmt.Errorf("failed to clear %T: %w", model, err)
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return fmt.Errorf("delete tier %d: %w", i+1, err)
		}
	}
	return nil
}

func insertAll(ctx context.Context, db *gorm.DB, data *snapshot.Data) error {
	steps := []struct {
		key  string
		rows interface{}
		n    int
	}{
		{snapshot.KeyUsers, &data.Users, len(data.Users)},
		{snapshot.KeyTemplates, &data.Templates, len(data.Templates)},
		{snapshot.KeyTemplateMilestones, &data.TemplateMilestones, len(data.TemplateMilestones)},
		{snapshot.KeyProjects, &data.Projects, len(data.Projects)},
		{snapshot.KeyMilestones, &data.Milestones, len(data.Milestones)},
		{snapshot.KeyFiles, &data.Files, len(data.Files)},
		{snapshot.KeyCommunications, &data.Communications, len(data.Communications)},
		{snapshot.KeyComments, &data.Comments, len(data.Comments)},
		{snapshot.KeyStatusChanges, &data.StatusChanges, len(data.StatusChanges)},
		{snapshot.KeyCalendarEvents, &data.CalendarEvents, len(data.CalendarEvents)},
	}

	tx := db.WithContext(ctx).Omit(clause.Associations).Session(&gorm.Session{})
	for _, s := range steps {
		if s.n == 0 {
			continue
		}
		if err := tx.CreateInBatches(s.rows, insertBatchSize).Error; err != nil {
			return fmt.Errorf("failed to restore %s: %w", s.key, err)
		}
	}
	return nil
}
