// snapshot.go
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
	"time"

	"github.com/localnerve/vexpm/internal/snapshot"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/hints"
)

// snapshotComment tags snapshot reads so they stand out in database logs
const snapshotComment = "vexpm:snapshot"

// CaptureSnapshot reads every row of every entity into a new document.
// Any read error aborts the capture.
func CaptureSnapshot(ctx context.Context, db *gorm.DB) (*snapshot.Document, error) {
	q := db.WithContext(ctx).
		Clauses(hints.Comment("select", snapshotComment)).
		Session(&gorm.Session{Logger: db.Logger.LogMode(logger.Silent)})

	data := &snapshot.Data{}
	reads := []struct {
		key  string
		dest interface{}
	}{
		{snapshot.KeyUsers, &data.Users},
		{snapshot.KeyTemplates, &data.Templates},
		{snapshot.KeyTemplateMilestones, &data.TemplateMilestones},
		{snapshot.KeyProjects, &data.Projects},
		{snapshot.KeyMilestones, &data.Milestones},
		{snapshot.KeyFiles, &data.Files},
		{snapshot.KeyCommunications, &data.Communications},
		{snapshot.KeyComments, &data.Comments},
		{snapshot.KeyStatusChanges, &data.StatusChanges},
		{snapshot.KeyCalendarEvents, &data.CalendarEvents},
	}

	for _, r := range reads {
		if err := q.Order("id").Find(r.dest).Error; err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", r.key, err)
		}
	}

	return snapshot.NewDocument(data, time.Now()), nil
}
