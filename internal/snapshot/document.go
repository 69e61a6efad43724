// document.go
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

// Package snapshot defines the backup document and its zip archive form.
package snapshot

import (
	"fmt"
	"time"

	"github.com/localnerve/vexpm/internal/models"
	"github.com/localnerve/vexpm/internal/validation"
)

const (
	// EntryName is the archive entry holding the document
	EntryName = "backup-data.json"

	// FormatVersion is written to metadata.version
	FormatVersion = "1.0"

	// Application is written to metadata.application
	Application = "vex-project-management"
)

// Entity keys of the data section
const (
	KeyUsers              = "users"
	KeyTemplates          = "templates"
	KeyTemplateMilestones = "templateMilestones"
	KeyProjects           = "projects"
	KeyMilestones         = "milestones"
	KeyFiles              = "files"
	KeyCommunications     = "communications"
	KeyComments           = "comments"
	KeyStatusChanges      = "statusChanges"
	KeyCalendarEvents     = "calendarEvents"
)

// Keys lists every entity key in parent-to-child order
var Keys = []string{
	KeyUsers,
	KeyTemplates,
	KeyTemplateMilestones,
	KeyProjects,
	KeyMilestones,
	KeyFiles,
	KeyCommunications,
	KeyComments,
	KeyStatusChanges,
	KeyCalendarEvents,
}

// Metadata describes a document. Counts holds the row count of every entity
// at capture time and is only used to verify a restore.
type Metadata struct {
	Version     string           `json:"version"`
	Application string           `json:"application"`
	CreatedAt   time.Time        `json:"createdAt"`
	Counts      map[string]int64 `json:"counts"`
}

// ExpectedCount returns the recorded count for key, if any
func (m Metadata) ExpectedCount(key string) (int64, bool) {
	if m.Counts == nil {
		return 0, false
	}
	n, ok := m.Counts[key]
	return n, ok
}

// Data holds one typed record list per entity. A nil list means zero rows.
type Data struct {
	Users              []models.User              `json:"users"`
	Templates          []models.ProjectTemplate   `json:"templates"`
	TemplateMilestones []models.TemplateMilestone `json:"templateMilestones"`
	Projects           []models.Project           `json:"projects"`
	Milestones         []models.Milestone         `json:"milestones"`
	Files              []models.ProjectFile       `json:"files"`
	Communications     []models.Communication     `json:"communications"`
	Comments           []models.MilestoneComment  `json:"comments"`
	StatusChanges      []models.StatusChange      `json:"statusChanges"`
	CalendarEvents     []models.CalendarEvent     `json:"calendarEvents"`
}

// Document is the full point-in-time copy of the entity tables
type Document struct {
	Metadata Metadata `json:"metadata"`
	Data     *Data    `json:"data"`
}

// Counts returns the number of records per entity key
func (d *Data) Counts() map[string]int64 {
	return map[string]int64{
		KeyUsers:              int64(len(d.Users)),
		KeyTemplates:          int64(len(d.Templates)),
		KeyTemplateMilestones: int64(len(d.TemplateMilestones)),
		KeyProjects:           int64(len(d.Projects)),
		KeyMilestones:         int64(len(d.Milestones)),
		KeyFiles:              int64(len(d.Files)),
		KeyCommunications:     int64(len(d.Communications)),
		KeyComments:           int64(len(d.Comments)),
		KeyStatusChanges:      int64(len(d.StatusChanges)),
		KeyCalendarEvents:     int64(len(d.CalendarEvents)),
	}
}

// Validate checks every record against its model rules
func (d *Data) Validate() error {
	checks := []func() error{
		func() error { return validation.ValidateSlice(KeyUsers, d.Users) },
		func() error { return validation.ValidateSlice(KeyTemplates, d.Templates) },
		func() error { return validation.ValidateSlice(KeyTemplateMilestones, d.TemplateMilestones) },
		func() error { return validation.ValidateSlice(KeyProjects, d.Projects) },
		func() error { return validation.ValidateSlice(KeyMilestones, d.Milestones) },
		func() error { return validation.ValidateSlice(KeyFiles, d.Files) },
		func() error { return validation.ValidateSlice(KeyCommunications, d.Communications) },
		func() error { return validation.ValidateSlice(KeyComments, d.Comments) },
		func() error { return validation.ValidateSlice(KeyStatusChanges, d.StatusChanges) },
		func() error { return validation.ValidateSlice(KeyCalendarEvents, d.CalendarEvents) },
	}

	var fields []validation.FieldError
	for _, check := range checks {
		if err := check(); err != nil {
			if ve, ok := err.(*validation.RequestValidationError); ok {
				fields = append(fields, ve.Fields...)
				continue
			}
			return err
		}
	}
	if len(fields) > 0 {
		return &validation.RequestValidationError{Fields: fields}
	}
	return nil
}

// NewDocument wraps data with freshly computed metadata
func NewDocument(data *Data, createdAt time.Time) *Document {
	return &Document{
		Metadata: Metadata{
			Version:     FormatVersion,
			Application: Application,
			CreatedAt:   createdAt.UTC(),
			Counts:      data.Counts(),
		},
		Data: data,
	}
}

// Filename returns the archive name for a backup taken at t
func Filename(t time.Time) string {
	return fmt.Sprintf("vex-backup-%s.zip", t.UTC().Format("2006-01-02T15-04-05"))
}
