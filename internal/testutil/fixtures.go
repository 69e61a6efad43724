// fixtures.go
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
	"testing"
	"time"

	"github.com/localnerve/vexpm/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Fixture identifiers
const (
	AdminID      = "00000000-0000-0000-0000-00000000a001"
	AdminEmail   = "admin@vex.example"
	ManagerID    = "00000000-0000-0000-0000-00000000a002"
	ManagerEmail = "pm@vex.example"
	AdminToken   = "graph-access-token"

	TemplateID = "00000000-0000-0000-0000-00000000b001"
	ProjectAID = "00000000-0000-0000-0000-00000000c001"
	ProjectBID = "00000000-0000-0000-0000-00000000c002"

	MilestoneSurveyID  = "00000000-0000-0000-0000-00000000d001"
	MilestoneInstallID = "00000000-0000-0000-0000-00000000d002"
	MilestoneHandoffID = "00000000-0000-0000-0000-00000000d003"
)

// Fixture is the seeded data set
type Fixture struct {
	Users              []models.User
	Templates          []models.ProjectTemplate
	TemplateMilestones []models.TemplateMilestone
	Projects           []models.Project
	Milestones         []models.Milestone
	Files              []models.ProjectFile
	Communications     []models.Communication
	Comments           []models.MilestoneComment
	StatusChanges      []models.StatusChange
	CalendarEvents     []models.CalendarEvent
}

// Counts returns the seeded row count per snapshot key
func (f *Fixture) Counts() map[string]int64 {
	return map[string]int64{
		"users":              int64(len(f.Users)),
		"templates":          int64(len(f.Templates)),
		"templateMilestones": int64(len(f.TemplateMilestones)),
		"projects":           int64(len(f.Projects)),
		"milestones":         int64(len(f.Milestones)),
		"files":              int64(len(f.Files)),
		"communications":     int64(len(f.Communications)),
		"comments":           int64(len(f.Comments)),
		"statusChanges":      int64(len(f.StatusChanges)),
		"calendarEvents":     int64(len(f.CalendarEvents)),
	}
}

func ptr[T any](v T) *T {
	return &v
}

// NewFixture builds a small portal data set touching every entity
func NewFixture() *Fixture {
	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	tokenExpiry := time.Now().UTC().Add(time.Hour)

	return &Fixture{
		Users: []models.User{
			{
				ID:               AdminID,
				Email:            AdminEmail,
				Name:             "Site Admin",
				Role:             "admin",
				IdentityProvider: ptr(models.IdentityProviderAzureAD),
				AccessToken:      ptr(AdminToken),
				TokenExpiresAt:   &tokenExpiry,
				CreatedAt:        base,
			},
			{
				ID:           ManagerID,
				Email:        ManagerEmail,
				Name:         "Project Manager",
				Role:         "user",
				PasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
				CreatedAt:    base,
			},
		},
		Templates: []models.ProjectTemplate{
			{ID: TemplateID, Name: "Standard Install", IsDefault: true, CreatedAt: base},
		},
		TemplateMilestones: []models.TemplateMilestone{
			{ID: "00000000-0000-0000-0000-00000000e001", Name: "Site Survey", Order: 0, TemplateID: TemplateID, CreatedAt: base},
			{ID: "00000000-0000-0000-0000-00000000e002", Name: "Install", Order: 1, TemplateID: TemplateID, CreatedAt: base},
		},
		Projects: []models.Project{
			{
				ID:         ProjectAID,
				Name:       "Depot Renovation",
				City:       "Portland",
				State:      "OR",
				Status:     models.ProjectStatusActive,
				TemplateID: ptr(TemplateID),
				UserID:     ManagerID,
				Latitude:   ptr(45.52),
				Longitude:  ptr(-122.68),
				CreatedAt:  base,
			},
			{
				ID:        ProjectBID,
				Name:      "Annex Fit-out",
				Status:    models.ProjectStatusPlanning,
				UserID:    AdminID,
				CreatedAt: base,
			},
		},
		Milestones: []models.Milestone{
			{ID: MilestoneSurveyID, Name: "Site Survey", Status: models.MilestoneStatusCompleted, Order: 0, ProjectID: ProjectAID, CompletedDate: ptr(base.Add(48 * time.Hour)), CreatedAt: base},
			{ID: MilestoneInstallID, Name: "Install", Status: models.MilestoneStatusInProgress, Order: 1, ProjectID: ProjectAID, DueDate: ptr(base.Add(30 * 24 * time.Hour)), CreatedAt: base},
			{ID: MilestoneHandoffID, Name: "Handoff", Status: models.MilestoneStatusPending, Order: 0, ProjectID: ProjectBID, CreatedAt: base},
		},
		Files: []models.ProjectFile{
			{ID: "00000000-0000-0000-0000-00000000f001", Name: "survey.pdf", FileURL: "https://files.vex.example/survey.pdf", FileType: "application/pdf", Size: 2048, ProjectID: ProjectAID, MilestoneID: ptr(MilestoneSurveyID), UploadedAt: base, CreatedAt: base},
		},
		Communications: []models.Communication{
			{ID: "00000000-0000-0000-0000-000000010001", Type: "email", Subject: "Kickoff", Content: "Schedule confirmed", Direction: "outbound", ProjectID: ProjectAID, UserID: ptr(ManagerID), CreatedAt: base},
		},
		Comments: []models.MilestoneComment{
			{ID: "00000000-0000-0000-0000-000000011001", Content: "Crew booked", MilestoneID: MilestoneInstallID, UserID: ManagerID, CreatedAt: base},
		},
		StatusChanges: []models.StatusChange{
			{ID: "00000000-0000-0000-0000-000000012001", EntityType: "milestone", EntityID: MilestoneSurveyID, OldStatus: ptr(models.MilestoneStatusInProgress), NewStatus: models.MilestoneStatusCompleted, ProjectID: ProjectAID, MilestoneID: ptr(MilestoneSurveyID), UserID: ptr(ManagerID), CreatedAt: base},
		},
		CalendarEvents: []models.CalendarEvent{
			{ID: "00000000-0000-0000-0000-000000013001", Title: "Install day", StartDate: base.Add(30 * 24 * time.Hour), UserID: ManagerID, ProjectID: ptr(ProjectAID), CreatedAt: base},
		},
	}
}

// Seed inserts a new fixture into db and returns it
func Seed(t *testing.T, db *gorm.DB) *Fixture {
	t.Helper()
	f := NewFixture()

	tx := db.Omit(clause.Associations).Session(&gorm.Session{})
	rows := []interface{}{
		&f.Users, &f.Templates, &f.TemplateMilestones, &f.Projects, &f.Milestones,
		&f.Files, &f.Communications, &f.Comments, &f.StatusChanges, &f.CalendarEvents,
	}
	for _, r := range rows {
		if err := tx.Create(r).Error; err != nil {
			t.Fatalf("Failed to seed %T: %v", r, err)
		}
	}
	return f
}
