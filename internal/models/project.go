// project.go
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

package models

import (
	"time"

	"gorm.io/gorm"
)

// ProjectTemplate is a reusable list of milestones applied to new projects
type ProjectTemplate struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id" validate:"required"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	IsDefault bool      `gorm:"not null;default:false" json:"isDefault"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TemplateMilestone is one step of a ProjectTemplate
type TemplateMilestone struct {
	ID         string           `gorm:"primaryKey;size:36" json:"id" validate:"required"`
	Name       string           `gorm:"size:255;not null" json:"name"`
	Order      int              `gorm:"column:sort_order;not null;default:0" json:"order"`
	TemplateID string           `gorm:"size:36;not null;index" json:"templateId" validate:"required"`
	Template   *ProjectTemplate `gorm:"foreignKey:TemplateID" json:"-" validate:"-"`
	CreatedAt  time.Time        `json:"createdAt"`
	UpdatedAt  time.Time        `json:"updatedAt"`
}

// Project statuses
const (
	ProjectStatusPlanning  = "planning"
	ProjectStatusActive    = "active"
	ProjectStatusOnHold    = "on_hold"
	ProjectStatusCompleted = "completed"
	ProjectStatusCancelled = "cancelled"
)

// Project is a tracked installation job
type Project struct {
	ID         string           `gorm:"primaryKey;size:36" json:"id" validate:"required"`
	Name       string           `gorm:"size:255;not null" json:"name"`
	Address    string           `gorm:"size:255" json:"address"`
	City       string           `gorm:"size:128" json:"city"`
	State      string           `gorm:"size:64" json:"state"`
	PostalCode string           `gorm:"size:32" json:"postalCode"`
	Latitude   *float64         `json:"latitude,omitempty"`
	Longitude  *float64         `json:"longitude,omitempty"`
	Status     string           `gorm:"size:32;not null;default:planning" json:"status"`
	TemplateID *string          `gorm:"size:36;index" json:"templateId,omitempty"`
	Template   *ProjectTemplate `gorm:"foreignKey:TemplateID" json:"-" validate:"-"`
	UserID     string           `gorm:"size:36;not null;index" json:"userId" validate:"required"`
	User       *User            `gorm:"foreignKey:UserID" json:"-" validate:"-"`
	CreatedAt  time.Time        `json:"createdAt"`
	UpdatedAt  time.Time        `json:"updatedAt"`

	Milestones     []Milestone     `gorm:"foreignKey:ProjectID" json:"milestones,omitempty" validate:"-"`
	Files          []ProjectFile   `gorm:"foreignKey:ProjectID" json:"files,omitempty" validate:"-"`
	Communications []Communication `gorm:"foreignKey:ProjectID" json:"communications,omitempty" validate:"-"`
}

// Milestone statuses
const (
	MilestoneStatusPending    = "pending"
	MilestoneStatusInProgress = "in_progress"
	MilestoneStatusCompleted  = "completed"
	MilestoneStatusBlocked    = "blocked"
)

// Milestone is one step of a Project
type Milestone struct {
	ID            string     `gorm:"primaryKey;size:36" json:"id" validate:"required"`
	Name          string     `gorm:"size:255;not null" json:"name"`
	Status        string     `gorm:"size:32;not null;default:pending" json:"status"`
	Order         int        `gorm:"column:sort_order;not null;default:0" json:"order"`
	DueDate       *time.Time `json:"dueDate,omitempty"`
	CompletedDate *time.Time `json:"completedDate,omitempty"`
	ProjectID     string     `gorm:"size:36;not null;index" json:"projectId" validate:"required"`
	Project       *Project   `gorm:"foreignKey:ProjectID" json:"-" validate:"-"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// TableName overrides the table name for ProjectTemplate
func (ProjectTemplate) TableName() string {
	return "project_templates"
}

// TableName overrides the table name for TemplateMilestone
func (TemplateMilestone) TableName() string {
	return "template_milestones"
}

// TableName overrides the table name for Project
func (Project) TableName() string {
	return "projects"
}

// TableName overrides the table name for Milestone
func (Milestone) TableName() string {
	return "milestones"
}

func (t *ProjectTemplate) BeforeCreate(tx *gorm.DB) error {
	ensureID(&t.ID)
	return nil
}

func (m *TemplateMilestone) BeforeCreate(tx *gorm.DB) error {
	ensureID(&m.ID)
	return nil
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

func (m *Milestone) BeforeCreate(tx *gorm.DB) error {
	ensureID(&m.ID)
	return nil
}
