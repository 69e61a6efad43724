// content.go
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

// ProjectFile is an attachment on a project, optionally scoped to a milestone
type ProjectFile struct {
	ID           string     `gorm:"primaryKey;size:36" json:"id" validate:"required"`
	Name         string     `gorm:"size:255;not null" json:"name"`
	FileURL      string     `gorm:"type:text;not null" json:"fileUrl"`
	FileType     string     `gorm:"size:128" json:"fileType"`
	Size         int64      `gorm:"not null;default:0" json:"size"`
	ThumbnailURL *string    `gorm:"type:text" json:"thumbnailUrl,omitempty"`
	ProjectID    string     `gorm:"size:36;not null;index" json:"projectId" validate:"required"`
	Project      *Project   `gorm:"foreignKey:ProjectID" json:"-" validate:"-"`
	MilestoneID  *string    `gorm:"size:36;index" json:"milestoneId,omitempty"`
	Milestone    *Milestone `gorm:"foreignKey:MilestoneID" json:"-" validate:"-"`
	CloudItemID  *string    `gorm:"size:255" json:"cloudItemId,omitempty"`
	CloudWebURL  *string    `gorm:"type:text" json:"cloudWebUrl,omitempty"`
	UploadedAt   time.Time  `json:"uploadedAt"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// Communication is a logged email, call, meeting or note about a project
type Communication struct {
	ID          string     `gorm:"primaryKey;size:36" json:"id" validate:"required"`
	Type        string     `gorm:"size:32;not null" json:"type"`
	Subject     string     `gorm:"size:255" json:"subject"`
	Content     string     `gorm:"type:text" json:"content"`
	Direction   string     `gorm:"size:16;not null;default:internal" json:"direction"`
	ProjectID   string     `gorm:"size:36;not null;index" json:"projectId" validate:"required"`
	Project     *Project   `gorm:"foreignKey:ProjectID" json:"-" validate:"-"`
	MilestoneID *string    `gorm:"size:36;index" json:"milestoneId,omitempty"`
	Milestone   *Milestone `gorm:"foreignKey:MilestoneID" json:"-" validate:"-"`
	UserID      *string    `gorm:"size:36;index" json:"userId,omitempty"`
	User        *User      `gorm:"foreignKey:UserID" json:"-" validate:"-"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// MilestoneComment is a user remark on a milestone
type MilestoneComment struct {
	ID          string     `gorm:"primaryKey;size:36" json:"id" validate:"required"`
	Content     string     `gorm:"type:text;not null" json:"content"`
	MilestoneID string     `gorm:"size:36;not null;index" json:"milestoneId" validate:"required"`
	Milestone   *Milestone `gorm:"foreignKey:MilestoneID" json:"-" validate:"-"`
	UserID      string     `gorm:"size:36;not null;index" json:"userId" validate:"required"`
	User        *User      `gorm:"foreignKey:UserID" json:"-" validate:"-"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// StatusChange is an append-only audit row for project and milestone status transitions
type StatusChange struct {
	ID          string     `gorm:"primaryKey;size:36" json:"id" validate:"required"`
	EntityType  string     `gorm:"size:32;not null" json:"entityType"`
	EntityID    string     `gorm:"size:36;not null;index" json:"entityId"`
	OldStatus   *string    `gorm:"size:32" json:"oldStatus,omitempty"`
	NewStatus   string     `gorm:"size:32;not null" json:"newStatus"`
	ProjectID   string     `gorm:"size:36;not null;index" json:"projectId" validate:"required"`
	Project     *Project   `gorm:"foreignKey:ProjectID" json:"-" validate:"-"`
	MilestoneID *string    `gorm:"size:36;index" json:"milestoneId,omitempty"`
	Milestone   *Milestone `gorm:"foreignKey:MilestoneID" json:"-" validate:"-"`
	UserID      *string    `gorm:"size:36;index" json:"userId,omitempty"`
	User        *User      `gorm:"foreignKey:UserID" json:"-" validate:"-"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// CalendarEvent is a scheduled site visit or meeting
type CalendarEvent struct {
	ID        string     `gorm:"primaryKey;size:36" json:"id" validate:"required"`
	Title     string     `gorm:"size:255;not null" json:"title"`
	StartDate time.Time  `gorm:"not null" json:"startDate"`
	EndDate   *time.Time `json:"endDate,omitempty"`
	AllDay    bool       `gorm:"not null;default:false" json:"allDay"`
	Location  string     `gorm:"size:255" json:"location"`
	UserID    string     `gorm:"size:36;not null;index" json:"userId" validate:"required"`
	User      *User      `gorm:"foreignKey:UserID" json:"-" validate:"-"`
	ProjectID *string    `gorm:"size:36;index" json:"projectId,omitempty"`
	Project   *Project   `gorm:"foreignKey:ProjectID" json:"-" validate:"-"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// TableName overrides the table name for ProjectFile
func (ProjectFile) TableName() string {
	return "project_files"
}

// TableName overrides the table name for Communication
func (Communication) TableName() string {
	return "communications"
}

// TableName overrides the table name for MilestoneComment
func (MilestoneComment) TableName() string {
	return "milestone_comments"
}

// TableName overrides the table name for StatusChange
func (StatusChange) TableName() string {
	return "status_changes"
}

// TableName overrides the table name for CalendarEvent
func (CalendarEvent) TableName() string {
	return "calendar_events"
}

func (f *ProjectFile) BeforeCreate(tx *gorm.DB) error {
	ensureID(&f.ID)
	if f.UploadedAt.IsZero() {
		f.UploadedAt = time.Now().UTC()
	}
	return nil
}

func (m *Communication) BeforeCreate(tx *gorm.DB) error {
	ensureID(&m.ID)
	return nil
}

func (m *MilestoneComment) BeforeCreate(tx *gorm.DB) error {
	ensureID(&m.ID)
	return nil
}

func (s *StatusChange) BeforeCreate(tx *gorm.DB) error {
	ensureID(&s.ID)
	return nil
}

func (e *CalendarEvent) BeforeCreate(tx *gorm.DB) error {
	ensureID(&e.ID)
	return nil
}
