// user.go
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

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IdentityProviderAzureAD is the only identity provider whose tokens can reach the cloud drive
const IdentityProviderAzureAD = "azure-ad"

// User is a portal account. Users who sign in through Azure AD carry the
// Graph access token used for cloud backups.
type User struct {
	ID                string     `gorm:"primaryKey;size:36" json:"id" validate:"required"`
	Email             string     `gorm:"size:255;not null;uniqueIndex" json:"email" validate:"required"`
	PasswordHash      string     `gorm:"size:255" json:"passwordHash,omitempty"`
	Name              string     `gorm:"size:255" json:"name"`
	Role              string     `gorm:"size:32;not null;default:user" json:"role"`
	IdentityProvider  *string    `gorm:"size:64" json:"identityProvider,omitempty"`
	ProviderAccountID *string    `gorm:"size:255" json:"providerAccountId,omitempty"`
	AccessToken       *string    `gorm:"type:text" json:"accessToken,omitempty"`
	RefreshToken      *string    `gorm:"type:text" json:"refreshToken,omitempty"`
	TokenExpiresAt    *time.Time `json:"tokenExpiresAt,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}

// BeforeCreate assigns an id when the row arrives without one
func (u *User) BeforeCreate(tx *gorm.DB) error {
	ensureID(&u.ID)
	return nil
}

// CloudToken returns the stored Graph access token when the user signs in with
// Azure AD and the token has not expired.
func (u *User) CloudToken(now time.Time) (string, bool) {
	if u.IdentityProvider == nil || *u.IdentityProvider != IdentityProviderAzureAD {
		return "", false
	}
	if u.AccessToken == nil || *u.AccessToken == "" {
		return "", false
	}
	if u.TokenExpiresAt != nil && !u.TokenExpiresAt.After(now) {
		return "", false
	}
	return *u.AccessToken, true
}

func ensureID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}
