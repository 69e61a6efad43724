// cloud.go
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

	"github.com/localnerve/vexpm/internal/clouddrive"
	"github.com/localnerve/vexpm/internal/config"
	"github.com/localnerve/vexpm/internal/models"
	"gorm.io/gorm"
)

// CloudDrive is the remote drive holding backup archives
type CloudDrive interface {
	Upload(ctx context.Context, token, filename string, data []byte) (*clouddrive.Item, error)
	List(ctx context.Context, token string) ([]clouddrive.Item, error)
	Download(ctx context.Context, token, itemID string) ([]byte, error)
	Delete(ctx context.Context, token, itemID string) error
}

// NewCloudDrive builds the Graph drive client, or returns nil when
// GRAPH_ENABLED is off. Callers treat a nil drive as "not configured".
func NewCloudDrive(cfg *config.Config) CloudDrive {
	if !cfg.GraphEnabled {
		return nil
	}
	return clouddrive.New(clouddrive.Config{
		BaseURL:    cfg.GraphBaseURL,
		SiteID:     cfg.SharePointSiteID,
		DriveID:    cfg.SharePointDriveID,
		FolderName: cfg.BackupFolderName,
	})
}

// ErrNoCloudToken is returned when the operating user cannot reach the cloud drive
var ErrNoCloudToken = errors.New("Cloud storage requires an Azure AD sign-in with a valid access token")

// FindUserByEmail loads a portal user, returning nil when none matches
func FindUserByEmail(ctx context.Context, db *gorm.DB, email string) (*models.User, error) {
	if email == "" {
		return nil, nil
	}
	var user models.User
	err := db.WithContext(ctx).Where("email = ?", email).Limit(1).Find(&user).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load user %s: %w", email, err)
	}
	if user.ID == "" {
		return nil, nil
	}
	return &user, nil
}

// CloudTokenFor returns the stored Graph token of the user with email
func CloudTokenFor(ctx context.Context, db *gorm.DB, email string) (string, error) {
	user, err := FindUserByEmail(ctx, db, email)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrNoCloudToken
	}
	token, ok := user.CloudToken(time.Now())
	if !ok {
		return "", ErrNoCloudToken
	}
	return token, nil
}
