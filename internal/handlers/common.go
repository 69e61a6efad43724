// common.go
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

package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/vexpm/internal/logging"
	"github.com/localnerve/vexpm/internal/middleware"
	"github.com/localnerve/vexpm/internal/models"
	"github.com/localnerve/vexpm/internal/services"
	"github.com/localnerve/vexpm/internal/snapshot"
	"github.com/localnerve/vexpm/internal/utils"
	"github.com/localnerve/vexpm/internal/validation"
	"gorm.io/gorm"
)

// operatingUser resolves the portal user row of the authenticated caller.
// A caller without a row is not an error; it only rules out cloud access.
func operatingUser(c *fiber.Ctx, db *gorm.DB) *models.User {
	principal := middleware.PrincipalFrom(c)
	if principal == nil {
		return nil
	}
	user, err := services.FindUserByEmail(c.UserContext(), db, principal.Email)
	if err != nil {
		logging.Warn().Err(err).Str("email", principal.Email).Msg("failed to load operating user")
		return nil
	}
	return user
}

func queryInt(c *fiber.Ctx, key string, fallback int) int {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func queryBool(c *fiber.Ctx, key string) bool {
	b, err := strconv.ParseBool(c.Query(key))
	return err == nil && b
}

var restoreInputErrors = []error{
	snapshot.ErrEntryNotFound,
	snapshot.ErrInvalidJSON,
	snapshot.ErrMissingData,
	snapshot.ErrInvalidRecords,
}

// restoreFailure renders a failed restore as {error, details}. Archive
// problems are 400 with the exact input message; anything else is 500.
func restoreFailure(c *fiber.Ctx, err error) error {
	for _, sentinel := range restoreInputErrors {
		if !errors.Is(err, sentinel) {
			continue
		}
		var details interface{}
		var ve *validation.RequestValidationError
		if errors.As(err, &ve) {
			details = ve.Fields
		} else if cause := strings.TrimPrefix(err.Error(), sentinel.Error()); cause != "" {
			details = strings.TrimPrefix(cause, ": ")
		}
		return utils.RestoreErrorResponse(c, fiber.StatusBadRequest, sentinel.Error(), details)
	}

	logging.Error().Err(err).Str("url", c.OriginalURL()).Msg("restore failed")
	return utils.RestoreErrorResponse(c, fiber.StatusInternalServerError, "Restore failed", err.Error())
}
