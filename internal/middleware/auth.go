// auth.go
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

package middleware

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/vexpm/internal/services"
	"github.com/localnerve/vexpm/internal/types"
)

// SessionCookie is the Authorizer session cookie name
const SessionCookie = "cookie_session"

const principalKey = "principal"

func AuthAdmin(v services.SessionValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return authorize(c, v, []string{"admin"}, "authorization.admin")
	}
}

func AuthUser(v services.SessionValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return authorize(c, v, []string{"user"}, "authorization.user")
	}
}

func authorize(c *fiber.Ctx, v services.SessionValidator, roles []string, errorType string) error {
	// Get session cookie
	session := c.Cookies(SessionCookie)
	if session == "" {
		return types.Forbidden(fmt.Sprintf("Authorizer cookie %q not found", SessionCookie), errorType)
	}

	principal, err := v.ValidateSession(c.UserContext(), session, roles)
	if err != nil {
		return types.Forbidden(fmt.Sprintf("Invalid session: %v", err), errorType)
	}

	c.Locals(principalKey, principal)

	return c.Next()
}

// PrincipalFrom returns the caller stored by the auth middleware
func PrincipalFrom(c *fiber.Ctx) *services.Principal {
	p, _ := c.Locals(principalKey).(*services.Principal)
	return p
}
