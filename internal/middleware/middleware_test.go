// middleware_test.go
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
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/vexpm/internal/services"
	"github.com/localnerve/vexpm/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubValidator struct {
	principal *services.Principal
	roles     []string
}

func (s *stubValidator) ValidateSession(_ context.Context, cookie string, roles []string) (*services.Principal, error) {
	s.roles = roles
	if cookie != "good" {
		return nil, errors.New("session expired")
	}
	return s.principal, nil
}

func newApp(handler fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var ce *types.CustomError
			if errors.As(err, &ce) {
				return c.Status(ce.Code).SendString(ce.Type + ": " + ce.Message)
			}
			return c.Status(500).SendString(err.Error())
		},
	})
	app.Use(VersionMiddleware())
	app.Get("/", handler, func(c *fiber.Ctx) error {
		p := PrincipalFrom(c)
		return c.SendString(p.Email)
	})
	return app
}

func TestAuthAdmin(t *testing.T) {
	v := &stubValidator{principal: &services.Principal{ID: "u1", Email: "admin@vex.example", Roles: []string{"admin"}}}
	app := newApp(AuthAdmin(v))

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "good"})
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, []string{"admin"}, v.roles)
	assert.Equal(t, DefaultAPIVersion, resp.Header.Get("X-Api-Version"))
}

func TestAuthRejects(t *testing.T) {
	v := &stubValidator{}
	app := newApp(AuthUser(v))

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, 403, resp.StatusCode)

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "stale"})
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 403, resp.StatusCode)
	assert.Equal(t, []string{"user"}, v.roles)
}

func TestPrincipalFromMissing(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		assert.Nil(t, PrincipalFrom(c))
		return c.SendStatus(204)
	})
	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, 204, resp.StatusCode)
}
