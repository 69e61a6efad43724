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

package testutil

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/localnerve/vexpm/internal/services"
)

// Session cookies understood by FakeSessions
const (
	AdminCookie   = "admin-session"
	ManagerCookie = "manager-session"
)

// FakeSessions validates the fixed fixture session cookies
type FakeSessions struct {
	Principals map[string]*services.Principal
}

// NewFakeSessions maps AdminCookie to the fixture admin and ManagerCookie to the manager
func NewFakeSessions() *FakeSessions {
	return &FakeSessions{Principals: map[string]*services.Principal{
		AdminCookie:   {ID: AdminID, Email: AdminEmail, Roles: []string{"admin", "user"}},
		ManagerCookie: {ID: ManagerID, Email: ManagerEmail, Roles: []string{"user"}},
	}}
}

func (f *FakeSessions) ValidateSession(_ context.Context, cookie string, roles []string) (*services.Principal, error) {
	p, ok := f.Principals[cookie]
	if !ok {
		return nil, errors.New("session not found")
	}
	for _, role := range roles {
		if !slices.Contains(p.Roles, role) {
			return nil, fmt.Errorf("role %q required", role)
		}
	}
	return p, nil
}
