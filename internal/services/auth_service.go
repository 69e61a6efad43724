// auth_service.go
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
	"fmt"
	"slices"
	"sync"

	"github.com/goccy/go-json"
	authorizer "github.com/localnerve/authorizer-go"
	"github.com/localnerve/vexpm/internal/config"
	"github.com/localnerve/vexpm/internal/logging"
	"github.com/localnerve/vexpm/internal/utils"
)

// Principal is the authenticated caller
type Principal struct {
	ID    string   `json:"id"`
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

// HasRole reports whether the principal carries role
func (p *Principal) HasRole(role string) bool {
	return slices.Contains(p.Roles, role)
}

// SessionValidator checks a session cookie against required roles
type SessionValidator interface {
	ValidateSession(ctx context.Context, cookie string, roles []string) (*Principal, error)
}

// AuthorizerValidator validates sessions with an Authorizer server.
// The client is created on first use so the service can start before Authorizer.
type AuthorizerValidator struct {
	cfg *config.Config

	once    sync.Once
	client  *authorizer.AuthorizerClient
	initErr error
}

// NewAuthorizerValidator creates a validator for the configured Authorizer
func NewAuthorizerValidator(cfg *config.Config) *AuthorizerValidator {
	return &AuthorizerValidator{cfg: cfg}
}

func (v *AuthorizerValidator) init() error {
	v.once.Do(func() {
		if err := utils.PingAuthorizer(v.cfg.AuthzURL); err != nil {
			v.initErr = fmt.Errorf("authorizer ping failed: %w", err)
			return
		}

		logging.Info().
			Str("authorizerURL", v.cfg.AuthzURL).
			Str("clientID", v.cfg.AuthzClientID).
			Str("redirectURL", v.cfg.AuthzRedirectURL).
			Msg("initializing authorizer client")

		client, err := authorizer.NewAuthorizerClient(v.cfg.AuthzClientID, v.cfg.AuthzURL, v.cfg.AuthzRedirectURL, nil)
		if err != nil {
			v.initErr = fmt.Errorf("failed to create authorizer client: %w", err)
			return
		}
		v.client = client
	})
	return v.initErr
}

// ValidateSession validates a session cookie for the given roles
func (v *AuthorizerValidator) ValidateSession(ctx context.Context, cookie string, roles []string) (*Principal, error) {
	if err := v.init(); err != nil {
		return nil, err
	}

	rolesPtrs := make([]*string, len(roles))
	for i := range roles {
		rolesPtrs[i] = &roles[i]
	}

	res, err := v.client.ValidateSession(&authorizer.ValidateSessionInput{
		Cookie: cookie,
		Roles:  rolesPtrs,
	})
	if err != nil {
		return nil, fmt.Errorf("session validation failed: %w", err)
	}
	if res == nil || !res.IsValid {
		return nil, fmt.Errorf("session is not valid")
	}

	// The SDK user type varies between releases; only id, email and roles are needed
	raw, err := json.Marshal(res.User)
	if err != nil {
		return nil, fmt.Errorf("failed to read session user: %w", err)
	}
	var principal Principal
	if err := json.Unmarshal(raw, &principal); err != nil {
		return nil, fmt.Errorf("failed to read session user: %w", err)
	}
	if len(principal.Roles) == 0 {
		principal.Roles = roles
	}
	return &principal, nil
}
