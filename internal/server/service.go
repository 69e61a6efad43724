// service.go
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

package server

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/vexpm/internal/logging"
)

// Service runs a fiber app under a suture supervisor
type Service struct {
	App             *fiber.App
	Addr            string
	ShutdownTimeout time.Duration
}

// NewService wraps app for supervision
func NewService(app *fiber.App, addr string) *Service {
	return &Service{App: app, Addr: addr, ShutdownTimeout: 10 * time.Second}
}

// Serve implements suture.Service
func (s *Service) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", s.Addr).Msg("starting server")
		errCh <- s.App.Listen(s.Addr)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
		return errors.New("server stopped unexpectedly")
	case <-ctx.Done():
		logging.Info().Msg("gracefully shutting down")
		if err := s.App.ShutdownWithTimeout(s.ShutdownTimeout); err != nil {
			logging.Error().Err(err).Msg("server shutdown failed")
		}
		<-errCh
		return ctx.Err()
	}
}

func (s *Service) String() string {
	return "http-server"
}
