// projects.go
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
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/vexpm/internal/services"
	"github.com/localnerve/vexpm/internal/utils"
	"github.com/localnerve/vexpm/internal/validation"
	"gorm.io/gorm"
)

// ProjectHandler handles the portal project routes
type ProjectHandler struct {
	DB *gorm.DB
}

// MilestoneStatusRequest is the body of PATCH /milestones/:id/status
type MilestoneStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending in_progress completed blocked"`
}

// ListProjects handles GET /api/projects
// @Summary List projects
// @Description List projects with their milestones, optionally filtered by status
// @Tags Projects
// @Produce json
// @Param status query string false "Project status"
// @Success 200 {array} models.Project
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /projects [get]
func (h *ProjectHandler) ListProjects(c *fiber.Ctx) error {
	projects, err := services.ListProjects(c.UserContext(), h.DB, c.Query("status"))
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "listProjects")
	}
	return utils.SuccessResponse(c, projects, fiber.StatusOK)
}

// GetProject handles GET /api/projects/:id
// @Summary Get a project
// @Description Project detail with milestones, files and communications
// @Tags Projects
// @Produce json
// @Param id path string true "Project id"
// @Success 200 {object} models.Project
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /projects/{id} [get]
func (h *ProjectHandler) GetProject(c *fiber.Ctx) error {
	id := c.Params("id")

	project, err := services.GetProject(c.UserContext(), h.DB, id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.NotFoundResponse(c, fmt.Sprintf("Project '%s' not found", id))
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "getProject")
	}
	return utils.SuccessResponse(c, project, fiber.StatusOK)
}

// UpdateMilestoneStatus handles PATCH /api/milestones/:id/status
// @Summary Change a milestone status
// @Description Update the status and append a status change audit row
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path string true "Milestone id"
// @Param body body MilestoneStatusRequest true "New status"
// @Success 200 {object} models.Milestone
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /milestones/{id}/status [patch]
func (h *ProjectHandler) UpdateMilestoneStatus(c *fiber.Ctx) error {
	id := c.Params("id")

	var req MilestoneStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fmt.Sprintf("Invalid request body: %v", err), fiber.StatusBadRequest, "milestoneStatus")
	}
	if err := validation.ValidateStruct(&req); err != nil {
		var ve *validation.RequestValidationError
		if errors.As(err, &ve) {
			return utils.ValidationErrorResponse(c, ve, "milestoneStatus")
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, "milestoneStatus")
	}

	milestone, err := services.UpdateMilestoneStatus(c.UserContext(), h.DB, id, req.Status, operatingUser(c, h.DB))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.NotFoundResponse(c, fmt.Sprintf("Milestone '%s' not found", id))
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "milestoneStatus")
	}
	return utils.SuccessResponse(c, milestone, fiber.StatusOK)
}
