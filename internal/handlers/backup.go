// backup.go
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
	"io"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/vexpm/internal/clouddrive"
	"github.com/localnerve/vexpm/internal/config"
	"github.com/localnerve/vexpm/internal/logging"
	"github.com/localnerve/vexpm/internal/models"
	"github.com/localnerve/vexpm/internal/services"
	"github.com/localnerve/vexpm/internal/types"
	"github.com/localnerve/vexpm/internal/utils"
	"github.com/localnerve/vexpm/internal/validation"
	"gorm.io/gorm"
)

// maxRestoreUpload bounds the multipart archive read into memory
const maxRestoreUpload = 512 << 20

// BackupHandler handles the admin backup and restore routes
type BackupHandler struct {
	DB    *gorm.DB
	Cloud services.CloudDrive // nil when no drive is configured
	Cfg   *config.Config
}

// BackupRequest is the body of POST /admin/backup
type BackupRequest struct {
	UploadToSharePoint types.FlexBool `json:"uploadToSharePoint"`
}

// CreateBackup handles POST /api/admin/backup
// @Summary Create a backup
// @Description Snapshot every entity table into a zip archive, optionally uploading it to SharePoint. A failed upload still returns the archive, without the SharePoint headers.
// @Tags Backup
// @Accept json
// @Produce application/zip
// @Param body body BackupRequest false "Backup options"
// @Success 200 {file} binary
// @Header 200 {string} X-Backup-Filename "Archive filename"
// @Header 200 {string} X-SharePoint-Url "Web link of the uploaded archive"
// @Header 200 {string} X-SharePoint-Id "Drive item id of the uploaded archive"
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /admin/backup [post]
func (h *BackupHandler) CreateBackup(c *fiber.Ctx) error {
	// The body is JSON whatever Content-Type the client sends
	var req BackupRequest
	if body := c.Body(); len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			return utils.ErrorResponse(c, fmt.Sprintf("Invalid request body: %v", err), fiber.StatusBadRequest, "backup.request")
		}
	}

	result, err := services.CreateBackup(c.UserContext(), h.DB, services.BackupOptions{
		Trigger:       models.BackupTriggerManual,
		User:          operatingUser(c, h.DB),
		UploadToCloud: req.UploadToSharePoint.Bool(),
		Cloud:         h.Cloud,
	})
	if err != nil {
		logging.Error().Err(err).Msg("backup failed")
		return utils.ErrorResponse(c, "Backup failed", fiber.StatusInternalServerError, "backup")
	}

	c.Set(fiber.HeaderContentType, "application/zip")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, result.Filename))
	c.Set("X-Backup-Filename", result.Filename)
	if result.Cloud.Status == services.CloudUploaded {
		c.Set("X-SharePoint-Url", result.Cloud.Item.WebURL)
		c.Set("X-SharePoint-Id", result.Cloud.Item.ID)
	}

	return c.Status(fiber.StatusOK).Send(result.Archive)
}

// Restore handles POST /api/admin/restore
// @Summary Restore from an uploaded backup
// @Description Replace every entity table with the contents of an uploaded backup archive. Archive problems are reported before any data is touched.
// @Tags Backup
// @Accept mpfd
// @Produce json
// @Param file formData file true "Backup zip archive"
// @Success 200 {object} services.RestoreResult
// @Failure 400 {object} utils.RestoreErrorStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.RestoreErrorStruct
// @Security CookieAuth
// @Router /admin/restore [post]
func (h *BackupHandler) Restore(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return utils.RestoreErrorResponse(c, fiber.StatusBadRequest, "No backup file provided", nil)
	}
	if fileHeader.Size > maxRestoreUpload {
		return utils.RestoreErrorResponse(c, fiber.StatusBadRequest, "Backup file is too large", nil)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return utils.RestoreErrorResponse(c, fiber.StatusBadRequest, "Could not read backup file", err.Error())
	}
	defer file.Close()

	archive, err := io.ReadAll(file)
	if err != nil {
		return utils.RestoreErrorResponse(c, fiber.StatusBadRequest, "Could not read backup file", err.Error())
	}

	return h.restore(c, archive, services.RestoreSourceUpload)
}

func (h *BackupHandler) restore(c *fiber.Ctx, archive []byte, source string) error {
	result, err := services.RestoreBackup(c.UserContext(), h.DB, archive, services.RestoreOptions{
		Source:        source,
		Transactional: h.Cfg.RestoreTransactional,
	})
	if err != nil {
		return restoreFailure(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

// cloudToken returns the caller's Graph token or the error to render
func (h *BackupHandler) cloudToken(c *fiber.Ctx) (string, error) {
	if h.Cloud == nil {
		return "", &types.CustomError{Code: fiber.StatusServiceUnavailable, Message: "Cloud storage is not configured", Type: "cloud"}
	}
	user := operatingUser(c, h.DB)
	if user == nil {
		return "", types.Forbidden(services.ErrNoCloudToken.Error(), "cloud.authorization")
	}
	token, ok := user.CloudToken(time.Now())
	if !ok {
		return "", types.Forbidden(services.ErrNoCloudToken.Error(), "cloud.authorization")
	}
	return token, nil
}

func cloudFailure(c *fiber.Ctx, err error, message string) error {
	if clouddrive.IsNotFound(err) {
		return utils.NotFoundResponse(c, "Cloud backup not found")
	}
	logging.Warn().Err(err).Str("url", c.OriginalURL()).Msg(message)
	return utils.ErrorResponse(c, fmt.Sprintf("%s: %v", message, err), fiber.StatusBadGateway, "cloud")
}

// ListCloudBackups handles GET /api/admin/cloud-backups
// @Summary List cloud backups
// @Description List the backup archives in the SharePoint backup folder, using the caller's Azure AD token
// @Tags Backup
// @Produce json
// @Success 200 {array} clouddrive.Item
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 502 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /admin/cloud-backups [get]
func (h *BackupHandler) ListCloudBackups(c *fiber.Ctx) error {
	token, err := h.cloudToken(c)
	if err != nil {
		return err
	}

	items, err := h.Cloud.List(c.UserContext(), token)
	if err != nil {
		return cloudFailure(c, err, "Failed to list cloud backups")
	}
	if items == nil {
		items = []clouddrive.Item{}
	}
	return c.Status(fiber.StatusOK).JSON(items)
}

// RestoreCloudBackup handles POST /api/admin/cloud-backups/:id/restore
// @Summary Restore from a cloud backup
// @Description Download a backup archive from SharePoint and restore it. A download failure aborts before any data is touched.
// @Tags Backup
// @Produce json
// @Param id path string true "Drive item id"
// @Success 200 {object} services.RestoreResult
// @Failure 400 {object} utils.RestoreErrorStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 502 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /admin/cloud-backups/{id}/restore [post]
func (h *BackupHandler) RestoreCloudBackup(c *fiber.Ctx) error {
	token, err := h.cloudToken(c)
	if err != nil {
		return err
	}

	archive, err := h.Cloud.Download(c.UserContext(), token, c.Params("id"))
	if err != nil {
		return cloudFailure(c, err, "Failed to download cloud backup")
	}

	return h.restore(c, archive, services.RestoreSourceCloud)
}

// DeleteCloudBackup handles DELETE /api/admin/cloud-backups/:id
// @Summary Delete a cloud backup
// @Tags Backup
// @Param id path string true "Drive item id"
// @Success 204
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 502 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /admin/cloud-backups/{id} [delete]
func (h *BackupHandler) DeleteCloudBackup(c *fiber.Ctx) error {
	token, err := h.cloudToken(c)
	if err != nil {
		return err
	}

	if err := h.Cloud.Delete(c.UserContext(), token, c.Params("id")); err != nil {
		return cloudFailure(c, err, "Failed to delete cloud backup")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListBackups handles GET /api/admin/backups
// @Summary Backup history
// @Description Most recent backup records, newest first
// @Tags Backup
// @Produce json
// @Param limit query int false "Maximum records (default 50)"
// @Success 200 {array} models.BackupRecord
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /admin/backups [get]
func (h *BackupHandler) ListBackups(c *fiber.Ctx) error {
	records, err := services.ListBackupRecords(c.UserContext(), h.DB, queryInt(c, "limit", 50))
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "backup.history")
	}
	return c.Status(fiber.StatusOK).JSON(records)
}

// GetSchedule handles GET /api/admin/backup/schedule
// @Summary Get the backup schedule
// @Tags Schedule
// @Produce json
// @Success 200 {object} models.BackupSchedule
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /admin/backup/schedule [get]
func (h *BackupHandler) GetSchedule(c *fiber.Ctx) error {
	schedule, err := services.GetSchedule(c.UserContext(), h.DB)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "schedule")
	}
	return c.Status(fiber.StatusOK).JSON(schedule)
}

// UpdateSchedule handles PUT /api/admin/backup/schedule
// @Summary Update the backup schedule
// @Tags Schedule
// @Accept json
// @Produce json
// @Param body body services.ScheduleInput true "Schedule settings"
// @Success 200 {object} models.BackupSchedule
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /admin/backup/schedule [put]
func (h *BackupHandler) UpdateSchedule(c *fiber.Ctx) error {
	var in services.ScheduleInput
	if err := c.BodyParser(&in); err != nil {
		return utils.ErrorResponse(c, fmt.Sprintf("Invalid request body: %v", err), fiber.StatusBadRequest, "schedule")
	}

	schedule, err := services.UpdateSchedule(c.UserContext(), h.DB, in)
	if err != nil {
		var ve *validation.RequestValidationError
		if errors.As(err, &ve) {
			return utils.ValidationErrorResponse(c, ve, "schedule")
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "schedule")
	}
	return c.Status(fiber.StatusOK).JSON(schedule)
}

// RunSchedule handles POST /api/admin/backup/schedule/run
// @Summary Run the scheduled backup
// @Description Run the scheduled backup if it is due, or unconditionally with force=true. Suitable for an external cron.
// @Tags Schedule
// @Produce json
// @Param force query bool false "Run even when not due"
// @Success 200 {object} services.ScheduleRunResult
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /admin/backup/schedule/run [post]
func (h *BackupHandler) RunSchedule(c *fiber.Ctx) error {
	result, err := services.RunScheduledBackup(c.UserContext(), h.DB, services.ScheduleRunOptions{
		Cloud:    h.Cloud,
		LocalDir: h.Cfg.BackupDir,
		Force:    queryBool(c, "force"),
	})
	if err != nil {
		logging.Error().Err(err).Msg("scheduled backup run failed")
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "schedule")
	}
	return c.Status(fiber.StatusOK).JSON(result)
}
