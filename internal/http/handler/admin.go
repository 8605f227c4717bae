package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"attendapi/internal/http/middleware"
	"attendapi/internal/service"
)

type purgePhotosRequest struct {
	OlderThanDays *int `json:"older_than_days" validate:"omitempty,gte=0"`
}

// ImportRoster godoc
// @Summary      Import a roster workbook
// @Description  Adds classes, teachers, students and courses from an .xlsx file. Existing entries are skipped.
// @Tags         admin
// @Accept       mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        file  formData  file  true  "Roster workbook"
// @Success      200   {object}  service.ImportReport
// @Failure      400   {object}  errorPayload
// @Failure      500   {object}  importFailurePayload
// @Router       /admin/import [post]
func ImportRoster(svc service.RosterService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		report, err := svc.Import(c.UserContext(), f)
		if err != nil {
			if report != nil && errors.Is(err, service.ErrImportIncomplete) {
				c.Locals(middleware.ErrorLocalKey, err.Error())
				return c.Status(fiber.StatusInternalServerError).JSON(importFailurePayload{
					errorPayload: errorPayload{
						RequestID: requestIDFromCtx(c),
						Error: errorEnvelope{
							Code:    "IMPORT_INCOMPLETE",
							Message: service.ErrImportIncomplete.Error(),
						},
					},
					Report: report,
				})
			}
			return writeServiceError(c, err)
		}
		return c.JSON(report)
	}
}

// PurgePhotos removes check-in photos older than the retention period, or
// older_than_days when given.
func PurgePhotos(svc service.CleanupService, retentionDays int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req purgePhotosRequest
		if len(c.Body()) > 0 {
			if ok, err := bindBody(c, &req); !ok {
				return err
			}
		}
		days := retentionDays
		if req.OlderThanDays != nil {
			days = *req.OlderThanDays
		}
		n, err := svc.PurgePhotos(c.UserContext(), time.Now().AddDate(0, 0, -days))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"removed": n})
	}
}
