package handler

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"attendapi/internal/roster"
	"attendapi/internal/service"
)

type checkInRequest struct {
	Code string `json:"code" form:"code" validate:"required"`
}

type courseAttendanceQuery struct {
	Date string `query:"date" validate:"omitempty,datetime=2006-01-02"`
}

// CheckIn godoc
// @Summary      Check in
// @Description  Records the calling student's attendance from a scanned code. Send JSON, or multipart with an optional photo.
// @Tags         attendance
// @Accept       json,mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        code   formData  string  true   "Scanned code"
// @Param        photo  formData  file    false  "Selfie"
// @Success      201    {object}  model.Attendance
// @Failure      400    {object}  errorPayload
// @Failure      403    {object}  errorPayload
// @Failure      409    {object}  errorPayload
// @Failure      410    {object}  errorPayload
// @Router       /attendance/check-in [post]
func CheckIn(svc service.AttendanceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req checkInRequest
		if ok, err := bindBody(c, &req); !ok {
			return err
		}
		in := service.CheckInRequest{StudentID: actorFrom(c).UserID, Code: req.Code}

		if strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm) {
			if fh, err := c.FormFile("photo"); err == nil {
				f, err := fh.Open()
				if err != nil {
					return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
				}
				defer f.Close()
				in.Photo = f
			}
		}

		rec, err := svc.CheckIn(c.UserContext(), in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(rec)
	}
}

// MyAttendance lists the calling student's records, newest first.
func MyAttendance(svc service.AttendanceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, ok, err := pageParams(c, "50")
		if !ok {
			return err
		}
		res, err := svc.History(c.UserContext(), actorFrom(c).Username, limit, offset)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

func MyStats(svc service.AttendanceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stats, err := svc.StudentStats(c.UserContext(), actorFrom(c).Username)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(list(stats))
	}
}

// CourseAttendance lists a course's records, optionally for a single ?date=.
func CourseAttendance(svc service.AttendanceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var q courseAttendanceQuery
		if ok, err := bindQuery(c, &q); !ok {
			return err
		}
		limit, offset, ok, err := pageParams(c, "100")
		if !ok {
			return err
		}
		res, err := svc.ListByCourse(c.UserContext(), actorFrom(c), c.Params("id"), q.Date, limit, offset)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// CourseStats godoc
// @Summary      Course attendance statistics
// @Tags         courses
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string  true   "Course ID"
// @Param        from  query     string  false  "First date (YYYY-MM-DD)"
// @Param        to    query     string  false  "Last date (YYYY-MM-DD)"
// @Success      200   {object}  model.CourseStats
// @Failure      400   {object}  errorPayload
// @Failure      403   {object}  errorPayload
// @Router       /courses/{id}/stats [get]
func CourseStats(svc service.AttendanceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var q dateRange
		if ok, err := bindQuery(c, &q); !ok {
			return err
		}
		stats, err := svc.CourseStats(c.UserContext(), actorFrom(c), c.Params("id"), q.From, q.To)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(stats)
	}
}

type exportQuery struct {
	From   string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To     string `query:"to" validate:"omitempty,datetime=2006-01-02"`
	Format string `query:"format" validate:"omitempty,oneof=xlsx docx"`
}

// ExportCourse godoc
// @Summary      Export course attendance
// @Description  Attendance report as an .xlsx workbook (default) or a .docx sign-in sheet.
// @Tags         attendance
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Produce      application/vnd.openxmlformats-officedocument.wordprocessingml.document
// @Security     BearerAuth
// @Param        id      path   string  true   "Course ID"
// @Param        from    query  string  false  "First date (YYYY-MM-DD)"
// @Param        to      query  string  false  "Last date (YYYY-MM-DD)"
// @Param        format  query  string  false  "Document format"  Enums(xlsx, docx)
// @Success      200     {file}    file
// @Failure      400     {object}  errorPayload
// @Failure      404     {object}  errorPayload
// @Router       /courses/{id}/export [get]
func ExportCourse(svc service.AttendanceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var q exportQuery
		if ok, err := bindQuery(c, &q); !ok {
			return err
		}
		format, err := roster.ParseFormat(q.Format)
		if err != nil {
			return writeServiceError(c, err)
		}
		id := c.Params("id")
		var buf bytes.Buffer
		if err := svc.Export(c.UserContext(), actorFrom(c), id, q.From, q.To, format, &buf); err != nil {
			return writeServiceError(c, err)
		}
		c.Set(fiber.HeaderContentType, format.ContentType())
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="attendance-%s.%s"`, id, format))
		return c.Send(buf.Bytes())
	}
}

// AttendancePhoto returns a short-lived download URL for a check-in photo.
func AttendancePhoto(svc service.AttendanceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		url, err := svc.PhotoURL(c.UserContext(), actorFrom(c), c.Params("id"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"url": url})
	}
}
