package handler

import (
	"github.com/gofiber/fiber/v2"

	"attendapi/internal/model"
	"attendapi/internal/service"
)

type createCourseRequest struct {
	Name         string `json:"name" validate:"required,max=128"`
	TeacherCode  string `json:"teacher_code" validate:"required"`
	ClassCode    string `json:"class_code" validate:"required"`
	ScheduleText string `json:"schedule_text"`
}

// CreateCourse godoc
// @Summary      Create a course
// @Tags         courses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createCourseRequest  true  "Course"
// @Success      201   {object}  model.Course
// @Failure      400   {object}  errorPayload
// @Failure      404   {object}  errorPayload
// @Router       /courses [post]
func CreateCourse(svc service.CourseService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createCourseRequest
		if ok, err := bindBody(c, &req); !ok {
			return err
		}
		course, err := svc.Create(c.UserContext(), service.NewCourse{
			Name:         req.Name,
			TeacherCode:  req.TeacherCode,
			ClassCode:    req.ClassCode,
			ScheduleText: req.ScheduleText,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(course)
	}
}

// ListCourses lists the caller's courses: a teacher's own, or those of a student's class.
// Admins filter with ?teacher= or ?class=.
func ListCourses(courses service.CourseService, users service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		actor := actorFrom(c)

		var (
			res []model.Course
			err error
		)
		switch actor.Role {
		case model.RoleTeacher:
			res, err = courses.ListForTeacher(ctx, actor.Username)
		case model.RoleStudent:
			var me *model.User
			if me, err = users.Me(ctx, actor.UserID); err == nil {
				res, err = courses.ListForClass(ctx, me.ClassCode)
			}
		default:
			if teacher := c.Query("teacher"); teacher != "" {
				res, err = courses.ListForTeacher(ctx, teacher)
			} else {
				res, err = courses.ListForClass(ctx, c.Query("class"))
			}
		}
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(list(res))
	}
}

// CourseSessions expands a course's schedule into dated sessions.
func CourseSessions(svc service.CourseService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessions, err := svc.Sessions(c.UserContext(), c.Params("id"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(list(sessions))
	}
}

// GenerateQRCode godoc
// @Summary      Issue an attendance code
// @Description  Returns a short-lived code and its QR image for the caller's course
// @Tags         courses
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Course ID"
// @Success      200  {object}  service.QRCode
// @Failure      403  {object}  errorPayload
// @Failure      404  {object}  errorPayload
// @Router       /courses/{id}/qrcode [post]
func GenerateQRCode(svc service.QRService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		code, err := svc.Generate(c.UserContext(), actorFrom(c), c.Params("id"))
		if err != nil {
			return writeServiceError(c, err)
		}
		c.Set(fiber.HeaderCacheControl, "no-store")
		return c.JSON(code)
	}
}

// QRCodePNG issues a code and serves only its image.
func QRCodePNG(svc service.QRService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		png, err := svc.PNG(c.UserContext(), actorFrom(c), c.Params("id"))
		if err != nil {
			return writeServiceError(c, err)
		}
		c.Set(fiber.HeaderCacheControl, "no-store")
		c.Type("png")
		return c.Send(png)
	}
}
