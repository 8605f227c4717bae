package handler

import (
	"github.com/gofiber/fiber/v2"

	"attendapi/internal/service"
)

type createClassRequest struct {
	Code string `json:"code" validate:"required,max=64"`
	Name string `json:"name" validate:"required,max=128"`
}

type bindClassRequest struct {
	ClassCode        string `json:"class_code" validate:"required"`
	VerificationCode string `json:"verification_code" validate:"required,len=6,numeric"`
}

// CreateClass godoc
// @Summary      Create a class
// @Tags         classes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createClassRequest  true  "Class"
// @Success      201   {object}  model.Class
// @Failure      400   {object}  errorPayload
// @Failure      409   {object}  errorPayload
// @Router       /classes [post]
func CreateClass(svc service.ClassService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createClassRequest
		if ok, err := bindBody(c, &req); !ok {
			return err
		}
		class, err := svc.Create(c.UserContext(), req.Code, req.Name)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(class)
	}
}

func ListClasses(svc service.ClassService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		classes, err := svc.List(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(list(classes))
	}
}

func ListClassStudents(svc service.ClassService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		students, err := svc.ListStudents(c.UserContext(), c.Params("code"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(list(students))
	}
}

// RegenerateVerificationCode replaces a class's binding code and returns the class.
func RegenerateVerificationCode(svc service.ClassService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		class, err := svc.RegenerateVerificationCode(c.UserContext(), c.Params("code"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(class)
	}
}

// BindClass godoc
// @Summary      Join a class
// @Description  Binds the calling student to a class using its verification code
// @Tags         classes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      bindClassRequest  true  "Binding"
// @Success      200   {object}  model.User
// @Failure      400   {object}  errorPayload
// @Failure      409   {object}  errorPayload
// @Router       /classes/bind [post]
func BindClass(svc service.ClassService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req bindClassRequest
		if ok, err := bindBody(c, &req); !ok {
			return err
		}
		u, err := svc.Bind(c.UserContext(), actorFrom(c).UserID, req.ClassCode, req.VerificationCode)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(u)
	}
}
