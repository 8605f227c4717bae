package handler

import (
	"github.com/gofiber/fiber/v2"

	"attendapi/internal/service"
)

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

// Login godoc
// @Summary      Log in
// @Description  Exchanges credentials for a bearer token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  service.LoginResult
// @Failure      400   {object}  errorPayload
// @Failure      401   {object}  errorPayload
// @Router       /auth/login [post]
func Login(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req loginRequest
		if ok, err := bindBody(c, &req); !ok {
			return err
		}
		res, err := svc.Login(c.UserContext(), req.Username, req.Password)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// Me returns the caller's profile.
func Me(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, err := svc.Me(c.UserContext(), actorFrom(c).UserID)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(u)
	}
}

// ChangePassword replaces the caller's password after checking the old one.
func ChangePassword(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req changePasswordRequest
		if ok, err := bindBody(c, &req); !ok {
			return err
		}
		err := svc.ChangePassword(c.UserContext(), actorFrom(c).UserID, req.OldPassword, req.NewPassword)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
