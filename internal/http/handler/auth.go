package handler

import (
	"github.com/gofiber/fiber/v2"

	"cryptoinvest/internal/http/middleware"
	"cryptoinvest/internal/service"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an account and returns a session.
//
//	@Summary	Register
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		service.RegisterInput	true	"signup form"
//	@Success	201		{object}	service.AuthResult
//	@Failure	409		{object}	middleware.ErrorPayload
//	@Router		/api/auth/register [post]
func Register(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.RegisterInput
		if ok, resp := bind(c, &in); !ok {
			return resp
		}
		res, err := svc.Register(c.UserContext(), in)
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

// Login exchanges credentials for a session.
//
//	@Summary	Login
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Success	200	{object}	service.AuthResult
//	@Failure	401	{object}	middleware.ErrorPayload
//	@Router		/api/auth/login [post]
func Login(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in loginRequest
		if ok, resp := bind(c, &in); !ok {
			return resp
		}
		res, err := svc.Login(c.UserContext(), in.Email, in.Password)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(res)
	}
}

// Me returns the authenticated account.
func Me(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, err := svc.Me(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(u)
	}
}
