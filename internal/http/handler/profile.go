package handler

import (
	"github.com/gofiber/fiber/v2"

	"cryptoinvest/internal/http/middleware"
	"cryptoinvest/internal/model"
	"cryptoinvest/internal/service"
)

// GetProfile returns the profile page data.
//
//	@Summary	Profile
//	@Tags		profile
//	@Security	BearerAuth
//	@Success	200	{object}	service.Profile
//	@Router		/api/profile [get]
func GetProfile(svc service.ProfileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := svc.Get(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(p)
	}
}

// UpdateProfile saves the personal information tab.
func UpdateProfile(svc service.ProfileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in model.ProfileUpdate
		if ok, resp := bind(c, &in); !ok {
			return resp
		}
		p, err := svc.UpdateInfo(c.UserContext(), middleware.UserID(c), in)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(p)
	}
}

// UpdatePreferences saves timezone, language, currency and theme.
func UpdatePreferences(svc service.ProfileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in model.Preferences
		if ok, resp := bind(c, &in); !ok {
			return resp
		}
		p, err := svc.UpdatePreferences(c.UserContext(), middleware.UserID(c), in)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(p)
	}
}

// UpdateNotifications saves the notification channels.
func UpdateNotifications(svc service.ProfileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in model.NotificationSettings
		if ok, resp := bind(c, &in); !ok {
			return resp
		}
		p, err := svc.UpdateNotifications(c.UserContext(), middleware.UserID(c), in)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(p)
	}
}

// ChangePassword verifies the current password and stores the new one.
func ChangePassword(svc service.ProfileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.PasswordChange
		if ok, resp := bind(c, &in); !ok {
			return resp
		}
		if err := svc.ChangePassword(c.UserContext(), middleware.UserID(c), in); err != nil {
			return serviceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// UploadAvatar accepts a multipart image in the "file" field.
//
//	@Summary	Upload avatar
//	@Tags		profile
//	@Security	BearerAuth
//	@Accept		multipart/form-data
//	@Param		file	formData	file	true	"PNG, JPEG, GIF or WebP up to 2 MiB"
//	@Success	200		{object}	service.Profile
//	@Router		/api/profile/avatar [post]
func UploadAvatar(svc service.ProfileService) fiber.Handler {
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

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}

		p, err := svc.UploadAvatar(c.UserContext(), middleware.UserID(c), f, ct, fh.Size)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(p)
	}
}
