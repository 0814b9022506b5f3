package handler

import (
	"github.com/gofiber/fiber/v2"

	"cryptoinvest/internal/http/middleware"
	"cryptoinvest/internal/service"
)

// ReferralSummary returns the referral page header.
//
//	@Summary	Referral summary
//	@Tags		referrals
//	@Security	BearerAuth
//	@Success	200	{object}	service.ReferralSummary
//	@Router		/api/referrals [get]
func ReferralSummary(svc service.ReferralService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := svc.Summary(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(s)
	}
}

// ListReferrals returns the users the caller referred.
func ListReferrals(svc service.ReferralService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svc.List(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{"data": items})
	}
}

func ReferralLevels(svc service.ReferralService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"data": svc.Levels()})
	}
}
