package handler

import (
	"github.com/gofiber/fiber/v2"

	"cryptoinvest/internal/http/middleware"
	"cryptoinvest/internal/service"
)

// ListPlans returns the plan catalogue. It is public.
//
//	@Summary	Investment plans
//	@Tags		investments
//	@Success	200	{array}	model.Plan
//	@Router		/api/plans [get]
func ListPlans(svc service.InvestmentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"data": svc.Plans()})
	}
}

// QuoteInvestment previews daily and total returns without touching the balance.
func QuoteInvestment(svc service.InvestmentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.InvestInput
		if ok, resp := bind(c, &in); !ok {
			return resp
		}
		q, err := svc.Quote(in)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(q)
	}
}

// CreateInvestment opens an investment paid from the real balance.
//
//	@Summary	Invest
//	@Tags		investments
//	@Security	BearerAuth
//	@Accept		json
//	@Param		body	body		service.InvestInput	true	"plan, amount and currency"
//	@Success	201		{object}	model.Investment
//	@Failure	422		{object}	middleware.ErrorPayload
//	@Router		/api/investments [post]
func CreateInvestment(svc service.InvestmentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.InvestInput
		if ok, resp := bind(c, &in); !ok {
			return resp
		}
		inv, err := svc.Invest(c.UserContext(), middleware.UserID(c), in)
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(inv)
	}
}

// ListInvestments returns the caller's investments, newest first.
func ListInvestments(svc service.InvestmentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svc.List(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{"data": items})
	}
}
