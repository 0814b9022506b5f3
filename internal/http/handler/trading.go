package handler

import (
	"github.com/gofiber/fiber/v2"

	"cryptoinvest/internal/http/middleware"
	"cryptoinvest/internal/service"
)

// OpenTrade opens a demo position.
//
//	@Summary	Open trade
//	@Tags		trading
//	@Security	BearerAuth
//	@Accept		json
//	@Param		body	body		service.OpenTradeInput	true	"pair, side, amount, duration in seconds"
//	@Success	201		{object}	model.Trade
//	@Router		/api/trading/trades [post]
func OpenTrade(svc service.TradingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.OpenTradeInput
		if ok, resp := bind(c, &in); !ok {
			return resp
		}
		tr, err := svc.Open(c.UserContext(), middleware.UserID(c), in)
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(tr)
	}
}

// ListTrades returns the caller's trade history.
func ListTrades(svc service.TradingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svc.History(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{"data": items})
	}
}

// CloseTrade settles an open position at the current price.
//
//	@Summary	Close trade
//	@Tags		trading
//	@Security	BearerAuth
//	@Param		id	path		string	true	"trade id"
//	@Success	200	{object}	model.Trade
//	@Failure	409	{object}	middleware.ErrorPayload
//	@Router		/api/trading/trades/{id}/close [post]
func CloseTrade(svc service.TradingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := idParam(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id")
		}
		tr, err := svc.Close(c.UserContext(), middleware.UserID(c), id)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(tr)
	}
}

func TradeStats(svc service.TradingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := svc.Stats(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(s)
	}
}

// ResetDemo restores the starting demo balance.
func ResetDemo(svc service.TradingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		b, err := svc.Reset(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(b)
	}
}
