package handler

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"cryptoinvest/internal/http/middleware"
	"cryptoinvest/internal/model"
)

// PriceBoard is the simulated market read by the public price endpoints.
type PriceBoard interface {
	Quotes() []model.Quote
	History(symbol string) ([]model.PricePoint, bool)
	Pairs() []string
}

// QuoteSource returns a raw upstream price document.
type QuoteSource interface {
	Prices(ctx context.Context) ([]byte, error)
}

// MarketPrices returns the latest simulated quote of every symbol.
//
//	@Summary	Simulated prices
//	@Tags		market
//	@Success	200	{array}	model.Quote
//	@Router		/api/market/prices [get]
func MarketPrices(board PriceBoard) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"data": board.Quotes(), "pairs": board.Pairs()})
	}
}

// PriceHistory returns the retained chart points of one symbol.
//
//	@Summary	Price history
//	@Tags		market
//	@Param		symbol	path	string	true	"BTC, ETH, ..."
//	@Success	200		{array}	model.PricePoint
//	@Failure	404		{object}	middleware.ErrorPayload
//	@Router		/api/market/prices/{symbol}/history [get]
func PriceHistory(board PriceBoard) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sym := strings.ToUpper(c.Params("symbol"))
		points, ok := board.History(sym)
		if !ok {
			return writeError(c, fiber.StatusNotFound, "UNKNOWN_SYMBOL", "unknown symbol")
		}
		return c.JSON(fiber.Map{"symbol": sym, "data": points})
	}
}

// ExternalPrices proxies the upstream quote document as-is.
//
//	@Summary	External prices
//	@Tags		market
//	@Produce	json
//	@Success	200
//	@Failure	502	{object}	middleware.ErrorPayload
//	@Router		/api/prices [get]
func ExternalPrices(src QuoteSource) fiber.Handler {
	return func(c *fiber.Ctx) error {
		body, err := src.Prices(c.UserContext())
		if err != nil {
			middleware.RecordError(c, err)
			return writeError(c, fiber.StatusBadGateway, "UPSTREAM_UNAVAILABLE", "price provider unavailable")
		}
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Send(body)
	}
}
