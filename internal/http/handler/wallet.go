package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"cryptoinvest/internal/http/middleware"
	"cryptoinvest/internal/model"
	"cryptoinvest/internal/service"
)

type depositRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

type withdrawalRequest struct {
	Amount  decimal.Decimal `json:"amount"`
	Address string          `json:"address"`
}

// GetBalance returns the real and demo balances.
//
//	@Summary	Balance
//	@Tags		wallet
//	@Security	BearerAuth
//	@Success	200	{object}	model.Balance
//	@Router		/api/wallet/balance [get]
func GetBalance(svc service.WalletService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		b, err := svc.Balance(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(b)
	}
}

// RequestDeposit records a pending deposit.
//
//	@Summary	Request deposit
//	@Tags		wallet
//	@Security	BearerAuth
//	@Accept		json
//	@Success	201	{object}	model.Transaction
//	@Router		/api/wallet/deposits [post]
func RequestDeposit(svc service.WalletService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in depositRequest
		if ok, resp := bind(c, &in); !ok {
			return resp
		}
		tx, err := svc.RequestDeposit(c.UserContext(), middleware.UserID(c), in.Amount, in.Currency)
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(tx)
	}
}

// RequestWithdrawal debits the balance and records a pending withdrawal.
//
//	@Summary	Request withdrawal
//	@Tags		wallet
//	@Security	BearerAuth
//	@Accept		json
//	@Success	201	{object}	model.Transaction
//	@Failure	422	{object}	middleware.ErrorPayload
//	@Router		/api/wallet/withdrawals [post]
func RequestWithdrawal(svc service.WalletService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in withdrawalRequest
		if ok, resp := bind(c, &in); !ok {
			return resp
		}
		tx, err := svc.RequestWithdrawal(c.UserContext(), middleware.UserID(c), in.Amount, in.Address)
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(tx)
	}
}

// ListTransactions pages through the caller's history, optionally filtered by type and status.
//
//	@Summary	Transactions
//	@Tags		wallet
//	@Security	BearerAuth
//	@Param		type	query	string	false	"deposit, withdrawal, investment, earning, investment_return, referral_bonus, adjustment"
//	@Param		status	query	string	false	"pending, completed, failed"
//	@Param		limit	query	int		false	"1-100"	default(10)
//	@Param		offset	query	int		false	"offset"	default(0)
//	@Router		/api/wallet/transactions [get]
func ListTransactions(svc service.WalletService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, ok, resp := page(c)
		if !ok {
			return resp
		}
		f := model.TransactionFilter{
			Type:   model.TransactionType(c.Query("type")),
			Status: model.TransactionStatus(c.Query("status")),
		}
		res, err := svc.Transactions(c.UserContext(), middleware.UserID(c), f, limit, offset)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{"data": res.Items, "total": res.Total, "limit": limit, "offset": offset})
	}
}

// TransactionStats returns completed totals per type.
func TransactionStats(svc service.WalletService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := svc.Stats(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(s)
	}
}
