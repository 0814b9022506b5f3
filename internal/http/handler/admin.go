package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"cryptoinvest/internal/model"
	"cryptoinvest/internal/service"
)

type statusRequest struct {
	Status model.UserStatus `json:"status"`
}

type balanceRequest struct {
	Balance decimal.Decimal `json:"balance"`
}

type adminDepositRequest struct {
	UserID string          `json:"user_id"`
	Amount decimal.Decimal `json:"amount"`
	Note   string          `json:"note"`
}

// AdminStats returns the dashboard counters.
//
//	@Summary	Dashboard stats
//	@Tags		admin
//	@Security	BearerAuth
//	@Success	200	{object}	service.DashboardStats
//	@Router		/api/admin/stats [get]
func AdminStats(svc service.AdminService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := svc.Stats(c.UserContext())
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(s)
	}
}

// AdminUsers pages through every account with its balances.
func AdminUsers(svc service.AdminService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, ok, resp := page(c)
		if !ok {
			return resp
		}
		res, err := svc.Users(c.UserContext(), limit, offset)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{"data": res.Items, "total": res.Total, "limit": limit, "offset": offset})
	}
}

// SetUserStatus blocks or reactivates an account.
//
//	@Summary	Set user status
//	@Tags		admin
//	@Security	BearerAuth
//	@Param		id	path	string	true	"user id"
//	@Success	204
//	@Router		/api/admin/users/{id}/status [patch]
func SetUserStatus(svc service.AdminService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := idParam(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id")
		}
		var in statusRequest
		if ok, resp := bind(c, &in); !ok {
			return resp
		}
		if err := svc.SetStatus(c.UserContext(), id, in.Status); err != nil {
			return serviceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// SetUserBalance overwrites the real balance of an account.
func SetUserBalance(svc service.AdminService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := idParam(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id")
		}
		var in balanceRequest
		if ok, resp := bind(c, &in); !ok {
			return resp
		}
		b, err := svc.SetBalance(c.UserContext(), id, in.Balance)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(b)
	}
}

// AdminDeposit credits an account directly.
func AdminDeposit(svc service.AdminService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in adminDepositRequest
		if ok, resp := bind(c, &in); !ok {
			return resp
		}
		if _, err := uuid.Parse(in.UserID); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid user_id")
		}
		tx, err := svc.Deposit(c.UserContext(), in.UserID, in.Amount, in.Note)
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(tx)
	}
}

func AdminInvestments(svc service.AdminService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, ok, resp := page(c)
		if !ok {
			return resp
		}
		res, err := svc.Investments(c.UserContext(), limit, offset)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{"data": res.Items, "total": res.Total, "limit": limit, "offset": offset})
	}
}

// AdminTransactions lists every transaction, filtered by type, status and user_id.
func AdminTransactions(svc service.AdminService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, ok, resp := page(c)
		if !ok {
			return resp
		}
		f := model.TransactionFilter{
			UserID: c.Query("user_id"),
			Type:   model.TransactionType(c.Query("type")),
			Status: model.TransactionStatus(c.Query("status")),
		}
		if f.UserID != "" {
			if _, err := uuid.Parse(f.UserID); err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid user_id")
			}
		}
		res, err := svc.Transactions(c.UserContext(), f, limit, offset)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{"data": res.Items, "total": res.Total, "limit": limit, "offset": offset})
	}
}

// ApproveTransaction completes a pending deposit or withdrawal.
//
//	@Summary	Approve transaction
//	@Tags		admin
//	@Security	BearerAuth
//	@Param		id	path		string	true	"transaction id"
//	@Success	200	{object}	model.Transaction
//	@Failure	409	{object}	middleware.ErrorPayload
//	@Router		/api/admin/transactions/{id}/approve [post]
func ApproveTransaction(svc service.AdminService) fiber.Handler {
	return review(svc.Approve)
}

// RejectTransaction fails a pending deposit or withdrawal, refunding withdrawals.
//
//	@Summary	Reject transaction
//	@Tags		admin
//	@Security	BearerAuth
//	@Param		id	path		string	true	"transaction id"
//	@Success	200	{object}	model.Transaction
//	@Router		/api/admin/transactions/{id}/reject [post]
func RejectTransaction(svc service.AdminService) fiber.Handler {
	return review(svc.Reject)
}

func review(fn func(ctx context.Context, txID string) (*model.Transaction, error)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := idParam(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id")
		}
		tx, err := fn(c.UserContext(), id)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(tx)
	}
}
