package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cryptoinvest/internal/http/middleware"
	"cryptoinvest/internal/service"
)

// Deps carries everything the routes need. Optional members may be nil: a nil Limiter
// disables rate limiting, a nil Gatherer hides /metrics and a nil Quotes hides /api/prices.
type Deps struct {
	DB       Pinger
	Tokens   middleware.TokenParser
	Users    middleware.UserFinder
	Limiter  *middleware.RateLimiter
	Gatherer prometheus.Gatherer

	Auth        service.AuthService
	Profile     service.ProfileService
	Wallet      service.WalletService
	Investments service.InvestmentService
	Trading     service.TradingService
	Referrals   service.ReferralService
	Admin       service.AdminService

	Market PriceBoard
	Quotes QuoteSource
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, d Deps) {
	app.Get("/health", HealthCheck(d.DB))
	app.Get("/healthz", LivenessProbe())
	if d.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api")

	var limited []fiber.Handler
	if d.Limiter != nil {
		limited = append(limited, d.Limiter.Handler())
	}
	auth := api.Group("/auth")
	auth.Post("/register", chain(limited, Register(d.Auth))...)
	auth.Post("/login", chain(limited, Login(d.Auth))...)

	api.Get("/plans", ListPlans(d.Investments))
	api.Get("/market/prices", MarketPrices(d.Market))
	api.Get("/market/prices/:symbol/history", PriceHistory(d.Market))
	if d.Quotes != nil {
		api.Get("/prices", ExternalPrices(d.Quotes))
	}

	authed := []fiber.Handler{middleware.Auth(d.Tokens), middleware.RequireActive(d.Users)}
	with := func(h fiber.Handler) []fiber.Handler { return chain(authed, h) }

	auth.Get("/me", with(Me(d.Auth))...)

	api.Get("/profile", with(GetProfile(d.Profile))...)
	api.Put("/profile", with(UpdateProfile(d.Profile))...)
	api.Put("/profile/preferences", with(UpdatePreferences(d.Profile))...)
	api.Put("/profile/notifications", with(UpdateNotifications(d.Profile))...)
	api.Put("/profile/password", with(ChangePassword(d.Profile))...)
	api.Post("/profile/avatar", with(UploadAvatar(d.Profile))...)

	api.Get("/wallet/balance", with(GetBalance(d.Wallet))...)
	api.Post("/wallet/deposits", with(RequestDeposit(d.Wallet))...)
	api.Post("/wallet/withdrawals", with(RequestWithdrawal(d.Wallet))...)
	api.Get("/wallet/transactions", with(ListTransactions(d.Wallet))...)
	api.Get("/wallet/stats", with(TransactionStats(d.Wallet))...)

	api.Post("/investments/quote", with(QuoteInvestment(d.Investments))...)
	api.Post("/investments", with(CreateInvestment(d.Investments))...)
	api.Get("/investments", with(ListInvestments(d.Investments))...)

	api.Post("/trading/trades", with(OpenTrade(d.Trading))...)
	api.Get("/trading/trades", with(ListTrades(d.Trading))...)
	api.Post("/trading/trades/:id/close", with(CloseTrade(d.Trading))...)
	api.Get("/trading/stats", with(TradeStats(d.Trading))...)
	api.Post("/trading/reset", with(ResetDemo(d.Trading))...)

	api.Get("/referrals", with(ReferralSummary(d.Referrals))...)
	api.Get("/referrals/users", with(ListReferrals(d.Referrals))...)
	api.Get("/referrals/levels", ReferralLevels(d.Referrals))

	admin := api.Group("/admin", chain(authed, middleware.AdminOnly())...)
	admin.Get("/stats", AdminStats(d.Admin))
	admin.Get("/users", AdminUsers(d.Admin))
	admin.Patch("/users/:id/status", SetUserStatus(d.Admin))
	admin.Put("/users/:id/balance", SetUserBalance(d.Admin))
	admin.Post("/deposit", AdminDeposit(d.Admin))
	admin.Get("/investments", AdminInvestments(d.Admin))
	admin.Get("/transactions", AdminTransactions(d.Admin))
	admin.Post("/transactions/:id/approve", ApproveTransaction(d.Admin))
	admin.Post("/transactions/:id/reject", RejectTransaction(d.Admin))
}

// chain returns a fresh slice of mw followed by h.
func chain(mw []fiber.Handler, h fiber.Handler) []fiber.Handler {
	out := make([]fiber.Handler, 0, len(mw)+1)
	return append(append(out, mw...), h)
}
