package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/provenvalueenterprises-collab/provenv-sub002/docs"
	"github.com/provenvalueenterprises-collab/provenv-sub002/internal/config"
	cronhandlers "github.com/provenvalueenterprises-collab/provenv-sub002/internal/handlers/cron"
	settlementhandlers "github.com/provenvalueenterprises-collab/provenv-sub002/internal/handlers/settlements"
	wallethandlers "github.com/provenvalueenterprises-collab/provenv-sub002/internal/handlers/wallet"
	"github.com/provenvalueenterprises-collab/provenv-sub002/internal/service"
	"github.com/provenvalueenterprises-collab/provenv-sub002/pkg/auth"
)

type CronHandler interface {
	TriggerRun(w http.ResponseWriter, r *http.Request)
	ListRuns(w http.ResponseWriter, r *http.Request)
}

type SettlementHandler interface {
	GetPending(w http.ResponseWriter, r *http.Request)
	Settle(w http.ResponseWriter, r *http.Request)
}

type WalletHandler interface {
	GetWallet(w http.ResponseWriter, r *http.Request)
	Credit(w http.ResponseWriter, r *http.Request)
	GetTransactions(w http.ResponseWriter, r *http.Request)
}

type Handlers struct {
	CronHandler       CronHandler
	SettlementHandler SettlementHandler
	WalletHandler     WalletHandler

	cronSecret  string
	jwtService  auth.JWTServiceInterface
	adminUserID int
}

func New(s *service.Services, cfg *config.Config) *Handlers {
	return &Handlers{
		CronHandler:       cronhandlers.New(s.ContributionService),
		SettlementHandler: settlementhandlers.New(s.SettlementService),
		WalletHandler:     wallethandlers.New(s.WalletService),
		cronSecret:        cfg.CronSecret,
		jwtService:        auth.NewJWTService(cfg.JWTSecret),
		adminUserID:       cfg.AdminUserID,
	}
}

func (h *Handlers) InitRoutes(r chi.Router) chi.Router {
	r.Use(
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
	)
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("doc.json"),
	))
	r.Route("/api", func(r chi.Router) {
		r.Route("/cron", func(r chi.Router) {
			r.Use(auth.CronAuth(h.cronSecret))
			r.Post("/contributions", h.CronHandler.TriggerRun)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.AdminAuth(h.jwtService, h.adminUserID))
			r.Route("/admin", func(r chi.Router) {
				// The admin retrigger is an authorization wrapper around the
				// same run contract the scheduler uses.
				r.Post("/contributions/run", h.CronHandler.TriggerRun)
				r.Get("/contributions/runs", h.CronHandler.ListRuns)
				r.Route("/settlements", func(r chi.Router) {
					r.Get("/pending", h.SettlementHandler.GetPending)
					r.Post("/{accountID}", h.SettlementHandler.Settle)
				})
			})
			r.Route("/wallets/{userID}", func(r chi.Router) {
				r.Get("/", h.WalletHandler.GetWallet)
				r.Post("/credit", h.WalletHandler.Credit)
				r.Get("/transactions", h.WalletHandler.GetTransactions)
			})
		})
	})

	return r
}
