package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/splitledger/splitledger/internal/auth"
	"github.com/splitledger/splitledger/internal/metrics"
	"github.com/splitledger/splitledger/internal/middleware"
	"github.com/splitledger/splitledger/internal/service"
)

// Services bundles the dependencies the router needs.
type Services struct {
	Auth   *service.AuthService
	Groups *service.GroupService
	Splits *service.SplitService
	Tokens *auth.JWTManager
}

// NewRouter builds the HTTP routing table. Health and metrics are open;
// everything under /api/v1 except registration and login requires a valid
// session token.
func NewRouter(svc Services) http.Handler {
	authH := &authHandlers{auth: svc.Auth}
	groupH := &groupHandlers{groups: svc.Groups, splits: svc.Splits}
	contactH := &contactHandlers{groups: svc.Groups}
	expenseH := &expenseHandlers{splits: svc.Splits}

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Logging)
	r.Use(middleware.Metrics)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", authH.register)
		r.Post("/auth/login", authH.login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(svc.Tokens))

			r.Get("/me", authH.me)

			r.Route("/groups", func(r chi.Router) {
				r.Post("/", groupH.create)
				r.Get("/", groupH.list)
				r.Get("/{groupID}", groupH.get)
				r.Put("/{groupID}", groupH.update)
				r.Delete("/{groupID}", groupH.delete)

				r.Get("/{groupID}/members", groupH.listMembers)
				r.Post("/{groupID}/members", groupH.addMember)
				r.Get("/{groupID}/balances", groupH.balances)
				r.Get("/{groupID}/expenses", groupH.listExpenses)
			})
			r.Put("/members/{memberID}", groupH.updateMember)
			r.Delete("/members/{memberID}", groupH.removeMember)

			r.Route("/contacts", func(r chi.Router) {
				r.Post("/", contactH.create)
				r.Get("/", contactH.list)
				r.Put("/{contactID}", contactH.update)
				r.Delete("/{contactID}", contactH.delete)
			})

			r.Post("/expenses", expenseH.submit)
			r.Get("/expenses/{txnID}", expenseH.get)
			r.Post("/splits/{splitID}/settle", expenseH.settle)
		})
	})

	return r
}
