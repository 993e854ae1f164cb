package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/bizdesk/bizdesk/internal/api/handler"
	"github.com/bizdesk/bizdesk/internal/api/middleware"
	"github.com/bizdesk/bizdesk/internal/auth"
	"github.com/bizdesk/bizdesk/internal/contact"
	"github.com/bizdesk/bizdesk/internal/finance"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	Store       handler.StorePinger
	AuthService *auth.Service
	Contacts    *contact.Service
	Finance     *finance.Service
	Version     string
}

// NewRouter creates and configures a Chi router with all middleware and routes.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)
	r.Use(chimiddleware.Logger)

	healthHandler := handler.NewHealthHandler(deps.Store, deps.Version)
	r.Get("/health", healthHandler.ServeHTTP)

	authHandler := handler.NewAuthHandler(deps.AuthService)
	r.Post("/auth/register", authHandler.Register)
	r.Post("/auth/login", authHandler.Login)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(deps.AuthService))

		r.Post("/auth/logout", authHandler.Logout)
		r.Get("/auth/me", authHandler.Me)

		if deps.Contacts != nil {
			contactHandler := handler.NewContactHandler(deps.Contacts)
			r.Route("/contacts", func(r chi.Router) {
				r.Get("/", contactHandler.List)
				r.Post("/", contactHandler.Create)
				r.Get("/{id}", contactHandler.GetByID)
				r.Patch("/{id}", contactHandler.Update)
				r.Delete("/{id}", contactHandler.Delete)
			})
		}

		if deps.Finance != nil {
			financeHandler := handler.NewFinanceHandler(deps.Finance)
			r.Route("/transactions", func(r chi.Router) {
				r.Get("/", financeHandler.List)
				r.Post("/", financeHandler.Create)
				r.Get("/summary", financeHandler.Summary)
				r.Delete("/{id}", financeHandler.Delete)
			})
		}
	})

	return r
}
