package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"commande-service/internal/auth"
	"commande-service/internal/http/middleware"
	"commande-service/pkg/metrics"
)

type Handlers struct {
	Root            http.HandlerFunc
	Health          http.HandlerFunc
	Login           http.HandlerFunc
	CreateCommande  http.HandlerFunc
	ListCommandes   http.HandlerFunc
	GetCommande     http.HandlerFunc
	UpdateCommande  http.HandlerFunc
	DeleteCommande  http.HandlerFunc
	ListByRevendeur http.HandlerFunc
	ListByWebshop   http.HandlerFunc
}

// NewRouter wires the route table. Mutating routes get the events middleware
// so a staged record is published after the response is written; the auth
// allow-lists are fixed here, per route, at startup.
func NewRouter(h *Handlers, verifier *auth.Verifier, eventsMW func(http.Handler) http.Handler, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(recoverer(log))
	r.Use(metrics.Middleware("service-commande"))
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/", h.Root)
	r.Get("/health", h.Health)
	r.Post("/auth/login", h.Login)

	r.Route("/commandes", func(r chi.Router) {
		r.Use(middleware.Authenticate(verifier))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(auth.RoleAdmin, auth.RoleRevendeur))
			r.Use(eventsMW)
			r.Post("/", h.CreateCommande)
			r.Put("/{id}", h.UpdateCommande)
			r.Delete("/{id}", h.DeleteCommande)
		})

		r.With(middleware.RequireRole(auth.RoleAdmin)).Get("/", h.ListCommandes)
		r.With(middleware.RequireOwner("id", auth.RoleRevendeur)).Get("/revendeur/{id}", h.ListByRevendeur)
		r.With(middleware.RequireOwner("id", auth.RoleWebshop)).Get("/webshop/{id}", h.ListByWebshop)
		r.Get("/{id}", h.GetCommande)
	})

	return r
}

// recoverer is the last-resort handler: a panic anywhere below becomes a
// generic 500, the internal error text stays in the log.
func recoverer(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Error().Interface("panic", rec).Str("path", r.URL.Path).Msg("handler panicked")
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{"message": "Erreur serveur"})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
