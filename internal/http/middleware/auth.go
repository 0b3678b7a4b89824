package middleware

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"commande-service/internal/auth"
)

const msgForbidden = "Accès interdit : rôle insuffisant"

// Authenticate verifies the Authorization header and attaches the resulting
// identity to the request context. Missing and malformed credentials are 401,
// failed verification and a bad payload are 403, matching the wire contract
// of the auth error taxonomy.
func Authenticate(v *auth.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := v.Verify(r.Header.Get("Authorization"))
			if err != nil {
				writeMessage(w, statusFor(err), messageFor(err))
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}

// RequireRole allows the request through only when the authenticated role is
// in the allow-list. The list is fixed per route at startup.
func RequireRole(roles ...auth.Role) func(http.Handler) http.Handler {
	allowed := make(map[auth.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := auth.IdentityFrom(r.Context())
			if !ok {
				writeMessage(w, http.StatusForbidden, msgForbidden)
				return
			}
			if _, ok := allowed[id.Role]; !ok {
				writeMessage(w, http.StatusForbidden, msgForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireOwner guards the scoped list routes: admin always passes, the scoped
// role passes only when its identity equals the URL parameter, everything
// else fails closed.
func RequireOwner(param string, scoped auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := auth.IdentityFrom(r.Context())
			if !ok {
				writeMessage(w, http.StatusForbidden, msgForbidden)
				return
			}
			switch {
			case id.Role == auth.RoleAdmin:
			case id.Role == scoped && id.Subject == chi.URLParam(r, param):
			default:
				writeMessage(w, http.StatusForbidden, msgForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func statusFor(err error) int {
	if errors.Is(err, auth.ErrMissingToken) || errors.Is(err, auth.ErrMalformedToken) {
		return http.StatusUnauthorized
	}
	return http.StatusForbidden
}

func messageFor(err error) string {
	switch {
	case errors.Is(err, auth.ErrMissingToken):
		return "Token manquant"
	case errors.Is(err, auth.ErrMalformedToken):
		return "Token mal formaté"
	case errors.Is(err, auth.ErrInvalidPayload):
		return "Token invalide (payload)"
	default:
		return "Token invalide"
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": msg})
}
