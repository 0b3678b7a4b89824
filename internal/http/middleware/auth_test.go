package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commande-service/internal/auth"
	"commande-service/internal/http/middleware"
)

const secret = "supersecret"

var issuer = auth.NewIssuer(secret, time.Hour)

func token(t *testing.T, subject string, role auth.Role) string {
	t.Helper()
	tok, err := issuer.Sign(subject, subject, role)
	require.NoError(t, err)
	return "Bearer " + tok
}

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestAuthenticateStatusMapping(t *testing.T) {
	r := chi.NewRouter()
	r.Use(middleware.Authenticate(auth.NewVerifier(secret)))
	r.Get("/p", okHandler)

	cases := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"missing", "", http.StatusUnauthorized, "Token manquant"},
		{"malformed", "Token abc", http.StatusUnauthorized, "Token mal formaté"},
		{"empty token", "Bearer ", http.StatusUnauthorized, "Token mal formaté"},
		{"bad signature", "Bearer not.a.jwt", http.StatusForbidden, "Token invalide"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/p", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.body)
		})
	}
}

func TestAuthenticateInvalidPayload(t *testing.T) {
	// a valid signature with a role outside the closed set is a payload
	// failure, not a signature failure
	r := chi.NewRouter()
	r.Use(middleware.Authenticate(auth.NewVerifier(secret)))
	r.Get("/p", okHandler)

	otherIssuer := auth.NewIssuer(secret, time.Hour)
	tok, err := otherIssuer.Sign("u1", "u1", auth.Role("intrus"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Token invalide (payload)")
}

func TestRequireRole(t *testing.T) {
	r := chi.NewRouter()
	r.Use(middleware.Authenticate(auth.NewVerifier(secret)))
	r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleRevendeur)).Get("/p", okHandler)

	cases := []struct {
		role   auth.Role
		status int
	}{
		{auth.RoleAdmin, http.StatusOK},
		{auth.RoleRevendeur, http.StatusOK},
		{auth.RoleWebshop, http.StatusForbidden},
		{auth.RoleClient, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.role.String(), func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/p", nil)
			req.Header.Set("Authorization", token(t, "u1", tc.role))
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
			if tc.status == http.StatusForbidden {
				assert.Contains(t, rec.Body.String(), "Accès interdit")
			}
		})
	}
}

func TestRequireRoleWithoutIdentity(t *testing.T) {
	// gate mounted without the verifier in front: fail closed
	r := chi.NewRouter()
	r.With(middleware.RequireRole(auth.RoleAdmin)).Get("/p", okHandler)

	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireOwner(t *testing.T) {
	r := chi.NewRouter()
	r.Use(middleware.Authenticate(auth.NewVerifier(secret)))
	r.With(middleware.RequireOwner("id", auth.RoleRevendeur)).Get("/revendeur/{id}", okHandler)

	cases := []struct {
		name    string
		subject string
		role    auth.Role
		path    string
		status  int
	}{
		{"self", "rev1", auth.RoleRevendeur, "/revendeur/rev1", http.StatusOK},
		{"other", "rev1", auth.RoleRevendeur, "/revendeur/rev2", http.StatusForbidden},
		{"admin any", "admin1", auth.RoleAdmin, "/revendeur/rev2", http.StatusOK},
		{"foreign role even on matching id", "web1", auth.RoleWebshop, "/revendeur/web1", http.StatusForbidden},
		{"client", "c1", auth.RoleClient, "/revendeur/c1", http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			req.Header.Set("Authorization", token(t, tc.subject, tc.role))
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}
