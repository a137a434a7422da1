package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"vocab-sprint/internal/auth"
	"vocab-sprint/internal/domain"
)

type userKey struct{}

// AuthHandler exposes sign-up, sign-in and sign-out, and guards the session routes.
type AuthHandler struct {
	identity *auth.Service
}

func NewAuthHandler(identity *auth.Service) *AuthHandler {
	return &AuthHandler{identity: identity}
}

func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Use(middleware.Timeout(15 * time.Second))
		r.Post("/signup", h.signUp)
		r.Post("/login", h.signIn)
		r.Post("/logout", h.signOut)
	})
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) signUp(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, errBadRequest)
		return
	}
	grant, err := h.identity.SignUp(r.Context(), body.Email, body.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, grant)
}

func (h *AuthHandler) signIn(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, errBadRequest)
		return
	}
	grant, err := h.identity.SignIn(r.Context(), body.Email, body.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, grant)
}

func (h *AuthHandler) signOut(w http.ResponseWriter, r *http.Request) {
	if err := h.identity.SignOut(r.Context(), bearerToken(r)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RequireUser rejects requests without a valid bearer token.
func (h *AuthHandler) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := h.identity.Authenticate(r.Context(), bearerToken(r))
		if err != nil {
			writeError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey{}, user)))
	})
}

func userFrom(ctx context.Context) domain.User {
	user, _ := ctx.Value(userKey{}).(domain.User)
	return user
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}
