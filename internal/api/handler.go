package api

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"crypto-trader/backend/internal/apperrors"
	"crypto-trader/backend/internal/auth"
	"crypto-trader/backend/internal/config"
	"crypto-trader/backend/internal/model"
	"crypto-trader/backend/internal/supabase"
)

// Handler serves the API endpoints. It holds the immutable configuration,
// its own logger handle, the token issuer, and the downstream health probe.
type Handler struct {
	cfg    *config.Config
	logger *zap.Logger
	tokens *auth.TokenIssuer
	health supabase.HealthChecker
}

func NewHandler(cfg *config.Config, logger *zap.Logger, tokens *auth.TokenIssuer, health supabase.HealthChecker) *Handler {
	return &Handler{cfg: cfg, logger: logger, tokens: tokens, health: health}
}

// loginRequest is the OAuth2 password grant form. Both fields are required;
// missing ones are a validation failure, not an authentication one.
type loginRequest struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

// Root greets callers with the project name.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, h.logger, http.StatusOK, MessageResponse{
		Message: "Welcome to " + h.cfg.ProjectName + " API",
	})
}

// Health is the liveness probe: the process is up and serving.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, h.logger, http.StatusOK, StatusResponse{Status: "healthy"})
}

// Ready is the readiness probe: it checks the downstream dependency and
// answers 503 while it is unreachable.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if err := h.health.Health(r.Context()); err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, StatusResponse{Status: "ready"})
}

// Login implements the OAuth2 password flow: it verifies the bootstrap
// superuser credentials and issues a signed access token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondWithError(w, h.logger, apperrors.NewValidation("malformed form body", nil))
		return
	}

	req := loginRequest{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}
	if err := validateRequest(req); err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	if !h.credentialsValid(req.Username, req.Password) {
		w.Header().Set("WWW-Authenticate", "Bearer")
		respondWithError(w, h.logger, apperrors.NewAuthentication("Incorrect username or password", nil))
		return
	}

	token, err := h.tokens.CreateAccessToken(req.Username)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, model.Token{
		AccessToken: token,
		TokenType:   "bearer",
	})
}

// Me returns the identity of the bearer-token holder.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	subject, err := h.bearerSubject(r)
	if err != nil {
		w.Header().Set("WWW-Authenticate", "Bearer")
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, model.User{
		ID:          1,
		Email:       subject,
		IsActive:    true,
		IsSuperuser: subject == h.cfg.FirstSuperuser,
	})
}

// credentialsValid compares the submitted credentials against the bootstrap
// superuser in constant time. An unset superuser means nobody can log in.
func (h *Handler) credentialsValid(username, password string) bool {
	if h.cfg.FirstSuperuser == "" || h.cfg.FirstSuperuserPassword == "" {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(h.cfg.FirstSuperuser)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(h.cfg.FirstSuperuserPassword)) == 1
	return userOK && passOK
}

// bearerSubject extracts and verifies the Authorization bearer token,
// returning its subject.
func (h *Handler) bearerSubject(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", apperrors.NewAuthentication("Not authenticated", nil)
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", apperrors.NewAuthentication("Invalid authorization header", nil)
	}

	subject, err := h.tokens.ParseAccessToken(token)
	if err != nil {
		return "", apperrors.NewAuthentication("Could not validate credentials", nil)
	}
	return subject, nil
}
