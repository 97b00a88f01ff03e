package auth

import (
	"fmt"
	"net/http"

	"github.com/mlukic/fittrack/internal/telemetry/tracing"
	"github.com/mlukic/fittrack/pkg"

	log "github.com/sirupsen/logrus"
)

// AuthTokenHeader carries the session token on authenticated requests.
const AuthTokenHeader = "X-FITTRACK-TOKEN"

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service: service,
	}
}

func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.signup")
	defer span.End()

	if err := r.ParseForm(); err != nil {
		log.Errorf("signup failed, parse form error: %s", err)
		http.Error(w, "parse form error", http.StatusInternalServerError)
		return
	}

	email := r.Form.Get("email")
	if email == "" {
		http.Error(w, "error, email empty", http.StatusBadRequest)
		return
	}
	password := r.Form.Get("password")
	if password == "" {
		http.Error(w, "error, password empty", http.StatusBadRequest)
		return
	}

	userID, err := h.service.Signup(ctx, email, password)
	if err != nil {
		log.Tracef("failed signup attempt for %s: %s", email, err)
		http.Error(w, UserFacingMessage(err), http.StatusBadRequest)
		return
	}

	pkg.WriteResponse(w, pkg.ContentType.JSON, fmt.Sprintf(`{"userId": "%s"}`, userID), http.StatusCreated)
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.login")
	defer span.End()

	if err := r.ParseForm(); err != nil {
		log.Errorf("login failed, parse form error: %s", err)
		http.Error(w, "parse form error", http.StatusInternalServerError)
		return
	}

	email := r.Form.Get("email")
	if email == "" {
		http.Error(w, "error, email empty", http.StatusBadRequest)
		return
	}
	password := r.Form.Get("password")
	if password == "" {
		http.Error(w, "error, password empty", http.StatusBadRequest)
		return
	}

	token, userID, err := h.service.Login(ctx, email, password)
	if err != nil {
		log.Tracef("failed login attempt for %s: %s", email, err)
		http.Error(w, UserFacingMessage(err), http.StatusUnauthorized)
		return
	}

	pkg.WriteJSONResponseOK(w, fmt.Sprintf(`{"token": "%s", "userId": "%s"}`, token, userID))
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.logout")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Set("Access-Control-Allow-Headers", "*")
		w.WriteHeader(http.StatusOK)
		return
	}

	authToken := r.Header.Get(AuthTokenHeader)
	if authToken == "" {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	if err := h.service.Logout(ctx, authToken); err != nil {
		log.Tracef("logout failed: %s", err)
		http.Error(w, UserFacingMessage(err), http.StatusUnauthorized)
		return
	}

	pkg.WriteTextResponseOK(w, "logged-out")
}
