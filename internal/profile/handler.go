package profile

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mlukic/fittrack/internal/auth"
	"github.com/mlukic/fittrack/internal/telemetry/metrics"
	"github.com/mlukic/fittrack/internal/telemetry/tracing"
	"github.com/mlukic/fittrack/pkg"

	log "github.com/sirupsen/logrus"
)

type Handler struct {
	manager *Manager
	metrics *metrics.Manager
}

func NewHandler(manager *Manager, metrics *metrics.Manager) *Handler {
	return &Handler{
		manager: manager,
		metrics: metrics,
	}
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.profile.get")
	defer span.End()

	userID := auth.UserIDFromContext(ctx)
	userProfile, err := handler.manager.Get(ctx, userID)
	if err != nil {
		log.Errorf("get profile for %s error: %s", userID, err)
		http.Error(w, "failed to get profile", http.StatusInternalServerError)
		return
	}
	if userProfile == nil {
		// no profile saved yet
		http.Error(w, "profile not found", http.StatusNotFound)
		return
	}

	profileJson, err := json.Marshal(userProfile)
	if err != nil {
		log.Errorf("marshal profile error: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, profileJson, http.StatusOK)
}

func (handler *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.profile.update")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var form FormData
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		log.Tracef("update profile, unmarshal json params: %s", err)
		http.Error(w, "update profile failed", http.StatusBadRequest)
		return
	}

	userID := auth.UserIDFromContext(ctx)
	userProfile, err := handler.manager.Update(ctx, userID, form)
	if err != nil {
		if errors.Is(err, ErrMissingRequiredField) || errors.Is(err, ErrInvalidProfileField) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Errorf("failed to update profile for %s: %s", userID, err)
		http.Error(w, "error, failed to update profile", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterProfileUpdates.Inc()

	profileJson, err := json.Marshal(userProfile)
	if err != nil {
		log.Errorf("marshal profile error: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, profileJson, http.StatusOK)
}
