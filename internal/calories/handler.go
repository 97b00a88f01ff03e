package calories

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mlukic/fittrack/internal/auth"
	"github.com/mlukic/fittrack/internal/telemetry/metrics"
	"github.com/mlukic/fittrack/internal/telemetry/tracing"
	"github.com/mlukic/fittrack/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type DeleteEntryResponse struct {
	DeletedID string `json:"deletedId"`
}

type UpdateEntryResponse struct {
	UpdatedID string `json:"updatedId"`
}

type ListResponse struct {
	Entries []CalorieEntry `json:"entries"`
	Total   int            `json:"total"`
}

type Handler struct {
	ledger  *Ledger
	metrics *metrics.Manager
}

func NewHandler(ledger *Ledger, metrics *metrics.Manager) *Handler {
	return &Handler{
		ledger:  ledger,
		metrics: metrics,
	}
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.calories.add")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var entry CalorieEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		log.Tracef("new calorie entry, unmarshal json params: %s", err)
		http.Error(w, "add calorie entry failed", http.StatusBadRequest)
		return
	}

	userID := auth.UserIDFromContext(ctx)
	addedEntry, err := handler.ledger.AddEntry(ctx, userID, entry)
	if err != nil {
		if isBadEntryErr(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Errorf("failed to add calorie entry for %s: %s", userID, err)
		http.Error(w, "error, failed to add calorie entry", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterCalorieEntries.Inc()

	addedEntryJson, err := json.Marshal(addedEntry)
	if err != nil {
		log.Errorf("failed to marshal added calorie entry: %s", err)
		http.Error(w, "error, failed to add calorie entry", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, addedEntryJson, http.StatusCreated)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.calories.delete")
	defer span.End()

	vars := mux.Vars(r)
	entryID := vars["id"]
	if entryID == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}

	userID := auth.UserIDFromContext(ctx)
	if err := handler.ledger.RemoveEntry(ctx, userID, entryID); err != nil {
		log.Errorf("failed to delete calorie entry %s for %s: %s", entryID, userID, err)
		http.Error(w, "error, calorie entry not deleted", http.StatusInternalServerError)
		return
	}

	deleteRespJson, err := json.Marshal(DeleteEntryResponse{
		DeletedID: entryID,
	})
	if err != nil {
		log.Errorf("failed to marshal delete response: %s", err)
		http.Error(w, "failed to marshal delete response", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponseOK(w, string(deleteRespJson))
}

func (handler *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.calories.update")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	vars := mux.Vars(r)
	entryID := vars["id"]
	if entryID == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}

	var update EntryUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		log.Errorf("update calorie entry, unmarshal json params: %s", err)
		http.Error(w, "update calorie entry failed", http.StatusBadRequest)
		return
	}

	userID := auth.UserIDFromContext(ctx)
	if err := handler.ledger.UpdateEntry(ctx, userID, entryID, update); err != nil {
		if isBadEntryErr(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Errorf("failed to update calorie entry %s for %s: %s", entryID, userID, err)
		http.Error(w, "error, failed to update calorie entry", http.StatusInternalServerError)
		return
	}

	updateRespJson, err := json.Marshal(UpdateEntryResponse{
		UpdatedID: entryID,
	})
	if err != nil {
		log.Errorf("failed to marshal update response: %s", err)
		http.Error(w, "failed to marshal update response", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponseOK(w, string(updateRespJson))
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.calories.list")
	defer span.End()

	vars := mux.Vars(r)
	date := vars["date"]
	if date == "" {
		http.Error(w, "error, date empty", http.StatusBadRequest)
		return
	}

	userID := auth.UserIDFromContext(ctx)
	entries, err := handler.ledger.Entries(ctx, userID, date)
	if err != nil {
		if errors.Is(err, ErrInvalidDate) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Errorf("list calorie entries for %s error: %s", userID, err)
		http.Error(w, "failed to get calorie entries", http.StatusInternalServerError)
		return
	}

	listRespJson, err := json.Marshal(ListResponse{
		Entries: entries,
		Total:   len(entries),
	})
	if err != nil {
		log.Errorf("marshal calorie entries error: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, listRespJson, http.StatusOK)
}

func (handler *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.calories.summary")
	defer span.End()

	vars := mux.Vars(r)
	date := vars["date"]
	if date == "" {
		http.Error(w, "error, date empty", http.StatusBadRequest)
		return
	}

	userID := auth.UserIDFromContext(ctx)
	summary, err := handler.ledger.Summary(ctx, userID, date)
	if err != nil {
		if errors.Is(err, ErrInvalidDate) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Errorf("daily summary for %s error: %s", userID, err)
		http.Error(w, "failed to get daily summary", http.StatusInternalServerError)
		return
	}

	summaryJson, err := json.Marshal(summary)
	if err != nil {
		log.Errorf("marshal daily summary error: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, summaryJson, http.StatusOK)
}

func (handler *Handler) HandleGetGoals(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.calories.goals")
	defer span.End()

	userID := auth.UserIDFromContext(ctx)
	goals, err := handler.ledger.Goals(ctx, userID)
	if err != nil {
		log.Errorf("get calorie goals for %s error: %s", userID, err)
		http.Error(w, "failed to get calorie goals", http.StatusInternalServerError)
		return
	}

	goalsJson, err := json.Marshal(goals)
	if err != nil {
		log.Errorf("marshal calorie goals error: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, goalsJson, http.StatusOK)
}

func (handler *Handler) HandleUpdateGoals(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.calories.updateGoals")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var update GoalsUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		log.Errorf("update calorie goals, unmarshal json params: %s", err)
		http.Error(w, "update calorie goals failed", http.StatusBadRequest)
		return
	}

	userID := auth.UserIDFromContext(ctx)
	goals, err := handler.ledger.UpdateGoals(ctx, userID, update)
	if err != nil {
		if errors.Is(err, ErrInvalidGoal) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Errorf("update calorie goals for %s error: %s", userID, err)
		http.Error(w, "error, failed to update calorie goals", http.StatusInternalServerError)
		return
	}

	goalsJson, err := json.Marshal(goals)
	if err != nil {
		log.Errorf("marshal calorie goals error: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponseOK(w, string(goalsJson))
}

func isBadEntryErr(err error) bool {
	return errors.Is(err, ErrInvalidEntry) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidMealType)
}
