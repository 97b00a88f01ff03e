package workout

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

type StartWorkoutRequest struct {
	WorkoutPlanID int `json:"workoutPlanId,omitempty"`
}

type RemoveExerciseResponse struct {
	RemovedID string `json:"removedId"`
}

type UpdateExerciseResponse struct {
	UpdatedID string `json:"updatedId"`
}

type HistoryResponse struct {
	Workouts []WorkoutSession `json:"workouts"`
	Total    int              `json:"total"`
}

type PlansResponse struct {
	Plans []WorkoutPlan `json:"plans"`
}

type Handler struct {
	engine  *Engine
	catalog *PlansCatalog
	metrics *metrics.Manager
}

func NewHandler(engine *Engine, catalog *PlansCatalog, metrics *metrics.Manager) *Handler {
	return &Handler{
		engine:  engine,
		catalog: catalog,
		metrics: metrics,
	}
}

func (handler *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workout.start")
	defer span.End()

	var startReq StartWorkoutRequest
	if r.Body != nil && r.Header.Get("Content-Type") == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&startReq); err != nil {
			log.Tracef("start workout, unmarshal json params: %s", err)
			http.Error(w, "start workout failed", http.StatusBadRequest)
			return
		}
	}

	userID := auth.UserIDFromContext(ctx)
	session, err := handler.engine.StartWorkout(ctx, userID, startReq.WorkoutPlanID)
	if err != nil {
		switch {
		case errors.Is(err, ErrWorkoutInProgress):
			http.Error(w, err.Error(), http.StatusConflict)
		case errors.Is(err, ErrPlanNotFound):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			log.Errorf("failed to start workout for %s: %s", userID, err)
			http.Error(w, "error, failed to start workout", http.StatusInternalServerError)
		}
		return
	}

	handler.metrics.CounterWorkoutsStarted.Inc()

	sessionJson, err := json.Marshal(session)
	if err != nil {
		log.Errorf("failed to marshal started workout: %s", err)
		http.Error(w, "error, failed to start workout", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, sessionJson, http.StatusCreated)
}

func (handler *Handler) HandleCurrent(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workout.current")
	defer span.End()

	userID := auth.UserIDFromContext(ctx)
	session := handler.engine.CurrentSession(userID)
	if session == nil {
		http.Error(w, "no active workout", http.StatusNotFound)
		return
	}

	sessionJson, err := json.Marshal(session)
	if err != nil {
		log.Errorf("failed to marshal current workout: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, sessionJson, http.StatusOK)
}

func (handler *Handler) HandleAddExercise(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workout.addExercise")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var exercise Exercise
	if err := json.NewDecoder(r.Body).Decode(&exercise); err != nil {
		log.Tracef("add exercise, unmarshal json params: %s", err)
		http.Error(w, "add exercise failed", http.StatusBadRequest)
		return
	}

	userID := auth.UserIDFromContext(ctx)
	addedExercise, err := handler.engine.AddExercise(ctx, userID, exercise)
	if err != nil {
		switch {
		case errors.Is(err, ErrNoActiveWorkout):
			http.Error(w, err.Error(), http.StatusConflict)
		case errors.Is(err, ErrInvalidExercise):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			log.Errorf("failed to add exercise for %s: %s", userID, err)
			http.Error(w, "error, failed to add exercise", http.StatusInternalServerError)
		}
		return
	}

	addedExerciseJson, err := json.Marshal(addedExercise)
	if err != nil {
		log.Errorf("failed to marshal added exercise: %s", err)
		http.Error(w, "error, failed to add exercise", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, addedExerciseJson, http.StatusCreated)
}

func (handler *Handler) HandleUpdateExercise(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workout.updateExercise")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	vars := mux.Vars(r)
	exerciseID := vars["id"]
	if exerciseID == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}

	var update ExerciseUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		log.Errorf("update exercise, unmarshal json params: %s", err)
		http.Error(w, "update exercise failed", http.StatusBadRequest)
		return
	}

	userID := auth.UserIDFromContext(ctx)
	if err := handler.engine.UpdateExercise(ctx, userID, exerciseID, update); err != nil {
		switch {
		case errors.Is(err, ErrNoActiveWorkout):
			http.Error(w, err.Error(), http.StatusConflict)
		case errors.Is(err, ErrInvalidExercise):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			log.Errorf("failed to update exercise %s for %s: %s", exerciseID, userID, err)
			http.Error(w, "error, failed to update exercise", http.StatusInternalServerError)
		}
		return
	}

	updateRespJson, err := json.Marshal(UpdateExerciseResponse{
		UpdatedID: exerciseID,
	})
	if err != nil {
		log.Errorf("failed to marshal update response: %s", err)
		http.Error(w, "failed to marshal update response", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponseOK(w, string(updateRespJson))
}

func (handler *Handler) HandleRemoveExercise(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workout.removeExercise")
	defer span.End()

	vars := mux.Vars(r)
	exerciseID := vars["id"]
	if exerciseID == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}

	userID := auth.UserIDFromContext(ctx)
	if err := handler.engine.RemoveExercise(ctx, userID, exerciseID); err != nil {
		if errors.Is(err, ErrNoActiveWorkout) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		log.Errorf("failed to remove exercise %s for %s: %s", exerciseID, userID, err)
		http.Error(w, "error, failed to remove exercise", http.StatusInternalServerError)
		return
	}

	removeRespJson, err := json.Marshal(RemoveExerciseResponse{
		RemovedID: exerciseID,
	})
	if err != nil {
		log.Errorf("failed to marshal remove response: %s", err)
		http.Error(w, "failed to marshal remove response", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponseOK(w, string(removeRespJson))
}

func (handler *Handler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workout.complete")
	defer span.End()

	var params CompleteParams
	if r.Body != nil && r.Header.Get("Content-Type") == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			log.Tracef("complete workout, unmarshal json params: %s", err)
			http.Error(w, "complete workout failed", http.StatusBadRequest)
			return
		}
	}

	userID := auth.UserIDFromContext(ctx)
	completed, err := handler.engine.CompleteWorkout(ctx, userID, params)
	if err != nil {
		if errors.Is(err, ErrNoActiveWorkout) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		log.Errorf("failed to complete workout for %s: %s", userID, err)
		http.Error(w, "error, failed to complete workout", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterWorkoutsCompleted.Inc()

	completedJson, err := json.Marshal(completed)
	if err != nil {
		log.Errorf("failed to marshal completed workout: %s", err)
		http.Error(w, "error, failed to complete workout", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, completedJson, http.StatusOK)
}

func (handler *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workout.history")
	defer span.End()

	userID := auth.UserIDFromContext(ctx)
	history, err := handler.engine.History(ctx, userID)
	if err != nil {
		log.Errorf("workout history for %s error: %s", userID, err)
		http.Error(w, "failed to get workout history", http.StatusInternalServerError)
		return
	}

	historyRespJson, err := json.Marshal(HistoryResponse{
		Workouts: history,
		Total:    len(history),
	})
	if err != nil {
		log.Errorf("marshal workout history error: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, historyRespJson, http.StatusOK)
}

func (handler *Handler) HandlePlans(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.workout.plans")
	defer span.End()

	plansJson, err := json.Marshal(PlansResponse{
		Plans: handler.catalog.Plans(),
	})
	if err != nil {
		log.Errorf("marshal workout plans error: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, plansJson, http.StatusOK)
}
