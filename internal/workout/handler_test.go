package workout

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mlukic/fittrack/internal/auth"
	"github.com/mlukic/fittrack/internal/telemetry/metrics"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// TestMain will run goleak after all tests have been run in the package
// to detect any goroutine leaks
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestHandler(t *testing.T) (*Handler, *Engine) {
	t.Helper()
	catalog := newTestCatalog(t)
	engine := NewEngine(NewTestStore(), catalog)
	return NewHandler(engine, catalog, metrics.NewTestManager()), engine
}

func authedRequest(t *testing.T, method, target string, body []byte) *http.Request {
	t.Helper()
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, target, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, err = http.NewRequest(method, target, nil)
	}
	require.NoError(t, err)
	return req.WithContext(auth.ContextWithUserID(context.Background(), testUserID))
}

func TestHandler_HandleStart(t *testing.T) {
	handler, _ := newTestHandler(t)

	startReqJson, err := json.Marshal(StartWorkoutRequest{WorkoutPlanID: 1})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	handler.HandleStart(rec, authedRequest(t, "POST", "", startReqJson))
	require.Equal(t, http.StatusCreated, rec.Code)

	var session WorkoutSession
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	assert.NotEmpty(t, session.ID)
	assert.Equal(t, 1, session.WorkoutPlanID)
	assert.Len(t, session.Exercises, 3)

	// second start conflicts
	rec = httptest.NewRecorder()
	handler.HandleStart(rec, authedRequest(t, "POST", "", startReqJson))
	assert.Equal(t, http.StatusConflict, rec.Code)

	// unknown plan rejected
	badReqJson, err := json.Marshal(StartWorkoutRequest{WorkoutPlanID: 42})
	require.NoError(t, err)
	rec = httptest.NewRecorder()
	req := authedRequest(t, "POST", "", badReqJson)
	req = req.WithContext(auth.ContextWithUserID(context.Background(), "user-2"))
	req.Header.Set("Content-Type", "application/json")
	handler.HandleStart(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_HandleCurrent(t *testing.T) {
	handler, engine := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.HandleCurrent(rec, authedRequest(t, "GET", "", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	started, err := engine.StartWorkout(context.Background(), testUserID, 0)
	require.NoError(t, err)

	rec = httptest.NewRecorder()
	handler.HandleCurrent(rec, authedRequest(t, "GET", "", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var session WorkoutSession
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	assert.Equal(t, started.ID, session.ID)
}

func TestHandler_HandleAddExercise(t *testing.T) {
	handler, engine := newTestHandler(t)

	exerciseJson, err := json.Marshal(Exercise{
		Name:        "Bench Press",
		Sets:        3,
		Reps:        intPtr(10),
		Weight:      float64Ptr(40),
		RestSeconds: 120,
	})
	require.NoError(t, err)

	// no active workout
	rec := httptest.NewRecorder()
	handler.HandleAddExercise(rec, authedRequest(t, "POST", "", exerciseJson))
	assert.Equal(t, http.StatusConflict, rec.Code)

	_, err = engine.StartWorkout(context.Background(), testUserID, 0)
	require.NoError(t, err)

	rec = httptest.NewRecorder()
	handler.HandleAddExercise(rec, authedRequest(t, "POST", "", exerciseJson))
	require.Equal(t, http.StatusCreated, rec.Code)

	var added Exercise
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &added))
	assert.NotEmpty(t, added.ID)
	assert.Equal(t, "Bench Press", added.Name)

	// invalid exercise
	badExerciseJson, err := json.Marshal(Exercise{Name: "", Sets: 3})
	require.NoError(t, err)
	rec = httptest.NewRecorder()
	handler.HandleAddExercise(rec, authedRequest(t, "POST", "", badExerciseJson))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_HandleRemoveExercise(t *testing.T) {
	handler, engine := newTestHandler(t)

	_, err := engine.StartWorkout(context.Background(), testUserID, 0)
	require.NoError(t, err)
	current := engine.CurrentSession(testUserID)
	require.Len(t, current.Exercises, 3)

	rec := httptest.NewRecorder()
	req := mux.SetURLVars(
		authedRequest(t, "DELETE", "", nil),
		map[string]string{"id": current.Exercises[0].ID},
	)
	handler.HandleRemoveExercise(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var removeResp RemoveExerciseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &removeResp))
	assert.Equal(t, current.Exercises[0].ID, removeResp.RemovedID)
	assert.Len(t, engine.CurrentSession(testUserID).Exercises, 2)
}

func TestHandler_HandleComplete(t *testing.T) {
	handler, engine := newTestHandler(t)

	// no active workout
	rec := httptest.NewRecorder()
	handler.HandleComplete(rec, authedRequest(t, "POST", "", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)

	_, err := engine.StartWorkout(context.Background(), testUserID, 0)
	require.NoError(t, err)

	rec = httptest.NewRecorder()
	handler.HandleComplete(rec, authedRequest(t, "POST", "", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var completed WorkoutSession
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &completed))
	assert.True(t, completed.Completed)
	assert.Equal(t, 1, completed.DurationMinutes)
	assert.Nil(t, engine.CurrentSession(testUserID))
}

func TestHandler_HandleHistoryAndPlans(t *testing.T) {
	handler, engine := newTestHandler(t)

	ctx := context.Background()
	_, err := engine.StartWorkout(ctx, testUserID, 2)
	require.NoError(t, err)
	_, err = engine.CompleteWorkout(ctx, testUserID, CompleteParams{})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	handler.HandleHistory(rec, authedRequest(t, "GET", "", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var historyResp HistoryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &historyResp))
	assert.Equal(t, 1, historyResp.Total)
	require.Len(t, historyResp.Workouts, 1)
	assert.Equal(t, 2, historyResp.Workouts[0].WorkoutPlanID)

	rec = httptest.NewRecorder()
	handler.HandlePlans(rec, authedRequest(t, "GET", "", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var plansResp PlansResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &plansResp))
	require.Len(t, plansResp.Plans, 3)
	assert.Equal(t, "Upper Body Strength", plansResp.Plans[1].Name)
}
