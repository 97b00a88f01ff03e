package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mlukic/fittrack/internal/telemetry/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

type panicRecTestHandler struct {
	called bool
	panic  bool
}

func (h *panicRecTestHandler) ServeHTTP(_ http.ResponseWriter, _ *http.Request) {
	h.called = true
	if h.panic {
		panic("you shall not pass")
	}
}

func Test_panicRecoveryMiddleware_nonPanic(t *testing.T) {
	m := metrics.NewTestManager()

	handler := PanicRecovery(m)
	next := &panicRecTestHandler{}
	handlerFunc := handler(next)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	handlerFunc.ServeHTTP(rr, req)

	assert.True(t, next.called)
	// panic did not happen
	assert.Equal(t, float64(0), testutil.ToFloat64(m.CounterHandleRequestPanic))
}

func Test_panicRecoveryMiddleware_panic(t *testing.T) {
	m := metrics.NewTestManager()

	handler := PanicRecovery(m)
	next := &panicRecTestHandler{panic: true}
	handlerFunc := handler(next)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	handlerFunc.ServeHTTP(rr, req)

	assert.True(t, next.called)
	// panic happened, but was recovered and counted
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CounterHandleRequestPanic))
}
