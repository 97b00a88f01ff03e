package foodlookup

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mlukic/fittrack/internal/telemetry/metrics"
	"github.com/mlukic/fittrack/internal/telemetry/tracing"
	"github.com/mlukic/fittrack/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	api     *Api
	metrics *metrics.Manager
}

func NewHandler(api *Api, metrics *metrics.Manager) *Handler {
	return &Handler{
		api:     api,
		metrics: metrics,
	}
}

func (handler *Handler) HandleLookupBarcode(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.foodlookup.barcode")
	defer span.End()

	vars := mux.Vars(r)
	barcode := vars["barcode"]
	if barcode == "" {
		http.Error(w, "error, barcode empty", http.StatusBadRequest)
		return
	}

	handler.metrics.CounterBarcodeLookups.Inc()

	foodItem, err := handler.api.LookupBarcode(ctx, barcode)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			http.Error(w, "product not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to look up barcode %s: %s", barcode, err)
		http.Error(w, "failed to look up barcode", http.StatusInternalServerError)
		return
	}

	foodItemJson, err := json.Marshal(foodItem)
	if err != nil {
		log.Errorf("failed to marshal food item: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, foodItemJson, http.StatusOK)
}
