package foodlookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// TestMain will run goleak after all tests have been run in the package
// to detect any goroutine leaks
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// INFO: https://github.com/go-redis/redis/issues/1029
		goleak.IgnoreTopFunction(
			"github.com/go-redis/redis/v8/internal/pool.(*ConnPool).reaper",
		),
	)
}

const testBarcode = "3017620422003"

const testProductJson = `{
	"status": 1,
	"product": {
		"product_name": "Nutella",
		"brands": "Ferrero",
		"image_url": "https://images.example.com/nutella.jpg",
		"nutriments": {
			"energy-kcal_100g": 539,
			"proteins_100g": 6.3,
			"carbohydrates_100g": 57.5,
			"fat_100g": 30.9
		}
	}
}`

func TestApi_LookupBarcode(t *testing.T) {
	productServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, fmt.Sprintf("/api/v2/product/%s.json", testBarcode), r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, err := w.Write([]byte(testProductJson))
		assert.NoError(t, err)
	}))
	defer productServer.Close()

	db, mock := redismock.NewClientMock()
	defer db.Close()

	api := NewApi(productServer.URL, productServer.Client(), db, time.Hour)

	barcodeKey := fmt.Sprintf("food-item::%s", testBarcode)
	mock.ExpectGet(barcodeKey).SetErr(redis.Nil)
	mock.Regexp().ExpectSet(barcodeKey, `.*Nutella.*`, time.Hour).SetVal("OK")

	foodItem, err := api.LookupBarcode(context.Background(), testBarcode)
	require.NoError(t, err)
	require.NotNil(t, foodItem)
	assert.Equal(t, testBarcode, foodItem.Barcode)
	assert.Equal(t, "Nutella", foodItem.Name)
	assert.Equal(t, "Ferrero", foodItem.Brand)
	assert.InDelta(t, 539, foodItem.CaloriesPer100g, 0.001)
	assert.InDelta(t, 6.3, foodItem.ProteinPer100g, 0.001)
	assert.InDelta(t, 57.5, foodItem.CarbsPer100g, 0.001)
	assert.InDelta(t, 30.9, foodItem.FatPer100g, 0.001)
}

func TestApi_LookupBarcode_CacheHit(t *testing.T) {
	// product API must never be reached on a cache hit
	productServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected product API call: %s", r.URL.Path)
	}))
	defer productServer.Close()

	db, mock := redismock.NewClientMock()
	defer db.Close()

	api := NewApi(productServer.URL, productServer.Client(), db, time.Hour)

	cachedItem := FoodItem{
		Barcode:         testBarcode,
		Name:            "Nutella",
		CaloriesPer100g: 539,
	}
	cachedItemJson, err := json.Marshal(cachedItem)
	require.NoError(t, err)

	mock.ExpectGet(fmt.Sprintf("food-item::%s", testBarcode)).SetVal(string(cachedItemJson))

	foodItem, err := api.LookupBarcode(context.Background(), testBarcode)
	require.NoError(t, err)
	require.NotNil(t, foodItem)
	assert.Equal(t, "Nutella", foodItem.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApi_LookupBarcode_NotFound(t *testing.T) {
	productServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, err := w.Write([]byte(`{"status": 0, "status_verbose": "product not found"}`))
		assert.NoError(t, err)
	}))
	defer productServer.Close()

	db, mock := redismock.NewClientMock()
	defer db.Close()

	api := NewApi(productServer.URL, productServer.Client(), db, time.Hour)
	mock.ExpectGet(fmt.Sprintf("food-item::%s", testBarcode)).SetErr(redis.Nil)

	foodItem, err := api.LookupBarcode(context.Background(), testBarcode)
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Nil(t, foodItem)
}
