package foodlookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mlukic/fittrack/internal/telemetry/tracing"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var ErrProductNotFound = errors.New("product not found")

// Api looks up scanned barcodes against the Open Food Facts product
// database, with successful lookups cached in redis.
type Api struct {
	baseEndpoint string
	httpClient   *http.Client
	redisClient  *redis.Client
	cacheTTL     time.Duration
}

func NewApi(
	baseEndpoint string,
	httpClient *http.Client,
	redisClient *redis.Client,
	cacheTTL time.Duration,
) *Api {
	return &Api{
		baseEndpoint: baseEndpoint,
		httpClient:   httpClient,
		redisClient:  redisClient,
		cacheTTL:     cacheTTL,
	}
}

func (api *Api) LookupBarcode(ctx context.Context, barcode string) (*FoodItem, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "foodlookup.barcode")
	defer span.End()
	span.SetAttributes(attribute.String("food.barcode", barcode))

	// try the redis cache first
	barcodeKey := fmt.Sprintf("food-item::%s", barcode)
	cmd := api.redisClient.Get(ctx, barcodeKey)
	if foodItemJson := cmd.Val(); foodItemJson != "" {
		span.SetAttributes(attribute.Bool("food.from-cache", true))
		log.Tracef("found food item for [%s] in redis cache", barcode)
		var foodItem FoodItem
		if err := json.Unmarshal([]byte(foodItemJson), &foodItem); err != nil {
			log.Errorf("failed to unmarshal cached food item for %s: %s", barcode, err)
			// continue, and try getting it from the product API
		} else {
			return &foodItem, nil
		}
	} else {
		span.SetAttributes(attribute.Bool("food.from-cache", false))
	}

	productUrl := fmt.Sprintf("%s/api/v2/product/%s.json", api.baseEndpoint, barcode)
	log.Debugf("calling food product lookup: %s", productUrl)

	req, err := http.NewRequest("GET", productUrl, nil)
	if err != nil {
		return nil, err
	}

	resp, err := api.httpClient.Do(req.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("error getting product response: %s", err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrProductNotFound
	}

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read product response bytes: %s", err)
	}

	var product productResponse
	if err := json.Unmarshal(respBytes, &product); err != nil {
		span.SetStatus(codes.Error, fmt.Sprintf("unmarshal product resp: %s", err))
		return nil, fmt.Errorf("unmarshal product response bytes: %w", err)
	}

	if product.Status != 1 || product.Product.ProductName == "" {
		return nil, ErrProductNotFound
	}

	foodItem := &FoodItem{
		Barcode:         barcode,
		Name:            product.Product.ProductName,
		CaloriesPer100g: product.Product.Nutriments.EnergyKcal100g,
		ProteinPer100g:  product.Product.Nutriments.Proteins100g,
		CarbsPer100g:    product.Product.Nutriments.Carbs100g,
		FatPer100g:      product.Product.Nutriments.Fat100g,
		Brand:           product.Product.Brands,
		ImageURL:        product.Product.ImageURL,
	}

	// cache the normalized item in redis
	foodItemJson, err := json.Marshal(foodItem)
	if err != nil {
		log.Errorf("failed to marshal food item for cache: %s", err)
		return foodItem, nil
	}
	if err := api.redisClient.Set(ctx, barcodeKey, foodItemJson, api.cacheTTL).Err(); err != nil {
		log.Errorf("failed to cache food item in redis for %s: %s", barcode, err)
	} else {
		log.Debugf("food item cache set in redis for: %s", barcode)
	}

	return foodItem, nil
}
