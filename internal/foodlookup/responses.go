package foodlookup

// wire types of the Open Food Facts product endpoint, only the fields
// we actually consume

type productResponse struct {
	Status  int        `json:"status"`
	Product offProduct `json:"product"`
}

type offProduct struct {
	ProductName string        `json:"product_name"`
	Brands      string        `json:"brands"`
	ImageURL    string        `json:"image_url"`
	Nutriments  offNutriments `json:"nutriments"`
}

type offNutriments struct {
	EnergyKcal100g float64 `json:"energy-kcal_100g"`
	Proteins100g   float64 `json:"proteins_100g"`
	Carbs100g      float64 `json:"carbohydrates_100g"`
	Fat100g        float64 `json:"fat_100g"`
}

// FoodItem is the normalized record handed to the rest of the system,
// however the product was obtained.
type FoodItem struct {
	Barcode         string  `json:"barcode"`
	Name            string  `json:"name"`
	CaloriesPer100g float64 `json:"caloriesPer100g"`
	ProteinPer100g  float64 `json:"proteinPer100g"`
	CarbsPer100g    float64 `json:"carbsPer100g"`
	FatPer100g      float64 `json:"fatPer100g"`
	Brand           string  `json:"brand,omitempty"`
	ImageURL        string  `json:"imageUrl,omitempty"`
}
