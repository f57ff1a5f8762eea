package domain

import (
	"errors"
	"time"
)

type (
	FoodStatus  string
	Disposition string
)

const (
	StatusFresh    FoodStatus = "fresh"
	StatusExpiring FoodStatus = "expiring"
	StatusExpired  FoodStatus = "expired"

	DispositionActive     Disposition = "active"
	DispositionConsumed   Disposition = "consumed"
	DispositionThrownAway Disposition = "thrown_away"
)

var (
	FoodCategories = []string{
		"fruits", "vegetables", "dairy", "cereals", "canned",
		"meat", "frozen", "beverages", "condiments", "snacks", "other",
	}

	StorageLocations = []string{"fridge", "freezer", "pantry", "counter"}
)

var (
	MessageSuccessAddFoodItem       = "food item added successfully"
	MessageSuccessUpdateFoodItem    = "food item updated successfully"
	MessageSuccessDeleteFoodItem    = "food item deleted successfully"
	MessageSuccessGetFoodItems      = "food items retrieved successfully"
	MessageSuccessConsumeFoodItem   = "food item marked as consumed"
	MessageSuccessDiscardFoodItem   = "food item marked as thrown away"
	MessageSuccessGetDashboardStats = "dashboard statistics retrieved successfully"

	MessageFailedAddFoodItem       = "failed to add food item"
	MessageFailedUpdateFoodItem    = "failed to update food item"
	MessageFailedDeleteFoodItem    = "failed to delete food item"
	MessageFailedGetFoodItems      = "failed to retrieve food items"
	MessageFailedChangeDisposition = "failed to change food item disposition"
	MessageFailedGetDashboardStats = "failed to retrieve dashboard statistics"

	ErrFoodItemNotFound   = errors.New("food item not found")
	ErrInvalidExpiryDate  = errors.New("invalid expiry date")
	ErrInvalidQuantity    = errors.New("quantity must be positive")
	ErrUnauthorizedAccess = errors.New("unauthorized access to food item")
	ErrItemNotActive      = errors.New("food item is no longer active")
)

type (
	AddFoodItemRequest struct {
		Name            string   `json:"name" validate:"required"`
		Category        string   `json:"category" validate:"omitempty,oneof=fruits vegetables dairy cereals canned meat frozen beverages condiments snacks other"`
		Quantity        float64  `json:"quantity" validate:"required,gt=0"`
		Unit            string   `json:"unit" validate:"required"`
		PurchaseDate    string   `json:"purchase_date" validate:"omitempty,datetime=2006-01-02"`
		ExpirationDate  string   `json:"expiration_date" validate:"required,datetime=2006-01-02"`
		StorageLocation string   `json:"storage_location" validate:"omitempty,oneof=fridge freezer pantry counter"`
		Price           *float64 `json:"price" validate:"omitempty,gt=0"`
		Currency        string   `json:"currency" validate:"omitempty,len=3"`
		Notes           string   `json:"notes"`
	}

	UpdateFoodItemRequest struct {
		Name            string   `json:"name" validate:"omitempty"`
		Category        string   `json:"category" validate:"omitempty,oneof=fruits vegetables dairy cereals canned meat frozen beverages condiments snacks other"`
		Quantity        float64  `json:"quantity" validate:"omitempty,gt=0"`
		Unit            string   `json:"unit" validate:"omitempty"`
		ExpirationDate  string   `json:"expiration_date" validate:"omitempty,datetime=2006-01-02"`
		StorageLocation string   `json:"storage_location" validate:"omitempty,oneof=fridge freezer pantry counter"`
		Price           *float64 `json:"price" validate:"omitempty,gt=0"`
		Notes           *string  `json:"notes"`
	}

	FoodItemResponse struct {
		ID                  string     `json:"id"`
		Name                string     `json:"name"`
		Category            string     `json:"category"`
		Quantity            float64    `json:"quantity"`
		Unit                string     `json:"unit"`
		PurchaseDate        string     `json:"purchase_date,omitempty"`
		ExpirationDate      string     `json:"expiration_date"`
		StorageLocation     string     `json:"storage_location"`
		Disposition         string     `json:"disposition"`
		Status              FoodStatus `json:"status"`
		DaysUntilExpiration int        `json:"days_until_expiration"`
		Price               *float64   `json:"price,omitempty"`
		Currency            string     `json:"currency"`
		Notes               string     `json:"notes,omitempty"`
		CreatedAt           time.Time  `json:"created_at"`
	}

	DashboardStatsResponse struct {
		ActiveItems     int     `json:"active_items"`
		FreshItems      int     `json:"fresh_items"`
		ExpiringItems   int     `json:"expiring_items"`
		ExpiredItems    int     `json:"expired_items"`
		ConsumedItems   int     `json:"consumed_items"`
		ThrownAwayItems int     `json:"thrown_away_items"`
		WastedValue     float64 `json:"wasted_value"`
		SavedValue      float64 `json:"saved_value"`
	}
)
