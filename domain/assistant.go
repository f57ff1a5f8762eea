package domain

import (
	"errors"
	"fmt"
)

type Action string

const (
	ActionScan   Action = "scans"
	ActionRecipe Action = "recipes"

	DefaultRecipeCount = 3
	MaxRecipeCount     = 10
)

var (
	MessageInvalidBody            = "Body invalido."
	MessageImageRequired          = "Se requiere imageBase64."
	MessageItemsRequired          = "Se requiere una lista de items."
	MessageServiceUnavailable     = "Servicio no disponible temporalmente."
	MessageUpstreamRateLimited    = "Demasiadas solicitudes al servicio de IA. Intenta en unos segundos."
	MessageUnreadableLabel        = "No se pudo interpretar la etiqueta. Intenta con una foto mas clara."
	MessageUnreadableRecipes      = "No se pudo interpretar la respuesta de la IA."
	MessageNoModelReply           = "No se recibio respuesta del modelo."
	MessageFailedGenerateRecipes  = "Error al generar recetas. Intenta de nuevo."
	MessageFailedScanLabelGeneric = "No se pudo procesar la imagen. Intenta de nuevo."

	ErrServiceUnavailable  = errors.New("ai service credentials not configured")
	ErrUpstreamRateLimited = errors.New("ai provider rate limited the request")
	ErrMalformedResponse   = errors.New("ai response could not be interpreted")
	ErrEmptyCompletion     = errors.New("ai provider returned no content")
)

// QuotaExceededError is returned when a device has used up its daily allowance
// for an action. No upstream call is made once it is returned.
type QuotaExceededError struct {
	Action Action
	Limit  int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("daily %s quota of %d exhausted", e.Action, e.Limit)
}

// UserMessage is the text shown to the device owner.
func (e *QuotaExceededError) UserMessage() string {
	switch e.Action {
	case ActionScan:
		return fmt.Sprintf("Has alcanzado el limite diario de escaneos (%d/dia). Intenta manana.", e.Limit)
	case ActionRecipe:
		return fmt.Sprintf("Has alcanzado el limite diario de recetas (%d/dia). Intenta manana.", e.Limit)
	default:
		return fmt.Sprintf("Has alcanzado el limite diario (%d/dia). Intenta manana.", e.Limit)
	}
}

// UpstreamError wraps a failed call to the AI provider. StatusCode is zero for
// transport failures and timeouts.
type UpstreamError struct {
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("ai provider unreachable: %v", e.Err)
	}
	return fmt.Sprintf("ai provider returned status %d", e.StatusCode)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func (e *UpstreamError) UserMessage() string {
	if e.StatusCode == 0 {
		return "Error de conexion con el servicio de IA. Intenta de nuevo."
	}
	return fmt.Sprintf("Error del servicio de IA (%d).", e.StatusCode)
}

type (
	ScanLabelRequest struct {
		ImageBase64 string `json:"imageBase64" validate:"required,base64"`
	}

	ScannedProduct struct {
		Name            string   `json:"name,omitempty"`
		ExpirationDate  string   `json:"expirationDate,omitempty"`
		Category        string   `json:"category,omitempty"`
		Quantity        *float64 `json:"quantity,omitempty"`
		Unit            string   `json:"unit,omitempty"`
		StorageLocation string   `json:"storageLocation,omitempty"`
		Price           *float64 `json:"price,omitempty"`
	}

	RecipeItemInput struct {
		Name           string  `json:"name" validate:"required"`
		Quantity       float64 `json:"quantity"`
		Unit           string  `json:"unit"`
		ExpirationDate string  `json:"expirationDate" validate:"omitempty,datetime=2006-01-02"`
	}

	GenerateRecipesRequest struct {
		Items []RecipeItemInput `json:"items" validate:"required,min=1,max=100,dive"`
		Count *int              `json:"count" validate:"omitempty,min=1,max=10"`
	}

	RecipeSuggestion struct {
		Name         string   `json:"name"`
		Emoji        string   `json:"emoji"`
		Description  string   `json:"description"`
		ServingSize  string   `json:"servingSize"`
		Calories     float64  `json:"calories"`
		Protein      float64  `json:"protein"`
		Fats         float64  `json:"fats"`
		Carbs        float64  `json:"carbs"`
		Ingredients  []string `json:"ingredients"`
		Instructions []string `json:"instructions"`
	}

	GenerateRecipesResponse struct {
		Recipes []RecipeSuggestion `json:"recipes"`
	}
)
