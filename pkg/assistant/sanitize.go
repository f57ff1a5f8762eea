package assistant

import (
	"fmt"
	"freshkeep-backend/domain"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	defaultRecipeName    = "Receta sin nombre"
	defaultRecipeEmoji   = ""
	defaultRecipeServing = "1 porcion"
)

var (
	fieldValidator = validator.New()

	categoryRule = "oneof=" + strings.Join(domain.FoodCategories, " ")
	locationRule = "oneof=" + strings.Join(domain.StorageLocations, " ")
)

const (
	dateRule     = "len=10,datetime=2006-01-02"
	positiveRule = "gt=0"
	textRule     = "required"
)

func valid(value interface{}, rule string) bool {
	return fieldValidator.Var(value, rule) == nil
}

// sanitizeProduct keeps only the fields that pass their rule; anything else
// is dropped without failing the scan.
func sanitizeProduct(raw map[string]interface{}) domain.ScannedProduct {
	var product domain.ScannedProduct

	if name, ok := raw["name"].(string); ok && valid(strings.TrimSpace(name), textRule) {
		product.Name = strings.TrimSpace(name)
	}
	if date, ok := raw["expirationDate"].(string); ok && valid(date, dateRule) {
		product.ExpirationDate = date
	}
	if category, ok := raw["category"].(string); ok && valid(category, categoryRule) {
		product.Category = category
	}
	if quantity, ok := raw["quantity"].(float64); ok && valid(quantity, positiveRule) {
		product.Quantity = &quantity
	}
	if unit, ok := raw["unit"].(string); ok && valid(strings.TrimSpace(unit), textRule) {
		product.Unit = strings.TrimSpace(unit)
	}
	if location, ok := raw["storageLocation"].(string); ok && valid(location, locationRule) {
		product.StorageLocation = location
	}
	if price, ok := raw["price"].(float64); ok && valid(price, positiveRule) {
		product.Price = &price
	}

	return product
}

// normalizeRecipes fills defaults for every recipe. A reply without a
// recipes array is malformed.
func normalizeRecipes(raw map[string]interface{}) ([]domain.RecipeSuggestion, error) {
	list, ok := raw["recipes"].([]interface{})
	if !ok {
		return nil, domain.ErrMalformedResponse
	}

	recipes := make([]domain.RecipeSuggestion, 0, len(list))
	for _, entry := range list {
		r, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		recipes = append(recipes, domain.RecipeSuggestion{
			Name:         textOr(r["name"], defaultRecipeName),
			Emoji:        textOr(r["emoji"], defaultRecipeEmoji),
			Description:  textOr(r["description"], ""),
			ServingSize:  textOr(r["servingSize"], defaultRecipeServing),
			Calories:     number(r["calories"]),
			Protein:      number(r["protein"]),
			Fats:         number(r["fats"]),
			Carbs:        number(r["carbs"]),
			Ingredients:  textList(r["ingredients"]),
			Instructions: textList(r["instructions"]),
		})
	}
	return recipes, nil
}

func textOr(value interface{}, fallback string) string {
	if s, ok := value.(string); ok && s != "" {
		return s
	}
	return fallback
}

// number coerces loosely typed values; anything unusable becomes 0.
func number(value interface{}) float64 {
	var n float64
	switch v := value.(type) {
	case float64:
		n = v
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0
		}
		parsed, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return 0
		}
		n = parsed
	case bool:
		if v {
			n = 1
		}
	default:
		return 0
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return n
}

func textList(value interface{}) []string {
	list, ok := value.([]interface{})
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		switch v := item.(type) {
		case string:
			out = append(out, v)
		case nil:
		default:
			out = append(out, fmt.Sprint(v))
		}
	}
	return out
}
