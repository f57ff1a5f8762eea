package assistant

import (
	"fmt"
	"freshkeep-backend/domain"
	"freshkeep-backend/pkg/expiry"
	"strings"
	"time"
)

const (
	scanTemperature   = 0.2
	scanMaxTokens     = 500
	recipeTemperature = 0.7
	recipeMaxTokens   = 2000
)

var scanSystemPrompt = fmt.Sprintf(`Eres un asistente experto en identificar productos alimenticios a partir de fotos de etiquetas. Analiza la imagen y extrae la informacion que puedas identificar. Responde UNICAMENTE con un JSON valido, sin texto adicional, con los siguientes campos (todos opcionales, incluye solo los que puedas identificar):

{
  "name": "Nombre del producto",
  "expirationDate": "YYYY-MM-DD",
  "category": "una de: %s",
  "quantity": 1,
  "unit": "kg, g, L, mL, pzas, etc.",
  "storageLocation": "una de: %s",
  "price": 0.00
}

Notas:
- La fecha debe estar en formato YYYY-MM-DD
- La categoria debe ser exactamente uno de los valores listados
- La ubicacion (storageLocation) debe ser exactamente uno de los valores listados
- Si no puedes identificar un campo con certeza, no lo incluyas
- Para storageLocation, usa tu conocimiento sobre el producto para sugerir donde almacenarlo`,
	strings.Join(domain.FoodCategories, ", "),
	strings.Join(domain.StorageLocations, ", "),
)

const scanUserPrompt = "Analiza esta etiqueta de producto alimenticio y extrae los datos que puedas identificar."

const recipeSystemPrompt = `Eres un chef nutricionista experto. Tu trabajo es sugerir recetas saludables y practicas usando los ingredientes disponibles del usuario. SIEMPRE responde en espanol. Prioriza usar ingredientes que estan por vencer o vencidos recientemente. Responde UNICAMENTE con un JSON valido, sin texto adicional, con el siguiente formato:
{
  "recipes": [
    {
      "name": "Nombre de la receta",
      "emoji": "emoji representativo",
      "description": "Descripcion breve de la receta",
      "servingSize": "2 porciones",
      "calories": 350,
      "protein": 25,
      "fats": 12,
      "carbs": 30,
      "ingredients": ["200g de pollo", "1 taza de arroz"],
      "instructions": ["Paso 1: ...", "Paso 2: ..."]
    }
  ]
}`

// urgencyTag marks items the model should use first.
func urgencyTag(expirationDate string, today time.Time) string {
	if expirationDate == "" {
		return ""
	}
	date, err := expiry.ParseDate(expirationDate)
	if err != nil {
		return ""
	}
	switch days := expiry.DaysUntil(date, today); {
	case days <= 0:
		return "(VENCIDO)"
	case days <= 2:
		return "(por vencer)"
	default:
		return ""
	}
}

func recipeUserPrompt(items []domain.RecipeItemInput, count int, today time.Time) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		line := fmt.Sprintf("- %s: %s %s", item.Name, formatQuantity(item.Quantity), item.Unit)
		if tag := urgencyTag(item.ExpirationDate, today); tag != "" {
			line += " " + tag
		}
		lines = append(lines, strings.TrimRight(line, " "))
	}

	return fmt.Sprintf(
		"Tengo estos ingredientes en mi inventario:\n%s\n\nSugiere %d recetas que pueda preparar con estos ingredientes. "+
			"Prioriza usar los ingredientes que estan por vencer. Los valores nutricionales deben ser estimaciones razonables por porcion.",
		strings.Join(lines, "\n"),
		count,
	)
}

func formatQuantity(q float64) string {
	if q == float64(int64(q)) {
		return fmt.Sprintf("%d", int64(q))
	}
	return fmt.Sprintf("%g", q)
}
