package notification

import (
	"fmt"
	"freshkeep-backend/domain"
	"strings"
)

func expiredContent(itemID, name string) domain.AlertContent {
	return domain.AlertContent{
		Kind:   domain.AlertExpiredNow,
		ItemID: itemID,
		Title:  "Producto vencido",
		Body:   fmt.Sprintf("%s ya vencio", name),
		Data:   map[string]string{"itemId": itemID},
	}
}

func expiresOnDayContent(itemID, name string, days int) domain.AlertContent {
	content := domain.AlertContent{
		Kind:      domain.AlertExpiresOnDay,
		DayOffset: days,
		ItemID:    itemID,
		Data:      map[string]string{"itemId": itemID},
	}

	switch days {
	case 0:
		content.Title = "Vence hoy"
		content.Body = fmt.Sprintf("%s vence hoy!", name)
	case 1:
		content.Title = "Vence manana"
		content.Body = fmt.Sprintf("%s vence en 1 dia", name)
	default:
		content.Title = fmt.Sprintf("Vence en %d dias", days)
		content.Body = fmt.Sprintf("%s vence en %d dias", name, days)
	}
	return content
}

// digestContent builds the daily summary text, e.g.
// "Tienes 1 vencido y 2 por vencer productos."
func digestContent(expired, expiring int) domain.AlertContent {
	parts := make([]string, 0, 2)
	if expired > 0 {
		parts = append(parts, fmt.Sprintf("%d vencido%s", expired, plural(expired)))
	}
	if expiring > 0 {
		parts = append(parts, fmt.Sprintf("%d por vencer", expiring))
	}

	return domain.AlertContent{
		Kind:  domain.AlertDailyDigest,
		Title: "Resumen diario",
		Body:  fmt.Sprintf("Tienes %s producto%s.", strings.Join(parts, " y "), plural(expired+expiring)),
	}
}

func testContent() domain.AlertContent {
	return domain.AlertContent{
		Kind:  domain.AlertTest,
		Title: "Producto por vencer",
		Body:  "Leche entera vence hoy! (notificacion de prueba)",
	}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
