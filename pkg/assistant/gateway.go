// Package assistant proxies label scanning and recipe generation to an AI
// provider behind the per-device daily quota.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"freshkeep-backend/domain"
	"freshkeep-backend/internal/utils/metrics"
	"freshkeep-backend/pkg/ratelimit"
	"time"

	"github.com/gofiber/fiber/v2/log"
)

type (
	Gateway interface {
		ScanLabel(ctx context.Context, deviceID string, req domain.ScanLabelRequest) (domain.ScannedProduct, error)
		GenerateRecipes(ctx context.Context, deviceID string, req domain.GenerateRecipesRequest) ([]domain.RecipeSuggestion, error)
	}

	gateway struct {
		quota     ratelimit.DailyQuota
		completer Completer
		now       func() time.Time
	}
)

func NewGateway(quota ratelimit.DailyQuota, completer Completer, now func() time.Time) Gateway {
	if now == nil {
		now = time.Now
	}
	return &gateway{quota: quota, completer: completer, now: now}
}

func (g *gateway) ScanLabel(ctx context.Context, deviceID string, req domain.ScanLabelRequest) (domain.ScannedProduct, error) {
	if err := g.admit(ctx, deviceID, domain.ActionScan); err != nil {
		return domain.ScannedProduct{}, err
	}

	content, err := g.completer.Complete(ctx, CompletionRequest{
		Vision: true,
		Messages: []Message{
			{Role: "system", Content: scanSystemPrompt},
			{Role: "user", Content: []ContentPart{
				{Type: "text", Text: scanUserPrompt},
				{Type: "image_url", ImageURL: &ImageURL{URL: imageDataURL(req.ImageBase64), Detail: "high"}},
			}},
		},
		Temperature: scanTemperature,
		MaxTokens:   scanMaxTokens,
	})
	if err != nil {
		return domain.ScannedProduct{}, normalize(err)
	}

	parsed, outcome := Extract(content)
	if outcome == Failed {
		log.Warnw("unparseable label scan reply", "device_id", deviceID, "reply", truncate(content, 500))
		return domain.ScannedProduct{}, domain.ErrMalformedResponse
	}
	if outcome == Recovered {
		log.Debugw("label scan reply recovered from prose", "device_id", deviceID)
	}

	return sanitizeProduct(parsed), nil
}

func (g *gateway) GenerateRecipes(ctx context.Context, deviceID string, req domain.GenerateRecipesRequest) ([]domain.RecipeSuggestion, error) {
	count := domain.DefaultRecipeCount
	if req.Count != nil {
		count = *req.Count
	}
	if count < 1 || count > domain.MaxRecipeCount {
		return nil, domain.ErrInvalidRequest
	}
	if len(req.Items) == 0 {
		return nil, domain.ErrInvalidRequest
	}

	if err := g.admit(ctx, deviceID, domain.ActionRecipe); err != nil {
		return nil, err
	}

	content, err := g.completer.Complete(ctx, CompletionRequest{
		Messages: []Message{
			{Role: "system", Content: recipeSystemPrompt},
			{Role: "user", Content: recipeUserPrompt(req.Items, count, g.now())},
		},
		Temperature: recipeTemperature,
		MaxTokens:   recipeMaxTokens,
	})
	if err != nil {
		return nil, normalize(err)
	}

	parsed, outcome := Extract(content)
	if outcome == Failed {
		log.Warnw("unparseable recipe reply", "device_id", deviceID, "reply", truncate(content, 500))
		return nil, domain.ErrMalformedResponse
	}

	recipes, err := normalizeRecipes(parsed)
	if err != nil {
		log.Warnw("recipe reply without recipes", "device_id", deviceID, "outcome", outcome.String())
		return nil, err
	}
	return recipes, nil
}

// admit consumes one unit of the device's daily quota and then checks the
// provider credentials. Nothing is sent upstream unless it returns nil.
func (g *gateway) admit(ctx context.Context, deviceID string, action domain.Action) error {
	if deviceID == "" {
		return domain.ErrMissingDeviceID
	}

	res, err := g.quota.CheckAndConsume(ctx, deviceID, action, g.now())
	if err != nil {
		return fmt.Errorf("check daily quota: %w", err)
	}
	if !res.Allowed {
		metrics.Count(ctx, metrics.QuotaChecks, 1, "action", string(action), "allowed", "false")
		return &domain.QuotaExceededError{Action: action, Limit: g.quota.Limit(action)}
	}

	metrics.Count(ctx, metrics.QuotaChecks, 1, "action", string(action), "allowed", "true")
	log.Debugw("daily quota consumed", "device_id", deviceID, "action", action, "remaining", res.Remaining)

	if !g.completer.Configured() {
		return domain.ErrServiceUnavailable
	}
	return nil
}

// normalize maps client errors onto the gateway's error set. Anything
// unknown, timeouts included, is an upstream failure.
func normalize(err error) error {
	var upstream *domain.UpstreamError
	switch {
	case errors.Is(err, domain.ErrServiceUnavailable),
		errors.Is(err, domain.ErrUpstreamRateLimited),
		errors.Is(err, domain.ErrMalformedResponse),
		errors.Is(err, domain.ErrEmptyCompletion),
		errors.As(err, &upstream):
		return err
	default:
		return &domain.UpstreamError{Err: err}
	}
}
