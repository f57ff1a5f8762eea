package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"freshkeep-backend/domain"
	"freshkeep-backend/pkg/ratelimit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompleter struct {
	configured bool
	reply      string
	err        error
	requests   []CompletionRequest
}

func (f *fakeCompleter) Configured() bool { return f.configured }

func (f *fakeCompleter) Complete(_ context.Context, req CompletionRequest) (string, error) {
	f.requests = append(f.requests, req)
	return f.reply, f.err
}

var gatewayNow = time.Date(2026, 7, 1, 15, 0, 0, 0, time.UTC)

func newTestGateway(completer Completer) (Gateway, *ratelimit.MemoryQuota) {
	quota := ratelimit.NewMemoryQuota(ratelimit.DefaultLimits(), time.UTC)
	return NewGateway(quota, completer, func() time.Time { return gatewayNow }), quota
}

func TestScanLabelQuotaBlocksBeforeUpstream(t *testing.T) {
	completer := &fakeCompleter{configured: true, reply: `{"name":"Leche","category":"dairy"}`}
	gw, _ := newTestGateway(completer)
	ctx := context.Background()
	req := domain.ScanLabelRequest{ImageBase64: "aGVsbG8="}

	for i := 0; i < 5; i++ {
		product, err := gw.ScanLabel(ctx, "device-1", req)
		require.NoError(t, err)
		assert.Equal(t, "Leche", product.Name)
	}

	_, err := gw.ScanLabel(ctx, "device-1", req)
	var quotaErr *domain.QuotaExceededError
	require.ErrorAs(t, err, &quotaErr)
	assert.Equal(t, 5, quotaErr.Limit)
	assert.Equal(t, domain.ActionScan, quotaErr.Action)
	assert.Equal(t, "Has alcanzado el limite diario de escaneos (5/dia). Intenta manana.", quotaErr.UserMessage())
	assert.Len(t, completer.requests, 5)

	// Another device is unaffected.
	_, err = gw.ScanLabel(ctx, "device-2", req)
	assert.NoError(t, err)
}

func TestScanLabelSendsImageToVisionModel(t *testing.T) {
	completer := &fakeCompleter{configured: true, reply: "Aqui esta: {\"price\": 3.2, \"category\": \"otros\"}"}
	gw, _ := newTestGateway(completer)

	product, err := gw.ScanLabel(context.Background(), "device-1", domain.ScanLabelRequest{ImageBase64: "aGVsbG8="})
	require.NoError(t, err)
	require.NotNil(t, product.Price)
	assert.Equal(t, 3.2, *product.Price)
	assert.Empty(t, product.Category)

	require.Len(t, completer.requests, 1)
	req := completer.requests[0]
	assert.True(t, req.Vision)
	parts, ok := req.Messages[1].Content.([]ContentPart)
	require.True(t, ok)
	assert.Equal(t, "data:image/jpeg;base64,aGVsbG8=", parts[1].ImageURL.URL)
}

func TestScanLabelUnreadableReply(t *testing.T) {
	gw, _ := newTestGateway(&fakeCompleter{configured: true, reply: "No veo ninguna etiqueta."})

	_, err := gw.ScanLabel(context.Background(), "device-1", domain.ScanLabelRequest{ImageBase64: "aGVsbG8="})
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
}

func TestGatewayWithoutCredentialsConsumesQuotaFirst(t *testing.T) {
	completer := &fakeCompleter{configured: false}
	gw, quota := newTestGateway(completer)
	ctx := context.Background()
	req := domain.ScanLabelRequest{ImageBase64: "aGVsbG8="}

	for i := 0; i < 5; i++ {
		_, err := gw.ScanLabel(ctx, "device-1", req)
		assert.ErrorIs(t, err, domain.ErrServiceUnavailable)
	}
	assert.Equal(t, 1, quota.Len())

	_, err := gw.ScanLabel(ctx, "device-1", req)
	var quotaErr *domain.QuotaExceededError
	assert.ErrorAs(t, err, &quotaErr)
	assert.Empty(t, completer.requests)
}

func TestGatewayNormalizesUpstreamErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want func(t *testing.T, err error)
	}{
		{"rate limited", domain.ErrUpstreamRateLimited, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, domain.ErrUpstreamRateLimited)
		}},
		{"empty completion", domain.ErrEmptyCompletion, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, domain.ErrEmptyCompletion)
			assert.NotErrorIs(t, err, domain.ErrMalformedResponse)
		}},
		{"deadline", context.DeadlineExceeded, func(t *testing.T, err error) {
			var upstream *domain.UpstreamError
			require.ErrorAs(t, err, &upstream)
			assert.Zero(t, upstream.StatusCode)
		}},
		{"unknown", errors.New("boom"), func(t *testing.T, err error) {
			var upstream *domain.UpstreamError
			assert.ErrorAs(t, err, &upstream)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw, _ := newTestGateway(&fakeCompleter{configured: true, err: tt.err})
			_, err := gw.GenerateRecipes(context.Background(), "device-1", domain.GenerateRecipesRequest{
				Items: []domain.RecipeItemInput{{Name: "Arroz", Quantity: 1, Unit: "kg"}},
			})
			tt.want(t, err)
		})
	}
}

func TestGenerateRecipesPromptAndDefaults(t *testing.T) {
	completer := &fakeCompleter{configured: true, reply: `{"recipes":[{"name":"Arroz con leche"},{"name":"Sopa"},{"name":"Ensalada"}]}`}
	gw, _ := newTestGateway(completer)

	recipes, err := gw.GenerateRecipes(context.Background(), "device-1", domain.GenerateRecipesRequest{
		Items: []domain.RecipeItemInput{
			{Name: "Leche", Quantity: 1, Unit: "L", ExpirationDate: "2026-06-30"},
			{Name: "Pollo", Quantity: 0.5, Unit: "kg", ExpirationDate: "2026-07-03"},
			{Name: "Arroz", Quantity: 2, Unit: "kg", ExpirationDate: "2026-12-01"},
		},
	})
	require.NoError(t, err)
	assert.Len(t, recipes, 3)

	require.Len(t, completer.requests, 1)
	prompt := completer.requests[0].Messages[1].Content.(string)
	assert.Contains(t, prompt, "- Leche: 1 L (VENCIDO)")
	assert.Contains(t, prompt, "- Pollo: 0.5 kg (por vencer)")
	assert.Contains(t, prompt, "- Arroz: 2 kg\n")
	assert.Contains(t, prompt, "Sugiere 3 recetas")
	assert.False(t, completer.requests[0].Vision)
}

func TestGenerateRecipesQuotaAndValidation(t *testing.T) {
	completer := &fakeCompleter{configured: true, reply: `{"recipes":[]}`}
	gw, _ := newTestGateway(completer)
	ctx := context.Background()
	items := []domain.RecipeItemInput{{Name: "Huevos", Quantity: 6, Unit: "pzas"}}

	tooMany := 11
	_, err := gw.GenerateRecipes(ctx, "device-1", domain.GenerateRecipesRequest{Items: items, Count: &tooMany})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	_, err = gw.GenerateRecipes(ctx, "device-1", domain.GenerateRecipesRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	one := 1
	for i := 0; i < 3; i++ {
		_, err := gw.GenerateRecipes(ctx, "device-1", domain.GenerateRecipesRequest{Items: items, Count: &one})
		require.NoError(t, err)
	}
	_, err = gw.GenerateRecipes(ctx, "device-1", domain.GenerateRecipesRequest{Items: items})
	var quotaErr *domain.QuotaExceededError
	require.ErrorAs(t, err, &quotaErr)
	assert.Equal(t, 3, quotaErr.Limit)
	assert.True(t, strings.HasPrefix(quotaErr.UserMessage(), "Has alcanzado el limite diario de recetas (3/dia)"))
	assert.Len(t, completer.requests, 3)
}

func TestGatewayRequiresDeviceID(t *testing.T) {
	gw, _ := newTestGateway(&fakeCompleter{configured: true})
	_, err := gw.ScanLabel(context.Background(), "", domain.ScanLabelRequest{ImageBase64: "aGVsbG8="})
	assert.ErrorIs(t, err, domain.ErrMissingDeviceID)
}
