package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"freshkeep-backend/domain"
	"freshkeep-backend/internal/utils/metrics"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry-go"
	"github.com/gofiber/fiber/v2/log"
)

const (
	DefaultBaseURL     = "https://api.openai.com/v1"
	DefaultModel       = "gpt-4o-mini"
	DefaultVisionModel = "gpt-4o"
	DefaultTimeout     = 30 * time.Second
	defaultAttempts    = 3
)

type (
	// ContentPart is one element of a multimodal user message.
	ContentPart struct {
		Type     string    `json:"type"`
		Text     string    `json:"text,omitempty"`
		ImageURL *ImageURL `json:"image_url,omitempty"`
	}

	ImageURL struct {
		URL    string `json:"url"`
		Detail string `json:"detail,omitempty"`
	}

	// Message content is either a string or a []ContentPart.
	Message struct {
		Role    string `json:"role"`
		Content any    `json:"content"`
	}

	CompletionRequest struct {
		Vision      bool
		Messages    []Message
		Temperature float64
		MaxTokens   int
	}

	// Completer sends a chat completion to the AI provider and returns the
	// raw text of the first choice.
	Completer interface {
		Configured() bool
		Complete(ctx context.Context, req CompletionRequest) (string, error)
	}

	ClientConfig struct {
		APIKey      string
		BaseURL     string
		Model       string
		VisionModel string
		Timeout     time.Duration
		Attempts    uint
		RetryDelay  time.Duration
	}

	openAIClient struct {
		config     ClientConfig
		httpClient *http.Client
	}
)

// NewOpenAIClient talks to any OpenAI-compatible chat completions endpoint.
func NewOpenAIClient(config ClientConfig) Completer {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if config.VisionModel == "" {
		config.VisionModel = DefaultVisionModel
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	if config.Attempts == 0 {
		config.Attempts = defaultAttempts
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = 500 * time.Millisecond
	}
	return &openAIClient{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
	}
}

func (c *openAIClient) Configured() bool {
	return c.config.APIKey != ""
}

func (c *openAIClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if !c.Configured() {
		return "", domain.ErrServiceUnavailable
	}

	model := c.config.Model
	if req.Vision {
		model = c.config.VisionModel
	}

	requestBody := map[string]interface{}{
		"model":           model,
		"messages":        req.Messages,
		"temperature":     req.Temperature,
		"max_tokens":      req.MaxTokens,
		"response_format": map[string]string{"type": "json_object"},
	}
	requestJSON, err := json.Marshal(requestBody)
	if err != nil {
		return "", err
	}

	var content string
	var lastErr error
	start := time.Now()

	err = retry.Do(
		func() error {
			content, lastErr = c.send(ctx, requestJSON)
			if lastErr == nil {
				return nil
			}
			if !retryable(lastErr) {
				return retry.Unrecoverable(lastErr)
			}
			return lastErr
		},
		retry.Attempts(c.config.Attempts),
		retry.Delay(c.config.RetryDelay),
		retry.MaxDelay(5*time.Second),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			log.Warnw("retrying ai completion", "attempt", n+1, "model", model, "error", err)
		}),
	)

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.Since(ctx, metrics.UpstreamLatency, start, "model", model)
	metrics.Count(ctx, metrics.UpstreamCalls, 1, "model", model, "outcome", outcome)

	if err == nil {
		return content, nil
	}
	if lastErr != nil {
		return "", lastErr
	}
	return "", &domain.UpstreamError{Err: err}
}

func (c *openAIClient) send(ctx context.Context, requestJSON []byte) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/chat/completions", bytes.NewReader(requestJSON))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &domain.UpstreamError{Err: err}
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", &domain.UpstreamError{Err: err}
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		log.Warnw("ai provider rate limited request", "retry_after", resp.Header.Get("Retry-After"))
		return "", domain.ErrUpstreamRateLimited
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Errorw("ai provider returned error", "status", resp.StatusCode, "body", truncate(string(bodyBytes), 500))
		return "", &domain.UpstreamError{StatusCode: resp.StatusCode, Err: errors.New(http.StatusText(resp.StatusCode))}
	}

	var completion struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(bodyBytes, &completion); err != nil {
		log.Errorw("ai provider returned undecodable envelope", "body", truncate(string(bodyBytes), 500))
		return "", domain.ErrMalformedResponse
	}
	if len(completion.Choices) == 0 || strings.TrimSpace(completion.Choices[0].Message.Content) == "" {
		return "", domain.ErrEmptyCompletion
	}

	return completion.Choices[0].Message.Content, nil
}

// retryable reports whether another attempt could succeed: transport
// failures and 5xx only.
func retryable(err error) bool {
	var upstream *domain.UpstreamError
	if !errors.As(err, &upstream) {
		return false
	}
	return upstream.StatusCode == 0 || upstream.StatusCode >= 500
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "...(" + strconv.Itoa(len(s)-n) + " more bytes)"
}

func imageDataURL(imageBase64 string) string {
	return fmt.Sprintf("data:image/jpeg;base64,%s", imageBase64)
}
