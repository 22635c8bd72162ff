package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/Arihant027/VS-News/app/metrics"
)

// ErrUnavailable is returned when no model is configured or the provider
// refuses the request (rate limit, outage)
var ErrUnavailable = errors.New("ai model unavailable")

// maxInputRunes bounds the text forwarded for summarization
const maxInputRunes = 12000

const summarizeSystemPrompt = "You are a news editor. Summarize the article you are given in three to " +
	"four sentences of neutral, factual prose. Reply with the summary only."

const htmlSystemPrompt = "You are a newsletter designer. Reply with one complete HTML document only, " +
	"without markdown or commentary."

// Client talks to an OpenAI-compatible chat completions API
type Client struct {
	api     *openai.Client
	model   string
	timeout time.Duration
	limiter *rate.Limiter
}

// NewClient creates a model client. baseURL may point at any OpenAI-compatible
// endpoint; rps <= 0 disables client-side rate limiting.
func NewClient(apiKey, baseURL, model string, timeout time.Duration, rps float64) *Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = strings.TrimSuffix(baseURL, "/")
	}

	limit := rate.Inf
	burst := 1
	if rps > 0 {
		limit = rate.Limit(rps)
		burst = max(1, int(rps))
	}

	return &Client{
		api:     openai.NewClientWithConfig(config),
		model:   model,
		timeout: timeout,
		limiter: rate.NewLimiter(limit, burst),
	}
}

// Summarize returns a short prose summary of text
func (c *Client) Summarize(ctx context.Context, text string) (string, error) {
	text = truncate(strings.TrimSpace(text), maxInputRunes)
	if text == "" {
		return "", fmt.Errorf("text is empty")
	}

	summary, err := c.complete(ctx, "summarize", summarizeSystemPrompt, text)
	if err != nil {
		return "", err
	}
	return summary, nil
}

// GenerateHTML asks the model for a newsletter document and strips any code fences
func (c *Client) GenerateHTML(ctx context.Context, prompt string) (string, error) {
	html, err := c.complete(ctx, "generate_html", htmlSystemPrompt, prompt)
	if err != nil {
		return "", err
	}
	return StripCodeFences(html), nil
}

func (c *Client) complete(ctx context.Context, operation, system, user string) (string, error) {
	if c == nil || c.api == nil {
		return "", ErrUnavailable
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if err := c.limiter.Wait(ctx); err != nil {
		metrics.RecordAIRequest(operation, err)
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	metrics.RecordAIRequest(operation, err)
	if err != nil {
		return "", classify(err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("model returned no choices")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("model returned empty content")
	}

	slog.Debug("Model completion", "operation", operation, "model", c.model,
		"prompt_tokens", resp.Usage.PromptTokens, "completion_tokens", resp.Usage.CompletionTokens)
	return content, nil
}

// classify marks throttling and provider outages as ErrUnavailable
func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return fmt.Errorf("failed to call model: %w", err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.HTTPStatusCode == http.StatusTooManyRequests || reqErr.HTTPStatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return fmt.Errorf("failed to call model: %w", err)
}

// StripCodeFences removes a surrounding ``` or ```html fence from model output
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = ""
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
