// Package deepseek is a retrying client for OpenAI-compatible chat
// completion APIs such as DeepSeek.
package deepseek

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL        = "https://api.deepseek.com/v1"
	DefaultModel          = "deepseek-chat"
	DefaultReasoningModel = "deepseek-reasoner"
	DefaultMaxTokens      = 1000
	DefaultTemperature    = 0.5
	DefaultTopP           = 0.9
	DefaultMaxRetries     = 2
	DefaultBackoffBase    = time.Second
)

// SystemPersona is the fixed system message sent with every prompt.
const SystemPersona = "你是一位汉字专家，精通文字学、训诂学和汉字教育，尤其擅长用生动易懂的方式向小学生解释汉字的构造和历史演变。"

// ErrUpstream matches every error returned after the retry budget is spent.
var ErrUpstream = errors.New("upstream chat completion failed")

// UpstreamError reports a chat completion that failed on every attempt.
type UpstreamError struct {
	Model    string
	Attempts int
	Err      error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("deepseek %s: failed after %d attempts: %v", e.Model, e.Attempts, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func (e *UpstreamError) Is(target error) bool { return target == ErrUpstream }

// Config configures a Client. Zero values take the package defaults.
type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	MaxTokens   int
	// Temperature and TopP are sent as given, zero included. Nil takes the
	// default.
	Temperature *float64
	TopP        *float64
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries  int
	BackoffBase time.Duration
	HTTPClient  *http.Client
	// Limiter throttles every attempt, retries included. Nil disables it.
	Limiter *rate.Limiter
	Logger  *slog.Logger
	// OnRetry is called before each backoff wait.
	OnRetry func(attempt int, delay time.Duration, err error)
}

// Client sends single-turn prompts and returns the generated text.
type Client struct {
	cfg    Config
	tracer trace.Tracer
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	TopP        float64       `json:"top_p"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// New creates a Client, filling unset fields with defaults.
func New(cfg Config) *Client {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Temperature == nil {
		t := DefaultTemperature
		cfg.Temperature = &t
	}
	if cfg.TopP == nil {
		p := DefaultTopP
		cfg.TopP = &p
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = DefaultBackoffBase
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 60 * time.Second}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Client{
		cfg:    cfg,
		tracer: otel.Tracer("github.com/gatzby-git/shuowenjiezi/internal/deepseek"),
	}
}

// Model returns the model used when Complete is given none.
func (c *Client) Model() string { return c.cfg.Model }

// Complete sends prompt to model (the configured model when empty) and
// returns the reply text. Failed attempts are retried with delays of
// BackoffBase·2^n; once the budget is spent the error is an *UpstreamError.
func (c *Client) Complete(ctx context.Context, model, prompt string) (string, error) {
	if model == "" {
		model = c.cfg.Model
	}

	body, err := json.Marshal(chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: SystemPersona},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: *c.cfg.Temperature,
		TopP:        *c.cfg.TopP,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	attempts := 0
	text, err := backoff.Retry(ctx,
		func() (string, error) {
			attempts++
			return c.send(ctx, model, body, attempts)
		},
		backoff.WithBackOff(&doublingBackOff{base: c.cfg.BackoffBase}),
		backoff.WithMaxTries(uint(c.cfg.MaxRetries+1)),
		backoff.WithNotify(func(err error, delay time.Duration) {
			c.cfg.Logger.Warn("chat completion failed, retrying",
				"model", model, "attempt", attempts, "delay", delay, "err", err)
			if c.cfg.OnRetry != nil {
				c.cfg.OnRetry(attempts, delay, err)
			}
		}),
	)
	if err != nil {
		c.cfg.Logger.Error("chat completion failed", "model", model, "attempts", attempts, "err", err)
		return "", &UpstreamError{Model: model, Attempts: attempts, Err: err}
	}
	return text, nil
}

func (c *Client) send(ctx context.Context, model string, body []byte, attempt int) (text string, err error) {
	if c.cfg.Limiter != nil {
		if err := c.cfg.Limiter.Wait(ctx); err != nil {
			return "", backoff.Permanent(fmt.Errorf("rate limit wait: %w", err))
		}
	}

	ctx, span := c.tracer.Start(ctx, "deepseek.chat_completion", trace.WithAttributes(
		attribute.String("llm.model", model),
		attribute.Int("llm.attempt", attempt),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "chat completion failed")
		}
		span.End()
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", backoff.Permanent(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", backoff.Permanent(ctx.Err())
		}
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("chat status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		return "", errors.New("response missing message content")
	}
	return out.Choices[0].Message.Content, nil
}
