// Package engine implements theme.Engine over an OpenAI-compatible chat
// completions API. The engine's output is untrusted: callers must run every
// candidate through structural, diversity, and contextual validation.
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/HerbHall/themeforge/internal/composer"
	"github.com/HerbHall/themeforge/pkg/theme"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Prompt gate bounds.
const (
	minPromptLen = 1
	maxPromptLen = 50
)

// promptDenylist rejects prompts that try to steer the engine away from
// theme generation. Matching is case-insensitive substring.
var promptDenylist = []string{
	"ignore previous",
	"ignore all previous",
	"system prompt",
	"disregard instructions",
	"<script",
	"api key",
}

// Compile-time interface guard.
var _ theme.Engine = (*Client)(nil)

// Client talks to an OpenAI-compatible chat completions endpoint.
type Client struct {
	cfg        Config
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	composer   *composer.Composer
	logger     *zap.Logger
}

// New creates an engine client. The API key is resolved once at construction.
func New(cfg Config, creds theme.CredentialSource, logger *zap.Logger) (*Client, error) {
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = def.RequestsPerMinute
	}

	apiKey, err := creds.APIKey()
	if err != nil {
		return nil, fmt.Errorf("resolve engine credentials: %w", err)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("engine: api key is required")
	}

	return &Client{
		cfg:        cfg,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), 1),
		composer:   composer.New(logger.Named("composer")),
		logger:     logger,
	}, nil
}

// ValidatePrompt checks the prompt against the length and content gate
// before any network call. The sanitized prompt collapses interior
// whitespace and trims the ends.
func (c *Client) ValidatePrompt(prompt string) theme.PromptValidation {
	sanitized := strings.Join(strings.Fields(prompt), " ")

	// Length is counted in runes, not bytes, so multibyte prompts are not
	// penalized.
	var errs []string
	length := utf8.RuneCountInString(sanitized)
	if length < minPromptLen {
		errs = append(errs, "prompt must not be empty")
	}
	if length > maxPromptLen {
		errs = append(errs, fmt.Sprintf("prompt must be at most %d characters", maxPromptLen))
	}
	lowered := strings.ToLower(sanitized)
	for _, deny := range promptDenylist {
		if strings.Contains(lowered, deny) {
			errs = append(errs, fmt.Sprintf("prompt contains disallowed content %q", deny))
		}
	}

	return theme.PromptValidation{
		IsValid:         len(errs) == 0,
		Errors:          errs,
		SanitizedPrompt: sanitized,
	}
}

// GenerateTheme composes the instruction pair, calls the completion API, and
// parses the response into a candidate. Cancelling ctx aborts the in-flight
// request; the error classifies as a retryable timeout.
func (c *Client) GenerateTheme(ctx context.Context, prompt string, opts theme.PromptOptions) (*theme.CandidateTheme, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, mapError(err)
	}

	composed := c.composer.Compose(prompt, opts)
	req := chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: composed.SystemText},
			{Role: "user", Content: composed.UserText},
		},
		Temperature:    c.cfg.Temperature,
		MaxTokens:      c.cfg.MaxTokens,
		ResponseFormat: &responseFormat{Type: "json_object"},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal chat request: %w", err)
	}

	c.logger.Debug("calling theme engine",
		zap.String("model", c.cfg.Model),
		zap.String("diversity_level", string(opts.DiversityLevel)),
	)

	respBody, err := c.doPost(ctx, "/v1/chat/completions", body)
	if err != nil {
		return nil, mapError(err)
	}
	defer respBody.Close()

	var resp chatResponse
	if err := json.NewDecoder(respBody).Decode(&resp); err != nil {
		return nil, theme.NewServiceError(theme.ErrCodeParse, "failed to parse ai response", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, theme.NewServiceError(theme.ErrCodeInvalidResponse, "invalid response from ai service: no content", nil)
	}

	candidate, err := parseCandidate(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("engine returned candidate",
		zap.String("theme_name", candidate.ThemeName),
		zap.Float64("confidence", candidate.Confidence),
	)
	return candidate, nil
}

// doPost sends an authenticated POST request and returns the response body.
func (c *Client) doPost(ctx context.Context, path string, body []byte) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		return nil, parseStatusError(resp)
	}

	return resp.Body, nil
}

// parseStatusError reads a bounded amount of an error response body.
func parseStatusError(resp *http.Response) *statusError {
	var errResp struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err := json.Unmarshal(raw, &errResp); err != nil {
		return &statusError{StatusCode: resp.StatusCode, Message: resp.Status}
	}

	msg := errResp.Error.Message
	if msg == "" {
		msg = resp.Status
	}
	return &statusError{
		StatusCode: resp.StatusCode,
		Type:       errResp.Error.Type,
		Message:    msg,
	}
}

// --- Chat completion REST types (internal) ---

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}
