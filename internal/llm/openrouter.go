package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ai-travel-planner/internal/config"

	"github.com/google/uuid"
)

const (
	chatCompletionsPath = "/chat/completions"

	// defaultTimeout bounds a single attempt, not the whole call.
	defaultTimeout = 60 * time.Second
)

// planSystemPrompt establishes the assistant persona for itinerary
// generation. Output conventions match what the prompt builder asks for.
const planSystemPrompt = "You are an expert travel planner. Produce practical, " +
	"personalized itineraries and always answer in well-structured markdown."

// Client is an HTTP client for an OpenRouter-compatible chat completion
// API. It owns request construction, auth headers, per-attempt timeouts
// and retry/backoff; callers see a single logical call.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	retry      RetryPolicy
	timeout    time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient substitutes the transport, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetryPolicy replaces the default retry policy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *Client) { c.retry = p }
}

// WithTimeout sets the per-attempt timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// NewClient creates a new OpenRouter API client.
func NewClient(cfg *config.Config, opts ...Option) *Client {
	c := &Client{
		apiKey:     cfg.OpenRouterAPIKey,
		baseURL:    strings.TrimSuffix(cfg.OpenRouterBaseURL, "/"),
		model:      cfg.OpenRouterModel,
		httpClient: &http.Client{},
		retry:      DefaultRetryPolicy(),
		timeout:    defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type chatCompletionResponse struct {
	ID       string `json:"id"`
	Model    string `json:"model"`
	Provider string `json:"provider"`
	Choices  []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// ChatCompletion performs one logical chat completion call, retrying
// transport and provider failures per the configured policy.
func (c *Client) ChatCompletion(ctx context.Context, req ChatRequest) (*AIResponse, error) {
	requestID, body, err := c.prepare(&req, false)
	if err != nil {
		return nil, err
	}

	var out *AIResponse
	err = c.retry.Do(ctx, func(attempt int) (int, error) {
		resp, status, attemptErr := c.attempt(ctx, body, requestID, req.Timeout)
		if attemptErr != nil {
			return status, attemptErr
		}
		out = resp
		return status, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// StructuredCompletion constrains the provider to emit JSON matching the
// schema and validates the result. Malformed content is never retried;
// retries only protect the transport.
func (c *Client) StructuredCompletion(ctx context.Context, req ChatRequest, schema ResponseSchema) (*StructuredResponse, error) {
	if schema.isZero() {
		return nil, &APIError{
			Code:      ErrCodeMissingValidator,
			RequestID: req.RequestID,
			Message:   "structured completion requires a validator or a JSON schema",
		}
	}
	req.ResponseFormat = schema.responseFormat()

	resp, err := c.ChatCompletion(ctx, req)
	if err != nil {
		return nil, err
	}

	data := []byte(resp.Content)
	if !json.Valid(data) {
		return nil, &APIError{
			Code:      ErrCodeInvalidJSON,
			Status:    http.StatusOK,
			RequestID: resp.RequestID,
			Message:   "provider output is not valid JSON",
		}
	}
	if schema.Validator != nil {
		valid, verr := schema.Validator(data)
		if verr != nil {
			return nil, &APIError{
				Code:      ErrCodeValidator,
				Status:    http.StatusOK,
				RequestID: resp.RequestID,
				Message:   "schema validator failed",
				Err:       verr,
			}
		}
		if !valid {
			return nil, &APIError{
				Code:      ErrCodeInvalidSchema,
				Status:    http.StatusOK,
				RequestID: resp.RequestID,
				Message:   "provider output does not match the expected schema",
			}
		}
	}

	return &StructuredResponse{AIResponse: *resp, Data: json.RawMessage(data)}, nil
}

// ChatCompletionStream performs the same request construction but returns
// the raw response body for incremental consumption. The caller decodes
// the server-sent-event framing and must close the body; its lifetime is
// governed by ctx, not the per-attempt timeout.
func (c *Client) ChatCompletionStream(ctx context.Context, req ChatRequest) (io.ReadCloser, error) {
	requestID, body, err := c.prepare(&req, true)
	if err != nil {
		return nil, err
	}

	var stream io.ReadCloser
	err = c.retry.Do(ctx, func(attempt int) (int, error) {
		httpReq, reqErr := c.newHTTPRequest(ctx, body, requestID)
		if reqErr != nil {
			return 0, reqErr
		}

		resp, doErr := c.httpClient.Do(httpReq)
		if doErr != nil {
			return 0, c.transportError(doErr, requestID)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			statusErr := c.statusError(resp, requestID)
			resp.Body.Close()
			return resp.StatusCode, statusErr
		}
		stream = resp.Body
		return resp.StatusCode, nil
	})
	if err != nil {
		return nil, err
	}
	return stream, nil
}

// GeneratePlan prepends the fixed planner persona and delegates to
// ChatCompletion.
func (c *Client) GeneratePlan(ctx context.Context, prompt string) (*AIResponse, error) {
	return c.ChatCompletion(ctx, ChatRequest{
		Messages: []Message{
			{Role: RoleSystem, Content: planSystemPrompt},
			{Role: RoleUser, Content: prompt},
		},
	})
}

// GenerateContent implements TextGenerator on top of GeneratePlan.
func (c *Client) GenerateContent(ctx context.Context, prompt string) (ContentResponse, error) {
	resp, err := c.GeneratePlan(ctx, prompt)
	if err != nil {
		return ContentResponse{}, err
	}
	return ContentResponse{Content: resp.Content, Usage: resp.Usage()}, nil
}

// prepare validates the request, resolves the request id and marshals the
// body. It mutates req so the resolved values are visible to attempts.
func (c *Client) prepare(req *ChatRequest, stream bool) (string, []byte, error) {
	if c.apiKey == "" {
		return "", nil, &APIError{
			Code:      ErrCodeMissingAPIKey,
			RequestID: req.RequestID,
			Message:   "no API key configured",
		}
	}
	if err := validateMessages(req.Messages); err != nil {
		return "", nil, err
	}

	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	if req.Timeout <= 0 {
		req.Timeout = c.timeout
	}

	payload := map[string]any{
		"messages": req.Messages,
	}
	payload["model"] = c.model
	if req.Model != "" {
		payload["model"] = req.Model
	}
	for k, v := range req.Params {
		if k == "model" || k == "messages" || k == "stream" || k == "response_format" {
			continue
		}
		payload[k] = v
	}
	if req.ResponseFormat != nil {
		payload["response_format"] = req.ResponseFormat
	}
	if stream {
		payload["stream"] = true
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	return req.RequestID, body, nil
}

// attempt performs exactly one network call with its own timeout.
func (c *Client) attempt(ctx context.Context, body []byte, requestID string, timeout time.Duration) (*AIResponse, int, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := c.newHTTPRequest(attemptCtx, body, requestID)
	if err != nil {
		return nil, 0, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, 0, c.transportError(err, requestID)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp.StatusCode, c.statusError(resp, requestID)
	}

	var completionResp chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completionResp); err != nil {
		return nil, resp.StatusCode, &APIError{
			Code:      ErrCodeInvalidJSON,
			Status:    resp.StatusCode,
			RequestID: requestID,
			Message:   "failed to decode provider response",
			Err:       err,
		}
	}
	if len(completionResp.Choices) == 0 {
		return nil, resp.StatusCode, &APIError{
			Code:      ErrCodeProvider,
			Status:    resp.StatusCode,
			RequestID: requestID,
			Message:   "no choices returned",
		}
	}

	model := completionResp.Model
	if model == "" {
		model = c.model
	}

	return &AIResponse{
		Content:          completionResp.Choices[0].Message.Content,
		Model:            model,
		PromptTokens:     completionResp.Usage.PromptTokens,
		CompletionTokens: completionResp.Usage.CompletionTokens,
		Provider:         completionResp.Provider,
		RequestID:        requestID,
	}, resp.StatusCode, nil
}

func (c *Client) newHTTPRequest(ctx context.Context, body []byte, requestID string) (*http.Request, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+chatCompletionsPath, bytes.NewReader(body))
	if err != nil {
		return nil, &APIError{
			Code:      ErrCodeNetwork,
			RequestID: requestID,
			Message:   "failed to create request",
			Err:       err,
		}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("X-Request-Id", requestID)
	return httpReq, nil
}

// transportError classifies a failure that produced no HTTP response.
// Timeouts are retryable transport failures.
func (c *Client) transportError(err error, requestID string) *APIError {
	code := ErrCodeNetwork
	msg := "failed to send request"
	if errors.Is(err, context.DeadlineExceeded) {
		code = ErrCodeTimeout
		msg = "request timed out"
	}
	return &APIError{Code: code, RequestID: requestID, Message: msg, Err: err}
}

func (c *Client) statusError(resp *http.Response, requestID string) *APIError {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	return &APIError{
		Code:      ErrCodeProvider,
		Status:    resp.StatusCode,
		RequestID: requestID,
		Message:   fmt.Sprintf("provider returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet))),
	}
}

func validateMessages(msgs []Message) error {
	if len(msgs) == 0 {
		return fmt.Errorf("chat completion requires at least one message")
	}
	for i, m := range msgs {
		switch m.Role {
		case RoleSystem, RoleUser, RoleAssistant:
		default:
			return fmt.Errorf("message %d has invalid role %q", i, m.Role)
		}
		if m.Content == "" {
			return fmt.Errorf("message %d has empty content", i)
		}
	}
	return nil
}
