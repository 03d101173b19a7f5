package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-travel-planner/internal/config"
)

const testCompletionsURL = "https://api.test/v1/chat/completions"

func newTestClient(t *testing.T, opts ...Option) *Client {
	t.Helper()

	hc := &http.Client{}
	httpmock.ActivateNonDefault(hc)
	t.Cleanup(httpmock.DeactivateAndReset)

	cfg := &config.Config{
		OpenRouterAPIKey:  "test-key",
		OpenRouterBaseURL: "https://api.test/v1",
		OpenRouterModel:   "openai/gpt-4o-mini",
	}

	base := []Option{
		WithHTTPClient(hc),
		WithRetryPolicy(RetryPolicy{
			MaxRetries: 2,
			BaseDelay:  time.Millisecond,
			MaxDelay:   time.Millisecond,
			Sleep:      func(ctx context.Context, d time.Duration) error { return nil },
		}),
	}
	return NewClient(cfg, append(base, opts...)...)
}

func successBody(content string) string {
	return fmt.Sprintf(`{
		"id": "gen-123",
		"model": "openai/gpt-4o-mini",
		"provider": "openai",
		"choices": [{"message": {"role": "assistant", "content": %q}}],
		"usage": {"prompt_tokens": 42, "completion_tokens": 100, "total_tokens": 142}
	}`, content)
}

func TestChatCompletion_Success(t *testing.T) {
	client := newTestClient(t)

	var gotAuth, gotRequestID string
	httpmock.RegisterResponder(http.MethodPost, testCompletionsURL,
		func(req *http.Request) (*http.Response, error) {
			gotAuth = req.Header.Get("Authorization")
			gotRequestID = req.Header.Get("X-Request-Id")
			return httpmock.NewStringResponse(http.StatusOK, successBody("Day 1: arrive in Lisbon.")), nil
		})

	resp, err := client.ChatCompletion(context.Background(), ChatRequest{
		Messages: []Message{{Role: RoleUser, Content: "plan a trip"}},
	})

	require.NoError(t, err)
	assert.Equal(t, "Day 1: arrive in Lisbon.", resp.Content)
	assert.Equal(t, "openai/gpt-4o-mini", resp.Model)
	assert.Equal(t, "openai", resp.Provider)
	assert.Equal(t, 42, resp.PromptTokens)
	assert.Equal(t, 100, resp.CompletionTokens)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.NotEmpty(t, gotRequestID)
	assert.Equal(t, gotRequestID, resp.RequestID)
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestChatCompletion_CallerRequestID(t *testing.T) {
	client := newTestClient(t)

	httpmock.RegisterResponder(http.MethodPost, testCompletionsURL,
		httpmock.NewStringResponder(http.StatusOK, successBody("ok")))

	resp, err := client.ChatCompletion(context.Background(), ChatRequest{
		Messages:  []Message{{Role: RoleUser, Content: "hi"}},
		RequestID: "req-77",
	})

	require.NoError(t, err)
	assert.Equal(t, "req-77", resp.RequestID)
}

func TestChatCompletion_RetriesServerErrors(t *testing.T) {
	client := newTestClient(t)

	calls := 0
	httpmock.RegisterResponder(http.MethodPost, testCompletionsURL,
		func(req *http.Request) (*http.Response, error) {
			calls++
			if calls <= 2 {
				return httpmock.NewStringResponse(http.StatusServiceUnavailable, `{"error": "overloaded"}`), nil
			}
			return httpmock.NewStringResponse(http.StatusOK, successBody("third time lucky")), nil
		})

	resp, err := client.ChatCompletion(context.Background(), ChatRequest{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})

	require.NoError(t, err)
	assert.Equal(t, "third time lucky", resp.Content)
	assert.Equal(t, 3, calls)
}

func TestChatCompletion_BadRequestNotRetried(t *testing.T) {
	client := newTestClient(t)

	calls := 0
	httpmock.RegisterResponder(http.MethodPost, testCompletionsURL,
		func(req *http.Request) (*http.Response, error) {
			calls++
			return httpmock.NewStringResponse(http.StatusBadRequest, `{"error": "bad model"}`), nil
		})

	_, err := client.ChatCompletion(context.Background(), ChatRequest{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, ErrCodeProvider, apiErr.Code)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.NotEmpty(t, apiErr.RequestID)
}

func TestChatCompletion_RetriesExhausted(t *testing.T) {
	client := newTestClient(t)

	httpmock.RegisterResponder(http.MethodPost, testCompletionsURL,
		httpmock.NewStringResponder(http.StatusBadGateway, `{"error": "upstream"}`))

	_, err := client.ChatCompletion(context.Background(), ChatRequest{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})

	require.Error(t, err)
	assert.Equal(t, 3, httpmock.GetTotalCallCount())

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
}

func TestChatCompletion_TransportErrorRetried(t *testing.T) {
	client := newTestClient(t)

	calls := 0
	httpmock.RegisterResponder(http.MethodPost, testCompletionsURL,
		func(req *http.Request) (*http.Response, error) {
			calls++
			if calls == 1 {
				return nil, errors.New("connection reset")
			}
			return httpmock.NewStringResponse(http.StatusOK, successBody("recovered")), nil
		})

	resp, err := client.ChatCompletion(context.Background(), ChatRequest{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})

	require.NoError(t, err)
	assert.Equal(t, "recovered", resp.Content)
	assert.Equal(t, 2, calls)
}

func TestChatCompletion_MissingAPIKey(t *testing.T) {
	client := newTestClient(t)
	client.apiKey = ""

	_, err := client.ChatCompletion(context.Background(), ChatRequest{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})

	require.Error(t, err)
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, ErrCodeMissingAPIKey, apiErr.Code)
	assert.Equal(t, 0, httpmock.GetTotalCallCount())
}

func TestChatCompletion_MessageValidation(t *testing.T) {
	client := newTestClient(t)

	tests := []struct {
		name     string
		messages []Message
	}{
		{"empty", nil},
		{"invalid_role", []Message{{Role: "tool", Content: "x"}}},
		{"empty_content", []Message{{Role: RoleUser, Content: ""}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.ChatCompletion(context.Background(), ChatRequest{Messages: tt.messages})
			require.Error(t, err)
		})
	}
	assert.Equal(t, 0, httpmock.GetTotalCallCount())
}

func TestChatCompletion_MalformedResponseBody(t *testing.T) {
	client := newTestClient(t)

	httpmock.RegisterResponder(http.MethodPost, testCompletionsURL,
		httpmock.NewStringResponder(http.StatusOK, `{not json`))

	_, err := client.ChatCompletion(context.Background(), ChatRequest{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})

	require.Error(t, err)
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, ErrCodeInvalidJSON, apiErr.Code)
	// A broken 200 body is a content failure, not a transport one.
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestStructuredCompletion_ValidatorSchema(t *testing.T) {
	client := newTestClient(t)

	httpmock.RegisterResponder(http.MethodPost, testCompletionsURL,
		httpmock.NewStringResponder(http.StatusOK, successBody(`{"city": "Lisbon", "days": 5}`)))

	schema := ResponseSchema{
		Name: "trip_summary",
		Validator: func(data []byte) (bool, error) {
			var doc struct {
				City string `json:"city"`
				Days int    `json:"days"`
			}
			if err := json.Unmarshal(data, &doc); err != nil {
				return false, nil
			}
			return doc.City != "" && doc.Days > 0, nil
		},
	}

	resp, err := client.StructuredCompletion(context.Background(), ChatRequest{
		Messages: []Message{{Role: RoleUser, Content: "summarize"}},
	}, schema)

	require.NoError(t, err)
	assert.JSONEq(t, `{"city": "Lisbon", "days": 5}`, string(resp.Data))
}

func TestStructuredCompletion_RawJSONSchemaSendsResponseFormat(t *testing.T) {
	client := newTestClient(t)

	var body map[string]any
	httpmock.RegisterResponder(http.MethodPost, testCompletionsURL,
		func(req *http.Request) (*http.Response, error) {
			require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
			return httpmock.NewStringResponse(http.StatusOK, successBody(`{"city": "Lisbon"}`)), nil
		})

	schema := ResponseSchema{
		Name:       "trip_summary",
		JSONSchema: map[string]any{"type": "object"},
	}

	_, err := client.StructuredCompletion(context.Background(), ChatRequest{
		Messages: []Message{{Role: RoleUser, Content: "summarize"}},
	}, schema)

	require.NoError(t, err)
	rf, ok := body["response_format"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "json_schema", rf["type"])
}

func TestStructuredCompletion_InvalidJSONNotRetried(t *testing.T) {
	client := newTestClient(t)

	httpmock.RegisterResponder(http.MethodPost, testCompletionsURL,
		httpmock.NewStringResponder(http.StatusOK, successBody("not json at all")))

	_, err := client.StructuredCompletion(context.Background(), ChatRequest{
		Messages: []Message{{Role: RoleUser, Content: "summarize"}},
	}, ResponseSchema{JSONSchema: map[string]any{"type": "object"}})

	require.Error(t, err)
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, ErrCodeInvalidJSON, apiErr.Code)
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestStructuredCompletion_SchemaViolation(t *testing.T) {
	client := newTestClient(t)

	httpmock.RegisterResponder(http.MethodPost, testCompletionsURL,
		httpmock.NewStringResponder(http.StatusOK, successBody(`{"wrong": true}`)))

	schema := ResponseSchema{
		Validator: func(data []byte) (bool, error) { return false, nil },
	}

	_, err := client.StructuredCompletion(context.Background(), ChatRequest{
		Messages: []Message{{Role: RoleUser, Content: "summarize"}},
	}, schema)

	require.Error(t, err)
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, ErrCodeInvalidSchema, apiErr.Code)
}

func TestStructuredCompletion_ValidatorFailure(t *testing.T) {
	client := newTestClient(t)

	httpmock.RegisterResponder(http.MethodPost, testCompletionsURL,
		httpmock.NewStringResponder(http.StatusOK, successBody(`{}`)))

	schema := ResponseSchema{
		Validator: func(data []byte) (bool, error) { return false, errors.New("validator blew up") },
	}

	_, err := client.StructuredCompletion(context.Background(), ChatRequest{
		Messages: []Message{{Role: RoleUser, Content: "summarize"}},
	}, schema)

	require.Error(t, err)
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, ErrCodeValidator, apiErr.Code)
}

func TestStructuredCompletion_MissingValidator(t *testing.T) {
	client := newTestClient(t)

	_, err := client.StructuredCompletion(context.Background(), ChatRequest{
		Messages: []Message{{Role: RoleUser, Content: "summarize"}},
	}, ResponseSchema{})

	require.Error(t, err)
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, ErrCodeMissingValidator, apiErr.Code)
	assert.Equal(t, 0, httpmock.GetTotalCallCount())
}

func TestChatCompletionStream_ReturnsRawBody(t *testing.T) {
	client := newTestClient(t)

	var body map[string]any
	httpmock.RegisterResponder(http.MethodPost, testCompletionsURL,
		func(req *http.Request) (*http.Response, error) {
			require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
			return httpmock.NewStringResponse(http.StatusOK, "data: {\"chunk\":1}\n\ndata: [DONE]\n\n"), nil
		})

	stream, err := client.ChatCompletionStream(context.Background(), ChatRequest{
		Messages: []Message{{Role: RoleUser, Content: "stream it"}},
	})

	require.NoError(t, err)
	defer stream.Close()

	assert.Equal(t, true, body["stream"])

	raw := make([]byte, 64)
	n, _ := stream.Read(raw)
	assert.Contains(t, string(raw[:n]), "data:")
}

func TestGeneratePlan_PrependsSystemPersona(t *testing.T) {
	client := newTestClient(t)

	var body struct {
		Messages []Message `json:"messages"`
	}
	httpmock.RegisterResponder(http.MethodPost, testCompletionsURL,
		func(req *http.Request) (*http.Response, error) {
			require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
			return httpmock.NewStringResponse(http.StatusOK, successBody("# Itinerary")), nil
		})

	resp, err := client.GeneratePlan(context.Background(), "3 days in Porto")

	require.NoError(t, err)
	assert.Equal(t, "# Itinerary", resp.Content)
	require.Len(t, body.Messages, 2)
	assert.Equal(t, RoleSystem, body.Messages[0].Role)
	assert.Equal(t, RoleUser, body.Messages[1].Role)
	assert.Equal(t, "3 days in Porto", body.Messages[1].Content)
}
