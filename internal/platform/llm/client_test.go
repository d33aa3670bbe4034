package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yungbote/mentamind-backend/internal/pkg/httpx"
	"github.com/yungbote/mentamind-backend/internal/platform/logger"
)

type roundTripperFunc func(req *http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func jsonResponse(status int, body any) *http.Response {
	b, _ := json.Marshal(body)
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewReader(b)),
	}
}

func okCompletion(text string) map[string]any {
	return map[string]any{
		"choices": []any{map[string]any{"message": map[string]any{"content": text}}},
		"usage":   map[string]any{"prompt_tokens": 12, "completion_tokens": 4},
	}
}

func newTestClient(cfg Config, rt roundTripperFunc) *Client {
	c := NewWithHTTPClient(cfg, logger.Nop(), &http.Client{Transport: rt})
	c.sleep = func(context.Context, time.Duration) error { return nil }
	return c
}

func TestCompleteSendsOpenAICompatibleRequest(t *testing.T) {
	cfg := Config{APIKey: "sk-test", BaseURL: "http://upstream/api/v1/", SiteURL: "https://mentamind.app", SiteName: "MentaMind"}
	c := newTestClient(cfg, func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/api/v1/chat/completions" {
			t.Fatalf("path=%s", req.URL.Path)
		}
		if got := req.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Fatalf("authorization=%q", got)
		}
		if req.Header.Get("HTTP-Referer") != "https://mentamind.app" || req.Header.Get("X-Title") != "MentaMind" {
			t.Fatalf("missing attribution headers: %v", req.Header)
		}
		var in chatCompletionRequest
		if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
			t.Fatalf("decode req: %v", err)
		}
		if in.Model != DefaultModel {
			t.Fatalf("model=%q want %q", in.Model, DefaultModel)
		}
		if len(in.Messages) != 3 || in.Messages[0].Role != RoleSystem || in.Messages[2].Content != "hello" {
			t.Fatalf("messages=%+v", in.Messages)
		}
		if in.MaxTokens != 400 || in.Temperature != 0.7 {
			t.Fatalf("max_tokens=%d temperature=%v", in.MaxTokens, in.Temperature)
		}
		return jsonResponse(http.StatusOK, okCompletion("  I'm listening.  ")), nil
	})

	out, err := c.Complete(context.Background(), CompletionRequest{
		System: "be kind",
		History: []Message{
			{Role: RoleAssistant, Content: "hi"},
			{Role: RoleUser, Content: "hello"},
		},
		MaxTokens:   400,
		Temperature: 0.7,
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != "I'm listening." {
		t.Fatalf("got=%q", out)
	}
}

func TestCompleteRetriesRetryableStatus(t *testing.T) {
	var calls int32
	c := newTestClient(Config{APIKey: "k", BaseURL: "http://upstream", MaxRetries: 2}, func(req *http.Request) (*http.Response, error) {
		if atomic.AddInt32(&calls, 1) < 3 {
			resp := jsonResponse(http.StatusTooManyRequests, map[string]any{"error": "slow down"})
			resp.Header.Set("Retry-After", "1")
			return resp, nil
		}
		return jsonResponse(http.StatusOK, okCompletion("ok")), nil
	})
	out, err := c.Complete(context.Background(), CompletionRequest{History: []Message{{Role: RoleUser, Content: "x"}}})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != "ok" || atomic.LoadInt32(&calls) != 3 {
		t.Fatalf("out=%q calls=%d", out, calls)
	}
}

func TestCompleteDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	c := newTestClient(Config{APIKey: "k", BaseURL: "http://upstream", MaxRetries: 3}, func(req *http.Request) (*http.Response, error) {
		atomic.AddInt32(&calls, 1)
		return jsonResponse(http.StatusUnauthorized, map[string]any{"error": "bad key"}), nil
	})
	_, err := c.Complete(context.Background(), CompletionRequest{})
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("err=%v", err)
	}
	if httpx.IsRetryableError(err) {
		t.Fatalf("401 should not be retryable")
	}
	if calls != 1 {
		t.Fatalf("calls=%d want 1", calls)
	}
}

func TestCompleteEmptyChoices(t *testing.T) {
	c := newTestClient(Config{APIKey: "k"}, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, map[string]any{"choices": []any{}}), nil
	})
	out, err := c.Complete(context.Background(), CompletionRequest{})
	if err != nil || out != "" {
		t.Fatalf("out=%q err=%v", out, err)
	}
}

func TestCompleteRequiresAPIKey(t *testing.T) {
	c := newTestClient(Config{}, func(req *http.Request) (*http.Response, error) {
		t.Fatalf("no request expected")
		return nil, nil
	})
	if _, err := c.Complete(context.Background(), CompletionRequest{}); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("err=%v want ErrMissingAPIKey", err)
	}
}

func TestMockScriptsReplies(t *testing.T) {
	m := NewMock("first")
	m.Default = "fallback"
	a, _ := m.Complete(context.Background(), CompletionRequest{System: "s"})
	b, _ := m.Complete(context.Background(), CompletionRequest{})
	if a != "first" || b != "fallback" || len(m.Calls()) != 2 {
		t.Fatalf("a=%q b=%q calls=%d", a, b, len(m.Calls()))
	}
}
