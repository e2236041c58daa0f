package genai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func textResponse(text string) generateResponse {
	return generateResponse{
		Candidates: []candidate{
			{
				Content:      content{Role: "model", Parts: []part{{Text: text}}},
				FinishReason: "STOP",
			},
		},
	}
}

func TestGenerate_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/test-model:generateContent" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("expected key test-key, got %q", r.URL.Query().Get("key"))
		}

		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if len(req.Contents) != 1 || req.Contents[0].Parts[0].Text != "hello" {
			t.Errorf("unexpected contents: %+v", req.Contents)
		}
		if req.GenerationConfig.Temperature != 0.2 {
			t.Errorf("expected temperature 0.2, got %f", req.GenerationConfig.Temperature)
		}
		if req.GenerationConfig.MaxOutputTokens != 512 {
			t.Errorf("expected max tokens 512, got %d", req.GenerationConfig.MaxOutputTokens)
		}

		json.NewEncoder(w).Encode(textResponse("world"))
	}))
	defer server.Close()

	c := NewClient("test-key")
	c.SetBaseURL(server.URL)

	got, err := c.Generate(context.Background(), Profile{Model: "test-model", Temperature: 0.2, MaxOutputTokens: 512}, "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "world" {
		t.Errorf("expected 'world', got %q", got)
	}
}

func TestGenerate_RetriesOn429(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(textResponse("ok"))
	}))
	defer server.Close()

	c := NewClient("test-key")
	c.SetBaseURL(server.URL)

	got, err := c.Generate(context.Background(), Profile{Model: "m"}, "hi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" {
		t.Errorf("expected 'ok', got %q", got)
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 calls, got %d", calls.Load())
	}
}

func TestGenerate_BlockedPrompt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(generateResponse{
			PromptFeedback: &promptFeedback{BlockReason: "SAFETY"},
		})
	}))
	defer server.Close()

	c := NewClient("test-key")
	c.SetBaseURL(server.URL)

	_, err := c.Generate(context.Background(), Profile{Model: "m"}, "hi")
	var blocked *BlockedError
	if !errors.As(err, &blocked) {
		t.Fatalf("expected BlockedError, got %v", err)
	}
	if blocked.Reason != "SAFETY" {
		t.Errorf("expected reason SAFETY, got %q", blocked.Reason)
	}
}

func TestGenerate_BlockedCandidate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(generateResponse{
			Candidates: []candidate{{FinishReason: "SAFETY"}},
		})
	}))
	defer server.Close()

	c := NewClient("test-key")
	c.SetBaseURL(server.URL)

	_, err := c.Generate(context.Background(), Profile{Model: "m"}, "hi")
	var blocked *BlockedError
	if !errors.As(err, &blocked) {
		t.Fatalf("expected BlockedError, got %v", err)
	}
}

func TestGenerate_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(generateResponse{
			Error: &apiError{Code: 400, Status: "INVALID_ARGUMENT", Message: "bad request"},
		})
	}))
	defer server.Close()

	c := NewClient("test-key")
	c.SetBaseURL(server.URL)

	_, err := c.Generate(context.Background(), Profile{Model: "m"}, "hi")
	if err == nil {
		t.Fatal("expected error for API error response")
	}
}

func TestGenerate_ContextTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		json.NewEncoder(w).Encode(textResponse("too late"))
	}))
	defer server.Close()

	c := NewClient("test-key")
	c.SetBaseURL(server.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.Generate(ctx, Profile{Model: "m"}, "hi")
	if err == nil {
		t.Fatal("expected error for timed-out call")
	}
}

func TestStripFences(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"bare json", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"plain fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding whitespace", "  \n```json\n{\"a\":1}\n```\n", `{"a":1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := StripFences(tc.in); got != tc.want {
				t.Errorf("StripFences(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
