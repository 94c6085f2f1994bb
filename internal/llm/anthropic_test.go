package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
)

func TestAnthropicClient_Generate(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("path = %q, want /v1/messages", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "msg_01",
			"type": "message",
			"role": "assistant",
			"model": "claude-sonnet-4-20250514",
			"content": [{"type": "text", "text": "print('hi')"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 11, "output_tokens": 4}
		}`))
	}))
	defer srv.Close()

	c, err := NewAnthropicClient(AnthropicConfig{
		APIKey:      "sk-test",
		BaseURL:     srv.URL,
		Temperature: 0.7,
	})
	if err != nil {
		t.Fatalf("NewAnthropicClient: %v", err)
	}

	out, err := c.Generate(context.Background(), Request{System: "be terse", Prompt: "hello", Temperature: Float(0.1)})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != "print('hi')" {
		t.Errorf("output = %q", out)
	}
	if body["temperature"] != 0.1 {
		t.Errorf("temperature = %v, want 0.1", body["temperature"])
	}
	if body["model"] != string(anthropic.ModelClaudeSonnet4_20250514) {
		t.Errorf("model = %v", body["model"])
	}
	in, outTok := c.Tracker().Total()
	if in != 11 || outTok != 4 {
		t.Errorf("tokens = %d/%d", in, outTok)
	}
}

func TestAnthropicClient_FailureIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`))
	}))
	defer srv.Close()

	c, err := NewAnthropicClient(AnthropicConfig{APIKey: "bad", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewAnthropicClient: %v", err)
	}
	_, err = c.Generate(context.Background(), Request{Prompt: "x"})
	if !errors.Is(err, ErrTransport) {
		t.Errorf("err = %v, want ErrTransport", err)
	}
}

func TestNewAnthropicClient_RequiresKey(t *testing.T) {
	if _, err := NewAnthropicClient(AnthropicConfig{}); err == nil {
		t.Error("expected error without API key")
	}
}

func TestTranslateModelForBedrock(t *testing.T) {
	tests := []struct {
		in   anthropic.Model
		want anthropic.Model
	}{
		{anthropic.ModelClaudeSonnet4_20250514, "us.anthropic.claude-sonnet-4-20250514-v1:0"},
		{"us.anthropic.custom-v1:0", "us.anthropic.custom-v1:0"},
	}
	for _, tt := range tests {
		if got := translateModelForBedrock(tt.in); got != tt.want {
			t.Errorf("translateModelForBedrock(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
