package sift

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrLLMError(t *testing.T) {
	tests := []struct {
		provider string
		message  string
		want     string
	}{
		{"openai", "rate limited", "openai: rate limited"},
		{"openai", "context length exceeded", "openai: context length exceeded"},
	}
	for _, tt := range tests {
		e := &ErrLLM{Provider: tt.provider, Message: tt.message}
		if got := e.Error(); got != tt.want {
			t.Errorf("ErrLLM{%q, %q}.Error() = %q, want %q", tt.provider, tt.message, got, tt.want)
		}
	}
}

func TestErrHTTPError(t *testing.T) {
	tests := []struct {
		status int
		body   string
		want   string
	}{
		{429, "too many requests", "http 429: too many requests"},
		{500, "internal server error", "http 500: internal server error"},
	}
	for _, tt := range tests {
		e := &ErrHTTP{Status: tt.status, Body: tt.body}
		if got := e.Error(); got != tt.want {
			t.Errorf("ErrHTTP{%d, %q}.Error() = %q, want %q", tt.status, tt.body, got, tt.want)
		}
	}
}

func TestErrorTypesImplementError(t *testing.T) {
	var _ error = (*ErrLLM)(nil)
	var _ error = (*ErrHTTP)(nil)
}

func TestErrMissingCredentialWrapping(t *testing.T) {
	err := fmt.Errorf("build pipeline: %w", ErrMissingCredential)
	if !errors.Is(err, ErrMissingCredential) {
		t.Error("wrapped ErrMissingCredential not detected by errors.Is")
	}
}
