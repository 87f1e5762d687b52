package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/rahadian/sift"
)

// ChatOption configures a Chat provider.
type ChatOption func(*Chat)

// WithChatBaseURL overrides the API base URL (default DefaultBaseURL).
// The /chat/completions path is appended automatically.
func WithChatBaseURL(url string) ChatOption {
	return func(c *Chat) { c.baseURL = url }
}

// WithChatHTTPClient sets a custom HTTP client (e.g. for timeouts or proxies).
func WithChatHTTPClient(client *http.Client) ChatOption {
	return func(c *Chat) { c.client = client }
}

// WithTemperature sets the sampling temperature (default 0, deterministic).
func WithTemperature(t float32) ChatOption {
	return func(c *Chat) { c.temperature = t }
}

// WithChatLogger sets a structured logger for the provider.
func WithChatLogger(l *slog.Logger) ChatOption {
	return func(c *Chat) { c.logger = l }
}

// Chat implements sift.ChatModel against the chat completions endpoint.
type Chat struct {
	apiKey      string
	model       string
	baseURL     string
	temperature float32
	client      *http.Client
	logger      *slog.Logger
}

var _ sift.ChatModel = (*Chat)(nil)

// NewChat creates a chat provider. model falls back to DefaultChatModel
// when empty. An empty apiKey fails with ErrMissingCredential so
// misconfiguration surfaces at construction, not on the first request.
func NewChat(apiKey, model string, opts ...ChatOption) (*Chat, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai chat: %w", sift.ErrMissingCredential)
	}
	if model == "" {
		model = DefaultChatModel
	}
	c := &Chat{
		apiKey:  apiKey,
		model:   model,
		baseURL: DefaultBaseURL,
		client:  &http.Client{},
		logger:  nopLogger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Name returns the provider name.
func (c *Chat) Name() string { return providerName }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// Complete sends one prompt and returns the model's reply.
func (c *Chat) Complete(ctx context.Context, req sift.CompletionRequest) (sift.CompletionResponse, error) {
	messages := make([]chatMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	body := chatRequest{Model: c.model, Messages: messages, Temperature: c.temperature}
	resp, err := postJSON(ctx, c.client, c.apiKey, c.baseURL+"/chat/completions", body)
	if err != nil {
		return sift.CompletionResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return sift.CompletionResponse{}, httpErr(resp)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return sift.CompletionResponse{}, &sift.ErrLLM{Provider: providerName, Message: fmt.Sprintf("decode response: %v", err)}
	}
	if len(parsed.Choices) == 0 {
		return sift.CompletionResponse{}, &sift.ErrLLM{Provider: providerName, Message: "response contains no choices"}
	}

	c.logger.Debug("chat completion ok",
		"model", c.model,
		"input_tokens", parsed.Usage.PromptTokens,
		"output_tokens", parsed.Usage.CompletionTokens)

	return sift.CompletionResponse{
		Text: parsed.Choices[0].Message.Content,
		Usage: sift.Usage{
			InputTokens:  parsed.Usage.PromptTokens,
			OutputTokens: parsed.Usage.CompletionTokens,
		},
	}, nil
}
