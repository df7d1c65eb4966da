package llm

//go:generate mockgen -destination=./clients_mock_test.go -package=llm -source=clients.go

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"llm-chat/internal/config"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/pkg/errors"
)

const (
	workersAIDefaultBaseURL = "https://api.cloudflare.com/client/v4"
	gatewayDefaultBaseURL   = "https://gateway.ai.cloudflare.com/v1"
	openAIDefaultBaseURL    = "https://api.openai.com/v1"

	// errorSnippetLimit caps how much of a failed response body ends up in the error.
	errorSnippetLimit = 512
)

// InferenceClient defines the contract for an external model runtime.
type InferenceClient interface {
	// Run executes the model and returns its raw streaming response.
	// The caller owns the returned stream and must close it.
	Run(ctx context.Context, modelID string, input *RunInput) (*Stream, error)
}

// NewClient builds the inference client for the configured provider.
func NewClient(cfg config.BackendConfig) (InferenceClient, error) {
	switch cfg.Provider {
	case config.ProviderWorkersAI:
		return NewWorkersAIClient(cfg), nil
	case config.ProviderOpenAI:
		return NewOpenAIClient(cfg), nil
	default:
		return nil, errors.Errorf("unsupported backend provider: %q", cfg.Provider)
	}
}

// workersAIClient talks to the Cloudflare Workers AI REST API, optionally through an AI Gateway.
type workersAIClient struct {
	httpClient *http.Client
	baseURL    string
	accountID  string
	apiToken   string
	gateway    config.GatewayConfig
}

// NewWorkersAIClient is the constructor for the Workers AI client.
func NewWorkersAIClient(cfg config.BackendConfig) InferenceClient {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = workersAIDefaultBaseURL
	}

	gateway := cfg.Gateway
	gateway.BaseURL = strings.TrimRight(gateway.BaseURL, "/")
	if gateway.BaseURL == "" {
		gateway.BaseURL = gatewayDefaultBaseURL
	}

	return &workersAIClient{
		// No timeout: the response is a stream that lives as long as the inbound request.
		httpClient: &http.Client{},
		baseURL:    baseURL,
		accountID:  cfg.AccountID,
		apiToken:   cfg.APIToken,
		gateway:    gateway,
	}
}

func (c *workersAIClient) runURL(modelID string) string {
	if c.gateway.ID != "" {
		return fmt.Sprintf("%s/%s/%s/workers-ai/%s", c.gateway.BaseURL, c.accountID, c.gateway.ID, modelID)
	}
	return fmt.Sprintf("%s/accounts/%s/ai/run/%s", c.baseURL, c.accountID, modelID)
}

// Run posts the input to the model's run endpoint and hands back the open response.
func (c *workersAIClient) Run(ctx context.Context, modelID string, input *RunInput) (*Stream, error) {
	reqBody, err := json.Marshal(input)
	if err != nil {
		return nil, errors.Wrap(err, "could not marshal run input")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.runURL(modelID), bytes.NewReader(reqBody))
	if err != nil {
		return nil, errors.Wrap(err, "could not create run http request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiToken)

	if c.gateway.ID != "" {
		if c.gateway.SkipCache {
			req.Header.Set("cf-aig-skip-cache", "true")
		}
		if c.gateway.CacheTTL > 0 {
			req.Header.Set("cf-aig-cache-ttl", strconv.Itoa(c.gateway.CacheTTL))
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "workers ai run request failed")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errorSnippetLimit))
		return nil, errors.Errorf("workers ai returned non-2xx status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	return NewStream(resp), nil
}

// openAIClient talks to any OpenAI-compatible chat completions endpoint.
type openAIClient struct {
	client openai.Client
}

// NewOpenAIClient is the constructor for the OpenAI-compatible client.
func NewOpenAIClient(cfg config.BackendConfig) InferenceClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = openAIDefaultBaseURL
	}
	// Request paths are resolved relative to the base URL.
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	client := openai.NewClient(
		option.WithAPIKey(cfg.APIToken),
		option.WithBaseURL(baseURL),
		option.WithHTTPClient(&http.Client{}),
		option.WithMaxRetries(0),
	)

	return &openAIClient{client: client}
}

// Run requests a streamed chat completion and returns the raw SSE response
// rather than letting the SDK decode it.
func (c *openAIClient) Run(ctx context.Context, modelID string, input *RunInput) (*Stream, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(input.Messages))
	for _, msg := range input.Messages {
		param, err := toMessageParam(msg)
		if err != nil {
			return nil, err
		}
		messages = append(messages, param)
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(modelID),
		Messages: messages,
	}
	if input.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(input.MaxTokens))
	}

	var raw *http.Response
	err := c.client.Post(ctx, "chat/completions", params, &raw, option.WithJSONSet("stream", input.Stream))
	if err != nil {
		return nil, errors.Wrap(err, "openai chat completion request failed")
	}
	if raw == nil {
		return nil, errors.New("openai chat completion returned no response")
	}

	return NewStream(raw), nil
}

func toMessageParam(msg *ChatMessage) (openai.ChatCompletionMessageParamUnion, error) {
	switch msg.Role {
	case RoleSystem:
		return openai.SystemMessage(msg.Content), nil
	case RoleUser:
		return openai.UserMessage(msg.Content), nil
	case RoleAssistant:
		return openai.AssistantMessage(msg.Content), nil
	default:
		return openai.ChatCompletionMessageParamUnion{}, errors.Errorf("unsupported role: %s", msg.Role)
	}
}
