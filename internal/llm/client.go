package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/YadurajManu/bolonyay-server/internal/apperr"
	"github.com/YadurajManu/bolonyay-server/internal/config"
	"github.com/YadurajManu/bolonyay-server/pkg/logger"
)

// Client is the single chat-completion primitive. Classification,
// extraction and summarization are all realized through prompt
// construction at the call site; there is no model-specific control logic
// here.
type Client interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float64) (string, error)
}

type client struct {
	log        *logger.Logger
	http       *resty.Client
	endpoint   string
	deployment string
	apiVersion string
}

// NewClient builds an Azure OpenAI chat-completion client.
func NewClient(cfg *config.Config, log *logger.Logger) Client {
	httpClient := resty.New().
		SetHeader("Content-Type", "application/json").
		SetHeader("api-key", cfg.AzureAPIKey).
		SetTimeout(cfg.AzureTimeout)

	return &client{
		log:        log.With("service", "llm"),
		http:       httpClient,
		endpoint:   strings.TrimRight(cfg.AzureEndpoint, "/"),
		deployment: cfg.AzureDeployment,
		apiVersion: cfg.AzureAPIVersion,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *client) Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float64) (string, error) {
	url := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		c.endpoint, c.deployment, c.apiVersion)

	req := chatRequest{
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(&req).
		Post(url)
	if err != nil {
		return "", fmt.Errorf("chat completion request: %w", err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return "", apperr.NewAPIError(resp.StatusCode(), strings.TrimSpace(resp.String()))
	}

	var cr chatResponse
	if err := json.Unmarshal(resp.Body(), &cr); err != nil {
		return "", fmt.Errorf("%w: %v", apperr.ErrInvalidResponse, err)
	}
	if len(cr.Choices) == 0 || cr.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%w: empty choices", apperr.ErrInvalidResponse)
	}

	return cr.Choices[0].Message.Content, nil
}
