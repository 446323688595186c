package openrouter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"fridge-inventory/internal/core/ai/provider"
	"fridge-inventory/internal/infrastructure/config"
	"fridge-inventory/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Client OpenRouter API 客戶端
type Client struct {
	client    *resty.Client
	model     string
	maxTokens int
}

type chatRequest struct {
	Model          string             `json:"model"`
	Messages       []provider.Message `json:"messages"`
	MaxTokens      int                `json:"max_tokens,omitempty"`
	Temperature    float64            `json:"temperature,omitempty"`
	ResponseFormat *responseFormat    `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage provider.Usage `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewClient 創建 OpenRouter 客戶端；失敗不重試
func NewClient(cfg config.OpenRouterConfig) *Client {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(0).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.APIKey)).
		SetHeader("HTTP-Referer", "https://github.com/fridge-inventory").
		SetHeader("X-Title", "Fridge Inventory")

	return &Client{
		client:    client,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}
}

// GetModel 回傳模型名稱
func (c *Client) GetModel() string {
	return c.model
}

// Generate 呼叫 /chat/completions
func (c *Client) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	body := chatRequest{
		Model:       c.model,
		Messages:    req.Messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	if body.MaxTokens == 0 {
		body.MaxTokens = c.maxTokens
	}
	if req.JSONMode {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(body).
		Post("/chat/completions")
	if err != nil {
		return nil, common.ErrAIServiceError.Wrap(fmt.Errorf("failed to send request to OpenRouter: %w", err))
	}

	switch resp.StatusCode() {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		return nil, common.ErrAIRateLimited.Wrap(fmt.Errorf("OpenRouter: %s", resp.String()))
	default:
		return nil, common.ErrAIServiceError.Wrap(fmt.Errorf("OpenRouter API returned %d: %s", resp.StatusCode(), resp.String()))
	}

	var result chatResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, common.ErrAIServiceError.Wrap(fmt.Errorf("failed to parse OpenRouter response: %w", err))
	}
	if result.Error != nil && result.Error.Message != "" {
		return nil, common.ErrAIServiceError.Wrap(fmt.Errorf("OpenRouter error: %s", result.Error.Message))
	}
	if len(result.Choices) == 0 {
		return nil, common.ErrAIServiceError.Wrap(fmt.Errorf("no choices in OpenRouter response"))
	}

	common.LogDebug("OpenRouter 回應",
		zap.String("model", c.model),
		zap.Int("total_tokens", result.Usage.TotalTokens),
	)
	return &provider.Response{Content: result.Choices[0].Message.Content, Usage: result.Usage}, nil
}
