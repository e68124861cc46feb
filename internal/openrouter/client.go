package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const defaultBaseURL = "https://openrouter.ai/api/v1"

// Fixed sampling parameters for judgment calls. The judge must be
// near-deterministic; these are not configurable.
const (
	temperature = 0.3
	maxTokens   = 2000
)

type Client struct {
	apiKey   string
	baseURL  string
	primary  string
	fallback string
	referer  string
	title    string
	client   *http.Client
	logger   *slog.Logger
}

func NewClient(apiKey, primaryModel, fallbackModel string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		apiKey:   apiKey,
		baseURL:  defaultBaseURL,
		primary:  primaryModel,
		fallback: fallbackModel,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

// SetBaseURL overrides the API base URL. Used for self-hosted gateways
// and for pointing the client at an httptest server.
func (c *Client) SetBaseURL(url string) {
	c.baseURL = url
}

// SetAppInfo sets the HTTP-Referer and X-Title headers OpenRouter uses
// for app attribution.
func (c *Client) SetAppInfo(referer, title string) {
	c.referer = referer
	c.title = title
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type response struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends the system and user prompts to the primary model. If that
// call fails for any reason it makes exactly one attempt against the
// fallback model with identical prompts. There is no further retry.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	content, perr := c.complete(ctx, c.primary, system, user)
	if perr == nil {
		return content, nil
	}

	c.logger.Warn("primary model failed, trying fallback",
		"primary", c.primary,
		"fallback", c.fallback,
		"error", perr,
	)

	content, ferr := c.complete(ctx, c.fallback, system, user)
	if ferr != nil {
		return "", fmt.Errorf("primary %s: %v; fallback %s: %w", c.primary, perr, c.fallback, ferr)
	}
	return content, nil
}

func (c *Client) complete(ctx context.Context, model, system, user string) (string, error) {
	reqBody := request{
		Model: model,
		Messages: []Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if c.referer != "" {
		req.Header.Set("HTTP-Referer", c.referer)
	}
	if c.title != "" {
		req.Header.Set("X-Title", c.title)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("api call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp errorResponse
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error.Message != "" {
			return "", fmt.Errorf("api error %d: %s", resp.StatusCode, errResp.Error.Message)
		}
		return "", fmt.Errorf("api error %d: %s", resp.StatusCode, string(respBody))
	}

	var apiResp response
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	if len(apiResp.Choices) == 0 {
		return "", fmt.Errorf("empty choices in response")
	}

	return apiResp.Choices[0].Message.Content, nil
}
