package service

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"

	"signal_bot/internal/modules/config"
)

// ErrDisabled — ключ OpenRouter не задан, команда /chat недоступна.
var ErrDisabled = errors.New("openrouter is not configured")

// Client — chat completions через OpenRouter (для команды /chat).
type Client struct {
	cfg  *config.Config
	http *http.Client
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: 60 * time.Second},
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) Chat(ctx context.Context, prompt string) (string, error) {
	if c.cfg.OpenRouter.APIKey == "" {
		return "", ErrDisabled
	}

	payload, err := sonic.Marshal(chatRequest{
		Model: c.cfg.OpenRouter.Model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", errors.Wrap(err, "marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		"https://openrouter.ai/api/v1/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", errors.Wrap(err, "build request")
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.OpenRouter.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "do request")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "read body")
	}
	if resp.StatusCode/100 != 2 {
		return "", errors.Errorf("openrouter http %d: %s", resp.StatusCode, string(data))
	}

	var out chatResponse
	if err := sonic.Unmarshal(data, &out); err != nil {
		return "", errors.Wrap(err, "decode response")
	}
	if out.Error != nil {
		return "", errors.Errorf("openrouter: %s", out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return "", errors.New("openrouter: empty response")
	}
	return out.Choices[0].Message.Content, nil
}
