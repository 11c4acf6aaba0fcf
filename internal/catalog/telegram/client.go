package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"gift_watcher/internal/domain"
)

// Config holds Telegram Bot API client configuration.
type Config struct {
	BaseURL  string
	BotToken string
	Timeout  time.Duration
}

// Client talks to the Telegram Bot API. It serves both the catalog side
// (getAvailableGifts, sendGift) and message delivery (sendMessage).
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	logger     *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
		token:   cfg.BotToken,
		logger:  logger.With("component", "telegram"),
	}
}

// ListAvailableGifts fetches the full current gift catalog. Catalog order is
// preserved; downstream tie-breaking depends on it.
func (c *Client) ListAvailableGifts(ctx context.Context) ([]domain.Gift, error) {
	var list giftList
	if err := c.call(ctx, "getAvailableGifts", nil, &list); err != nil {
		return nil, fmt.Errorf("get available gifts: %w", err)
	}

	gifts := make([]domain.Gift, 0, len(list.Gifts))
	for _, g := range list.Gifts {
		gifts = append(gifts, domain.Gift{
			ID:    g.ID,
			Price: g.StarCount,
		})
	}

	c.logger.Debug("fetched gift catalog", "count", len(gifts))
	return gifts, nil
}

// SendGift purchases one copy of a gift for the recipient.
func (c *Client) SendGift(ctx context.Context, recipientID, giftID int64) error {
	req := sendGiftRequest{UserID: recipientID, GiftID: giftID}
	if err := c.call(ctx, "sendGift", req, nil); err != nil {
		return fmt.Errorf("send gift %d to %d: %w", giftID, recipientID, err)
	}
	return nil
}

// SendMessage delivers a plain-text message to a chat.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	req := sendMessageRequest{ChatID: chatID, Text: text}
	if err := c.call(ctx, "sendMessage", req, nil); err != nil {
		return fmt.Errorf("send message to %d: %w", chatID, err)
	}
	return nil
}

func (c *Client) call(ctx context.Context, method string, payload, result any) error {
	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)

	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	var env apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	if !env.OK {
		return c.mapError(&env)
	}

	if result != nil {
		if err := json.Unmarshal(env.Result, result); err != nil {
			return fmt.Errorf("decode result: %w", err)
		}
	}

	return nil
}

// mapError converts a failed Bot API envelope into the domain error taxonomy.
// A 429 with retry_after becomes RateLimitedError; everything else is a
// RemoteError.
func (c *Client) mapError(env *apiResponse) error {
	if env.ErrorCode == http.StatusTooManyRequests && env.Parameters != nil && env.Parameters.RetryAfter > 0 {
		return &domain.RateLimitedError{
			RetryAfter: time.Duration(env.Parameters.RetryAfter) * time.Second,
		}
	}
	return &domain.RemoteError{
		Code:    env.ErrorCode,
		Message: env.Description,
	}
}
