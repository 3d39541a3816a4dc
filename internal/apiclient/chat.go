package apiclient

import (
	"context"
	"net/http"

	"github.com/flowday/flowday/internal/models"
)

// ListMessages fetches the chat history.
func (c *Client) ListMessages(ctx context.Context) ([]models.ChatMessage, error) {
	var msgs []models.ChatMessage
	if err := c.do(ctx, http.MethodGet, "/ai/response", nil, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// askResponse is the envelope /ai/ask replies with.
type askResponse struct {
	Chat models.ChatMessage `json:"chat"`
}

// Ask posts a question to the assistant.
func (c *Client) Ask(ctx context.Context, message string) (*models.ChatMessage, error) {
	body := map[string]string{"message": message}
	var resp askResponse
	if err := c.do(ctx, http.MethodPost, "/ai/ask", body, &resp); err != nil {
		return nil, err
	}
	return &resp.Chat, nil
}

// ClearMessages deletes the whole chat history.
func (c *Client) ClearMessages(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/ai/messages", nil, nil)
}
