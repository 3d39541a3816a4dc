package apiclient

import (
	"context"
	"net/http"

	"github.com/flowday/flowday/internal/models"
)

// Login signs in and returns the user. The session cookie lands in the client's jar.
func (c *Client) Login(ctx context.Context, email, password string) (*models.User, error) {
	body := map[string]string{
		"email":    email,
		"password": password,
	}
	var user models.User
	if err := c.do(ctx, http.MethodPost, "/user/login", body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
