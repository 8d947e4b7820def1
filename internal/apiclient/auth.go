package apiclient

import (
	"context"
	"net/http"
)

// RemoteUser is the user payload of the auth endpoints. It may carry the
// admin flag twice (role and isAdmin); the session collapses both.
type RemoteUser struct {
	ID      string `json:"_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	IsAdmin *bool  `json:"isAdmin,omitempty"`
}

type AuthResult struct {
	User  *RemoteUser
	Token string
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /auth/login
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	return c.authenticate(ctx, "/auth/login", loginRequest{Email: email, Password: password}, "Login failed. Please try again.")
}

// POST /auth/register
func (c *Client) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	return c.authenticate(ctx, "/auth/register", registerRequest{Name: name, Email: email, Password: password}, "Registration failed")
}

func (c *Client) authenticate(ctx context.Context, path string, body any, fallback string) (*AuthResult, error) {
	var env envelope[*RemoteUser]
	if err := c.do(ctx, http.MethodPost, path, nil, body, &env, fallback); err != nil {
		return nil, err
	}
	return &AuthResult{User: env.Data, Token: env.Token}, nil
}
