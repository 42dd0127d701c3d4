package workmate

import (
	"context"
	"net/http"
)

// User is the profile shape returned by the auth and employee endpoints.
type User struct {
	ID         uint   `json:"id"`
	Email      string `json:"email"`
	Username   string `json:"username"`
	FullName   string `json:"full_name"`
	Department string `json:"department"`
	Role       string `json:"role"`
	IsActive   bool   `json:"is_active"`
}

// LoginResponse carries the bearer token issued for a user.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	User        User   `json:"user"`
}

// RegisterRequest creates a new employee account.
type RegisterRequest struct {
	Email      string `json:"email"`
	Username   string `json:"username"`
	FullName   string `json:"full_name"`
	Password   string `json:"password"`
	Department string `json:"department,omitempty"`
}

// Register creates a new employee account and returns its user ID.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (uint, error) {
	var response struct {
		UserID uint `json:"user_id"`
	}
	if err := c.call(ctx, http.MethodPost, "/api/auth/register", req, &response); err != nil {
		return 0, err
	}
	return response.UserID, nil
}

// Login exchanges credentials for a bearer token and installs it on the
// client for subsequent calls.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	body := map[string]string{"email": email, "password": password}

	var response LoginResponse
	if err := c.call(ctx, http.MethodPost, "/api/auth/login", body, &response); err != nil {
		return nil, err
	}
	c.SetToken(response.AccessToken)
	return &response, nil
}

// Me returns the profile of the authenticated user.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.call(ctx, http.MethodGet, "/api/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// RefreshToken obtains a fresh token for the authenticated user and installs
// it on the client.
func (c *Client) RefreshToken(ctx context.Context) (string, error) {
	var response struct {
		AccessToken string `json:"access_token"`
	}
	if err := c.call(ctx, http.MethodPost, "/api/auth/refresh", nil, &response); err != nil {
		return "", err
	}
	c.SetToken(response.AccessToken)
	return response.AccessToken, nil
}
