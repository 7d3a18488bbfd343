package api

import (
	"context"
	"net/http"
)

// NewUser is the payload for creating a platform account. Empty optional
// fields are omitted from the request entirely.
type NewUser struct {
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// CreateUser registers a new account. A duplicate email comes back as an
// *Error with HTTP 409; use IsConflict to special-case it.
func (c *Client) CreateUser(ctx context.Context, user NewUser) error {
	req, err := c.jsonRequest(ctx, http.MethodPost, "/v1/users", user)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}
