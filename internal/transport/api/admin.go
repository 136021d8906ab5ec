package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/nyaybodh/nyaybodh/internal/domain"
)

const adminUsersPath = "/api/admin/users"

// ListUsers returns every account. Requires an admin token.
func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	r, err := jsonRequest("admin_list_users", http.MethodGet, c.authBaseURL+adminUsersPath, nil)
	if err != nil {
		return nil, err
	}
	var out []domain.User
	if err := c.do(ctx, r, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateUser changes the name or role of an account.
func (c *Client) UpdateUser(ctx context.Context, id int, upd domain.UserUpdate) (domain.User, error) {
	r, err := jsonRequest("admin_update_user", http.MethodPut, c.authBaseURL+adminUsersPath+"/"+strconv.Itoa(id), upd)
	if err != nil {
		return domain.User{}, err
	}
	var out domain.User
	if err := c.do(ctx, r, &out); err != nil {
		return domain.User{}, err
	}
	return out, nil
}

// DeleteUser removes an account.
func (c *Client) DeleteUser(ctx context.Context, id int) error {
	r, err := jsonRequest("admin_delete_user", http.MethodDelete, c.authBaseURL+adminUsersPath+"/"+strconv.Itoa(id), nil)
	if err != nil {
		return err
	}
	return c.do(ctx, r, nil)
}
