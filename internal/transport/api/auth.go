package api

import (
	"context"
	"net/http"

	"github.com/nyaybodh/nyaybodh/internal/domain"
)

const authPath = "/api/auth"

func (c *Client) authJSON(ctx context.Context, endpoint, method, path string, in, out any) error {
	r, err := jsonRequest("auth_"+endpoint, method, c.authBaseURL+authPath+path, in)
	if err != nil {
		return err
	}
	return c.do(ctx, r, out)
}

// Login exchanges credentials for tokens.
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (domain.Tokens, error) {
	var out domain.Tokens
	err := c.authJSON(ctx, "login", http.MethodPost, "/login", creds, &out)
	return out, err
}

// Register creates an account. The server answers with tokens for it.
func (c *Client) Register(ctx context.Context, reg domain.Registration) (domain.Tokens, error) {
	var out domain.Tokens
	err := c.authJSON(ctx, "register", http.MethodPost, "/register", reg, &out)
	return out, err
}

// VerifyOTP confirms the one-time code sent after registration.
func (c *Client) VerifyOTP(ctx context.Context, userID int, otp string) (domain.Message, error) {
	in := struct {
		OTP    string `json:"otp"`
		UserID int    `json:"userId"`
	}{otp, userID}
	var out domain.Message
	err := c.authJSON(ctx, "verify_otp", http.MethodPost, "/verify-otp", in, &out)
	return out, err
}

// ResendOTP sends a new one-time code to email.
func (c *Client) ResendOTP(ctx context.Context, email string) (domain.Message, error) {
	in := struct {
		Email string `json:"email"`
	}{email}
	var out domain.Message
	err := c.authJSON(ctx, "resend_otp", http.MethodPost, "/resend-otp", in, &out)
	return out, err
}

// ForgotPassword starts a password reset for email.
func (c *Client) ForgotPassword(ctx context.Context, email string) (domain.Message, error) {
	in := struct {
		Email string `json:"email"`
	}{email}
	var out domain.Message
	err := c.authJSON(ctx, "forgot_password", http.MethodPost, "/forgot-password", in, &out)
	return out, err
}

// ResetPassword sets a new password using the token from the reset mail.
func (c *Client) ResetPassword(ctx context.Context, token, newPassword string) (domain.Message, error) {
	in := struct {
		Token       string `json:"token"`
		NewPassword string `json:"new_password"`
	}{token, newPassword}
	var out domain.Message
	err := c.authJSON(ctx, "reset_password", http.MethodPost, "/reset-password", in, &out)
	return out, err
}

// Logout ends the server-side session.
func (c *Client) Logout(ctx context.Context) error {
	return c.authJSON(ctx, "logout", http.MethodPost, "/logout", nil, nil)
}

// Profile returns the account of the current token.
func (c *Client) Profile(ctx context.Context) (domain.User, error) {
	var out domain.User
	err := c.authJSON(ctx, "profile", http.MethodGet, "/profile", nil, &out)
	return out, err
}

// Refresh exchanges a refresh token for new tokens. The server reads it from the
// refresh_token cookie.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (domain.Tokens, error) {
	r, err := jsonRequest("auth_refresh", http.MethodPost, c.authBaseURL+authPath+"/refresh", nil)
	if err != nil {
		return domain.Tokens{}, err
	}
	r.cookies = []*http.Cookie{{Name: "refresh_token", Value: refreshToken}}
	var out domain.Tokens
	if err := c.do(ctx, r, &out); err != nil {
		return domain.Tokens{}, err
	}
	return out, nil
}
