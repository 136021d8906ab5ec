package auth

import (
	"context"

	"github.com/nyaybodh/nyaybodh/internal/domain"
	"github.com/nyaybodh/nyaybodh/internal/repository/session"
)

// Authenticator is the remote auth API.
type Authenticator interface {
	Login(ctx context.Context, creds domain.Credentials) (domain.Tokens, error)
	Register(ctx context.Context, reg domain.Registration) (domain.Tokens, error)
	VerifyOTP(ctx context.Context, userID int, otp string) (domain.Message, error)
	ResendOTP(ctx context.Context, email string) (domain.Message, error)
	ForgotPassword(ctx context.Context, email string) (domain.Message, error)
	ResetPassword(ctx context.Context, token, newPassword string) (domain.Message, error)
	Logout(ctx context.Context) error
	Profile(ctx context.Context) (domain.User, error)
	Refresh(ctx context.Context, refreshToken string) (domain.Tokens, error)
}

// SessionStore persists the local session.
type SessionStore interface {
	Get() session.Data
	Save(d session.Data) error
	Clear() error
}
