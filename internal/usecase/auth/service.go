package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"go.uber.org/zap"

	"github.com/nyaybodh/nyaybodh/internal/domain"
	"github.com/nyaybodh/nyaybodh/internal/repository/session"
)

// ErrInvalidInput is returned for missing or malformed form fields.
var ErrInvalidInput = errors.New("invalid input")

// Service signs users in and out and keeps the local session in sync.
type Service struct {
	api    Authenticator
	store  SessionStore
	logger *zap.Logger
}

// New creates an auth service.
func New(api Authenticator, store SessionStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{api: api, store: store, logger: logger}
}

// Login signs in and stores the session.
func (s *Service) Login(ctx context.Context, email, password string) (domain.User, error) {
	email, err := validEmail(email)
	if err != nil {
		return domain.User{}, err
	}
	if password == "" {
		return domain.User{}, fmt.Errorf("password is required: %w", ErrInvalidInput)
	}
	tokens, err := s.api.Login(ctx, domain.Credentials{Email: email, Password: password})
	if err != nil {
		return domain.User{}, fmt.Errorf("login: %w", err)
	}
	d := session.FromTokens(tokens)
	d.User.Email = email
	if err := s.store.Save(d); err != nil {
		return domain.User{}, err
	}
	s.logger.Info("signed in", zap.Int("user_id", tokens.UserID), zap.String("role", tokens.Role))
	return *d.User, nil
}

// Register creates an account. The account must be verified with VerifyOTP
// before it can sign in; the local session is not changed.
func (s *Service) Register(ctx context.Context, reg domain.Registration) (domain.Tokens, error) {
	email, err := validEmail(reg.Email)
	if err != nil {
		return domain.Tokens{}, err
	}
	reg.Email = email
	if reg.Password == "" || strings.TrimSpace(reg.FullName) == "" {
		return domain.Tokens{}, fmt.Errorf("password and full name are required: %w", ErrInvalidInput)
	}
	tokens, err := s.api.Register(ctx, reg)
	if err != nil {
		return domain.Tokens{}, fmt.Errorf("register: %w", err)
	}
	return tokens, nil
}

// VerifyOTP confirms a new account.
func (s *Service) VerifyOTP(ctx context.Context, userID int, otp string) (domain.Message, error) {
	otp = strings.TrimSpace(otp)
	if userID <= 0 || otp == "" {
		return domain.Message{}, fmt.Errorf("user id and otp are required: %w", ErrInvalidInput)
	}
	msg, err := s.api.VerifyOTP(ctx, userID, otp)
	return wrap("verify otp", msg, err)
}

// ResendOTP sends a new verification code.
func (s *Service) ResendOTP(ctx context.Context, email string) (domain.Message, error) {
	email, err := validEmail(email)
	if err != nil {
		return domain.Message{}, err
	}
	msg, err := s.api.ResendOTP(ctx, email)
	return wrap("resend otp", msg, err)
}

// ForgotPassword mails a reset link.
func (s *Service) ForgotPassword(ctx context.Context, email string) (domain.Message, error) {
	email, err := validEmail(email)
	if err != nil {
		return domain.Message{}, err
	}
	msg, err := s.api.ForgotPassword(ctx, email)
	return wrap("forgot password", msg, err)
}

// ResetPassword sets a new password with a reset token.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) (domain.Message, error) {
	if strings.TrimSpace(token) == "" || newPassword == "" {
		return domain.Message{}, fmt.Errorf("token and new password are required: %w", ErrInvalidInput)
	}
	msg, err := s.api.ResetPassword(ctx, token, newPassword)
	return wrap("reset password", msg, err)
}

// Logout ends the session. The local session is cleared even when the
// server call fails.
func (s *Service) Logout(ctx context.Context) error {
	if s.store.Get().IsAuthenticated {
		if err := s.api.Logout(ctx); err != nil {
			s.logger.Warn("remote logout failed", zap.Error(err))
		}
	}
	if err := s.store.Clear(); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// Profile fetches the signed-in account and refreshes the stored copy.
func (s *Service) Profile(ctx context.Context) (domain.User, error) {
	d := s.store.Get()
	if !d.IsAuthenticated {
		return domain.User{}, domain.ErrNotAuthenticated
	}
	u, err := s.api.Profile(ctx)
	if err != nil {
		return domain.User{}, fmt.Errorf("profile: %w", err)
	}
	d = s.store.Get()
	if d.IsAuthenticated {
		d.User = &u
		if err := s.store.Save(d); err != nil {
			s.logger.Warn("store profile", zap.Error(err))
		}
	}
	return u, nil
}

// Refresh exchanges the stored refresh token for a new access token.
func (s *Service) Refresh(ctx context.Context) error {
	d := s.store.Get()
	if d.RefreshToken == "" {
		return domain.ErrNotAuthenticated
	}
	tokens, err := s.api.Refresh(ctx, d.RefreshToken)
	if err != nil {
		return fmt.Errorf("refresh: %w", err)
	}
	next := session.FromTokens(tokens)
	if next.RefreshToken == "" {
		next.RefreshToken = d.RefreshToken
	}
	if tokens.UserID == 0 && d.User != nil {
		next.User = d.User
	}
	return s.store.Save(next)
}

// Current returns the signed-in user.
func (s *Service) Current() (domain.User, error) {
	d := s.store.Get()
	if !d.IsAuthenticated || d.User == nil {
		return domain.User{}, domain.ErrNotAuthenticated
	}
	return *d.User, nil
}

func validEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return "", fmt.Errorf("email %q: %w", email, ErrInvalidInput)
	}
	return email, nil
}

func wrap(op string, msg domain.Message, err error) (domain.Message, error) {
	if err != nil {
		return domain.Message{}, fmt.Errorf("%s: %w", op, err)
	}
	return msg, nil
}
