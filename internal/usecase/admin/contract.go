package admin

import (
	"context"

	"github.com/nyaybodh/nyaybodh/internal/domain"
	"github.com/nyaybodh/nyaybodh/internal/repository/session"
)

// UserDirectory is the remote admin API.
type UserDirectory interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
	UpdateUser(ctx context.Context, id int, upd domain.UserUpdate) (domain.User, error)
	DeleteUser(ctx context.Context, id int) error
}

// Registrar creates accounts.
type Registrar interface {
	Register(ctx context.Context, reg domain.Registration) (domain.Tokens, error)
}

// SessionReader exposes the signed-in user.
type SessionReader interface {
	Get() session.Data
}
