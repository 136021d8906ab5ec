package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nyaybodh/nyaybodh/internal/domain"
)

var (
	// ErrForbidden is returned when the signed-in user is not an admin.
	ErrForbidden = errors.New("admin role required")
	// ErrInvalidRole is returned for roles other than USER and ADMIN.
	ErrInvalidRole = errors.New("invalid role")
	// ErrSelfDelete is returned when an admin tries to delete their own account.
	ErrSelfDelete = errors.New("cannot delete the signed-in account")
)

// Service manages user accounts.
type Service struct {
	users   UserDirectory
	reg     Registrar
	session SessionReader
}

// New creates an admin service.
func New(users UserDirectory, reg Registrar, session SessionReader) *Service {
	return &Service{users: users, reg: reg, session: session}
}

// List returns all accounts.
func (s *Service) List(ctx context.Context) ([]domain.User, error) {
	if _, err := s.requireAdmin(); err != nil {
		return nil, err
	}
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Create registers a new account with the given role.
func (s *Service) Create(ctx context.Context, reg domain.Registration) (domain.Tokens, error) {
	if _, err := s.requireAdmin(); err != nil {
		return domain.Tokens{}, err
	}
	role, err := normalizeRole(reg.Role)
	if err != nil {
		return domain.Tokens{}, err
	}
	reg.Role = role
	if strings.TrimSpace(reg.Email) == "" || reg.Password == "" {
		return domain.Tokens{}, errors.New("email and password are required")
	}
	tokens, err := s.reg.Register(ctx, reg)
	if err != nil {
		return domain.Tokens{}, fmt.Errorf("create user: %w", err)
	}
	return tokens, nil
}

// Update changes the name and/or role of an account.
func (s *Service) Update(ctx context.Context, id int, upd domain.UserUpdate) (domain.User, error) {
	if _, err := s.requireAdmin(); err != nil {
		return domain.User{}, err
	}
	if upd.Role != nil {
		role, err := normalizeRole(*upd.Role)
		if err != nil {
			return domain.User{}, err
		}
		upd.Role = &role
	}
	if upd.FullName == nil && upd.Role == nil {
		return domain.User{}, errors.New("nothing to update")
	}
	u, err := s.users.UpdateUser(ctx, id, upd)
	if err != nil {
		return domain.User{}, fmt.Errorf("update user %d: %w", id, err)
	}
	return u, nil
}

// Delete removes an account other than the caller's own.
func (s *Service) Delete(ctx context.Context, id int) error {
	me, err := s.requireAdmin()
	if err != nil {
		return err
	}
	if me.ID == id {
		return ErrSelfDelete
	}
	if err := s.users.DeleteUser(ctx, id); err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	return nil
}

func (s *Service) requireAdmin() (domain.User, error) {
	d := s.session.Get()
	if !d.IsAuthenticated || d.User == nil {
		return domain.User{}, domain.ErrNotAuthenticated
	}
	if !d.User.IsAdmin() {
		return domain.User{}, ErrForbidden
	}
	return *d.User, nil
}

// normalizeRole upper-cases role; empty means USER.
func normalizeRole(role string) (string, error) {
	switch r := strings.ToUpper(strings.TrimSpace(role)); r {
	case "":
		return domain.RoleUser, nil
	case domain.RoleUser, domain.RoleAdmin:
		return r, nil
	default:
		return "", fmt.Errorf("%q: %w", role, ErrInvalidRole)
	}
}
