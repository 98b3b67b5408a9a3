package session

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no session is stored.
var ErrNotFound = errors.New("session: not found")

// Role identifies the kind of authenticated user.
type Role string

const (
	RoleCustomer    Role = "customer"
	RoleInterpreter Role = "interpreter"
)

// Session holds the current authenticated identity and bearer token.
// Lifetime is the current sign-in: created on login, destroyed on logout.
type Session struct {
	Token       string `json:"token"`
	DisplayName string `json:"customer_name"`
	Role        Role   `json:"user_type"`
}

// Store persists the session between operations. Backends are
// session-scoped: Clear must remove all trace of the sign-in.
type Store interface {
	Get(ctx context.Context) (*Session, error)
	Put(ctx context.Context, s Session) error
	Clear(ctx context.Context) error
	Close() error
}
