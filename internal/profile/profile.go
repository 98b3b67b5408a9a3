// Package profile manages the customer's account details: the video account
// record backing the call flow and the generic portal profile.
package profile

import (
	"context"
	"errors"
	"strings"

	"github.com/911interpreters/portal/internal/api"
	"github.com/rs/zerolog"
)

// ErrSharedAccount is returned when an update is attempted on a shared
// account. Shared accounts are provisioned centrally; their details are
// read-only through the portal.
var ErrSharedAccount = errors.New("profile: shared accounts cannot be edited")

// Backend is the slice of the API client the manager uses.
type Backend interface {
	GetVideoAccount(ctx context.Context) (*api.VideoAccount, error)
	UpdateVideoAccount(ctx context.Context, update api.VideoAccountUpdate) error
	GetProfile(ctx context.Context) (*api.Profile, error)
	UpdateProfile(ctx context.Context, p api.Profile) error
}

// Account is the video account resolved for display.
type Account struct {
	Email     string
	FirstName string
	LastName  string
	Phone     string
	Shared    bool
}

// Manager loads and updates account records.
type Manager struct {
	backend Backend
	logger  zerolog.Logger
}

// NewManager creates a profile manager.
func NewManager(backend Backend, logger zerolog.Logger) *Manager {
	return &Manager{
		backend: backend,
		logger:  logger.With().Str("component", "profile").Logger(),
	}
}

// LoadAccount fetches the customer's video account.
func (m *Manager) LoadAccount(ctx context.Context) (*Account, error) {
	acct, err := m.backend.GetVideoAccount(ctx)
	if err != nil {
		return nil, err
	}
	return &Account{
		Email:     acct.Email,
		FirstName: acct.FirstName,
		LastName:  acct.LastName,
		Phone:     acct.ContactPhone(),
		Shared:    isShared(acct.AccountType),
	}, nil
}

// UpdateAccount writes new contact details to the video account. The
// account is re-read first so the shared-account rule is enforced against
// current state, not a stale view.
func (m *Manager) UpdateAccount(ctx context.Context, update api.VideoAccountUpdate) error {
	acct, err := m.backend.GetVideoAccount(ctx)
	if err != nil {
		return err
	}
	if isShared(acct.AccountType) {
		return ErrSharedAccount
	}

	if err := m.backend.UpdateVideoAccount(ctx, update); err != nil {
		return err
	}
	m.logger.Info().Str("first_name", update.FirstName).Msg("Video account updated")
	return nil
}

// LoadProfile fetches the generic portal profile.
func (m *Manager) LoadProfile(ctx context.Context) (*api.Profile, error) {
	return m.backend.GetProfile(ctx)
}

// UpdateProfile writes the generic portal profile.
func (m *Manager) UpdateProfile(ctx context.Context, p api.Profile) error {
	if err := m.backend.UpdateProfile(ctx, p); err != nil {
		return err
	}
	m.logger.Info().Msg("Profile updated")
	return nil
}

func isShared(accountType string) bool {
	return strings.EqualFold(strings.TrimSpace(accountType), "shared")
}
