// Package auth manages the sign-in lifecycle: login, logout, role checks,
// password flows, and software-token MFA enrollment.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/911interpreters/portal/internal/api"
	"github.com/911interpreters/portal/internal/session"
	"github.com/pquerna/otp/totp"
	"github.com/rs/zerolog"
)

// Issuer is the TOTP issuer shown in authenticator apps.
const Issuer = "911Interpreters"

// ErrMFARequired is returned by Login when the backend answers with a
// software-token challenge instead of a token.
type ErrMFARequired struct {
	// Session is the challenge session to pass to SetupMFA / the OTP step.
	Session string
}

func (e *ErrMFARequired) Error() string {
	return "auth: multi-factor challenge required"
}

// Manager owns the session lifecycle. It is the explicit replacement for
// ambient token globals: everything that needs the identity takes the
// manager (or its store) as a dependency.
type Manager struct {
	api      *api.Client
	sessions session.Store
	logger   zerolog.Logger
}

// NewManager creates a session manager.
func NewManager(client *api.Client, sessions session.Store, logger zerolog.Logger) *Manager {
	return &Manager{
		api:      client,
		sessions: sessions,
		logger:   logger.With().Str("component", "auth").Logger(),
	}
}

// Login authenticates and persists the resulting session. A rejected login
// leaves any existing session untouched.
func (m *Manager) Login(ctx context.Context, username, password string) (*session.Session, error) {
	resp, err := m.api.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}

	if resp.ChallengeName == "SOFTWARE_TOKEN_MFA" {
		return nil, &ErrMFARequired{Session: resp.Session}
	}

	if resp.Token == "" {
		return nil, fmt.Errorf("auth: login response carried no token")
	}

	role := session.Role(resp.UserType)
	if role == "" {
		role = session.RoleCustomer
	}

	sess := session.Session{
		Token:       resp.Token,
		DisplayName: resp.CustomerName,
		Role:        role,
	}
	if err := m.sessions.Put(ctx, sess); err != nil {
		return nil, fmt.Errorf("auth: failed to persist session: %w", err)
	}

	m.logger.Info().Str("display_name", sess.DisplayName).Str("role", string(sess.Role)).Msg("Signed in")
	return &sess, nil
}

// Logout clears the persisted session.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.sessions.Clear(ctx); err != nil {
		return fmt.Errorf("auth: failed to clear session: %w", err)
	}
	m.logger.Info().Msg("Signed out")
	return nil
}

// Current returns the active session, or session.ErrNotFound when signed out.
func (m *Manager) Current(ctx context.Context) (*session.Session, error) {
	return m.sessions.Get(ctx)
}

// HasRole reports whether the signed-in user holds one of the allowed
// roles. An empty allowed set admits any authenticated user; an unsigned
// caller is never admitted.
func (m *Manager) HasRole(ctx context.Context, allowed ...session.Role) bool {
	sess, err := m.sessions.Get(ctx)
	if err != nil {
		return false
	}
	if len(allowed) == 0 {
		return true
	}
	for _, role := range allowed {
		if sess.Role == role {
			return true
		}
	}
	return false
}

// MFAEnrollment is the result of starting software-token enrollment.
type MFAEnrollment struct {
	SecretCode      string
	Session         string
	Email           string
	ProvisioningURI string
}

// SetupMFA starts software-token enrollment for a challenge session and
// builds the otpauth provisioning URI for authenticator apps.
func (m *Manager) SetupMFA(ctx context.Context, authSession string) (*MFAEnrollment, error) {
	resp, err := m.api.SetupMFA(ctx, authSession)
	if err != nil {
		return nil, err
	}

	return &MFAEnrollment{
		SecretCode:      resp.SecretCode,
		Session:         resp.Session,
		Email:           resp.Email,
		ProvisioningURI: provisioningURI(resp.Email, resp.SecretCode),
	}, nil
}

// VerifyCode checks a user-entered TOTP code against the enrollment secret
// before it is submitted, so obvious typos fail fast and locally.
func VerifyCode(secret, code string) bool {
	return totp.Validate(code, secret)
}

// CurrentCode derives the TOTP code for the secret at the current time.
func CurrentCode(secret string) (string, error) {
	code, err := totp.GenerateCode(secret, time.Now())
	if err != nil {
		return "", fmt.Errorf("auth: failed to derive TOTP code: %w", err)
	}
	return code, nil
}

func provisioningURI(account, secret string) string {
	label := Issuer
	if account != "" {
		label = Issuer + ":" + account
	}
	q := url.Values{}
	q.Set("secret", secret)
	q.Set("issuer", Issuer)
	return (&url.URL{
		Scheme:   "otpauth",
		Host:     "totp",
		Path:     "/" + label,
		RawQuery: q.Encode(),
	}).String()
}

// ForgotPassword requests a reset OTP for the account.
func (m *Manager) ForgotPassword(ctx context.Context, username string) error {
	return m.api.ForgotPassword(ctx, username)
}

// ResetPassword completes the forgot-password flow.
func (m *Manager) ResetPassword(ctx context.Context, username, otp, newPassword, confirmPassword string) error {
	if newPassword != confirmPassword {
		return &api.Error{Kind: api.KindValidation, Message: "passwords do not match"}
	}
	return m.api.ResetPassword(ctx, username, otp, newPassword, confirmPassword)
}

// ChangePassword changes the signed-in user's password and stores the
// replacement token the backend issues.
func (m *Manager) ChangePassword(ctx context.Context, oldPassword, newPassword, confirmPassword string) error {
	if newPassword != confirmPassword {
		return &api.Error{Kind: api.KindValidation, Message: "passwords do not match"}
	}

	resp, err := m.api.ChangePassword(ctx, oldPassword, newPassword, confirmPassword)
	if err != nil {
		return err
	}

	if resp.Token == "" {
		return nil
	}
	sess, err := m.sessions.Get(ctx)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil
		}
		return err
	}
	sess.Token = resp.Token
	if err := m.sessions.Put(ctx, *sess); err != nil {
		return fmt.Errorf("auth: failed to store rotated token: %w", err)
	}
	return nil
}
