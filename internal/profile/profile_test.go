package profile

import (
	"context"
	"errors"
	"testing"

	"github.com/911interpreters/portal/internal/api"
	"github.com/rs/zerolog"
)

type fakeBackend struct {
	account *api.VideoAccount
	updates []api.VideoAccountUpdate
}

func (f *fakeBackend) GetVideoAccount(ctx context.Context) (*api.VideoAccount, error) {
	return f.account, nil
}

func (f *fakeBackend) UpdateVideoAccount(ctx context.Context, update api.VideoAccountUpdate) error {
	f.updates = append(f.updates, update)
	return nil
}

func (f *fakeBackend) GetProfile(ctx context.Context) (*api.Profile, error) { return nil, nil }
func (f *fakeBackend) UpdateProfile(ctx context.Context, p api.Profile) error {
	return nil
}

func TestLoadAccount_ResolvesPhoneAndSharedFlag(t *testing.T) {
	tests := []struct {
		name       string
		account    api.VideoAccount
		wantPhone  string
		wantShared bool
	}{
		{"phone field", api.VideoAccount{Phone: "555-0100", AccountType: "individual"}, "555-0100", false},
		{"phone_number fallback", api.VideoAccount{PhoneNumber: "555-0101"}, "555-0101", false},
		{"phone wins over phone_number", api.VideoAccount{Phone: "555-0100", PhoneNumber: "555-0101"}, "555-0100", false},
		{"shared account", api.VideoAccount{AccountType: "Shared"}, "", true},
		{"shared with whitespace", api.VideoAccount{AccountType: " shared "}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager(&fakeBackend{account: &tt.account}, zerolog.Nop())
			acct, err := m.LoadAccount(context.Background())
			if err != nil {
				t.Fatalf("LoadAccount failed: %v", err)
			}
			if acct.Phone != tt.wantPhone || acct.Shared != tt.wantShared {
				t.Errorf("Account = %+v, want phone %q shared %v", acct, tt.wantPhone, tt.wantShared)
			}
		})
	}
}

func TestUpdateAccount_RejectsSharedAccounts(t *testing.T) {
	backend := &fakeBackend{account: &api.VideoAccount{AccountType: "shared"}}
	m := NewManager(backend, zerolog.Nop())

	err := m.UpdateAccount(context.Background(), api.VideoAccountUpdate{FirstName: "Ana"})
	if !errors.Is(err, ErrSharedAccount) {
		t.Fatalf("UpdateAccount on shared account = %v, want ErrSharedAccount", err)
	}
	if len(backend.updates) != 0 {
		t.Errorf("Update reached the backend for a shared account")
	}
}

func TestUpdateAccount_WritesThrough(t *testing.T) {
	backend := &fakeBackend{account: &api.VideoAccount{AccountType: "individual"}}
	m := NewManager(backend, zerolog.Nop())

	update := api.VideoAccountUpdate{FirstName: "Ana", LastName: "Reyes", PhoneNumber: "555-0102"}
	if err := m.UpdateAccount(context.Background(), update); err != nil {
		t.Fatalf("UpdateAccount failed: %v", err)
	}
	if len(backend.updates) != 1 || backend.updates[0] != update {
		t.Errorf("Backend updates = %+v, want %+v", backend.updates, update)
	}
}
