package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	ctx := context.Background()

	if _, err := store.Get(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound on empty store, got %v", err)
	}

	sess := Session{Token: "tok-123", DisplayName: "Mercy Clinic", Role: RoleCustomer}
	if err := store.Put(ctx, sess); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := store.Get(ctx)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Token != "tok-123" || got.DisplayName != "Mercy Clinic" {
		t.Errorf("Got %+v, want stored session", got)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, err := store.Get(ctx); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after Clear, got %v", err)
	}
}

func TestFileStore_CorruptFileTreatedAsSignedOut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("Failed to write corrupt file: %v", err)
	}

	if _, err := store.Get(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for corrupt file, got %v", err)
	}
}

func TestMemoryStore_RoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if _, err := store.Get(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound on empty store, got %v", err)
	}

	if err := store.Put(ctx, Session{Token: "t", Role: RoleInterpreter}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := store.Get(ctx)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Role != RoleInterpreter {
		t.Errorf("Expected interpreter role, got %s", got.Role)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, err := store.Get(ctx); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after Clear, got %v", err)
	}
}
