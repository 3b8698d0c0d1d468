package auth

import (
	"path/filepath"
	"testing"
	"time"
)

func TestFileTokenStoreLoadMissingFileReturnsNil(t *testing.T) {
	store := NewFileTokenStore(filepath.Join(t.TempDir(), "missing.token"), [32]byte{1})
	tok, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tok != nil {
		t.Fatalf("expected nil token, got %+v", tok)
	}
}

func TestFileTokenStoreSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.bin")
	store := NewFileTokenStore(path, [32]byte{1, 2, 3})

	want := Token{AccessToken: "a", RefreshToken: "r", ExpiresAt: time.Now().Add(time.Hour).Truncate(time.Second), Scope: "s", TokenType: "Bearer"}
	if err := store.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got == nil || got.AccessToken != want.AccessToken || !got.ExpiresAt.Equal(want.ExpiresAt) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestFileTokenStoreWrongKeyFailsToDecrypt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.bin")
	writer := NewFileTokenStore(path, [32]byte{9})
	if err := writer.Save(Token{AccessToken: "a"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reader := NewFileTokenStore(path, [32]byte{1})
	if _, err := reader.Load(); err == nil {
		t.Fatalf("expected decryption failure with the wrong key")
	}
}

func TestFileTokenStoreClearIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.bin")
	store := NewFileTokenStore(path, [32]byte{1})
	_ = store.Save(Token{AccessToken: "a"})

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("second Clear should be a no-op, got %v", err)
	}
}
