package auth

import (
	"sync"
	"testing"
	"time"
)

func TestMemoryTokenStoreSaveLoad(t *testing.T) {
	store := NewMemoryTokenStore()

	if tok, err := store.Load(); err != nil || tok != nil {
		t.Fatalf("expected empty store to load nil, got %v err=%v", tok, err)
	}

	want := Token{AccessToken: "a", RefreshToken: "r", ExpiresAt: time.Now().Add(time.Hour)}
	if err := store.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got == nil || got.AccessToken != want.AccessToken {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestMemoryTokenStoreClear(t *testing.T) {
	store := NewMemoryTokenStore()
	_ = store.Save(Token{AccessToken: "a"})
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if tok, _ := store.Load(); tok != nil {
		t.Fatalf("expected nil token after Clear, got %+v", tok)
	}
}

func TestMemoryTokenStoreLoadReturnsCopy(t *testing.T) {
	store := NewMemoryTokenStore()
	_ = store.Save(Token{AccessToken: "a"})

	got, _ := store.Load()
	got.AccessToken = "mutated"

	again, _ := store.Load()
	if again.AccessToken != "a" {
		t.Fatalf("expected internal token to be unaffected by caller mutation, got %q", again.AccessToken)
	}
}

func TestMemoryTokenStoreConcurrentAccess(t *testing.T) {
	store := NewMemoryTokenStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = store.Save(Token{AccessToken: "a"})
		}()
		go func() {
			defer wg.Done()
			_, _ = store.Load()
		}()
	}
	wg.Wait()
}
