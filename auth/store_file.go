// harmonic - Go client core for a third-party music-service HTTP API
// Copyright 2026 The Harmonic Authors
// SPDX-License-Identifier: MIT
// https://github.com/resonantlabs/harmonic

package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"golang.org/x/crypto/hkdf"

	"github.com/resonantlabs/harmonic/herrors"
)

// FileTokenStore is the restricted-permission, AES-256-GCM-sealed
// TokenStore used on platforms without an OS keychain binding: a
// portable stand-in for "secure OS keystore where available" that every
// target of this module gets without cgo. Writes are atomic via
// temp-file-then-rename; the file is created 0600.
type FileTokenStore struct {
	path string
	key  [32]byte
}

// NewFileTokenStore returns a FileTokenStore that seals tokens at path
// using key as root key material. Callers typically derive key once per
// installation and store it outside this package's reach (OS keychain,
// a secrets manager, or an environment variable set by the host process).
func NewFileTokenStore(path string, key [32]byte) *FileTokenStore {
	return &FileTokenStore{path: path, key: key}
}

// Load implements TokenStore. A missing file is not an error: it means no
// token has ever been saved.
func (f *FileTokenStore) Load() (*Token, error) {
	ciphertext, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, &herrors.TokenStorageError{Cause: err}
	}

	plaintext, err := f.decrypt(ciphertext)
	if err != nil {
		return nil, &herrors.TokenStorageError{Cause: err}
	}

	var tok Token
	if err := json.Unmarshal(plaintext, &tok); err != nil {
		return nil, &herrors.TokenStorageError{Cause: err}
	}
	return &tok, nil
}

// Save implements TokenStore, writing atomically via temp-file + fsync +
// rename.
func (f *FileTokenStore) Save(t Token) error {
	plaintext, err := json.Marshal(t)
	if err != nil {
		return &herrors.TokenStorageError{Cause: err}
	}

	ciphertext, err := f.encrypt(plaintext)
	if err != nil {
		return &herrors.TokenStorageError{Cause: err}
	}

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, ".harmonic-token-*")
	if err != nil {
		return &herrors.TokenStorageError{Cause: err}
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once the rename below succeeds

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return &herrors.TokenStorageError{Cause: err}
	}
	if _, err := tmp.Write(ciphertext); err != nil {
		tmp.Close()
		return &herrors.TokenStorageError{Cause: err}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return &herrors.TokenStorageError{Cause: err}
	}
	if err := tmp.Close(); err != nil {
		return &herrors.TokenStorageError{Cause: err}
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		return &herrors.TokenStorageError{Cause: err}
	}
	return nil
}

// Clear implements TokenStore.
func (f *FileTokenStore) Clear() error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return &herrors.TokenStorageError{Cause: err}
	}
	return nil
}

// derivedKey expands the root key into a file-encryption-specific AES key
// via HKDF, so the same root key material can be reused for other purposes
// (e.g. a future at-rest cache) without key reuse across contexts.
func (f *FileTokenStore) derivedKey() ([]byte, error) {
	derived := make([]byte, 32)
	kdf := hkdf.New(sha256.New, f.key[:], nil, []byte("harmonic-token-store-v1"))
	if _, err := io.ReadFull(kdf, derived); err != nil {
		return nil, err
	}
	return derived, nil
}

func (f *FileTokenStore) encrypt(plaintext []byte) ([]byte, error) {
	key, err := f.derivedKey()
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func (f *FileTokenStore) decrypt(ciphertext []byte) ([]byte, error) {
	key, err := f.derivedKey()
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, fmt.Errorf("auth: ciphertext too short")
	}
	nonce, sealed := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, sealed, nil)
}
