// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/pbkdf2"

	"github.com/jeranaias/ploymind-tui/internal/config"
	"github.com/jeranaias/ploymind-tui/internal/util"
)

// KeyEnvVar names the passphrase used to encrypt the stored launch context
// at rest. When unset, the file is stored plaintext with 0600 permissions.
const KeyEnvVar = "PLOYMIND_AUTH_KEY"

const (
	encPrefix    = "enc:v1:"
	saltLen      = 16
	pbkdf2Iters  = 210000
	pbkdf2KeyLen = 32
)

// ErrNoInitData is returned when no launch context is available anywhere.
var ErrNoInitData = errors.New("no launch context stored (run 'ploymind auth set')")

// ErrKeyRequired is returned when the stored file is encrypted but the
// passphrase env var is not set.
var ErrKeyRequired = fmt.Errorf("stored launch context is encrypted; set %s", KeyEnvVar)

// FilePath returns where the launch context is stored for the given config.
func FilePath(cfg *config.Config) (string, error) {
	if cfg != nil && cfg.Auth.InitDataFile != "" {
		return cfg.Auth.InitDataFile, nil
	}
	dir, err := config.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "initdata"), nil
}

// Save persists the launch context to path. With the passphrase env var
// set, the payload is sealed with AES-256-GCM under a PBKDF2-derived key.
func Save(path, initData string) error {
	payload := []byte(initData)

	if pass := os.Getenv(KeyEnvVar); pass != "" {
		sealed, err := seal(payload, pass)
		if err != nil {
			return err
		}
		payload = sealed
	}

	return util.AtomicWriteFile(path, payload, 0600)
}

// Load reads the launch context back from path, decrypting if needed.
func Load(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoInitData
		}
		return "", fmt.Errorf("failed to read launch context: %w", err)
	}

	text := strings.TrimSpace(string(data))
	if !strings.HasPrefix(text, encPrefix) {
		return text, nil
	}

	pass := os.Getenv(KeyEnvVar)
	if pass == "" {
		return "", ErrKeyRequired
	}
	plain, err := open(text, pass)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

// Clear removes the stored launch context.
func Clear(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove launch context: %w", err)
	}
	return nil
}

// Resolve returns the launch context for the given config, in precedence
// order: inline config value, stored file, then the dev-mode mock. Returns
// ErrNoInitData when nothing applies in production mode.
func Resolve(cfg *config.Config) (string, error) {
	if cfg.Auth.InitData != "" {
		return cfg.Auth.InitData, nil
	}

	path, err := FilePath(cfg)
	if err == nil {
		if data, loadErr := Load(path); loadErr == nil {
			return data, nil
		} else if errors.Is(loadErr, ErrKeyRequired) {
			return "", loadErr
		}
	}

	if cfg.Backend.DevMode {
		return MockInitData(), nil
	}
	return "", ErrNoInitData
}

// =============================================================================
// SEALING
// =============================================================================

func seal(plain []byte, pass string) ([]byte, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	gcm, err := newGCM(pass, salt)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	blob := append(append(salt, nonce...), gcm.Seal(nil, nonce, plain, nil)...)
	return []byte(encPrefix + base64.StdEncoding.EncodeToString(blob)), nil
}

func open(sealed, pass string) ([]byte, error) {
	blob, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(sealed, encPrefix))
	if err != nil {
		return nil, fmt.Errorf("corrupt launch context file: %w", err)
	}
	if len(blob) < saltLen {
		return nil, errors.New("corrupt launch context file: too short")
	}

	salt := blob[:saltLen]
	gcm, err := newGCM(pass, salt)
	if err != nil {
		return nil, err
	}
	if len(blob) < saltLen+gcm.NonceSize() {
		return nil, errors.New("corrupt launch context file: too short")
	}

	nonce := blob[saltLen : saltLen+gcm.NonceSize()]
	plain, err := gcm.Open(nil, nonce, blob[saltLen+gcm.NonceSize():], nil)
	if err != nil {
		return nil, errors.New("failed to decrypt launch context (wrong key?)")
	}
	return plain, nil
}

func newGCM(pass string, salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key([]byte(pass), salt, pbkdf2Iters, pbkdf2KeyLen, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to init cipher: %w", err)
	}
	return cipher.NewGCM(block)
}
