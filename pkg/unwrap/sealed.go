// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-keyrecover.
//
// go-keyrecover is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package unwrap

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const (
	// MinSealerSecretSize is the shortest accepted sealer secret.
	MinSealerSecretSize = 16

	sealerInfo = "go-keyrecover sealed v1"
)

// Sealer is a portable software primitive. Payloads are sealed with
// XChaCha20-Poly1305 under a key derived by HKDF-SHA256 from a local
// secret, with the entropy as HKDF salt and as additional data. A blob
// unwraps only with the same secret and the same entropy.
//
// Wire form: [24 byte nonce][ciphertext || 16 byte tag].
type Sealer struct {
	secret []byte
}

// NewSealer returns a Sealer bound to secret. The secret is copied.
func NewSealer(secret []byte) (*Sealer, error) {
	if len(secret) < MinSealerSecretSize {
		return nil, fmt.Errorf("sealer secret must be at least %d bytes, got %d", MinSealerSecretSize, len(secret))
	}
	s := make([]byte, len(secret))
	copy(s, secret)
	return &Sealer{secret: s}, nil
}

// NewSealerFromFile reads the sealer secret from path.
func NewSealerFromFile(path string) (*Sealer, error) {
	// #nosec G304 - secret file path is provided by the operator
	secret, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sealer secret: %w", err)
	}
	return NewSealer(secret)
}

func (s *Sealer) aead(entropy []byte) (cipher.AEAD, error) {
	key := make([]byte, chacha20poly1305.KeySize)
	kdf := hkdf.New(sha256.New, s.secret, entropy, []byte(sealerInfo))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, err
	}
	return chacha20poly1305.NewX(key)
}

// Protect seals plaintext under entropy with a random nonce.
func (s *Sealer) Protect(_ context.Context, plaintext, entropy []byte) ([]byte, error) {
	aead, err := s.aead(entropy)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProtectFailed, err)
	}

	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("%w: failed to generate nonce: %w", ErrProtectFailed, err)
	}
	return aead.Seal(nonce, nonce, plaintext, entropy), nil
}

// Unwrap opens a blob produced by Protect.
func (s *Sealer) Unwrap(_ context.Context, ciphertext, entropy []byte) ([]byte, error) {
	aead, err := s.aead(entropy)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnwrapFailed, err)
	}

	if len(ciphertext) < aead.NonceSize()+aead.Overhead() {
		return nil, fmt.Errorf("%w: sealed blob too short (%d bytes)", ErrUnwrapFailed, len(ciphertext))
	}

	nonce, sealed := ciphertext[:aead.NonceSize()], ciphertext[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, sealed, entropy)
	if err != nil {
		return nil, fmt.Errorf("%w: authentication failed", ErrUnwrapFailed)
	}
	return plaintext, nil
}
