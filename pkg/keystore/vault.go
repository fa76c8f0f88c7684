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

package keystore

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"path"

	vault "github.com/hashicorp/vault/api"
)

const (
	// DefaultVaultMount is the KV v2 mount used when none is configured.
	DefaultVaultMount = "secret"

	// DefaultVaultField is the secret field holding the base64 record.
	DefaultVaultField = "record"
)

// VaultKV is the subset of the Vault KV v2 API used by the Vault store.
// *vault.KVv2 satisfies it.
type VaultKV interface {
	Get(ctx context.Context, secretPath string) (*vault.KVSecret, error)
	Put(ctx context.Context, secretPath string, data map[string]interface{}, opts ...vault.KVOption) (*vault.KVSecret, error)
}

// VaultConfig configures the Vault store.
type VaultConfig struct {
	Address   string
	Token     string
	Namespace string

	// Mount is the KV v2 mount path.
	Mount string

	// Path is prepended to every logical name.
	Path string

	// Field is the secret field holding the base64 encoded record.
	Field string
}

// Vault stores records as base64 fields of HashiCorp Vault KV v2 secrets.
type Vault struct {
	kv     VaultKV
	prefix string
	field  string
}

// NewVault connects to Vault using config.
func NewVault(config *VaultConfig) (*Vault, error) {
	if config == nil {
		return nil, fmt.Errorf("vault keystore: config is required")
	}

	clientConfig := vault.DefaultConfig()
	if config.Address != "" {
		clientConfig.Address = config.Address
	}

	client, err := vault.NewClient(clientConfig)
	if err != nil {
		return nil, fmt.Errorf("vault keystore: failed to create client: %w", err)
	}
	if config.Token != "" {
		client.SetToken(config.Token)
	}
	if config.Namespace != "" {
		client.SetNamespace(config.Namespace)
	}

	mount := config.Mount
	if mount == "" {
		mount = DefaultVaultMount
	}
	return NewVaultWithKV(client.KVv2(mount), config.Path, config.Field), nil
}

// NewVaultWithKV builds a Vault store around an existing KV client.
func NewVaultWithKV(kv VaultKV, prefix, field string) *Vault {
	if field == "" {
		field = DefaultVaultField
	}
	return &Vault{kv: kv, prefix: prefix, field: field}
}

func (v *Vault) secretPath(name string) (string, error) {
	if name == "" {
		return "", ErrInvalidName
	}
	return path.Join(v.prefix, name), nil
}

// Get reads and decodes the record stored under name.
func (v *Vault) Get(ctx context.Context, name string) ([]byte, error) {
	secretPath, err := v.secretPath(name)
	if err != nil {
		return nil, err
	}

	secret, err := v.kv.Get(ctx, secretPath)
	if err != nil {
		return nil, translateVaultError(name, err)
	}
	if secret == nil || secret.Data == nil {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, name)
	}

	raw, ok := secret.Data[v.field]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no field %q", ErrKeyNotFound, name, v.field)
	}
	encoded, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("vault keystore: field %q of %s is not a string", v.field, name)
	}

	record, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("vault keystore: field %q of %s is not base64: %w", v.field, name, err)
	}
	return record, nil
}

// Put stores value base64 encoded under name.
func (v *Vault) Put(ctx context.Context, name string, value []byte) error {
	secretPath, err := v.secretPath(name)
	if err != nil {
		return err
	}

	data := map[string]interface{}{
		v.field: base64.StdEncoding.EncodeToString(value),
	}
	if _, err := v.kv.Put(ctx, secretPath, data); err != nil {
		return translateVaultError(name, err)
	}
	return nil
}

func translateVaultError(name string, err error) error {
	if errors.Is(err, vault.ErrSecretNotFound) {
		return fmt.Errorf("%w: %s", ErrKeyNotFound, name)
	}

	var respErr *vault.ResponseError
	if errors.As(err, &respErr) {
		switch respErr.StatusCode {
		case http.StatusForbidden, http.StatusUnauthorized:
			return fmt.Errorf("%w: %s", ErrAccessDenied, name)
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s", ErrKeyNotFound, name)
		}
	}
	return fmt.Errorf("vault keystore: %s: %w", name, err)
}
