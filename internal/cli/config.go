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

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jeremyhahn/go-keyrecover/internal/config"
	"github.com/jeremyhahn/go-keyrecover/pkg/keystore"
	"github.com/jeremyhahn/go-keyrecover/pkg/logging"
	"github.com/jeremyhahn/go-keyrecover/pkg/record"
	"github.com/jeremyhahn/go-keyrecover/pkg/recovery"
	"github.com/jeremyhahn/go-keyrecover/pkg/types"
	"github.com/jeremyhahn/go-keyrecover/pkg/unwrap"
	"github.com/jeremyhahn/go-keyrecover/pkg/versions"
)

// Config holds global CLI configuration. Flag values override the
// configuration file when set.
type Config struct {
	// ConfigFile is the path to the configuration file
	ConfigFile string

	// Keystore is the keystore type (memory, file, pebble, vault, registry)
	Keystore string

	// KeystorePath is the file or pebble keystore directory, or the
	// registry key path
	KeystorePath string

	// Unwrap is the unwrap primitive (none, sealed, awskms, dpapi)
	Unwrap string

	// SecretFile is the local secret of the sealed primitive
	SecretFile string

	// Layout is the record header layout (packed, aligned)
	Layout string

	// Digest is the record HMAC hash (md5, sha1, sha256, sha384, sha512)
	Digest string

	// TrimTerminator strips one trailing NUL byte from raw records
	TrimTerminator bool

	// MetricsTextfile is written with Prometheus metrics after each run
	MetricsTextfile string

	// OutputFormat controls output formatting (json, text)
	OutputFormat string

	// Verbose enables debug logging
	Verbose bool
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		OutputFormat: "text",
		Verbose:      false,
	}
}

// Resolve loads the configuration file, or the defaults when none is set,
// and applies the flag overrides.
func (c *Config) Resolve() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(c.ConfigFile)
	if err != nil {
		return nil, err
	}

	if c.Keystore != "" {
		cfg.Keystore.Type = c.Keystore
	}
	if c.KeystorePath != "" {
		cfg.Keystore.Path = c.KeystorePath
	}
	if c.TrimTerminator {
		cfg.Keystore.TrimTerminator = true
	}
	if c.Unwrap != "" {
		cfg.Unwrap.Type = c.Unwrap
	}
	if c.SecretFile != "" {
		cfg.Unwrap.SecretFile = c.SecretFile
	}
	if c.Layout != "" {
		cfg.Record.Layout = c.Layout
	}
	if c.Digest != "" {
		cfg.Record.Digest = c.Digest
	}
	if c.MetricsTextfile != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Textfile = c.MetricsTextfile
	}
	if c.Verbose {
		cfg.Logging.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// CreateLogger creates the logger described by cfg. Logs go to stderr so
// stdout only carries command output.
func (c *Config) CreateLogger(cfg *config.Config) (*logging.Logger, error) {
	return logging.New(os.Stderr, cfg.Logging.Level, strings.ToLower(cfg.Logging.Format))
}

// CreateKeystore creates the keystore selected by cfg
func (c *Config) CreateKeystore(cfg *config.Config) (keystore.Lookup, error) {
	switch cfg.Keystore.Type {
	case config.KeystoreMemory:
		return keystore.NewMemory(), nil
	case config.KeystoreFile:
		return keystore.NewFile(cfg.Keystore.Path)
	case config.KeystorePebble:
		return keystore.NewPebble(cfg.Keystore.Path)
	case config.KeystoreVault:
		v := cfg.Keystore.Vault
		return keystore.NewVault(&keystore.VaultConfig{
			Address:   v.Address,
			Token:     v.Token,
			Namespace: v.Namespace,
			Mount:     v.Mount,
			Path:      v.Path,
			Field:     v.Field,
		})
	case config.KeystoreRegistry:
		return keystore.NewRegistry(cfg.Keystore.Path)
	default:
		return nil, fmt.Errorf("unknown keystore: %s", cfg.Keystore.Type)
	}
}

// CreatePrimitive creates the unwrap primitive selected by cfg
func (c *Config) CreatePrimitive(ctx context.Context, cfg *config.Config) (unwrap.Primitive, error) {
	switch cfg.Unwrap.Type {
	case config.UnwrapNone:
		return unwrap.Identity{}, nil
	case config.UnwrapSealed:
		return unwrap.NewSealerFromFile(cfg.Unwrap.SecretFile)
	case config.UnwrapAWSKMS:
		k := cfg.Unwrap.AWSKMS
		return unwrap.NewKMS(ctx, &unwrap.KMSConfig{
			KeyID:           k.KeyID,
			Region:          k.Region,
			AccessKeyID:     k.AccessKey,
			SecretAccessKey: k.SecretKey,
			Endpoint:        k.Endpoint,
		})
	case config.UnwrapDPAPI:
		return unwrap.NewDPAPI()
	default:
		return nil, fmt.Errorf("unknown unwrap primitive: %s", cfg.Unwrap.Type)
	}
}

// CreateTable creates the version table using the configured digest
func (c *Config) CreateTable(cfg *config.Config) (*versions.Table, error) {
	digest := versions.DefaultDigest
	if cfg.Record.Digest != "" {
		var err error
		digest, err = types.ParseHashName(cfg.Record.Digest)
		if err != nil {
			return nil, err
		}
	}
	return versions.DefaultTable(digest)
}

// Environment bundles everything a command needs to work with records
type Environment struct {
	Config    *config.Config
	Logger    *logging.Logger
	Keystore  keystore.Lookup
	Primitive unwrap.Primitive
	Table     *versions.Table
	Layout    record.Layout
}

// CreateEnvironment resolves the configuration and builds every
// collaborator from it
func (c *Config) CreateEnvironment(ctx context.Context) (*Environment, error) {
	cfg, err := c.Resolve()
	if err != nil {
		return nil, err
	}

	logger, err := c.CreateLogger(cfg)
	if err != nil {
		return nil, err
	}

	layout, err := record.ParseLayout(cfg.Record.Layout)
	if err != nil {
		return nil, err
	}

	table, err := c.CreateTable(cfg)
	if err != nil {
		return nil, err
	}

	ks, err := c.CreateKeystore(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create keystore: %w", err)
	}

	primitive, err := c.CreatePrimitive(ctx, cfg)
	if err != nil {
		if closer, ok := ks.(io.Closer); ok {
			_ = closer.Close()
		}
		return nil, fmt.Errorf("failed to create unwrap primitive: %w", err)
	}

	return &Environment{
		Config:    cfg,
		Logger:    logger,
		Keystore:  ks,
		Primitive: primitive,
		Table:     table,
		Layout:    layout,
	}, nil
}

// Close releases the keystore when it holds resources
func (e *Environment) Close() error {
	if closer, ok := e.Keystore.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Pipeline builds the recovery pipeline for the environment
func (e *Environment) Pipeline() (*recovery.Pipeline, error) {
	return recovery.New(&recovery.Config{
		Keystore:       e.Keystore,
		Unwrapper:      e.Primitive,
		Table:          e.Table,
		Layout:         e.Layout,
		TrimTerminator: e.Config.Keystore.TrimTerminator,
		KeystoreLabel:  e.Config.Keystore.Type,
		Logger:         e.Logger,
	})
}

// Name returns the logical record name, preferring override
func (e *Environment) Name(override string) string {
	if override != "" {
		return override
	}
	if e.Config.Keystore.Name != "" {
		return e.Config.Keystore.Name
	}
	return keystore.DefaultName
}
