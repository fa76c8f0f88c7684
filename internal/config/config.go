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

package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/jeremyhahn/go-keyrecover/pkg/record"
	"github.com/jeremyhahn/go-keyrecover/pkg/types"
	"gopkg.in/yaml.v3"
)

// Keystore types
const (
	KeystoreMemory   = "memory"
	KeystoreFile     = "file"
	KeystoreVault    = "vault"
	KeystoreRegistry = "registry"
	KeystorePebble   = "pebble"
)

// Unwrap primitive types
const (
	UnwrapNone   = "none"
	UnwrapSealed = "sealed"
	UnwrapAWSKMS = "awskms"
	UnwrapDPAPI  = "dpapi"
)

// Config represents the complete keyrecover configuration
type Config struct {
	Logging  LoggingConfig  `yaml:"logging" toml:"logging"`
	Keystore KeystoreConfig `yaml:"keystore" toml:"keystore"`
	Unwrap   UnwrapConfig   `yaml:"unwrap" toml:"unwrap"`
	Record   RecordConfig   `yaml:"record" toml:"record"`
	Metrics  MetricsConfig  `yaml:"metrics" toml:"metrics"`
}

// LoggingConfig controls logging behavior
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// KeystoreConfig selects where raw records are read from
type KeystoreConfig struct {
	Type string `yaml:"type" toml:"type"` // memory, file, pebble, vault, registry

	// Name is the logical record name, "Client" when empty
	Name string `yaml:"name" toml:"name"`

	// Path is the directory of the file or pebble keystore, or the
	// registry key path
	Path string `yaml:"path" toml:"path"`

	// TrimTerminator strips one trailing NUL byte from every record
	TrimTerminator bool `yaml:"trim_terminator" toml:"trim_terminator"`

	Vault *VaultConfig `yaml:"vault,omitempty" toml:"vault,omitempty"`
}

// VaultConfig contains HashiCorp Vault keystore settings
type VaultConfig struct {
	Address   string `yaml:"address" toml:"address"`
	Token     string `yaml:"token" toml:"token"`
	Namespace string `yaml:"namespace" toml:"namespace"`
	Mount     string `yaml:"mount" toml:"mount"`
	Path      string `yaml:"path" toml:"path"`
	Field     string `yaml:"field" toml:"field"`
}

// UnwrapConfig selects the primitive that reverses payload protection
type UnwrapConfig struct {
	Type string `yaml:"type" toml:"type"` // none, sealed, awskms, dpapi

	// SecretFile holds the local secret of the sealed primitive
	SecretFile string `yaml:"secret_file" toml:"secret_file"`

	AWSKMS *AWSKMSConfig `yaml:"awskms,omitempty" toml:"awskms,omitempty"`
}

// AWSKMSConfig contains AWS KMS unwrap settings
type AWSKMSConfig struct {
	Region    string `yaml:"region" toml:"region"`
	KeyID     string `yaml:"key_id" toml:"key_id"`
	AccessKey string `yaml:"access_key" toml:"access_key"`
	SecretKey string `yaml:"secret_key" toml:"secret_key"`
	Endpoint  string `yaml:"endpoint" toml:"endpoint"`
}

// RecordConfig controls record framing and authentication
type RecordConfig struct {
	Layout string `yaml:"layout" toml:"layout"` // packed, aligned
	Digest string `yaml:"digest" toml:"digest"` // sha256, md5, sha1, sha512
}

// MetricsConfig controls metrics export
type MetricsConfig struct {
	Enabled bool `yaml:"enabled" toml:"enabled"`

	// Textfile is written after every run for the node_exporter
	// textfile collector
	Textfile string `yaml:"textfile" toml:"textfile"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
		},
		Keystore: KeystoreConfig{
			Type: defaultKeystoreType(),
			Name: "Client",
			Path: defaultKeystorePath(),
		},
		Unwrap: UnwrapConfig{
			Type:       defaultUnwrapType(),
			SecretFile: defaultSecretFile(),
		},
		Record: RecordConfig{
			Layout: "packed",
			Digest: "sha256",
		},
	}
}

func defaultKeystoreType() string {
	if isWindows {
		return KeystoreRegistry
	}
	return KeystoreFile
}

func defaultUnwrapType() string {
	if isWindows {
		return UnwrapDPAPI
	}
	return UnwrapSealed
}

func defaultKeystorePath() string {
	if isWindows {
		return `SOFTWARE\Dropbox\ks`
	}
	return filepath.Join(configDir(), "keystore")
}

func defaultSecretFile() string {
	if isWindows {
		return ""
	}
	return filepath.Join(configDir(), "secret")
}

// configDir returns the per-user keyrecover directory, falling back to the
// working directory when the user config directory is unknown.
func configDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".keyrecover"
	}
	return filepath.Join(dir, "keyrecover")
}

// Load reads configuration from a YAML or TOML file (by extension) and
// applies environment variable overrides.
// Values missing from the file keep their defaults.
func Load(path string) (*Config, error) {
	// #nosec G304 - Config file path is provided by admin/user
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()

	// Parse based on extension
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault loads path, or the defaults with environment overrides when
// path is empty.
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}

	cfg := Default()
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration
func applyEnvOverrides(cfg *Config) {
	// Logging
	if level := os.Getenv("KEYRECOVER_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if format := os.Getenv("KEYRECOVER_LOG_FORMAT"); format != "" {
		cfg.Logging.Format = format
	}

	// Keystore
	if ksType := os.Getenv("KEYRECOVER_KEYSTORE"); ksType != "" {
		cfg.Keystore.Type = ksType
	}
	if name := os.Getenv("KEYRECOVER_NAME"); name != "" {
		cfg.Keystore.Name = name
	}
	if path := os.Getenv("KEYRECOVER_KEYSTORE_PATH"); path != "" {
		cfg.Keystore.Path = path
	}
	if trim := os.Getenv("KEYRECOVER_TRIM_TERMINATOR"); trim != "" {
		v, err := strconv.ParseBool(trim)
		if err != nil {
			log.Printf("Warning: invalid KEYRECOVER_TRIM_TERMINATOR value %q, using %t: %v",
				trim, cfg.Keystore.TrimTerminator, err)
		} else {
			cfg.Keystore.TrimTerminator = v
		}
	}

	// Vault settings
	if cfg.Keystore.Vault != nil {
		if addr := os.Getenv("VAULT_ADDR"); addr != "" {
			cfg.Keystore.Vault.Address = addr
		}
		if token := os.Getenv("VAULT_TOKEN"); token != "" {
			cfg.Keystore.Vault.Token = token
		}
		if namespace := os.Getenv("VAULT_NAMESPACE"); namespace != "" {
			cfg.Keystore.Vault.Namespace = namespace
		}
	}

	// Unwrap
	if uwType := os.Getenv("KEYRECOVER_UNWRAP"); uwType != "" {
		cfg.Unwrap.Type = uwType
	}
	if secretFile := os.Getenv("KEYRECOVER_SECRET_FILE"); secretFile != "" {
		cfg.Unwrap.SecretFile = secretFile
	}

	// AWS KMS settings
	if cfg.Unwrap.AWSKMS != nil {
		if region := os.Getenv("AWS_REGION"); region != "" {
			cfg.Unwrap.AWSKMS.Region = region
		}
		if accessKey := os.Getenv("AWS_ACCESS_KEY_ID"); accessKey != "" {
			cfg.Unwrap.AWSKMS.AccessKey = accessKey
		}
		if secretKey := os.Getenv("AWS_SECRET_ACCESS_KEY"); secretKey != "" {
			cfg.Unwrap.AWSKMS.SecretKey = secretKey
		}
		if endpoint := os.Getenv("AWS_ENDPOINT"); endpoint != "" {
			cfg.Unwrap.AWSKMS.Endpoint = endpoint
		}
	}

	// Record
	if layout := os.Getenv("KEYRECOVER_RECORD_LAYOUT"); layout != "" {
		cfg.Record.Layout = layout
	}
	if digest := os.Getenv("KEYRECOVER_RECORD_DIGEST"); digest != "" {
		cfg.Record.Digest = digest
	}

	// Metrics
	if textfile := os.Getenv("KEYRECOVER_METRICS_TEXTFILE"); textfile != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Textfile = textfile
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate logging level
	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}

	// Validate logging format
	validFormats := map[string]bool{
		"json": true, "text": true,
	}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		return fmt.Errorf("invalid log format: %s (must be json or text)", c.Logging.Format)
	}

	// Validate keystore
	switch c.Keystore.Type {
	case KeystoreMemory:
	case KeystoreFile, KeystorePebble:
		if c.Keystore.Path == "" {
			return fmt.Errorf("keystore path is required for the %s keystore", c.Keystore.Type)
		}
	case KeystoreVault:
		if c.Keystore.Vault == nil {
			return fmt.Errorf("keystore vault section is required for the vault keystore")
		}
	case KeystoreRegistry:
		if !isWindows {
			return fmt.Errorf("the registry keystore is only available on windows")
		}
	default:
		return fmt.Errorf("invalid keystore type: %q (must be memory, file, pebble, vault, or registry)", c.Keystore.Type)
	}

	// Validate unwrap primitive
	switch c.Unwrap.Type {
	case UnwrapNone:
	case UnwrapSealed:
		if c.Unwrap.SecretFile == "" {
			return fmt.Errorf("unwrap secret_file is required for the sealed primitive")
		}
	case UnwrapAWSKMS:
		if c.Unwrap.AWSKMS == nil {
			return fmt.Errorf("unwrap awskms section is required for the awskms primitive")
		}
	case UnwrapDPAPI:
		if !isWindows {
			return fmt.Errorf("the dpapi primitive is only available on windows")
		}
	default:
		return fmt.Errorf("invalid unwrap type: %q (must be none, sealed, awskms, or dpapi)", c.Unwrap.Type)
	}

	// Validate record settings
	if _, err := record.ParseLayout(c.Record.Layout); err != nil {
		return fmt.Errorf("invalid record layout: %s (must be packed or aligned)", c.Record.Layout)
	}
	if c.Record.Digest != "" {
		if _, err := types.ParseHashName(c.Record.Digest); err != nil {
			return fmt.Errorf("invalid record digest: %s (must be md5, sha1, sha256, sha384, or sha512)", c.Record.Digest)
		}
	}

	if c.Metrics.Enabled && c.Metrics.Textfile == "" {
		return fmt.Errorf("metrics textfile is required when metrics are enabled")
	}

	return nil
}
