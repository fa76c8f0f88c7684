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
	"fmt"
	"os"

	"github.com/jeremyhahn/go-keyrecover/pkg/metrics"
	"github.com/spf13/cobra"
)

var (
	// Global configuration
	globalConfig *Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "keyrecover",
	Short: "keyrecover - Versioned key record recovery tool",
	Long: `keyrecover reads an HMAC authenticated key record from a keystore,
verifies it, unwraps the protected user key and derives the database key
with PBKDF2.

Supported keystores:
  - file:     one file per record in a directory
  - pebble:   embedded Pebble key/value database
  - vault:    HashiCorp Vault KV v2 secrets
  - registry: Windows registry binary values
  - memory:   in-process store, for testing

Supported unwrap primitives:
  - none:     payloads stored without protection
  - sealed:   XChaCha20-Poly1305 under a local secret
  - awskms:   AWS Key Management Service
  - dpapi:    Windows Data Protection API`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Initialize global config
	globalConfig = NewConfig()

	// Persistent flags (available to all commands)
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&globalConfig.ConfigFile, "config", "",
		"config file (default: built-in defaults)")
	flags.StringVar(&globalConfig.Keystore, "keystore", "",
		"keystore to use (memory, file, pebble, vault, registry)")
	flags.StringVar(&globalConfig.KeystorePath, "keystore-path", "",
		"file or pebble keystore directory, or registry key path")
	flags.StringVar(&globalConfig.Unwrap, "unwrap", "",
		"unwrap primitive (none, sealed, awskms, dpapi)")
	flags.StringVar(&globalConfig.SecretFile, "secret-file", "",
		"local secret for the sealed primitive")
	flags.StringVar(&globalConfig.Layout, "layout", "",
		"record header layout (packed, aligned)")
	flags.StringVar(&globalConfig.Digest, "digest", "",
		"record HMAC digest (md5, sha1, sha256, sha384, sha512)")
	flags.BoolVar(&globalConfig.TrimTerminator, "trim-terminator", false,
		"strip one trailing NUL byte from raw records")
	flags.StringVar(&globalConfig.MetricsTextfile, "metrics-textfile", "",
		"write Prometheus metrics to this file after the run")
	flags.StringVarP(&globalConfig.OutputFormat, "output", "o", "text",
		"output format (text, json)")
	flags.BoolVarP(&globalConfig.Verbose, "verbose", "v", false,
		"verbose output")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(recoverCmd)
	rootCmd.AddCommand(sealCmd)
	rootCmd.AddCommand(inspectCmd)
}

// getConfig returns the global configuration
func getConfig() *Config {
	return globalConfig
}

// handleError prints an error and exits with code 1
func handleError(err error) {
	printer := NewPrinter(globalConfig.OutputFormat, os.Stderr)
	_ = printer.PrintError(err) // Error printing to stderr is best-effort
	os.Exit(1)
}

// printVerbose prints a message if verbose mode is enabled
func printVerbose(format string, args ...interface{}) {
	if globalConfig.Verbose {
		fmt.Fprintf(os.Stderr, "[VERBOSE] "+format+"\n", args...)
	}
}

// exportMetrics writes the metrics textfile when one is configured.
// Failures are reported but do not change the command outcome.
func exportMetrics(env *Environment) {
	if env == nil || !env.Config.Metrics.Enabled {
		return
	}
	if err := metrics.WriteTextfile(env.Config.Metrics.Textfile); err != nil {
		env.Logger.Warn("failed to write metrics textfile",
			"path", env.Config.Metrics.Textfile, "error", err)
		return
	}
	printVerbose("metrics written to %s", env.Config.Metrics.Textfile)
}
