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
	"io"
	"os"

	"github.com/spf13/cobra"
)

// recoverCmd recovers the database key from a keystore record
var recoverCmd = &cobra.Command{
	Use:     "recover",
	Aliases: []string{"recover-key"},
	Short:   "Recover the database key",
	Long: `Read the record stored under --name, verify its HMAC, unwrap the
user key and print the derived database key as hexadecimal.

On failure only the error kind and message are printed and the command
exits with status 1.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		name, _ := cmd.Flags().GetString("name")
		showUserKey, _ := cmd.Flags().GetBool("show-user-key")

		if err := runRecover(cmd.Context(), getConfig(), os.Stdout, name, showUserKey); err != nil {
			handleError(err)
			return
		}
	},
}

func init() {
	recoverCmd.Flags().String("name", "", "logical record name (default from config, \"Client\")")
	recoverCmd.Flags().Bool("show-user-key", false, "print the unwrapped user key instead of the database key")
}

func runRecover(ctx context.Context, c *Config, out io.Writer, name string, showUserKey bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	env, err := c.CreateEnvironment(ctx)
	if err != nil {
		return err
	}
	defer exportMetrics(env)
	defer func() { _ = env.Close() }()

	pipeline, err := env.Pipeline()
	if err != nil {
		return err
	}

	name = env.Name(name)
	printVerbose("recovering %q from %s keystore", name, env.Config.Keystore.Type)

	recoverFn := pipeline.Recover
	if showUserKey {
		recoverFn = pipeline.RecoverUserKey
	}
	result, err := recoverFn(ctx, name)
	if err != nil {
		return err
	}
	defer clear(result.Key)

	return NewPrinter(c.OutputFormat, out).PrintKey(result, showUserKey)
}
