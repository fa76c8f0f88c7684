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
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jeremyhahn/go-keyrecover/pkg/integrity"
	"github.com/jeremyhahn/go-keyrecover/pkg/keystore"
	"github.com/spf13/cobra"
)

// sealCmd protects a user key and stores it as a signed record
var sealCmd = &cobra.Command{
	Use:   "seal",
	Short: "Store a user key as a signed record",
	Long: `Protect a hex encoded user key with the configured unwrap primitive,
sign it with the HMAC key of --record-version and store the record under
--name in a writable keystore.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		name, _ := cmd.Flags().GetString("name")
		userKey, _ := cmd.Flags().GetString("user-key")
		version, _ := cmd.Flags().GetUint8("record-version")

		if err := runSeal(cmd.Context(), getConfig(), os.Stdout, name, userKey, version); err != nil {
			handleError(err)
			return
		}
	},
}

func init() {
	sealCmd.Flags().String("name", "", "logical record name (default from config, \"Client\")")
	sealCmd.Flags().String("user-key", "", "user key as hex")
	sealCmd.Flags().Uint8("record-version", 0, "record version")
	_ = sealCmd.MarkFlagRequired("user-key")
}

func runSeal(ctx context.Context, c *Config, out io.Writer, name, userKeyHex string, version uint8) error {
	if ctx == nil {
		ctx = context.Background()
	}

	userKey, err := hex.DecodeString(strings.TrimSpace(userKeyHex))
	if err != nil {
		return fmt.Errorf("invalid user key: %w", err)
	}
	if len(userKey) == 0 {
		return fmt.Errorf("user key is required")
	}
	defer clear(userKey)

	env, err := c.CreateEnvironment(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = env.Close() }()

	writer, ok := env.Keystore.(keystore.Writer)
	if !ok {
		return fmt.Errorf("%s keystore is read-only", env.Config.Keystore.Type)
	}

	entry, err := env.Table.Lookup(version)
	if err != nil {
		return err
	}

	protected, err := env.Primitive.Protect(ctx, userKey, entry.AuthKey)
	if err != nil {
		return err
	}

	rec, err := integrity.SignWithLayout(env.Table, version, protected, env.Layout)
	if err != nil {
		return err
	}

	name = env.Name(name)
	raw := rec.Encode()
	if err := writer.Put(ctx, name, raw); err != nil {
		return err
	}

	env.Logger.Info("record sealed", "name", name, "version", version, "size", len(raw))
	return NewPrinter(c.OutputFormat, out).PrintSuccess(
		fmt.Sprintf("Sealed version %d record %q (%d bytes)", version, name, len(raw)))
}
