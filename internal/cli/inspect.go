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
	"path/filepath"

	"github.com/jeremyhahn/go-keyrecover/pkg/integrity"
	"github.com/jeremyhahn/go-keyrecover/pkg/keystore"
	"github.com/jeremyhahn/go-keyrecover/pkg/record"
	"github.com/jeremyhahn/go-keyrecover/pkg/recovery"
	"github.com/spf13/cobra"
)

// inspectCmd verifies a record and prints its framing
var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Verify a record and print its metadata",
	Long: `Parse and verify the record stored under --name, or the raw record in
--file, and print its version and lengths. The payload is never unwrapped
and no key material is printed.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		name, _ := cmd.Flags().GetString("name")
		file, _ := cmd.Flags().GetString("file")

		if err := runInspect(cmd.Context(), getConfig(), os.Stdout, name, file); err != nil {
			handleError(err)
			return
		}
	},
}

func init() {
	inspectCmd.Flags().String("name", "", "logical record name (default from config, \"Client\")")
	inspectCmd.Flags().String("file", "", "read the raw record from this file instead of the keystore")
}

func runInspect(ctx context.Context, c *Config, out io.Writer, name, file string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	env, err := c.CreateEnvironment(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = env.Close() }()

	var raw []byte
	trim := env.Config.Keystore.TrimTerminator
	if file != "" {
		// #nosec G304 - Record path is provided by the user
		raw, err = os.ReadFile(file)
		if err != nil {
			return err
		}
		name = filepath.Base(file)
	} else {
		name = env.Name(name)
		raw, err = env.Keystore.Get(ctx, name)
		if err != nil {
			return err
		}
		if q, ok := env.Keystore.(keystore.TerminatorQuirk); ok && q.AppendsTerminator() {
			trim = true
		}
	}
	if trim {
		raw = recovery.TrimTerminator(raw)
	}

	rec, err := record.ParseWithLayout(raw, env.Layout)
	if err != nil {
		return err
	}
	if _, err := integrity.Verify(rec, env.Table); err != nil {
		return err
	}

	entry, err := env.Table.Lookup(rec.Version)
	if err != nil {
		return err
	}

	return NewPrinter(c.OutputFormat, out).PrintRecordInfo(&RecordInfo{
		Name:          name,
		Version:       rec.Version,
		Layout:        env.Layout.String(),
		Digest:        entry.Digest.String(),
		PayloadLength: rec.PayloadLength,
		DigestLength:  len(rec.Digest),
		Size:          rec.Size(),
	})
}
