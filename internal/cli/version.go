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
	"io"
	"os"
	"runtime"

	"github.com/jeremyhahn/go-keyrecover/pkg/types"
	"github.com/jeremyhahn/go-keyrecover/pkg/versions"
	"github.com/spf13/cobra"
)

// Version information (injected at build time via -ldflags)
var (
	Version   = "dev"     // Set via -ldflags "-X github.com/jeremyhahn/go-keyrecover/internal/cli.Version=x.y.z"
	GitCommit = "unknown" // Set via -ldflags "-X github.com/jeremyhahn/go-keyrecover/internal/cli.GitCommit=abc123"
	BuildDate = "unknown" // Set via -ldflags "-X github.com/jeremyhahn/go-keyrecover/internal/cli.BuildDate=2025-01-15"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information and supported record versions",
	Long: `Print the build information of the keyrecover CLI together with the
record versions it can verify and derive keys for.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runVersion(getConfig(), os.Stdout); err != nil {
			handleError(err)
		}
	},
}

// recordVersion describes one built-in record version
type recordVersion struct {
	Version uint8  `json:"version"`
	Digest  string `json:"digest"`
	Derive  bool   `json:"derive"`
}

func runVersion(c *Config, out io.Writer) error {
	var digest types.HashName
	if c.Digest != "" {
		h, err := types.ParseHashName(c.Digest)
		if err != nil {
			return err
		}
		digest = h
	}

	table, err := versions.DefaultTable(digest)
	if err != nil {
		return err
	}

	records := make([]recordVersion, 0)
	for _, v := range table.Versions() {
		entry, err := table.Lookup(v)
		if err != nil {
			return err
		}
		records = append(records, recordVersion{
			Version: v,
			Digest:  entry.Digest.Lower(),
			Derive:  entry.Deriver != nil,
		})
	}
	latest, _ := table.MaxVersion()

	if c.OutputFormat == string(OutputFormatJSON) {
		return NewPrinter(c.OutputFormat, out).printJSON(map[string]interface{}{
			"version":        Version,
			"commit":         GitCommit,
			"build_date":     BuildDate,
			"go_version":     runtime.Version(),
			"os":             runtime.GOOS,
			"arch":           runtime.GOARCH,
			"record_latest":  latest,
			"record_formats": records,
		})
	}

	fmt.Fprintf(out, "keyrecover version %s\n", Version)
	fmt.Fprintf(out, "Git commit: %s\n", GitCommit)
	fmt.Fprintf(out, "Build date: %s\n", BuildDate)
	fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
	fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(out, "Latest record version: %d\n", latest)
	for _, r := range records {
		derive := "verify+derive"
		if !r.Derive {
			derive = "verify only"
		}
		fmt.Fprintf(out, "  v%d: hmac-%s, %s\n", r.Version, r.Digest, derive)
	}
	return nil
}
