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
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jeremyhahn/go-keyrecover/pkg/recovery"
)

// OutputFormat defines the output format type
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
)

// Printer handles formatted output
type Printer struct {
	format OutputFormat
	writer io.Writer
}

// NewPrinter creates a new Printer
func NewPrinter(format string, writer io.Writer) *Printer {
	return &Printer{
		format: OutputFormat(format),
		writer: writer,
	}
}

// PrintKey prints a recovered key as lowercase hex. userKey marks the
// unwrapped user key rather than the derived database key.
func (p *Printer) PrintKey(result *recovery.Result, userKey bool) error {
	keyType := "database"
	if userKey {
		keyType = "user"
	}

	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"attempt_id": result.AttemptID,
			"version":    result.Version,
			"key_type":   keyType,
			"key":        hex.EncodeToString(result.Key),
		})
	case OutputFormatText:
		fmt.Fprintln(p.writer, hex.EncodeToString(result.Key))
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// RecordInfo describes an authenticated record without its contents
type RecordInfo struct {
	Name          string
	Version       uint8
	Layout        string
	Digest        string
	PayloadLength uint32
	DigestLength  int
	Size          int
}

// PrintRecordInfo prints record metadata
func (p *Printer) PrintRecordInfo(info *RecordInfo) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"name":           info.Name,
			"version":        info.Version,
			"layout":         info.Layout,
			"digest":         info.Digest,
			"payload_length": info.PayloadLength,
			"digest_length":  info.DigestLength,
			"size":           info.Size,
			"verified":       true,
		})
	case OutputFormatText:
		fmt.Fprintf(p.writer, "Record: %s\n", info.Name)
		fmt.Fprintf(p.writer, "  Version:        %d\n", info.Version)
		fmt.Fprintf(p.writer, "  Layout:         %s\n", info.Layout)
		fmt.Fprintf(p.writer, "  Digest:         HMAC-%s\n", info.Digest)
		fmt.Fprintf(p.writer, "  Payload Length: %d\n", info.PayloadLength)
		fmt.Fprintf(p.writer, "  Digest Length:  %d\n", info.DigestLength)
		fmt.Fprintf(p.writer, "  Size:           %d\n", info.Size)
		fmt.Fprintln(p.writer, "  Verified:       true")
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintSuccess prints a success message
func (p *Printer) PrintSuccess(message string) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"status":  "success",
			"message": message,
		})
	case OutputFormatText:
		fmt.Fprintln(p.writer, message)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintError prints an error with its recovery kind. Errors never carry key
// material, so the message is safe to show.
func (p *Printer) PrintError(err error) error {
	kind := recovery.KindOf(err)
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"status": "error",
			"kind":   string(kind),
			"error":  err.Error(),
		})
	default:
		fmt.Fprintf(p.writer, "Error: %s: %v\n", kind, err)
		return nil
	}
}

// printJSON prints data as JSON
func (p *Printer) printJSON(data interface{}) error {
	encoder := json.NewEncoder(p.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
