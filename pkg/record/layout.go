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

package record

import (
	"fmt"
	"strings"
)

// Layout selects the header framing of a record.
type Layout int

const (
	// LayoutPacked is the 5 byte header: version, then the uint32 length.
	LayoutPacked Layout = iota

	// LayoutAligned is the 8 byte header produced by native struct
	// alignment: version, 3 padding bytes, then the uint32 length.
	LayoutAligned
)

const (
	versionSize = 1
	lengthSize  = 4
	alignedPad  = 3
)

// HeaderSize returns the number of bytes preceding the payload, or 0 for
// an unknown layout.
func (l Layout) HeaderSize() int {
	switch l {
	case LayoutPacked:
		return versionSize + lengthSize
	case LayoutAligned:
		return versionSize + alignedPad + lengthSize
	default:
		return 0
	}
}

// String returns the configuration name of the layout.
func (l Layout) String() string {
	switch l {
	case LayoutPacked:
		return "packed"
	case LayoutAligned:
		return "aligned"
	default:
		return fmt.Sprintf("layout(%d)", int(l))
	}
}

// ParseLayout converts a configuration value to a Layout. The empty string
// selects LayoutPacked.
func ParseLayout(s string) (Layout, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "packed":
		return LayoutPacked, nil
	case "aligned":
		return LayoutAligned, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidLayout, s)
	}
}
