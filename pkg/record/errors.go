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

import "errors"

var (
	// ErrMalformedRecord is returned when a buffer does not match the
	// record framing.
	ErrMalformedRecord = errors.New("record: malformed record")

	// ErrInvalidLayout is returned for an unknown header layout name.
	ErrInvalidLayout = errors.New("record: invalid layout")
)
