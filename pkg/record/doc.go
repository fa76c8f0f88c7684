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

// Package record parses and encodes versioned, HMAC-suffixed key records.
//
// A record is laid out little-endian as:
//
//	[1 byte version][4 bytes payload length][payload][digest]
//
// The digest covers every byte that precedes it. Records written by
// clients that unpacked the header with native C alignment carry three
// zero bytes between the version and the length; see LayoutAligned.
//
// Parsing is a pure function of the input. It never panics on short or
// inconsistent input and returns ErrMalformedRecord instead.
package record
