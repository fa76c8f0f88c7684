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
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// Record is a parsed key record. The slices are owned by the record and do
// not alias the buffer it was parsed from.
type Record struct {
	// Version selects the authentication key and derivation strategy.
	Version uint8

	// PayloadLength is the declared payload length from the header.
	PayloadLength uint32

	// Payload is the protected user key.
	Payload []byte

	// Digest is the keyed digest over the header and payload.
	Digest []byte

	// Layout is the header framing the record was parsed with.
	Layout Layout

	// padding holds the alignment bytes as read, so that Encode and
	// SignedBytes reproduce the original buffer.
	padding []byte
}

// New builds a packed record from its fields. PayloadLength is taken from
// the payload.
func New(version uint8, payload, digest []byte) (*Record, error) {
	return NewWithLayout(version, payload, digest, LayoutPacked)
}

// NewWithLayout builds a record using the given header layout.
func NewWithLayout(version uint8, payload, digest []byte, layout Layout) (*Record, error) {
	if layout.HeaderSize() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidLayout, layout)
	}
	if uint64(len(payload)) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: payload of %d bytes exceeds the length field", ErrMalformedRecord, len(payload))
	}
	return &Record{
		Version:       version,
		PayloadLength: uint32(len(payload)),
		Payload:       bytes.Clone(payload),
		Digest:        bytes.Clone(digest),
		Layout:        layout,
	}, nil
}

// Parse parses a packed record.
func Parse(raw []byte) (*Record, error) {
	return ParseWithLayout(raw, LayoutPacked)
}

// ParseWithLayout parses raw using the given header layout. The whole
// buffer is consumed: whatever follows the payload is the digest.
func ParseWithLayout(raw []byte, layout Layout) (*Record, error) {
	headerSize := layout.HeaderSize()
	if headerSize == 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidLayout, layout)
	}
	if len(raw) < headerSize {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the %d byte header",
			ErrMalformedRecord, len(raw), headerSize)
	}

	version := raw[0]
	payloadLen := binary.LittleEndian.Uint32(raw[headerSize-lengthSize : headerSize])

	remaining := uint64(len(raw) - headerSize)
	if uint64(payloadLen) > remaining {
		return nil, fmt.Errorf("%w: declared payload length %d exceeds the %d remaining bytes",
			ErrMalformedRecord, payloadLen, remaining)
	}

	payloadEnd := headerSize + int(payloadLen)
	rec := &Record{
		Version:       version,
		PayloadLength: payloadLen,
		Payload:       bytes.Clone(raw[headerSize:payloadEnd]),
		Digest:        bytes.Clone(raw[payloadEnd:]),
		Layout:        layout,
	}
	if layout == LayoutAligned {
		rec.padding = bytes.Clone(raw[versionSize : versionSize+alignedPad])
	}
	return rec, nil
}

// SignedBytes returns the bytes covered by the digest: the header followed
// by the payload.
func (r *Record) SignedBytes() []byte {
	headerSize := r.Layout.HeaderSize()
	buf := make([]byte, headerSize, headerSize+len(r.Payload)+len(r.Digest))
	buf[0] = r.Version
	if r.Layout == LayoutAligned && len(r.padding) == alignedPad {
		copy(buf[versionSize:], r.padding)
	}
	binary.LittleEndian.PutUint32(buf[headerSize-lengthSize:], uint32(len(r.Payload)))
	return append(buf, r.Payload...)
}

// Encode returns the wire form of the record.
func (r *Record) Encode() []byte {
	return append(r.SignedBytes(), r.Digest...)
}

// Size returns the encoded length of the record.
func (r *Record) Size() int {
	return r.Layout.HeaderSize() + len(r.Payload) + len(r.Digest)
}
