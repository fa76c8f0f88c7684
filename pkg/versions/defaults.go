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

package versions

import (
	"github.com/jeremyhahn/go-keyrecover/pkg/kdf"
	"github.com/jeremyhahn/go-keyrecover/pkg/types"
)

// DefaultDigest is the HMAC hash used for version 0 records unless
// configured otherwise.
const DefaultDigest = types.HashSHA256

// Version0Entry returns the table entry for version 0 records built from
// params. A nil params uses kdf.DefaultVersion0Params; an empty digest uses
// DefaultDigest.
func Version0Entry(params *kdf.Version0Params, digest types.HashName) (Entry, error) {
	if params == nil {
		params = kdf.DefaultVersion0Params()
	}
	if digest == "" {
		digest = DefaultDigest
	}
	deriver, err := kdf.NewVersion0(params)
	if err != nil {
		return Entry{}, err
	}
	return Entry{
		Version: 0,
		AuthKey: params.AuthKey(),
		Digest:  digest,
		Deriver: deriver,
	}, nil
}

// DefaultTable returns a table holding every built-in version, using
// digest for the record HMAC.
func DefaultTable(digest types.HashName) (*Table, error) {
	v0, err := Version0Entry(nil, digest)
	if err != nil {
		return nil, err
	}
	return NewTable(v0)
}
