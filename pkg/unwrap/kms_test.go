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

package unwrap

import (
	"context"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockKMSClient is a KMSClient whose behavior is set per test.
type mockKMSClient struct {
	EncryptFunc func(ctx context.Context, params *kms.EncryptInput, optFns ...func(*kms.Options)) (*kms.EncryptOutput, error)
	DecryptFunc func(ctx context.Context, params *kms.DecryptInput, optFns ...func(*kms.Options)) (*kms.DecryptOutput, error)

	EncryptCalls int
	DecryptCalls int
}

func (m *mockKMSClient) Encrypt(ctx context.Context, params *kms.EncryptInput, optFns ...func(*kms.Options)) (*kms.EncryptOutput, error) {
	m.EncryptCalls++
	if m.EncryptFunc != nil {
		return m.EncryptFunc(ctx, params, optFns...)
	}
	return nil, errors.New("not implemented")
}

func (m *mockKMSClient) Decrypt(ctx context.Context, params *kms.DecryptInput, optFns ...func(*kms.Options)) (*kms.DecryptOutput, error) {
	m.DecryptCalls++
	if m.DecryptFunc != nil {
		return m.DecryptFunc(ctx, params, optFns...)
	}
	return nil, errors.New("not implemented")
}

func TestKMS_Unwrap(t *testing.T) {
	mock := &mockKMSClient{
		DecryptFunc: func(_ context.Context, params *kms.DecryptInput, _ ...func(*kms.Options)) (*kms.DecryptOutput, error) {
			assert.Equal(t, []byte("ciphertext"), params.CiphertextBlob)
			assert.Equal(t, hex.EncodeToString(testEntropy), params.EncryptionContext[EncryptionContextKey])
			assert.Equal(t, "alias/keyrecover", aws.ToString(params.KeyId))
			return &kms.DecryptOutput{Plaintext: []byte("user key")}, nil
		},
	}

	k := NewKMSWithClient(mock, "alias/keyrecover")
	out, err := k.Unwrap(context.Background(), []byte("ciphertext"), testEntropy)
	require.NoError(t, err)
	assert.Equal(t, []byte("user key"), out)
	assert.Equal(t, 1, mock.DecryptCalls)
}

func TestKMS_UnwrapWithoutKeyOrEntropy(t *testing.T) {
	mock := &mockKMSClient{
		DecryptFunc: func(_ context.Context, params *kms.DecryptInput, _ ...func(*kms.Options)) (*kms.DecryptOutput, error) {
			assert.Nil(t, params.KeyId)
			assert.Nil(t, params.EncryptionContext)
			return &kms.DecryptOutput{Plaintext: []byte("user key")}, nil
		},
	}

	_, err := NewKMSWithClient(mock, "").Unwrap(context.Background(), []byte("ciphertext"), nil)
	assert.NoError(t, err)
}

func TestKMS_UnwrapFailures(t *testing.T) {
	tests := []struct {
		name string
		fn   func(context.Context, *kms.DecryptInput, ...func(*kms.Options)) (*kms.DecryptOutput, error)
	}{
		{"api error", func(context.Context, *kms.DecryptInput, ...func(*kms.Options)) (*kms.DecryptOutput, error) {
			return nil, errors.New("InvalidCiphertextException")
		}},
		{"nil output", func(context.Context, *kms.DecryptInput, ...func(*kms.Options)) (*kms.DecryptOutput, error) {
			return nil, nil
		}},
		{"empty plaintext", func(context.Context, *kms.DecryptInput, ...func(*kms.Options)) (*kms.DecryptOutput, error) {
			return &kms.DecryptOutput{}, nil
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := NewKMSWithClient(&mockKMSClient{DecryptFunc: tt.fn}, "key")
			_, err := k.Unwrap(context.Background(), []byte("ciphertext"), testEntropy)
			assert.ErrorIs(t, err, ErrUnwrapFailed)
		})
	}
}

func TestKMS_Protect(t *testing.T) {
	mock := &mockKMSClient{
		EncryptFunc: func(_ context.Context, params *kms.EncryptInput, _ ...func(*kms.Options)) (*kms.EncryptOutput, error) {
			assert.Equal(t, "key", aws.ToString(params.KeyId))
			assert.Equal(t, []byte("user key"), params.Plaintext)
			assert.Contains(t, params.EncryptionContext, EncryptionContextKey)
			return &kms.EncryptOutput{CiphertextBlob: []byte("blob")}, nil
		},
	}

	out, err := NewKMSWithClient(mock, "key").Protect(context.Background(), []byte("user key"), testEntropy)
	require.NoError(t, err)
	assert.Equal(t, []byte("blob"), out)
}

func TestKMS_ProtectRequiresKeyID(t *testing.T) {
	mock := &mockKMSClient{}
	_, err := NewKMSWithClient(mock, "").Protect(context.Background(), []byte("user key"), nil)
	assert.ErrorIs(t, err, ErrProtectFailed)
	assert.Equal(t, 0, mock.EncryptCalls)
}

func TestKMS_ProtectError(t *testing.T) {
	mock := &mockKMSClient{
		EncryptFunc: func(context.Context, *kms.EncryptInput, ...func(*kms.Options)) (*kms.EncryptOutput, error) {
			return nil, errors.New("AccessDeniedException")
		},
	}
	_, err := NewKMSWithClient(mock, "key").Protect(context.Background(), []byte("user key"), nil)
	assert.ErrorIs(t, err, ErrProtectFailed)
}

func TestNewKMS_NilConfig(t *testing.T) {
	_, err := NewKMS(context.Background(), nil)
	assert.Error(t, err)
}
