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
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/kms"
)

// EncryptionContextKey is the AWS KMS encryption context key that carries
// the hex encoded entropy.
const EncryptionContextKey = "keyrecover:entropy"

// KMSClient is the subset of the AWS KMS API used by the KMS primitive.
type KMSClient interface {
	Encrypt(ctx context.Context, params *kms.EncryptInput, optFns ...func(*kms.Options)) (*kms.EncryptOutput, error)
	Decrypt(ctx context.Context, params *kms.DecryptInput, optFns ...func(*kms.Options)) (*kms.DecryptOutput, error)
}

// KMSConfig configures the AWS KMS primitive.
type KMSConfig struct {
	// KeyID is the KMS key ID, ARN or alias. Required for Protect; for
	// Unwrap it pins the key that must have produced the ciphertext.
	KeyID string

	// Region is the AWS region.
	Region string

	// AccessKeyID and SecretAccessKey select static credentials. When
	// empty the default credential chain is used.
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string

	// Endpoint overrides the KMS endpoint, e.g. for LocalStack.
	Endpoint string
}

// KMS protects payloads with AWS KMS. The entropy is bound as encryption
// context, so a ciphertext only decrypts with the same entropy.
type KMS struct {
	client KMSClient
	keyID  string
}

// NewKMS builds a KMS primitive from config using the AWS SDK.
func NewKMS(ctx context.Context, config *KMSConfig) (*KMS, error) {
	if config == nil {
		return nil, fmt.Errorf("kms config is required")
	}

	var opts []func(*awsconfig.LoadOptions) error
	if config.Region != "" {
		opts = append(opts, awsconfig.WithRegion(config.Region))
	}
	if config.AccessKeyID != "" && config.SecretAccessKey != "" {
		creds := credentials.NewStaticCredentialsProvider(
			config.AccessKeyID,
			config.SecretAccessKey,
			config.SessionToken,
		)
		opts = append(opts, awsconfig.WithCredentialsProvider(creds))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var clientOpts []func(*kms.Options)
	if config.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *kms.Options) {
			o.BaseEndpoint = aws.String(config.Endpoint)
		})
	}

	return NewKMSWithClient(kms.NewFromConfig(cfg, clientOpts...), config.KeyID), nil
}

// NewKMSWithClient builds a KMS primitive around an existing client.
func NewKMSWithClient(client KMSClient, keyID string) *KMS {
	return &KMS{client: client, keyID: keyID}
}

func encryptionContext(entropy []byte) map[string]string {
	if len(entropy) == 0 {
		return nil
	}
	return map[string]string{EncryptionContextKey: hex.EncodeToString(entropy)}
}

// Unwrap decrypts ciphertext with KMS.
func (k *KMS) Unwrap(ctx context.Context, ciphertext, entropy []byte) ([]byte, error) {
	input := &kms.DecryptInput{
		CiphertextBlob:    ciphertext,
		EncryptionContext: encryptionContext(entropy),
	}
	if k.keyID != "" {
		input.KeyId = aws.String(k.keyID)
	}

	out, err := k.client.Decrypt(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("%w: kms decrypt: %w", ErrUnwrapFailed, err)
	}
	if out == nil || len(out.Plaintext) == 0 {
		return nil, fmt.Errorf("%w: kms returned no plaintext", ErrUnwrapFailed)
	}
	return out.Plaintext, nil
}

// Protect encrypts plaintext with the configured KMS key.
func (k *KMS) Protect(ctx context.Context, plaintext, entropy []byte) ([]byte, error) {
	if k.keyID == "" {
		return nil, fmt.Errorf("%w: kms key id is required", ErrProtectFailed)
	}

	out, err := k.client.Encrypt(ctx, &kms.EncryptInput{
		KeyId:             aws.String(k.keyID),
		Plaintext:         plaintext,
		EncryptionContext: encryptionContext(entropy),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: kms encrypt: %w", ErrProtectFailed, err)
	}
	if out == nil || len(out.CiphertextBlob) == 0 {
		return nil, fmt.Errorf("%w: kms returned no ciphertext", ErrProtectFailed)
	}
	return out.CiphertextBlob, nil
}
