package keywrap

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/kms"
)

// AWSKMSWrapper implements Wrapper using AWS KMS
type AWSKMSWrapper struct {
	keyID  string
	region string
	client *kms.Client
}

// NewAWSKMSWrapper creates a new AWS KMS wrapper
func NewAWSKMSWrapper(keyID, region string) (*AWSKMSWrapper, error) {
	if keyID == "" {
		return nil, fmt.Errorf("AWS KMS key ID is required")
	}
	if region == "" {
		return nil, fmt.Errorf("AWS region is required")
	}

	// Default credential chain: env vars, shared config, IAM role
	cfg, err := config.LoadDefaultConfig(context.Background(), config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &AWSKMSWrapper{
		keyID:  keyID,
		region: region,
		client: kms.NewFromConfig(cfg),
	}, nil
}

// Wrap encrypts data using AWS KMS
func (w *AWSKMSWrapper) Wrap(ctx context.Context, data []byte) ([]byte, error) {
	output, err := w.client.Encrypt(ctx, &kms.EncryptInput{
		KeyId:     aws.String(w.keyID),
		Plaintext: data,
	})
	if err != nil {
		return nil, fmt.Errorf("AWS KMS encrypt failed: %w", err)
	}
	return output.CiphertextBlob, nil
}

// Unwrap decrypts data using AWS KMS
func (w *AWSKMSWrapper) Unwrap(ctx context.Context, wrapped []byte) ([]byte, error) {
	output, err := w.client.Decrypt(ctx, &kms.DecryptInput{
		KeyId:          aws.String(w.keyID),
		CiphertextBlob: wrapped,
	})
	if err != nil {
		return nil, fmt.Errorf("AWS KMS decrypt failed: %w", err)
	}
	return output.Plaintext, nil
}

// Provider returns the provider name
func (w *AWSKMSWrapper) Provider() string {
	return string(ProviderAWSKMS)
}
