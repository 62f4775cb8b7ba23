package credentials

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// SecretValueGetter is the part of the Secrets Manager client used here.
type SecretValueGetter interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput,
		optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// SecretsManager resolves credentials from a JSON secret in AWS Secrets Manager.
type SecretsManager struct {
	client     SecretValueGetter
	secretName string
}

// NewSecretsManager creates a provider that uses the default AWS credential chain for the given
// region.
func NewSecretsManager(ctx context.Context, secretName string, region string) (*SecretsManager, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("%w: could not load AWS configuration: %v", ErrCredentialUnavailable, err)
	}
	return NewSecretsManagerWithClient(secretsmanager.NewFromConfig(awsCfg), secretName), nil
}

// NewSecretsManagerWithClient creates a provider around an existing client. Unit tests pass a fake
// client here.
func NewSecretsManagerWithClient(client SecretValueGetter, secretName string) *SecretsManager {
	return &SecretsManager{client: client, secretName: secretName}
}

func (s *SecretsManager) Name() string {
	return "secretsmanager:" + s.secretName
}

// Resolve fetches the secret and parses the credential keys out of its JSON string.
func (s *SecretsManager) Resolve(ctx context.Context) (Credentials, error) {
	out, err := s.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(s.secretName),
	})
	if err != nil {
		return Credentials{}, fmt.Errorf("%w: could not fetch secret %s: %v", ErrCredentialUnavailable, s.secretName, err)
	}
	if out == nil || aws.ToString(out.SecretString) == "" {
		return Credentials{}, fmt.Errorf("%w: secret %s has no string value", ErrCredentialUnavailable, s.secretName)
	}
	return parseSecret(aws.ToString(out.SecretString))
}
