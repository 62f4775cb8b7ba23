package credentials

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSecretsManager returns a fixed secret string or error and records the requested secret id.
type fakeSecretsManager struct {
	secret    *string
	err       error
	requested string
}

func (f *fakeSecretsManager) GetSecretValue(_ context.Context, params *secretsmanager.GetSecretValueInput,
	_ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	f.requested = aws.ToString(params.SecretId)
	if f.err != nil {
		return nil, f.err
	}
	return &secretsmanager.GetSecretValueOutput{SecretString: f.secret}, nil
}

// TestSecretsManagerResolve expects that a complete secret is parsed into credentials, with the
// port given either as a number or as a string.
func TestSecretsManagerResolve(t *testing.T) {
	secrets := []string{
		`{"DB_HOST": "db.internal", "DB_USER": "app", "DB_PASSWORD": "s3cr3t", "DB_NAME": "people", "DB_PORT": 3306}`,
		`{"DB_HOST": "db.internal", "DB_USER": "app", "DB_PASSWORD": "s3cr3t", "DB_NAME": "people", "DB_PORT": "3306"}`,
	}
	for _, secret := range secrets {
		client := &fakeSecretsManager{secret: aws.String(secret)}
		provider := NewSecretsManagerWithClient(client, "my-app-db-credentials")

		creds, err := provider.Resolve(context.Background())
		require.NoError(t, err, secret)
		assert.Equal(t, "my-app-db-credentials", client.requested)
		assert.Equal(t, Credentials{
			Host:     "db.internal",
			User:     "app",
			Password: "s3cr3t",
			Database: "people",
			Port:     3306,
		}, creds)
	}
}

// TestSecretsManagerKeepsPasswordWhitespace expects that surrounding whitespace is removed from
// the other values but kept in the password.
func TestSecretsManagerKeepsPasswordWhitespace(t *testing.T) {
	client := &fakeSecretsManager{secret: aws.String(
		`{"DB_HOST": " db.internal ", "DB_USER": "app ", "DB_PASSWORD": " p@ss ", "DB_NAME": "people", "DB_PORT": " 3306"}`,
	)}
	creds, err := NewSecretsManagerWithClient(client, "my-app-db-credentials").Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Credentials{
		Host:     "db.internal",
		User:     "app",
		Password: " p@ss ",
		Database: "people",
		Port:     3306,
	}, creds)
}

// TestSecretsManagerUnavailable expects ErrCredentialUnavailable for a failing fetch and for every
// kind of unusable payload.
func TestSecretsManagerUnavailable(t *testing.T) {
	cases := map[string]*fakeSecretsManager{
		"fetch fails":    {err: errors.New("AccessDeniedException")},
		"no string":      {},
		"empty string":   {secret: aws.String("")},
		"not JSON":       {secret: aws.String("DB_HOST=localhost")},
		"missing host":   {secret: aws.String(`{"DB_USER": "app", "DB_PASSWORD": "x", "DB_NAME": "people", "DB_PORT": 3306}`)},
		"empty user":     {secret: aws.String(`{"DB_HOST": "h", "DB_USER": "", "DB_PASSWORD": "x", "DB_NAME": "people", "DB_PORT": 3306}`)},
		"missing port":   {secret: aws.String(`{"DB_HOST": "h", "DB_USER": "app", "DB_PASSWORD": "x", "DB_NAME": "people"}`)},
		"invalid port":   {secret: aws.String(`{"DB_HOST": "h", "DB_USER": "app", "DB_PASSWORD": "x", "DB_NAME": "people", "DB_PORT": "mysql"}`)},
		"negative port":  {secret: aws.String(`{"DB_HOST": "h", "DB_USER": "app", "DB_PASSWORD": "x", "DB_NAME": "people", "DB_PORT": -1}`)},
		"password typed": {secret: aws.String(`{"DB_HOST": "h", "DB_USER": "app", "DB_PASSWORD": true, "DB_NAME": "people", "DB_PORT": 3306}`)},
	}
	for name, client := range cases {
		provider := NewSecretsManagerWithClient(client, "my-app-db-credentials")
		_, err := provider.Resolve(context.Background())
		assert.ErrorIs(t, err, ErrCredentialUnavailable, name)
	}
}

// TestEnvResolve expects that the environment provider reads the same keys as the secret and
// accepts an empty password.
func TestEnvResolve(t *testing.T) {
	t.Setenv(KeyHost, "localhost")
	t.Setenv(KeyUser, "root")
	t.Setenv(KeyPassword, "")
	t.Setenv(KeyName, "test")
	t.Setenv(KeyPort, "3307")

	creds, err := Env{}.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Credentials{Host: "localhost", User: "root", Database: "test", Port: 3307}, creds)
}

// TestEnvResolveMissing expects ErrCredentialUnavailable naming the missing key.
func TestEnvResolveMissing(t *testing.T) {
	t.Setenv(KeyHost, "localhost")
	t.Setenv(KeyUser, "root")
	t.Setenv(KeyPassword, "pwd")
	t.Setenv(KeyPort, "3306")
	t.Setenv(KeyName, "")
	os.Unsetenv(KeyName)

	_, err := Env{}.Resolve(context.Background())
	assert.ErrorIs(t, err, ErrCredentialUnavailable)
	assert.Contains(t, err.Error(), KeyName)
}

// TestDSN expects a go-sql-driver/mysql DSN with time parsing enabled.
func TestDSN(t *testing.T) {
	creds := Credentials{Host: "db.internal", User: "app", Password: "s3cr3t", Database: "people", Port: 3306}
	dsn := creds.DSN()
	assert.Contains(t, dsn, "app:s3cr3t@tcp(db.internal:3306)/people")
	assert.Contains(t, dsn, "parseTime=true")
	assert.NotContains(t, creds.String(), "s3cr3t")
}
