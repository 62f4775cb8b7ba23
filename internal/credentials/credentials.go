// Package credentials resolves the connection parameters of the persons database. The parameters
// are resolved once at process start and then handed to the store explicitly.
package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"gitlab.com/dirk.krummacker/persons-service/internal/config"
)

// ErrCredentialUnavailable is returned when the credentials cannot be fetched or are incomplete.
var ErrCredentialUnavailable = errors.New("database credentials unavailable")

// Keys of the credential payload. The secret and the environment use the same names.
const (
	KeyHost     = "DB_HOST"
	KeyUser     = "DB_USER"
	KeyPassword = "DB_PASSWORD"
	KeyName     = "DB_NAME"
	KeyPort     = "DB_PORT"
)

// Credentials are the parameters needed to open a connection to the database.
type Credentials struct {
	Host     string
	User     string
	Password string
	Database string
	Port     int
}

// Provider resolves database credentials.
type Provider interface {
	// Resolve returns the credentials or an error wrapping ErrCredentialUnavailable.
	Resolve(ctx context.Context) (Credentials, error)

	// Name identifies the provider in log output. It never contains secret material.
	Name() string
}

// New returns the provider selected by the configuration.
func New(ctx context.Context, cfg *config.Config) (Provider, error) {
	switch cfg.Credentials.Source {
	case "secretsmanager":
		provider, err := NewSecretsManager(ctx, cfg.Credentials.SecretName, cfg.Credentials.Region)
		if err != nil {
			return nil, err
		}
		return provider, nil
	case "env":
		return Env{}, nil
	default:
		return nil, fmt.Errorf("unknown credentials source %q", cfg.Credentials.Source)
	}
}

// DSN returns the data source name for the mysql driver.
func (c Credentials) DSN() string {
	dsnConfig := mysql.NewConfig()
	dsnConfig.User = c.User
	dsnConfig.Passwd = c.Password
	dsnConfig.Net = "tcp"
	dsnConfig.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	dsnConfig.DBName = c.Database
	dsnConfig.ParseTime = true
	return dsnConfig.FormatDSN()
}

// String hides the password so that credentials can be logged safely.
func (c Credentials) String() string {
	return fmt.Sprintf("%s@%s:%d/%s", c.User, c.Host, c.Port, c.Database)
}

// fromValues builds credentials out of a key/value lookup. Every key is required and must be
// non-empty, except the password which only has to be present and is taken byte for byte. The
// port must be a positive integer.
func fromValues(lookup func(key string) (string, bool)) (Credentials, error) {
	var missing []string
	get := func(key string) string {
		value, ok := lookup(key)
		if key == KeyPassword {
			if !ok {
				missing = append(missing, key)
			}
			return value
		}
		value = strings.TrimSpace(value)
		if !ok || value == "" {
			missing = append(missing, key)
		}
		return value
	}
	creds := Credentials{
		Host:     get(KeyHost),
		User:     get(KeyUser),
		Password: get(KeyPassword),
		Database: get(KeyName),
	}
	port := get(KeyPort)
	if len(missing) > 0 {
		return Credentials{}, fmt.Errorf("%w: missing %s", ErrCredentialUnavailable, strings.Join(missing, ", "))
	}
	var err error
	creds.Port, err = strconv.Atoi(port)
	if err != nil || creds.Port <= 0 {
		return Credentials{}, fmt.Errorf("%w: invalid %s %q", ErrCredentialUnavailable, KeyPort, port)
	}
	return creds, nil
}

// parseSecret decodes the JSON secret payload. Values may be strings or numbers, so that a port
// stored as 3306 and one stored as "3306" are both accepted.
func parseSecret(payload string) (Credentials, error) {
	var raw map[string]any
	decoder := json.NewDecoder(strings.NewReader(payload))
	decoder.UseNumber()
	if err := decoder.Decode(&raw); err != nil {
		return Credentials{}, fmt.Errorf("%w: malformed secret: %v", ErrCredentialUnavailable, err)
	}
	return fromValues(func(key string) (string, bool) {
		switch v := raw[key].(type) {
		case string:
			return v, true
		case json.Number:
			return v.String(), true
		default:
			return "", false
		}
	})
}
