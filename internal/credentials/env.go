package credentials

import (
	"context"
	"os"
)

// Env resolves credentials from the process environment. It is meant for local development and
// the integration tests, where no secret store is available.
type Env struct{}

func (Env) Name() string {
	return "env"
}

func (Env) Resolve(context.Context) (Credentials, error) {
	return fromValues(os.LookupEnv)
}
