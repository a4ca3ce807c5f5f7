package secret

import (
	"os"
	"strings"
)

// DefaultEnvPrefix is prepended to keys looked up by EnvStore.
const DefaultEnvPrefix = "PAGEDESIGNER_SECRET_"

// EnvStore implements SecretStore over process environment variables.
// The key "billing-db" maps to PAGEDESIGNER_SECRET_BILLING_DB.
type EnvStore struct {
	prefix string
}

func NewEnvStore(prefix string) *EnvStore {
	return &EnvStore{prefix: prefix}
}

func (e *EnvStore) Set(key string, value []byte) error {
	return os.Setenv(e.name(key), string(value))
}

func (e *EnvStore) Get(key string) ([]byte, error) {
	v, ok := os.LookupEnv(e.name(key))
	if !ok {
		return nil, nil
	}
	return []byte(v), nil
}

func (e *EnvStore) Delete(key string) error {
	return os.Unsetenv(e.name(key))
}

func (e *EnvStore) name(key string) string {
	upper := strings.ToUpper(key)
	return e.prefix + strings.Map(func(r rune) rune {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return '_'
	}, upper)
}
