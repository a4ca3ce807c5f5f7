// Package secret stores data source passwords outside the config file.
package secret

import "runtime"

// SecretStore provides a pluggable interface for storing sensitive data
// such as data source passwords.
type SecretStore interface {
	// Set stores a secret value under the given key.
	Set(key string, value []byte) error

	// Get retrieves the secret value for the given key.
	// Returns empty slice and nil error if key does not exist.
	Get(key string) ([]byte, error)

	// Delete removes the secret for the given key.
	Delete(key string) error
}

// Backend names accepted by New.
const (
	BackendKeychain = "keychain"
	BackendEnv      = "env"
)

// New returns the store for backend. An empty backend picks the Keychain on
// macOS and environment variables elsewhere.
func New(backend string) SecretStore {
	switch backend {
	case BackendKeychain:
		return NewKeychainStore()
	case BackendEnv:
		return NewEnvStore(DefaultEnvPrefix)
	}
	if runtime.GOOS == "darwin" {
		return NewKeychainStore()
	}
	return NewEnvStore(DefaultEnvPrefix)
}
