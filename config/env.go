package config

import (
	"os"
	"strings"

	"storefront/models"
)

// Environment variable names read by the upstream clients.
const (
	EnvStoreURL       = "WC_URL"
	EnvStoreURLAlt    = "WOOCOMMERCE_URL"
	EnvStoreKey       = "WC_KEY"
	EnvStoreKeyAlt    = "WOOCOMMERCE_KEY"
	EnvStoreSecret    = "WC_SECRET"
	EnvStoreSecretAlt = "WOOCOMMERCE_SECRET"
)

// Source resolves configuration values. Upstream clients call it on every
// request instead of caching what it returned.
type Source interface {
	Lookup(key string) string
}

// EnvSource reads the process environment.
type EnvSource struct{}

func (EnvSource) Lookup(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

// MapSource is a fixed set of values, mostly useful in tests.
type MapSource map[string]string

func (m MapSource) Lookup(key string) string {
	return strings.TrimSpace(m[key])
}

// Credentials is the key/secret pair of the commerce REST API.
type Credentials struct {
	Key    string
	Secret string
}

func firstOf(src Source, keys ...string) string {
	for _, k := range keys {
		if v := src.Lookup(k); v != "" {
			return v
		}
	}
	return ""
}

// StoreBaseURL returns the upstream site root without a trailing slash.
func StoreBaseURL(src Source) (string, error) {
	base := strings.TrimRight(firstOf(src, EnvStoreURL, EnvStoreURLAlt), "/")
	if base == "" {
		return "", &models.ConfigurationError{Missing: EnvStoreURL}
	}
	return base, nil
}

// APICredentials returns the commerce API key pair.
func APICredentials(src Source) (Credentials, error) {
	key := firstOf(src, EnvStoreKey, EnvStoreKeyAlt)
	if key == "" {
		return Credentials{}, &models.ConfigurationError{Missing: EnvStoreKey}
	}
	secret := firstOf(src, EnvStoreSecret, EnvStoreSecretAlt)
	if secret == "" {
		return Credentials{}, &models.ConfigurationError{Missing: EnvStoreSecret}
	}
	return Credentials{Key: key, Secret: secret}, nil
}
