// Package env reads raw environment variables for the few knobs that must
// resolve before envconfig runs (logger format at bootstrap).
package env

import "os"

// Get returns the named environment variable, or fallback when unset or
// empty.
func Get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
