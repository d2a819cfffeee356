// Package environment provides utilities for loading configuration from
// environment variables, with namespacing and struct-tag driven defaults.
package environment

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// LoadEnv loads a .env file from the working directory when one exists.
// A missing file is not an error: production deployments configure the
// process environment directly.
func LoadEnv() error {
	return LoadPath("")
}

// LoadPath loads variables from the .env file at p, or from ./.env when p is
// empty. Variables already present in the environment win.
func LoadPath(p string) error {
	var err error
	if p != "" {
		err = godotenv.Load(p)
	} else {
		err = godotenv.Load()
	}
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading env file: %w", err)
	}
	return nil
}

// GetEnvOrDefault retrieves an environment variable value, returning fallback
// when the variable is not set.
//
//	port := GetEnvOrDefault("PORT", "8080")
func GetEnvOrDefault(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// GetNamespaceEnvKey joins a namespace and a key with an underscore.
//
//	GetNamespaceEnvKey("YATA", "SYNC_TIMEOUT") // "YATA_SYNC_TIMEOUT"
//	GetNamespaceEnvKey("", "SYNC_TIMEOUT")     // "SYNC_TIMEOUT"
func GetNamespaceEnvKey(namespace, key string) string {
	if namespace == "" {
		return key
	}
	return fmt.Sprintf("%s_%s", namespace, key)
}

// GetNamespaceEnvOrDefault retrieves a namespaced variable, returning fallback
// when it is not set.
func GetNamespaceEnvOrDefault(namespace, key, fallback string) string {
	return GetEnvOrDefault(GetNamespaceEnvKey(namespace, key), fallback)
}
