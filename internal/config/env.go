package config

import (
	"fmt"
	"os"
	"strings"
)

func Development() bool {
	development, ok := os.LookupEnv("DEVELOPMENT")
	if !ok {
		return false
	}
	return development != "0"
}

func BasePath() string {
	return os.Getenv("APP_BASE_PATH")
}

// Port defaults to 8080.
func Port() string {
	if port, ok := os.LookupEnv("APP_PORT"); ok && port != "" {
		return port
	}
	return "8080"
}

func requireEnv(name string) (string, error) {
	value, ok := os.LookupEnv(name)
	if !ok {
		return "", fmt.Errorf("no %s env variable set", name)
	}
	return value, nil
}

/*
loadSecret reads name from the environment, falling back to the contents of
the file named by name_FILE.
*/
func loadSecret(name string) ([]byte, error) {
	if value, ok := os.LookupEnv(name); ok {
		return []byte(value), nil
	}
	path, ok := os.LookupEnv(name + "_FILE")
	if !ok {
		return nil, fmt.Errorf("no %s or %s_FILE env variable set", name, name)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s_FILE: %w", name, err)
	}
	return data, nil
}

func secretSet(name string) bool {
	_, ok := os.LookupEnv(name)
	if !ok {
		_, ok = os.LookupEnv(name + "_FILE")
	}
	return ok
}

func trimmed(b []byte) string {
	return strings.TrimSpace(string(b))
}
