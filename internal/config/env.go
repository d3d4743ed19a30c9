package config

import (
	"fmt"
	"os"
	"strconv"
)

// envInt reads an integer environment variable, returning def when unset.
func envInt(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: not an integer", key, raw)
	}
	return n, nil
}

// envString reads an environment variable, returning def when unset.
func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
