package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Rule limits one method on a route family. Prefixes ending in "/" match
// every path below them, so all /steps/{id} writes share one bucket.
type Rule struct {
	Name   string        // Bucket name reported in logs and metrics
	Method string        // HTTP method
	Path   string        // Exact path, or a prefix when it ends with "/"
	Limit  int           // Requests per Window; 0 means unlimited
	Window time.Duration // Refill window
	Burst  int           // Bucket capacity; defaults to Limit
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	IdleTTL         time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	Rules           []Rule
}

// LoadConfig reads RATE_LIMIT_* environment variables.
func LoadConfig() *Config {
	if !getEnvBool("RATE_LIMIT_ENABLED", true) {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    getEnvInt("RATE_LIMIT_DEFAULT_LIMIT", 600),
		DefaultWindow:   getEnvDuration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		CleanupInterval: getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		IdleTTL:         getEnvDuration("RATE_LIMIT_IDLE_TTL", time.Hour),
		Whitelist:       parseIPList(os.Getenv("RATE_LIMIT_WHITELIST")),
		Blacklist:       parseIPList(os.Getenv("RATE_LIMIT_BLACKLIST")),
		Rules:           DefaultRules(),
	}
}

// DefaultRules returns the built-in per-route limits.
func DefaultRules() []Rule {
	writes := func(name, method, path string) Rule {
		return Rule{Name: name, Method: method, Path: path, Limit: 120, Window: time.Minute, Burst: 20}
	}
	return []Rule{
		// Credential endpoints are the main brute-force target.
		{Name: "auth", Method: "POST", Path: "/auth/", Limit: 10, Window: time.Minute, Burst: 5},
		{Name: "auth", Method: "PUT", Path: "/auth/", Limit: 10, Window: time.Minute, Burst: 5},

		writes("projects", "POST", "/projects"),
		writes("projects", "POST", "/projects/"),
		writes("projects", "PUT", "/projects/"),
		writes("steps", "PUT", "/steps/"),
		writes("steps", "POST", "/steps/"),
		writes("steps", "DELETE", "/steps/"),
		writes("feedback", "PUT", "/feedback/"),
		writes("feedback", "POST", "/feedback/"),
		writes("deadlines", "PUT", "/deadlines/"),
		writes("team", "DELETE", "/collaborators/"),
		writes("team", "DELETE", "/editors/"),
		writes("files", "DELETE", "/files/"),

		{Name: "health", Method: "GET", Path: "/health", Limit: 0},
		{Name: "metrics", Method: "GET", Path: "/metrics", Limit: 0},
	}
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// parseIPList parses a comma-separated list of IP addresses into a set.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
