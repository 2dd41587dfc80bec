package config

import (
	"os"
	"strings"
)

// Environment selects config requirements and the logger preset.
type Environment string

const (
	Development Environment = "development"
	Test        Environment = "test"
	CI          Environment = "ci"
	Production  Environment = "production"
)

// ParseEnvironment maps a LARDER_ENV or ENV value onto a known environment.
// Unknown and empty values mean development.
func ParseEnvironment(raw string) Environment {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return Production
	case "test":
		return Test
	case "ci":
		return CI
	}
	return Development
}

// GetEnvironment reads the environment from LARDER_ENV, then ENV. CI=true
// wins over both.
func GetEnvironment() Environment {
	if os.Getenv("CI") == "true" {
		return CI
	}
	raw := os.Getenv("LARDER_ENV")
	if raw == "" {
		raw = os.Getenv("ENV")
	}
	return ParseEnvironment(raw)
}

func IsProduction() bool {
	return GetEnvironment() == Production
}

// IsTest reports whether we run under tests or CI.
func IsTest() bool {
	switch GetEnvironment() {
	case Test, CI:
		return true
	}
	return false
}
