package config

import (
	"errors"
	"fmt"
	"strconv"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found in one pass.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msg := "configuration validation failed:"
	for _, v := range e {
		msg += "\n" + v.Error()
	}
	return msg
}

// ConfigRequirements defines required configuration for each environment
type ConfigRequirements struct {
	RequireJWTSecret    bool
	RequireDBPassword   bool
	MinJWTSecretLength  int
	AllowInsecureSQLite bool
}

var requirements = map[Environment]ConfigRequirements{
	Development: {AllowInsecureSQLite: true},
	Test:        {AllowInsecureSQLite: true},
	CI:          {RequireJWTSecret: true, AllowInsecureSQLite: true},
	Production:  {RequireJWTSecret: true, RequireDBPassword: true, MinJWTSecretLength: 32},
}

// ValidateConfig checks if the configuration meets the requirements for the current environment
func ValidateConfig(cfg *Config) error {
	env := GetEnvironment()
	reqs := requirements[env]

	var errs ValidationErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if p, err := strconv.Atoi(cfg.ServerPort); err != nil || p <= 0 || p > 65535 {
		add("SERVER_PORT", "%q is not a valid port", cfg.ServerPort)
	}

	switch cfg.StoreBackend {
	case StoreSQL:
		switch cfg.DBDriver {
		case "postgres":
			if cfg.DBHost == "" || cfg.DBName == "" {
				add("DB_HOST", "postgres requires DB_HOST and DB_NAME")
			}
			if reqs.RequireDBPassword && cfg.DBPassword == "" {
				add("DB_PASSWORD", "db_password secret is required in %s", env)
			}
		case "sqlite":
			if !reqs.AllowInsecureSQLite {
				add("DB_DRIVER", "sqlite is not allowed in %s", env)
			}
			if cfg.SQLitePath == "" {
				add("SQLITE_PATH", "must not be empty")
			}
		default:
			add("DB_DRIVER", "unknown driver %q", cfg.DBDriver)
		}
	case StoreFirestore:
		if cfg.FirebaseProjectID == "" {
			add("FIREBASE_PROJECT_ID", "required when STORE_BACKEND=firestore")
		}
	default:
		add("STORE_BACKEND", "unknown backend %q", cfg.StoreBackend)
	}

	switch cfg.AuthProvider {
	case AuthJWT:
		if cfg.JWTSecret == "" {
			if reqs.RequireJWTSecret {
				add("JWT_SECRET", "jwt_secret secret is required in %s", env)
			}
		} else if len(cfg.JWTSecret) < reqs.MinJWTSecretLength {
			add("JWT_SECRET", "must be at least %d characters", reqs.MinJWTSecretLength)
		}
	case AuthFirebase:
		if cfg.FirebaseProjectID == "" {
			add("FIREBASE_PROJECT_ID", "required when AUTH_PROVIDER=firebase")
		}
	default:
		add("AUTH_PROVIDER", "unknown provider %q", cfg.AuthProvider)
	}

	if cfg.RedisURL == "" && cfg.RedisHost != "" {
		if p, err := strconv.Atoi(cfg.RedisPort); err != nil || p <= 0 || p > 65535 {
			add("REDIS_PORT", "%q is not a valid port", cfg.RedisPort)
		}
	}
	if cfg.MutationRateLimit < 0 {
		add("MUTATION_RATE_LIMIT", "must not be negative")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// FieldErrors returns the per-field problems inside err, if any.
func FieldErrors(err error) []ValidationError {
	var errs ValidationErrors
	if errors.As(err, &errs) {
		return errs
	}
	return nil
}
