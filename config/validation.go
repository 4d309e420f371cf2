package config

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// requirements lists the settings that must be non-empty in each environment.
var requirements = map[Environment][]string{
	Development: {"JWT_SECRET"},
	Test:        {"JWT_SECRET"},
	CI:          {"JWT_SECRET", "DB_PASSWORD"},
	Production:  {"JWT_SECRET", "DB_PASSWORD", "REDIS_URL"},
}

// ValidateConfig checks if the configuration meets the requirements for env
func ValidateConfig(cfg *Config, env Environment) error {
	values := map[string]string{
		"JWT_SECRET":  cfg.JWTSecret,
		"DB_PASSWORD": cfg.DBPassword,
		"REDIS_URL":   cfg.RedisURL,
	}

	var errs []error
	for _, name := range requirements[env] {
		if values[name] == "" {
			errs = append(errs, ValidationError{Field: name, Message: "is required"})
		}
	}

	// sqlite needs no password
	if cfg.DBDriver == "sqlite" && env != Production {
		errs = dropField(errs, "DB_PASSWORD")
	}

	switch cfg.DBDriver {
	case "postgres", "sqlite":
	default:
		errs = append(errs, ValidationError{Field: "DB_DRIVER", Message: "must be postgres or sqlite"})
	}

	switch cfg.ImageStorage {
	case "local", "s3":
	default:
		errs = append(errs, ValidationError{Field: "IMAGE_STORAGE", Message: "must be local or s3"})
	}

	if len(cfg.CORSOrigins) == 0 {
		errs = append(errs, ValidationError{Field: "CORS_ORIGINS", Message: "must list at least one origin"})
	}
	for _, origin := range cfg.CORSOrigins {
		if !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			errs = append(errs, ValidationError{Field: "CORS_ORIGINS", Message: fmt.Sprintf("%q must start with http:// or https://", origin)})
		}
	}

	if cfg.PageSize < 1 || cfg.PageSize > cfg.MaxPageSize {
		errs = append(errs, ValidationError{Field: "PAGE_SIZE", Message: fmt.Sprintf("must be between 1 and %d", cfg.MaxPageSize)})
	}

	if env == Production && len(cfg.JWTSecret) < 32 && cfg.JWTSecret != "" {
		errs = append(errs, ValidationError{Field: "JWT_SECRET", Message: "must be at least 32 characters in production"})
	}

	return errors.Join(errs...)
}

func dropField(errs []error, field string) []error {
	kept := errs[:0]
	for _, err := range errs {
		var verr ValidationError
		if errors.As(err, &verr) && verr.Field == field {
			continue
		}
		kept = append(kept, err)
	}
	return kept
}
