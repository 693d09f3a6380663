package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is the singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate checks the configuration using struct tags plus rules that tags
// cannot express. Returns a description of the first failure found.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	return validateCustomRules(cfg)
}

func validateCustomRules(cfg *Config) error {
	// The selected store's section must at least be present; type-specific
	// field checks live in the factories where the sections are decoded.
	switch cfg.Store.Type {
	case "badger":
		if v, _ := cfg.Store.Badger["path"].(string); v == "" {
			return fmt.Errorf("store.badger: path is required")
		}
	case "s3":
		if v, _ := cfg.Store.S3["bucket"].(string); v == "" {
			return fmt.Errorf("store.s3: bucket is required")
		}
		if v, _ := cfg.Store.S3["region"].(string); v == "" {
			return fmt.Errorf("store.s3: region is required")
		}
	}

	return nil
}

// formatValidationError converts validator errors into readable messages.
func formatValidationError(err error) error {
	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		if len(validationErrs) > 0 {
			e := validationErrs[0]
			return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)",
				e.Namespace(), e.Tag(), e.Value())
		}
	}
	return err
}
