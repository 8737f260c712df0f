package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator wraps go-playground/validator and formats its errors into
// one message per offending field, mirroring
// acdtunes-spacetraders's internal/infrastructure/config.Validator.
type Validator struct {
	v *validator.Validate
}

// NewValidator constructs a Validator using struct tag rules.
func NewValidator() *Validator {
	return &Validator{v: validator.New()}
}

// Validate runs struct-tag validation on i, returning a single error
// joining one line per failing field.
func (vd *Validator) Validate(i interface{}) error {
	if err := vd.v.Struct(i); err != nil {
		var verrs validator.ValidationErrors
		if !asValidationErrors(err, &verrs) {
			return err
		}
		var msgs []string
		for _, fe := range verrs {
			msgs = append(msgs, formatFieldError(fe))
		}
		return fmt.Errorf("config validation failed: %s", strings.Join(msgs, "; "))
	}
	return nil
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return false
	}
	*target = verrs
	return true
}

func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Namespace())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Namespace(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Namespace(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", fe.Namespace(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Namespace(), fe.Tag())
	}
}

// ValidateConfig validates cfg, the package-level convenience wrapper
// LoadConfig uses.
func ValidateConfig(cfg *Config) error {
	return NewValidator().Validate(cfg)
}
