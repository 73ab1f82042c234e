package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(field reflect.StructField) string {
			return field.Tag.Get("koanf")
		})
	})
	return validate
}

// Validate checks field ranges and enums. Failures are reported as one
// *InvalidConfigError listing every bad key.
func (c *Config) Validate() error {
	err := getValidator().Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate config: %w", err)
	}

	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		problems = append(problems, describe(fe))
	}
	return &InvalidConfigError{
		Problems: problems,
		Hint:     "Run 'reco-hub config show' to see the effective values",
	}
}

// describe renders a field error as "ledger.backend: must be one of csv sqlite (got "x")".
func describe(fe validator.FieldError) string {
	key := strings.ToLower(strings.TrimPrefix(fe.Namespace(), "Config."))
	var rule string
	switch fe.Tag() {
	case "oneof":
		rule = "must be one of " + fe.Param()
	case "gte":
		rule = "must be >= " + fe.Param()
	case "lte":
		rule = "must be <= " + fe.Param()
	default:
		rule = "failed " + fe.Tag()
	}
	return fmt.Sprintf("%s: %s (got %v)", key, rule, fe.Value())
}
