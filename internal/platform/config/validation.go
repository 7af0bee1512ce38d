package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// validate reports fields by their koanf key, so a message names the same
// path an operator sets in YAML or APP_ env vars.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("koanf"), ",")
		if name == "" {
			return fld.Name
		}

		return name
	})

	_ = v.RegisterValidation("amount", validateAmount)
	v.RegisterStructValidation(validateRetry, RetryConfig{})
	v.RegisterStructValidation(validateStorage, StorageConfig{})
	v.RegisterStructValidation(validatePayment, Config{})

	return v
}

// Validate checks c before anything is started. Every problem is reported
// at once.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	problems := make([]string, 0, len(fieldErrs))
	for _, e := range fieldErrs {
		problems = append(problems, describe(e))
	}

	return fmt.Errorf("config validation failed:\n  %s", strings.Join(problems, "\n  "))
}

// validateAmount accepts a non-negative decimal money amount.
func validateAmount(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())

	return err == nil && !d.IsNegative()
}

func validateRetry(sl validator.StructLevel) {
	r, _ := sl.Current().Interface().(RetryConfig)
	if r.InitialInterval > 0 && r.MaxInterval > 0 && r.MaxInterval < r.InitialInterval {
		sl.ReportError(r.MaxInterval, "max_interval", "MaxInterval", "gtefield", "initial_interval")
	}
}

func validateStorage(sl validator.StructLevel) {
	s, _ := sl.Current().Interface().(StorageConfig)
	if s.MaxOpenConns > 0 && s.MaxIdleConns > s.MaxOpenConns {
		sl.ReportError(s.MaxIdleConns, "max_idle_conns", "MaxIdleConns", "ltefield", "max_open_conns")
	}
}

// validatePayment needs the app environment, so it runs on the root.
func validatePayment(sl validator.StructLevel) {
	c, _ := sl.Current().Interface().(Config)
	if c.Payment.Provider == PaymentProviderHTTP && c.App.Environment == "prod" && c.Payment.APIKey == "" {
		sl.ReportError(c.Payment.APIKey, "payment.api_key", "APIKey", "required_in_prod", "")
	}

	if c.Payment.Provider == PaymentProviderSandbox && c.App.Environment == "prod" {
		sl.ReportError(c.Payment.Provider, "payment.provider", "Provider", "not_in_prod", PaymentProviderSandbox)
	}
}

func describe(e validator.FieldError) string {
	field := fieldPath(e.Namespace())

	switch e.Tag() {
	case "required":
		return field + " is required"
	case "required_if":
		return fmt.Sprintf("%s is required when %s", field, e.Param())
	case "required_unless":
		return fmt.Sprintf("%s is required unless %s", field, e.Param())
	case "required_in_prod":
		return field + " is required in prod"
	case "not_in_prod":
		return fmt.Sprintf("%s must not be %s in prod", field, e.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "gtefield":
		return fmt.Sprintf("%s must not be below %s", field, e.Param())
	case "ltefield":
		return fmt.Sprintf("%s must not exceed %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "url":
		return field + " must be a valid URL"
	case "amount":
		return field + " must be a non-negative decimal amount"
	default:
		return fmt.Sprintf("%s failed validation: %s", field, e.Tag())
	}
}

// fieldPath drops the root struct name: "Config.server.read_timeout"
// becomes "server.read_timeout". Errors reported on the root already carry
// their full path.
func fieldPath(namespace string) string {
	_, rest, found := strings.Cut(namespace, ".")
	if !found {
		return namespace
	}

	return rest
}
