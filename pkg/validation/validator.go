// Package validation provides payload validation using go-playground/validator
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	apierrors "github.com/yshengliao/antoree/pkg/errors"
)

// Validator wraps go-playground/validator
type Validator struct {
	validator *validator.Validate
}

var (
	defaultOnce      sync.Once
	defaultValidator *Validator
)

// NewValidator creates a new validator instance with custom rules
func NewValidator() *Validator {
	v := validator.New()

	// Report yaml/json names instead of Go field names
	v.RegisterTagNameFunc(fieldName)

	RegisterCustomValidators(v)

	return &Validator{
		validator: v,
	}
}

// Default returns a shared validator. validator.Validate caches struct
// metadata and is safe for concurrent use.
func Default() *Validator {
	defaultOnce.Do(func() {
		defaultValidator = NewValidator()
	})
	return defaultValidator
}

// Validate validates a struct
func (v *Validator) Validate(i any) error {
	if err := v.validator.Struct(i); err != nil {
		return NewValidationError(err)
	}
	return nil
}

// Var validates a single value against a tag
func (v *Validator) Var(field any, tag string) error {
	if err := v.validator.Var(field, tag); err != nil {
		return NewValidationError(err)
	}
	return nil
}

// getValidationMessage returns a custom error message for validation errors
func getValidationMessage(field, tag, param string) string {
	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, param)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, param)
	case "httpmethod":
		return fmt.Sprintf("%s must be one of GET, POST, PUT, DELETE, PATCH", field)
	case "routepath":
		return fmt.Sprintf("%s must start with / and use :name placeholders", field)
	case "currency":
		return fmt.Sprintf("%s must be a valid currency code", field)
	case "phone":
		return fmt.Sprintf("%s must be a valid phone number", field)
	case "lessonminutes":
		return fmt.Sprintf("%s must be one of 25, 45 or 60 minutes", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, tag)
	}
}

var (
	routePathPattern = regexp.MustCompile(`^/([A-Za-z0-9._~\-]+|:[A-Za-z][A-Za-z0-9_]*)(/([A-Za-z0-9._~\-]+|:[A-Za-z][A-Za-z0-9_]*))*/?$|^/$`)
	phonePattern     = regexp.MustCompile(`^\+?[0-9][0-9 \-]{6,18}[0-9]$`)
)

// RegisterCustomValidators registers all custom validation rules
func RegisterCustomValidators(v *validator.Validate) {
	v.RegisterValidation("httpmethod", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case "GET", "POST", "PUT", "DELETE", "PATCH":
			return true
		}
		return false
	})

	v.RegisterValidation("routepath", func(fl validator.FieldLevel) bool {
		return routePathPattern.MatchString(fl.Field().String())
	})

	v.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
		currency := fl.Field().String()
		validCurrencies := []string{"VND", "USD", "EUR", "GBP", "JPY", "SGD"}
		for _, valid := range validCurrencies {
			if currency == valid {
				return true
			}
		}
		return false
	})

	v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})

	// Lesson lengths offered by the marketplace
	v.RegisterValidation("lessonminutes", func(fl validator.FieldLevel) bool {
		switch fl.Field().Int() {
		case 25, 45, 60:
			return true
		}
		return false
	})
}

// ValidationError represents a validation error
type ValidationError struct {
	Errors map[string]string `json:"errors"`
}

// NewValidationError creates a validation error from validator errors
func NewValidationError(err error) *ValidationError {
	ve := &ValidationError{
		Errors: make(map[string]string),
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			field := namespaceField(e.Namespace())
			ve.Errors[field] = getValidationMessage(field, e.Tag(), e.Param())
		}
	} else if err != nil {
		ve.Errors["_"] = err.Error()
	}

	return ve
}

// Error implements the error interface
func (ve *ValidationError) Error() string {
	if len(ve.Errors) == 0 {
		return "validation failed"
	}

	fields := make([]string, 0, len(ve.Errors))
	for field := range ve.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	msgs := make([]string, 0, len(fields))
	for _, field := range fields {
		msgs = append(msgs, ve.Errors[field])
	}
	return strings.Join(msgs, "; ")
}

// Code returns the client error code for validation failures
func (ve *ValidationError) Code() apierrors.ErrorCode {
	return apierrors.CodeValidationFailed
}

// namespaceField strips the root struct name from a validator namespace,
// so "LoginRequest.email" becomes "email".
func namespaceField(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

// fieldName prefers the json name, then the yaml name, then the Go name
func fieldName(f reflect.StructField) string {
	for _, key := range []string{"json", "yaml"} {
		name := strings.SplitN(f.Tag.Get(key), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}
