package utils

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/upb/research-assistant/models"
)

var validate = newValidator()

// newValidator registers the "category" tag, which accepts the four
// corpus categories spelled exactly.
func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return models.Category(fl.Field().String()).IsValid()
	}); err != nil {
		panic(err)
	}
	return v
}

// fieldMessages renders a failed tag for a field and the tag parameter.
var fieldMessages = map[string]func(field, param string) string{
	"required": func(f, _ string) string { return f + " is required" },
	"min":      func(f, p string) string { return f + " must be at least " + p },
	"max":      func(f, p string) string { return f + " must be at most " + p },
	"gte":      func(f, p string) string { return f + " must be greater than or equal to " + p },
	"lte":      func(f, p string) string { return f + " must be less than or equal to " + p },
	"oneof":    func(f, p string) string { return f + " must be one of: " + p },
	"category": func(f, _ string) string { return f + " must be a known category" },
}

// ValidationError reports every failed field of a request struct.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string { return e.Message }

// ValidateStruct runs the struct's validate tags. Tag failures come back
// as a *ValidationError keyed by field name.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	var failures validator.ValidationErrors
	if !errors.As(err, &failures) {
		return err
	}

	fields := make(map[string]string, len(failures))
	for _, fe := range failures {
		if render, ok := fieldMessages[fe.Tag()]; ok {
			fields[fe.Field()] = render(fe.Field(), fe.Param())
			continue
		}
		fields[fe.Field()] = fmt.Sprintf("%s validation failed on '%s' tag", fe.Field(), fe.Tag())
	}
	return &ValidationError{Message: "Validation failed", Fields: fields}
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// GetValidationFields returns the per-field messages of a ValidationError,
// or nil for any other error.
func GetValidationFields(err error) map[string]string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Fields
	}
	return nil
}
