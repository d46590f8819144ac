package validation

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	apperrors "gearguard/pkg/errors"

	"github.com/go-playground/validator/v10"
)

// Accepted layouts for date inputs, tried in order.
var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

// Validator converts struct tag validation failures into field-level validation errors.
type Validator struct {
	validate *validator.Validate
}

// New creates and configures a validator. Field names are reported using their JSON tags.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	if err := registerRules(v); err != nil {
		panic("failed to register validation rules: " + err.Error())
	}

	return &Validator{validate: v}
}

func registerRules(v *validator.Validate) error {
	return v.RegisterValidation("notblank", isNotBlank)
}

func isNotBlank(fl validator.FieldLevel) bool {
	field := fl.Field()
	switch field.Kind() {
	case reflect.String:
		return strings.TrimSpace(field.String()) != ""
	case reflect.Ptr:
		return !field.IsNil() && strings.TrimSpace(field.Elem().String()) != ""
	default:
		return !field.IsZero()
	}
}

// Struct validates s and returns the first failure as an AppError, or nil.
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(validationErrors) == 0 {
		return apperrors.NewAppErrorWithCause(apperrors.ErrorCodeValidation, "Validation failed", err)
	}

	fe := validationErrors[0]
	return apperrors.FieldValidationError(fieldPath(fe), message(fe))
}

// fieldPath strips the top-level struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.Index(ns, "."); idx >= 0 {
		return ns[idx+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required", "notblank", "required_without":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters long", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s cannot exceed %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "isdefault":
		return fmt.Sprintf("%s cannot be set", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// ParseDate coerces a date input. Both full timestamps and plain dates are accepted.
func ParseDate(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, apperrors.FieldValidationError(field, fmt.Sprintf("%s is required", field))
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, apperrors.FieldValidationError(field, fmt.Sprintf("%s is not a valid date", field))
}
