package dto

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldErrors 字段 → 提示语，key 是 JSON 字段名
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for k, v := range fe {
		parts = append(parts, k+": "+v)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validateStruct(s any) FieldErrors {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{"_": err.Error()}
	}
	out := FieldErrors{}
	for _, fe := range verrs {
		field := fe.Field()
		// roles[0] → roles
		if i := strings.IndexByte(field, '['); i > 0 {
			field = field[:i]
		}
		if _, exists := out[field]; exists {
			continue
		}
		out[field] = message(field, fe)
	}
	return out
}

func message(field string, fe validator.FieldError) string {
	label := field
	if label != "" {
		label = strings.ToUpper(label[:1]) + label[1:]
	}
	switch fe.Tag() {
	case "required":
		return label + " cannot be blank"
	case "max":
		if fe.Kind() == reflect.Int {
			return fmt.Sprintf("%s cannot be greater than %s", label, fe.Param())
		}
		return fmt.Sprintf("%s cannot be longer than %s characters", label, fe.Param())
	case "min":
		if fe.Kind() == reflect.Int {
			return label + " must be a positive integer or zero"
		}
		return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
	case "email":
		return label + " is not a valid email address"
	case "startswith":
		return fmt.Sprintf("%s must start with %s", label, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid (%s)", label, fe.Tag())
	}
}
