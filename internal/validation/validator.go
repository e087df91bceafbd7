// Package validation checks user-submitted forms and API payloads.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var usernameRegex = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	_ = validate.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameRegex.MatchString(fl.Field().String())
	})
}

// FieldErrors maps a form field name to the first message raised for it.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for field, msg := range fe {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	return strings.Join(parts, "; ")
}

// Struct validates s and returns FieldErrors for every failing field, or nil.
// s must be a pointer to a struct with `validate` tags.
func Struct(s interface{}) FieldErrors {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{"_": err.Error()}
	}

	t := reflect.TypeOf(s)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		var tag string
		if sf, ok := t.FieldByName(fe.StructField()); ok {
			tag = sf.Tag.Get("validate")
		}
		out[fe.Field()] = message(fe, tag)
	}
	return out
}

func message(fe validator.FieldError, tag string) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "min", "max":
		lo, hi := lengthBounds(tag)
		switch {
		case lo != "" && hi != "":
			return fmt.Sprintf("Field must be between %s and %s characters long.", lo, hi)
		case hi != "":
			return fmt.Sprintf("Field cannot be longer than %s characters.", hi)
		default:
			return fmt.Sprintf("Field must be at least %s characters long.", lo)
		}
	case "email":
		return "Invalid email address."
	case "username":
		return "Only letters, numbers, underscores and hyphens are allowed."
	case "oneof":
		return fmt.Sprintf("Must be one of: %s.", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "eqfield":
		return "Passwords do not match."
	default:
		return "Invalid value."
	}
}

func lengthBounds(tag string) (lo, hi string) {
	for _, rule := range strings.Split(tag, ",") {
		switch {
		case strings.HasPrefix(rule, "min="):
			lo = strings.TrimPrefix(rule, "min=")
		case strings.HasPrefix(rule, "max="):
			hi = strings.TrimPrefix(rule, "max=")
		}
	}
	return lo, hi
}
