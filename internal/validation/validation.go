package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// SlugPattern определяет допустимый формат slug категории
// Только строчные латинские буквы, цифры и дефисы между ними
var SlugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Error reports caller-supplied fields that failed required-field or format checks.
// It is always returned before any storage I/O is attempted.
type Error struct {
	Kind    string // entity kind, e.g. "product"
	Field   string // JSON field name
	Message string // human-readable reason
}

// Error implements error.
func (e *Error) Error() string {
	switch {
	case e.Kind != "" && e.Field != "":
		return fmt.Sprintf("%s: %s %s", e.Kind, e.Field, e.Message)
	case e.Field != "":
		return fmt.Sprintf("%s %s", e.Field, e.Message)
	default:
		return e.Message
	}
}

// New creates a validation Error.
func New(kind, field, message string) *Error {
	return &Error{Kind: kind, Field: field, Message: message}
}

// IsValidationError reports whether err is (or wraps) a validation Error.
func IsValidationError(err error) bool {
	var verr *Error
	return errors.As(err, &verr)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Используем JSON имена полей в сообщениях об ошибках
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})

	// decimal.Decimal проверяется числовыми тегами (gte, lte) как float64
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return SlugPattern.MatchString(fl.Field().String())
	})

	return v
}

// Struct validates struct tags of v and converts the first failure into an *Error for kind.
func Struct(kind string, v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return New(kind, "", err.Error())
	}

	fe := verrs[0]
	return New(kind, fe.Field(), message(fe))
}

// Partial validates v like Struct but only reports failures of the given JSON fields.
// It is used for patches, where absent fields keep their stored values.
func Partial(kind string, v any, fields []string) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return New(kind, "", err.Error())
	}

	for _, fe := range verrs {
		for _, f := range fields {
			if fe.Field() == f {
				return New(kind, fe.Field(), message(fe))
			}
		}
	}
	return nil
}

// RequiredString checks that a patch value for a required field is a non-blank string.
func RequiredString(kind, field string, value any) error {
	s, ok := value.(string)
	if !ok {
		return New(kind, field, "must be a string")
	}
	if strings.TrimSpace(s) == "" {
		return New(kind, field, "is required")
	}
	return nil
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters long", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s characters long", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "url":
		return "must be a valid URL"
	case "slug":
		return "can only contain lowercase letters, numbers and dashes"
	default:
		return "is invalid"
	}
}
