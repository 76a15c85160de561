// Package validate holds the local input failures caught before a request
// reaches the backend. Struct rules are declared with validator tags and the
// first failing field is reported in the backend's {field, message} shape.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/shopspring/decimal"
)

type Error struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func Invalid(field, message string) *Error {
	return &Error{Field: field, Message: message}
}

func As(err error) (*Error, bool) {
	var vErr *Error
	if errors.As(err, &vErr) {
		return vErr, true
	}
	return nil, false
}

var (
	once     sync.Once
	instance *validator.Validate
)

func engine() *validator.Validate {
	once.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())
		Configure(instance)
	})
	return instance
}

// Configure teaches v the rules used across the app: fields are named by
// their json key, notblank rejects whitespace-only strings and decimals
// compare as numbers. The gin binding engine is configured the same way.
func Configure(v *validator.Validate) {
	v.RegisterTagNameFunc(fieldName)
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})
	_ = v.RegisterValidation("notblank", validators.NotBlank)
}

// Struct checks every tagged field of s.
func Struct(s any) error {
	return FromValidator(engine().Struct(s))
}

// StructExcept checks s but skips the named Go fields.
func StructExcept(s any, fields ...string) error {
	return FromValidator(engine().StructExcept(s, fields...))
}

// FromValidator converts the first validator failure into an *Error. Any
// other error is returned unchanged.
func FromValidator(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	fe := fieldErrs[0]
	return Invalid(fe.Field(), message(fe))
}

func message(fe validator.FieldError) string {
	label := humanize(fe.Field())
	switch fe.Tag() {
	case "required", "notblank":
		return label + " is required"
	case "email":
		return label + " is invalid"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "gt":
		if fe.Param() == "0" {
			return label + " must be greater than zero"
		}
		return fmt.Sprintf("%s must be greater than %s", label, fe.Param())
	case "gte":
		if fe.Param() == "0" {
			return label + " cannot be negative"
		}
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "eqfield":
		return fmt.Sprintf("%ss do not match", fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return label + " is invalid"
	}
}

func fieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		r := []rune(f.Name)
		r[0] = unicode.ToLower(r[0])
		return string(r)
	}
	return name
}

// humanize turns a json key such as shippingAddress into "Shipping address".
func humanize(key string) string {
	var b strings.Builder
	for i, r := range key {
		switch {
		case i == 0:
			b.WriteRune(unicode.ToUpper(r))
		case unicode.IsUpper(r):
			b.WriteByte(' ')
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
