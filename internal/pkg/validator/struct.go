package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	playground "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var structValidator = newStructValidator()

func newStructValidator() *playground.Validate {
	v := playground.New(playground.WithRequiredStructEnabled())

	// Report fields by their JSON name.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	// Validate decimal amounts as their string form so tags like "decimal_gte0" work.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})

	_ = v.RegisterValidation("yearmonth", func(fl playground.FieldLevel) bool {
		return IsValidMonth(fl.Field().String())
	})
	_ = v.RegisterValidation("decimal_gte0", func(fl playground.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		return err == nil && !d.IsNegative()
	})
	_ = v.RegisterValidation("phone", func(fl playground.FieldLevel) bool {
		return IsValidPhoneNumber(fl.Field().String())
	})
	return v
}

// Struct runs the `validate` struct tags of s and converts failures into
// ValidationErrors keyed by JSON field name. It returns nil when s is valid.
func Struct(s interface{}) ValidationErrors {
	err := structValidator.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs playground.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return ValidationErrors{{Field: "request", Message: err.Error()}}
	}

	errs := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		errs = append(errs, ValidationError{Field: fe.Field(), Message: messageFor(fe)})
	}
	return errs
}

func messageFor(fe playground.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "max":
		return fmt.Sprintf("%s must not exceed %s characters", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "datetime":
		return field + " must be a valid date (YYYY-MM-DD)"
	case "yearmonth":
		return field + " must be in YYYY-MM format"
	case "decimal_gte0":
		return field + " must be a non-negative amount"
	case "phone":
		return field + " must be a valid phone number"
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "dive", "unique":
		return field + " contains invalid entries"
	default:
		return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
	}
}
