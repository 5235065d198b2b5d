package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// New creates a new validator instance with custom validations registered.
// This ensures consistent validation across the application and tests.
//
// Field names in validation errors are reported by their JSON name, and
// decimal.Decimal fields can use the numeric tags (gt, lte, ...).
func New() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	// Register custom "notblank" validator - rejects whitespace-only strings
	// Used for coupon codes, which must have meaningful content
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		str, ok := fl.Field().Interface().(string)
		if !ok {
			return true // Not a string, let other validators handle it
		}
		return strings.TrimSpace(str) != ""
	})

	// Register custom "cents" validator - at most 2 decimal places.
	// Decimal fields arrive here as float64 through the custom type func above.
	_ = v.RegisterValidation("cents", func(fl validator.FieldLevel) bool {
		var d decimal.Decimal
		switch val := fl.Field().Interface().(type) {
		case float64:
			d = decimal.NewFromFloat(val)
		case decimal.Decimal:
			d = val
		default:
			return true
		}
		return d.Equal(d.Round(2))
	})

	return v
}
