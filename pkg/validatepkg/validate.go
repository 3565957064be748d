// Package validatepkg provides the input validator shared by delivery layers.
package validatepkg

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ValidDecimal validates whether the field holds a decimal number.
var ValidDecimal validator.Func = func(fl validator.FieldLevel) bool {
	if s, ok := fl.Field().Interface().(string); ok {
		_, err := decimal.NewFromString(s)
		return err == nil
	}
	return false
}

// New returns a validator that names fields after their label tag and knows
// the decimal tag.
func New() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if label := f.Tag.Get("label"); label != "" {
			return label
		}
		return f.Name
	})

	if err := v.RegisterValidation("decimal", ValidDecimal); err != nil {
		panic(err)
	}

	return v
}

// GetErrorMsg returns the human readable suffix for a failed validation.
func GetErrorMsg(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return " is required"
	case "numeric", "number":
		return " must contain only digits"
	case "len":
		return " must have " + fe.Param() + " characters"
	case "min":
		return " must be at least " + fe.Param()
	case "max":
		return " must be at most " + fe.Param()
	case "oneof":
		return " must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "datetime":
		return " must be a date in DD/MM/YYYY format"
	case "decimal":
		return " must be a decimal number"
	}

	return " is invalid"
}

// Message describes err for the user. Only the first failed field is reported.
func Message(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		field := ve[0]
		return field.Field() + GetErrorMsg(field)
	}

	return err.Error()
}
