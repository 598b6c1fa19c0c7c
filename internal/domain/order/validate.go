package order

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"
)

// Currencies is the fixed allow-list of accepted ISO 4217 codes.
// Input is uppercased before membership is checked; storage is uppercase.
var Currencies = map[string]struct{}{
	"ISK": {}, "USD": {}, "EUR": {}, "GBP": {}, "CAD": {}, "AUD": {},
	"JPY": {}, "CHF": {}, "SEK": {}, "NOK": {}, "DKK": {},
}

// ValidCurrency reports whether code is exactly 3 characters and, after
// uppercasing, a member of the allow-list.
func ValidCurrency(code string) bool {
	if len(code) != 3 {
		return false
	}
	_, ok := Currencies[strings.ToUpper(code)]
	return ok
}

// CurrencyList returns the allow-list sorted, for error messages.
func CurrencyList() []string {
	out := make([]string, 0, len(Currencies))
	for c := range Currencies {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// ValidationError reports one message per failing field. It always maps to
// HTTP 422.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		names = append(names, f)
	}
	sort.Strings(names)
	return fmt.Sprintf("validation failed: %s", strings.Join(names, ", "))
}

// validate is the shared validator instance with the custom rules for this
// domain registered. validator/v10 instances cache struct metadata, so a
// single instance is reused.
var validate = newValidate()

func newValidate() *validatorv10.Validate {
	v := validatorv10.New(validatorv10.WithRequiredStructEnabled())

	// Report fields by their json names so error bodies match the wire shape.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// notblank: non-empty after trimming whitespace.
	_ = v.RegisterValidation("notblank", func(fl validatorv10.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	// currency_code: member of the fixed allow-list, case-insensitive.
	_ = v.RegisterValidation("currency_code", func(fl validatorv10.FieldLevel) bool {
		return ValidCurrency(fl.Field().String())
	})

	return v
}

// checkStruct runs the validator on s and converts failures to a
// *ValidationError keyed by json field name.
func checkStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validatorv10.ValidationErrors)
	if !ok {
		return err
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fieldMessage(fe)
	}
	return &ValidationError{Fields: fields}
}

func fieldMessage(fe validatorv10.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field is required"
	case "notblank":
		return "cannot be empty or whitespace"
	case "gt":
		return "must be greater than 0"
	case "currency_code":
		return fmt.Sprintf("must be one of: %s", strings.Join(CurrencyList(), ", "))
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}
