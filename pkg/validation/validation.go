package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/angelmondragon/records-backend/pkg/types"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const (
	MsgRequired      = "This field is required."
	MsgBlank         = "This field may not be blank."
	MsgNull          = "This field may not be null."
	MsgEmail         = "Enter a valid email address."
	MsgInvalidNumber = "A valid number is required."
	MsgNotAList      = "Expected a list of items."
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// Struct runs the struct's `validate` tags and returns one message per failing field.
func Struct(record any) types.FieldErrors {
	errs := types.FieldErrors{}
	err := validate.Struct(record)
	if err == nil {
		return errs
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		errs.Add("non_field_errors", err.Error())
		return errs
	}
	for _, fe := range fieldErrs {
		errs.Add(fe.Field(), message(fe))
	}
	return errs
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return MsgRequired
	case "notblank":
		return MsgBlank
	case "email":
		return MsgEmail
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	}
	return "Invalid value."
}

// Required replaces any message on field with the missing-field message.
func Required(errs types.FieldErrors, field string) {
	errs[field] = []string{MsgRequired}
}

// Decimal checks a fixed-point amount against maxDigits total digits and places
// fractional digits, mirroring a numeric(maxDigits, places) column.
func Decimal(errs types.FieldErrors, field string, in types.DecimalInput, maxDigits, places int) {
	switch {
	case !in.Present:
		Required(errs, field)
		return
	case in.Null:
		errs.Add(field, MsgNull)
		return
	case in.Invalid:
		errs.Add(field, MsgInvalidNumber)
		return
	}

	digits, decimals := digitCounts(in.Value)
	wholeDigits := digits - decimals
	switch {
	case digits > maxDigits:
		errs.Add(field, fmt.Sprintf("Ensure that there are no more than %d digits in total.", maxDigits))
	case decimals > places:
		errs.Add(field, fmt.Sprintf("Ensure that there are no more than %d decimal places.", places))
	case wholeDigits > maxDigits-places:
		errs.Add(field, fmt.Sprintf("Ensure that there are no more than %d digits before the decimal point.", maxDigits-places))
	}
}

// digitCounts returns the number of significant digits and fractional digits
// as written, so 450.00 counts five digits with two decimals.
func digitCounts(d decimal.Decimal) (digits, decimals int) {
	coefficient := d.Coefficient()
	coefficient.Abs(coefficient)
	n := len(coefficient.String())
	exp := int(d.Exponent())

	if exp >= 0 {
		if coefficient.Sign() == 0 {
			return 1, 0
		}
		return n + exp, 0
	}
	decimals = -exp
	if decimals > n {
		return decimals, decimals
	}
	return n, decimals
}

// TakeString unwraps a required string field. A missing or null value is
// recorded in presence and "" is returned; present values are trimmed.
func TakeString(presence types.FieldErrors, field string, in types.NullableString) string {
	switch {
	case !in.Valid:
		Required(presence, field)
		return ""
	case in.Value == nil:
		presence[field] = []string{MsgNull}
		return ""
	}
	return strings.TrimSpace(*in.Value)
}

// Override replaces rule failures with the presence problems for the same field.
func Override(errs, presence types.FieldErrors) types.FieldErrors {
	for field, msgs := range presence {
		errs[field] = msgs
	}
	return errs
}
