package leadintake

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Canadian postal codes: letter-digit-letter space digit-letter-digit, with
// the letters D, F, I, O, Q, U, W and Z excluded from the first position.
var canadianPostalRe = regexp.MustCompile(`^[ABCEGHJ-NPRSTVXY]\d[A-Z] ?\d[A-Z]\d$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("ca_postal", func(fl validator.FieldLevel) bool {
		return IsCanadianPostalCode(fl.Field().String())
	})
	return v
}

// IsCanadianPostalCode reports whether the input is a valid Canadian postal
// code, case-insensitively, with or without the middle space.
func IsCanadianPostalCode(code string) bool {
	return canadianPostalRe.MatchString(strings.ToUpper(strings.TrimSpace(code)))
}

// NormalizePostalCode uppercases and reinserts the canonical middle space.
func NormalizePostalCode(code string) string {
	c := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(code), " ", ""))
	if len(c) != 6 {
		return strings.ToUpper(strings.TrimSpace(code))
	}
	return c[:3] + " " + c[3:]
}

func validateSubmission(in *SubmitInput) map[string]string {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	fields := make(map[string]string)
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		fields["form"] = "invalid submission"
		return fields
	}

	for _, fe := range validationErrs {
		name := formFieldName(fe.Field())
		switch fe.Tag() {
		case "required":
			fields[name] = "this field is required"
		case "ca_postal":
			fields[name] = "must be a valid Canadian postal code"
		case "max":
			fields[name] = fmt.Sprintf("must be at most %s characters", fe.Param())
		case "min":
			fields[name] = fmt.Sprintf("must be at least %s characters", fe.Param())
		default:
			fields[name] = "is invalid"
		}
	}
	return fields
}

// formFieldName maps a struct field to its form name (PostalCode → postalCode).
func formFieldName(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}
