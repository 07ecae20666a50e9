package service

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/iliyamo/local-services-marketplace/internal/errs"
	"github.com/iliyamo/local-services-marketplace/internal/utils"
)

var (
	phonePattern   = regexp.MustCompile(`^\d{10}$`)
	pincodePattern = regexp.MustCompile(`^\d{6}$`)
	emailPattern   = regexp.MustCompile(`^\S+@\S+\.\S+$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report fields by their JSON names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	mustRegister(v, "phone", phonePattern)
	mustRegister(v, "pincode", pincodePattern)
	mustRegister(v, "basicemail", emailPattern)
	// bcrypt reads at most 72 bytes; max= counts runes
	if err := v.RegisterValidation("bcryptlen", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= utils.MaxPasswordBytes
	}); err != nil {
		panic(err)
	}
	return v
}

func mustRegister(v *validator.Validate, tag string, re *regexp.Regexp) {
	if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
}

// validateInput runs the struct tags of in and converts failures to an
// InvalidInput error with one FieldError per field.
func validateInput(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return errs.Wrap(errs.KindInvalidInput, "Invalid input", err)
	}
	fields := make([]errs.FieldError, 0, len(ves))
	for _, fe := range ves {
		fields = append(fields, errs.FieldError{Field: fe.Field(), Error: fieldMessage(fe)})
	}
	return errs.Validation(validationSummary(fields), fields)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must not exceed %s characters", fe.Param())
		}
		return fmt.Sprintf("must not exceed %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "phone":
		return "must be exactly 10 digits"
	case "pincode":
		return "must be exactly 6 digits"
	case "basicemail":
		return "must be a valid email address"
	case "bcryptlen":
		return fmt.Sprintf("must not exceed %d bytes", utils.MaxPasswordBytes)
	default:
		return "is invalid"
	}
}

// validationSummary builds the top level message from the first field.
func validationSummary(fields []errs.FieldError) string {
	if len(fields) == 0 {
		return "Invalid input"
	}
	return fmt.Sprintf("Invalid input: %s %s", fields[0].Field, fields[0].Error)
}

func invalidField(field, msg string) error {
	f := []errs.FieldError{{Field: field, Error: msg}}
	return errs.Validation(validationSummary(f), f)
}
