package services

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/AchilleasB/kinder/nursery-service/internal/core/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON field names instead of Go struct names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("program", func(fl validator.FieldLevel) bool {
		_, ok := domain.LookupProgram(fl.Field().String())
		return ok
	})
	return v
}

var tagMessages = map[string]string{
	"required": "this field is required",
	"email":    "must be a valid email address",
	"eqfield":  "passwords do not match",
	"program":  "please select a program",
	"min":      "is too short",
	"max":      "is too long",
}

// validateStruct runs struct tag validation and converts failures to a
// *domain.ValidationError.
func validateStruct(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]domain.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		msg, ok := tagMessages[fe.Tag()]
		if !ok {
			msg = "is invalid"
		}
		fields = append(fields, domain.FieldError{Field: fe.Field(), Message: msg})
	}
	return domain.NewValidationError(fields...)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
