package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"catalog-api/internal/model"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})

	err := v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	if err != nil {
		panic(fmt.Sprintf("service: register notblank validation: %v", err))
	}

	return v
}

// validateStruct runs the struct's validate tags and converts failures into
// a VALIDATION_ERROR listing every offending field.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return model.ErrValidation.Wrap(err)
	}

	fields := make(map[string]any, len(validationErrs))
	for _, e := range validationErrs {
		fields[e.Field()] = validationMessage(e)
	}

	first := validationErrs[0]
	return model.ErrValidation.
		WithMessage(validationMessage(first)).
		WithDetails(map[string]any{"fields": fields})
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "notblank":
		return e.Field() + " is required"
	case "gte":
		return e.Field() + " must be at least " + e.Param()
	case "lte":
		return e.Field() + " must be at most " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param() + " characters"
	default:
		return e.Field() + " is invalid"
	}
}
