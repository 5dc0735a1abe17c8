package serverutils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"ship-framework-be/pkg/ideation"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report json names so field errors line up with the request body.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateRequest runs the struct tags of req and reports every failing field
// at once as an ideation.ValidationError.
func ValidateRequest(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fieldMessage(fe)
	}
	return &ideation.ValidationError{Fields: fields}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return ideation.MessageRequired
	case "email":
		return "Introduce un correo electrónico válido."
	case "min":
		return fmt.Sprintf("Debe ser como mínimo %s.", fe.Param())
	case "max":
		return fmt.Sprintf("Debe ser como máximo %s.", fe.Param())
	case "oneof":
		return fmt.Sprintf("Debe ser uno de: %s.", fe.Param())
	default:
		return fmt.Sprintf("Valor no válido (%s).", fe.Tag())
	}
}
