package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"products-api/internal/apperror"
)

var (
	validate *validator.Validate
	ginOnce  sync.Once
)

func init() {
	validate = validator.New()
	validate.SetTagName("binding")
	register(validate)
}

func register(v *validator.Validate) {
	v.RegisterValidation("notblank", validateNotBlank)
	v.RegisterTagNameFunc(jsonName)
}

// SetupGin registra las validaciones propias en el motor de binding de gin
func SetupGin() {
	ginOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			register(v)
		}
	})
}

// ValidateStruct valida con las mismas reglas que el binding de gin
func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func validateNotBlank(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() == reflect.Ptr {
		if field.IsNil() {
			return true
		}
		field = field.Elem()
	}
	return strings.TrimSpace(field.String()) != ""
}

// jsonName usa el nombre del campo json en los mensajes
func jsonName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return f.Name
	}
	return name
}

// FieldErrors convierte los errores del validador en detalles por campo
func FieldErrors(err error) []apperror.FieldError {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return nil
	}

	fields := make([]apperror.FieldError, 0, len(validationErrs))
	for _, e := range validationErrs {
		fields = append(fields, apperror.FieldError{
			Field:   e.Field(),
			Message: message(e),
		})
	}
	return fields
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "notblank":
		return e.Field() + " must not be blank"
	case "gte":
		return e.Field() + " must be greater than or equal to " + e.Param()
	case "lte":
		return e.Field() + " must be less than or equal to " + e.Param()
	default:
		return e.Field() + " is invalid"
	}
}
