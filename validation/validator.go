package validation

import (
	"chat-room/domain"
	"chat-room/errors"
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their JSON name, as clients see them
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func ValidateJoin(cmd domain.JoinCommand) error {
	return check(cmd)
}

func ValidatePostMessage(cmd domain.PostMessageCommand) error {
	return check(cmd)
}

// check runs every rule of the struct and gathers all failures into one
// ValidationError.
func check(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrors validator.ValidationErrors
	if !stderrors.As(err, &fieldErrors) {
		return errors.NewValidationError(err.Error())
	}
	return errors.NewValidationError(lo.Map(fieldErrors, func(fe validator.FieldError, _ int) string {
		return describe(fe)
	})...)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%q is required", fe.Field())
	case "oneof":
		return fmt.Sprintf("%q must be one of [%s]", fe.Field(), strings.Join(strings.Fields(fe.Param()), ", "))
	default:
		return fmt.Sprintf("%q is invalid (%s)", fe.Field(), fe.Tag())
	}
}
