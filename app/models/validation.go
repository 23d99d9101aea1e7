package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Record is implemented by every entity managed through the admin screens.
type Record interface {
	GetID() string
	// Label is the human name used in listings and confirmation prompts.
	Label() string
	Validate() error
}

// FieldErrors turns validator errors into field -> message pairs keyed by
// the struct field name. Other errors end up under "_".
func FieldErrors(err error) map[string]string {
	if err == nil {
		return nil
	}
	out := map[string]string{}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out["_"] = err.Error()
		return out
	}
	for _, fe := range verrs {
		out[fe.Field()] = fieldMessage(fe)
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Please enter a valid email address"
	case "min":
		return fmt.Sprintf("Must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("Must be at most %s characters", fe.Param())
	case "len":
		return fmt.Sprintf("Must be exactly %s characters", fe.Param())
	case "oneof":
		return "Must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "url":
		return "Please enter a valid URL"
	case "gte", "gt":
		return "Must be at least " + fe.Param()
	case "lte", "lt":
		return "Must be at most " + fe.Param()
	case "eqfield":
		return "Does not match"
	case "alphanum", "alpha":
		return "Only letters and digits are allowed"
	case "hostname_rfc1123", "hostname":
		return "Please enter a valid host name"
	default:
		return "Invalid value"
	}
}
