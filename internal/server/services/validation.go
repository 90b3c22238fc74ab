package services

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/dmitrijs2005/projectshelf/internal/common"
	"github.com/go-playground/validator/v10"
)

var handleRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// newValidator reports fields by their json names and knows the "handle"
// tag (letters, digits, underscore).
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return strings.ToLower(f.Name)
		}
		return name
	})
	_ = v.RegisterValidation("handle", func(fl validator.FieldLevel) bool {
		return handleRe.MatchString(fl.Field().String())
	})
	common.RegisterProfileRules(v)
	return v
}

// validationError turns the first validator failure into a
// common.ErrorValidation with a message fit for the user.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %w", common.ErrorValidation, err)
	}
	return fmt.Errorf("%w: %s", common.ErrorValidation, describeField(verrs[0]))
}

func describeField(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.ActualTag() {
	case "required":
		return field + " is required"
	case "email":
		return "email is not a valid address"
	case "url":
		return field + " must be a URL"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "handle":
		return field + " may contain only letters, digits and underscores"
	case "oneof":
		return fmt.Sprintf("unknown platform %v", fe.Value())
	default:
		return field + " is invalid"
	}
}
