package auth

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var phonePattern = regexp.MustCompile(`^\+?[1-9]\d{0,15}$`)

// NormalizePhone removes the separators learners commonly type.
func NormalizePhone(phone string) string {
	return strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(strings.TrimSpace(phone))
}

func validatePhone(fl validator.FieldLevel) bool {
	return phonePattern.MatchString(NormalizePhone(fl.Field().String()))
}

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("phone", validatePhone); err != nil {
		panic(fmt.Sprintf("register phone validation: %v", err))
	}
	return v
}

// validationMessage turns the first failed rule into a learner-facing sentence.
func validationMessage(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return "Invalid input"
	}

	fe := ve[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return "Please enter a valid email address"
	case "phone":
		return "Please enter a valid phone number"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
