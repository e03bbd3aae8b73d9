package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"ecocommute-backend/internal/domain"

	"github.com/go-playground/validator/v10"
)

// Usernames: letters, digits, dot, underscore, hyphen.
var usernameRe = regexp.MustCompile(`^[A-Za-z0-9._-]{3,50}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return IsValidUsername(fl.Field().String())
	})
	_ = v.RegisterValidation("travelstyle", func(fl validator.FieldLevel) bool {
		return domain.IsValidTravelStyle(fl.Field().String())
	})
	_ = v.RegisterValidation("tradetype", func(fl validator.FieldLevel) bool {
		return domain.IsValidTradeType(fl.Field().String())
	})
	return v
}

// Struct validates a request body against its `validate` tags. The first failing
// field is reported as a domain validation error.
func Struct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &domain.Error{Kind: domain.ErrValidation, Message: err.Error()}
	}
	return &domain.Error{Kind: domain.ErrValidation, Message: message(fieldErrs[0])}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "gte", "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "uuid", "uuid4":
		return fmt.Sprintf("Invalid UUID format for %s", fe.Field())
	case "tradetype":
		return domain.ErrInvalidTradeType.Message
	case "travelstyle":
		return domain.ErrInvalidStyle.Message
	case "username":
		return "Username must be 3-50 letters, digits, dots, underscores or hyphens"
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

func IsValidUsername(username string) bool {
	return usernameRe.MatchString(username)
}

// IsValidPassword requires at least 8 characters with a letter and a number.
func IsValidPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	hasLetter, hasDigit := false, false
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	return hasLetter && hasDigit
}
