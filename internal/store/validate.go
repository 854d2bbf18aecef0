package store

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/devansh/connectly/backend/internal/domain"
)

const maxPostContentLen = 500

var (
	handleRegex = regexp.MustCompile(`^[A-Za-z0-9_]{3,20}$`)
	avatarRegex = regexp.MustCompile(`^avatar_(?:[1-9]|10)$`)
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	mustRegister("handle", func(fl validator.FieldLevel) bool {
		return handleRegex.MatchString(fl.Field().String())
	})
	mustRegister("accountid", func(fl validator.FieldLevel) bool {
		return domain.ValidAccountID(fl.Field().String())
	})
	mustRegister("avatarref", func(fl validator.FieldLevel) bool {
		return avatarRegex.MatchString(fl.Field().String())
	})
}

func mustRegister(tag string, fn validator.Func) {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// validateAccountInput checks field constraints and converts the first
// violation into the domain error taxonomy.
func validateAccountInput(input AccountInput) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return domain.NewInvalidField("input", err.Error())
	}

	first := verrs[0]
	return domain.NewInvalidField(externalFieldName(first.Field()), fieldReason(first))
}

func externalFieldName(structField string) string {
	switch structField {
	case "DisplayName":
		return "displayName"
	case "Handle":
		return "handle"
	case "Email":
		return "email"
	case "Bio":
		return "bio"
	case "AvatarRef":
		return "avatarRef"
	case "ID":
		return "id"
	default:
		return strings.ToLower(structField)
	}
}

func fieldReason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "email":
		return "must be a valid email address"
	case "handle":
		return "must be 3-20 characters of letters, digits, or underscores"
	case "accountid":
		return "must be 1-64 characters of letters, digits, underscore, colon, or hyphen"
	case "avatarref":
		return "must be one of avatar_1 through avatar_10"
	default:
		return "failed " + fe.Tag() + " constraint"
	}
}
