package usecase

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	minPasswordLength = 6
	maxPasswordLength = 128
	maxNameLength     = 120
)

var inputValidator = validator.New(validator.WithRequiredStructEnabled())

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	return inputValidator.Var(email, "required,email,max=254") == nil
}

func validPassword(password string) bool {
	n := len([]rune(password))
	return n >= minPasswordLength && n <= maxPasswordLength
}

func validName(name string) bool {
	n := len([]rune(name))
	return n > 0 && n <= maxNameLength
}
