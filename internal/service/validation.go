package service

import (
	"regexp"
	"strings"
)

// Validation limits.
const (
	maxNameLength  = 255
	maxTitleLength = 255
	minPasswordLen = 8
)

// emailRegex is intentionally loose: one "@", a dot in the domain, no spaces.
var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func validateEmail(email string) error {
	if email == "" {
		return ErrEmailRequired
	}
	if !emailRegex.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLen {
		return ErrPasswordTooShort
	}
	return nil
}

// validateName checks a tag or ingredient name.
func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrNameRequired
	}
	if len(name) > maxNameLength {
		return ErrNameTooLong
	}
	return nil
}
