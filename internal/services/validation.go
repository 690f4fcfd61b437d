package services

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/beerbuddy/beerbuddy/internal/apperrors"
	"github.com/beerbuddy/beerbuddy/internal/auth"
)

const (
	minPasswordLength = 8
	maxNicknameLength = 50
	maxBioLength      = 500
	maxCommentLength  = 500
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const (
	msgNotAuthenticated   = "Not authenticated"
	msgInvalidCredentials = "Invalid email or password"
	msgUserNotFound       = "User not found"
	msgPostNotFound       = "Post not found"
)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if !emailPattern.MatchString(normalizeEmail(email)) {
		return apperrors.Validation("Invalid email format")
	}
	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return apperrors.Validation("Password is required")
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		return apperrors.Validation("Password must be at least 8 characters long")
	}
	return nil
}

// trimToNull trims s and maps an empty result to nil.
func trimToNull(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

func validateMaxLength(s *string, max int, message string) error {
	if s != nil && utf8.RuneCountInString(*s) > max {
		return apperrors.Validation(message)
	}
	return nil
}

// RequireViewer fails with 401 "Not authenticated" for an anonymous viewer.
func RequireViewer(viewer auth.Viewer) error {
	if !viewer.Authenticated() {
		return apperrors.Unauthenticated(msgNotAuthenticated)
	}
	return nil
}
