// Package auth hashes passwords, issues bearer tokens and resolves the
// viewer identity of a request.
package auth

import "strings"

// Viewer is the identity attached to a request. Store ids start at 1, so the
// zero value is the anonymous viewer.
type Viewer struct {
	UserID uint
}

var Anonymous = Viewer{}

func (v Viewer) Authenticated() bool {
	return v.UserID != 0
}

// ExtractTokenFromHeader accepts exactly "Bearer <token>".
func ExtractTokenFromHeader(header string) (string, bool) {
	if header == "" {
		return "", false
	}

	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
