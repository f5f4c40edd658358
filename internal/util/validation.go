package util

import (
	"regexp"
	"strings"
)

var (
	phonePattern = regexp.MustCompile(`^\d{10}$`)
	emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)
)

// IsValidPhone reports whether phone is exactly ten digits
func IsValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// IsValidEmail applies the loose address check used for posts
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// Blank reports whether s is empty after trimming
func Blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// FirstBlank returns the name of the first blank value in pairs of
// (name, value), or "" when all are present.
func FirstBlank(pairs ...string) string {
	for i := 0; i+1 < len(pairs); i += 2 {
		if Blank(pairs[i+1]) {
			return pairs[i]
		}
	}
	return ""
}
