package utils

import "strings"

const (
	ErrNameEmpty   = "Name cannot be empty"
	ErrNameLetters = "Name can only contain letters and spaces"
)

// IsLettersAndSpaces returns true if every rune of s is an ASCII letter
// (a-zA-Z) or whitespace.
func IsLettersAndSpaces(s string) bool {
	for _, r := range s {
		if ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') {
			continue
		}
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f' || r == '\v' {
			continue
		}
		return false
	}
	return true
}

// ValidateName returns an empty string when name is acceptable as a display
// name, otherwise the message to show next to the input.
func ValidateName(name string) string {
	if strings.TrimSpace(name) == "" {
		return ErrNameEmpty
	}
	if !IsLettersAndSpaces(name) {
		return ErrNameLetters
	}
	return ""
}
