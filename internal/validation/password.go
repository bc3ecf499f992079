// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// MinPasswordScore is the lowest strength score accepted at signup.
const MinPasswordScore = 3

// commonPasswords are rejected outright regardless of their composition.
// Matching is case-insensitive and ignores trailing digits, so "Password1"
// scores as "password".
var commonPasswords = map[string]struct{}{
	"password": {}, "qwerty": {}, "letmein": {}, "welcome": {},
	"abc123": {}, "iloveyou": {}, "admin": {}, "monkey": {},
	"dragon": {}, "sunshine": {}, "princess": {}, "football": {},
	"baseball": {}, "master": {}, "shadow": {}, "superman": {},
	"trustno1": {}, "123456": {}, "12345678": {}, "1234567890": {},
}

var trailingDigits = regexp.MustCompile(`[0-9]*$`)

// Strength is the result of evaluating a candidate password.
type Strength struct {
	Score  int
	Reason string
}

// Acceptable reports whether the password meets the minimum score.
func (s Strength) Acceptable() bool {
	return s.Score >= MinPasswordScore
}

// EvaluatePassword scores a candidate password with a composite heuristic:
// length, character-class diversity, and penalties for common passwords and
// low-variety input. It is a pure function of its input.
func EvaluatePassword(password string) Strength {
	if password == "" {
		return Strength{Score: 0, Reason: "Password must not be empty"}
	}

	normalized := strings.ToLower(trailingDigits.ReplaceAllString(password, ""))
	if _, found := commonPasswords[normalized]; found {
		return Strength{Score: 0, Reason: "Password is too common. Try again!"}
	}
	if _, found := commonPasswords[strings.ToLower(password)]; found {
		return Strength{Score: 0, Reason: "Password is too common. Try again!"}
	}

	score := 0

	// Length contribution
	runes := []rune(password)
	switch {
	case len(runes) >= 14:
		score += 3
	case len(runes) >= 10:
		score += 2
	case len(runes) >= 6:
		score++
	}

	// Character-class diversity: each class beyond the first adds a point
	var hasLower, hasUpper, hasDigit, hasSpecial bool
	for _, r := range runes {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSpecial = true
		}
	}
	classes := 0
	for _, has := range []bool{hasLower, hasUpper, hasDigit, hasSpecial} {
		if has {
			classes++
		}
	}
	score += classes - 1

	// Low variety penalty: "aaaaaaaaaaaa" is long but trivial to guess
	if distinctRunes(runes) <= 2 {
		score -= 2
	}
	if score < 0 {
		score = 0
	}

	if score < MinPasswordScore {
		return Strength{Score: score, Reason: "Password too weak. Try again!"}
	}
	return Strength{Score: score}
}

func distinctRunes(runes []rune) int {
	seen := make(map[rune]struct{}, len(runes))
	for _, r := range runes {
		seen[r] = struct{}{}
	}
	return len(seen)
}

// ValidatePassword rejects passwords scoring below MinPasswordScore.
func ValidatePassword(password string) error {
	if strength := EvaluatePassword(password); !strength.Acceptable() {
		return fmt.Errorf("%s", strength.Reason)
	}
	return nil
}

// ValidateUsername checks if a username meets requirements
func ValidateUsername(username string) error {
	if len(username) < 3 {
		return fmt.Errorf("username must be at least 3 characters long")
	}

	if len(username) > 30 {
		return fmt.Errorf("username must not exceed 30 characters")
	}

	// Only allow alphanumeric and underscores
	if !regexp.MustCompile(`^[a-zA-Z0-9_-]+$`).MatchString(username) {
		return fmt.Errorf("username can only contain letters, numbers, underscores, and hyphens")
	}

	// Cannot start or end with underscore/hyphen
	if username[0] == '_' || username[0] == '-' || username[len(username)-1] == '_' || username[len(username)-1] == '-' {
		return fmt.Errorf("username cannot start or end with underscore or hyphen")
	}

	return nil
}

// ValidateEmail checks basic email format
func ValidateEmail(email string) error {
	// Simple email validation - regex approach
	emailRegex := regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}

	if len(email) > 254 {
		return fmt.Errorf("email must not exceed 254 characters")
	}

	return nil
}
