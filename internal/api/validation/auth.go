package validation

import (
	"regexp"
	"strings"
	"unicode"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// weakPatterns are substrings that cost a password one strength point.
var weakPatterns = []string{
	"password", "123456", "qwerty", "abc123", "letmein", "111111", "admin",
}

// LoginRequest mirrors the fields needed for login validation.
type LoginRequest struct {
	Email    string
	Password string
}

// ValidateLoginRequest validates the fields of a login request.
func ValidateLoginRequest(req LoginRequest) []FieldError {
	var errs []FieldError

	errs = append(errs, validateEmail(req.Email)...)
	if req.Password == "" {
		errs = append(errs, FieldError{Field: "password", Message: "password is required"})
	}

	return errs
}

// RegisterRequest mirrors the fields needed for registration validation.
type RegisterRequest struct {
	Email    string
	Password string
	Name     string
}

// ValidateRegisterRequest validates the fields of a registration request,
// including password strength. Strength is enforced here rather than in
// the register flow itself so the rules stay a presentation concern.
func ValidateRegisterRequest(req RegisterRequest) []FieldError {
	var errs []FieldError

	errs = append(errs, validateEmail(req.Email)...)

	if strings.TrimSpace(req.Name) == "" {
		errs = append(errs, FieldError{Field: "name", Message: "name is required"})
	} else if len(strings.TrimSpace(req.Name)) > 255 {
		errs = append(errs, FieldError{Field: "name", Message: "name must be at most 255 characters"})
	}

	if msg := PasswordStrengthError(req.Password); msg != "" {
		errs = append(errs, FieldError{Field: "password", Message: msg})
	}

	return errs
}

// PasswordStrengthError returns an empty string for an acceptable password,
// or a human-readable reason. A password needs at least 8 characters and a
// strength score of 3: one point per character class present (lowercase,
// uppercase, digit, symbol), minus one point if a common weak pattern
// appears anywhere in it.
func PasswordStrengthError(password string) string {
	if len(password) < 8 {
		return "password must be at least 8 characters"
	}

	var lower, upper, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		default:
			symbol = true
		}
	}

	score := 0
	for _, present := range []bool{lower, upper, digit, symbol} {
		if present {
			score++
		}
	}

	folded := strings.ToLower(password)
	for _, p := range weakPatterns {
		if strings.Contains(folded, p) {
			score--
			break
		}
	}

	if score < 3 {
		return "password is too weak: mix lowercase, uppercase, digits, and symbols, and avoid common patterns"
	}
	return ""
}

func validateEmail(email string) []FieldError {
	email = strings.TrimSpace(email)
	if email == "" {
		return []FieldError{{Field: "email", Message: "email is required"}}
	}
	if !emailPattern.MatchString(email) {
		return []FieldError{{Field: "email", Message: "email must be a valid email address"}}
	}
	return nil
}
