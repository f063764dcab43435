package utils

import "unicode"

const MinPasswordLength = 8

// PasswordPolicyViolations lists every rule the password breaks
func PasswordPolicyViolations(password string) []string {
	var violations []string

	if len([]rune(password)) < MinPasswordLength {
		violations = append(violations, "Passwords must be at least 8 characters.")
	}

	var digit, lower, upper bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		}
	}

	if !digit {
		violations = append(violations, "Passwords must have at least one digit ('0'-'9').")
	}
	if !lower {
		violations = append(violations, "Passwords must have at least one lowercase ('a'-'z').")
	}
	if !upper {
		violations = append(violations, "Passwords must have at least one uppercase ('A'-'Z').")
	}

	return violations
}

// IsStrongPassword reports whether the password satisfies the policy
func IsStrongPassword(password string) bool {
	return len(PasswordPolicyViolations(password)) == 0
}
