package utils

import (
	"fmt"
	"regexp"
)

var (
	emailRegex      = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	employeeIDRegex = regexp.MustCompile(`^[a-zA-Z0-9\-]{2,32}$`)
	controlChars    = regexp.MustCompile(`[\x00-\x1f\x7f]`)
)

// ValidateEmail validates an email address
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format: %s", email)
	}
	return nil
}

// ValidateEmployeeID validates an employee id: 2-32 alphanumeric
// characters or dashes
func ValidateEmployeeID(employeeID string) error {
	if !employeeIDRegex.MatchString(employeeID) {
		return fmt.Errorf("invalid employee id format: %s", employeeID)
	}
	return nil
}

// SanitizeString removes control characters
func SanitizeString(s string) string {
	return controlChars.ReplaceAllString(s, "")
}
