package contact

import (
	"strings"

	"github.com/hyrx/studio-backend/internal/model/contact"
)

// ValidationError carries the user-facing message for the first violated
// constraint.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validate checks a raw submission and returns the first violated
// constraint, in field order. It is pure: no side effects are possible
// until it passes.
func Validate(sub contact.Submission) error {
	name := strings.TrimSpace(sub.Name)
	if name == "" {
		return &ValidationError{Message: "Name is required"}
	}
	if len([]rune(name)) > contact.MaxNameLength {
		return &ValidationError{Message: "Name is too long"}
	}

	email := strings.TrimSpace(sub.Email)
	if email == "" || !strings.Contains(email, "@") || len(email) > contact.MaxEmailLength {
		return &ValidationError{Message: "Valid email is required"}
	}

	if strings.TrimSpace(sub.Message) == "" {
		return &ValidationError{Message: "Message is required"}
	}
	if len([]rune(sub.Message)) > contact.MaxMessageLength {
		return &ValidationError{Message: "Message is too long"}
	}

	if len(sub.Services) > contact.MaxServices {
		return &ValidationError{Message: "Too many services selected"}
	}

	if len(sub.RecaptchaToken) > contact.MaxTokenLength {
		return &ValidationError{Message: "Verification failed. Please try again."}
	}

	return nil
}
