package contact

import (
	"strings"
	"testing"

	"github.com/hyrx/studio-backend/internal/model/contact"
)

func validSubmission() contact.Submission {
	return contact.Submission{
		Name:           "Jo",
		Email:          "jo@studio.dev",
		Message:        "Hi, I'd like to talk about a chatbot project.",
		RecaptchaToken: "token-ok",
	}
}

func TestValidateAccepts(t *testing.T) {
	if err := Validate(validSubmission()); err != nil {
		t.Fatalf("expected valid submission to pass, got %v", err)
	}
}

func TestValidateFirstViolation(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*contact.Submission)
		message string
	}{
		{"empty name", func(s *contact.Submission) { s.Name = "  " }, "Name is required"},
		{"long name", func(s *contact.Submission) { s.Name = strings.Repeat("a", contact.MaxNameLength+1) }, "Name is too long"},
		{"empty email", func(s *contact.Submission) { s.Email = "" }, "Valid email is required"},
		{"no at sign", func(s *contact.Submission) { s.Email = "not-an-email" }, "Valid email is required"},
		{"long email", func(s *contact.Submission) { s.Email = strings.Repeat("a", contact.MaxEmailLength) + "@x.dev" }, "Valid email is required"},
		{"empty message", func(s *contact.Submission) { s.Message = "\n" }, "Message is required"},
		{"long message", func(s *contact.Submission) { s.Message = strings.Repeat("m", contact.MaxMessageLength+1) }, "Message is too long"},
		{"too many services", func(s *contact.Submission) { s.Services = make([]string, contact.MaxServices+1) }, "Too many services selected"},
		{"oversize token", func(s *contact.Submission) { s.RecaptchaToken = strings.Repeat("t", contact.MaxTokenLength+1) }, "Verification failed. Please try again."},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sub := validSubmission()
			tc.mutate(&sub)

			err := Validate(sub)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if err.Error() != tc.message {
				t.Fatalf("expected %q, got %q", tc.message, err.Error())
			}
		})
	}
}

func TestValidateNameAndEmailOrder(t *testing.T) {
	// When both name and email are invalid the name violation wins.
	sub := validSubmission()
	sub.Name = ""
	sub.Email = "bad"

	err := Validate(sub)
	if err == nil || err.Error() != "Name is required" {
		t.Fatalf("expected name violation first, got %v", err)
	}
}

func TestValidateUnicodeLength(t *testing.T) {
	// Length limits count characters, not bytes.
	sub := validSubmission()
	sub.Name = strings.Repeat("ü", contact.MaxNameLength)

	if err := Validate(sub); err != nil {
		t.Fatalf("expected %d-rune name to pass, got %v", contact.MaxNameLength, err)
	}
}
