package completion

import (
	"errors"
	"strings"
)

// Sentinel errors exposed to handlers so provider failures map onto the
// endpoint's error contract without leaking raw provider text.
var (
	ErrRateLimited = errors.New("completion provider rate limited")
	ErrUnavailable = errors.New("completion provider unavailable")
	ErrEmptyReply  = errors.New("completion provider returned no content")
)

// UserMessage renders a provider failure as the text shown to visitors.
// Raw provider errors are never surfaced.
func UserMessage(err error) string {
	switch Classify(err) {
	case nil:
		return ""
	case ErrRateLimited:
		return "Too many requests. Please try again in a moment."
	case ErrUnavailable:
		return "AI service temporarily unavailable. Please contact us directly at hyrx.aistudio@gmail.com"
	default:
		return "AI service error. Please try again or contact us directly."
	}
}

// Classify folds a raw provider error into one of the sentinel errors;
// anything unrecognized passes through unchanged and is treated as a
// generic provider failure.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrRateLimited) || errors.Is(err, ErrUnavailable) || errors.Is(err, ErrEmptyReply) {
		return err
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "429") || strings.Contains(msg, "rate limit") || strings.Contains(msg, "too many requests"):
		return ErrRateLimited
	case strings.Contains(msg, "402") || strings.Contains(msg, "payment") || strings.Contains(msg, "quota") || strings.Contains(msg, "insufficient"):
		return ErrUnavailable
	default:
		return err
	}
}
