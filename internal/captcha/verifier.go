// Package captcha verifies client challenge tokens against the reCAPTCHA
// scoring service. Uses raw HTTP calls (no SDK).
package captcha

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hyrx/studio-backend/internal/config"
)

// ErrRejected is returned for every verification failure. Callers show a
// generic message; the specific reason stays in the logs.
var ErrRejected = errors.New("captcha verification rejected")

// Verifier calls the scoring endpoint and applies the trust threshold.
type Verifier struct {
	secret    string
	verifyURL string
	minScore  float64
	client    *http.Client
}

// New builds a verifier from configuration.
func New(cfg config.CaptchaConfig) *Verifier {
	return &Verifier{
		secret:    cfg.Secret,
		verifyURL: cfg.VerifyURL,
		minScore:  cfg.MinScore,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

type verifyResponse struct {
	Success    bool     `json:"success"`
	Score      float64  `json:"score"`
	Action     string   `json:"action"`
	ErrorCodes []string `json:"error-codes"`
}

// Verify accepts the token only when the service reports success and the
// trust score meets the threshold.
func (v *Verifier) Verify(ctx context.Context, token, remoteIP string) error {
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("%w: missing token", ErrRejected)
	}
	if v.secret == "" {
		return fmt.Errorf("%w: verifier secret not configured", ErrRejected)
	}

	form := url.Values{}
	form.Set("secret", v.secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrRejected, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: scoring service unreachable: %v", ErrRejected, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: scoring service status %d", ErrRejected, resp.StatusCode)
	}

	var result verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("%w: malformed scoring response: %v", ErrRejected, err)
	}

	if !result.Success {
		return fmt.Errorf("%w: service reported failure (%s)", ErrRejected, strings.Join(result.ErrorCodes, ","))
	}
	if result.Score < v.minScore {
		return fmt.Errorf("%w: score %.2f below threshold %.2f", ErrRejected, result.Score, v.minScore)
	}

	return nil
}
