// Package mail dispatches transactional email through the Resend API.
// Uses raw HTTP calls (no SDK).
package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hyrx/studio-backend/internal/config"
	"github.com/hyrx/studio-backend/internal/model/contact"
)

// Client sends the two contact-flow emails: the internal alert and the
// visitor confirmation.
type Client struct {
	apiKey     string
	baseURL    string
	from       string
	internalTo string
	httpClient *http.Client
}

// New builds a mail client from configuration.
func New(cfg config.MailConfig) *Client {
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		from:       cfg.From,
		internalTo: cfg.InternalTo,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	ReplyTo string   `json:"reply_to,omitempty"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// SendAlert notifies the studio about a new submission, with reply-to set
// to the submitter so the team can answer directly.
func (c *Client) SendAlert(ctx context.Context, sub contact.Submission) error {
	body := fmt.Sprintf(`<h1>New Contact Form Submission</h1>
<p><strong>Name:</strong> %s</p>
<p><strong>Email:</strong> %s</p>
<p><strong>Company:</strong> %s</p>
<p><strong>Services of Interest:</strong> %s</p>
<p><strong>Budget Range:</strong> %s</p>
<h2>Message:</h2>
<p>%s</p>`,
		html.EscapeString(sub.Name),
		html.EscapeString(sub.Email),
		html.EscapeString(orDefault(sub.Company, "Not provided")),
		html.EscapeString(formatServices(sub.Services)),
		html.EscapeString(contact.BudgetLabel(sub.Budget)),
		htmlMessage(sub.Message),
	)

	return c.send(ctx, sendRequest{
		From:    c.from,
		To:      []string{c.internalTo},
		ReplyTo: sub.Email,
		Subject: fmt.Sprintf("New Contact Form Submission from %s", sub.Name),
		HTML:    body,
	})
}

// SendConfirmation acknowledges the submission to the visitor.
func (c *Client) SendConfirmation(ctx context.Context, sub contact.Submission) error {
	body := fmt.Sprintf(`<h1>Thank you for contacting us, %s!</h1>
<p>We have received your message and will get back to you within 1-2 business days.</p>
<h2>Your submission:</h2>
<p><strong>Services of Interest:</strong> %s</p>
<p><strong>Budget Range:</strong> %s</p>
<p><strong>Message:</strong></p>
<p>%s</p>
<br>
<p>Best regards,<br>The HYRX Studio Team</p>`,
		html.EscapeString(sub.Name),
		html.EscapeString(formatServices(sub.Services)),
		html.EscapeString(contact.BudgetLabel(sub.Budget)),
		htmlMessage(sub.Message),
	)

	return c.send(ctx, sendRequest{
		From:    c.from,
		To:      []string{sub.Email},
		Subject: "We received your message!",
		HTML:    body,
	})
}

func (c *Client) send(ctx context.Context, payload sendRequest) error {
	if c.apiKey == "" {
		return fmt.Errorf("mail provider api key not configured")
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/emails", bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("email provider unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("email provider status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	return nil
}

func formatServices(tags []string) string {
	if len(tags) == 0 {
		return "Not specified"
	}

	labels := make([]string, 0, len(tags))
	for _, tag := range tags {
		labels = append(labels, contact.ServiceLabel(tag))
	}
	return strings.Join(labels, ", ")
}

func htmlMessage(message string) string {
	return strings.ReplaceAll(html.EscapeString(message), "\n", "<br>")
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
