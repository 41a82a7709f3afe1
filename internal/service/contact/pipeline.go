package contact

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hyrx/studio-backend/internal/model/contact"
)

// genericRejection is shown for every anti-abuse failure; the reason is
// logged server-side only.
const genericRejection = "Verification failed. Please try again."

// BotVerifier scores a client challenge token. Any error halts the
// pipeline before persistence or email dispatch.
type BotVerifier interface {
	Verify(ctx context.Context, token, remoteIP string) error
}

// SubmissionStore persists accepted submissions. Failures are best-effort:
// logged, never fatal.
type SubmissionStore interface {
	InsertSubmission(ctx context.Context, rec contact.Record) error
}

// Mailer dispatches the two notification emails. The sends are
// independent of each other.
type Mailer interface {
	SendConfirmation(ctx context.Context, sub contact.Submission) error
	SendAlert(ctx context.Context, sub contact.Submission) error
}

// Result is the in-band outcome returned to the caller. The HTTP layer
// always responds 200; callers branch on Success.
type Result struct {
	Success       bool   `json:"success"`
	Error         string `json:"error,omitempty"`
	FallbackEmail string `json:"fallbackEmail,omitempty"`
}

// Pipeline runs the contact submission flow: validate, verify bot score,
// persist, notify. Once validation and the bot check pass, the outcome is
// success regardless of downstream delivery.
type Pipeline struct {
	verifier      BotVerifier
	store         SubmissionStore
	mailer        Mailer
	fallbackEmail string
}

// NewPipeline wires the submission flow. store and mailer may be nil when
// unconfigured; those stages are then skipped with a log entry.
func NewPipeline(verifier BotVerifier, store SubmissionStore, mailer Mailer, fallbackEmail string) *Pipeline {
	return &Pipeline{
		verifier:      verifier,
		store:         store,
		mailer:        mailer,
		fallbackEmail: fallbackEmail,
	}
}

// Submit processes one submission end to end.
func (p *Pipeline) Submit(ctx context.Context, sub contact.Submission, remoteIP string) Result {
	if err := Validate(sub); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			return Result{Success: false, Error: verr.Message}
		}
		return Result{Success: false, Error: genericRejection}
	}

	if err := p.verify(ctx, sub.RecaptchaToken, remoteIP); err != nil {
		slog.Warn("bot-score verification rejected submission", "err", err)
		return Result{Success: false, Error: genericRejection, FallbackEmail: p.fallbackEmail}
	}

	p.persist(ctx, sub)
	p.notify(ctx, sub)

	return Result{Success: true}
}

func (p *Pipeline) verify(ctx context.Context, token, remoteIP string) error {
	if p.verifier == nil {
		return errors.New("bot-score verifier not configured")
	}
	return p.verifier.Verify(ctx, token, remoteIP)
}

// persist writes the submission row. Persistence is best-effort:
// notification is the primary effect, so write failures never halt the
// pipeline.
func (p *Pipeline) persist(ctx context.Context, sub contact.Submission) {
	if p.store == nil {
		slog.Warn("submission store not configured, skipping persistence")
		return
	}

	rec := contact.Record{
		ID:        uuid.NewString(),
		Name:      sub.Name,
		Email:     sub.Email,
		Company:   sub.Company,
		Services:  sub.Services,
		Budget:    sub.Budget,
		Message:   sub.Message,
		Status:    contact.StatusPending,
		CreatedAt: time.Now().UTC(),
	}

	if err := p.store.InsertSubmission(ctx, rec); err != nil {
		slog.Error("failed to persist submission", "id", rec.ID, "err", err)
	}
}

// notify sends the internal alert and the user confirmation. The two
// sends are independent; either may fail without affecting the other or
// the response.
func (p *Pipeline) notify(ctx context.Context, sub contact.Submission) {
	if p.mailer == nil {
		slog.Warn("mailer not configured, skipping notification")
		return
	}

	if err := p.mailer.SendAlert(ctx, sub); err != nil {
		slog.Error("failed to send internal alert", "err", err)
	}
	if err := p.mailer.SendConfirmation(ctx, sub); err != nil {
		slog.Error("failed to send confirmation email", "err", err)
	}
}
