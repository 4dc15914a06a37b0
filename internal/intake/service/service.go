// Package service runs the form intake pipeline: verify, validate,
// normalize, persist, then hand notification jobs to the queue.
package service

import (
	"context"
	"io"
	"time"

	"printsite_backend/internal/intake/repository"
	"printsite_backend/internal/intake/transport"
	"printsite_backend/internal/notification"
	"printsite_backend/internal/verification"
	"printsite_backend/platform/logger"
	"printsite_backend/platform/validator"
)

const enqueueTimeout = 5 * time.Second

// Public wording for failures the client cannot fix by editing the form.
const (
	msgVerificationFailed = "We could not verify your submission"
	msgValidationFailed   = "Please correct the highlighted fields"
	msgSaveFailed         = "We could not save your request. Please try again later."
	msgArtworkFailed      = "We could not store your artwork. Please try again later."
)

// Verifier is the anti-bot engine as seen by intake.
type Verifier interface {
	Verify(ctx context.Context, sub verification.Submission) verification.Result
	Mode() verification.Mode
	SiteKey() string
	HoneypotFields() []string
	Now() time.Time
}

// JobEnqueuer hands notification jobs to a background queue.
type JobEnqueuer interface {
	Enqueue(ctx context.Context, job notification.Job) error
}

// ArtworkStore persists uploaded artwork files.
type ArtworkStore interface {
	Store(ctx context.Context, upload transport.ArtworkUpload) (string, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// OfferingSource lists the services shown on the quote form.
// Implemented by an adapter in internal/adapters that wraps the catalog.
type OfferingSource interface {
	ListOfferingGroups(ctx context.Context) ([]transport.OfferingGroup, error)
}

// Service provides the intake business logic.
type Service struct {
	repo      repository.Repository
	verifier  Verifier
	jobs      JobEnqueuer
	val       *validator.Validator
	log       *logger.Logger
	artwork   ArtworkStore   // optional: nil rejects uploads
	offerings OfferingSource // optional: nil yields an empty picker
	// confirmContacts also sends the contact submitter a confirmation.
	confirmContacts bool
}

// New creates a new intake service.
func New(repo repository.Repository, verifier Verifier, jobs JobEnqueuer, val *validator.Validator, log *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		verifier: verifier,
		jobs:     jobs,
		val:      val,
		log:      log,
	}
}

// SetArtworkStore injects the artwork storage backend.
func (s *Service) SetArtworkStore(store ArtworkStore) {
	s.artwork = store
}

// SetOfferingSource injects the catalog lookup used by FormSession.
func (s *Service) SetOfferingSource(src OfferingSource) {
	s.offerings = src
}

// SetContactConfirmation toggles the contact confirmation email.
func (s *Service) SetContactConfirmation(enabled bool) {
	s.confirmContacts = enabled
}

// enqueue submits jobs on a context detached from the request, so a client
// disconnect after persistence does not lose the notifications. Failures are
// logged and never reach the caller.
func (s *Service) enqueue(ctx context.Context, jobs ...notification.Job) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), enqueueTimeout)
	defer cancel()

	log := s.log.WithContext(ctx)
	for _, job := range jobs {
		if err := s.jobs.Enqueue(ctx, job); err != nil {
			log.Error("failed to enqueue notification",
				"kind", string(job.Kind),
				"recordType", job.RecordType,
				"recordId", job.RecordID.String(),
				"error", err,
			)
		}
	}
}

func toSubmission(ab transport.AntiBot) verification.Submission {
	return verification.Submission{
		Fields:        ab.Fields,
		FormStartedAt: ab.FormStartedAt,
		CaptchaToken:  ab.CaptchaToken,
		ClientIP:      ab.ClientIP,
		UserAgent:     ab.UserAgent,
	}
}
