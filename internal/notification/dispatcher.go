// Package notification composes and sends the emails triggered by form
// submissions. It runs out of band: a failed job is logged and dropped, and
// the originating submission is never affected.
package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"printsite_backend/internal/email"
	"printsite_backend/platform/config"
	"printsite_backend/platform/logger"
	"printsite_backend/platform/metrics"

	"github.com/google/uuid"
)

const (
	sendTimeout     = 30 * time.Second
	timestampLayout = "2 Jan 2006 15:04 MST"
)

// ErrOperatorNotConfigured is returned for internal alerts when no operator
// recipient is set.
var ErrOperatorNotConfigured = errors.New("operator email not configured")

// QuoteRecord is the read-only view of a quote request the dispatcher needs.
type QuoteRecord struct {
	ID                  uuid.UUID
	Name                string
	Email               string
	Phone               string
	Service             string
	ServiceCategory     string
	Description         string
	Quantity            string
	Size                string
	DeliveryAddress     string
	SpecialRequirements string
	HasArtwork          bool
	CreatedAt           time.Time
}

// ContactRecord is the read-only view of a contact message.
type ContactRecord struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Message   string
	CreatedAt time.Time
}

// RecordReader loads persisted submissions.
type RecordReader interface {
	GetQuote(ctx context.Context, id uuid.UUID) (QuoteRecord, error)
	GetContact(ctx context.Context, id uuid.UUID) (ContactRecord, error)
}

// Dispatcher turns jobs into sent emails.
type Dispatcher struct {
	reader RecordReader
	sender email.Sender
	cfg    config.NotificationConfig
	log    *logger.Logger
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(reader RecordReader, sender email.Sender, cfg config.NotificationConfig, log *logger.Logger) *Dispatcher {
	return &Dispatcher{reader: reader, sender: sender, cfg: cfg, log: log}
}

// Dispatch renders and sends the email for job. Any failure is logged with
// the record id and kind, counted, and returned so the queue can archive the
// job instead of retrying it.
func (d *Dispatcher) Dispatch(ctx context.Context, job Job) error {
	if err := d.dispatch(ctx, job); err != nil {
		metrics.Deliveries.WithLabelValues(string(job.Kind), metrics.Result(false)).Inc()
		d.log.NotificationFailed(string(job.Kind), job.RecordType, job.RecordID.String(), err)
		return fmt.Errorf("dispatch %s for %s: %w", job.Kind, job.RecordID, err)
	}
	metrics.Deliveries.WithLabelValues(string(job.Kind), metrics.Result(true)).Inc()
	d.log.Info("notification sent", "kind", job.Kind, "recordId", job.RecordID)
	return nil
}

func (d *Dispatcher) dispatch(ctx context.Context, job Job) error {
	if err := job.Validate(); err != nil {
		return err
	}

	msg, err := d.compose(ctx, job)
	if err != nil {
		return err
	}

	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()
	if err := d.sender.Send(sendCtx, msg); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	return nil
}

func (d *Dispatcher) compose(ctx context.Context, job Job) (email.Message, error) {
	business := d.cfg.GetBusinessName()

	switch job.RecordType {
	case RecordQuote:
		q, err := d.reader.GetQuote(ctx, job.RecordID)
		if err != nil {
			return email.Message{}, fmt.Errorf("load quote: %w", err)
		}
		data := quoteEmailData(q)
		if job.Kind.Internal() {
			rendered, err := email.RenderQuoteInternal(business, data)
			if err != nil {
				return email.Message{}, err
			}
			return d.operatorMessage(rendered, q.Email)
		}
		rendered, err := email.RenderQuoteConfirmation(business, data)
		if err != nil {
			return email.Message{}, err
		}
		return email.Message{To: q.Email, ToName: q.Name, Subject: rendered.Subject, HTML: rendered.HTML}, nil

	case RecordContact:
		c, err := d.reader.GetContact(ctx, job.RecordID)
		if err != nil {
			return email.Message{}, fmt.Errorf("load contact: %w", err)
		}
		data := contactEmailData(c)
		if job.Kind.Internal() {
			rendered, err := email.RenderContactInternal(business, data)
			if err != nil {
				return email.Message{}, err
			}
			return d.operatorMessage(rendered, c.Email)
		}
		rendered, err := email.RenderContactConfirmation(business, data)
		if err != nil {
			return email.Message{}, err
		}
		return email.Message{To: c.Email, ToName: c.Name, Subject: rendered.Subject, HTML: rendered.HTML}, nil
	}

	return email.Message{}, fmt.Errorf("unknown record type %q", job.RecordType)
}

func (d *Dispatcher) operatorMessage(rendered email.Rendered, replyTo string) (email.Message, error) {
	operator := d.cfg.GetOperatorEmail()
	if operator == "" {
		return email.Message{}, ErrOperatorNotConfigured
	}
	return email.Message{To: operator, ReplyTo: replyTo, Subject: rendered.Subject, HTML: rendered.HTML}, nil
}

func quoteEmailData(q QuoteRecord) email.QuoteEmailData {
	return email.QuoteEmailData{
		ID:                  q.ID.String(),
		Name:                q.Name,
		Email:               q.Email,
		Phone:               q.Phone,
		Service:             q.Service,
		ServiceCategory:     q.ServiceCategory,
		Description:         q.Description,
		Quantity:            q.Quantity,
		Size:                q.Size,
		DeliveryAddress:     q.DeliveryAddress,
		SpecialRequirements: q.SpecialRequirements,
		HasArtwork:          q.HasArtwork,
		SubmittedAt:         q.CreatedAt.Format(timestampLayout),
	}
}

func contactEmailData(c ContactRecord) email.ContactEmailData {
	return email.ContactEmailData{
		ID:          c.ID.String(),
		Name:        c.Name,
		Email:       c.Email,
		Message:     c.Message,
		SubmittedAt: c.CreatedAt.Format(timestampLayout),
	}
}
