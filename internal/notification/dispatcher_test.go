package notification

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"printsite_backend/internal/email"
	"printsite_backend/platform/logger"

	"github.com/google/uuid"
)

type testNotificationConfig struct {
	operator string
}

func (c testNotificationConfig) GetOperatorEmail() string          { return c.operator }
func (testNotificationConfig) GetBusinessName() string             { return "Acme Print" }
func (testNotificationConfig) GetContactConfirmationEnabled() bool { return false }

type testReader struct {
	quotes   map[uuid.UUID]QuoteRecord
	contacts map[uuid.UUID]ContactRecord
}

func (r testReader) GetQuote(_ context.Context, id uuid.UUID) (QuoteRecord, error) {
	q, ok := r.quotes[id]
	if !ok {
		return QuoteRecord{}, errors.New("not found")
	}
	return q, nil
}

func (r testReader) GetContact(_ context.Context, id uuid.UUID) (ContactRecord, error) {
	c, ok := r.contacts[id]
	if !ok {
		return ContactRecord{}, errors.New("not found")
	}
	return c, nil
}

type testSender struct {
	sent []email.Message
	err  error
}

func (s *testSender) Send(_ context.Context, msg email.Message) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

const testOperator = "ops@acme.test"

func newFixture() (testReader, uuid.UUID, uuid.UUID) {
	quoteID := uuid.New()
	contactID := uuid.New()
	reader := testReader{
		quotes: map[uuid.UUID]QuoteRecord{quoteID: {
			ID: quoteID, Name: "Sam Lee", Email: "sam@example.com", Phone: "0412345678",
			Service: "Banners", Description: "Two banners", Quantity: "2",
			DeliveryAddress: "1 Flinders St\nMELBOURNE VIC 3000", CreatedAt: time.Now(),
		}},
		contacts: map[uuid.UUID]ContactRecord{contactID: {
			ID: contactID, Name: "Jane Doe", Email: "jane@x.com", Message: "Hello", CreatedAt: time.Now(),
		}},
	}
	return reader, quoteID, contactID
}

func TestDispatchRoutesRecipients(t *testing.T) {
	reader, quoteID, contactID := newFixture()
	sender := &testSender{}
	d := NewDispatcher(reader, sender, testNotificationConfig{operator: testOperator}, logger.New("development"))

	jobs := []Job{
		NewJob(KindQuoteInternal, quoteID),
		NewJob(KindQuoteCustomerConfirm, quoteID),
		NewJob(KindContactInternal, contactID),
		NewJob(KindContactCustomerConfirm, contactID),
	}
	for _, job := range jobs {
		if err := d.Dispatch(context.Background(), job); err != nil {
			t.Fatalf("dispatch %s: %v", job.Kind, err)
		}
	}

	want := []string{testOperator, "sam@example.com", testOperator, "jane@x.com"}
	if len(sender.sent) != len(want) {
		t.Fatalf("expected %d messages, got %d", len(want), len(sender.sent))
	}
	for i, to := range want {
		if sender.sent[i].To != to {
			t.Fatalf("message %d: expected recipient %s, got %s", i, to, sender.sent[i].To)
		}
	}
	if sender.sent[0].ReplyTo != "sam@example.com" {
		t.Fatalf("expected internal alert to reply to the submitter")
	}
}

func TestDispatchFailureIsLoggedWithContext(t *testing.T) {
	reader, quoteID, _ := newFixture()
	sender := &testSender{err: errors.New("smtp down")}

	var buf bytes.Buffer
	log := logger.NewWithWriter("production", &buf)
	d := NewDispatcher(reader, sender, testNotificationConfig{operator: testOperator}, log)

	err := d.Dispatch(context.Background(), NewJob(KindQuoteInternal, quoteID))
	if err == nil {
		t.Fatalf("expected error")
	}

	out := buf.String()
	for _, want := range []string{"notification_failed", quoteID.String(), "quote.internal", "smtp down"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected log to contain %q, got %s", want, out)
		}
	}
}

func TestDispatchInternalWithoutOperatorFails(t *testing.T) {
	reader, _, contactID := newFixture()
	d := NewDispatcher(reader, &testSender{}, testNotificationConfig{}, logger.New("development"))

	err := d.Dispatch(context.Background(), NewJob(KindContactInternal, contactID))
	if !errors.Is(err, ErrOperatorNotConfigured) {
		t.Fatalf("expected ErrOperatorNotConfigured, got %v", err)
	}
}

func TestJobValidate(t *testing.T) {
	if err := (Job{Kind: "sms", RecordID: uuid.New(), RecordType: RecordQuote}).Validate(); err == nil {
		t.Fatalf("expected unknown kind error")
	}
	if err := (Job{Kind: KindQuoteInternal, RecordType: RecordQuote}).Validate(); err == nil {
		t.Fatalf("expected nil id error")
	}
	if err := (Job{Kind: KindQuoteInternal, RecordID: uuid.New(), RecordType: RecordContact}).Validate(); err == nil {
		t.Fatalf("expected record type mismatch error")
	}
}
