package notification

import (
	"fmt"

	"github.com/google/uuid"
)

// Kind names one email a submission can trigger.
type Kind string

const (
	KindQuoteInternal          Kind = "quote.internal"
	KindQuoteCustomerConfirm   Kind = "quote.customer_confirm"
	KindContactInternal        Kind = "contact.internal"
	KindContactCustomerConfirm Kind = "contact.customer_confirm"
)

// Record types a job can point at.
const (
	RecordQuote   = "quote"
	RecordContact = "contact"
)

// Job is one deferred email. It carries only a reference; the dispatcher
// reloads the record when it runs.
type Job struct {
	Kind       Kind      `json:"kind"`
	RecordID   uuid.UUID `json:"recordId"`
	RecordType string    `json:"recordType"`
}

// NewJob builds a job for kind, deriving the record type from it.
func NewJob(kind Kind, recordID uuid.UUID) Job {
	return Job{Kind: kind, RecordID: recordID, RecordType: kind.RecordType()}
}

// RecordType returns the record type a kind belongs to.
func (k Kind) RecordType() string {
	switch k {
	case KindQuoteInternal, KindQuoteCustomerConfirm:
		return RecordQuote
	case KindContactInternal, KindContactCustomerConfirm:
		return RecordContact
	default:
		return ""
	}
}

// Internal reports whether the kind alerts the operator rather than the submitter.
func (k Kind) Internal() bool {
	return k == KindQuoteInternal || k == KindContactInternal
}

// Validate rejects unknown kinds, nil ids and mismatched record types.
func (j Job) Validate() error {
	expected := j.Kind.RecordType()
	if expected == "" {
		return fmt.Errorf("unknown notification kind %q", j.Kind)
	}
	if j.RecordID == uuid.Nil {
		return fmt.Errorf("notification %s has no record id", j.Kind)
	}
	if j.RecordType != expected {
		return fmt.Errorf("notification %s expects record type %s, got %q", j.Kind, expected, j.RecordType)
	}
	return nil
}
