package adapters

import (
	"context"

	intakerepo "printsite_backend/internal/intake/repository"
	"printsite_backend/internal/notification"

	"github.com/google/uuid"
)

// intakeRecordStore is the read-only slice of the intake repository the
// notification worker may use.
type intakeRecordStore interface {
	intakerepo.QuoteReader
	intakerepo.ContactReader
}

// NotificationRecordReader adapts the intake repository for the notification domain.
// It implements notification.RecordReader using interface-segregation.
type NotificationRecordReader struct {
	store intakeRecordStore
}

// NewNotificationRecordReader creates a new record reader adapter.
func NewNotificationRecordReader(store intakeRecordStore) *NotificationRecordReader {
	return &NotificationRecordReader{store: store}
}

// GetQuote loads a quote request as the dispatcher sees it.
func (a *NotificationRecordReader) GetQuote(ctx context.Context, id uuid.UUID) (notification.QuoteRecord, error) {
	q, err := a.store.GetQuote(ctx, id)
	if err != nil {
		return notification.QuoteRecord{}, err
	}
	return notification.QuoteRecord{
		ID:                  q.ID,
		Name:                q.Name,
		Email:               q.Email,
		Phone:               q.Phone,
		Service:             q.Service,
		ServiceCategory:     deref(q.ServiceCategory),
		Description:         q.Description,
		Quantity:            q.Quantity,
		Size:                deref(q.Size),
		DeliveryAddress:     q.FormattedDeliveryAddress,
		SpecialRequirements: deref(q.SpecialRequirements),
		HasArtwork:          q.ArtworkFileRef != nil,
		CreatedAt:           q.CreatedAt,
	}, nil
}

// GetContact loads a contact message as the dispatcher sees it.
func (a *NotificationRecordReader) GetContact(ctx context.Context, id uuid.UUID) (notification.ContactRecord, error) {
	m, err := a.store.GetContact(ctx, id)
	if err != nil {
		return notification.ContactRecord{}, err
	}
	return notification.ContactRecord{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Message:   m.Message,
		CreatedAt: m.CreatedAt,
	}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Compile-time check that NotificationRecordReader implements notification.RecordReader.
var _ notification.RecordReader = (*NotificationRecordReader)(nil)
