package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// QuoteRequest is a persisted quote request.
type QuoteRequest struct {
	ID                       uuid.UUID
	Name                     string
	Email                    string
	Phone                    string
	Service                  string
	ServiceCategory          *string
	Description              string
	Quantity                 string
	Size                     *string
	ArtworkFileRef           *string
	AddressStreet            string
	AddressSuburb            string
	AddressState             string
	AddressPostcode          *string
	FormattedDeliveryAddress string
	SpecialRequirements      *string
	Status                   string
	Notes                    *string
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

// ContactMessage is a persisted contact message.
type ContactMessage struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Message   string
	Status    string
	Notes     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateQuoteParams holds normalized quote fields.
type CreateQuoteParams struct {
	Name                     string
	Email                    string
	Phone                    string
	Service                  string
	ServiceCategory          *string
	Description              string
	Quantity                 string
	Size                     *string
	ArtworkFileRef           *string
	AddressStreet            string
	AddressSuburb            string
	AddressState             string
	AddressPostcode          *string
	FormattedDeliveryAddress string
	SpecialRequirements      *string
	Status                   string
}

// CreateContactParams holds contact message fields.
type CreateContactParams struct {
	Name    string
	Email   string
	Message string
	Status  string
}

// UpdateStatusParams changes a record's admin status.
type UpdateStatusParams struct {
	ID     uuid.UUID
	Status string
	Notes  *string
}

// ListParams pages admin listings, newest first.
type ListParams struct {
	Status *string
	Offset int
	Limit  int
}

// QuoteReader provides read access to quote requests.
type QuoteReader interface {
	GetQuote(ctx context.Context, id uuid.UUID) (QuoteRequest, error)
	ListQuotes(ctx context.Context, params ListParams) ([]QuoteRequest, int, error)
}

// QuoteWriter provides write access to quote requests.
type QuoteWriter interface {
	CreateQuote(ctx context.Context, params CreateQuoteParams) (QuoteRequest, error)
	UpdateQuoteStatus(ctx context.Context, params UpdateStatusParams) (QuoteRequest, error)
}

// ContactReader provides read access to contact messages.
type ContactReader interface {
	GetContact(ctx context.Context, id uuid.UUID) (ContactMessage, error)
	ListContacts(ctx context.Context, params ListParams) ([]ContactMessage, int, error)
}

// ContactWriter provides write access to contact messages.
type ContactWriter interface {
	CreateContact(ctx context.Context, params CreateContactParams) (ContactMessage, error)
	UpdateContactStatus(ctx context.Context, params UpdateStatusParams) (ContactMessage, error)
}

// Repository combines all intake persistence operations.
type Repository interface {
	QuoteReader
	QuoteWriter
	ContactReader
	ContactWriter
}
