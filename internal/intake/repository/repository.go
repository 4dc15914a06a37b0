package repository

import (
	"context"
	"errors"
	"fmt"

	"printsite_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	quoteNotFoundMessage   = "quote request not found"
	contactNotFoundMessage = "contact message not found"

	quoteColumns = `id, name, email, phone, service, service_category, description, quantity, size,
		artwork_file_ref, address_street, address_suburb, address_state, address_postcode,
		formatted_delivery_address, special_requirements, status, notes, created_at, updated_at`
	contactColumns = `id, name, email, message, status, notes, created_at, updated_at`
)

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new intake repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

func scanQuote(row pgx.Row) (QuoteRequest, error) {
	var q QuoteRequest
	err := row.Scan(
		&q.ID, &q.Name, &q.Email, &q.Phone, &q.Service, &q.ServiceCategory, &q.Description, &q.Quantity, &q.Size,
		&q.ArtworkFileRef, &q.AddressStreet, &q.AddressSuburb, &q.AddressState, &q.AddressPostcode,
		&q.FormattedDeliveryAddress, &q.SpecialRequirements, &q.Status, &q.Notes, &q.CreatedAt, &q.UpdatedAt,
	)
	return q, err
}

func scanContact(row pgx.Row) (ContactMessage, error) {
	var m ContactMessage
	err := row.Scan(&m.ID, &m.Name, &m.Email, &m.Message, &m.Status, &m.Notes, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

// CreateQuote inserts a quote request.
func (r *Repo) CreateQuote(ctx context.Context, p CreateQuoteParams) (QuoteRequest, error) {
	query := `
		INSERT INTO quote_requests (
			name, email, phone, service, service_category, description, quantity, size,
			artwork_file_ref, address_street, address_suburb, address_state, address_postcode,
			formatted_delivery_address, special_requirements, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING ` + quoteColumns

	q, err := scanQuote(r.pool.QueryRow(ctx, query,
		p.Name, p.Email, p.Phone, p.Service, p.ServiceCategory, p.Description, p.Quantity, p.Size,
		p.ArtworkFileRef, p.AddressStreet, p.AddressSuburb, p.AddressState, p.AddressPostcode,
		p.FormattedDeliveryAddress, p.SpecialRequirements, p.Status,
	))
	if err != nil {
		return QuoteRequest{}, fmt.Errorf("insert quote request: %w", err)
	}
	return q, nil
}

// GetQuote retrieves a quote request by ID.
func (r *Repo) GetQuote(ctx context.Context, id uuid.UUID) (QuoteRequest, error) {
	query := `SELECT ` + quoteColumns + ` FROM quote_requests WHERE id = $1`

	q, err := scanQuote(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return QuoteRequest{}, apperr.NotFound(quoteNotFoundMessage)
		}
		return QuoteRequest{}, fmt.Errorf("get quote request: %w", err)
	}
	return q, nil
}

// ListQuotes returns a page of quote requests, newest first.
func (r *Repo) ListQuotes(ctx context.Context, p ListParams) ([]QuoteRequest, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM quote_requests WHERE ($1::text IS NULL OR status = $1)`, p.Status,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count quote requests: %w", err)
	}

	query := `SELECT ` + quoteColumns + `
		FROM quote_requests
		WHERE ($1::text IS NULL OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, p.Status, p.Limit, p.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list quote requests: %w", err)
	}
	defer rows.Close()

	items := make([]QuoteRequest, 0)
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan quote request: %w", err)
		}
		items = append(items, q)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate quote requests: %w", err)
	}
	return items, total, nil
}

// UpdateQuoteStatus sets the admin status and notes of a quote request.
func (r *Repo) UpdateQuoteStatus(ctx context.Context, p UpdateStatusParams) (QuoteRequest, error) {
	query := `
		UPDATE quote_requests
		SET status = $2, notes = COALESCE($3, notes), updated_at = now()
		WHERE id = $1
		RETURNING ` + quoteColumns

	q, err := scanQuote(r.pool.QueryRow(ctx, query, p.ID, p.Status, p.Notes))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return QuoteRequest{}, apperr.NotFound(quoteNotFoundMessage)
		}
		return QuoteRequest{}, fmt.Errorf("update quote status: %w", err)
	}
	return q, nil
}

// CreateContact inserts a contact message.
func (r *Repo) CreateContact(ctx context.Context, p CreateContactParams) (ContactMessage, error) {
	query := `
		INSERT INTO contact_messages (name, email, message, status)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + contactColumns

	m, err := scanContact(r.pool.QueryRow(ctx, query, p.Name, p.Email, p.Message, p.Status))
	if err != nil {
		return ContactMessage{}, fmt.Errorf("insert contact message: %w", err)
	}
	return m, nil
}

// GetContact retrieves a contact message by ID.
func (r *Repo) GetContact(ctx context.Context, id uuid.UUID) (ContactMessage, error) {
	query := `SELECT ` + contactColumns + ` FROM contact_messages WHERE id = $1`

	m, err := scanContact(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ContactMessage{}, apperr.NotFound(contactNotFoundMessage)
		}
		return ContactMessage{}, fmt.Errorf("get contact message: %w", err)
	}
	return m, nil
}

// ListContacts returns a page of contact messages, newest first.
func (r *Repo) ListContacts(ctx context.Context, p ListParams) ([]ContactMessage, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM contact_messages WHERE ($1::text IS NULL OR status = $1)`, p.Status,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count contact messages: %w", err)
	}

	query := `SELECT ` + contactColumns + `
		FROM contact_messages
		WHERE ($1::text IS NULL OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, p.Status, p.Limit, p.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list contact messages: %w", err)
	}
	defer rows.Close()

	items := make([]ContactMessage, 0)
	for rows.Next() {
		m, err := scanContact(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan contact message: %w", err)
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate contact messages: %w", err)
	}
	return items, total, nil
}

// UpdateContactStatus sets the admin status and notes of a contact message.
func (r *Repo) UpdateContactStatus(ctx context.Context, p UpdateStatusParams) (ContactMessage, error) {
	query := `
		UPDATE contact_messages
		SET status = $2, notes = COALESCE($3, notes), updated_at = now()
		WHERE id = $1
		RETURNING ` + contactColumns

	m, err := scanContact(r.pool.QueryRow(ctx, query, p.ID, p.Status, p.Notes))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ContactMessage{}, apperr.NotFound(contactNotFoundMessage)
		}
		return ContactMessage{}, fmt.Errorf("update contact status: %w", err)
	}
	return m, nil
}
