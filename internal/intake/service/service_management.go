package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"printsite_backend/internal/intake/domain"
	"printsite_backend/internal/intake/repository"
	"printsite_backend/internal/intake/transport"
	"printsite_backend/platform/apperr"

	"github.com/google/uuid"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// UpdateQuoteStatus moves a quote request to status. Notes replace the
// stored notes only when provided.
func (s *Service) UpdateQuoteStatus(ctx context.Context, id uuid.UUID, req transport.UpdateStatusRequest) (*transport.AdminQuoteResponse, error) {
	if err := s.val.Struct(req); err != nil {
		return nil, apperr.Validation(err.Error())
	}
	status := strings.TrimSpace(req.Status)
	if !domain.IsQuoteStatus(status) {
		return nil, apperr.Validation("invalid status").WithDetails(map[string]string{
			"status": "Status must be one of " + strings.Join(domain.QuoteStatuses, ", "),
		})
	}

	quote, err := s.repo.UpdateQuoteStatus(ctx, repository.UpdateStatusParams{ID: id, Status: status, Notes: req.Notes})
	if err != nil {
		return nil, mapRepoError(err)
	}
	resp := toAdminQuoteResponse(quote)
	return &resp, nil
}

// UpdateContactStatus moves a contact message to status.
func (s *Service) UpdateContactStatus(ctx context.Context, id uuid.UUID, req transport.UpdateStatusRequest) (*transport.AdminContactResponse, error) {
	if err := s.val.Struct(req); err != nil {
		return nil, apperr.Validation(err.Error())
	}
	status := strings.TrimSpace(req.Status)
	if !domain.IsContactStatus(status) {
		return nil, apperr.Validation("invalid status").WithDetails(map[string]string{
			"status": "Status must be one of " + strings.Join(domain.ContactStatuses, ", "),
		})
	}

	msg, err := s.repo.UpdateContactStatus(ctx, repository.UpdateStatusParams{ID: id, Status: status, Notes: req.Notes})
	if err != nil {
		return nil, mapRepoError(err)
	}
	resp := toAdminContactResponse(msg)
	return &resp, nil
}

// GetQuote returns one quote request for the admin view.
func (s *Service) GetQuote(ctx context.Context, id uuid.UUID) (*transport.AdminQuoteResponse, error) {
	quote, err := s.repo.GetQuote(ctx, id)
	if err != nil {
		return nil, mapRepoError(err)
	}
	resp := toAdminQuoteResponse(quote)
	return &resp, nil
}

// GetContact returns one contact message for the admin view.
func (s *Service) GetContact(ctx context.Context, id uuid.UUID) (*transport.AdminContactResponse, error) {
	msg, err := s.repo.GetContact(ctx, id)
	if err != nil {
		return nil, mapRepoError(err)
	}
	resp := toAdminContactResponse(msg)
	return &resp, nil
}

// OpenArtwork streams the artwork attached to a quote request and returns
// its storage key.
func (s *Service) OpenArtwork(ctx context.Context, id uuid.UUID) (io.ReadCloser, string, error) {
	quote, err := s.repo.GetQuote(ctx, id)
	if err != nil {
		return nil, "", mapRepoError(err)
	}
	if quote.ArtworkFileRef == nil {
		return nil, "", apperr.NotFound("quote request has no artwork")
	}
	if s.artwork == nil {
		return nil, "", apperr.Internal("artwork storage is not configured")
	}

	rc, err := s.artwork.Open(ctx, *quote.ArtworkFileRef)
	if err != nil {
		return nil, "", fmt.Errorf("open artwork: %w", err)
	}
	return rc, *quote.ArtworkFileRef, nil
}

// ListQuotes pages quote requests, newest first.
func (s *Service) ListQuotes(ctx context.Context, req transport.ListRequest) (*transport.QuoteListResponse, error) {
	params, page, pageSize, err := s.listParams(req, domain.IsQuoteStatus)
	if err != nil {
		return nil, err
	}

	quotes, total, err := s.repo.ListQuotes(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list quote requests: %w", err)
	}

	items := make([]transport.AdminQuoteResponse, len(quotes))
	for i, q := range quotes {
		items[i] = toAdminQuoteResponse(q)
	}
	return &transport.QuoteListResponse{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

// ListContacts pages contact messages, newest first.
func (s *Service) ListContacts(ctx context.Context, req transport.ListRequest) (*transport.ContactListResponse, error) {
	params, page, pageSize, err := s.listParams(req, domain.IsContactStatus)
	if err != nil {
		return nil, err
	}

	msgs, total, err := s.repo.ListContacts(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list contact messages: %w", err)
	}

	items := make([]transport.AdminContactResponse, len(msgs))
	for i, m := range msgs {
		items[i] = toAdminContactResponse(m)
	}
	return &transport.ContactListResponse{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

func (s *Service) listParams(req transport.ListRequest, known func(string) bool) (repository.ListParams, int, int, error) {
	if err := s.val.Struct(req); err != nil {
		return repository.ListParams{}, 0, 0, apperr.Validation(err.Error())
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	params := repository.ListParams{Offset: (page - 1) * pageSize, Limit: pageSize}
	if status := strings.TrimSpace(req.Status); status != "" {
		if !known(status) {
			return repository.ListParams{}, 0, 0, apperr.Validation("invalid status filter")
		}
		params.Status = &status
	}
	return params, page, pageSize, nil
}

// mapRepoError passes typed errors such as NotFound through and wraps the rest.
func mapRepoError(err error) error {
	var domainErr *apperr.Error
	if errors.As(err, &domainErr) {
		return err
	}
	return fmt.Errorf("intake repository: %w", err)
}
