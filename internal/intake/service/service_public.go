package service

import (
	"context"
	"strings"

	"printsite_backend/internal/intake/domain"
	"printsite_backend/internal/intake/repository"
	"printsite_backend/internal/intake/transport"
	"printsite_backend/internal/intake/validation"
	"printsite_backend/internal/notification"
	"printsite_backend/internal/verification"
	"printsite_backend/platform/apperr"
	"printsite_backend/platform/metrics"
)

const (
	submissionQuote   = "quote"
	submissionContact = "contact"

	outcomeAccepted           = "accepted"
	outcomeVerificationFailed = "verification_failed"
	outcomeValidationFailed   = "validation_failed"
	outcomeError              = "error"
)

// SubmitQuote runs a public quote request through the pipeline. Validation
// only runs once verification has passed.
func (s *Service) SubmitQuote(ctx context.Context, req transport.QuoteSubmission) (*transport.QuoteResponse, error) {
	if err := s.verify(ctx, req.AntiBot); err != nil {
		metrics.Submissions.WithLabelValues(submissionQuote, outcomeVerificationFailed).Inc()
		return nil, err
	}

	if errs := validation.QuoteRules(s.val, req).Run(); errs != nil {
		metrics.Submissions.WithLabelValues(submissionQuote, outcomeValidationFailed).Inc()
		return nil, apperr.Validation(msgValidationFailed).WithDetails(map[string]string(errs))
	}

	params := normalizeQuote(req)

	if req.Artwork != nil {
		key, err := s.storeArtwork(ctx, *req.Artwork)
		if err != nil {
			metrics.Submissions.WithLabelValues(submissionQuote, outcomeError).Inc()
			return nil, err
		}
		params.ArtworkFileRef = &key
	}

	quote, err := s.repo.CreateQuote(ctx, params)
	if err != nil {
		metrics.Submissions.WithLabelValues(submissionQuote, outcomeError).Inc()
		s.log.WithContext(ctx).DatabaseError("create_quote_request", err)
		return nil, apperr.Wrap(apperr.KindInternal, msgSaveFailed, err)
	}

	s.enqueue(ctx,
		notification.NewJob(notification.KindQuoteInternal, quote.ID),
		notification.NewJob(notification.KindQuoteCustomerConfirm, quote.ID),
	)

	metrics.Submissions.WithLabelValues(submissionQuote, outcomeAccepted).Inc()
	resp := toQuoteResponse(quote)
	return &resp, nil
}

// SubmitContact runs a public contact message through the pipeline.
func (s *Service) SubmitContact(ctx context.Context, req transport.ContactSubmission) (*transport.ContactResponse, error) {
	if err := s.verify(ctx, req.AntiBot); err != nil {
		metrics.Submissions.WithLabelValues(submissionContact, outcomeVerificationFailed).Inc()
		return nil, err
	}

	if errs := validation.ContactRules(s.val, req).Run(); errs != nil {
		metrics.Submissions.WithLabelValues(submissionContact, outcomeValidationFailed).Inc()
		return nil, apperr.Validation(msgValidationFailed).WithDetails(map[string]string(errs))
	}

	msg, err := s.repo.CreateContact(ctx, repository.CreateContactParams{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Message: req.Message,
		Status:  domain.ContactStatusNew,
	})
	if err != nil {
		metrics.Submissions.WithLabelValues(submissionContact, outcomeError).Inc()
		s.log.WithContext(ctx).DatabaseError("create_contact_message", err)
		return nil, apperr.Wrap(apperr.KindInternal, msgSaveFailed, err)
	}

	jobs := []notification.Job{notification.NewJob(notification.KindContactInternal, msg.ID)}
	if s.confirmContacts {
		jobs = append(jobs, notification.NewJob(notification.KindContactCustomerConfirm, msg.ID))
	}
	s.enqueue(ctx, jobs...)

	metrics.Submissions.WithLabelValues(submissionContact, outcomeAccepted).Inc()
	resp := toContactResponse(msg)
	return &resp, nil
}

// FormSession describes the anti-bot inputs the frontend must render.
func (s *Service) FormSession(ctx context.Context) (*transport.FormSessionResponse, error) {
	groups := []transport.OfferingGroup{}
	if s.offerings != nil {
		loaded, err := s.offerings.ListOfferingGroups(ctx)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "could not load offerings", err)
		}
		groups = loaded
	}

	resp := &transport.FormSessionResponse{
		VerificationMode: string(s.verifier.Mode()),
		FormStartTime:    s.verifier.Now().Unix(),
		FormStartField:   verification.FormStartField,
		HoneypotFields:   s.verifier.HoneypotFields(),
		Offerings:        groups,
	}
	if s.verifier.Mode() != verification.ModeNone {
		resp.SiteKey = s.verifier.SiteKey()
	}
	return resp, nil
}

func (s *Service) verify(ctx context.Context, ab transport.AntiBot) error {
	result := s.verifier.Verify(ctx, toSubmission(ab))
	if result.Passed {
		return nil
	}
	return apperr.Verification(msgVerificationFailed).WithDetails(result.PublicMessages())
}

func (s *Service) storeArtwork(ctx context.Context, upload transport.ArtworkUpload) (string, error) {
	if s.artwork == nil {
		return "", apperr.Internal(msgArtworkFailed)
	}
	key, err := s.artwork.Store(ctx, upload)
	if err != nil {
		s.log.WithContext(ctx).Error("failed to store artwork", "fileName", upload.FileName, "error", err)
		return "", apperr.Wrap(apperr.KindInternal, msgArtworkFailed, err)
	}
	return key, nil
}

// normalizeQuote trims identity fields and canonicalizes the address.
// Description and special requirements are stored exactly as typed.
func normalizeQuote(req transport.QuoteSubmission) repository.CreateQuoteParams {
	addr := domain.Address{
		Street:   req.AddressStreet,
		Suburb:   req.AddressSuburb,
		State:    req.AddressState,
		Postcode: req.AddressPostcode,
	}.Normalize()

	return repository.CreateQuoteParams{
		Name:                     strings.TrimSpace(req.Name),
		Email:                    strings.TrimSpace(req.Email),
		Phone:                    strings.TrimSpace(req.Phone),
		Service:                  strings.TrimSpace(req.Service),
		ServiceCategory:          nilIfBlank(strings.TrimSpace(req.ServiceCategory)),
		Description:              req.Description,
		Quantity:                 strings.TrimSpace(req.Quantity),
		Size:                     nilIfBlank(strings.TrimSpace(req.Size)),
		AddressStreet:            addr.Street,
		AddressSuburb:            addr.Suburb,
		AddressState:             addr.State,
		AddressPostcode:          nilIfBlank(addr.Postcode),
		FormattedDeliveryAddress: addr.Formatted(),
		SpecialRequirements:      nilIfBlank(req.SpecialRequirements),
		Status:                   domain.QuoteStatusNew,
	}
}

func nilIfBlank(value string) *string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return &value
}
