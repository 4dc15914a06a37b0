package service

import (
	"context"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"printsite_backend/internal/intake/repository"
	"printsite_backend/internal/intake/transport"
	"printsite_backend/internal/notification"
	"printsite_backend/internal/verification"
	"printsite_backend/platform/apperr"
	"printsite_backend/platform/logger"
	"printsite_backend/platform/validator"

	"github.com/google/uuid"
)

var fixedNow = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

type memRepo struct {
	mu        sync.Mutex
	quotes    map[uuid.UUID]repository.QuoteRequest
	contacts  map[uuid.UUID]repository.ContactMessage
	createErr error
}

func newMemRepo() *memRepo {
	return &memRepo{
		quotes:   map[uuid.UUID]repository.QuoteRequest{},
		contacts: map[uuid.UUID]repository.ContactMessage{},
	}
}

func (r *memRepo) CreateQuote(_ context.Context, p repository.CreateQuoteParams) (repository.QuoteRequest, error) {
	if r.createErr != nil {
		return repository.QuoteRequest{}, r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	q := repository.QuoteRequest{
		ID: uuid.New(), Name: p.Name, Email: p.Email, Phone: p.Phone,
		Service: p.Service, ServiceCategory: p.ServiceCategory, Description: p.Description,
		Quantity: p.Quantity, Size: p.Size, ArtworkFileRef: p.ArtworkFileRef,
		AddressStreet: p.AddressStreet, AddressSuburb: p.AddressSuburb,
		AddressState: p.AddressState, AddressPostcode: p.AddressPostcode,
		FormattedDeliveryAddress: p.FormattedDeliveryAddress,
		SpecialRequirements:      p.SpecialRequirements,
		Status:                   p.Status, CreatedAt: fixedNow, UpdatedAt: fixedNow,
	}
	r.quotes[q.ID] = q
	return q, nil
}

func (r *memRepo) UpdateQuoteStatus(_ context.Context, p repository.UpdateStatusParams) (repository.QuoteRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.quotes[p.ID]
	if !ok {
		return repository.QuoteRequest{}, apperr.NotFound("quote request not found")
	}
	q.Status = p.Status
	if p.Notes != nil {
		q.Notes = p.Notes
	}
	r.quotes[p.ID] = q
	return q, nil
}

func (r *memRepo) GetQuote(_ context.Context, id uuid.UUID) (repository.QuoteRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.quotes[id]
	if !ok {
		return repository.QuoteRequest{}, apperr.NotFound("quote request not found")
	}
	return q, nil
}

func (r *memRepo) ListQuotes(_ context.Context, p repository.ListParams) ([]repository.QuoteRequest, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []repository.QuoteRequest
	for _, q := range r.quotes {
		if p.Status == nil || q.Status == *p.Status {
			out = append(out, q)
		}
	}
	return out, len(out), nil
}

func (r *memRepo) CreateContact(_ context.Context, p repository.CreateContactParams) (repository.ContactMessage, error) {
	if r.createErr != nil {
		return repository.ContactMessage{}, r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	m := repository.ContactMessage{
		ID: uuid.New(), Name: p.Name, Email: p.Email, Message: p.Message,
		Status: p.Status, CreatedAt: fixedNow, UpdatedAt: fixedNow,
	}
	r.contacts[m.ID] = m
	return m, nil
}

func (r *memRepo) UpdateContactStatus(_ context.Context, p repository.UpdateStatusParams) (repository.ContactMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.contacts[p.ID]
	if !ok {
		return repository.ContactMessage{}, apperr.NotFound("contact message not found")
	}
	m.Status = p.Status
	if p.Notes != nil {
		m.Notes = p.Notes
	}
	r.contacts[p.ID] = m
	return m, nil
}

func (r *memRepo) GetContact(_ context.Context, id uuid.UUID) (repository.ContactMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.contacts[id]
	if !ok {
		return repository.ContactMessage{}, apperr.NotFound("contact message not found")
	}
	return m, nil
}

func (r *memRepo) ListContacts(_ context.Context, p repository.ListParams) ([]repository.ContactMessage, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []repository.ContactMessage
	for _, m := range r.contacts {
		if p.Status == nil || m.Status == *p.Status {
			out = append(out, m)
		}
	}
	return out, len(out), nil
}

func (r *memRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.quotes) + len(r.contacts)
}

type fakeQueue struct {
	jobs []notification.Job
	err  error
}

func (q *fakeQueue) Enqueue(ctx context.Context, job notification.Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

type fakeStore struct {
	key string
	err error
}

func (s fakeStore) Store(_ context.Context, upload transport.ArtworkUpload) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if _, err := io.ReadAll(upload.Reader); err != nil {
		return "", err
	}
	return s.key, nil
}

func (s fakeStore) Open(context.Context, string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("%PDF")), nil
}

type passingCaptcha struct{}

func (passingCaptcha) Verify(context.Context, string, string) error { return nil }

func newEngine(t *testing.T, mode verification.Mode) *verification.Engine {
	t.Helper()
	patterns, err := verification.DefaultPatterns()
	if err != nil {
		t.Fatalf("compile patterns: %v", err)
	}
	settings := verification.Settings{
		Mode:           mode,
		HoneypotFields: verification.DefaultHoneypotFields,
		ReservedFields: transport.FormFields,
		Patterns:       patterns,
		SiteKey:        "site-key",
		Now:            func() time.Time { return fixedNow },
	}
	if mode != verification.ModeNone {
		settings.Captcha = passingCaptcha{}
	}
	engine, err := verification.NewEngine(settings, logger.New("test"))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func newTestService(t *testing.T, mode verification.Mode) (*Service, *memRepo, *fakeQueue) {
	t.Helper()
	repo := newMemRepo()
	queue := &fakeQueue{}
	svc := New(repo, newEngine(t, mode), queue, validator.New(), logger.New("test"))
	return svc, repo, queue
}

func antiBot(fields map[string]string, startedAgo time.Duration) transport.AntiBot {
	return transport.AntiBot{
		Fields:        fields,
		FormStartedAt: strconv.FormatInt(fixedNow.Add(-startedAgo).Unix(), 10),
		CaptchaToken:  "token",
		ClientIP:      "203.0.113.9",
		UserAgent:     "Mozilla/5.0",
	}
}

func validQuote() transport.QuoteSubmission {
	q := transport.QuoteSubmission{
		Name:                "  Sam Lee ",
		Email:               "sam@example.com",
		Phone:               "0412 345 678",
		Service:             "Vinyl Banners",
		Description:         "Two banners for a market stall.\n  Keep the logo large.",
		Quantity:            "2",
		AddressStreet:       "  1 Flinders St ",
		AddressSuburb:       "  melbourne   cbd ",
		AddressState:        "vic",
		AddressPostcode:     "3000",
		SpecialRequirements: "  Eyelets every 50cm  ",
	}
	q.AntiBot = antiBot(map[string]string{
		transport.FieldName:        q.Name,
		transport.FieldDescription: q.Description,
	}, 2*time.Minute)
	return q
}

func contactSubmission(fields map[string]string, startedAgo time.Duration) transport.ContactSubmission {
	all := map[string]string{"name": "Jane Doe", "email": "jane@x.com", "message": "Hello"}
	for k, v := range fields {
		all[k] = v
	}
	return transport.ContactSubmission{
		Name:    "Jane Doe",
		Email:   "jane@x.com",
		Message: "Hello",
		AntiBot: antiBot(all, startedAgo),
	}
}

func TestContactSubmissionInModeNone(t *testing.T) {
	svc, repo, queue := newTestService(t, verification.ModeNone)

	resp, err := svc.SubmitContact(context.Background(), contactSubmission(nil, 2*time.Minute))
	if err != nil {
		t.Fatalf("SubmitContact: %v", err)
	}
	if resp.Status != "new" {
		t.Fatalf("expected status new, got %q", resp.Status)
	}
	if repo.count() != 1 {
		t.Fatalf("expected 1 record, got %d", repo.count())
	}
	if len(queue.jobs) != 1 || queue.jobs[0].Kind != notification.KindContactInternal {
		t.Fatalf("expected one internal job, got %+v", queue.jobs)
	}
	if queue.jobs[0].RecordID != resp.ID {
		t.Fatalf("job points at %s, record is %s", queue.jobs[0].RecordID, resp.ID)
	}
}

func TestContactConfirmationIsOptIn(t *testing.T) {
	svc, _, queue := newTestService(t, verification.ModeNone)
	svc.SetContactConfirmation(true)

	if _, err := svc.SubmitContact(context.Background(), contactSubmission(nil, 2*time.Minute)); err != nil {
		t.Fatalf("SubmitContact: %v", err)
	}
	if len(queue.jobs) != 2 || queue.jobs[1].Kind != notification.KindContactCustomerConfirm {
		t.Fatalf("expected internal and confirmation jobs, got %+v", queue.jobs)
	}
}

func TestQuotePostcodeValidation(t *testing.T) {
	svc, repo, queue := newTestService(t, verification.ModeNone)
	q := validQuote()
	q.AddressPostcode = "3000abc"

	_, err := svc.SubmitQuote(context.Background(), q)
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	var domainErr *apperr.Error
	if !errors.As(err, &domainErr) {
		t.Fatalf("expected *apperr.Error, got %T", err)
	}
	details, ok := domainErr.Details.(map[string]string)
	if !ok {
		t.Fatalf("expected field map details, got %T", domainErr.Details)
	}
	if _, ok := details[transport.FieldAddressPostcode]; !ok {
		t.Fatalf("expected postcode error, got %v", details)
	}
	if repo.count() != 0 || len(queue.jobs) != 0 {
		t.Fatal("invalid quote must not be persisted or notified")
	}
}

func TestHoneypotFilledRejectsContact(t *testing.T) {
	svc, repo, queue := newTestService(t, verification.ModeHcaptcha)

	_, err := svc.SubmitContact(context.Background(), contactSubmission(map[string]string{"website": "http://spam.com"}, 2*time.Minute))
	if !apperr.Is(err, apperr.KindVerification) {
		t.Fatalf("expected verification error, got %v", err)
	}

	var domainErr *apperr.Error
	errors.As(err, &domainErr)
	messages, _ := domainErr.Details.([]string)
	if len(messages) == 0 {
		t.Fatal("expected public verification messages")
	}
	for _, m := range messages {
		if strings.Contains(strings.ToLower(m), "website") || strings.Contains(strings.ToLower(m), "honeypot") {
			t.Fatalf("public message leaks the tripped signal: %q", m)
		}
	}
	if repo.count() != 0 || len(queue.jobs) != 0 {
		t.Fatal("rejected submission must not be persisted or notified")
	}
}

func TestQuoteSubmittedTooFastIsRejected(t *testing.T) {
	svc, repo, _ := newTestService(t, verification.ModeRecaptcha)
	q := validQuote()
	q.AntiBot = antiBot(map[string]string{transport.FieldName: q.Name}, time.Second)

	_, err := svc.SubmitQuote(context.Background(), q)
	if !apperr.Is(err, apperr.KindVerification) {
		t.Fatalf("expected verification error, got %v", err)
	}
	if repo.count() != 0 {
		t.Fatal("rejected quote must not be persisted")
	}
}

func TestVerificationRunsBeforeValidation(t *testing.T) {
	svc, _, _ := newTestService(t, verification.ModeHcaptcha)
	q := validQuote()
	q.Email = "not-an-email"
	q.AntiBot = antiBot(map[string]string{"company": "Bots Inc"}, 2*time.Minute)

	_, err := svc.SubmitQuote(context.Background(), q)
	if !apperr.Is(err, apperr.KindVerification) {
		t.Fatalf("expected verification error first, got %v", err)
	}
}

func TestQuoteNormalizationAndJobs(t *testing.T) {
	svc, repo, queue := newTestService(t, verification.ModeRecaptcha)
	q := validQuote()

	resp, err := svc.SubmitQuote(context.Background(), q)
	if err != nil {
		t.Fatalf("SubmitQuote: %v", err)
	}

	stored, err := repo.GetQuote(context.Background(), resp.ID)
	if err != nil {
		t.Fatalf("GetQuote: %v", err)
	}
	if stored.Name != "Sam Lee" {
		t.Fatalf("expected trimmed name, got %q", stored.Name)
	}
	if stored.AddressSuburb != "MELBOURNE CBD" || stored.AddressState != "VIC" {
		t.Fatalf("unexpected address normalization: %q %q", stored.AddressSuburb, stored.AddressState)
	}
	if stored.FormattedDeliveryAddress != "1 Flinders St\nMELBOURNE CBD VIC 3000" {
		t.Fatalf("unexpected formatted address %q", stored.FormattedDeliveryAddress)
	}
	if stored.Description != q.Description {
		t.Fatalf("description must round-trip unchanged, got %q", stored.Description)
	}
	if stored.SpecialRequirements == nil || *stored.SpecialRequirements != q.SpecialRequirements {
		t.Fatalf("special requirements must round-trip unchanged, got %v", stored.SpecialRequirements)
	}
	if stored.Status != "new" {
		t.Fatalf("expected status new, got %q", stored.Status)
	}

	if len(queue.jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(queue.jobs))
	}
	if queue.jobs[0].Kind != notification.KindQuoteInternal || queue.jobs[1].Kind != notification.KindQuoteCustomerConfirm {
		t.Fatalf("unexpected job kinds %+v", queue.jobs)
	}
}

func TestEnqueueFailureStillSucceeds(t *testing.T) {
	svc, repo, queue := newTestService(t, verification.ModeNone)
	queue.err = errors.New("redis unavailable")

	resp, err := svc.SubmitQuote(context.Background(), validQuote())
	if err != nil {
		t.Fatalf("enqueue failure must not fail the submission: %v", err)
	}
	stored, err := repo.GetQuote(context.Background(), resp.ID)
	if err != nil {
		t.Fatalf("record must remain accessible: %v", err)
	}
	if stored.Status != "new" {
		t.Fatalf("expected status new, got %q", stored.Status)
	}
}

func TestEnqueueSurvivesCancelledRequest(t *testing.T) {
	svc, _, queue := newTestService(t, verification.ModeNone)
	ctx, cancel := context.WithCancel(context.Background())

	svc.enqueue(ctx, notification.NewJob(notification.KindContactInternal, uuid.New()))
	cancel()
	svc.enqueue(ctx, notification.NewJob(notification.KindContactInternal, uuid.New()))

	if len(queue.jobs) != 2 {
		t.Fatalf("expected both jobs enqueued, got %d", len(queue.jobs))
	}
}

func TestPersistenceFailureIsGeneric(t *testing.T) {
	svc, repo, queue := newTestService(t, verification.ModeNone)
	repo.createErr = errors.New("connection refused on 10.0.0.5:5432")

	_, err := svc.SubmitContact(context.Background(), contactSubmission(nil, 2*time.Minute))
	if !apperr.Is(err, apperr.KindInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
	if strings.Contains(err.Error(), "10.0.0.5") {
		t.Fatalf("error message leaks internals: %q", err.Error())
	}
	if len(queue.jobs) != 0 {
		t.Fatal("failed persistence must not enqueue notifications")
	}
}

func TestArtworkIsStoredAndReferenced(t *testing.T) {
	svc, repo, _ := newTestService(t, verification.ModeNone)
	svc.SetArtworkStore(fakeStore{key: "artwork/2026/03/banner_1a2b3c4d.pdf"})

	q := validQuote()
	q.Artwork = &transport.ArtworkUpload{
		FileName:    "banner.pdf",
		ContentType: "application/pdf",
		Size:        4,
		Reader:      strings.NewReader("%PDF"),
	}

	resp, err := svc.SubmitQuote(context.Background(), q)
	if err != nil {
		t.Fatalf("SubmitQuote: %v", err)
	}
	if !resp.HasArtwork {
		t.Fatal("expected hasArtwork")
	}
	stored, _ := repo.GetQuote(context.Background(), resp.ID)
	if stored.ArtworkFileRef == nil || *stored.ArtworkFileRef != "artwork/2026/03/banner_1a2b3c4d.pdf" {
		t.Fatalf("unexpected artwork ref %v", stored.ArtworkFileRef)
	}
}

func TestArtworkStoreFailureAbortsBeforePersist(t *testing.T) {
	svc, repo, _ := newTestService(t, verification.ModeNone)
	svc.SetArtworkStore(fakeStore{err: errors.New("bucket missing")})

	q := validQuote()
	q.Artwork = &transport.ArtworkUpload{FileName: "a.png", ContentType: "image/png", Size: 3, Reader: strings.NewReader("png")}

	if _, err := svc.SubmitQuote(context.Background(), q); !apperr.Is(err, apperr.KindInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
	if repo.count() != 0 {
		t.Fatal("quote must not be persisted when artwork storage fails")
	}
}

func TestUpdateStatus(t *testing.T) {
	svc, _, queue := newTestService(t, verification.ModeNone)
	resp, err := svc.SubmitContact(context.Background(), contactSubmission(nil, 2*time.Minute))
	if err != nil {
		t.Fatalf("SubmitContact: %v", err)
	}
	jobsBefore := len(queue.jobs)

	notes := "Called back"
	updated, err := svc.UpdateContactStatus(context.Background(), resp.ID, transport.UpdateStatusRequest{Status: "replied", Notes: &notes})
	if err != nil {
		t.Fatalf("UpdateContactStatus: %v", err)
	}
	if updated.Status != "replied" || updated.Notes == nil || *updated.Notes != notes {
		t.Fatalf("unexpected update result %+v", updated)
	}
	if len(queue.jobs) != jobsBefore {
		t.Fatal("status changes must not notify")
	}

	if _, err := svc.UpdateContactStatus(context.Background(), resp.ID, transport.UpdateStatusRequest{Status: "quoted"}); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for quote-only status, got %v", err)
	}
	if _, err := svc.UpdateQuoteStatus(context.Background(), uuid.New(), transport.UpdateStatusRequest{Status: "quoted"}); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListQuotesPagination(t *testing.T) {
	svc, _, _ := newTestService(t, verification.ModeNone)
	if _, err := svc.SubmitQuote(context.Background(), validQuote()); err != nil {
		t.Fatalf("SubmitQuote: %v", err)
	}

	list, err := svc.ListQuotes(context.Background(), transport.ListRequest{Status: "new"})
	if err != nil {
		t.Fatalf("ListQuotes: %v", err)
	}
	if list.Total != 1 || list.Page != 1 || list.PageSize != defaultPageSize {
		t.Fatalf("unexpected list metadata %+v", list)
	}

	if _, err := svc.ListQuotes(context.Background(), transport.ListRequest{Status: "bogus"}); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for unknown status, got %v", err)
	}
}

func TestListRejectsPagesPastTheBound(t *testing.T) {
	svc, _, _ := newTestService(t, verification.ModeNone)

	huge := transport.ListRequest{Page: math.MaxInt / 2, PageSize: 100}
	if _, err := svc.ListQuotes(context.Background(), huge); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for page %d, got %v", huge.Page, err)
	}
	if _, err := svc.ListContacts(context.Background(), huge); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for contacts page %d, got %v", huge.Page, err)
	}

	last := transport.ListRequest{Page: 10000, PageSize: 100}
	list, err := svc.ListQuotes(context.Background(), last)
	if err != nil {
		t.Fatalf("ListQuotes at last allowed page: %v", err)
	}
	if list.Page != 10000 || len(list.Items) != 0 {
		t.Fatalf("unexpected list at last page %+v", list)
	}
}

type staticOfferings []transport.OfferingGroup

func (s staticOfferings) ListOfferingGroups(context.Context) ([]transport.OfferingGroup, error) {
	return s, nil
}

func TestFormSession(t *testing.T) {
	svc, _, _ := newTestService(t, verification.ModeRecaptcha)
	svc.SetOfferingSource(staticOfferings{{Category: "Signage", Items: []transport.OfferingItem{{Name: "Vinyl Banners", Slug: "vinyl-banners"}}}})

	session, err := svc.FormSession(context.Background())
	if err != nil {
		t.Fatalf("FormSession: %v", err)
	}
	if session.VerificationMode != "recaptcha" || session.SiteKey != "site-key" {
		t.Fatalf("unexpected session %+v", session)
	}
	if session.FormStartTime != fixedNow.Unix() {
		t.Fatalf("expected server timestamp %d, got %d", fixedNow.Unix(), session.FormStartTime)
	}
	if session.FormStartField != verification.FormStartField || len(session.HoneypotFields) == 0 {
		t.Fatalf("missing anti-bot fields %+v", session)
	}
	if len(session.Offerings) != 1 {
		t.Fatalf("expected offerings, got %+v", session.Offerings)
	}
}

func TestOpenArtwork(t *testing.T) {
	svc, _, _ := newTestService(t, verification.ModeNone)
	svc.SetArtworkStore(fakeStore{key: "artwork/2026/03/banner_1a2b3c4d.pdf"})

	withoutArtwork, err := svc.SubmitQuote(context.Background(), validQuote())
	if err != nil {
		t.Fatalf("SubmitQuote: %v", err)
	}
	if _, _, err := svc.OpenArtwork(context.Background(), withoutArtwork.ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found without artwork, got %v", err)
	}

	q := validQuote()
	q.Artwork = &transport.ArtworkUpload{FileName: "banner.pdf", ContentType: "application/pdf", Size: 4, Reader: strings.NewReader("%PDF")}
	withArtwork, err := svc.SubmitQuote(context.Background(), q)
	if err != nil {
		t.Fatalf("SubmitQuote: %v", err)
	}

	rc, key, err := svc.OpenArtwork(context.Background(), withArtwork.ID)
	if err != nil {
		t.Fatalf("OpenArtwork: %v", err)
	}
	defer rc.Close()
	if key != "artwork/2026/03/banner_1a2b3c4d.pdf" {
		t.Fatalf("unexpected key %q", key)
	}
}
