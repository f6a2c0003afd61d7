package complaint

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/xerrors"

	"github.com/linnemanlabs/tanggap/internal/textnorm"
)

// minAnalyzeLen is the shortest text Analyze will classify.
const minAnalyzeLen = 10

// Option customises a Service.
type Option func(*Service)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithCountryCode sets the calling code used to canonicalise reporter
// contacts before they are stored.
func WithCountryCode(cc string) Option {
	return func(s *Service) { s.countryCode = cc }
}

// WithLocation sets the time zone whose calendar year scopes tracking ids.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

// Service is the business boundary for complaint operations.
type Service struct {
	store      Store
	classifier Classifier
	notifier   Notifier
	logger     log.Logger
	metrics    *Metrics
	ids        *IDGenerator
	now        func() time.Time
	loc        *time.Location

	countryCode string
}

// NewService creates a new complaint service. classifier, notifier, logger and
// metrics may be nil.
func NewService(store Store, classifier Classifier, notifier Notifier, logger log.Logger, metrics *Metrics, opts ...Option) *Service {
	if store == nil {
		panic(xerrors.New("complaint store is required"))
	}
	if classifier == nil {
		classifier = nopClassifier{}
	}
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if logger == nil {
		logger = log.Nop()
	}

	s := &Service{
		store:      store,
		classifier: classifier,
		notifier:   notifier,
		logger:     logger,
		metrics:    metrics,
		now:        time.Now,
		loc:        time.UTC,

		countryCode: DefaultCountryCode,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ids = NewIDGenerator(store, s.now, s.loc)
	return s
}

// Submit validates, classifies, prioritises and stores a new complaint, then
// notifies the reporter. Notification failures never fail the submission.
func (s *Service) Submit(ctx context.Context, req *SubmitRequest) (*TriageResult, error) {
	if err := validateSubmit(req); err != nil {
		s.metrics.submit("invalid")
		return nil, err
	}

	sentiment := s.classify(ctx, req.Description)
	priority := DeterminePriority(sentiment.Label, req.Description)
	_, _, keywordMatched := MatchedKeyword(req.Description)

	now := s.now().In(s.loc)
	c, err := s.ids.CreateAt(ctx, now, func(id string) *Complaint {
		return &Complaint{
			TrackingID:      id,
			ReporterID:      req.ReporterID,
			ReporterName:    strings.TrimSpace(req.ReporterName),
			ReporterContact: CanonicalContact(req.ReporterContact, s.countryCode),
			ReporterEmail:   strings.TrimSpace(req.ReporterEmail),
			Category:        strings.TrimSpace(req.Category),
			Location:        strings.TrimSpace(req.Location),
			Description:     req.Description,
			Sentiment:       sentiment.Label,
			Confidence:      sentiment.Confidence,
			Priority:        priority,
			Status:          StatusReceived,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
	})
	if err != nil {
		if errors.Is(err, ErrIdentifierCollision) {
			s.metrics.collision()
			s.logger.Error(ctx, err, "tracking id invariant violated")
		}
		s.metrics.submit("error")
		return nil, err
	}

	L := s.logger.With("tracking_id", c.TrackingID)

	s.metrics.submit("accepted")
	s.metrics.accepted(c, keywordMatched)

	L.Info(ctx, "complaint accepted",
		"category", c.Category,
		"priority", c.Priority,
		"sentiment", c.Sentiment,
		"confidence", c.Confidence,
	)

	// persisted; delivery problems stay inside the notifier
	s.notifier.ComplaintReceived(context.WithoutCancel(ctx), c)

	return &TriageResult{
		TrackingID: c.TrackingID,
		Sentiment:  c.Sentiment,
		Confidence: c.Confidence,
		Priority:   c.Priority,
	}, nil
}

// SetStatus moves a complaint to status, stores the admin notes and notifies
// the reporter. Any status may follow any other.
func (s *Service) SetStatus(ctx context.Context, trackingID, status, notes string) (*Complaint, error) {
	st, err := ParseStatus(status)
	if err != nil {
		s.metrics.statusUpdate("invalid")
		return nil, err
	}
	trackingID = strings.TrimSpace(trackingID)
	notes = strings.TrimSpace(notes)

	c, ok, err := s.store.UpdateStatus(ctx, trackingID, st, notes, s.now())
	if err != nil {
		s.metrics.statusUpdate("error")
		return nil, err
	}
	if !ok {
		s.metrics.statusUpdate("not_found")
		return nil, ErrNotFound
	}

	s.metrics.statusUpdate("updated")
	s.logger.Info(ctx, "complaint status updated",
		"tracking_id", trackingID,
		"status", st,
	)

	s.notifier.StatusChanged(context.WithoutCancel(ctx), c)
	return c, nil
}

// Get retrieves a complaint by tracking id.
func (s *Service) Get(ctx context.Context, trackingID string) (*Complaint, bool, error) {
	return s.store.Get(ctx, strings.TrimSpace(trackingID))
}

// List returns complaints newest first.
func (s *Service) List(ctx context.Context, f ListFilter) ([]*Complaint, error) {
	return s.store.List(ctx, f)
}

// Search finds complaints by exact tracking id or a fragment of the reporter
// contact. A query written in local (0812..) or + form is canonicalised
// first so it matches stored contacts.
func (s *Service) Search(ctx context.Context, q string) ([]*Complaint, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, &ValidationError{Field: "q", Reason: "search term is required"}
	}
	if _, _, err := ParseTrackingID(q); err != nil && (strings.HasPrefix(q, "0") || strings.HasPrefix(q, "+")) {
		q = CanonicalContact(q, s.countryCode)
	}
	return s.store.Search(ctx, q)
}

// Analyze previews the sentiment and priority of text without storing anything.
func (s *Service) Analyze(ctx context.Context, text string) *Analysis {
	if utf8.RuneCountInString(text) < minAnalyzeLen {
		return &Analysis{Sentiment: UnknownLabel, Priority: PriorityLow}
	}
	sentiment := s.classify(ctx, text)
	return &Analysis{
		Sentiment:  sentiment.Label,
		Confidence: sentiment.Confidence,
		Priority:   DeterminePriority(sentiment.Label, text),
	}
}

func (s *Service) classify(ctx context.Context, raw string) Sentiment {
	normalized := textnorm.Normalize(raw)
	if normalized == "" {
		return Unknown()
	}
	start := time.Now()
	out := clamp(s.classifier.Classify(ctx, normalized))
	s.metrics.classified(out, time.Since(start).Seconds())
	return out
}

func validateSubmit(req *SubmitRequest) error {
	if req == nil {
		return &ValidationError{Reason: "request is required"}
	}
	var missing []string
	if strings.TrimSpace(req.Category) == "" {
		missing = append(missing, "category")
	}
	if strings.TrimSpace(req.Location) == "" {
		missing = append(missing, "location")
	}
	if strings.TrimSpace(req.Description) == "" {
		missing = append(missing, "description")
	}
	if len(missing) > 0 {
		return &ValidationError{Field: strings.Join(missing, ","), Reason: "required"}
	}
	return nil
}
