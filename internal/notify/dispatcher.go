// Package notify delivers complaint lifecycle messages to reporters.
//
// Delivery is best-effort and at-most-once per event: the Dispatcher never
// retries and never returns an error to the caller. Every attempt produces an
// Outcome that is logged and counted.
package notify

import (
	"context"
	"errors"
	"time"

	"github.com/linnemanlabs/go-core/log"
	"github.com/oklog/ulid/v2"

	"github.com/linnemanlabs/tanggap/internal/complaint"
)

// DefaultTimeout bounds a single send.
const DefaultTimeout = 10 * time.Second

// ErrNoSender means no messaging gateway is configured.
var ErrNoSender = errors.New("notify: no sender configured")

// Sender is the outbound messaging capability.
type Sender interface {
	Send(ctx context.Context, contact, text string) error
}

// SenderFunc adapts a plain function to Sender.
type SenderFunc func(ctx context.Context, contact, text string) error

// Send implements Sender.
func (f SenderFunc) Send(ctx context.Context, contact, text string) error {
	return f(ctx, contact, text)
}

// OutcomeStatus is the result of one delivery attempt.
type OutcomeStatus string

const (
	OutcomeDelivered OutcomeStatus = "delivered"
	OutcomeFailed    OutcomeStatus = "failed"
	OutcomeSkipped   OutcomeStatus = "skipped"
)

// Outcome describes one notification, delivered or not.
type Outcome struct {
	DeliveryID string
	Event      Event
	TrackingID string
	Contact    string
	Status     OutcomeStatus
	Err        error
	Duration   time.Duration
}

// Delivered reports whether the gateway accepted the message.
func (o Outcome) Delivered() bool { return o.Status == OutcomeDelivered }

// Option customises a Dispatcher.
type Option func(*Dispatcher)

// WithCountryCode overrides complaint.DefaultCountryCode.
func WithCountryCode(cc string) Option {
	return func(d *Dispatcher) {
		if cc != "" {
			d.countryCode = cc
		}
	}
}

// WithTimeout overrides DefaultTimeout.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

// WithMetrics records outcomes on m.
func WithMetrics(m *Metrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

// Dispatcher formats lifecycle messages and hands them to a Sender.
type Dispatcher struct {
	sender      Sender
	countryCode string
	timeout     time.Duration
	logger      log.Logger
	metrics     *Metrics
}

// NewDispatcher creates a Dispatcher. A nil sender turns every attempt into a
// failed outcome, matching an unconfigured gateway.
func NewDispatcher(sender Sender, logger log.Logger, opts ...Option) *Dispatcher {
	if logger == nil {
		logger = log.Nop()
	}
	d := &Dispatcher{
		sender:      sender,
		countryCode: complaint.DefaultCountryCode,
		timeout:     DefaultTimeout,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// ComplaintReceived implements complaint.Notifier.
func (d *Dispatcher) ComplaintReceived(ctx context.Context, c *complaint.Complaint) {
	d.Notify(ctx, EventSubmissionAccepted, c.TrackingID, c.ReporterContact, SubmissionAccepted(c))
}

// StatusChanged implements complaint.Notifier.
func (d *Dispatcher) StatusChanged(ctx context.Context, c *complaint.Complaint) {
	d.Notify(ctx, EventStatusChanged, c.TrackingID, c.ReporterContact, StatusChanged(c))
}

// Notify sends text to contact once. It never fails; the Outcome says what happened.
func (d *Dispatcher) Notify(ctx context.Context, event Event, trackingID, contact, text string) Outcome {
	out := Outcome{
		DeliveryID: ulid.Make().String(),
		Event:      event,
		TrackingID: trackingID,
		Contact:    complaint.CanonicalContact(contact, d.countryCode),
	}

	L := d.logger.With(
		"delivery_id", out.DeliveryID,
		"event", event,
		"tracking_id", trackingID,
	)

	if out.Contact == "" {
		out.Status = OutcomeSkipped
		d.metrics.observe(out)
		L.Info(ctx, "notification skipped, no reporter contact")
		return out
	}

	start := time.Now()
	out.Err = d.send(ctx, out.Contact, text)
	out.Duration = time.Since(start)

	if out.Err != nil {
		out.Status = OutcomeFailed
		d.metrics.observe(out)
		L.Error(ctx, out.Err, "notification failed", "contact", out.Contact, "duration", out.Duration.Seconds())
		return out
	}

	out.Status = OutcomeDelivered
	d.metrics.observe(out)
	L.Info(ctx, "notification delivered", "contact", out.Contact, "duration", out.Duration.Seconds())
	return out
}

func (d *Dispatcher) send(ctx context.Context, contact, text string) (err error) {
	if d.sender == nil {
		return ErrNoSender
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	// a misbehaving gateway client must not take the request down with it
	defer func() {
		if r := recover(); r != nil {
			err = errors.New("notify: sender panicked")
		}
	}()

	if err := d.sender.Send(ctx, contact, text); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			return errors.Join(err, ctxErr)
		}
		return err
	}
	return nil
}
