package complaint

import (
	"context"
	"time"
)

// Store is the persistence interface for complaints.
type Store interface {
	SequenceStore

	// Create inserts a complaint under the tracking id it already carries,
	// for imports and fixtures. It returns ErrIdentifierCollision if the id is
	// taken and keeps later CreateNext sequences above it.
	Create(ctx context.Context, c *Complaint) error
	Get(ctx context.Context, trackingID string) (*Complaint, bool, error)
	// UpdateStatus sets status, notes and UpdatedAt and returns the updated
	// complaint. It reports false when no complaint has trackingID.
	UpdateStatus(ctx context.Context, trackingID string, status Status, notes string, at time.Time) (*Complaint, bool, error)
	CountInYear(ctx context.Context, year int) (int, error)
	List(ctx context.Context, f ListFilter) ([]*Complaint, error)
	Search(ctx context.Context, q string) ([]*Complaint, error)
}

// Notifier receives lifecycle events after they are persisted. Delivery is
// best-effort; implementations log their own failures.
type Notifier interface {
	ComplaintReceived(ctx context.Context, c *Complaint)
	StatusChanged(ctx context.Context, c *Complaint)
}

type nopNotifier struct{}

func (nopNotifier) ComplaintReceived(context.Context, *Complaint) {}
func (nopNotifier) StatusChanged(context.Context, *Complaint)     {}
