package notify

import (
	"context"

	"github.com/linnemanlabs/tanggap/internal/complaint"
)

// Fanout delivers each event to every notifier in order. nil entries are skipped.
type Fanout []complaint.Notifier

// ComplaintReceived implements complaint.Notifier.
func (f Fanout) ComplaintReceived(ctx context.Context, c *complaint.Complaint) {
	for _, n := range f {
		if n != nil {
			n.ComplaintReceived(ctx, c)
		}
	}
}

// StatusChanged implements complaint.Notifier.
func (f Fanout) StatusChanged(ctx context.Context, c *complaint.Complaint) {
	for _, n := range f {
		if n != nil {
			n.StatusChanged(ctx, c)
		}
	}
}
