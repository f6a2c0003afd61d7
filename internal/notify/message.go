package notify

import (
	"fmt"
	"strings"

	"github.com/linnemanlabs/tanggap/internal/complaint"
)

// Event names a lifecycle message type.
type Event string

const (
	EventSubmissionAccepted Event = "submission_accepted"
	EventStatusChanged      Event = "status_changed"
)

const rule = "━━━━━━━━━━━━━━━━━━"

// SubmissionAccepted renders the receipt sent after a complaint is stored.
func SubmissionAccepted(c *complaint.Complaint) string {
	var b strings.Builder
	b.WriteString("*TANGGAP MEDAN*\n")
	b.WriteString(rule + "\n")
	b.WriteString("Pengaduan Anda telah kami terima!\n\n")
	fmt.Fprintf(&b, "ID Laporan: %s\n", c.TrackingID)
	fmt.Fprintf(&b, "Kategori: %s\n", c.Category)
	fmt.Fprintf(&b, "Lokasi: %s\n", c.Location)
	fmt.Fprintf(&b, "Prioritas: %s\n", c.Priority.Label())
	fmt.Fprintf(&b, "Sentimen: %s\n\n", c.Sentiment)
	b.WriteString("Status pengaduan Anda akan kami update melalui WhatsApp ini.\n\n")
	b.WriteString("Terima kasih telah menggunakan layanan Tanggap Medan.\n")
	b.WriteString(rule)
	return b.String()
}

// StatusChanged renders the update sent after an admin changes the status.
func StatusChanged(c *complaint.Complaint) string {
	var b strings.Builder
	b.WriteString("*TANGGAP MEDAN - UPDATE STATUS*\n")
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "ID Laporan: %s\n\n", c.TrackingID)
	fmt.Fprintf(&b, "Status Baru: %s\n\n", c.Status.Label())
	if c.AdminNotes != "" {
		fmt.Fprintf(&b, "Catatan Admin: %s\n\n", c.AdminNotes)
	}
	b.WriteString("Terima kasih atas kesabaran Anda.\n")
	b.WriteString(rule)
	return b.String()
}
