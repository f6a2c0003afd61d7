// Package pgstore provides a PostgreSQL implementation of complaint.Store.
package pgstore

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/linnemanlabs/tanggap/internal/complaint"
)

var tracer = otel.Tracer("github.com/linnemanlabs/tanggap/internal/complaint/pgstore")

//go:embed schema.sql
var schema string

// uniqueViolation is the SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// Store persists complaints in PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// New applies the schema on pool and returns a ready Store. The caller owns
// the pool.
func New(ctx context.Context, pool *pgxpool.Pool) (*Store, error) {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{pool: pool}, nil
}

const complaintColumns = `tracking_id, reporter_id, reporter_name, reporter_contact, reporter_email,
	category, location, description, sentiment, sentiment_confidence, priority, status,
	admin_notes, created_at, updated_at`

func startSpan(ctx context.Context, name, op string) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", op),
	))
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// CreateNext bumps year's counter row and inserts the complaint built for the
// new sequence in one transaction. The counter row lock serialises concurrent
// callers until commit, and a failed insert rolls the bump back. A year's
// first call seeds the counter from the highest sequence already stored.
func (s *Store) CreateNext(ctx context.Context, year int, build func(seq int) *complaint.Complaint) (*complaint.Complaint, error) {
	ctx, span := startSpan(ctx, "pgstore.CreateNext", "INSERT")
	defer span.End()
	span.SetAttributes(attribute.Int("tanggap.sequence.year", year))

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fail(span, fmt.Errorf("begin tx: %w", err))
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is harmless

	var seq int
	err = tx.QueryRow(ctx,
		`INSERT INTO tracking_sequences (year, last_seq)
		 VALUES ($1::integer, (SELECT COALESCE(max(seq), 0) FROM complaints WHERE seq_year = $1::integer) + 1)
		 ON CONFLICT (year) DO UPDATE SET last_seq = tracking_sequences.last_seq + 1
		 RETURNING last_seq`,
		year,
	).Scan(&seq)
	if err != nil {
		return nil, fail(span, fmt.Errorf("next sequence %d: %w", year, err))
	}

	c := build(seq)
	if err := insert(ctx, tx, c, year, seq); err != nil {
		return nil, fail(span, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fail(span, fmt.Errorf("commit: %w", err))
	}
	span.SetAttributes(attribute.String("tanggap.complaint.id", c.TrackingID))
	return c, nil
}

// Create inserts a complaint under the tracking ID it carries and raises an
// existing counter row past it.
func (s *Store) Create(ctx context.Context, c *complaint.Complaint) error {
	ctx, span := startSpan(ctx, "pgstore.Create", "INSERT")
	defer span.End()

	year, seq, err := complaint.ParseTrackingID(c.TrackingID)
	if err != nil {
		return fail(span, err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fail(span, fmt.Errorf("begin tx: %w", err))
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is harmless

	if err := insert(ctx, tx, c, year, seq); err != nil {
		return fail(span, err)
	}
	if _, err := tx.Exec(ctx,
		`UPDATE tracking_sequences SET last_seq = GREATEST(last_seq, $2) WHERE year = $1`,
		year, seq,
	); err != nil {
		return fail(span, fmt.Errorf("raise sequence %d: %w", year, err))
	}

	if err := tx.Commit(ctx); err != nil {
		return fail(span, fmt.Errorf("commit: %w", err))
	}
	return nil
}

func insert(ctx context.Context, tx pgx.Tx, c *complaint.Complaint, year, seq int) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO complaints (
			tracking_id, seq_year, seq, reporter_id, reporter_name, reporter_contact, reporter_email,
			category, location, description, sentiment, sentiment_confidence, priority, status,
			admin_notes, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`,
		c.TrackingID, year, seq, c.ReporterID, c.ReporterName, c.ReporterContact, c.ReporterEmail,
		c.Category, c.Location, c.Description, c.Sentiment, c.Confidence, string(c.Priority), string(c.Status),
		c.AdminNotes, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("create %s: %w", c.TrackingID, complaint.ErrIdentifierCollision)
		}
		return fmt.Errorf("insert complaint: %w", err)
	}
	return nil
}

// Get retrieves a complaint by tracking ID.
func (s *Store) Get(ctx context.Context, id string) (*complaint.Complaint, bool, error) {
	ctx, span := startSpan(ctx, "pgstore.Get", "SELECT")
	defer span.End()

	c, err := scanComplaint(s.pool.QueryRow(ctx,
		`SELECT `+complaintColumns+` FROM complaints WHERE tracking_id = $1`, id))
	if err != nil {
		return nil, false, fail(span, err)
	}
	if c == nil {
		return nil, false, nil
	}
	return c, true, nil
}

// UpdateStatus sets the lifecycle columns and returns the updated row.
func (s *Store) UpdateStatus(ctx context.Context, id string, status complaint.Status, notes string, at time.Time) (*complaint.Complaint, bool, error) {
	ctx, span := startSpan(ctx, "pgstore.UpdateStatus", "UPDATE")
	defer span.End()

	c, err := scanComplaint(s.pool.QueryRow(ctx,
		`UPDATE complaints SET status = $2, admin_notes = $3, updated_at = $4
		 WHERE tracking_id = $1
		 RETURNING `+complaintColumns,
		id, string(status), notes, at,
	))
	if err != nil {
		return nil, false, fail(span, fmt.Errorf("update status: %w", err))
	}
	if c == nil {
		return nil, false, nil
	}
	return c, true, nil
}

// CountInYear counts complaints whose tracking ID belongs to year.
func (s *Store) CountInYear(ctx context.Context, year int) (int, error) {
	ctx, span := startSpan(ctx, "pgstore.CountInYear", "SELECT")
	defer span.End()

	var n int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM complaints WHERE seq_year = $1`, year).Scan(&n); err != nil {
		return 0, fail(span, fmt.Errorf("count complaints %d: %w", year, err))
	}
	return n, nil
}

// List returns matching complaints newest first.
func (s *Store) List(ctx context.Context, f complaint.ListFilter) ([]*complaint.Complaint, error) {
	ctx, span := startSpan(ctx, "pgstore.List", "SELECT")
	defer span.End()

	var (
		where []string
		args  []any
	)
	if f.ReporterID != "" {
		args = append(args, f.ReporterID)
		where = append(where, "reporter_id = $"+strconv.Itoa(len(args)))
	}
	if f.Status != "" {
		args = append(args, string(f.Status))
		where = append(where, "status = $"+strconv.Itoa(len(args)))
	}

	query := `SELECT ` + complaintColumns + ` FROM complaints`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, seq_year DESC, seq DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}

	out, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, fail(span, err)
	}
	return out, nil
}

// Search matches an exact tracking ID or a reporter contact fragment.
func (s *Store) Search(ctx context.Context, q string) ([]*complaint.Complaint, error) {
	ctx, span := startSpan(ctx, "pgstore.Search", "SELECT")
	defer span.End()

	out, err := s.query(ctx,
		`SELECT `+complaintColumns+` FROM complaints
		 WHERE tracking_id = $1 OR strpos(reporter_contact, $1) > 0
		 ORDER BY created_at DESC, seq_year DESC, seq DESC`,
		q,
	)
	if err != nil {
		return nil, fail(span, err)
	}
	return out, nil
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]*complaint.Complaint, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query complaints: %w", err)
	}
	defer rows.Close()

	var out []*complaint.Complaint
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate complaints: %w", err)
	}
	return out, nil
}

// scanComplaint scans a single row into a complaint.Complaint.
// Returns (nil, nil) when no row is found.
func scanComplaint(row pgx.Row) (*complaint.Complaint, error) {
	var (
		c        complaint.Complaint
		priority string
		status   string
	)
	err := row.Scan(
		&c.TrackingID, &c.ReporterID, &c.ReporterName, &c.ReporterContact, &c.ReporterEmail,
		&c.Category, &c.Location, &c.Description, &c.Sentiment, &c.Confidence, &priority, &status,
		&c.AdminNotes, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan: %w", err)
	}
	c.Priority = complaint.Priority(priority)
	c.Status = complaint.Status(status)
	return &c, nil
}
