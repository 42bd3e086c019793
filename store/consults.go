package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"frontdesk/extract"
)

var (
	// ErrConsultInvalid means the request failed field validation.
	ErrConsultInvalid = errors.New("invalid consult request")
	// ErrConsultConflict means the requested slot overlaps an existing one.
	ErrConsultConflict = errors.New("consult slot conflicts with an existing booking")
)

// Consult statuses
const (
	ConsultPending   = "pending"
	ConsultConfirmed = "confirmed"
	ConsultCancelled = "cancelled"
)

const defaultConsultMinutes = 30

// Consult is one scheduled consultation created by the web front-end or the
// agent on a caller's behalf.
type Consult struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	ScheduledAt     time.Time `json:"preferredDate"`
	DurationMinutes int       `json:"durationMinutes"`
	Notes           string    `json:"notes,omitempty"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Validate checks the consult request contract: name required, syntactically
// valid email, non-empty phone, a scheduled time.
func (c *Consult) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrConsultInvalid)
	}
	if !extract.ValidEmail(c.Email) {
		return fmt.Errorf("%w: email %q is not valid", ErrConsultInvalid, c.Email)
	}
	if strings.TrimSpace(c.Phone) == "" {
		return fmt.Errorf("%w: phone is required", ErrConsultInvalid)
	}
	if c.ScheduledAt.IsZero() {
		return fmt.Errorf("%w: preferred date is required", ErrConsultInvalid)
	}
	return nil
}

// CreateConsult validates and persists a consult request, rejecting slots
// that overlap an existing non-cancelled booking.
func (s *Store) CreateConsult(c *Consult) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.DurationMinutes <= 0 {
		c.DurationMinutes = defaultConsultMinutes
	}
	c.ID = uuid.New().String()
	c.Status = ConsultPending
	c.CreatedAt = time.Now()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	conflict, err := s.hasConflict(tx, c)
	if err != nil {
		return fmt.Errorf("check conflicts: %w", err)
	}
	if conflict {
		return ErrConsultConflict
	}

	_, err = tx.Exec(`INSERT INTO consults
		(id, name, email, phone, scheduled_at, duration_minutes, notes, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Email, c.Phone,
		c.ScheduledAt.UTC().Format(time.RFC3339),
		c.DurationMinutes, c.Notes, c.Status,
		c.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert consult: %w", err)
	}
	return tx.Commit()
}

func (s *Store) hasConflict(tx *sql.Tx, c *Consult) (bool, error) {
	start := c.ScheduledAt.UTC()
	end := start.Add(time.Duration(c.DurationMinutes) * time.Minute)

	rows, err := tx.Query(`SELECT scheduled_at, duration_minutes FROM consults WHERE status != ?`, ConsultCancelled)
	if err != nil {
		return false, err
	}
	defer rows.Close()

	for rows.Next() {
		var at string
		var minutes int
		if err := rows.Scan(&at, &minutes); err != nil {
			return false, err
		}
		otherStart, err := time.Parse(time.RFC3339, at)
		if err != nil {
			continue
		}
		otherEnd := otherStart.Add(time.Duration(minutes) * time.Minute)
		if start.Before(otherEnd) && otherStart.Before(end) {
			return true, nil
		}
	}
	return false, rows.Err()
}

// GetConsult retrieves one consult by id.
func (s *Store) GetConsult(id string) (*Consult, error) {
	row := s.db.QueryRow(`SELECT id, name, email, phone, scheduled_at, duration_minutes, notes, status, created_at
		FROM consults WHERE id = ?`, id)
	c, err := scanConsult(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: consult %s", ErrNotFound, id)
	}
	return c, err
}

// ListConsults returns all consults ordered by scheduled time.
func (s *Store) ListConsults() ([]Consult, error) {
	rows, err := s.db.Query(`SELECT id, name, email, phone, scheduled_at, duration_minutes, notes, status, created_at
		FROM consults ORDER BY scheduled_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Consult
	for rows.Next() {
		c, err := scanConsult(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// UpdateConsultStatus moves a consult to a new status.
func (s *Store) UpdateConsultStatus(id, status string) error {
	switch status {
	case ConsultPending, ConsultConfirmed, ConsultCancelled:
	default:
		return fmt.Errorf("%w: unknown status %q", ErrConsultInvalid, status)
	}

	res, err := s.db.Exec(`UPDATE consults SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: consult %s", ErrNotFound, id)
	}
	return nil
}

func scanConsult(sc scanner) (*Consult, error) {
	var (
		c       Consult
		at      string
		created string
		notes   sql.NullString
	)
	err := sc.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &at, &c.DurationMinutes, &notes, &c.Status, &created)
	if err != nil {
		return nil, err
	}
	if c.ScheduledAt, err = time.Parse(time.RFC3339, at); err != nil {
		return nil, fmt.Errorf("parse scheduled_at: %w", err)
	}
	if c.CreatedAt, err = time.Parse(time.RFC3339, created); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	c.Notes = notes.String
	return &c, nil
}
