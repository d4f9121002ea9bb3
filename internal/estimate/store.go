// Package estimate is the receiving side of a takeoff handoff: a SQLite
// inbox of payloads and the HTTP API in front of it.
package estimate

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"plan-takeoff/internal/export"
	"plan-takeoff/internal/measure"
)

//go:embed migrations/001_init.sql
var schema string

var (
	// ErrNotFound is returned when no handoff has the requested id.
	ErrNotFound = errors.New("handoff not found")
	// ErrInvalidPayload is returned for payloads the inbox cannot store.
	ErrInvalidPayload = errors.New("invalid handoff payload")
)

// Summary is one row of the inbox listing.
type Summary struct {
	ID         string             `json:"id"`
	Drawing    export.DrawingInfo `json:"drawing"`
	Items      int                `json:"items"`
	ReceivedAt time.Time          `json:"received_at"`
}

// Handoff is a stored payload.
type Handoff struct {
	ID         string         `json:"id"`
	ReceivedAt time.Time      `json:"received_at"`
	Payload    export.Payload `json:"payload"`
}

// Store is the SQLite-backed inbox.
type Store struct {
	db *sql.DB
}

// Open opens or creates the inbox database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?mode=rwc&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return &Store{db: db}, nil
}

// Init creates the schema if it does not exist.
func (s *Store) Init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Validate checks that a payload can be stored.
func Validate(p export.Payload) error {
	if p.Drawing.Name == "" {
		return fmt.Errorf("%w: drawing name is required", ErrInvalidPayload)
	}
	if len(p.Measurements) == 0 {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, export.ErrNothingToExport)
	}
	for i, m := range p.Measurements {
		if !m.Mode.Valid() {
			return fmt.Errorf("%w: measurement %d has unknown mode", ErrInvalidPayload, i)
		}
		if _, err := measure.NewGeometry(m.Mode, m.Points); err != nil {
			return fmt.Errorf("%w: measurement %q: %v", ErrInvalidPayload, m.Label, err)
		}
	}
	return nil
}

// Receive stores a payload and returns its inbox id.
func (s *Store) Receive(ctx context.Context, p export.Payload) (string, error) {
	if err := Validate(p); err != nil {
		return "", err
	}
	id := uuid.NewString()
	now := time.Now().UTC()
	if p.SentAt.IsZero() {
		p.SentAt = now
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
        INSERT INTO handoffs (id, drawing_id, drawing_name, trade, floor, page, scale, sent_at, received_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
    `, id, p.Drawing.ID, p.Drawing.Name, p.Drawing.Trade, p.Drawing.Floor, p.Drawing.Page,
		p.Drawing.Scale, p.SentAt.UTC().Format(time.RFC3339Nano), now.Format(time.RFC3339Nano))
	if err != nil {
		return "", fmt.Errorf("insert handoff: %w", err)
	}

	for i, m := range p.Measurements {
		pts, err := json.Marshal(m.Points)
		if err != nil {
			return "", err
		}
		_, err = tx.ExecContext(ctx, `
            INSERT INTO handoff_items (handoff_id, position, measurement_id, label, mode, quantity, units, details, points)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
        `, id, i, m.ID, m.Label, m.Mode.String(), m.Quantity, m.Units, m.Details, string(pts))
		if err != nil {
			return "", fmt.Errorf("insert item %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// Handoff stores p; its signature matches export.HandoffFunc so an
// in-process inbox can receive directly from the workspace.
func (s *Store) Handoff(p export.Payload) error {
	_, err := s.Receive(context.Background(), p)
	return err
}

// List returns every handoff, newest first.
func (s *Store) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT h.id, h.drawing_id, h.drawing_name, h.trade, h.floor, h.page, h.scale, h.received_at,
               (SELECT COUNT(*) FROM handoff_items i WHERE i.handoff_id = h.id)
        FROM handoffs h
        ORDER BY h.received_at DESC, h.rowid DESC
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var sm Summary
		var received string
		d := &sm.Drawing
		if err := rows.Scan(&sm.ID, &d.ID, &d.Name, &d.Trade, &d.Floor, &d.Page, &d.Scale, &received, &sm.Items); err != nil {
			return nil, err
		}
		sm.ReceivedAt, _ = time.Parse(time.RFC3339Nano, received)
		out = append(out, sm)
	}
	return out, rows.Err()
}

// Get returns one handoff with its measurements in their original order.
func (s *Store) Get(ctx context.Context, id string) (*Handoff, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT drawing_id, drawing_name, trade, floor, page, scale, sent_at, received_at
        FROM handoffs
        WHERE id = ?
    `, id)

	h := Handoff{ID: id}
	d := &h.Payload.Drawing
	var sent, received string
	if err := row.Scan(&d.ID, &d.Name, &d.Trade, &d.Floor, &d.Page, &d.Scale, &sent, &received); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	h.Payload.SentAt, _ = time.Parse(time.RFC3339Nano, sent)
	h.ReceivedAt, _ = time.Parse(time.RFC3339Nano, received)

	rows, err := s.db.QueryContext(ctx, `
        SELECT measurement_id, label, mode, quantity, units, details, points
        FROM handoff_items
        WHERE handoff_id = ?
        ORDER BY position
    `, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	h.Payload.Measurements = []export.Item{}
	for rows.Next() {
		var it export.Item
		var mode, pts string
		if err := rows.Scan(&it.ID, &it.Label, &mode, &it.Quantity, &it.Units, &it.Details, &pts); err != nil {
			return nil, err
		}
		if it.Mode, err = measure.ParseMode(mode); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(pts), &it.Points); err != nil {
			return nil, fmt.Errorf("item %s points: %w", it.ID, err)
		}
		h.Payload.Measurements = append(h.Payload.Measurements, it)
	}
	return &h, rows.Err()
}

// Totals sums a handoff's quantities per unit.
func (h *Handoff) Totals() map[string]float64 {
	out := make(map[string]float64)
	for _, m := range h.Payload.Measurements {
		out[m.Units] += m.Quantity
	}
	return out
}
