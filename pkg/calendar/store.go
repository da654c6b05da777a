package calendar

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store is the Postgres-backed scheduler. One Store (and its pool) is
// shared by all concurrent calls in the process; pgxpool is safe for
// concurrent use.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewStore connects to the slot database and runs pending migrations.
func NewStore(ctx context.Context, databaseURL string, logger *slog.Logger) (*Store, error) {
	if databaseURL == "" {
		return nil, ErrNotConfigured
	}
	if logger == nil {
		logger = slog.Default()
	}

	if err := migrate(databaseURL); err != nil {
		return nil, err
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect slot database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping slot database: %w", err)
	}
	return &Store{pool: pool, logger: logger}, nil
}

// migrate applies the embedded schema migrations. goose drives a
// database/sql connection through the pgx stdlib adapter.
func migrate(databaseURL string) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set migration dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("apply calendar migrations: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// GetSlots returns up to count open weekday slots, the earliest no
// sooner than offsetDays from today.
func (s *Store) GetSlots(ctx context.Context, offsetDays, count int) ([]Slot, error) {
	if offsetDays < 1 {
		offsetDays = 1
	}
	rows, err := s.pool.Query(ctx, `
		SELECT slot_date, slot_time
		FROM interview_slots
		WHERE NOT booked
		  AND slot_date >= CURRENT_DATE + $1::int
		  AND EXTRACT(ISODOW FROM slot_date) < 6
		ORDER BY slot_date, slot_time
		LIMIT $2`, offsetDays, count)
	if err != nil {
		return nil, fmt.Errorf("query slots: %w", err)
	}
	defer rows.Close()
	return s.collectSlots(rows)
}

// GetSlotsForDate returns the open slots on one specific date.
func (s *Store) GetSlotsForDate(ctx context.Context, date string) ([]Slot, error) {
	d, err := ParseDate(date)
	if err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, `
		SELECT slot_date, slot_time
		FROM interview_slots
		WHERE NOT booked AND slot_date = $1
		ORDER BY slot_time`, d)
	if err != nil {
		return nil, fmt.Errorf("query slots for %s: %w", date, err)
	}
	defer rows.Close()
	return s.collectSlots(rows)
}

func (s *Store) collectSlots(rows pgx.Rows) ([]Slot, error) {
	today := time.Now()
	var slots []Slot
	for rows.Next() {
		var d time.Time
		var tod string
		if err := rows.Scan(&d, &tod); err != nil {
			return nil, fmt.Errorf("scan slot row: %w", err)
		}
		slots = append(slots, Slot{
			Date:   d.Format("2006-01-02"),
			Time:   tod,
			Spoken: FormatSpoken(d, tod, today),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read slot rows: %w", err)
	}
	return slots, nil
}

// CreateEvent books the matching slot and records the interview event,
// returning the event id.
func (s *Store) CreateEvent(ctx context.Context, candidate, date, timeOfDay, title string) (string, error) {
	d, err := ParseDate(date)
	if err != nil {
		return "", err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("begin booking: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Best effort: the slot row may not exist when the candidate asked
	// for an off-list moment; the event is still recorded.
	if _, err := tx.Exec(ctx, `
		UPDATE interview_slots SET booked = TRUE
		WHERE slot_date = $1 AND slot_time = $2 AND NOT booked`, d, timeOfDay); err != nil {
		return "", fmt.Errorf("book slot: %w", err)
	}

	var id string
	err = tx.QueryRow(ctx, `
		INSERT INTO interview_events (candidate_name, slot_date, slot_time, title)
		VALUES ($1, $2, $3, $4)
		RETURNING id::text`, candidate, d, timeOfDay, title).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("record interview event: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("commit booking: %w", err)
	}
	s.logger.Info("interview event created", "event_id", id, "date", date, "time", timeOfDay)
	return id, nil
}
