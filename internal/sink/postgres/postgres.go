// Package postgres appends registration records to a PostgreSQL table.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/daap14/flightclub/internal/registration"
)

const schema = `
	CREATE TABLE IF NOT EXISTS registrations (
		id            BIGSERIAL PRIMARY KEY,
		kind          TEXT NOT NULL,
		leader_name   TEXT NOT NULL,
		leader_roll   TEXT NOT NULL,
		leader_email  TEXT NOT NULL,
		leader_phone  TEXT NOT NULL,
		member_names  TEXT NOT NULL DEFAULT '',
		member_rolls  TEXT NOT NULL DEFAULT '',
		member_phones TEXT NOT NULL DEFAULT '',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`

// Sink implements registration.Sink using pgxpool.
type Sink struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

// New creates a Sink backed by the given connection pool.
func New(pool *pgxpool.Pool, timeout time.Duration) *Sink {
	return &Sink{pool: pool, timeout: timeout}
}

// EnsureSchema creates the registrations table if it does not exist.
func (s *Sink) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("creating registrations table: %w", err)
	}
	return nil
}

// Ping checks that the database is reachable.
func (s *Sink) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Append inserts rec as a new row.
func (s *Sink) Append(ctx context.Context, rec registration.Record) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	query := `
		INSERT INTO registrations (
			kind, leader_name, leader_roll, leader_email, leader_phone,
			member_names, member_rolls, member_phones
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := s.pool.Exec(ctx, query,
		string(rec.Kind),
		rec.LeaderName,
		rec.LeaderRoll,
		rec.LeaderEmail,
		rec.LeaderPhone,
		rec.MemberNames,
		rec.MemberRolls,
		rec.MemberPhones,
	)
	if err != nil {
		return registration.NewSinkError(Classify(err), fmt.Errorf("inserting registration: %w", err))
	}

	return nil
}

// Classify maps a pgx error to a sink error kind.
func Classify(err error) registration.SinkErrorKind {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		// invalid_authorization_specification, invalid_password
		case pgErr.Code == "28000", pgErr.Code == "28P01":
			return registration.SinkAuthFailure
		// connection_exception, insufficient_resources, operator_intervention
		case strings.HasPrefix(pgErr.Code, "08"),
			strings.HasPrefix(pgErr.Code, "53"),
			strings.HasPrefix(pgErr.Code, "57P"):
			return registration.SinkUnavailable
		}
		return registration.SinkUnknown
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return registration.SinkUnavailable
	}

	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) {
		return registration.SinkUnavailable
	}

	return registration.SinkUnknown
}
