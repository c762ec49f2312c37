// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/danielhkuo/tripsync/models"
)

// SQLStore keeps each session as a JSON document in the trip_session table.
// Queries use $N placeholders, which both lib/pq and modernc.org/sqlite accept.
type SQLStore struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewSQLStore(db *sql.DB, logger *slog.Logger) *SQLStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLStore{db: db, logger: logger}
}

func (s *SQLStore) Create(ctx context.Context, session *models.Session) error {
	session.Version = 1
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO trip_session (id, state, version, payload, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, session.ID, string(session.State), session.Version, string(payload), session.CreatedAt.UTC(), now)
	if err != nil {
		session.Version = 0
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		s.logger.Error("failed to insert session", "session_id", session.ID, "error", err)
		return fmt.Errorf("failed to insert session: %w", err)
	}

	return nil
}

func (s *SQLStore) Get(ctx context.Context, id string) (*models.Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT version, payload FROM trip_session WHERE id = $1
	`, id)

	session, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, notFound(id)
	}
	if err != nil {
		s.logger.Error("failed to query session", "session_id", id, "error", err)
		return nil, err
	}
	return session, nil
}

func (s *SQLStore) Put(ctx context.Context, session *models.Session) error {
	next := *session
	next.Version = session.Version + 1
	payload, err := json.Marshal(&next)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE trip_session
		SET state = $1, version = $2, payload = $3, updated_at = $4
		WHERE id = $5 AND version = $6
	`, string(session.State), next.Version, string(payload), time.Now().UTC(), session.ID, session.Version)
	if err != nil {
		s.logger.Error("failed to update session", "session_id", session.ID, "error", err)
		return fmt.Errorf("failed to update session: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		var exists bool
		err := s.db.QueryRowContext(ctx, `
			SELECT EXISTS(SELECT 1 FROM trip_session WHERE id = $1)
		`, session.ID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check session: %w", err)
		}
		if !exists {
			return notFound(session.ID)
		}
		return ErrVersionConflict
	}

	session.Version = next.Version
	return nil
}

func (s *SQLStore) ListByState(ctx context.Context, state models.State) ([]*models.Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT version, payload FROM trip_session WHERE state = $1 ORDER BY id
	`, string(state))
	if err != nil {
		s.logger.Error("failed to list sessions", "state", state, "error", err)
		return nil, err
	}
	defer rows.Close()

	var sessions []*models.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}

	return sessions, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*models.Session, error) {
	var version int64
	var payload string
	if err := row.Scan(&version, &payload); err != nil {
		return nil, err
	}

	var session models.Session
	if err := json.Unmarshal([]byte(payload), &session); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	session.Version = version
	return &session, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return true
		case sqlite3.SQLITE_CONSTRAINT:
			// extended result codes disabled; only the primary key can clash here
			return true
		}
	}
	return false
}
