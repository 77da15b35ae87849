package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/erazemk/stockledger/internal/apperr"
)

// APILog is one recorded API request.
type APILog struct {
	ID         int64     `json:"id"`
	UserID     *int64    `json:"user_id,omitempty"`
	Method     string    `json:"method"`
	Path       string    `json:"path"`
	StatusCode int       `json:"status_code"`
	DurationMS int64     `json:"duration_ms"`
	RequestID  string    `json:"request_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// RecordAPILog stores an API request record.
func (s *Store) RecordAPILog(ctx context.Context, l APILog) error {
	if l.CreatedAt.IsZero() {
		l.CreatedAt = s.timestamp()
	}
	_, err := s.db.ExecContext(ctx,
		s.q(`INSERT INTO api_logs (user_id, method, path, status_code, duration_ms, request_id, created_at)
		     VALUES (?, ?, ?, ?, ?, ?, ?)`),
		l.UserID, l.Method, l.Path, l.StatusCode, l.DurationMS, l.RequestID, toMicros(l.CreatedAt),
	)
	if err != nil {
		return apperr.Persistence("recording api log", err)
	}
	return nil
}

// ListAPILogs returns the most recent API request records, newest first.
func (s *Store) ListAPILogs(ctx context.Context, limit int) ([]APILog, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, method, path, status_code, duration_ms, request_id, created_at
		 FROM api_logs ORDER BY id DESC`+limitClause(limit),
	)
	if err != nil {
		return nil, apperr.Persistence("listing api logs", err)
	}
	defer rows.Close()

	var logs []APILog
	for rows.Next() {
		var l APILog
		var userID sql.NullInt64
		var requestID sql.NullString
		var createdAt int64
		if err := rows.Scan(&l.ID, &userID, &l.Method, &l.Path, &l.StatusCode, &l.DurationMS, &requestID, &createdAt); err != nil {
			return nil, apperr.Persistence("scanning api log", err)
		}
		l.UserID = nullableID(userID)
		l.RequestID = requestID.String
		l.CreatedAt = fromMicros(createdAt)
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence("listing api logs", err)
	}
	return logs, nil
}
