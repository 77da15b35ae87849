package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/erazemk/stockledger/internal/apperr"
	"github.com/erazemk/stockledger/internal/model"
)

const userColumns = `id, username, password_hash, role, site_id, created_at, deleted_at`

// validateUserScope checks the role and its home site. Every role except
// ADMIN is bound to a site.
func (s *Store) validateUserScope(ctx context.Context, role string, siteID *int64) error {
	if !model.ValidRole(role) {
		return apperr.Validation("invalid role %q", role)
	}
	if siteID == nil {
		if role != model.RoleAdmin {
			return apperr.Validation("role %s requires a home site", role)
		}
		return nil
	}
	return s.checkSite(ctx, s.db, *siteID)
}

// CreateUser creates a new user.
func (s *Store) CreateUser(ctx context.Context, username, passwordHash, role string, siteID *int64) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperr.Validation("username is required")
	}
	if err := s.validateUserScope(ctx, role, siteID); err != nil {
		return nil, err
	}

	createdAt := s.timestamp()
	var id int64
	err := s.db.QueryRowContext(ctx,
		s.q(`INSERT INTO users (username, password_hash, role, site_id, created_at) VALUES (?, ?, ?, ?, ?) RETURNING id`),
		username, passwordHash, role, siteID, toMicros(createdAt),
	).Scan(&id)
	if isUniqueViolation(err) {
		return nil, apperr.Validation("username already exists")
	}
	if err != nil {
		return nil, apperr.Persistence("creating user", err)
	}

	return &model.User{
		ID:           id,
		Username:     username,
		PasswordHash: passwordHash,
		Role:         role,
		SiteID:       siteID,
		CreatedAt:    createdAt,
	}, nil
}

func scanUser(sc interface{ Scan(...any) error }) (*model.User, error) {
	u := &model.User{}
	var siteID, deletedAt sql.NullInt64
	var createdAt int64
	if err := sc.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &siteID, &createdAt, &deletedAt); err != nil {
		return nil, err
	}
	u.SiteID = nullableID(siteID)
	u.CreatedAt = fromMicros(createdAt)
	if deletedAt.Valid {
		t := fromMicros(deletedAt.Int64)
		u.DeletedAt = &t
	}
	return u, nil
}

// GetUser returns a user by ID.
func (s *Store) GetUser(ctx context.Context, id int64) (*model.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx,
		s.q(`SELECT `+userColumns+` FROM users WHERE id = ?`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("user %d not found", id)
	}
	if err != nil {
		return nil, apperr.Persistence("getting user", err)
	}
	return u, nil
}

// GetUserByUsername returns the active user with the given username, or nil.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx,
		s.q(`SELECT `+userColumns+` FROM users WHERE username = ? AND deleted_at IS NULL`), username))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Persistence("getting user by username", err)
	}
	return u, nil
}

// ListUsers returns all non-deleted users.
func (s *Store) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE deleted_at IS NULL ORDER BY id`,
	)
	if err != nil {
		return nil, apperr.Persistence("listing users", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, apperr.Persistence("scanning user", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence("listing users", err)
	}
	return users, nil
}

// UpdateUser updates a user's role and home site.
func (s *Store) UpdateUser(ctx context.Context, id int64, role string, siteID *int64) error {
	if err := s.validateUserScope(ctx, role, siteID); err != nil {
		return err
	}
	return s.updateActiveUser(ctx, "updating user",
		`UPDATE users SET role = ?, site_id = ? WHERE id = ? AND deleted_at IS NULL`,
		id, role, siteID, id)
}

// UpdateUserPassword updates a user's password hash.
func (s *Store) UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error {
	return s.updateActiveUser(ctx, "updating user password",
		`UPDATE users SET password_hash = ? WHERE id = ? AND deleted_at IS NULL`,
		id, passwordHash, id)
}

// DeleteUser soft-deletes a user.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	return s.updateActiveUser(ctx, "deleting user",
		`UPDATE users SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
		id, toMicros(s.timestamp()), id)
}

func (s *Store) updateActiveUser(ctx context.Context, op, query string, id int64, args ...any) error {
	res, err := s.db.ExecContext(ctx, s.q(query), args...)
	if err != nil {
		return apperr.Persistence(op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("user %d not found", id)
	}
	return nil
}
