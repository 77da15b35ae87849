package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/erazemk/stockledger/internal/apperr"
	"github.com/erazemk/stockledger/internal/model"
)

// CreateSite creates a new site.
func (s *Store) CreateSite(ctx context.Context, name, location string) (*model.Site, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("site name is required")
	}

	createdAt := s.timestamp()
	var id int64
	err := s.db.QueryRowContext(ctx,
		s.q(`INSERT INTO sites (name, location, created_at) VALUES (?, ?, ?) RETURNING id`),
		name, strings.TrimSpace(location), toMicros(createdAt),
	).Scan(&id)
	if isUniqueViolation(err) {
		return nil, apperr.Validation("site %q already exists", name)
	}
	if err != nil {
		return nil, apperr.Persistence("creating site", err)
	}

	return &model.Site{ID: id, Name: name, Location: strings.TrimSpace(location), CreatedAt: createdAt}, nil
}

// GetSite returns a site by ID.
func (s *Store) GetSite(ctx context.Context, id int64) (*model.Site, error) {
	var site model.Site
	var createdAt int64
	err := s.db.QueryRowContext(ctx,
		s.q(`SELECT id, name, location, created_at FROM sites WHERE id = ?`), id,
	).Scan(&site.ID, &site.Name, &site.Location, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("site %d not found", id)
	}
	if err != nil {
		return nil, apperr.Persistence("getting site", err)
	}
	site.CreatedAt = fromMicros(createdAt)
	return &site, nil
}

// ListSites returns all sites ordered by name.
func (s *Store) ListSites(ctx context.Context) ([]model.Site, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, location, created_at FROM sites ORDER BY name`)
	if err != nil {
		return nil, apperr.Persistence("listing sites", err)
	}
	defer rows.Close()

	var sites []model.Site
	for rows.Next() {
		var site model.Site
		var createdAt int64
		if err := rows.Scan(&site.ID, &site.Name, &site.Location, &createdAt); err != nil {
			return nil, apperr.Persistence("scanning site", err)
		}
		site.CreatedAt = fromMicros(createdAt)
		sites = append(sites, site)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence("listing sites", err)
	}
	return sites, nil
}

// FindSiteByName returns the site with the given name, or nil if none exists.
func (s *Store) FindSiteByName(ctx context.Context, name string) (*model.Site, error) {
	var site model.Site
	var createdAt int64
	err := s.db.QueryRowContext(ctx,
		s.q(`SELECT id, name, location, created_at FROM sites WHERE name = ?`), name,
	).Scan(&site.ID, &site.Name, &site.Location, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Persistence("finding site", err)
	}
	site.CreatedAt = fromMicros(createdAt)
	return &site, nil
}
