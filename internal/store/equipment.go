package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/erazemk/stockledger/internal/apperr"
	"github.com/erazemk/stockledger/internal/model"
)

const equipmentColumns = `id, name, category, image IS NOT NULL, created_at`

// CreateEquipmentType creates a new equipment type. Categories are stored upper-cased.
func (s *Store) CreateEquipmentType(ctx context.Context, name, category string) (*model.EquipmentType, error) {
	name = strings.TrimSpace(name)
	category = strings.ToUpper(strings.TrimSpace(category))
	if name == "" || category == "" {
		return nil, apperr.Validation("equipment type name and category are required")
	}

	createdAt := s.timestamp()
	var id int64
	err := s.db.QueryRowContext(ctx,
		s.q(`INSERT INTO equipment_types (name, category, created_at) VALUES (?, ?, ?) RETURNING id`),
		name, category, toMicros(createdAt),
	).Scan(&id)
	if isUniqueViolation(err) {
		return nil, apperr.Validation("equipment type %q already exists", name)
	}
	if err != nil {
		return nil, apperr.Persistence("creating equipment type", err)
	}

	return &model.EquipmentType{ID: id, Name: name, Category: category, CreatedAt: createdAt}, nil
}

func scanEquipmentType(sc interface{ Scan(...any) error }) (model.EquipmentType, error) {
	var et model.EquipmentType
	var createdAt int64
	if err := sc.Scan(&et.ID, &et.Name, &et.Category, &et.HasImage, &createdAt); err != nil {
		return et, err
	}
	et.CreatedAt = fromMicros(createdAt)
	return et, nil
}

// GetEquipmentType returns an equipment type by ID.
func (s *Store) GetEquipmentType(ctx context.Context, id int64) (*model.EquipmentType, error) {
	et, err := scanEquipmentType(s.db.QueryRowContext(ctx,
		s.q(`SELECT `+equipmentColumns+` FROM equipment_types WHERE id = ?`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("equipment type %d not found", id)
	}
	if err != nil {
		return nil, apperr.Persistence("getting equipment type", err)
	}
	return &et, nil
}

// FindEquipmentTypeByName returns the equipment type with the given name, or nil.
func (s *Store) FindEquipmentTypeByName(ctx context.Context, name string) (*model.EquipmentType, error) {
	et, err := scanEquipmentType(s.db.QueryRowContext(ctx,
		s.q(`SELECT `+equipmentColumns+` FROM equipment_types WHERE name = ?`), name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Persistence("finding equipment type", err)
	}
	return &et, nil
}

// ListEquipmentTypes returns all equipment types ordered by name.
func (s *Store) ListEquipmentTypes(ctx context.Context) ([]model.EquipmentType, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+equipmentColumns+` FROM equipment_types ORDER BY name`)
	if err != nil {
		return nil, apperr.Persistence("listing equipment types", err)
	}
	defer rows.Close()

	var types []model.EquipmentType
	for rows.Next() {
		et, err := scanEquipmentType(rows)
		if err != nil {
			return nil, apperr.Persistence("scanning equipment type", err)
		}
		types = append(types, et)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence("listing equipment types", err)
	}
	return types, nil
}

// SetEquipmentImage stores the photo of an equipment type.
func (s *Store) SetEquipmentImage(ctx context.Context, id int64, data []byte, mime string) error {
	res, err := s.db.ExecContext(ctx,
		s.q(`UPDATE equipment_types SET image = ?, image_mime = ? WHERE id = ?`),
		data, mime, id,
	)
	if err != nil {
		return apperr.Persistence("setting equipment image", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("equipment type %d not found", id)
	}
	return nil
}

// GetEquipmentImage returns the photo of an equipment type. It returns nil
// data if the type has no photo.
func (s *Store) GetEquipmentImage(ctx context.Context, id int64) ([]byte, string, error) {
	var data []byte
	var mime sql.NullString
	err := s.db.QueryRowContext(ctx,
		s.q(`SELECT image, image_mime FROM equipment_types WHERE id = ?`), id,
	).Scan(&data, &mime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", apperr.NotFound("equipment type %d not found", id)
	}
	if err != nil {
		return nil, "", apperr.Persistence("getting equipment image", err)
	}
	return data, mime.String, nil
}
