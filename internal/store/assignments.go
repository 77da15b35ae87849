package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/erazemk/stockledger/internal/apperr"
	"github.com/erazemk/stockledger/internal/model"
)

// NewAssignment is the input to CreateAssignment.
type NewAssignment struct {
	SiteID          int64
	EquipmentTypeID int64
	AssignedTo      string
	Quantity        int64
	IsExpended      bool
	CreatedBy       *int64
}

// AssignmentFilter selects assignments. A nil Expended matches both states.
type AssignmentFilter struct {
	SiteID          int64
	EquipmentTypeID int64
	Expended        *bool
	Range           Range
	Limit           int
}

// CreateAssignment records equipment issued to a person and returns its ID.
// The expended flag is fixed at creation.
func (s *Store) CreateAssignment(ctx context.Context, na NewAssignment) (int64, error) {
	na.AssignedTo = strings.TrimSpace(na.AssignedTo)
	if na.AssignedTo == "" {
		return 0, apperr.Validation("assigned_to is required")
	}
	if na.Quantity <= 0 {
		return 0, apperr.Validation("quantity must be positive")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, apperr.Persistence("beginning transaction", err)
	}
	defer tx.Rollback()

	if err := s.checkSite(ctx, tx, na.SiteID); err != nil {
		return 0, err
	}
	if err := s.checkEquipmentType(ctx, tx, na.EquipmentTypeID); err != nil {
		return 0, err
	}

	var id int64
	err = tx.QueryRowContext(ctx,
		s.q(`INSERT INTO assignments (site_id, equipment_type_id, assigned_to, quantity, is_expended, created_by, created_at)
		     VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`),
		na.SiteID, na.EquipmentTypeID, na.AssignedTo, na.Quantity, na.IsExpended, na.CreatedBy, toMicros(s.timestamp()),
	).Scan(&id)
	if err != nil {
		return 0, apperr.Persistence("inserting assignment", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, apperr.Persistence("committing assignment", err)
	}
	return id, nil
}

// ListAssignments returns assignments matching f, newest first.
func (s *Store) ListAssignments(ctx context.Context, f AssignmentFilter) ([]model.Assignment, error) {
	if err := f.Range.validate(); err != nil {
		return nil, err
	}

	var c conditions
	if f.SiteID > 0 {
		c.add("a.site_id = ?", f.SiteID)
	}
	if f.EquipmentTypeID > 0 {
		c.add("a.equipment_type_id = ?", f.EquipmentTypeID)
	}
	if f.Expended != nil {
		c.add("a.is_expended = ?", *f.Expended)
	}
	c.addRange("a.created_at", f.Range)

	query := `SELECT a.id, a.site_id, a.equipment_type_id, a.assigned_to, a.quantity, a.is_expended,
	                 a.created_by, a.created_at,
	                 s.name AS site_name, e.name AS equipment_name
	          FROM assignments a
	          JOIN sites s ON s.id = a.site_id
	          JOIN equipment_types e ON e.id = a.equipment_type_id
	          WHERE 1=1` + c.sql() + ` ORDER BY a.created_at DESC, a.id DESC`
	query += limitClause(f.Limit)

	rows, err := s.db.QueryContext(ctx, s.q(query), c.args...)
	if err != nil {
		return nil, apperr.Persistence("listing assignments", err)
	}
	defer rows.Close()

	var assignments []model.Assignment
	for rows.Next() {
		var a model.Assignment
		var createdBy sql.NullInt64
		var createdAt int64
		if err := rows.Scan(&a.ID, &a.SiteID, &a.EquipmentTypeID, &a.AssignedTo, &a.Quantity, &a.IsExpended,
			&createdBy, &createdAt,
			&a.SiteName, &a.EquipmentName); err != nil {
			return nil, apperr.Persistence("scanning assignment", err)
		}
		a.CreatedBy = nullableID(createdBy)
		a.CreatedAt = fromMicros(createdAt)
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence("listing assignments", err)
	}
	return assignments, nil
}
