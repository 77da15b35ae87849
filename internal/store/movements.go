package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erazemk/stockledger/internal/apperr"
	"github.com/erazemk/stockledger/internal/model"
)

// NewMovement is the input to AppendMovement.
type NewMovement struct {
	SiteID          int64
	EquipmentTypeID int64
	MovementType    model.MovementType
	Quantity        int64
	CreatedBy       *int64
}

// MovementFilter selects ledger rows. Zero fields match everything.
type MovementFilter struct {
	SiteID          int64
	EquipmentTypeID int64
	MovementType    model.MovementType
	Range           Range
	Limit           int
}

// AppendMovement appends a single stock movement and returns its ID.
// Transfer movements are only written in pairs by CreateTransfer.
func (s *Store) AppendMovement(ctx context.Context, m NewMovement) (int64, error) {
	if m.Quantity <= 0 {
		return 0, apperr.Validation("quantity must be positive")
	}
	if !m.MovementType.Valid() {
		return 0, apperr.Validation("unknown movement type %q", m.MovementType)
	}
	if m.MovementType != model.MovementPurchase {
		return 0, apperr.Validation("%s movements can only be created by a transfer", m.MovementType)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, apperr.Persistence("beginning transaction", err)
	}
	defer tx.Rollback()

	if err := s.checkSite(ctx, tx, m.SiteID); err != nil {
		return 0, err
	}
	if err := s.checkEquipmentType(ctx, tx, m.EquipmentTypeID); err != nil {
		return 0, err
	}

	id, err := s.insertMovement(ctx, tx, m, nil, s.timestamp())
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, apperr.Persistence("committing movement", err)
	}
	return id, nil
}

// insertMovement writes one ledger row inside tx.
func (s *Store) insertMovement(ctx context.Context, tx *sql.Tx, m NewMovement, refTransferID *int64, createdAt time.Time) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx,
		s.q(`INSERT INTO stock_movements
		     (site_id, equipment_type_id, movement_type, quantity, ref_transfer_id, created_by, created_at)
		     VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`),
		m.SiteID, m.EquipmentTypeID, string(m.MovementType), m.Quantity, refTransferID, m.CreatedBy, toMicros(createdAt),
	).Scan(&id)
	if err != nil {
		return 0, apperr.Persistence(fmt.Sprintf("inserting %s movement", m.MovementType), err)
	}
	return id, nil
}

const movementSelect = `SELECT m.id, m.site_id, m.equipment_type_id, m.movement_type, m.quantity,
        m.ref_transfer_id, m.created_by, m.created_at,
        s.name AS site_name, e.name AS equipment_name
 FROM stock_movements m
 JOIN sites s ON s.id = m.site_id
 JOIN equipment_types e ON e.id = m.equipment_type_id`

// ListMovements returns ledger rows matching f, newest first.
func (s *Store) ListMovements(ctx context.Context, f MovementFilter) ([]model.Movement, error) {
	if err := f.Range.validate(); err != nil {
		return nil, err
	}
	if f.MovementType != "" && !f.MovementType.Valid() {
		return nil, apperr.Validation("unknown movement type %q", f.MovementType)
	}

	var c conditions
	if f.SiteID > 0 {
		c.add("m.site_id = ?", f.SiteID)
	}
	if f.EquipmentTypeID > 0 {
		c.add("m.equipment_type_id = ?", f.EquipmentTypeID)
	}
	if f.MovementType != "" {
		c.add("m.movement_type = ?", string(f.MovementType))
	}
	c.addRange("m.created_at", f.Range)

	query := movementSelect + ` WHERE 1=1` + c.sql() + ` ORDER BY m.created_at DESC, m.id DESC`
	query += limitClause(f.Limit)

	rows, err := s.db.QueryContext(ctx, s.q(query), c.args...)
	if err != nil {
		return nil, apperr.Persistence("listing movements", err)
	}
	defer rows.Close()

	return scanMovements(rows)
}

// transferMovements returns the ledger rows owned by a transfer, OUT first.
func (s *Store) transferMovements(ctx context.Context, transferID int64) ([]model.Movement, error) {
	rows, err := s.db.QueryContext(ctx,
		s.q(movementSelect+` WHERE m.ref_transfer_id = ? ORDER BY m.id`), transferID)
	if err != nil {
		return nil, apperr.Persistence("listing transfer movements", err)
	}
	defer rows.Close()

	return scanMovements(rows)
}

func scanMovements(rows *sql.Rows) ([]model.Movement, error) {
	var movements []model.Movement
	for rows.Next() {
		var m model.Movement
		var movementType string
		var refTransferID, createdBy sql.NullInt64
		var createdAt int64
		if err := rows.Scan(&m.ID, &m.SiteID, &m.EquipmentTypeID, &movementType, &m.Quantity,
			&refTransferID, &createdBy, &createdAt,
			&m.SiteName, &m.EquipmentName); err != nil {
			return nil, apperr.Persistence("scanning movement", err)
		}
		m.MovementType = model.MovementType(movementType)
		m.RefTransferID = nullableID(refTransferID)
		m.CreatedBy = nullableID(createdBy)
		m.CreatedAt = fromMicros(createdAt)
		movements = append(movements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence("listing movements", err)
	}
	return movements, nil
}

func nullableID(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	id := v.Int64
	return &id
}
