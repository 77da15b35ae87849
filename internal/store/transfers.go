package store

import (
	"context"
	"database/sql"

	"github.com/erazemk/stockledger/internal/apperr"
	"github.com/erazemk/stockledger/internal/model"
)

// NewTransfer is the input to CreateTransfer.
type NewTransfer struct {
	FromSiteID      int64
	ToSiteID        int64
	EquipmentTypeID int64
	Quantity        int64
	CreatedBy       *int64
}

// TransferFilter selects transfers. SiteID matches either end of a transfer.
type TransferFilter struct {
	SiteID          int64
	EquipmentTypeID int64
	Range           Range
	Limit           int
}

// CreateTransfer records a transfer and its TRANSFER_OUT/TRANSFER_IN
// movements in a single transaction. On any error nothing is written.
func (s *Store) CreateTransfer(ctx context.Context, nt NewTransfer) (*model.Transfer, error) {
	if nt.FromSiteID == nt.ToSiteID {
		return nil, apperr.Validation("same site")
	}
	if nt.Quantity <= 0 {
		return nil, apperr.Validation("quantity must be positive")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperr.Persistence("beginning transaction", err)
	}
	defer tx.Rollback()

	if err := s.checkSite(ctx, tx, nt.FromSiteID); err != nil {
		return nil, err
	}
	if err := s.checkSite(ctx, tx, nt.ToSiteID); err != nil {
		return nil, err
	}
	if err := s.checkEquipmentType(ctx, tx, nt.EquipmentTypeID); err != nil {
		return nil, err
	}

	createdAt := s.timestamp()

	var transferID int64
	err = tx.QueryRowContext(ctx,
		s.q(`INSERT INTO transfers (from_site_id, to_site_id, equipment_type_id, quantity, created_by, created_at)
		     VALUES (?, ?, ?, ?, ?, ?) RETURNING id`),
		nt.FromSiteID, nt.ToSiteID, nt.EquipmentTypeID, nt.Quantity, nt.CreatedBy, toMicros(createdAt),
	).Scan(&transferID)
	if err != nil {
		return nil, apperr.Persistence("inserting transfer", err)
	}

	legs := []NewMovement{
		{SiteID: nt.FromSiteID, MovementType: model.MovementTransferOut},
		{SiteID: nt.ToSiteID, MovementType: model.MovementTransferIn},
	}
	movements := make([]model.Movement, 0, len(legs))
	for _, leg := range legs {
		leg.EquipmentTypeID = nt.EquipmentTypeID
		leg.Quantity = nt.Quantity
		leg.CreatedBy = nt.CreatedBy

		id, err := s.insertMovement(ctx, tx, leg, &transferID, createdAt)
		if err != nil {
			return nil, err
		}
		ref := transferID
		movements = append(movements, model.Movement{
			ID:              id,
			SiteID:          leg.SiteID,
			EquipmentTypeID: leg.EquipmentTypeID,
			MovementType:    leg.MovementType,
			Quantity:        leg.Quantity,
			RefTransferID:   &ref,
			CreatedBy:       leg.CreatedBy,
			CreatedAt:       createdAt,
		})
	}

	if err := tx.Commit(); err != nil {
		return nil, apperr.Persistence("committing transfer", err)
	}

	return &model.Transfer{
		ID:              transferID,
		FromSiteID:      nt.FromSiteID,
		ToSiteID:        nt.ToSiteID,
		EquipmentTypeID: nt.EquipmentTypeID,
		Quantity:        nt.Quantity,
		CreatedBy:       nt.CreatedBy,
		CreatedAt:       createdAt,
		Movements:       movements,
	}, nil
}

const transferSelect = `SELECT t.id, t.from_site_id, t.to_site_id, t.equipment_type_id, t.quantity,
        t.created_by, t.created_at,
        fs.name AS from_site_name, ts.name AS to_site_name, e.name AS equipment_name
 FROM transfers t
 JOIN sites fs ON fs.id = t.from_site_id
 JOIN sites ts ON ts.id = t.to_site_id
 JOIN equipment_types e ON e.id = t.equipment_type_id`

// GetTransfer returns a transfer by ID together with its two movements.
func (s *Store) GetTransfer(ctx context.Context, id int64) (*model.Transfer, error) {
	rows, err := s.db.QueryContext(ctx, s.q(transferSelect+` WHERE t.id = ?`), id)
	if err != nil {
		return nil, apperr.Persistence("getting transfer", err)
	}
	transfers, err := scanTransfers(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}
	if len(transfers) == 0 {
		return nil, apperr.NotFound("transfer %d not found", id)
	}

	t := transfers[0]
	t.Movements, err = s.transferMovements(ctx, id)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTransfers returns transfers matching f, newest first.
func (s *Store) ListTransfers(ctx context.Context, f TransferFilter) ([]model.Transfer, error) {
	if err := f.Range.validate(); err != nil {
		return nil, err
	}

	var c conditions
	if f.SiteID > 0 {
		c.add("(t.from_site_id = ? OR t.to_site_id = ?)", f.SiteID, f.SiteID)
	}
	if f.EquipmentTypeID > 0 {
		c.add("t.equipment_type_id = ?", f.EquipmentTypeID)
	}
	c.addRange("t.created_at", f.Range)

	query := transferSelect + ` WHERE 1=1` + c.sql() + ` ORDER BY t.created_at DESC, t.id DESC`
	query += limitClause(f.Limit)

	rows, err := s.db.QueryContext(ctx, s.q(query), c.args...)
	if err != nil {
		return nil, apperr.Persistence("listing transfers", err)
	}
	defer rows.Close()

	return scanTransfers(rows)
}

func scanTransfers(rows *sql.Rows) ([]model.Transfer, error) {
	var transfers []model.Transfer
	for rows.Next() {
		var t model.Transfer
		var createdBy sql.NullInt64
		var createdAt int64
		if err := rows.Scan(&t.ID, &t.FromSiteID, &t.ToSiteID, &t.EquipmentTypeID, &t.Quantity,
			&createdBy, &createdAt,
			&t.FromSiteName, &t.ToSiteName, &t.EquipmentName); err != nil {
			return nil, apperr.Persistence("scanning transfer", err)
		}
		t.CreatedBy = nullableID(createdBy)
		t.CreatedAt = fromMicros(createdAt)
		transfers = append(transfers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence("listing transfers", err)
	}
	return transfers, nil
}
