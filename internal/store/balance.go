package store

import (
	"context"

	"github.com/erazemk/stockledger/internal/apperr"
	"github.com/erazemk/stockledger/internal/model"
)

// BalanceFilter selects the ledger slice a balance is computed over. Zero
// IDs match every site or equipment type.
type BalanceFilter struct {
	SiteID          int64
	EquipmentTypeID int64
	Range           Range
}

// signedQuantity is the contribution of a movement row to the stock level.
const signedQuantity = `CASE WHEN m.movement_type = 'TRANSFER_OUT' THEN -m.quantity ELSE m.quantity END`

// ComputeBalance derives the stock aggregate for f:
//
//	opening  = signed movements with created_at < From
//	net      = signed movements with From <= created_at <= To
//	assigned = assignments with From <= created_at <= To (expended or not)
//	closing  = opening + net - assigned
//
// Opening and net movement come from one statement so that both see the same
// snapshot of the ledger. Empty selections yield zeros.
func (s *Store) ComputeBalance(ctx context.Context, f BalanceFilter) (model.Balance, error) {
	var b model.Balance
	if err := f.Range.validate(); err != nil {
		return b, err
	}
	from, to := f.Range.bounds()

	var mc conditions
	if f.SiteID > 0 {
		mc.add("m.site_id = ?", f.SiteID)
	}
	if f.EquipmentTypeID > 0 {
		mc.add("m.equipment_type_id = ?", f.EquipmentTypeID)
	}

	args := []any{from, from, from, from, from}
	args = append(args, mc.args...)
	args = append(args, to)

	err := s.db.QueryRowContext(ctx, s.q(`
		SELECT
		  CAST(COALESCE(SUM(CASE WHEN m.created_at < ? THEN `+signedQuantity+` ELSE 0 END), 0) AS BIGINT),
		  CAST(COALESCE(SUM(CASE WHEN m.created_at >= ? AND m.movement_type = 'PURCHASE' THEN m.quantity ELSE 0 END), 0) AS BIGINT),
		  CAST(COALESCE(SUM(CASE WHEN m.created_at >= ? AND m.movement_type = 'TRANSFER_IN' THEN m.quantity ELSE 0 END), 0) AS BIGINT),
		  CAST(COALESCE(SUM(CASE WHEN m.created_at >= ? AND m.movement_type = 'TRANSFER_OUT' THEN m.quantity ELSE 0 END), 0) AS BIGINT),
		  CAST(COALESCE(SUM(CASE WHEN m.created_at >= ? THEN `+signedQuantity+` ELSE 0 END), 0) AS BIGINT)
		FROM stock_movements m
		WHERE 1=1`+mc.sql()+` AND m.created_at <= ?`),
		args...,
	).Scan(&b.OpeningBalance, &b.Purchases, &b.TransferIn, &b.TransferOut, &b.NetMovement)
	if err != nil {
		return model.Balance{}, apperr.Persistence("aggregating movements", err)
	}

	var ac conditions
	if f.SiteID > 0 {
		ac.add("a.site_id = ?", f.SiteID)
	}
	if f.EquipmentTypeID > 0 {
		ac.add("a.equipment_type_id = ?", f.EquipmentTypeID)
	}
	ac.add("a.created_at >= ?", from)
	ac.add("a.created_at <= ?", to)

	err = s.db.QueryRowContext(ctx, s.q(`
		SELECT
		  CAST(COALESCE(SUM(a.quantity), 0) AS BIGINT),
		  CAST(COALESCE(SUM(CASE WHEN a.is_expended THEN a.quantity ELSE 0 END), 0) AS BIGINT)
		FROM assignments a
		WHERE 1=1`+ac.sql()),
		ac.args...,
	).Scan(&b.Assigned, &b.Expended)
	if err != nil {
		return model.Balance{}, apperr.Persistence("aggregating assignments", err)
	}

	b.ClosingBalance = b.OpeningBalance + b.NetMovement - b.Assigned
	return b, nil
}
