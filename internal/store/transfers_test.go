package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/stockledger/internal/apperr"
	"github.com/erazemk/stockledger/internal/model"
)

func TestCreateTransferWritesPairedMovements(t *testing.T) {
	s, _ := newTestStore(t)
	f := seedFixture(t, s)
	ctx := context.Background()
	purchase(t, s, f.siteA, f.rifle, 100)

	tr, err := s.CreateTransfer(ctx, NewTransfer{
		FromSiteID:      f.siteA,
		ToSiteID:        f.siteB,
		EquipmentTypeID: f.rifle,
		Quantity:        30,
	})
	require.NoError(t, err)
	require.NotZero(t, tr.ID)
	require.Len(t, tr.Movements, 2)

	got, err := s.GetTransfer(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alpha", got.FromSiteName)
	assert.Equal(t, "Bravo", got.ToSiteName)
	assert.Equal(t, "Rifle", got.EquipmentName)
	require.Len(t, got.Movements, 2)

	bySite := map[int64]model.Movement{}
	for _, m := range got.Movements {
		require.NotNil(t, m.RefTransferID)
		assert.Equal(t, tr.ID, *m.RefTransferID)
		assert.Equal(t, int64(30), m.Quantity)
		assert.Equal(t, tr.CreatedAt, m.CreatedAt)
		bySite[m.SiteID] = m
	}
	assert.Equal(t, model.MovementTransferOut, bySite[f.siteA].MovementType)
	assert.Equal(t, model.MovementTransferIn, bySite[f.siteB].MovementType)
	assert.Equal(t, int64(0), bySite[f.siteA].MovementType.Sign()*30+bySite[f.siteB].MovementType.Sign()*30)

	assert.Equal(t, 1, countRows(t, s, "transfers"))
	assert.Equal(t, 3, countRows(t, s, "stock_movements"))
}

func TestCreateTransferRejectsSameSite(t *testing.T) {
	s, _ := newTestStore(t)
	f := seedFixture(t, s)

	tr, err := s.CreateTransfer(context.Background(), NewTransfer{
		FromSiteID:      f.siteA,
		ToSiteID:        f.siteA,
		EquipmentTypeID: f.rifle,
		Quantity:        5,
	})
	assert.Nil(t, tr)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Equal(t, 0, countRows(t, s, "transfers"))
	assert.Equal(t, 0, countRows(t, s, "stock_movements"))
}

func TestCreateTransferValidation(t *testing.T) {
	s, _ := newTestStore(t)
	f := seedFixture(t, s)

	tests := []struct {
		name string
		in   NewTransfer
	}{
		{"zero quantity", NewTransfer{FromSiteID: f.siteA, ToSiteID: f.siteB, EquipmentTypeID: f.rifle}},
		{"negative quantity", NewTransfer{FromSiteID: f.siteA, ToSiteID: f.siteB, EquipmentTypeID: f.rifle, Quantity: -1}},
		{"unknown source", NewTransfer{FromSiteID: 999, ToSiteID: f.siteB, EquipmentTypeID: f.rifle, Quantity: 1}},
		{"unknown destination", NewTransfer{FromSiteID: f.siteA, ToSiteID: 999, EquipmentTypeID: f.rifle, Quantity: 1}},
		{"unknown equipment", NewTransfer{FromSiteID: f.siteA, ToSiteID: f.siteB, EquipmentTypeID: 999, Quantity: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CreateTransfer(context.Background(), tt.in)
			assert.True(t, apperr.Is(err, apperr.KindValidation), "got %v", err)
		})
	}
	assert.Equal(t, 0, countRows(t, s, "transfers"))
	assert.Equal(t, 0, countRows(t, s, "stock_movements"))
}

func TestCreateTransferRollsBackOnFailure(t *testing.T) {
	// Each case fails one movement leg after the transfer row is written.
	for _, leg := range []model.MovementType{model.MovementTransferOut, model.MovementTransferIn} {
		t.Run(string(leg), func(t *testing.T) {
			s, _ := newTestStore(t)
			f := seedFixture(t, s)
			ctx := context.Background()
			purchase(t, s, f.siteA, f.rifle, 100)

			before, err := s.ComputeBalance(ctx, BalanceFilter{SiteID: f.siteA, EquipmentTypeID: f.rifle})
			require.NoError(t, err)

			_, err = s.db.Exec(`CREATE TRIGGER fail_leg BEFORE INSERT ON stock_movements
				WHEN NEW.movement_type = '` + string(leg) + `'
				BEGIN SELECT RAISE(ABORT, 'injected failure'); END`)
			require.NoError(t, err)

			tr, err := s.CreateTransfer(ctx, NewTransfer{
				FromSiteID:      f.siteA,
				ToSiteID:        f.siteB,
				EquipmentTypeID: f.rifle,
				Quantity:        30,
			})
			assert.Nil(t, tr)
			assert.True(t, apperr.Is(err, apperr.KindPersistence), "got %v", err)

			assert.Equal(t, 0, countRows(t, s, "transfers"))
			assert.Equal(t, 1, countRows(t, s, "stock_movements"))

			after, err := s.ComputeBalance(ctx, BalanceFilter{SiteID: f.siteA, EquipmentTypeID: f.rifle})
			require.NoError(t, err)
			assert.Equal(t, before, after)
		})
	}
}

func TestCreateTransferHonorsCancelledContext(t *testing.T) {
	s, _ := newTestStore(t)
	f := seedFixture(t, s)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.CreateTransfer(ctx, NewTransfer{
		FromSiteID:      f.siteA,
		ToSiteID:        f.siteB,
		EquipmentTypeID: f.rifle,
		Quantity:        1,
	})
	require.Error(t, err)
	assert.Equal(t, 0, countRows(t, s, "transfers"))
	assert.Equal(t, 0, countRows(t, s, "stock_movements"))
}

func TestListTransfers(t *testing.T) {
	s, clock := newTestStore(t)
	f := seedFixture(t, s)
	ctx := context.Background()

	create := func(from, to, equipment, qty int64) *model.Transfer {
		tr, err := s.CreateTransfer(ctx, NewTransfer{FromSiteID: from, ToSiteID: to, EquipmentTypeID: equipment, Quantity: qty})
		require.NoError(t, err)
		clock.advance(time.Hour)
		return tr
	}
	ab := create(f.siteA, f.siteB, f.rifle, 1)
	bc := create(f.siteB, f.siteC, f.truck, 2)
	ca := create(f.siteC, f.siteA, f.rifle, 3)

	all, err := s.ListTransfers(ctx, TransferFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, ca.ID, all[0].ID, "newest first")
	assert.Equal(t, ab.ID, all[2].ID)

	// Either end of the transfer matches the site filter.
	atA, err := s.ListTransfers(ctx, TransferFilter{SiteID: f.siteA})
	require.NoError(t, err)
	assert.Len(t, atA, 2)

	trucks, err := s.ListTransfers(ctx, TransferFilter{EquipmentTypeID: f.truck})
	require.NoError(t, err)
	require.Len(t, trucks, 1)
	assert.Equal(t, bc.ID, trucks[0].ID)

	windowed, err := s.ListTransfers(ctx, TransferFilter{Range: Range{From: bc.CreatedAt, To: bc.CreatedAt}})
	require.NoError(t, err)
	require.Len(t, windowed, 1)
	assert.Equal(t, bc.ID, windowed[0].ID)

	limited, err := s.ListTransfers(ctx, TransferFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	_, err = s.ListTransfers(ctx, TransferFilter{Range: Range{From: epoch, To: epoch.Add(-time.Second)}})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestGetTransferNotFound(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.GetTransfer(context.Background(), 42)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
