package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/erazemk/stockledger/internal/db"
	"github.com/erazemk/stockledger/internal/model"
)

// testClock is a manually advanced clock for deterministic timestamps.
type testClock struct {
	t time.Time
}

func (c *testClock) now() time.Time { return c.t }

func (c *testClock) advance(d time.Duration) { c.t = c.t.Add(d) }

var epoch = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) (*Store, *testClock) {
	t.Helper()
	clock := &testClock{t: epoch}
	return New(db.NewTestDB(t), WithClock(clock.now)), clock
}

type fixture struct {
	siteA, siteB, siteC int64
	rifle, truck        int64
}

func seedFixture(t *testing.T, s *Store) fixture {
	t.Helper()
	ctx := context.Background()

	var f fixture
	for _, p := range []struct {
		name string
		id   *int64
	}{{"Alpha", &f.siteA}, {"Bravo", &f.siteB}, {"Charlie", &f.siteC}} {
		site, err := s.CreateSite(ctx, p.name, "")
		require.NoError(t, err)
		*p.id = site.ID
	}

	rifle, err := s.CreateEquipmentType(ctx, "Rifle", model.CategoryWeapon)
	require.NoError(t, err)
	truck, err := s.CreateEquipmentType(ctx, "Truck", model.CategoryVehicle)
	require.NoError(t, err)
	f.rifle, f.truck = rifle.ID, truck.ID

	return f
}

func purchase(t *testing.T, s *Store, site, equipment, qty int64) int64 {
	t.Helper()
	id, err := s.AppendMovement(context.Background(), NewMovement{
		SiteID:          site,
		EquipmentTypeID: equipment,
		MovementType:    model.MovementPurchase,
		Quantity:        qty,
	})
	require.NoError(t, err)
	return id
}

func countRows(t *testing.T, s *Store, table string) int {
	t.Helper()
	var n int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&n))
	return n
}
