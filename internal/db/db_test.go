package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRebind(t *testing.T) {
	q := `SELECT id FROM stock_movements WHERE site_id = ? AND created_at >= ? AND created_at <= ?`

	assert.Equal(t, q, Rebind(SQLite, q))
	assert.Equal(t,
		`SELECT id FROM stock_movements WHERE site_id = $1 AND created_at >= $2 AND created_at <= $3`,
		Rebind(Postgres, q))
}

func TestEnsureSchemaIsIdempotent(t *testing.T) {
	d := NewTestDB(t)

	require.NoError(t, EnsureSchema(d))
	require.NoError(t, EnsureSchema(d))
	assert.Equal(t, SQLite, d.Dialect)
}

func TestSchemaRejectsNonPositiveQuantity(t *testing.T) {
	d := NewTestDB(t)

	_, err := d.Exec(`INSERT INTO sites (name, created_at) VALUES ('Alpha', 0)`)
	require.NoError(t, err)
	_, err = d.Exec(`INSERT INTO equipment_types (name, category, created_at) VALUES ('Rifle', 'WEAPON', 0)`)
	require.NoError(t, err)

	_, err = d.Exec(`INSERT INTO stock_movements (site_id, equipment_type_id, movement_type, quantity, created_at)
	                 VALUES (1, 1, 'PURCHASE', 0, 0)`)
	assert.Error(t, err)

	_, err = d.Exec(`INSERT INTO stock_movements (site_id, equipment_type_id, movement_type, quantity, created_at)
	                 VALUES (1, 1, 'ADJUSTMENT', 5, 0)`)
	assert.Error(t, err)
}

func TestForeignKeysEnforced(t *testing.T) {
	d := NewTestDB(t)

	_, err := d.Exec(`INSERT INTO stock_movements (site_id, equipment_type_id, movement_type, quantity, created_at)
	                  VALUES (42, 42, 'PURCHASE', 5, 0)`)
	assert.Error(t, err)
}
