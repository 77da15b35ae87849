package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/stockledger/internal/apperr"
)

func TestSites(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	site, err := s.CreateSite(ctx, " North Base ", "Ljubljana")
	require.NoError(t, err)
	assert.Equal(t, "North Base", site.Name)
	assert.Equal(t, epoch, site.CreatedAt)

	got, err := s.GetSite(ctx, site.ID)
	require.NoError(t, err)
	assert.Equal(t, *site, *got)

	_, err = s.CreateSite(ctx, "North Base", "")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = s.CreateSite(ctx, "  ", "")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = s.CreateSite(ctx, "East Base", "")
	require.NoError(t, err)

	sites, err := s.ListSites(ctx)
	require.NoError(t, err)
	require.Len(t, sites, 2)
	assert.Equal(t, "East Base", sites[0].Name)

	found, err := s.FindSiteByName(ctx, "East Base")
	require.NoError(t, err)
	require.NotNil(t, found)

	missing, err := s.FindSiteByName(ctx, "West Base")
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = s.GetSite(ctx, 999)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestEquipmentTypes(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	et, err := s.CreateEquipmentType(ctx, "Carbine", "weapon")
	require.NoError(t, err)
	assert.Equal(t, "WEAPON", et.Category)
	assert.False(t, et.HasImage)

	_, err = s.CreateEquipmentType(ctx, "Carbine", "WEAPON")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = s.CreateEquipmentType(ctx, "Nameless", "")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	require.NoError(t, s.SetEquipmentImage(ctx, et.ID, []byte{0xff, 0xd8}, "image/jpeg"))

	got, err := s.GetEquipmentType(ctx, et.ID)
	require.NoError(t, err)
	assert.True(t, got.HasImage)

	data, mime, err := s.GetEquipmentImage(ctx, et.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xd8}, data)
	assert.Equal(t, "image/jpeg", mime)

	types, err := s.ListEquipmentTypes(ctx)
	require.NoError(t, err)
	assert.Len(t, types, 1)

	found, err := s.FindEquipmentTypeByName(ctx, "Carbine")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, et.ID, found.ID)

	assert.True(t, apperr.Is(s.SetEquipmentImage(ctx, 999, nil, ""), apperr.KindNotFound))
	_, _, err = s.GetEquipmentImage(ctx, 999)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	_, err = s.GetEquipmentType(ctx, 999)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
