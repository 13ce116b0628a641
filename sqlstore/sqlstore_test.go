package sqlstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/etnz/findash"
	"github.com/etnz/findash/date"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "findash.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSaveLoad(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	want, err := findash.Generator{Days: 40, End: date.New(2025, time.March, 1), Seed: 7}.Generate()
	require.NoError(t, err)
	require.NoError(t, db.Save(ctx, want))

	got, err := db.Load(ctx)
	require.NoError(t, err)

	require.Equal(t, want.Currency(), got.Currency())
	require.Equal(t, want.Categories(), got.Categories())
	require.Equal(t, want.Len(), got.Len())

	// Same rows, cell by cell.
	wr, gr := want.Records(), got.Records()
	for i := range wr {
		require.Equal(t, want.Cells(wr[i]), got.Cells(gr[i]), "row %d", i)
	}
}

func TestSaveReplaces(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	first, err := findash.Generator{Days: 10, Seed: 1}.Generate()
	require.NoError(t, err)
	require.NoError(t, db.Save(ctx, first))

	second, err := findash.Generator{Days: 3, Seed: 2, Categories: []string{"Rent"}}.Generate()
	require.NoError(t, err)
	require.NoError(t, db.Save(ctx, second))

	got, err := db.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, got.Len())
	require.Equal(t, []string{"Rent"}, got.Categories())
}

func TestLoadEmpty(t *testing.T) {
	db := openTestDB(t)
	_, err := db.Load(context.Background())
	require.True(t, errors.Is(err, findash.ErrEmptyDataset), "got %v", err)
}

func TestReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "findash.db")

	db, err := Open(path)
	require.NoError(t, err)
	ds, err := findash.Generator{Days: 5, Seed: 3}.Generate()
	require.NoError(t, err)
	require.NoError(t, db.Save(ctx, ds))
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()
	got, err := db.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, 5, got.Len())
}

func TestStoreReload(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	ds, err := findash.Generator{Days: 31, Seed: 4}.Generate()
	require.NoError(t, err)
	require.NoError(t, db.Save(ctx, ds))

	store := findash.NewStore(findash.DefaultOptions(), nil)
	defer store.Close()
	rev, err := store.Reload(ctx, db)
	require.NoError(t, err)
	require.Equal(t, uint64(1), rev.N)

	d, _, err := store.Dashboard()
	require.NoError(t, err)
	require.True(t, d.KPIs.TotalRevenue.Equal(findash.ComputeKPIs(ds).TotalRevenue))
}
