package persistence

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/mapforge/internal/config"
	"github.com/talgya/mapforge/internal/grid"
	"github.com/talgya/mapforge/internal/rmg"
)

type objectView struct {
	ID        int
	Tag       string
	Pos       grid.Point
	Value     int
	Blocking  bool
	Visitable bool
	Guard     *grid.Guard
}

type gridView struct {
	Width, Height int
	Terrain       []grid.Terrain
	Moisture      []grid.Moisture
	Coastal       []bool
	Objects       []objectView
	Spawns        []grid.Point
}

func viewOf(g *grid.Grid) gridView {
	v := gridView{Width: g.Width, Height: g.Height, Spawns: g.Spawns}
	for _, p := range g.Points() {
		t := g.Tile(p)
		v.Terrain = append(v.Terrain, t.Terrain)
		v.Moisture = append(v.Moisture, t.Moisture)
		v.Coastal = append(v.Coastal, t.Coastal)
	}
	for _, obj := range g.Objects() {
		b := obj.Base()
		v.Objects = append(v.Objects, objectView{
			ID: b.ID, Tag: b.Tag, Pos: b.Pos, Value: obj.Value(),
			Blocking: b.Blocking, Visitable: b.Visitable, Guard: b.Guard,
		})
	}
	return v
}

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "maps.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSaveLoadRoundTrip(t *testing.T) {
	db := openTestDB(t)
	res, err := rmg.Generate(context.Background(), config.SmallTestConfig(), nil)
	require.NoError(t, err)

	require.NoError(t, db.SaveMap(res))

	g, rec, err := db.LoadMap(res.RunID.String())
	require.NoError(t, err)
	assert.Equal(t, res.RunID.String(), rec.ID)
	assert.Equal(t, res.Seed, rec.Seed)
	assert.Contains(t, rec.ReportJSON, `"reachability"`)

	if diff := cmp.Diff(viewOf(res.Grid), viewOf(g)); diff != "" {
		t.Errorf("loaded map differs (-saved +loaded):\n%s", diff)
	}
	for _, p := range g.Points() {
		assert.Equal(t, res.Grid.Tile(p).BlockingIDs(), g.Tile(p).BlockingIDs(), "blocking ids at %v", p)
		assert.Equal(t, res.Grid.Tile(p).VisitableIDs(), g.Tile(p).VisitableIDs(), "visitable ids at %v", p)
	}
}

func TestSaveMapTwiceReplaces(t *testing.T) {
	db := openTestDB(t)
	res, err := rmg.Generate(context.Background(), config.SmallTestConfig(), nil)
	require.NoError(t, err)

	require.NoError(t, db.SaveMap(res))
	require.NoError(t, db.SaveMap(res))

	maps, err := db.ListMaps()
	require.NoError(t, err)
	require.Len(t, maps, 1)
	assert.Equal(t, 24, maps[0].Width)
	assert.False(t, maps[0].CreatedAt.IsZero())

	g, _, err := db.LoadMap(res.RunID.String())
	require.NoError(t, err)
	assert.Equal(t, res.Grid.ObjectCount(), g.ObjectCount())
}

func TestListMapsMultiple(t *testing.T) {
	db := openTestDB(t)
	for _, seed := range []int64{1, 2} {
		cfg := config.SmallTestConfig()
		cfg.Seed = seed
		res, err := rmg.Generate(context.Background(), cfg, nil)
		require.NoError(t, err)
		require.NoError(t, db.SaveMap(res))
	}

	maps, err := db.ListMaps()
	require.NoError(t, err)
	assert.Len(t, maps, 2)
}

func TestLoadUnknownMap(t *testing.T) {
	db := openTestDB(t)
	_, _, err := db.LoadMap("does-not-exist")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load map does-not-exist")
}
