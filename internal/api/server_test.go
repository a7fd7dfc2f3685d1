package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/mapforge/internal/grid"
	"github.com/talgya/mapforge/internal/objects"
)

func testServer(t *testing.T) (*Server, *grid.Grid) {
	t.Helper()
	g := grid.New(6, 4)
	g.SetTerrain(grid.Point{X: 5, Y: 3}, grid.TerrainWater, grid.MoistureWet)
	g.MarkCoastal()
	g.AddObject(objects.NewResource(grid.Point{X: 1, Y: 1}, objects.Gold, 700, 1))
	mine := objects.NewMine(grid.Point{X: 3, Y: 2}, objects.Gems, 1, 500)
	mine.Guard = &grid.Guard{CreatureID: "monk", Count: 10, Strength: 4500}
	g.AddObject(mine)
	g.Spawns = []grid.Point{{X: 0, Y: 0}}

	return &Server{Map: MapView{
		ID:      "test-map",
		Seed:    42,
		Grid:    g,
		Reports: json.RawMessage(`{"coastal_tiles":3}`),
	}}, g
}

func get(t *testing.T, h http.Handler, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	var body map[string]any
	if rec.Body.Len() > 0 && rec.Body.Bytes()[0] == '{' {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestMapEndpoint(t *testing.T) {
	s, _ := testServer(t)
	rec, body := get(t, s.Handler(), "/api/v1/map")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "test-map", body["id"])
	assert.EqualValues(t, 6, body["width"])
	assert.EqualValues(t, 2, body["objects"])
	terrain := body["terrain"].(map[string]any)
	assert.EqualValues(t, 1, terrain["Water"])
}

func TestTilesEndpoint(t *testing.T) {
	s, _ := testServer(t)
	rec, body := get(t, s.Handler(), "/api/v1/map/tiles")

	require.Equal(t, http.StatusOK, rec.Code)
	tiles := body["tiles"].([]any)
	require.Len(t, tiles, 24)
	last := tiles[23].(map[string]any)
	assert.Equal(t, "Water", last["terrain"])
	assert.EqualValues(t, 5, last["x"])
	assert.EqualValues(t, 3, last["y"])
}

func TestTileEndpoint(t *testing.T) {
	s, _ := testServer(t)
	h := s.Handler()

	rec, body := get(t, h, "/api/v1/tile/3/2")
	require.Equal(t, http.StatusOK, rec.Code)
	tile := body["tile"].(map[string]any)
	assert.Equal(t, true, tile["blocked"])
	objs := body["objects"].([]any)
	require.Len(t, objs, 1)
	assert.Equal(t, "mine", objs[0].(map[string]any)["tag"])

	rec, body = get(t, h, "/api/v1/tile/4/2")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["tile"].(map[string]any)["coastal"])
}

func TestTileOutOfBounds(t *testing.T) {
	s, _ := testServer(t)
	h := s.Handler()

	for _, path := range []string{"/api/v1/tile/6/0", "/api/v1/tile/0/4", "/api/v1/tile/-1/0"} {
		rec, body := get(t, h, path)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.Contains(t, body["error"], "outside", path)
	}

	rec, _ := get(t, h, "/api/v1/tile/a/0")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestObjectsEndpoint(t *testing.T) {
	s, _ := testServer(t)
	h := s.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/objects", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var all []objectEntryJSON
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	assert.Len(t, all, 2)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/objects?type=resource", nil))
	var piles []objectEntryJSON
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &piles))
	require.Len(t, piles, 1)
	assert.Equal(t, 700, piles[0].Value)

	rec, body := get(t, h, "/api/v1/objects/2")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 15000, body["value"])
	assert.Equal(t, "monk", body["guard"].(map[string]any)["creature_id"])

	rec, _ = get(t, h, "/api/v1/objects/99")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec, _ = get(t, h, "/api/v1/objects/x")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type objectEntryJSON struct {
	ID    int    `json:"id"`
	Tag   string `json:"tag"`
	Value int    `json:"value"`
}

func TestReportsEndpoint(t *testing.T) {
	s, _ := testServer(t)
	rec, body := get(t, s.Handler(), "/api/v1/reports")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 3, body["coastal_tiles"])

	s.Map.Reports = nil
	rec, _ = get(t, s.Handler(), "/api/v1/reports")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("1.2.3.4"))
	assert.False(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("5.6.7.8"))

	now = now.Add(time.Minute)
	assert.True(t, rl.Allow("1.2.3.4"))
}

func TestRateLimitMiddleware(t *testing.T) {
	s, _ := testServer(t)
	s.Limiter = NewRateLimiter(1, time.Minute)
	h := s.Handler()

	rec, _ := get(t, h, "/api/v1/map")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, body := get(t, h, "/api/v1/map")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Equal(t, "rate limit exceeded", body["error"])
}
