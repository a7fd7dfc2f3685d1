// Package persistence provides SQLite-based storage of generated maps.
package persistence

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/mapforge/internal/grid"
	"github.com/talgya/mapforge/internal/objects"
	"github.com/talgya/mapforge/internal/rmg"
)

// DB wraps a SQLite connection for map storage.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS maps (
		id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		created_at DATETIME NOT NULL,
		spawns_json TEXT NOT NULL,
		report_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS tiles (
		map_id TEXT NOT NULL,
		x INTEGER NOT NULL,
		y INTEGER NOT NULL,
		terrain INTEGER NOT NULL,
		moisture INTEGER NOT NULL,
		coastal INTEGER NOT NULL,
		PRIMARY KEY (map_id, x, y)
	);

	CREATE TABLE IF NOT EXISTS objects (
		map_id TEXT NOT NULL,
		id INTEGER NOT NULL,
		tag TEXT NOT NULL,
		x INTEGER NOT NULL,
		y INTEGER NOT NULL,
		data_json TEXT NOT NULL,
		PRIMARY KEY (map_id, id)
	);

	CREATE INDEX IF NOT EXISTS idx_objects_tag ON objects(map_id, tag);
	CREATE INDEX IF NOT EXISTS idx_maps_created ON maps(created_at);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// MapRecord is the stored header of one generated map.
type MapRecord struct {
	ID         string    `db:"id" json:"id"`
	Seed       int64     `db:"seed" json:"seed"`
	Width      int       `db:"width" json:"width"`
	Height     int       `db:"height" json:"height"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	SpawnsJSON string    `db:"spawns_json" json:"-"`
	ReportJSON string    `db:"report_json" json:"-"`
}

type tileRow struct {
	X        int `db:"x"`
	Y        int `db:"y"`
	Terrain  int `db:"terrain"`
	Moisture int `db:"moisture"`
	Coastal  int `db:"coastal"`
}

type objectRow struct {
	ID       int    `db:"id"`
	Tag      string `db:"tag"`
	DataJSON string `db:"data_json"`
}

// SaveMap writes a generation result: header, every tile and every object.
// Saving the same run twice replaces the earlier copy.
func (db *DB) SaveMap(res *rmg.Result) error {
	g := res.Grid
	slog.Info("saving map", "run", res.RunID, "tiles", g.Width*g.Height, "objects", g.ObjectCount())

	spawnsJSON, err := json.Marshal(g.Spawns)
	if err != nil {
		return fmt.Errorf("marshal spawns: %w", err)
	}
	reportJSON, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	id := res.RunID.String()
	for _, table := range []string{"tiles", "objects"} {
		if _, err := tx.Exec("DELETE FROM "+table+" WHERE map_id = ?", id); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	_, err = tx.Exec(`INSERT OR REPLACE INTO maps
		(id, seed, width, height, created_at, spawns_json, report_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, res.Seed, g.Width, g.Height, time.Now().UTC(), string(spawnsJSON), string(reportJSON),
	)
	if err != nil {
		return fmt.Errorf("insert map %s: %w", id, err)
	}

	tileStmt, err := tx.Preparex(`INSERT INTO tiles
		(map_id, x, y, terrain, moisture, coastal) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer tileStmt.Close()

	for _, p := range g.Points() {
		t := g.Tile(p)
		coastal := 0
		if t.Coastal {
			coastal = 1
		}
		if _, err := tileStmt.Exec(id, p.X, p.Y, int(t.Terrain), int(t.Moisture), coastal); err != nil {
			return fmt.Errorf("insert tile (%d,%d): %w", p.X, p.Y, err)
		}
	}

	objStmt, err := tx.Preparex(`INSERT INTO objects
		(map_id, id, tag, x, y, data_json) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer objStmt.Close()

	for _, obj := range g.Objects() {
		b := obj.Base()
		data, err := json.Marshal(obj)
		if err != nil {
			return fmt.Errorf("marshal object %d: %w", b.ID, err)
		}
		if _, err := objStmt.Exec(id, b.ID, b.Tag, b.Pos.X, b.Pos.Y, string(data)); err != nil {
			return fmt.Errorf("insert object %d: %w", b.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit map %s: %w", id, err)
	}
	slog.Info("map saved", "run", res.RunID)
	return nil
}

// ListMaps returns every stored map header, newest first.
func (db *DB) ListMaps() ([]MapRecord, error) {
	var maps []MapRecord
	err := db.conn.Select(&maps,
		"SELECT id, seed, width, height, created_at, spawns_json, report_json FROM maps ORDER BY created_at DESC, id",
	)
	if err != nil {
		return nil, fmt.Errorf("list maps: %w", err)
	}
	return maps, nil
}

// LoadMap rebuilds the grid of a stored map, keeping object ids.
func (db *DB) LoadMap(id string) (*grid.Grid, MapRecord, error) {
	var rec MapRecord
	err := db.conn.Get(&rec,
		"SELECT id, seed, width, height, created_at, spawns_json, report_json FROM maps WHERE id = ?", id)
	if err != nil {
		return nil, MapRecord{}, fmt.Errorf("load map %s: %w", id, err)
	}

	g := grid.New(rec.Width, rec.Height)
	if err := json.Unmarshal([]byte(rec.SpawnsJSON), &g.Spawns); err != nil {
		return nil, MapRecord{}, fmt.Errorf("decode spawns of map %s: %w", id, err)
	}

	var tiles []tileRow
	if err := db.conn.Select(&tiles,
		"SELECT x, y, terrain, moisture, coastal FROM tiles WHERE map_id = ?", id); err != nil {
		return nil, MapRecord{}, fmt.Errorf("load tiles of map %s: %w", id, err)
	}
	for _, t := range tiles {
		p := grid.Point{X: t.X, Y: t.Y}
		if !g.InBounds(p) {
			return nil, MapRecord{}, fmt.Errorf("map %s: tile (%d,%d) out of bounds", id, t.X, t.Y)
		}
		g.SetTile(p, grid.Tile{
			Terrain:  grid.Terrain(t.Terrain),
			Moisture: grid.Moisture(t.Moisture),
			Coastal:  t.Coastal != 0,
		})
	}

	var rows []objectRow
	if err := db.conn.Select(&rows,
		"SELECT id, tag, data_json FROM objects WHERE map_id = ? ORDER BY id", id); err != nil {
		return nil, MapRecord{}, fmt.Errorf("load objects of map %s: %w", id, err)
	}
	for _, r := range rows {
		obj, err := objects.Decode(r.Tag, []byte(r.DataJSON))
		if err != nil {
			return nil, MapRecord{}, fmt.Errorf("map %s object %d: %w", id, r.ID, err)
		}
		obj.Base().ID = r.ID
		g.RestoreObject(obj)
	}

	slog.Debug("map loaded", "id", id, "tiles", len(tiles), "objects", len(rows))
	return g, rec, nil
}
