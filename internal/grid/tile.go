// Package grid provides the tile grid, terrain, and object registry that every
// generation job reads and mutates.
// Coordinates are (x, y) with the origin in the top-left corner.
package grid

import (
	"slices"

	"github.com/zyedidia/generic/mapset"
)

// Point is a tile position on the grid.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns p offset by d.
func (p Point) Add(d Point) Point {
	return Point{X: p.X + d.X, Y: p.Y + d.Y}
}

// Manhattan returns the Manhattan distance between two points.
func Manhattan(a, b Point) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

// Chebyshev returns the 8-directional step distance between two points.
func Chebyshev(a, b Point) int {
	return max(abs(a.X-b.X), abs(a.Y-b.Y))
}

// NeighborDirections defines the eight neighbour offsets in a fixed order.
// Every caller that consumes randomness while walking neighbours relies on this order.
var NeighborDirections = [8]Point{
	{X: -1, Y: -1},
	{X: 0, Y: -1},
	{X: 1, Y: -1},
	{X: -1, Y: 0},
	{X: 1, Y: 0},
	{X: -1, Y: 1},
	{X: 0, Y: 1},
	{X: 1, Y: 1},
}

// Terrain types for grid tiles.
type Terrain uint8

const (
	TerrainGrass Terrain = iota // Open land, base movement cost
	TerrainDirt                 // Open land
	TerrainRough                // Broken ground, slower
	TerrainSnow                 // Slow
	TerrainSand                 // Slow
	TerrainSwamp                // Wet grassland, slowest passable terrain
	TerrainWater                // Impassable on foot
	TerrainRock                 // Impassable
)

// Moisture is the secondary noise variant applied on top of a biome.
type Moisture uint8

const (
	MoistureDry Moisture = iota
	MoistureTemperate
	MoistureWet
)

func (m Moisture) String() string {
	switch m {
	case MoistureDry:
		return "dry"
	case MoistureTemperate:
		return "temperate"
	case MoistureWet:
		return "wet"
	default:
		return "unknown"
	}
}

// Passable reports whether heroes can walk on this terrain.
func (t Terrain) Passable() bool {
	return t != TerrainWater && t != TerrainRock
}

// MoveCost returns the movement points needed to enter a tile of this terrain.
// Impassable terrain costs 0.
func (t Terrain) MoveCost() int {
	switch t {
	case TerrainGrass, TerrainDirt:
		return 100
	case TerrainRough:
		return 125
	case TerrainSnow, TerrainSand:
		return 150
	case TerrainSwamp:
		return 175
	default:
		return 0
	}
}

// String returns a human-readable name for a terrain type.
func (t Terrain) String() string {
	switch t {
	case TerrainGrass:
		return "Grass"
	case TerrainDirt:
		return "Dirt"
	case TerrainRough:
		return "Rough"
	case TerrainSnow:
		return "Snow"
	case TerrainSand:
		return "Sand"
	case TerrainSwamp:
		return "Swamp"
	case TerrainWater:
		return "Water"
	case TerrainRock:
		return "Rock"
	default:
		return "Unknown"
	}
}

// Tile is a single grid cell.
type Tile struct {
	Terrain  Terrain
	Moisture Moisture
	MoveCost int
	Coastal  bool

	// Object ids registered on this tile. Kept in sync with the registry by Grid.
	Visitable mapset.Set[int]
	Blocking  mapset.Set[int]
}

func newTile() Tile {
	return Tile{
		Terrain:   TerrainGrass,
		Moisture:  MoistureTemperate,
		MoveCost:  TerrainGrass.MoveCost(),
		Visitable: mapset.New[int](),
		Blocking:  mapset.New[int](),
	}
}

// Passable reports whether the terrain itself can be walked on.
func (t *Tile) Passable() bool {
	return t.Terrain.Passable()
}

// Blocked reports whether any blocking object occupies the tile.
func (t *Tile) Blocked() bool {
	return t.Blocking.Size() > 0
}

// BlockingIDs returns the blocking object ids in ascending order.
func (t *Tile) BlockingIDs() []int {
	return sortedIDs(t.Blocking)
}

// VisitableIDs returns the visitable object ids in ascending order.
func (t *Tile) VisitableIDs() []int {
	return sortedIDs(t.Visitable)
}

func sortedIDs(s mapset.Set[int]) []int {
	ids := make([]int, 0, s.Size())
	s.Each(func(id int) {
		ids = append(ids, id)
	})
	slices.Sort(ids)
	return ids
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
