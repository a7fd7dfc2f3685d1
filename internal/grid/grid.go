package grid

import (
	"fmt"
	"math"
	"slices"
)

// Grid holds the complete tile array and object registry for one generated map.
// Out-of-bounds access and unknown object ids are contract violations and panic.
type Grid struct {
	Width  int `json:"width"`
	Height int `json:"height"`

	// Spawns are the validated hero start positions.
	Spawns []Point `json:"spawns"`

	tiles   []Tile
	objects map[int]MapObject
	decor   map[Point][]int // Objects that neither block nor are visitable
	nextID  int
}

// New creates a grid of the given size filled with temperate grass.
func New(width, height int) *Grid {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("grid: invalid size %dx%d", width, height))
	}
	g := &Grid{
		Width:   width,
		Height:  height,
		tiles:   make([]Tile, width*height),
		objects: make(map[int]MapObject),
		decor:   make(map[Point][]int),
		nextID:  1,
	}
	for i := range g.tiles {
		g.tiles[i] = newTile()
	}
	return g
}

// InBounds returns true if p lies within the grid.
func (g *Grid) InBounds(p Point) bool {
	return p.X >= 0 && p.X < g.Width && p.Y >= 0 && p.Y < g.Height
}

func (g *Grid) index(p Point) int {
	if !g.InBounds(p) {
		panic(fmt.Sprintf("grid: position (%d,%d) out of bounds %dx%d", p.X, p.Y, g.Width, g.Height))
	}
	return p.Y*g.Width + p.X
}

// Tile returns the tile at p.
func (g *Grid) Tile(p Point) *Tile {
	return &g.tiles[g.index(p)]
}

// SetTile replaces terrain data at p. Object registrations on the tile are kept.
func (g *Grid) SetTile(p Point, t Tile) {
	cur := g.Tile(p)
	cur.Terrain = t.Terrain
	cur.Moisture = t.Moisture
	cur.MoveCost = t.Terrain.MoveCost()
	cur.Coastal = t.Coastal
}

// SetTerrain changes the terrain at p and updates its movement cost.
func (g *Grid) SetTerrain(p Point, terrain Terrain, moisture Moisture) {
	t := g.Tile(p)
	t.Terrain = terrain
	t.Moisture = moisture
	t.MoveCost = terrain.MoveCost()
}

// AddObject assigns a fresh id to obj and registers it on every tile it touches.
// Returns the assigned id.
func (g *Grid) AddObject(obj MapObject) int {
	b := obj.Base()
	if b.ID != 0 {
		if _, ok := g.objects[b.ID]; ok {
			panic(fmt.Sprintf("grid: object %d already registered", b.ID))
		}
	}
	g.checkFootprint(obj)

	b.ID = g.nextID
	g.nextID++
	if b.Owner == "" {
		b.Owner = OwnerNeutral
	}
	g.objects[b.ID] = obj
	g.register(obj)
	return b.ID
}

// RestoreObject registers obj under its existing id, used when rebuilding a
// stored map. Later AddObject calls continue above the highest restored id.
func (g *Grid) RestoreObject(obj MapObject) {
	b := obj.Base()
	if b.ID <= 0 {
		panic(fmt.Sprintf("grid: restoring object %q without an id", b.Tag))
	}
	if _, ok := g.objects[b.ID]; ok {
		panic(fmt.Sprintf("grid: object %d already registered", b.ID))
	}
	g.checkFootprint(obj)

	g.objects[b.ID] = obj
	g.register(obj)
	if b.ID >= g.nextID {
		g.nextID = b.ID + 1
	}
}

// RemoveObject unregisters the object from the registry and every tile.
func (g *Grid) RemoveObject(id int) {
	obj := g.MustObject(id)
	g.unregister(obj)
	delete(g.objects, id)
}

// MoveObject relocates an object, keeping its id.
func (g *Grid) MoveObject(id int, to Point) {
	obj := g.MustObject(id)
	from := obj.Base().Pos
	g.unregister(obj)
	obj.Base().Pos = to
	if !g.footprintInBounds(obj) {
		obj.Base().Pos = from
		g.register(obj)
		panic(fmt.Sprintf("grid: moving object %d to (%d,%d) leaves the grid", id, to.X, to.Y))
	}
	g.register(obj)
}

func (g *Grid) checkFootprint(obj MapObject) {
	if !g.footprintInBounds(obj) {
		p := obj.Base().Pos
		panic(fmt.Sprintf("grid: object %q at (%d,%d) has a footprint outside %dx%d",
			obj.Base().Tag, p.X, p.Y, g.Width, g.Height))
	}
}

func (g *Grid) footprintInBounds(obj MapObject) bool {
	if !g.InBounds(obj.Base().Pos) {
		return false
	}
	for _, p := range obj.BlockedTiles() {
		if !g.InBounds(p) {
			return false
		}
	}
	for _, p := range obj.VisitablePositions() {
		if !g.InBounds(p) {
			return false
		}
	}
	return true
}

func (g *Grid) register(obj MapObject) {
	id := obj.Base().ID
	for _, p := range obj.BlockedTiles() {
		g.Tile(p).Blocking.Put(id)
	}
	for _, p := range obj.VisitablePositions() {
		g.Tile(p).Visitable.Put(id)
	}
	b := obj.Base()
	if b.Visitable && !b.Blocking {
		g.Tile(b.Pos).Visitable.Put(id)
	}
	if !b.Visitable && !b.Blocking {
		g.decor[b.Pos] = append(g.decor[b.Pos], id)
	}
}

func (g *Grid) unregister(obj MapObject) {
	id := obj.Base().ID
	for _, p := range obj.BlockedTiles() {
		g.Tile(p).Blocking.Remove(id)
	}
	for _, p := range obj.VisitablePositions() {
		g.Tile(p).Visitable.Remove(id)
	}
	b := obj.Base()
	if b.Visitable && !b.Blocking {
		g.Tile(b.Pos).Visitable.Remove(id)
	}
	if !b.Visitable && !b.Blocking {
		ids := slices.DeleteFunc(g.decor[b.Pos], func(d int) bool { return d == id })
		if len(ids) == 0 {
			delete(g.decor, b.Pos)
		} else {
			g.decor[b.Pos] = ids
		}
	}
}

// Object returns the object with the given id.
func (g *Grid) Object(id int) (MapObject, bool) {
	obj, ok := g.objects[id]
	return obj, ok
}

// MustObject returns the object with the given id or panics.
func (g *Grid) MustObject(id int) MapObject {
	obj, ok := g.objects[id]
	if !ok {
		panic(fmt.Sprintf("grid: unknown object id %d", id))
	}
	return obj
}

// ObjectCount returns the number of registered objects.
func (g *Grid) ObjectCount() int {
	return len(g.objects)
}

// Objects returns every registered object in ascending id order.
func (g *Grid) Objects() []MapObject {
	ids := make([]int, 0, len(g.objects))
	for id := range g.objects {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	out := make([]MapObject, len(ids))
	for i, id := range ids {
		out[i] = g.objects[id]
	}
	return out
}

// ObjectsAt returns every object on p, in id order.
func (g *Grid) ObjectsAt(p Point) []MapObject {
	t := g.Tile(p)
	ids := append(t.BlockingIDs(), t.VisitableIDs()...)
	ids = append(ids, g.decor[p]...)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	out := make([]MapObject, 0, len(ids))
	for _, id := range ids {
		out = append(out, g.MustObject(id))
	}
	return out
}

// ObjectsOfType returns objects with the given tag, in id order.
func (g *Grid) ObjectsOfType(tag string) []MapObject {
	var out []MapObject
	for _, obj := range g.Objects() {
		if obj.Base().Tag == tag {
			out = append(out, obj)
		}
	}
	return out
}

// ObjectsOf returns every object of concrete type T, in id order.
func ObjectsOf[T MapObject](g *Grid) []T {
	var out []T
	for _, obj := range g.Objects() {
		if t, ok := obj.(T); ok {
			out = append(out, t)
		}
	}
	return out
}

// Neighbors returns the in-bounds 8-directional neighbours of p.
func (g *Grid) Neighbors(p Point) []Point {
	g.index(p)
	out := make([]Point, 0, 8)
	for _, d := range NeighborDirections {
		n := p.Add(d)
		if g.InBounds(n) {
			out = append(out, n)
		}
	}
	return out
}

// IsPassable reports whether the terrain at p can be walked on.
func (g *Grid) IsPassable(p Point) bool {
	return g.Tile(p).Passable()
}

// IsBlocked reports whether a blocking object is registered at p.
func (g *Grid) IsBlocked(p Point) bool {
	return g.Tile(p).Blocked()
}

// IsClear reports whether p is passable and holds no blocking object.
func (g *Grid) IsClear(p Point) bool {
	t := g.Tile(p)
	return t.Passable() && !t.Blocked()
}

// IsOccupied reports whether any object sits on or is registered at p.
func (g *Grid) IsOccupied(p Point) bool {
	return len(g.ObjectsAt(p)) > 0
}

// CanMoveBetween reports whether a hero can step from one tile to an adjacent one.
func (g *Grid) CanMoveBetween(from, to Point) bool {
	g.index(from)
	if Chebyshev(from, to) != 1 {
		return false
	}
	return g.IsClear(to)
}

// MoveCost returns the cost of stepping from one adjacent tile to another.
// Diagonal steps cost √2 times the target tile's cost. Impassable steps return 0.
func (g *Grid) MoveCost(from, to Point) int {
	if !g.CanMoveBetween(from, to) {
		return 0
	}
	cost := g.Tile(to).MoveCost
	if from.X != to.X && from.Y != to.Y {
		return int(math.Round(float64(cost) * math.Sqrt2))
	}
	return cost
}

// MarkCoastal flags every non-water tile adjacent to water as coastal.
// Returns the number of coastal tiles.
func (g *Grid) MarkCoastal() int {
	count := 0
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			p := Point{X: x, Y: y}
			t := g.Tile(p)
			t.Coastal = false
			if t.Terrain == TerrainWater {
				continue
			}
			for _, n := range g.Neighbors(p) {
				if g.Tile(n).Terrain == TerrainWater {
					t.Coastal = true
					count++
					break
				}
			}
		}
	}
	return count
}

// Visit notifies every visitable object at p and removes the consumed ones.
func (g *Grid) Visit(p Point, v Visitor) []VisitOutcome {
	var outcomes []VisitOutcome
	for _, id := range g.Tile(p).VisitableIDs() {
		obj := g.MustObject(id)
		out := obj.OnVisit(v)
		if out.Consumed {
			g.RemoveObject(id)
		}
		outcomes = append(outcomes, out)
	}
	return outcomes
}

// TerrainCounts returns a summary of terrain type distribution.
func (g *Grid) TerrainCounts() map[Terrain]int {
	counts := make(map[Terrain]int)
	for i := range g.tiles {
		counts[g.tiles[i].Terrain]++
	}
	return counts
}

// Points returns every tile position in row-major order.
func (g *Grid) Points() []Point {
	out := make([]Point, 0, len(g.tiles))
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			out = append(out, Point{X: x, Y: y})
		}
	}
	return out
}

// String returns a summary of the grid.
func (g *Grid) String() string {
	return fmt.Sprintf("Grid(%dx%d, objects=%d)", g.Width, g.Height, len(g.objects))
}
