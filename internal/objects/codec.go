package objects

import (
	"encoding/json"
	"fmt"

	"github.com/talgya/mapforge/internal/grid"
)

// Decode rebuilds a stored object from its tag and JSON form.
// Unknown tags decode as obstacles, whose tag is their obstacle type.
func Decode(tag string, data []byte) (grid.MapObject, error) {
	var obj grid.MapObject
	switch tag {
	case TagResource:
		obj = &Resource{}
	case TagMine:
		obj = &Mine{}
	case TagDwelling:
		d := &Dwelling{}
		if err := json.Unmarshal(data, d); err != nil {
			return nil, fmt.Errorf("decode %s: %w", tag, err)
		}
		// Growth bounds are not stored; take them from the creature table.
		if c, ok := CreatureByID(d.Creature.ID); ok {
			d.Creature = c
		}
		return d, nil
	default:
		obj = &Obstacle{}
	}
	if err := json.Unmarshal(data, obj); err != nil {
		return nil, fmt.Errorf("decode %s: %w", tag, err)
	}
	return obj, nil
}
