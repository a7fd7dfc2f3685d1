package objects

// Creature is one tier of the neutral creature table.
type Creature struct {
	ID        string `json:"id"`
	Level     int    `json:"level"`
	AIValue   int    `json:"ai_value"`
	MinGrowth int    `json:"-"`
	MaxGrowth int    `json:"-"`
}

// Creatures is the fixed creature table ordered by ascending AI value.
// The last entry is the strongest tier.
var Creatures = []Creature{
	{ID: "goblin", Level: 1, AIValue: 60, MinGrowth: 12, MaxGrowth: 16},
	{ID: "pikeman", Level: 1, AIValue: 80, MinGrowth: 12, MaxGrowth: 14},
	{ID: "archer", Level: 2, AIValue: 126, MinGrowth: 8, MaxGrowth: 10},
	{ID: "orc", Level: 3, AIValue: 192, MinGrowth: 6, MaxGrowth: 8},
	{ID: "griffin", Level: 3, AIValue: 351, MinGrowth: 6, MaxGrowth: 7},
	{ID: "ogre", Level: 4, AIValue: 416, MinGrowth: 4, MaxGrowth: 5},
	{ID: "swordsman", Level: 4, AIValue: 445, MinGrowth: 4, MaxGrowth: 5},
	{ID: "monk", Level: 5, AIValue: 485, MinGrowth: 3, MaxGrowth: 4},
	{ID: "cyclops", Level: 6, AIValue: 1266, MinGrowth: 2, MaxGrowth: 3},
	{ID: "cavalier", Level: 6, AIValue: 1946, MinGrowth: 2, MaxGrowth: 2},
	{ID: "angel", Level: 7, AIValue: 5019, MinGrowth: 1, MaxGrowth: 1},
	{ID: "archangel", Level: 7, AIValue: 8776, MinGrowth: 1, MaxGrowth: 1},
}

// Strongest returns the highest-AI-value creature tier.
func Strongest() Creature {
	return Creatures[len(Creatures)-1]
}

// CreaturesUpToLevel returns the tiers at or below the given level, in table order.
func CreaturesUpToLevel(level int) []Creature {
	var out []Creature
	for _, c := range Creatures {
		if c.Level <= level {
			out = append(out, c)
		}
	}
	return out
}

// CreatureByID looks up a tier by id.
func CreatureByID(id string) (Creature, bool) {
	for _, c := range Creatures {
		if c.ID == id {
			return c, true
		}
	}
	return Creature{}, false
}
