// Package budget tracks generation spend against configured per-category limits.
// A Ledger is purely additive: there is no undo.
package budget

import "fmt"

// Category is a budgeted placement class.
type Category uint8

const (
	Treasure      Category = iota // Total gold-equivalent value of resource piles
	Mines                         // Mine count
	Dwellings                     // Dwelling count
	ResourcePiles                 // Resource pile count
)

// Categories lists every category in report order.
var Categories = []Category{Treasure, Mines, Dwellings, ResourcePiles}

// String returns the category name.
func (c Category) String() string {
	switch c {
	case Treasure:
		return "treasure"
	case Mines:
		return "mines"
	case Dwellings:
		return "dwellings"
	case ResourcePiles:
		return "resource_piles"
	default:
		return "unknown"
	}
}

// Limits are the configured caps for one generation run.
type Limits struct {
	TreasureValue int
	Mines         int
	Dwellings     int
	ResourcePiles int
}

// Ledger records spend for one placement job.
type Ledger struct {
	limits Limits

	spentValue     int // Value recorded against the treasure limit
	strategicValue int // Value of count-limited objects, informational only
	counts         map[Category]int
}

// NewLedger creates an empty ledger bound to the given limits.
func NewLedger(limits Limits) *Ledger {
	return &Ledger{
		limits: limits,
		counts: make(map[Category]int),
	}
}

// Limit returns the configured cap for a category.
func (l *Ledger) Limit(c Category) int {
	switch c {
	case Treasure:
		return l.limits.TreasureValue
	case Mines:
		return l.limits.Mines
	case Dwellings:
		return l.limits.Dwellings
	case ResourcePiles:
		return l.limits.ResourcePiles
	default:
		panic(fmt.Sprintf("budget: unknown category %d", c))
	}
}

// Spent returns recorded value for Treasure and recorded count for the others.
func (l *Ledger) Spent(c Category) int {
	if c == Treasure {
		return l.spentValue
	}
	l.Limit(c)
	return l.counts[c]
}

// Remaining returns how much of a category is left. Never negative.
func (l *Ledger) Remaining(c Category) int {
	return max(0, l.Limit(c)-l.Spent(c))
}

// RemainingValue is shorthand for Remaining(Treasure).
func (l *Ledger) RemainingValue() int {
	return l.Remaining(Treasure)
}

// CanPlace reports whether another object of the category fits.
// For Treasure it reports whether any value is left.
func (l *Ledger) CanPlace(c Category) bool {
	return l.Remaining(c) > 0
}

// CanSpend reports whether value fits in the remaining treasure budget.
func (l *Ledger) CanSpend(value int) bool {
	return value >= 0 && value <= l.RemainingValue()
}

// Record commits one placed object. Resource piles also spend treasure value;
// mines and dwellings only accumulate informational strategic value.
func (l *Ledger) Record(c Category, value int) {
	switch c {
	case ResourcePiles:
		l.counts[c]++
		l.spentValue += value
	case Mines, Dwellings:
		l.counts[c]++
		l.strategicValue += value
	case Treasure:
		l.spentValue += value
	default:
		panic(fmt.Sprintf("budget: unknown category %d", c))
	}
}

// Summary is a snapshot of ledger state for reporting.
type Summary struct {
	Categories     []CategorySummary `json:"categories"`
	StrategicValue int               `json:"strategic_value"`
}

// CategorySummary is one category line of a Summary.
type CategorySummary struct {
	Category string `json:"category"`
	Spent    int    `json:"spent"`
	Limit    int    `json:"limit"`
}

// Summary returns the spend per category.
func (l *Ledger) Summary() Summary {
	s := Summary{StrategicValue: l.strategicValue}
	for _, c := range Categories {
		s.Categories = append(s.Categories, CategorySummary{
			Category: c.String(),
			Spent:    l.Spent(c),
			Limit:    l.Limit(c),
		})
	}
	return s
}

// Lookup returns the summary line for a category name.
func (s Summary) Lookup(c Category) (CategorySummary, bool) {
	for _, cs := range s.Categories {
		if cs.Category == c.String() {
			return cs, true
		}
	}
	return CategorySummary{}, false
}
