// Package rankings places a mark inside a conference performance list and
// computes the gaps around it. The lists themselves come from an external
// provider; this package is transport-agnostic.
package rankings

import (
	"sort"
	"strings"
)

// defaultQualifyingSpots is how many ranked athletes qualify for the
// conference championship in each event.
const defaultQualifyingSpots = 16

// List is one event's performance list: marks in canonical units, best
// first.
type List struct {
	EventKey string
	Gender   string // "M" or "W"
	Field    bool   // higher is better when true
	Marks    []float64
}

// Placement describes where a mark would land in a performance list.
type Placement struct {
	Rank   int
	Ranked bool // inside the qualifying spots

	GapAhead     float64 // margin over the mark ranked just below
	HasGapAhead  bool
	GapBehind    float64 // deficit to the mark ranked just above
	HasGapBehind bool

	// GapToQualify is the deficit to the last qualifying mark, present only
	// for unranked placements.
	GapToQualify    float64
	HasGapToQualify bool
}

// Option applies a configuration option to the Book.
type Option func(*Book)

// WithQualifyingSpots overrides how many spots qualify per event.
func WithQualifyingSpots(n int) Option {
	return func(b *Book) {
		if n > 0 {
			b.spots = n
		}
	}
}

// Book holds the performance lists for one conference season.
type Book struct {
	lists map[string]List
	spots int
}

// NewBook creates an empty rankings book with configuration options.
func NewBook(opts ...Option) *Book {
	b := &Book{
		lists: make(map[string]List),
		spots: defaultQualifyingSpots,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func listKey(eventKey, gender string) string {
	return strings.ToLower(eventKey) + "_" + strings.ToUpper(gender)
}

// Add stores a performance list, sorting its marks best-first under the
// event's polarity.
func (b *Book) Add(l List) {
	marks := make([]float64, len(l.Marks))
	copy(marks, l.Marks)
	if l.Field {
		sort.Sort(sort.Reverse(sort.Float64Slice(marks)))
	} else {
		sort.Float64s(marks)
	}
	l.Marks = marks
	b.lists[listKey(l.EventKey, l.Gender)] = l
}

// Place computes where a mark would rank in the event's list. Returns false
// when no list exists for the event and gender.
func (b *Book) Place(eventKey, gender string, mark float64) (Placement, bool) {
	l, ok := b.lists[listKey(eventKey, gender)]
	if !ok || len(l.Marks) == 0 {
		return Placement{}, false
	}

	beats := func(a, existing float64) bool {
		if l.Field {
			return a >= existing
		}
		return a <= existing
	}

	rank := len(l.Marks) + 1
	for i, m := range l.Marks {
		if beats(mark, m) {
			rank = i + 1
			break
		}
	}

	p := Placement{Rank: rank}

	if rank <= len(l.Marks) {
		below := l.Marks[rank-1] // the mark this one displaces downward
		if l.Field {
			p.GapAhead = mark - below
		} else {
			p.GapAhead = below - mark
		}
		p.HasGapAhead = true
	}
	if rank > 1 && rank-2 < len(l.Marks) {
		above := l.Marks[rank-2]
		if l.Field {
			p.GapBehind = above - mark
		} else {
			p.GapBehind = mark - above
		}
		p.HasGapBehind = true
	}

	if rank <= b.spots {
		p.Ranked = true
		return p, true
	}

	if len(l.Marks) >= b.spots {
		last := l.Marks[b.spots-1]
		if l.Field {
			p.GapToQualify = last - mark
		} else {
			p.GapToQualify = mark - last
		}
		p.HasGapToQualify = true
	}
	return p, true
}
