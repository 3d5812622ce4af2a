package scheduling

import (
	"cmp"
	"slices"
	"strings"

	"roombook/pkg/model"
)

// NoExclusion disables self-exclusion in FindConflict.
const NoExclusion = -1

const occupantSep = ", "

type Conflict struct {
	Index       int
	Reservation model.Reservation
	Interval    Interval
}

// FindConflict returns the first reservation of room on day whose interval
// overlaps target. The reservation at position exclude is ignored, as are
// records whose interval cannot be computed.
func FindConflict(rs []model.Reservation, room string, day model.Weekday, target Interval, exclude int) (Conflict, bool) {
	for i, r := range rs {
		if i == exclude || r.Room != room || r.Day != day {
			continue
		}
		iv, err := IntervalOf(r)
		if err != nil {
			continue
		}
		if iv.Overlaps(target) {
			return Conflict{Index: i, Reservation: r, Interval: iv}, true
		}
	}
	return Conflict{}, false
}

// Occupancy is an occupied interval of a room on a day.
type Occupancy struct {
	Interval
	Occupant string
	Index    int
}

// Occupied returns the occupied intervals of room on day ordered by start.
func Occupied(rs []model.Reservation, room string, day model.Weekday) []Occupancy {
	var out []Occupancy
	for i, r := range rs {
		if r.Room != room || r.Day != day {
			continue
		}
		iv, err := IntervalOf(r)
		if err != nil {
			continue
		}
		out = append(out, Occupancy{Interval: iv, Occupant: r.Occupant, Index: i})
	}
	slices.SortStableFunc(out, func(a, b Occupancy) int {
		return cmp.Compare(a.Start, b.Start)
	})
	return out
}

// Merge coalesces overlapping occupancies. Touching ones stay separate.
// Occupants of merged ranges are joined with ", ".
func Merge(occ []Occupancy) []Occupancy {
	var out []Occupancy
	for _, o := range occ {
		if n := len(out); n > 0 && o.Start < out[n-1].End {
			last := &out[n-1]
			last.End = max(last.End, o.End)
			if !slices.Contains(strings.Split(last.Occupant, occupantSep), o.Occupant) {
				last.Occupant += occupantSep + o.Occupant
			}
			continue
		}
		out = append(out, o)
	}
	return out
}

// Overlapping returns pairs of ledger positions whose intervals overlap.
func Overlapping(rs []model.Reservation) [][2]int {
	var pairs [][2]int
	for i := range rs {
		a, err := IntervalOf(rs[i])
		if err != nil {
			continue
		}
		for j := i + 1; j < len(rs); j++ {
			if rs[j].Room != rs[i].Room || rs[j].Day != rs[i].Day {
				continue
			}
			b, err := IntervalOf(rs[j])
			if err != nil {
				continue
			}
			if a.Overlaps(b) {
				pairs = append(pairs, [2]int{i, j})
			}
		}
	}
	return pairs
}
