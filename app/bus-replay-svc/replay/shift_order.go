package replay

import (
	"fmt"
	"strings"

	"github.com/phanikiran-1619/smv-replay/business/data/fleet"
)

// Shift is the direction of a journey. It determines the display order of the
// route stops but never the chronology of the gps samples.
type Shift string

const (
	//ShiftMorning is the pickup run, stops traversed in canonical order towards the school
	ShiftMorning Shift = "morning"
	//ShiftEvening is the drop run, stops traversed in reverse with the school first
	ShiftEvening Shift = "evening"
)

// ParseShift converts the period parameter used by the tracker api to a Shift
func ParseShift(period string) (Shift, error) {
	switch strings.ToLower(strings.TrimSpace(period)) {
	case string(ShiftMorning):
		return ShiftMorning, nil
	case string(ShiftEvening):
		return ShiftEvening, nil
	}
	return "", fmt.Errorf("unknown period %q, expected morning or evening", period)
}

// SchoolStopStrategy selects how the school stop is identified in a stop list.
// The two heuristics come from different call sites of the legacy map page and
// are deliberately kept apart, the caller chooses.
type SchoolStopStrategy int

const (
	//SchoolStopByName matches a school keyword in the stop name, falling back
	//to position when no stop name matches
	SchoolStopByName SchoolStopStrategy = iota
	//SchoolStopByPosition always takes the last stop in pickup order
	//(equivalently the first in drop order)
	SchoolStopByPosition
)

var schoolNameKeywords = []string{"school", "college", "campus"}

//displayOrder returns the stop traversal order for shift. Stops are first put
//in canonical pickup order by SeqOrder, then reversed for the evening drop run
//so the school stop comes first. The input slice is not mutated.
func displayOrder(stops []fleet.RouteStop, shift Shift) []fleet.RouteStop {
	ordered := fleet.SortStopsBySeqOrder(stops)
	if shift == ShiftEvening {
		for i, j := 0, len(ordered)-1; i < j; i, j = i+1, j-1 {
			ordered[i], ordered[j] = ordered[j], ordered[i]
		}
	}
	return ordered
}

//schoolStopIndex returns the index of the school stop within displayOrdered,
//or -1 when displayOrdered is empty.
func schoolStopIndex(displayOrdered []fleet.RouteStop, shift Shift, strategy SchoolStopStrategy) int {
	if len(displayOrdered) == 0 {
		return -1
	}
	if strategy == SchoolStopByName {
		for i, stop := range displayOrdered {
			if nameMatchesSchool(stop.Name) {
				return i
			}
		}
	}
	//positional: the school is the last stop of the pickup run, which the
	//evening reversal places first
	if shift == ShiftEvening {
		return 0
	}
	return len(displayOrdered) - 1
}

//nameMatchesSchool returns true when name contains a school keyword
func nameMatchesSchool(name string) bool {
	lowered := strings.ToLower(name)
	for _, keyword := range schoolNameKeywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}
