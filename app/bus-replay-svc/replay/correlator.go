package replay

import (
	"math"
	"sort"
	"time"

	"github.com/phanikiran-1619/smv-replay/business/data/fleet"
)

//reachedThresholdMeters is the proximity below which a stop counts as reached.
//The legacy map page carried both a 100m and a 10m constant for this check,
//100m is the canonical value here.
const reachedThresholdMeters = 100.0

// CorrelatedStop pairs a route stop with the gps sample that best represents
// the bus arriving there for one journey. A nil Matched sample is the valid
// "no data yet" state, not an error.
type CorrelatedStop struct {
	Stop           fleet.RouteStop  `json:"stop"`
	Matched        *fleet.GPSSample `json:"matched,omitempty"`
	ArrivalTime    *time.Time       `json:"arrivalTime,omitempty"`
	DistanceMeters float64          `json:"distanceMeters"`
	//DisplayOrder is the 1-based position after shift reordering
	DisplayOrder  int  `json:"displayOrder"`
	IsReached     bool `json:"isReached"`
	IsSchoolPoint bool `json:"isSchoolPoint"`
	//TimeTakenMinutes is the rounded minutes from the chronologically previous
	//correlated stop, present only when greater than zero
	TimeTakenMinutes *int `json:"timeTakenMinutes,omitempty"`
}

// MatchStrategy names one way of assigning a gps sample to a route stop.
// Proportional alignment is the primary strategy, nearest distance is an
// independent fallback and validator. The two are never blended.
type MatchStrategy interface {
	//Name identifies the strategy in logs
	Name() string
	//matchIndex returns the index into samples for the stop at displayIndex,
	//or -1 when the strategy has no usable target
	matchIndex(stop fleet.RouteStop, displayIndex int, stopCount int, samples []fleet.GPSSample) int
}

//MatchProportional aligns stop index i to sample index round(i/(S-1)*(G-1)).
//When stop and sample counts are equal this reduces to a direct 1:1 pairing.
var MatchProportional MatchStrategy = proportionalMatch{}

//MatchNearest scans all samples for the one closest to the stop,
//ties broken by earliest event time.
var MatchNearest MatchStrategy = nearestDistanceMatch{}

type proportionalMatch struct{}

func (proportionalMatch) Name() string { return "proportional" }

func (proportionalMatch) matchIndex(_ fleet.RouteStop, displayIndex int, stopCount int, samples []fleet.GPSSample) int {
	sampleCount := len(samples)
	if sampleCount == 0 {
		return -1
	}
	if stopCount <= 1 {
		return 0
	}
	target := int(math.Round(float64(displayIndex) / float64(stopCount-1) * float64(sampleCount-1)))
	if target < 0 {
		target = 0
	}
	if target > sampleCount-1 {
		target = sampleCount - 1
	}
	return target
}

type nearestDistanceMatch struct{}

func (nearestDistanceMatch) Name() string { return "nearest-distance" }

func (nearestDistanceMatch) matchIndex(stop fleet.RouteStop, _ int, _ int, samples []fleet.GPSSample) int {
	best := -1
	bestDistance := math.Inf(1)
	for i, sample := range samples {
		d := distanceMeters(stop.Latitude, stop.Longitude, sample.Latitude, sample.Longitude)
		//strictly less keeps the earliest sample on ties, samples are in event time order
		if d < bestDistance {
			best = i
			bestDistance = d
		}
	}
	return best
}

//correlate assigns each display-ordered stop an arrival sample from one
//journey's gps fixes. Pure function: it sorts private copies of both inputs
//and never mutates them. Stops or samples with non-finite coordinates are
//excluded from matching rather than propagating NaN into results.
func correlate(stops []fleet.RouteStop,
	samples []fleet.GPSSample,
	shift Shift,
	strategy MatchStrategy,
	schoolStrategy SchoolStopStrategy) []CorrelatedStop {

	display := displayOrder(stops, shift)
	usable := usableSamples(samples)
	schoolIndex := schoolStopIndex(display, shift, schoolStrategy)

	results := make([]CorrelatedStop, 0, len(display))
	for i, stop := range display {
		correlated := CorrelatedStop{
			Stop:          stop,
			DisplayOrder:  i + 1,
			IsSchoolPoint: i == schoolIndex,
		}
		if stop.HasValidCoordinates() && len(usable) > 0 {
			index := strategy.matchIndex(stop, i, len(display), usable)
			if index < 0 {
				index = MatchNearest.matchIndex(stop, i, len(display), usable)
			}
			if index >= 0 {
				matched := usable[index]
				arrival := matched.EventTime
				correlated.Matched = &matched
				correlated.ArrivalTime = &arrival
				correlated.DistanceMeters = distanceMeters(stop.Latitude, stop.Longitude,
					matched.Latitude, matched.Longitude)
				correlated.IsReached = correlated.DistanceMeters < reachedThresholdMeters
			}
		}
		results = append(results, correlated)
	}
	applyTimeTaken(results)
	return results
}

//usableSamples returns a chronologically sorted copy of samples with any
//non-finite coordinates removed
func usableSamples(samples []fleet.GPSSample) []fleet.GPSSample {
	sorted := fleet.SortSamplesByEventTime(samples)
	usable := make([]fleet.GPSSample, 0, len(sorted))
	for _, sample := range sorted {
		if sample.HasValidCoordinates() {
			usable = append(usable, sample)
		}
	}
	return usable
}

//applyTimeTaken fills in TimeTakenMinutes between consecutive chronologically
//ordered correlated stops. Under the drop shift the chronological neighbors
//are not the display neighbors, so ordering is by arrival time, not slice order.
func applyTimeTaken(correlated []CorrelatedStop) {
	matched := make([]int, 0, len(correlated))
	for i := range correlated {
		if correlated[i].ArrivalTime != nil {
			matched = append(matched, i)
		}
	}
	sort.SliceStable(matched, func(a, b int) bool {
		return correlated[matched[a]].ArrivalTime.Before(*correlated[matched[b]].ArrivalTime)
	})
	for i := 1; i < len(matched); i++ {
		previous := correlated[matched[i-1]].ArrivalTime
		current := correlated[matched[i]].ArrivalTime
		minutes := roundedMinutes(current.Sub(*previous))
		if minutes > 0 {
			correlated[matched[i]].TimeTakenMinutes = &minutes
		}
	}
}

//totalJourneyMinutes is the rounded minutes between the first and last sample
//of the full sorted set, independent of any stop correlation
func totalJourneyMinutes(samples []fleet.GPSSample) int {
	if len(samples) < 2 {
		return 0
	}
	sorted := fleet.SortSamplesByEventTime(samples)
	return roundedMinutes(sorted[len(sorted)-1].EventTime.Sub(sorted[0].EventTime))
}

//roundedMinutes rounds the absolute duration to whole minutes
func roundedMinutes(d time.Duration) int {
	if d < 0 {
		d = -d
	}
	return int(math.Round(d.Minutes()))
}
