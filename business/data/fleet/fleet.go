// Package fleet contains the school bus fleet entities shared by the replay
// engine and its persistence and transport layers.
package fleet

import (
	"math"
	"sort"
	"time"
)

//RouteStop is one fixed waypoint on a school bus route.
//SeqOrder defines the canonical pickup-direction order, start towards school.
type RouteStop struct {
	Id        string  `json:"id"`
	Name      string  `json:"routePointName"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	SeqOrder  int     `json:"seqOrder"`
}

//Route is a stop sequence owned by a school, as served by the route collaborator.
type Route struct {
	Id          string      `json:"id"`
	Name        string      `json:"routeName"`
	SchoolId    string      `json:"schoolId"`
	RoutePoints []RouteStop `json:"routePoints"`
}

//GPSSample is one timestamped device position fix. Heading is nil when the
//device did not report one. Synthetic marks demonstration data generated when
//no real fix source was available, so consumers can tell it apart.
type GPSSample struct {
	DeviceId  string    `json:"deviceId"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Heading   *float64  `json:"heading,omitempty"`
	EventTime time.Time `json:"eventTime"`
	Synthetic bool      `json:"synthetic,omitempty"`
}

//HasValidCoordinates returns true when both latitude and longitude are finite numbers
func (s *RouteStop) HasValidCoordinates() bool {
	return finiteCoordinate(s.Latitude, s.Longitude)
}

//HasValidCoordinates returns true when both latitude and longitude are finite numbers
func (s *GPSSample) HasValidCoordinates() bool {
	return finiteCoordinate(s.Latitude, s.Longitude)
}

func finiteCoordinate(lat float64, lon float64) bool {
	return !math.IsNaN(lat) && !math.IsInf(lat, 0) &&
		!math.IsNaN(lon) && !math.IsInf(lon, 0)
}

//SortSamplesByEventTime returns a new slice of samples ordered by EventTime
//ascending. The input slice is never reordered in place, journey sample sets
//are treated as read-only once loaded.
func SortSamplesByEventTime(samples []GPSSample) []GPSSample {
	sorted := make([]GPSSample, len(samples))
	copy(sorted, samples)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].EventTime.Before(sorted[j].EventTime)
	})
	return sorted
}

//SortStopsBySeqOrder returns a new slice of stops in canonical pickup order,
//SeqOrder ascending. The input slice is not mutated.
func SortStopsBySeqOrder(stops []RouteStop) []RouteStop {
	sorted := make([]RouteStop, len(stops))
	copy(sorted, stops)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SeqOrder < sorted[j].SeqOrder
	})
	return sorted
}
