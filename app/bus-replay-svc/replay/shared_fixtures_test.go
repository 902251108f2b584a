package replay

import (
	"testing"
	"time"

	"github.com/phanikiran-1619/smv-replay/business/data/fleet"
)

//testDate parses an RFC3339 date for fixtures
func testDate(dateString string, t *testing.T) time.Time {
	date, err := time.Parse(time.RFC3339, dateString)
	if err != nil {
		t.Fatalf("unable to parse test date %s, error:%v", dateString, err)
	}
	return date
}

//getTestStops returns three stops in canonical pickup order, the last one
//being the school
func getTestStops() []fleet.RouteStop {
	return []fleet.RouteStop{
		{
			Id:        "stop-1",
			Name:      "Maple Street",
			Latitude:  12.9716,
			Longitude: 77.5946,
			SeqOrder:  1,
		},
		{
			Id:        "stop-2",
			Name:      "Lake View Corner",
			Latitude:  12.9756,
			Longitude: 77.6000,
			SeqOrder:  2,
		},
		{
			Id:        "stop-3",
			Name:      "Greenwood High School",
			Latitude:  12.9800,
			Longitude: 77.6050,
			SeqOrder:  3,
		},
	}
}

//getTestSamples returns one sample at each test stop coordinate, ten minutes
//apart starting at 08:00
func getTestSamples(t *testing.T) []fleet.GPSSample {
	stops := getTestStops()
	times := []string{
		"2024-02-12T08:00:00Z",
		"2024-02-12T08:10:00Z",
		"2024-02-12T08:20:00Z",
	}
	samples := make([]fleet.GPSSample, 0, len(stops))
	for i, stop := range stops {
		samples = append(samples, fleet.GPSSample{
			DeviceId:  "device-1",
			Latitude:  stop.Latitude,
			Longitude: stop.Longitude,
			EventTime: testDate(times[i], t),
		})
	}
	return samples
}
