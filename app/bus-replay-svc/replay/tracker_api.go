package replay

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/phanikiran-1619/smv-replay/business/data/fleet"
	"github.com/phanikiran-1619/smv-replay/foundation/httpclient"
)

//trackerApi retrieves route and journey data from the upstream tracker service
type trackerApi struct {
	log    *log.Logger
	client *httpclient.Client
}

func makeTrackerApi(log *log.Logger, client *httpclient.Client) *trackerApi {
	return &trackerApi{
		log:    log,
		client: client,
	}
}

//getRouteStops returns the stops of routeId at schoolId.
//the upstream endpoint serves all routes of the school, the route is selected here
func (t *trackerApi) getRouteStops(ctx context.Context, schoolId string, routeId string) ([]fleet.RouteStop, error) {
	var routes []fleet.Route
	err := t.client.GetJSON(ctx, fmt.Sprintf("route/school/%s", schoolId), nil, &routes)
	if err != nil {
		return nil, fmt.Errorf("unable to load routes for school %s, error: %w", schoolId, err)
	}
	for _, route := range routes {
		if route.Id == routeId {
			return route.RoutePoints, nil
		}
	}
	return nil, fmt.Errorf("route %s not found at school %s", routeId, schoolId)
}

//getDeviceLocations returns the raw gps samples recorded for one journey.
//an empty result is the valid "no data yet" state, only transport failures error
func (t *trackerApi) getDeviceLocations(ctx context.Context,
	schoolId string,
	routeId string,
	date string,
	shift Shift) ([]fleet.GPSSample, error) {

	query := url.Values{}
	query.Set("schoolId", schoolId)
	query.Set("routeId", routeId)
	query.Set("date", date)
	query.Set("period", string(shift))

	var samples []fleet.GPSSample
	err := t.client.GetJSON(ctx, "device-locations", query, &samples)
	if err != nil {
		return nil, fmt.Errorf("unable to load device locations for route %s on %s, error: %w",
			routeId, date, err)
	}
	return samples, nil
}

//shiftWindow returns the archive lookup window for a journey date and shift,
//morning covers midnight to noon, evening noon to midnight
func shiftWindow(date time.Time, shift Shift) (time.Time, time.Time) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	noon := dayStart.Add(12 * time.Hour)
	if shift == ShiftMorning {
		return dayStart, noon
	}
	return noon, dayStart.Add(24 * time.Hour)
}

//syntheticJourney builds a small fixed demonstration sample set tracing the
//route stops in shift order, used when neither the upstream service nor the
//archive could provide real data. Every sample is flagged Synthetic so it can
//never be mistaken for a recorded journey.
func syntheticJourney(stops []fleet.RouteStop, shift Shift, date time.Time) []fleet.GPSSample {
	start := time.Date(date.Year(), date.Month(), date.Day(), 8, 0, 0, 0, date.Location())
	if shift == ShiftEvening {
		start = time.Date(date.Year(), date.Month(), date.Day(), 15, 30, 0, 0, date.Location())
	}
	ordered := displayOrder(stops, shift)
	samples := make([]fleet.GPSSample, 0, len(ordered))
	for i, stop := range ordered {
		if !stop.HasValidCoordinates() {
			continue
		}
		samples = append(samples, fleet.GPSSample{
			DeviceId:  "demo-device",
			Latitude:  stop.Latitude,
			Longitude: stop.Longitude,
			EventTime: start.Add(time.Duration(i) * 5 * time.Minute),
			Synthetic: true,
		})
	}
	return samples
}
