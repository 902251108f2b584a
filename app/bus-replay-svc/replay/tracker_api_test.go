package replay

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/phanikiran-1619/smv-replay/foundation/httpclient"
)

func Test_trackerApi_getRouteStops(t *testing.T) {
	is := is.New(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		is.Equal(r.URL.Path, "/route/school/school-1")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":"route-1","routeName":"North Loop","routePoints":[
				{"id":"stop-2","routePointName":"Lake View Corner","latitude":12.9756,"longitude":77.6,"seqOrder":2},
				{"id":"stop-1","routePointName":"Maple Street","latitude":12.9716,"longitude":77.5946,"seqOrder":1}
			]},
			{"id":"route-2","routeName":"South Loop","routePoints":[]}
		]`))
	}))
	defer server.Close()

	api := makeTrackerApi(testLogger(), httpclient.MakeClient(server.URL, time.Second))

	stops, err := api.getRouteStops(context.Background(), "school-1", "route-1")
	is.NoErr(err)
	is.Equal(len(stops), 2)
	is.Equal(stops[0].Name, "Lake View Corner")

	_, err = api.getRouteStops(context.Background(), "school-1", "route-9")
	is.True(err != nil)
}

func Test_trackerApi_getDeviceLocations(t *testing.T) {
	is := is.New(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		is.Equal(r.URL.Path, "/device-locations")
		is.Equal(r.URL.Query().Get("routeId"), "route-1")
		is.Equal(r.URL.Query().Get("period"), "morning")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"deviceId":"device-1","latitude":12.9716,"longitude":77.5946,"eventTime":"2024-02-12T08:00:00Z"},
			{"deviceId":"device-1","latitude":12.9756,"longitude":77.6,"eventTime":"2024-02-12T08:10:00Z"}
		]`))
	}))
	defer server.Close()

	api := makeTrackerApi(testLogger(), httpclient.MakeClient(server.URL, time.Second))

	samples, err := api.getDeviceLocations(context.Background(), "school-1", "route-1",
		"2024-02-12", ShiftMorning)
	is.NoErr(err)
	is.Equal(len(samples), 2)
	is.Equal(samples[0].DeviceId, "device-1")
	is.Equal(samples[1].EventTime, testDate("2024-02-12T08:10:00Z", t))
}

func Test_trackerApi_transportFailure(t *testing.T) {
	is := is.New(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream broken", http.StatusBadGateway)
	}))
	defer server.Close()

	api := makeTrackerApi(testLogger(), httpclient.MakeClient(server.URL, time.Second))
	_, err := api.getDeviceLocations(context.Background(), "school-1", "route-1",
		"2024-02-12", ShiftMorning)
	is.True(err != nil)
}

func Test_syntheticJourney(t *testing.T) {
	is := is.New(t)
	stops := getTestStops()
	date := testDate("2024-02-12T00:00:00Z", t)

	samples := syntheticJourney(stops, ShiftMorning, date)
	is.Equal(len(samples), 3)
	for i, sample := range samples {
		is.True(sample.Synthetic)
		is.Equal(sample.Latitude, displayOrder(stops, ShiftMorning)[i].Latitude)
	}
	is.Equal(samples[0].EventTime.Hour(), 8)

	evening := syntheticJourney(stops, ShiftEvening, date)
	//drop run traces the stops school-first
	is.Equal(evening[0].Latitude, stops[2].Latitude)
	is.Equal(evening[0].EventTime.Hour(), 15)
}

func Test_shiftWindow(t *testing.T) {
	is := is.New(t)
	date := testDate("2024-02-12T00:00:00Z", t)

	start, end := shiftWindow(date, ShiftMorning)
	is.Equal(start.Hour(), 0)
	is.Equal(end.Hour(), 12)

	start, end = shiftWindow(date, ShiftEvening)
	is.Equal(start.Hour(), 12)
	is.Equal(end.Sub(start), 12*time.Hour)
}
