package fleet

import (
	"math"
	"reflect"
	"testing"
	"time"
)

func Test_SortSamplesByEventTime(t *testing.T) {
	base := time.Date(2024, 2, 12, 8, 0, 0, 0, time.UTC)
	samples := []GPSSample{
		{DeviceId: "d", EventTime: base.Add(20 * time.Minute)},
		{DeviceId: "d", EventTime: base},
		{DeviceId: "d", EventTime: base.Add(10 * time.Minute)},
	}
	original := make([]GPSSample, len(samples))
	copy(original, samples)

	sorted := SortSamplesByEventTime(samples)

	for i := 1; i < len(sorted); i++ {
		if sorted[i].EventTime.Before(sorted[i-1].EventTime) {
			t.Errorf("samples not sorted ascending at index %d", i)
		}
	}
	if !reflect.DeepEqual(samples, original) {
		t.Errorf("SortSamplesByEventTime mutated its input")
	}
}

func Test_SortStopsBySeqOrder(t *testing.T) {
	stops := []RouteStop{
		{Id: "c", SeqOrder: 3},
		{Id: "a", SeqOrder: 1},
		{Id: "b", SeqOrder: 2},
	}
	original := make([]RouteStop, len(stops))
	copy(original, stops)

	sorted := SortStopsBySeqOrder(stops)

	wantIds := []string{"a", "b", "c"}
	for i, stop := range sorted {
		if stop.Id != wantIds[i] {
			t.Errorf("sorted[%d].Id = %s, want %s", i, stop.Id, wantIds[i])
		}
	}
	if !reflect.DeepEqual(stops, original) {
		t.Errorf("SortStopsBySeqOrder mutated its input")
	}
}

func Test_HasValidCoordinates(t *testing.T) {
	type args struct {
		lat float64
		lon float64
	}
	tests := []struct {
		name string
		args args
		want bool
	}{
		{name: "normal coordinate", args: args{12.9716, 77.5946}, want: true},
		{name: "zero zero is finite", args: args{0, 0}, want: true},
		{name: "NaN latitude", args: args{math.NaN(), 77.5946}, want: false},
		{name: "NaN longitude", args: args{12.9716, math.NaN()}, want: false},
		{name: "infinite latitude", args: args{math.Inf(1), 77.5946}, want: false},
		{name: "negative infinite longitude", args: args{12.9716, math.Inf(-1)}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sample := GPSSample{Latitude: tt.args.lat, Longitude: tt.args.lon}
			if got := sample.HasValidCoordinates(); got != tt.want {
				t.Errorf("GPSSample.HasValidCoordinates() = %v, want %v", got, tt.want)
			}
			stop := RouteStop{Latitude: tt.args.lat, Longitude: tt.args.lon}
			if got := stop.HasValidCoordinates(); got != tt.want {
				t.Errorf("RouteStop.HasValidCoordinates() = %v, want %v", got, tt.want)
			}
		})
	}
}
