package replay

import (
	"math"
	"testing"
	"time"

	"github.com/matryer/is"
)

func Test_easeInOutCubic(t *testing.T) {
	type args struct {
		t float64
	}
	tests := []struct {
		name      string
		args      args
		want      float64
		tolerance float64
	}{
		{name: "start", args: args{0}, want: 0, tolerance: 0.000001},
		{name: "quarter", args: args{0.25}, want: 0.0625, tolerance: 0.000001},
		{name: "midpoint", args: args{0.5}, want: 0.5, tolerance: 0.000001},
		{name: "three quarters", args: args{0.75}, want: 0.9375, tolerance: 0.000001},
		{name: "end", args: args{1}, want: 1, tolerance: 0.000001},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := easeInOutCubic(tt.args.t); math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("easeInOutCubic(%v) = %v, want %v", tt.args.t, got, tt.want)
			}
		})
	}
}

func Test_liveAnimation_positionAt(t *testing.T) {
	is := is.New(t)
	start := testDate("2024-02-12T08:00:00Z", t)
	from := MarkerPosition{Latitude: 10, Longitude: 20, Heading: 45, Timestamp: start}
	animation := makeLiveAnimation(from, 11, 21, start)

	//before the window opens the marker sits at the start
	marker, done := animation.positionAt(start)
	is.True(!done)
	is.Equal(marker.Latitude, 10.0)
	is.Equal(marker.Longitude, 20.0)

	//the symmetric ease puts the marker exactly half way at the midpoint
	marker, done = animation.positionAt(start.Add(liveAnimationDuration / 2))
	is.True(!done)
	is.True(math.Abs(marker.Latitude-10.5) < 0.000001)
	is.True(math.Abs(marker.Longitude-20.5) < 0.000001)

	//past the window the marker rests on the target
	marker, done = animation.positionAt(start.Add(3 * time.Second))
	is.True(done)
	is.Equal(marker.Latitude, 11.0)
	is.Equal(marker.Longitude, 21.0)
}

//a new update arriving mid animation must restart from the current
//interpolated position, not the original start, so the marker never snaps
func Test_liveAnimation_retarget(t *testing.T) {
	is := is.New(t)
	start := testDate("2024-02-12T08:00:00Z", t)
	from := MarkerPosition{Latitude: 10, Longitude: 20, Timestamp: start}
	animation := makeLiveAnimation(from, 11, 21, start)

	halfway := start.Add(liveAnimationDuration / 2)
	current, _ := animation.positionAt(halfway)

	replacement := animation.retarget(12, 22, halfway)
	is.Equal(replacement.startLat, current.Latitude)
	is.Equal(replacement.startLon, current.Longitude)
	is.Equal(replacement.targetLat, 12.0)
	is.Equal(replacement.targetLon, 22.0)

	//the replacement begins exactly where the cancelled animation was
	marker, _ := replacement.positionAt(halfway)
	is.Equal(marker.Latitude, current.Latitude)
	is.Equal(marker.Longitude, current.Longitude)
}

//equal endpoints leave the heading untouched, the bearing is undefined there
func Test_liveAnimation_headingRetained(t *testing.T) {
	is := is.New(t)
	start := testDate("2024-02-12T08:00:00Z", t)
	from := MarkerPosition{Latitude: 10, Longitude: 20, Heading: 123, Timestamp: start}

	stationary := makeLiveAnimation(from, 10, 20, start)
	is.Equal(stationary.heading, 123.0)

	moving := makeLiveAnimation(from, 11, 20, start)
	is.True(math.Abs(moving.heading-0) < 0.01) //due north
}

func Test_historicalMarker_headings(t *testing.T) {
	is := is.New(t)
	samples := getTestSamples(t)
	clock := makePlaybackClock(samples, time.Time{})

	//first sample has no predecessor, the previous heading is kept
	marker, present := historicalMarker(clock, 0, 77)
	is.True(present)
	is.Equal(marker.Heading, 77.0)

	//later samples derive their heading from the preceding fix
	marker, present = historicalMarker(clock, 50, 77)
	is.True(present)
	is.True(marker.Heading != 77.0)

	//a reported device heading wins over the derived one
	reported := 222.0
	samples[2].Heading = &reported
	clock = makePlaybackClock(samples, time.Time{})
	marker, present = historicalMarker(clock, 100, 0)
	is.True(present)
	is.Equal(marker.Heading, 222.0)
}
