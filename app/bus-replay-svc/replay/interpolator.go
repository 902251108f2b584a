package replay

import (
	"time"
)

//liveAnimationDuration is the fixed easing window for a live marker move
const liveAnimationDuration = 2000 * time.Millisecond

// MarkerPosition is the rendered bus marker coordinate and heading emitted to
// the map collaborator.
type MarkerPosition struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Heading   float64   `json:"heading"`
	Timestamp time.Time `json:"timestamp"`
}

//easeInOutCubic is the symmetric cubic easing used for live marker movement,
//4t^3 below the midpoint and its mirror above
func easeInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	f := -2*t + 2
	return 1 - f*f*f/2
}

//liveAnimation eases a marker from a start coordinate towards a target over a
//fixed window. It is a pure state machine, positionAt never mutates it, so the
//frame driver can consult it as often as it likes.
type liveAnimation struct {
	startLat  float64
	startLon  float64
	targetLat float64
	targetLon float64
	heading   float64
	startTime time.Time
	duration  time.Duration
}

//makeLiveAnimation begins an animation from a known marker position towards a
//target coordinate. The heading is recomputed only when the endpoints differ,
//otherwise the previous heading is retained.
func makeLiveAnimation(from MarkerPosition, targetLat, targetLon float64, now time.Time) *liveAnimation {
	heading := from.Heading
	if targetLat != from.Latitude || targetLon != from.Longitude {
		heading = headingDegrees(from.Latitude, from.Longitude, targetLat, targetLon)
	}
	return &liveAnimation{
		startLat:  from.Latitude,
		startLon:  from.Longitude,
		targetLat: targetLat,
		targetLon: targetLon,
		heading:   heading,
		startTime: now,
		duration:  liveAnimationDuration,
	}
}

//positionAt returns the interpolated marker position at now and whether the
//animation window has elapsed. Latitude and longitude are eased independently.
func (a *liveAnimation) positionAt(now time.Time) (MarkerPosition, bool) {
	t := float64(now.Sub(a.startTime)) / float64(a.duration)
	if t < 0 {
		t = 0
	}
	done := t >= 1
	if done {
		t = 1
	}
	eased := easeInOutCubic(t)
	return MarkerPosition{
		Latitude:  a.startLat + (a.targetLat-a.startLat)*eased,
		Longitude: a.startLon + (a.targetLon-a.startLon)*eased,
		Heading:   a.heading,
		Timestamp: now,
	}, done
}

//retarget cancels this animation and starts a new one towards a fresh
//confirmed position. The new animation begins at the currently interpolated
//position, not the original start, so the marker never snaps mid flight.
func (a *liveAnimation) retarget(targetLat, targetLon float64, now time.Time) *liveAnimation {
	current, _ := a.positionAt(now)
	return makeLiveAnimation(current, targetLat, targetLon, now)
}

//historicalMarker snaps the marker to the sample the playback clock selects
//for progress. No inter-sample smoothing happens here, the auto-play step is
//fine grained enough. The heading comes from the fix when the device reported
//one, otherwise it is derived from the preceding fix, and previousHeading is
//kept when the two fixes share a coordinate.
//returns false when the journey has no samples.
func historicalMarker(clock *playbackClock, progress float64, previousHeading float64) (MarkerPosition, bool) {
	current := clock.currentSample(progress)
	if current == nil {
		return MarkerPosition{}, false
	}
	heading := previousHeading
	if current.Heading != nil {
		heading = *current.Heading
	} else if index := clock.sampleIndex(progress); index > 0 {
		previous := clock.samples[index-1]
		if previous.Latitude != current.Latitude || previous.Longitude != current.Longitude {
			heading = headingDegrees(previous.Latitude, previous.Longitude,
				current.Latitude, current.Longitude)
		}
	}
	return MarkerPosition{
		Latitude:  current.Latitude,
		Longitude: current.Longitude,
		Heading:   heading,
		Timestamp: current.EventTime,
	}, true
}
