package replay

import (
	"math"
	"time"

	"github.com/phanikiran-1619/smv-replay/business/data/fleet"
)

const (
	displayTimeFormat = "03:04:05 PM"
	displayDateFormat = "2006-01-02"
)

// PlaybackState reflects the replay controls of one session
type PlaybackState struct {
	//Progress is the playback position in [0,100] across the full sample set
	Progress  float64 `json:"progress"`
	Completed bool    `json:"completed"`
	Playing   bool    `json:"playing"`
}

//playbackClock maps the progress scalar onto the chronologically sorted gps
//sample set of one journey. Progress always walks the samples in time order,
//the shift never reorders them. The clock is the single code path shared by
//user scrubbing and the auto-play driver, progress is never derived from the
//wall clock directly.
type playbackClock struct {
	//samples ordered by EventTime ascending, read-only after construction
	samples []fleet.GPSSample
	//selectedDate backs the display date when the journey has no samples
	selectedDate time.Time
}

func makePlaybackClock(samples []fleet.GPSSample, selectedDate time.Time) *playbackClock {
	return &playbackClock{
		samples:      fleet.SortSamplesByEventTime(samples),
		selectedDate: selectedDate,
	}
}

//sampleIndex converts progress to an index into the sample set,
//min(floor(progress/100 * G), G-1). Returns -1 when there are no samples.
func (p *playbackClock) sampleIndex(progress float64) int {
	sampleCount := len(p.samples)
	if sampleCount == 0 {
		return -1
	}
	index := int(math.Floor(progress / 100.0 * float64(sampleCount)))
	if index > sampleCount-1 {
		index = sampleCount - 1
	}
	if index < 0 {
		index = 0
	}
	return index
}

//currentSample returns the sample progress points at, or nil when the journey has no samples
func (p *playbackClock) currentSample(progress float64) *fleet.GPSSample {
	index := p.sampleIndex(progress)
	if index < 0 {
		return nil
	}
	sample := p.samples[index]
	return &sample
}

//elapsedMinutes returns rounded minutes between the first sample and the sample at progress
func (p *playbackClock) elapsedMinutes(progress float64) int {
	current := p.currentSample(progress)
	if current == nil {
		return 0
	}
	return roundedMinutes(current.EventTime.Sub(p.samples[0].EventTime))
}

//displayTime formats the event time at progress, falling back to the current
//time when the journey has no samples
func (p *playbackClock) displayTime(progress float64, now time.Time) string {
	current := p.currentSample(progress)
	if current == nil {
		return now.Format(displayTimeFormat)
	}
	return current.EventTime.Format(displayTimeFormat)
}

//displayDate formats the event date at progress, falling back to the selected
//journey date when the journey has no samples
func (p *playbackClock) displayDate(progress float64, now time.Time) string {
	current := p.currentSample(progress)
	if current != nil {
		return current.EventTime.Format(displayDateFormat)
	}
	if !p.selectedDate.IsZero() {
		return p.selectedDate.Format(displayDateFormat)
	}
	return now.Format(displayDateFormat)
}

//completed reports whether progress has reached the end of the playback range
func completed(progress float64) bool {
	return progress >= 100
}

//clampProgress keeps progress inside the [0,100] playback range
func clampProgress(progress float64) float64 {
	if progress < 0 {
		return 0
	}
	if progress > 100 {
		return 100
	}
	return progress
}
