package replay

import (
	"testing"
	"time"

	"github.com/matryer/is"
)

func makeTestSession(t *testing.T) *replaySession {
	return makeReplaySession(testLogger(), "school-1:route-1:2024-02-12:morning",
		getTestStops(), getTestSamples(t), ShiftMorning,
		testDate("2024-02-12T00:00:00Z", t),
		MatchProportional, SchoolStopByName, true, false)
}

func Test_replaySession_initialState(t *testing.T) {
	is := is.New(t)
	session := makeTestSession(t)
	snapshot := session.snapshot(time.Now())

	is.Equal(snapshot.State, PlaybackState{})
	is.Equal(len(snapshot.CorrelatedStops), 3)
	is.Equal(snapshot.TotalJourneyMinutes, 20)
	is.True(snapshot.Marker != nil)
	is.Equal(snapshot.Marker.Latitude, getTestStops()[0].Latitude)
	is.True(snapshot.ServiceDay)
	is.True(!snapshot.Synthetic)
}

func Test_replaySession_seek(t *testing.T) {
	is := is.New(t)
	session := makeTestSession(t)

	session.seek(50)
	snapshot := session.snapshot(time.Now())
	is.Equal(snapshot.State.Progress, 50.0)
	is.True(!snapshot.State.Completed)
	is.Equal(snapshot.ElapsedMinutes, 10)

	//scrubbing straight to the end completes playback with a valid marker
	session.seek(100)
	snapshot = session.snapshot(time.Now())
	is.True(snapshot.State.Completed)
	is.True(!snapshot.State.Playing)
	is.True(snapshot.Marker != nil)
	is.Equal(snapshot.Marker.Latitude, getTestStops()[2].Latitude)

	//seek clamps to the playback range
	session.seek(250)
	is.Equal(session.snapshot(time.Now()).State.Progress, 100.0)
	session.seek(-10)
	is.Equal(session.snapshot(time.Now()).State.Progress, 0.0)
}

func Test_replaySession_advance(t *testing.T) {
	is := is.New(t)
	session := makeTestSession(t)
	session.play()
	defer session.close()

	//one driver step moves progress by the fixed increment
	snapshotBefore := session.snapshot(time.Now())
	session.advance(autoPlayStep)
	snapshotAfter := session.snapshot(time.Now())
	is.True(snapshotAfter.State.Progress >= snapshotBefore.State.Progress+autoPlayStep)

	//advancing past the end completes and stops playback
	session.seek(99.9)
	session.advance(autoPlayStep)
	snapshot := session.snapshot(time.Now())
	is.True(snapshot.State.Completed)
	is.True(!snapshot.State.Playing)
}

func Test_replaySession_playPauseReset(t *testing.T) {
	is := is.New(t)
	session := makeTestSession(t)
	defer session.close()

	session.play()
	is.True(session.snapshot(time.Now()).State.Playing)

	//starting again while playing is a no-op, not a second driver
	session.play()
	is.True(session.snapshot(time.Now()).State.Playing)

	session.pause()
	is.True(!session.snapshot(time.Now()).State.Playing)

	session.seek(40)
	session.reset()
	snapshot := session.snapshot(time.Now())
	is.Equal(snapshot.State, PlaybackState{})
}

func Test_sessionCollection_replace(t *testing.T) {
	is := is.New(t)
	collection := makeSessionCollection()

	first := makeTestSession(t)
	first.play()
	collection.put(first)

	//reselecting the same journey replaces the session and stops the old driver
	second := makeTestSession(t)
	collection.put(second)
	is.Equal(collection.size(), 1)
	is.True(!first.snapshot(time.Now()).State.Playing)
	is.Equal(collection.get(second.id), second)

	is.True(collection.remove(second.id))
	is.True(!collection.remove(second.id))
	is.Equal(collection.size(), 0)
}

func Test_schoolServiceCalendar(t *testing.T) {
	is := is.New(t)
	calendar := makeSchoolServiceCalendar()

	//a regular Wednesday
	is.True(calendar.isServiceDay(testDate("2024-02-14T10:00:00Z", t)))
	//a Saturday
	is.True(!calendar.isServiceDay(testDate("2024-02-17T10:00:00Z", t)))
	//Christmas Day on a weekday
	is.True(!calendar.isServiceDay(testDate("2024-12-25T10:00:00Z", t)))
}
