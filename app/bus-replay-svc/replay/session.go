package replay

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/phanikiran-1619/smv-replay/business/data/fleet"
)

const (
	//autoPlayTickInterval is the cadence of the auto-play driver
	autoPlayTickInterval = 100 * time.Millisecond
	//autoPlayStep is the progress added on each auto-play tick
	autoPlayStep = 0.5
)

// SessionRequest selects one journey to replay
type SessionRequest struct {
	SchoolId string `json:"schoolId"`
	RouteId  string `json:"routeId"`
	//Date is the journey date, YYYY-MM-DD
	Date string `json:"date"`
	//Period is morning or evening
	Period string `json:"period"`
}

//key identifies the journey selection. One session exists per selection,
//reselecting replaces it, stale sessions for the same journey never overlap.
func (r *SessionRequest) key() string {
	return strings.Join([]string{r.SchoolId, r.RouteId, r.Date, r.Period}, ":")
}

// SessionSnapshot is everything the rendering collaborator needs to draw one
// replay: the marker, the stop markers and labels, and the playback controls.
type SessionSnapshot struct {
	Id                  string           `json:"id"`
	State               PlaybackState    `json:"state"`
	Marker              *MarkerPosition  `json:"marker,omitempty"`
	CorrelatedStops     []CorrelatedStop `json:"correlatedStops"`
	ElapsedMinutes      int              `json:"elapsedMinutes"`
	TotalJourneyMinutes int              `json:"totalJourneyMinutes"`
	DisplayTime         string           `json:"displayTime"`
	DisplayDate         string           `json:"displayDate"`
	//ServiceDay is false when the selected date is a weekend or school holiday,
	//so an empty journey is expected rather than anomalous
	ServiceDay bool `json:"serviceDay"`
	//Synthetic is true when the journey was generated for demonstration
	//because no real data source was reachable
	Synthetic bool `json:"synthetic"`
}

//replaySession owns the correlated stops, the playback state and the auto-play
//driver of one journey replay. The sample set is read-only after construction
//and may be consulted by the clock, the correlator and renderers without
//further coordination.
type replaySession struct {
	id         string
	shift      Shift
	serviceDay bool
	synthetic  bool

	clock        *playbackClock
	correlated   []CorrelatedStop
	totalMinutes int

	log *log.Logger

	mu          sync.Mutex
	state       PlaybackState
	lastHeading float64
	//autoPlayCancel is the cancellation token of the active auto-play driver.
	//It is cancel-and-replaced on every start, concurrent drivers never stack.
	autoPlayCancel context.CancelFunc
}

//makeReplaySession correlates the journey and builds a session with playback
//reset to the beginning
func makeReplaySession(log *log.Logger,
	id string,
	stops []fleet.RouteStop,
	samples []fleet.GPSSample,
	shift Shift,
	selectedDate time.Time,
	strategy MatchStrategy,
	schoolStrategy SchoolStopStrategy,
	serviceDay bool,
	synthetic bool) *replaySession {

	return &replaySession{
		id:           id,
		shift:        shift,
		serviceDay:   serviceDay,
		synthetic:    synthetic,
		clock:        makePlaybackClock(samples, selectedDate),
		correlated:   correlate(stops, samples, shift, strategy, schoolStrategy),
		totalMinutes: totalJourneyMinutes(samples),
		log:          log,
		state:        PlaybackState{},
	}
}

//seek scrubs playback directly to progress. Jumping the full range in one call
//is valid, no intermediate ticks are required.
func (s *replaySession) seek(progress float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Progress = clampProgress(progress)
	s.state.Completed = completed(s.state.Progress)
	if s.state.Completed {
		s.stopAutoPlayLocked()
	}
}

//play starts the auto-play driver. Starting is idempotent, an already playing
//session is left alone, and any previous driver is cancelled before a new one
//begins so only one is ever active.
func (s *replaySession) play() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Playing {
		return
	}
	if s.state.Completed {
		//replay from the start once the previous run finished
		s.state.Progress = 0
		s.state.Completed = false
	}
	s.stopAutoPlayLocked()
	ctx, cancel := context.WithCancel(context.Background())
	s.autoPlayCancel = cancel
	s.state.Playing = true
	go s.runAutoPlay(ctx)
}

//pause stops the auto-play driver, leaving progress where it is
func (s *replaySession) pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopAutoPlayLocked()
}

//reset stops playback and returns the session to {0, false, false}
func (s *replaySession) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopAutoPlayLocked()
	s.state = PlaybackState{}
}

//close releases the session, cancelling any running driver
func (s *replaySession) close() {
	s.pause()
}

//stopAutoPlayLocked cancels the active driver token. Callers hold s.mu.
func (s *replaySession) stopAutoPlayLocked() {
	if s.autoPlayCancel != nil {
		s.autoPlayCancel()
		s.autoPlayCancel = nil
	}
	s.state.Playing = false
}

//runAutoPlay advances progress by a fixed step on a fixed cadence until the
//end of the range or cancellation
func (s *replaySession) runAutoPlay(ctx context.Context) {
	ticker := time.NewTicker(autoPlayTickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.advance(autoPlayStep) {
				return
			}
		}
	}
}

//advance moves progress forward one step, returning true when playback completed
func (s *replaySession) advance(step float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.Playing {
		return true
	}
	s.state.Progress = clampProgress(s.state.Progress + step)
	if completed(s.state.Progress) {
		s.state.Completed = true
		s.stopAutoPlayLocked()
		return true
	}
	return false
}

//snapshot captures the session outputs for the rendering collaborator at now
func (s *replaySession) snapshot(now time.Time) SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := SessionSnapshot{
		Id:                  s.id,
		State:               s.state,
		CorrelatedStops:     s.correlated,
		ElapsedMinutes:      s.clock.elapsedMinutes(s.state.Progress),
		TotalJourneyMinutes: s.totalMinutes,
		DisplayTime:         s.clock.displayTime(s.state.Progress, now),
		DisplayDate:         s.clock.displayDate(s.state.Progress, now),
		ServiceDay:          s.serviceDay,
		Synthetic:           s.synthetic,
	}
	marker, present := historicalMarker(s.clock, s.state.Progress, s.lastHeading)
	if present {
		s.lastHeading = marker.Heading
		snapshot.Marker = &marker
	}
	return snapshot
}

//sessionCollection contains the active replay sessions and provides thread
//safe access to them
type sessionCollection struct {
	mu       sync.Mutex
	sessions map[string]*replaySession
}

func makeSessionCollection() *sessionCollection {
	return &sessionCollection{
		sessions: make(map[string]*replaySession),
	}
}

//put stores session, closing and replacing any previous session with the same
//id so stale timers never reference a discarded dataset
func (c *sessionCollection) put(session *replaySession) {
	c.mu.Lock()
	previous := c.sessions[session.id]
	c.sessions[session.id] = session
	c.mu.Unlock()
	if previous != nil {
		previous.close()
	}
}

//get returns the session with id, or nil
func (c *sessionCollection) get(id string) *replaySession {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessions[id]
}

//remove closes and deletes the session with id, returning true when it existed
func (c *sessionCollection) remove(id string) bool {
	c.mu.Lock()
	session := c.sessions[id]
	delete(c.sessions, id)
	c.mu.Unlock()
	if session == nil {
		return false
	}
	session.close()
	return true
}

//size returns the number of active sessions
func (c *sessionCollection) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sessions)
}
