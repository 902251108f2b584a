package replay

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/phanikiran-1619/smv-replay/business/data/fleet"
	"github.com/phanikiran-1619/smv-replay/foundation/metrics"
)

//sessionManager loads journeys from their data sources and owns the active
//replay sessions
type sessionManager struct {
	log        *log.Logger
	api        *trackerApi
	db         *sqlx.DB
	calendar   *schoolServiceCalendar
	metrics    *metrics.Collector
	collection *sessionCollection

	strategy       MatchStrategy
	schoolStrategy SchoolStopStrategy
}

func makeSessionManager(log *log.Logger,
	api *trackerApi,
	db *sqlx.DB,
	collector *metrics.Collector) *sessionManager {
	return &sessionManager{
		log:            log,
		api:            api,
		db:             db,
		calendar:       makeSchoolServiceCalendar(),
		metrics:        collector,
		collection:     makeSessionCollection(),
		strategy:       MatchProportional,
		schoolStrategy: SchoolStopByName,
	}
}

//open loads the journey selected by request, correlates it and stores a fresh
//session for it. Opening the same selection again discards the previous
//session, stopping its auto-play driver, before the new one is computed.
func (m *sessionManager) open(ctx context.Context, request SessionRequest) (SessionSnapshot, error) {
	shift, err := ParseShift(request.Period)
	if err != nil {
		return SessionSnapshot{}, err
	}
	date, err := time.Parse("2006-01-02", request.Date)
	if err != nil {
		return SessionSnapshot{}, fmt.Errorf("invalid journey date %q, expected YYYY-MM-DD", request.Date)
	}

	stops, err := m.api.getRouteStops(ctx, request.SchoolId, request.RouteId)
	if err != nil {
		return SessionSnapshot{}, err
	}

	samples, synthetic := m.loadJourneySamples(ctx, request, stops, date, shift)

	start := time.Now()
	session := makeReplaySession(m.log, request.key(), stops, samples, shift, date,
		m.strategy, m.schoolStrategy, m.calendar.isServiceDay(date), synthetic)
	if m.metrics != nil {
		m.metrics.CorrelationDuration.Observe(time.Since(start).Seconds())
	}

	m.collection.put(session)
	if m.metrics != nil {
		m.metrics.ActiveSessions.Set(float64(m.collection.size()))
	}
	m.log.Printf("opened replay session %s with %d stops and %d samples", session.id,
		len(stops), len(samples))
	return session.snapshot(time.Now()), nil
}

//loadJourneySamples retrieves the journey's gps samples from the upstream
//service. A transport failure falls back to the position archive, and when
//that also yields nothing a synthetic demonstration journey is generated.
//An empty upstream result with no error is served as is, that is the valid
//"no data yet" state.
//returns the samples and whether they are synthetic
func (m *sessionManager) loadJourneySamples(ctx context.Context,
	request SessionRequest,
	stops []fleet.RouteStop,
	date time.Time,
	shift Shift) ([]fleet.GPSSample, bool) {

	samples, err := m.api.getDeviceLocations(ctx, request.SchoolId, request.RouteId, request.Date, shift)
	if err == nil {
		return samples, false
	}
	m.log.Printf("device location fetch failed, trying position archive. error: %v", err)

	if m.db != nil {
		start, end := shiftWindow(date, shift)
		archived, archiveErr := fleet.GetDevicePositions(m.db, request.RouteId, start, end)
		if archiveErr != nil {
			m.log.Printf("position archive lookup failed for route %s, error: %v",
				request.RouteId, archiveErr)
		} else if len(archived) > 0 {
			return archived, false
		}
	}

	m.log.Printf("no recorded journey available for route %s on %s, generating synthetic demonstration data",
		request.RouteId, request.Date)
	return syntheticJourney(stops, shift, date), true
}

//get returns the session with id, or nil
func (m *sessionManager) get(id string) *replaySession {
	return m.collection.get(id)
}

//remove closes and removes the session with id
func (m *sessionManager) remove(id string) bool {
	removed := m.collection.remove(id)
	if removed && m.metrics != nil {
		m.metrics.ActiveSessions.Set(float64(m.collection.size()))
	}
	return removed
}
