package replay

import (
	"log"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/phanikiran-1619/smv-replay/business/data/fleet"
	"github.com/phanikiran-1619/smv-replay/foundation/metrics"
)

// LiveUpdate is one candidate live position event for a device
type LiveUpdate struct {
	DeviceId  string
	SchoolId  string
	RouteId   string
	Latitude  float64
	Longitude float64
	Heading   *float64
	Timestamp time.Time
}

//livePosition holds the latest confirmed coordinate for one device plus the
//animation easing the marker towards it.
//invariant: confirmed.Timestamp only ever advances
type livePosition struct {
	confirmed LiveUpdate
	animation *liveAnimation
}

//liveFeedReconciler gates live updates per device so only monotonically
//advancing events reach the interpolator. This is the sole defense against
//out-of-order or duplicate network delivery corrupting the displayed trajectory.
type liveFeedReconciler struct {
	log     *log.Logger
	metrics *metrics.Collector

	mu      sync.Mutex
	devices map[string]*livePosition
}

func makeLiveFeedReconciler(log *log.Logger, collector *metrics.Collector) *liveFeedReconciler {
	return &liveFeedReconciler{
		log:     log,
		metrics: collector,
		devices: make(map[string]*livePosition),
	}
}

//apply accepts or discards one live update. An event whose timestamp is at or
//before the device's stored timestamp is discarded, logged and counted, never
//treated as an error. Accepted events replace the in-flight animation with one
//starting from the currently interpolated position.
//returns true when the update was accepted.
func (r *liveFeedReconciler) apply(update LiveUpdate, now time.Time) bool {
	if !finiteUpdate(&update) {
		r.log.Printf("discarding live update with invalid coordinates for device %s", update.DeviceId)
		r.countDiscarded()
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing := r.devices[update.DeviceId]
	if existing != nil && !update.Timestamp.After(existing.confirmed.Timestamp) {
		r.log.Printf("discarding stale live update for device %s, timestamp %s at or before %s",
			update.DeviceId, update.Timestamp.Format(time.RFC3339),
			existing.confirmed.Timestamp.Format(time.RFC3339))
		r.countDiscarded()
		return false
	}

	var animation *liveAnimation
	if existing == nil {
		//first sighting, the marker appears at the reported position
		initial := MarkerPosition{
			Latitude:  update.Latitude,
			Longitude: update.Longitude,
			Heading:   headingOrZero(update.Heading),
			Timestamp: now,
		}
		animation = makeLiveAnimation(initial, update.Latitude, update.Longitude, now)
	} else {
		animation = existing.animation.retarget(update.Latitude, update.Longitude, now)
		if update.Heading != nil {
			animation.heading = *update.Heading
		}
	}

	r.devices[update.DeviceId] = &livePosition{
		confirmed: update,
		animation: animation,
	}
	if r.metrics != nil {
		r.metrics.LiveFramesAccepted.Inc()
	}
	return true
}

//markerAt returns the interpolated marker for deviceId at now.
//returns false when the device has never been seen.
func (r *liveFeedReconciler) markerAt(deviceId string, now time.Time) (MarkerPosition, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	position, present := r.devices[deviceId]
	if !present {
		return MarkerPosition{}, false
	}
	marker, _ := position.animation.positionAt(now)
	return marker, true
}

//confirmedAt returns the last accepted update for deviceId
func (r *liveFeedReconciler) confirmedAt(deviceId string) (LiveUpdate, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	position, present := r.devices[deviceId]
	if !present {
		return LiveUpdate{}, false
	}
	return position.confirmed, true
}

func (r *liveFeedReconciler) countDiscarded() {
	if r.metrics != nil {
		r.metrics.LiveFramesDiscarded.Inc()
	}
}

func finiteUpdate(update *LiveUpdate) bool {
	sample := fleet.GPSSample{Latitude: update.Latitude, Longitude: update.Longitude}
	return sample.HasValidCoordinates()
}

func headingOrZero(heading *float64) float64 {
	if heading == nil {
		return 0
	}
	return *heading
}

//liveEngine routes accepted live updates to their downstream consumers: the
//per device interpolators, the position archive, and the marker publisher.
//The archive and publisher are optional, a nil db or publisher disables them.
//Live feed failures never touch historical playback state.
type liveEngine struct {
	log        *log.Logger
	reconciler *liveFeedReconciler
	publisher  *markerPublisher
	db         *sqlx.DB
}

func makeLiveEngine(log *log.Logger,
	reconciler *liveFeedReconciler,
	publisher *markerPublisher,
	db *sqlx.DB) *liveEngine {
	return &liveEngine{
		log:        log,
		reconciler: reconciler,
		publisher:  publisher,
		db:         db,
	}
}

//handleUpdate runs one live update through the reconciler and, when accepted,
//records and publishes it
func (e *liveEngine) handleUpdate(update LiveUpdate, now time.Time) {
	if !e.reconciler.apply(update, now) {
		return
	}
	if e.db != nil {
		position := fleet.DevicePosition{
			DeviceId:  update.DeviceId,
			RouteId:   update.RouteId,
			SchoolId:  update.SchoolId,
			Latitude:  update.Latitude,
			Longitude: update.Longitude,
			Heading:   update.Heading,
			EventTime: update.Timestamp,
		}
		err := fleet.RecordDevicePosition(&position, e.db)
		if err != nil {
			e.log.Printf("error archiving device position for %s, error: %v", update.DeviceId, err)
		}
	}
	if e.publisher != nil {
		marker, present := e.reconciler.markerAt(update.DeviceId, now)
		if present {
			e.publisher.publish(update, marker)
		}
	}
}
