// Package replay implements the gps trajectory correlation and replay engine
// for school bus journeys: it matches recorded gps fixes against the ordered
// stops of a route, drives scrubbing and auto-play over the resulting
// timeline, and smooths sparse live position updates into a continuously
// moving marker.
package replay

import (
	logger "log"
	"os"
	"sync"

	"github.com/jmoiron/sqlx"
	"github.com/nats-io/nats.go"
	"github.com/phanikiran-1619/smv-replay/foundation/httpclient"
	"github.com/phanikiran-1619/smv-replay/foundation/metrics"
)

// Config carries the service wiring for StartServices
type Config struct {
	HttpPort    int
	LiveFeedUrl string
	//RecordToDatabase archives accepted live fixes when a database is available
	RecordToDatabase bool
	//PublishOverNats forwards accepted live markers to the rendering collaborator
	PublishOverNats bool
}

// StartServices brings up the live feed listener and the web service, and
// returns after both shut down on shutdownSignal. The historical replay and
// live tracking subsystems share only the session-independent reconciler, so
// either keeps working when the other's transport fails.
func StartServices(log *logger.Logger,
	cfg Config,
	db *sqlx.DB,
	natsConnection *nats.Conn,
	trackerClient *httpclient.Client,
	collector *metrics.Collector,
	shutdownSignal chan os.Signal) {

	wg := sync.WaitGroup{}

	api := makeTrackerApi(log, trackerClient)
	manager := makeSessionManager(log, api, db, collector)
	reconciler := makeLiveFeedReconciler(log, collector)

	var publisher *markerPublisher
	if cfg.PublishOverNats && natsConnection != nil {
		publisher = makeMarkerPublisher(log, natsConnection, collector)
	}
	var archiveDb *sqlx.DB
	if cfg.RecordToDatabase {
		archiveDb = db
	}
	engine := makeLiveEngine(log, reconciler, publisher, archiveDb)

	liveListenerShutdown := make(chan bool, 1)
	webServiceShutdown := make(chan bool, 1)

	go runLiveListener(log, &wg, cfg.LiveFeedUrl, engine, collector, liveListenerShutdown)
	go runWebService(log, &wg, manager, reconciler, collector, cfg.HttpPort, webServiceShutdown)

	<-shutdownSignal
	log.Printf("Exiting on shutdown signal, shutting down subroutines")
	liveListenerShutdown <- true
	webServiceShutdown <- true
	wg.Wait()
	log.Printf("Subroutines shut down, exiting replay service")
}
