package replay

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/phanikiran-1619/smv-replay/foundation/metrics"
)

//liveReconnectBackoff is the fixed wait between websocket reconnect attempts.
//No buffering or replay of missed frames happens across reconnects, live
//delivery is at most once.
const liveReconnectBackoff = 5000 * time.Millisecond

//gpsLocationFrame is the wire format of one live feed message.
//Timestamp is epoch milliseconds.
type gpsLocationFrame struct {
	Type      string   `json:"type"`
	DeviceId  string   `json:"deviceId"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Heading   *float64 `json:"heading,omitempty"`
	Timestamp int64    `json:"timestamp"`
	RouteId   string   `json:"routeId"`
	SchoolId  string   `json:"schoolId"`
}

//runLiveListener maintains the websocket subscription to the live gps feed,
//routing every gps_location frame through the live engine. Dial failures and
//dropped connections are retried with a fixed backoff until shutdownSignal.
func runLiveListener(log *log.Logger,
	wg *sync.WaitGroup,
	feedUrl string,
	engine *liveEngine,
	collector *metrics.Collector,
	shutdownSignal chan bool) {
	wg.Add(1)
	defer wg.Done()

	for {
		conn, _, err := websocket.DefaultDialer.Dial(feedUrl, nil)
		if err != nil {
			log.Printf("unable to connect to live feed at %s, error: %v", feedUrl, err)
			if collector != nil {
				collector.LiveReconnects.Inc()
			}
			if waitForBackoffOrShutdown(shutdownSignal) {
				log.Printf("ending live listener on shutdown signal")
				return
			}
			continue
		}
		log.Printf("subscribed to live feed at %s", feedUrl)

		if !consumeLiveFrames(log, conn, engine, shutdownSignal) {
			return
		}
		if collector != nil {
			collector.LiveReconnects.Inc()
		}
		if waitForBackoffOrShutdown(shutdownSignal) {
			log.Printf("ending live listener on shutdown signal")
			return
		}
	}
}

//consumeLiveFrames reads frames from conn until the connection fails or
//shutdown is signaled. Returns true when the caller should reconnect, false on
//shutdown.
func consumeLiveFrames(log *log.Logger,
	conn *websocket.Conn,
	engine *liveEngine,
	shutdownSignal chan bool) bool {

	frames := make(chan []byte, 64)
	readErr := make(chan error, 1)
	go func() {
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				readErr <- err
				return
			}
			frames <- data
		}
	}()

	for {
		select {
		case <-shutdownSignal:
			log.Printf("ending live listener on shutdown signal")
			_ = conn.Close()
			return false
		case err := <-readErr:
			log.Printf("live feed connection lost, error: %v", err)
			_ = conn.Close()
			return true
		case data := <-frames:
			handleLiveFrame(log, data, engine)
		}
	}
}

//handleLiveFrame un-marshals one frame and hands gps_location events to the
//engine. Frames of any other type are ignored.
func handleLiveFrame(log *log.Logger, data []byte, engine *liveEngine) {
	var frame gpsLocationFrame
	err := json.Unmarshal(data, &frame)
	if err != nil {
		log.Printf("error parsing live feed frame: %v, payload:%s", err, string(data))
		return
	}
	if frame.Type != "gps_location" {
		return
	}
	engine.handleUpdate(LiveUpdate{
		DeviceId:  frame.DeviceId,
		SchoolId:  frame.SchoolId,
		RouteId:   frame.RouteId,
		Latitude:  frame.Latitude,
		Longitude: frame.Longitude,
		Heading:   frame.Heading,
		Timestamp: time.UnixMilli(frame.Timestamp),
	}, time.Now())
}

//waitForBackoffOrShutdown sleeps for the reconnect backoff, returning true if
//shutdown was signaled while waiting
func waitForBackoffOrShutdown(shutdownSignal chan bool) bool {
	select {
	case <-shutdownSignal:
		return true
	case <-time.After(liveReconnectBackoff):
		return false
	}
}
