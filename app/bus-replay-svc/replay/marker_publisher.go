package replay

import (
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/phanikiran-1619/smv-replay/foundation/metrics"
)

//markerUpdateSubjectPrefix is the NATS subject family the rendering
//collaborator subscribes to, one token per device
const markerUpdateSubjectPrefix = "bus-marker"

//markerPublisher sends accepted live marker updates to the rendering
//collaborator over NATS
type markerPublisher struct {
	log            *log.Logger
	natsConnection *nats.Conn
	metrics        *metrics.Collector
}

func makeMarkerPublisher(log *log.Logger, natsConnection *nats.Conn, collector *metrics.Collector) *markerPublisher {
	return &markerPublisher{
		log:            log,
		natsConnection: natsConnection,
		metrics:        collector,
	}
}

// MarkerUpdate is the payload published for each accepted live position
type MarkerUpdate struct {
	DeviceId  string         `json:"deviceId"`
	RouteId   string         `json:"routeId"`
	SchoolId  string         `json:"schoolId"`
	Marker    MarkerPosition `json:"marker"`
	Timestamp time.Time      `json:"timestamp"`
}

//publish sends one MarkerUpdate for update on the device's subject
func (p *markerPublisher) publish(update LiveUpdate, marker MarkerPosition) {
	payload := MarkerUpdate{
		DeviceId:  update.DeviceId,
		RouteId:   update.RouteId,
		SchoolId:  update.SchoolId,
		Marker:    marker,
		Timestamp: update.Timestamp,
	}
	jsonData, err := json.Marshal(&payload)
	if err != nil {
		p.log.Printf("failed to marshal MarkerUpdate in markerPublisher.publish, error:%v", err)
		return
	}
	subject := markerUpdateSubjectPrefix + "." + subjectToken(update.DeviceId)
	err = p.natsConnection.Publish(subject, jsonData)
	if p.metrics != nil {
		if err != nil {
			p.metrics.MarkerPublishErrs.Inc()
		} else {
			p.metrics.MarkerPublished.Inc()
		}
	}
	if err != nil {
		p.log.Printf("failed to publish MarkerUpdate on subject %s, error:%v", subject, err)
	}
}

//subjectToken sanitizes an identifier for use as one NATS subject token
func subjectToken(s string) string {
	s = strings.TrimSpace(s)
	repl := strings.NewReplacer(" ", "_", ".", "_", ">", "_", "*", "_", "/", "_")
	s = repl.Replace(s)
	if s == "" {
		s = "_"
	}
	return s
}
