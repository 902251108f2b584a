package fleet

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/phanikiran-1619/smv-replay/foundation/database"
)

//DevicePosition is one archived GPS fix accepted from the live feed.
//primary key consists of device_id, event_time
type DevicePosition struct {
	DeviceId  string    `db:"device_id" json:"device_id"`
	RouteId   string    `db:"route_id" json:"route_id"`
	SchoolId  string    `db:"school_id" json:"school_id"`
	Latitude  float64   `db:"latitude" json:"latitude"`
	Longitude float64   `db:"longitude" json:"longitude"`
	Heading   *float64  `db:"heading" json:"heading,omitempty"`
	EventTime time.Time `db:"event_time" json:"event_time"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

//Sample converts the archived row to the GPSSample used by the replay engine
func (d *DevicePosition) Sample() GPSSample {
	return GPSSample{
		DeviceId:  d.DeviceId,
		Latitude:  d.Latitude,
		Longitude: d.Longitude,
		Heading:   d.Heading,
		EventTime: d.EventTime,
	}
}

// RecordDevicePosition saves one DevicePosition into the archive
func RecordDevicePosition(position *DevicePosition, db *sqlx.DB) error {
	position.CreatedAt = time.Now()

	statementString := "insert into device_position " +
		"(device_id, " +
		"route_id, " +
		"school_id, " +
		"latitude, " +
		"longitude, " +
		"heading, " +
		"event_time, " +
		"created_at) " +
		"values " +
		"(:device_id, " +
		":route_id, " +
		":school_id, " +
		":latitude, " +
		":longitude, " +
		":heading, " +
		":event_time, " +
		":created_at)"
	statementString = db.Rebind(statementString)
	_, err := db.NamedExec(statementString, position)
	return err
}

// GetDevicePositions returns archived samples on routeId between start and end,
// ordered by event_time. Used as the fallback journey source when the upstream
// device-locations endpoint is unavailable.
func GetDevicePositions(db *sqlx.DB,
	routeId string,
	start time.Time,
	end time.Time) ([]GPSSample, error) {
	statementString := "select * from device_position where route_id = :route_id " +
		"and event_time between :start and :end " +
		"order by event_time"
	rows, err := database.PrepareNamedQueryRowsFromMap(statementString, db, map[string]interface{}{
		"route_id": routeId,
		"start":    start,
		"end":      end,
	})

	defer func() {
		if rows != nil {
			_ = rows.Close()
		}
	}()

	if err != nil {
		return nil, fmt.Errorf("unable to retrieve device_position rows, error: %w", err)
	}

	var samples []GPSSample
	for rows.Next() {
		position := DevicePosition{}
		err = rows.StructScan(&position)
		if err != nil {
			return nil, fmt.Errorf("error loading device_position row, error: %w", err)
		}
		samples = append(samples, position.Sample())
	}
	return samples, nil
}
