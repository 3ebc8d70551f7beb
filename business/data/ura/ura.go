// Package ura contains domain types and reconciliation logic for bus arrival
// predictions served by URA (Unified Realtime API) instant endpoints.
package ura

import "time"

// Attribution credits the agency providing the prediction feed.
const Attribution = "Data provided by ASEAG"

// Attribute keys used in SensorUpdate.Attributes
const (
	AttrStop        = "stop"
	AttrLine        = "line"
	AttrDestination = "destination"
	AttrAttribution = "attribution"
)

// Prediction is one forecasted bus arrival at a stop/direction pair.
// Predictions are correlated across polling cycles by TripId.
type Prediction struct {
	TripId          string    `json:"trip_id"`
	EstimatedTime   time.Time `json:"estimated_time"`
	ExpireTime      time.Time `json:"expire_time"`
	StopPointName   string    `json:"stoppoint_name"`
	LineName        string    `json:"line_name"`
	DestinationText string    `json:"destination_text"`
}

// Expired returns true when the prediction's arrival or validity deadline is
// strictly before "at".
func (p *Prediction) Expired(at time.Time) bool {
	return p.EstimatedTime.Before(at) || p.ExpireTime.Before(at)
}

// SensorUpdate holds the externally visible outcome of one sensor poll cycle.
// State is nil when no valid upcoming arrival is known.
type SensorUpdate struct {
	SensorId    string            `json:"sensor_id"`
	Name        string            `json:"name"`
	DeviceClass string            `json:"device_class"`
	Icon        string            `json:"icon"`
	State       *string           `json:"state"`
	Attributes  map[string]string `json:"attributes"`
	Timestamp   uint64            `json:"timestamp"`
}
