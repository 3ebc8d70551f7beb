// Package monitor polls a URA prediction feed for a single stop and
// direction and maintains the next-bus sensor state derived from it
package monitor

import (
	"fmt"
	"log"
	"time"

	"github.com/ura-tools/nextbus/business/data/ura"
)

const (
	// deviceClassTimestamp marks the sensor value as a point in time for the
	// consuming host
	deviceClassTimestamp = "timestamp"

	sensorIcon = "mdi:bus"
)

// PredictionSource provides the raw line-delimited JSON prediction payload
// for a stop and direction. Implemented by urahttp.Client.
type PredictionSource interface {
	GetPredictions(stopId string, directionId string) (string, error)
}

// NextBusSensor tracks the soonest valid upcoming bus arrival for one stop
// and direction pair. It owns the predictions retained between poll cycles;
// Update is expected to be called from a single goroutine at a fixed cadence.
type NextBusSensor struct {
	log         *log.Logger
	source      PredictionSource
	name        string
	stopId      string
	directionId string
	predictions []ura.Prediction
	state       *string
	attributes  map[string]string
}

// MakeNextBusSensor builds a NextBusSensor polling source for predictions
func MakeNextBusSensor(log *log.Logger,
	source PredictionSource,
	name string,
	stopId string,
	directionId string) *NextBusSensor {
	return &NextBusSensor{
		log:         log,
		source:      source,
		name:        name,
		stopId:      stopId,
		directionId: directionId,
		attributes:  map[string]string{},
	}
}

// Id identifies the sensor to downstream consumers
func (s *NextBusSensor) Id() string {
	return fmt.Sprintf("%s-%s", s.stopId, s.directionId)
}

// Name returns the display name of the sensor
func (s *NextBusSensor) Name() string {
	return fmt.Sprintf("%s %s %s", s.name, s.stopId, s.directionId)
}

// DeviceClass returns the device classification of the sensor value
func (s *NextBusSensor) DeviceClass() string {
	return deviceClassTimestamp
}

// Icon returns the icon identifier for the sensor
func (s *NextBusSensor) Icon() string {
	return sensorIcon
}

// State returns the soonest upcoming arrival as RFC 3339 UTC text.
// ok is false when no valid upcoming arrival is known.
func (s *NextBusSensor) State() (state string, ok bool) {
	if s.state == nil {
		return "", false
	}
	return *s.state, true
}

// Attributes returns the descriptive attributes of the current state.
// The map is empty while the state is unknown.
func (s *NextBusSensor) Attributes() map[string]string {
	return s.attributes
}

// Update runs one poll cycle at "now": fetch the latest payload, reconcile
// its predictions with the retained ones, and derive the new state and
// attributes. Every failure is absorbed and logged; on failure the state
// falls back to whatever the retained predictions still support.
func (s *NextBusSensor) Update(now time.Time) {
	s.state = nil
	s.attributes = map[string]string{}

	raw, err := s.source.GetPredictions(s.stopId, s.directionId)
	if err != nil {
		s.log.Printf("error fetching predictions: %v\n", err)
		raw = ""
	}

	var fresh []ura.Prediction
	if raw == "" {
		s.log.Printf("empty result found when expecting list of predictions\n")
	} else {
		fresh = ura.ParsePredictions(s.log, raw)
	}

	s.predictions = ura.Reconcile(fresh, s.predictions, now)

	if len(s.predictions) > 0 {
		next := s.predictions[0]
		state := next.EstimatedTime.Format(time.RFC3339)
		s.state = &state
		s.attributes[ura.AttrStop] = next.StopPointName
		s.attributes[ura.AttrLine] = next.LineName
		s.attributes[ura.AttrDestination] = next.DestinationText
		s.attributes[ura.AttrAttribution] = ura.Attribution
	}
}

// CurrentUpdate captures the sensor's externally visible surface after a
// cycle, suitable for publication
func (s *NextBusSensor) CurrentUpdate(at time.Time) *ura.SensorUpdate {
	update := ura.SensorUpdate{
		SensorId:    s.Id(),
		Name:        s.Name(),
		DeviceClass: s.DeviceClass(),
		Icon:        s.Icon(),
		State:       s.state,
		Attributes:  s.attributes,
		Timestamp:   uint64(at.Unix()),
	}
	return &update
}
