package monitor

import (
	"errors"
	"testing"

	"github.com/matryer/is"
	"github.com/ura-tools/nextbus/business/data/ura"
)

//capturingDestination records published updates for assertions
type capturingDestination struct {
	updates []*ura.SensorUpdate
	err     error
}

func (d *capturingDestination) Publish(update *ura.SensorUpdate) error {
	if d.err != nil {
		return d.err
	}
	d.updates = append(d.updates, update)
	return nil
}

func TestSensorUpdatePublisher_publishesToAllDestinations(t *testing.T) {
	is := is.New(t)
	first := &capturingDestination{}
	second := &capturingDestination{}
	publisher := makeSensorUpdatePublisher(testLogger(), first, second)

	update := &ura.SensorUpdate{SensorId: "100635-1"}
	publisher.publish(update)

	is.Equal(len(first.updates), 1)
	is.Equal(len(second.updates), 1)
	is.Equal(first.updates[0].SensorId, "100635-1")
}

func TestSensorUpdatePublisher_failingDestinationDoesNotBlockOthers(t *testing.T) {
	is := is.New(t)
	failing := &capturingDestination{err: errors.New("broker unavailable")}
	working := &capturingDestination{}
	publisher := makeSensorUpdatePublisher(testLogger(), failing, working)

	publisher.publish(&ura.SensorUpdate{SensorId: "100635-1"})

	is.Equal(len(working.updates), 1) // delivery continues past the failing destination
}
