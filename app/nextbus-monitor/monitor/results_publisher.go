package monitor

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/nats-io/nats.go"
	"github.com/ura-tools/nextbus/business/data/ura"
)

// mqttPublishTimeout bounds how long a cycle waits on the broker
const mqttPublishTimeout = time.Duration(5) * time.Second

// sensorUpdateDestination is where sensor updates should be sent after each
// poll cycle.
type sensorUpdateDestination interface {
	Publish(update *ura.SensorUpdate) error
}

// natsSensorUpdateDestination sends sensor updates over nats
type natsSensorUpdateDestination struct {
	natsConn *nats.Conn
	subject  string
}

func (n *natsSensorUpdateDestination) Publish(update *ura.SensorUpdate) error {
	jsonData, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("error marshaling SensorUpdate to json: error:%v", err)
	}
	return n.natsConn.Publish(n.subject, jsonData)
}

// makeNatsSensorUpdateDestination builds a destination publishing updates on
// subject over natsConn
func makeNatsSensorUpdateDestination(natsConn *nats.Conn, subject string) *natsSensorUpdateDestination {
	return &natsSensorUpdateDestination{
		natsConn: natsConn,
		subject:  subject,
	}
}

// mqttSensorUpdateDestination sends sensor state and attributes on retained
// mqtt topics, so a home automation broker always holds the latest value for
// the sensor
type mqttSensorUpdateDestination struct {
	client      mqtt.Client
	topicPrefix string
}

// makeMqttSensorUpdateDestination builds a destination publishing updates
// under topicPrefix on client
func makeMqttSensorUpdateDestination(client mqtt.Client, topicPrefix string) *mqttSensorUpdateDestination {
	return &mqttSensorUpdateDestination{
		client:      client,
		topicPrefix: topicPrefix,
	}
}

func (m *mqttSensorUpdateDestination) Publish(update *ura.SensorUpdate) error {
	state := ""
	if update.State != nil {
		state = *update.State
	}
	stateTopic := fmt.Sprintf("%s/%s/state", m.topicPrefix, update.SensorId)
	if err := m.publishRetained(stateTopic, []byte(state)); err != nil {
		return err
	}

	attributesData, err := json.Marshal(update.Attributes)
	if err != nil {
		return fmt.Errorf("error marshaling sensor attributes to json: error:%v", err)
	}
	attributesTopic := fmt.Sprintf("%s/%s/attributes", m.topicPrefix, update.SensorId)
	return m.publishRetained(attributesTopic, attributesData)
}

func (m *mqttSensorUpdateDestination) publishRetained(topic string, payload []byte) error {
	token := m.client.Publish(topic, 0, true, payload)
	if !token.WaitTimeout(mqttPublishTimeout) {
		return fmt.Errorf("timed out publishing to mqtt topic %s", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed publishing to mqtt topic %s: %w", topic, err)
	}
	return nil
}

// sensorUpdatePublisher takes sensor updates produced by the monitor loop and
// sends them to their destinations (such as nats and mqtt)
type sensorUpdatePublisher struct {
	log          *log.Logger
	destinations []sensorUpdateDestination
}

// makeSensorUpdatePublisher creates sensorUpdatePublisher
func makeSensorUpdatePublisher(log *log.Logger,
	destinations ...sensorUpdateDestination) *sensorUpdatePublisher {
	return &sensorUpdatePublisher{
		log:          log,
		destinations: destinations,
	}
}

// publish sends the update to every destination. A failing destination is
// logged and does not prevent delivery to the others.
func (p *sensorUpdatePublisher) publish(update *ura.SensorUpdate) {
	for _, destination := range p.destinations {
		if err := destination.Publish(update); err != nil {
			p.log.Printf("error publishing sensor update: %v\n", err)
		}
	}
}
