package monitor

import (
	"fmt"
	"log"
	"os"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/nats-io/nats.go"
)

// RunSensorMonitorLoop polls the prediction feed through sensor at a fixed
// cadence and publishes the resulting sensor updates over the connections
// that are present. natsConn and mqttClient may each be nil to disable that
// destination. Returns on shutdown signal.
func RunSensorMonitorLoop(log *log.Logger,
	sensor *NextBusSensor,
	natsConn *nats.Conn,
	sensorUpdateSubject string,
	mqttClient mqtt.Client,
	mqttTopicPrefix string,
	updateEverySeconds int,
	shutdownSignal chan os.Signal) error {

	var destinations []sensorUpdateDestination
	if natsConn != nil {
		destinations = append(destinations, makeNatsSensorUpdateDestination(natsConn, sensorUpdateSubject))
	}
	if mqttClient != nil {
		destinations = append(destinations, makeMqttSensorUpdateDestination(mqttClient, mqttTopicPrefix))
	}
	publisher := makeSensorUpdatePublisher(log, destinations...)

	loopDuration := time.Duration(updateEverySeconds) * time.Second

	sleepChan := make(chan bool)
	sleep := time.Duration(0) //sleep for zero seconds the first time

	for {

		go func() {
			time.Sleep(sleep)
			sleepChan <- true
		}()

		select {
		case <-shutdownSignal:
			log.Printf("Exiting on shutdown signal")
			return nil
		case <-sleepChan:
			break
		}

		// mark the time we start working
		start := time.Now()

		sensor.Update(start)
		update := sensor.CurrentUpdate(start)

		if update.State != nil {
			log.Printf("sensor %s next arrival %s\n", update.SensorId, *update.State)
		} else {
			log.Printf("sensor %s has no upcoming arrival\n", update.SensorId)
		}

		publisher.publish(update)

		// attempt to run the loop every updateEverySeconds by subtracting the
		// time it took to perform the work
		workTook := time.Now().Sub(start)

		log.Printf("work took %s\n", fmtDuration(workTook))

		// if the work took longer than updateEverySeconds don't sleep at all
		// on the next loop
		if workTook >= loopDuration {
			sleep = time.Duration(0)
		} else {
			sleep = loopDuration - workTook
		}

	}
}

//fmtDuration returns a string presentation of time.Duration for logging
func fmtDuration(d time.Duration) string {
	d = d.Round(time.Millisecond)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	mill := d / time.Millisecond
	return fmt.Sprintf("%02d:%02d.%d", h, m, mill)
}
