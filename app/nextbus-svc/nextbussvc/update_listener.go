package nextbussvc

import (
	"encoding/json"
	logger "log"
	"os"
	"sync"

	"github.com/nats-io/nats.go"
	"github.com/ura-tools/nextbus/business/data/ura"
)

//runSensorUpdateListener starts NATS subscription on sensorUpdateSubject for
//ura.SensorUpdate messages. Stores results in stateCollection. Ends NATS
//subscription and returns on shutdownSignal
func runSensorUpdateListener(
	log *logger.Logger,
	wg *sync.WaitGroup,
	natsConn *nats.Conn,
	stateCollection *sensorStateCollection,
	sensorUpdateSubject string,
	shutdownSignal chan bool) {
	wg.Add(1)
	defer wg.Done()

	ch := make(chan *nats.Msg, 64)
	log.Printf("Subscribing to sensor updates on subject:%s on nats: %v\n", sensorUpdateSubject,
		natsConn.Servers())
	sub, err := natsConn.ChanSubscribe(sensorUpdateSubject, ch)
	if err != nil {
		log.Printf("Unable to establish subscription to nats server: %v\n", err)
		os.Exit(1)
	}

	for {
		select {
		case msg := <-ch:
			processSensorUpdateFromMsg(log, msg, stateCollection)
			break
		case <-shutdownSignal:
			log.Printf("ending SensorUpdate listener on shutdown signal\n")
			log.Printf("unsubscribing to nats\n")
			err = sub.Unsubscribe()
			if err != nil {
				log.Printf("Error unsubscribing to nats:%s", err)
			}
			return
		}
	}
}

//processSensorUpdateFromMsg un-marshal ura.SensorUpdate from nats.Msg and
//store the result in stateCollection
func processSensorUpdateFromMsg(log *logger.Logger, msg *nats.Msg, stateCollection *sensorStateCollection) {
	var update ura.SensorUpdate
	err := json.Unmarshal(msg.Data, &update)
	if err != nil {
		log.Printf("error parsing SensorUpdate: %s, payload:%s", err, string(msg.Data))
		return
	}
	if update.SensorId == "" {
		log.Printf("discarding SensorUpdate without sensor id, payload:%s", string(msg.Data))
		return
	}
	stateCollection.addUpdate(&update)
}
