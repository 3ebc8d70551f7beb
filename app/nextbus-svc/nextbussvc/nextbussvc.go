package nextbussvc

import (
	logger "log"
	"os"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

//StartServices brings up backgroundLoop, sensorUpdateListener and webservice.
//Exits application on shutdown signal
func StartServices(log *logger.Logger,
	expireSensorSeconds int,
	httpPort int,
	natsConn *nats.Conn,
	sensorUpdateSubject string,
	shutdownSignal chan os.Signal) {

	wg := sync.WaitGroup{}

	//create shared container
	stateCollection := makeSensorStateCollection()

	//create shutdown channels
	backgroundLoopShutdown := make(chan bool, 1)
	updateListenerShutdown := make(chan bool, 1)
	webServiceShutdown := make(chan bool, 1)

	//start all child services
	go runBackgroundLoop(log, &wg, stateCollection, backgroundLoopShutdown, expireSensorSeconds)
	go runSensorUpdateListener(log, &wg, natsConn, stateCollection, sensorUpdateSubject,
		updateListenerShutdown)
	go runWebService(log, &wg, stateCollection, httpPort, webServiceShutdown)

	<-shutdownSignal
	log.Printf("Exiting on shutdown signal, shutting down subroutines")
	backgroundLoopShutdown <- true
	updateListenerShutdown <- true
	webServiceShutdown <- true
	wg.Wait()
	log.Printf("Subroutines shut down, exiting sensor state service")

}

//runBackgroundLoop frequently removes sensors that stopped reporting from
//stateCollection
func runBackgroundLoop(log *logger.Logger,
	wg *sync.WaitGroup,
	stateCollection *sensorStateCollection,
	shutdownSignal chan bool,
	expireSensorSeconds int) {
	wg.Add(1)
	defer wg.Done()

	sleepChan := make(chan bool)

	loopDuration := time.Duration(3) * time.Second
	sleep := loopDuration

	for {

		go func() {
			time.Sleep(sleep)
			sleepChan <- true
		}()

		select {
		case <-shutdownSignal:
			log.Printf("Exiting background loop on shutdown signal")

			return
		case <-sleepChan:
		}

		removedSensors, currentSize := stateCollection.expireUpdates(time.Now(), expireSensorSeconds)

		log.Printf("Sensor state collection has %d sensors. Removed %d stale sensors", currentSize, removedSensors)

	}
}
