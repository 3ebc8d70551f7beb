package nextbussvc

import (
	"context"
	"encoding/json"
	logger "log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/ura-tools/nextbus/business/data/ura"
)

//defaultHttpHandler simple default http handler for default route
type defaultHttpHandler struct {
}

//ServeHTTP implements defaultHttpHandler http.Handler interface
func (h *defaultHttpHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Add("Application-Status", "OK")
}

//sensorStatesHandler responds with the latest update of every known sensor
type sensorStatesHandler struct {
	log             *logger.Logger
	stateCollection *sensorStateCollection
}

//JsonSensorStatesResponseWrapper provides json response wrapper around
//ura.SensorUpdates
type JsonSensorStatesResponseWrapper struct {
	Timestamp uint64              `json:"timestamp"`
	Sensors   []*ura.SensorUpdate `json:"sensors"`
}

//ServeHTTP implements sensorStatesHandler's http.Handler interface
func (h *sensorStatesHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	wrapper := JsonSensorStatesResponseWrapper{
		Timestamp: uint64(time.Now().Unix()),
		Sensors:   h.stateCollection.updateList(),
	}
	writeJson(h.log, w, &wrapper)
}

//sensorStateHandler responds with the latest update of a single sensor
type sensorStateHandler struct {
	log             *logger.Logger
	stateCollection *sensorStateCollection
}

//ServeHTTP implements sensorStateHandler's http.Handler interface
func (h *sensorStateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sensorId := mux.Vars(r)["sensorId"]
	update := h.stateCollection.getUpdate(sensorId)
	if update == nil {
		http.Error(w, "sensor not found", http.StatusNotFound)
		return
	}
	writeJson(h.log, w, update)
}

//writeJson marshals payload to the http.ResponseWriter as a json response
func writeJson(log *logger.Logger, w http.ResponseWriter, payload interface{}) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Error marshaling sensor states to json: error:%v\n", err)
		http.Error(w, "Error serving request", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	byteCount, err := w.Write(jsonData)
	if err != nil {
		log.Printf("Error writing json response: %s", err)
		return
	}
	log.Printf("wrote %d bytes in json response.", byteCount)
}

//createRouter builds the mux.Router serving sensor state requests
func createRouter(log *logger.Logger, stateCollection *sensorStateCollection) *mux.Router {
	r := mux.NewRouter()
	r.Handle("/", &defaultHttpHandler{})
	r.Handle("/sensors", &sensorStatesHandler{log: log, stateCollection: stateCollection})
	r.Handle("/sensors/{sensorId}", &sensorStateHandler{log: log, stateCollection: stateCollection})
	return r
}

//createServer creates configured http.Server for responding to sensor state
//requests
func createServer(log *logger.Logger,
	stateCollection *sensorStateCollection,
	httpPort int) *http.Server {

	srv := &http.Server{
		Addr: strings.Join([]string{"0.0.0.0", strconv.Itoa(httpPort)}, ":"),
		// Good practice to set timeouts to avoid Slowloris attacks.
		WriteTimeout: time.Second * 15,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      createRouter(log, stateCollection),
	}
	return srv
}

//runWebService starts up sensor state web service, and terminates on shutdown
//signal
func runWebService(log *logger.Logger,
	wg *sync.WaitGroup,
	stateCollection *sensorStateCollection,
	httpPort int,
	shutdownSignal chan bool,
) {
	wg.Add(1)
	defer wg.Done()
	srv := createServer(log, stateCollection, httpPort)
	log.Printf("Starting server on port %d", httpPort)
	go func() {
		if err := srv.ListenAndServe(); err != nil {
			log.Printf("server ListenAndServe ended. %s", err)
		}
	}()

	<-shutdownSignal
	log.Printf("ending webservice on shutdown signal")
	shutdownCtx, serverCancelFunc := context.WithTimeout(context.Background(), time.Duration(5)*time.Second)
	defer serverCancelFunc()
	err := srv.Shutdown(shutdownCtx)
	if err != nil {
		log.Printf("error shutting down webservice, error:%s", err)
	}

}
