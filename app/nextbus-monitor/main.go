package main

import (
	"fmt"
	logger "log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardanlabs/conf"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/nats-io/nats.go"
	"github.com/ura-tools/nextbus/app/nextbus-monitor/monitor"
	"github.com/ura-tools/nextbus/foundation/urahttp"
)

var build = "develop"

func main() {
	log := logger.New(os.Stdout, "NEXTBUS_MONITOR : ", logger.LstdFlags|logger.Lmicroseconds|logger.Lshortfile)
	if err := run(log); err != nil {
		log.Printf("main: error: %v", err)
		os.Exit(1)
	}
}

func run(log *logger.Logger) error {
	var cfg struct {
		conf.Version
		Args conf.Args
		URA  struct {
			Endpoint       string `conf:"default:http://ivu.aseag.de/interfaces/ura/instant_V2"`
			StopId         string `conf:"required"`
			DirectionId    string `conf:"required"`
			Name           string `conf:"default:ASEAG Next Bus"`
			TimeoutSeconds int    `conf:"default:10"`
		}
		UpdateEverySeconds int `conf:"default:60"`
		NATS               struct {
			URL                 string `conf:"default:nats://127.0.0.1:4222"`
			SensorUpdateSubject string `conf:"default:nextbus-sensor-updates"`
			PublishOverNats     bool   `conf:"default:false"`
		}
		MQTT struct {
			Broker          string `conf:"default:tcp://127.0.0.1:1883"`
			ClientId        string `conf:"default:nextbus-monitor"`
			TopicPrefix     string `conf:"default:nextbus"`
			PublishOverMqtt bool   `conf:"default:false"`
		}
	}
	cfg.Version.SVN = build
	cfg.Version.Desc = "Poll URA prediction feed for a stop and direction and publish next bus sensor updates"
	const prefix = "NEXTBUS"
	if err := conf.Parse(os.Args[1:], prefix, &cfg); err != nil {
		switch err {
		case conf.ErrHelpWanted:
			usage, err := conf.Usage(prefix, &cfg)
			if err != nil {
				return fmt.Errorf("generating config usage: %w", err)
			}
			fmt.Println(usage)
			return nil
		case conf.ErrVersionWanted:
			version, err := conf.VersionString(prefix, &cfg)
			if err != nil {
				return fmt.Errorf("generating config version: %w", err)
			}
			fmt.Println(version)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// =========================================================================
	// App Starting

	log.Printf("main : Started : Application initializing : version %s", build)
	defer log.Println("main: Completed")

	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Printf("main: Config :\n%v\n", out)

	// =========================================================================
	// Start publication connections

	var natsConn *nats.Conn
	if cfg.NATS.PublishOverNats {
		log.Printf("main: Connecting to nats at %s", cfg.NATS.URL)
		natsConn, err = nats.Connect(cfg.NATS.URL)
		if err != nil {
			return fmt.Errorf("connecting to nats at %s: %w", cfg.NATS.URL, err)
		}
		defer func() {
			log.Printf("main: closing nats connection")
			natsConn.Close()
		}()
	}

	var mqttClient mqtt.Client
	if cfg.MQTT.PublishOverMqtt {
		log.Printf("main: Connecting to mqtt broker at %s", cfg.MQTT.Broker)
		opts := mqtt.NewClientOptions()
		opts.AddBroker(cfg.MQTT.Broker)
		opts.SetClientID(cfg.MQTT.ClientId)
		opts.SetAutoReconnect(true)
		mqttClient = mqtt.NewClient(opts)
		token := mqttClient.Connect()
		if !token.WaitTimeout(time.Duration(10) * time.Second) {
			return fmt.Errorf("timed out connecting to mqtt broker at %s", cfg.MQTT.Broker)
		}
		if err = token.Error(); err != nil {
			return fmt.Errorf("connecting to mqtt broker at %s: %w", cfg.MQTT.Broker, err)
		}
		defer func() {
			log.Printf("main: disconnecting mqtt client")
			mqttClient.Disconnect(250)
		}()
	}

	// =========================================================================
	// Build sensor and run poll loop

	uraClient := urahttp.NewClient(cfg.URA.Endpoint, time.Duration(cfg.URA.TimeoutSeconds)*time.Second)
	sensor := monitor.MakeNextBusSensor(log, uraClient, cfg.URA.Name, cfg.URA.StopId, cfg.URA.DirectionId)

	// Make a channel to listen for an interrupt or terminate signal from the OS.
	// Use a buffered channel because the signal package requires it.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	return monitor.RunSensorMonitorLoop(log, sensor, natsConn, cfg.NATS.SensorUpdateSubject,
		mqttClient, cfg.MQTT.TopicPrefix, cfg.UpdateEverySeconds, shutdown)
}
