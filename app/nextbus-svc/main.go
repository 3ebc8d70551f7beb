package main

import (
	"fmt"
	logger "log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ardanlabs/conf"
	"github.com/nats-io/nats.go"
	"github.com/ura-tools/nextbus/app/nextbus-svc/nextbussvc"
)

var build = "develop"

func main() {
	log := logger.New(os.Stdout, "NEXTBUS_SVC : ", logger.LstdFlags|logger.Lmicroseconds|logger.Lshortfile)
	if err := run(log); err != nil {
		log.Printf("main: error: %v", err)
		os.Exit(1)
	}
}

func run(log *logger.Logger) error {
	var cfg struct {
		conf.Version
		Args conf.Args
		NATS struct {
			URL                 string `conf:"default:nats://127.0.0.1:4222"`
			SensorUpdateSubject string `conf:"default:nextbus-sensor-updates"`
		}
		ExpireSensorSeconds int `conf:"default:300"`
		HTTPPort            int `conf:"default:8723"`
	}
	cfg.Version.SVN = build
	cfg.Version.Desc = "Serve latest next bus sensor states received over NATS"
	const prefix = "NEXTBUS_SVC"
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
	// Connect to NATS and start services

	log.Printf("main: Connecting to nats at %s", cfg.NATS.URL)
	natsConn, err := nats.Connect(cfg.NATS.URL)
	if err != nil {
		return fmt.Errorf("connecting to nats at %s: %w", cfg.NATS.URL, err)
	}
	defer func() {
		log.Printf("main: closing nats connection")
		natsConn.Close()
	}()

	// Make a channel to listen for an interrupt or terminate signal from the OS.
	// Use a buffered channel because the signal package requires it.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	nextbussvc.StartServices(log, cfg.ExpireSensorSeconds, cfg.HTTPPort, natsConn,
		cfg.NATS.SensorUpdateSubject, shutdown)
	return nil
}
