package main

import (
	"fmt"
	logger "log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardanlabs/conf"
	"github.com/nats-io/nats.go"
	"github.com/phanikiran-1619/smv-replay/app/bus-replay-svc/replay"
	"github.com/phanikiran-1619/smv-replay/foundation/database"
	"github.com/phanikiran-1619/smv-replay/foundation/httpclient"
	"github.com/phanikiran-1619/smv-replay/foundation/metrics"
)

var build = "develop"

func main() {
	log := logger.New(os.Stdout, "BUS_REPLAY : ", logger.LstdFlags|logger.Lmicroseconds|logger.Lshortfile)
	if err := run(log); err != nil {
		log.Printf("main: error: %v", err)
		os.Exit(1)
	}
}

func run(log *logger.Logger) error {
	var cfg struct {
		conf.Version
		Args conf.Args
		DB   struct {
			User       string `conf:"default:postgres"`
			Password   string `conf:"default:postgres,noprint"`
			Host       string `conf:"default:0.0.0.0"`
			Name       string `conf:"default:postgres"`
			DisableTLS bool   `conf:"default:true"`
		}
		Web struct {
			HttpPort int `conf:"default:8080"`
		}
		Tracker struct {
			ApiUrl         string `conf:"default:http://localhost:9000/api"`
			TimeoutSeconds int    `conf:"default:10"`
		}
		Live struct {
			FeedUrl          string `conf:"default:ws://localhost:9001/ws/location"`
			NatsUrl          string `conf:"default:nats://localhost:4222"`
			PublishOverNats  bool   `conf:"default:true"`
			RecordToDatabase bool   `conf:"default:true"`
		}
	}
	cfg.Version.SVN = build
	cfg.Version.Desc = "Replay school bus journeys against route stops"
	const prefix = "REPLAY"
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
	// Start Database

	log.Println("main: Initializing database support")

	db, err := database.Open(database.Config{
		User:       cfg.DB.User,
		Password:   cfg.DB.Password,
		Host:       cfg.DB.Host,
		Name:       cfg.DB.Name,
		DisableTLS: cfg.DB.DisableTLS,
	})
	if err != nil {
		return fmt.Errorf("connecting to db: %w", err)
	}
	defer func() {
		log.Printf("main: Database Stopping : %s", cfg.DB.Host)
		err = db.Close()
		if err != nil {
			log.Printf("main: error closing database: %v", err)
		}
	}()

	// =========================================================================
	// Start NATS

	var natsConnection *nats.Conn
	if cfg.Live.PublishOverNats {
		log.Println("main: Initializing NATS support")
		natsConnection, err = nats.Connect(cfg.Live.NatsUrl,
			nats.Name("bus-replay-svc"),
			nats.DisconnectHandler(func(_ *nats.Conn) {
				log.Printf("nats disconnected")
			}),
			nats.ReconnectHandler(func(_ *nats.Conn) {
				log.Printf("nats reconnected")
			}),
		)
		if err != nil {
			return fmt.Errorf("connecting to nats at %s: %w", cfg.Live.NatsUrl, err)
		}
		defer natsConnection.Close()
	}

	trackerClient := httpclient.MakeClient(cfg.Tracker.ApiUrl,
		time.Duration(cfg.Tracker.TimeoutSeconds)*time.Second)

	collector := metrics.NewCollector()

	// Make a channel to listen for an interrupt or terminate signal from the OS.
	// Use a buffered channel because the signal package requires it.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	replay.StartServices(log, replay.Config{
		HttpPort:         cfg.Web.HttpPort,
		LiveFeedUrl:      cfg.Live.FeedUrl,
		RecordToDatabase: cfg.Live.RecordToDatabase,
		PublishOverNats:  cfg.Live.PublishOverNats,
	}, db, natsConnection, trackerClient, collector, shutdown)

	return nil
}
