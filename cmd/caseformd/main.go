// Command caseformd serves the conversion engine over HTTP. Completed
// conversions land in the configured archive backend and, when enabled,
// stream to a NATS server.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/ohowland/caseform/internal/pkg/archive"
	"github.com/ohowland/caseform/internal/pkg/archive/mongodb"
	"github.com/ohowland/caseform/internal/pkg/archive/pgdb"
	"github.com/ohowland/caseform/internal/pkg/archive/sqldb"
	"github.com/ohowland/caseform/internal/pkg/events"
	"github.com/ohowland/caseform/internal/pkg/msg"
	"github.com/ohowland/caseform/internal/pkg/webservice"
)

type config struct {
	Webservice    string `json:"Webservice"`
	Archive       string `json:"Archive"`
	ArchiveConfig string `json:"ArchiveConfig"`
	EventsConfig  string `json:"EventsConfig"`
}

type stopper interface {
	Stop()
}

func main() {
	log.Println("[Main] Starting caseformd v0.1.0")
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	configPath := "./config/caseformd_config.json"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}
	cfg, err := readConfig(configPath)
	if err != nil {
		panic(err)
	}

	log.Println("[Main] Building System Bus")
	pid, err := uuid.NewUUID()
	if err != nil {
		panic(err)
	}
	pubsub := msg.NewPublisher(pid)

	log.Println("[Main] Building Archive Store")
	store, stoppers, err := buildStore(cfg, pubsub)
	if err != nil {
		panic(err)
	}

	if cfg.EventsConfig != "" {
		log.Println("[Main] Connecting Event Stream")
		eventHandler, err := events.New(cfg.EventsConfig, pubsub)
		if err != nil {
			panic(err)
		}
		go eventHandler.Process()
		stoppers = append(stoppers, eventHandler)
	}

	log.Println("[Main] Building Webservice")
	service, err := webservice.New(cfg.Webservice, store, pubsub)
	if err != nil {
		panic(err)
	}

	go func() {
		if err := service.Serve(); err != nil {
			log.Println("[Main]", err)
			sigs <- syscall.SIGTERM
		}
	}()

	<-sigs
	log.Println("[Main] Stopping system")
	for _, s := range stoppers {
		s.Stop()
	}
	pubsub.Stop()
	time.Sleep(1 * time.Second)
}

func readConfig(path string) (config, error) {
	jsonConfig, err := os.ReadFile(path)
	if err != nil {
		return config{}, err
	}
	cfg := config{}
	if err := json.Unmarshal(jsonConfig, &cfg); err != nil {
		return config{}, err
	}
	return cfg, nil
}

// buildStore assembles the archive backend named by the config. The
// database handlers double as bus subscribers, so they also join the
// stopper set.
func buildStore(cfg config, pubsub *msg.PubSub) (archive.Store, []stopper, error) {
	switch cfg.Archive {
	case "", "memory":
		return archive.NewMemStore(), nil, nil

	case "mongodb":
		h, err := mongodb.New(cfg.ArchiveConfig, pubsub)
		if err != nil {
			return nil, nil, err
		}
		if err := h.Connect(context.Background()); err != nil {
			return nil, nil, err
		}
		go h.Process()
		return h, []stopper{h}, nil

	case "sqldb":
		h, err := sqldb.New(cfg.ArchiveConfig, pubsub)
		if err != nil {
			return nil, nil, err
		}
		if err := h.Connect(context.Background()); err != nil {
			return nil, nil, err
		}
		go h.Process()
		return h, []stopper{h}, nil

	case "pgdb":
		h, err := pgdb.New(cfg.ArchiveConfig, pubsub)
		if err != nil {
			return nil, nil, err
		}
		if err := h.Connect(context.Background()); err != nil {
			return nil, nil, err
		}
		go h.Process()
		return h, []stopper{h}, nil

	default:
		return nil, nil, fmt.Errorf("unknown archive backend %q", cfg.Archive)
	}
}
