// Package events forwards conversion records to a NATS server.
// Records publish on <subject>.<topic>, one message per completed
// conversion.
package events

import (
	"encoding/json"
	"log"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/ohowland/caseform/internal/pkg/msg"

	nats "github.com/nats-io/nats.go"
)

type Handler struct {
	mux    *sync.Mutex
	inbox  <-chan msg.Msg
	pid    uuid.UUID
	config config
	stop   chan bool
}

type config struct {
	Server  string `json:"Server"`
	Subject string `json:"Subject"`
}

func (h *Handler) PID() uuid.UUID {
	return h.pid
}

func redirectMsg(chIn <-chan msg.Msg, chOut chan<- msg.Msg) {
	for m := range chIn {
		chOut <- m
	}
}

// New reads the handler config and subscribes to both conversion
// topics on the system bus.
func New(configPath string, system msg.Publisher) (*Handler, error) {
	jsonConfig, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	cfg := config{}
	if err := json.Unmarshal(jsonConfig, &cfg); err != nil {
		return nil, err
	}
	if cfg.Server == "" {
		cfg.Server = nats.DefaultURL
	}
	if cfg.Subject == "" {
		cfg.Subject = "caseform"
	}

	pid, err := uuid.NewUUID()
	if err != nil {
		return nil, err
	}

	inbox := make(chan msg.Msg, 50)

	chConverted, err := system.Subscribe(pid, msg.Converted)
	if err != nil {
		return nil, err
	}
	go redirectMsg(chConverted, inbox)

	chReversed, err := system.Subscribe(pid, msg.Reversed)
	if err != nil {
		return nil, err
	}
	go redirectMsg(chReversed, inbox)

	return &Handler{
		mux:    &sync.Mutex{},
		inbox:  inbox,
		pid:    pid,
		config: cfg,
		stop:   make(chan bool, 1),
	}, nil
}

func (h *Handler) subject(topic msg.Topic) string {
	return h.config.Subject + "." + topic.String()
}

// Stop ends the Process loop.
func (h *Handler) Stop() {
	h.stop <- true
}

// Process forwards bus messages to the NATS server.
func (h *Handler) Process() {
	log.Println("[NATS client] Process Started")
	nc, err := nats.Connect(h.config.Server)
	if err != nil {
		log.Println("[NATS client]", err)
		return
	}
	defer nc.Close()

loop:
	for {
		select {
		case m := <-h.inbox:
			data, err := json.Marshal(m.Payload())
			if err != nil {
				continue
			}
			if err = nc.Publish(h.subject(m.Topic()), data); err != nil {
				log.Printf("unable to publish to nats server: %v", err)
			}
		case <-h.stop:
			break loop
		}
	}
	log.Println("[NATS client] Process Shutdown")
}
