// Package mongodb persists conversion records in a MongoDB collection.
// The handler doubles as an archive.Store and as a bus subscriber that
// mirrors published records. Both paths upsert by PID, so a record
// written twice lands once.
package mongodb

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ohowland/caseform/internal/pkg/archive"
	"github.com/ohowland/caseform/internal/pkg/msg"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Handler struct {
	mux    *sync.Mutex
	inbox  <-chan msg.Msg
	pid    uuid.UUID
	config config
	client *mongo.Client
	stop   chan bool
}

type config struct {
	URI        string `json:"URI"`
	Database   string `json:"Database"`
	Collection string `json:"Collection"`
}

// record is the BSON shape of an archive.Record.
// TODO: store pid as BSON binary subtype 0x04 (UUID standard) instead of a string.
type record struct {
	PID       string    `bson:"pid"`
	Direction string    `bson:"direction"`
	CaseName  string    `bson:"casename"`
	Buses     int       `bson:"buses"`
	Gens      int       `bson:"gens"`
	Branches  int       `bson:"branches"`
	DCLines   int       `bson:"dclines"`
	CreatedAt time.Time `bson:"created_at"`
}

func newRecord(rec archive.Record) record {
	return record{
		PID:       rec.PID.String(),
		Direction: rec.Direction,
		CaseName:  rec.CaseName,
		Buses:     rec.Buses,
		Gens:      rec.Gens,
		Branches:  rec.Branches,
		DCLines:   rec.DCLines,
		CreatedAt: rec.CreatedAt,
	}
}

func (r record) toArchive() (archive.Record, error) {
	pid, err := uuid.Parse(r.PID)
	if err != nil {
		return archive.Record{}, err
	}
	return archive.Record{
		PID:       pid,
		Direction: r.Direction,
		CaseName:  r.CaseName,
		Buses:     r.Buses,
		Gens:      r.Gens,
		Branches:  r.Branches,
		DCLines:   r.DCLines,
		CreatedAt: r.CreatedAt,
	}, nil
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

// PID returns the handler's process id.
func (h *Handler) PID() uuid.UUID {
	return h.pid
}

// Connect dials the configured MongoDB deployment.
func (h *Handler) Connect(ctx context.Context) error {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(h.config.URI))
	if err != nil {
		return err
	}
	h.mux.Lock()
	h.client = client
	h.mux.Unlock()
	return nil
}

// Disconnect tears the client down.
func (h *Handler) Disconnect(ctx context.Context) error {
	h.mux.Lock()
	client := h.client
	h.client = nil
	h.mux.Unlock()
	if client == nil {
		return nil
	}
	return client.Disconnect(ctx)
}

func (h *Handler) collection() *mongo.Collection {
	h.mux.Lock()
	defer h.mux.Unlock()
	return h.client.Database(h.config.Database).Collection(h.config.Collection)
}

// Put upserts the record keyed by its PID.
func (h *Handler) Put(ctx context.Context, rec archive.Record) error {
	opts := options.Update().SetUpsert(true)
	_, err := h.collection().UpdateOne(
		ctx,
		bson.M{"pid": rec.PID.String()},
		bson.D{{Key: "$set", Value: newRecord(rec)}},
		opts,
	)
	return err
}

// List returns all stored records, newest first. Ties on the creation
// time order by PID string, matching the other backends.
func (h *Handler) List(ctx context.Context) ([]archive.Record, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "pid", Value: 1}})
	cursor, err := h.collection().Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	var stored []record
	if err := cursor.All(ctx, &stored); err != nil {
		return nil, err
	}
	recs := make([]archive.Record, 0, len(stored))
	for _, r := range stored {
		rec, err := r.toArchive()
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// Get looks a record up by PID.
func (h *Handler) Get(ctx context.Context, pid uuid.UUID) (archive.Record, bool, error) {
	var stored record
	err := h.collection().FindOne(ctx, bson.M{"pid": pid.String()}).Decode(&stored)
	if err == mongo.ErrNoDocuments {
		return archive.Record{}, false, nil
	}
	if err != nil {
		return archive.Record{}, false, err
	}
	rec, err := stored.toArchive()
	if err != nil {
		return archive.Record{}, false, err
	}
	return rec, true, nil
}

// Stop ends the Process loop.
func (h *Handler) Stop() {
	h.stop <- true
}

// Process mirrors conversion records from the bus into the collection.
// TODO: handle reconnection to the MongoDB resource.
func (h *Handler) Process() {
	ctx := context.TODO()

	h.mux.Lock()
	connected := h.client != nil
	h.mux.Unlock()
	if !connected {
		if err := h.Connect(ctx); err != nil {
			log.Println("[Mongo]", err)
			return
		}
		defer h.Disconnect(ctx)
	}

loop:
	for {
		select {
		case m := <-h.inbox:
			rec, ok := m.Payload().(archive.Record)
			if !ok {
				log.Println("[Mongo] unexpected payload on topic", m.Topic())
				continue
			}
			if err := h.Put(ctx, rec); err != nil {
				log.Println("[Mongo] put:", err)
			}
		case <-h.stop:
			break loop
		}
	}
	log.Println("[Mongo] Process Shutdown")
}
