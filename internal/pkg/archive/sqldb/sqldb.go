// Package sqldb persists conversion records in a MySQL table. The
// handler doubles as an archive.Store and as a bus subscriber that
// mirrors published records.
package sqldb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ohowland/caseform/internal/pkg/archive"
	"github.com/ohowland/caseform/internal/pkg/msg"

	_ "github.com/go-sql-driver/mysql"
)

type Handler struct {
	mux    *sync.Mutex
	inbox  <-chan msg.Msg
	pid    uuid.UUID
	config config
	db     *sql.DB
	stop   chan bool
}

type config struct {
	Server   string `json:"Server"`
	Port     int    `json:"Port"`
	Username string `json:"Username"`
	Password string `json:"Password"`
	Database string `json:"Database"`
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

// DB opens a connection pool against the configured server. The pool
// dials lazily on first use.
func (h *Handler) DB() (*sql.DB, error) {
	uri := fmt.Sprintf("%v:%v@tcp(%v:%v)/%v?parseTime=true", h.config.Username, h.config.Password, h.config.Server, h.config.Port, h.config.Database)
	db, err := sql.Open("mysql", uri)
	if err != nil {
		return nil, err
	}
	return db, nil
}

// Connect opens the pool and ensures the conversions table exists.
func (h *Handler) Connect(ctx context.Context) error {
	db, err := h.DB()
	if err != nil {
		return err
	}
	if err := initDBTables(ctx, db); err != nil {
		db.Close()
		return err
	}
	h.mux.Lock()
	h.db = db
	h.mux.Unlock()
	return nil
}

// Disconnect closes the pool.
func (h *Handler) Disconnect() error {
	h.mux.Lock()
	db := h.db
	h.db = nil
	h.mux.Unlock()
	if db == nil {
		return nil
	}
	return db.Close()
}

func (h *Handler) database() *sql.DB {
	h.mux.Lock()
	defer h.mux.Unlock()
	return h.db
}

// Put upserts the record keyed by its PID.
func (h *Handler) Put(ctx context.Context, rec archive.Record) error {
	sqlStatement := `INSERT INTO conversions (pid, direction, casename, buses, gens, branches, dclines, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
		direction=VALUES(direction), casename=VALUES(casename), buses=VALUES(buses),
		gens=VALUES(gens), branches=VALUES(branches), dclines=VALUES(dclines), created_at=VALUES(created_at)`

	_, err := h.database().ExecContext(ctx, sqlStatement,
		rec.PID.String(), rec.Direction, rec.CaseName,
		rec.Buses, rec.Gens, rec.Branches, rec.DCLines, rec.CreatedAt.UTC())
	return err
}

// List returns all stored records, newest first.
func (h *Handler) List(ctx context.Context) ([]archive.Record, error) {
	sqlStatement := `SELECT pid, direction, casename, buses, gens, branches, dclines, created_at
		FROM conversions ORDER BY created_at DESC, pid ASC`

	rows, err := h.database().QueryContext(ctx, sqlStatement)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []archive.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// Get looks a record up by PID.
func (h *Handler) Get(ctx context.Context, pid uuid.UUID) (archive.Record, bool, error) {
	sqlStatement := `SELECT pid, direction, casename, buses, gens, branches, dclines, created_at
		FROM conversions WHERE pid = ?`

	row := h.database().QueryRowContext(ctx, sqlStatement, pid.String())
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return archive.Record{}, false, nil
	}
	if err != nil {
		return archive.Record{}, false, err
	}
	return rec, true, nil
}

type scannable interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row scannable) (archive.Record, error) {
	var (
		rec    archive.Record
		pidStr string
	)
	err := row.Scan(&pidStr, &rec.Direction, &rec.CaseName,
		&rec.Buses, &rec.Gens, &rec.Branches, &rec.DCLines, &rec.CreatedAt)
	if err != nil {
		return archive.Record{}, err
	}
	pid, err := uuid.Parse(pidStr)
	if err != nil {
		return archive.Record{}, err
	}
	rec.PID = pid
	return rec, nil
}

// Stop ends the Process loop.
func (h *Handler) Stop() {
	h.stop <- true
}

// Process mirrors conversion records from the bus into the table.
func (h *Handler) Process() {
	if h.database() == nil {
		if err := h.Connect(context.Background()); err != nil {
			log.Println("[SQL]", err)
			return
		}
		defer h.Disconnect()
	}

loop:
	for {
		select {
		case m := <-h.inbox:
			rec, ok := m.Payload().(archive.Record)
			if !ok {
				log.Println("[SQL] unexpected payload on topic", m.Topic())
				continue
			}
			ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
			if err := h.Put(ctx, rec); err != nil {
				log.Println("[SQL] put:", err)
			}
			cancel()
		case <-h.stop:
			break loop
		}
	}
	log.Println("[SQL] Process Shutdown")
}

func initDBTables(ctx context.Context, db *sql.DB) error {
	sqlStatement := `CREATE TABLE IF NOT EXISTS conversions(
		pid VARCHAR(36) PRIMARY KEY,
		direction VARCHAR(16) NOT NULL,
		casename VARCHAR(255) NOT NULL,
		buses INT NOT NULL,
		gens INT NOT NULL,
		branches INT NOT NULL,
		dclines INT NOT NULL,
		created_at DATETIME(6) NOT NULL)`
	_, err := db.ExecContext(ctx, sqlStatement)
	return err
}
