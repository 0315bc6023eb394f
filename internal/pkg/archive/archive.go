// Package archive records completed conversions. Each conversion
// produces one Record; a Store keeps them addressable by PID for the
// case listing endpoints. Storage backends live in subpackages.
package archive

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Directions stamped on a Record.
const (
	Convert = "convert"
	Reverse = "reverse"
)

// Record summarizes one completed conversion.
type Record struct {
	PID       uuid.UUID `json:"pid"`
	Direction string    `json:"direction"`
	CaseName  string    `json:"casename"`
	Buses     int       `json:"buses"`
	Gens      int       `json:"gens"`
	Branches  int       `json:"branches"`
	DCLines   int       `json:"dclines"`
	CreatedAt time.Time `json:"created_at"`
}

// NewRecord stamps a conversion summary with a fresh PID and the
// current time.
func NewRecord(direction string, casename string, buses int, gens int, branches int, dclines int) Record {
	return Record{
		PID:       uuid.New(),
		Direction: direction,
		CaseName:  casename,
		Buses:     buses,
		Gens:      gens,
		Branches:  branches,
		DCLines:   dclines,
		CreatedAt: time.Now().UTC(),
	}
}

// Store is the conversion record repository.
type Store interface {
	Put(ctx context.Context, rec Record) error
	List(ctx context.Context) ([]Record, error)
	Get(ctx context.Context, pid uuid.UUID) (Record, bool, error)
}
