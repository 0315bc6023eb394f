package mongodb

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ohowland/caseform/internal/pkg/archive"
	"github.com/ohowland/caseform/internal/pkg/msg"
	"gotest.tools/v3/assert"
)

func TestNew(t *testing.T) {
	pid, err := uuid.NewUUID()
	assert.NilError(t, err)
	pubsub := msg.NewPublisher(pid)

	h, err := New("./mongodb_config_test.json", pubsub)
	assert.NilError(t, err)
	assert.Equal(t, h.config.URI, "mongodb://localhost:27017")
	assert.Equal(t, h.config.Database, "caseform")
	assert.Equal(t, h.config.Collection, "conversions")
}

func TestNewMissingConfig(t *testing.T) {
	pid, err := uuid.NewUUID()
	assert.NilError(t, err)
	pubsub := msg.NewPublisher(pid)

	_, err = New("./missing_config.json", pubsub)
	assert.Assert(t, err != nil)
}

func TestRecordRoundTrip(t *testing.T) {
	rec := archive.Record{
		PID:       uuid.New(),
		Direction: archive.Convert,
		CaseName:  "entsoe",
		Buses:     2,
		Gens:      1,
		Branches:  2,
		DCLines:   1,
		CreatedAt: time.Date(2021, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	stored := newRecord(rec)
	assert.Equal(t, stored.PID, rec.PID.String())

	got, err := stored.toArchive()
	assert.NilError(t, err)
	assert.DeepEqual(t, got, rec)
}

func TestRecordBadPID(t *testing.T) {
	stored := record{PID: "not-a-uuid"}
	_, err := stored.toArchive()
	assert.Assert(t, err != nil)
}

func TestProcessStop(t *testing.T) {
	pid, err := uuid.NewUUID()
	assert.NilError(t, err)
	pubsub := msg.NewPublisher(pid)

	h, err := New("./mongodb_config_test.json", pubsub)
	assert.NilError(t, err)

	done := make(chan struct{})
	go func() {
		h.Process()
		close(done)
	}()

	h.Stop()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Process did not shut down")
	}
}
