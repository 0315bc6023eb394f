package pgdb

import (
	"testing"

	"github.com/google/uuid"
	"github.com/ohowland/caseform/internal/pkg/msg"
	"gotest.tools/v3/assert"
)

func newHandler() (*Handler, error) {
	pid, _ := uuid.NewUUID()
	pub := msg.NewPublisher(pid)
	return New("./db_config_test.json", pub)
}

func TestGetConfig(t *testing.T) {
	h, err := newHandler()
	assert.NilError(t, err)

	assert.Equal(t, h.config.Port, 5432)
	assert.Equal(t, h.config.Host, "localhost")
	assert.Equal(t, h.config.Database, "caseform")
	assert.Equal(t, h.config.SSLMode, "disable")
}

func TestMissingConfig(t *testing.T) {
	pid, _ := uuid.NewUUID()
	pub := msg.NewPublisher(pid)

	_, err := New("./missing_config.json", pub)
	assert.Assert(t, err != nil)
}

func TestDatabaseConnection(t *testing.T) {
	h, err := newHandler()
	assert.NilError(t, err)

	db, err := h.DB()
	assert.NilError(t, err)
	defer db.Close()
}

func TestSubscribeTwiceRejected(t *testing.T) {
	pid, _ := uuid.NewUUID()
	pub := msg.NewPublisher(pid)

	h, err := New("./db_config_test.json", pub)
	assert.NilError(t, err)

	_, err = pub.Subscribe(h.PID(), msg.Converted)
	assert.ErrorContains(t, err, "already subscribed")
}
