package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/alem-hub/ozlympic/internal/domain/shared"
	"github.com/alem-hub/ozlympic/internal/infrastructure/messaging"
	"github.com/alem-hub/ozlympic/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingCloser struct{ err error }

func (c failingCloser) Close() error { return c.err }

func TestCloseBus_LogsFailure(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Options{Output: &buf, Level: logger.LevelInfo})

	closeBus(failingCloser{err: errors.New("still delivering")}, log)

	var entry logger.LogEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry.Level)
	assert.Equal(t, "failed to close event bus", entry.Message)
	assert.Equal(t, "still delivering", entry.Fields["error"])
}

func TestCloseBus_Quiet(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Options{Output: &buf, Level: logger.LevelDebug})

	bus := messaging.NewBus(messaging.BusConfig{})
	closeBus(bus, log)

	assert.Zero(t, buf.Len())
	err := bus.Publish(shared.NewTournamentReadyEvent("run", nil, 0))
	assert.ErrorIs(t, err, messaging.ErrEventBusClosed)
}
