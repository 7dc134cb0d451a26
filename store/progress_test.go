package store

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/recstore/record"
)

func TestLogProgress(t *testing.T) {
	s := openNodes(t)
	writeNodes(t, s, 9)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	p := (&visit{}).processor()
	p.ProgressInit = LogProgressInit(logger, time.Hour)
	require.NoError(t, ApplyFiltered(p, s))

	out := buf.String()
	// The limiter allows the first update and then throttles until Done.
	assert.Equal(t, 1, strings.Count(out, "apply progress"))
	assert.Equal(t, 1, strings.Count(out, "apply done"))
	assert.Contains(t, out, "kind=Node")
	assert.Contains(t, out, "high_id=9")
}

func TestLogProgress_ExplicitUpdatesAreNotThrottled(t *testing.T) {
	var buf bytes.Buffer
	sink := LogProgress(slog.New(slog.NewTextHandler(&buf, nil)), fakeDescriptor{}, time.Hour)

	sink.Update(false, 1)
	sink.Update(false, 2)
	sink.Update(true, 3)
	sink.Done(3)

	out := buf.String()
	assert.Equal(t, 2, strings.Count(out, "apply progress"))
	assert.Contains(t, out, "position=3")
	assert.Contains(t, out, "kind=Property")
}

type fakeDescriptor struct{}

func (fakeDescriptor) Kind() record.Kind     { return record.KindProperty }
func (fakeDescriptor) HighID() uint64        { return 3 }
func (fakeDescriptor) RecordSize() int       { return record.PropertySize }
func (fakeDescriptor) RecordHeaderSize() int { return record.PropertySize }
