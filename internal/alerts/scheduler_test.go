package alerts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopRunner struct{}

func (nopRunner) Run(context.Context, string) (*Report, error) { return &Report{}, nil }

func TestScheduler_NextRuns(t *testing.T) {
	loc := LoadLocation(DefaultTimezone)
	s, err := NewScheduler(nopRunner{}, loc, nil)
	require.NoError(t, err)

	// Wednesday 2026-03-04 12:00 local
	from := time.Date(2026, 3, 4, 12, 0, 0, 0, loc)

	next, ok := s.Next("friday-09", from)
	require.True(t, ok)
	assert.True(t, next.Equal(time.Date(2026, 3, 6, 9, 0, 0, 0, loc)), "got %s", next)

	next, ok = s.Next("monday-17", from)
	require.True(t, ok)
	assert.True(t, next.Equal(time.Date(2026, 3, 9, 17, 0, 0, 0, loc)), "got %s", next)

	_, ok = s.Next("sunday", from)
	assert.False(t, ok)
}

func TestScheduler_RejectsBadSpec(t *testing.T) {
	_, err := NewScheduler(nopRunner{}, time.UTC, []Schedule{{Job: "x", Spec: "not a cron"}})
	assert.Error(t, err)
}

func TestScheduler_StartStop(t *testing.T) {
	s, err := NewScheduler(nopRunner{}, time.UTC, nil)
	require.NoError(t, err)
	s.Start()
	<-s.Stop().Done()
}

func TestLoadLocation_Fallback(t *testing.T) {
	loc := LoadLocation("Nowhere/Invalid")
	_, offset := time.Date(2026, 1, 1, 0, 0, 0, 0, loc).Zone()
	assert.Equal(t, -3*60*60, offset)
}
