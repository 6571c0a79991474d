package cron

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePruner struct {
	mu      sync.Mutex
	cutoffs []time.Time
	err     error
}

func (p *fakePruner) PruneBefore(_ context.Context, cutoff time.Time) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cutoffs = append(p.cutoffs, cutoff)
	return 3, p.err
}

func (p *fakePruner) calls() []time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]time.Time(nil), p.cutoffs...)
}

func newTestScheduler(p Pruner, months int, schedule string) *Scheduler {
	s := NewScheduler(p, months, schedule, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.now = func() time.Time { return time.Date(2024, time.March, 18, 15, 4, 5, 0, time.UTC) }
	return s
}

func TestCutoff(t *testing.T) {
	tests := []struct {
		months int
		want   time.Time
	}{
		{0, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)},
		{2, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{12, time.Date(2023, time.March, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, newTestScheduler(&fakePruner{}, tt.months, "").Cutoff())
	}
}

func TestPruneExpired(t *testing.T) {
	p := &fakePruner{}
	s := newTestScheduler(p, 2, "")
	s.pruneExpired()
	assert.Equal(t, []time.Time{time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)}, p.calls())

	p.err = errors.New("store down")
	assert.NotPanics(t, s.pruneExpired)
	assert.Len(t, p.calls(), 2)
}

func TestStart(t *testing.T) {
	s := newTestScheduler(&fakePruner{}, 1, "")
	require.NoError(t, s.Start())
	assert.Len(t, s.cron.Entries(), 1)
	<-s.Stop().Done()

	bad := newTestScheduler(&fakePruner{}, 1, "not a schedule")
	assert.Error(t, bad.Start())
}

func TestRunNow(t *testing.T) {
	p := &fakePruner{}
	s := newTestScheduler(p, 1, "")
	s.RunNow()
	assert.Eventually(t, func() bool { return len(p.calls()) == 1 }, time.Second, 10*time.Millisecond)
}
