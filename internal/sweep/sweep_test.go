package sweep

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/schmitthub/cienv/internal/logger/loggertest"
	"github.com/schmitthub/cienv/internal/naming"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Unix(1700000000, 0)

type fakeJanitor struct {
	ListFn          func(ctx context.Context) ([]Container, error)
	RemoveFn        func(ctx context.Context, id string) error
	RemoveNetworkFn func(ctx context.Context, project string) error
	PruneFn         func(ctx context.Context) error

	mu       sync.Mutex
	removed  []string
	networks []string
	calls    []string
}

func (f *fakeJanitor) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeJanitor) ListContainers(ctx context.Context) ([]Container, error) {
	f.record("list")
	return f.ListFn(ctx)
}

func (f *fakeJanitor) RemoveContainer(ctx context.Context, id string) error {
	f.record("remove")
	f.mu.Lock()
	f.removed = append(f.removed, id)
	f.mu.Unlock()
	if f.RemoveFn == nil {
		return nil
	}
	return f.RemoveFn(ctx, id)
}

func (f *fakeJanitor) RemoveProjectNetworks(ctx context.Context, project string) error {
	f.record("network")
	f.mu.Lock()
	f.networks = append(f.networks, project)
	f.mu.Unlock()
	if f.RemoveNetworkFn == nil {
		return nil
	}
	return f.RemoveNetworkFn(ctx, project)
}

func (f *fakeJanitor) PruneVolumes(ctx context.Context) error {
	f.record("prune")
	if f.PruneFn == nil {
		return nil
	}
	return f.PruneFn(ctx)
}

func (f *fakeJanitor) removedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]string(nil), f.removed...)
	sort.Strings(out)
	return out
}

// project builds a project key created age ago.
func project(codename string, age time.Duration) string {
	return naming.DefaultGrammar().Encode(codename, now.Add(-age).Unix(), "0a1b2c3d")
}

func newTestSweeper(j Janitor) (*Sweeper, *loggertest.TestLogger) {
	mock := clock.NewMock()
	mock.Set(now)
	log := loggertest.New()
	return New(j, nil, mock, log), log
}

func listing(containers ...Container) func(context.Context) ([]Container, error) {
	return func(context.Context) ([]Container, error) { return containers, nil }
}

func TestSweep_RetentionThresholds(t *testing.T) {
	tenMinutesOld := project("bravehopper", 10*time.Minute)

	tests := []struct {
		name        string
		minutes     int
		wantRemoved []string
	}{
		{name: "5 minute retention reclaims", minutes: 5, wantRemoved: []string{"c1"}},
		{name: "15 minute retention keeps", minutes: 15, wantRemoved: nil},
		{name: "exact boundary is stale", minutes: 10, wantRemoved: []string{"c1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := &fakeJanitor{ListFn: listing(Container{ID: "c1", Name: tenMinutesOld + "-web-1"})}
			s, _ := newTestSweeper(j)

			report := s.Sweep(context.Background(), Retention{Minutes: tt.minutes})

			if tt.wantRemoved == nil {
				assert.Empty(t, j.removedIDs())
				assert.Empty(t, j.networks)
				assert.Equal(t, 0, report.Stale)
				return
			}
			assert.Equal(t, tt.wantRemoved, j.removedIDs())
			assert.Equal(t, []string{tenMinutesOld}, j.networks)
			assert.Equal(t, 1, report.Removed)
		})
	}
}

func TestSweep_ZeroRetentionReclaimsEverythingMatching(t *testing.T) {
	fresh := project("zenwu", 0)
	old := project("jollyturing", time.Hour)
	// Created "in the future" relative to this host's clock (skewed runner).
	skewed := naming.DefaultGrammar().Encode("keenknuth", now.Add(time.Hour).Unix(), "deadbeef")

	j := &fakeJanitor{ListFn: listing(
		Container{ID: "fresh", Name: "/" + fresh + "_web_1"},
		Container{ID: "old", Name: old + "-db-1"},
		Container{ID: "skewed", Name: skewed + "-api-1"},
		Container{ID: "foreign", Name: "postgres"},
		Container{ID: "garbled", Name: "cicontainerbadzzdivzzxyz"},
	)}
	s, _ := newTestSweeper(j)

	report := s.Sweep(context.Background(), Retention{Minutes: 0})

	assert.Equal(t, []string{"fresh", "garbled", "old", "skewed"}, j.removedIDs())
	assert.ElementsMatch(t, []string{fresh, old, skewed}, j.networks)
	assert.Equal(t, 5, report.Inspected)
	assert.Equal(t, 4, report.Matched)
	assert.Equal(t, 4, report.Removed)
	assert.True(t, report.VolumesPruned)
}

func TestSweep_LeavesUndecodableAloneWithRetention(t *testing.T) {
	j := &fakeJanitor{ListFn: listing(Container{ID: "garbled", Name: "cicontainerbadzzdivzzxyz"})}
	s, log := newTestSweeper(j)

	report := s.Sweep(context.Background(), Retention{Minutes: 5})

	assert.Empty(t, j.removedIDs())
	assert.Equal(t, 1, report.Matched)
	assert.Equal(t, 0, report.Stale)
	assert.Contains(t, log.Output(), "leaving undecodable container alone")
}

func TestSweep_OneFailureDoesNotAbortSiblings(t *testing.T) {
	p := project("bravehopper", time.Hour)
	j := &fakeJanitor{
		ListFn: listing(
			Container{ID: "a", Name: p + "-web-1"},
			Container{ID: "b", Name: p + "-db-1"},
			Container{ID: "c", Name: p + "-cache-1"},
			Container{ID: "d", Name: p + "-worker-1"},
		),
		RemoveFn: func(_ context.Context, id string) error {
			switch id {
			case "b":
				return errors.New("permission denied")
			case "c":
				return fmt.Errorf("%w: container c is not running", ErrAlreadyGone)
			}
			return nil
		},
	}
	s, log := newTestSweeper(j)

	report := s.Sweep(context.Background(), Retention{Minutes: 5})

	assert.Equal(t, []string{"a", "b", "c", "d"}, j.removedIDs())
	assert.Equal(t, 3, report.Removed)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, []string{p}, report.Projects, "one network removal per distinct project")
	assert.Contains(t, log.Output(), "failed to remove orphan container")
	assert.Contains(t, log.Output(), "permission denied")
}

func TestSweep_NetworkFailuresAreCounted(t *testing.T) {
	p1 := project("bravehopper", time.Hour)
	p2 := project("zenwu", time.Hour)
	j := &fakeJanitor{
		ListFn: listing(Container{ID: "a", Name: p1 + "-web-1"}, Container{ID: "b", Name: p2 + "-web-1"}),
		RemoveNetworkFn: func(_ context.Context, project string) error {
			if project == p1 {
				return errors.New("network has active endpoints")
			}
			return fmt.Errorf("%w: network not found", ErrAlreadyGone)
		},
	}
	s, _ := newTestSweeper(j)

	report := s.Sweep(context.Background(), Retention{Minutes: 5})

	assert.Equal(t, 1, report.NetworkFailures)
	assert.ElementsMatch(t, []string{p1, p2}, j.networks)
}

func TestSweep_OrderingContainersThenNetworksThenVolumes(t *testing.T) {
	p := project("bravehopper", time.Hour)
	j := &fakeJanitor{ListFn: listing(Container{ID: "a", Name: p + "-web-1"}, Container{ID: "b", Name: p + "-db-1"})}
	s, _ := newTestSweeper(j)

	s.Sweep(context.Background(), Retention{Minutes: 0})

	require.Len(t, j.calls, 5)
	assert.Equal(t, []string{"list", "remove", "remove", "network", "prune"}, j.calls)
}

func TestSweep_ListFailureIsSwallowed(t *testing.T) {
	j := &fakeJanitor{ListFn: func(context.Context) ([]Container, error) {
		return nil, errors.New("Cannot connect to the Docker daemon")
	}}
	s, log := newTestSweeper(j)

	report := s.Sweep(context.Background(), Retention{Minutes: 0})

	assert.True(t, report.ListFailed)
	assert.Equal(t, []string{"list"}, j.calls)
	assert.Contains(t, log.Output(), "orphan sweep skipped")
}

func TestSweep_PruneFailureIsSwallowed(t *testing.T) {
	j := &fakeJanitor{
		ListFn:  listing(),
		PruneFn: func(context.Context) error { return errors.New("volume in use") },
	}
	s, log := newTestSweeper(j)

	report := s.Sweep(context.Background(), Retention{Minutes: 2})

	assert.False(t, report.VolumesPruned)
	assert.Contains(t, log.Output(), "pruning unused volumes failed")
}

func TestDefaultRetention(t *testing.T) {
	assert.Equal(t, Retention{Minutes: 2}, DefaultRetention(false))
	assert.Equal(t, Retention{Minutes: 5}, DefaultRetention(true))
}

func TestRetention_Cutoff(t *testing.T) {
	assert.Equal(t, now.Unix(), Retention{}.Cutoff(now))
	assert.Equal(t, now.Unix(), Retention{Minutes: -3}.Cutoff(now))
	assert.Equal(t, now.Unix()-300, Retention{Minutes: 5}.Cutoff(now))
}

func TestSweep_ExemptOwnerSurvivesFullCleanup(t *testing.T) {
	joined := project("bravehopper", time.Hour)
	other := project("zenwu", time.Hour)
	j := &fakeJanitor{ListFn: listing(
		Container{ID: "joined", Name: joined + "-s1-1"},
		Container{ID: "other", Name: other + "-s1-1"},
	)}
	s, _ := newTestSweeper(j)

	report := s.Sweep(context.Background(), Retention{Minutes: 0, Exempt: []string{joined}})

	assert.Equal(t, []string{"other"}, j.removedIDs())
	assert.Equal(t, []string{other}, report.Projects)
}
