// Package sweep reclaims runtime resources left behind by earlier CI runs.
//
// A sweep lists every container, keeps the ones whose names follow the
// naming grammar, decodes their creation time and removes those older than
// the retention window. The networks of reclaimed projects and any
// unreferenced volumes go with them. A sweep never fails: every error is
// logged and counted in the Report.
package sweep

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/schmitthub/cienv/internal/iostreams"
	"github.com/schmitthub/cienv/internal/logger"
	"github.com/schmitthub/cienv/internal/naming"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultRetentionMinutes applies to local runs.
	DefaultRetentionMinutes = 2

	// DefaultCIRetentionMinutes applies when running under CI. Jobs on a
	// shared runner get longer before a neighbour reclaims them.
	DefaultCIRetentionMinutes = 5
)

// Retention is how long an environment may live before it counts as orphaned.
// Zero (or less) means every matching resource is stale.
type Retention struct {
	Minutes int

	// Exempt owner keys are never stale. A provisioning call joining an
	// existing environment exempts it from its own pre-flight sweep.
	Exempt []string
}

func (r Retention) exempt(owner string) bool {
	for _, e := range r.Exempt {
		if e == owner {
			return true
		}
	}
	return false
}

// DefaultRetention returns the retention for local or CI runs.
func DefaultRetention(ci bool) Retention {
	if ci {
		return Retention{Minutes: DefaultCIRetentionMinutes}
	}
	return Retention{Minutes: DefaultRetentionMinutes}
}

// All reports whether the retention treats everything as stale.
func (r Retention) All() bool { return r.Minutes <= 0 }

// Cutoff returns the newest creation time considered stale at now.
func (r Retention) Cutoff(now time.Time) int64 {
	if r.All() {
		return now.Unix()
	}
	return now.Add(-time.Duration(r.Minutes) * time.Minute).Unix()
}

// Report summarizes a sweep.
type Report struct {
	Inspected int
	Matched   int
	Stale     int
	Removed   int
	Failed    int

	// Projects are the distinct owner keys of stale containers.
	Projects        []string
	NetworkFailures int

	VolumesPruned bool
	ListFailed    bool
}

// Sweeper reclaims orphaned resources through a Janitor.
type Sweeper struct {
	janitor Janitor
	grammar *naming.Grammar
	clock   clock.Clock
	log     iostreams.Logger
}

// New returns a Sweeper. Nil grammar, clock and logger get defaults.
func New(j Janitor, g *naming.Grammar, clk clock.Clock, log iostreams.Logger) *Sweeper {
	if g == nil {
		g = naming.DefaultGrammar()
	}
	if clk == nil {
		clk = clock.New()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Sweeper{janitor: j, grammar: g, clock: clk, log: log}
}

type staleContainer struct {
	Container
	owner string
}

// Sweep removes stale containers in parallel, then the networks of their
// projects in parallel, then prunes unreferenced volumes.
func (s *Sweeper) Sweep(ctx context.Context, r Retention) Report {
	var report Report

	containers, err := s.janitor.ListContainers(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("orphan sweep skipped: listing containers failed")
		report.ListFailed = true
		return report
	}
	report.Inspected = len(containers)

	stale := s.partition(containers, r, &report)
	report.Stale = len(stale)

	s.removeContainers(ctx, stale, &report)
	s.removeNetworks(ctx, stale, &report)

	// Volume references only drop once their containers are gone.
	if err := s.janitor.PruneVolumes(ctx); err != nil {
		s.log.Warn().Err(err).Msg("pruning unused volumes failed")
	} else {
		report.VolumesPruned = true
	}

	s.log.Debug().
		Int("inspected", report.Inspected).
		Int("stale", report.Stale).
		Int("removed", report.Removed).
		Int("failed", report.Failed).
		Strs("projects", report.Projects).
		Msg("orphan sweep finished")

	return report
}

func (s *Sweeper) partition(containers []Container, r Retention, report *Report) []staleContainer {
	cutoff := r.Cutoff(s.clock.Now())

	var stale []staleContainer
	for _, c := range containers {
		if !s.grammar.Matches(c.Name) {
			continue
		}
		report.Matched++

		n, err := s.grammar.Decode(c.Name)
		if err != nil {
			if r.All() {
				// Full cleanup still reclaims it; there is just no project
				// to derive networks from.
				stale = append(stale, staleContainer{Container: c})
				continue
			}
			s.log.Debug().Err(err).Str("container", c.Name).Msg("leaving undecodable container alone")
			continue
		}

		if r.exempt(n.OwnerKey) {
			continue
		}
		if r.All() || n.CreatedAtUnix <= cutoff {
			stale = append(stale, staleContainer{Container: c, owner: n.OwnerKey})
		}
	}
	return stale
}

func (s *Sweeper) removeContainers(ctx context.Context, stale []staleContainer, report *Report) {
	var (
		g  errgroup.Group
		mu sync.Mutex
	)
	for _, c := range stale {
		g.Go(func() error {
			err := s.janitor.RemoveContainer(ctx, c.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				report.Removed++
			case errors.Is(err, ErrAlreadyGone):
				report.Removed++
				s.log.Debug().Str("container", c.Name).Msg("orphan container already gone")
			default:
				report.Failed++
				s.log.Warn().Err(err).Str("container", c.Name).Msg("failed to remove orphan container")
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (s *Sweeper) removeNetworks(ctx context.Context, stale []staleContainer, report *Report) {
	owners := make(map[string]struct{})
	for _, c := range stale {
		if c.owner != "" {
			owners[c.owner] = struct{}{}
		}
	}
	for o := range owners {
		report.Projects = append(report.Projects, o)
	}
	sort.Strings(report.Projects)

	var (
		g  errgroup.Group
		mu sync.Mutex
	)
	for _, project := range report.Projects {
		g.Go(func() error {
			err := s.janitor.RemoveProjectNetworks(ctx, project)
			if err != nil && !errors.Is(err, ErrAlreadyGone) {
				mu.Lock()
				report.NetworkFailures++
				mu.Unlock()
				s.log.Warn().Err(err).Str("project", project).Msg("failed to remove orphan networks")
			}
			return nil
		})
	}
	_ = g.Wait()
}
