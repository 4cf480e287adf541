// Package readiness waits for freshly started services to answer.
//
// Each targeted service is polled in its own goroutine until its checker
// reports ready or its timeout passes. The first timeout fails the whole
// wait and cancels the remaining pollers.
package readiness

import (
	"context"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"golang.org/x/sync/errgroup"

	"github.com/schmitthub/cienv/internal/compose"
	"github.com/schmitthub/cienv/internal/iostreams"
	"github.com/schmitthub/cienv/internal/logger"
)

// State is where one service's poll stands.
type State int

const (
	Polling State = iota
	Ready
	TimedOut
	Canceled
)

func (s State) String() string {
	switch s {
	case Polling:
		return "polling"
	case Ready:
		return "ready"
	case TimedOut:
		return "timeout"
	case Canceled:
		return "canceled"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Observer is told how each service's poll ended.
type Observer interface {
	ObserveReadiness(service string, outcome State, waited time.Duration)
}

// Poller runs readiness checks.
type Poller struct {
	clock    clock.Clock
	log      iostreams.Logger
	observer Observer
}

// NewPoller returns a Poller. clk measures elapsed time; nil means the wall
// clock. obs may be nil.
func NewPoller(clk clock.Clock, log iostreams.Logger, obs Observer) *Poller {
	if clk == nil {
		clk = clock.New()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Poller{clock: clk, log: log, observer: obs}
}

// WaitUntilReady polls every service in services (only those named in
// subset, when it is non-empty) and returns once all are ready. Services
// without a published port are skipped.
func (p *Poller) WaitUntilReady(ctx context.Context, resolver Resolver, services []compose.Service, policies Policies, subset []string) error {
	targets := filter(services, subset)
	if len(targets) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, svc := range targets {
		policy := policies.For(svc.Name)
		g.Go(func() error {
			return p.poll(gctx, resolver, svc, policy)
		})
	}
	return g.Wait()
}

func filter(services []compose.Service, subset []string) []compose.Service {
	if len(subset) == 0 {
		return services
	}
	want := make(map[string]bool, len(subset))
	for _, s := range subset {
		want[s] = true
	}
	var out []compose.Service
	for _, svc := range services {
		if want[svc.Name] {
			out = append(out, svc)
		}
	}
	return out
}

func (p *Poller) poll(ctx context.Context, resolver Resolver, svc compose.Service, policy Policy) error {
	port, ok := svc.ExposedPort()
	if !ok {
		p.log.Warn().Str("service", svc.Name).Msg("service publishes no port, skipping readiness check")
		return nil
	}
	if policy.Checker == nil {
		return fmt.Errorf("no readiness checker for service %s", svc.Name)
	}

	start := p.clock.Now()
	addr, err := resolver.Address(ctx, svc.Name, port)
	if err != nil {
		return fmt.Errorf("readiness check for %s: %w", svc.Name, err)
	}
	p.log.Debug().Str("service", svc.Name).Str("address", addr).Dur("timeout", policy.Timeout).Msg("waiting for service")

	state, attempts := Polling, 0
	for state == Polling {
		if ctx.Err() != nil {
			state = Canceled
			break
		}
		attempts++
		if policy.Checker.Check(ctx, addr) {
			state = Ready
			break
		}
		if p.clock.Since(start) > policy.Timeout {
			state = TimedOut
		}
	}

	waited := p.clock.Since(start)
	if p.observer != nil {
		p.observer.ObserveReadiness(svc.Name, state, waited)
	}

	switch state {
	case Ready:
		p.log.Debug().Str("service", svc.Name).Int("attempts", attempts).Dur("waited", waited).Msg("service ready")
		return nil
	case TimedOut:
		return &TimeoutError{Service: svc.Name, Timeout: policy.Timeout, Elapsed: waited}
	default:
		return fmt.Errorf("readiness check for %s: %w", svc.Name, ctx.Err())
	}
}
