package readiness

import (
	"context"
	"fmt"
	"time"
)

// DefaultTimeout bounds how long one service is polled.
const DefaultTimeout = 30 * time.Second

// Checker probes a service at addr and reports whether it is ready. A
// checker that wants a pause between attempts takes it before returning
// false, honouring ctx.
type Checker interface {
	Check(ctx context.Context, addr string) bool
}

// CheckFunc adapts a function to Checker.
type CheckFunc func(ctx context.Context, addr string) bool

func (f CheckFunc) Check(ctx context.Context, addr string) bool { return f(ctx, addr) }

// Policy is how one service is polled.
type Policy struct {
	Checker Checker
	Timeout time.Duration
}

// Policies pairs a default policy with per-service overrides.
type Policies struct {
	Default   Policy
	Overrides map[string]Policy
}

// For returns the effective policy for service. Fields an override leaves
// zero come from the default; a zero timeout becomes DefaultTimeout.
func (p Policies) For(service string) Policy {
	out := p.Default
	if o, ok := p.Overrides[service]; ok {
		if o.Checker != nil {
			out.Checker = o.Checker
		}
		if o.Timeout > 0 {
			out.Timeout = o.Timeout
		}
	}
	if out.Timeout <= 0 {
		out.Timeout = DefaultTimeout
	}
	return out
}

// Resolver finds the host address of a service port.
type Resolver interface {
	Address(ctx context.Context, service, portSpec string) (string, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, service, portSpec string) (string, error)

func (f ResolverFunc) Address(ctx context.Context, service, portSpec string) (string, error) {
	return f(ctx, service, portSpec)
}

// TimeoutError reports a service that did not become ready in time.
// Elapsed is measured from the first check to the one that crossed
// Timeout, so it is never less than Timeout.
type TimeoutError struct {
	Service string
	Timeout time.Duration
	Elapsed time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("Timeout for service %s reached after %d seconds", e.Service, int(e.Elapsed.Seconds()))
}
