package environment

import (
	"context"
	"errors"
	"sync"

	"github.com/schmitthub/cienv/internal/naming"
)

// HookFunc is a setup or teardown step.
type HookFunc func(ctx context.Context) error

// Hooks is a test-suite lifecycle that accepts setup and teardown steps.
type Hooks interface {
	Before(fn HookFunc)
	After(fn HookFunc)
}

// RegisterOptions extends Options with teardown behaviour.
type RegisterOptions struct {
	Options

	// ContainerCleanUp tears the environment down in the after hook.
	ContainerCleanUp bool

	// BrutallyKill kills containers instead of stopping them.
	BrutallyKill bool

	// BeforeTeardown runs first in the after hook, and only when
	// ContainerCleanUp is set.
	BeforeTeardown func()

	// AfterProvision receives the environment once the runtime has been
	// asked to start it, including when readiness then failed. Its Env
	// holds the variables resolved for this provisioning.
	AfterProvision func(env *Environment)
}

// DefaultRegisterOptions returns the defaults: orphan cleanup, teardown
// on exit and brutal kill all on.
func DefaultRegisterOptions() RegisterOptions {
	return RegisterOptions{
		Options:          DefaultOptions(),
		ContainerCleanUp: true,
		BrutallyKill:     true,
	}
}

// Register registers provisioning with hooks.Before and teardown with
// hooks.After (a no-op unless opts.ContainerCleanUp), and returns the environment's identity right away so the
// caller can reference it before the hooks run.
func (p *Provisioner) Register(hooks Hooks, composeFile string, opts RegisterOptions) naming.Identity {
	id := p.identity(opts.Options)
	opts.Identity = &id

	var (
		mu  sync.Mutex
		env *Environment
	)

	hooks.Before(func(ctx context.Context) error {
		e, err := p.Provision(ctx, composeFile, opts.Options)
		mu.Lock()
		env = e
		mu.Unlock()
		if e != nil && opts.AfterProvision != nil {
			opts.AfterProvision(e)
		}
		return err
	})

	hooks.After(func(ctx context.Context) error {
		if !opts.ContainerCleanUp {
			return nil
		}
		if opts.BeforeTeardown != nil {
			opts.BeforeTeardown()
		}
		mu.Lock()
		e := env
		mu.Unlock()
		if e == nil {
			// Provisioning failed early; the runtime may still hold a
			// partial project under this identity.
			e = &Environment{Identity: id, ComposeFile: composeFile}
		}
		return p.Teardown(ctx, e, opts.BrutallyKill)
	})

	return id
}

// Lifecycle is a simple Hooks implementation. Before hooks run in
// registration order and stop at the first failure; after hooks all run,
// last registered first.
type Lifecycle struct {
	mu     sync.Mutex
	before []HookFunc
	after  []HookFunc
}

var _ Hooks = (*Lifecycle)(nil)

func (l *Lifecycle) Before(fn HookFunc) {
	l.mu.Lock()
	l.before = append(l.before, fn)
	l.mu.Unlock()
}

func (l *Lifecycle) After(fn HookFunc) {
	l.mu.Lock()
	l.after = append(l.after, fn)
	l.mu.Unlock()
}

// RunBefore runs the before hooks.
func (l *Lifecycle) RunBefore(ctx context.Context) error {
	l.mu.Lock()
	hooks := append([]HookFunc(nil), l.before...)
	l.mu.Unlock()

	for _, fn := range hooks {
		if err := fn(ctx); err != nil {
			return err
		}
	}
	return nil
}

// RunAfter runs every after hook and joins their errors.
func (l *Lifecycle) RunAfter(ctx context.Context) error {
	l.mu.Lock()
	hooks := append([]HookFunc(nil), l.after...)
	l.mu.Unlock()

	var errs []error
	for i := len(hooks) - 1; i >= 0; i-- {
		if err := hooks[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
