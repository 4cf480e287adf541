// Package environment provisions and tears down ephemeral environments.
//
// A Provisioner owns no per-environment state: Provision returns an
// Environment value and every later call takes it back explicitly.
package environment

import (
	"context"
	"fmt"
	"time"

	"github.com/schmitthub/cienv/internal/compose"
	"github.com/schmitthub/cienv/internal/naming"
	"github.com/schmitthub/cienv/internal/readiness"
	"github.com/schmitthub/cienv/internal/sweep"
)

// Runtime brings compose projects up and down. *compose.Compose
// implements it.
type Runtime interface {
	Up(ctx context.Context, t compose.Target, services []string) error
	Kill(ctx context.Context, t compose.Target) error
	Down(ctx context.Context, t compose.Target) error
	DownVolumes(ctx context.Context, t compose.Target) error
	Address(ctx context.Context, t compose.Target, service, portSpec string) (string, error)
}

// ImageFetcher pulls an image. Calls for distinct images may run
// concurrently.
type ImageFetcher interface {
	Pull(ctx context.Context, ref string) error
}

// Sweeper reclaims orphaned resources. *sweep.Sweeper implements it.
type Sweeper interface {
	Sweep(ctx context.Context, r sweep.Retention) sweep.Report
}

// ImageFetchError reports an image that could not be pulled.
type ImageFetchError struct {
	Image string
	Err   error
}

func (e *ImageFetchError) Error() string {
	return fmt.Sprintf("fetching image %s: %v", e.Image, e.Err)
}

func (e *ImageFetchError) Unwrap() error { return e.Err }

// HealthCheck enables readiness polling after start.
type HealthCheck struct {
	// Timeout per service; zero means the provisioner default.
	Timeout time.Duration

	// Custom replaces the HTTP probe for the named services.
	Custom map[string]readiness.Checker

	// CustomTimeouts overrides Timeout for the named services.
	CustomTimeouts map[string]time.Duration
}

// Options controls one provisioning call.
type Options struct {
	// Services limits which services are started and checked. Empty means
	// all of them.
	Services []string

	// Identity joins an existing environment instead of creating one.
	Identity *naming.Identity

	EnvVars      Vars
	PrintEnvVars bool

	// OrphanCleanup runs the orphan sweep before starting.
	OrphanCleanup bool
	PullImages    bool

	// RetentionMinutes overrides the configured sweep retention.
	RetentionMinutes *int

	// HealthCheck, when set, waits for the services to answer.
	HealthCheck *HealthCheck
}

// DefaultOptions returns options with orphan cleanup on.
func DefaultOptions() Options {
	return Options{OrphanCleanup: true}
}

// Environment is one provisioned environment.
type Environment struct {
	Identity    naming.Identity
	ComposeFile string
	Services    []string

	// Env holds the resolved variables every runtime call receives.
	Env map[string]string
}

// Target returns the compose target of the environment.
func (e *Environment) Target() compose.Target {
	return compose.Target{Project: e.Identity.Slug, File: e.ComposeFile, Env: e.Env}
}
