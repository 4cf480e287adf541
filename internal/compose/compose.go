// Package compose drives `docker compose` for one environment at a time.
//
// Every call is scoped to a Target (project name plus compose file), so
// operations on one environment never touch another's resources.
package compose

import (
	"context"
	"fmt"
	"strings"

	"github.com/schmitthub/cienv/internal/shell"
)

// DefaultBinary is the docker CLI executable.
const DefaultBinary = "docker"

// Target identifies one environment to the compose runtime.
type Target struct {
	Project string
	File    string

	// Env is passed to every compose invocation for the target.
	Env map[string]string
}

// Compose runs docker compose through an executor.
type Compose struct {
	exec   shell.Executor
	binary string
}

// New returns a Compose using binary (DefaultBinary when empty).
func New(exec shell.Executor, binary string) *Compose {
	if binary == "" {
		binary = DefaultBinary
	}
	return &Compose{exec: exec, binary: binary}
}

func (c *Compose) command(t Target, args ...string) shell.Command {
	argv := append([]string{c.binary, "compose", "-p", t.Project, "-f", t.File}, args...)
	return shell.Command{Args: argv, Env: t.Env}
}

func (c *Compose) run(ctx context.Context, t Target, args ...string) (shell.Result, error) {
	return c.exec.Run(ctx, c.command(t, args...))
}

// Up starts services (all when none are named) detached.
func (c *Compose) Up(ctx context.Context, t Target, services []string) error {
	args := append([]string{"up", "-d"}, services...)
	if _, err := c.run(ctx, t, args...); err != nil {
		return fmt.Errorf("starting environment %s: %w", t.Project, err)
	}
	return nil
}

// Kill force-kills every container in the project.
func (c *Compose) Kill(ctx context.Context, t Target) error {
	_, err := c.run(ctx, t, "kill")
	return err
}

// Down stops and removes the project's containers and networks.
func (c *Compose) Down(ctx context.Context, t Target) error {
	_, err := c.run(ctx, t, "down")
	return err
}

// DownVolumes removes the project along with its named volumes.
func (c *Compose) DownVolumes(ctx context.Context, t Target) error {
	_, err := c.run(ctx, t, "down", "-v")
	return err
}

// Start starts a stopped service.
func (c *Compose) Start(ctx context.Context, t Target, service string) error {
	return c.serviceVerb(ctx, t, "start", service)
}

// Stop stops a running service without removing it.
func (c *Compose) Stop(ctx context.Context, t Target, service string) error {
	return c.serviceVerb(ctx, t, "stop", service)
}

// Pause pauses a service's processes.
func (c *Compose) Pause(ctx context.Context, t Target, service string) error {
	return c.serviceVerb(ctx, t, "pause", service)
}

// Unpause resumes a paused service.
func (c *Compose) Unpause(ctx context.Context, t Target, service string) error {
	return c.serviceVerb(ctx, t, "unpause", service)
}

func (c *Compose) serviceVerb(ctx context.Context, t Target, verb, service string) error {
	if _, err := c.run(ctx, t, verb, service); err != nil {
		return fmt.Errorf("%s %s: %w", verb, service, err)
	}
	return nil
}

// Logs returns the service's combined log output. An empty service
// returns the logs of the whole project.
func (c *Compose) Logs(ctx context.Context, t Target, service string) (string, error) {
	args := []string{"logs", "--no-color"}
	if service != "" {
		args = append(args, service)
	}
	res, err := c.run(ctx, t, args...)
	if err != nil {
		if service == "" {
			service = t.Project
		}
		return "", fmt.Errorf("fetching logs for %s: %w", service, err)
	}
	return res.Stdout, nil
}

// IsRunning reports whether a container of service is up. Both compose v1
// (<project>_<service>_N, "Up ...") and v2 (<project>-<service>-N,
// "running") listings are recognised.
func (c *Compose) IsRunning(ctx context.Context, t Target, service string) (bool, error) {
	res, err := c.run(ctx, t, "ps", "-a")
	if err != nil {
		return false, fmt.Errorf("listing services: %w", err)
	}

	prefixes := []string{t.Project + "_" + service + "_", t.Project + "-" + service + "-"}
	for _, line := range strings.Split(res.Stdout, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		owned := false
		for _, p := range prefixes {
			if strings.HasPrefix(fields[0], p) {
				owned = true
				break
			}
		}
		if !owned {
			continue
		}
		if strings.Contains(line, " Up") || strings.Contains(line, " running") {
			return true, nil
		}
	}
	return false, nil
}
