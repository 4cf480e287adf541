package compose

import (
	"context"
	"fmt"
	"strings"

	"github.com/schmitthub/cienv/internal/shell"
	"github.com/schmitthub/cienv/internal/sweep"
)

// ProjectLabel is the label compose puts on every resource it creates.
const ProjectLabel = "com.docker.compose.project"

// CLIJanitor implements sweep.Janitor with the docker CLI.
type CLIJanitor struct {
	exec   shell.Executor
	binary string
}

var _ sweep.Janitor = (*CLIJanitor)(nil)

// NewCLIJanitor returns a janitor running binary (DefaultBinary when empty).
func NewCLIJanitor(exec shell.Executor, binary string) *CLIJanitor {
	if binary == "" {
		binary = DefaultBinary
	}
	return &CLIJanitor{exec: exec, binary: binary}
}

func (j *CLIJanitor) run(ctx context.Context, args ...string) (shell.Result, error) {
	return j.exec.Run(ctx, shell.Command{Args: append([]string{j.binary}, args...)})
}

// ListContainers lists all containers, running or not.
func (j *CLIJanitor) ListContainers(ctx context.Context) ([]sweep.Container, error) {
	res, err := j.run(ctx, "ps", "-a", "--format", "{{.ID}} {{.Names}}")
	if err != nil {
		return nil, fmt.Errorf("listing containers: %w", err)
	}

	var out []sweep.Container
	for _, line := range strings.Split(res.Stdout, "\n") {
		id, names, ok := strings.Cut(strings.TrimSpace(line), " ")
		if !ok {
			continue
		}
		// Legacy links show up as extra comma separated names.
		name, _, _ := strings.Cut(names, ",")
		out = append(out, sweep.Container{ID: id, Name: name})
	}
	return out, nil
}

// RemoveContainer force-removes a container with its anonymous volumes.
func (j *CLIJanitor) RemoveContainer(ctx context.Context, id string) error {
	if _, err := j.run(ctx, "rm", "-f", "-v", id); err != nil {
		return classify(err)
	}
	return nil
}

// RemoveProjectNetworks removes the networks labelled with project.
func (j *CLIJanitor) RemoveProjectNetworks(ctx context.Context, project string) error {
	res, err := j.run(ctx, "network", "ls", "-q", "--filter", "label="+ProjectLabel+"="+project)
	if err != nil {
		return fmt.Errorf("listing networks of %s: %w", project, err)
	}
	ids := strings.Fields(res.Stdout)
	if len(ids) == 0 {
		return nil
	}
	if _, err := j.run(ctx, append([]string{"network", "rm"}, ids...)...); err != nil {
		return classify(err)
	}
	return nil
}

// PruneVolumes removes every volume no container references.
func (j *CLIJanitor) PruneVolumes(ctx context.Context) error {
	_, err := j.run(ctx, "volume", "prune", "--all", "--force")
	return err
}

func classify(err error) error {
	if shell.IsGone(err) {
		return fmt.Errorf("%w: %w", sweep.ErrAlreadyGone, err)
	}
	return err
}
