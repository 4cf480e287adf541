package compose

import (
	"context"
	"fmt"

	"github.com/schmitthub/cienv/internal/shell"
)

// CLIPuller pulls images with `docker pull`.
type CLIPuller struct {
	exec   shell.Executor
	binary string
}

// NewCLIPuller returns a puller running binary (DefaultBinary when empty).
func NewCLIPuller(exec shell.Executor, binary string) *CLIPuller {
	if binary == "" {
		binary = DefaultBinary
	}
	return &CLIPuller{exec: exec, binary: binary}
}

// Pull fetches ref from its registry.
func (p *CLIPuller) Pull(ctx context.Context, ref string) error {
	if _, err := p.exec.Run(ctx, shell.Command{Args: []string{p.binary, "pull", ref}}); err != nil {
		return fmt.Errorf("pulling %s: %w", ref, err)
	}
	return nil
}
