package docker

import (
	"context"
	"fmt"
	"io"
)

// Puller pulls images through the Engine API.
type Puller struct {
	pull PullFunc
}

// NewPuller returns a Puller using pull.
func NewPuller(pull PullFunc) *Puller {
	return &Puller{pull: pull}
}

// Pull fetches ref and waits for the pull to finish.
func (p *Puller) Pull(ctx context.Context, ref string) error {
	rc, err := p.pull(ctx, ref)
	if err != nil {
		return fmt.Errorf("pulling %s: %w", ref, err)
	}
	defer rc.Close()
	if _, err := io.Copy(io.Discard, rc); err != nil {
		return fmt.Errorf("pulling %s: %w", ref, err)
	}
	return nil
}
