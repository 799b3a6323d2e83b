package adapters

import (
	"context"
	"fmt"

	"leadcapture/formbridge/internal/logging"
)

// plugin carries what every WordPress-backed adapter shares: the store and
// the plugin files whose activation marks the source as available.
type plugin struct {
	wp          WordPressStore
	pluginFiles []string
}

func (p plugin) IsAvailable(ctx context.Context) bool {
	if p.wp == nil {
		return false
	}
	active, err := p.wp.ActivePlugins(ctx)
	if err != nil {
		logging.Warn("failed to read active plugins", "error", err)
		return false
	}
	for _, a := range active {
		for _, f := range p.pluginFiles {
			if a == f {
				return true
			}
		}
	}
	return false
}

func (p plugin) Deactivate(ctx context.Context) error {
	if p.wp == nil {
		return ErrUnavailable
	}
	active, err := p.wp.ActivePlugins(ctx)
	if err != nil {
		return err
	}

	kept := make([]string, 0, len(active))
	removed := false
	for _, a := range active {
		if p.owns(a) {
			removed = true
			continue
		}
		kept = append(kept, a)
	}
	if !removed {
		return nil
	}
	if err := p.wp.SetActivePlugins(ctx, kept); err != nil {
		return fmt.Errorf("failed to deactivate plugin: %w", err)
	}
	return nil
}

func (p plugin) owns(file string) bool {
	for _, f := range p.pluginFiles {
		if f == file {
			return true
		}
	}
	return false
}

func (p plugin) requireStore() error {
	if p.wp == nil {
		return ErrUnavailable
	}
	return nil
}
