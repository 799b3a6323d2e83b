package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"leadcapture/formbridge/internal/constants"
)

// ImportMapRepository persists the shortcode import map: keys of the form
// "{source}_{id}" or "{source}_hash_{hash}" pointing at local form ids.
type ImportMapRepository struct {
	options *OptionRepository
	mu      sync.Mutex
}

func NewImportMapRepository(options *OptionRepository) *ImportMapRepository {
	return &ImportMapRepository{options: options}
}

// Load returns the whole map; an unset option is an empty map
func (r *ImportMapRepository) Load(ctx context.Context) (map[string]uint, error) {
	raw, ok, err := r.options.Get(ctx, constants.OptionShortcodeImportMap)
	if err != nil {
		return nil, err
	}

	out := make(map[string]uint)
	if !ok || raw == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("failed to decode shortcode import map: %w", err)
	}
	return out, nil
}

// Save replaces the stored map
func (r *ImportMapRepository) Save(ctx context.Context, m map[string]uint) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to encode shortcode import map: %w", err)
	}
	return r.options.Set(ctx, constants.OptionShortcodeImportMap, string(data))
}

// Put adds or overwrites entries. Read-modify-write is serialized within the
// process only.
func (r *ImportMapRepository) Put(ctx context.Context, entries map[string]uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, err := r.Load(ctx)
	if err != nil {
		return err
	}
	for k, v := range entries {
		m[k] = v
	}
	return r.Save(ctx, m)
}

// Remove deletes each key whose stored target still equals the given form id
// and returns how many were deleted. A key re-pointed since the caller read
// the map is left alone.
func (r *ImportMapRepository) Remove(ctx context.Context, expected map[string]uint) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, err := r.Load(ctx)
	if err != nil {
		return 0, err
	}
	removed := 0
	for k, target := range expected {
		if current, ok := m[k]; ok && current == target {
			delete(m, k)
			removed++
		}
	}
	if removed == 0 {
		return 0, nil
	}
	return removed, r.Save(ctx, m)
}
