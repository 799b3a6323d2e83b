// Package adapters reads forms built with third-party WordPress form plugins
// and normalizes them to the local field vocabulary.
package adapters

import (
	"context"
	"errors"
	"sort"

	"leadcapture/formbridge/internal/models/dtos"
	"leadcapture/formbridge/internal/models/entities"
)

// ErrUnavailable is returned when the source plugin is not active
var ErrUnavailable = errors.New("form plugin is not active")

// SourceForm is a foreign form normalized to local fields
type SourceForm struct {
	ID          string
	Title       string
	Description string
	// Hash is the plugin's stable form hash where it has one (CF7)
	Hash   string
	Fields []dtos.FormField
}

// ShortcodeRef is what a shortcode's attributes identify
type ShortcodeRef struct {
	ID   string
	Hash string
}

// Adapter is implemented once per supported form plugin
type Adapter interface {
	Key() string
	Label() string
	// ShortcodeTags are the tags the plugin registers on the host
	ShortcodeTags() []string
	IsAvailable(ctx context.Context) bool
	GetForms(ctx context.Context) ([]SourceForm, error)
	// GetForm returns nil, nil when the form does not exist
	GetForm(ctx context.Context, id string) (*SourceForm, error)
	// Shortcode is the tag a site would use to embed form
	Shortcode(form SourceForm) string
	RefFromAttrs(attrs map[string]string) ShortcodeRef
	// Deactivate removes the plugin from the host's active plugins
	Deactivate(ctx context.Context) error
}

// HashResolver is implemented by adapters that can turn a partial form hash
// back into a form id.
type HashResolver interface {
	ResolveHash(ctx context.Context, partial string) (string, bool, error)
}

// WordPressStore is the read access the adapters need to the host database
type WordPressStore interface {
	ActivePlugins(ctx context.Context) ([]string, error)
	SetActivePlugins(ctx context.Context, plugins []string) error
	PostsByType(ctx context.Context, postType string) ([]entities.WPPost, error)
	PostByID(ctx context.Context, id int64, postType string) (*entities.WPPost, error)
	PostMeta(ctx context.Context, postID int64, key string) (string, bool, error)
	PostIDByMetaPrefix(ctx context.Context, key, prefix string) (int64, bool, error)
	GravityForms(ctx context.Context) ([]entities.WPGravityForm, error)
	GravityForm(ctx context.Context, id int64) (*entities.WPGravityForm, error)
}

// Registry holds the adapters by key and by shortcode tag
type Registry struct {
	byKey map[string]Adapter
	byTag map[string]Adapter
	keys  []string
}

func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{
		byKey: make(map[string]Adapter),
		byTag: make(map[string]Adapter),
	}
	for _, a := range adapters {
		r.byKey[a.Key()] = a
		r.keys = append(r.keys, a.Key())
		for _, tag := range a.ShortcodeTags() {
			r.byTag[tag] = a
		}
	}
	sort.Strings(r.keys)
	return r
}

// NewWordPressRegistry builds the three plugin adapters over one store. A nil
// store yields adapters that always report unavailable.
func NewWordPressRegistry(wp WordPressStore) *Registry {
	return NewRegistry(
		NewCF7Adapter(wp),
		NewGravityFormsAdapter(wp),
		NewWPFormsAdapter(wp),
	)
}

func (r *Registry) Get(key string) (Adapter, bool) {
	a, ok := r.byKey[key]
	return a, ok
}

func (r *Registry) ByTag(tag string) (Adapter, bool) {
	a, ok := r.byTag[tag]
	return a, ok
}

// All returns the adapters sorted by key
func (r *Registry) All() []Adapter {
	out := make([]Adapter, 0, len(r.keys))
	for _, k := range r.keys {
		out = append(out, r.byKey[k])
	}
	return out
}

// Tags returns every registered shortcode tag, sorted
func (r *Registry) Tags() []string {
	out := make([]string, 0, len(r.byTag))
	for tag := range r.byTag {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}
