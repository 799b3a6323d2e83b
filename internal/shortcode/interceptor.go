// Package shortcode serves the embed tags of third-party form plugins with
// locally imported forms.
package shortcode

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"leadcapture/formbridge/internal/adapters"
	"leadcapture/formbridge/internal/constants"
	"leadcapture/formbridge/internal/db/repositories"
	"leadcapture/formbridge/internal/logging"
	"leadcapture/formbridge/internal/metrics"
	"leadcapture/formbridge/internal/models/dtos"
	"leadcapture/formbridge/internal/render"
)

// FormRenderer renders a local form. ok is false when the form is missing or
// inactive.
type FormRenderer interface {
	RenderByID(ctx context.Context, id uint) (html string, ok bool, err error)
}

// Resolution outcomes recorded in formbridge_shortcode_resolutions_total
const (
	OutcomeSubstituted = "substituted"
	OutcomeRendered    = "rendered"
	OutcomePassthrough = "passthrough"
	OutcomeNotice      = "notice"
	OutcomeEmpty       = "empty"
)

// Interceptor is the per-tag render dispatch table. It is built once at
// startup from the adapter registry plus the service's own tag.
type Interceptor struct {
	registry  *adapters.Registry
	importMap *repositories.ImportMapRepository
	forms     *repositories.FormRepository
	renderer  FormRenderer
	notices   *render.Renderer
	metrics   *metrics.MetricsRegistry
	tags      []string
	pattern   *regexp.Regexp
}

func NewInterceptor(
	registry *adapters.Registry,
	importMap *repositories.ImportMapRepository,
	forms *repositories.FormRepository,
	renderer FormRenderer,
	notices *render.Renderer,
	metricsReg *metrics.MetricsRegistry,
) *Interceptor {
	tags := append([]string{constants.ShortcodeTag}, registry.Tags()...)
	return &Interceptor{
		registry:  registry,
		importMap: importMap,
		forms:     forms,
		renderer:  renderer,
		notices:   notices,
		metrics:   metricsReg,
		tags:      tags,
		pattern:   tagPattern(tags),
	}
}

// Tags lists every tag the interceptor answers for
func (i *Interceptor) Tags() []string {
	out := make([]string, len(i.tags))
	copy(out, i.tags)
	return out
}

// Handles reports whether tag is registered
func (i *Interceptor) Handles(tag string) bool {
	if tag == constants.ShortcodeTag {
		return true
	}
	_, ok := i.registry.ByTag(tag)
	return ok
}

// MappingKey is the import map key for a source form id
func MappingKey(source, id string) string {
	return source + "_" + id
}

// HashMappingKey is the import map key for a source form hash
func HashMappingKey(source, hash string) string {
	return source + "_hash_" + hash
}

// Resolve finds the local form a foreign shortcode points at. The lookup
// order is exact id key, exact hash key, hash prefix match in either
// direction, then the adapter's own hash lookup when it has one.
func (i *Interceptor) Resolve(ctx context.Context, a adapters.Adapter, ref adapters.ShortcodeRef) (uint, bool, error) {
	m, err := i.importMap.Load(ctx)
	if err != nil {
		return 0, false, err
	}
	source := a.Key()

	if ref.ID != "" {
		if id, ok := m[MappingKey(source, ref.ID)]; ok {
			return id, true, nil
		}
	}
	if ref.Hash == "" {
		return 0, false, nil
	}

	if id, ok := m[HashMappingKey(source, ref.Hash)]; ok {
		return id, true, nil
	}

	prefix := HashMappingKey(source, "")
	keys := make([]string, 0, len(m))
	for k := range m {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		stored := strings.TrimPrefix(k, prefix)
		if stored == "" {
			continue
		}
		if strings.HasPrefix(stored, ref.Hash) || strings.HasPrefix(ref.Hash, stored) {
			return m[k], true, nil
		}
	}

	resolver, ok := a.(adapters.HashResolver)
	if !ok {
		return 0, false, nil
	}
	postID, found, err := resolver.ResolveHash(ctx, ref.Hash)
	if err != nil || !found {
		return 0, false, err
	}
	id, ok := m[MappingKey(source, postID)]
	return id, ok, nil
}

// FilterOutput runs after the source plugin rendered its own shortcode. The
// host output is replaced when a live mapping exists and returned unchanged
// otherwise.
func (i *Interceptor) FilterOutput(ctx context.Context, tag string, attrs map[string]string, original string) string {
	a, ok := i.registry.ByTag(tag)
	if !ok {
		return original
	}

	html, ok := i.renderMapped(ctx, a, tag, attrs)
	if !ok {
		i.record(tag, OutcomePassthrough)
		return original
	}
	i.record(tag, OutcomeSubstituted)
	return html
}

// Render serves a tag whose source plugin is not active, and the service's
// own tag. When nothing resolves administrators get a notice and visitors an
// empty string.
func (i *Interceptor) Render(ctx context.Context, tag string, attrs map[string]string, admin bool) string {
	if tag == constants.ShortcodeTag {
		return i.renderOwn(ctx, attrs, admin)
	}

	a, ok := i.registry.ByTag(tag)
	if !ok {
		return i.notFound(tag, fmt.Sprintf("[%s] is not a supported shortcode.", tag), admin)
	}

	html, ok := i.renderMapped(ctx, a, tag, attrs)
	if !ok {
		ref := a.RefFromAttrs(attrs)
		ident := ref.ID
		if ident == "" {
			ident = ref.Hash
		}
		return i.notFound(tag, fmt.Sprintf(
			"No imported form is mapped to [%s id=%q]. Import the %s form with the same shortcode or remove it from this page.",
			tag, ident, a.Label(),
		), admin)
	}
	i.record(tag, OutcomeRendered)
	return html
}

// Handle dispatches one shortcode the way the host would: through the output
// filter when the source plugin is active and has rendered, through Render
// otherwise.
func (i *Interceptor) Handle(ctx context.Context, tag string, attrs map[string]string, original *string, admin bool) string {
	if tag != constants.ShortcodeTag && original != nil {
		if a, ok := i.registry.ByTag(tag); ok && a.IsAvailable(ctx) {
			return i.FilterOutput(ctx, tag, attrs, *original)
		}
	}
	return i.Render(ctx, tag, attrs, admin)
}

func (i *Interceptor) renderOwn(ctx context.Context, attrs map[string]string, admin bool) string {
	tag := constants.ShortcodeTag
	raw := strings.TrimSpace(attrs["id"])
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return i.notFound(tag, fmt.Sprintf("[%s] needs a numeric id attribute.", tag), admin)
	}

	html, ok, err := i.renderer.RenderByID(ctx, uint(id))
	if err != nil {
		logging.Error("Failed to render form for shortcode", "tag", tag, "form_id", id, "error", err)
	}
	if err != nil || !ok {
		return i.notFound(tag, fmt.Sprintf("Form %d does not exist or is inactive.", id), admin)
	}
	i.record(tag, OutcomeRendered)
	return html
}

// renderMapped resolves and renders; ok is false when no live form backs the
// shortcode. Errors are logged and treated as unresolved.
func (i *Interceptor) renderMapped(ctx context.Context, a adapters.Adapter, tag string, attrs map[string]string) (string, bool) {
	ref := a.RefFromAttrs(attrs)
	formID, ok, err := i.Resolve(ctx, a, ref)
	if err != nil {
		logging.Warn("Shortcode resolution failed", "tag", tag, "source", a.Key(), "ref_id", ref.ID, "ref_hash", ref.Hash, "error", err)
		return "", false
	}
	if !ok {
		return "", false
	}

	html, live, err := i.renderer.RenderByID(ctx, formID)
	if err != nil {
		logging.Error("Failed to render mapped form", "tag", tag, "form_id", formID, "error", err)
		return "", false
	}
	if !live {
		logging.Debug("Shortcode mapping points at a missing form", "tag", tag, "form_id", formID)
		return "", false
	}
	return html, true
}

func (i *Interceptor) notFound(tag, message string, admin bool) string {
	if !admin {
		i.record(tag, OutcomeEmpty)
		return ""
	}
	i.record(tag, OutcomeNotice)
	return i.notices.RenderNotice(message)
}

func (i *Interceptor) record(tag, outcome string) {
	if !i.Handles(tag) {
		tag = "unknown"
	}
	i.metrics.ShortcodeResolutionsTotal.WithLabelValues(tag, outcome).Inc()
}

// Cleanup purges mappings whose target form no longer exists
func (i *Interceptor) Cleanup(ctx context.Context) (int, error) {
	entries, err := i.Mappings(ctx)
	if err != nil {
		return 0, err
	}

	stale := make(map[string]uint)
	for _, e := range entries {
		if !e.TargetExists {
			stale[e.Key] = e.TargetFormID
		}
	}
	if len(stale) == 0 {
		return 0, nil
	}

	removed, err := i.importMap.Remove(ctx, stale)
	if err != nil {
		return 0, err
	}
	logging.Info("Purged stale shortcode mappings", "removed", removed, "candidates", len(stale))
	return removed, nil
}

// Mappings lists the import map sorted by key, flagging dead targets
func (i *Interceptor) Mappings(ctx context.Context) ([]dtos.ImportMappingEntry, error) {
	m, err := i.importMap.Load(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(m))
	keys := make([]string, 0, len(m))
	for k, id := range m {
		keys = append(keys, k)
		ids = append(ids, id)
	}
	sort.Strings(keys)

	existing, err := i.forms.ExistingIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]dtos.ImportMappingEntry, 0, len(keys))
	for _, k := range keys {
		out = append(out, dtos.ImportMappingEntry{
			Key:          k,
			TargetFormID: m[k],
			TargetExists: existing[m[k]],
		})
	}
	return out, nil
}
