package shortcode

import (
	"context"
	"regexp"
	"sort"
	"strings"
)

var attrPattern = regexp.MustCompile(`([\w-]+)\s*=\s*"([^"]*)"|([\w-]+)\s*=\s*'([^']*)'|([\w-]+)\s*=\s*([^\s'"\]]+)`)

// ParseAttrs reads the name=value pairs of a shortcode. Names are lowercased;
// positional attributes are ignored.
func ParseAttrs(text string) map[string]string {
	attrs := make(map[string]string)
	for _, m := range attrPattern.FindAllStringSubmatch(text, -1) {
		switch {
		case m[1] != "":
			attrs[strings.ToLower(m[1])] = m[2]
		case m[3] != "":
			attrs[strings.ToLower(m[3])] = m[4]
		case m[5] != "":
			attrs[strings.ToLower(m[5])] = m[6]
		}
	}
	return attrs
}

// tagPattern matches [tag attrs] and [tag attrs /]. A doubled bracket
// ([[tag]]) escapes the shortcode.
func tagPattern(tags []string) *regexp.Regexp {
	sorted := make([]string, len(tags))
	copy(sorted, tags)
	// longest first so gravityforms wins over gravityform
	sort.Slice(sorted, func(a, b int) bool { return len(sorted[a]) > len(sorted[b]) })

	quoted := make([]string, len(sorted))
	for n, t := range sorted {
		quoted[n] = regexp.QuoteMeta(t)
	}
	return regexp.MustCompile(`\[(\[?)(` + strings.Join(quoted, "|") + `)((?:\s[^\]]*?)?)\s*/?\](\]?)`)
}

// ExpandContent rewrites every registered shortcode in a page body. Tags of an
// active source plugin without a live mapping are left for the host to
// render.
func (i *Interceptor) ExpandContent(ctx context.Context, content string, admin bool) string {
	if !strings.Contains(content, "[") {
		return content
	}

	return i.pattern.ReplaceAllStringFunc(content, func(match string) string {
		m := i.pattern.FindStringSubmatch(match)
		if m[1] == "[" && m[4] == "]" {
			return match[1 : len(match)-1]
		}

		html, ok := i.expandOne(ctx, m[2], ParseAttrs(m[3]), admin)
		if !ok {
			return match
		}
		return m[1] + html + m[4]
	})
}

// expandOne returns false when the shortcode should stay in the content
func (i *Interceptor) expandOne(ctx context.Context, tag string, attrs map[string]string, admin bool) (string, bool) {
	a, ok := i.registry.ByTag(tag)
	if !ok || !a.IsAvailable(ctx) {
		return i.Render(ctx, tag, attrs, admin), true
	}

	html, ok := i.renderMapped(ctx, a, tag, attrs)
	if !ok {
		i.record(tag, OutcomePassthrough)
		return "", false
	}
	i.record(tag, OutcomeSubstituted)
	return html, true
}
