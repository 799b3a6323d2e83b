package adapters

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"leadcapture/formbridge/internal/models/dtos"
	"leadcapture/formbridge/internal/models/entities"
)

const (
	CF7Key      = "cf7"
	cf7PostType = "wpcf7_contact_form"
	cf7HashMeta = "_hash"
	cf7FormMeta = "_form"
)

var (
	// [type name ...] or [type* name ...]; tags without a name (submit) never match
	cf7TagPattern    = regexp.MustCompile(`\[([a-zA-Z_]+)(\*?)\s+([a-zA-Z0-9_\-]+)([^\]]*)\]`)
	cf7QuotedPattern = regexp.MustCompile(`"([^"]*)"`)
	cf7PlaceholderRe = regexp.MustCompile(`placeholder\s+"([^"]*)"`)
)

var cf7Types = map[string]dtos.FieldType{
	"text":       dtos.FieldTypeText,
	"email":      dtos.FieldTypeEmail,
	"tel":        dtos.FieldTypeTel,
	"url":        dtos.FieldTypeURL,
	"number":     dtos.FieldTypeNumber,
	"range":      dtos.FieldTypeNumber,
	"textarea":   dtos.FieldTypeTextarea,
	"select":     dtos.FieldTypeSelect,
	"checkbox":   dtos.FieldTypeCheckbox,
	"radio":      dtos.FieldTypeRadio,
	"acceptance": dtos.FieldTypeCheckbox,
	"date":       dtos.FieldTypeDate,
	"hidden":     dtos.FieldTypeHidden,
}

// CF7Tag is one form-tag from a Contact Form 7 template
type CF7Tag struct {
	Type     string
	Required bool
	Name     string
	Rest     string
}

// CF7Adapter reads Contact Form 7 forms: wpcf7_contact_form posts with the
// template in the _form post meta.
type CF7Adapter struct {
	plugin
}

func NewCF7Adapter(wp WordPressStore) *CF7Adapter {
	return &CF7Adapter{plugin{
		wp:          wp,
		pluginFiles: []string{"contact-form-7/wp-contact-form-7.php"},
	}}
}

func (a *CF7Adapter) Key() string { return CF7Key }
func (a *CF7Adapter) Label() string { return "Contact Form 7" }
func (a *CF7Adapter) ShortcodeTags() []string { return []string{"contact-form-7"} }

func (a *CF7Adapter) GetForms(ctx context.Context) ([]SourceForm, error) {
	if err := a.requireStore(); err != nil {
		return nil, err
	}
	posts, err := a.wp.PostsByType(ctx, cf7PostType)
	if err != nil {
		return nil, err
	}

	forms := make([]SourceForm, 0, len(posts))
	for _, p := range posts {
		form, err := a.load(ctx, p)
		if err != nil {
			return nil, err
		}
		forms = append(forms, *form)
	}
	return forms, nil
}

func (a *CF7Adapter) GetForm(ctx context.Context, id string) (*SourceForm, error) {
	if err := a.requireStore(); err != nil {
		return nil, err
	}
	postID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil, nil
	}
	post, err := a.wp.PostByID(ctx, postID, cf7PostType)
	if err != nil || post == nil {
		return nil, err
	}
	return a.load(ctx, *post)
}

func (a *CF7Adapter) load(ctx context.Context, p entities.WPPost) (*SourceForm, error) {
	template, _, err := a.wp.PostMeta(ctx, p.ID, cf7FormMeta)
	if err != nil {
		return nil, err
	}
	hash, _, err := a.wp.PostMeta(ctx, p.ID, cf7HashMeta)
	if err != nil {
		return nil, err
	}
	if template == "" {
		// older installs keep the template in post_content
		template = p.PostContent
	}

	return &SourceForm{
		ID:          strconv.FormatInt(p.ID, 10),
		Title:       p.PostTitle,
		Description: p.PostExcerpt,
		Hash:        hash,
		Fields:      a.ParseFields(template),
	}, nil
}

// ResolveHash maps a (possibly shortened) form hash to the post id
func (a *CF7Adapter) ResolveHash(ctx context.Context, partial string) (string, bool, error) {
	if err := a.requireStore(); err != nil {
		return "", false, err
	}
	id, ok, err := a.wp.PostIDByMetaPrefix(ctx, cf7HashMeta, partial)
	if err != nil || !ok {
		return "", false, err
	}
	return strconv.FormatInt(id, 10), true, nil
}

// Shortcode uses the 7-character hash prefix CF7 itself prints
func (a *CF7Adapter) Shortcode(form SourceForm) string {
	id := form.ID
	if len(form.Hash) >= 7 {
		id = form.Hash[:7]
	}
	return fmt.Sprintf(`[contact-form-7 id="%s" title="%s"]`, id, strings.ReplaceAll(form.Title, `"`, ""))
}

// RefFromAttrs: a numeric id is a post id, anything else a hash prefix
func (a *CF7Adapter) RefFromAttrs(attrs map[string]string) ShortcodeRef {
	id := strings.TrimSpace(attrs["id"])
	if isDigits(id) {
		return ShortcodeRef{ID: id}
	}
	return ShortcodeRef{Hash: id}
}

// ParseCF7Tags extracts the named form-tags of a template in order
func ParseCF7Tags(template string) []CF7Tag {
	matches := cf7TagPattern.FindAllStringSubmatch(template, -1)
	tags := make([]CF7Tag, 0, len(matches))
	for _, m := range matches {
		tags = append(tags, CF7Tag{
			Type:     strings.ToLower(m[1]),
			Required: m[2] == "*",
			Name:     m[3],
			Rest:     m[4],
		})
	}
	return tags
}

func (a *CF7Adapter) ParseFields(template string) []dtos.FormField {
	var fields []dtos.FormField
	for _, tag := range ParseCF7Tags(template) {
		if f := a.ParseField(tag); f != nil {
			fields = append(fields, *f)
		}
	}
	return UniqueNames(fields)
}

// ParseField returns nil for tags with no local counterpart (submit, file,
// quiz, captcha).
func (a *CF7Adapter) ParseField(tag CF7Tag) *dtos.FormField {
	fieldType, ok := cf7Types[tag.Type]
	if !ok {
		return nil
	}

	field := dtos.FormField{
		Name:     tag.Name,
		Label:    humanize(tag.Name),
		Type:     fieldType,
		Required: tag.Required,
	}

	rest := tag.Rest
	if m := cf7PlaceholderRe.FindStringSubmatch(rest); m != nil {
		field.Placeholder = m[1]
		rest = strings.Replace(rest, m[0], "", 1)
	}

	if fieldType.HasOptions() {
		for _, q := range cf7QuotedPattern.FindAllStringSubmatch(rest, -1) {
			// "Label|value" pipes
			label, value, piped := strings.Cut(q[1], "|")
			if !piped {
				value = label
			}
			field.Options = append(field.Options, dtos.FieldOption{Label: label, Value: value})
		}
	} else if field.Placeholder == "" && fieldType != dtos.FieldTypeHidden {
		// a bare quoted value is CF7's default text, used as placeholder
		if m := cf7QuotedPattern.FindStringSubmatch(rest); m != nil {
			field.Placeholder = m[1]
		}
	}

	if tag.Type == "acceptance" {
		field.Required = !strings.Contains(rest, "optional")
	}

	f := withGuess(field)
	return &f
}
