package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"leadcapture/formbridge/internal/catalog"
	"leadcapture/formbridge/internal/logging"
	"leadcapture/formbridge/internal/models/dtos"
	"leadcapture/formbridge/internal/models/entities"
)

const (
	WPFormsKey      = "wpforms"
	wpformsPostType = "wpforms"
)

var wpformsTypes = map[string]dtos.FieldType{
	"text":          dtos.FieldTypeText,
	"email":         dtos.FieldTypeEmail,
	"phone":         dtos.FieldTypeTel,
	"url":           dtos.FieldTypeURL,
	"number":        dtos.FieldTypeNumber,
	"number-slider": dtos.FieldTypeNumber,
	"textarea":      dtos.FieldTypeTextarea,
	"select":        dtos.FieldTypeSelect,
	"checkbox":      dtos.FieldTypeCheckbox,
	"radio":         dtos.FieldTypeRadio,
	"date-time":     dtos.FieldTypeDate,
	"hidden":        dtos.FieldTypeHidden,
	"gdpr-checkbox": dtos.FieldTypeCheckbox,
}

var wpformsStructural = map[string]bool{
	"html":          true,
	"divider":       true,
	"pagebreak":     true,
	"captcha":       true,
	"content":       true,
	"file-upload":   true,
	"entry-preview": true,
}

var wpformsAddressParts = []struct {
	key   string
	name  string
	label string
}{
	{"address1", catalog.AddressLine1, "Address Line 1"},
	{"address2", catalog.AddressLine2, "Address Line 2"},
	{"city", catalog.City, "City"},
	{"state", catalog.State, "State"},
	{"postal", catalog.PostalCode, "Zip Code"},
	{"country", catalog.Country, "Country"},
}

type WPFormsChoice struct {
	Label string     `json:"label"`
	Value flexString `json:"value"`
}

// WPFormsField is one entry of the form's fields list
type WPFormsField struct {
	ID          flexString      `json:"id"`
	Type        string          `json:"type"`
	Label       string          `json:"label"`
	Required    flexBool        `json:"required"`
	Placeholder string          `json:"placeholder"`
	Format      string          `json:"format"`
	Choices     json.RawMessage `json:"choices"`

	// address sub-field toggles
	Address2Hide flexBool `json:"address2_hide"`
	CountryHide  flexBool `json:"country_hide"`
	PostalHide   flexBool `json:"postal_hide"`
}

type wpformsContent struct {
	ID       flexString      `json:"id"`
	Fields   json.RawMessage `json:"fields"`
	Settings struct {
		FormTitle string `json:"form_title"`
		FormDesc  string `json:"form_desc"`
	} `json:"settings"`
}

// WPFormsAdapter reads wpforms posts whose post_content is the form JSON
type WPFormsAdapter struct {
	plugin
}

func NewWPFormsAdapter(wp WordPressStore) *WPFormsAdapter {
	return &WPFormsAdapter{plugin{
		wp:          wp,
		pluginFiles: []string{"wpforms-lite/wpforms.php", "wpforms/wpforms.php"},
	}}
}

func (a *WPFormsAdapter) Key() string { return WPFormsKey }
func (a *WPFormsAdapter) Label() string { return "WPForms" }
func (a *WPFormsAdapter) ShortcodeTags() []string { return []string{"wpforms"} }

func (a *WPFormsAdapter) GetForms(ctx context.Context) ([]SourceForm, error) {
	if err := a.requireStore(); err != nil {
		return nil, err
	}
	posts, err := a.wp.PostsByType(ctx, wpformsPostType)
	if err != nil {
		return nil, err
	}

	forms := make([]SourceForm, 0, len(posts))
	for _, p := range posts {
		form, err := a.toSourceForm(p)
		if err != nil {
			logging.Warn("skipping unreadable wpforms form", "form_id", p.ID, "error", err)
			continue
		}
		forms = append(forms, *form)
	}
	return forms, nil
}

func (a *WPFormsAdapter) GetForm(ctx context.Context, id string) (*SourceForm, error) {
	if err := a.requireStore(); err != nil {
		return nil, err
	}
	postID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil, nil
	}
	post, err := a.wp.PostByID(ctx, postID, wpformsPostType)
	if err != nil || post == nil {
		return nil, err
	}
	return a.toSourceForm(*post)
}

func (a *WPFormsAdapter) toSourceForm(p entities.WPPost) (*SourceForm, error) {
	var content wpformsContent
	if err := json.Unmarshal([]byte(p.PostContent), &content); err != nil {
		return nil, fmt.Errorf("invalid form JSON for post %d: %w", p.ID, err)
	}

	raw, err := orderedElements(content.Fields)
	if err != nil {
		return nil, fmt.Errorf("invalid fields for post %d: %w", p.ID, err)
	}
	var wfFields []WPFormsField
	for _, r := range raw {
		var f WPFormsField
		if err := json.Unmarshal(r, &f); err != nil {
			return nil, fmt.Errorf("invalid field in post %d: %w", p.ID, err)
		}
		wfFields = append(wfFields, f)
	}

	title := content.Settings.FormTitle
	if title == "" {
		title = p.PostTitle
	}
	return &SourceForm{
		ID:          strconv.FormatInt(p.ID, 10),
		Title:       title,
		Description: content.Settings.FormDesc,
		Fields:      a.ParseFields(wfFields),
	}, nil
}

func (a *WPFormsAdapter) Shortcode(form SourceForm) string {
	return fmt.Sprintf(`[wpforms id="%s"]`, form.ID)
}

func (a *WPFormsAdapter) RefFromAttrs(attrs map[string]string) ShortcodeRef {
	return ShortcodeRef{ID: strings.TrimSpace(attrs["id"])}
}

// ParseFields expands the composite name and address fields
func (a *WPFormsAdapter) ParseFields(raw []WPFormsField) []dtos.FormField {
	var fields []dtos.FormField
	for _, wf := range raw {
		switch wf.Type {
		case "name":
			fields = append(fields, wpformsNameFields(wf)...)
		case "address":
			fields = append(fields, wpformsAddressFields(wf)...)
		default:
			if f := a.ParseField(wf); f != nil {
				fields = append(fields, *f)
			}
		}
	}
	return UniqueNames(fields)
}

// ParseField maps a single, non-composite field. Layout fields and types
// with no form equivalent give nil.
func (a *WPFormsAdapter) ParseField(wf WPFormsField) *dtos.FormField {
	if wpformsStructural[wf.Type] {
		return nil
	}
	fieldType, ok := wpformsTypes[wf.Type]
	if !ok {
		return nil
	}

	label := strings.TrimSpace(wf.Label)
	field := dtos.FormField{
		Name:        fieldNameFromLabel(label, string(wf.ID)),
		Label:       label,
		Type:        fieldType,
		Required:    bool(wf.Required),
		Placeholder: wf.Placeholder,
	}
	if field.Label == "" {
		field.Label = humanize(field.Name)
	}

	if fieldType.HasOptions() {
		choices, err := orderedElements(wf.Choices)
		if err != nil {
			logging.Warn("ignoring unreadable wpforms choices", "field_id", wf.ID, "error", err)
		}
		for _, raw := range choices {
			var c WPFormsChoice
			if err := json.Unmarshal(raw, &c); err != nil {
				continue
			}
			value := string(c.Value)
			if value == "" {
				value = c.Label
			}
			field.Options = append(field.Options, dtos.FieldOption{Label: c.Label, Value: value})
		}
	}

	f := withGuess(field)
	return &f
}

// wpformsNameFields honours the name format: "simple" keeps a single field
// that the mapping engine splits at submit time. WPForms defaults to
// first-last.
func wpformsNameFields(wf WPFormsField) []dtos.FormField {
	required := bool(wf.Required)
	label := strings.TrimSpace(wf.Label)
	if label == "" {
		label = "Name"
	}

	switch wf.Format {
	case "simple":
		return []dtos.FormField{{
			Name: "name", Label: label, Type: dtos.FieldTypeText,
			Required: required, Placeholder: wf.Placeholder, CRMMapping: catalog.FirstName,
		}}
	case "first-middle-last":
		return []dtos.FormField{
			{Name: catalog.FirstName, Label: "First", Type: dtos.FieldTypeText, Required: required, CRMMapping: catalog.FirstName},
			{Name: "middle_name", Label: "Middle", Type: dtos.FieldTypeText},
			{Name: catalog.LastName, Label: "Last", Type: dtos.FieldTypeText, Required: required, CRMMapping: catalog.LastName},
		}
	default:
		return []dtos.FormField{
			{Name: catalog.FirstName, Label: "First", Type: dtos.FieldTypeText, Required: required, CRMMapping: catalog.FirstName},
			{Name: catalog.LastName, Label: "Last", Type: dtos.FieldTypeText, Required: required, CRMMapping: catalog.LastName},
		}
	}
}

func wpformsAddressFields(wf WPFormsField) []dtos.FormField {
	hidden := map[string]bool{
		"address2": bool(wf.Address2Hide),
		"country":  bool(wf.CountryHide),
		"postal":   bool(wf.PostalHide),
	}

	var fields []dtos.FormField
	for _, part := range wpformsAddressParts {
		if hidden[part.key] {
			continue
		}
		fields = append(fields, dtos.FormField{
			Name:       part.name,
			Label:      part.label,
			Type:       dtos.FieldTypeText,
			Required:   bool(wf.Required) && part.key != "address2",
			CRMMapping: part.name,
		})
	}
	return fields
}
