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

const GravityFormsKey = "gravityforms"

var gravityTypes = map[string]dtos.FieldType{
	"text":        dtos.FieldTypeText,
	"email":       dtos.FieldTypeEmail,
	"phone":       dtos.FieldTypeTel,
	"website":     dtos.FieldTypeURL,
	"number":      dtos.FieldTypeNumber,
	"textarea":    dtos.FieldTypeTextarea,
	"select":      dtos.FieldTypeSelect,
	"multiselect": dtos.FieldTypeSelect,
	"checkbox":    dtos.FieldTypeCheckbox,
	"radio":       dtos.FieldTypeRadio,
	"date":        dtos.FieldTypeDate,
	"hidden":      dtos.FieldTypeHidden,
	"consent":     dtos.FieldTypeCheckbox,
}

var gravityStructural = map[string]bool{
	"html":       true,
	"section":    true,
	"page":       true,
	"captcha":    true,
	"fileupload": true,
	"submit":     true,
}

// sub-input suffixes of the composite address field
var gravityAddressInputs = []struct {
	suffix string
	name   string
	label  string
}{
	{".1", catalog.AddressLine1, "Street Address"},
	{".2", catalog.AddressLine2, "Address Line 2"},
	{".3", catalog.City, "City"},
	{".4", catalog.State, "State / Province / Region"},
	{".5", catalog.PostalCode, "ZIP / Postal Code"},
	{".6", catalog.Country, "Country"},
}

type GravityInput struct {
	ID       flexString `json:"id"`
	Label    string     `json:"label"`
	IsHidden flexBool   `json:"isHidden"`
}

type GravityChoice struct {
	Text  string     `json:"text"`
	Value flexString `json:"value"`
}

// GravityField is one entry of display_meta.fields
type GravityField struct {
	ID          flexString      `json:"id"`
	Type        string          `json:"type"`
	Label       string          `json:"label"`
	AdminLabel  string          `json:"adminLabel"`
	IsRequired  flexBool        `json:"isRequired"`
	Placeholder string          `json:"placeholder"`
	Choices     []GravityChoice `json:"choices"`
	Inputs      []GravityInput  `json:"inputs"`
}

type gravityDisplayMeta struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Fields      []GravityField `json:"fields"`
}

// GravityFormsAdapter reads {prefix}gf_form with the display_meta JSON
type GravityFormsAdapter struct {
	plugin
}

func NewGravityFormsAdapter(wp WordPressStore) *GravityFormsAdapter {
	return &GravityFormsAdapter{plugin{
		wp:          wp,
		pluginFiles: []string{"gravityforms/gravityforms.php"},
	}}
}

func (a *GravityFormsAdapter) Key() string { return GravityFormsKey }
func (a *GravityFormsAdapter) Label() string { return "Gravity Forms" }
func (a *GravityFormsAdapter) ShortcodeTags() []string { return []string{"gravityform", "gravityforms"} }

func (a *GravityFormsAdapter) GetForms(ctx context.Context) ([]SourceForm, error) {
	if err := a.requireStore(); err != nil {
		return nil, err
	}
	rows, err := a.wp.GravityForms(ctx)
	if err != nil {
		return nil, err
	}

	forms := make([]SourceForm, 0, len(rows))
	for _, row := range rows {
		form, err := a.toSourceForm(row)
		if err != nil {
			// one broken form should not hide the others
			logging.Warn("skipping unreadable gravity form", "form_id", row.ID, "error", err)
			continue
		}
		forms = append(forms, *form)
	}
	return forms, nil
}

func (a *GravityFormsAdapter) GetForm(ctx context.Context, id string) (*SourceForm, error) {
	if err := a.requireStore(); err != nil {
		return nil, err
	}
	formID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil, nil
	}
	row, err := a.wp.GravityForm(ctx, formID)
	if err != nil || row == nil {
		return nil, err
	}
	return a.toSourceForm(*row)
}

func (a *GravityFormsAdapter) toSourceForm(row entities.WPGravityForm) (*SourceForm, error) {
	var meta gravityDisplayMeta
	if err := json.Unmarshal([]byte(row.DisplayMeta), &meta); err != nil {
		return nil, fmt.Errorf("invalid display_meta for form %d: %w", row.ID, err)
	}

	title := row.Title
	if title == "" {
		title = meta.Title
	}
	return &SourceForm{
		ID:          strconv.FormatInt(row.ID, 10),
		Title:       title,
		Description: meta.Description,
		Fields:      a.ParseFields(meta.Fields),
	}, nil
}

func (a *GravityFormsAdapter) Shortcode(form SourceForm) string {
	return fmt.Sprintf(`[gravityform id="%s" title="false" description="false"]`, form.ID)
}

func (a *GravityFormsAdapter) RefFromAttrs(attrs map[string]string) ShortcodeRef {
	return ShortcodeRef{ID: strings.TrimSpace(attrs["id"])}
}

// ParseFields expands the composite name and address fields
func (a *GravityFormsAdapter) ParseFields(raw []GravityField) []dtos.FormField {
	var fields []dtos.FormField
	for _, gf := range raw {
		switch gf.Type {
		case "name":
			fields = append(fields, gravityNameFields(gf)...)
		case "address":
			fields = append(fields, gravityAddressFields(gf)...)
		default:
			if f := a.ParseField(gf); f != nil {
				fields = append(fields, *f)
			}
		}
	}
	return UniqueNames(fields)
}

// ParseField maps a single, non-composite field. Layout fields and types
// with no form equivalent give nil.
func (a *GravityFormsAdapter) ParseField(gf GravityField) *dtos.FormField {
	if gravityStructural[gf.Type] {
		return nil
	}
	fieldType, ok := gravityTypes[gf.Type]
	if !ok {
		return nil
	}

	label := strings.TrimSpace(gf.Label)
	nameSource := gf.AdminLabel
	if nameSource == "" {
		nameSource = label
	}
	if label == "" {
		label = humanize(string(gf.ID))
	}

	field := dtos.FormField{
		Name:        fieldNameFromLabel(nameSource, string(gf.ID)),
		Label:       label,
		Type:        fieldType,
		Required:    bool(gf.IsRequired),
		Placeholder: gf.Placeholder,
	}

	if fieldType.HasOptions() {
		for _, c := range gf.Choices {
			value := string(c.Value)
			if value == "" {
				value = c.Text
			}
			field.Options = append(field.Options, dtos.FieldOption{Label: c.Text, Value: value})
		}
	}

	f := withGuess(field)
	return &f
}

func gravityNameFields(gf GravityField) []dtos.FormField {
	required := bool(gf.IsRequired)
	first := dtos.FormField{
		Name: catalog.FirstName, Label: "First Name", Type: dtos.FieldTypeText,
		Required: required, CRMMapping: catalog.FirstName,
	}
	last := dtos.FormField{
		Name: catalog.LastName, Label: "Last Name", Type: dtos.FieldTypeText,
		Required: required, CRMMapping: catalog.LastName,
	}

	// .3 is first, .6 is last; take their custom labels when present
	for _, in := range gf.Inputs {
		switch {
		case strings.HasSuffix(string(in.ID), ".3") && in.Label != "":
			first.Label = in.Label
		case strings.HasSuffix(string(in.ID), ".6") && in.Label != "":
			last.Label = in.Label
		}
	}
	return []dtos.FormField{first, last}
}

func gravityAddressFields(gf GravityField) []dtos.FormField {
	hidden := make(map[string]bool)
	labels := make(map[string]string)
	for _, in := range gf.Inputs {
		for _, ai := range gravityAddressInputs {
			if strings.HasSuffix(string(in.ID), ai.suffix) {
				hidden[ai.suffix] = bool(in.IsHidden)
				labels[ai.suffix] = in.Label
			}
		}
	}

	var fields []dtos.FormField
	for _, ai := range gravityAddressInputs {
		if hidden[ai.suffix] {
			continue
		}
		label := labels[ai.suffix]
		if label == "" {
			label = ai.label
		}
		fields = append(fields, dtos.FormField{
			Name:       ai.name,
			Label:      label,
			Type:       dtos.FieldTypeText,
			Required:   bool(gf.IsRequired) && ai.suffix != ".2",
			CRMMapping: ai.name,
		})
	}
	return fields
}
