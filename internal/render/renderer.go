// Package render turns a stored form definition into embeddable HTML.
package render

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"strings"

	"leadcapture/formbridge/internal/models/dtos"
)

//go:embed form.html.tmpl
var formTemplate string

//go:embed form_script.js
var formScript string

// Renderer is safe for concurrent use
type Renderer struct {
	tmpl       *template.Template
	submitBase string
}

// NewRenderer parses the embedded templates. submitBase is the URL prefix the
// form posts to, e.g. "/api/v1/submit".
func NewRenderer(submitBase string) (*Renderer, error) {
	tmpl, err := template.New("formbridge").Parse(formTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse form template: %w", err)
	}
	return &Renderer{
		tmpl:       tmpl,
		submitBase: strings.TrimRight(submitBase, "/"),
	}, nil
}

type fieldView struct {
	dtos.FormField
	ID            string
	LabelPosition string
}

type formView struct {
	FormID    uint
	DOMID     string
	Action    string
	Theme     string
	Config    dtos.FormConfig
	Styles    dtos.StyleOptions
	Fields    []fieldView
	CustomCSS template.CSS
	Script    template.JS
}

// RenderForm renders a form with its styles and submit script
func (r *Renderer) RenderForm(formID uint, cfg dtos.FormConfig) (string, error) {
	cfg = cfg.WithDefaults()

	domID := fmt.Sprintf("formbridge-form-%d", formID)
	labelPosition := cfg.Styles.LabelPosition
	if labelPosition == "" {
		labelPosition = "top"
	}
	theme := cfg.Styles.Theme
	if theme == "" {
		theme = "default"
	}

	fields := make([]fieldView, 0, len(cfg.Fields))
	for _, f := range cfg.Fields {
		fields = append(fields, fieldView{
			FormField:     f,
			ID:            fmt.Sprintf("%s-%s", domID, f.Name),
			LabelPosition: labelPosition,
		})
	}

	view := formView{
		FormID: formID,
		DOMID:  domID,
		Action: fmt.Sprintf("%s/%d", r.submitBase, formID),
		Theme:  theme,
		Config: cfg,
		Styles: cfg.Styles,
		Fields: fields,
		// custom CSS is authored by site admins
		CustomCSS: template.CSS(cfg.CustomCSS),
		Script:    template.JS(formScript),
	}

	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "form", view); err != nil {
		return "", fmt.Errorf("failed to render form %d: %w", formID, err)
	}
	return buf.String(), nil
}

// RenderNotice renders the diagnostic box shown to administrators
func (r *Renderer) RenderNotice(message string) string {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "notice", message); err != nil {
		return ""
	}
	return buf.String()
}
