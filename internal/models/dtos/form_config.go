package dtos

// FieldType is the common field vocabulary every form source is normalized to
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeEmail    FieldType = "email"
	FieldTypeTel      FieldType = "tel"
	FieldTypeURL      FieldType = "url"
	FieldTypeNumber   FieldType = "number"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeSelect   FieldType = "select"
	FieldTypeCheckbox FieldType = "checkbox"
	FieldTypeRadio    FieldType = "radio"
	FieldTypeDate     FieldType = "date"
	FieldTypeHidden   FieldType = "hidden"
)

var fieldTypes = map[FieldType]bool{
	FieldTypeText:     true,
	FieldTypeEmail:    true,
	FieldTypeTel:      true,
	FieldTypeURL:      true,
	FieldTypeNumber:   true,
	FieldTypeTextarea: true,
	FieldTypeSelect:   true,
	FieldTypeCheckbox: true,
	FieldTypeRadio:    true,
	FieldTypeDate:     true,
	FieldTypeHidden:   true,
}

func (t FieldType) Valid() bool {
	return fieldTypes[t]
}

// HasOptions reports whether the type carries an options list
func (t FieldType) HasOptions() bool {
	return t == FieldTypeSelect || t == FieldTypeCheckbox || t == FieldTypeRadio
}

type FieldOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type FormField struct {
	Name        string        `json:"name"`
	Label       string        `json:"label"`
	Type        FieldType     `json:"type"`
	Required    bool          `json:"required"`
	Placeholder string        `json:"placeholder,omitempty"`
	Options     []FieldOption `json:"options,omitempty"`
	CRMMapping  string        `json:"crm_mapping,omitempty"`
}

type StyleOptions struct {
	Theme           string `json:"theme,omitempty"`
	PrimaryColor    string `json:"primary_color,omitempty"`
	ButtonColor     string `json:"button_color,omitempty"`
	BackgroundColor string `json:"background_color,omitempty"`
	TextColor       string `json:"text_color,omitempty"`
	FontFamily      string `json:"font_family,omitempty"`
	BorderRadius    string `json:"border_radius,omitempty"`
	LabelPosition   string `json:"label_position,omitempty"`
}

type FormConfig struct {
	FormName         string       `json:"form_name"`
	FormDescription  string       `json:"form_description"`
	Fields           []FormField  `json:"fields"`
	SubmitButtonText string       `json:"submit_button_text"`
	SuccessMessage   string       `json:"success_message"`
	ErrorMessage     string       `json:"error_message"`
	Styles           StyleOptions `json:"styles"`
	CustomCSS        string       `json:"custom_css,omitempty"`
}

const (
	DefaultSubmitButtonText = "Submit"
	DefaultSuccessMessage   = "Thank you! Your submission has been received."
	DefaultErrorMessage     = "Something went wrong. Please try again."
)

// WithDefaults fills the user-facing texts left empty
func (c FormConfig) WithDefaults() FormConfig {
	if c.SubmitButtonText == "" {
		c.SubmitButtonText = DefaultSubmitButtonText
	}
	if c.SuccessMessage == "" {
		c.SuccessMessage = DefaultSuccessMessage
	}
	if c.ErrorMessage == "" {
		c.ErrorMessage = DefaultErrorMessage
	}
	if c.Fields == nil {
		c.Fields = []FormField{}
	}
	return c
}
