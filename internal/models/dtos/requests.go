package dtos

type CreateFormRequest struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	FormConfig  FormConfig `json:"form_config"`
	CRMFormID   string     `json:"crm_form_id"`
	Status      string     `json:"status"`
}

// UpdateFormRequest replaces the whole form; edits never patch single fields
type UpdateFormRequest = CreateFormRequest

type GenerateFormRequest struct {
	Prompt string `json:"prompt"`
}

type RefineFormRequest struct {
	FormConfig  FormConfig `json:"form_config"`
	Instruction string     `json:"instruction"`
}

type TestConnectionRequest struct {
	CRMFormID string `json:"crm_form_id"`
}

type ImportFormRequest struct {
	Source           string `json:"source"`
	FormID           string `json:"form_id"`
	UseSameShortcode bool   `json:"use_same_shortcode"`
	CRMFormID        string `json:"crm_form_id"`
}

type DeactivatePluginRequest struct {
	Source string `json:"source"`
}

type RenderShortcodeRequest struct {
	Tag            string            `json:"tag"`
	Attrs          map[string]string `json:"attrs"`
	OriginalOutput *string           `json:"original_output,omitempty"`
}

type RenderContentRequest struct {
	Content string `json:"content"`
}

type UpdateSettingsRequest struct {
	Settings map[string]string `json:"settings"`
}
