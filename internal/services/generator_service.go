package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"leadcapture/formbridge/internal/adapters"
	"leadcapture/formbridge/internal/catalog"
	"leadcapture/formbridge/internal/common"
	"leadcapture/formbridge/internal/constants"
	"leadcapture/formbridge/internal/logging"
	"leadcapture/formbridge/internal/models/dtos"
	"leadcapture/formbridge/internal/providers"
)

const generatorSystemPrompt = `You design lead-capture web forms. Answer with one JSON object and nothing else:
{"form_name": string, "form_description": string, "submit_button_text": string,
 "success_message": string, "error_message": string,
 "fields": [{"name": snake_case string, "label": string, "type": one of %s,
   "required": bool, "placeholder": string, "options": [{"label": string, "value": string}],
   "crm_mapping": one of %s or ""}],
 "styles": {"theme": string, "primary_color": "#rrggbb", "button_color": "#rrggbb"}}
Only select, radio and checkbox fields have options. Use full_name for a single name field.`

var (
	codeFencePattern   = regexp.MustCompile("(?s)^\\s*```[a-zA-Z]*\\s*(.*?)\\s*```\\s*$")
	nonNameCharPattern = regexp.MustCompile(`[^a-z0-9_]+`)
)

var generatorFieldTypes = []dtos.FieldType{
	dtos.FieldTypeText, dtos.FieldTypeEmail, dtos.FieldTypeTel, dtos.FieldTypeURL,
	dtos.FieldTypeNumber, dtos.FieldTypeTextarea, dtos.FieldTypeSelect,
	dtos.FieldTypeCheckbox, dtos.FieldTypeRadio, dtos.FieldTypeDate, dtos.FieldTypeHidden,
}

// GeneratorService turns a prompt into a form definition through an
// OpenAI-compatible chat API. Output is normalized, never trusted.
type GeneratorService struct {
	settings *common.SettingsService
	ai       *providers.AIProvider
	catalog  *catalog.Catalog
}

func NewGeneratorService(settings *common.SettingsService, ai *providers.AIProvider, cat *catalog.Catalog) *GeneratorService {
	return &GeneratorService{settings: settings, ai: ai, catalog: cat}
}

// Generate builds a form from a description
func (s *GeneratorService) Generate(ctx context.Context, prompt string) (*dtos.FormConfig, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, common.NewValidationError("prompt is required")
	}
	return s.complete(ctx, []providers.ChatMessage{
		{Role: "system", Content: s.systemPrompt()},
		{Role: "user", Content: prompt},
	})
}

// Refine applies an instruction to an existing form
func (s *GeneratorService) Refine(ctx context.Context, cfg dtos.FormConfig, instruction string) (*dtos.FormConfig, error) {
	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		return nil, common.NewValidationError("instruction is required")
	}
	current, err := json.Marshal(cfg)
	if err != nil {
		return nil, common.NewValidationError(fmt.Sprintf("form_config could not be encoded: %v", err))
	}
	return s.complete(ctx, []providers.ChatMessage{
		{Role: "system", Content: s.systemPrompt()},
		{Role: "user", Content: "Current form:\n" + string(current)},
		{Role: "user", Content: "Change it as follows and return the whole form: " + instruction},
	})
}

func (s *GeneratorService) systemPrompt() string {
	types := make([]string, 0, len(generatorFieldTypes))
	for _, t := range generatorFieldTypes {
		types = append(types, string(t))
	}
	names := []string{catalog.FullName}
	for _, e := range s.catalog.Entries() {
		names = append(names, e.SymbolicName)
	}
	return fmt.Sprintf(generatorSystemPrompt, strings.Join(types, "|"), strings.Join(names, "|"))
}

func (s *GeneratorService) complete(ctx context.Context, messages []providers.ChatMessage) (*dtos.FormConfig, error) {
	ai, err := s.settings.AI(ctx)
	if err != nil {
		return nil, err
	}

	content, err := s.ai.Complete(ctx, ai, messages)
	if err != nil {
		if pErr := providers.AsProviderError(err); pErr != nil && pErr.Code == constants.ErrCodeConfigurationMissing {
			return nil, common.NewConfigurationMissingError(pErr.Message)
		}
		return nil, common.NewUpstreamError("the AI service request failed", err)
	}

	var cfg dtos.FormConfig
	if err := json.Unmarshal([]byte(StripCodeFence(content)), &cfg); err != nil {
		logging.Warn("AI returned unreadable form JSON", "error", err, "content", common.Truncate(content, 512))
		return nil, common.NewUpstreamError("the AI service returned an unreadable form", err)
	}

	out := s.NormalizeFormConfig(cfg)
	return &out, nil
}

// StripCodeFence removes a markdown code fence around a JSON answer
func StripCodeFence(s string) string {
	if m := codeFencePattern.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return strings.TrimSpace(s)
}

// NormalizeFormConfig makes generated output savable: names are sanitized
// and unique, unknown types become text, options only stay on choice fields
// and crm_mapping is guessed where missing or unknown.
func (s *GeneratorService) NormalizeFormConfig(cfg dtos.FormConfig) dtos.FormConfig {
	fields := make([]dtos.FormField, 0, len(cfg.Fields))
	for i, f := range cfg.Fields {
		f.Name = sanitizeFieldName(f.Name)
		if f.Name == "" {
			f.Name = sanitizeFieldName(f.Label)
		}
		if f.Name == "" {
			f.Name = fmt.Sprintf("field_%d", i+1)
		}
		fields = append(fields, f)
	}
	fields = adapters.UniqueNames(fields)

	for i := range fields {
		f := &fields[i]
		if strings.TrimSpace(f.Label) == "" {
			f.Label = labelFromName(f.Name)
		}

		f.Type = dtos.FieldType(strings.ToLower(strings.TrimSpace(string(f.Type))))
		if !f.Type.Valid() {
			f.Type = dtos.FieldTypeText
		}
		if !f.Type.HasOptions() {
			f.Options = nil
		}
		f.Options = cleanOptions(f.Options)
		if (f.Type == dtos.FieldTypeSelect || f.Type == dtos.FieldTypeRadio) && len(f.Options) == 0 {
			f.Type = dtos.FieldTypeText
		}

		f.CRMMapping = strings.TrimSpace(f.CRMMapping)
		if !knownCRMTarget(s.catalog, f.CRMMapping) {
			f.CRMMapping = adapters.GuessCRMMapping(f.Name)
		}
	}

	cfg.Fields = fields
	return cfg.WithDefaults()
}

func cleanOptions(opts []dtos.FieldOption) []dtos.FieldOption {
	if len(opts) == 0 {
		return nil
	}
	out := make([]dtos.FieldOption, 0, len(opts))
	for _, o := range opts {
		o.Label = strings.TrimSpace(o.Label)
		o.Value = strings.TrimSpace(o.Value)
		if o.Value == "" {
			o.Value = o.Label
		}
		if o.Label == "" {
			o.Label = o.Value
		}
		if o.Value != "" {
			out = append(out, o)
		}
	}
	return out
}

func sanitizeFieldName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("-", "_", " ", "_").Replace(s)
	s = nonNameCharPattern.ReplaceAllString(s, "")
	for strings.Contains(s, "__") {
		s = strings.ReplaceAll(s, "__", "_")
	}
	return strings.Trim(s, "_")
}

func labelFromName(name string) string {
	words := strings.Fields(strings.ReplaceAll(name, "_", " "))
	if len(words) == 0 {
		return name
	}
	words[0] = strings.ToUpper(words[0][:1]) + words[0][1:]
	return strings.Join(words, " ")
}
