package render

import (
	"strings"
	"testing"

	"leadcapture/formbridge/internal/models/dtos"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer("/api/v1/submit/")
	if err != nil {
		t.Fatalf("NewRenderer failed: %v", err)
	}
	return r
}

func TestRenderForm_Fields(t *testing.T) {
	r := newTestRenderer(t)

	html, err := r.RenderForm(7, dtos.FormConfig{
		FormName: "Contact us",
		Fields: []dtos.FormField{
			{Name: "email", Label: "Email", Type: dtos.FieldTypeEmail, Required: true, Placeholder: "you@example.com"},
			{Name: "topic", Label: "Topic", Type: dtos.FieldTypeSelect, Options: []dtos.FieldOption{{Label: "Sales", Value: "sales"}}},
			{Name: "plan", Label: "Plan", Type: dtos.FieldTypeRadio, Required: true, Options: []dtos.FieldOption{{Label: "A", Value: "a"}, {Label: "B", Value: "b"}}},
			{Name: "consent", Label: "I agree", Type: dtos.FieldTypeCheckbox},
			{Name: "message", Label: "Message", Type: dtos.FieldTypeTextarea},
			{Name: "utm_source", Type: dtos.FieldTypeHidden},
		},
		Styles:    dtos.StyleOptions{ButtonColor: "#ff6600"},
		CustomCSS: ".formbridge-title { letter-spacing: 1px; }",
	})
	if err != nil {
		t.Fatalf("RenderForm failed: %v", err)
	}

	expected := []string{
		`id="formbridge-form-7"`,
		`action="/api/v1/submit/7"`,
		`<input type="email" name="email" id="formbridge-form-7-email" placeholder="you@example.com" required>`,
		`<option value="sales">Sales</option>`,
		`<input type="radio" name="plan" value="a" required>`,
		`<input type="radio" name="plan" value="b">`,
		`<input type="checkbox" name="consent" id="formbridge-form-7-consent" value="1">`,
		`<textarea name="message"`,
		`<input type="hidden" name="utm_source"`,
		`background:#ff6600`,
		`.formbridge-title { letter-spacing: 1px; }`,
		`>Submit</button>`,
		`data-success-message="` + dtos.DefaultSuccessMessage + `"`,
		`<h3 class="formbridge-title">Contact us</h3>`,
	}
	for _, want := range expected {
		if !strings.Contains(html, want) {
			t.Errorf("Expected output to contain %q\n%s", want, html)
		}
	}
}

func TestRenderForm_EscapesUserText(t *testing.T) {
	r := newTestRenderer(t)

	html, err := r.RenderForm(1, dtos.FormConfig{
		FormName: `<script>alert(1)</script>`,
		Fields:   []dtos.FormField{{Name: "q", Label: `"><img src=x>`, Type: dtos.FieldTypeText}},
	})
	if err != nil {
		t.Fatalf("RenderForm failed: %v", err)
	}
	if strings.Contains(html, "<script>alert(1)</script>") || strings.Contains(html, "<img src=x>") {
		t.Errorf("Expected user text to be escaped:\n%s", html)
	}
}

func TestRenderNotice(t *testing.T) {
	r := newTestRenderer(t)
	out := r.RenderNotice(`form "7" <missing>`)
	if !strings.Contains(out, "formbridge-notice") || strings.Contains(out, "<missing>") {
		t.Errorf("Unexpected notice: %s", out)
	}
}
