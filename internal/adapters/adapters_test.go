package adapters

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadcapture/formbridge/internal/catalog"
	"leadcapture/formbridge/internal/models/dtos"
	"leadcapture/formbridge/internal/models/entities"
)

type fakeStore struct {
	plugins    []string
	posts      map[string][]entities.WPPost
	meta       map[int64]map[string]string
	gravity    []entities.WPGravityForm
	pluginsErr error
}

func (f *fakeStore) ActivePlugins(context.Context) ([]string, error) {
	return f.plugins, f.pluginsErr
}

func (f *fakeStore) SetActivePlugins(_ context.Context, p []string) error {
	f.plugins = p
	return nil
}

func (f *fakeStore) PostsByType(_ context.Context, postType string) ([]entities.WPPost, error) {
	return f.posts[postType], nil
}

func (f *fakeStore) PostByID(_ context.Context, id int64, postType string) (*entities.WPPost, error) {
	for _, p := range f.posts[postType] {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) PostMeta(_ context.Context, postID int64, key string) (string, bool, error) {
	v, ok := f.meta[postID][key]
	return v, ok, nil
}

func (f *fakeStore) PostIDByMetaPrefix(_ context.Context, key, prefix string) (int64, bool, error) {
	for id, m := range f.meta {
		if v, ok := m[key]; ok && strings.HasPrefix(v, prefix) {
			return id, true, nil
		}
	}
	return 0, false, nil
}

func (f *fakeStore) GravityForms(context.Context) ([]entities.WPGravityForm, error) {
	return f.gravity, nil
}

func (f *fakeStore) GravityForm(_ context.Context, id int64) (*entities.WPGravityForm, error) {
	for _, g := range f.gravity {
		if g.ID == id {
			return &g, nil
		}
	}
	return nil, nil
}

func fieldNames(fields []dtos.FormField) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, f.Name)
	}
	return out
}

const cf7Template = `<label> Your name
    [text* your-name placeholder "Jane Doe"] </label>
[email* your-email]
[tel your-phone]
[select your-topic "Sales|sales" "Support|support"]
[file your-cv]
[acceptance accept-terms] I agree [/acceptance]
[textarea your-message]
[submit "Send"]`

func TestCF7Adapter_ParseFields(t *testing.T) {
	a := NewCF7Adapter(nil)
	fields := a.ParseFields(cf7Template)

	require.Equal(t,
		[]string{"your-name", "your-email", "your-phone", "your-topic", "accept-terms", "your-message"},
		fieldNames(fields))

	name := fields[0]
	assert.Equal(t, dtos.FieldTypeText, name.Type)
	assert.True(t, name.Required)
	assert.Equal(t, "Jane Doe", name.Placeholder)
	assert.Equal(t, "Your Name", name.Label)
	assert.Equal(t, catalog.FirstName, name.CRMMapping)

	assert.Equal(t, catalog.Email, fields[1].CRMMapping)
	assert.Equal(t, dtos.FieldTypeTel, fields[2].Type)
	assert.False(t, fields[2].Required)

	assert.Equal(t, []dtos.FieldOption{
		{Label: "Sales", Value: "sales"},
		{Label: "Support", Value: "support"},
	}, fields[3].Options)

	assert.Equal(t, dtos.FieldTypeCheckbox, fields[4].Type)
	assert.True(t, fields[4].Required)
	assert.Equal(t, catalog.Message, fields[5].CRMMapping)
}

func TestCF7Adapter_GetFormsAndHash(t *testing.T) {
	store := &fakeStore{
		plugins: []string{"contact-form-7/wp-contact-form-7.php"},
		posts: map[string][]entities.WPPost{
			cf7PostType: {{ID: 42, PostTitle: "Contact form 1"}},
		},
		meta: map[int64]map[string]string{
			42: {cf7FormMeta: "[email* your-email]", cf7HashMeta: "9f8e7d6c5b4a"},
		},
	}
	a := NewCF7Adapter(store)
	ctx := context.Background()

	assert.True(t, a.IsAvailable(ctx))

	forms, err := a.GetForms(ctx)
	require.NoError(t, err)
	require.Len(t, forms, 1)
	assert.Equal(t, "42", forms[0].ID)
	assert.Equal(t, "9f8e7d6c5b4a", forms[0].Hash)
	assert.Equal(t, `[contact-form-7 id="9f8e7d6" title="Contact form 1"]`, a.Shortcode(forms[0]))

	id, ok, err := a.ResolveHash(ctx, "9f8e7d6")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "42", id)

	missing, err := a.GetForm(ctx, "7")
	assert.NoError(t, err)
	assert.Nil(t, missing)

	assert.Equal(t, ShortcodeRef{ID: "42"}, a.RefFromAttrs(map[string]string{"id": "42"}))
	assert.Equal(t, ShortcodeRef{Hash: "9f8e7d6"}, a.RefFromAttrs(map[string]string{"id": "9f8e7d6"}))
}

const gravityMeta = `{
  "title": "Lead",
  "description": "Request a demo",
  "fields": [
    {"id": 1, "type": "name", "label": "Name", "isRequired": true,
     "inputs": [{"id": "1.3", "label": "Given"}, {"id": "1.6", "label": ""}]},
    {"id": 2, "type": "email", "label": "Email", "isRequired": true},
    {"id": 3, "type": "address", "label": "Address", "isRequired": false,
     "inputs": [{"id": "3.1"}, {"id": "3.2", "isHidden": true}, {"id": "3.3"}, {"id": "3.4"}, {"id": "3.5"}, {"id": "3.6"}]},
    {"id": 4, "type": "html", "label": "Intro"},
    {"id": 5, "type": "multiselect", "label": "Interests",
     "choices": [{"text": "CRM", "value": "crm"}, {"text": "Forms", "value": ""}]},
    {"id": 6, "type": "phone", "label": "Phone", "isRequired": "1"},
    {"id": 7, "type": "text", "label": "Email"},
    {"id": 8, "type": "text", "label": ""},
    {"id": 9, "type": "signature", "label": "Sign here"}
  ]
}`

func TestGravityFormsAdapter_ParsesCompositeFields(t *testing.T) {
	store := &fakeStore{
		plugins: []string{"gravityforms/gravityforms.php"},
		gravity: []entities.WPGravityForm{{ID: 3, Title: "Lead", DisplayMeta: gravityMeta}},
	}
	a := NewGravityFormsAdapter(store)

	form, err := a.GetForm(context.Background(), "3")
	require.NoError(t, err)
	require.NotNil(t, form)
	assert.Equal(t, "Request a demo", form.Description)

	assert.Equal(t, []string{
		catalog.FirstName, catalog.LastName,
		"email",
		catalog.AddressLine1, catalog.City, catalog.State, catalog.PostalCode, catalog.Country,
		"interests",
		"phone",
		"email_2",
		"field_8",
	}, fieldNames(form.Fields))

	assert.Equal(t, "Given", form.Fields[0].Label)
	assert.Equal(t, "Last Name", form.Fields[1].Label)
	assert.True(t, form.Fields[0].Required)
	assert.Equal(t, catalog.City, form.Fields[4].CRMMapping)

	interests := form.Fields[8]
	assert.Equal(t, dtos.FieldTypeSelect, interests.Type)
	assert.Equal(t, "Forms", interests.Options[1].Value)

	assert.Equal(t, dtos.FieldTypeTel, form.Fields[9].Type)
	assert.True(t, form.Fields[9].Required)
	assert.Equal(t, dtos.FieldTypeText, form.Fields[11].Type)

	assert.Equal(t, `[gravityform id="3" title="false" description="false"]`, a.Shortcode(*form))
}

func TestGravityFormsAdapter_SkipsBrokenForms(t *testing.T) {
	store := &fakeStore{gravity: []entities.WPGravityForm{
		{ID: 1, Title: "Broken", DisplayMeta: "{not json"},
		{ID: 2, Title: "Fine", DisplayMeta: `{"fields":[]}`},
	}}
	forms, err := NewGravityFormsAdapter(store).GetForms(context.Background())
	require.NoError(t, err)
	require.Len(t, forms, 1)
	assert.Equal(t, "2", forms[0].ID)
}

const wpformsObjectContent = `{
  "id": "12",
  "fields": {
    "3": {"id": "3", "type": "name", "label": "Your Name", "format": "simple", "required": "1"},
    "1": {"id": "1", "type": "email", "label": "Email", "required": "1"},
    "2": {"id": "2", "type": "radio", "label": "Budget",
          "choices": {"1": {"label": "Small", "value": ""}, "2": {"label": "Large", "value": "big"}}},
    "4": {"id": "4", "type": "divider", "label": "Section"},
    "5": {"id": "5", "type": "address", "label": "Address", "address2_hide": "1", "country_hide": "1"}
  },
  "settings": {"form_title": "Quote", "form_desc": "Get a quote"}
}`

const wpformsArrayContent = `{
  "fields": [
    {"id": 0, "type": "name", "label": "Name", "format": "first-middle-last", "required": true},
    {"id": 1, "type": "date-time", "label": "Preferred date"},
    {"id": 2, "type": "checkbox", "label": "Topics", "choices": [{"label": "A"}, {"label": "B", "value": 2}]}
  ],
  "settings": {}
}`

func TestWPFormsAdapter_ObjectFields(t *testing.T) {
	store := &fakeStore{posts: map[string][]entities.WPPost{
		wpformsPostType: {{ID: 12, PostTitle: "ignored", PostContent: wpformsObjectContent}},
	}}
	form, err := NewWPFormsAdapter(store).GetForm(context.Background(), "12")
	require.NoError(t, err)
	require.NotNil(t, form)

	assert.Equal(t, "Quote", form.Title)
	assert.Equal(t, []string{
		"name", "email", "budget",
		catalog.AddressLine1, catalog.City, catalog.State, catalog.PostalCode,
	}, fieldNames(form.Fields))

	assert.Equal(t, catalog.FirstName, form.Fields[0].CRMMapping)
	assert.True(t, form.Fields[0].Required)
	assert.Equal(t, []dtos.FieldOption{
		{Label: "Small", Value: "Small"},
		{Label: "Large", Value: "big"},
	}, form.Fields[2].Options)
}

func TestWPFormsAdapter_ArrayFields(t *testing.T) {
	store := &fakeStore{posts: map[string][]entities.WPPost{
		wpformsPostType: {{ID: 5, PostTitle: "Booking", PostContent: wpformsArrayContent}},
	}}
	forms, err := NewWPFormsAdapter(store).GetForms(context.Background())
	require.NoError(t, err)
	require.Len(t, forms, 1)

	form := forms[0]
	assert.Equal(t, "Booking", form.Title)
	assert.Equal(t, []string{
		catalog.FirstName, "middle_name", catalog.LastName, "preferred_date", "topics",
	}, fieldNames(form.Fields))
	assert.Equal(t, dtos.FieldTypeDate, form.Fields[3].Type)
	assert.Equal(t, "2", form.Fields[4].Options[1].Value)
	assert.Equal(t, `[wpforms id="5"]`, NewWPFormsAdapter(store).Shortcode(form))
}

func TestPlugin_AvailabilityAndDeactivate(t *testing.T) {
	store := &fakeStore{plugins: []string{"akismet/akismet.php", "wpforms-lite/wpforms.php"}}
	a := NewWPFormsAdapter(store)
	ctx := context.Background()

	assert.True(t, a.IsAvailable(ctx))
	require.NoError(t, a.Deactivate(ctx))
	assert.Equal(t, []string{"akismet/akismet.php"}, store.plugins)
	assert.False(t, a.IsAvailable(ctx))

	// deactivating twice is a no-op
	assert.NoError(t, a.Deactivate(ctx))

	store.pluginsErr = errors.New("db down")
	assert.False(t, a.IsAvailable(ctx))
}

func TestAdapters_WithoutStore(t *testing.T) {
	reg := NewWordPressRegistry(nil)
	ctx := context.Background()

	for _, a := range reg.All() {
		assert.False(t, a.IsAvailable(ctx), a.Key())
		_, err := a.GetForms(ctx)
		assert.ErrorIs(t, err, ErrUnavailable, a.Key())
	}
}

func TestRegistry_Lookup(t *testing.T) {
	reg := NewWordPressRegistry(nil)

	keys := make([]string, 0)
	for _, a := range reg.All() {
		keys = append(keys, a.Key())
	}
	assert.Equal(t, []string{CF7Key, GravityFormsKey, WPFormsKey}, keys)

	a, ok := reg.ByTag("gravityforms")
	require.True(t, ok)
	assert.Equal(t, GravityFormsKey, a.Key())

	assert.Equal(t, []string{"contact-form-7", "gravityform", "gravityforms", "wpforms"}, reg.Tags())
}

func TestUniqueNames(t *testing.T) {
	fields := UniqueNames([]dtos.FormField{{Name: "a"}, {Name: "a"}, {Name: "a_2"}, {Name: "a"}})
	assert.Equal(t, []string{"a", "a_2", "a_2_2", "a_3"}, fieldNames(fields))
}

func TestAdapters_DropUnknownFieldTypes(t *testing.T) {
	gravity := NewGravityFormsAdapter(nil)
	assert.Nil(t, gravity.ParseField(GravityField{ID: "4", Type: "signature", Label: "Sign"}))
	gfFields := gravity.ParseFields([]GravityField{
		{ID: "1", Type: "email", Label: "Email"},
		{ID: "4", Type: "signature", Label: "Sign"},
	})
	assert.Equal(t, []string{"email"}, fieldNames(gfFields))

	wpforms := NewWPFormsAdapter(nil)
	assert.Nil(t, wpforms.ParseField(WPFormsField{ID: "2", Type: "rating", Label: "Rate"}))
	wfFields := wpforms.ParseFields([]WPFormsField{
		{ID: "1", Type: "email", Label: "Email"},
		{ID: "2", Type: "rating", Label: "Rate"},
	})
	assert.Equal(t, []string{"email"}, fieldNames(wfFields))
}
