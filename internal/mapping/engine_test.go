package mapping

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadcapture/formbridge/internal/catalog"
	"leadcapture/formbridge/internal/models/dtos"
)

func newTestEngine(t *testing.T) (*Engine, *catalog.Catalog) {
	t.Helper()
	c, err := catalog.Default()
	require.NoError(t, err)
	return NewEngine(c), c
}

func TestMap_AutoDetectsFullNameOnFirstNameMapping(t *testing.T) {
	e, c := newTestEngine(t)
	firstID, lastID := c.MustID(catalog.FirstName), c.MustID(catalog.LastName)

	out := e.MapFormDataToCRM(
		ValuesFromPairs("name", "Jane Doe"),
		map[string]string{"name": firstID},
	)

	first, _ := out.Get(firstID)
	last, _ := out.Get(lastID)
	assert.Equal(t, "Jane", first)
	assert.Equal(t, "Doe", last)
	assert.Equal(t, 2, out.Len())
}

func TestMap_SingleTokenNameLeavesLastNameEmpty(t *testing.T) {
	e, c := newTestEngine(t)
	firstID, lastID := c.MustID(catalog.FirstName), c.MustID(catalog.LastName)

	out := e.MapFormDataToCRM(
		ValuesFromPairs("your-name", "Cher"),
		map[string]string{"your-name": firstID},
	)

	first, _ := out.Get(firstID)
	last, ok := out.Get(lastID)
	assert.Equal(t, "Cher", first)
	assert.True(t, ok)
	assert.Equal(t, "", last)
}

func TestMap_SplitsOnFirstSpaceOnly(t *testing.T) {
	e, c := newTestEngine(t)
	firstID, lastID := c.MustID(catalog.FirstName), c.MustID(catalog.LastName)

	out := e.MapFormDataToCRM(
		ValuesFromPairs("full", "  Mary Jane Watson "),
		map[string]string{"full": firstID},
	)

	first, _ := out.Get(firstID)
	last, _ := out.Get(lastID)
	assert.Equal(t, "Mary", first)
	assert.Equal(t, "Jane Watson", last)
}

func TestMap_ExplicitFirstNameFieldIsNotSplit(t *testing.T) {
	e, c := newTestEngine(t)
	firstID, lastID := c.MustID(catalog.FirstName), c.MustID(catalog.LastName)

	out := e.MapFormDataToCRM(
		ValuesFromPairs("first_name", "Anna Maria"),
		map[string]string{"first_name": firstID},
	)

	first, _ := out.Get(firstID)
	last, ok := out.Get(lastID)
	assert.Equal(t, "Anna Maria", first)
	assert.True(t, ok, "last name should be backfilled")
	assert.Equal(t, "", last)
}

func TestMap_ExplicitSplitKeys(t *testing.T) {
	e, c := newTestEngine(t)
	firstID, lastID := c.MustID(catalog.FirstName), c.MustID(catalog.LastName)

	out := e.MapFormDataToCRM(
		ValuesFromPairs("contact_person", "Ada Lovelace"),
		map[string]string{
			"contact_person__split__first_name": firstID,
			"contact_person__split__last_name":  lastID,
		},
	)

	first, _ := out.Get(firstID)
	last, _ := out.Get(lastID)
	assert.Equal(t, "Ada", first)
	assert.Equal(t, "Lovelace", last)
}

func TestMap_EmailBackfillsPhone(t *testing.T) {
	e, c := newTestEngine(t)
	emailID, phoneID := c.MustID(catalog.Email), c.MustID(catalog.PhoneNumber)

	out := e.MapFormDataToCRM(
		ValuesFromPairs("email", "jane@example.com"),
		map[string]string{"email": emailID},
	)

	phone, ok := out.Get(phoneID)
	assert.True(t, ok)
	assert.Equal(t, "", phone)
	assert.Equal(t, []string{emailID, phoneID}, out.Keys())
}

func TestMap_ExistingPhoneIsKept(t *testing.T) {
	e, c := newTestEngine(t)
	emailID, phoneID := c.MustID(catalog.Email), c.MustID(catalog.PhoneNumber)

	out := e.MapFormDataToCRM(
		ValuesFromPairs("email", "a@b.co", "tel", "+1 555 0100"),
		map[string]string{"email": emailID, "tel": phoneID},
	)

	phone, _ := out.Get(phoneID)
	assert.Equal(t, "+1 555 0100", phone)
}

func TestMap_LastSubmittedFieldWinsOnCollision(t *testing.T) {
	e, c := newTestEngine(t)
	msgID := c.MustID(catalog.Message)

	out := e.MapFormDataToCRM(
		ValuesFromPairs("subject", "first", "message", "second"),
		map[string]string{"subject": msgID, "message": msgID},
	)

	msg, _ := out.Get(msgID)
	assert.Equal(t, "second", msg)
}

func TestMap_DropsUnmappedFieldsAndKeepsValuesUntouched(t *testing.T) {
	e, c := newTestEngine(t)
	cityID := c.MustID(catalog.City)

	report := e.Map(
		ValuesFromPairs("city", []any{"Oslo", "Bergen"}, "honeypot", "x"),
		map[string]string{"city": cityID},
	)

	city, _ := report.Values.Get(cityID)
	assert.Equal(t, []any{"Oslo", "Bergen"}, city)
	assert.Equal(t, []string{"honeypot"}, report.Dropped)
}

func TestMap_NilInputYieldsEmptyOutput(t *testing.T) {
	e, _ := newTestEngine(t)
	out := e.MapFormDataToCRM(nil, nil)
	assert.Equal(t, 0, out.Len())
}

func TestMap_OutputEncodesInSubmissionOrder(t *testing.T) {
	e, c := newTestEngine(t)

	var in Values
	require.NoError(t, json.Unmarshal([]byte(`{"email":"x@y.z","company":"Acme","name":"Jo Bloggs"}`), &in))

	out := e.MapFormDataToCRM(&in, map[string]string{
		"email":   c.MustID(catalog.Email),
		"company": c.MustID(catalog.CompanyName),
		"name":    c.MustID(catalog.FirstName),
	})

	assert.Equal(t, []string{
		c.MustID(catalog.Email),
		c.MustID(catalog.CompanyName),
		c.MustID(catalog.FirstName),
		c.MustID(catalog.LastName),
		c.MustID(catalog.PhoneNumber),
	}, out.Keys())
}

func TestSplitName(t *testing.T) {
	cases := []struct {
		in, first, last string
	}{
		{"Jane Doe", "Jane", "Doe"},
		{"Cher", "Cher", ""},
		{"Mary Jane Watson", "Mary", "Jane Watson"},
		{"   ", "", ""},
	}
	for _, tc := range cases {
		first, last := SplitName(tc.in)
		assert.Equal(t, tc.first, first, tc.in)
		assert.Equal(t, tc.last, last, tc.in)
	}
}

func TestDeriveFieldMapping(t *testing.T) {
	e, c := newTestEngine(t)

	got := e.DeriveFieldMapping([]dtos.FormField{
		{Name: "email", CRMMapping: catalog.Email},
		{Name: "who", CRMMapping: catalog.FullName},
		{Name: "raw", CRMMapping: c.MustID(catalog.City)},
		{Name: "unknown", CRMMapping: "not_in_catalog"},
		{Name: "plain"},
	})

	assert.Equal(t, map[string]string{
		"email":                 c.MustID(catalog.Email),
		"who__split__first_name": c.MustID(catalog.FirstName),
		"who__split__last_name":  c.MustID(catalog.LastName),
		"raw":                   c.MustID(catalog.City),
	}, got)
}
