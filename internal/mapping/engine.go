// Package mapping turns submitted form values into CRM-field-id keyed values.
package mapping

import (
	"sort"
	"strings"

	"leadcapture/formbridge/internal/catalog"
	"leadcapture/formbridge/internal/models/dtos"
)

// SplitSeparator joins a form field and a CRM subfield in a split mapping key,
// e.g. "name__split__first_name".
const SplitSeparator = "__split__"

// Engine maps submissions using the ids of one catalog
type Engine struct {
	firstNameID string
	lastNameID  string
	emailID     string
	phoneID     string
	catalog     *catalog.Catalog
}

func NewEngine(c *catalog.Catalog) *Engine {
	return &Engine{
		firstNameID: c.MustID(catalog.FirstName),
		lastNameID:  c.MustID(catalog.LastName),
		emailID:     c.MustID(catalog.Email),
		phoneID:     c.MustID(catalog.PhoneNumber),
		catalog:     c,
	}
}

// Report is the mapped output plus the submitted fields that had no mapping
type Report struct {
	Values  *Values
	Dropped []string
}

type splitTarget struct {
	subfield string
	crmID    string
}

// MapFormDataToCRM converts a submission to CRM ids. It never fails: fields
// without a mapping are dropped.
func (e *Engine) MapFormDataToCRM(formData *Values, fieldMapping map[string]string) *Values {
	return e.Map(formData, fieldMapping).Values
}

// Map is MapFormDataToCRM with the list of dropped fields
func (e *Engine) Map(formData *Values, fieldMapping map[string]string) Report {
	direct, splits := e.plan(fieldMapping)

	out := NewValues()
	var dropped []string

	for _, p := range formData.Pairs() {
		if targets, ok := splits[p.Key]; ok {
			e.assignSplit(out, targets, p.Value)
			continue
		}
		if crmID, ok := direct[p.Key]; ok {
			out.Set(crmID, p.Value)
			continue
		}
		dropped = append(dropped, p.Key)
	}

	if out.Has(e.firstNameID) && !out.Has(e.lastNameID) {
		out.Set(e.lastNameID, "")
	}
	if out.Has(e.emailID) && !out.Has(e.phoneID) {
		out.Set(e.phoneID, "")
	}

	return Report{Values: out, Dropped: dropped}
}

// plan separates direct mappings from split mappings and adds the
// auto-detected full-name splits.
func (e *Engine) plan(fieldMapping map[string]string) (map[string]string, map[string][]splitTarget) {
	direct := make(map[string]string)
	splits := make(map[string][]splitTarget)

	// sorted so split targets come out in a stable order
	keys := make([]string, 0, len(fieldMapping))
	for k := range fieldMapping {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		crmID := fieldMapping[key]
		if field, sub, ok := strings.Cut(key, SplitSeparator); ok {
			splits[field] = append(splits[field], splitTarget{subfield: sub, crmID: crmID})
			continue
		}
		direct[key] = crmID
	}

	for field, crmID := range direct {
		if _, explicit := splits[field]; explicit {
			delete(direct, field)
			continue
		}
		if crmID == e.firstNameID && isUndetectedFullName(field) {
			splits[field] = []splitTarget{
				{subfield: catalog.FirstName, crmID: e.firstNameID},
				{subfield: catalog.LastName, crmID: e.lastNameID},
			}
			delete(direct, field)
		}
	}

	return direct, splits
}

func isUndetectedFullName(field string) bool {
	lower := strings.ToLower(field)
	if strings.Contains(lower, "first") || strings.Contains(lower, "last") {
		return false
	}
	return strings.Contains(lower, "name") || strings.Contains(lower, "full")
}

func (e *Engine) assignSplit(out *Values, targets []splitTarget, value any) {
	s, ok := value.(string)
	if !ok {
		// only strings can be split; anything else goes to the first target untouched
		if len(targets) > 0 {
			out.Set(targets[0].crmID, value)
		}
		return
	}

	first, last := SplitName(s)
	for _, t := range targets {
		switch t.subfield {
		case catalog.FirstName:
			out.Set(t.crmID, first)
		case catalog.LastName:
			out.Set(t.crmID, last)
		default:
			out.Set(t.crmID, strings.TrimSpace(s))
		}
	}
}

// SplitName splits on the first space only. "Cher" yields ("Cher", "").
func SplitName(full string) (first, last string) {
	full = strings.TrimSpace(full)
	first, last, found := strings.Cut(full, " ")
	if !found {
		return full, ""
	}
	return first, last
}

// DeriveFieldMapping builds a form's field_mapping from its fields. crm_mapping
// may hold a catalog symbolic name, the full_name pseudo name, or a raw CRM id.
func (e *Engine) DeriveFieldMapping(fields []dtos.FormField) map[string]string {
	out := make(map[string]string)
	for _, f := range fields {
		target := strings.TrimSpace(f.CRMMapping)
		if f.Name == "" || target == "" {
			continue
		}
		if target == catalog.FullName {
			out[f.Name+SplitSeparator+catalog.FirstName] = e.firstNameID
			out[f.Name+SplitSeparator+catalog.LastName] = e.lastNameID
			continue
		}
		if id, ok := e.catalog.ID(target); ok {
			out[f.Name] = id
			continue
		}
		if _, ok := e.catalog.Name(target); ok {
			out[f.Name] = target
		}
	}
	return out
}
