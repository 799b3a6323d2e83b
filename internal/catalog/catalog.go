// Package catalog holds the immutable table of CRM field identifiers.
package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed fields.yaml
var embeddedFields []byte

type Category string

const (
	CategoryContact         Category = "contact"
	CategoryStandardContact Category = "standard_contact"
	CategoryUTM             Category = "utm"
	CategoryConsent         Category = "consent"
	CategoryCompany         Category = "company"
	CategoryPlatform        Category = "platform"
)

var validCategories = map[Category]bool{
	CategoryContact:         true,
	CategoryStandardContact: true,
	CategoryUTM:             true,
	CategoryConsent:         true,
	CategoryCompany:         true,
	CategoryPlatform:        true,
}

// Symbolic names the mapping engine and the adapters refer to directly
const (
	FirstName      = "first_name"
	LastName       = "last_name"
	Email          = "email"
	PhoneNumber    = "phone_number"
	CompanyName    = "company_name"
	CompanyWebsite = "company_website"
	AddressLine1   = "address_line_1"
	AddressLine2   = "address_line_2"
	City           = "city"
	State          = "state"
	PostalCode     = "postal_code"
	Country        = "country"
	Message        = "message"
	SourceName     = "source_name"

	// FullName is not a catalog entry: it asks for a split into first/last name
	FullName = "full_name"
)

// Entry is one FieldCatalogEntry
type Entry struct {
	SymbolicName string   `json:"symbolic_name" yaml:"name"`
	CRMFieldID   string   `json:"crm_field_id" yaml:"id"`
	Category     Category `json:"category" yaml:"-"`
}

type fileFormat struct {
	Categories []struct {
		Category Category `yaml:"category"`
		Fields   []Entry  `yaml:"fields"`
	} `yaml:"categories"`
}

// Catalog is read-only once constructed
type Catalog struct {
	entries []Entry
	byName  map[string]Entry
	byID    map[string]Entry
}

// Load parses a catalog document
func Load(r io.Reader) (*Catalog, error) {
	var doc fileFormat
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode field catalog: %w", err)
	}

	c := &Catalog{
		byName: make(map[string]Entry),
		byID:   make(map[string]Entry),
	}
	for _, group := range doc.Categories {
		if !validCategories[group.Category] {
			return nil, fmt.Errorf("unknown catalog category %q", group.Category)
		}
		for _, e := range group.Fields {
			if e.SymbolicName == "" || e.CRMFieldID == "" {
				return nil, fmt.Errorf("catalog entry in %q is missing name or id", group.Category)
			}
			if _, dup := c.byName[e.SymbolicName]; dup {
				return nil, fmt.Errorf("duplicate catalog field %q", e.SymbolicName)
			}
			e.Category = group.Category
			c.entries = append(c.entries, e)
			c.byName[e.SymbolicName] = e
			c.byID[e.CRMFieldID] = e
		}
	}

	for _, required := range []string{FirstName, LastName, Email, PhoneNumber} {
		if _, ok := c.byName[required]; !ok {
			return nil, fmt.Errorf("field catalog is missing required field %q", required)
		}
	}

	return c, nil
}

// LoadFile loads a catalog from disk
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open field catalog: %w", err)
	}
	defer f.Close()
	return Load(f)
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the catalog compiled into the binary
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Load(bytes.NewReader(embeddedFields))
	})
	return defaultCatalog, defaultErr
}

// Open returns the catalog at path, or the embedded one when path is empty
func Open(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	return LoadFile(path)
}

// ID returns the CRM field id for a symbolic name
func (c *Catalog) ID(name string) (string, bool) {
	e, ok := c.byName[name]
	return e.CRMFieldID, ok
}

// MustID is ID for names guaranteed by Load (first_name, last_name, email, phone_number)
func (c *Catalog) MustID(name string) string {
	e, ok := c.byName[name]
	if !ok {
		panic("catalog: unknown field " + name)
	}
	return e.CRMFieldID
}

// Name returns the symbolic name for a CRM field id
func (c *Catalog) Name(id string) (string, bool) {
	e, ok := c.byID[id]
	return e.SymbolicName, ok
}

// Has reports whether name is a catalog symbolic name
func (c *Catalog) Has(name string) bool {
	_, ok := c.byName[name]
	return ok
}

// Entries returns the entries in declaration order
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// ByCategory groups entries, keeping declaration order within each group
func (c *Catalog) ByCategory() map[Category][]Entry {
	out := make(map[Category][]Entry)
	for _, e := range c.entries {
		out[e.Category] = append(out[e.Category], e)
	}
	return out
}
