package adapters

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"leadcapture/formbridge/internal/models/dtos"
)

var nonIdentChars = regexp.MustCompile(`[^a-z0-9_]+`)

// humanize turns "your-email" into "Your Email"
func humanize(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == '-' || r == '_' || unicode.IsSpace(r)
	})
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// fieldNameFromLabel derives a form field name from a label, falling back to
// field_{id} when the label has nothing usable.
func fieldNameFromLabel(label, id string) string {
	name := nonIdentChars.ReplaceAllString(strings.ToLower(strings.TrimSpace(label)), "_")
	name = strings.Trim(name, "_")
	if name == "" {
		return "field_" + nonIdentChars.ReplaceAllString(strings.ToLower(id), "_")
	}
	return name
}

// UniqueNames renames repeated field names to name_2, name_3, ...
func UniqueNames(fields []dtos.FormField) []dtos.FormField {
	seen := make(map[string]int, len(fields))
	for i := range fields {
		base := fields[i].Name
		seen[base]++
		if seen[base] == 1 {
			continue
		}
		for {
			candidate := fmt.Sprintf("%s_%d", base, seen[base])
			if _, taken := seen[candidate]; !taken {
				fields[i].Name = candidate
				seen[candidate] = 1
				break
			}
			seen[base]++
		}
	}
	return fields
}

// withGuess fills CRMMapping from the field name when it is unset
func withGuess(f dtos.FormField) dtos.FormField {
	if f.CRMMapping == "" {
		f.CRMMapping = GuessCRMMapping(f.Name)
	}
	return f
}

// flexBool accepts true, 1, "1", "true" and treats everything else as false
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	switch strings.ToLower(s) {
	case "1", "true", "yes", "on":
		*b = true
	default:
		*b = false
	}
	return nil
}

// flexString accepts a JSON string or number
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*s = ""
		return nil
	}
	if data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = flexString(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*s = flexString(n.String())
	return nil
}

// orderedElements returns the elements of a JSON array, or the values of a
// JSON object in document order. Plugins store lists either way.
func orderedElements(raw json.RawMessage) ([]json.RawMessage, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	if raw[0] == '[' {
		var out []json.RawMessage
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, err
		}
		return out, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected array or object, got %v", tok)
	}

	var out []json.RawMessage
	for dec.More() {
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		var elem json.RawMessage
		if err := dec.Decode(&elem); err != nil {
			return nil, err
		}
		out = append(out, elem)
	}
	return out, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	_, err := strconv.ParseUint(s, 10, 64)
	return err == nil
}
