package mapping

import (
	"bytes"
	"encoding/json"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Pair is one key/value entry of Values
type Pair struct {
	Key   string
	Value any
}

// Values is a string-keyed map that remembers insertion order.
// Decoding a JSON object keeps the object's key order, so iteration over a
// submitted payload follows the order the fields were sent in. Numbers decode
// as json.Number so they reach the CRM exactly as submitted.
type Values struct {
	m *orderedmap.OrderedMap[string, any]
}

func NewValues() *Values {
	return &Values{m: orderedmap.New[string, any]()}
}

// ValuesFromPairs builds Values from alternating key, value arguments
func ValuesFromPairs(kv ...any) *Values {
	v := NewValues()
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		v.Set(key, kv[i+1])
	}
	return v
}

// Set assigns key. An existing key keeps its position.
func (v *Values) Set(key string, value any) {
	if v.m == nil {
		v.m = orderedmap.New[string, any]()
	}
	v.m.Set(key, value)
}

func (v *Values) Get(key string) (any, bool) {
	if v == nil || v.m == nil {
		return nil, false
	}
	return v.m.Get(key)
}

func (v *Values) Has(key string) bool {
	_, ok := v.Get(key)
	return ok
}

func (v *Values) Len() int {
	if v == nil || v.m == nil {
		return 0
	}
	return v.m.Len()
}

// Keys returns keys in insertion order
func (v *Values) Keys() []string {
	pairs := v.Pairs()
	if pairs == nil {
		return nil
	}
	keys := make([]string, len(pairs))
	for i, p := range pairs {
		keys[i] = p.Key
	}
	return keys
}

// Pairs returns a copy of the entries in insertion order
func (v *Values) Pairs() []Pair {
	if v == nil || v.m == nil {
		return nil
	}
	out := make([]Pair, 0, v.m.Len())
	for p := v.m.Oldest(); p != nil; p = p.Next() {
		out = append(out, Pair{Key: p.Key, Value: p.Value})
	}
	return out
}

// Map returns an unordered copy
func (v *Values) Map() map[string]any {
	out := make(map[string]any, v.Len())
	for _, p := range v.Pairs() {
		out[p.Key] = p.Value
	}
	return out
}

func (v *Values) MarshalJSON() ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}
	if v.m == nil {
		return []byte("{}"), nil
	}
	return v.m.MarshalJSON()
}

func (v *Values) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*v = *NewValues()
		return nil
	}

	raw := orderedmap.New[string, json.RawMessage]()
	if err := raw.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("expected JSON object: %w", err)
	}

	out := NewValues()
	for p := raw.Oldest(); p != nil; p = p.Next() {
		dec := json.NewDecoder(bytes.NewReader(p.Value))
		dec.UseNumber()
		var value any
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("failed to decode value for %q: %w", p.Key, err)
		}
		out.Set(p.Key, value)
	}

	*v = *out
	return nil
}
