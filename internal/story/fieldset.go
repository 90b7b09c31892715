package story

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// Reserved field identifiers.
const (
	FieldSummary     = "summary"
	FieldDescription = "description"
)

// FieldSet maps Jira field ids to their decoded values and remembers the
// order the fields were received in. Values are whatever encoding/json
// would produce: string, float64, bool, []interface{},
// map[string]interface{} or nil.
type FieldSet struct {
	keys   []string
	values map[string]interface{}
}

// NewFieldSet returns an empty FieldSet.
func NewFieldSet() *FieldSet {
	return &FieldSet{values: make(map[string]interface{})}
}

// ParseFieldSet decodes a JSON object of fields, keeping document order.
func ParseFieldSet(raw []byte) (*FieldSet, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("invalid fields JSON")
	}
	result := gjson.ParseBytes(raw)
	fs := NewFieldSet()
	if result.Type == gjson.Null {
		return fs, nil
	}
	if !result.IsObject() {
		return nil, fmt.Errorf("fields must be a JSON object, got %s", result.Type)
	}
	result.ForEach(func(key, value gjson.Result) bool {
		fs.Set(key.String(), value.Value())
		return true
	})
	return fs, nil
}

// UnmarshalJSON lets a FieldSet be embedded in other decoded payloads.
func (fs *FieldSet) UnmarshalJSON(data []byte) error {
	parsed, err := ParseFieldSet(data)
	if err != nil {
		return err
	}
	*fs = *parsed
	return nil
}

// Set stores a value. Setting an existing id replaces the value and keeps
// its original position.
func (fs *FieldSet) Set(id string, value interface{}) *FieldSet {
	if fs.values == nil {
		fs.values = make(map[string]interface{})
	}
	if _, exists := fs.values[id]; !exists {
		fs.keys = append(fs.keys, id)
	}
	fs.values[id] = value
	return fs
}

// Get returns the value stored for id.
func (fs *FieldSet) Get(id string) (interface{}, bool) {
	if fs == nil {
		return nil, false
	}
	v, ok := fs.values[id]
	return v, ok
}

// String returns the value for id when it is a string, or "".
func (fs *FieldSet) String(id string) string {
	v, _ := fs.Get(id)
	s, _ := v.(string)
	return s
}

// Keys returns field ids in insertion order.
func (fs *FieldSet) Keys() []string {
	if fs == nil {
		return nil
	}
	out := make([]string, len(fs.keys))
	copy(out, fs.keys)
	return out
}

// Len reports the number of fields.
func (fs *FieldSet) Len() int {
	if fs == nil {
		return 0
	}
	return len(fs.keys)
}
