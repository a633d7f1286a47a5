package document

import (
	"encoding/json"
	"reflect"

	"github.com/cockroachdb/errors"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	mcperrors "github.com/shesha-tools/mcpinject/internal/errors"
)

// RegistrationKey is the reserved top-level key holding the server
// registration map.
const RegistrationKey = "mcpServers"

// Document is the parsed form of a client configuration file. Top-level keys
// outside the registration map are opaque and round-trip verbatim; key order
// is insertion order and is preserved across load, mutation, and save.
type Document struct {
	// fields holds every top-level key in file order. The registration key's
	// stored value is a placeholder; entries is authoritative for it.
	fields *orderedmap.OrderedMap[string, json.RawMessage]

	// entries is the parsed registration map, in file order.
	entries *orderedmap.OrderedMap[string, *Entry]
}

// New returns an empty document with an empty registration map.
// The registration key is only emitted once an entry is added, so loading a
// file without it and saving does not invent the key.
func New() *Document {
	return &Document{
		fields:  orderedmap.New[string, json.RawMessage](),
		entries: orderedmap.New[string, *Entry](),
	}
}

// Len returns the number of entries in the registration map.
func (d *Document) Len() int {
	return d.entries.Len()
}

// GetEntry returns the entry with the given name, or nil.
func (d *Document) GetEntry(name string) *Entry {
	e, ok := d.entries.Get(name)
	if !ok {
		return nil
	}
	return e
}

// Entries returns all entries in insertion order.
func (d *Document) Entries() []*Entry {
	result := make([]*Entry, 0, d.entries.Len())
	for pair := d.entries.Oldest(); pair != nil; pair = pair.Next() {
		result = append(result, pair.Value)
	}
	return result
}

// Names returns all entry names in insertion order.
func (d *Document) Names() []string {
	result := make([]string, 0, d.entries.Len())
	for pair := d.entries.Oldest(); pair != nil; pair = pair.Next() {
		result = append(result, pair.Key)
	}
	return result
}

// setEntry adds or replaces an entry, materializing the registration key at
// the end of the document if it was not present.
func (d *Document) setEntry(e *Entry) {
	if _, ok := d.fields.Get(RegistrationKey); !ok {
		d.fields.Set(RegistrationKey, nil)
	}
	d.entries.Set(e.Name, e)
}

// deleteEntry removes an entry, reporting whether it existed.
func (d *Document) deleteEntry(name string) bool {
	_, existed := d.entries.Delete(name)
	return existed
}

// TopLevelKeys returns all top-level keys in file order.
func (d *Document) TopLevelKeys() []string {
	result := make([]string, 0, d.fields.Len())
	for pair := d.fields.Oldest(); pair != nil; pair = pair.Next() {
		result = append(result, pair.Key)
	}
	return result
}

// TopLevelValue returns the serialized value of a top-level key.
// For the registration key it reflects the current entries.
func (d *Document) TopLevelValue(key string) (json.RawMessage, bool) {
	if key == RegistrationKey {
		if _, ok := d.fields.Get(RegistrationKey); !ok {
			return nil, false
		}
		data, err := json.Marshal(d.entries)
		if err != nil {
			return nil, false
		}
		return data, true
	}
	raw, ok := d.fields.Get(key)
	return raw, ok
}

// Clone returns a deep copy of the document via a marshal round-trip.
func (d *Document) Clone() (*Document, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, errors.Wrap(err, "cloning document")
	}
	clone := New()
	if err := clone.UnmarshalJSON(data); err != nil {
		return nil, errors.Wrap(err, "cloning document")
	}
	return clone, nil
}

// Equal reports whether two documents are value-equal, ignoring key order
// and formatting.
func Equal(a, b *Document) (bool, error) {
	av, err := normalize(a)
	if err != nil {
		return false, err
	}
	bv, err := normalize(b)
	if err != nil {
		return false, err
	}
	return reflect.DeepEqual(av, bv), nil
}

// normalize reduces a document to plain decoded JSON values for comparison.
func normalize(d *Document) (any, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, errors.Wrap(err, "marshaling document")
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, errors.Wrap(err, "reparsing document")
	}
	return v, nil
}

// MarshalJSON implements json.Marshaler, emitting top-level keys in file
// order with the registration map rendered from the current entries.
func (d *Document) MarshalJSON() ([]byte, error) {
	out := orderedmap.New[string, json.RawMessage]()
	for pair := d.fields.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Key == RegistrationKey {
			data, err := json.Marshal(d.entries)
			if err != nil {
				return nil, errors.Wrap(err, "marshaling registration map")
			}
			out.Set(pair.Key, data)
			continue
		}
		out.Set(pair.Key, pair.Value)
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler. The registration key, when
// present, must hold a JSON object; anything else is a schema mismatch.
func (d *Document) UnmarshalJSON(data []byte) error {
	fields := orderedmap.New[string, json.RawMessage]()
	if err := json.Unmarshal(data, fields); err != nil {
		return errors.Wrap(err, "parsing document")
	}

	entries := orderedmap.New[string, *Entry]()
	if raw, ok := fields.Get(RegistrationKey); ok {
		if kind := jsonKind(raw); kind != kindMapping {
			return mcperrors.WithKind(
				errors.Newf("registration key %q holds a %s, expected a mapping",
					RegistrationKey, kind),
				mcperrors.KindSchemaMismatch)
		}
		if err := json.Unmarshal(raw, entries); err != nil {
			return errors.Wrap(err, "parsing registration map")
		}
		for pair := entries.Oldest(); pair != nil; pair = pair.Next() {
			pair.Value.Name = pair.Key
		}
	}

	d.fields = fields
	d.entries = entries
	return nil
}

// JSON type categories, as coarse as the structural audit needs.
const (
	kindMapping  = "mapping"
	kindSequence = "sequence"
	kindString   = "string"
	kindNumber   = "number"
	kindBoolean  = "boolean"
	kindNull     = "null"
	kindUnknown  = "unknown"
)

// jsonKind returns the coarse type category of a raw JSON value.
func jsonKind(raw json.RawMessage) string {
	for _, c := range raw {
		switch c {
		case ' ', '\t', '\n', '\r':
			continue
		case '{':
			return kindMapping
		case '[':
			return kindSequence
		case '"':
			return kindString
		case 't', 'f':
			return kindBoolean
		case 'n':
			return kindNull
		default:
			return kindNumber
		}
	}
	return kindUnknown
}

// KindOfValue exposes the coarse type category of a raw JSON value for the
// structural auditor.
func KindOfValue(raw json.RawMessage) string {
	return jsonKind(raw)
}
