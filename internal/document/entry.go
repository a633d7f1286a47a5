package document

import (
	"bytes"
	"encoding/json"
)

// ManagedMarker is the provenance field set on entries created by this suite.
// Entries carrying it can be distinguished from hand-authored ones.
const ManagedMarker = "_shesha_managed"

// Entry represents a single server registration inside the registration map.
type Entry struct {
	// Name is the entry's unique key within the registration map.
	// It is the map key in the file, not a field of the entry object.
	Name string `json:"-"`

	// Command is the executable to launch the server. Required.
	Command string `json:"command"`

	// Args are command-line arguments passed to Command.
	// A nil slice means the file had no args field; an empty non-nil slice
	// round-trips as [].
	Args []string `json:"args,omitempty"`

	// Env contains environment variables for the server process.
	// Nil means the entry has no env block.
	Env map[string]string `json:"env,omitempty"`

	// managed holds the provenance marker's raw value so that hand-edited
	// markers (including non-boolean ones) round-trip verbatim.
	managed json.RawMessage

	// unknownFields stores JSON fields not explicitly defined in this struct.
	// Entries are otherwise opaque; everything unknown must survive untouched.
	unknownFields map[string]json.RawMessage
}

// Managed reports whether the entry carries the suite provenance marker
// with a true value.
func (e *Entry) Managed() bool {
	return bytes.Equal(bytes.TrimSpace(e.managed), []byte("true"))
}

// HasMarker reports whether the provenance marker field is present at all,
// regardless of its value.
func (e *Entry) HasMarker() bool {
	return e.managed != nil
}

// SetManaged sets or clears the provenance marker.
func (e *Entry) SetManaged(managed bool) {
	if managed {
		e.managed = json.RawMessage("true")
	} else {
		e.managed = nil
	}
}

// MarshalJSON implements json.Marshaler to include unknown fields in output.
func (e *Entry) MarshalJSON() ([]byte, error) {
	result := make(map[string]any)

	// Unknown fields and the marker are emitted as the raw bytes captured at
	// parse time. Decoding them first would funnel numbers through float64
	// and rewrite integers beyond its exact range.
	for k, v := range e.unknownFields {
		result[k] = v
	}

	result["command"] = e.Command
	if e.Args != nil {
		result["args"] = e.Args
	}
	if e.Env != nil {
		result["env"] = e.Env
	}
	if e.managed != nil {
		result[ManagedMarker] = e.managed
	}

	return json.Marshal(result)
}

// UnmarshalJSON implements json.Unmarshaler to capture unknown fields.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if v, ok := raw["command"]; ok {
		if err := json.Unmarshal(v, &e.Command); err != nil {
			return err
		}
		delete(raw, "command")
	}
	if v, ok := raw["args"]; ok {
		if err := json.Unmarshal(v, &e.Args); err != nil {
			return err
		}
		if e.Args == nil {
			e.Args = []string{}
		}
		delete(raw, "args")
	}
	if v, ok := raw["env"]; ok {
		if err := json.Unmarshal(v, &e.Env); err != nil {
			return err
		}
		if e.Env == nil {
			e.Env = map[string]string{}
		}
		delete(raw, "env")
	}
	if v, ok := raw[ManagedMarker]; ok {
		e.managed = v
		delete(raw, ManagedMarker)
	}

	if len(raw) > 0 {
		e.unknownFields = raw
	}

	return nil
}
