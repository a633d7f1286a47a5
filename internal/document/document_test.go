package document

import (
	"encoding/json"
	"slices"
	"strings"
	"testing"
)

func mustParse(t *testing.T, data string) *Document {
	t.Helper()
	doc, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return doc
}

func mustMarshal(t *testing.T, doc *Document) string {
	t.Helper()
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	return string(data)
}

func TestDocument_RoundTripPreservesUnknownKeys(t *testing.T) {
	input := `{"theme":"dark","mcpServers":{"github":{"command":"npx","custom_field":42}},"window":{"w":800}}`
	doc := mustParse(t, input)

	out := mustMarshal(t, doc)
	reparsed := mustParse(t, out)

	equal, err := Equal(doc, reparsed)
	if err != nil {
		t.Fatal(err)
	}
	if !equal {
		t.Errorf("round trip changed the document:\n in: %s\nout: %s", input, out)
	}

	entry := reparsed.GetEntry("github")
	if entry == nil {
		t.Fatal("entry lost in round trip")
	}
	if entry.unknownFields["custom_field"] == nil {
		t.Error("unknown entry field lost in round trip")
	}
}

func TestDocument_RoundTripPreservesKeyOrder(t *testing.T) {
	input := `{"zeta":1,"mcpServers":{"b":{"command":"x"},"a":{"command":"y"}},"alpha":2}`
	doc := mustParse(t, input)

	wantKeys := []string{"zeta", "mcpServers", "alpha"}
	if got := doc.TopLevelKeys(); !slices.Equal(got, wantKeys) {
		t.Errorf("TopLevelKeys = %v, want %v", got, wantKeys)
	}
	wantNames := []string{"b", "a"}
	if got := doc.Names(); !slices.Equal(got, wantNames) {
		t.Errorf("Names = %v, want %v", got, wantNames)
	}

	// Order must also survive serialization, not just the in-memory view.
	out := mustMarshal(t, doc)
	want := `{"zeta":1,"mcpServers":{"b":{"command":"x"},"a":{"command":"y"}},"alpha":2}`
	if out != want {
		t.Errorf("marshaled = %s, want %s", out, want)
	}
}

func TestDocument_EntryWithoutArgsStaysWithoutArgs(t *testing.T) {
	doc := mustParse(t, `{"mcpServers":{"svc":{"command":"run"}}}`)
	out := mustMarshal(t, doc)
	if out != `{"mcpServers":{"svc":{"command":"run"}}}` {
		t.Errorf("entry gained fields in round trip: %s", out)
	}

	// An explicit empty args list is a different document and must survive.
	doc = mustParse(t, `{"mcpServers":{"svc":{"command":"run","args":[]}}}`)
	out = mustMarshal(t, doc)
	if out != `{"mcpServers":{"svc":{"args":[],"command":"run"}}}` {
		t.Errorf("empty args list lost in round trip: %s", out)
	}
}

func TestDocument_LargeIntegersInUnknownFieldsPreserved(t *testing.T) {
	// 9007199254740993 = 2^53 + 1; a float64 round trip would flatten it to
	// 2^53. Untouched entries must keep such values digit-for-digit.
	input := `{"mcpServers":{"beta":{"command":"node","timeoutNs":9007199254740993}},"budget":9007199254740995}`
	doc := mustParse(t, input)

	out := mustMarshal(t, doc)
	if out != input {
		t.Errorf("large integers altered in round trip:\n in: %s\nout: %s", input, out)
	}
}

func TestDocument_LargeIntegersSurviveMutation(t *testing.T) {
	doc := mustParse(t, `{"mcpServers":{"beta":{"command":"node","timeoutNs":9007199254740993}}}`)

	next, _, err := AddEntry(doc, "alpha", "npx", nil, nil, true)
	if err != nil {
		t.Fatal(err)
	}

	out := mustMarshal(t, next)
	if !strings.Contains(out, "9007199254740993") {
		t.Errorf("untargeted entry's large integer rewritten: %s", out)
	}
}

func TestDocument_NoRegistrationKeyNotInvented(t *testing.T) {
	doc := mustParse(t, `{"theme":"dark"}`)
	out := mustMarshal(t, doc)
	if out != `{"theme":"dark"}` {
		t.Errorf("registration key invented on save: %s", out)
	}
}

func TestDocument_MarkerRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		managed bool
	}{
		{"true marker", `true`, true},
		{"false marker", `false`, false},
		{"string marker", `"yes"`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := `{"mcpServers":{"svc":{"_shesha_managed":` + tt.raw + `,"command":"run"}}}`
			doc := mustParse(t, input)

			entry := doc.GetEntry("svc")
			if entry.Managed() != tt.managed {
				t.Errorf("Managed() = %v, want %v", entry.Managed(), tt.managed)
			}
			if !entry.HasMarker() {
				t.Error("HasMarker() = false, want true")
			}

			out := mustMarshal(t, doc)
			if out != input {
				t.Errorf("marker value changed in round trip:\n in: %s\nout: %s", input, out)
			}
		})
	}
}

func TestDocument_Clone(t *testing.T) {
	doc := mustParse(t, `{"mcpServers":{"svc":{"command":"run"}}}`)
	clone, err := doc.Clone()
	if err != nil {
		t.Fatal(err)
	}

	clone.GetEntry("svc").Command = "changed"
	if doc.GetEntry("svc").Command != "run" {
		t.Error("mutating the clone changed the original")
	}
}

func TestKindOfValue(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`{}`, "mapping"},
		{`[]`, "sequence"},
		{`"s"`, "string"},
		{`42`, "number"},
		{`-1.5`, "number"},
		{`true`, "boolean"},
		{`false`, "boolean"},
		{`null`, "null"},
		{` {"a":1}`, "mapping"},
	}

	for _, tt := range tests {
		if got := KindOfValue(json.RawMessage(tt.raw)); got != tt.want {
			t.Errorf("KindOfValue(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
