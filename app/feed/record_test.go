package feed

import (
	"strings"
	"testing"
)

func TestNewNickFolds(t *testing.T) {
	tests := []struct {
		input string
		key   string
	}{
		{"alice", "alice"},
		{"Alice", "alice"},
		{"BOB-Smith", "bob-smith"},
		{"", ""},
	}

	for _, tt := range tests {
		nick := NewNick(tt.input)
		if nick.Key != tt.key {
			t.Errorf("NewNick(%q).Key = %q, want %q", tt.input, nick.Key, tt.key)
		}
		if nick.Display != tt.input {
			t.Errorf("NewNick(%q).Display = %q, want original", tt.input, nick.Display)
		}
	}

	if !NewNick("").IsEmpty() {
		t.Error("Expected empty nick to report IsEmpty")
	}
}

func TestRecordWithAppendsReason(t *testing.T) {
	record := NewRecord("name", "Bob", "nick", "bob", "url", "https://bob.example/feed")

	tagged, err := record.With(FieldReason, "not_member")
	if err != nil {
		t.Fatal(err)
	}

	if tagged.String(FieldReason) != "not_member" {
		t.Errorf("Expected reason 'not_member', got: %s", tagged.String(FieldReason))
	}
	if got := strings.Join(tagged.Keys(), ","); got != "name,nick,url,reason" {
		t.Errorf("Expected reason appended last, got: %s", got)
	}

	if got := strings.Join(record.Keys(), ","); got != "name,nick,url" {
		t.Error("Expected original record to be left untouched")
	}
	if tagged.Nick() != record.Nick() {
		t.Error("Expected tagged record to keep the nick")
	}
}

func TestRecordStringIgnoresNonStrings(t *testing.T) {
	records, err := Decode([]byte(`[{"name": 42, "nick": null, "url": "u"}]`))
	if err != nil {
		t.Fatal(err)
	}

	record := records[0]
	if record.Name() != "" {
		t.Errorf("Expected empty name for numeric field, got: %s", record.Name())
	}
	if !record.Nick().IsEmpty() {
		t.Errorf("Expected empty nick for null field, got: %s", record.Nick())
	}
	if record.URL() != "u" {
		t.Errorf("Expected url 'u', got: %s", record.URL())
	}
}
