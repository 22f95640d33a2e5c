package feed

import (
	"encoding/json"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"golang.org/x/text/cases"
)

const (
	FieldName   = "name"
	FieldNick   = "nick"
	FieldURL    = "url"
	FieldReason = "reason"
)

var folder = cases.Fold()

// Nick carries a Launchpad identifier in the case it was written in and in
// its folded form, which is what membership checks and lookups use.
type Nick struct {
	Display string
	Key     string
}

func NewNick(s string) Nick {
	return Nick{Display: s, Key: folder.String(s)}
}

func (n Nick) IsEmpty() bool {
	return n.Key == ""
}

func (n Nick) String() string {
	return n.Display
}

// Record is one entry of the feeds file. Fields are kept in file order and
// passed through untouched; only name, nick and url are interpreted.
type Record struct {
	fields *orderedmap.OrderedMap[string, json.RawMessage]
	nick   Nick
}
