package roster

import (
	"context"
	"fmt"
	"sort"

	"github.com/lysyi3m/feeds-roster/app/feed"
	"github.com/lysyi3m/feeds-roster/app/launchpad"
)

type Outcome string

const (
	OutcomeMember    Outcome = "member"
	OutcomeNotMember Outcome = "not_member"
	OutcomeNotFound  Outcome = "not_found"
	OutcomeError     Outcome = "error"
)

// Removable reports whether records with this outcome are dropped.
func (o Outcome) Removable() bool {
	return o == OutcomeNotMember || o == OutcomeNotFound
}

func (o Outcome) Label() string {
	switch o {
	case OutcomeMember:
		return "member"
	case OutcomeNotMember:
		return "not a member"
	case OutcomeNotFound:
		return "not found"
	case OutcomeError:
		return "error"
	}
	return string(o)
}

// Directory is the remote roster. *launchpad.Client satisfies it.
type Directory interface {
	TransitiveMembers(ctx context.Context, team string) ([]string, error)
	LookupPerson(ctx context.Context, name string) (*launchpad.Person, error)
	SuperTeams(ctx context.Context, name string, limit int) ([]string, error)
}

var _ Directory = (*launchpad.Client)(nil)

// MemberSet holds folded participant names.
type MemberSet map[string]struct{}

func NewMemberSet(names ...string) MemberSet {
	set := make(MemberSet, len(names))
	for _, name := range names {
		set[feed.NewNick(name).Key] = struct{}{}
	}
	return set
}

func (m MemberSet) Has(key string) bool {
	_, ok := m[key]
	return ok
}

func (m MemberSet) Sorted() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// AllowList holds folded nicks that are never checked against the roster.
type AllowList map[string]struct{}

func NewAllowList(nicks ...string) AllowList {
	list := make(AllowList, len(nicks))
	for _, nick := range nicks {
		if key := feed.NewNick(nick).Key; key != "" {
			list[key] = struct{}{}
		}
	}
	return list
}

func (a AllowList) Has(key string) bool {
	_, ok := a[key]
	return ok
}

type Verdict struct {
	Nick    feed.Nick
	Outcome Outcome
	Person  *launchpad.Person
	Err     error
}

type Removal struct {
	Record *feed.Record
	Reason Outcome
}

type Result struct {
	Total   int
	Kept    []*feed.Record
	Removed []Removal
	Errored []feed.Nick
}

func (r *Result) HasChanges() bool {
	return len(r.Removed) > 0
}

// FetchError means the membership baseline could not be established.
type FetchError struct {
	Team string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch members of ~%s: %v", e.Team, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
