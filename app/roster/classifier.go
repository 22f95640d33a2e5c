package roster

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"

	"github.com/lysyi3m/feeds-roster/app/console"
	"github.com/lysyi3m/feeds-roster/app/feed"
	"github.com/lysyi3m/feeds-roster/app/launchpad"
)

const superTeamsShown = 5

// Classifier decides, once per folded nick, whether a feed owner still
// belongs to the team.
type Classifier struct {
	dir      Directory
	team     string
	members  MemberSet
	allow    AllowList
	printer  *console.Printer
	verdicts map[string]Verdict
}

func NewClassifier(dir Directory, team string, members MemberSet, allow AllowList, printer *console.Printer) *Classifier {
	return &Classifier{
		dir:      dir,
		team:     team,
		members:  members,
		allow:    allow,
		printer:  printer,
		verdicts: make(map[string]Verdict),
	}
}

// Classify returns the verdict for nick. Allow-listed nicks and roster hits
// never reach the directory, and each key is looked up at most once.
func (c *Classifier) Classify(ctx context.Context, nick feed.Nick) Verdict {
	if v, ok := c.verdicts[nick.Key]; ok {
		v.Nick = nick
		return v
	}

	v := c.classify(ctx, nick)
	c.verdicts[nick.Key] = v
	return v
}

func (c *Classifier) classify(ctx context.Context, nick feed.Nick) Verdict {
	if c.allow.Has(nick.Key) || c.members.Has(nick.Key) {
		return Verdict{Nick: nick, Outcome: OutcomeMember}
	}

	person, err := c.dir.LookupPerson(ctx, nick.Key)
	switch {
	case errors.Is(err, launchpad.ErrNotFound):
		return Verdict{Nick: nick, Outcome: OutcomeNotFound, Err: err}
	case err != nil:
		slog.Warn("Lookup failed, keeping feed", "nick", nick.Display, "error", err)
		return Verdict{Nick: nick, Outcome: OutcomeError, Err: err}
	}

	return Verdict{Nick: nick, Outcome: OutcomeNotMember, Person: person}
}

// Reconcile classifies every distinct nick in records and splits the
// records into kept and removed. Removed records are copies carrying a
// reason field. Only context cancellation makes it fail.
func (c *Classifier) Reconcile(ctx context.Context, records []*feed.Record) (*Result, error) {
	nicks := c.uniqueNicks(records)
	c.printer.Println("Checking %d unique nicks...", len(nicks))

	result := &Result{Total: len(records)}

	for _, nick := range nicks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		v := c.Classify(ctx, nick)
		switch v.Outcome {
		case OutcomeMember:
			c.printer.Detail("  %s: OK (member)", nick)
		case OutcomeNotMember:
			c.printer.Println("  %s: NOT a member of ~%s", nick, c.team)
		case OutcomeNotFound:
			c.printer.Println("  %s: User not found on Launchpad", nick)
		case OutcomeError:
			c.printer.Warn("API error checking %s: %v", nick, v.Err)
			result.Errored = append(result.Errored, nick)
		}
	}

	for _, record := range records {
		nick := record.Nick()
		if nick.IsEmpty() || c.allow.Has(nick.Key) {
			result.Kept = append(result.Kept, record)
			continue
		}

		v := c.verdicts[nick.Key]
		if !v.Outcome.Removable() {
			result.Kept = append(result.Kept, record)
			continue
		}

		tagged, err := record.With(feed.FieldReason, string(v.Outcome))
		if err != nil {
			return nil, err
		}
		result.Removed = append(result.Removed, Removal{Record: tagged, Reason: v.Outcome})
	}

	return result, nil
}

// uniqueNicks returns one nick per folded key, skipping empty and
// allow-listed ones, sorted by key. The first spelling seen is used for
// display.
func (c *Classifier) uniqueNicks(records []*feed.Record) []feed.Nick {
	byKey := make(map[string]feed.Nick)
	for _, record := range records {
		nick := record.Nick()
		if nick.IsEmpty() || c.allow.Has(nick.Key) {
			continue
		}
		if _, ok := byKey[nick.Key]; !ok {
			byKey[nick.Key] = nick
		}
	}

	nicks := make([]feed.Nick, 0, len(byKey))
	for _, nick := range byKey {
		nicks = append(nicks, nick)
	}
	sort.Slice(nicks, func(i, j int) bool { return nicks[i].Key < nicks[j].Key })
	return nicks
}

// Check prints a detailed status for each nick, the way an operator would
// want it when investigating a single account.
func (c *Classifier) Check(ctx context.Context, names ...string) []Verdict {
	verdicts := make([]Verdict, 0, len(names))

	for _, name := range names {
		nick := feed.NewNick(name)
		c.printer.Println("\nChecking: %s (LP: %s)", nick.Display, nick.Key)

		if c.allow.Has(nick.Key) {
			c.printer.Println("  Status: ALLOWED (exempt from membership check)")
			verdicts = append(verdicts, Verdict{Nick: nick, Outcome: OutcomeMember})
			continue
		}

		v := c.Classify(ctx, nick)
		verdicts = append(verdicts, v)

		switch v.Outcome {
		case OutcomeMember:
			c.printer.Println("  Status: MEMBER (found in ~%s participants)", c.team)
		case OutcomeNotFound:
			c.printer.Println("  Status: NOT FOUND on Launchpad")
		case OutcomeError:
			c.printer.Println("  Status: ERROR (couldn't verify: %v)", v.Err)
		case OutcomeNotMember:
			c.printer.Println("  Status: NOT A MEMBER")
			if c.printer.Verbose() && v.Person != nil {
				c.describe(ctx, v.Person)
			}
		}
	}

	return verdicts
}

func (c *Classifier) describe(ctx context.Context, person *launchpad.Person) {
	c.printer.Println("  Display name: %s", person.DisplayName)
	if person.WebLink != "" {
		c.printer.Println("  Profile: %s", person.WebLink)
	}
	if person.IsTeam {
		c.printer.Println("  Note: ~%s is a team, not a person", person.Name)
	}

	teams, err := c.dir.SuperTeams(ctx, person.Name, superTeamsShown)
	if err != nil {
		c.printer.Println("  (couldn't fetch teams: %v)", err)
		return
	}
	if len(teams) > 0 {
		c.printer.Println("  Some teams: %s", strings.Join(teams, ", "))
	}
}
