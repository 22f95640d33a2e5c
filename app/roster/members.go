package roster

import (
	"context"
	"log/slog"
)

// FetchMembers returns the folded names of every direct and indirect
// participant of team.
func FetchMembers(ctx context.Context, dir Directory, team string) (MemberSet, error) {
	names, err := dir.TransitiveMembers(ctx, team)
	if err != nil {
		return nil, &FetchError{Team: team, Err: err}
	}

	members := NewMemberSet(names...)
	slog.Debug("Membership fetched", "team", team, "participants", len(names), "unique", len(members))

	return members, nil
}
