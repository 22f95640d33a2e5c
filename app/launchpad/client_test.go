package launchpad_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lysyi3m/feeds-roster/app/launchpad"
	"github.com/lysyi3m/feeds-roster/app/launchpad/launchpadtest"
)

func newClient(srv *launchpadtest.Server) *launchpad.Client {
	return launchpad.New(srv.URL, "feeds-roster-test", 5*time.Second)
}

func TestTransitiveMembersFollowsPages(t *testing.T) {
	srv := launchpadtest.NewServer()
	defer srv.Close()

	srv.AddTeam("ubuntumembers", "alice", "bob", "carol", "dave", "erin")
	srv.SetPageSize(2)

	members, err := newClient(srv).TransitiveMembers(context.Background(), "ubuntumembers")
	if err != nil {
		t.Fatalf("TransitiveMembers: %v", err)
	}

	want := []string{"alice", "bob", "carol", "dave", "erin"}
	if len(members) != len(want) {
		t.Fatalf("got %d members, want %d: %v", len(members), len(want), members)
	}
	for i, w := range want {
		if members[i] != w {
			t.Errorf("members[%d] = %q, want %q", i, members[i], w)
		}
	}
}

func TestTransitiveMembersUnknownTeam(t *testing.T) {
	srv := launchpadtest.NewServer()
	defer srv.Close()

	_, err := newClient(srv).TransitiveMembers(context.Background(), "nosuchteam")
	if !errors.Is(err, launchpad.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestTransitiveMembersServerError(t *testing.T) {
	srv := launchpadtest.NewServer()
	defer srv.Close()

	srv.AddTeam("ubuntumembers", "alice")
	srv.Fail("ubuntumembers", http.StatusServiceUnavailable)

	_, err := newClient(srv).TransitiveMembers(context.Background(), "ubuntumembers")

	var apiErr *launchpad.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want APIError", err)
	}
	if apiErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("StatusCode = %d, want 503", apiErr.StatusCode)
	}
	if errors.Is(err, launchpad.ErrNotFound) {
		t.Error("503 must not be reported as not found")
	}
}

func TestLookupPerson(t *testing.T) {
	srv := launchpadtest.NewServer()
	defer srv.Close()

	srv.AddPerson("bob", "Bob Builder")

	person, err := newClient(srv).LookupPerson(context.Background(), "bob")
	if err != nil {
		t.Fatalf("LookupPerson: %v", err)
	}
	if person.Name != "bob" || person.DisplayName != "Bob Builder" {
		t.Errorf("person = %+v, want bob / Bob Builder", person)
	}
}

func TestLookupPersonNotFound(t *testing.T) {
	srv := launchpadtest.NewServer()
	defer srv.Close()

	_, err := newClient(srv).LookupPerson(context.Background(), "carol")

	var notFound *launchpad.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("err = %v, want NotFoundError", err)
	}
	if notFound.Name != "carol" {
		t.Errorf("Name = %q, want carol", notFound.Name)
	}
}

func TestLookupPersonMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{not json"))
	}))
	defer srv.Close()

	c := launchpad.New(srv.URL, "test", 5*time.Second)
	_, err := c.LookupPerson(context.Background(), "bob")
	if err == nil {
		t.Fatal("expected decode error")
	}
	if errors.Is(err, launchpad.ErrNotFound) {
		t.Error("decode error must not be reported as not found")
	}
}

func TestLookupPersonConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := launchpad.New(srv.URL, "test", 5*time.Second)
	_, err := c.LookupPerson(context.Background(), "bob")
	if err == nil {
		t.Fatal("expected connection error")
	}
	if errors.Is(err, launchpad.ErrNotFound) {
		t.Error("connection error must not be reported as not found")
	}
}

func TestSuperTeamsLimit(t *testing.T) {
	srv := launchpadtest.NewServer()
	defer srv.Close()

	srv.AddPerson("bob", "Bob")
	srv.AddSuperTeams("bob", "t1", "t2", "t3", "t4", "t5", "t6", "t7")

	teams, err := newClient(srv).SuperTeams(context.Background(), "bob", 5)
	if err != nil {
		t.Fatalf("SuperTeams: %v", err)
	}
	if len(teams) != 5 {
		t.Errorf("got %d teams, want 5: %v", len(teams), teams)
	}
}

func TestClientSendsUserAgent(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
		w.Write([]byte(`{"name": "bob"}`))
	}))
	defer srv.Close()

	c := launchpad.New(srv.URL+"/", "terra-membership-validator", 5*time.Second)
	if _, err := c.LookupPerson(context.Background(), "bob"); err != nil {
		t.Fatal(err)
	}
	if got != "terra-membership-validator" {
		t.Errorf("User-Agent = %q", got)
	}
}
