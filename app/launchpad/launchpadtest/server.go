// Package launchpadtest runs an in-process imitation of the parts of the
// Launchpad REST API that feeds-roster talks to.
package launchpadtest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/feeds-roster/app/launchpad"
)

const DefaultPageSize = 75

type Server struct {
	*httptest.Server

	mu           sync.Mutex
	people       map[string]launchpad.Person
	participants map[string][]string
	superTeams   map[string][]string
	failures     map[string]int
	requests     []string
	pageSize     int
}

func NewServer() *Server {
	s := &Server{
		people:       make(map[string]launchpad.Person),
		participants: make(map[string][]string),
		superTeams:   make(map[string][]string),
		failures:     make(map[string]int),
		pageSize:     DefaultPageSize,
	}
	s.Server = httptest.NewServer(s.router())
	return s
}

func (s *Server) router() *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(func(c *gin.Context) {
		s.mu.Lock()
		s.requests = append(s.requests, c.Request.URL.Path)
		s.mu.Unlock()
		c.Next()
	})

	r.GET("/:entity", s.getEntity)
	r.GET("/:entity/:collection", s.getCollection)

	return r
}

func (s *Server) AddPerson(name, displayName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.people[name] = launchpad.Person{
		Name:        name,
		DisplayName: displayName,
		WebLink:     "https://launchpad.net/~" + name,
	}
}

// AddTeam registers a team and its participants. Participants that are not
// yet known are registered as people too.
func (s *Server) AddTeam(team string, participants ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.people[team] = launchpad.Person{Name: team, DisplayName: team, IsTeam: true}
	s.participants[team] = append(s.participants[team], participants...)
	for _, name := range participants {
		if _, ok := s.people[name]; !ok {
			s.people[name] = launchpad.Person{Name: name, DisplayName: name}
		}
	}
}

func (s *Server) AddSuperTeams(name string, teams ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.superTeams[name] = append(s.superTeams[name], teams...)
}

// Fail makes every request touching name answer with status.
func (s *Server) Fail(name string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[name] = status
}

func (s *Server) SetPageSize(size int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pageSize = size
}

// Requests returns the paths requested so far, in order.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// Lookups returns how many times the person entry for name was requested.
func (s *Server) Lookups(name string) int {
	count := 0
	for _, path := range s.Requests() {
		if path == "/~"+name {
			count++
		}
	}
	return count
}

func (s *Server) getEntity(c *gin.Context) {
	name, ok := s.resolve(c)
	if !ok {
		return
	}

	s.mu.Lock()
	person, found := s.people[name]
	s.mu.Unlock()

	if !found {
		c.String(http.StatusNotFound, "Object: %s, name: '~%s'", "<PersonSet>", name)
		return
	}
	c.JSON(http.StatusOK, person)
}

func (s *Server) getCollection(c *gin.Context) {
	name, ok := s.resolve(c)
	if !ok {
		return
	}

	s.mu.Lock()
	_, found := s.people[name]
	var names []string
	switch c.Param("collection") {
	case "participants":
		names = append(names, s.participants[name]...)
	case "super_teams":
		names = append(names, s.superTeams[name]...)
	default:
		s.mu.Unlock()
		c.Status(http.StatusNotFound)
		return
	}
	pageSize := s.pageSize
	s.mu.Unlock()

	if !found {
		c.Status(http.StatusNotFound)
		return
	}

	sort.Strings(names)

	start, _ := strconv.Atoi(c.DefaultQuery("ws.start", "0"))
	if size, err := strconv.Atoi(c.Query("ws.size")); err == nil && size > 0 {
		pageSize = size
	}
	start = min(max(start, 0), len(names))
	end := min(start+pageSize, len(names))

	entries := make([]launchpad.Person, 0, end-start)
	for _, n := range names[start:end] {
		entries = append(entries, launchpad.Person{Name: n, DisplayName: n})
	}

	page := gin.H{
		"total_size": len(names),
		"start":      start,
		"entries":    entries,
	}
	if end < len(names) {
		page["next_collection_link"] = fmt.Sprintf("http://%s/~%s/%s?ws.size=%d&ws.start=%d",
			c.Request.Host, name, c.Param("collection"), pageSize, end)
	}

	c.JSON(http.StatusOK, page)
}

func (s *Server) resolve(c *gin.Context) (string, bool) {
	entity := c.Param("entity")
	if !strings.HasPrefix(entity, "~") {
		c.Status(http.StatusNotFound)
		return "", false
	}
	name := strings.TrimPrefix(entity, "~")

	s.mu.Lock()
	status, failing := s.failures[name]
	s.mu.Unlock()

	if failing {
		c.String(status, "injected failure for ~%s", name)
		return "", false
	}
	return name, true
}
