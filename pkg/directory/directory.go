// Package directory resolves owner references to users and teams.
//
// The detail panel shows an entity's owner and decides whether the current
// viewer may edit it. Both need a read-only view of the catalog's users and
// teams, which callers inject as a [Directory] instead of reading global
// application state.
//
// [Static] is the bundled implementation, loaded from a TOML file:
//
//	[[users]]
//	id = "u-1"
//	name = "alice"
//	display_name = "Alice Liddell"
//	teams = ["t-1"]
//
//	[[teams]]
//	id = "t-1"
//	name = "data-platform"
//	display_name = "Data Platform"
package directory

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Owner types.
const (
	OwnerUser = "user"
	OwnerTeam = "team"
)

// User is a catalog user.
type User struct {
	ID          string   `toml:"id" json:"id"`
	Name        string   `toml:"name" json:"name"`
	DisplayName string   `toml:"display_name" json:"displayName,omitempty"`
	Teams       []string `toml:"teams" json:"teams,omitempty"`
}

// Team is a catalog team.
type Team struct {
	ID          string `toml:"id" json:"id"`
	Name        string `toml:"name" json:"name"`
	DisplayName string `toml:"display_name" json:"displayName,omitempty"`
}

// Owner is a resolved owner reference.
type Owner struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Type        string `json:"type"`
}

// IsTeam reports whether the owner is a team.
func (o Owner) IsTeam() bool { return o.Type == OwnerTeam }

// Directory is a read-only lookup of users and teams.
type Directory interface {
	User(id string) (User, bool)
	Team(id string) (Team, bool)
	// TeamsOf returns the teams the user belongs to, in declaration order.
	TeamsOf(userID string) []Team
}

// ResolveOwner looks id up as a user first, then as a team. Users resolve
// with their display name as Name; teams keep their name and fall back to it
// for the display name.
func ResolveOwner(dir Directory, id string) (Owner, bool) {
	if dir == nil || id == "" {
		return Owner{}, false
	}
	if u, ok := dir.User(id); ok {
		name := u.DisplayName
		if name == "" {
			name = u.Name
		}
		return Owner{ID: u.ID, Name: name, Type: OwnerUser}, true
	}
	if t, ok := dir.Team(id); ok {
		display := t.DisplayName
		if display == "" {
			display = t.Name
		}
		return Owner{ID: t.ID, Name: t.Name, DisplayName: display, Type: OwnerTeam}, true
	}
	return Owner{}, false
}

// =============================================================================
// Static directory
// =============================================================================

// Static is an in-memory [Directory].
type Static struct {
	users map[string]User
	teams map[string]Team
}

type staticFile struct {
	Users []User `toml:"users"`
	Teams []Team `toml:"teams"`
}

// NewStatic builds a directory from users and teams. Later entries with a
// duplicate ID are ignored.
func NewStatic(users []User, teams []Team) *Static {
	s := &Static{
		users: make(map[string]User, len(users)),
		teams: make(map[string]Team, len(teams)),
	}
	for _, u := range users {
		if _, dup := s.users[u.ID]; !dup {
			s.users[u.ID] = u
		}
	}
	for _, t := range teams {
		if _, dup := s.teams[t.ID]; !dup {
			s.teams[t.ID] = t
		}
	}
	return s
}

// Parse decodes a TOML directory document.
func Parse(data []byte) (*Static, error) {
	var f staticFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse directory: %w", err)
	}
	for i, u := range f.Users {
		if u.ID == "" {
			return nil, fmt.Errorf("parse directory: user %d has no id", i)
		}
	}
	for i, t := range f.Teams {
		if t.ID == "" {
			return nil, fmt.Errorf("parse directory: team %d has no id", i)
		}
	}
	return NewStatic(f.Users, f.Teams), nil
}

// LoadFile reads a TOML directory file.
func LoadFile(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func (s *Static) User(id string) (User, bool) {
	u, ok := s.users[id]
	return u, ok
}

func (s *Static) Team(id string) (Team, bool) {
	t, ok := s.teams[id]
	return t, ok
}

func (s *Static) TeamsOf(userID string) []Team {
	u, ok := s.users[userID]
	if !ok {
		return nil
	}
	var out []Team
	for _, id := range u.Teams {
		if t, ok := s.teams[id]; ok {
			out = append(out, t)
		}
	}
	return out
}

var _ Directory = (*Static)(nil)
