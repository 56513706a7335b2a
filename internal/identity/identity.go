// Package identity holds the structured user references shared by the backend
// and the viewer-side client.
package identity

import (
	"regexp"
	"strings"
)

// legacyRef matches identifiers with an embedded display name: "user_123 (Jan Kowalski)".
var legacyRef = regexp.MustCompile(`^(.+?)\s*\((.+?)\)$`)

// Ref is a single reference to a user in an assignee or share-target list.
type Ref struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName,omitempty" yaml:"displayName,omitempty"`
}

// ParseRef splits a raw list entry into a Ref. Legacy entries that carry the
// display name in parentheses are split; everything else is taken as an id.
func ParseRef(raw string) Ref {
	raw = strings.TrimSpace(raw)
	if m := legacyRef.FindStringSubmatch(raw); m != nil {
		return Ref{ID: strings.TrimSpace(m[1]), DisplayName: strings.TrimSpace(m[2])}
	}
	return Ref{ID: raw}
}

// NormalizeIDs parses every entry with ParseRef and returns the non-empty ids
// in input order. Duplicates are kept.
func NormalizeIDs(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		if ref := ParseRef(r); ref.ID != "" {
			out = append(out, ref.ID)
		}
	}
	return out
}

// Viewer is whoever is currently looking at the task list. Any of the three
// candidates may be empty while the identity provider is still resolving.
type Viewer struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

// Known reports whether at least one identity candidate is available.
func (v Viewer) Known() bool {
	return v.ID != "" || v.Email != "" || v.Name != ""
}

func (v Viewer) candidates() []string {
	out := make([]string, 0, 3)
	for _, c := range []string{v.ID, v.Email, v.Name} {
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

// Matches reports whether id equals any of the viewer's non-empty candidates.
func (v Viewer) Matches(id string) bool {
	if id == "" {
		return false
	}
	for _, c := range v.candidates() {
		if c == id {
			return true
		}
	}
	return false
}

// In reports whether any viewer candidate is a member of the normalized list.
func (v Viewer) In(list []string) bool {
	for _, id := range NormalizeIDs(list) {
		if v.Matches(id) {
			return true
		}
	}
	return false
}

// Names is a user directory: id to display name.
type Names map[string]string

// Resolve returns a printable name for id as seen by viewer.
func (n Names) Resolve(id string, viewer Viewer) string {
	if id != "" && id == viewer.ID {
		switch {
		case viewer.Name != "":
			return viewer.Name
		case viewer.Email != "":
			return viewer.Email
		default:
			return "You"
		}
	}
	if ref := ParseRef(id); ref.DisplayName != "" {
		return ref.DisplayName
	}
	if strings.Contains(id, "@") {
		return id
	}
	if name, ok := n[id]; ok && name != "" {
		return name
	}
	return id
}
