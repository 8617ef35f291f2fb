package inventory

import (
	"maps"
	"slices"
	"strings"
	"time"

	"pantrytracker/recipe"
	"pantrytracker/storage"
)

// PendingKind names an operation that a refresh has not yet confirmed.
type PendingKind string

const (
	PendingImport PendingKind = "import"
	PendingDelete PendingKind = "delete"
)

// Marker is a transient presentation hint for one item.
type Marker string

const (
	MarkerPopUp   Marker = "pop-up"
	MarkerPopAway Marker = "pop-away"
)

type Pending struct {
	Kind  PendingKind  `json:"kind"`
	Item  storage.Item `json:"item"`
	Since time.Time    `json:"since"`
}

// State is the application state returned by every Controller operation.
// Confirmed holds only what the last full read returned; optimistic changes
// live in Pending until a refresh confirms them.
type State struct {
	Confirmed   []storage.Item     `json:"confirmed"`
	Pending     map[string]Pending `json:"pending,omitempty"`
	Markers     map[string]Marker  `json:"markers,omitempty"`
	Query       string             `json:"query,omitempty"`
	Recipe      string             `json:"recipe,omitempty"`
	RefreshedAt time.Time          `json:"refreshed_at"`
}

func newState() State {
	return State{
		Confirmed: []storage.Item{},
		Pending:   map[string]Pending{},
		Markers:   map[string]Marker{},
	}
}

func (s State) clone() State {
	s.Confirmed = slices.Clone(s.Confirmed)
	s.Pending = maps.Clone(s.Pending)
	s.Markers = maps.Clone(s.Markers)
	if s.Pending == nil {
		s.Pending = map[string]Pending{}
	}
	if s.Markers == nil {
		s.Markers = map[string]Marker{}
	}
	return s
}

// Items is the visible inventory: confirmed items with pending imports laid
// over them and pending deletions hidden.
func (s State) Items() []storage.Item {
	items := make([]storage.Item, 0, len(s.Confirmed)+len(s.Pending))
	seen := make(map[string]bool, len(s.Confirmed))

	for _, it := range s.Confirmed {
		seen[it.Name] = true
		p, ok := s.Pending[it.Name]
		switch {
		case !ok:
			items = append(items, it)
		case p.Kind == PendingImport:
			items = append(items, p.Item)
		}
	}
	for name, p := range s.Pending {
		if p.Kind == PendingImport && !seen[name] {
			items = append(items, p.Item)
		}
	}

	storage.SortItems(items)
	return items
}

// Search filters the visible inventory by case-insensitive substring on name.
func (s State) Search(query string) []storage.Item {
	q := strings.ToLower(query)
	out := make([]storage.Item, 0)
	for _, it := range s.Items() {
		if strings.Contains(strings.ToLower(it.Name), q) {
			out = append(out, it)
		}
	}
	return out
}

// Lookup finds a visible item by exact name.
func (s State) Lookup(name string) (storage.Item, bool) {
	for _, it := range s.Items() {
		if it.Name == name {
			return it, true
		}
	}
	return storage.Item{}, false
}

// RecipeLines is the display form of the current recipe text.
func (s State) RecipeLines() []recipe.Line {
	return recipe.Render(s.Recipe)
}

// reconcile replaces the confirmed list and drops the pending entries it confirms.
func (s *State) reconcile(items []storage.Item, now time.Time) {
	present := make(map[string]bool, len(items))
	for _, it := range items {
		present[it.Name] = true
	}
	for name, p := range s.Pending {
		if (p.Kind == PendingImport && present[name]) || (p.Kind == PendingDelete && !present[name]) {
			delete(s.Pending, name)
		}
	}
	s.Confirmed = items
	s.RefreshedAt = now
}
