package catalog

import (
	"slices"
	"sync"

	"github.com/petermazzocco/interior-admin/models"
)

// Listener receives a fresh snapshot of a kind's list after every change.
type Listener func(kind models.Kind, records []models.Record)

// View is the in-memory copy of the collections one dashboard session is
// looking at. It is only changed after the store confirmed a write, and it
// hands out copies so readers never see a half-applied update.
type View struct {
	mu        sync.RWMutex
	lists     map[models.Kind][]models.Record
	scopes    map[models.Kind]models.Filter
	listeners map[int]Listener
	nextID    int
}

func NewView() *View {
	return &View{
		lists:     make(map[models.Kind][]models.Record),
		scopes:    make(map[models.Kind]models.Filter),
		listeners: make(map[int]Listener),
	}
}

// Records returns a copy of the current list for kind.
func (v *View) Records(kind models.Kind) []models.Record {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return cloneAll(v.lists[kind])
}

func (v *View) Get(kind models.Kind, id string) (models.Record, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	i := slices.IndexFunc(v.lists[kind], func(r models.Record) bool { return r.ID == id })
	if i < 0 {
		return models.Record{}, false
	}
	return v.lists[kind][i].Clone(), true
}

// Subscribe registers l and returns a func that removes it.
func (v *View) Subscribe(l Listener) func() {
	v.mu.Lock()
	id := v.nextID
	v.nextID++
	v.listeners[id] = l
	v.mu.Unlock()
	return func() {
		v.mu.Lock()
		delete(v.listeners, id)
		v.mu.Unlock()
	}
}

// replace sets the kind's list to the window a list call returned. Later
// writes only show up in the view while they stay inside scope.
func (v *View) replace(kind models.Kind, recs []models.Record, scope models.Filter) {
	v.mutate(kind, func([]models.Record) []models.Record {
		v.scopes[kind] = scope
		return cloneAll(recs)
	})
}

func (v *View) add(kind models.Kind, rec models.Record) {
	v.mutate(kind, func(list []models.Record) []models.Record {
		if !v.inScope(kind, rec) {
			return list
		}
		return append(slices.Clone(list), rec.Clone())
	})
}

// put swaps the entry with rec.ID for rec as a whole. A record the view
// has not seen yet is appended, and one that left the scope is dropped.
func (v *View) put(kind models.Kind, rec models.Record) {
	v.mutate(kind, func(list []models.Record) []models.Record {
		i := slices.IndexFunc(list, func(r models.Record) bool { return r.ID == rec.ID })
		switch {
		case !v.inScope(kind, rec):
			if i < 0 {
				return list
			}
			return slices.Delete(slices.Clone(list), i, i+1)
		case i < 0:
			return append(slices.Clone(list), rec.Clone())
		}
		out := slices.Clone(list)
		out[i] = rec.Clone()
		return out
	})
}

// inScope must be called with v.mu held. A kind that was never listed has
// no scope.
func (v *View) inScope(kind models.Kind, rec models.Record) bool {
	scope, ok := v.scopes[kind]
	return !ok || scope.Matches(rec)
}

func (v *View) remove(kind models.Kind, id string) {
	v.mutate(kind, func(list []models.Record) []models.Record {
		return slices.DeleteFunc(slices.Clone(list), func(r models.Record) bool { return r.ID == id })
	})
}

func (v *View) mutate(kind models.Kind, fn func([]models.Record) []models.Record) {
	v.mu.Lock()
	next := fn(v.lists[kind])
	v.lists[kind] = next
	listeners := make([]Listener, 0, len(v.listeners))
	for _, l := range v.listeners {
		listeners = append(listeners, l)
	}
	v.mu.Unlock()

	for _, l := range listeners {
		l(kind, cloneAll(next))
	}
}

func cloneAll(recs []models.Record) []models.Record {
	out := make([]models.Record, len(recs))
	for i, r := range recs {
		out[i] = r.Clone()
	}
	return out
}

// Views keeps one View per signed-in session.
type Views struct {
	mu    sync.Mutex
	views map[string]*View
}

func NewViews() *Views {
	return &Views{views: make(map[string]*View)}
}

func (vs *Views) For(id models.Identity) *View {
	key := viewKey(id)
	vs.mu.Lock()
	defer vs.mu.Unlock()
	v, ok := vs.views[key]
	if !ok {
		v = NewView()
		vs.views[key] = v
	}
	return v
}

// Drop forgets the session's view, typically on sign-out.
func (vs *Views) Drop(id models.Identity) {
	vs.mu.Lock()
	delete(vs.views, viewKey(id))
	vs.mu.Unlock()
}

func viewKey(id models.Identity) string {
	if id.UserID != "" {
		return id.UserID
	}
	return id.Email
}
