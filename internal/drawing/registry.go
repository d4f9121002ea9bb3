package drawing

import (
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
)

// SortField selects the metadata column used to order drawings.
type SortField int

const (
	SortNone SortField = iota
	SortName
	SortTrade
	SortFloor
	SortPage
)

var sortFieldNames = map[SortField]string{
	SortNone:  "none",
	SortName:  "name",
	SortTrade: "trade",
	SortFloor: "floor",
	SortPage:  "page",
}

func (f SortField) String() string {
	if s, ok := sortFieldNames[f]; ok {
		return s
	}
	return "unknown"
}

// ParseSortField parses a field name as printed by String.
func ParseSortField(s string) (SortField, error) {
	for f, name := range sortFieldNames {
		if strings.EqualFold(s, name) {
			return f, nil
		}
	}
	return SortNone, fmt.Errorf("unknown sort field %q", s)
}

// Query filters and orders a drawing list.
type Query struct {
	Filter     string
	Sort       SortField
	Descending bool
}

// Registry owns every open drawing and tracks the active one.
//
// It is not safe for concurrent use; callers mutate it from a single event
// goroutine and post asynchronous results back to that goroutine.
type Registry struct {
	byID   map[string]*Drawing
	order  []string
	active string

	// generation increases every time a drawing is displayed. Async renders
	// capture it and apply their result only while it is still current.
	generation uint64
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]*Drawing)}
}

// Len returns the number of drawings.
func (r *Registry) Len() int {
	return len(r.order)
}

// Add registers a drawing. The first drawing added becomes active.
func (r *Registry) Add(d *Drawing) {
	r.byID[d.ID] = d
	r.order = append(r.order, d.ID)
	if r.active == "" {
		r.active = d.ID
	}
}

// Get looks up a drawing by id.
func (r *Registry) Get(id string) (*Drawing, bool) {
	d, ok := r.byID[id]
	return d, ok
}

// Active returns the active drawing, or nil.
func (r *Registry) Active() *Drawing {
	return r.byID[r.active]
}

// ActiveID returns the id of the active drawing, or "".
func (r *Registry) ActiveID() string {
	return r.active
}

// Select makes id active. It reports whether the active drawing changed.
func (r *Registry) Select(id string) (bool, error) {
	if _, ok := r.byID[id]; !ok {
		return false, fmt.Errorf("drawing %s: %w", id, ErrNotFound)
	}
	if r.active == id {
		return false, nil
	}
	r.active = id
	return true, nil
}

// Remove releases a drawing and drops its measurements. When the removed
// drawing was active, the first remaining drawing becomes active. It reports
// whether the active drawing changed.
func (r *Registry) Remove(id string) (bool, error) {
	d, ok := r.byID[id]
	if !ok {
		return false, fmt.Errorf("drawing %s: %w", id, ErrNotFound)
	}
	d.Release()
	d.Measurements = nil
	delete(r.byID, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	log.Printf("Registry: removed drawing %s (%s)", d.Name, id)

	if r.active != id {
		return false, nil
	}
	r.active = ""
	if len(r.order) > 0 {
		r.active = r.order[0]
	}
	return true, nil
}

// Reorder sorts the drawings with less, keeping the current order between
// equal drawings. The active drawing does not change.
func (r *Registry) Reorder(less func(a, b *Drawing) bool) {
	sort.SliceStable(r.order, func(i, j int) bool {
		return less(r.byID[r.order[i]], r.byID[r.order[j]])
	})
}

// All returns the drawings in list order: insertion order unless Reorder
// was called.
func (r *Registry) All() []*Drawing {
	out := make([]*Drawing, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// List returns the drawings matching q.Filter ordered by q.Sort.
func (r *Registry) List(q Query) []*Drawing {
	out := Filter(r.All(), q.Filter)
	Sort(out, q.Sort, q.Descending)
	return out
}

// UpdateMetadata replaces the free-text fields of a drawing.
func (r *Registry) UpdateMetadata(id string, meta Metadata) error {
	d, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("drawing %s: %w", id, ErrNotFound)
	}
	d.Metadata = meta
	return nil
}

// NextGeneration starts a new display and returns its token.
func (r *Registry) NextGeneration() uint64 {
	r.generation++
	return r.generation
}

// Generation returns the current display token.
func (r *Registry) Generation() uint64 {
	return r.generation
}

// Current reports whether gen is still the latest display token.
func (r *Registry) Current(gen uint64) bool {
	return gen == r.generation
}

// Close releases every drawing and empties the registry.
func (r *Registry) Close() {
	for _, id := range r.order {
		r.byID[id].Release()
	}
	r.byID = make(map[string]*Drawing)
	r.order = nil
	r.active = ""
	r.generation++
}

// Filter keeps drawings whose name, trade, floor or page contains term,
// ignoring case. An empty term keeps everything.
func Filter(ds []*Drawing, term string) []*Drawing {
	term = strings.ToLower(strings.TrimSpace(term))
	out := make([]*Drawing, 0, len(ds))
	for _, d := range ds {
		if term == "" || matches(d.Metadata, term) {
			out = append(out, d)
		}
	}
	return out
}

func matches(m Metadata, term string) bool {
	for _, f := range []string{m.Name, m.Trade, m.Floor, m.Page} {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

// Sort orders ds in place by field. Pages compare numerically when both
// parse as numbers; everything else compares as case-insensitive text.
func Sort(ds []*Drawing, field SortField, descending bool) {
	if field == SortNone {
		return
	}
	sort.SliceStable(ds, func(i, j int) bool {
		c := compare(ds[i].Metadata, ds[j].Metadata, field)
		if descending {
			return c > 0
		}
		return c < 0
	})
}

func compare(a, b Metadata, field SortField) int {
	switch field {
	case SortName:
		return compareText(a.Name, b.Name)
	case SortTrade:
		return compareText(a.Trade, b.Trade)
	case SortFloor:
		return compareText(a.Floor, b.Floor)
	case SortPage:
		an, aerr := strconv.ParseFloat(strings.TrimSpace(a.Page), 64)
		bn, berr := strconv.ParseFloat(strings.TrimSpace(b.Page), 64)
		if aerr == nil && berr == nil {
			switch {
			case an < bn:
				return -1
			case an > bn:
				return 1
			}
			return 0
		}
		return compareText(a.Page, b.Page)
	}
	return 0
}

func compareText(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}
