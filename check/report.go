package check

import (
	"fmt"
	"slices"
	"sync"

	"github.com/hupe1980/recstore/idset"
	"github.com/hupe1980/recstore/record"
)

// Inconsistency is one broken reference.
type Inconsistency struct {
	Kind    record.Kind
	ID      uint64
	Message string
}

func (i Inconsistency) String() string {
	return fmt.Sprintf("%s record %d: %s", i.Kind, i.ID, i.Message)
}

// Report collects the inconsistencies found by a Checker.
type Report struct {
	mu      sync.Mutex
	items   []Inconsistency
	ids     map[record.Kind]*idset.Set
	checked map[record.Kind]uint64
}

func newReport() *Report {
	return &Report{
		ids:     make(map[record.Kind]*idset.Set),
		checked: make(map[record.Kind]uint64),
	}
}

func (r *Report) add(kind record.Kind, id uint64, format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, Inconsistency{Kind: kind, ID: id, Message: fmt.Sprintf(format, args...)})
	set, ok := r.ids[kind]
	if !ok {
		set = idset.New()
		r.ids[kind] = set
	}
	set.Add(id)
}

func (r *Report) count(kind record.Kind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checked[kind]++
}

// Inconsistencies returns every finding in discovery order.
func (r *Report) Inconsistencies() []Inconsistency {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.items)
}

// Len returns the number of findings. A record can have several.
func (r *Report) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

// Consistent reports whether nothing was found.
func (r *Report) Consistent() bool {
	return r.Len() == 0
}

// IDs returns the inconsistent record ids of kind. The set is a copy.
func (r *Report) IDs(kind record.Kind) *idset.Set {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := idset.New()
	if set, ok := r.ids[kind]; ok {
		out.Union(set)
	}
	return out
}

// Kinds returns the kinds with findings in store order.
func (r *Report) Kinds() []record.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kinds []record.Kind
	for _, k := range record.Kinds {
		if _, ok := r.ids[k]; ok {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// Checked returns the number of in-use records of kind that were validated.
func (r *Report) Checked(kind record.Kind) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.checked[kind]
}
