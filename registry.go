package metadata

import (
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Registry is an in-process metadata side table.
//
// Registry attaches nothing to its targets;
// every annotation lives inside the Registry, keyed by target identity.
// A slot created for a target is kept for the lifetime of the Registry,
// and reading never creates state.
//
// The zero value is ready to use.
// Registry is safe for concurrent use, with fine grained locking:
// working with one target never blocks working with another,
// and separate scopes of one target have separate locks as well.
type Registry struct {
	mu    sync.RWMutex
	slots map[identity]*slot
}

// slot holds every scoped metadata map of a single target.
type slot struct {
	// id is the unique identifier assigned to the slot on creation,
	// and the base of each scope id within the slot.
	id string
	// ref pins the target for the lifetime of the slot,
	// so the target's address cannot be recycled for an unrelated value.
	ref any

	mu     sync.RWMutex
	scopes map[string]*metadataMap
}

// metadataMap is the key/value store of a single scope.
type metadataMap struct {
	mu     sync.RWMutex
	values map[string]any
	// order holds the keys by their first definition.
	order []string
}

func (r *Registry) Define(target any, key string, value any, member ...string) error {
	id, err := identityOf(target)
	if err != nil {
		return err
	}
	sl := r.slotFor(id, target)
	sl.scopeFor(sl.scopeID(member)).set(key, value)
	return nil
}

func (r *Registry) Lookup(target any, key string, member ...string) (any, bool) {
	m, ok := r.scopeOf(target, member)
	if !ok {
		return nil, false
	}
	return m.lookup(key)
}

func (r *Registry) Has(target any, key string, member ...string) bool {
	m, ok := r.scopeOf(target, member)
	if !ok {
		return false
	}
	_, ok = m.lookup(key)
	return ok
}

// Keys returns a copy, detached from the scope's own key order.
func (r *Registry) Keys(target any, member ...string) ([]string, bool) {
	m, ok := r.scopeOf(target, member)
	if !ok {
		return nil, false
	}
	return m.keys(), true
}

// slotFor returns the target's slot, creating it on first use.
func (r *Registry) slotFor(id identity, target any) *slot {
	r.mu.RLock()
	sl, ok := r.slots[id]
	r.mu.RUnlock()
	if ok {
		return sl
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if sl, ok := r.slots[id]; ok {
		return sl
	}
	if r.slots == nil {
		r.slots = make(map[identity]*slot)
	}
	sl = &slot{id: uuid.New().String(), ref: target}
	r.slots[id] = sl
	return sl
}

// scopeOf is the read path to a scope's metadata map.
func (r *Registry) scopeOf(target any, member []string) (*metadataMap, bool) {
	id, err := identityOf(target)
	if err != nil {
		return nil, false
	}
	r.mu.RLock()
	sl, ok := r.slots[id]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return sl.lookupScope(sl.scopeID(member))
}

// scopeID derives the scope identifier for a member path within the slot.
func (sl *slot) scopeID(member []string) string {
	if len(member) == 0 {
		return sl.id
	}
	return sl.id + "." + strings.Join(member, ".")
}

// scopeFor returns the scope's metadata map, creating it on first write.
func (sl *slot) scopeFor(scopeID string) *metadataMap {
	sl.mu.RLock()
	m, ok := sl.scopes[scopeID]
	sl.mu.RUnlock()
	if ok {
		return m
	}
	sl.mu.Lock()
	defer sl.mu.Unlock()
	if m, ok := sl.scopes[scopeID]; ok {
		return m
	}
	if sl.scopes == nil {
		sl.scopes = make(map[string]*metadataMap)
	}
	m = &metadataMap{}
	sl.scopes[scopeID] = m
	return m
}

func (sl *slot) lookupScope(scopeID string) (*metadataMap, bool) {
	sl.mu.RLock()
	defer sl.mu.RUnlock()
	m, ok := sl.scopes[scopeID]
	return m, ok
}

func (m *metadataMap) set(key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values == nil {
		m.values = make(map[string]any)
	}
	if _, ok := m.values[key]; !ok {
		m.order = append(m.order, key)
	}
	m.values[key] = value
}

func (m *metadataMap) lookup(key string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *metadataMap) keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.order)
}
