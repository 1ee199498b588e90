// Package extension is a typed, lazily-constructed singleton registry.
// Any collaborator a system-wide actor needs (a scheduler, an executor,
// a journal) is reached through an ID[E] rather than a System field, so
// new collaborators never touch core types.
package extension

import "sync"

// ActorKey identifies an actor to an extension without coupling this
// package to the actor package's ActorRef; callers convert with
// ActorKey(ref.ID()).
type ActorKey int32

// ID is a typed descriptor for a singleton extension value of type E,
// identified by its name. It holds a func, so it is not comparable with
// ==. The zero ID is invalid; construct one with NewID.
type ID[E any] struct {
	name string
	new  func(*Store) E
}

// NewID declares an extension. ctor is invoked at most once per Store,
// the first time Get is called for this ID.
func NewID[E any](name string, ctor func(*Store) E) ID[E] {
	return ID[E]{name: name, new: ctor}
}

// Store holds one instance per ID name ever requested from it; two IDs
// with the same name share one instance. The zero Store is not usable;
// use NewStore.
type Store struct {
	mu     sync.Mutex
	values map[string]any
}

// NewStore returns an empty extension store, normally one per System.
func NewStore() *Store {
	return &Store{values: make(map[string]any)}
}

// Get returns the Store's instance for id, constructing it via the ID's
// ctor on first access.
func Get[E any](s *Store, id ID[E]) E {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.values[id.name]; ok {
		return v.(E)
	}
	v := id.new(s)
	s.values[id.name] = v
	return v
}
