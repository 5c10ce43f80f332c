// Package set is a keyed collection of Items.
//
// A Set is not safe for concurrent use. Every Set in this module is owned by
// exactly one goroutine (a room, the registry or the account store), which
// is what serializes access to it.
package set

import (
	"errors"
	"sort"
)

// Returned when an added key already exists in the set.
var ErrCollision = errors.New("key already exists")

// Returned when a requested item does not exist in the set.
var ErrMissing = errors.New("item does not exist")

// Returned when a nil item is added. Nil values are considered invalid.
var ErrNil = errors.New("item value must not be nil")

type IterFunc func(key string, item Item) error

type Set struct {
	lookup    map[string]Item
	normalize func(string) string
}

// New creates a new set with case-sensitive keys.
func New() *Set {
	return &Set{
		lookup:    map[string]Item{},
		normalize: func(key string) string { return key },
	}
}

// NewFolded creates a new set whose keys are compared with fold, for example
// strings.ToLower.
func NewFolded(fold func(string) string) *Set {
	return &Set{
		lookup:    map[string]Item{},
		normalize: fold,
	}
}

// Clear removes all items and returns the number removed.
func (s *Set) Clear() int {
	n := len(s.lookup)
	s.lookup = map[string]Item{}
	return n
}

// Len returns the size of the set right now.
func (s *Set) Len() int {
	return len(s.lookup)
}

// In checks if an item exists in this set.
func (s *Set) In(key string) bool {
	_, ok := s.lookup[s.normalize(key)]
	return ok
}

// Get returns an item with the given key.
func (s *Set) Get(key string) (Item, error) {
	item, ok := s.lookup[s.normalize(key)]
	if !ok {
		return nil, ErrMissing
	}
	return item, nil
}

// AddNew adds item to this set if it does not exist already.
func (s *Set) AddNew(item Item) error {
	if item.Value() == nil {
		return ErrNil
	}
	key := s.normalize(item.Key())
	if _, found := s.lookup[key]; found {
		return ErrCollision
	}
	s.lookup[key] = item
	return nil
}

// Add to set, replacing if item already exists.
func (s *Set) Add(item Item) error {
	if item.Value() == nil {
		return ErrNil
	}
	s.lookup[s.normalize(item.Key())] = item
	return nil
}

// Remove item from this set.
func (s *Set) Remove(key string) error {
	key = s.normalize(key)
	if _, found := s.lookup[key]; !found {
		return ErrMissing
	}
	delete(s.lookup, key)
	return nil
}

// Each loops over every item and applies fn to each element. Iteration stops
// at the first error, which is returned.
func (s *Set) Each(fn IterFunc) error {
	for key, item := range s.lookup {
		if err := fn(key, item); err != nil {
			// Abort early
			return err
		}
	}
	return nil
}

// Keys returns the normalized keys of the set in sorted order.
func (s *Set) Keys() []string {
	keys := make([]string, 0, len(s.lookup))
	for key := range s.lookup {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
