// Package store holds the registry's current Snapshot behind a lock-free
// atomic pointer, the same publication pattern the teacher's
// cmd/synclite.go uses to wrap a *bart.Lite: writers build a new value off
// to the side and publish it with one atomic store; readers never block a
// writer and a writer never blocks a reader.
package store

import (
	"net/netip"
	"strings"
	"sync/atomic"

	"github.com/catmunchnet/registryd/internal/resource"
	"github.com/catmunchnet/registryd/internal/snapshot"
)

// Store is the holder of the current Snapshot. The zero value is a valid,
// not-yet-ready Store.
type Store struct {
	current atomic.Pointer[snapshot.Snapshot]
}

// New returns an empty, not-yet-ready Store.
func New() *Store {
	return &Store{}
}

// Replace atomically publishes snap as the current Snapshot. In-flight
// reads against the previous Snapshot complete undisturbed.
func (s *Store) Replace(snap *snapshot.Snapshot) {
	s.current.Store(snap)
}

// IsReady reports whether at least one Snapshot has ever been published.
func (s *Store) IsReady() bool {
	return s.current.Load() != nil
}

// GetAutnum looks up key, case-canonicalizing it to uppercase first.
func (s *Store) GetAutnum(key string) (resource.Autnum, bool) {
	snap := s.current.Load()
	if snap == nil {
		return resource.Autnum{}, false
	}
	return snap.Autnum(strings.ToUpper(key))
}

// GetDomain looks up key, case-canonicalizing it to lowercase first.
func (s *Store) GetDomain(key string) (resource.Domain, bool) {
	snap := s.current.Load()
	if snap == nil {
		return resource.Domain{}, false
	}
	return snap.Domain(strings.ToLower(key))
}

// GetInetnumPrefixes returns every inetnum/route pair covering cidr's first
// address, shortest prefix first. Returns empty slices if no Snapshot has
// been published yet.
func (s *Store) GetInetnumPrefixes(cidr netip.Prefix) ([]resource.Inetnum, []resource.Route) {
	snap := s.current.Load()
	if snap == nil {
		return nil, nil
	}
	return snap.InetnumPrefixes(cidr)
}

// GetInet6numPrefixes is the IPv6 analogue of GetInetnumPrefixes.
func (s *Store) GetInet6numPrefixes(cidr netip.Prefix) ([]resource.Inet6num, []resource.Route6) {
	snap := s.current.Load()
	if snap == nil {
		return nil, nil
	}
	return snap.Inet6numPrefixes(cidr)
}
