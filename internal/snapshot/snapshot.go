// Package snapshot defines the immutable, point-in-time bundle of every
// registry index. A Snapshot is built once by the loader and never mutated
// after publication; the store only ever swaps a whole Snapshot in or out.
package snapshot

import (
	"net/netip"

	"github.com/catmunchnet/registryd/internal/resource"
	"github.com/catmunchnet/registryd/internal/trie"
)

// Snapshot bundles the exact-match tables and the two IP tries taken at a
// single point in time, plus the generation it was built at for diagnostics.
type Snapshot struct {
	Generation uint64

	autnums map[string]resource.Autnum
	domains map[string]resource.Domain

	trie4 *trie.Tree
	trie6 *trie.Tree
}

// Autnum returns the autnum stored under key (already canonical uppercase),
// and whether it was present.
func (s *Snapshot) Autnum(key string) (resource.Autnum, bool) {
	a, ok := s.autnums[key]
	return a, ok
}

// Domain returns the domain stored under key (already lowercase), and
// whether it was present.
func (s *Snapshot) Domain(key string) (resource.Domain, bool) {
	d, ok := s.domains[key]
	return d, ok
}

// InetnumPrefixes returns every inetnum and route payload on the path from
// the root to prefix's network length that actually covers prefix's first
// address, shortest prefix first.
func (s *Snapshot) InetnumPrefixes(prefix netip.Prefix) ([]resource.Inetnum, []resource.Route) {
	var inetnums []resource.Inetnum
	var routes []resource.Route

	addr := prefix.Masked().Addr().AsSlice()
	s.trie4.EnumeratePath(addr, prefix.Bits(), func(inetnum, route any, _ int) {
		if inetnum != nil {
			inetnums = append(inetnums, inetnum.(resource.Inetnum))
		}
		if route != nil {
			routes = append(routes, route.(resource.Route))
		}
	})
	return inetnums, routes
}

// Inet6numPrefixes is the IPv6 analogue of InetnumPrefixes.
func (s *Snapshot) Inet6numPrefixes(prefix netip.Prefix) ([]resource.Inet6num, []resource.Route6) {
	var inetnums []resource.Inet6num
	var routes []resource.Route6

	addr := prefix.Masked().Addr().AsSlice()
	s.trie6.EnumeratePath(addr, prefix.Bits(), func(inetnum, route any, _ int) {
		if inetnum != nil {
			inetnums = append(inetnums, inetnum.(resource.Inet6num))
		}
		if route != nil {
			routes = append(routes, route.(resource.Route6))
		}
	})
	return inetnums, routes
}
