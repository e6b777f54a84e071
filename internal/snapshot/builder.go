package snapshot

import (
	"github.com/catmunchnet/registryd/internal/resource"
	"github.com/catmunchnet/registryd/internal/trie"
)

// Builder accumulates parsed objects in upstream enumeration order and
// assembles them into a Snapshot. A parse error anywhere aborts the build;
// callers should discard a Builder on first error rather than call Build.
type Builder struct {
	generation uint64

	autnums map[string]resource.Autnum
	domains map[string]resource.Domain
	trie4   *trie.Tree
	trie6   *trie.Tree
}

// NewBuilder returns an empty Builder for the given generation number.
func NewBuilder(generation uint64) *Builder {
	return &Builder{
		generation: generation,
		autnums:    make(map[string]resource.Autnum),
		domains:    make(map[string]resource.Domain),
		trie4:      trie.New(32),
		trie6:      trie.New(128),
	}
}

// AddAutnum inserts a, keyed by its canonical uppercase autnum field.
// Later calls with the same key overwrite earlier ones (last-wins).
func (b *Builder) AddAutnum(a resource.Autnum) {
	b.autnums[a.Autnum] = a
}

// AddDomain inserts d, keyed by its lowercase domain field.
func (b *Builder) AddDomain(d resource.Domain) {
	b.domains[d.Domain] = d
}

// AddInetnum inserts an IPv4 delegation at its CIDR's trie position.
func (b *Builder) AddInetnum(n resource.Inetnum) {
	addr := n.CIDR.Masked().Addr().AsSlice()
	b.trie4.Insert(trie.Inetnum, addr, n.CIDR.Bits(), n)
}

// AddInet6num inserts an IPv6 delegation at its CIDR's trie position.
func (b *Builder) AddInet6num(n resource.Inet6num) {
	addr := n.CIDR.Masked().Addr().AsSlice()
	b.trie6.Insert(trie.Inetnum, addr, n.CIDR.Bits(), n)
}

// AddRoute inserts an IPv4 origin announcement at its CIDR's trie position.
func (b *Builder) AddRoute(r resource.Route) {
	addr := r.CIDR.Masked().Addr().AsSlice()
	b.trie4.Insert(trie.Route, addr, r.CIDR.Bits(), r)
}

// AddRoute6 inserts an IPv6 origin announcement at its CIDR's trie position.
func (b *Builder) AddRoute6(r resource.Route6) {
	addr := r.CIDR.Masked().Addr().AsSlice()
	b.trie6.Insert(trie.Route, addr, r.CIDR.Bits(), r)
}

// Build assembles the accumulated objects into an immutable Snapshot.
func (b *Builder) Build() *Snapshot {
	return &Snapshot{
		Generation: b.generation,
		autnums:    b.autnums,
		domains:    b.domains,
		trie4:      b.trie4,
		trie6:      b.trie6,
	}
}
