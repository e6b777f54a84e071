// Package trie implements the binary radix trie used to index inetnum and
// route objects by IP prefix. Unlike the byte-stride, popcount-compressed
// tables this package's structure is modeled on, this trie descends one bit
// per level: every node represents exactly one prefix length, and lookups
// walk straight from the root along the bits of a probe address with no
// backtracking.
package trie

import "fmt"

// Kind selects which of a node's two payload slots an operation addresses.
type Kind int

const (
	// Inetnum is the delegation payload slot (inetnum/inet6num objects).
	Inetnum Kind = iota
	// Route is the origin-announcement payload slot (route/route6 objects).
	Route
)

// node is a single trie vertex. Children are indexed by the next address
// bit (0 or 1); payloads live only on nodes whose depth equals the network
// length of the prefix that produced them.
type node struct {
	children [2]*node
	inetnum  any
	route    any
}

// Tree is a binary radix trie over IPv4 or IPv6 address bits.
type Tree struct {
	root     node
	bitwidth int
}

// New returns an empty trie for addresses of the given bit width (32 for
// IPv4, 128 for IPv6).
func New(bitwidth int) *Tree {
	return &Tree{bitwidth: bitwidth}
}

// bit returns bit index (depth-1) of address, where depth 0 is the root.
// depth must be in [1, bitwidth].
func bit(address []byte, depth int) int {
	i := depth - 1
	return int((address[i/8] >> (7 - uint(i%8))) & 1)
}

// Insert stores payload at the node reached by descending prefixLen bits of
// address, creating intermediate nodes as needed. It panics if prefixLen
// exceeds the trie's bit width or is negative: this is the programmer-error
// case spec'd as "insertion with prefix_length > address_bitwidth" — a bug
// in the loader, not a condition to swallow.
func (t *Tree) Insert(kind Kind, address []byte, prefixLen int, payload any) {
	if prefixLen < 0 || prefixLen > t.bitwidth {
		panic(fmt.Sprintf("trie: insert prefix length %d out of range [0,%d]", prefixLen, t.bitwidth))
	}

	n := &t.root
	for depth := 1; depth <= prefixLen; depth++ {
		side := bit(address, depth)
		if n.children[side] == nil {
			n.children[side] = &node{}
		}
		n = n.children[side]
	}

	switch kind {
	case Inetnum:
		n.inetnum = payload
	case Route:
		n.route = payload
	default:
		panic(fmt.Sprintf("trie: unknown kind %d", kind))
	}
}

// Visit is invoked once per node encountered while enumerating a descent
// path, in root-first (shallowest-first) order.
type Visit func(inetnum, route any, depth int)

// EnumeratePath descends from the root along the bits of address, visiting
// every node up to and including targetDepth (or stopping early if a child
// is missing). The root is always visited, even if it carries no payload,
// so callers relying on visit order counting purely on payload-bearing
// nodes must filter nil payloads themselves.
func (t *Tree) EnumeratePath(address []byte, targetDepth int, visit Visit) {
	n := &t.root
	visit(n.inetnum, n.route, 0)
	if targetDepth <= 0 {
		return
	}

	for depth := 1; depth <= targetDepth; depth++ {
		side := bit(address, depth)
		n = n.children[side]
		if n == nil {
			return
		}
		visit(n.inetnum, n.route, depth)
	}
}
