// Package rdns decodes and encodes the in-addr.arpa / ip6.arpa reverse-DNS
// label scheme into and out of CIDR prefixes, per spec.md §4.5. It has no
// dependency on any DNS library so it can be tested as pure functions
// (spec.md §8 properties 4 and 5) independent of wire framing.
package rdns

import (
	"fmt"
	"net/netip"
	"strconv"
)

// DecodeIPv4 turns the octet labels of an in-addr.arpa query (already
// stripped of the "in-addr"/"arpa" suffix, in QNAME label order — i.e.
// least-significant octet first) into a CIDR. Per spec.md §4.5 step 2/3,
// between 1 and 4 labels are accepted; each must parse as a decimal octet.
func DecodeIPv4(labels []string) (netip.Prefix, error) {
	if len(labels) < 1 || len(labels) > 4 {
		return netip.Prefix{}, fmt.Errorf("rdns: ipv4 reverse query has %d labels, want 1-4", len(labels))
	}

	var digits uint32
	for i := len(labels) - 1; i >= 0; i-- {
		octet, err := strconv.ParseUint(labels[i], 10, 8)
		if err != nil {
			return netip.Prefix{}, fmt.Errorf("rdns: invalid octet label %q: %w", labels[i], err)
		}
		digits = (digits << 8) | uint32(octet)
	}

	prefixLen := 8 * len(labels)
	digits <<= uint(32 - prefixLen)

	addr := netip.AddrFrom4([4]byte{
		byte(digits >> 24), byte(digits >> 16), byte(digits >> 8), byte(digits),
	})
	return netip.PrefixFrom(addr, prefixLen), nil
}

// DecodeIPv6 is the IPv6 analogue of DecodeIPv4: labels are single hex
// nibbles, 1 to 32 of them, least-significant nibble first.
func DecodeIPv6(labels []string) (netip.Prefix, error) {
	if len(labels) < 1 || len(labels) > 32 {
		return netip.Prefix{}, fmt.Errorf("rdns: ipv6 reverse query has %d labels, want 1-32", len(labels))
	}

	var hi, lo uint64 // hi = top 64 bits, lo = bottom 64 bits of the address
	for i := len(labels) - 1; i >= 0; i-- {
		nibble, err := strconv.ParseUint(labels[i], 16, 8)
		if err != nil || nibble >= 16 {
			return netip.Prefix{}, fmt.Errorf("rdns: invalid nibble label %q", labels[i])
		}
		hi = (hi << 4) | (lo >> 60)
		lo = (lo << 4) | nibble
	}

	prefixLen := 4 * len(labels)
	shift := uint(128 - prefixLen)
	switch {
	case shift == 0:
		// full 128-bit prefix, nothing to realign
	case shift < 64:
		hi = (hi << shift) | (lo >> (64 - shift))
		lo <<= shift
	default: // shift in [64,124]
		hi = lo << (shift - 64)
		lo = 0
	}

	var b [16]byte
	for i := 0; i < 8; i++ {
		b[i] = byte(hi >> uint(56-8*i))
	}
	for i := 0; i < 8; i++ {
		b[8+i] = byte(lo >> uint(56-8*i))
	}

	addr := netip.AddrFrom16(b)
	return netip.PrefixFrom(addr, prefixLen), nil
}

// EncodeIPv4 returns the octet labels (least-significant first, matching
// in-addr.arpa QNAME order) for prefix's network bytes, one per 8 bits of
// its prefix length. Used only by round-trip tests.
func EncodeIPv4(prefix netip.Prefix) []string {
	bits := prefix.Bits()
	octets := prefix.Addr().As4()
	n := bits / 8
	labels := make([]string, n)
	for i := 0; i < n; i++ {
		labels[n-1-i] = strconv.Itoa(int(octets[i]))
	}
	return labels
}

// EncodeIPv6 is the IPv6 analogue of EncodeIPv4, one nibble label per 4
// bits of prefix length.
func EncodeIPv6(prefix netip.Prefix) []string {
	bits := prefix.Bits()
	addr := prefix.Addr().As16()
	n := bits / 4
	labels := make([]string, n)
	for i := 0; i < n; i++ {
		byteIdx := i / 2
		var nibble byte
		if i%2 == 0 {
			nibble = addr[byteIdx] >> 4
		} else {
			nibble = addr[byteIdx] & 0xf
		}
		labels[n-1-i] = strconv.FormatUint(uint64(nibble), 16)
	}
	return labels
}

// OwnerLabelCountIPv4 returns the number of octet labels (excluding the
// in-addr.arpa suffix) that make up the owner name of a delegation at the
// given IPv4 prefix length: ceil(prefixLen/8).
func OwnerLabelCountIPv4(prefixLen int) int {
	return (prefixLen + 7) / 8
}

// OwnerLabelCountIPv6 returns the number of nibble labels (excluding the
// ip6.arpa suffix) that make up the owner name of a delegation at the given
// IPv6 prefix length: ceil(prefixLen/4).
func OwnerLabelCountIPv6(prefixLen int) int {
	return (prefixLen + 3) / 4
}
