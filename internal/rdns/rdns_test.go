package rdns

import (
	"net/netip"
	"testing"
)

// TestIPv4RoundTrip exercises spec.md §8 property 4: for any cidr with
// p in {8,16,24,32}, encoding then decoding yields exactly cidr.
func TestIPv4RoundTrip(t *testing.T) {
	cases := []string{
		"10.0.0.0/8",
		"10.1.0.0/16",
		"10.1.2.0/24",
		"10.1.2.3/32",
	}
	for _, s := range cases {
		want := netip.MustParsePrefix(s)
		labels := EncodeIPv4(want)
		got, err := DecodeIPv4(labels)
		if err != nil {
			t.Fatalf("%s: decode error: %v", s, err)
		}
		if got != want {
			t.Errorf("%s: round trip = %s, want %s", s, got, want)
		}
	}
}

// TestIPv6RoundTrip exercises spec.md §8 property 5 for nibble prefixes.
func TestIPv6RoundTrip(t *testing.T) {
	cases := []string{
		"fc75::/4",
		"fc75:adfb::/32",
		"fc75:adfb:1234::/48",
		"fc75:adfb:1234::1/128",
		"::1/128",
		"2001:db8::/64",
	}
	for _, s := range cases {
		want := netip.MustParsePrefix(s)
		labels := EncodeIPv6(want)
		got, err := DecodeIPv6(labels)
		if err != nil {
			t.Fatalf("%s: decode error: %v", s, err)
		}
		if got != want {
			t.Errorf("%s: round trip = %s, want %s", s, got, want)
		}
	}
}

func TestDecodeIPv4S2Scenario(t *testing.T) {
	// S2 from spec.md §8: query 3.2.1.10.in-addr.arpa trimmed to labels
	// ["3","2","1","10"] should decode to 10.1.2.3/32... but the S2
	// scenario itself probes a /16 inetnum, so decoding the full 4-label
	// query must at least yield the correct /32 address.
	got, err := DecodeIPv4([]string{"3", "2", "1", "10"})
	if err != nil {
		t.Fatal(err)
	}
	want := netip.MustParsePrefix("10.1.2.3/32")
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestDecodeIPv4PartialLabels(t *testing.T) {
	got, err := DecodeIPv4([]string{"1", "10"})
	if err != nil {
		t.Fatal(err)
	}
	want := netip.MustParsePrefix("10.1.0.0/16")
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestDecodeIPv4RejectsBadLabelCount(t *testing.T) {
	if _, err := DecodeIPv4(nil); err == nil {
		t.Error("expected error for 0 labels")
	}
	if _, err := DecodeIPv4([]string{"1", "2", "3", "4", "5"}); err == nil {
		t.Error("expected error for 5 labels")
	}
}

func TestDecodeIPv4RejectsNonOctet(t *testing.T) {
	if _, err := DecodeIPv4([]string{"banana"}); err == nil {
		t.Error("expected parse error")
	}
	if _, err := DecodeIPv4([]string{"999"}); err == nil {
		t.Error("expected range error for octet > 255")
	}
}

func TestDecodeIPv6RejectsNibbleGE16(t *testing.T) {
	if _, err := DecodeIPv6([]string{"g"}); err == nil {
		t.Error("expected error for non-hex label")
	}
	if _, err := DecodeIPv6([]string{"10"}); err == nil {
		t.Error("expected error for label value 16")
	}
}

func TestOwnerLabelCounts(t *testing.T) {
	if got := OwnerLabelCountIPv4(16); got != 2 {
		t.Errorf("OwnerLabelCountIPv4(16) = %d, want 2", got)
	}
	if got := OwnerLabelCountIPv4(20); got != 3 {
		t.Errorf("OwnerLabelCountIPv4(20) = %d, want 3 (ceil)", got)
	}
	if got := OwnerLabelCountIPv6(48); got != 12 {
		t.Errorf("OwnerLabelCountIPv6(48) = %d, want 12", got)
	}
	if got := OwnerLabelCountIPv6(45); got != 12 {
		t.Errorf("OwnerLabelCountIPv6(45) = %d, want 12 (ceil)", got)
	}
}
