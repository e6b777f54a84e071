package resource

import (
	"fmt"
	"net/netip"

	"gopkg.in/yaml.v3"
)

// CIDR wraps netip.Prefix with explicit YAML (de)serialization, mirroring
// the Ipv4CidrWrapper/Ipv6CidrWrapper custom Serialize/Deserialize impls in
// the original Rust source: the wire format is always a plain string like
// "10.0.0.0/16", never YAML's native mapping form.
type CIDR struct {
	netip.Prefix
}

func (c CIDR) MarshalYAML() (any, error) {
	return c.Prefix.String(), nil
}

func (c *CIDR) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	p, err := netip.ParsePrefix(s)
	if err != nil {
		return fmt.Errorf("resource: invalid cidr %q: %w", s, err)
	}
	c.Prefix = p
	return nil
}

// IPAddr wraps netip.Addr the same way, for the optional glue-address
// fields on NSRecord.
type IPAddr struct {
	netip.Addr
}

func (a IPAddr) MarshalYAML() (any, error) {
	if !a.Addr.IsValid() {
		return nil, nil
	}
	return a.Addr.String(), nil
}

func (a *IPAddr) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return fmt.Errorf("resource: invalid address %q: %w", s, err)
	}
	a.Addr = addr
	return nil
}
