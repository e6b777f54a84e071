// Package resource defines the registry's entity types and their on-disk
// YAML shape. Field names and tags match the object text format in
// spec.md §6 (and the serde_yaml-backed structs the registry was
// originally modeled on).
package resource

// Autnum identifies an autonomous system number and its human-readable name.
type Autnum struct {
	Autnum      string `yaml:"autnum"`
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
}

// NSRecord names an authoritative nameserver, optionally with glue
// addresses for it.
type NSRecord struct {
	Server string `yaml:"server"`
	A      IPAddr `yaml:"a,omitempty"`
	AAAA   IPAddr `yaml:"aaaa,omitempty"`
}

// Domain is a forward-DNS delegation under the registry's private TLD.
type Domain struct {
	Domain      string     `yaml:"domain"`
	Description string     `yaml:"description,omitempty"`
	NS          []NSRecord `yaml:"ns"`
}

// Inetnum is an IPv4 delegation, optionally naming nameservers
// authoritative for reverse DNS of its prefix.
type Inetnum struct {
	CIDR        CIDR       `yaml:"cidr"`
	Description string     `yaml:"description,omitempty"`
	NS          []NSRecord `yaml:"ns,omitempty"`
}

// Inet6num is the IPv6 analogue of Inetnum.
type Inet6num struct {
	CIDR        CIDR       `yaml:"cidr"`
	Description string     `yaml:"description,omitempty"`
	NS          []NSRecord `yaml:"ns,omitempty"`
}

// Route binds an IPv4 prefix to the autonomous systems allowed to
// originate it.
type Route struct {
	CIDR        CIDR     `yaml:"cidr"`
	Description string   `yaml:"description,omitempty"`
	Origin      []string `yaml:"origin"`
}

// Route6 is the IPv6 analogue of Route.
type Route6 struct {
	CIDR        CIDR     `yaml:"cidr"`
	Description string   `yaml:"description,omitempty"`
	Origin      []string `yaml:"origin"`
}
