package whoisservice

import (
	"net/netip"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/catmunchnet/registryd/internal/resource"
	"github.com/catmunchnet/registryd/internal/snapshot"
	"github.com/catmunchnet/registryd/internal/store"
)

func mustCIDR(t *testing.T, s string) resource.CIDR {
	t.Helper()
	return resource.CIDR{Prefix: netip.MustParsePrefix(s)}
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	b := snapshot.NewBuilder(1)
	b.AddAutnum(resource.Autnum{Autnum: "AS64601", Name: "Example Org"})
	b.AddDomain(resource.Domain{Domain: "meow.catmunch"})
	b.AddInetnum(resource.Inetnum{CIDR: mustCIDR(t, "10.1.0.0/16"), Description: "meow net"})
	b.AddRoute(resource.Route{CIDR: mustCIDR(t, "10.1.0.0/16"), Origin: []string{"AS64601"}})
	s := store.New()
	s.Replace(b.Build())
	return s
}

func TestWhoamiReturnsNodeName(t *testing.T) {
	svc := New(newTestStore(t), "catmunch", "registry-node-1", zap.NewNop())
	if got := svc.answer("whoami"); got != "registry-node-1" {
		t.Errorf("answer(whoami) = %q, want %q", got, "registry-node-1")
	}
}

// TestWhoisAutnum exercises scenario S4 from spec.md §8.
func TestWhoisAutnum(t *testing.T) {
	svc := New(newTestStore(t), "catmunch", "node", zap.NewNop())
	got := svc.answer("as64601")
	if !strings.Contains(got, "AS64601") || !strings.Contains(got, "Example Org") {
		t.Errorf("answer(as64601) = %q, missing expected fields", got)
	}
}

func TestWhoisAutnumNotFound(t *testing.T) {
	svc := New(newTestStore(t), "catmunch", "node", zap.NewNop())
	got := svc.answer("as1")
	if got != "No match for as1\r\n" {
		t.Errorf("answer(as1) = %q", got)
	}
}

func TestWhoisDomain(t *testing.T) {
	svc := New(newTestStore(t), "catmunch", "node", zap.NewNop())
	got := svc.answer("meow.catmunch")
	if !strings.Contains(got, "meow.catmunch") {
		t.Errorf("answer(meow.catmunch) = %q", got)
	}
}

func TestWhoisDomainWrongTLDFallsThroughToHelp(t *testing.T) {
	svc := New(newTestStore(t), "catmunch", "node", zap.NewNop())
	got := svc.answer("meow.dog")
	if !strings.HasPrefix(got, "Supported type:") {
		t.Errorf("answer(meow.dog) = %q, want help text", got)
	}
}

// TestWhoisIPv4CIDR exercises scenario S5 from spec.md §8.
func TestWhoisIPv4CIDR(t *testing.T) {
	svc := New(newTestStore(t), "catmunch", "node", zap.NewNop())
	got := svc.answer("10.1.0.0/16")
	if !strings.Contains(got, "meow net") {
		t.Errorf("answer(10.1.0.0/16) missing inetnum description: %q", got)
	}
	if !strings.Contains(got, "AS64601") {
		t.Errorf("answer(10.1.0.0/16) missing route origin: %q", got)
	}
}

func TestWhoisIPv4HostAddress(t *testing.T) {
	svc := New(newTestStore(t), "catmunch", "node", zap.NewNop())
	got := svc.answer("10.1.2.3")
	if !strings.Contains(got, "meow net") {
		t.Errorf("answer(10.1.2.3) = %q, expected a covering inetnum", got)
	}
}

func TestWhoisIPv4NoMatch(t *testing.T) {
	svc := New(newTestStore(t), "catmunch", "node", zap.NewNop())
	got := svc.answer("192.0.2.0/24")
	if !strings.Contains(got, "inetnums: []") {
		t.Errorf("answer(192.0.2.0/24) = %q, want empty inetnums list", got)
	}
}

func TestWhoisUnrecognizedInputReturnsHelp(t *testing.T) {
	svc := New(newTestStore(t), "catmunch", "node", zap.NewNop())
	got := svc.answer("not a valid query")
	if !strings.HasPrefix(got, "Supported type:") {
		t.Errorf("answer(garbage) = %q, want help text", got)
	}
}
