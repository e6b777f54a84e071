// Package dnsservice implements the authoritative DNS responder of
// spec.md §4.5: forward-domain answers under the registry's private TLD,
// and reverse-DNS delegations for in-addr.arpa / ip6.arpa queries covering
// the registry's inetnum/inet6num prefixes. Wire framing and the UDP
// server loop are provided by github.com/miekg/dns, the standard library
// for authoritative DNS service in Go.
package dnsservice

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/miekg/dns"
	"go.uber.org/zap"

	"github.com/catmunchnet/registryd/internal/rdns"
	"github.com/catmunchnet/registryd/internal/resource"
	"github.com/catmunchnet/registryd/internal/store"
)

const ttl = 300

// Service answers DNS queries against a Store for a single configured TLD.
type Service struct {
	store  *store.Store
	tld    string
	logger *zap.Logger
}

// New returns a Service authoritative for tld, backed by s.
func New(s *store.Store, tld string, logger *zap.Logger) *Service {
	return &Service{store: s, tld: strings.ToLower(tld), logger: logger}
}

// ListenAndServe binds one UDP socket per addr in addrs and serves until
// ctx is cancelled, at which point every server shuts down gracefully
// (finishing in-flight requests) before ListenAndServe returns.
func (s *Service) ListenAndServe(ctx context.Context, addrs []string) error {
	servers := make([]*dns.Server, len(addrs))
	errCh := make(chan error, len(addrs))

	mux := dns.NewServeMux()
	mux.HandleFunc(".", s.handle)

	for i, addr := range addrs {
		srv := &dns.Server{Addr: addr, Net: "udp", Handler: mux}
		servers[i] = srv
		go func(srv *dns.Server) {
			errCh <- srv.ListenAndServe()
		}(srv)
	}

	select {
	case <-ctx.Done():
		for _, srv := range servers {
			_ = srv.ShutdownContext(context.Background())
		}
		return nil
	case err := <-errCh:
		for _, srv := range servers {
			_ = srv.ShutdownContext(context.Background())
		}
		if err != nil {
			return fmt.Errorf("dnsservice: server exited: %w", err)
		}
		return nil
	}
}

// handle classifies and answers a single query, never letting a panic
// escape to the listener: any unexpected failure maps to SERVFAIL per
// spec.md §4.5/§7.
func (s *Service) handle(w dns.ResponseWriter, r *dns.Msg) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("dns handler panic, responding SERVFAIL", zap.Any("recover", rec))
			_ = w.WriteMsg(servfail(r))
		}
	}()

	if r.Opcode != dns.OpcodeQuery || r.Response || len(r.Question) != 1 {
		_ = w.WriteMsg(servfail(r))
		return
	}

	q := r.Question[0]
	qname := strings.ToLower(q.Name)
	labels := dns.SplitDomainName(qname)

	switch {
	case len(labels) >= 1 && labels[len(labels)-1] == s.tld:
		_ = w.WriteMsg(s.answerForward(r, labels))
	case hasSuffix(labels, "in-addr", "arpa"):
		_ = w.WriteMsg(s.answerIPv4Reverse(r, labels))
	case hasSuffix(labels, "ip6", "arpa"):
		_ = w.WriteMsg(s.answerIPv6Reverse(r, labels))
	default:
		_ = w.WriteMsg(servfail(r))
	}
}

func hasSuffix(labels []string, a, b string) bool {
	n := len(labels)
	return n >= 2 && labels[n-2] == a && labels[n-1] == b
}

func servfail(r *dns.Msg) *dns.Msg {
	m := new(dns.Msg)
	m.SetRcode(r, dns.RcodeServerFailure)
	return m
}

func nxdomain(r *dns.Msg) *dns.Msg {
	m := new(dns.Msg)
	m.SetRcode(r, dns.RcodeNameError)
	return m
}

// answerForward implements spec.md §4.5's forward-domain handler.
func (s *Service) answerForward(r *dns.Msg, labels []string) *dns.Msg {
	n := len(labels)
	take := 2
	if n < take {
		take = n
	}
	ownerLabels := labels[n-take:]
	domainName := strings.Join(ownerLabels, ".")

	d, ok := s.store.GetDomain(domainName)
	if !ok {
		return nxdomain(r)
	}

	owner := dns.Fqdn(domainName)
	m := new(dns.Msg)
	m.SetReply(r)
	m.Authoritative = true
	ns, extra := nsAndGlueRecords(owner, d.NS)
	m.Ns = ns
	m.Extra = extra
	return m
}

// answerIPv4Reverse implements spec.md §4.5's IPv4-reverse handler.
func (s *Service) answerIPv4Reverse(r *dns.Msg, labels []string) *dns.Msg {
	remaining := labels[:len(labels)-2]
	if len(remaining) < 1 || len(remaining) > 4 {
		return nxdomain(r)
	}

	prefix, err := rdns.DecodeIPv4(remaining)
	if err != nil {
		return nxdomain(r)
	}

	inetnums, _ := s.store.GetInetnumPrefixes(prefix)
	if len(inetnums) == 0 {
		return nxdomain(r)
	}
	leastSpecific := inetnums[0]

	m := new(dns.Msg)
	m.SetReply(r)
	m.Authoritative = true

	if len(leastSpecific.NS) == 0 {
		return m
	}

	ownerLabelCount := rdns.OwnerLabelCountIPv4(leastSpecific.CIDR.Bits()) + 2
	owner := ownerName(labels, ownerLabelCount)
	ns, extra := nsAndGlueRecords(owner, leastSpecific.NS)
	m.Ns = ns
	m.Extra = extra
	return m
}

// answerIPv6Reverse implements spec.md §4.5's IPv6-reverse handler.
func (s *Service) answerIPv6Reverse(r *dns.Msg, labels []string) *dns.Msg {
	remaining := labels[:len(labels)-2]
	if len(remaining) < 1 || len(remaining) > 32 {
		return nxdomain(r)
	}

	prefix, err := rdns.DecodeIPv6(remaining)
	if err != nil {
		return nxdomain(r)
	}

	inetnums, _ := s.store.GetInet6numPrefixes(prefix)
	if len(inetnums) == 0 {
		return nxdomain(r)
	}
	leastSpecific := inetnums[0]

	m := new(dns.Msg)
	m.SetReply(r)
	m.Authoritative = true

	if len(leastSpecific.NS) == 0 {
		return m
	}

	ownerLabelCount := rdns.OwnerLabelCountIPv6(leastSpecific.CIDR.Bits()) + 2
	owner := ownerName(labels, ownerLabelCount)
	ns, extra := nsAndGlueRecords(owner, leastSpecific.NS)
	m.Ns = ns
	m.Extra = extra
	return m
}

// ownerName returns the rightmost count labels of the full query name,
// joined into a FQDN — the delegation's own owner name, which may be
// shorter than the queried name per spec.md §9.
func ownerName(labels []string, count int) string {
	if count > len(labels) {
		count = len(labels)
	}
	return dns.Fqdn(strings.Join(labels[len(labels)-count:], "."))
}

// nsAndGlueRecords builds one NS record per nsRecords entry (owned by
// owner, TTL 300) and one A/AAAA glue record per entry that carries an
// address, per spec.md §4.5 steps 3/6/7.
func nsAndGlueRecords(owner string, nsRecords []resource.NSRecord) (ns []dns.RR, extra []dns.RR) {
	for _, rec := range nsRecords {
		serverName := dns.Fqdn(rec.Server)
		ns = append(ns, &dns.NS{
			Hdr: dns.RR_Header{Name: owner, Rrtype: dns.TypeNS, Class: dns.ClassINET, Ttl: ttl},
			Ns:  serverName,
		})
		if rec.A.IsValid() {
			ip4 := net.IP(rec.A.AsSlice())
			extra = append(extra, &dns.A{
				Hdr: dns.RR_Header{Name: serverName, Rrtype: dns.TypeA, Class: dns.ClassINET, Ttl: ttl},
				A:   ip4,
			})
		}
		if rec.AAAA.IsValid() {
			ip6 := net.IP(rec.AAAA.AsSlice())
			extra = append(extra, &dns.AAAA{
				Hdr:  dns.RR_Header{Name: serverName, Rrtype: dns.TypeAAAA, Class: dns.ClassINET, Ttl: ttl},
				AAAA: ip6,
			})
		}
	}
	return ns, extra
}
