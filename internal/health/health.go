// Package health implements the readiness endpoint of spec.md §4.7: an
// HTTP handler that probes the store, the DNS service, and the WHOIS
// service, and reports structured status.
package health

import (
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/miekg/dns"

	"github.com/catmunchnet/registryd/internal/store"
)

const probeTimeout = 2 * time.Second

type status struct {
	StoreReady bool `json:"store_ready"`
	DNSReady   bool `json:"dns_ready"`
	WhoisReady bool `json:"whois_ready"`
}

// Handler returns the readiness HTTP handler. dnsAddr is the first
// configured DNS listen address, whoisAddr the first configured WHOIS
// listen address, tld the registry's private top-level label, and
// nodeName the identifier the WHOIS service answers "whoami" with.
func Handler(s *store.Store, dnsAddr, whoisAddr, tld, nodeName string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st := status{
			StoreReady: s.IsReady(),
			DNSReady:   probeDNS(dnsAddr, tld),
			WhoisReady: probeWhois(whoisAddr, nodeName),
		}

		w.Header().Set("Content-Type", "application/json")
		if st.StoreReady && st.DNSReady && st.WhoisReady {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(st)
	}
}

// probeDNS sends a non-recursive A query for ns.<tld> to 127.0.0.1 on
// addr's port and succeeds iff any response is received, per spec.md §4.7.
func probeDNS(addr, tld string) bool {
	if addr == "" {
		return false
	}
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return false
	}
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn("ns."+tld), dns.TypeA)
	m.RecursionDesired = false

	c := &dns.Client{Net: "udp", Timeout: probeTimeout}
	_, _, err = c.Exchange(m, net.JoinHostPort("127.0.0.1", port))
	return err == nil
}

// probeWhois dials addr, sends "whoami\n", and succeeds iff the response
// equals nodeName, per spec.md §4.7.
func probeWhois(addr, nodeName string) bool {
	if addr == "" {
		return false
	}
	conn, err := net.DialTimeout("tcp", addr, probeTimeout)
	if err != nil {
		return false
	}
	defer conn.Close()

	_ = conn.SetDeadline(time.Now().Add(probeTimeout))
	if _, err := conn.Write([]byte("whoami\n")); err != nil {
		return false
	}

	buf := make([]byte, 256)
	n := 0
	for {
		m, err := conn.Read(buf[n:])
		n += m
		if err != nil {
			break
		}
		if n >= len(buf) {
			break
		}
	}
	return string(buf[:n]) == nodeName
}
