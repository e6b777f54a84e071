// Package whoisservice implements the textual WHOIS responder of
// spec.md §4.6: a line-oriented TCP server that classifies one input line
// per connection and answers from the Store. Object responses are
// serialized with gopkg.in/yaml.v3, mirroring the upstream's own
// serde_yaml::to_string rendering of the same entities.
package whoisservice

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"net/netip"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/catmunchnet/registryd/internal/store"
)

const (
	maxRequestBytes = 128
	readDeadline    = 10 * time.Second
)

var (
	asnPattern = regexp.MustCompile(`^as\d+$`)
)

// Service answers WHOIS queries against a Store for a single configured
// TLD, identifying itself as nodeName in response to "whoami".
type Service struct {
	store      *store.Store
	tld        string
	nodeName   string
	domainRule *regexp.Regexp
	logger     *zap.Logger
}

// New returns a Service authoritative for tld, backed by s.
func New(s *store.Store, tld, nodeName string, logger *zap.Logger) *Service {
	tld = strings.ToLower(tld)
	return &Service{
		store:      s,
		tld:        tld,
		nodeName:   nodeName,
		domainRule: regexp.MustCompile(`^[a-z0-9-_]+\.` + regexp.QuoteMeta(tld) + `$`),
		logger:     logger,
	}
}

// ListenAndServe binds one TCP listener per addr in addrs and serves until
// ctx is cancelled. On cancel, each listener stops accepting new
// connections; in-flight handlers are allowed to finish on their own.
func (s *Service) ListenAndServe(ctx context.Context, addrs []string) error {
	listeners := make([]net.Listener, 0, len(addrs))
	for _, addr := range addrs {
		lc := net.ListenConfig{}
		ln, err := lc.Listen(ctx, "tcp", addr)
		if err != nil {
			for _, l := range listeners {
				_ = l.Close()
			}
			return fmt.Errorf("whoisservice: listen %s: %w", addr, err)
		}
		listeners = append(listeners, ln)
	}

	go func() {
		<-ctx.Done()
		for _, ln := range listeners {
			_ = ln.Close()
		}
	}()

	for _, ln := range listeners {
		go s.acceptLoop(ctx, ln)
	}

	<-ctx.Done()
	return nil
}

func (s *Service) acceptLoop(ctx context.Context, ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.Warn("whois accept error", zap.Error(err))
			continue
		}
		go s.handle(conn)
	}
}

// handle reads one line (capped at maxRequestBytes), classifies it, and
// writes exactly one response before closing the connection, per
// spec.md §4.6.
func (s *Service) handle(conn net.Conn) {
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(readDeadline))

	reader := bufio.NewReader(io.LimitReader(conn, maxRequestBytes))
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		_, _ = conn.Write([]byte("An error occurred when reading the request, please try again.\r\n"))
		return
	}

	request := strings.ToLower(strings.TrimSpace(line))
	response := s.answer(request)
	_, _ = conn.Write([]byte(response))
}

func (s *Service) answer(request string) string {
	switch {
	case request == "whoami":
		return s.nodeName

	case asnPattern.MatchString(request):
		key := strings.ToUpper(request)
		autnum, ok := s.store.GetAutnum(key)
		if !ok {
			return notFound(request)
		}
		return mustYAML(autnum)

	case s.domainRule.MatchString(request):
		domain, ok := s.store.GetDomain(request)
		if !ok {
			return notFound(request)
		}
		return mustYAML(domain)

	default:
		if prefix, err := netip.ParsePrefix(request); err == nil {
			return s.answerPrefix(prefix)
		}
		if addr, err := netip.ParseAddr(request); err == nil {
			bits := 32
			if addr.Is6() {
				bits = 128
			}
			return s.answerPrefix(netip.PrefixFrom(addr, bits))
		}
		return "Supported type: autnum (e.g. AS64601), domain (e.g. meow.catmunch), " +
			"inetnum/route (e.g. 10.0.0.1, 10.0.0.0/16, fc75:adfb:1234::1, fc75:adfb:1234::/48)\r\n"
	}
}

func (s *Service) answerPrefix(prefix netip.Prefix) string {
	if prefix.Addr().Is4() {
		inetnums, routes := s.store.GetInetnumPrefixes(prefix)
		return mustYAML(ipResponse{Inetnums: inetnums, Routes: routes})
	}
	inet6nums, route6s := s.store.GetInet6numPrefixes(prefix)
	return mustYAML(ipResponse{Inetnums: inet6nums, Routes: route6s})
}

type ipResponse struct {
	Inetnums any `yaml:"inetnums"`
	Routes   any `yaml:"routes"`
}

func notFound(request string) string {
	return fmt.Sprintf("No match for %s\r\n", request)
}

func mustYAML(v any) string {
	out, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Sprintf("error serializing response: %v\r\n", err)
	}
	return string(out)
}
