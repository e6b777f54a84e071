package health

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/catmunchnet/registryd/internal/dnsservice"
	"github.com/catmunchnet/registryd/internal/snapshot"
	"github.com/catmunchnet/registryd/internal/store"
	"github.com/catmunchnet/registryd/internal/whoisservice"
)

// TestHealthzUnready exercises scenario S6 from spec.md §8: with nothing
// backing the probes, /healthz reports 503 and all-false status.
func TestHealthzUnready(t *testing.T) {
	s := store.New()
	h := Handler(s, "127.0.0.1:1", "127.0.0.1:1", "catmunch", "node")

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
	var st status
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.StoreReady || st.DNSReady || st.WhoisReady {
		t.Errorf("expected all-false status, got %+v", st)
	}
}

// TestHealthzReady exercises readiness once the store, DNS, and WHOIS
// services are all live, per scenario S6.
func TestHealthzReady(t *testing.T) {
	s := store.New()
	s.Replace(snapshot.NewBuilder(1).Build())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dnsSvc := dnsservice.New(s, "catmunch", zap.NewNop())
	dnsAddr := pickUDPAddr(t)
	go dnsSvc.ListenAndServe(ctx, []string{dnsAddr})

	whoisSvc := whoisservice.New(s, "catmunch", "node-1", zap.NewNop())
	whoisAddr := pickTCPAddr(t)
	go whoisSvc.ListenAndServe(ctx, []string{whoisAddr})

	time.Sleep(100 * time.Millisecond)

	h := Handler(s, dnsAddr, whoisAddr, "catmunch", "node-1")
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200, body=%s", rec.Code, rec.Body.String())
	}
}

func pickUDPAddr(t *testing.T) string {
	t.Helper()
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := conn.LocalAddr().String()
	conn.Close()
	return addr
}

func pickTCPAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()
	return addr
}
