package control

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/l2fwd/l2fwd/pkg/config"
	"github.com/l2fwd/l2fwd/pkg/l2forward"
)

func newTestServer(t *testing.T) (*Server, *l2forward.Module) {
	t.Helper()
	m, err := l2forward.New(config.Config{Size: 8, Bucket: 4})
	if err != nil {
		t.Fatalf("l2forward.New: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return NewServer(Config{}, m), m
}

func doJSON(t *testing.T, mux http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doJSON(t, s.http.Handler, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestAddAndLookup(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s.http.Handler, http.MethodPost, "/commands/add",
		addRequest{Entries: []l2forward.Entry{{Addr: "aa:bb:cc:dd:ee:ff", Gate: 3}}})
	if rec.Code != http.StatusOK {
		t.Fatalf("add status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, s.http.Handler, http.MethodPost, "/commands/lookup",
		lookupRequest{Addrs: []string{"aa:bb:cc:dd:ee:ff"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("lookup status = %d", rec.Code)
	}
	var resp lookupResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Gates) != 1 || resp.Gates[0] != 3 {
		t.Fatalf("lookup response = %+v, want gates [3]", resp)
	}
}

func TestAddDuplicateReturnsConflict(t *testing.T) {
	s, _ := newTestServer(t)
	doJSON(t, s.http.Handler, http.MethodPost, "/commands/add",
		addRequest{Entries: []l2forward.Entry{{Addr: "aa:bb:cc:dd:ee:ff", Gate: 1}}})
	rec := doJSON(t, s.http.Handler, http.MethodPost, "/commands/add",
		addRequest{Entries: []l2forward.Entry{{Addr: "aa:bb:cc:dd:ee:ff", Gate: 2}}})
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestAddBatchAbortsOnFirstFailureButKeepsPriorInserts(t *testing.T) {
	s, m := newTestServer(t)
	rec := doJSON(t, s.http.Handler, http.MethodPost, "/commands/add", addRequest{Entries: []l2forward.Entry{
		{Addr: "aa:aa:aa:aa:aa:01", Gate: 1},
		{Addr: "not-a-mac", Gate: 2},
	}})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if m.Stats().Count != 1 {
		t.Fatalf("count = %d, want 1 (first entry should have kept its effect)", m.Stats().Count)
	}
}

func TestDeleteMissingReturnsNotFound(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doJSON(t, s.http.Handler, http.MethodPost, "/commands/delete",
		deleteRequest{Addrs: []string{"aa:bb:cc:dd:ee:ff"}})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestInvalidAddressReturnsBadRequest(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doJSON(t, s.http.Handler, http.MethodPost, "/commands/add",
		addRequest{Entries: []l2forward.Entry{{Addr: "not-a-mac", Gate: 1}}})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestPopulateSynthesizesEntries(t *testing.T) {
	s, m := newTestServer(t)
	rec := doJSON(t, s.http.Handler, http.MethodPost, "/commands/populate",
		populateRequest{Base: "aa:aa:aa:aa:aa:00", Count: 4, GateCount: 2})
	if rec.Code != http.StatusOK {
		t.Fatalf("populate status = %d, body %s", rec.Code, rec.Body.String())
	}
	if m.Stats().Count != 4 {
		t.Fatalf("count = %d, want 4", m.Stats().Count)
	}
}

func TestStatsReflectsInserts(t *testing.T) {
	s, _ := newTestServer(t)
	doJSON(t, s.http.Handler, http.MethodPost, "/commands/add",
		addRequest{Entries: []l2forward.Entry{{Addr: "aa:bb:cc:dd:ee:ff", Gate: 1}}})

	rec := doJSON(t, s.http.Handler, http.MethodGet, "/commands/stats", nil)
	var stats map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if int(stats["count"].(float64)) != 1 {
		t.Fatalf("stats = %+v, want count 1", stats)
	}
}

func TestMetricsEndpointServesPrometheusFormat(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doJSON(t, s.http.Handler, http.MethodGet, "/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("l2fwd_table_capacity")) {
		t.Fatalf("metrics body missing l2fwd_table_capacity: %s", rec.Body.String())
	}
}
