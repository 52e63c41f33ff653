package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"TickerWatch/internal/collector"
	"TickerWatch/internal/store"
	"TickerWatch/internal/watchlist"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
)

type nopTicker struct{}

func (nopTicker) Start(func()) {}
func (nopTicker) Stop()        {}

func rising(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100 + float64(i)
	}
	return out
}

func newTestServer(t *testing.T) (*Server, *watchlist.Controller) {
	t.Helper()
	mock := &collector.MockFetcher{
		Volatility: 30,
		Series:     map[string][]float64{"MSFT": rising(30)},
		Errors:     map[string]error{"FAIL": collector.ErrNoData},
	}
	ctrl := watchlist.NewController(mock, store.NewMemoryStore(), nopTicker{})
	t.Cleanup(ctrl.Close)
	srv := NewServer(ctrl, WithGatherer(prometheus.NewRegistry()))
	return srv, ctrl
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, req)
	return rec
}

func TestAddSymbol_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"valid", `{"symbol":"msft"}`, http.StatusCreated},
		{"duplicate", `{"symbol":"MSFT"}`, http.StatusConflict},
		{"bad format", `{"symbol":"TOOLONG1"}`, http.StatusBadRequest},
		{"fetch failure", `{"symbol":"FAIL"}`, http.StatusBadGateway},
		{"missing symbol", `{}`, http.StatusBadRequest},
		{"malformed body", `{"symbol":`, http.StatusBadRequest},
	}
	srv, _ := newTestServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, http.MethodPost, "/api/watchlist", tt.body)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body.String())
			}
		})
	}
}

func TestAddSymbol_MissingFieldDetails(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := do(t, srv, http.MethodPost, "/api/watchlist", `{}`)

	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Details) != 1 || resp.Details[0].Code != "ERR_REQUIRED" || resp.Details[0].Field != "symbol" {
		t.Errorf("details = %+v", resp.Details)
	}
}

func TestListAndRemove(t *testing.T) {
	srv, ctrl := newTestServer(t)
	if err := ctrl.AddSymbol(context.Background(), "MSFT"); err != nil {
		t.Fatal(err)
	}
	ctrl.Wait()

	rec := do(t, srv, http.MethodGet, "/api/watchlist", "")
	var view viewResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatal(err)
	}
	if len(view.Entries) != 1 || view.Entries[0].Classification != "BUY" {
		t.Fatalf("view = %+v", view)
	}
	if !strings.HasPrefix(view.Entries[0].Sparkline, "M0.0,40.0") {
		t.Errorf("sparkline = %q", view.Entries[0].Sparkline)
	}

	rec = do(t, srv, http.MethodDelete, "/api/watchlist/msft", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}
	if got := ctrl.Symbols(); len(got) != 0 {
		t.Errorf("symbols after delete = %v", got)
	}
	if rec := do(t, srv, http.MethodDelete, "/api/watchlist/NOPE", ""); rec.Code != http.StatusOK {
		t.Errorf("removing unknown symbol = %d", rec.Code)
	}
}

func TestRefreshAndMessage(t *testing.T) {
	srv, ctrl := newTestServer(t)
	_ = ctrl.AddSymbol(context.Background(), "FAIL")
	if ctrl.Message() == "" {
		t.Fatal("expected message after failed add")
	}

	rec := do(t, srv, http.MethodPost, "/api/refresh", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"skipped":false`) {
		t.Errorf("refresh = %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, srv, http.MethodDelete, "/api/message", "")
	if rec.Code != http.StatusNoContent || ctrl.Message() != "" {
		t.Errorf("clear message = %d, message %q", rec.Code, ctrl.Message())
	}
}

func TestPage(t *testing.T) {
	srv, ctrl := newTestServer(t)
	rec := do(t, srv, http.MethodGet, "/", "")
	if !strings.Contains(rec.Body.String(), "Your watchlist is empty") {
		t.Errorf("empty page missing hint")
	}

	if err := ctrl.AddSymbol(context.Background(), "MSFT"); err != nil {
		t.Fatal(err)
	}
	rec = do(t, srv, http.MethodGet, "/", "")
	body := rec.Body.String()
	for _, want := range []string{"MSFT", "<details>", "BUY", `<path d="M0.0,40.0`} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestHealthAndMetrics(t *testing.T) {
	srv, _ := newTestServer(t)
	if rec := do(t, srv, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Errorf("healthz = %d", rec.Code)
	}
	if rec := do(t, srv, http.MethodGet, "/metrics", ""); rec.Code != http.StatusOK {
		t.Errorf("metrics = %d", rec.Code)
	}
}

func TestWebsocketPushesChanges(t *testing.T) {
	srv, ctrl := newTestServer(t)
	ts := httptest.NewServer(srv.Echo())
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var initial viewResponse
	if err := conn.ReadJSON(&initial); err != nil {
		t.Fatalf("read initial: %v", err)
	}
	if len(initial.Entries) != 0 {
		t.Fatalf("initial = %+v", initial)
	}

	// The client registers after the initial write; wait for it before mutating.
	deadline := time.Now().Add(2 * time.Second)
	for srv.hub.Clients() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if err := ctrl.AddSymbol(context.Background(), "MSFT"); err != nil {
		t.Fatal(err)
	}

	for {
		var v viewResponse
		if err := conn.ReadJSON(&v); err != nil {
			if errors.Is(err, io.EOF) {
				t.Fatal("connection closed before update")
			}
			t.Fatalf("read update: %v", err)
		}
		if len(v.Entries) == 1 && v.Entries[0].Symbol == "MSFT" {
			return
		}
	}
}
