package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"TickerWatch/internal/collector"
	"TickerWatch/internal/model"
	"TickerWatch/internal/store"
	"TickerWatch/internal/watchlist"

	"github.com/rs/zerolog"
)

type nopTicker struct{}

func (nopTicker) Start(func()) {}
func (nopTicker) Stop()        {}

// fakeTelegram records sendMessage calls and serves queued updates once.
type fakeTelegram struct {
	mu      sync.Mutex
	sent    []string
	fail    int
	updates string
}

func (f *fakeTelegram) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		switch {
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			if f.fail > 0 {
				f.fail--
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			var body map[string]string
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("decode body: %v", err)
			}
			f.sent = append(f.sent, body["text"])
			_, _ = w.Write([]byte(`{"ok":true}`))
		case strings.HasSuffix(r.URL.Path, "/getUpdates"):
			u := f.updates
			f.updates = `{"ok":true,"result":[]}`
			_, _ = w.Write([]byte(u))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func (f *fakeTelegram) messages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

func newNotifier(t *testing.T, fake *fakeTelegram) *TelegramNotifier {
	t.Helper()
	srv := httptest.NewServer(fake.handler(t))
	t.Cleanup(srv.Close)
	n := NewTelegramNotifier("token", "42", "", zerolog.Nop())
	n.APIBase = srv.URL
	return n
}

func TestSendWithRetry_RecoversAfterFailure(t *testing.T) {
	fake := &fakeTelegram{fail: 1}
	n := newNotifier(t, fake)
	if err := n.SendWithRetry(context.Background(), "hello", 1); err != nil {
		t.Fatalf("SendWithRetry: %v", err)
	}
	if got := fake.messages(); len(got) != 1 || got[0] != "hello" {
		t.Errorf("sent = %v", got)
	}
}

func TestSendWithRetry_Exhausted(t *testing.T) {
	fake := &fakeTelegram{fail: 5}
	n := newNotifier(t, fake)
	err := n.SendWithRetry(context.Background(), "hello", 0)
	if err == nil || !strings.Contains(err.Error(), "retries exhausted") {
		t.Fatalf("err = %v", err)
	}
}

func TestNotify_EscapesAndSends(t *testing.T) {
	fake := &fakeTelegram{}
	n := newNotifier(t, fake)
	n.Notify(context.Background(), "Could not refresh AAPL: <timeout>")
	n.Wait()
	got := fake.messages()
	if len(got) != 1 || !strings.Contains(got[0], "&lt;timeout&gt;") {
		t.Errorf("sent = %v", got)
	}
}

func TestStartPolling_RoutesCommandsFromConfiguredChat(t *testing.T) {
	fake := &fakeTelegram{updates: `{"ok":true,"result":[
		{"update_id":1,"message":{"text":"/list","chat":{"id":42}}},
		{"update_id":2,"message":{"text":"/list","chat":{"id":7}}}
	]}`}
	n := newNotifier(t, fake)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var mu sync.Mutex
	var seen []string
	done := make(chan struct{})
	go func() {
		defer close(done)
		n.StartPolling(ctx, func(_ context.Context, cmd string) string {
			mu.Lock()
			seen = append(seen, cmd)
			mu.Unlock()
			return "reply to " + cmd
		})
	}()

	deadline := time.Now().Add(3 * time.Second)
	for len(fake.messages()) == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	<-done

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 1 || seen[0] != "/list" {
		t.Errorf("handled = %v", seen)
	}
	if got := fake.messages(); len(got) != 1 || got[0] != "reply to /list" {
		t.Errorf("replies = %v", got)
	}
}

func newRouter(t *testing.T) (*CommandRouter, *watchlist.Controller) {
	t.Helper()
	mock := &collector.MockFetcher{Volatility: 30, Errors: map[string]error{"FAIL": collector.ErrNoData}}
	ctrl := watchlist.NewController(mock, store.NewMemoryStore(), nopTicker{})
	t.Cleanup(ctrl.Close)
	return NewCommandRouter(ctrl), ctrl
}

func TestCommandRouter(t *testing.T) {
	r, ctrl := newRouter(t)
	ctx := context.Background()

	tests := []struct {
		cmd  string
		want string
	}{
		{"/add aapl", "Added AAPL"},
		{"/add AAPL", "Already in the watchlist"},
		{"/add TOOLONG1", "1-5 letters"},
		{"/add FAIL", "Could not load FAIL"},
		{"/add", "Usage: /add"},
		{"/list", "<b>AAPL</b>"},
		{"/refresh", "Nothing to refresh"},
		{"/remove@TickerBot aapl", "Removed AAPL"},
		{"/list", "Watchlist is empty"},
		{"/bogus", "Unknown command"},
	}
	for _, tt := range tests {
		if got := r.Handle(ctx, tt.cmd); !strings.Contains(got, tt.want) {
			t.Errorf("Handle(%q) = %q, want it to contain %q", tt.cmd, got, tt.want)
		}
		ctrl.Wait()
	}
}

func TestFormatWatchlist_StaleAndLoadingEntries(t *testing.T) {
	sig := model.SignalResult{Classification: model.Avoid, Reasons: []string{"a < b"}, StrategyHint: "wait"}
	out := FormatWatchlist([]model.WatchlistEntry{
		{Symbol: "TSLA", Quote: &model.Quote{CurrentPrice: 201.5}, Signal: &sig, State: model.Failed, LastError: "timeout"},
		{Symbol: "NEW", State: model.Loading},
	})
	for _, want := range []string{"🔴 <b>TSLA</b> 201.50 | AVOID", "a &lt; b", "stale: timeout", "<b>NEW</b> (loading)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatRefresh(t *testing.T) {
	tests := []struct {
		res  watchlist.RefreshResult
		want string
	}{
		{watchlist.RefreshResult{Skipped: true}, "already running"},
		{watchlist.RefreshResult{Attempted: []string{"A", "B"}}, "Refreshed 2"},
		{watchlist.RefreshResult{Attempted: []string{"A", "B"}, Failed: []string{"B"}}, "failed: B"},
	}
	for _, tt := range tests {
		if got := FormatRefresh(tt.res); !strings.Contains(got, tt.want) {
			t.Errorf("FormatRefresh(%+v) = %q", tt.res, got)
		}
	}
}
