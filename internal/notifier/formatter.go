package notifier

import (
	"fmt"
	"strings"

	"TickerWatch/internal/model"
	"TickerWatch/internal/watchlist"
)

var classIcon = map[model.Classification]string{
	model.Buy:   "🟢",
	model.Hold:  "🟡",
	model.Avoid: "🔴",
}

// FormatWatchlist formats the sorted watchlist into a Telegram HTML message.
func FormatWatchlist(entries []model.WatchlistEntry) string {
	if len(entries) == 0 {
		return "📭 Watchlist is empty. Use /add SYMBOL to start."
	}

	var b strings.Builder
	b.WriteString("📊 <b>Watchlist</b>\n\n")
	for _, e := range entries {
		if !e.HasData() {
			status := "loading"
			if e.State == model.Failed {
				status = "unavailable"
			}
			b.WriteString(fmt.Sprintf("⚪ <b>%s</b> (%s)\n", e.Symbol, status))
			continue
		}
		sig := e.Signal
		b.WriteString(fmt.Sprintf("%s <b>%s</b> %.2f | %s\n",
			classIcon[sig.Classification], e.Symbol, e.Quote.CurrentPrice, sig.Classification))
		for _, r := range sig.Reasons {
			b.WriteString(fmt.Sprintf("  • %s\n", escapeHTML(r)))
		}
		b.WriteString(fmt.Sprintf("  <i>%s</i>\n", escapeHTML(sig.StrategyHint)))
		if e.State == model.Failed && e.LastError != "" {
			b.WriteString(fmt.Sprintf("  ⚠️ stale: %s\n", escapeHTML(e.LastError)))
		}
	}
	return b.String()
}

// FormatRefresh summarizes a refresh pass.
func FormatRefresh(res watchlist.RefreshResult) string {
	switch {
	case res.Skipped:
		return "⏳ A refresh is already running."
	case len(res.Attempted) == 0:
		return "✅ Nothing to refresh; every symbol already has data."
	case len(res.Failed) == 0:
		return fmt.Sprintf("✅ Refreshed %d symbol(s).", len(res.Attempted))
	default:
		return fmt.Sprintf("⚠️ Refreshed %d symbol(s), failed: %s",
			len(res.Attempted)-len(res.Failed), strings.Join(res.Failed, ", "))
	}
}

func escapeHTML(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
