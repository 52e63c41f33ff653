package notifier

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"TickerWatch/internal/model"
	"TickerWatch/internal/watchlist"
)

// Watchlist is the controller surface exposed to chat commands.
type Watchlist interface {
	AddSymbol(ctx context.Context, raw string) error
	RemoveSymbol(ctx context.Context, symbol string)
	RefreshAll(ctx context.Context) watchlist.RefreshResult
	SortedView() []model.WatchlistEntry
}

// CommandRouter maps chat commands onto the watchlist.
type CommandRouter struct {
	wl Watchlist
}

func NewCommandRouter(wl Watchlist) *CommandRouter {
	return &CommandRouter{wl: wl}
}

// Handle runs one command and returns the reply text.
func (r *CommandRouter) Handle(ctx context.Context, text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	// "/add@MyBot AAPL" addresses a specific bot in group chats.
	cmd, _, _ := strings.Cut(strings.ToLower(fields[0]), "@")
	args := fields[1:]

	switch cmd {
	case "/add":
		if len(args) != 1 {
			return "Usage: /add SYMBOL"
		}
		if err := r.wl.AddSymbol(ctx, args[0]); err != nil {
			return "❌ " + describeAddError(err)
		}
		return fmt.Sprintf("✅ Added %s.", strings.ToUpper(args[0]))
	case "/remove":
		if len(args) != 1 {
			return "Usage: /remove SYMBOL"
		}
		r.wl.RemoveSymbol(ctx, args[0])
		return fmt.Sprintf("🗑 Removed %s.", escapeHTML(strings.ToUpper(args[0])))
	case "/list":
		return FormatWatchlist(r.wl.SortedView())
	case "/refresh":
		return FormatRefresh(r.wl.RefreshAll(ctx))
	case "/help", "/start":
		return "Commands:\n/add SYMBOL\n/remove SYMBOL\n/list\n/refresh"
	default:
		return "Unknown command. Try /help."
	}
}

func describeAddError(err error) string {
	var fe *watchlist.FetchError
	switch {
	case errors.Is(err, watchlist.ErrInvalidFormat):
		return "Symbols are 1-5 letters, e.g. AAPL."
	case errors.Is(err, watchlist.ErrDuplicateSymbol):
		return "Already in the watchlist."
	case errors.As(err, &fe):
		return escapeHTML(fmt.Sprintf("Could not load %s: %v", fe.Symbol, fe.Err))
	default:
		return escapeHTML(err.Error())
	}
}
