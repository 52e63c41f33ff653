package watchlist

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidFormat means the symbol is not 1-5 letters.
	ErrInvalidFormat = errors.New("symbol must be 1-5 letters")
	// ErrDuplicateSymbol means the symbol is already tracked.
	ErrDuplicateSymbol = errors.New("symbol already in watchlist")
)

// FetchError reports a provider failure for one symbol. It unwraps to the
// provider's error, e.g. collector.ErrNoData.
type FetchError struct {
	Symbol string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Symbol, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// PersistError reports that the symbol list could not be written to the store.
type PersistError struct {
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist watchlist: %v", e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }
