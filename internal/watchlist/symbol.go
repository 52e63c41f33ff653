package watchlist

import (
	"fmt"
	"regexp"
	"strings"
)

var symbolPattern = regexp.MustCompile(`^[A-Z]{1,5}$`)

// NormalizeSymbol trims and uppercases raw and checks it is 1-5 letters.
func NormalizeSymbol(raw string) (string, error) {
	symbol := strings.ToUpper(strings.TrimSpace(raw))
	if !symbolPattern.MatchString(symbol) {
		return "", fmt.Errorf("%w: %q", ErrInvalidFormat, raw)
	}
	return symbol, nil
}

// normalizeLoose trims and uppercases without validating.
func normalizeLoose(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}
