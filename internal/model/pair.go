package model

import (
	"fmt"
	"strings"
)

// TradingPair identifies a base/quote currency combination, e.g. btc/usd.
// Symbols are normalized to lowercase; two pairs are equal iff both
// symbols match. The zero value is not a valid pair.
type TradingPair struct {
	Base  string
	Quote string
}

// NewPair builds a normalized TradingPair from raw symbols.
func NewPair(base, quote string) TradingPair {
	return TradingPair{
		Base:  strings.ToLower(strings.TrimSpace(base)),
		Quote: strings.ToLower(strings.TrimSpace(quote)),
	}
}

// ParsePair parses a "base/quote" string into a TradingPair.
func ParsePair(s string) (TradingPair, error) {
	base, quote, ok := strings.Cut(s, "/")
	if !ok {
		return TradingPair{}, fmt.Errorf("malformed pair %q: want base/quote", s)
	}

	p := NewPair(base, quote)
	if p.Base == "" || p.Quote == "" {
		return TradingPair{}, fmt.Errorf("malformed pair %q: empty symbol", s)
	}

	return p, nil
}

// String returns the canonical "base/quote" form.
func (p TradingPair) String() string {
	return p.Base + "/" + p.Quote
}

// IsZero reports whether the pair is unset.
func (p TradingPair) IsZero() bool {
	return p.Base == "" && p.Quote == ""
}
