package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Coin identifies one of the tracked cryptocurrencies. The value doubles as
// the market-data coin id.
type Coin string

const (
	Bitcoin  Coin = "bitcoin"
	Ethereum Coin = "ethereum"
)

// Coins lists every supported coin in display order.
var Coins = []Coin{Bitcoin, Ethereum}

// CoinInfo is the display metadata of a coin.
type CoinInfo struct {
	Name   string
	Symbol string
	Icon   string
}

var coinInfo = map[Coin]CoinInfo{
	Bitcoin:  {Name: "Bitcoin", Symbol: "BTC", Icon: "₿"},
	Ethereum: {Name: "Ethereum", Symbol: "ETH", Icon: "Ξ"},
}

// Valid reports whether c is a supported coin.
func (c Coin) Valid() bool {
	_, ok := coinInfo[c]
	return ok
}

// Info returns the display metadata; unsupported coins get their raw id as name.
func (c Coin) Info() CoinInfo {
	if info, ok := coinInfo[c]; ok {
		return info
	}
	return CoinInfo{Name: string(c), Symbol: strings.ToUpper(string(c))}
}

// ParseCoin accepts a coin id or symbol, case-insensitively.
func ParseCoin(s string) (Coin, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, c := range Coins {
		if string(c) == s || strings.ToLower(coinInfo[c].Symbol) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unsupported coin %q", s)
}

// Contribution is one recorded purchase of a coin.
type Contribution struct {
	ID        string
	UserID    string
	Coin      Coin
	CoinPrice decimal.Decimal
	Amount    decimal.Decimal
	Quantity  decimal.Decimal
	Date      time.Time
	CreatedAt time.Time
}

// QuantityTolerance is the largest relative deviation accepted between a
// submitted quantity and amount / price.
var QuantityTolerance = decimal.NewFromFloat(0.01)

// NewContribution carries the fields a caller submits to record a purchase.
// Nil pointers mean the field was absent from the request.
type NewContribution struct {
	Coin      string
	CoinPrice *decimal.Decimal
	Amount    *decimal.Decimal
	Quantity  *decimal.Decimal
	Date      *time.Time
}

// Validate checks presence, positivity and the amount / price / quantity
// relation. It returns a *ValidationError for the first failing field.
func (n NewContribution) Validate() error {
	if strings.TrimSpace(n.Coin) == "" {
		return missing("coin")
	}
	if n.CoinPrice == nil || n.CoinPrice.IsZero() {
		return missing("coinPrice")
	}
	if n.Amount == nil || n.Amount.IsZero() {
		return missing("contributionAmount")
	}
	if n.Quantity == nil || n.Quantity.IsZero() {
		return missing("coinQuantity")
	}
	if !Coin(n.Coin).Valid() {
		return invalid("coin")
	}
	if n.CoinPrice.IsNegative() {
		return invalid("coinPrice")
	}
	if n.Amount.IsNegative() {
		return invalid("contributionAmount")
	}
	if n.Quantity.IsNegative() {
		return invalid("coinQuantity")
	}
	// |quantity*price - amount| <= tolerance*amount, kept free of division so
	// tiny amount/price ratios cannot round to zero.
	drift := n.Quantity.Mul(*n.CoinPrice).Sub(*n.Amount).Abs()
	if drift.GreaterThan(n.Amount.Mul(QuantityTolerance)) {
		return &ValidationError{Field: "coinQuantity", Reason: ReasonInconsistent}
	}
	return nil
}

// Build returns the record to persist for owner, stamping id and dates.
func (n NewContribution) Build(id, owner string, now time.Time) (Contribution, error) {
	if err := n.Validate(); err != nil {
		return Contribution{}, err
	}
	date := now
	if n.Date != nil && !n.Date.IsZero() {
		date = *n.Date
	}
	return Contribution{
		ID:        id,
		UserID:    owner,
		Coin:      Coin(n.Coin),
		CoinPrice: *n.CoinPrice,
		Amount:    *n.Amount,
		Quantity:  *n.Quantity,
		Date:      date.UTC(),
		CreatedAt: now.UTC(),
	}, nil
}
