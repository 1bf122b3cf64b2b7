// Package portfolio turns contribution records and current prices into cost
// basis and profit figures.
//
// Every function here is pure: callers recompute the whole summary whenever
// the records or the prices change. A coin whose price is missing from the
// price map is valued at zero.
package portfolio

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"dcatracker/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// Prices maps a coin to its current unit price in the fiat currency.
type Prices map[domain.Coin]decimal.Decimal

// CoinSummary aggregates every contribution of one coin.
type CoinSummary struct {
	Coin             domain.Coin
	Name             string
	Symbol           string
	CurrentPrice     decimal.Decimal
	TotalContributed decimal.Decimal
	TotalQuantity    decimal.Decimal
	AveragePrice     decimal.Decimal
	Balance          decimal.Decimal
	Profit           decimal.Decimal
	ProfitPercentage decimal.Decimal
}

// Totals aggregates the coin summaries of a portfolio.
type Totals struct {
	Contributed      decimal.Decimal
	Balance          decimal.Decimal
	Profit           decimal.Decimal
	ProfitPercentage decimal.Decimal
}

// Summary is the portfolio view: one entry per coin that has records, in
// domain.Coins order, plus the totals.
type Summary struct {
	Coins  []CoinSummary
	Totals Totals
}

// Coin returns the entry for c, if any.
func (s Summary) Coin(c domain.Coin) (CoinSummary, bool) {
	for _, cs := range s.Coins {
		if cs.Coin == c {
			return cs, true
		}
	}
	return CoinSummary{}, false
}

// Summarize computes the per-coin summaries and the portfolio totals.
func Summarize(records []domain.Contribution, prices Prices) Summary {
	byCoin := make(map[domain.Coin][]domain.Contribution)
	for _, r := range records {
		byCoin[r.Coin] = append(byCoin[r.Coin], r)
	}

	var s Summary
	for _, coin := range orderedCoins(byCoin) {
		cs := summarize(coin, byCoin[coin], prices[coin])
		s.Coins = append(s.Coins, cs)
		s.Totals.Contributed = s.Totals.Contributed.Add(cs.TotalContributed)
		s.Totals.Balance = s.Totals.Balance.Add(cs.Balance)
	}
	s.Totals.Profit = s.Totals.Balance.Sub(s.Totals.Contributed)
	s.Totals.ProfitPercentage = percentage(s.Totals.Profit, s.Totals.Contributed)
	return s
}

// SummarizeCoin summarizes only the records of coin. It reports false when
// there are none.
func SummarizeCoin(coin domain.Coin, records []domain.Contribution, price decimal.Decimal) (CoinSummary, bool) {
	var own []domain.Contribution
	for _, r := range records {
		if r.Coin == coin {
			own = append(own, r)
		}
	}
	if len(own) == 0 {
		return CoinSummary{}, false
	}
	return summarize(coin, own, price), true
}

// RecordProfit is quantity * price - amount for a single record.
func RecordProfit(r domain.Contribution, price decimal.Decimal) decimal.Decimal {
	return r.Quantity.Mul(price).Sub(r.Amount)
}

// RecordView is one line of a coin's purchase history.
type RecordView struct {
	ID       string
	Date     time.Time
	Price    decimal.Decimal
	Amount   decimal.Decimal
	Quantity decimal.Decimal
	Profit   decimal.Decimal
}

// History lists the records of coin, newest first, with their profit at price.
func History(coin domain.Coin, records []domain.Contribution, price decimal.Decimal) []RecordView {
	var rows []RecordView
	for _, r := range records {
		if r.Coin != coin {
			continue
		}
		rows = append(rows, RecordView{
			ID:       r.ID,
			Date:     r.Date,
			Price:    r.CoinPrice,
			Amount:   r.Amount,
			Quantity: r.Quantity,
			Profit:   RecordProfit(r, price),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Date.Equal(rows[j].Date) {
			return rows[i].ID < rows[j].ID
		}
		return rows[i].Date.After(rows[j].Date)
	})
	return rows
}

func summarize(coin domain.Coin, records []domain.Contribution, price decimal.Decimal) CoinSummary {
	info := coin.Info()
	cs := CoinSummary{Coin: coin, Name: info.Name, Symbol: info.Symbol, CurrentPrice: price}
	for _, r := range records {
		cs.TotalContributed = cs.TotalContributed.Add(r.Amount)
		cs.TotalQuantity = cs.TotalQuantity.Add(r.Quantity)
	}
	if cs.TotalQuantity.IsPositive() {
		cs.AveragePrice = cs.TotalContributed.Div(cs.TotalQuantity)
	}
	cs.Balance = cs.TotalQuantity.Mul(price)
	cs.Profit = cs.Balance.Sub(cs.TotalContributed)
	cs.ProfitPercentage = percentage(cs.Profit, cs.TotalContributed)
	return cs
}

func percentage(part, whole decimal.Decimal) decimal.Decimal {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred)
}

// orderedCoins returns the known coins first in display order, then any
// unexpected coin ids sorted so output stays deterministic.
func orderedCoins(byCoin map[domain.Coin][]domain.Contribution) []domain.Coin {
	out := make([]domain.Coin, 0, len(byCoin))
	seen := make(map[domain.Coin]bool, len(byCoin))
	for _, c := range domain.Coins {
		if _, ok := byCoin[c]; ok {
			out = append(out, c)
			seen[c] = true
		}
	}
	var extra []domain.Coin
	for c := range byCoin {
		if !seen[c] {
			extra = append(extra, c)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(out, extra...)
}
