package cli

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"dcatracker/internal/domain"
	"dcatracker/internal/portfolio"
)

func coinLabel(c domain.Coin) string {
	info := c.Info()
	if info.Icon == "" {
		return fmt.Sprintf("%s (%s)", info.Name, info.Symbol)
	}
	return fmt.Sprintf("%s %s (%s)", info.Icon, info.Name, info.Symbol)
}

// SummaryMarkdown renders the portfolio overview.
func SummaryMarkdown(s portfolio.Summary, currency string) string {
	var b strings.Builder
	b.WriteString("# Portfolio\n\n")
	if len(s.Coins) == 0 {
		b.WriteString("No contributions yet. Record one with `dca add`.\n")
		return b.String()
	}
	b.WriteString("| Coin | Contributed | Quantity | Avg. price | Current price | Balance | Profit | Profit % |\n")
	b.WriteString("|:---|---:|---:|---:|---:|---:|---:|---:|\n")
	for _, cs := range s.Coins {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %s |\n",
			coinLabel(cs.Coin),
			FormatMoney(cs.TotalContributed, currency),
			FormatQuantity(cs.TotalQuantity),
			FormatMoney(cs.AveragePrice, currency),
			FormatMoney(cs.CurrentPrice, currency),
			FormatMoney(cs.Balance, currency),
			FormatMoney(cs.Profit, currency),
			FormatPercent(cs.ProfitPercentage),
		)
	}
	b.WriteString("\n## Totals\n\n")
	fmt.Fprintf(&b, "- **Contributed:** %s\n", FormatMoney(s.Totals.Contributed, currency))
	fmt.Fprintf(&b, "- **Balance:** %s\n", FormatMoney(s.Totals.Balance, currency))
	fmt.Fprintf(&b, "- **Profit:** %s (%s)\n", FormatMoney(s.Totals.Profit, currency), FormatPercent(s.Totals.ProfitPercentage))
	return b.String()
}

// DetailMarkdown renders one coin with its purchase history.
func DetailMarkdown(cs portfolio.CoinSummary, history []portfolio.RecordView, currency string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", coinLabel(cs.Coin))
	fmt.Fprintf(&b, "- **Current price:** %s\n", FormatMoney(cs.CurrentPrice, currency))
	fmt.Fprintf(&b, "- **Contributed:** %s\n", FormatMoney(cs.TotalContributed, currency))
	fmt.Fprintf(&b, "- **Quantity:** %s %s\n", FormatQuantity(cs.TotalQuantity), cs.Symbol)
	fmt.Fprintf(&b, "- **Average price:** %s\n", FormatMoney(cs.AveragePrice, currency))
	fmt.Fprintf(&b, "- **Balance:** %s\n", FormatMoney(cs.Balance, currency))
	fmt.Fprintf(&b, "- **Profit:** %s (%s)\n", FormatMoney(cs.Profit, currency), FormatPercent(cs.ProfitPercentage))

	b.WriteString("\n## History\n\n")
	b.WriteString("| Date | Price | Amount | Quantity | Profit | ID |\n")
	b.WriteString("|:---|---:|---:|---:|---:|:---|\n")
	for _, r := range history {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | `%s` |\n",
			r.Date.Format("2006-01-02"),
			FormatMoney(r.Price, currency),
			FormatMoney(r.Amount, currency),
			FormatQuantity(r.Quantity),
			FormatMoney(r.Profit, currency),
			r.ID,
		)
	}
	return b.String()
}

// PricesMarkdown lists the current price of every coin; zero means unavailable.
func PricesMarkdown(prices map[domain.Coin]decimal.Decimal, currency string) string {
	var b strings.Builder
	b.WriteString("# Prices\n\n| Coin | Price |\n|:---|---:|\n")
	for _, c := range domain.Coins {
		p := prices[c]
		shown := FormatMoney(p, currency)
		if p.IsZero() {
			shown = "unavailable"
		}
		fmt.Fprintf(&b, "| %s | %s |\n", coinLabel(c), shown)
	}
	return b.String()
}

func ProfileMarkdown(p *domain.Profile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", p.Name)
	fmt.Fprintf(&b, "- **Email:** %s\n", p.Email)
	fmt.Fprintf(&b, "- **Id:** `%s`\n", p.ID)
	if !p.CreatedAt.IsZero() {
		fmt.Fprintf(&b, "- **Member since:** %s\n", p.CreatedAt.Format("2006-01-02"))
	}
	fmt.Fprintf(&b, "- **Contributions:** %d\n", len(p.Contributions))
	return b.String()
}
