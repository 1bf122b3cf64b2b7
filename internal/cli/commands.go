package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"dcatracker/internal/domain"
	"dcatracker/internal/portfolio"
)

// summaryCmd prints the portfolio overview.
type summaryCmd struct {
	env *Env
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display the portfolio valued at current prices" }
func (*summaryCmd) Usage() string {
	return `dca summary

  Fetches your contributions and the current prices, then displays the amount
  contributed, quantity held, average price, balance and profit per coin.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {}

func (c *summaryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	records, prices, err := c.env.load(ctx)
	if err != nil {
		return c.env.fail("loading contributions: %v", err)
	}
	c.env.printMarkdown(SummaryMarkdown(portfolio.Summarize(records, prices), c.env.Prices.Currency()))
	return subcommands.ExitSuccess
}

// detailCmd prints one coin with its history.
type detailCmd struct {
	env *Env
}

func (*detailCmd) Name() string     { return "detail" }
func (*detailCmd) Synopsis() string { return "display one coin with its contribution history" }
func (*detailCmd) Usage() string {
	return `dca detail <coin>

  <coin> is a coin id or symbol: bitcoin, btc, ethereum or eth.
`
}

func (c *detailCmd) SetFlags(f *flag.FlagSet) {}

func (c *detailCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprint(c.env.Err, c.Usage())
		return subcommands.ExitUsageError
	}
	coin, err := domain.ParseCoin(f.Arg(0))
	if err != nil {
		fmt.Fprintf(c.env.Err, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	records, prices, err := c.env.load(ctx)
	if err != nil {
		return c.env.fail("loading contributions: %v", err)
	}
	cs, ok := portfolio.SummarizeCoin(coin, records, prices[coin])
	if !ok {
		fmt.Fprintf(c.env.Out, "No %s contributions yet.\n", coin.Info().Name)
		return subcommands.ExitSuccess
	}
	history := portfolio.History(coin, records, prices[coin])
	c.env.printMarkdown(DetailMarkdown(cs, history, c.env.Prices.Currency()))
	return subcommands.ExitSuccess
}

// addCmd records a contribution. The price defaults to the current spot
// price and the quantity to amount / price.
type addCmd struct {
	env      *Env
	coin     string
	amount   string
	price    string
	quantity string
	date     string
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "record a contribution" }
func (*addCmd) Usage() string {
	return `dca add -c <coin> -a <amount> [-p <price>] [-q <quantity>] [-d <date>]

  Records a purchase. Without -p the current price is used; without -q the
  quantity is amount / price rounded to 8 decimals. Dates are YYYY-MM-DD and
  default to today.
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.coin, "c", "", "coin id or symbol (bitcoin, btc, ethereum, eth)")
	f.StringVar(&c.amount, "a", "", "amount contributed, in the price currency")
	f.StringVar(&c.price, "p", "", "unit price paid (defaults to the current price)")
	f.StringVar(&c.quantity, "q", "", "quantity bought (defaults to amount / price)")
	f.StringVar(&c.date, "d", "", "purchase date, YYYY-MM-DD (defaults to today)")
}

func (c *addCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	in, err := c.build(ctx)
	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			fmt.Fprintf(c.env.Err, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
		return c.env.fail("%v", err)
	}
	created, err := c.env.Records.Create(ctx, in)
	if err != nil {
		return c.env.fail("recording contribution: %v", err)
	}
	currency := c.env.Prices.Currency()
	fmt.Fprintf(c.env.Out, "Recorded %s %s for %s at %s (id %s)\n",
		FormatQuantity(created.Quantity), created.Coin.Info().Symbol,
		FormatMoney(created.Amount, currency), FormatMoney(created.CoinPrice, currency), created.ID)
	return subcommands.ExitSuccess
}

// build turns the flags into a validated contribution.
func (c *addCmd) build(ctx context.Context) (domain.NewContribution, error) {
	coin, err := domain.ParseCoin(c.coin)
	if err != nil {
		return domain.NewContribution{}, &domain.ValidationError{Field: "coin", Reason: domain.ReasonInvalid}
	}
	in := domain.NewContribution{Coin: string(coin)}

	amount, err := parsePositive("amount", c.amount)
	if err != nil {
		return in, err
	}
	in.Amount = &amount

	var price decimal.Decimal
	if strings.TrimSpace(c.price) == "" {
		price, err = c.env.Prices.Price(ctx, coin)
		if err != nil {
			return in, fmt.Errorf("current %s price unavailable, pass it with -p: %w", coin.Info().Symbol, err)
		}
		if !price.IsPositive() {
			return in, fmt.Errorf("current %s price unavailable, pass it with -p", coin.Info().Symbol)
		}
	} else if price, err = parsePositive("price", c.price); err != nil {
		return in, err
	}
	in.CoinPrice = &price

	var qty decimal.Decimal
	if strings.TrimSpace(c.quantity) == "" {
		qty = amount.DivRound(price, 8)
	} else if qty, err = parsePositive("quantity", c.quantity); err != nil {
		return in, err
	}
	in.Quantity = &qty

	date := c.env.now()
	if d := strings.TrimSpace(c.date); d != "" {
		date, err = time.Parse(time.DateOnly, d)
		if err != nil {
			return in, &domain.ValidationError{Field: "date", Reason: domain.ReasonInvalid}
		}
	}
	in.Date = &date

	return in, in.Validate()
}

func parsePositive(field, s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return decimal.Zero, &domain.ValidationError{Field: field, Reason: domain.ReasonMissing}
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsPositive() {
		return decimal.Zero, &domain.ValidationError{Field: field, Reason: domain.ReasonInvalid}
	}
	return d, nil
}

// rmCmd deletes contributions by id.
type rmCmd struct {
	env *Env
}

func (*rmCmd) Name() string     { return "rm" }
func (*rmCmd) Synopsis() string { return "delete contributions" }
func (*rmCmd) Usage() string {
	return `dca rm <id>...

  Deletes the given contributions. Ids are shown by 'dca detail'.
`
}

func (c *rmCmd) SetFlags(f *flag.FlagSet) {}

func (c *rmCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprint(c.env.Err, c.Usage())
		return subcommands.ExitUsageError
	}
	status := subcommands.ExitSuccess
	for _, id := range f.Args() {
		msg, err := c.env.Records.Delete(ctx, id)
		if err != nil {
			fmt.Fprintf(c.env.Err, "Error deleting %s: %v\n", id, err)
			status = subcommands.ExitFailure
			continue
		}
		fmt.Fprintf(c.env.Out, "%s: %s\n", id, msg)
	}
	return status
}

// pricesCmd prints the current prices.
type pricesCmd struct {
	env *Env
}

func (*pricesCmd) Name() string     { return "prices" }
func (*pricesCmd) Synopsis() string { return "display current coin prices" }
func (*pricesCmd) Usage() string {
	return `dca prices

  Displays the current price of every tracked coin.
`
}

func (c *pricesCmd) SetFlags(f *flag.FlagSet) {}

func (c *pricesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	c.env.printMarkdown(PricesMarkdown(c.env.Prices.Snapshot(ctx, domain.Coins...), c.env.Prices.Currency()))
	return subcommands.ExitSuccess
}

// whoamiCmd prints the signed-in profile.
type whoamiCmd struct {
	env *Env
}

func (*whoamiCmd) Name() string     { return "whoami" }
func (*whoamiCmd) Synopsis() string { return "display the signed-in account" }
func (*whoamiCmd) Usage() string {
	return `dca whoami

  Displays the account behind DCA_TOKEN.
`
}

func (c *whoamiCmd) SetFlags(f *flag.FlagSet) {}

func (c *whoamiCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	p, err := c.env.Records.Profile(ctx)
	if err != nil {
		return c.env.fail("loading profile: %v", err)
	}
	c.env.printMarkdown(ProfileMarkdown(p))
	return subcommands.ExitSuccess
}
