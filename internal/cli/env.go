// Package cli implements the dca terminal commands: portfolio summary, coin
// detail, recording and deleting contributions, current prices and the
// signed-in profile.
package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"dcatracker/internal/domain"
	"dcatracker/internal/portfolio"
)

// Records is the contribution API as seen by the commands.
type Records interface {
	List(ctx context.Context) ([]domain.Contribution, error)
	Create(ctx context.Context, in domain.NewContribution) (*domain.Contribution, error)
	Delete(ctx context.Context, id string) (string, error)
	Profile(ctx context.Context) (*domain.Profile, error)
}

// PriceSource is the spot price feed.
type PriceSource interface {
	Price(ctx context.Context, coin domain.Coin) (decimal.Decimal, error)
	Snapshot(ctx context.Context, coins ...domain.Coin) map[domain.Coin]decimal.Decimal
	Currency() string
}

// Env is shared by every command.
type Env struct {
	Records Records
	Prices  PriceSource
	Out     io.Writer
	Err     io.Writer
	// Plain prints raw markdown instead of terminal-styled output.
	Plain bool
	Now   func() time.Time
}

// Register adds the dca commands to c.
func Register(c *subcommands.Commander, env *Env) {
	c.Register(&summaryCmd{env: env}, "portfolio")
	c.Register(&detailCmd{env: env}, "portfolio")
	c.Register(&pricesCmd{env: env}, "portfolio")
	c.Register(&addCmd{env: env}, "contributions")
	c.Register(&rmCmd{env: env}, "contributions")
	c.Register(&whoamiCmd{env: env}, "account")
}

// load fetches the records and the current prices concurrently. Prices never
// fail; a records failure is returned.
func (e *Env) load(ctx context.Context) ([]domain.Contribution, portfolio.Prices, error) {
	var (
		records []domain.Contribution
		prices  portfolio.Prices
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = e.Records.List(gctx)
		return err
	})
	g.Go(func() error {
		prices = e.Prices.Snapshot(gctx, domain.Coins...)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return records, prices, nil
}

func (e *Env) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Env) printMarkdown(md string) {
	if e.Plain {
		fmt.Fprint(e.Out, md)
		return
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		fmt.Fprint(e.Out, md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Fprint(e.Out, md)
		return
	}
	fmt.Fprint(e.Out, out)
}

func (e *Env) fail(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(e.Err, "Error: "+format+"\n", args...)
	return subcommands.ExitFailure
}
