package cli

import (
	"bytes"
	"context"
	"flag"
	"testing"
	"time"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"dcatracker/internal/domain"
)

type fakeRecords struct {
	items   []domain.Contribution
	listErr error
	created []domain.NewContribution
	deleted []string
}

func (f *fakeRecords) List(context.Context) ([]domain.Contribution, error) {
	return f.items, f.listErr
}

func (f *fakeRecords) Create(_ context.Context, in domain.NewContribution) (*domain.Contribution, error) {
	f.created = append(f.created, in)
	c, err := in.Build("new-id", "me", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (f *fakeRecords) Delete(_ context.Context, id string) (string, error) {
	if id == "missing" {
		return "", domain.ErrNotFound
	}
	f.deleted = append(f.deleted, id)
	return "Contribution deleted successfully", nil
}

func (f *fakeRecords) Profile(context.Context) (*domain.Profile, error) {
	return &domain.Profile{
		User:          domain.User{ID: "me", Email: "me@example.com", Name: "Me"},
		Contributions: f.items,
	}, nil
}

type fakePrices map[domain.Coin]decimal.Decimal

func (f fakePrices) Price(_ context.Context, coin domain.Coin) (decimal.Decimal, error) {
	p, ok := f[coin]
	if !ok {
		return decimal.Zero, domain.ErrUpstreamFailure
	}
	return p, nil
}

func (f fakePrices) Snapshot(_ context.Context, coins ...domain.Coin) map[domain.Coin]decimal.Decimal {
	out := map[domain.Coin]decimal.Decimal{}
	for _, c := range coins {
		out[c] = f[c]
	}
	return out
}

func (fakePrices) Currency() string { return "brl" }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func record(id string, coin domain.Coin, price, amount, qty, day string) domain.Contribution {
	d, _ := time.Parse(time.DateOnly, day)
	return domain.Contribution{ID: id, UserID: "me", Coin: coin, CoinPrice: dec(price), Amount: dec(amount), Quantity: dec(qty), Date: d}
}

type harness struct {
	env     *Env
	records *fakeRecords
	out     *bytes.Buffer
	errOut  *bytes.Buffer
}

func newHarness(prices fakePrices, items ...domain.Contribution) *harness {
	h := &harness{records: &fakeRecords{items: items}, out: &bytes.Buffer{}, errOut: &bytes.Buffer{}}
	h.env = &Env{
		Records: h.records,
		Prices:  prices,
		Out:     h.out,
		Err:     h.errOut,
		Plain:   true,
		Now:     func() time.Time { return time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC) },
	}
	return h
}

func (h *harness) run(t *testing.T, cmd subcommands.Command, args ...string) subcommands.ExitStatus {
	t.Helper()
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	cmd.SetFlags(fs)
	require.NoError(t, fs.Parse(args))
	return cmd.Execute(context.Background(), fs)
}
