package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"dcatracker/internal/domain"
	"dcatracker/internal/infra"
	"dcatracker/internal/sqlinline"
)

// ContributionRepositoryPG implements domain.ContributionRepository backed by PostgreSQL.
type ContributionRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewContributionRepository creates a new ContributionRepositoryPG.
func NewContributionRepository(sql infra.SQLExecutor) *ContributionRepositoryPG {
	return &ContributionRepositoryPG{sql: sql}
}

// ListByOwner returns the owner's contributions, newest purchase first.
func (r *ContributionRepositoryPG) ListByOwner(ctx context.Context, ownerID string) ([]domain.Contribution, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListContributionsByOwner, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list contributions: %w", err)
	}
	defer rows.Close()

	out := []domain.Contribution{}
	for rows.Next() {
		c, err := scanContribution(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list contributions: %w", err)
	}
	return out, nil
}

// Create stores c and returns the persisted row.
func (r *ContributionRepositoryPG) Create(ctx context.Context, c domain.Contribution) (*domain.Contribution, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QInsertContribution,
		c.ID,
		c.UserID,
		string(c.Coin),
		c.CoinPrice,
		c.Amount,
		c.Quantity,
		c.Date,
		c.CreatedAt,
	)
	out, err := scanContribution(row)
	if err != nil {
		return nil, fmt.Errorf("insert contribution: %w", err)
	}
	return out, nil
}

// Delete removes the contribution id when it belongs to ownerID.
func (r *ContributionRepositoryPG) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}
	tag, err := r.sql.Exec(ctx, sqlinline.QDeleteOwnedContribution, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete contribution: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanContribution(row pgx.Row) (*domain.Contribution, error) {
	var c domain.Contribution
	var coin string
	if err := row.Scan(&c.ID, &c.UserID, &coin, &c.CoinPrice, &c.Amount, &c.Quantity, &c.Date, &c.CreatedAt); err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan contribution: %w", err)
	}
	c.Coin = domain.Coin(coin)
	return &c, nil
}

var _ domain.ContributionRepository = (*ContributionRepositoryPG)(nil)
