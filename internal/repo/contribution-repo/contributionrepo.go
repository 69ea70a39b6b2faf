package contributionrepo

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/provenvalueenterprises-collab/provenv-sub002/internal/domain"
	"github.com/provenvalueenterprises-collab/provenv-sub002/internal/pg"
)

type Repository struct {
	db        pg.Database
	txManager pg.TXManager
}

func New(db pg.Database, txManager pg.TXManager) *Repository {
	return &Repository{
		db:        db,
		txManager: txManager,
	}
}

// Create inserts the per-day contribution record. The unique index on
// (account_id, contribution_date) is the idempotency guard: a second run for
// the same date inserts nothing and Create reports created = false.
func (r *Repository) Create(ctx context.Context, c *domain.Contribution) (bool, error) {
	query := `
        INSERT INTO contributions (account_id, contribution_date, amount, status, failure_reason, kind)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (account_id, contribution_date) DO NOTHING
    `
	var created bool
	err := r.txManager.Begin(ctx, func(ctx context.Context) error {
		tag, err := r.db.Exec(ctx, query,
			c.AccountID, c.ContributionDate, c.Amount, c.Status, c.FailureReason, c.Kind,
		)
		if err != nil {
			zap.L().Error("failed to create contribution", zap.Error(err))
			return err
		}
		created = tag.RowsAffected() > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

// MarkFailed flips an inserted record to failed when the debit is declined.
func (r *Repository) MarkFailed(ctx context.Context, accountID int, date time.Time, reason string) error {
	query := `
        UPDATE contributions
        SET status = 'failed', failure_reason = $1
        WHERE account_id = $2 AND contribution_date = $3
    `
	return r.txManager.Begin(ctx, func(ctx context.Context) error {
		_, err := r.db.Exec(ctx, query, reason, accountID, date)
		if err != nil {
			zap.L().Error("failed to mark contribution failed", zap.Error(err))
			return err
		}
		return nil
	})
}

func (r *Repository) ListByAccount(ctx context.Context, accountID int) ([]domain.Contribution, error) {
	query := `
        SELECT id, account_id, contribution_date, amount, status, failure_reason, kind, created_at
        FROM contributions
        WHERE account_id = $1
        ORDER BY contribution_date DESC
    `
	rows, err := r.db.Query(ctx, query, accountID)
	if err != nil {
		zap.L().Error("failed to list contributions", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var contributions []domain.Contribution
	for rows.Next() {
		var c domain.Contribution
		err := rows.Scan(
			&c.ID, &c.AccountID, &c.ContributionDate, &c.Amount,
			&c.Status, &c.FailureReason, &c.Kind, &c.CreatedAt,
		)
		if err != nil {
			zap.L().Error("can't scan contribution row", zap.Error(err))
			return nil, err
		}
		contributions = append(contributions, c)
	}
	return contributions, rows.Err()
}
