package accountrepo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
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

const accountColumns = `
        a.id, a.user_id, a.plan_id, a.status, a.start_date, a.next_contribution_date,
        a.maturity_date, a.total_contributed, a.settlement_amount, a.settled_at,
        p.daily_amount, p.duration_days
`

func scanAccount(row pgx.Row) (*domain.ThriftAccount, error) {
	var a domain.ThriftAccount
	err := row.Scan(
		&a.ID, &a.UserID, &a.PlanID, &a.Status, &a.StartDate, &a.NextContributionDate,
		&a.MaturityDate, &a.TotalContributed, &a.SettlementAmount, &a.SettledAt,
		&a.DailyAmount, &a.DurationDays,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListDue returns all active accounts whose contribution is due on or before
// asOf and whose plan has not ended, ordered by id for reproducible runs.
func (r *Repository) ListDue(ctx context.Context, asOf time.Time) ([]domain.ThriftAccount, error) {
	query := `
        SELECT ` + accountColumns + `
        FROM thrift_accounts a
        JOIN contribution_plans p ON p.id = a.plan_id
        WHERE a.status = 'active'
          AND a.next_contribution_date <= $1
          AND a.maturity_date >= $1
        ORDER BY a.id ASC
    `
	rows, err := r.db.Query(ctx, query, asOf)
	if err != nil {
		zap.L().Error("can't list due accounts", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var accounts []domain.ThriftAccount
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			zap.L().Error("can't scan due account row", zap.Error(err))
			return nil, err
		}
		accounts = append(accounts, *account)
	}
	return accounts, rows.Err()
}

// ListMatured returns active accounts whose plan ended before asOf.
func (r *Repository) ListMatured(ctx context.Context, asOf time.Time) ([]domain.ThriftAccount, error) {
	query := `
        SELECT ` + accountColumns + `
        FROM thrift_accounts a
        JOIN contribution_plans p ON p.id = a.plan_id
        WHERE a.status = 'active'
          AND a.maturity_date < $1
        ORDER BY a.id ASC
    `
	rows, err := r.db.Query(ctx, query, asOf)
	if err != nil {
		zap.L().Error("can't list matured accounts", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var accounts []domain.ThriftAccount
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			zap.L().Error("can't scan matured account row", zap.Error(err))
			return nil, err
		}
		accounts = append(accounts, *account)
	}
	return accounts, rows.Err()
}

func (r *Repository) GetByID(ctx context.Context, accountID int) (*domain.ThriftAccount, error) {
	query := `
        SELECT ` + accountColumns + `
        FROM thrift_accounts a
        JOIN contribution_plans p ON p.id = a.plan_id
        WHERE a.id = $1
    `
	account, err := scanAccount(r.db.QueryRow(ctx, query, accountID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		zap.L().Error("can't get account", zap.Error(err))
		return nil, err
	}
	return account, nil
}

// AdvanceDueDate moves the next contribution date forward and adds the debited
// amount to the running total. GREATEST keeps the due date monotonic.
func (r *Repository) AdvanceDueDate(ctx context.Context, accountID int, newDate time.Time, increment decimal.Decimal) error {
	query := `
        UPDATE thrift_accounts
        SET next_contribution_date = GREATEST(next_contribution_date, $1),
            total_contributed = total_contributed + $2
        WHERE id = $3
    `
	return r.txManager.Begin(ctx, func(ctx context.Context) error {
		tag, err := r.db.Exec(ctx, query, newDate, increment, accountID)
		if err != nil {
			zap.L().Error("failed to advance due date", zap.Error(err))
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrAccountNotFound
		}
		return nil
	})
}

func (r *Repository) MarkSettled(ctx context.Context, accountID int, settledAt time.Time) error {
	query := `
        UPDATE thrift_accounts
        SET status = 'settled', settled_at = $1
        WHERE id = $2 AND status <> 'settled'
    `
	return r.txManager.Begin(ctx, func(ctx context.Context) error {
		tag, err := r.db.Exec(ctx, query, settledAt, accountID)
		if err != nil {
			zap.L().Error("failed to mark account settled", zap.Error(err))
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrAccountNotFound
		}
		return nil
	})
}
