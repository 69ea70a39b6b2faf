package walletrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/provenvalueenterprises-collab/provenv-sub002/internal/domain"
	"github.com/provenvalueenterprises-collab/provenv-sub002/internal/pg"
)

const pgUniqueViolation = "23505"

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

func (r *Repository) GetByUserID(ctx context.Context, userID int) (*domain.Wallet, error) {
	query := `
        SELECT id, user_id, balance
        FROM wallets
        WHERE user_id = $1
    `
	row := r.db.QueryRow(ctx, query, userID)
	var wallet domain.Wallet
	err := row.Scan(&wallet.ID, &wallet.UserID, &wallet.Balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrWalletNotFound
	}
	if err != nil {
		zap.L().Error("failed to get wallet", zap.Error(err))
		return nil, err
	}
	return &wallet, nil
}

// Debit atomically decrements the balance and appends the matching transaction
// record in one unit of work. The balance guard lives in the UPDATE itself, so
// a concurrent debit can never push the balance below zero from a stale read.
func (r *Repository) Debit(ctx context.Context, userID int, amount decimal.Decimal, reference, description string) (*domain.WalletTransaction, error) {
	debitQuery := `
        UPDATE wallets
        SET balance = balance - $1
        WHERE user_id = $2 AND balance >= $1
        RETURNING balance
    `
	var tx domain.WalletTransaction
	err := r.txManager.Begin(ctx, func(ctx context.Context) error {
		var balanceAfter decimal.Decimal
		err := r.db.QueryRow(ctx, debitQuery, amount, userID).Scan(&balanceAfter)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrInsufficientFunds
		}
		if err != nil {
			zap.L().Error("failed to debit wallet", zap.Error(err))
			return err
		}

		tx = domain.WalletTransaction{
			UserID:        userID,
			Direction:     domain.TxDirectionDebit,
			Amount:        amount,
			BalanceBefore: balanceAfter.Add(amount),
			BalanceAfter:  balanceAfter,
			Reference:     reference,
			Status:        "completed",
			Description:   description,
		}
		return r.insertTransaction(ctx, &tx)
	})
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// Credit atomically increments the balance, creating the wallet on first use,
// and appends the matching transaction record.
func (r *Repository) Credit(ctx context.Context, userID int, amount decimal.Decimal, reference, description string) (*domain.WalletTransaction, error) {
	creditQuery := `
        INSERT INTO wallets (user_id, balance)
        VALUES ($2, $1)
        ON CONFLICT (user_id) DO UPDATE SET balance = wallets.balance + $1
        RETURNING balance
    `
	var tx domain.WalletTransaction
	err := r.txManager.Begin(ctx, func(ctx context.Context) error {
		var balanceAfter decimal.Decimal
		if err := r.db.QueryRow(ctx, creditQuery, amount, userID).Scan(&balanceAfter); err != nil {
			zap.L().Error("failed to credit wallet", zap.Error(err))
			return err
		}

		tx = domain.WalletTransaction{
			UserID:        userID,
			Direction:     domain.TxDirectionCredit,
			Amount:        amount,
			BalanceBefore: balanceAfter.Sub(amount),
			BalanceAfter:  balanceAfter,
			Reference:     reference,
			Status:        "completed",
			Description:   description,
		}
		return r.insertTransaction(ctx, &tx)
	})
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *Repository) insertTransaction(ctx context.Context, tx *domain.WalletTransaction) error {
	query := `
        INSERT INTO wallet_transactions (user_id, direction, amount, balance_before, balance_after, reference, status, description)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id, created_at
    `
	row := r.db.QueryRow(ctx, query,
		tx.UserID, tx.Direction, tx.Amount, tx.BalanceBefore, tx.BalanceAfter,
		tx.Reference, tx.Status, tx.Description,
	)
	err := row.Scan(&tx.ID, &tx.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return domain.ErrDuplicateReference
		}
		zap.L().Error("failed to insert wallet transaction", zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) ListTransactions(ctx context.Context, userID int, limit int) ([]domain.WalletTransaction, error) {
	query := `
        SELECT id, user_id, direction, amount, balance_before, balance_after, reference, status, description, created_at
        FROM wallet_transactions
        WHERE user_id = $1
        ORDER BY created_at DESC
        LIMIT $2
    `
	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		zap.L().Error("failed to list wallet transactions", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var txs []domain.WalletTransaction
	for rows.Next() {
		var tx domain.WalletTransaction
		err := rows.Scan(
			&tx.ID, &tx.UserID, &tx.Direction, &tx.Amount, &tx.BalanceBefore,
			&tx.BalanceAfter, &tx.Reference, &tx.Status, &tx.Description, &tx.CreatedAt,
		)
		if err != nil {
			zap.L().Error("can't scan wallet transaction row", zap.Error(err))
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}
