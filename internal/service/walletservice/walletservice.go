package walletservice

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/provenvalueenterprises-collab/provenv-sub002/internal/domain"
)

var ErrInvalidAmount = errors.New("amount must be positive")

type WalletRepo interface {
	GetByUserID(ctx context.Context, userID int) (*domain.Wallet, error)
	Credit(ctx context.Context, userID int, amount decimal.Decimal, reference, description string) (*domain.WalletTransaction, error)
	ListTransactions(ctx context.Context, userID int, limit int) ([]domain.WalletTransaction, error)
}

type Service struct {
	walletRepo WalletRepo
}

func New(walletRepo WalletRepo) *Service {
	return &Service{walletRepo: walletRepo}
}

func (s *Service) GetWallet(ctx context.Context, userID int) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, domain.ErrWalletNotFound) {
			zap.L().Error("failed to get wallet", zap.Error(err))
		}
		return nil, err
	}
	return wallet, nil
}

// Fund credits a wallet through the same atomic credit+record primitive the
// payment-verification flow uses; the reference keeps retried webhooks from
// crediting twice.
func (s *Service) Fund(ctx context.Context, userID int, amount decimal.Decimal, reference, description string) (*domain.WalletTransaction, error) {
	if amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}

	tx, err := s.walletRepo.Credit(ctx, userID, amount, reference, description)
	if err != nil {
		if !errors.Is(err, domain.ErrDuplicateReference) {
			zap.L().Error("failed to fund wallet", zap.Error(err))
		}
		return nil, err
	}

	zap.L().Info("wallet funded",
		zap.Int("userID", userID),
		zap.String("amount", amount.String()),
		zap.String("reference", reference),
	)
	return tx, nil
}

func (s *Service) Transactions(ctx context.Context, userID int, limit int) ([]domain.WalletTransaction, error) {
	txs, err := s.walletRepo.ListTransactions(ctx, userID, limit)
	if err != nil {
		zap.L().Error("failed to fetch wallet transactions", zap.Error(err))
		return nil, err
	}
	return txs, nil
}
