package settlementservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/provenvalueenterprises-collab/provenv-sub002/internal/domain"
	"github.com/provenvalueenterprises-collab/provenv-sub002/internal/pg"
)

var (
	ErrAlreadySettled = errors.New("account already settled")
	ErrNotMatured     = errors.New("account not yet matured")
)

type AccountStore interface {
	ListMatured(ctx context.Context, asOf time.Time) ([]domain.ThriftAccount, error)
	GetByID(ctx context.Context, accountID int) (*domain.ThriftAccount, error)
	MarkSettled(ctx context.Context, accountID int, settledAt time.Time) error
}

type WalletLedger interface {
	Credit(ctx context.Context, userID int, amount decimal.Decimal, reference, description string) (*domain.WalletTransaction, error)
}

type PenaltyPolicy interface {
	Compute(missedAmount decimal.Decimal, daysLate int) decimal.Decimal
}

type Service struct {
	accounts  AccountStore
	wallets   WalletLedger
	penalties PenaltyPolicy
	txManager pg.TXManager
}

func New(accounts AccountStore, wallets WalletLedger, penalties PenaltyPolicy, txManager pg.TXManager) *Service {
	return &Service{
		accounts:  accounts,
		wallets:   wallets,
		penalties: penalties,
		txManager: txManager,
	}
}

// PendingSettlements lists matured accounts with their arrears, penalty and
// the payout that settling them now would credit.
func (s *Service) PendingSettlements(ctx context.Context, asOf time.Time) ([]domain.PendingSettlement, error) {
	accounts, err := s.accounts.ListMatured(ctx, asOf)
	if err != nil {
		zap.L().Error("failed to list matured accounts", zap.Error(err))
		return nil, err
	}

	pending := make([]domain.PendingSettlement, 0, len(accounts))
	for _, account := range accounts {
		pending = append(pending, s.assess(account, asOf))
	}
	return pending, nil
}

// Settle pays out one matured account: the settlement amount net of arrears
// and penalty is credited to the owner's wallet and the account is closed,
// both in one transaction. The settlement reference makes retries idempotent.
func (s *Service) Settle(ctx context.Context, accountID int, asOf time.Time) (*domain.PendingSettlement, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.Status == domain.AccountStatusSettled {
		return nil, ErrAlreadySettled
	}
	// Same cutoff as PendingSettlements: the plan must have run its course.
	if !account.MaturityDate.Before(asOf) {
		return nil, ErrNotMatured
	}

	settlement := s.assess(*account, asOf)

	err = s.txManager.Begin(ctx, func(ctx context.Context) error {
		if settlement.Payout.Sign() > 0 {
			reference := fmt.Sprintf("stl-%d", account.ID)
			description := fmt.Sprintf("settlement payout for account %d", account.ID)
			_, err := s.wallets.Credit(ctx, account.UserID, settlement.Payout, reference, description)
			if errors.Is(err, domain.ErrDuplicateReference) {
				return ErrAlreadySettled
			}
			if err != nil {
				return err
			}
		}
		return s.accounts.MarkSettled(ctx, account.ID, time.Now())
	})
	if err != nil {
		zap.L().Error("failed to settle account", zap.Int("accountID", accountID), zap.Error(err))
		return nil, err
	}

	zap.L().Info("account settled",
		zap.Int("accountID", account.ID),
		zap.String("payout", settlement.Payout.String()),
	)
	return &settlement, nil
}

func (s *Service) assess(account domain.ThriftAccount, asOf time.Time) domain.PendingSettlement {
	expected := account.DailyAmount.Mul(decimal.NewFromInt(int64(account.DurationDays)))
	arrears := expected.Sub(account.TotalContributed)
	if arrears.Sign() < 0 {
		arrears = decimal.Zero
	}

	daysLate := int(asOf.Sub(account.MaturityDate).Hours() / 24)
	penalty := s.penalties.Compute(arrears, daysLate)

	payout := account.SettlementAmount.Sub(arrears).Sub(penalty)
	if payout.Sign() < 0 {
		payout = decimal.Zero
	}

	return domain.PendingSettlement{
		AccountID:        account.ID,
		UserID:           account.UserID,
		MaturityDate:     account.MaturityDate,
		SettlementAmount: account.SettlementAmount,
		Arrears:          arrears,
		Penalty:          penalty,
		Payout:           payout,
	}
}
