package contributionservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/provenvalueenterprises-collab/provenv-sub002/internal/domain"
	"github.com/provenvalueenterprises-collab/provenv-sub002/internal/pg"
)

const (
	insufficientBalanceReason = "insufficient balance"
	alreadyProcessedReason    = "already processed"
	dailyKind                 = "daily"
)

type AccountStore interface {
	ListDue(ctx context.Context, asOf time.Time) ([]domain.ThriftAccount, error)
	AdvanceDueDate(ctx context.Context, accountID int, newDate time.Time, increment decimal.Decimal) error
}

type WalletLedger interface {
	Debit(ctx context.Context, userID int, amount decimal.Decimal, reference, description string) (*domain.WalletTransaction, error)
}

type ContributionStore interface {
	Create(ctx context.Context, c *domain.Contribution) (bool, error)
	MarkFailed(ctx context.Context, accountID int, date time.Time, reason string) error
}

type RunLogger interface {
	Save(ctx context.Context, summary *domain.RunSummary) error
	List(ctx context.Context, limit int) ([]domain.RunSummary, error)
}

type Service struct {
	accounts       AccountStore
	wallets        WalletLedger
	contributions  ContributionStore
	runs           RunLogger
	txManager      pg.TXManager
	workerPool     WorkerPoolI
	accountTimeout time.Duration
	location       *time.Location
}

func New(
	accounts AccountStore,
	wallets WalletLedger,
	contributions ContributionStore,
	runs RunLogger,
	txManager pg.TXManager,
	workerPool WorkerPoolI,
	accountTimeout time.Duration,
	location *time.Location,
) *Service {
	return &Service{
		accounts:       accounts,
		wallets:        wallets,
		contributions:  contributions,
		runs:           runs,
		txManager:      txManager,
		workerPool:     workerPool,
		accountTimeout: accountTimeout,
		location:       location,
	}
}

// Run processes every account due on asOf and returns the run summary.
// Failure to enumerate due accounts is the only error that aborts the run;
// everything after that is captured per account in the summary.
func (s *Service) Run(ctx context.Context, asOf time.Time) (*domain.RunSummary, error) {
	asOf = s.normalizeDate(asOf)

	accounts, err := s.accounts.ListDue(ctx, asOf)
	if err != nil {
		return nil, fmt.Errorf("can't list due accounts: %w", err)
	}
	zap.L().Info("contribution run started",
		zap.Time("asOf", asOf),
		zap.Int("dueAccounts", len(accounts)),
	)

	outcomes := make([]domain.Outcome, len(accounts))
	var g errgroup.Group
	for i, account := range accounts {
		i, account := i, account
		g.Go(func() error {
			done := make(chan struct{})
			err := s.workerPool.AddTask(ctx, func() error {
				defer close(done)
				outcomes[i] = s.processAccount(ctx, account, asOf)
				return nil
			})
			if err != nil {
				outcomes[i] = domain.Outcome{
					AccountID: account.ID,
					UserID:    account.UserID,
					Status:    domain.OutcomeFailure,
					Amount:    account.DailyAmount,
					Reason:    err.Error(),
				}
				return nil
			}
			<-done
			return nil
		})
	}
	g.Wait() //nolint:errcheck // tasks never return errors, failures become outcomes

	summary := s.summarize(asOf, outcomes)

	// Logging the summary is advisory; the run's side effects stand either way.
	if err := s.runs.Save(ctx, summary); err != nil {
		zap.L().Error("failed to persist run summary", zap.Error(err), zap.Time("asOf", asOf))
	}

	zap.L().Info("contribution run finished",
		zap.Time("asOf", asOf),
		zap.Int("processed", summary.TotalProcessed),
		zap.Int("success", summary.SuccessCount),
		zap.Int("failure", summary.FailureCount),
		zap.Int("skipped", summary.SkippedCount),
		zap.String("collected", summary.TotalCollected.String()),
	)
	return summary, nil
}

// processAccount runs one account's unit of work inside its own transaction.
// Errors never escape: every path folds into an outcome so one broken account
// cannot take the rest of the run down with it.
func (s *Service) processAccount(ctx context.Context, account domain.ThriftAccount, asOf time.Time) domain.Outcome {
	ctx, cancel := context.WithTimeout(ctx, s.accountTimeout)
	defer cancel()

	outcome := domain.Outcome{
		AccountID: account.ID,
		UserID:    account.UserID,
		Amount:    account.DailyAmount,
	}

	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		// The insert doubles as the idempotency gate: on a rerun for the same
		// date the unique (account, date) index swallows it and we skip.
		created, err := s.contributions.Create(ctx, &domain.Contribution{
			AccountID:        account.ID,
			ContributionDate: asOf,
			Amount:           account.DailyAmount,
			Status:           domain.ContributionCompleted,
			Kind:             dailyKind,
		})
		if err != nil {
			return err
		}
		if !created {
			outcome.Status = domain.OutcomeSkipped
			outcome.Reason = alreadyProcessedReason
			return nil
		}

		reference := fmt.Sprintf("ctb-%d-%s", account.ID, asOf.Format("2006-01-02"))
		description := fmt.Sprintf("daily contribution for account %d", account.ID)
		_, err = s.wallets.Debit(ctx, account.UserID, account.DailyAmount, reference, description)
		switch {
		case errors.Is(err, domain.ErrInsufficientFunds):
			// A missed day stays due: wallet and due date stay untouched so the
			// account is retried on the next run.
			if err := s.contributions.MarkFailed(ctx, account.ID, asOf, insufficientBalanceReason); err != nil {
				return err
			}
			outcome.Status = domain.OutcomeFailure
			outcome.Reason = insufficientBalanceReason
			return nil
		case err != nil:
			// Includes a duplicate debit reference: the unique-violation has
			// already aborted the open transaction, so the skip is decided
			// after the rollback.
			return err
		}

		newDue := account.NextContributionDate.AddDate(0, 0, 1)
		if err := s.accounts.AdvanceDueDate(ctx, account.ID, newDue, account.DailyAmount); err != nil {
			return err
		}
		outcome.Status = domain.OutcomeSuccess
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateReference) {
			outcome.Status = domain.OutcomeSkipped
			outcome.Reason = alreadyProcessedReason
			return outcome
		}
		zap.L().Error("account processing failed",
			zap.Int("accountID", account.ID),
			zap.Error(err),
		)
		outcome.Status = domain.OutcomeFailure
		outcome.Reason = err.Error()
	}
	return outcome
}

func (s *Service) summarize(asOf time.Time, outcomes []domain.Outcome) *domain.RunSummary {
	summary := &domain.RunSummary{
		ID:             uuid.New(),
		RunDate:        asOf,
		TotalProcessed: len(outcomes),
		TotalCollected: decimal.Zero,
		Outcomes:       outcomes,
	}
	for _, o := range outcomes {
		switch o.Status {
		case domain.OutcomeSuccess:
			summary.SuccessCount++
			summary.TotalCollected = summary.TotalCollected.Add(o.Amount)
		case domain.OutcomeSkipped:
			summary.SkippedCount++
		default:
			summary.FailureCount++
		}
	}
	return summary
}

func (s *Service) Runs(ctx context.Context, limit int) ([]domain.RunSummary, error) {
	summaries, err := s.runs.List(ctx, limit)
	if err != nil {
		zap.L().Error("failed to fetch run summaries", zap.Error(err))
		return nil, err
	}
	return summaries, nil
}

// normalizeDate reduces an instant to the calendar day it falls on in the
// operating timezone, encoded as midnight UTC. An input that is already a
// bare calendar date (midnight UTC) passes through unchanged, so a date
// override names that day in any configured timezone.
func (s *Service) normalizeDate(t time.Time) time.Time {
	if t.Location() == time.UTC &&
		t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t
	}
	t = t.In(s.location)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
