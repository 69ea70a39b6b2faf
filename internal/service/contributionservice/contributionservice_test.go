package contributionservice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"

	"github.com/provenvalueenterprises-collab/provenv-sub002/internal/domain"
	"github.com/provenvalueenterprises-collab/provenv-sub002/internal/pg"
)

type mocks struct {
	accounts      *MockAccountStore
	wallets       *MockWalletLedger
	contributions *MockContributionStore
	runs          *MockRunLogger
	txManager     *pg.MockTXManager
}

func NewMock(t *testing.T) (*Service, *mocks) {
	return NewMockInLocation(t, time.UTC)
}

func NewMockInLocation(t *testing.T, location *time.Location) (*Service, *mocks) {
	ctrl := gomock.NewController(t)
	m := &mocks{
		accounts:      NewMockAccountStore(ctrl),
		wallets:       NewMockWalletLedger(ctrl),
		contributions: NewMockContributionStore(ctrl),
		runs:          NewMockRunLogger(ctrl),
		txManager:     pg.NewMockTXManager(ctrl),
	}
	m.txManager.EXPECT().
		Begin(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		}).
		AnyTimes()

	pool := NewWorkerPool(2)
	t.Cleanup(pool.Close)

	service := New(m.accounts, m.wallets, m.contributions, m.runs, m.txManager, pool, time.Second, location)
	return service, m
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dueAccount(id, userID int, daily int64, due time.Time) domain.ThriftAccount {
	return domain.ThriftAccount{
		ID:                   id,
		UserID:               userID,
		PlanID:               1,
		Status:               domain.AccountStatusActive,
		NextContributionDate: due,
		MaturityDate:         due.AddDate(0, 6, 0),
		DailyAmount:          decimal.NewFromInt(daily),
		DurationDays:         180,
	}
}

func TestRunSufficientBalance(t *testing.T) {
	service, m := NewMock(t)

	asOf := date(2024, time.March, 10)
	account := dueAccount(1, 11, 500, asOf)

	m.accounts.EXPECT().ListDue(gomock.Any(), asOf).Return([]domain.ThriftAccount{account}, nil)
	m.contributions.EXPECT().Create(gomock.Any(), gomock.Any()).Return(true, nil)
	m.wallets.EXPECT().
		Debit(gomock.Any(), 11, gomock.Any(), "ctb-1-2024-03-10", gomock.Any()).
		Return(&domain.WalletTransaction{UserID: 11, BalanceAfter: decimal.NewFromInt(500)}, nil)
	m.accounts.EXPECT().
		AdvanceDueDate(gomock.Any(), 1, asOf.AddDate(0, 0, 1), gomock.Any()).
		Return(nil)
	m.runs.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)

	summary, err := service.Run(context.Background(), asOf)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.TotalProcessed)
	assert.Equal(t, 1, summary.SuccessCount)
	assert.Equal(t, 0, summary.FailureCount)
	assert.True(t, decimal.NewFromInt(500).Equal(summary.TotalCollected))
	require.Len(t, summary.Outcomes, 1)
	assert.Equal(t, domain.OutcomeSuccess, summary.Outcomes[0].Status)
}

func TestRunInsufficientBalance(t *testing.T) {
	service, m := NewMock(t)

	asOf := date(2024, time.March, 10)
	account := dueAccount(2, 12, 500, asOf)

	m.accounts.EXPECT().ListDue(gomock.Any(), asOf).Return([]domain.ThriftAccount{account}, nil)
	m.contributions.EXPECT().Create(gomock.Any(), gomock.Any()).Return(true, nil)
	m.wallets.EXPECT().
		Debit(gomock.Any(), 12, gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, domain.ErrInsufficientFunds)
	m.contributions.EXPECT().
		MarkFailed(gomock.Any(), 2, asOf, "insufficient balance").
		Return(nil)
	m.runs.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)

	summary, err := service.Run(context.Background(), asOf)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.TotalProcessed)
	assert.Equal(t, 0, summary.SuccessCount)
	assert.Equal(t, 1, summary.FailureCount)
	assert.True(t, summary.TotalCollected.IsZero())
	require.Len(t, summary.Outcomes, 1)
	assert.Equal(t, domain.OutcomeFailure, summary.Outcomes[0].Status)
	assert.Equal(t, "insufficient balance", summary.Outcomes[0].Reason)
}

func TestRunRerunIsSkipped(t *testing.T) {
	service, m := NewMock(t)

	asOf := date(2024, time.March, 10)
	account := dueAccount(3, 13, 500, asOf)

	m.accounts.EXPECT().ListDue(gomock.Any(), asOf).Return([]domain.ThriftAccount{account}, nil)
	m.contributions.EXPECT().Create(gomock.Any(), gomock.Any()).Return(false, nil)
	m.runs.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)

	summary, err := service.Run(context.Background(), asOf)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.TotalProcessed)
	assert.Equal(t, 0, summary.SuccessCount)
	assert.Equal(t, 0, summary.FailureCount)
	assert.Equal(t, 1, summary.SkippedCount)
	require.Len(t, summary.Outcomes, 1)
	assert.Equal(t, domain.OutcomeSkipped, summary.Outcomes[0].Status)
	assert.Equal(t, "already processed", summary.Outcomes[0].Reason)
}

func TestRunIsolatesAccountFailures(t *testing.T) {
	service, m := NewMock(t)

	asOf := date(2024, time.March, 10)
	accounts := []domain.ThriftAccount{
		dueAccount(1, 21, 100, asOf),
		dueAccount(2, 22, 100, asOf),
		dueAccount(3, 23, 100, asOf),
		dueAccount(4, 24, 100, asOf),
		dueAccount(5, 25, 100, asOf),
	}

	m.accounts.EXPECT().ListDue(gomock.Any(), asOf).Return(accounts, nil)
	m.contributions.EXPECT().Create(gomock.Any(), gomock.Any()).Return(true, nil).Times(5)
	m.wallets.EXPECT().
		Debit(gomock.Any(), 23, gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("ledger unavailable"))
	for _, userID := range []int{21, 22, 24, 25} {
		m.wallets.EXPECT().
			Debit(gomock.Any(), userID, gomock.Any(), gomock.Any(), gomock.Any()).
			Return(&domain.WalletTransaction{UserID: userID}, nil)
	}
	m.accounts.EXPECT().
		AdvanceDueDate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil).
		Times(4)
	m.runs.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)

	summary, err := service.Run(context.Background(), asOf)
	require.NoError(t, err)

	assert.Equal(t, 5, summary.TotalProcessed)
	assert.Equal(t, 4, summary.SuccessCount)
	assert.Equal(t, 1, summary.FailureCount)
	assert.Equal(t, summary.TotalProcessed, summary.SuccessCount+summary.FailureCount+summary.SkippedCount)

	var failed *domain.Outcome
	for i := range summary.Outcomes {
		if summary.Outcomes[i].Status == domain.OutcomeFailure {
			failed = &summary.Outcomes[i]
		}
	}
	require.NotNil(t, failed)
	assert.Equal(t, 3, failed.AccountID)
	assert.Contains(t, failed.Reason, "ledger unavailable")
}

func TestRunNoDueAccounts(t *testing.T) {
	service, m := NewMock(t)

	asOf := date(2024, time.March, 10)
	m.accounts.EXPECT().ListDue(gomock.Any(), asOf).Return(nil, nil)
	m.runs.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)

	summary, err := service.Run(context.Background(), asOf)
	require.NoError(t, err)

	assert.Equal(t, 0, summary.TotalProcessed)
	assert.Equal(t, 0, summary.SuccessCount)
	assert.Equal(t, 0, summary.FailureCount)
	assert.Empty(t, summary.Outcomes)
}

func TestRunListDueFails(t *testing.T) {
	service, m := NewMock(t)

	asOf := date(2024, time.March, 10)
	m.accounts.EXPECT().ListDue(gomock.Any(), asOf).Return(nil, errors.New("db down"))

	summary, err := service.Run(context.Background(), asOf)
	require.Error(t, err)
	assert.Nil(t, summary)
	assert.Contains(t, err.Error(), "db down")
}

func TestRunSummarySaveIsBestEffort(t *testing.T) {
	service, m := NewMock(t)

	asOf := date(2024, time.March, 10)
	m.accounts.EXPECT().ListDue(gomock.Any(), asOf).Return(nil, nil)
	m.runs.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("audit store down"))

	summary, err := service.Run(context.Background(), asOf)
	require.NoError(t, err)
	assert.NotNil(t, summary)
}

func TestRunNormalizesAsOfDate(t *testing.T) {
	service, m := NewMock(t)

	// Mid-day timestamp collapses to the calendar date.
	asOf := time.Date(2024, time.March, 10, 15, 42, 7, 0, time.UTC)
	m.accounts.EXPECT().ListDue(gomock.Any(), date(2024, time.March, 10)).Return(nil, nil)
	m.runs.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)

	summary, err := service.Run(context.Background(), asOf)
	require.NoError(t, err)
	assert.Equal(t, date(2024, time.March, 10), summary.RunDate)
}

func TestRunDateOverrideKeepsCalendarDate(t *testing.T) {
	location, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	service, m := NewMockInLocation(t, location)

	// A date override arrives as a bare calendar date (midnight UTC). West of
	// UTC that instant falls on the previous local day; the run must still
	// process the named date.
	asOf, err := time.Parse("2006-01-02", "2024-03-10")
	require.NoError(t, err)

	m.accounts.EXPECT().ListDue(gomock.Any(), date(2024, time.March, 10)).Return(nil, nil)
	m.runs.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)

	summary, err := service.Run(context.Background(), asOf)
	require.NoError(t, err)
	assert.Equal(t, date(2024, time.March, 10), summary.RunDate)

	// A wall-clock instant still collapses to the local calendar day:
	// 02:00 UTC on the 11th is the evening of the 10th in New York.
	m.accounts.EXPECT().ListDue(gomock.Any(), date(2024, time.March, 10)).Return(nil, nil)
	m.runs.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)

	summary, err = service.Run(context.Background(), time.Date(2024, time.March, 11, 2, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, date(2024, time.March, 10), summary.RunDate)
}

func TestRunDuplicateDebitReferenceIsSkipped(t *testing.T) {
	service, m := NewMock(t)

	asOf := date(2024, time.March, 10)
	account := dueAccount(6, 16, 500, asOf)

	m.accounts.EXPECT().ListDue(gomock.Any(), asOf).Return([]domain.ThriftAccount{account}, nil)
	m.contributions.EXPECT().Create(gomock.Any(), gomock.Any()).Return(true, nil)
	m.wallets.EXPECT().
		Debit(gomock.Any(), 16, gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, domain.ErrDuplicateReference)
	m.runs.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)

	summary, err := service.Run(context.Background(), asOf)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.SkippedCount)
	assert.Equal(t, 0, summary.FailureCount)
	require.Len(t, summary.Outcomes, 1)
	assert.Equal(t, domain.OutcomeSkipped, summary.Outcomes[0].Status)
	assert.Equal(t, "already processed", summary.Outcomes[0].Reason)
}

func TestRuns(t *testing.T) {
	service, m := NewMock(t)

	expected := []domain.RunSummary{{TotalProcessed: 3}}
	m.runs.EXPECT().List(gomock.Any(), 20).Return(expected, nil)

	summaries, err := service.Runs(context.Background(), 20)
	require.NoError(t, err)
	assert.Equal(t, expected, summaries)
}

func TestRunsError(t *testing.T) {
	service, m := NewMock(t)

	m.runs.EXPECT().List(gomock.Any(), 20).Return(nil, errors.New("db error"))

	summaries, err := service.Runs(context.Background(), 20)
	require.Error(t, err)
	assert.Nil(t, summaries)
}
