package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	AccountStatusActive    = "active"
	AccountStatusMatured   = "matured"
	AccountStatusSettled   = "settled"
	AccountStatusSuspended = "suspended"
)

const (
	ContributionCompleted = "completed"
	ContributionFailed    = "failed"
)

const (
	TxDirectionDebit  = "debit"
	TxDirectionCredit = "credit"
)

type ThriftAccount struct {
	ID                   int             `db:"id"`
	UserID               int             `db:"user_id"`
	PlanID               int             `db:"plan_id"`
	Status               string          `db:"status"`
	StartDate            time.Time       `db:"start_date"`
	NextContributionDate time.Time       `db:"next_contribution_date"`
	MaturityDate         time.Time       `db:"maturity_date"`
	TotalContributed     decimal.Decimal `db:"total_contributed"`
	SettlementAmount     decimal.Decimal `db:"settlement_amount"`
	SettledAt            *time.Time      `db:"settled_at"`

	// Joined from contribution_plans when selected for processing.
	DailyAmount  decimal.Decimal `db:"daily_amount"`
	DurationDays int             `db:"duration_days"`
}

type ContributionPlan struct {
	ID           int             `db:"id"`
	Name         string          `db:"name"`
	DailyAmount  decimal.Decimal `db:"daily_amount"`
	DurationDays int             `db:"duration_days"`
	Category     string          `db:"category"`
}

type Wallet struct {
	ID      int             `db:"id"`
	UserID  int             `db:"user_id"`
	Balance decimal.Decimal `db:"balance"`
}

type WalletTransaction struct {
	ID            int             `db:"id"`
	UserID        int             `db:"user_id"`
	Direction     string          `db:"direction"`
	Amount        decimal.Decimal `db:"amount"`
	BalanceBefore decimal.Decimal `db:"balance_before"`
	BalanceAfter  decimal.Decimal `db:"balance_after"`
	Reference     string          `db:"reference"`
	Status        string          `db:"status"`
	Description   string          `db:"description"`
	CreatedAt     time.Time       `db:"created_at"`
}

type Contribution struct {
	ID               int             `db:"id"`
	AccountID        int             `db:"account_id"`
	ContributionDate time.Time       `db:"contribution_date"`
	Amount           decimal.Decimal `db:"amount"`
	Status           string          `db:"status"`
	FailureReason    string          `db:"failure_reason"`
	Kind             string          `db:"kind"`
	CreatedAt        time.Time       `db:"created_at"`
}

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeSkipped = "skipped"
)

// Outcome is the per-account result recorded in a run summary.
type Outcome struct {
	AccountID int             `json:"account_id"`
	UserID    int             `json:"user_id"`
	Status    string          `json:"status"`
	Amount    decimal.Decimal `json:"amount"`
	Reason    string          `json:"reason,omitempty"`
}

type RunSummary struct {
	ID             uuid.UUID       `db:"id"`
	RunDate        time.Time       `db:"run_date"`
	TotalProcessed int             `db:"total_processed"`
	SuccessCount   int             `db:"success_count"`
	FailureCount   int             `db:"failure_count"`
	SkippedCount   int             `db:"skipped_count"`
	TotalCollected decimal.Decimal `db:"total_collected"`
	Outcomes       []Outcome       `db:"outcomes"`
	CreatedAt      time.Time       `db:"created_at"`
}

// PendingSettlement describes a matured account awaiting payout.
type PendingSettlement struct {
	AccountID        int             `json:"account_id"`
	UserID           int             `json:"user_id"`
	MaturityDate     time.Time       `json:"maturity_date"`
	SettlementAmount decimal.Decimal `json:"settlement_amount"`
	Arrears          decimal.Decimal `json:"arrears"`
	Penalty          decimal.Decimal `json:"penalty"`
	Payout           decimal.Decimal `json:"payout"`
}
