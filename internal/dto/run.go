package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/provenvalueenterprises-collab/provenv-sub002/internal/domain"
)

type OutcomeDTO struct {
	AccountID int             `json:"account_id" example:"42"`
	UserID    int             `json:"user_id" example:"7"`
	Status    string          `json:"status" example:"success"`
	Amount    decimal.Decimal `json:"amount" example:"500"`
	Reason    string          `json:"reason,omitempty" example:"insufficient balance"`
}

type RunSummaryResponseDTO struct {
	ID             string          `json:"id" example:"7b1e4a6e-9f2c-4f0a-a2a7-3f1f7a1f0d11"`
	RunDate        time.Time       `json:"run_date" example:"2024-03-10T00:00:00Z"`
	TotalProcessed int             `json:"total_processed" example:"120"`
	SuccessCount   int             `json:"success_count" example:"115"`
	FailureCount   int             `json:"failure_count" example:"5"`
	SkippedCount   int             `json:"skipped_count" example:"0"`
	TotalCollected decimal.Decimal `json:"total_collected" example:"57500"`
	Outcomes       []OutcomeDTO    `json:"outcomes"`
}

func NewRunSummaryResponseDTO(summary *domain.RunSummary) RunSummaryResponseDTO {
	outcomes := make([]OutcomeDTO, len(summary.Outcomes))
	for i, o := range summary.Outcomes {
		outcomes[i] = OutcomeDTO{
			AccountID: o.AccountID,
			UserID:    o.UserID,
			Status:    o.Status,
			Amount:    o.Amount,
			Reason:    o.Reason,
		}
	}
	return RunSummaryResponseDTO{
		ID:             summary.ID.String(),
		RunDate:        summary.RunDate,
		TotalProcessed: summary.TotalProcessed,
		SuccessCount:   summary.SuccessCount,
		FailureCount:   summary.FailureCount,
		SkippedCount:   summary.SkippedCount,
		TotalCollected: summary.TotalCollected,
		Outcomes:       outcomes,
	}
}
