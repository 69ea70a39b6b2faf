package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type PendingSettlementResponseDTO struct {
	AccountID        int             `json:"account_id" example:"42"`
	UserID           int             `json:"user_id" example:"7"`
	MaturityDate     time.Time       `json:"maturity_date" example:"2024-03-01T00:00:00Z"`
	SettlementAmount decimal.Decimal `json:"settlement_amount" example:"10000"`
	Arrears          decimal.Decimal `json:"arrears" example:"1000"`
	Penalty          decimal.Decimal `json:"penalty" example:"50"`
	Payout           decimal.Decimal `json:"payout" example:"8950"`
}
