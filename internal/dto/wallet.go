package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type WalletResponseDTO struct {
	UserID  int             `json:"user_id" example:"7"`
	Balance decimal.Decimal `json:"balance" example:"1500.5"`
}

type WalletCreditRequestDTO struct {
	Amount      decimal.Decimal `json:"amount" example:"2500"`
	Reference   string          `json:"reference" example:"pay-9f2c4f0a"`
	Description string          `json:"description" example:"card funding"`
}

type WalletTransactionResponseDTO struct {
	ID            int             `json:"id" example:"311"`
	Direction     string          `json:"direction" example:"debit"`
	Amount        decimal.Decimal `json:"amount" example:"500"`
	BalanceBefore decimal.Decimal `json:"balance_before" example:"1000"`
	BalanceAfter  decimal.Decimal `json:"balance_after" example:"500"`
	Reference     string          `json:"reference" example:"ctb-42-2024-03-10"`
	Status        string          `json:"status" example:"completed"`
	Description   string          `json:"description" example:"daily contribution for account 42"`
	CreatedAt     time.Time       `json:"created_at" example:"2024-03-10T06:00:00Z"`
}
