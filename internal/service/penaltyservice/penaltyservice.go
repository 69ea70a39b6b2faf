package penaltyservice

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/provenvalueenterprises-collab/provenv-sub002/internal/config"
)

const (
	ModeFlat    = "flat"
	ModePercent = "percent"
)

// Policy computes the penalty owed for missed contributions. The formula is
// configuration, not code: operators pick flat-fee-per-day or a rate applied
// to the missed amount.
type Policy struct {
	mode    string
	rate    decimal.Decimal
	flatFee decimal.Decimal
}

func New(cfg *config.Config) (*Policy, error) {
	switch cfg.PenaltyMode {
	case ModeFlat, ModePercent:
	default:
		return nil, fmt.Errorf("unsupported penalty mode: %s", cfg.PenaltyMode)
	}
	return &Policy{
		mode:    cfg.PenaltyMode,
		rate:    decimal.NewFromFloat(cfg.PenaltyRate),
		flatFee: decimal.NewFromFloat(cfg.PenaltyFlatFee),
	}, nil
}

// Compute is pure: same inputs, same penalty, no side effects.
func (p *Policy) Compute(missedAmount decimal.Decimal, daysLate int) decimal.Decimal {
	if daysLate <= 0 || missedAmount.Sign() <= 0 {
		return decimal.Zero
	}
	days := decimal.NewFromInt(int64(daysLate))
	if p.mode == ModeFlat {
		return p.flatFee.Mul(days)
	}
	return missedAmount.Mul(p.rate).Mul(days)
}
