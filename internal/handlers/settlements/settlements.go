package settlements

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/provenvalueenterprises-collab/provenv-sub002/internal/domain"
	"github.com/provenvalueenterprises-collab/provenv-sub002/internal/dto"
	settlementservice "github.com/provenvalueenterprises-collab/provenv-sub002/internal/service/settlementservice"
	"github.com/provenvalueenterprises-collab/provenv-sub002/pkg/utils"
)

type Service interface {
	PendingSettlements(ctx context.Context, asOf time.Time) ([]domain.PendingSettlement, error)
	Settle(ctx context.Context, accountID int, asOf time.Time) (*domain.PendingSettlement, error)
}

type SettlementHandler struct {
	settlementService Service
}

func New(settlementService Service) *SettlementHandler {
	return &SettlementHandler{
		settlementService: settlementService,
	}
}

func toDTO(p domain.PendingSettlement) dto.PendingSettlementResponseDTO {
	return dto.PendingSettlementResponseDTO{
		AccountID:        p.AccountID,
		UserID:           p.UserID,
		MaturityDate:     p.MaturityDate,
		SettlementAmount: p.SettlementAmount,
		Arrears:          p.Arrears,
		Penalty:          p.Penalty,
		Payout:           p.Payout,
	}
}

// GetPending godoc
//
//	@Summary		List accounts pending settlement
//	@Description	Matured accounts with the arrears, penalty and payout that settling them now would produce.
//	@Tags			Settlements
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}		dto.PendingSettlementResponseDTO	"Pending settlements"
//	@Failure		401	{object}	utils.Response						"User not authorized"
//	@Failure		500	{object}	utils.Response						"Internal server error"
//	@Router			/api/admin/settlements/pending [get]
func (h *SettlementHandler) GetPending(w http.ResponseWriter, r *http.Request) {
	pending, err := h.settlementService.PendingSettlements(r.Context(), time.Now())
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch pending settlements")
		return
	}

	response := make([]dto.PendingSettlementResponseDTO, len(pending))
	for i, p := range pending {
		response[i] = toDTO(p)
	}
	utils.RespondWithJSON(w, http.StatusOK, response)
}

// Settle godoc
//
//	@Summary		Settle a matured account
//	@Description	Credits the settlement payout, net of arrears and penalty, to the owner's wallet and closes the account.
//	@Tags			Settlements
//	@Security		BearerAuth
//	@Produce		json
//	@Param			accountID	path		int									true	"Account id"
//	@Success		200			{object}	dto.PendingSettlementResponseDTO	"Settlement result"
//	@Failure		401			{object}	utils.Response						"User not authorized"
//	@Failure		404			{object}	utils.Response						"Account not found"
//	@Failure		409			{object}	utils.Response						"Account already settled"
//	@Failure		422			{object}	utils.Response						"Invalid account id or account not yet matured"
//	@Failure		500			{object}	utils.Response						"Internal server error"
//	@Router			/api/admin/settlements/{accountID} [post]
func (h *SettlementHandler) Settle(w http.ResponseWriter, r *http.Request) {
	accountID, err := strconv.Atoi(chi.URLParam(r, "accountID"))
	if err != nil || accountID <= 0 {
		utils.RespondWithError(w, http.StatusUnprocessableEntity, "Invalid account id")
		return
	}

	settlement, err := h.settlementService.Settle(r.Context(), accountID, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAccountNotFound):
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, settlementservice.ErrAlreadySettled):
			utils.RespondWithError(w, http.StatusConflict, err.Error())
		case errors.Is(err, settlementservice.ErrNotMatured):
			utils.RespondWithError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, toDTO(*settlement))
}
