package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/provenvalueenterprises-collab/provenv-sub002/internal/domain"
	"github.com/provenvalueenterprises-collab/provenv-sub002/internal/dto"
	walletservice "github.com/provenvalueenterprises-collab/provenv-sub002/internal/service/walletservice"
	"github.com/provenvalueenterprises-collab/provenv-sub002/pkg/utils"
)

const defaultTxLimit = 50

type Service interface {
	GetWallet(ctx context.Context, userID int) (*domain.Wallet, error)
	Fund(ctx context.Context, userID int, amount decimal.Decimal, reference, description string) (*domain.WalletTransaction, error)
	Transactions(ctx context.Context, userID int, limit int) ([]domain.WalletTransaction, error)
}

type WalletHandler struct {
	walletService Service
}

func New(walletService Service) *WalletHandler {
	return &WalletHandler{
		walletService: walletService,
	}
}

func userIDParam(r *http.Request) (int, error) {
	userID, err := strconv.Atoi(chi.URLParam(r, "userID"))
	if err != nil || userID <= 0 {
		return 0, errors.New("invalid user id")
	}
	return userID, nil
}

// GetWallet godoc
//
//	@Summary		Get a user's wallet
//	@Description	Current wallet balance for the given user.
//	@Tags			Wallets
//	@Security		BearerAuth
//	@Produce		json
//	@Param			userID	path		int					true	"User id"
//	@Success		200		{object}	dto.WalletResponseDTO	"Wallet balance"
//	@Failure		401		{object}	utils.Response		"User not authorized"
//	@Failure		404		{object}	utils.Response		"Wallet not found"
//	@Failure		500		{object}	utils.Response		"Internal server error"
//	@Router			/api/wallets/{userID} [get]
func (h *WalletHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	wallet, err := h.walletService.GetWallet(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrWalletNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.WalletResponseDTO{
		UserID:  wallet.UserID,
		Balance: wallet.Balance,
	})
}

// Credit godoc
//
//	@Summary		Credit a user's wallet
//	@Description	Funds the wallet through the atomic credit primitive. The reference is an idempotency key: a repeated credit with the same reference is rejected.
//	@Tags			Wallets
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			userID	path		int								true	"User id"
//	@Param			request	body		dto.WalletCreditRequestDTO		true	"Credit payload"
//	@Success		200		{object}	dto.WalletTransactionResponseDTO	"Created transaction"
//	@Failure		400		{object}	utils.Response					"Invalid request body"
//	@Failure		401		{object}	utils.Response					"User not authorized"
//	@Failure		409		{object}	utils.Response					"Duplicate reference"
//	@Failure		422		{object}	utils.Response					"Invalid amount"
//	@Failure		500		{object}	utils.Response					"Internal server error"
//	@Router			/api/wallets/{userID}/credit [post]
func (h *WalletHandler) Credit(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	var req dto.WalletCreditRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Reference == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "reference is required")
		return
	}

	tx, err := h.walletService.Fund(r.Context(), userID, req.Amount, req.Reference, req.Description)
	if err != nil {
		switch {
		case errors.Is(err, walletservice.ErrInvalidAmount):
			utils.RespondWithError(w, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, domain.ErrDuplicateReference):
			utils.RespondWithError(w, http.StatusConflict, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, toTransactionDTO(*tx))
}

// GetTransactions godoc
//
//	@Summary		Get wallet transaction history
//	@Description	Debits and credits for the user's wallet, newest first.
//	@Tags			Wallets
//	@Security		BearerAuth
//	@Produce		json
//	@Param			userID	path		int									true	"User id"
//	@Param			limit	query		int									false	"Max rows to return"	default(50)
//	@Success		200		{array}		dto.WalletTransactionResponseDTO	"Transaction history"
//	@Failure		401		{object}	utils.Response						"User not authorized"
//	@Failure		500		{object}	utils.Response						"Internal server error"
//	@Router			/api/wallets/{userID}/transactions [get]
func (h *WalletHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	limit := defaultTxLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			utils.RespondWithError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	txs, err := h.walletService.Transactions(r.Context(), userID, limit)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch transactions")
		return
	}

	response := make([]dto.WalletTransactionResponseDTO, len(txs))
	for i, tx := range txs {
		response[i] = toTransactionDTO(tx)
	}
	utils.RespondWithJSON(w, http.StatusOK, response)
}

func toTransactionDTO(tx domain.WalletTransaction) dto.WalletTransactionResponseDTO {
	return dto.WalletTransactionResponseDTO{
		ID:            tx.ID,
		Direction:     tx.Direction,
		Amount:        tx.Amount,
		BalanceBefore: tx.BalanceBefore,
		BalanceAfter:  tx.BalanceAfter,
		Reference:     tx.Reference,
		Status:        tx.Status,
		Description:   tx.Description,
		CreatedAt:     tx.CreatedAt,
	}
}
