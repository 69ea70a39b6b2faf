package cron

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/provenvalueenterprises-collab/provenv-sub002/internal/domain"
	"github.com/provenvalueenterprises-collab/provenv-sub002/internal/dto"
	"github.com/provenvalueenterprises-collab/provenv-sub002/pkg/utils"
)

const (
	dateLayout       = "2006-01-02"
	defaultRunsLimit = 20
)

type Service interface {
	Run(ctx context.Context, asOf time.Time) (*domain.RunSummary, error)
	Runs(ctx context.Context, limit int) ([]domain.RunSummary, error)
}

type CronHandler struct {
	contributionService Service
}

func New(contributionService Service) *CronHandler {
	return &CronHandler{
		contributionService: contributionService,
	}
}

// TriggerRun godoc
//
//	@Summary		Trigger the daily contribution run
//	@Description	Process every active thrift account due today: debit the owner's wallet, record the contribution and advance the due date. Reruns for the same date are safe; already-processed accounts are skipped.
//	@Tags			Contributions
//	@Security		BearerAuth
//	@Produce		json
//	@Param			date	query		string						false	"Run date override (YYYY-MM-DD), defaults to today"
//	@Success		200		{object}	dto.RunSummaryResponseDTO	"Run summary"
//	@Failure		400		{object}	utils.Response				"Invalid date"
//	@Failure		401		{object}	utils.Response				"Missing or wrong secret"
//	@Failure		500		{object}	utils.Response				"Run could not start"
//	@Router			/api/cron/contributions [post]
func (h *CronHandler) TriggerRun(w http.ResponseWriter, r *http.Request) {
	asOf := time.Now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
			return
		}
		asOf = parsed
	}

	summary, err := h.contributionService.Run(r.Context(), asOf)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewRunSummaryResponseDTO(summary))
}

// ListRuns godoc
//
//	@Summary		List past contribution runs
//	@Description	Returns the audit trail of processor invocations, newest first.
//	@Tags			Contributions
//	@Security		BearerAuth
//	@Produce		json
//	@Param			limit	query		int							false	"Max rows to return"	default(20)
//	@Success		200		{array}		dto.RunSummaryResponseDTO	"Run history"
//	@Failure		401		{object}	utils.Response				"User not authorized"
//	@Failure		500		{object}	utils.Response				"Internal server error"
//	@Router			/api/admin/contributions/runs [get]
func (h *CronHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit := defaultRunsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			utils.RespondWithError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	summaries, err := h.contributionService.Runs(r.Context(), limit)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch runs")
		return
	}

	response := make([]dto.RunSummaryResponseDTO, len(summaries))
	for i := range summaries {
		response[i] = dto.NewRunSummaryResponseDTO(&summaries[i])
	}
	utils.RespondWithJSON(w, http.StatusOK, response)
}
