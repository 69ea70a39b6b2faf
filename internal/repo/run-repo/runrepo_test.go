package runrepo

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/provenvalueenterprises-collab/provenv-sub002/internal/domain"
)

func NewMock(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	mockDB, err := pgxmock.NewPool()
	assert.NoError(t, err)
	repo := New(mockDB)
	t.Cleanup(mockDB.Close)

	return repo, mockDB
}

func sampleSummary() *domain.RunSummary {
	return &domain.RunSummary{
		ID:             uuid.MustParse("7b1e4a6e-9f2c-4f0a-a2a7-3f1f7a1f0d11"),
		RunDate:        time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC),
		TotalProcessed: 2,
		SuccessCount:   1,
		FailureCount:   1,
		TotalCollected: decimal.NewFromInt(500),
		Outcomes: []domain.Outcome{
			{AccountID: 42, UserID: 7, Status: domain.OutcomeSuccess, Amount: decimal.NewFromInt(500)},
			{AccountID: 43, UserID: 8, Status: domain.OutcomeFailure, Amount: decimal.NewFromInt(500), Reason: "insufficient balance"},
		},
	}
}

func TestRepository_Save(t *testing.T) {
	repo, mock := NewMock(t)

	summary := sampleSummary()
	outcomes, err := json.Marshal(summary.Outcomes)
	assert.NoError(t, err)

	tests := []struct {
		name      string
		mockSetup func()
		expectErr bool
	}{
		{
			name: "Summary saved",
			mockSetup: func() {
				mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO contribution_runs`)).
					WithArgs(summary.ID, summary.RunDate, 2, 1, 1, 0, summary.TotalCollected, outcomes).
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
			},
		},
		{
			name: "Database error",
			mockSetup: func() {
				mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO contribution_runs`)).
					WithArgs(summary.ID, summary.RunDate, 2, 1, 1, 0, summary.TotalCollected, outcomes).
					WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			err := repo.Save(context.Background(), summary)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepository_List(t *testing.T) {
	repo, mock := NewMock(t)

	summary := sampleSummary()
	outcomes, err := json.Marshal(summary.Outcomes)
	assert.NoError(t, err)
	createdAt := summary.RunDate.Add(6 * time.Hour)

	tests := []struct {
		name      string
		mockSetup func()
		expectErr bool
		count     int
	}{
		{
			name: "Summaries returned",
			mockSetup: func() {
				rows := pgxmock.NewRows([]string{
					"id", "run_date", "total_processed", "success_count", "failure_count",
					"skipped_count", "total_collected", "outcomes", "created_at",
				}).AddRow(summary.ID, summary.RunDate, 2, 1, 1, 0, summary.TotalCollected, outcomes, createdAt)
				mock.ExpectQuery(regexp.QuoteMeta(`FROM contribution_runs`)).
					WithArgs(20).
					WillReturnRows(rows)
			},
			count: 1,
		},
		{
			name: "Malformed outcomes",
			mockSetup: func() {
				rows := pgxmock.NewRows([]string{
					"id", "run_date", "total_processed", "success_count", "failure_count",
					"skipped_count", "total_collected", "outcomes", "created_at",
				}).AddRow(summary.ID, summary.RunDate, 2, 1, 1, 0, summary.TotalCollected, []byte("not json"), createdAt)
				mock.ExpectQuery(regexp.QuoteMeta(`FROM contribution_runs`)).
					WithArgs(20).
					WillReturnRows(rows)
			},
			expectErr: true,
		},
		{
			name: "Database error",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`FROM contribution_runs`)).
					WithArgs(20).
					WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			summaries, err := repo.List(context.Background(), 20)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Len(t, summaries, tt.count)
			assert.Len(t, summaries[0].Outcomes, 2)
			assert.Equal(t, domain.OutcomeFailure, summaries[0].Outcomes[1].Status)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
