package cron

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"

	"github.com/provenvalueenterprises-collab/provenv-sub002/internal/domain"
	"github.com/provenvalueenterprises-collab/provenv-sub002/internal/dto"
)

func NewMock(t *testing.T) (*CronHandler, *MockService) {
	ctrl := gomock.NewController(t)
	service := NewMockService(ctrl)
	handler := New(service)
	return handler, service
}

func TestTriggerRun(t *testing.T) {
	handler, service := NewMock(t)

	summary := &domain.RunSummary{
		ID:             uuid.New(),
		RunDate:        time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC),
		TotalProcessed: 2,
		SuccessCount:   1,
		FailureCount:   1,
		TotalCollected: decimal.NewFromInt(500),
		Outcomes: []domain.Outcome{
			{AccountID: 1, UserID: 11, Status: domain.OutcomeSuccess, Amount: decimal.NewFromInt(500)},
			{AccountID: 2, UserID: 12, Status: domain.OutcomeFailure, Amount: decimal.NewFromInt(500), Reason: "insufficient balance"},
		},
	}

	tests := []struct {
		name         string
		target       string
		prepareMock  func()
		expectedCode int
	}{
		{
			name:   "Successful run",
			target: "/api/cron/contributions",
			prepareMock: func() {
				service.EXPECT().Run(gomock.Any(), gomock.Any()).Return(summary, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:   "Explicit date override",
			target: "/api/cron/contributions?date=2024-03-10",
			prepareMock: func() {
				service.EXPECT().
					Run(gomock.Any(), time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)).
					Return(summary, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:         "Malformed date",
			target:       "/api/cron/contributions?date=10-03-2024",
			prepareMock:  func() {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:   "Run fails",
			target: "/api/cron/contributions",
			prepareMock: func() {
				service.EXPECT().Run(gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))
			},
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			r := httptest.NewRequest(http.MethodPost, tt.target, nil)
			w := httptest.NewRecorder()

			handler.TriggerRun(w, r)
			assert.Equal(t, tt.expectedCode, w.Code)

			if tt.expectedCode == http.StatusOK {
				var body dto.RunSummaryResponseDTO
				_ = json.NewDecoder(w.Body).Decode(&body)
				assert.Equal(t, 2, body.TotalProcessed)
				assert.Equal(t, 1, body.SuccessCount)
				assert.Equal(t, 1, body.FailureCount)
				assert.Len(t, body.Outcomes, 2)
			}
		})
	}
}

func TestListRuns(t *testing.T) {
	handler, service := NewMock(t)

	tests := []struct {
		name         string
		target       string
		prepareMock  func()
		expectedCode int
		expectedLen  int
	}{
		{
			name:   "Default limit",
			target: "/api/admin/contributions/runs",
			prepareMock: func() {
				service.EXPECT().Runs(gomock.Any(), 20).
					Return([]domain.RunSummary{{ID: uuid.New()}, {ID: uuid.New()}}, nil)
			},
			expectedCode: http.StatusOK,
			expectedLen:  2,
		},
		{
			name:   "Explicit limit",
			target: "/api/admin/contributions/runs?limit=5",
			prepareMock: func() {
				service.EXPECT().Runs(gomock.Any(), 5).Return(nil, nil)
			},
			expectedCode: http.StatusOK,
			expectedLen:  0,
		},
		{
			name:         "Invalid limit",
			target:       "/api/admin/contributions/runs?limit=-1",
			prepareMock:  func() {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:   "Service error",
			target: "/api/admin/contributions/runs",
			prepareMock: func() {
				service.EXPECT().Runs(gomock.Any(), 20).Return(nil, errors.New("db error"))
			},
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			r := httptest.NewRequest(http.MethodGet, tt.target, nil)
			w := httptest.NewRecorder()

			handler.ListRuns(w, r)
			assert.Equal(t, tt.expectedCode, w.Code)

			if tt.expectedCode == http.StatusOK {
				var body []dto.RunSummaryResponseDTO
				_ = json.NewDecoder(w.Body).Decode(&body)
				assert.Len(t, body, tt.expectedLen)
			}
		})
	}
}
