package settlements

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"

	"github.com/provenvalueenterprises-collab/provenv-sub002/internal/domain"
	"github.com/provenvalueenterprises-collab/provenv-sub002/internal/dto"
	settlementservice "github.com/provenvalueenterprises-collab/provenv-sub002/internal/service/settlementservice"
)

func NewMock(t *testing.T) (*SettlementHandler, *MockService) {
	ctrl := gomock.NewController(t)
	service := NewMockService(ctrl)
	handler := New(service)
	return handler, service
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestGetPending(t *testing.T) {
	handler, service := NewMock(t)

	pending := []domain.PendingSettlement{
		{
			AccountID:        1,
			UserID:           10,
			MaturityDate:     time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
			SettlementAmount: decimal.NewFromInt(10000),
			Arrears:          decimal.NewFromInt(1000),
			Penalty:          decimal.NewFromInt(50),
			Payout:           decimal.NewFromInt(8950),
		},
	}

	tests := []struct {
		name         string
		prepareMock  func()
		expectedCode int
	}{
		{
			name: "Pending settlements returned",
			prepareMock: func() {
				service.EXPECT().PendingSettlements(gomock.Any(), gomock.Any()).Return(pending, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name: "Service error",
			prepareMock: func() {
				service.EXPECT().PendingSettlements(gomock.Any(), gomock.Any()).Return(nil, errors.New("db error"))
			},
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			r := httptest.NewRequest(http.MethodGet, "/api/admin/settlements/pending", nil)
			w := httptest.NewRecorder()

			handler.GetPending(w, r)
			assert.Equal(t, tt.expectedCode, w.Code)

			if tt.expectedCode == http.StatusOK {
				var body []dto.PendingSettlementResponseDTO
				_ = json.NewDecoder(w.Body).Decode(&body)
				assert.Len(t, body, 1)
				assert.Equal(t, 1, body[0].AccountID)
			}
		})
	}
}

func TestSettle(t *testing.T) {
	handler, service := NewMock(t)

	tests := []struct {
		name         string
		accountID    string
		prepareMock  func()
		expectedCode int
	}{
		{
			name:      "Successful settlement",
			accountID: "1",
			prepareMock: func() {
				service.EXPECT().Settle(gomock.Any(), 1, gomock.Any()).Return(&domain.PendingSettlement{
					AccountID: 1,
					UserID:    10,
					Payout:    decimal.NewFromInt(8950),
				}, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:         "Invalid account id",
			accountID:    "abc",
			prepareMock:  func() {},
			expectedCode: http.StatusUnprocessableEntity,
		},
		{
			name:      "Account not found",
			accountID: "42",
			prepareMock: func() {
				service.EXPECT().Settle(gomock.Any(), 42, gomock.Any()).Return(nil, domain.ErrAccountNotFound)
			},
			expectedCode: http.StatusNotFound,
		},
		{
			name:      "Already settled",
			accountID: "1",
			prepareMock: func() {
				service.EXPECT().Settle(gomock.Any(), 1, gomock.Any()).Return(nil, settlementservice.ErrAlreadySettled)
			},
			expectedCode: http.StatusConflict,
		},
		{
			name:      "Not yet matured",
			accountID: "1",
			prepareMock: func() {
				service.EXPECT().Settle(gomock.Any(), 1, gomock.Any()).Return(nil, settlementservice.ErrNotMatured)
			},
			expectedCode: http.StatusUnprocessableEntity,
		},
		{
			name:      "Internal error",
			accountID: "1",
			prepareMock: func() {
				service.EXPECT().Settle(gomock.Any(), 1, gomock.Any()).Return(nil, errors.New("db error"))
			},
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			r := httptest.NewRequest(http.MethodPost, "/api/admin/settlements/"+tt.accountID, nil)
			r = withURLParam(r, "accountID", tt.accountID)
			w := httptest.NewRecorder()

			handler.Settle(w, r)
			assert.Equal(t, tt.expectedCode, w.Code)
		})
	}
}
