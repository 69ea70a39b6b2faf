package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"

	"github.com/provenvalueenterprises-collab/provenv-sub002/internal/domain"
)

func NewMock(t *testing.T) (*Scheduler, *MockRunner) {
	ctrl := gomock.NewController(t)
	runner := NewMockRunner(ctrl)
	s := New(runner, "0 1 * * *", time.UTC)
	return s, runner
}

func TestStartAndStop(t *testing.T) {
	s, _ := NewMock(t)

	err := s.Start()
	assert.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, s.Stop(ctx))
}

func TestStartInvalidSchedule(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := New(NewMockRunner(ctrl), "not a schedule", time.UTC)

	err := s.Start()
	assert.Error(t, err)
}

func TestRunOnce(t *testing.T) {
	s, runner := NewMock(t)

	runner.EXPECT().Run(gomock.Any(), gomock.Any()).Return(&domain.RunSummary{
		ID:             uuid.New(),
		RunDate:        time.Now().UTC(),
		TotalProcessed: 3,
		SuccessCount:   3,
	}, nil)

	s.runOnce()
}

func TestRunOnceError(t *testing.T) {
	s, runner := NewMock(t)

	runner.EXPECT().Run(gomock.Any(), gomock.Any()).Return(nil, errors.New("db unavailable"))

	s.runOnce()
}
