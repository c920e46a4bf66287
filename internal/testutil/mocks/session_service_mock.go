package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/lexiboost/lexiboost/internal/models"
	"github.com/lexiboost/lexiboost/internal/session"
)

// MockSessionService is a mock implementation of session.Service
type MockSessionService struct {
	mock.Mock
}

func (m *MockSessionService) Start(ctx context.Context, userID int64) (*models.Session, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockSessionService) NextQuestion(ctx context.Context, sessionID int64) (*session.QuestionResult, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*session.QuestionResult), args.Error(1)
}

func (m *MockSessionService) SubmitAnswer(ctx context.Context, sessionID int64, req session.AnswerRequest) (*session.AnswerResult, error) {
	args := m.Called(ctx, sessionID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*session.AnswerResult), args.Error(1)
}

func (m *MockSessionService) Stop(ctx context.Context, sessionID int64) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *MockSessionService) UserStats(ctx context.Context, userID int64) (*models.UserStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserStats), args.Error(1)
}

func (m *MockSessionService) EvictIdle(ctx context.Context) int {
	args := m.Called(ctx)
	return args.Int(0)
}

func (m *MockSessionService) RunJanitor(ctx context.Context) {
	m.Called(ctx)
}
