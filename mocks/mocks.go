package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/yeremiapane/cafe-queue/models"
)

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Publish(ctx context.Context, event string, data any) error {
	args := m.Called(ctx, event, data)
	return args.Error(0)
}

type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Authenticate(ctx context.Context, token string) (*models.Session, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}
