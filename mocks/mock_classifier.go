package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"customsdesk/internal/domain"
)

// MockClassifier is a mock implementation of classification.Classifier.
type MockClassifier struct {
	mock.Mock
}

func (m *MockClassifier) Classify(ctx context.Context, details string) (*domain.HSClassification, error) {
	args := m.Called(ctx, details)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.HSClassification), args.Error(1)
}
