package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"customsdesk/internal/domain"
	"customsdesk/internal/service"
)

// MockDeclarationService is a mock implementation of service.DeclarationService.
type MockDeclarationService struct {
	mock.Mock
}

func (m *MockDeclarationService) Build(ctx context.Context, docs []domain.SourceDocument) (*service.BuildOutput, error) {
	args := m.Called(ctx, docs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.BuildOutput), args.Error(1)
}

func (m *MockDeclarationService) BuildFromStorage(ctx context.Context, keys map[domain.DocumentKind]string) (*service.BuildOutput, error) {
	args := m.Called(ctx, keys)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.BuildOutput), args.Error(1)
}

func (m *MockDeclarationService) Publish(ctx context.Context, rep *domain.DeclarationReport) (*service.PublishOutput, error) {
	args := m.Called(ctx, rep)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PublishOutput), args.Error(1)
}

func (m *MockDeclarationService) CanPublish() bool {
	args := m.Called()
	return args.Bool(0)
}
