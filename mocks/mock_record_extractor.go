package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"customsdesk/internal/domain"
)

// MockRecordExtractor is a mock implementation of port.RecordExtractor.
type MockRecordExtractor struct {
	mock.Mock
}

func (m *MockRecordExtractor) ExtractDocument(ctx context.Context, doc domain.SourceDocument) (domain.Record, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.Record), args.Error(1)
}
