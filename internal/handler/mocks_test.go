package handler

import (
	"context"
	"time"

	"supply-desk/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockDraftService is a mock implementation of DraftService.
type MockDraftService struct {
	mock.Mock
}

func (m *MockDraftService) view(args mock.Arguments) (*model.DraftView, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DraftView), args.Error(1)
}

func (m *MockDraftService) Open(ctx context.Context, req *model.OpenDraftRequest) (*model.DraftView, error) {
	return m.view(m.Called(ctx, req))
}

func (m *MockDraftService) OpenFromOrder(ctx context.Context, orderID int64) (*model.DraftView, error) {
	return m.view(m.Called(ctx, orderID))
}

func (m *MockDraftService) Get(ctx context.Context, id uuid.UUID) (*model.DraftView, error) {
	return m.view(m.Called(ctx, id))
}

func (m *MockDraftService) SetHeader(ctx context.Context, id uuid.UUID, req *model.DraftHeaderRequest) (*model.DraftView, error) {
	return m.view(m.Called(ctx, id, req))
}

func (m *MockDraftService) Scan(ctx context.Context, id uuid.UUID, code string) (*model.DraftView, error) {
	return m.view(m.Called(ctx, id, code))
}

func (m *MockDraftService) AddProduct(ctx context.Context, id uuid.UUID, productID int64) (*model.DraftView, error) {
	return m.view(m.Called(ctx, id, productID))
}

func (m *MockDraftService) UpdateLine(ctx context.Context, id uuid.UUID, index int, req *model.LineUpdateRequest) (*model.DraftView, error) {
	return m.view(m.Called(ctx, id, index, req))
}

func (m *MockDraftService) RemoveLine(ctx context.Context, id uuid.UUID, index int) (*model.DraftView, error) {
	return m.view(m.Called(ctx, id, index))
}

func (m *MockDraftService) Submit(ctx context.Context, id uuid.UUID) (*model.SubmitResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SubmitResponse), args.Error(1)
}

func (m *MockDraftService) Discard(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDraftService) History(ctx context.Context, orderID int64) ([]model.Submission, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Submission), args.Error(1)
}

func (m *MockDraftService) Submission(ctx context.Context, id uuid.UUID) (*model.SubmissionDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SubmissionDetail), args.Error(1)
}

// MockCatalogService is a mock implementation of CatalogService.
type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) Resolve(code string) (*model.ProductBrief, error) {
	args := m.Called(code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProductBrief), args.Error(1)
}

func (m *MockCatalogService) ByID(id int64) (*model.ProductBrief, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProductBrief), args.Error(1)
}

func (m *MockCatalogService) Refresh(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockNotificationService is a mock implementation of NotificationService.
type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) NewOrder(ctx context.Context, orderID int64) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func (m *MockNotificationService) OrdersChanged(ctx context.Context, newOrderIDs []int64) error {
	args := m.Called(ctx, newOrderIDs)
	return args.Error(0)
}

func (m *MockNotificationService) List(ctx context.Context, unreadOnly bool, limit int) ([]model.Notification, error) {
	args := m.Called(ctx, unreadOnly, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Notification), args.Error(1)
}

func (m *MockNotificationService) Acknowledge(ctx context.Context, id uuid.UUID) (*model.Notification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Notification), args.Error(1)
}

// stubCatalogStatus is a fixed CatalogStatus.
type stubCatalogStatus struct {
	loaded bool
	size   int
	at     time.Time
}

func (s stubCatalogStatus) Loaded() bool        { return s.loaded }
func (s stubCatalogStatus) Size() int           { return s.size }
func (s stubCatalogStatus) LoadedAt() time.Time { return s.at }
