package service

import (
	"context"
	"sync"
	"time"

	"github.com/BerenSaglam41/BackendMarket-sub001/internal/domain/entity"
	"github.com/BerenSaglam41/BackendMarket-sub001/internal/platform/logger"
	"github.com/stretchr/testify/mock"
)

type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) GetByUserID(ctx context.Context, userID string) (*entity.Cart, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Cart), args.Error(1)
}

func (m *MockCartRepository) Save(ctx context.Context, cart *entity.Cart) error {
	args := m.Called(ctx, cart)
	return args.Error(0)
}

func (m *MockCartRepository) DeleteByUserID(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type MockListingLookup struct {
	mock.Mock
}

func (m *MockListingLookup) GetListing(ctx context.Context, id string) (*entity.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Listing), args.Error(1)
}

func (m *MockListingLookup) GetLiveListing(ctx context.Context, id string) (*entity.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Listing), args.Error(1)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, subject string, message interface{}) error {
	args := m.Called(ctx, subject, message)
	return args.Error(0)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *entity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

type MockRevokedTokenStore struct {
	mock.Mock
}

func (m *MockRevokedTokenStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, ttl)
	return args.Error(0)
}

func (m *MockRevokedTokenStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

type MockListingRepository struct {
	mock.Mock
}

func (m *MockListingRepository) FindByID(ctx context.Context, id string) (*entity.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Listing), args.Error(1)
}

func (m *MockListingRepository) Search(ctx context.Context, filter entity.ListingFilter) (*entity.ListingPage, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ListingPage), args.Error(1)
}

type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) FindAll(ctx context.Context) ([]*entity.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Category), args.Error(1)
}

type MockListingCache struct {
	mock.Mock
}

func (m *MockListingCache) Get(ctx context.Context, listingID string) (*entity.Listing, error) {
	args := m.Called(ctx, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Listing), args.Error(1)
}

func (m *MockListingCache) Set(ctx context.Context, listing *entity.Listing, ttl time.Duration) error {
	args := m.Called(ctx, listing, ttl)
	return args.Error(0)
}

func (m *MockListingCache) Delete(ctx context.Context, listingID string) error {
	args := m.Called(ctx, listingID)
	return args.Error(0)
}

type countingRecorder struct {
	mu  sync.Mutex
	ops map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{ops: map[string]int{}}
}

func (r *countingRecorder) CartMutation(operation string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops[operation]++
}

func (r *countingRecorder) count(operation string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ops[operation]
}

type NoOpLogger struct{}

func (l *NoOpLogger) Debug(args ...interface{})                   {}
func (l *NoOpLogger) Debugf(template string, args ...interface{}) {}
func (l *NoOpLogger) Info(args ...interface{})                    {}
func (l *NoOpLogger) Infof(template string, args ...interface{})  {}
func (l *NoOpLogger) Warn(args ...interface{})                    {}
func (l *NoOpLogger) Warnf(template string, args ...interface{})  {}
func (l *NoOpLogger) Error(args ...interface{})                   {}
func (l *NoOpLogger) Errorf(template string, args ...interface{}) {}
func (l *NoOpLogger) Fatal(args ...interface{})                   {}
func (l *NoOpLogger) Fatalf(template string, args ...interface{}) {}
func (l *NoOpLogger) With(args ...interface{}) logger.Logger      { return l }
func (l *NoOpLogger) Sync() error                                 { return nil }

func NewNoOpLogger() logger.Logger {
	return &NoOpLogger{}
}
