package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dtroode/campusmarket-server/internal/model"
)

// ListingStore is a mock type for the ListingStore type
type ListingStore struct {
	mock.Mock
}

var _ model.ListingStore = (*ListingStore)(nil)

// Create provides a mock function with given fields: ctx, listing
func (_m *ListingStore) Create(ctx context.Context, listing model.Listing) (model.Listing, error) {
	ret := _m.Called(ctx, listing)
	return ret.Get(0).(model.Listing), ret.Error(1)
}

// GetByID provides a mock function with given fields: ctx, id
func (_m *ListingStore) GetByID(ctx context.Context, id uuid.UUID) (model.Listing, error) {
	ret := _m.Called(ctx, id)
	return ret.Get(0).(model.Listing), ret.Error(1)
}

// Search provides a mock function with given fields: ctx, filter
func (_m *ListingStore) Search(ctx context.Context, filter model.ListingFilter) ([]model.Listing, error) {
	ret := _m.Called(ctx, filter)
	var listings []model.Listing
	if v := ret.Get(0); v != nil {
		listings = v.([]model.Listing)
	}
	return listings, ret.Error(1)
}

// Delete provides a mock function with given fields: ctx, id
func (_m *ListingStore) Delete(ctx context.Context, id uuid.UUID) error {
	ret := _m.Called(ctx, id)
	return ret.Error(0)
}
