package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/campusmarket-server/internal/apierror"
	"github.com/dtroode/campusmarket-server/internal/mocks"
	"github.com/dtroode/campusmarket-server/internal/model"
	"github.com/dtroode/campusmarket-server/internal/testutil"
)

var alice = model.SessionClaims{Email: "alice@mit.edu", University: "Massachusetts Institute of Technology"}

func newTestListing() (*Listing, *mocks.ListingStore, *mocks.Storage) {
	store := &mocks.ListingStore{}
	storage := &mocks.Storage{}
	return NewListing(store, storage, testutil.MakeNoopLogger()), store, storage
}

func image(name string) model.ListingImage {
	return model.ListingImage{Filename: name, ContentType: "image/jpeg", Size: 3, Reader: bytes.NewReader([]byte("img"))}
}

func TestImageKey(t *testing.T) {
	key := imageKey("Massachusetts Institute of Technology", `C:\photos\My Desk.JPG`)

	assert.True(t, strings.HasPrefix(key, "massachusetts-institute-of-technology/"), key)
	assert.True(t, strings.HasSuffix(key, "-my-desk.jpg"), key)
	id := strings.TrimSuffix(strings.TrimPrefix(key, "massachusetts-institute-of-technology/"), "-my-desk.jpg")
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
}

func TestListing_Create(t *testing.T) {
	svc, store, storage := newTestListing()

	storage.On("Upload", mock.Anything, mock.MatchedBy(func(k string) bool {
		return strings.HasPrefix(k, "massachusetts-institute-of-technology/")
	}), mock.Anything, int64(3), "image/jpeg").Return(nil).Twice()
	storage.On("URL", mock.Anything).Return("http://cdn/images/x")
	store.On("Create", mock.Anything, mock.MatchedBy(func(l model.Listing) bool {
		return l.OwnerEmail == "alice@mit.edu" &&
			l.University == alice.University &&
			l.Title == "Desk" &&
			len(l.ImageURLs) == 2 &&
			assert.ObjectsAreEqual([]string{"furniture"}, l.Tags)
	})).Return(model.Listing{Title: "Desk"}, nil)

	got, err := svc.Create(context.Background(), alice, model.CreateListingParams{
		Title:  "<script>x</script>Desk",
		Price:  40,
		Tags:   []string{"furniture", "  "},
		Images: []model.ListingImage{image("a.jpg"), image("b.jpg")},
	})
	require.NoError(t, err)
	assert.Equal(t, "Desk", got.Title)
	storage.AssertExpectations(t)
}

func TestListing_Create_Validation(t *testing.T) {
	tests := []struct {
		name   string
		params model.CreateListingParams
	}{
		{name: "empty title", params: model.CreateListingParams{Title: " ", Price: 1}},
		{name: "negative price", params: model.CreateListingParams{Title: "Desk", Price: -1}},
		{name: "too many images", params: model.CreateListingParams{Title: "Desk", Price: 1, Images: make([]model.ListingImage, 6)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, storage := newTestListing()

			_, err := svc.Create(context.Background(), alice, tt.params)
			requireKind(t, err, apierror.KindValidation)
			store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestListing_Create_RollsBackImages(t *testing.T) {
	svc, store, storage := newTestListing()

	storage.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	storage.On("URL", mock.Anything).Return("http://cdn/images/k")
	storage.On("KeyFromURL", "http://cdn/images/k").Return("k", true)
	storage.On("Delete", mock.Anything, "k").Return(nil).Once()
	store.On("Create", mock.Anything, mock.Anything).Return(model.Listing{}, errors.New("db down"))

	_, err := svc.Create(context.Background(), alice, model.CreateListingParams{Title: "Desk", Price: 1, Images: []model.ListingImage{image("a.png")}})
	requireKind(t, err, apierror.KindInternal)
	storage.AssertExpectations(t)
}

func TestListing_SearchIsScoped(t *testing.T) {
	svc, store, _ := newTestListing()
	minPrice := 10.0

	store.On("Search", mock.Anything, model.ListingFilter{
		University: alice.University,
		Title:      "desk",
		MinPrice:   &minPrice,
	}).Return([]model.Listing{{Title: "Desk"}}, nil)

	got, err := svc.Search(context.Background(), alice, model.ListingFilter{
		University: "Harvard University",
		OwnerEmail: "bob@harvard.edu",
		Title:      "desk",
		MinPrice:   &minPrice,
	})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestListing_ListMine(t *testing.T) {
	svc, store, _ := newTestListing()
	store.On("Search", mock.Anything, model.ListingFilter{University: alice.University, OwnerEmail: alice.Email}).Return([]model.Listing{}, nil)

	got, err := svc.ListMine(context.Background(), alice)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestListing_Get_OtherUniversityIsHidden(t *testing.T) {
	svc, store, _ := newTestListing()
	id := uuid.New()
	store.On("GetByID", mock.Anything, id).Return(model.Listing{ID: id, University: "Harvard University"}, nil)

	_, err := svc.Get(context.Background(), alice, id)
	apiErr := requireKind(t, err, apierror.KindNotFound)
	assert.Equal(t, "Listing not found", apiErr.Message)
}

func TestListing_Delete(t *testing.T) {
	id := uuid.New()

	t.Run("not owner", func(t *testing.T) {
		svc, store, _ := newTestListing()
		store.On("GetByID", mock.Anything, id).Return(model.Listing{ID: id, University: alice.University, OwnerEmail: "bob@mit.edu"}, nil)

		err := svc.Delete(context.Background(), alice, id)
		requireKind(t, err, apierror.KindNotFound)
		store.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("owner removes images", func(t *testing.T) {
		svc, store, storage := newTestListing()
		store.On("GetByID", mock.Anything, id).Return(model.Listing{
			ID:         id,
			University: alice.University,
			OwnerEmail: alice.Email,
			ImageURLs:  []string{"http://cdn/images/a", "http://elsewhere/b"},
		}, nil)
		store.On("Delete", mock.Anything, id).Return(nil)
		storage.On("KeyFromURL", "http://cdn/images/a").Return("a", true)
		storage.On("KeyFromURL", "http://elsewhere/b").Return("", false)
		storage.On("Delete", mock.Anything, "a").Return(errors.New("transient"))

		require.NoError(t, svc.Delete(context.Background(), alice, id))
		storage.AssertExpectations(t)
	})
}
