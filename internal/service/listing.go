package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/campusmarket-server/internal/apierror"
	"github.com/dtroode/campusmarket-server/internal/logger"
	"github.com/dtroode/campusmarket-server/internal/model"
	"github.com/dtroode/campusmarket-server/internal/slug"
)

// Listing manages marketplace listings. Every operation is scoped to the
// caller's university.
type Listing struct {
	store   model.ListingStore
	storage model.Storage
	logger  *logger.Logger
}

func NewListing(store model.ListingStore, storage model.Storage, logger *logger.Logger) *Listing {
	return &Listing{store: store, storage: storage, logger: logger}
}

func (s *Listing) Create(ctx context.Context, caller model.SessionClaims, params model.CreateListingParams) (model.Listing, error) {
	title := sanitizeText(params.Title)
	if title == "" {
		return model.Listing{}, apierror.NewErrValidation("title is required")
	}
	if params.Price < 0 || math.IsNaN(params.Price) || math.IsInf(params.Price, 0) {
		return model.Listing{}, apierror.NewErrValidation("price must be a non-negative number")
	}
	if len(params.Images) > model.MaxListingImages {
		return model.Listing{}, apierror.NewErrValidation(fmt.Sprintf("Cannot upload more than %d images", model.MaxListingImages))
	}

	tags := make([]string, 0, len(params.Tags))
	for _, tag := range params.Tags {
		if tag = sanitizeText(tag); tag != "" {
			tags = append(tags, tag)
		}
	}

	urls, err := s.uploadImages(ctx, caller.University, params.Images)
	if err != nil {
		return model.Listing{}, apierror.NewErrInternalServerError(err)
	}

	listing, err := s.store.Create(ctx, model.Listing{
		ID:          uuid.New(),
		Title:       title,
		Description: sanitizeText(params.Description),
		Price:       params.Price,
		OwnerEmail:  caller.Email,
		University:  caller.University,
		ImageURLs:   urls,
		Tags:        tags,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		s.logger.Error("Listing service: failed to create listing",
			"email", caller.Email,
			"error", err.Error())
		s.deleteImages(ctx, urls)
		return model.Listing{}, apierror.NewErrInternalServerError(err)
	}

	s.logger.Info("Listing service: listing created",
		"listing_id", listing.ID,
		"email", caller.Email,
		"images", len(urls))
	return listing, nil
}

// Search returns listings of the caller's university that match filter.
func (s *Listing) Search(ctx context.Context, caller model.SessionClaims, filter model.ListingFilter) ([]model.Listing, error) {
	filter.University = caller.University
	filter.OwnerEmail = ""
	return s.search(ctx, filter)
}

// ListUniversity returns every listing of the caller's university.
func (s *Listing) ListUniversity(ctx context.Context, caller model.SessionClaims) ([]model.Listing, error) {
	return s.search(ctx, model.ListingFilter{University: caller.University})
}

// ListMine returns the caller's own listings.
func (s *Listing) ListMine(ctx context.Context, caller model.SessionClaims) ([]model.Listing, error) {
	return s.search(ctx, model.ListingFilter{University: caller.University, OwnerEmail: caller.Email})
}

// Get returns a listing if it belongs to the caller's university.
func (s *Listing) Get(ctx context.Context, caller model.SessionClaims, id uuid.UUID) (model.Listing, error) {
	listing, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.Listing{}, apierror.NewErrListingNotFound()
		}
		s.logger.Error("Listing service: failed to get listing", "listing_id", id, "error", err.Error())
		return model.Listing{}, apierror.NewErrInternalServerError(err)
	}
	if listing.University != caller.University {
		return model.Listing{}, apierror.NewErrListingNotFound()
	}
	return listing, nil
}

// Delete removes the caller's own listing and its images.
func (s *Listing) Delete(ctx context.Context, caller model.SessionClaims, id uuid.UUID) error {
	listing, err := s.Get(ctx, caller, id)
	if err != nil {
		return err
	}
	if listing.OwnerEmail != caller.Email {
		return apierror.NewErrListingNotFound()
	}

	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return apierror.NewErrListingNotFound()
		}
		s.logger.Error("Listing service: failed to delete listing", "listing_id", id, "error", err.Error())
		return apierror.NewErrInternalServerError(err)
	}
	s.deleteImages(ctx, listing.ImageURLs)

	s.logger.Info("Listing service: listing deleted", "listing_id", id, "email", caller.Email)
	return nil
}

func (s *Listing) search(ctx context.Context, filter model.ListingFilter) ([]model.Listing, error) {
	listings, err := s.store.Search(ctx, filter)
	if err != nil {
		s.logger.Error("Listing service: failed to search listings",
			"university", filter.University,
			"error", err.Error())
		return nil, apierror.NewErrInternalServerError(err)
	}
	return listings, nil
}

func (s *Listing) uploadImages(ctx context.Context, university string, images []model.ListingImage) ([]string, error) {
	urls := make([]string, 0, len(images))
	for _, img := range images {
		key := imageKey(university, img.Filename)
		if err := s.storage.Upload(ctx, key, img.Reader, img.Size, img.ContentType); err != nil {
			s.logger.Error("Listing service: failed to upload image", "key", key, "error", err.Error())
			s.deleteImages(ctx, urls)
			return nil, fmt.Errorf("upload image: %w", err)
		}
		urls = append(urls, s.storage.URL(key))
	}
	return urls, nil
}

// deleteImages removes stored images. Failures are logged only.
func (s *Listing) deleteImages(ctx context.Context, urls []string) {
	for _, url := range urls {
		key, ok := s.storage.KeyFromURL(url)
		if !ok {
			s.logger.Warn("Listing service: image url outside storage", "url", url)
			continue
		}
		if err := s.storage.Delete(ctx, key); err != nil {
			s.logger.Error("Listing service: failed to delete image", "key", key, "error", err.Error())
		}
	}
}

// imageKey builds <slug(university)>/<uuid>-<filename>.
func imageKey(university, filename string) string {
	base := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	ext := path.Ext(base)
	name := slug.Make(strings.TrimSuffix(base, ext))
	if name == "" || name == "." {
		name = "image"
	}

	key := slug.Make(university) + "/" + uuid.NewString() + "-" + name
	if ext = slug.Make(strings.TrimPrefix(ext, ".")); ext != "" {
		key += "." + ext
	}
	return key
}
