package handler

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dtroode/campusmarket-server/internal/api/http/httperr"
	"github.com/dtroode/campusmarket-server/internal/api/http/middleware"
	"github.com/dtroode/campusmarket-server/internal/apierror"
	"github.com/dtroode/campusmarket-server/internal/logger"
	"github.com/dtroode/campusmarket-server/internal/model"
)

// ListingService manages listings on behalf of an authenticated caller.
type ListingService interface {
	Create(ctx context.Context, caller model.SessionClaims, params model.CreateListingParams) (model.Listing, error)
	Search(ctx context.Context, caller model.SessionClaims, filter model.ListingFilter) ([]model.Listing, error)
	ListUniversity(ctx context.Context, caller model.SessionClaims) ([]model.Listing, error)
	ListMine(ctx context.Context, caller model.SessionClaims) ([]model.Listing, error)
	Get(ctx context.Context, caller model.SessionClaims, id uuid.UUID) (model.Listing, error)
	Delete(ctx context.Context, caller model.SessionClaims, id uuid.UUID) error
}

// Listing handles the /listings endpoints. All of them require a session.
type Listing struct {
	listingService ListingService
	maxUploadBytes int64
	logger         *logger.Logger
}

// NewListing creates a new Listing handler. maxUploadBytes caps the multipart
// body of Create.
func NewListing(listingService ListingService, maxUploadBytes int64, logger *logger.Logger) *Listing {
	return &Listing{listingService: listingService, maxUploadBytes: maxUploadBytes, logger: logger}
}

type listingResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	OwnerEmail  string    `json:"ownerEmail"`
	University  string    `json:"university"`
	ImageURLs   []string  `json:"imageUrls"`
	Tags        []string  `json:"tags"`
	DatePosted  time.Time `json:"datePosted"`
}

func toListingResponse(l model.Listing) listingResponse {
	resp := listingResponse{
		ID:          l.ID.String(),
		Title:       l.Title,
		Description: l.Description,
		Price:       l.Price,
		OwnerEmail:  l.OwnerEmail,
		University:  l.University,
		ImageURLs:   l.ImageURLs,
		Tags:        l.Tags,
		DatePosted:  l.CreatedAt,
	}
	if resp.ImageURLs == nil {
		resp.ImageURLs = []string{}
	}
	if resp.Tags == nil {
		resp.Tags = []string{}
	}
	return resp
}

func toListingResponses(listings []model.Listing) []listingResponse {
	out := make([]listingResponse, 0, len(listings))
	for _, l := range listings {
		out = append(out, toListingResponse(l))
	}
	return out
}

// Create accepts a multipart form with title, description, price, tags and
// up to five images.
func (h *Listing) Create(c *gin.Context) {
	caller, _ := middleware.SessionFromContext(c)

	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}
	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httperr.Write(c, apierror.NewErrValidation("Upload is too large"))
			return
		}
		httperr.Write(c, apierror.NewErrValidation("Expected a multipart form"))
		return
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(formValue(form, "price")), 64)
	if err != nil {
		httperr.Write(c, apierror.NewErrValidation("price must be a number"))
		return
	}

	files := form.File["images"]
	if len(files) > model.MaxListingImages {
		httperr.Write(c, apierror.NewErrValidation(fmt.Sprintf("Cannot upload more than %d images", model.MaxListingImages)))
		return
	}

	images := make([]model.ListingImage, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			h.logger.Error("Listing handler: failed to open upload", "filename", fh.Filename, "error", err.Error())
			httperr.Write(c, apierror.NewErrInternalServerError(err))
			return
		}
		defer f.Close()

		images = append(images, model.ListingImage{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Reader:      f,
		})
	}

	listing, err := h.listingService.Create(c.Request.Context(), caller, model.CreateListingParams{
		Title:       formValue(form, "title"),
		Description: formValue(form, "description"),
		Price:       price,
		Tags:        splitValues(form.Value["tags"]),
		Images:      images,
	})
	if err != nil {
		httperr.Write(c, err)
		return
	}

	c.JSON(http.StatusOK, toListingResponse(listing))
}

// Search filters the caller's university listings by title, tags and price.
func (h *Listing) Search(c *gin.Context) {
	caller, _ := middleware.SessionFromContext(c)

	filter := model.ListingFilter{
		Title: strings.TrimSpace(c.Query("title")),
		Tags:  splitValues(c.QueryArray("tags")),
	}
	var ok bool
	if filter.MinPrice, ok = queryFloat(c, "minPrice"); !ok {
		return
	}
	if filter.MaxPrice, ok = queryFloat(c, "maxPrice"); !ok {
		return
	}

	listings, err := h.listingService.Search(c.Request.Context(), caller, filter)
	if err != nil {
		httperr.Write(c, err)
		return
	}

	c.JSON(http.StatusOK, toListingResponses(listings))
}

func (h *Listing) ListUniversity(c *gin.Context) {
	caller, _ := middleware.SessionFromContext(c)

	listings, err := h.listingService.ListUniversity(c.Request.Context(), caller)
	if err != nil {
		httperr.Write(c, err)
		return
	}

	c.JSON(http.StatusOK, toListingResponses(listings))
}

func (h *Listing) ListMine(c *gin.Context) {
	caller, _ := middleware.SessionFromContext(c)

	listings, err := h.listingService.ListMine(c.Request.Context(), caller)
	if err != nil {
		httperr.Write(c, err)
		return
	}

	c.JSON(http.StatusOK, toListingResponses(listings))
}

func (h *Listing) Get(c *gin.Context) {
	caller, _ := middleware.SessionFromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.Write(c, apierror.NewErrListingNotFound())
		return
	}

	listing, err := h.listingService.Get(c.Request.Context(), caller, id)
	if err != nil {
		httperr.Write(c, err)
		return
	}

	c.JSON(http.StatusOK, toListingResponse(listing))
}

func (h *Listing) Delete(c *gin.Context) {
	caller, _ := middleware.SessionFromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.Write(c, apierror.NewErrListingNotFound())
		return
	}

	if err := h.listingService.Delete(c.Request.Context(), caller, id); err != nil {
		httperr.Write(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Listing deleted"})
}

func formValue(form *multipart.Form, key string) string {
	if v := form.Value[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

// splitValues accepts both repeated parameters and comma separated lists.
func splitValues(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func queryFloat(c *gin.Context, key string) (*float64, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		httperr.Write(c, apierror.NewErrValidation(key+" must be a number"))
		return nil, false
	}
	return &v, true
}
