package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dtroode/campusmarket-server/internal/model"
)

var _ model.ListingStore = (*ListingRepository)(nil)

const listingColumns = `id, title, description, price, owner_email, university, image_urls, tags, created_at`

type ListingRepository struct {
	db *Connection
}

func NewListingRepository(db *Connection) *ListingRepository {
	return &ListingRepository{db: db}
}

func scanListing(row pgx.Row) (model.Listing, error) {
	var l model.Listing
	err := row.Scan(&l.ID, &l.Title, &l.Description, &l.Price, &l.OwnerEmail, &l.University, &l.ImageURLs, &l.Tags, &l.CreatedAt)
	return l, err
}

func (r *ListingRepository) Create(ctx context.Context, listing model.Listing) (model.Listing, error) {
	query := `INSERT INTO listings (id, title, description, price, owner_email, university, image_urls, tags, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			  RETURNING ` + listingColumns

	if listing.ImageURLs == nil {
		listing.ImageURLs = []string{}
	}
	if listing.Tags == nil {
		listing.Tags = []string{}
	}

	saved, err := scanListing(r.db.QueryRow(ctx, query,
		listing.ID, listing.Title, listing.Description, listing.Price, listing.OwnerEmail,
		listing.University, listing.ImageURLs, listing.Tags, listing.CreatedAt,
	))
	if err != nil {
		return model.Listing{}, fmt.Errorf("failed to create listing: %w", err)
	}

	return saved, nil
}

func (r *ListingRepository) GetByID(ctx context.Context, id uuid.UUID) (model.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = $1`

	l, err := scanListing(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Listing{}, model.ErrNotFound
		}
		return model.Listing{}, fmt.Errorf("failed to get listing: %w", err)
	}

	return l, nil
}

func (r *ListingRepository) Search(ctx context.Context, filter model.ListingFilter) ([]model.Listing, error) {
	query, args := buildSearchQuery(filter)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search listings: %w", err)
	}
	defer rows.Close()

	listings := make([]model.Listing, 0)
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate listings: %w", err)
	}

	return listings, nil
}

func (r *ListingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete listing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func buildSearchQuery(filter model.ListingFilter) (string, []any) {
	conds := []string{"university = $1"}
	args := []any{filter.University}

	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.OwnerEmail != "" {
		add("owner_email = $%d", filter.OwnerEmail)
	}
	if filter.Title != "" {
		add(`title ILIKE '%%' || $%d || '%%' ESCAPE '\'`, escapeLike(filter.Title))
	}
	if len(filter.Tags) > 0 {
		add("tags && $%d::text[]", filter.Tags)
	}
	if filter.MinPrice != nil {
		add("price >= $%d", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		add("price <= $%d", *filter.MaxPrice)
	}

	query := `SELECT ` + listingColumns + ` FROM listings WHERE ` + strings.Join(conds, " AND ") + ` ORDER BY created_at DESC`
	return query, args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
