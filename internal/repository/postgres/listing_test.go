package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dtroode/campusmarket-server/internal/model"
)

func TestBuildSearchQuery(t *testing.T) {
	minPrice, maxPrice := 5.0, 50.0

	tests := []struct {
		name      string
		filter    model.ListingFilter
		wantWhere string
		wantArgs  []any
	}{
		{
			name:      "university only",
			filter:    model.ListingFilter{University: "MIT"},
			wantWhere: "WHERE university = $1 ORDER BY",
			wantArgs:  []any{"MIT"},
		},
		{
			name:      "owner",
			filter:    model.ListingFilter{University: "MIT", OwnerEmail: "a@mit.edu"},
			wantWhere: "WHERE university = $1 AND owner_email = $2 ORDER BY",
			wantArgs:  []any{"MIT", "a@mit.edu"},
		},
		{
			name: "all filters",
			filter: model.ListingFilter{
				University: "MIT",
				Title:      "50%_off",
				Tags:       []string{"books", "desk"},
				MinPrice:   &minPrice,
				MaxPrice:   &maxPrice,
			},
			wantWhere: `WHERE university = $1 AND title ILIKE '%' || $2 || '%' ESCAPE '\' AND tags && $3::text[] AND price >= $4 AND price <= $5 ORDER BY`,
			wantArgs:  []any{"MIT", `50\%\_off`, []string{"books", "desk"}, 5.0, 50.0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := buildSearchQuery(tt.filter)

			assert.Contains(t, query, tt.wantWhere)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}
