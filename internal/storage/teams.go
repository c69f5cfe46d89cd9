package storage

import (
	"context"
	"fmt"
	"math"

	"finch/internal/errors"
)

// Team is a named group, keyed by its number
type Team struct {
	Number int64  `json:"number" yaml:"number"`
	Name   string `json:"name" yaml:"name"`
}

// User is a member of exactly one team
type User struct {
	ID         int64  `json:"id" yaml:"id"`
	Name       string `json:"name" yaml:"name"`
	TeamNumber int64  `json:"team_number" yaml:"team"`
}

// DefaultPageSize is the page size used when none is configured
const DefaultPageSize = 5

// Page selects a bounded slice of an ordered result set. Number is 1-based.
type Page struct {
	Number int
	Size   int
}

// DefaultPage returns the first page with the default size
func DefaultPage() Page {
	return Page{Number: 1, Size: DefaultPageSize}
}

// Offset returns the number of rows skipped before the page starts. ok is false when the
// offset does not fit in an int; such a page lies past the end of any result set.
func (p Page) Offset() (offset int, ok bool) {
	if p.Number < 1 || p.Size < 1 {
		return 0, true
	}
	if p.Number-1 > math.MaxInt/p.Size {
		return 0, false
	}
	return (p.Number - 1) * p.Size, true
}

const listTeamsQuery = `SELECT number, name FROM teams ORDER BY number ASC LIMIT $1 OFFSET $2`

// TeamRepository reads teams from the store
type TeamRepository struct {
	db *DB
}

// NewTeamRepository creates a new team repository
func NewTeamRepository(db *DB) *TeamRepository {
	return &TeamRepository{db: db}
}

// ListPage returns at most page.Size teams ordered by ascending number
func (r *TeamRepository) ListPage(ctx context.Context, page Page) ([]Team, error) {
	if page.Size <= 0 {
		return nil, errors.New(errors.StoreCustom, fmt.Sprintf("invalid page size %d", page.Size), nil)
	}

	offset, ok := page.Offset()
	if !ok {
		return []Team{}, nil
	}

	rows, err := r.db.conn.QueryContext(ctx, listTeamsQuery, page.Size, offset)
	if err != nil {
		return nil, classify(err, errors.StoreQuery)
	}
	defer rows.Close()

	teams := make([]Team, 0, min(page.Size, 64))
	for rows.Next() {
		var t Team
		if err := rows.Scan(&t.Number, &t.Name); err != nil {
			return nil, classify(err, errors.StoreType)
		}
		teams = append(teams, t)
	}

	if err := rows.Err(); err != nil {
		return nil, classify(err, errors.StoreQuery)
	}

	return teams, nil
}
