package storage

import (
	"context"
	"io"
	"log/slog"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finch/internal/errors"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	url := "sqlite://" + filepath.Join(t.TempDir(), "finch.db")

	db, err := Open(context.Background(), url, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Migrate(context.Background()))
	return db
}

func seedTeams(t *testing.T, db *DB, teams ...Team) {
	t.Helper()
	require.NoError(t, db.Seed(context.Background(), &Fixture{Teams: teams}))
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	first, err := db.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), first)

	require.NoError(t, db.Migrate(ctx))

	second, err := db.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestListPageOrdersByNumber(t *testing.T) {
	db := setupTestDB(t)
	seedTeams(t, db,
		Team{Number: 3, Name: "Hawks"},
		Team{Number: 1, Name: "Falcons"},
		Team{Number: 2, Name: "Eagles"},
	)

	repo := NewTeamRepository(db)
	teams, err := repo.ListPage(context.Background(), DefaultPage())
	require.NoError(t, err)

	assert.Equal(t, []Team{
		{Number: 1, Name: "Falcons"},
		{Number: 2, Name: "Eagles"},
		{Number: 3, Name: "Hawks"},
	}, teams)

	again, err := repo.ListPage(context.Background(), DefaultPage())
	require.NoError(t, err)
	assert.Equal(t, teams, again)
}

func TestListPageBounds(t *testing.T) {
	db := setupTestDB(t)
	for i := int64(1); i <= 12; i++ {
		seedTeams(t, db, Team{Number: i, Name: "Team " + strings.Repeat("x", int(i))})
	}
	repo := NewTeamRepository(db)
	ctx := context.Background()

	tests := []struct {
		name  string
		page  Page
		first int64
		count int
	}{
		{"first page", Page{Number: 1, Size: 5}, 1, 5},
		{"second page", Page{Number: 2, Size: 5}, 6, 5},
		{"partial last page", Page{Number: 3, Size: 5}, 11, 2},
		{"past the end", Page{Number: 4, Size: 5}, 0, 0},
		{"page zero is the first page", Page{Number: 0, Size: 3}, 1, 3},
		{"offset overflows int", Page{Number: 3689348814741910324, Size: 5}, 0, 0},
		{"largest page number", Page{Number: math.MaxInt, Size: 5}, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			teams, err := repo.ListPage(ctx, tt.page)
			require.NoError(t, err)
			require.Len(t, teams, tt.count)
			if tt.count > 0 {
				assert.Equal(t, tt.first, teams[0].Number)
			}
		})
	}
}

func TestListPageRejectsInvalidSize(t *testing.T) {
	db := setupTestDB(t)

	_, err := NewTeamRepository(db).ListPage(context.Background(), Page{Number: 1, Size: 0})
	require.Error(t, err)
	assert.Equal(t, errors.StoreCustom, errors.KindOf(err))
}

func TestSeedRejectsUnknownTeam(t *testing.T) {
	db := setupTestDB(t)
	seedTeams(t, db, Team{Number: 1, Name: "Falcons"})

	err := db.Seed(context.Background(), &Fixture{
		Users: []User{{ID: 1, Name: "Ada", TeamNumber: 99}},
	})
	require.Error(t, err)
	assert.Equal(t, errors.StoreExec, errors.KindOf(err))

	counts, err := db.CountMembers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestSeedIsRepeatable(t *testing.T) {
	db := setupTestDB(t)
	fixture := &Fixture{
		Teams: []Team{{Number: 1, Name: "Falcons"}, {Number: 2, Name: "Eagles"}},
		Users: []User{
			{ID: 1, Name: "Ada", TeamNumber: 1},
			{ID: 2, Name: "Grace", TeamNumber: 1},
			{ID: 3, Name: "Linus", TeamNumber: 2},
		},
	}
	ctx := context.Background()

	require.NoError(t, db.Seed(ctx, fixture))
	require.NoError(t, db.Seed(ctx, fixture))

	counts, err := db.CountMembers(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[int64]int{1: 2, 2: 1}, counts)
}

func TestClosedDatabaseIsConnectionError(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Close())

	_, err := NewTeamRepository(db).ListPage(context.Background(), DefaultPage())
	require.Error(t, err)
	assert.Equal(t, errors.StoreConnection, errors.KindOf(err))
}

func TestOpenRejectsUnsupportedURL(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	for _, url := range []string{"", "mysql://localhost/finch", "finch.db"} {
		_, err := Open(context.Background(), url, logger)
		require.Error(t, err, url)
		assert.Equal(t, errors.StoreCustom, errors.KindOf(err), url)
	}
}

func TestOpenInMemory(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := Open(context.Background(), "sqlite::memory:", logger)
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, SQLite, db.Dialect())
	assert.Equal(t, 1, db.Conn().Stats().MaxOpenConnections)
}

func TestDecodeFixture(t *testing.T) {
	src := `
teams:
  - number: 1
    name: Falcons
  - number: 2
    name: Eagles
users:
  - id: 7
    name: Ada
    team: 2
`
	f, err := DecodeFixture(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, []Team{{1, "Falcons"}, {2, "Eagles"}}, f.Teams)
	assert.Equal(t, []User{{ID: 7, Name: "Ada", TeamNumber: 2}}, f.Users)

	_, err = DecodeFixture(strings.NewReader("teams:\n  - number: one\n"))
	require.Error(t, err)
	assert.Equal(t, errors.StoreSerialization, errors.KindOf(err))
}

func TestRedactURL(t *testing.T) {
	assert.Equal(t, "postgres://finch:xxxxx@db:5432/finch", RedactURL("postgres://finch:secret@db:5432/finch"))
	assert.Equal(t, "sqlite://finch.db", RedactURL("sqlite://finch.db"))
}
