package storage

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"finch/internal/errors"
)

// Fixture is a set of rows loaded by the seed command
type Fixture struct {
	Teams []Team `yaml:"teams"`
	Users []User `yaml:"users"`
}

// DecodeFixture reads a YAML fixture of the form
//
//	teams:
//	  - number: 1
//	    name: Falcons
//	users:
//	  - id: 1
//	    name: Ada
//	    team: 1
func DecodeFixture(r io.Reader) (*Fixture, error) {
	var f Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, errors.New(errors.StoreSerialization, "failed to decode fixture", err)
	}
	return &f, nil
}

const (
	upsertTeamQuery = `INSERT INTO teams (number, name) VALUES ($1, $2)
ON CONFLICT (number) DO UPDATE SET name = excluded.name`
	upsertUserQuery = `INSERT INTO users (id, name, team_number) VALUES ($1, $2, $3)
ON CONFLICT (id) DO UPDATE SET name = excluded.name, team_number = excluded.team_number`
)

// Seed writes the fixture in a single transaction. Rows with an existing key are updated, so
// seeding the same fixture twice is harmless.
func (db *DB) Seed(ctx context.Context, f *Fixture) error {
	err := db.WithTx(ctx, func(tx *sql.Tx) error {
		for _, t := range f.Teams {
			if _, err := tx.ExecContext(ctx, upsertTeamQuery, t.Number, t.Name); err != nil {
				return classify(fmt.Errorf("team %d: %w", t.Number, err), errors.StoreExec)
			}
		}
		for _, u := range f.Users {
			if _, err := tx.ExecContext(ctx, upsertUserQuery, u.ID, u.Name, u.TeamNumber); err != nil {
				return classify(fmt.Errorf("user %d: %w", u.ID, err), errors.StoreExec)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	db.logger.Info("Seeded store", "teams", len(f.Teams), "users", len(f.Users))
	return nil
}

// CountMembers returns the number of users per team number
func (db *DB) CountMembers(ctx context.Context) (map[int64]int, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT team_number, COUNT(*) FROM users GROUP BY team_number`)
	if err != nil {
		return nil, classify(err, errors.StoreQuery)
	}
	defer rows.Close()

	counts := make(map[int64]int)
	for rows.Next() {
		var team int64
		var n int
		if err := rows.Scan(&team, &n); err != nil {
			return nil, classify(err, errors.StoreType)
		}
		counts[team] = n
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err, errors.StoreQuery)
	}
	return counts, nil
}
