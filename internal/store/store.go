// Package store handles SQLite-backed aggregation for the unachievable diagnostic.
package store

import (
	"context"
	"database/sql"

	_ "modernc.org/sqlite" // SQLite driver.
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// LockedRow is one row of the locked export as seen by the diagnostic.
type LockedRow struct {
	Game         string
	Gamerscore   int
	Unachievable bool
}

// GameUnach summarizes unachievable achievements for one game.
type GameUnach struct {
	Game        string
	UnachCount  int
	UnachGS     int
	LockedCount int
	LockedGS    int
}

// Totals holds diagnostic totals across all games.
type Totals struct {
	Rows       int
	Games      int
	UnachCount int
	UnachGS    int
}

// Store wraps SQLite access for locked rows.
type Store struct {
	db *sql.DB
}

// Open opens the database at path and applies migrations. Use MemoryPath for a
// database that disappears on Close.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Each connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS locked_rows (
			id INTEGER PRIMARY KEY,
			game TEXT NOT NULL,
			gamerscore INTEGER NOT NULL,
			unachievable INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_locked_rows_game ON locked_rows(game);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertLocked stores locked rows in a single transaction, keeping input order.
func (s *Store) InsertLocked(ctx context.Context, rows []LockedRow) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO locked_rows (game, gamerscore, unachievable) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for _, r := range rows {
		unach := 0
		if r.Unachievable {
			unach = 1
		}
		if _, err = stmt.ExecContext(ctx, r.Game, r.Gamerscore, unach); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Totals returns row, game and unachievable totals.
func (s *Store) Totals(ctx context.Context) (Totals, error) {
	var t Totals
	err := s.db.QueryRowContext(ctx, `SELECT
			COUNT(*),
			COUNT(DISTINCT game),
			COALESCE(SUM(unachievable), 0),
			COALESCE(SUM(CASE WHEN unachievable = 1 THEN gamerscore ELSE 0 END), 0)
		FROM locked_rows`).Scan(&t.Rows, &t.Games, &t.UnachCount, &t.UnachGS)
	if err != nil {
		return Totals{}, err
	}
	return t, nil
}

// TopByUnachCount returns up to limit games with unachievable achievements,
// most first. Ties keep the order games first appeared in.
func (s *Store) TopByUnachCount(ctx context.Context, limit int) ([]GameUnach, error) {
	return s.topGames(ctx, "unach_count", "unach_count > 0", limit)
}

// TopByUnachGS returns up to limit games with unachievable gamerscore, most first.
func (s *Store) TopByUnachGS(ctx context.Context, limit int) ([]GameUnach, error) {
	return s.topGames(ctx, "unach_gs", "unach_gs > 0", limit)
}

func (s *Store) topGames(ctx context.Context, orderCol, having string, limit int) ([]GameUnach, error) {
	if limit <= 0 {
		return nil, nil
	}
	query := `SELECT game,
			SUM(unachievable) AS unach_count,
			SUM(CASE WHEN unachievable = 1 THEN gamerscore ELSE 0 END) AS unach_gs,
			COUNT(*) AS locked_count,
			SUM(gamerscore) AS locked_gs,
			MIN(id) AS first_seen
		FROM locked_rows
		GROUP BY game
		HAVING ` + having + `
		ORDER BY ` + orderCol + ` DESC, first_seen ASC
		LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []GameUnach
	for rows.Next() {
		var g GameUnach
		var firstSeen int64
		if err := rows.Scan(&g.Game, &g.UnachCount, &g.UnachGS, &g.LockedCount, &g.LockedGS, &firstSeen); err != nil {
			return nil, err
		}
		result = append(result, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
