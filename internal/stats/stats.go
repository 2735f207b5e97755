// Package stats computes vault-wide metric rollups and keeps their
// history in SQLite. Every snapshot is derived fresh from current file
// contents; the database stores finished rollups only and never answers
// a core query.
package stats

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ashvale/lattice/internal/extract"
	"github.com/ashvale/lattice/internal/integrity"
	"github.com/ashvale/lattice/internal/models"
	"github.com/ashvale/lattice/internal/storage"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS rollups (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	notes         INTEGER NOT NULL,
	links         INTEGER NOT NULL,
	tags          INTEGER NOT NULL,
	broken_links  INTEGER NOT NULL,
	orphans       INTEGER NOT NULL,
	tasks_done    INTEGER NOT NULL,
	tasks_pending INTEGER NOT NULL,
	collected_at  DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_rollups_collected_at ON rollups(collected_at);
`

// Store wraps the rollup history database.
type Store struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*Store, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("stats: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("stats: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("stats: apply schema: %w", err)
	}
	return &Store{conn: conn}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Collect derives a snapshot of vault metrics from current contents.
// Per-file read failures reduce the counts but do not fail collection;
// the integrity sub-pass already records them.
func Collect(store storage.Provider) (models.StatsSnapshot, error) {
	paths, err := store.List()
	if err != nil {
		return models.StatsSnapshot{}, err
	}

	snap := models.StatsSnapshot{
		Notes:       len(paths),
		CollectedAt: time.Now().UTC(),
	}

	tagNames := make(map[string]struct{})
	for _, p := range paths {
		data, err := store.Read(p)
		if err != nil {
			continue
		}
		text := string(data)
		ext := extract.Extract(text)
		snap.Links += len(ext.Internal) + len(ext.External) + len(ext.Embeds)
		for _, t := range ext.Tags {
			tagNames[t.Name] = struct{}{}
		}
		for _, task := range extract.Todos(text) {
			if task.Done {
				snap.TasksDone++
			} else {
				snap.TasksPending++
			}
		}
	}
	snap.Tags = len(tagNames)

	report, err := integrity.Check(store, "")
	if err != nil {
		return models.StatsSnapshot{}, err
	}
	snap.BrokenLinks = len(report.BrokenLinks)
	snap.Orphans = len(report.OrphanedFiles)
	return snap, nil
}

// Record appends a snapshot to the history and returns it with its
// assigned id.
func (s *Store) Record(snap models.StatsSnapshot) (models.StatsSnapshot, error) {
	res, err := s.conn.Exec(`
		INSERT INTO rollups (notes, links, tags, broken_links, orphans, tasks_done, tasks_pending, collected_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, snap.Notes, snap.Links, snap.Tags, snap.BrokenLinks, snap.Orphans,
		snap.TasksDone, snap.TasksPending, snap.CollectedAt)
	if err != nil {
		return snap, fmt.Errorf("stats: insert rollup: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return snap, fmt.Errorf("stats: last insert id: %w", err)
	}
	snap.ID = id
	return snap, nil
}

// History returns the most recent rollups, newest first.
func (s *Store) History(limit int) ([]models.StatsSnapshot, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.conn.Query(`
		SELECT id, notes, links, tags, broken_links, orphans, tasks_done, tasks_pending, collected_at
		FROM rollups ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("stats: history: %w", err)
	}
	defer rows.Close()

	var out []models.StatsSnapshot
	for rows.Next() {
		var snap models.StatsSnapshot
		if err := rows.Scan(&snap.ID, &snap.Notes, &snap.Links, &snap.Tags,
			&snap.BrokenLinks, &snap.Orphans, &snap.TasksDone, &snap.TasksPending,
			&snap.CollectedAt); err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}
