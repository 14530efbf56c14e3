// Package history persists a RunRecord for every completed reduction run to
// a local sqlite database, in the style of the teacher's sqlite DAO layer
// (server/dao/sqlite/users.go): a thin struct around *sql.DB, a
// CREATE-TABLE-IF-NOT-EXISTS on open, and a prepared statement for each
// insert.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dekarrin/ddreduce/internal/oracle"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// RunRecord is one persisted reduction run.
type RunRecord struct {
	RunID           uuid.UUID
	ProjectDir      string
	ReducedFile     string
	MasterErrorCode string
	MasterErrorSrc  string
	Started         time.Time
	Finished        time.Time
	Iterations      int
	Accepted        int
	Rejected        int
	FinalSourceHash string
}

// Store is a sqlite-backed run history.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the sqlite database at path and
// ensures its schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id TEXT NOT NULL PRIMARY KEY,
		project_dir TEXT NOT NULL,
		reduced_file TEXT NOT NULL,
		master_error_code TEXT NOT NULL,
		master_error_src TEXT NOT NULL,
		started INTEGER NOT NULL,
		finished INTEGER NOT NULL,
		iterations INTEGER NOT NULL,
		accepted INTEGER NOT NULL,
		rejected INTEGER NOT NULL,
		final_source_hash TEXT NOT NULL
	);`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating history schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts rec into the history store.
func (s *Store) Record(ctx context.Context, rec RunRecord) error {
	stmt, err := s.db.PrepareContext(ctx, `INSERT INTO runs
		(id, project_dir, reduced_file, master_error_code, master_error_src,
		 started, finished, iterations, accepted, rejected, final_source_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx,
		rec.RunID.String(), rec.ProjectDir, rec.ReducedFile,
		rec.MasterErrorCode, rec.MasterErrorSrc,
		rec.Started.Unix(), rec.Finished.Unix(),
		rec.Iterations, rec.Accepted, rec.Rejected, rec.FinalSourceHash,
	)
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	return nil
}

// RecentFor returns up to limit of the most recent runs recorded for
// projectDir, newest first.
func (s *Store) RecentFor(ctx context.Context, projectDir string, limit int) ([]RunRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT
		id, project_dir, reduced_file, master_error_code, master_error_src,
		started, finished, iterations, accepted, rejected, final_source_hash
		FROM runs WHERE project_dir = ? ORDER BY started DESC LIMIT ?`, projectDir, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var rec RunRecord
		var id string
		var started, finished int64
		if err := rows.Scan(
			&id, &rec.ProjectDir, &rec.ReducedFile,
			&rec.MasterErrorCode, &rec.MasterErrorSrc,
			&started, &finished, &rec.Iterations, &rec.Accepted, &rec.Rejected,
			&rec.FinalSourceHash,
		); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		rec.RunID, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("parsing run id: %w", err)
		}
		rec.Started = time.Unix(started, 0).UTC()
		rec.Finished = time.Unix(finished, 0).UTC()
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading history rows: %w", err)
	}

	return out, nil
}

// FromBuildError converts an oracle.BuildError's relevant fields into the
// flattened column pair RunRecord persists.
func FromBuildError(be oracle.BuildError) (code, src string) {
	return be.ErrorCode, be.ErrorSrc
}
