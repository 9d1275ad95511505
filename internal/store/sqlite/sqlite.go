// Package sqlite implements store.ConfirmedMappingsStore on top of SQLite,
// adapted from the teacher's repository/sqlite connection idiom
// (internal/repository/sqlite/util.go: WAL mode, busy_timeout, a single
// writer connection).
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/google/uuid"

	"github.com/makhin/gedsync/internal/domain"
)

// OpenDB opens a SQLite database at path with WAL mode and foreign keys
// enabled. SQLite doesn't handle concurrent writers well, so the pool is
// capped at a single connection, same as the teacher's event store.
func OpenDB(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS confirmed_mappings (
	source_id       TEXT PRIMARY KEY,
	dest_id         TEXT,
	decision_type   TEXT NOT NULL,
	confirmed_at    TEXT NOT NULL,
	original_score  INTEGER NOT NULL
)`

// Store persists confirmed-mapping decisions in a SQLite table, one row
// per source id.
type Store struct {
	DB              *sql.DB
	SourceFile      string
	DestinationFile string
}

// NewStore ensures the backing table exists and returns a Store over db.
func NewStore(db *sql.DB, sourceFile, destinationFile string) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("create confirmed_mappings table: %w", err)
	}
	return &Store{DB: db, SourceFile: sourceFile, DestinationFile: destinationFile}, nil
}

// Load returns every decision currently stored.
func (s *Store) Load(ctx context.Context) (domain.ConfirmedMappingsDocument, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT source_id, dest_id, decision_type, confirmed_at, original_score FROM confirmed_mappings`)
	if err != nil {
		return domain.ConfirmedMappingsDocument{}, fmt.Errorf("query confirmed_mappings: %w", err)
	}
	defer rows.Close()

	doc := domain.ConfirmedMappingsDocument{SourceFile: s.SourceFile, DestinationFile: s.DestinationFile}
	for rows.Next() {
		var (
			sourceIDStr string
			destIDStr   sql.NullString
			typ         string
			atStr       string
			score       int
		)
		if err := rows.Scan(&sourceIDStr, &destIDStr, &typ, &atStr, &score); err != nil {
			return domain.ConfirmedMappingsDocument{}, fmt.Errorf("scan confirmed_mappings row: %w", err)
		}

		sourceID, err := uuid.Parse(sourceIDStr)
		if err != nil {
			return domain.ConfirmedMappingsDocument{}, fmt.Errorf("parse source_id: %w", err)
		}
		at, err := parseTimestamp(atStr)
		if err != nil {
			return domain.ConfirmedMappingsDocument{}, fmt.Errorf("parse confirmed_at: %w", err)
		}

		d := domain.ConfirmedDecision{SourceID: sourceID, Type: domain.DecisionType(typ), ConfirmedAt: at, OriginalScore: score}
		if destIDStr.Valid {
			parsed, err := uuid.Parse(destIDStr.String)
			if err != nil {
				return domain.ConfirmedMappingsDocument{}, fmt.Errorf("parse dest_id: %w", err)
			}
			d.DestID = &parsed
		}
		doc.Mappings = append(doc.Mappings, d)
	}
	return doc, rows.Err()
}

// Record upserts one decision row.
func (s *Store) Record(ctx context.Context, decision domain.ConfirmedDecision) error {
	var destID *string
	if decision.DestID != nil {
		v := decision.DestID.String()
		destID = &v
	}
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO confirmed_mappings (source_id, dest_id, decision_type, confirmed_at, original_score)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (source_id) DO UPDATE SET
			dest_id = excluded.dest_id,
			decision_type = excluded.decision_type,
			confirmed_at = excluded.confirmed_at,
			original_score = excluded.original_score
	`, decision.SourceID.String(), destID, string(decision.Type), formatTimestamp(decision.ConfirmedAt), decision.OriginalScore)
	if err != nil {
		return fmt.Errorf("upsert confirmed_mappings row: %w", err)
	}
	return nil
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTimestamp(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
