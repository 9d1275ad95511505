// Package postgres implements store.ConfirmedMappingsStore on top of a
// Postgres table, adapted from the teacher's repository/postgres
// connection-pooling idiom (internal/repository/postgres/util.go).
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/makhin/gedsync/internal/domain"
)

// OpenDB opens a Postgres connection pool, verifying connectivity and
// sizing the pool the same way the teacher's event-store backend does.
func OpenDB(connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS confirmed_mappings (
	source_id       UUID PRIMARY KEY,
	dest_id         UUID,
	decision_type   TEXT NOT NULL,
	confirmed_at    TIMESTAMPTZ NOT NULL,
	original_score  INTEGER NOT NULL
)`

// Store persists confirmed-mapping decisions in a Postgres table, one row
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
			sourceID uuid.UUID
			destID   sql.NullString
			typ      string
			at       time.Time
			score    int
		)
		if err := rows.Scan(&sourceID, &destID, &typ, &at, &score); err != nil {
			return domain.ConfirmedMappingsDocument{}, fmt.Errorf("scan confirmed_mappings row: %w", err)
		}
		d := domain.ConfirmedDecision{SourceID: sourceID, Type: domain.DecisionType(typ), ConfirmedAt: at, OriginalScore: score}
		if destID.Valid {
			parsed, err := uuid.Parse(destID.String)
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
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (source_id) DO UPDATE SET
			dest_id = EXCLUDED.dest_id,
			decision_type = EXCLUDED.decision_type,
			confirmed_at = EXCLUDED.confirmed_at,
			original_score = EXCLUDED.original_score
	`, decision.SourceID, destID, string(decision.Type), decision.ConfirmedAt, decision.OriginalScore)
	if err != nil {
		return fmt.Errorf("upsert confirmed_mappings row: %w", err)
	}
	return nil
}
