package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/andresmejia3/eigenfaces/internal/types"
	"github.com/jackc/pgx/v5"
)

// Store manages the PostgreSQL connection and pgvector operations.
type Store struct {
	conn *pgx.Conn
}

// Database describes one trained face database whose projections are stored.
type Database struct {
	ID         string
	Root       string
	Subjects   int
	Images     int
	Width      int
	Height     int
	Components int
	IndexedAt  time.Time
	Count      int
}

// New establishes a connection to the database and ensures the schema is initialized.
func New(ctx context.Context, connString string) (*Store, error) {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, err
	}

	// Initialize schema (Auto-Migration)
	if err := initSchema(ctx, conn); err != nil {
		conn.Close(ctx)
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	return &Store{conn: conn}, nil
}

// initSchema creates the necessary tables and vector extension if they don't exist (Auto-Migration).
func initSchema(ctx context.Context, conn *pgx.Conn) error {
	query := `
		CREATE EXTENSION IF NOT EXISTS vector;
		CREATE TABLE IF NOT EXISTS face_databases (
			id TEXT PRIMARY KEY,
			root TEXT NOT NULL,
			subjects INT NOT NULL,
			images INT NOT NULL,
			width INT NOT NULL,
			height INT NOT NULL,
			components INT NOT NULL,
			indexed_at TIMESTAMPTZ DEFAULT NOW()
		);
		CREATE TABLE IF NOT EXISTS face_projections (
			id BIGSERIAL PRIMARY KEY,
			database_id TEXT NOT NULL REFERENCES face_databases(id) ON DELETE CASCADE,
			subject INT NOT NULL,
			image INT NOT NULL,
			coordinates VECTOR NOT NULL,
			UNIQUE (database_id, subject, image)
		);
		CREATE INDEX IF NOT EXISTS face_projections_database_id_idx ON face_projections (database_id);
	`
	_, err := conn.Exec(ctx, query)
	return err
}

// Close terminates the database connection.
func (s *Store) Close(ctx context.Context) {
	s.conn.Close(ctx)
}

// SaveDatabase registers a face database and replaces its stored projections
// in one transaction. If any insert fails, the previously stored projections
// are left untouched. Projections without a FaceRef are rejected.
func (s *Store) SaveDatabase(ctx context.Context, db Database, projections []types.Projection) error {
	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO face_databases (id, root, subjects, images, width, height, components, indexed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (id) DO UPDATE SET
			root = EXCLUDED.root,
			components = EXCLUDED.components,
			indexed_at = NOW()
	`, db.ID, db.Root, db.Subjects, db.Images, db.Width, db.Height, db.Components)
	if err != nil {
		return err
	}

	// Clean up old data to ensure idempotency (prevent duplicates on re-store)
	if _, err := tx.Exec(ctx, "DELETE FROM face_projections WHERE database_id = $1", db.ID); err != nil {
		return err
	}

	for _, p := range projections {
		if p.Ref == nil {
			return fmt.Errorf("projection %d has no face reference", p.Index)
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO face_projections (database_id, subject, image, coordinates)
			VALUES ($1, $2, $3, $4::vector)
		`, db.ID, p.Ref.Subject, p.Ref.Image, vecToString(p.Coordinates))
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// GetProjections returns the stored projections of a database ordered by
// subject then image, which is face-matrix column order.
func (s *Store) GetProjections(ctx context.Context, databaseID string) ([]types.Projection, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT subject, image, coordinates::text
		FROM face_projections
		WHERE database_id = $1
		ORDER BY subject, image
	`, databaseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.Projection
	for rows.Next() {
		var ref types.FaceRef
		var vecStr string
		if err := rows.Scan(&ref.Subject, &ref.Image, &vecStr); err != nil {
			return nil, err
		}
		vec, err := parseVec(vecStr)
		if err != nil {
			return nil, fmt.Errorf("projection %s: %w", ref, err)
		}
		out = append(out, types.Projection{Index: len(out), Ref: &ref, Coordinates: vec})
	}
	return out, rows.Err()
}

// ListDatabases returns every stored face database with its projection count.
func (s *Store) ListDatabases(ctx context.Context) ([]Database, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT d.id, d.root, d.subjects, d.images, d.width, d.height, d.components, d.indexed_at, COUNT(p.id)
		FROM face_databases d
		LEFT JOIN face_projections p ON p.database_id = d.id
		GROUP BY d.id
		ORDER BY d.indexed_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Database
	for rows.Next() {
		var d Database
		if err := rows.Scan(&d.ID, &d.Root, &d.Subjects, &d.Images, &d.Width, &d.Height, &d.Components, &d.IndexedAt, &d.Count); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Reset drops all application tables to clear the database state.
// This is useful for development to force a schema refresh without migrations.
func (s *Store) Reset(ctx context.Context) error {
	_, err := s.conn.Exec(ctx, `
		DROP TABLE IF EXISTS face_projections CASCADE;
		DROP TABLE IF EXISTS face_databases CASCADE;
	`)
	return err
}

// vecToString formats a float slice into a PostgreSQL vector string format "[1.0,2.0,...]"
func vecToString(vec []float64) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range vec {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}
	b.WriteByte(']')
	return b.String()
}

// parseVec is the inverse of vecToString.
func parseVec(s string) ([]float64, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return nil, fmt.Errorf("malformed vector %q", s)
	}
	s = strings.Trim(s, "[]")
	if s == "" {
		return []float64{}, nil
	}

	parts := strings.Split(s, ",")
	vec := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("malformed vector element %d: %w", i, err)
		}
		vec[i] = v
	}
	return vec, nil
}
