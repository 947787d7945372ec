package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/xiaot623/gogo/vizstudio/internal/domain"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// Ensure SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLite store.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	// Keep a single connection to avoid schema/data disappearing across goroutines.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS context_overrides (
			session_id TEXT NOT NULL,
			context_key TEXT NOT NULL,
			content TEXT NOT NULL,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (session_id, context_key)
		)`,
		`CREATE TABLE IF NOT EXISTS studio_state (
			session_id TEXT PRIMARY KEY,
			state TEXT NOT NULL,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS images (
			session_id TEXT NOT NULL,
			image_id TEXT NOT NULL,
			data TEXT NOT NULL,
			ts INTEGER NOT NULL,
			PRIMARY KEY (session_id, image_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_images_session_ts ON images(session_id, ts)`,
		`CREATE TABLE IF NOT EXISTS blueprints (
			session_id TEXT NOT NULL,
			blueprint_id TEXT NOT NULL,
			name TEXT NOT NULL,
			url TEXT NOT NULL,
			description TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (session_id, blueprint_id)
		)`,
		`CREATE TABLE IF NOT EXISTS llm_calls (
			request_id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			model TEXT NOT NULL,
			latency_ms INTEGER NOT NULL,
			error TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_llm_calls_session ON llm_calls(session_id, created_at)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// GetOverride returns the session's override for key, if one exists.
func (s *SQLiteStore) GetOverride(ctx context.Context, sessionID string, key domain.ContextKey) (string, bool, error) {
	var content string
	err := s.db.QueryRowContext(ctx,
		`SELECT content FROM context_overrides WHERE session_id = ? AND context_key = ?`,
		sessionID, string(key)).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return content, true, nil
}

// SetOverride writes an override; the last write wins.
func (s *SQLiteStore) SetOverride(ctx context.Context, sessionID string, key domain.ContextKey, content string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO context_overrides (session_id, context_key, content, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(session_id, context_key) DO UPDATE SET content = excluded.content, updated_at = excluded.updated_at`,
		sessionID, string(key), content, time.Now())
	return err
}

// DeleteOverride removes an override. Deleting a missing override is not an error.
func (s *SQLiteStore) DeleteOverride(ctx context.Context, sessionID string, key domain.ContextKey) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM context_overrides WHERE session_id = ? AND context_key = ?`,
		sessionID, string(key))
	return err
}

// LoadState returns the session snapshot, or nil if none was saved.
func (s *SQLiteStore) LoadState(ctx context.Context, sessionID string) (*domain.StudioState, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT state FROM studio_state WHERE session_id = ?`, sessionID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var state domain.StudioState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, fmt.Errorf("failed to decode state: %w", err)
	}
	return &state, nil
}

// SaveState upserts the session snapshot.
func (s *SQLiteStore) SaveState(ctx context.Context, sessionID string, state *domain.StudioState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO studio_state (session_id, state, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(session_id) DO UPDATE SET state = excluded.state, updated_at = excluded.updated_at`,
		sessionID, string(raw), time.Now())
	return err
}

// DeleteState removes the session snapshot.
func (s *SQLiteStore) DeleteState(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM studio_state WHERE session_id = ?`, sessionID)
	return err
}

// SaveImage stores or replaces an image.
func (s *SQLiteStore) SaveImage(ctx context.Context, sessionID string, image *domain.StoredImage) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO images (session_id, image_id, data, ts) VALUES (?, ?, ?, ?)
		 ON CONFLICT(session_id, image_id) DO UPDATE SET data = excluded.data, ts = excluded.ts`,
		sessionID, image.ID, image.Data, image.Timestamp)
	return err
}

// GetImage retrieves an image by ID.
func (s *SQLiteStore) GetImage(ctx context.Context, sessionID, imageID string) (*domain.StoredImage, error) {
	var img domain.StoredImage
	err := s.db.QueryRowContext(ctx,
		`SELECT image_id, data, ts FROM images WHERE session_id = ? AND image_id = ?`,
		sessionID, imageID).Scan(&img.ID, &img.Data, &img.Timestamp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &img, nil
}

// ListImages returns the session's images, newest first.
func (s *SQLiteStore) ListImages(ctx context.Context, sessionID string) ([]domain.StoredImage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT image_id, data, ts FROM images WHERE session_id = ? ORDER BY ts DESC, rowid DESC`,
		sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	images := []domain.StoredImage{}
	for rows.Next() {
		var img domain.StoredImage
		if err := rows.Scan(&img.ID, &img.Data, &img.Timestamp); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// DeleteImage removes one image.
func (s *SQLiteStore) DeleteImage(ctx context.Context, sessionID, imageID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM images WHERE session_id = ? AND image_id = ?`, sessionID, imageID)
	return err
}

// ClearImages removes all of the session's images.
func (s *SQLiteStore) ClearImages(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM images WHERE session_id = ?`, sessionID)
	return err
}

// CreateBlueprint stores a custom blueprint.
func (s *SQLiteStore) CreateBlueprint(ctx context.Context, sessionID string, blueprint *domain.Blueprint) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO blueprints (session_id, blueprint_id, name, url, description, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		sessionID, blueprint.ID, blueprint.Name, blueprint.URL, blueprint.Description, time.Now())
	return err
}

// ListBlueprints returns the session's custom blueprints in creation order.
func (s *SQLiteStore) ListBlueprints(ctx context.Context, sessionID string) ([]domain.Blueprint, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT blueprint_id, name, url, description FROM blueprints WHERE session_id = ? ORDER BY created_at, rowid`,
		sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var blueprints []domain.Blueprint
	for rows.Next() {
		var bp domain.Blueprint
		var desc sql.NullString
		if err := rows.Scan(&bp.ID, &bp.Name, &bp.URL, &desc); err != nil {
			return nil, err
		}
		bp.Description = desc.String
		bp.IsCustom = true
		blueprints = append(blueprints, bp)
	}
	return blueprints, rows.Err()
}

// DeleteBlueprint removes a custom blueprint.
func (s *SQLiteStore) DeleteBlueprint(ctx context.Context, sessionID, blueprintID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM blueprints WHERE session_id = ? AND blueprint_id = ?`, sessionID, blueprintID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CreateCallRecord stores a provider call audit record.
func (s *SQLiteStore) CreateCallRecord(ctx context.Context, record *domain.CallRecord) error {
	var errText sql.NullString
	if record.Error != "" {
		errText = sql.NullString{String: record.Error, Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO llm_calls (request_id, session_id, kind, model, latency_ms, error, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		record.RequestID, record.SessionID, string(record.Kind), record.Model, record.LatencyMs, errText, record.CreatedAt)
	return err
}

// ListCallRecords returns the most recent call records for a session.
func (s *SQLiteStore) ListCallRecords(ctx context.Context, sessionID string, limit int) ([]domain.CallRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT request_id, session_id, kind, model, latency_ms, error, created_at
		 FROM llm_calls WHERE session_id = ? ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []domain.CallRecord{}
	for rows.Next() {
		var r domain.CallRecord
		var kind string
		var errText sql.NullString
		if err := rows.Scan(&r.RequestID, &r.SessionID, &kind, &r.Model, &r.LatencyMs, &errText, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.Kind = domain.CallKind(kind)
		r.Error = errText.String
		records = append(records, r)
	}
	return records, rows.Err()
}
