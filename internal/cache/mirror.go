// Package cache mirrors the dashboard preference document into a local
// SQLite file. The mirror is served immediately on startup while the gateway
// fetch is in flight (stale-while-revalidate); the gateway's copy always
// overwrites it. Mirror failures degrade the engine, they never stop it.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/GregMSThompson/dashboard-engine/internal/errs"
	"github.com/GregMSThompson/dashboard-engine/internal/models"
)

// Mirror is the local persisted copy of each user's preference document.
type Mirror struct {
	db *sql.DB
}

// Open creates or opens the mirror database at path, creating parent
// directories as needed.
func Open(ctx context.Context, path string) (*Mirror, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errs.NewCacheError("open", "failed to create mirror dir", err)
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errs.NewCacheError("open", "failed to open mirror db", err)
	}
	// Pragmas for local usage: WAL enables one writer + many readers;
	// busy_timeout avoids "database is locked" flakiness.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, errs.NewCacheError("open", "failed to apply pragma", err)
		}
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Mirror{db: db}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	stmt := `CREATE TABLE IF NOT EXISTS dashboard_preferences (
		user_id TEXT PRIMARY KEY,
		payload_json TEXT NOT NULL,
		updated_at_unixms INTEGER NOT NULL
	);`
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return errs.NewCacheError("open", "failed to migrate mirror db", err)
	}
	return nil
}

// Load returns the mirrored preference document for a user. The boolean is
// false when no mirror entry exists.
func (m *Mirror) Load(ctx context.Context, userID string) (models.DashboardPreference, bool, error) {
	var payload string
	err := m.db.QueryRowContext(ctx,
		`SELECT payload_json FROM dashboard_preferences WHERE user_id = ?`, userID,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DashboardPreference{}, false, nil
	}
	if err != nil {
		return models.DashboardPreference{}, false, errs.NewCacheError("read", "failed to load mirror", err)
	}
	var pref models.DashboardPreference
	if err := json.Unmarshal([]byte(payload), &pref); err != nil {
		// A corrupt row is treated as absent rather than fatal.
		return models.DashboardPreference{}, false, errs.NewCacheError("read", "failed to parse mirror payload", err)
	}
	return pref, true, nil
}

// Store upserts the preference document for its user.
func (m *Mirror) Store(ctx context.Context, pref models.DashboardPreference) error {
	payload, err := json.Marshal(pref)
	if err != nil {
		return errs.NewCacheError("write", "failed to encode mirror payload", err)
	}
	_, err = m.db.ExecContext(ctx,
		`INSERT INTO dashboard_preferences (user_id, payload_json, updated_at_unixms)
		 VALUES (?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		   payload_json = excluded.payload_json,
		   updated_at_unixms = excluded.updated_at_unixms`,
		pref.UserID, string(payload), time.Now().UnixMilli(),
	)
	if err != nil {
		return errs.NewCacheError("write", "failed to store mirror", err)
	}
	return nil
}

// Delete removes a user's mirror entry.
func (m *Mirror) Delete(ctx context.Context, userID string) error {
	_, err := m.db.ExecContext(ctx,
		`DELETE FROM dashboard_preferences WHERE user_id = ?`, userID)
	if err != nil {
		return errs.NewCacheError("delete", "failed to delete mirror", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (m *Mirror) Close() error {
	return m.db.Close()
}
