package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/lib/pq"
)

// PostgresStore implements PreferenceStorer on a single row per profile in
// client.preferences. Several storefront profiles (one per terminal user or
// kiosk) can share one database.
//
//	CREATE TABLE client.preferences (
//	    profile         TEXT PRIMARY KEY,
//	    language        TEXT NOT NULL DEFAULT '',
//	    recently_viewed TEXT[] NOT NULL DEFAULT '{}',
//	    auth_token      TEXT NOT NULL DEFAULT '',
//	    updated_at      TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
//	);
type PostgresStore struct {
	db      *sql.DB
	profile string
}

// NewPostgresStore creates a new PostgresStore instance bound to profile.
func NewPostgresStore(db *sql.DB, profile string) (*PostgresStore, error) {
	if profile == "" {
		return nil, ErrEmptyProfile
	}
	return &PostgresStore{db: db, profile: profile}, nil
}

func (s *PostgresStore) Language(ctx context.Context) (string, error) {
	query := `SELECT language FROM client.preferences WHERE profile = $1;`
	var lang string
	err := s.db.QueryRowContext(ctx, query, s.profile).Scan(&lang)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("store: Language failed to scan row: %w", err)
	}
	return lang, nil
}

func (s *PostgresStore) SetLanguage(ctx context.Context, lang string) error {
	query := `
		INSERT INTO client.preferences (profile, language)
		VALUES ($1, $2)
		ON CONFLICT (profile) DO UPDATE SET language = EXCLUDED.language, updated_at = CURRENT_TIMESTAMP;
	`
	if _, err := s.db.ExecContext(ctx, query, s.profile, lang); err != nil {
		return fmt.Errorf("store: SetLanguage failed to execute upsert: %w", err)
	}
	return nil
}

func (s *PostgresStore) RecentlyViewed(ctx context.Context) ([]string, error) {
	query := `SELECT recently_viewed FROM client.preferences WHERE profile = $1;`
	var ids []string
	err := s.db.QueryRowContext(ctx, query, s.profile).Scan(pq.Array(&ids))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("store: RecentlyViewed failed to scan row: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// PushRecentlyViewed reads and rewrites the list inside one transaction with
// the row locked, so two concurrent pushes cannot drop each other's entry.
func (s *PostgresStore) PushRecentlyViewed(ctx context.Context, productID string) ([]string, error) {
	if productID == "" {
		return nil, ErrEmptyProductID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("store: PushRecentlyViewed failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // no-op after Commit

	var current []string
	selectQuery := `SELECT recently_viewed FROM client.preferences WHERE profile = $1 FOR UPDATE;`
	err = tx.QueryRowContext(ctx, selectQuery, s.profile).Scan(pq.Array(&current))
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("store: PushRecentlyViewed failed to read list: %w", err)
	}

	updated := pushRecent(current, productID)
	upsertQuery := `
		INSERT INTO client.preferences (profile, recently_viewed)
		VALUES ($1, $2)
		ON CONFLICT (profile) DO UPDATE SET recently_viewed = EXCLUDED.recently_viewed, updated_at = CURRENT_TIMESTAMP;
	`
	if _, err := tx.ExecContext(ctx, upsertQuery, s.profile, pq.Array(updated)); err != nil {
		return nil, fmt.Errorf("store: PushRecentlyViewed failed to write list: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("store: PushRecentlyViewed failed to commit: %w", err)
	}
	return updated, nil
}

func (s *PostgresStore) AuthToken(ctx context.Context) (string, error) {
	query := `SELECT auth_token FROM client.preferences WHERE profile = $1;`
	var token string
	err := s.db.QueryRowContext(ctx, query, s.profile).Scan(&token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("store: AuthToken failed to scan row: %w", err)
	}
	return token, nil
}

func (s *PostgresStore) SetAuthToken(ctx context.Context, token string) error {
	query := `
		INSERT INTO client.preferences (profile, auth_token)
		VALUES ($1, $2)
		ON CONFLICT (profile) DO UPDATE SET auth_token = EXCLUDED.auth_token, updated_at = CURRENT_TIMESTAMP;
	`
	if _, err := s.db.ExecContext(ctx, query, s.profile, token); err != nil {
		return fmt.Errorf("store: SetAuthToken failed to execute upsert: %w", err)
	}
	return nil
}

func (s *PostgresStore) ClearAuthToken(ctx context.Context) error {
	query := `UPDATE client.preferences SET auth_token = '', updated_at = CURRENT_TIMESTAMP WHERE profile = $1;`
	if _, err := s.db.ExecContext(ctx, query, s.profile); err != nil {
		return fmt.Errorf("store: ClearAuthToken failed to execute update: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	if s.db != nil {
		log.Println("INFO: Closing preference database connection pool...")
		if err := s.db.Close(); err != nil {
			log.Printf("ERROR: Failed to close preference database connection pool: %v", err)
			return err
		}
		return nil
	}
	return nil
}
