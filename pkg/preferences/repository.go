package preferences

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

// Repository stores one Preferences document per user. The document is opaque
// to SQL; the store only knows the owner and the JSON payload.
type Repository interface {
	Get(ctx context.Context, userId int) (Preferences, error)
	Store(ctx context.Context, userId int, prefs Preferences) error
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) Get(ctx context.Context, userId int) (Preferences, error) {
	query := `SELECT document FROM user_preferences WHERE user_id = $1`

	var document []byte
	err := r.db.QueryRow(ctx, query, userId).Scan(&document)
	if errors.Is(err, pgx.ErrNoRows) {
		return Preferences{}, ErrNoPreferences
	} else if err != nil {
		log.Errorf("could not query preferences: %v", err)
		return Preferences{}, fmt.Errorf("could not query preferences: %w", err)
	}

	var prefs Preferences
	if err := json.Unmarshal(document, &prefs); err != nil {
		log.Errorf("could not decode preferences document for user %d: %v", userId, err)
		return Preferences{}, fmt.Errorf("could not decode preferences document: %w", err)
	}
	return prefs, nil
}

func (r *RepositoryImpl) Store(ctx context.Context, userId int, prefs Preferences) error {
	document, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("could not encode preferences document: %w", err)
	}

	query := `INSERT INTO user_preferences (user_id, document, updated_at) VALUES ($1, $2, $3)
              ON CONFLICT (user_id) DO UPDATE SET document = EXCLUDED.document, updated_at = EXCLUDED.updated_at`

	_, err = r.db.Exec(ctx, query, userId, document, time.Now().UnixMilli())
	if err != nil {
		log.Errorf("could not store preferences: %v", err)
		return fmt.Errorf("could not store preferences: %w", err)
	}
	return nil
}
