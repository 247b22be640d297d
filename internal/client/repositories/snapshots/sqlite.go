package snapshots

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Johnwickx812/MediNutri/internal/client/models"
	"github.com/Johnwickx812/MediNutri/internal/dbx"
	"github.com/Johnwickx812/MediNutri/internal/logging"
)

const (
	partMedications = "medications"
	partMeals       = "meals"
	partReminders   = "reminders"
)

// blobKey builds the user-scoped storage key for one snapshot part.
func blobKey(userID, part string) string {
	return fmt.Sprintf("user:%s:%s", userID, part)
}

type SQLiteRepository struct {
	db  *sql.DB
	log logging.Logger
}

func NewSQLiteRepository(db *sql.DB, log logging.Logger) *SQLiteRepository {
	return &SQLiteRepository{db: db, log: log}
}

func (r *SQLiteRepository) get(ctx context.Context, q dbx.DBTX, key string) ([]byte, error) {
	var value []byte
	err := q.QueryRowContext(ctx, `SELECT value FROM snapshots WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot[%s]: %w", key, err)
	}
	return value, nil
}

func (r *SQLiteRepository) set(ctx context.Context, q dbx.DBTX, key string, value []byte) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO snapshots (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set snapshot[%s]: %w", key, err)
	}
	return nil
}

// loadPart reads and unmarshals one blob into dst. A missing row or corrupt
// JSON leaves dst untouched so the caller's default survives.
func (r *SQLiteRepository) loadPart(ctx context.Context, key string, dst any) error {
	raw, err := r.get(ctx, r.db, key)
	if err != nil {
		return err
	}
	if raw == nil {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		r.log.Warn(ctx, "discarding corrupt cached blob", "key", key, "error", err)
	}
	return nil
}

func (r *SQLiteRepository) Load(ctx context.Context, userID string) (models.Snapshot, error) {
	snap := models.EmptySnapshot()

	if err := r.loadPart(ctx, blobKey(userID, partMedications), &snap.Medications); err != nil {
		return snap, err
	}
	if err := r.loadPart(ctx, blobKey(userID, partMeals), &snap.Meals); err != nil {
		return snap, err
	}
	if err := r.loadPart(ctx, blobKey(userID, partReminders), &snap.Reminders); err != nil {
		return snap, err
	}
	if snap.Reminders.Medications == nil {
		snap.Reminders.Medications = map[string]bool{}
	}
	return snap, nil
}

func (r *SQLiteRepository) Save(ctx context.Context, userID string, snap models.Snapshot) error {
	meds, err := json.Marshal(snap.Medications)
	if err != nil {
		return fmt.Errorf("failed to marshal medications: %w", err)
	}
	meals, err := json.Marshal(snap.Meals)
	if err != nil {
		return fmt.Errorf("failed to marshal meals: %w", err)
	}
	reminders, err := json.Marshal(snap.Reminders)
	if err != nil {
		return fmt.Errorf("failed to marshal reminders: %w", err)
	}

	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := r.set(ctx, tx, blobKey(userID, partMedications), meds); err != nil {
			return err
		}
		if err := r.set(ctx, tx, blobKey(userID, partMeals), meals); err != nil {
			return err
		}
		return r.set(ctx, tx, blobKey(userID, partReminders), reminders)
	})
}

func (r *SQLiteRepository) Delete(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM snapshots WHERE key LIKE ?`, fmt.Sprintf("user:%s:%%", userID))
	if err != nil {
		return fmt.Errorf("failed to delete snapshots for user %s: %w", userID, err)
	}
	return nil
}
