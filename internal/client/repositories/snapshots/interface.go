// Package snapshots persists the per-user {medications, meals, reminders}
// snapshot as three independently-keyed JSON blobs in the local database.
// Keys are namespaced by user id, so switching accounts never leaks data.
package snapshots

import (
	"context"

	"github.com/Johnwickx812/MediNutri/internal/client/models"
)

type Repository interface {
	// Load returns the cached snapshot for the user. Missing or corrupt
	// blobs are treated as absent and replaced by defaults, never as
	// errors; only database failures are returned.
	Load(ctx context.Context, userID string) (models.Snapshot, error)

	// Save writes all three blobs atomically.
	Save(ctx context.Context, userID string, snap models.Snapshot) error

	// Delete removes every blob belonging to the user.
	Delete(ctx context.Context, userID string) error
}
