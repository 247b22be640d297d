// Package client implements the remote API transport: authentication and
// the pull/push snapshot sync endpoints of the MediNutri backend.
package client

import (
	"context"

	"github.com/Johnwickx812/MediNutri/internal/client/models"
)

type Client interface {
	Close() error
	Register(ctx context.Context, name, email, password string) error
	Login(ctx context.Context, email, password string) (string, models.User, error)
	Me(ctx context.Context) (models.User, error)
	PullData(ctx context.Context) (models.RemoteSnapshot, error)
	PushData(ctx context.Context, snap models.Snapshot) error
	Ping(ctx context.Context) error
	SetToken(token string)
}
