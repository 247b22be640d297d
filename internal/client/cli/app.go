// Package cli implements the interactive terminal front end of the
// MediNutri client. It wires the local database, the backend API client,
// the notification scheduler and the application services together and
// drives them from a small REPL.
package cli

import (
	"bufio"
	"context"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/Johnwickx812/MediNutri/internal/client/client"
	"github.com/Johnwickx812/MediNutri/internal/client/config"
	"github.com/Johnwickx812/MediNutri/internal/client/notify"
	"github.com/Johnwickx812/MediNutri/internal/client/repositories/session"
	"github.com/Johnwickx812/MediNutri/internal/client/repositories/snapshots"
	"github.com/Johnwickx812/MediNutri/internal/client/services"
	"github.com/Johnwickx812/MediNutri/internal/client/storage"
	"github.com/Johnwickx812/MediNutri/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config    *config.Config
	log       logging.Logger
	apiClient client.Client
	session   *services.SessionService
	store     *services.AppService
	scheduler *notify.Scheduler
	Mode      Mode
	reader    *bufio.Reader
}

func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()

	zl, err := zap.NewDevelopment()
	if err != nil {
		return nil, err
	}
	log := logging.NewZapLogger(zl)

	db, err := storage.Open(ctx, c.DatabasePath)
	if err != nil {
		log.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	apiClient := client.NewHTTPClient(c.ServerEndpointAddr, c.RequestTimeout)

	scheduler := notify.NewScheduler(notify.NewConsoleAlerter(os.Stdout), log)
	// The console surface carries no user-facing grant, so claim it up
	// front; otherwise reminders restored from cache stay unarmed until
	// the master switch is flipped again.
	scheduler.RequestPermission(ctx)

	store := services.NewAppService(apiClient, snapshots.NewSQLiteRepository(db, log), scheduler, log, c.SyncDebounce)
	sess := services.NewSessionService(apiClient, session.NewSQLiteRepository(db), store, log)

	return &App{
		config:    c,
		log:       log,
		apiClient: apiClient,
		session:   sess,
		store:     store,
		scheduler: scheduler,
		Mode:      ModeOffline,
		reader:    bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.apiClient.Close()
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.session.IsAuthenticated()
}

func (a *App) setMode(ctx context.Context, mode Mode) {
	if a.Mode != mode {
		a.Mode = mode
		a.log.Info(ctx, "connectivity changed", "mode", string(mode))
	}
}

// StartOnlineStatusWatcher periodically probes the backend and flips the
// online/offline indicator.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			probeCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			err := a.apiClient.Ping(probeCtx)
			cancel()

			if err != nil {
				a.setMode(ctx, ModeOffline)
			} else {
				a.setMode(ctx, ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}
