// Package app composes the docchat TUI from its parts with fx.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/lcamargo/docchat/internal/backend"
	"github.com/lcamargo/docchat/internal/bus"
	"github.com/lcamargo/docchat/internal/config"
	"github.com/lcamargo/docchat/internal/gate"
	"github.com/lcamargo/docchat/internal/history"
	"github.com/lcamargo/docchat/internal/logging"
	"github.com/lcamargo/docchat/internal/reconcile"
	"github.com/lcamargo/docchat/internal/session"
	"github.com/lcamargo/docchat/internal/store"
	"github.com/lcamargo/docchat/internal/tui"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Params holds the resolved configuration passed to the fx module.
type Params struct {
	Config *config.Config
}

// Module returns the fx module composing all providers and lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("docchat",
		fx.Supply(p),
		fx.Provide(
			provideLogger,
			provideBus,
			provideHistory,
			provideDurable,
			provideSessionStorage,
			provideBackend,
			provideStore,
			provideGate,
			provideReconciler,
			provideRecorder,
			provideTUI,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideLogger(p Params) (*zap.Logger, error) {
	if err := session.EnsureDirs(); err != nil {
		return nil, err
	}
	return logging.New(session.LogPath(), p.Config.LogLevel)
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideHistory(logger *zap.Logger) (*history.DB, error) {
	dbPath := session.DBPath()
	db, err := history.Open(dbPath)
	if err != nil {
		return nil, err
	}
	result, err := db.Migrate()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if result.Changed {
		logger.Info("migrations applied", zap.Uint("version", result.Version))
	} else {
		logger.Info("migrations up to date", zap.Uint("version", result.Version))
	}
	logger.Info("history cache ready", zap.String("path", dbPath))
	return db, nil
}

func provideDurable(db *history.DB, logger *zap.Logger) *history.StateStore {
	return history.NewStateStore(db, logger)
}

func provideSessionStorage() *session.Memory {
	return session.NewMemory()
}

func provideBackend(p Params, logger *zap.Logger) *backend.Client {
	timeout := time.Duration(p.Config.RequestTimeoutSeconds) * time.Second
	return backend.New(p.Config.BackendURL, timeout, logger)
}

func provideStore(p Params, api *backend.Client, mem *session.Memory, durable *history.StateStore, b *bus.Bus, logger *zap.Logger) *store.Store {
	return store.New(api, mem, durable, b, p.Config.PageSize, logger)
}

func provideGate(s *store.Store, api *backend.Client, mem *session.Memory, b *bus.Bus, logger *zap.Logger) *gate.Gate {
	return gate.New(api, &actionRunner{store: s}, mem, b, logger)
}

func provideReconciler(p Params, s *store.Store, api *backend.Client, logger *zap.Logger) *reconcile.Reconciler {
	return reconcile.New(s, api, p.Config.AskK, logger)
}

func provideRecorder(db *history.DB, b *bus.Bus, logger *zap.Logger) *history.Recorder {
	return history.NewRecorder(db, b, logger)
}

func provideTUI(p Params, s *store.Store, g *gate.Gate, rec *reconcile.Reconciler, b *bus.Bus, logger *zap.Logger) *tui.App {
	return tui.NewApp(s, g, rec, b, p.Config.BackendURL, logger)
}

// actionRunner bridges unlocked gate actions onto the store.
type actionRunner struct {
	store *store.Store
}

func (r *actionRunner) Run(ctx context.Context, p gate.Pending) error {
	switch p.Action {
	case gate.ActionEnter:
		r.store.SetActiveCollection(p.Collection.ID)
		return r.store.LoadDetail(ctx, p.Collection.ID)
	case gate.ActionDeleteCollection:
		return r.store.Delete(ctx, p.Collection.ID)
	case gate.ActionDeleteDocument:
		return r.store.DeleteDocument(ctx, p.Collection.ID, p.DocumentID)
	default:
		return fmt.Errorf("unknown gated action %q", p.Action)
	}
}

func registerLifecycle(lc fx.Lifecycle, sh fx.Shutdowner, app *tui.App, recorder *history.Recorder, db *history.DB, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			recorder.Start(context.Background())

			go func() {
				if err := app.Run(); err != nil {
					logger.Error("tui error", zap.Error(err))
				}
				_ = sh.Shutdown()
			}()

			return nil
		},
		OnStop: func(_ context.Context) error {
			app.Stop()
			recorder.Stop()
			if err := db.Close(); err != nil {
				logger.Warn("error closing history cache", zap.Error(err))
			}
			logger.Info("docchat stopped")
			_ = logger.Sync()
			return nil
		},
	})
}
