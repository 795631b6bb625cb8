// Package app wires configuration, storage, transports and the scheduler
// into a running bot process.
package app

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/glebk/worklog-bot/internal/api"
	"github.com/glebk/worklog-bot/internal/bot"
	"github.com/glebk/worklog-bot/internal/config"
	"github.com/glebk/worklog-bot/internal/dispatcher"
	"github.com/glebk/worklog-bot/internal/domain"
	"github.com/glebk/worklog-bot/internal/export"
	"github.com/glebk/worklog-bot/internal/logger"
	"github.com/glebk/worklog-bot/internal/repository/memory"
	"github.com/glebk/worklog-bot/internal/repository/postgres"
	"github.com/glebk/worklog-bot/internal/repository/sqlite"
	"github.com/glebk/worklog-bot/internal/scheduler"
	"github.com/glebk/worklog-bot/internal/service"
)

// Run starts every configured component and blocks until the context is
// canceled or a transport fails.
func Run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New("worklog-bot", cfg.Logging.Level, cfg.Logging.Pretty)
	log.Info().
		Str("db_driver", cfg.Database.Driver).
		Str("grammar", cfg.Dispatch.Grammar).
		Str("export_mode", cfg.Export.Mode).
		Int("http_port", cfg.HTTP.Port).
		Bool("telegram", cfg.Telegram.Token != "").
		Msg("worklog bot starting")

	st, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	exporter := newExporter(cfg)
	sessions := service.NewSessionService(st.sessions, st.responses, exporter, log)
	disp := dispatcher.New(st.users, sessions, dispatcher.Grammar(cfg.Dispatch.Grammar), log)

	errCh := make(chan error, 2)

	var notifier scheduler.Notifier
	if cfg.Telegram.Token != "" {
		tg, err := bot.New(cfg.Telegram.Token, disp, cfg.Telegram.LongPollTimeoutSeconds, log)
		if err != nil {
			return err
		}
		notifier = tg
		go func() {
			if err := tg.Start(ctx); err != nil {
				errCh <- fmt.Errorf("telegram transport failed: %w", err)
			}
		}()
	} else {
		notifier = logNotifier{log: log}
	}

	pinger := scheduler.NewPinger(st.sessions, st.users, notifier, time.Duration(cfg.Scheduler.TickSeconds)*time.Second, log)
	go pinger.Start(ctx)

	var server *http.Server
	if cfg.HTTP.Port > 0 {
		handler := api.NewEventHandler(disp, st.ping)
		server = newHTTPServer(ctx, cfg.HTTP.Port, api.NewRouter(handler))
		go func() {
			log.Info().Int("port", cfg.HTTP.Port).Msg("HTTP server starting")
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errCh <- fmt.Errorf("http transport failed: %w", err)
			}
		}()
	}

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		if server != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("server forced to shutdown")
				return err
			}
		}
		log.Info().Msg("stopped")
		return nil
	case err := <-errCh:
		log.Error().Err(err).Msg("transport failed")
		return err
	}
}

// storage bundles the repositories behind whichever driver the config picked.
type storage struct {
	users     domain.UserRepository
	sessions  domain.SessionRepository
	responses domain.ResponseRepository
	ping      func(ctx context.Context) error
	close     func() error
}

func openStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*storage, error) {
	switch cfg.Database.Driver {
	case config.DriverSQLite:
		db, err := sqlite.New(cfg.Database.Path, cfg.Database.MaxConnections)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		log.Info().Str("path", cfg.Database.Path).Msg("sqlite database ready")
		return &storage{
			users:     sqlite.NewUserRepository(db),
			sessions:  sqlite.NewSessionRepository(db),
			responses: sqlite.NewResponseRepository(db),
			ping:      db.Ping,
			close:     db.Close,
		}, nil

	case config.DriverPostgres:
		db, err := postgres.Connect(ctx, cfg.Database.DSN, cfg.Database.MaxConnections, log)
		if err != nil {
			return nil, err
		}
		return &storage{
			users:     postgres.NewUserRepository(db),
			sessions:  postgres.NewSessionRepository(db),
			responses: postgres.NewResponseRepository(db),
			ping:      db.PingContext,
			close:     db.Close,
		}, nil

	case config.DriverMemory:
		store := memory.New()
		log.Warn().Msg("using in-memory storage, data is lost on restart")
		return &storage{
			users:     store.Users(),
			sessions:  store.Sessions(),
			responses: store.Responses(),
			ping:      store.Ping,
			close:     func() error { return nil },
		}, nil

	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}

func newExporter(cfg *config.Config) export.SummaryExporter {
	if cfg.Export.Mode == config.ExportModeWebhook {
		return export.NewWebhookExporter(cfg.Export.URL, time.Duration(cfg.Export.TimeoutSeconds)*time.Second)
	}
	return export.NoopExporter{}
}

func newHTTPServer(ctx context.Context, port int, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

// logNotifier stands in for Telegram when no token is configured. Check-in
// pings still fire on schedule, they just land in the log.
type logNotifier struct {
	log zerolog.Logger
}

func (n logNotifier) Notify(_ context.Context, user *domain.User, text string) error {
	n.log.Info().
		Str("space_id", user.SpaceID).
		Str("user_id", user.UserID).
		Str("text", text).
		Msg("check-in ping")
	return nil
}
