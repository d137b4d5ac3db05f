package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/conference-agenda/internal/agenda"
	"github.com/example/conference-agenda/internal/application"
	"github.com/example/conference-agenda/internal/attendance"
	"github.com/example/conference-agenda/internal/config"
	httptransport "github.com/example/conference-agenda/internal/http"
	"github.com/example/conference-agenda/internal/persistence"
	"github.com/example/conference-agenda/internal/persistence/sqlite"
	"github.com/example/conference-agenda/internal/tracker"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML configuration file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath, logger); err != nil {
		logger.Error("agenda engine failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, logger *slog.Logger) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	favorites, closeStore, err := openFavoriteStore(cfg.Favorites)
	if err != nil {
		return fmt.Errorf("open favorite store %q: %w", cfg.Favorites.Store, err)
	}
	defer func() {
		if cerr := closeStore(); cerr != nil {
			logger.Error("failed to close favorite store", "error", cerr)
		}
	}()

	source := application.NewFileSource(cfg.SnapshotPath)
	service := application.NewAgendaServiceWithLogger(source, favorites, cfg.TimezoneOffsetMinutes, logger)
	service.SetLocale(agenda.Locale(cfg.Locale))
	if len(cfg.RoomCapacities) > 0 {
		service.SetCapacities(cfg.RoomCapacities)
	}

	if err := service.Load(ctx); err != nil {
		return fmt.Errorf("load schedule snapshot %q: %w", cfg.SnapshotPath, err)
	}
	if report := service.IntegrityReport(); report != nil {
		logger.Warn("snapshot has integrity violations", "violations", len(report.Violations))
	}

	if cfg.Attendance.URL != "" {
		feed := attendance.NewClient(cfg.Attendance.URL, cfg.Attendance.Token)
		statusTracker := tracker.New(feed, service.Snapshot, time.Now, logger)
		if err := statusTracker.Start(cfg.Attendance.Poll); err != nil {
			return fmt.Errorf("start room status polling %q: %w", cfg.Attendance.Poll, err)
		}
		defer statusTracker.Stop()
		service.SetStatusProvider(statusTracker)
	}

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Agenda:     httptransport.NewAgendaHandler(service, logger),
		Middleware: []func(http.Handler) http.Handler{httptransport.RequestLogger(logger)},
	})

	server := &http.Server{
		Addr:              cfg.Listen,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("agenda API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

func openFavoriteStore(cfg config.FavoritesConfig) (persistence.FavoriteStore, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Store {
	case "sqlite":
		repo, err := sqlite.Open(cfg.Path)
		if err != nil {
			return nil, noop, err
		}
		return repo, repo.Close, nil
	case "file":
		return persistence.NewFileFavoriteStore(cfg.Path), noop, nil
	default:
		return persistence.NewMemoryFavoriteStore(), noop, nil
	}
}
