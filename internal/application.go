package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rocketscienceinc/gridgames-backend/internal/config"
	"github.com/rocketscienceinc/gridgames-backend/internal/repository"
	"github.com/rocketscienceinc/gridgames-backend/internal/repository/storage"
	"github.com/rocketscienceinc/gridgames-backend/internal/scheduler"
	"github.com/rocketscienceinc/gridgames-backend/internal/service"
	"github.com/rocketscienceinc/gridgames-backend/internal/usecase"
	"github.com/rocketscienceinc/gridgames-backend/transport/rest"
	"github.com/rocketscienceinc/gridgames-backend/transport/websocket"
)

const shutdownTimeout = 5 * time.Second

type backend struct {
	games   repository.GameRepository
	players repository.PlayerRepository
	queue   scheduler.Queue
	check   func(ctx context.Context) error
	close   func() error
}

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	store, err := newBackend(ctx, logger, conf)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := store.close(); closeErr != nil {
			log.Error("could not close storage", "error", closeErr)
		}
	}()

	directory := usecase.NewPlayerDirectory(store.players)
	notifier := service.NewBotNotifier(store.games, directory, logger, conf.Bots.RequestTimeout, conf.Bots.RulesetVersion)
	processor := usecase.NewTurnProcessor(store.games, logger)
	advancer := usecase.NewTurnAdvancer(processor, store.queue, notifier, logger)
	detector := usecase.NewMoveCompletionDetector(store.games, advancer, logger)
	expirations := usecase.NewExpirationHandler(advancer, logger, conf.Engine.MaxTurnNumber)
	starter := usecase.NewGameStarter(store.games, advancer, logger)
	submitter := usecase.NewMoveSubmitter(store.games, logger)

	hub := websocket.NewHub(store.games, logger)
	handlers := rest.NewHandlers(logger, starter, submitter, directory)
	server := rest.New(logger, conf.HTTPPort, handlers, rest.NewPingHandler(store.check), websocket.New(logger, hub, starter, submitter))

	errCh := make(chan error, 4)
	run := func(name string, fn func() error) {
		go func() {
			if runErr := fn(); runErr != nil {
				errCh <- fmt.Errorf("%s: %w", name, runErr)
			}
		}()
	}

	run("move completion detector", func() error { return detector.Run(ctx) })
	run("expiration scheduler", func() error { return store.queue.Run(ctx, expirations.Handle) })
	run("websocket hub", func() error { return hub.Run(ctx) })
	run("HTTP server", server.Start)

	select {
	case err = <-errCh:
		log.Error("component failed", "error", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Error("could not shutdown HTTP server", "error", shutdownErr)
	}

	return err
}

func newBackend(ctx context.Context, logger *slog.Logger, conf *config.Config) (*backend, error) {
	if conf.Storage == config.StorageMemory {
		logger.Warn("using in-memory storage, state is lost on restart")

		return &backend{
			games:   repository.NewMemoryGameRepository(),
			players: repository.NewMemoryPlayerRepository(),
			queue:   scheduler.NewMemoryQueue(logger),
			close:   func() error { return nil },
		}, nil
	}

	redisStorage, err := storage.NewRedisStorage(ctx, storage.RedisOptions{
		Host:     conf.Redis.Host,
		Port:     conf.Redis.Port,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("could not connect to redis storage: %w", err)
	}

	client := redisStorage.Connection

	return &backend{
		games:   repository.NewGameRepository(client, conf.Engine.TxMaxElapsed),
		players: repository.NewPlayerRepository(client),
		queue:   scheduler.NewRedisQueue(client, logger, conf.Scheduler.PollInterval, conf.Scheduler.BatchSize, conf.Scheduler.LeaseTimeout),
		check:   func(ctx context.Context) error { return client.Ping(ctx).Err() },
		close:   redisStorage.Close,
	}, nil
}
