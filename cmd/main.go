package main

import (
	"chat-room/domain"
	"chat-room/infrastructure/http/server"
	"chat-room/internal"
	"chat-room/moderation"
	"chat-room/observability"
	"chat-room/repositories"
	"chat-room/runtime/workers"
	"chat-room/services"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/redis/go-redis/v9"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Chat room terminated with error: %v\n", err)
	}
	os.Exit(code)
}

type storage struct {
	participants repositories.IParticipantRepository
	messages     repositories.IMessageRepository
	closer       io.Closer
}

func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return exitConfig, err
	}
	censorChar, err := internal.CharacterRune(config.CensorCharacter)
	if err != nil {
		return exitConfig, err
	}
	location, err := config.Location()
	if err != nil {
		return exitConfig, err
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Storage
	store, err := openStorage(config, log)
	if err != nil {
		return exitRuntime, err
	}
	defer func() {
		log.Info("Closing storage...", "driver", config.StorageDriver)
		if err := store.closer.Close(); err != nil {
			log.Error("Storage close failed", "err", err)
		}
	}()

	// 3. Services
	clock := domain.NewRoomClock(nil, location)
	monitoring := observability.NewMonitoringManager(log)
	moderator, err := moderation.NewModerator(config.CensoredWordList(), censorChar, log)
	if err != nil {
		return exitConfig, fmt.Errorf("moderator init failed: %w", err)
	}
	participantService := services.NewParticipantService(store.participants, store.messages, clock, monitoring, log)
	messageService := services.NewMessageService(store.participants, store.messages, moderator, clock, monitoring, log)

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Background workers under supervision
	sweeper := workers.NewInactivitySweeper(
		store.participants, store.messages, clock, monitoring, log,
		config.SweepInterval, config.InactivityThreshold, config.MessageRetention,
	)
	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(sweeper)
	if config.ReportInterval > 0 {
		sup.Add(workers.NewReporterWorker(monitoring, log, config.ReportInterval))
	}
	supervisorDone := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(supervisorDone)
	}()

	// 6. HTTP server
	app := server.NewChatServer(participantService, messageService, monitoring, log).App()
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", address, "storage", config.StorageDriver)
		if err := app.Listen(address); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	var runErr error
	select {
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	case runErr = <-errChan:
	}

	// 8. Final Cleanup (Graceful Shutdown)
	if err := app.ShutdownWithTimeout(config.ShutdownTimeout); err != nil {
		log.Error("HTTP shutdown failed", "err", err)
	}
	stop()
	sup.Stop()
	<-supervisorDone

	if runErr != nil {
		return exitRuntime, runErr
	}
	log.Info("Program stopped cleanly")
	return exitOK, nil
}

func openStorage(config internal.Config, log *slog.Logger) (storage, error) {
	switch config.StorageDriver {
	case internal.RedisDriver:
		client := redis.NewClient(&redis.Options{
			Addr:     config.RedisAddr,
			Password: config.RedisPassword,
			DB:       config.RedisDB,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			_ = client.Close()
			return storage{}, fmt.Errorf("redis unreachable at %s: %w", config.RedisAddr, err)
		}
		return storage{
			participants: repositories.NewRedisParticipantRepository(client, log, config.RedisKeyPrefix),
			messages:     repositories.NewRedisMessageRepository(client, log, config.RedisKeyPrefix),
			closer:       client,
		}, nil
	default:
		db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
			WithLoggingLevel(badger.WARNING))
		if err != nil {
			return storage{}, fmt.Errorf("database opening failed: %w", err)
		}
		messages, err := repositories.NewMessageRepository(db, log)
		if err != nil {
			_ = db.Close()
			return storage{}, err
		}
		return storage{
			participants: repositories.NewParticipantRepository(db, log),
			messages:     messages,
			closer:       badgerCloser{db: db, messages: messages},
		}, nil
	}
}

// badgerCloser releases the message sequence before the database.
// The database is closed even when releasing the sequence fails.
type badgerCloser struct {
	db       io.Closer
	messages io.Closer
}

func (c badgerCloser) Close() error {
	var errs []error
	if err := c.messages.Close(); err != nil {
		errs = append(errs, fmt.Errorf("message sequence release failed: %w", err))
	}
	if err := c.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("database close failed: %w", err))
	}
	return errors.Join(errs...)
}
