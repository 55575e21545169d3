package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rocketscienceinc/monopoly-backend/internal/board"
	"github.com/rocketscienceinc/monopoly-backend/internal/bot"
	"github.com/rocketscienceinc/monopoly-backend/internal/config"
	"github.com/rocketscienceinc/monopoly-backend/internal/dice"
	"github.com/rocketscienceinc/monopoly-backend/internal/engine"
	"github.com/rocketscienceinc/monopoly-backend/internal/repository"
	"github.com/rocketscienceinc/monopoly-backend/internal/repository/storage"
	"github.com/rocketscienceinc/monopoly-backend/internal/repository/storage/sqlite"
	"github.com/rocketscienceinc/monopoly-backend/internal/usecase"
	"github.com/rocketscienceinc/monopoly-backend/transport/rest"
)

var (
	ErrAddrNotFound    = errors.New("redis address string is empty")
	ErrUnknownDiceMode = errors.New("unknown dice mode")
)

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

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return ErrAddrNotFound
	}

	redisStorage, err := storage.NewRedisStorage(ctx, redisAddrString)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	sqliteStorage, err := sqlite.New(conf.SQLiteStoragePath)
	if err != nil {
		return fmt.Errorf("could not open sqlite storage: %w", err)
	}

	if err = sqliteStorage.Init(ctx); err != nil {
		return fmt.Errorf("could not init sqlite storage: %w", err)
	}

	defer func() {
		if err = sqliteStorage.Connection.Close(); err != nil {
			log.Error("could not close sqlite storage", "error", err)
		}
	}()

	roller, err := newRoller(conf.Dice)
	if err != nil {
		return err
	}

	playerRepo := repository.NewPlayerRepository(redisStorage)
	gameRepo := repository.NewGameRepository(redisStorage)
	userRepo := repository.NewUserRepository(sqliteStorage.Connection)

	gameEngine := engine.New(logger, playerRepo, gameRepo, roller)
	// every random consumer gets its own source; a *rand.Rand must not be
	// shared between components drawing from different goroutines
	policy := bot.NewHeuristicPolicy(newRand())
	generator := board.NewRandomGenerator(newRand())

	gameManager := usecase.NewGameManager(logger, playerRepo, gameRepo, gameEngine, policy, generator)
	handlers := rest.NewHandlers(gameManager, userRepo)

	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := rest.Start(conf.HTTPPort, handlers); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}

// newRoller selects the dice source: pseudo-random play or deterministic
// replay of a roll script.
func newRoller(conf config.Dice) (dice.Roller, error) {
	switch conf.Mode {
	case config.DiceModeRandom, "":
		return dice.NewRandomRoller(newRand()), nil
	case config.DiceModeScript:
		roller, err := dice.NewScriptRollerFromFile(conf.ScriptFile)
		if err != nil {
			return nil, fmt.Errorf("could not load dice script: %w", err)
		}
		return roller, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDiceMode, conf.Mode)
	}
}

func newRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano())) //nolint: gosec // game randomness, not crypto
}
