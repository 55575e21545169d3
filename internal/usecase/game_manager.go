// Package usecase wires the game engine, board generator, and bot policy
// into the operations the request-handling layer consumes: game lifecycle
// and the per-interaction orchestration protocol.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/monopoly-backend/internal/apperror"
	"github.com/rocketscienceinc/monopoly-backend/internal/board"
	"github.com/rocketscienceinc/monopoly-backend/internal/engine"
	"github.com/rocketscienceinc/monopoly-backend/internal/entity"
	"github.com/rocketscienceinc/monopoly-backend/internal/pkg"
	"github.com/rocketscienceinc/monopoly-backend/internal/repository"
)

const startingMoney = 1500

type playerRepo interface {
	CreateOrUpdate(ctx context.Context, player *entity.Player) error
}

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	Delete(ctx context.Context, game *entity.Game) error
	ExistsByName(ctx context.Context, name string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]*entity.Game, error)
}

type gameEngine interface {
	MoveStep(ctx context.Context, game *entity.Game, player *entity.Player) (*engine.GameOver, error)
	PurchaseStep(ctx context.Context, game *entity.Game, player *entity.Player) (*engine.GameOver, error)
	CanBuy(game *entity.Game, player *entity.Player, location int) bool
	Nuke(ctx context.Context, game *entity.Game, player *entity.Player) (*engine.GameOver, error)
}

type botPolicy interface {
	DecideToBuy(currentMoney, cellCost int) bool
}

type GameManager struct {
	logger *slog.Logger

	playerRepo playerRepo
	gameRepo   gameRepo
	engine     gameEngine
	policy     botPolicy
	generator  board.Generator

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

func NewGameManager(logger *slog.Logger, playerRepo playerRepo, gameRepo gameRepo, gameEngine gameEngine, policy botPolicy, generator board.Generator) *GameManager {
	return &GameManager{
		logger: logger,

		playerRepo: playerRepo,
		gameRepo:   gameRepo,
		engine:     gameEngine,
		policy:     policy,
		generator:  generator,

		locks: make(map[string]*sync.Mutex),
	}
}

// CreateGame creates a game with a freshly generated board and two players:
// the owner's human player and the bot.
func (that *GameManager) CreateGame(ctx context.Context, ownerID, name string) (*entity.Game, error) {
	exists, err := that.gameRepo.ExistsByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to check game name: %w", err)
	}
	if exists {
		return nil, apperror.ErrNameExists
	}

	sequence := that.generator.GenerateCellSequence()
	game := entity.NewGame(pkg.GenerateGameID(), ownerID, name, sequence.BoardConfig())

	human := &entity.Player{
		ID:        pkg.GeneratePlayerID(),
		UserID:    ownerID,
		GameID:    game.ID,
		Money:     startingMoney,
		TurnOrder: entity.HumanTurnOrder,
	}
	computer := &entity.Player{
		ID:        pkg.GeneratePlayerID(),
		GameID:    game.ID,
		Money:     startingMoney,
		TurnOrder: entity.BotTurnOrder,
	}
	game.Players = []*entity.Player{human, computer}

	for _, player := range game.Players {
		if err = that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
			return nil, fmt.Errorf("failed to create player: %w", err)
		}
	}

	// the repository claims the name atomically; two creates racing past the
	// ExistsByName check still end with a single winner
	if err = that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		if errors.Is(err, repository.ErrGameNameTaken) {
			return nil, apperror.ErrNameExists
		}

		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	that.logger.Info("game created", "game", game.ID, "name", name, "owner", ownerID)

	return game, nil
}

// GetGame returns the game if the user is a player of it.
func (that *GameManager) GetGame(ctx context.Context, userID, gameID string) (*entity.Game, error) {
	game, err := that.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	if !game.HasPlayerOfUser(userID) {
		return nil, apperror.ErrNotAMember
	}

	return game, nil
}

// DeleteGame removes an ongoing game. Only the owner may delete it, and
// completed games are never deleted.
func (that *GameManager) DeleteGame(ctx context.Context, userID, gameID string) error {
	lock := that.lockGame(gameID)
	lock.Lock()
	defer lock.Unlock()

	game, err := that.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return fmt.Errorf("failed to get game: %w", err)
	}

	if game.OwnerID != userID {
		return apperror.ErrNotOwner
	}

	if game.IsCompleted() {
		return apperror.ErrAlreadyCompleted
	}

	if err = that.gameRepo.Delete(ctx, game); err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}

	that.logger.Info("game deleted", "game", gameID, "owner", userID)

	return nil
}

// ListAvailableGames returns the ongoing games the user is a player of.
func (that *GameManager) ListAvailableGames(ctx context.Context, userID string) ([]*entity.Game, error) {
	games, err := that.gameRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}

	available := make([]*entity.Game, 0, len(games))
	for _, game := range games {
		if !game.IsCompleted() {
			available = append(available, game)
		}
	}

	return available, nil
}

// Interact runs one full orchestration run: the human's optional purchase
// of the cell they stand on, the bot's move and policy-driven purchase,
// then the human's move positioning them for the next interaction. A
// GameOver raised at any point aborts the remaining steps; the already
// completed game and its loser are handed back to the caller.
func (that *GameManager) Interact(ctx context.Context, userID, gameID string, buy bool) (*entity.Game, *engine.GameOver, error) {
	lock := that.lockGame(gameID)
	lock.Lock()
	defer lock.Unlock()

	game, human, err := that.ongoingGame(ctx, userID, gameID)
	if err != nil {
		return nil, nil, err
	}

	if buy {
		gameOver, err := that.engine.PurchaseStep(ctx, game, human)
		if gameOver != nil || err != nil {
			return game, gameOver, err
		}
	}

	computer := game.PlayerByTurnOrder(entity.BotTurnOrder)

	gameOver, err := that.engine.MoveStep(ctx, game, computer)
	if gameOver != nil || err != nil {
		return game, gameOver, err
	}

	if that.engine.CanBuy(game, computer, computer.Location) {
		gameOver, err = that.botPurchase(ctx, game, computer)
		if gameOver != nil || err != nil {
			return game, gameOver, err
		}
	}

	gameOver, err = that.engine.MoveStep(ctx, game, human)
	if gameOver != nil || err != nil {
		return game, gameOver, err
	}

	game.Turn++
	if err = that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return nil, nil, fmt.Errorf("failed to update game: %w", err)
	}

	return game, nil, nil
}

// botPurchase consults the bot policy for the cell the bot landed on. The
// purchase is pre-validated with CanBuy, so it can never be a faulty move.
func (that *GameManager) botPurchase(ctx context.Context, game *entity.Game, computer *entity.Player) (*engine.GameOver, error) {
	price, err := board.CellPrice(&game.Board, computer.Location)
	if err != nil {
		return nil, fmt.Errorf("failed to price cell: %w", err)
	}

	if !that.policy.DecideToBuy(computer.Money, price) {
		that.logger.Info("bot declines to buy", "game", game.ID, "cell", computer.Location)
		return nil, nil
	}

	return that.engine.PurchaseStep(ctx, game, computer)
}

// Nuke charges the targeted player an unpayable debt, forcing the game to
// end. An admin and testing hook, not part of normal play.
func (that *GameManager) Nuke(ctx context.Context, userID, gameID string, targetOrder int) (*entity.Game, *engine.GameOver, error) {
	lock := that.lockGame(gameID)
	lock.Lock()
	defer lock.Unlock()

	game, _, err := that.ongoingGame(ctx, userID, gameID)
	if err != nil {
		return nil, nil, err
	}

	target := game.PlayerByTurnOrder(targetOrder)
	if target == nil {
		return nil, nil, fmt.Errorf("%w: no player with turn order %d", apperror.ErrNotFound, targetOrder)
	}

	gameOver, err := that.engine.Nuke(ctx, game, target)
	if gameOver != nil || err != nil {
		return game, gameOver, err
	}

	if err = that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return nil, nil, fmt.Errorf("failed to update game: %w", err)
	}

	return game, nil, nil
}

// ongoingGame loads the game and checks that the caller is one of its
// players and that the game can still be mutated.
func (that *GameManager) ongoingGame(ctx context.Context, userID, gameID string) (*entity.Game, *entity.Player, error) {
	game, err := that.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get game: %w", err)
	}

	player := game.PlayerOfUser(userID)
	if player == nil {
		return nil, nil, apperror.ErrNotAMember
	}

	if game.IsCompleted() {
		return nil, nil, apperror.ErrAlreadyCompleted
	}

	return game, player, nil
}

// lockGame returns the mutex serializing runs against one game id. At most
// one orchestration run may be in flight per game; interleaved runs would
// corrupt dice sequencing, doubles counters, and ownership sets.
func (that *GameManager) lockGame(id string) *sync.Mutex {
	that.locksMu.Lock()
	defer that.locksMu.Unlock()

	lock, ok := that.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		that.locks[id] = lock
	}

	return lock
}
