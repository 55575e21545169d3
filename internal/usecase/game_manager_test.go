package usecase

import (
	"context"
	"io"
	"log/slog"
	"math/rand"
	"testing"
	"time"

	"github.com/rocketscienceinc/monopoly-backend/internal/apperror"
	"github.com/rocketscienceinc/monopoly-backend/internal/board"
	"github.com/rocketscienceinc/monopoly-backend/internal/dice"
	"github.com/rocketscienceinc/monopoly-backend/internal/engine"
	"github.com/rocketscienceinc/monopoly-backend/internal/entity"
	"github.com/rocketscienceinc/monopoly-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memPlayerRepo struct {
	players map[string]*entity.Player
}

func newMemPlayerRepo() *memPlayerRepo {
	return &memPlayerRepo{players: make(map[string]*entity.Player)}
}

func (that *memPlayerRepo) CreateOrUpdate(_ context.Context, player *entity.Player) error {
	that.players[player.ID] = player
	return nil
}

type memGameRepo struct {
	games map[string]*entity.Game
}

func newMemGameRepo() *memGameRepo {
	return &memGameRepo{games: make(map[string]*entity.Game)}
}

func (that *memGameRepo) CreateOrUpdate(_ context.Context, game *entity.Game) error {
	for _, existing := range that.games {
		if existing.Name == game.Name && existing.ID != game.ID {
			return repository.ErrGameNameTaken
		}
	}

	that.games[game.ID] = game

	return nil
}

func (that *memGameRepo) GetByID(_ context.Context, id string) (*entity.Game, error) {
	game, ok := that.games[id]
	if !ok {
		return &entity.Game{}, repository.ErrGameNotFound
	}

	return game, nil
}

func (that *memGameRepo) Delete(_ context.Context, game *entity.Game) error {
	delete(that.games, game.ID)
	return nil
}

func (that *memGameRepo) ExistsByName(_ context.Context, name string) (bool, error) {
	for _, game := range that.games {
		if game.Name == name {
			return true, nil
		}
	}

	return false, nil
}

func (that *memGameRepo) ListByUser(_ context.Context, userID string) ([]*entity.Game, error) {
	var games []*entity.Game
	for _, game := range that.games {
		if game.HasPlayerOfUser(userID) {
			games = append(games, game)
		}
	}

	return games, nil
}

type alwaysBuyPolicy struct{}

func (alwaysBuyPolicy) DecideToBuy(int, int) bool { return true }

type neverBuyPolicy struct{}

func (neverBuyPolicy) DecideToBuy(int, int) bool { return false }

func newTestManager(roller dice.Roller, policy botPolicy) (*GameManager, *memGameRepo) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	playerRepo := newMemPlayerRepo()
	gameRepo := newMemGameRepo()

	eng := engine.New(logger, playerRepo, gameRepo, roller)
	generator := board.NewRandomGenerator(rand.New(rand.NewSource(1)))

	return NewGameManager(logger, playerRepo, gameRepo, eng, policy, generator), gameRepo
}

// seedGame plants a handcrafted game over a fixed board layout so tests
// control every cell. Properties sit at 1,2,3,5,6,7,8,9, ports at
// 11,13,14,15, income tax at 10.
func seedGame(gameRepo *memGameRepo) *entity.Game {
	game := entity.NewGame("g1", "u1", "seeded", entity.BoardConfig{
		IncomeTaxIndex:  10,
		PropertyIndices: []int{1, 2, 3, 5, 6, 7, 8, 9},
		PortIndices:     []int{11, 13, 14, 15},
	})
	game.Players = []*entity.Player{
		{ID: "p0", UserID: "u1", GameID: game.ID, Money: 1500, TurnOrder: entity.HumanTurnOrder},
		{ID: "p1", GameID: game.ID, Money: 1500, TurnOrder: entity.BotTurnOrder},
	}

	gameRepo.games[game.ID] = game

	return game
}

func TestCreateGame(t *testing.T) {
	t.Run("Creates a game with a valid board and two funded players", func(t *testing.T) {
		manager, _ := newTestManager(dice.NewScriptRoller(nil), neverBuyPolicy{})

		// When: a game is created
		game, err := manager.CreateGame(context.Background(), "u1", "first game")

		// Then: the layout partitions the board and both players start
		// with 1500 money
		require.NoError(t, err)
		assert.Equal(t, "u1", game.OwnerID)
		assert.Len(t, game.Board.PropertyIndices, 8)
		assert.Len(t, game.Board.PortIndices, 4)
		assert.Nil(t, game.CompletionDate)

		require.Len(t, game.Players, 2)
		human := game.PlayerByTurnOrder(entity.HumanTurnOrder)
		computer := game.PlayerByTurnOrder(entity.BotTurnOrder)

		require.NotNil(t, human)
		require.NotNil(t, computer)
		assert.Equal(t, "u1", human.UserID)
		assert.Empty(t, computer.UserID)
		assert.Equal(t, 1500, human.Money)
		assert.Equal(t, 1500, computer.Money)
	})

	t.Run("Rejects a duplicate game name", func(t *testing.T) {
		manager, _ := newTestManager(dice.NewScriptRoller(nil), neverBuyPolicy{})

		_, err := manager.CreateGame(context.Background(), "u1", "taken")
		require.NoError(t, err)

		_, err = manager.CreateGame(context.Background(), "u2", "taken")
		assert.ErrorIs(t, err, apperror.ErrNameExists)
	})

	t.Run("Name collision slipping past the pre-check still rejects", func(t *testing.T) {
		// Given: a storage-level name claim that fires even though the
		// pre-check saw the name as free
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		playerRepo := newMemPlayerRepo()
		gameRepo := &staleCheckGameRepo{newMemGameRepo()}

		eng := engine.New(logger, playerRepo, gameRepo, dice.NewScriptRoller(nil))
		generator := board.NewRandomGenerator(rand.New(rand.NewSource(1)))
		manager := NewGameManager(logger, playerRepo, gameRepo, eng, neverBuyPolicy{}, generator)

		gameRepo.games["g9"] = entity.NewGame("g9", "u9", "contested", entity.BoardConfig{})

		// When: another user creates a game under the held name
		_, err := manager.CreateGame(context.Background(), "u2", "contested")

		// Then: the claim failure surfaces as the duplicate-name error
		assert.ErrorIs(t, err, apperror.ErrNameExists)
	})
}

// staleCheckGameRepo reports every name as free, standing in for a second
// creator racing past the existence check.
type staleCheckGameRepo struct {
	*memGameRepo
}

func (that *staleCheckGameRepo) ExistsByName(context.Context, string) (bool, error) {
	return false, nil
}

func TestGetGame(t *testing.T) {
	t.Run("Members can read the game, outsiders can't", func(t *testing.T) {
		manager, gameRepo := newTestManager(dice.NewScriptRoller(nil), neverBuyPolicy{})
		seeded := seedGame(gameRepo)

		game, err := manager.GetGame(context.Background(), "u1", seeded.ID)
		require.NoError(t, err)
		assert.Equal(t, seeded.ID, game.ID)

		_, err = manager.GetGame(context.Background(), "stranger", seeded.ID)
		assert.ErrorIs(t, err, apperror.ErrNotAMember)
	})
}

func TestDeleteGame(t *testing.T) {
	t.Run("Only the owner may delete an ongoing game", func(t *testing.T) {
		manager, gameRepo := newTestManager(dice.NewScriptRoller(nil), neverBuyPolicy{})
		seeded := seedGame(gameRepo)

		err := manager.DeleteGame(context.Background(), "stranger", seeded.ID)
		assert.ErrorIs(t, err, apperror.ErrNotOwner)

		err = manager.DeleteGame(context.Background(), "u1", seeded.ID)
		require.NoError(t, err)

		_, err = manager.GetGame(context.Background(), "u1", seeded.ID)
		assert.Error(t, err)
	})

	t.Run("Completed games can't be deleted", func(t *testing.T) {
		manager, gameRepo := newTestManager(dice.NewScriptRoller(nil), neverBuyPolicy{})
		seeded := seedGame(gameRepo)

		completedAt := time.Now()
		seeded.CompletionDate = &completedAt

		err := manager.DeleteGame(context.Background(), "u1", seeded.ID)
		assert.ErrorIs(t, err, apperror.ErrAlreadyCompleted)
	})
}

func TestListAvailableGames(t *testing.T) {
	t.Run("Lists only the user's ongoing games", func(t *testing.T) {
		manager, gameRepo := newTestManager(dice.NewScriptRoller(nil), neverBuyPolicy{})

		ongoing := seedGame(gameRepo)

		finished := entity.NewGame("g2", "u1", "done", ongoing.Board)
		completedAt := time.Now()
		finished.CompletionDate = &completedAt
		finished.Players = []*entity.Player{
			{ID: "p2", UserID: "u1", GameID: finished.ID, TurnOrder: entity.HumanTurnOrder},
			{ID: "p3", GameID: finished.ID, TurnOrder: entity.BotTurnOrder},
		}
		gameRepo.games[finished.ID] = finished

		games, err := manager.ListAvailableGames(context.Background(), "u1")

		require.NoError(t, err)
		require.Len(t, games, 1)
		assert.Equal(t, ongoing.ID, games[0].ID)
	})
}

func TestInteract(t *testing.T) {
	t.Run("A full run moves the bot, then the human, and advances the turn", func(t *testing.T) {
		// Given: scripted dice: the bot rolls (1,2), the human rolls (2,3)
		manager, gameRepo := newTestManager(dice.NewScriptRoller([][2]int{{1, 2}, {2, 3}}), neverBuyPolicy{})
		seeded := seedGame(gameRepo)

		// When: the interaction runs without a purchase request
		game, gameOver, err := manager.Interact(context.Background(), "u1", seeded.ID, false)

		// Then: both players moved in order and the turn advanced
		require.NoError(t, err)
		assert.Nil(t, gameOver)
		assert.Equal(t, 3, game.PlayerByTurnOrder(entity.BotTurnOrder).Location)
		assert.Equal(t, 5, game.PlayerByTurnOrder(entity.HumanTurnOrder).Location)
		assert.Equal(t, int64(1), game.Turn)
	})

	t.Run("The bot buys the cell it lands on when the policy says so", func(t *testing.T) {
		// Given: an always-buying policy and a bot landing on the property
		// at index 3 (priced 200)
		manager, gameRepo := newTestManager(dice.NewScriptRoller([][2]int{{1, 2}, {2, 3}}), alwaysBuyPolicy{})
		seeded := seedGame(gameRepo)

		game, gameOver, err := manager.Interact(context.Background(), "u1", seeded.ID, false)

		require.NoError(t, err)
		assert.Nil(t, gameOver)

		computer := game.PlayerByTurnOrder(entity.BotTurnOrder)
		assert.True(t, computer.Owns(3))
		assert.Equal(t, 1300, computer.Money)
	})

	t.Run("A purchase request while standing on the start cell is a faulty move", func(t *testing.T) {
		manager, gameRepo := newTestManager(dice.NewScriptRoller([][2]int{{1, 2}, {2, 3}}), neverBuyPolicy{})
		seeded := seedGame(gameRepo)

		_, gameOver, err := manager.Interact(context.Background(), "u1", seeded.ID, true)

		assert.ErrorIs(t, err, apperror.ErrFaultyMove)
		assert.Nil(t, gameOver)

		// The faulty purchase aborted the run before any movement.
		assert.Equal(t, 0, seeded.PlayerByTurnOrder(entity.BotTurnOrder).Location)
		assert.Equal(t, int64(0), seeded.Turn)
	})

	t.Run("A bankruptcy mid-run aborts the remaining steps", func(t *testing.T) {
		// Given: a broke bot that lands on the income tax cell
		manager, gameRepo := newTestManager(dice.NewScriptRoller([][2]int{{1, 4}, {2, 3}}), neverBuyPolicy{})
		seeded := seedGame(gameRepo)

		computer := seeded.PlayerByTurnOrder(entity.BotTurnOrder)
		computer.Location = 5
		computer.Money = 0

		// When: the bot's move charges the tax it can't pay
		game, gameOver, err := manager.Interact(context.Background(), "u1", seeded.ID, false)

		// Then: the run stops with the bot as loser and the human never
		// moved
		require.NoError(t, err)
		require.NotNil(t, gameOver)
		assert.Equal(t, computer, gameOver.Loser)
		assert.NotNil(t, game.CompletionDate)
		assert.Equal(t, 0, game.PlayerByTurnOrder(entity.HumanTurnOrder).Location)
	})

	t.Run("Rejects outsiders and completed games", func(t *testing.T) {
		manager, gameRepo := newTestManager(dice.NewScriptRoller(nil), neverBuyPolicy{})
		seeded := seedGame(gameRepo)

		_, _, err := manager.Interact(context.Background(), "stranger", seeded.ID, false)
		assert.ErrorIs(t, err, apperror.ErrNotAMember)

		completedAt := time.Now()
		seeded.CompletionDate = &completedAt

		_, _, err = manager.Interact(context.Background(), "u1", seeded.ID, false)
		assert.ErrorIs(t, err, apperror.ErrAlreadyCompleted)
	})
}

func TestNuke(t *testing.T) {
	t.Run("Nuking a player forces the game to end", func(t *testing.T) {
		manager, gameRepo := newTestManager(dice.NewScriptRoller(nil), neverBuyPolicy{})
		seeded := seedGame(gameRepo)

		game, gameOver, err := manager.Nuke(context.Background(), "u1", seeded.ID, entity.BotTurnOrder)

		require.NoError(t, err)
		require.NotNil(t, gameOver)
		assert.Equal(t, entity.BotTurnOrder, gameOver.Loser.TurnOrder)
		assert.NotNil(t, game.CompletionDate)

		for _, player := range game.Players {
			assert.Equal(t, player.Money, player.Score)
		}
	})

	t.Run("Rejects a turn order nobody holds", func(t *testing.T) {
		manager, gameRepo := newTestManager(dice.NewScriptRoller(nil), neverBuyPolicy{})
		seeded := seedGame(gameRepo)

		_, _, err := manager.Nuke(context.Background(), "u1", seeded.ID, 5)
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})
}
