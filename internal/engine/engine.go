// Package engine implements the turn state machine: movement, purchases,
// rent and tax settlement, jail, and bankruptcy. Every mutation is
// persisted as it happens; a bankruptcy raised mid-sequence skips the
// remaining steps of the current operation but does not roll back the
// steps already applied.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rocketscienceinc/monopoly-backend/internal/apperror"
	"github.com/rocketscienceinc/monopoly-backend/internal/board"
	"github.com/rocketscienceinc/monopoly-backend/internal/dice"
	"github.com/rocketscienceinc/monopoly-backend/internal/entity"
)

const (
	jailDuration      = 2
	doublesBeforeJail = 3
	nukeDebt          = 10000
)

type playerRepo interface {
	CreateOrUpdate(ctx context.Context, player *entity.Player) error
}

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
}

// GameOver is the terminal outcome of normal play, not a failure: it
// carries the losing player and the completed game with every player's
// score populated. Callers must handle it explicitly.
type GameOver struct {
	Game  *entity.Game
	Loser *entity.Player
}

type Engine struct {
	logger *slog.Logger

	playerRepo playerRepo
	gameRepo   gameRepo
	roller     dice.Roller

	now func() time.Time
}

func New(logger *slog.Logger, playerRepo playerRepo, gameRepo gameRepo, roller dice.Roller) *Engine {
	return &Engine{
		logger: logger,

		playerRepo: playerRepo,
		gameRepo:   gameRepo,
		roller:     roller,

		now: time.Now,
	}
}

// MoveStep executes the movement phase of a player's turn: jail countdown,
// dice roll, doubles tracking, movement with wrap-around salary, and the
// landing consequences of the new cell. A non-nil GameOver means the move
// bankrupted the player.
func (that *Engine) MoveStep(ctx context.Context, game *entity.Game, player *entity.Player) (*GameOver, error) {
	log := that.logger.With("method", "MoveStep", "player", player.ID)

	if player.RemainingJailTime > 0 {
		player.RemainingJailTime--
		log.Info("player sits out a jail turn", "remaining", player.RemainingJailTime)

		if err := that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
			return nil, fmt.Errorf("failed to update player: %w", err)
		}

		return nil, nil
	}

	first, second := that.roller.Roll()
	player.LastDice = [2]int{first, second}
	log.Info("player rolled", "first", first, "second", second)

	if first == second {
		player.SuccessiveDoubles++
		if player.SuccessiveDoubles == doublesBeforeJail {
			log.Info("player goes to jail for rolling three consecutive doubles")

			if err := that.sendToJail(ctx, player); err != nil {
				return nil, err
			}

			// No movement or landing resolution on this call.
			return nil, nil
		}
	} else {
		player.SuccessiveDoubles = 0
	}

	advance := first + second
	oldLocation := player.Location
	player.Location = (oldLocation + advance) % board.Size
	location := player.Location

	log.Info("player moved", "from", oldLocation, "to", location)

	if oldLocation > location {
		// Only happens when the player went past the starting point.
		log.Info("player went past the starting point")

		if err := that.payPlayer(ctx, player, board.Salary()); err != nil {
			return nil, err
		}
	} else if location == board.GoToJailCell {
		log.Info("player goes to jail for landing on the go-to-jail cell")

		if err := that.sendToJail(ctx, player); err != nil {
			return nil, err
		}
	}

	if location == game.Board.IncomeTaxIndex {
		log.Info("player landed on the income tax cell")

		gameOver, err := that.chargePlayer(ctx, game, player, board.IncomeTax())
		if gameOver != nil || err != nil {
			return gameOver, err
		}
	} else if owner := game.CellOwner(location); owner != nil {
		gameOver, err := that.settleRent(ctx, game, player, owner)
		if gameOver != nil || err != nil {
			return gameOver, err
		}
	}

	if err := that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to update player: %w", err)
	}

	return nil, nil
}

// PurchaseStep buys the cell the player is standing on. It fails with
// apperror.ErrFaultyMove when the cell can't be purchased.
func (that *Engine) PurchaseStep(ctx context.Context, game *entity.Game, player *entity.Player) (*GameOver, error) {
	location := player.Location

	if !that.CanBuy(game, player, location) {
		return nil, apperror.ErrFaultyMove
	}

	price, err := board.CellPrice(&game.Board, location)
	if err != nil {
		return nil, fmt.Errorf("failed to price cell: %w", err)
	}

	player.AddPurchasable(location)
	that.logger.Info("player buys cell", "player", player.ID, "cell", location, "price", price)

	// CanBuy guarantees the player can afford the cell, so this charge
	// should never bankrupt them.
	return that.chargePlayer(ctx, game, player, price)
}

// CanBuy reports whether the player may purchase the given cell: it must
// not be one of the fixed cells or the income tax cell, must be owned by
// nobody, and the player must be able to afford it.
func (that *Engine) CanBuy(game *entity.Game, player *entity.Player, location int) bool {
	switch location {
	case board.StartCell, board.JailCell, board.GoToJailCell, game.Board.IncomeTaxIndex:
		return false
	}

	if game.IsCellOwned(location) {
		return false
	}

	price, err := board.CellPrice(&game.Board, location)
	if err != nil {
		return false
	}

	return player.Money >= price
}

// Nuke afflicts the player with a fixed unpayable debt, running the usual
// charge and bankruptcy path. A forced-loss hook, not part of normal play.
func (that *Engine) Nuke(ctx context.Context, game *entity.Game, player *entity.Player) (*GameOver, error) {
	that.logger.Info("player is charged a crippling debt", "player", player.ID, "debt", nukeDebt)

	return that.chargePlayer(ctx, game, player, nukeDebt)
}

// chargePlayer decreases the player's money, persists the player, and runs
// the bankruptcy check.
func (that *Engine) chargePlayer(ctx context.Context, game *entity.Game, player *entity.Player, cost int) (*GameOver, error) {
	oldMoney := player.Money
	player.Money -= cost

	if err := that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to update player: %w", err)
	}

	that.logger.Info("charged player", "player", player.ID, "cost", cost, "from", oldMoney, "to", player.Money)

	return that.defaultCheck(ctx, game, player)
}

func (that *Engine) payPlayer(ctx context.Context, player *entity.Player, amount int) error {
	oldMoney := player.Money
	player.Money += amount

	if err := that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return fmt.Errorf("failed to update player: %w", err)
	}

	that.logger.Info("paid player", "player", player.ID, "amount", amount, "from", oldMoney, "to", player.Money)

	return nil
}

// defaultCheck ends the game if the player's balance went negative. The
// completion date is set and persisted, then every player's final score is
// computed and persisted, so a completed game never lacks scores.
func (that *Engine) defaultCheck(ctx context.Context, game *entity.Game, player *entity.Player) (*GameOver, error) {
	if player.Money >= 0 {
		return nil, nil
	}

	completedAt := that.now()
	game.CompletionDate = &completedAt

	if err := that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	for _, p := range game.Players {
		p.Score = board.Score(&game.Board, p.OwnedPurchasables, p.Money)

		if err := that.playerRepo.CreateOrUpdate(ctx, p); err != nil {
			return nil, fmt.Errorf("failed to update player score: %w", err)
		}
	}

	that.logger.Info("game over", "game", game.ID, "loser", player.ID)

	return &GameOver{Game: game, Loser: player}, nil
}

// settleRent charges the mover the rent of the cell they landed on and pays
// it to the owner. Landing on a cell owned by the mover is a no-op.
func (that *Engine) settleRent(ctx context.Context, game *entity.Game, mover, owner *entity.Player) (*GameOver, error) {
	location := mover.Location

	if owner.ID == mover.ID {
		that.logger.Info("cell is owned by the player themself", "cell", location)
		return nil, nil
	}

	var (
		rent int
		err  error
	)

	if game.Board.IsPort(location) {
		rent, err = board.PortRent(&game.Board, location, owner.PortCount(&game.Board))
	} else {
		rent, err = board.PropertyRent(&game.Board, location)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to compute rent: %w", err)
	}

	that.logger.Info("player landed on an owned cell", "player", mover.ID, "owner", owner.ID, "cell", location, "rent", rent)

	gameOver, err := that.chargePlayer(ctx, game, mover, rent)
	if gameOver != nil || err != nil {
		// The owner is not paid when the rent bankrupts the mover.
		return gameOver, err
	}

	return nil, that.payPlayer(ctx, owner, rent)
}

func (that *Engine) sendToJail(ctx context.Context, player *entity.Player) error {
	player.Location = board.JailCell
	player.RemainingJailTime = jailDuration
	player.SuccessiveDoubles = 0

	if err := that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return fmt.Errorf("failed to update player: %w", err)
	}

	return nil
}
