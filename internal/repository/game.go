package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/monopoly-backend/internal/entity"
)

var (
	ErrGameNotFound  = errors.New("game not found")
	ErrGameNameTaken = errors.New("game name already taken")
)

type GameRepository interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	Delete(ctx context.Context, game *entity.Game) error
	ExistsByName(ctx context.Context, name string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]*entity.Game, error)
}

type dbGame struct {
	client *redis.Client
}

func NewGameRepository(client *redis.Client) GameRepository {
	return &dbGame{
		client: client,
	}
}

// CreateOrUpdate stores the game as a JSON blob and maintains the name
// uniqueness index and the per-user membership index alongside it. The name
// is claimed with SETNX before the blob is written, so two concurrent
// creates under the same name cannot both succeed.
func (that *dbGame) CreateOrUpdate(ctx context.Context, game *entity.Game) error {
	claimed, err := that.client.SetNX(ctx, gameNameKey(game.Name), game.ID, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to set game name index: %w", err)
	}

	if !claimed {
		holder, err := that.client.Get(ctx, gameNameKey(game.Name)).Result()
		if err != nil {
			return fmt.Errorf("failed to check game name index: %w", err)
		}

		if holder != game.ID {
			return fmt.Errorf("%w: %s", ErrGameNameTaken, game.Name)
		}
	}

	gameJSON, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("could not marshal game: %w", err)
	}

	if err = that.client.Set(ctx, gameKey(game.ID), gameJSON, 0).Err(); err != nil {
		return fmt.Errorf("failed to set game: %w", err)
	}

	for _, player := range game.Players {
		if player.UserID == "" {
			continue
		}

		if err = that.client.SAdd(ctx, userGamesKey(player.UserID), game.ID).Err(); err != nil {
			return fmt.Errorf("failed to add game to user index: %w", err)
		}
	}

	return nil
}

func (that *dbGame) GetByID(ctx context.Context, id string) (*entity.Game, error) {
	response, err := that.client.Get(ctx, gameKey(id)).Result()

	if errors.Is(err, redis.Nil) {
		return &entity.Game{}, ErrGameNotFound
	}

	if err != nil {
		return &entity.Game{}, fmt.Errorf("failed to get game by id: %w", err)
	}

	var existingGame entity.Game
	if err = json.Unmarshal([]byte(response), &existingGame); err != nil {
		return &entity.Game{}, fmt.Errorf("failed to unmarshal game: %w", err)
	}

	return &existingGame, nil
}

func (that *dbGame) Delete(ctx context.Context, game *entity.Game) error {
	if err := that.client.Del(ctx, gameKey(game.ID)).Err(); err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}

	if err := that.client.Del(ctx, gameNameKey(game.Name)).Err(); err != nil {
		return fmt.Errorf("failed to delete game name index: %w", err)
	}

	for _, player := range game.Players {
		if player.UserID == "" {
			continue
		}

		if err := that.client.SRem(ctx, userGamesKey(player.UserID), game.ID).Err(); err != nil {
			return fmt.Errorf("failed to remove game from user index: %w", err)
		}
	}

	return nil
}

func (that *dbGame) ExistsByName(ctx context.Context, name string) (bool, error) {
	count, err := that.client.Exists(ctx, gameNameKey(name)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check game name: %w", err)
	}

	return count > 0, nil
}

// ListByUser returns every stored game the user is a player of. Games
// missing from storage but still referenced by the index are skipped.
func (that *dbGame) ListByUser(ctx context.Context, userID string) ([]*entity.Game, error) {
	ids, err := that.client.SMembers(ctx, userGamesKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list user games: %w", err)
	}

	games := make([]*entity.Game, 0, len(ids))
	for _, id := range ids {
		game, err := that.GetByID(ctx, id)
		if errors.Is(err, ErrGameNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}

		games = append(games, game)
	}

	return games, nil
}

func gameKey(id string) string {
	return "game:" + id
}

func gameNameKey(name string) string {
	return "game:name:" + name
}

func userGamesKey(userID string) string {
	return "user:" + userID + ":games"
}
