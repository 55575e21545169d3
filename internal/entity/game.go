package entity

import "time"

// Game is the state of an ongoing or completed game in an instant. A game
// owns its two players; once the completion date is set the game is
// terminal and must not be mutated further.
type Game struct {
	ID             string      `json:"id"`
	OwnerID        string      `json:"owner_id"`
	Name           string      `json:"name"`
	Turn           int64       `json:"turn"`
	CompletionDate *time.Time  `json:"completion_date,omitempty"`
	Board          BoardConfig `json:"board"`
	Players        []*Player   `json:"players,omitempty"`
}

func NewGame(id, ownerID, name string, board BoardConfig) *Game {
	return &Game{
		ID:      id,
		OwnerID: ownerID,
		Name:    name,
		Board:   board,
	}
}

func (that *Game) IsCompleted() bool {
	return that.CompletionDate != nil
}

func (that *Game) HasPlayerOfUser(userID string) bool {
	return that.PlayerOfUser(userID) != nil
}

// PlayerOfUser returns the player linked to the given user, or nil. The bot
// player is never linked to a user.
func (that *Game) PlayerOfUser(userID string) *Player {
	for _, player := range that.Players {
		if player.UserID != "" && player.UserID == userID {
			return player
		}
	}

	return nil
}

func (that *Game) PlayerByTurnOrder(turnOrder int) *Player {
	for _, player := range that.Players {
		if player.TurnOrder == turnOrder {
			return player
		}
	}

	return nil
}

// CellOwner returns the player owning the given cell, or nil if the cell is
// owned by nobody. Ownership sets of the two players are disjoint.
func (that *Game) CellOwner(idx int) *Player {
	for _, player := range that.Players {
		if player.Owns(idx) {
			return player
		}
	}

	return nil
}

func (that *Game) IsCellOwned(idx int) bool {
	return that.CellOwner(idx) != nil
}
