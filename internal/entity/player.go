package entity

const (
	// Turn orders are a fixed role assignment: 0 is the human, 1 is the bot.
	HumanTurnOrder = 0
	BotTurnOrder   = 1
)

// Player is a user's in-game state for one particular game, not the account
// itself. The bot player has no linked user.
type Player struct {
	ID                string `json:"id"`
	UserID            string `json:"user_id,omitempty"`
	GameID            string `json:"game_id"`
	Money             int    `json:"money"`
	Location          int    `json:"location"`
	RemainingJailTime int    `json:"remaining_jail_time"`
	Score             int    `json:"score"`
	SuccessiveDoubles int    `json:"successive_doubles"`
	TurnOrder         int    `json:"turn_order"`
	LastDice          [2]int `json:"last_dice"`
	OwnedPurchasables []int  `json:"owned_purchasables"`
}

func (that *Player) IsBot() bool {
	return that.TurnOrder == BotTurnOrder
}

func (that *Player) Owns(idx int) bool {
	for _, owned := range that.OwnedPurchasables {
		if owned == idx {
			return true
		}
	}

	return false
}

// AddPurchasable records ownership of a cell. Adding an already owned cell
// is a no-op, so the list keeps set semantics.
func (that *Player) AddPurchasable(idx int) {
	if that.Owns(idx) {
		return
	}

	that.OwnedPurchasables = append(that.OwnedPurchasables, idx)
}

// PortCount returns how many of the player's purchasables are ports.
func (that *Player) PortCount(board *BoardConfig) int {
	count := 0
	for _, owned := range that.OwnedPurchasables {
		if board.IsPort(owned) {
			count++
		}
	}

	return count
}
