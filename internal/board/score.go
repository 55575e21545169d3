package board

import "github.com/rocketscienceinc/monopoly-backend/internal/entity"

// Score is a player's net worth at game end: the prices of all owned
// properties and ports plus the remaining money. Owned indices that are
// neither contribute nothing.
func Score(board *entity.BoardConfig, ownedIndices []int, money int) int {
	total := money

	for _, idx := range ownedIndices {
		if price, err := PropertyPrice(board, idx); err == nil {
			total += price
			continue
		}

		if price, err := PortPrice(board, idx); err == nil {
			total += price
		}
	}

	return total
}
