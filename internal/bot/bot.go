// Package bot holds the purchase heuristic of the computer player.
package bot

import (
	"math"
	"math/rand"
	"sync"
)

const (
	minProbability = 0.1
	maxProbability = 0.9
)

// Policy decides whether the bot buys the cell it is standing on.
type Policy interface {
	DecideToBuy(currentMoney, cellCost int) bool
}

// One policy instance serves every game; *rand.Rand is not goroutine-safe,
// so the draw is serialized.
type heuristicPolicy struct {
	mu   sync.Mutex
	rand *rand.Rand
}

func NewHeuristicPolicy(rand *rand.Rand) Policy {
	return &heuristicPolicy{rand: rand}
}

// DecideToBuy computes a willingness-to-buy from the money left after the
// purchase relative to the current money, raised to the power of how many
// times over the bot can afford the cell, clamped to [0.1, 0.9]. A single
// uniform draw against that probability makes the call. The bot never buys
// what it can't pay for.
func (that *heuristicPolicy) DecideToBuy(currentMoney, cellCost int) bool {
	if currentMoney < cellCost {
		return false
	}

	current := float64(currentMoney)
	cost := float64(cellCost)

	remainingVsCurrentRatio := (current - cost) / current
	currentVsCostRatio := current / cost

	probabilityToBuy := math.Pow(remainingVsCurrentRatio, currentVsCostRatio)
	probabilityToBuy = math.Min(maxProbability, math.Max(minProbability, probabilityToBuy))

	that.mu.Lock()
	draw := that.rand.Float64()
	that.mu.Unlock()

	return draw < probabilityToBuy
}
