package board

import (
	"math/rand"
	"sync"

	"github.com/rocketscienceinc/monopoly-backend/internal/entity"
)

// CellSequence is the transient output of a layout generator. It is
// consumed once to build a game's BoardConfig.
type CellSequence struct {
	PropertyIndexes []int
	PortIndexes     []int
	IncomeTax       int
}

func (that *CellSequence) BoardConfig() entity.BoardConfig {
	return entity.BoardConfig{
		IncomeTaxIndex:  that.IncomeTax,
		PropertyIndices: that.PropertyIndexes,
		PortIndices:     that.PortIndexes,
	}
}

type Generator interface {
	GenerateCellSequence() CellSequence
}

// One generator serves every game; *rand.Rand is not goroutine-safe, so
// generation is serialized.
type randomGenerator struct {
	mu   sync.Mutex
	rand *rand.Rand
}

func NewRandomGenerator(rand *rand.Rand) Generator {
	return &randomGenerator{rand: rand}
}

// GenerateCellSequence assigns a kind to every non-fixed cell by drawing
// from a shrinking pool of 1 tax, 8 property and 4 port slots. This is a
// biased sequential partition, not a uniform shuffle: earlier cells are
// more likely to receive the single tax slot than later ones. The bias is
// part of the game's behavior; changing the sampling scheme changes the
// board distribution.
func (that *randomGenerator) GenerateCellSequence() CellSequence {
	that.mu.Lock()
	defer that.mu.Unlock()

	sequence := CellSequence{}

	remainingIncomeTax := 1
	remainingProperty := 8
	remainingPort := 4
	total := remainingIncomeTax + remainingProperty + remainingPort

	for i := 1; i < Size; i++ {
		if i == JailCell || i == GoToJailCell {
			continue
		}

		nextCellTypeIndex := that.rand.Intn(total)

		switch {
		case nextCellTypeIndex < remainingIncomeTax:
			sequence.IncomeTax = i
			remainingIncomeTax--
		case nextCellTypeIndex < remainingIncomeTax+remainingProperty:
			sequence.PropertyIndexes = append(sequence.PropertyIndexes, i)
			remainingProperty--
		default:
			sequence.PortIndexes = append(sequence.PortIndexes, i)
			remainingPort--
		}

		total--
	}

	return sequence
}
