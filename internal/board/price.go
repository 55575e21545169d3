// Package board holds the pure rules of the game table: the fixed cell
// layout constants, the procedural layout generator, the price/rent oracle
// and the score calculator. Nothing in this package touches storage.
package board

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/monopoly-backend/internal/entity"
)

const (
	Size = 16

	StartCell    = 0
	JailCell     = 4
	GoToJailCell = 12

	portPrice = 250
	incomeTax = 50
	salary    = 100
)

var ErrInvalidCellKind = errors.New("cell is not of the expected kind")

// PropertyPrice returns the price of a property cell. The formula is
// 100 + 50 * POSITION, where POSITION is the cell's 0-based position in the
// board's property list.
func PropertyPrice(board *entity.BoardConfig, idx int) (int, error) {
	position := board.PropertyPosition(idx)
	if position < 0 {
		return 0, fmt.Errorf("%w: cell %d is not a property", ErrInvalidCellKind, idx)
	}

	return 100 + 50*position, nil
}

// PortPrice returns the price of a port cell, which is flat.
func PortPrice(board *entity.BoardConfig, idx int) (int, error) {
	if !board.IsPort(idx) {
		return 0, fmt.Errorf("%w: cell %d is not a port", ErrInvalidCellKind, idx)
	}

	return portPrice, nil
}

func IncomeTax() int {
	return incomeTax
}

// Salary is the amount a player collects for completing a full tour of the
// board.
func Salary() int {
	return salary
}

// CellPrice returns the price of a purchasable cell, dispatching on whether
// the cell is a port or a property.
func CellPrice(board *entity.BoardConfig, idx int) (int, error) {
	if board.IsPort(idx) {
		return PortPrice(board, idx)
	}

	if board.IsProperty(idx) {
		return PropertyPrice(board, idx)
	}

	return 0, fmt.Errorf("%w: cell %d is neither a port nor a property", ErrInvalidCellKind, idx)
}

// PropertyRent is a tenth of the property price, truncated.
func PropertyRent(board *entity.BoardConfig, idx int) (int, error) {
	price, err := PropertyPrice(board, idx)
	if err != nil {
		return 0, err
	}

	return price / 10, nil
}

// PortRent scales with the number of ports the owner holds. The division
// happens before the multiplication; the rent is (PRICE / 10) * COUNT, not
// PRICE * COUNT / 10.
func PortRent(board *entity.BoardConfig, idx, ownedPortCount int) (int, error) {
	price, err := PortPrice(board, idx)
	if err != nil {
		return 0, err
	}

	return price / 10 * ownedPortCount, nil
}
