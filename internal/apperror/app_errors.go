package apperror

import "errors"

var (
	ErrNameExists       = errors.New("game with this name already exists")
	ErrNotAMember       = errors.New("user is not a player of this game")
	ErrNotOwner         = errors.New("user is not the owner of this game")
	ErrAlreadyCompleted = errors.New("game is already completed")
	ErrFaultyMove       = errors.New("can not buy cell")
	ErrNotFound         = errors.New("not found")
)
