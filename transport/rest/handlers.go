// Package rest is the thin HTTP surface over the game core. It only
// decodes requests, resolves the caller, and serializes what the core
// returns; authentication itself is handled upstream.
package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rocketscienceinc/monopoly-backend/internal/apperror"
	"github.com/rocketscienceinc/monopoly-backend/internal/engine"
	"github.com/rocketscienceinc/monopoly-backend/internal/entity"
	"github.com/rocketscienceinc/monopoly-backend/internal/repository"
)

// userHeader carries the caller's user id resolved by the upstream
// authentication proxy.
const userHeader = "X-User-ID"

type Handlers interface {
	Ping(w http.ResponseWriter, r *http.Request)

	CreateGame(w http.ResponseWriter, r *http.Request)
	GetGame(w http.ResponseWriter, r *http.Request)
	DeleteGame(w http.ResponseWriter, r *http.Request)
	ListGames(w http.ResponseWriter, r *http.Request)
	Interact(w http.ResponseWriter, r *http.Request)
	Nuke(w http.ResponseWriter, r *http.Request)
}

type gameManager interface {
	CreateGame(ctx context.Context, ownerID, name string) (*entity.Game, error)
	GetGame(ctx context.Context, userID, gameID string) (*entity.Game, error)
	DeleteGame(ctx context.Context, userID, gameID string) error
	ListAvailableGames(ctx context.Context, userID string) ([]*entity.Game, error)
	Interact(ctx context.Context, userID, gameID string, buy bool) (*entity.Game, *engine.GameOver, error)
	Nuke(ctx context.Context, userID, gameID string, targetOrder int) (*entity.Game, *engine.GameOver, error)
}

// userResolver is the account/identity collaborator: it maps the id the
// upstream proxy authenticated to a known account.
type userResolver interface {
	FindByID(ctx context.Context, id string) (*entity.User, error)
}

type handlers struct {
	gameManager gameManager
	users       userResolver
}

func NewHandlers(gameManager gameManager, users userResolver) Handlers {
	return &handlers{
		gameManager: gameManager,
		users:       users,
	}
}

func (that *handlers) Ping(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("pong"))
}

type createGameRequest struct {
	Name string `json:"name"`
}

type interactRequest struct {
	Buy bool `json:"buy"`
}

type nukeRequest struct {
	TargetOrder int `json:"target_order"`
}

type gameResponse struct {
	Game     *entity.Game      `json:"game,omitempty"`
	Games    []*entity.Game    `json:"games,omitempty"`
	GameOver *gameOverResponse `json:"game_over,omitempty"`
	Error    string            `json:"error,omitempty"`
}

type gameOverResponse struct {
	LoserID string `json:"loser_id"`
}

func (that *handlers) CreateGame(w http.ResponseWriter, r *http.Request) {
	userID, ok := that.caller(w, r)
	if !ok {
		return
	}

	var req createGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "game name is required")
		return
	}

	game, err := that.gameManager.CreateGame(r.Context(), userID, req.Name)
	if err != nil {
		writeCoreError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, gameResponse{Game: game})
}

func (that *handlers) GetGame(w http.ResponseWriter, r *http.Request) {
	userID, ok := that.caller(w, r)
	if !ok {
		return
	}

	game, err := that.gameManager.GetGame(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeCoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, gameResponse{Game: game})
}

func (that *handlers) DeleteGame(w http.ResponseWriter, r *http.Request) {
	userID, ok := that.caller(w, r)
	if !ok {
		return
	}

	if err := that.gameManager.DeleteGame(r.Context(), userID, r.PathValue("id")); err != nil {
		writeCoreError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (that *handlers) ListGames(w http.ResponseWriter, r *http.Request) {
	userID, ok := that.caller(w, r)
	if !ok {
		return
	}

	games, err := that.gameManager.ListAvailableGames(r.Context(), userID)
	if err != nil {
		writeCoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, gameResponse{Games: games})
}

func (that *handlers) Interact(w http.ResponseWriter, r *http.Request) {
	userID, ok := that.caller(w, r)
	if !ok {
		return
	}

	var req interactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	game, gameOver, err := that.gameManager.Interact(r.Context(), userID, r.PathValue("id"), req.Buy)
	if err != nil {
		writeCoreError(w, err)
		return
	}

	writeOutcome(w, game, gameOver)
}

func (that *handlers) Nuke(w http.ResponseWriter, r *http.Request) {
	userID, ok := that.caller(w, r)
	if !ok {
		return
	}

	var req nukeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	game, gameOver, err := that.gameManager.Nuke(r.Context(), userID, r.PathValue("id"), req.TargetOrder)
	if err != nil {
		writeCoreError(w, err)
		return
	}

	writeOutcome(w, game, gameOver)
}

func (that *handlers) caller(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := r.Header.Get(userHeader)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "missing user identity")
		return "", false
	}

	user, err := that.users.FindByID(r.Context(), userID)
	if errors.Is(err, apperror.ErrNotFound) {
		writeError(w, http.StatusUnauthorized, "unknown user")
		return "", false
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return "", false
	}

	return user.ID, true
}

func writeOutcome(w http.ResponseWriter, game *entity.Game, gameOver *engine.GameOver) {
	response := gameResponse{Game: game}
	if gameOver != nil {
		response.Game = gameOver.Game
		response.GameOver = &gameOverResponse{LoserID: gameOver.Loser.ID}
	}

	writeJSON(w, http.StatusOK, response)
}

func writeCoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperror.ErrNameExists), errors.Is(err, apperror.ErrAlreadyCompleted):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, apperror.ErrNotAMember), errors.Is(err, apperror.ErrNotOwner):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, apperror.ErrFaultyMove):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrGameNotFound), errors.Is(err, apperror.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, gameResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
