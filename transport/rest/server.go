package rest

import (
	"fmt"
	"net/http"
	"time"
)

func Start(port string, handlers Handlers) error {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ping", handlers.Ping)
	mux.HandleFunc("POST /api/game", handlers.CreateGame)
	mux.HandleFunc("GET /api/game", handlers.ListGames)
	mux.HandleFunc("GET /api/game/{id}", handlers.GetGame)
	mux.HandleFunc("DELETE /api/game/{id}", handlers.DeleteGame)
	mux.HandleFunc("POST /api/game/{id}/interact", handlers.Interact)
	mux.HandleFunc("POST /api/game/{id}/nuke", handlers.Nuke)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	if err := srv.ListenAndServe(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
