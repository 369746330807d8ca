package store

import (
	"errors"
	"fmt"
	"sync"

	"github.com/minaorangina/continental/engine"
	"github.com/minaorangina/continental/protocol"
)

var (
	ErrUnknownGameID      = errors.New("unknown game ID")
	ErrUnknownPlayerID    = errors.New("unknown player ID")
	ErrGameAlreadyStarted = engine.ErrGameAlreadyStarted
)

func errUnknownGame(gameID string) error {
	return fmt.Errorf("%w: game with id \"%s\" does not exist", ErrUnknownGameID, gameID)
}

type GameStore interface {
	FindGame(gameID string) engine.GameEngine
	FindActiveGame(gameID string) engine.GameEngine
	FindInactiveGame(gameID string) engine.GameEngine
	FindSeatedPlayer(gameID, playerID string) *protocol.Player
	AddGame(game engine.GameEngine) error
	SeatPlayer(gameID, playerID, name string) error
	AddPlayerToGame(gameID string, player engine.Player) error
	RemoveGame(gameID string)
}

// InMemoryGameStore maps game id to game engine
type InMemoryGameStore struct {
	Games map[string]engine.GameEngine
	mu    sync.RWMutex
}

// NewInMemoryGameStore constructs an InMemoryGameStore
func NewInMemoryGameStore() *InMemoryGameStore {
	return &InMemoryGameStore{
		Games: map[string]engine.GameEngine{},
	}
}

func (s *InMemoryGameStore) FindGame(ID string) engine.GameEngine {
	s.mu.RLock()
	defer s.mu.RUnlock()

	game, ok := s.Games[ID]
	if !ok {
		return nil
	}
	return game
}

func (s *InMemoryGameStore) FindActiveGame(ID string) engine.GameEngine {
	game := s.FindGame(ID)
	if game == nil || game.PlayState() == engine.Idle {
		return nil
	}
	return game
}

func (s *InMemoryGameStore) FindInactiveGame(ID string) engine.GameEngine {
	game := s.FindGame(ID)
	if game == nil || game.PlayState() != engine.Idle {
		return nil
	}
	return game
}

// FindSeatedPlayer finds a player seated at the game, started or not
func (s *InMemoryGameStore) FindSeatedPlayer(gameID, playerID string) *protocol.Player {
	game := s.FindGame(gameID)
	if game == nil {
		return nil
	}

	p, ok := game.FindSeated(playerID)
	if !ok {
		return nil
	}
	return &p
}

func (s *InMemoryGameStore) AddGame(game engine.GameEngine) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.Games[game.ID()]; exists {
		return fmt.Errorf("Game with id %s already exists", game.ID())
	}

	s.Games[game.ID()] = game
	return nil
}

// SeatPlayer seats a player at a game that has not started.
// If the target Game does not exist, it will fail.
func (s *InMemoryGameStore) SeatPlayer(gameID, playerID, name string) error {
	game := s.FindGame(gameID)
	if game == nil {
		return errUnknownGame(gameID)
	}

	return game.SeatPlayer(protocol.Player{PlayerID: playerID, Name: name})
}

// AddPlayerToGame connects a seated player
func (s *InMemoryGameStore) AddPlayerToGame(gameID string, player engine.Player) error {
	game := s.FindGame(gameID)
	if game == nil {
		return fmt.Errorf("%w: %s", ErrUnknownGameID, gameID)
	}
	if s.FindSeatedPlayer(gameID, player.ID()) == nil {
		return fmt.Errorf("%w: %s", ErrUnknownPlayerID, player.ID())
	}

	return game.AddPlayer(player)
}

// RemoveGame closes the game and forgets it
func (s *InMemoryGameStore) RemoveGame(gameID string) {
	s.mu.Lock()
	game, ok := s.Games[gameID]
	delete(s.Games, gameID)
	s.mu.Unlock()

	if ok {
		game.Close()
	}
}
