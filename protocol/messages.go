package protocol

import (
	"time"

	"github.com/minaorangina/continental/deck"
	"github.com/minaorangina/continental/meld"
)

// Player is a seated player
type Player struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	IsHost   bool   `json:"is_host"`
}

// MeldRequest is a meld a player wants to lay down, by card id
type MeldRequest struct {
	Type    meld.Type `json:"type"`
	CardIDs []string  `json:"card_ids"`
}

// InboundMessage is a message from Player to GameEngine
type InboundMessage struct {
	PlayerID         string        `json:"player_id"`
	Command          Cmd           `json:"command"`
	Pile             Pile          `json:"pile,omitempty"`
	CardID           string        `json:"card_id,omitempty"`
	TargetPlayerID   string        `json:"target_player_id,omitempty"`
	MeldIndex        int           `json:"meld_index"`
	Position         *int          `json:"position,omitempty"`
	JokerIndex       int           `json:"joker_index"`
	NewJokerPosition int           `json:"new_joker_position"`
	Melds            []MeldRequest `json:"melds,omitempty"`
	CardOrder        []string      `json:"card_order,omitempty"`
	Accept           bool          `json:"accept,omitempty"`
}

// OutboundMessage is a message from GameEngine to Player
type OutboundMessage struct {
	PlayerID string     `json:"player_id"`
	Command  Cmd        `json:"command"`
	Message  string     `json:"message,omitempty"`
	Error    string     `json:"error,omitempty"`
	Joiner   *Player    `json:"joiner,omitempty"`
	State    *Snapshot  `json:"state,omitempty"`
	Ranking  []Standing `json:"ranking,omitempty"`
}

// PublicPlayer is what everyone at the table can see about a player
type PublicPlayer struct {
	PlayerID  string      `json:"player_id"`
	Name      string      `json:"name"`
	IsHost    bool        `json:"is_host"`
	Score     int         `json:"score"`
	Warnings  int         `json:"warnings"`
	HandCount int         `json:"hand_count"`
	Melds     []meld.Meld `json:"melds"`
	LaidDown  bool        `json:"has_laid_down"`
}

// DiscardWindow is the state of the window in which players may ask for the discarded card
type DiscardWindow struct {
	Open       bool       `json:"open"`
	Requesters []string   `json:"requesters"`
	Deadline   *time.Time `json:"deadline,omitempty"`
}

// Snapshot is one player's view of the game
type Snapshot struct {
	Round            int              `json:"round"`
	Requirement      meld.Requirement `json:"round_requirements"`
	CurrentPlayerID  string           `json:"current_player_id"`
	Phase            Phase            `json:"turn_phase"`
	HasDrawn         bool             `json:"has_drawn"`
	DeckCount        int              `json:"deck_count"`
	DiscardTop       *deck.Card       `json:"discard_pile_top"`
	Hand             []deck.Card      `json:"my_hand"`
	LaidDown         bool             `json:"has_laid_down"`
	Window           DiscardWindow    `json:"discard_window"`
	FirstDrawOfRound bool             `json:"first_draw_of_round"`
	RoundEnded       bool             `json:"round_ended"`
	RoundWinnerName  string           `json:"round_winner_name,omitempty"`
	GameOver         bool             `json:"game_over"`
	Players          []PublicPlayer   `json:"players"`
}

// Standing is a player's place in the final ranking
type Standing struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
}
