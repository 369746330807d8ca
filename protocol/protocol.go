package protocol

import (
	"errors"
	"fmt"
)

var ErrUnknownName = errors.New("unknown name")

// Cmd represents a command
type Cmd int

const (
	Null Cmd = iota
	// player commands
	StartGame
	KickPlayer
	DrawCard
	DiscardCard
	RequestDiscardCard
	RespondCardRequest
	LayDownMelds
	LayOffCard
	ReplaceJoker
	ReorderHand
	ContinueToNextRound
	// events sent to players
	GameState
	Notification
	Error
	NewJoiner
	PlayerKicked
	GameStarted
	RoundEnded
	GameOver
)

var CmdNames = map[Cmd]string{
	Null:                "null",
	StartGame:           "start_game",
	KickPlayer:          "kick_player",
	DrawCard:            "draw_card",
	DiscardCard:         "discard_card",
	RequestDiscardCard:  "request_discard_card",
	RespondCardRequest:  "respond_card_request",
	LayDownMelds:        "lay_down_melds",
	LayOffCard:          "lay_off_card",
	ReplaceJoker:        "replace_joker",
	ReorderHand:         "reorder_hand",
	ContinueToNextRound: "continue_to_next_round",
	GameState:           "game_state",
	Notification:        "notification",
	Error:               "error",
	NewJoiner:           "new_joiner",
	PlayerKicked:        "player_kicked",
	GameStarted:         "game_started",
	RoundEnded:          "round_ended",
	GameOver:            "game_over",
}

var NameToCmd = map[string]Cmd{
	"null":                   Null,
	"start_game":             StartGame,
	"kick_player":            KickPlayer,
	"draw_card":              DrawCard,
	"discard_card":           DiscardCard,
	"request_discard_card":   RequestDiscardCard,
	"respond_card_request":   RespondCardRequest,
	"lay_down_melds":         LayDownMelds,
	"lay_off_card":           LayOffCard,
	"replace_joker":          ReplaceJoker,
	"reorder_hand":           ReorderHand,
	"continue_to_next_round": ContinueToNextRound,
	"game_state":             GameState,
	"notification":           Notification,
	"error":                  Error,
	"new_joiner":             NewJoiner,
	"player_kicked":          PlayerKicked,
	"game_started":           GameStarted,
	"round_ended":            RoundEnded,
	"game_over":              GameOver,
}

func (c Cmd) String() string {
	return CmdNames[c]
}

func (c Cmd) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Cmd) UnmarshalText(text []byte) error {
	cmd, ok := NameToCmd[string(text)]
	if !ok {
		return fmt.Errorf("%w: command %q", ErrUnknownName, text)
	}
	*c = cmd
	return nil
}

// Phase is the part of a turn the current player is in
type Phase int

const (
	Draw Phase = iota
	Action
)

var phaseNames = map[Phase]string{
	Draw:   "draw",
	Action: "action",
}

func (p Phase) String() string {
	return phaseNames[p]
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(text []byte) error {
	for phase, name := range phaseNames {
		if name == string(text) {
			*p = phase
			return nil
		}
	}
	return fmt.Errorf("%w: phase %q", ErrUnknownName, text)
}

// Pile is where a card is drawn from
type Pile int

// NullPile is what a draw without a pile decodes to
const (
	NullPile Pile = iota
	DeckPile
	DiscardPile
)

var pileNames = map[Pile]string{
	DeckPile:    "deck",
	DiscardPile: "discard",
}

func (p Pile) String() string {
	return pileNames[p]
}

func (p Pile) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Pile) UnmarshalText(text []byte) error {
	for pile, name := range pileNames {
		if name == string(text) {
			*p = pile
			return nil
		}
	}
	return fmt.Errorf("%w: pile %q", ErrUnknownName, text)
}
