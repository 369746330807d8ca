package game

import (
	"errors"
	"fmt"
	"time"

	"github.com/minaorangina/continental/deck"
	"github.com/minaorangina/continental/meld"
	"github.com/minaorangina/continental/protocol"
)

var (
	ErrTooFewPlayers     = errors.New("minimum of 2 players required")
	ErrTooManyPlayers    = errors.New("maximum of 10 players allowed")
	ErrInvalidGameState  = errors.New("invalid game state")
	ErrUnexpectedCommand = errors.New("unexpected command")
	ErrNotYourTurn       = errors.New("it is not your turn")
	ErrMustDrawFirst     = errors.New("you must draw a card first")
	ErrAlreadyDrawn      = errors.New("you have already drawn this turn")
	ErrAlreadyHasDiscard = errors.New("you already have the discarded card, no need to draw")
	ErrWindowOpen        = errors.New("waiting for requests for the discarded card")
	ErrAlreadyLaidDown   = errors.New("you have already laid down this round")
	ErrMustLayDownFirst  = errors.New("you must lay down your melds first")
	ErrTargetNotLaidDown = errors.New("that player has not laid down yet")
	ErrRoundOver         = errors.New("the round is over")
	ErrGameOver          = errors.New("game is already over")
	ErrRoundInProgress   = errors.New("the round is still in progress")
	ErrEmptyDeck         = errors.New("deck is empty")
	ErrEmptyDiscardPile  = errors.New("discard pile is empty")
	ErrUnknownPile       = errors.New("draw from the deck or the discard pile")
	ErrCardNotInHand     = errors.New("card is not in your hand")
	ErrMeldNotFound      = errors.New("meld not found")
	ErrInvalidPosition   = errors.New("invalid position")
	ErrNotAJoker         = errors.New("that card is not a joker")
	ErrNaturalCardOnly   = errors.New("only a natural card can replace a joker")
	ErrInvalidOrder      = errors.New("card order must contain every card in your hand exactly once")
	ErrUnknownPlayer     = errors.New("unknown player")
	ErrNoMelds           = errors.New("no melds given")
	ErrInvalidMeld       = errors.New("invalid meld")
	ErrRoundRequirement  = errors.New("melds do not meet the round requirement")
	ErrMustGoOut         = errors.New("in the final round you must lay down your whole hand")
	ErrNoWindow          = errors.New("there is no discarded card to ask for")
	ErrOwnDiscard        = errors.New("you cannot ask for your own discard")
	ErrOwnTurn           = errors.New("it is your turn, draw the card yourself")
)

const (
	minPlayers = 2
	maxPlayers = 10

	// DefaultWindowDuration is how long players have to ask for a discarded card
	DefaultWindowDuration = 5 * time.Second

	warningsBeforePenalty = 2
)

// Game plays the rounds of a game of Continental.
// It is not safe for concurrent use.
type Game interface {
	Start(players []protocol.Player) ([]protocol.OutboundMessage, error)
	Receive(msg protocol.InboundMessage) ([]protocol.OutboundMessage, error)
	ResolveDiscardWindow(windowID int) ([]protocol.OutboundMessage, error)
	DiscardWindow() (windowID int, deadline time.Time, open bool)
	RemovePlayer(playerID string) ([]protocol.OutboundMessage, error)
	NextRound() ([]protocol.OutboundMessage, error)
	StateMessage(playerID string) (protocol.OutboundMessage, bool)
	CurrentRound() int
	RoundEnded() bool
	GameOver() bool
	Scores() map[string]int
	Standings() []protocol.Standing
}

type continental struct {
	Round            int
	Deck             deck.Deck
	DiscardPile      []deck.Card
	Hands            map[string][]deck.Card
	Melds            map[string][]meld.Meld
	Players          []protocol.Player
	PlayerScores     map[string]int
	Warnings         map[string]int
	CurrentPlayerID  string
	Phase            protocol.Phase
	HasDrawn         bool
	LaidDown         map[string]bool
	LaidDownTurn     map[string]int // turn in which the player laid down
	SkipDraw         map[string]bool
	FirstDrawOfRound bool
	InitialRequests  []string
	Window           discardWindow
	HasRoundEnded    bool
	RoundWinnerName  string
	gamePlay         GamePlayState
	turn             int
	windowDuration   time.Duration
	now              func() time.Time
}

type ContinentalOpts struct {
	Round            int
	Deck             deck.Deck
	DiscardPile      []deck.Card
	Hands            map[string][]deck.Card
	Melds            map[string][]meld.Meld
	Players          []protocol.Player
	Scores           map[string]int
	Warnings         map[string]int
	CurrentPlayerID  string
	Phase            protocol.Phase
	HasDrawn         bool
	LaidDown         map[string]bool
	FirstDrawOfRound bool
	WindowDuration   time.Duration
	Now              func() time.Time
}

// NewContinental constructs a game of Continental that has not started yet
func NewContinental(windowDuration time.Duration) *continental {
	if windowDuration <= 0 {
		windowDuration = DefaultWindowDuration
	}

	return &continental{
		Hands:          map[string][]deck.Card{},
		Melds:          map[string][]meld.Meld{},
		PlayerScores:   map[string]int{},
		Warnings:       map[string]int{},
		LaidDown:       map[string]bool{},
		LaidDownTurn:   map[string]int{},
		SkipDraw:       map[string]bool{},
		windowDuration: windowDuration,
		now:            time.Now,
	}
}

// ExistingContinental constructs a game already in progress
func ExistingContinental(opts ContinentalOpts) *continental {
	c := NewContinental(opts.WindowDuration)

	c.Round = opts.Round
	if c.Round == 0 {
		c.Round = 1
	}
	c.Deck = opts.Deck
	if c.Deck == nil {
		c.Deck = deck.Deck{}
	}
	c.DiscardPile = opts.DiscardPile
	if c.DiscardPile == nil {
		c.DiscardPile = []deck.Card{}
	}
	c.Players = opts.Players
	c.CurrentPlayerID = opts.CurrentPlayerID
	if c.CurrentPlayerID == "" && len(c.Players) > 0 {
		c.CurrentPlayerID = c.Players[0].PlayerID
	}
	c.Phase = opts.Phase
	c.HasDrawn = opts.HasDrawn
	c.FirstDrawOfRound = opts.FirstDrawOfRound

	for id, hand := range opts.Hands {
		c.Hands[id] = hand
	}
	for id, melds := range opts.Melds {
		c.Melds[id] = melds
	}
	for id, score := range opts.Scores {
		c.PlayerScores[id] = score
	}
	for id, warnings := range opts.Warnings {
		c.Warnings[id] = warnings
	}
	for id, laidDown := range opts.LaidDown {
		c.LaidDown[id] = laidDown
	}
	for _, p := range c.Players {
		if _, ok := c.Hands[p.PlayerID]; !ok {
			c.Hands[p.PlayerID] = []deck.Card{}
		}
		if _, ok := c.PlayerScores[p.PlayerID]; !ok {
			c.PlayerScores[p.PlayerID] = 0
		}
	}

	if opts.Now != nil {
		c.now = opts.Now
	}

	c.gamePlay = gameInProgress
	c.turn = 1

	return c
}

// Start seats the players and deals the first round
func (c *continental) Start(players []protocol.Player) ([]protocol.OutboundMessage, error) {
	if c.gamePlay != gameNotStarted {
		return nil, ErrInvalidGameState
	}
	if len(players) < minPlayers {
		return nil, ErrTooFewPlayers
	}
	if len(players) > maxPlayers {
		return nil, ErrTooManyPlayers
	}

	c.Players = make([]protocol.Player, len(players))
	copy(c.Players, players)
	for _, p := range c.Players {
		c.PlayerScores[p.PlayerID] = 0
	}

	c.Round = 1
	c.dealRound()
	c.gamePlay = gameInProgress

	return c.buildGameStartedMessages(), nil
}

// Receive handles a command from a player
func (c *continental) Receive(msg protocol.InboundMessage) ([]protocol.OutboundMessage, error) {
	if c.gamePlay == gameNotStarted {
		return c.errorResponse(msg.PlayerID, ErrInvalidGameState)
	}
	if _, ok := c.playerIndex(msg.PlayerID); !ok {
		return nil, ErrUnknownPlayer
	}

	switch msg.Command {
	case protocol.DrawCard:
		return c.draw(msg.PlayerID, msg.Pile)
	case protocol.DiscardCard:
		return c.discard(msg.PlayerID, msg.CardID)
	case protocol.RequestDiscardCard:
		return c.requestDiscard(msg.PlayerID)
	case protocol.RespondCardRequest:
		return nil, nil
	case protocol.LayDownMelds:
		return c.layDown(msg.PlayerID, msg.Melds)
	case protocol.LayOffCard:
		return c.layOff(msg.PlayerID, msg.CardID, msg.TargetPlayerID, msg.MeldIndex, msg.Position)
	case protocol.ReplaceJoker:
		return c.replaceJoker(msg.PlayerID, msg.CardID, msg.TargetPlayerID, msg.MeldIndex, msg.JokerIndex, msg.NewJokerPosition)
	case protocol.ReorderHand:
		return c.reorderHand(msg.PlayerID, msg.CardOrder)
	}

	return c.errorResponse(msg.PlayerID, fmt.Errorf("%w: %s", ErrUnexpectedCommand, msg.Command))
}

// DiscardWindow reports the current discard window
func (c *continental) DiscardWindow() (int, time.Time, bool) {
	return c.Window.ID, c.Window.Deadline, c.Window.Open
}

func (c *continental) CurrentRound() int {
	return c.Round
}

func (c *continental) RoundEnded() bool {
	return c.HasRoundEnded
}

func (c *continental) GameOver() bool {
	return c.gamePlay == gameOver
}

// Scores returns a copy of the cumulative scores
func (c *continental) Scores() map[string]int {
	scores := make(map[string]int, len(c.PlayerScores))
	for id, score := range c.PlayerScores {
		scores[id] = score
	}
	return scores
}

// StateMessage builds the game state as seen by one player
func (c *continental) StateMessage(playerID string) (protocol.OutboundMessage, bool) {
	if c.gamePlay == gameNotStarted {
		return protocol.OutboundMessage{}, false
	}
	if _, ok := c.playerIndex(playerID); !ok {
		return protocol.OutboundMessage{}, false
	}
	return c.buildStateMessage(playerID), true
}

// checkLive rejects commands once the round is over
func (c *continental) checkLive() error {
	if c.gamePlay == gameOver {
		return ErrGameOver
	}
	if c.HasRoundEnded {
		return ErrRoundOver
	}
	return nil
}

// checkTurn checks that playerID may act in the current turn
func (c *continental) checkTurn(playerID string) error {
	if err := c.checkLive(); err != nil {
		return err
	}
	if playerID != c.CurrentPlayerID {
		return ErrNotYourTurn
	}
	if c.Window.Open {
		return ErrWindowOpen
	}
	return nil
}

// dealRound deals a fresh deck for the current round and resets everything that lasts one round
func (c *continental) dealRound() {
	req, err := meld.RequirementFor(c.Round)
	if err != nil {
		panic(err)
	}

	c.Deck = deck.New(deck.NumDecks(len(c.Players)))
	c.Deck.Shuffle()

	c.Hands = map[string][]deck.Card{}
	c.Melds = map[string][]meld.Meld{}
	for _, p := range c.Players {
		c.Hands[p.PlayerID] = c.Deck.Deal(req.Cards)
		c.Melds[p.PlayerID] = []meld.Meld{}
		c.Warnings[p.PlayerID] = 0
	}

	first, _ := c.Deck.Draw()
	c.DiscardPile = []deck.Card{first}

	c.LaidDown = map[string]bool{}
	c.LaidDownTurn = map[string]int{}
	c.SkipDraw = map[string]bool{}
	c.InitialRequests = nil
	c.Window.Open = false
	c.Window.Requests = nil
	c.Window.DiscarderID = ""
	c.HasRoundEnded = false
	c.RoundWinnerName = ""

	c.CurrentPlayerID = c.Players[0].PlayerID
	c.Phase = protocol.Draw
	c.HasDrawn = false
	c.FirstDrawOfRound = true
	c.turn++
}

// drawFromDeck takes the top card of the deck. An empty deck is refilled
// from the discard pile, all but its top card.
func (c *continental) drawFromDeck() (deck.Card, bool) {
	if len(c.Deck) == 0 && len(c.DiscardPile) > 1 {
		top := len(c.DiscardPile) - 1
		recycled := make(deck.Deck, top)
		copy(recycled, c.DiscardPile[:top])
		recycled.Shuffle()

		c.Deck = recycled
		c.DiscardPile = []deck.Card{c.DiscardPile[top]}
	}

	return c.Deck.Draw()
}

// advanceTurn hands the turn to playerID
func (c *continental) advanceTurn(playerID string) {
	delete(c.SkipDraw, c.CurrentPlayerID)

	c.CurrentPlayerID = playerID
	c.turn++

	if c.SkipDraw[playerID] {
		c.Phase = protocol.Action
		c.HasDrawn = true
		return
	}

	c.Phase = protocol.Draw
	c.HasDrawn = false
}

// nextSeat returns the id of the player seated after playerID
func (c *continental) nextSeat(playerID string) string {
	idx, ok := c.playerIndex(playerID)
	if !ok || len(c.Players) == 0 {
		return ""
	}
	return c.Players[(idx+1)%len(c.Players)].PlayerID
}

// cardCount counts every card in play
func (c *continental) cardCount() int {
	total := len(c.Deck) + len(c.DiscardPile)
	for _, hand := range c.Hands {
		total += len(hand)
	}
	for _, melds := range c.Melds {
		for _, m := range melds {
			total += len(m.Cards)
		}
	}
	return total
}
