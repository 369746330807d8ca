package game

import (
	"testing"

	"github.com/minaorangina/continental/deck"
	utils "github.com/minaorangina/continental/internal"
	"github.com/minaorangina/continental/meld"
	"github.com/minaorangina/continental/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStart(t *testing.T) {
	t.Run("needs between 2 and 10 players", func(t *testing.T) {
		_, err := NewContinental(0).Start(somePlayers(1))
		assert.ErrorIs(t, err, ErrTooFewPlayers)

		_, err = NewContinental(0).Start(somePlayers(11))
		assert.ErrorIs(t, err, ErrTooManyPlayers)
	})

	t.Run("deals the first round", func(t *testing.T) {
		t.Log("Given a new game with three players")
		g := NewContinental(0)

		t.Log("When it starts")
		msgs, err := g.Start(somePlayers(3))
		utils.AssertNoError(t, err)

		t.Log("Then every player is dealt 7 cards")
		for _, p := range g.Players {
			utils.AssertEqual(t, len(g.Hands[p.PlayerID]), 7)
		}

		t.Log("and one card starts the discard pile")
		utils.AssertEqual(t, len(g.DiscardPile), 1)

		t.Log("and the first player must draw")
		utils.AssertEqual(t, g.CurrentPlayerID, "p0")
		utils.AssertEqual(t, g.Phase, protocol.Draw)
		utils.AssertTrue(t, g.FirstDrawOfRound)

		t.Log("and every player is told the game started")
		assert.Len(t, findMessages(msgs, protocol.GameStarted), 3)

		t.Log("and no card is lost")
		assertCardCount(t, g, 2*54)
	})

	t.Run("more players play with more decks", func(t *testing.T) {
		g := NewContinental(0)
		_, err := g.Start(somePlayers(6))
		require.NoError(t, err)
		assertCardCount(t, g, 3*54)
	})

	t.Run("cannot start twice", func(t *testing.T) {
		g := NewContinental(0)
		_, err := g.Start(somePlayers(2))
		require.NoError(t, err)

		_, err = g.Start(somePlayers(2))
		assert.ErrorIs(t, err, ErrInvalidGameState)
	})
}

func TestDraw(t *testing.T) {
	newGame := func() *continental {
		g := NewContinental(0)
		_, err := g.Start(somePlayers(3))
		require.NoError(t, err)
		return g
	}

	t.Run("from the deck", func(t *testing.T) {
		g := newGame()
		deckSize := len(g.Deck)

		_, err := g.Receive(protocol.InboundMessage{PlayerID: "p0", Command: protocol.DrawCard, Pile: protocol.DeckPile})
		utils.AssertNoError(t, err)

		utils.AssertEqual(t, len(g.Hands["p0"]), 8)
		utils.AssertEqual(t, len(g.Deck), deckSize-1)
		utils.AssertEqual(t, g.Phase, protocol.Action)
		utils.AssertTrue(t, g.HasDrawn)
		assert.False(t, g.FirstDrawOfRound)
	})

	t.Run("from the discard pile", func(t *testing.T) {
		g := newGame()
		top := g.DiscardPile[0]

		_, err := g.Receive(protocol.InboundMessage{PlayerID: "p0", Command: protocol.DrawCard, Pile: protocol.DiscardPile})
		utils.AssertNoError(t, err)

		assert.Empty(t, g.DiscardPile)
		assert.Contains(t, g.Hands["p0"], top)
	})

	t.Run("only on your turn", func(t *testing.T) {
		g := newGame()
		msgs, err := g.Receive(protocol.InboundMessage{PlayerID: "p1", Command: protocol.DrawCard})
		assert.ErrorIs(t, err, ErrNotYourTurn)

		t.Log("and the error goes to the offender only")
		require.Len(t, msgs, 1)
		utils.AssertEqual(t, msgs[0].PlayerID, "p1")
		utils.AssertEqual(t, msgs[0].Command, protocol.Error)
	})

	t.Run("only once per turn", func(t *testing.T) {
		g := newGame()
		_, err := g.Receive(protocol.InboundMessage{PlayerID: "p0", Command: protocol.DrawCard, Pile: protocol.DeckPile})
		require.NoError(t, err)

		_, err = g.Receive(protocol.InboundMessage{PlayerID: "p0", Command: protocol.DrawCard, Pile: protocol.DeckPile})
		assert.ErrorIs(t, err, ErrAlreadyDrawn)
	})

	t.Run("the pile must be named", func(t *testing.T) {
		g := newGame()
		deckSize := len(g.Deck)

		_, err := g.Receive(protocol.InboundMessage{PlayerID: "p0", Command: protocol.DrawCard})
		assert.ErrorIs(t, err, ErrUnknownPile)

		t.Log("and nothing is drawn")
		utils.AssertEqual(t, len(g.Deck), deckSize)
		assert.Len(t, g.Hands["p0"], 7)
		assert.False(t, g.HasDrawn)
	})

	t.Run("empty discard pile", func(t *testing.T) {
		g := newGame()
		g.DiscardPile = []deck.Card{}
		_, err := g.Receive(protocol.InboundMessage{PlayerID: "p0", Command: protocol.DrawCard, Pile: protocol.DiscardPile})
		assert.ErrorIs(t, err, ErrEmptyDiscardPile)
	})

	t.Run("an empty deck is refilled from the discard pile", func(t *testing.T) {
		g := newGame()
		total := g.cardCount()
		top := c(deck.Nine, deck.Spades)
		g.DiscardPile = append(g.Deck, top)
		g.Deck = deck.Deck{}

		_, err := g.Receive(protocol.InboundMessage{PlayerID: "p0", Command: protocol.DrawCard, Pile: protocol.DeckPile})
		utils.AssertNoError(t, err)

		t.Log("the top of the discard pile stays put")
		assert.Equal(t, []deck.Card{top}, g.DiscardPile)
		assertCardCount(t, g, total)
	})

	t.Run("nothing left to draw", func(t *testing.T) {
		g := newGame()
		g.Deck = deck.Deck{}

		_, err := g.Receive(protocol.InboundMessage{PlayerID: "p0", Command: protocol.DrawCard, Pile: protocol.DeckPile})
		assert.ErrorIs(t, err, ErrEmptyDeck)
	})

	t.Run("not before the game starts", func(t *testing.T) {
		_, err := NewContinental(0).Receive(protocol.InboundMessage{PlayerID: "p0", Command: protocol.DrawCard})
		assert.ErrorIs(t, err, ErrInvalidGameState)
	})
}

func TestLayDown(t *testing.T) {
	sevens := []deck.Card{c(deck.Seven, deck.Hearts), c(deck.Seven, deck.Diamonds), c(deck.Seven, deck.Clubs)}
	nines := []deck.Card{c(deck.Nine, deck.Spades), c(deck.Nine, deck.Hearts), joker()}
	extra := []deck.Card{c(deck.Two, deck.Clubs), c(deck.King, deck.Spades)}

	hand := func() []deck.Card {
		h := append([]deck.Card{}, sevens...)
		h = append(h, nines...)
		return append(h, extra...)
	}

	layDown := func(groups ...[]deck.Card) protocol.InboundMessage {
		reqs := []protocol.MeldRequest{}
		for _, g := range groups {
			reqs = append(reqs, protocol.MeldRequest{Type: meld.Set, CardIDs: ids(g...)})
		}
		return protocol.InboundMessage{PlayerID: "p0", Command: protocol.LayDownMelds, Melds: reqs}
	}

	t.Run("meets the round requirement", func(t *testing.T) {
		g := gameInAction(3, 1, hand())
		total := g.cardCount()

		_, err := g.Receive(layDown(sevens, nines))
		utils.AssertNoError(t, err)

		utils.AssertTrue(t, g.LaidDown["p0"])
		utils.AssertEqual(t, len(g.Melds["p0"]), 2)
		assert.ElementsMatch(t, extra, g.Hands["p0"])
		assert.False(t, g.HasRoundEnded)
		assertCardCount(t, g, total)
	})

	t.Run("must draw first", func(t *testing.T) {
		g := gameInAction(3, 1, hand())
		g.HasDrawn, g.Phase = false, protocol.Draw

		_, err := g.Receive(layDown(sevens, nines))
		assert.ErrorIs(t, err, ErrMustDrawFirst)
	})

	t.Run("only once per round", func(t *testing.T) {
		g := gameInAction(3, 1, hand())
		g.LaidDown["p0"] = true

		_, err := g.Receive(layDown(sevens, nines))
		assert.ErrorIs(t, err, ErrAlreadyLaidDown)
	})

	t.Run("cards must be in hand", func(t *testing.T) {
		g := gameInAction(3, 1, hand())
		stranger := c(deck.Seven, deck.Spades)

		_, err := g.Receive(layDown([]deck.Card{sevens[0], sevens[1], stranger}, nines))
		assert.ErrorIs(t, err, ErrCardNotInHand)
		utils.AssertEqual(t, g.Warnings["p0"], 0)
	})

	t.Run("a card cannot be used twice", func(t *testing.T) {
		g := gameInAction(3, 1, hand())

		_, err := g.Receive(layDown(sevens, []deck.Card{sevens[0], nines[0], nines[1]}))
		assert.ErrorIs(t, err, ErrCardNotInHand)
		assert.Len(t, g.Hands["p0"], 8)
	})

	t.Run("no melds", func(t *testing.T) {
		g := gameInAction(3, 1, hand())
		_, err := g.Receive(layDown())
		assert.ErrorIs(t, err, ErrNoMelds)
	})

	t.Run("an invalid meld earns a warning, the second one a penalty card", func(t *testing.T) {
		g := gameInAction(3, 1, hand())
		bad := []deck.Card{sevens[0], sevens[1], extra[0]}

		t.Log("When a player lays down an invalid meld")
		msgs, err := g.Receive(layDown(bad, nines))

		t.Log("Then they get a warning")
		assert.ErrorIs(t, err, ErrInvalidMeld)
		utils.AssertEqual(t, g.Warnings["p0"], 1)
		assert.Len(t, g.Hands["p0"], 8)
		assert.NotEmpty(t, findMessages(msgs, protocol.GameState))

		t.Log("When they do it again")
		_, err = g.Receive(layDown(bad, nines))
		assert.ErrorIs(t, err, ErrInvalidMeld)

		t.Log("Then they draw a penalty card and their warnings reset")
		utils.AssertEqual(t, g.Warnings["p0"], 0)
		assert.Len(t, g.Hands["p0"], 9)
		assert.False(t, g.LaidDown["p0"])
	})

	t.Run("missing the round requirement earns a warning", func(t *testing.T) {
		g := gameInAction(3, 1, hand())

		_, err := g.Receive(layDown(sevens))
		assert.ErrorIs(t, err, ErrRoundRequirement)
		utils.AssertEqual(t, g.Warnings["p0"], 1)
	})

	t.Run("runs are stored in order", func(t *testing.T) {
		four, six, seven, j := c(deck.Four, deck.Spades), c(deck.Six, deck.Spades), c(deck.Seven, deck.Spades), joker()
		g := gameInAction(2, 2, append(append([]deck.Card{}, sevens...), seven, j, four, six, extra[0]))

		_, err := g.Receive(protocol.InboundMessage{PlayerID: "p0", Command: protocol.LayDownMelds, Melds: []protocol.MeldRequest{
			{Type: meld.Set, CardIDs: ids(sevens...)},
			{Type: meld.Run, CardIDs: ids(seven, j, four, six)},
		}})
		utils.AssertNoError(t, err)

		assert.Equal(t, []deck.Card{four, j, six, seven}, g.Melds["p0"][1].Cards)
	})

	t.Run("the final round must be cleared in one go", func(t *testing.T) {
		g := gameInAction(2, meld.FinalRound, hand())

		_, err := g.Receive(layDown(sevens, nines))
		assert.ErrorIs(t, err, ErrMustGoOut)
		utils.AssertEqual(t, g.Warnings["p0"], 1)
	})

	t.Run("not while the discard window is open", func(t *testing.T) {
		g := gameInAction(3, 1, hand())
		g.Window.Open = true
		g.Window.DiscarderID = "p0"

		_, err := g.Receive(layDown(sevens, nines))
		assert.ErrorIs(t, err, ErrWindowOpen)
	})
}

func TestLayOff(t *testing.T) {
	setup := func(hand []deck.Card) *continental {
		g := gameInAction(2, 1, hand)
		g.LaidDown["p0"] = true
		g.LaidDown["p1"] = true
		g.Melds["p1"] = []meld.Meld{
			{Type: meld.Set, Cards: []deck.Card{c(deck.Five, deck.Hearts), c(deck.Five, deck.Clubs), c(deck.Five, deck.Spades)}},
			{Type: meld.Run, Cards: []deck.Card{c(deck.Four, deck.Hearts), c(deck.Five, deck.Hearts), c(deck.Six, deck.Hearts), c(deck.Seven, deck.Hearts)}},
		}
		return g
	}
	pos := func(i int) *int { return &i }

	t.Run("onto a set", func(t *testing.T) {
		five, other := c(deck.Five, deck.Diamonds), c(deck.Ace, deck.Spades)
		g := setup([]deck.Card{five, other})

		_, err := g.Receive(protocol.InboundMessage{PlayerID: "p0", Command: protocol.LayOffCard, CardID: five.ID, TargetPlayerID: "p1", MeldIndex: 0})
		utils.AssertNoError(t, err)

		assert.Len(t, g.Melds["p1"][0].Cards, 4)
		assert.Equal(t, []deck.Card{other}, g.Hands["p0"])
	})

	t.Run("at the start of a run", func(t *testing.T) {
		three, other := c(deck.Three, deck.Hearts), c(deck.Ace, deck.Spades)
		g := setup([]deck.Card{three, other})

		_, err := g.Receive(protocol.InboundMessage{PlayerID: "p0", Command: protocol.LayOffCard, CardID: three.ID, TargetPlayerID: "p1", MeldIndex: 1, Position: pos(0)})
		utils.AssertNoError(t, err)

		assert.Equal(t, three, g.Melds["p1"][1].Cards[0])
	})

	t.Run("a run keeps its rank order whatever position is asked for", func(t *testing.T) {
		eight, other := c(deck.Eight, deck.Hearts), c(deck.Ace, deck.Spades)
		g := setup([]deck.Card{eight, other})
		run := append([]deck.Card{}, g.Melds["p1"][1].Cards...)

		t.Log("When the eight is laid off in front of the four")
		_, err := g.Receive(protocol.InboundMessage{PlayerID: "p0", Command: protocol.LayOffCard, CardID: eight.ID, TargetPlayerID: "p1", MeldIndex: 1, Position: pos(0)})
		utils.AssertNoError(t, err)

		t.Log("Then it is stored after the seven")
		assert.Equal(t, append(run, eight), g.Melds["p1"][1].Cards)
	})

	t.Run("a card that does not fit earns a warning", func(t *testing.T) {
		nine, other := c(deck.Nine, deck.Hearts), c(deck.Ace, deck.Spades)
		g := setup([]deck.Card{nine, other})

		_, err := g.Receive(protocol.InboundMessage{PlayerID: "p0", Command: protocol.LayOffCard, CardID: nine.ID, TargetPlayerID: "p1", MeldIndex: 1})
		assert.ErrorIs(t, err, ErrInvalidMeld)
		utils.AssertEqual(t, g.Warnings["p0"], 1)
		assert.Len(t, g.Melds["p1"][1].Cards, 4)
	})

	t.Run("needs the player to have laid down", func(t *testing.T) {
		five := c(deck.Five, deck.Diamonds)
		g := setup([]deck.Card{five})
		g.LaidDown["p0"] = false

		_, err := g.Receive(protocol.InboundMessage{PlayerID: "p0", Command: protocol.LayOffCard, CardID: five.ID, TargetPlayerID: "p1"})
		assert.ErrorIs(t, err, ErrMustLayDownFirst)
	})

	t.Run("needs the target to have laid down", func(t *testing.T) {
		five := c(deck.Five, deck.Diamonds)
		g := setup([]deck.Card{five})
		g.LaidDown["p1"] = false

		_, err := g.Receive(protocol.InboundMessage{PlayerID: "p0", Command: protocol.LayOffCard, CardID: five.ID, TargetPlayerID: "p1"})
		assert.ErrorIs(t, err, ErrTargetNotLaidDown)
	})

	t.Run("unknown meld or position", func(t *testing.T) {
		three := c(deck.Three, deck.Hearts)
		g := setup([]deck.Card{three, joker()})

		_, err := g.Receive(protocol.InboundMessage{PlayerID: "p0", Command: protocol.LayOffCard, CardID: three.ID, TargetPlayerID: "p1", MeldIndex: 5})
		assert.ErrorIs(t, err, ErrMeldNotFound)

		_, err = g.Receive(protocol.InboundMessage{PlayerID: "p0", Command: protocol.LayOffCard, CardID: three.ID, TargetPlayerID: "p1", MeldIndex: 1, Position: pos(9)})
		assert.ErrorIs(t, err, ErrInvalidPosition)
	})

	t.Run("going out by laying off earns no bonus", func(t *testing.T) {
		five := c(deck.Five, deck.Diamonds)
		g := setup([]deck.Card{five})
		g.LaidDownTurn["p0"] = g.turn
		g.Hands["p1"] = []deck.Card{c(deck.King, deck.Hearts)}

		msgs, err := g.Receive(protocol.InboundMessage{PlayerID: "p0", Command: protocol.LayOffCard, CardID: five.ID, TargetPlayerID: "p1"})
		utils.AssertNoError(t, err)

		utils.AssertTrue(t, g.HasRoundEnded)
		utils.AssertEqual(t, g.RoundWinnerName, "Harry")
		utils.AssertEqual(t, g.PlayerScores["p0"], 0)
		utils.AssertEqual(t, g.PlayerScores["p1"], 10)
		assert.Len(t, findMessages(msgs, protocol.RoundEnded), 2)
	})
}

func TestReplaceJoker(t *testing.T) {
	setup := func(hand []deck.Card) (*continental, deck.Card) {
		g := gameInAction(2, 1, hand)
		g.LaidDown["p0"] = true
		g.LaidDown["p1"] = true
		j := joker()
		g.Melds["p1"] = []meld.Meld{
			{Type: meld.Run, Cards: []deck.Card{c(deck.Four, deck.Hearts), j, c(deck.Six, deck.Hearts), c(deck.Seven, deck.Hearts)}},
		}
		return g, j
	}

	replace := func(card deck.Card, jokerIndex, newPos int) protocol.InboundMessage {
		return protocol.InboundMessage{
			PlayerID:         "p0",
			Command:          protocol.ReplaceJoker,
			CardID:           card.ID,
			TargetPlayerID:   "p1",
			MeldIndex:        0,
			JokerIndex:       jokerIndex,
			NewJokerPosition: newPos,
		}
	}

	t.Run("swaps in the natural card and moves the joker", func(t *testing.T) {
		five, other := c(deck.Five, deck.Hearts), c(deck.Ace, deck.Clubs)
		g, j := setup([]deck.Card{five, other})
		total := g.cardCount()

		_, err := g.Receive(replace(five, 1, 4))
		utils.AssertNoError(t, err)

		cards := g.Melds["p1"][0].Cards
		assert.Len(t, cards, 5)
		assert.Equal(t, five, cards[1])
		assert.Equal(t, j, cards[4])
		assert.Equal(t, []deck.Card{other}, g.Hands["p0"])
		assertCardCount(t, g, total)
	})

	t.Run("the run stays in rank order wherever the joker is put", func(t *testing.T) {
		five, other := c(deck.Five, deck.Hearts), c(deck.Ace, deck.Clubs)
		g, j := setup([]deck.Card{five, other})
		four, six, seven := g.Melds["p1"][0].Cards[0], g.Melds["p1"][0].Cards[2], g.Melds["p1"][0].Cards[3]

		_, err := g.Receive(replace(five, 1, 2))
		utils.AssertNoError(t, err)

		assert.Equal(t, []deck.Card{four, five, six, seven, j}, g.Melds["p1"][0].Cards)
	})

	t.Run("a card that does not fit changes nothing", func(t *testing.T) {
		nine := c(deck.Nine, deck.Hearts)
		g, _ := setup([]deck.Card{nine})
		before := copyMelds(g.Melds["p1"])

		_, err := g.Receive(replace(nine, 1, 4))
		assert.ErrorIs(t, err, ErrInvalidMeld)
		assert.Equal(t, before, g.Melds["p1"])
		utils.AssertEqual(t, g.Warnings["p0"], 0)
	})

	t.Run("the joker must go somewhere in the meld", func(t *testing.T) {
		five := c(deck.Five, deck.Hearts)
		g, _ := setup([]deck.Card{five})

		_, err := g.Receive(replace(five, 1, 7))
		assert.ErrorIs(t, err, ErrInvalidPosition)
		assert.Len(t, g.Melds["p1"][0].Cards, 4)
		assert.Len(t, g.Hands["p0"], 1)
	})

	t.Run("the target must be a joker", func(t *testing.T) {
		five := c(deck.Five, deck.Hearts)
		g, _ := setup([]deck.Card{five})

		_, err := g.Receive(replace(five, 0, 4))
		assert.ErrorIs(t, err, ErrNotAJoker)
	})

	t.Run("a joker cannot replace a joker", func(t *testing.T) {
		mine := joker()
		g, _ := setup([]deck.Card{mine})

		_, err := g.Receive(replace(mine, 1, 4))
		assert.ErrorIs(t, err, ErrNaturalCardOnly)
	})
}

func TestReorderHand(t *testing.T) {
	a, b, d := c(deck.Two, deck.Hearts), c(deck.Three, deck.Hearts), c(deck.Four, deck.Hearts)

	t.Run("any player, any time", func(t *testing.T) {
		g := gameInAction(2, 1, []deck.Card{a, b})
		g.Hands["p1"] = []deck.Card{a, b, d}

		msgs, err := g.Receive(protocol.InboundMessage{PlayerID: "p1", Command: protocol.ReorderHand, CardOrder: ids(d, a, b)})
		utils.AssertNoError(t, err)

		assert.Equal(t, []deck.Card{d, a, b}, g.Hands["p1"])
		require.Len(t, msgs, 1)
		utils.AssertEqual(t, msgs[0].PlayerID, "p1")
	})

	t.Run("must be a permutation of the hand", func(t *testing.T) {
		g := gameInAction(2, 1, []deck.Card{a, b, d})

		_, err := g.Receive(protocol.InboundMessage{PlayerID: "p0", Command: protocol.ReorderHand, CardOrder: ids(a, b)})
		assert.ErrorIs(t, err, ErrInvalidOrder)

		_, err = g.Receive(protocol.InboundMessage{PlayerID: "p0", Command: protocol.ReorderHand, CardOrder: ids(a, a, b)})
		assert.ErrorIs(t, err, ErrInvalidOrder)

		assert.Equal(t, []deck.Card{a, b, d}, g.Hands["p0"])
	})
}

func TestUnknownCommands(t *testing.T) {
	g := gameInAction(2, 1, []deck.Card{c(deck.Two, deck.Hearts)})

	_, err := g.Receive(protocol.InboundMessage{PlayerID: "p0", Command: protocol.StartGame})
	assert.ErrorIs(t, err, ErrUnexpectedCommand)

	_, err = g.Receive(protocol.InboundMessage{PlayerID: "stranger", Command: protocol.DrawCard})
	assert.ErrorIs(t, err, ErrUnknownPlayer)

	msgs, err := g.Receive(protocol.InboundMessage{PlayerID: "p1", Command: protocol.RespondCardRequest, Accept: true})
	assert.NoError(t, err)
	assert.Empty(t, msgs)
}
