package game

import (
	"fmt"
	"testing"
	"time"

	"github.com/minaorangina/continental/deck"
	"github.com/minaorangina/continental/protocol"
)

func c(rank deck.Rank, suit deck.Suit) deck.Card {
	return deck.NewCard(rank, suit)
}

func joker() deck.Card {
	return deck.NewJoker()
}

func ids(cards ...deck.Card) []string {
	out := []string{}
	for _, card := range cards {
		out = append(out, card.ID)
	}
	return out
}

func somePlayers(n int) []protocol.Player {
	names := []string{"Harry", "Sally", "Hermione", "Ron", "Luna", "Neville", "Ginny", "Fred", "George", "Percy", "Bill"}
	ps := []protocol.Player{}
	for i := 0; i < n; i++ {
		ps = append(ps, protocol.Player{PlayerID: fmt.Sprintf("p%d", i), Name: names[i], IsHost: i == 0})
	}
	return ps
}

var fixedNow = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// gameInAction returns a game where p0 has drawn and holds hand
func gameInAction(numPlayers, round int, hand []deck.Card) *continental {
	hands := map[string][]deck.Card{"p0": hand}
	for i := 1; i < numPlayers; i++ {
		hands[fmt.Sprintf("p%d", i)] = []deck.Card{c(deck.Two, deck.Clubs), c(deck.Three, deck.Clubs)}
	}

	return ExistingContinental(ContinentalOpts{
		Round:           round,
		Deck:            deck.New(1),
		DiscardPile:     []deck.Card{c(deck.Eight, deck.Diamonds)},
		Hands:           hands,
		Players:         somePlayers(numPlayers),
		CurrentPlayerID: "p0",
		Phase:           protocol.Action,
		HasDrawn:        true,
		Now:             func() time.Time { return fixedNow },
	})
}

func findMessages(msgs []protocol.OutboundMessage, cmd protocol.Cmd) []protocol.OutboundMessage {
	found := []protocol.OutboundMessage{}
	for _, m := range msgs {
		if m.Command == cmd {
			found = append(found, m)
		}
	}
	return found
}

func assertCardCount(t *testing.T, g *continental, want int) {
	t.Helper()
	if got := g.cardCount(); got != want {
		t.Fatalf("card count: got %d, want %d", got, want)
	}
}
