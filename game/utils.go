package game

import (
	"github.com/minaorangina/continental/deck"
	"github.com/minaorangina/continental/meld"
)

func findCard(cards []deck.Card, id string) (int, bool) {
	for i, c := range cards {
		if c.ID == id {
			return i, true
		}
	}
	return -1, false
}

// removeCardAt returns a new slice without the card at idx
func removeCardAt(cards []deck.Card, idx int) []deck.Card {
	out := make([]deck.Card, 0, len(cards)-1)
	out = append(out, cards[:idx]...)
	return append(out, cards[idx+1:]...)
}

// insertCard returns a new slice with card at position pos
func insertCard(cards []deck.Card, pos int, card deck.Card) []deck.Card {
	out := make([]deck.Card, 0, len(cards)+1)
	out = append(out, cards[:pos]...)
	out = append(out, card)
	return append(out, cards[pos:]...)
}

func copyCards(cards []deck.Card) []deck.Card {
	out := make([]deck.Card, len(cards))
	copy(out, cards)
	return out
}

func copyMelds(melds []meld.Meld) []meld.Meld {
	out := make([]meld.Meld, len(melds))
	for i, m := range melds {
		out[i] = meld.Meld{Type: m.Type, Cards: copyCards(m.Cards)}
	}
	return out
}

func withoutID(ids []string, id string) []string {
	if ids == nil {
		return nil
	}
	out := make([]string, 0, len(ids))
	for _, other := range ids {
		if other != id {
			out = append(out, other)
		}
	}
	return out
}

func (c *continental) playerIndex(playerID string) (int, bool) {
	for i, p := range c.Players {
		if p.PlayerID == playerID {
			return i, true
		}
	}
	return -1, false
}

func (c *continental) playerName(playerID string) string {
	if idx, ok := c.playerIndex(playerID); ok {
		return c.Players[idx].Name
	}
	return ""
}
