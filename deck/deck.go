package deck

import (
	"math/rand"
	"time"
)

const jokersPerDeck = 2

// Deck represents a pile of face-down cards. Cards are dealt from the end.
type Deck []Card

var rng = rand.New(rand.NewSource(time.Now().UnixNano()))

// New creates numDecks full decks (52 suited cards and 2 jokers each), unshuffled
func New(numDecks int) Deck {
	cards := Deck{}
	for i := 0; i < numDecks; i++ {
		for suit := Spades; suit < JokerSuit; suit++ {
			for rank := Ace; rank <= King; rank++ {
				cards = append(cards, NewCard(rank, suit))
			}
		}
		for j := 0; j < jokersPerDeck; j++ {
			cards = append(cards, NewJoker())
		}
	}
	return cards
}

// NumDecks is how many decks a table of numPlayers plays with
func NumDecks(numPlayers int) int {
	switch {
	case numPlayers <= 4:
		return 2
	case numPlayers <= 7:
		return 3
	default:
		return 4
	}
}

// Shuffle shuffles the deck of cards
func (d *Deck) Shuffle() {
	actualDeck := *d
	rng.Shuffle(len(actualDeck), func(i, j int) {
		actualDeck[i], actualDeck[j] = actualDeck[j], actualDeck[i]
	})
}

// Deal deals n number of cards from the deck, until it is empty
func (d *Deck) Deal(n int) []Card {
	numCardsInDeck := len(*d)
	if n < 0 || n > numCardsInDeck {
		return []Card{}
	}
	startingIndex := numCardsInDeck - n
	subSlice := make([]Card, n)
	copy(subSlice, (*d)[startingIndex:numCardsInDeck])
	*d = (*d)[:startingIndex]
	return subSlice
}

// Draw removes the last card of the deck
func (d *Deck) Draw() (Card, bool) {
	if len(*d) == 0 {
		return Card{}, false
	}
	cards := d.Deal(1)
	return cards[0], true
}

// PutBottom places cards underneath the deck, so they are drawn last
func (d *Deck) PutBottom(cards ...Card) {
	bottom := make(Deck, 0, len(cards)+len(*d))
	bottom = append(bottom, cards...)
	*d = append(bottom, *d...)
}
