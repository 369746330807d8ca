package deck

import (
	"errors"
	"fmt"

	uuid "github.com/satori/go.uuid"
)

// Rank represents a rank in a deck of cards.
// NullRank is the rank of a joker.
type Rank int

const (
	NullRank Rank = iota
	Ace
	Two
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
)

var rankNames = []string{"JOKER", "A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}

// Suit represents a suit in a deck of cards.
type Suit int

const (
	Spades Suit = iota
	Hearts
	Diamonds
	Clubs
	JokerSuit
)

var suitNames = []string{"♠", "♥", "♦", "♣", "JOKER"}

var errUnknownName = errors.New("unknown name")

func (r Rank) String() string {
	if r < NullRank || r > King {
		return ""
	}
	return rankNames[r]
}

// Value maps a rank onto its position in a run: A=1 .. K=13. Jokers have no value.
func (r Rank) Value() int {
	return int(r)
}

// IsHigh reports whether the rank is a court card.
func (r Rank) IsHigh() bool {
	return r >= Jack
}

func (r Rank) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Rank) UnmarshalText(text []byte) error {
	for i, name := range rankNames {
		if name == string(text) {
			*r = Rank(i)
			return nil
		}
	}
	return fmt.Errorf("%w: rank %q", errUnknownName, text)
}

func (s Suit) String() string {
	if s < Spades || s > JokerSuit {
		return ""
	}
	return suitNames[s]
}

func (s Suit) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Suit) UnmarshalText(text []byte) error {
	for i, name := range suitNames {
		if name == string(text) {
			*s = Suit(i)
			return nil
		}
	}
	return fmt.Errorf("%w: suit %q", errUnknownName, text)
}

// Card is a single physical card. Two cards with the same rank and suit
// (from different decks) are told apart by ID.
type Card struct {
	ID      string `json:"id"`
	Suit    Suit   `json:"suit"`
	Rank    Rank   `json:"rank"`
	IsJoker bool   `json:"is_joker"`
}

// NewCard constructs a suited card with a fresh ID
func NewCard(rank Rank, suit Suit) Card {
	if rank <= NullRank || rank > King || suit < Spades || suit >= JokerSuit {
		panic(fmt.Sprintf("card out of range: rank %d, suit %d", rank, suit))
	}
	return Card{ID: newID(), Rank: rank, Suit: suit}
}

// NewJoker constructs a joker with a fresh ID
func NewJoker() Card {
	return Card{ID: newID(), Rank: NullRank, Suit: JokerSuit, IsJoker: true}
}

func newID() string {
	return uuid.NewV4().String()
}

// Points is what the card costs a player still holding it when a round ends.
func (c Card) Points() int {
	switch {
	case c.IsJoker:
		return 50
	case c.Rank == Ace:
		return 20
	case c.Rank.IsHigh():
		return 10
	default:
		return c.Rank.Value()
	}
}

func (c Card) String() string {
	if c.IsJoker {
		return "JOKER"
	}
	return c.Rank.String() + c.Suit.String()
}

// HandPoints sums the points of the given cards
func HandPoints(cards []Card) int {
	total := 0
	for _, c := range cards {
		total += c.Points()
	}
	return total
}
