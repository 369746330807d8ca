package meld

import (
	"errors"
	"fmt"
	"sort"

	"github.com/minaorangina/continental/deck"
)

var (
	ErrSetTooShort   = errors.New("a set needs at least 3 cards")
	ErrRunTooShort   = errors.New("a run needs at least 4 cards")
	ErrOnlyJokers    = errors.New("a meld cannot be made of jokers only")
	ErrJokerMajority = errors.New("there must be more natural cards than jokers")
	ErrMixedRanks    = errors.New("all cards in a set must have the same rank")
	ErrMixedSuits    = errors.New("all cards in a run must have the same suit")
	ErrNotSequence   = errors.New("the cards do not form a sequence")
	ErrUnknownType   = errors.New("unknown meld type")
)

const (
	minSetSize   = 3
	minRunSize   = 4
	ranksInSuit  = 13
	maxEndJokers = 1
)

// Type is the kind of meld
type Type int

const (
	Set Type = iota
	Run
)

var typeNames = map[Type]string{
	Set: "set",
	Run: "run",
}

func (t Type) String() string {
	return typeNames[t]
}

func (t Type) MarshalText() ([]byte, error) {
	name, ok := typeNames[t]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownType, t)
	}
	return []byte(name), nil
}

func (t *Type) UnmarshalText(text []byte) error {
	for typ, name := range typeNames {
		if name == string(text) {
			*t = typ
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownType, text)
}

// Meld is a group of cards laid down on the table.
// The cards of a run are kept in sequence order, jokers included.
type Meld struct {
	Type  Type        `json:"type"`
	Cards []deck.Card `json:"cards"`
}

// Validate checks the meld against the rules for its type
func Validate(m Meld) error {
	switch m.Type {
	case Set:
		return ValidateSet(m.Cards)
	case Run:
		return ValidateRun(m.Cards)
	default:
		return fmt.Errorf("%w: %d", ErrUnknownType, m.Type)
	}
}

func split(cards []deck.Card) (naturals, jokers []deck.Card) {
	for _, c := range cards {
		if c.IsJoker {
			jokers = append(jokers, c)
		} else {
			naturals = append(naturals, c)
		}
	}
	return naturals, jokers
}

func checkJokers(naturals, jokers []deck.Card) error {
	if len(naturals) == 0 {
		return ErrOnlyJokers
	}
	if len(jokers) >= len(naturals) {
		return fmt.Errorf("%w: %d jokers, %d natural cards", ErrJokerMajority, len(jokers), len(naturals))
	}
	return nil
}

// ValidateSet checks that cards form a set: three or more cards of one rank,
// with jokers standing in for the missing ones.
func ValidateSet(cards []deck.Card) error {
	if len(cards) < minSetSize {
		return fmt.Errorf("%w: got %d", ErrSetTooShort, len(cards))
	}

	naturals, jokers := split(cards)
	if err := checkJokers(naturals, jokers); err != nil {
		return err
	}

	rank := naturals[0].Rank
	for _, c := range naturals[1:] {
		if c.Rank != rank {
			return fmt.Errorf("%w: %s and %s", ErrMixedRanks, naturals[0], c)
		}
	}

	return nil
}

// ValidateRun checks that cards form a run: four or more consecutive cards of one suit.
// A run may wrap past the King (Q K A 2) when it holds an Ace and a court card.
// Jokers fill gaps, but never two adjacent ones, and one more may extend the run.
func ValidateRun(cards []deck.Card) error {
	if len(cards) < minRunSize {
		return fmt.Errorf("%w: got %d", ErrRunTooShort, len(cards))
	}

	naturals, jokers := split(cards)
	if err := checkJokers(naturals, jokers); err != nil {
		return err
	}

	suit := naturals[0].Suit
	for _, c := range naturals[1:] {
		if c.Suit != suit {
			return fmt.Errorf("%w: %s and %s", ErrMixedSuits, naturals[0], c)
		}
	}

	if _, ok := fittingMapping(naturals, len(jokers), len(cards)); !ok {
		return ErrNotSequence
	}

	return nil
}

// mapping assigns a position in the run to a natural rank
type mapping func(deck.Rank) int

func linear(r deck.Rank) int {
	return r.Value()
}

// wrapAt moves every rank below pivot past the King
func wrapAt(pivot int) mapping {
	return func(r deck.Rank) int {
		if v := r.Value(); v < pivot {
			return v + ranksInSuit
		}
		return r.Value()
	}
}

func aceHigh(r deck.Rank) int {
	if r == deck.Ace {
		return ranksInSuit + 1
	}
	return r.Value()
}

func canWrap(naturals []deck.Card) bool {
	hasAce, hasHigh := false, false
	for _, c := range naturals {
		if c.Rank == deck.Ace {
			hasAce = true
		}
		if c.Rank.IsHigh() {
			hasHigh = true
		}
	}
	return hasAce && hasHigh
}

// mappings lists the hypotheses tried for a run, linear first
func mappings(naturals []deck.Card) []mapping {
	candidates := []mapping{linear}
	if !canWrap(naturals) {
		return candidates
	}

	values := distinctValues(naturals, linear)
	for _, pivot := range values[1:] {
		candidates = append(candidates, wrapAt(pivot))
	}
	return candidates
}

func distinctValues(naturals []deck.Card, m mapping) []int {
	seen := map[int]bool{}
	values := []int{}
	for _, c := range naturals {
		v := m(c.Rank)
		if !seen[v] {
			seen[v] = true
			values = append(values, v)
		}
	}
	sort.Ints(values)
	return values
}

func fittingMapping(naturals []deck.Card, numJokers, total int) (mapping, bool) {
	for _, m := range mappings(naturals) {
		if fits(naturals, m, numJokers, total) {
			return m, true
		}
	}
	return nil, false
}

func fits(naturals []deck.Card, m mapping, numJokers, total int) bool {
	values := distinctValues(naturals, m)
	if len(values) != len(naturals) {
		return false
	}

	low, high := values[0], values[len(values)-1]
	if high-low+1 > total || total > ranksInSuit {
		return false
	}

	filled := map[int]bool{}
	for _, v := range values {
		filled[v] = true
	}

	gaps := 0
	previousWasGap := false
	for pos := low; pos <= high; pos++ {
		if filled[pos] {
			previousWasGap = false
			continue
		}
		if previousWasGap {
			return false
		}
		gaps++
		previousWasGap = true
	}

	// a joker left over after the gaps extends the high end
	extra := numJokers - gaps
	return extra >= 0 && extra <= maxEndJokers
}

// SortRun puts the cards of a run in sequence order, jokers in the gaps they fill.
// A joker not needed for a gap goes at the end.
func SortRun(cards []deck.Card) []deck.Card {
	naturals, jokers := split(cards)
	if len(naturals) == 0 {
		return cards
	}

	m, ok := fittingMapping(naturals, len(jokers), len(cards))
	if !ok {
		m = linear
		if canWrap(naturals) {
			m = aceHigh
		}
	}

	byPosition := map[int][]deck.Card{}
	for _, c := range naturals {
		byPosition[m(c.Rank)] = append(byPosition[m(c.Rank)], c)
	}
	positions := distinctValues(naturals, m)

	sorted := make([]deck.Card, 0, len(cards))
	var duplicates []deck.Card
	for pos := positions[0]; pos <= positions[len(positions)-1]; pos++ {
		if atPos := byPosition[pos]; len(atPos) > 0 {
			sorted = append(sorted, atPos[0])
			duplicates = append(duplicates, atPos[1:]...)
			continue
		}
		if len(jokers) > 0 {
			sorted = append(sorted, jokers[0])
			jokers = jokers[1:]
		}
	}

	sorted = append(sorted, duplicates...)
	return append(sorted, jokers...)
}
