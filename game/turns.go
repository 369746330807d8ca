package game

import (
	"fmt"

	"github.com/minaorangina/continental/deck"
	"github.com/minaorangina/continental/meld"
	"github.com/minaorangina/continental/protocol"
)

func (c *continental) draw(playerID string, pile protocol.Pile) ([]protocol.OutboundMessage, error) {
	if err := c.checkTurn(playerID); err != nil {
		return c.errorResponse(playerID, err)
	}
	if c.SkipDraw[playerID] {
		return c.errorResponse(playerID, ErrAlreadyHasDiscard)
	}
	if c.Phase != protocol.Draw || c.HasDrawn {
		return c.errorResponse(playerID, ErrAlreadyDrawn)
	}

	name := c.playerName(playerID)
	msgs := []protocol.OutboundMessage{}

	switch pile {
	case protocol.DeckPile:
		card, ok := c.drawFromDeck()
		if !ok {
			return c.errorResponse(playerID, ErrEmptyDeck)
		}
		c.Hands[playerID] = append(c.Hands[playerID], card)
		msgs = append(msgs, c.buildNotificationMessages(fmt.Sprintf("%s drew from the deck", name))...)

		if c.FirstDrawOfRound {
			msgs = append(msgs, c.resolveInitialRequests()...)
		}

	case protocol.DiscardPile:
		if len(c.DiscardPile) == 0 {
			return c.errorResponse(playerID, ErrEmptyDiscardPile)
		}
		top := len(c.DiscardPile) - 1
		c.Hands[playerID] = append(c.Hands[playerID], c.DiscardPile[top])
		c.DiscardPile = c.DiscardPile[:top]
		msgs = append(msgs, c.buildNotificationMessages(fmt.Sprintf("%s drew from the discard pile", name))...)

		if c.FirstDrawOfRound {
			c.FirstDrawOfRound = false
			if len(c.InitialRequests) > 0 {
				msgs = append(msgs, c.buildNotificationMessages("Requests for the discarded card were cancelled")...)
			}
			c.InitialRequests = nil
		}

	default:
		return c.errorResponse(playerID, fmt.Errorf("%w: got %q", ErrUnknownPile, pile))
	}

	c.HasDrawn = true
	c.Phase = protocol.Action

	return append(msgs, c.buildStateMessages()...), nil
}

func (c *continental) discard(playerID, cardID string) ([]protocol.OutboundMessage, error) {
	if err := c.checkTurn(playerID); err != nil {
		return c.errorResponse(playerID, err)
	}
	if !c.HasDrawn {
		return c.errorResponse(playerID, ErrMustDrawFirst)
	}

	hand := c.Hands[playerID]
	idx, ok := findCard(hand, cardID)
	if !ok {
		return c.errorResponse(playerID, ErrCardNotInHand)
	}

	card := hand[idx]
	c.Hands[playerID] = removeCardAt(hand, idx)
	c.DiscardPile = append(c.DiscardPile, card)

	msgs := c.buildNotificationMessages(fmt.Sprintf("%s discarded %s", c.playerName(playerID), card))

	if len(c.Hands[playerID]) == 0 {
		// going out by discarding only earns the bonus on the turn the player laid down
		bonus := c.LaidDown[playerID] && c.LaidDownTurn[playerID] == c.turn
		return append(msgs, c.endRound(playerID, bonus)...), nil
	}

	c.Window = discardWindow{
		ID:          c.Window.ID + 1,
		Open:        true,
		DiscarderID: playerID,
		Requests:    []string{},
		Deadline:    c.now().Add(c.windowDuration),
	}

	return append(msgs, c.buildStateMessages()...), nil
}

func (c *continental) layDown(playerID string, requests []protocol.MeldRequest) ([]protocol.OutboundMessage, error) {
	if err := c.checkTurn(playerID); err != nil {
		return c.errorResponse(playerID, err)
	}
	if !c.HasDrawn {
		return c.errorResponse(playerID, ErrMustDrawFirst)
	}
	if c.LaidDown[playerID] {
		return c.errorResponse(playerID, ErrAlreadyLaidDown)
	}
	if len(requests) == 0 {
		return c.errorResponse(playerID, ErrNoMelds)
	}

	hand := c.Hands[playerID]
	used := map[string]bool{}
	melds := make([]meld.Meld, 0, len(requests))

	for _, req := range requests {
		m := meld.Meld{Type: req.Type, Cards: make([]deck.Card, 0, len(req.CardIDs))}
		for _, id := range req.CardIDs {
			idx, ok := findCard(hand, id)
			if !ok || used[id] {
				return c.errorResponse(playerID, fmt.Errorf("%w: %s", ErrCardNotInHand, id))
			}
			used[id] = true
			m.Cards = append(m.Cards, hand[idx])
		}
		melds = append(melds, m)
	}

	for i, m := range melds {
		if err := meld.Validate(m); err != nil {
			return c.warn(playerID, fmt.Errorf("%w: %s %d: %v", ErrInvalidMeld, m.Type, i+1, err))
		}
	}

	if err := meld.ValidateGroup(melds, c.Round); err != nil {
		return c.warn(playerID, fmt.Errorf("%w: %v", ErrRoundRequirement, err))
	}

	if c.Round == meld.FinalRound && len(used) != len(hand) {
		return c.warn(playerID, ErrMustGoOut)
	}

	for i := range melds {
		melds[i].Cards = inSequence(melds[i])
	}

	remaining := make([]deck.Card, 0, len(hand)-len(used))
	for _, card := range hand {
		if !used[card.ID] {
			remaining = append(remaining, card)
		}
	}

	c.Hands[playerID] = remaining
	c.Melds[playerID] = melds
	c.LaidDown[playerID] = true
	c.LaidDownTurn[playerID] = c.turn

	msgs := c.buildNotificationMessages(fmt.Sprintf("%s laid down their melds", c.playerName(playerID)))

	if len(remaining) == 0 {
		return append(msgs, c.endRound(playerID, true)...), nil
	}

	msgs = append(msgs, c.buildPrivateNotification(playerID, "Now discard a card to end your turn"))
	return append(msgs, c.buildStateMessages()...), nil
}

func (c *continental) layOff(playerID, cardID, targetID string, meldIndex int, position *int) ([]protocol.OutboundMessage, error) {
	if err := c.checkTurn(playerID); err != nil {
		return c.errorResponse(playerID, err)
	}
	if !c.HasDrawn {
		return c.errorResponse(playerID, ErrMustDrawFirst)
	}
	if !c.LaidDown[playerID] {
		return c.errorResponse(playerID, ErrMustLayDownFirst)
	}
	if _, ok := c.playerIndex(targetID); !ok {
		return c.errorResponse(playerID, ErrUnknownPlayer)
	}
	if !c.LaidDown[targetID] {
		return c.errorResponse(playerID, ErrTargetNotLaidDown)
	}

	hand := c.Hands[playerID]
	idx, ok := findCard(hand, cardID)
	if !ok {
		return c.errorResponse(playerID, ErrCardNotInHand)
	}

	targetMelds := c.Melds[targetID]
	if meldIndex < 0 || meldIndex >= len(targetMelds) {
		return c.errorResponse(playerID, ErrMeldNotFound)
	}
	target := targetMelds[meldIndex]

	var candidate []deck.Card
	if position != nil && target.Type == meld.Run {
		if *position < 0 || *position > len(target.Cards) {
			return c.errorResponse(playerID, ErrInvalidPosition)
		}
		candidate = insertCard(target.Cards, *position, hand[idx])
	} else {
		candidate = insertCard(target.Cards, len(target.Cards), hand[idx])
	}

	if err := meld.Validate(meld.Meld{Type: target.Type, Cards: candidate}); err != nil {
		return c.warn(playerID, fmt.Errorf("%w: %v", ErrInvalidMeld, err))
	}

	targetMelds[meldIndex].Cards = inSequence(meld.Meld{Type: target.Type, Cards: candidate})
	c.Hands[playerID] = removeCardAt(hand, idx)

	msgs := c.buildNotificationMessages(fmt.Sprintf("%s laid off a card on %s's meld", c.playerName(playerID), c.playerName(targetID)))

	if len(c.Hands[playerID]) == 0 {
		return append(msgs, c.endRound(playerID, false)...), nil
	}

	return append(msgs, c.buildStateMessages()...), nil
}

func (c *continental) replaceJoker(playerID, cardID, targetID string, meldIndex, jokerIndex, newJokerPosition int) ([]protocol.OutboundMessage, error) {
	if err := c.checkTurn(playerID); err != nil {
		return c.errorResponse(playerID, err)
	}
	if !c.HasDrawn {
		return c.errorResponse(playerID, ErrMustDrawFirst)
	}
	if !c.LaidDown[playerID] {
		return c.errorResponse(playerID, ErrMustLayDownFirst)
	}
	if _, ok := c.playerIndex(targetID); !ok {
		return c.errorResponse(playerID, ErrUnknownPlayer)
	}

	hand := c.Hands[playerID]
	idx, ok := findCard(hand, cardID)
	if !ok {
		return c.errorResponse(playerID, ErrCardNotInHand)
	}
	card := hand[idx]
	if card.IsJoker {
		return c.errorResponse(playerID, ErrNaturalCardOnly)
	}

	targetMelds := c.Melds[targetID]
	if meldIndex < 0 || meldIndex >= len(targetMelds) {
		return c.errorResponse(playerID, ErrMeldNotFound)
	}
	target := targetMelds[meldIndex]

	if jokerIndex < 0 || jokerIndex >= len(target.Cards) {
		return c.errorResponse(playerID, ErrInvalidPosition)
	}
	joker := target.Cards[jokerIndex]
	if !joker.IsJoker {
		return c.errorResponse(playerID, ErrNotAJoker)
	}

	swapped := make([]deck.Card, len(target.Cards))
	copy(swapped, target.Cards)
	swapped[jokerIndex] = card
	if err := meld.Validate(meld.Meld{Type: target.Type, Cards: swapped}); err != nil {
		return c.errorResponse(playerID, fmt.Errorf("%w: %v", ErrInvalidMeld, err))
	}

	if newJokerPosition < 0 || newJokerPosition > len(swapped) {
		return c.errorResponse(playerID, ErrInvalidPosition)
	}
	withJoker := insertCard(swapped, newJokerPosition, joker)
	if err := meld.Validate(meld.Meld{Type: target.Type, Cards: withJoker}); err != nil {
		return c.errorResponse(playerID, fmt.Errorf("%w: the joker does not fit there: %v", ErrInvalidMeld, err))
	}

	targetMelds[meldIndex].Cards = inSequence(meld.Meld{Type: target.Type, Cards: withJoker})
	c.Hands[playerID] = removeCardAt(hand, idx)

	msgs := c.buildNotificationMessages(fmt.Sprintf("%s replaced a joker", c.playerName(playerID)))

	if len(c.Hands[playerID]) == 0 {
		return append(msgs, c.endRound(playerID, false)...), nil
	}

	return append(msgs, c.buildStateMessages()...), nil
}

func (c *continental) reorderHand(playerID string, order []string) ([]protocol.OutboundMessage, error) {
	hand := c.Hands[playerID]
	if len(order) != len(hand) {
		return c.errorResponse(playerID, ErrInvalidOrder)
	}

	seen := map[string]bool{}
	reordered := make([]deck.Card, 0, len(hand))
	for _, id := range order {
		idx, ok := findCard(hand, id)
		if !ok || seen[id] {
			return c.errorResponse(playerID, ErrInvalidOrder)
		}
		seen[id] = true
		reordered = append(reordered, hand[idx])
	}

	c.Hands[playerID] = reordered

	return []protocol.OutboundMessage{c.buildStateMessage(playerID)}, nil
}

// warn records a rule violation. Every second warning costs a penalty card.
func (c *continental) warn(playerID string, err error) ([]protocol.OutboundMessage, error) {
	c.Warnings[playerID]++

	msgs := []protocol.OutboundMessage{
		c.buildErrorMessage(playerID, fmt.Errorf("%w (warnings: %d)", err, c.Warnings[playerID])),
	}

	if c.Warnings[playerID] >= warningsBeforePenalty {
		if card, ok := c.drawFromDeck(); ok {
			c.Hands[playerID] = append(c.Hands[playerID], card)
			msgs = append(msgs, c.buildPrivateNotification(playerID, "Two warnings: you receive a penalty card"))
		}
		c.Warnings[playerID] = 0
	}

	return append(msgs, c.buildStateMessages()...), err
}

func (c *continental) errorResponse(playerID string, err error) ([]protocol.OutboundMessage, error) {
	return []protocol.OutboundMessage{c.buildErrorMessage(playerID, err)}, err
}

// inSequence returns the cards of a run in rank order, whatever order they were given in
func inSequence(m meld.Meld) []deck.Card {
	if m.Type != meld.Run {
		return m.Cards
	}
	return meld.SortRun(m.Cards)
}
