package game

import (
	"fmt"

	"github.com/minaorangina/continental/protocol"
)

// ClosestNextPlayer picks, among the requesters, the one who plays soonest
// after the player at currentIndex. The first requester wins a tie.
// Requesters who are not seated are ignored.
func ClosestNextPlayer(currentIndex int, requesterIDs []string, players []protocol.Player) (string, bool) {
	n := len(players)
	if n == 0 {
		return "", false
	}

	seats := make(map[string]int, n)
	for i, p := range players {
		seats[p.PlayerID] = i
	}

	closest, best := "", n
	for _, id := range requesterIDs {
		idx, ok := seats[id]
		if !ok {
			continue
		}
		distance := ((idx-currentIndex-1)%n + n) % n
		if distance < best {
			closest, best = id, distance
		}
	}

	return closest, closest != ""
}

func (c *continental) requestDiscard(playerID string) ([]protocol.OutboundMessage, error) {
	if err := c.checkLive(); err != nil {
		return c.errorResponse(playerID, err)
	}

	var requests *[]string
	switch {
	case c.Window.Open:
		if playerID == c.Window.DiscarderID {
			return c.errorResponse(playerID, ErrOwnDiscard)
		}
		requests = &c.Window.Requests
	case c.FirstDrawOfRound:
		if playerID == c.CurrentPlayerID {
			return c.errorResponse(playerID, ErrOwnTurn)
		}
		requests = &c.InitialRequests
	default:
		return c.errorResponse(playerID, ErrNoWindow)
	}

	if len(c.DiscardPile) == 0 {
		return c.errorResponse(playerID, ErrEmptyDiscardPile)
	}

	for _, id := range *requests {
		if id == playerID {
			return nil, nil
		}
	}
	*requests = append(*requests, playerID)

	msgs := c.buildNotificationMessages(fmt.Sprintf("%s asked for the discarded card", c.playerName(playerID)))
	return append(msgs, c.buildStateMessages()...), nil
}

// ResolveDiscardWindow closes the discard window with the given id, hands the
// discarded card to the closest requester and passes the turn on.
// A window that is no longer open resolves to nothing.
func (c *continental) ResolveDiscardWindow(windowID int) ([]protocol.OutboundMessage, error) {
	if windowID != c.Window.ID || !c.Window.Open || c.HasRoundEnded || c.gamePlay != gameInProgress {
		return nil, nil
	}

	discarderIdx, ok := c.playerIndex(c.Window.DiscarderID)
	if !ok {
		return nil, ErrInvalidGameState
	}
	next := c.nextSeat(c.Window.DiscarderID)
	requests := c.Window.Requests

	c.Window.Open = false
	c.Window.Requests = nil

	msgs := []protocol.OutboundMessage{}

	if winner, ok := ClosestNextPlayer(discarderIdx, requests, c.Players); ok && len(c.DiscardPile) > 0 {
		top := len(c.DiscardPile) - 1
		c.Hands[winner] = append(c.Hands[winner], c.DiscardPile[top])
		c.DiscardPile = c.DiscardPile[:top]

		name := c.playerName(winner)
		if winner == next {
			c.SkipDraw[winner] = true
			msgs = append(msgs, c.buildNotificationMessages(fmt.Sprintf("%s takes the discarded card, it is their turn", name))...)
		} else {
			text := fmt.Sprintf("%s takes the discarded card and a penalty card", name)
			if card, ok := c.drawFromDeck(); ok {
				c.Hands[winner] = append(c.Hands[winner], card)
			} else {
				text = fmt.Sprintf("%s takes the discarded card", name)
			}
			msgs = append(msgs, c.buildNotificationMessages(text)...)
		}
	}

	c.advanceTurn(next)

	return append(msgs, c.buildStateMessages()...), nil
}

// resolveInitialRequests settles requests made for the first discard of the round
// once the first player has drawn from the deck. The winner always takes a penalty card.
func (c *continental) resolveInitialRequests() []protocol.OutboundMessage {
	requests := c.InitialRequests
	c.InitialRequests = nil
	c.FirstDrawOfRound = false

	currentIdx, _ := c.playerIndex(c.CurrentPlayerID)
	winner, ok := ClosestNextPlayer(currentIdx, requests, c.Players)
	if !ok || len(c.DiscardPile) == 0 {
		return nil
	}

	top := len(c.DiscardPile) - 1
	c.Hands[winner] = append(c.Hands[winner], c.DiscardPile[top])
	c.DiscardPile = c.DiscardPile[:top]

	text := fmt.Sprintf("%s takes the first discarded card and a penalty card", c.playerName(winner))
	if card, ok := c.drawFromDeck(); ok {
		c.Hands[winner] = append(c.Hands[winner], card)
	} else {
		text = fmt.Sprintf("%s takes the first discarded card", c.playerName(winner))
	}

	return c.buildNotificationMessages(text)
}
