package game

import (
	"fmt"
	"sort"

	"github.com/minaorangina/continental/deck"
	"github.com/minaorangina/continental/meld"
	"github.com/minaorangina/continental/protocol"
)

// endRound scores the round that winnerID just won by going out.
// The winner's score only changes when they earned the one-turn bonus.
func (c *continental) endRound(winnerID string, oneTurnBonus bool) []protocol.OutboundMessage {
	msgs := []protocol.OutboundMessage{}
	winnerName := c.playerName(winnerID)

	for _, p := range c.Players {
		if p.PlayerID == winnerID {
			if oneTurnBonus {
				bonus := meld.OneTurnBonus(c.Round)
				c.PlayerScores[p.PlayerID] += bonus
				msgs = append(msgs, c.buildNotificationMessages(
					fmt.Sprintf("%s went out in one turn! %d points", winnerName, bonus))...)
			}
			continue
		}
		c.PlayerScores[p.PlayerID] += deck.HandPoints(c.Hands[p.PlayerID])
	}

	c.HasRoundEnded = true
	c.RoundWinnerName = winnerName
	c.closeWindows()

	if c.Round >= meld.FinalRound {
		c.gamePlay = gameOver
		return append(msgs, c.buildGameOverMessages()...)
	}

	return append(msgs, c.buildRoundEndedMessages()...)
}

func (c *continental) closeWindows() {
	c.Window.Open = false
	c.Window.Requests = nil
	c.InitialRequests = nil
	c.FirstDrawOfRound = false
}

// NextRound deals the next round once the current one has ended
func (c *continental) NextRound() ([]protocol.OutboundMessage, error) {
	if c.gamePlay == gameNotStarted {
		return nil, ErrInvalidGameState
	}
	if c.gamePlay == gameOver {
		return nil, ErrGameOver
	}
	if !c.HasRoundEnded {
		return nil, ErrRoundInProgress
	}

	c.Round++
	c.dealRound()

	msgs := c.buildNotificationMessages(fmt.Sprintf("Round %d has started!", c.Round))
	return append(msgs, c.buildStateMessages()...), nil
}

// Standings ranks the players by score, lowest first
func (c *continental) Standings() []protocol.Standing {
	standings := make([]protocol.Standing, 0, len(c.Players))
	for _, p := range c.Players {
		standings = append(standings, protocol.Standing{
			PlayerID: p.PlayerID,
			Name:     p.Name,
			Score:    c.PlayerScores[p.PlayerID],
		})
	}

	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].Score < standings[j].Score
	})

	return standings
}

// RemovePlayer takes a player out of the game. Their cards go to the bottom
// of the deck. If it was their turn, the turn passes to the next seat.
// With fewer than two players left the game is over.
func (c *continental) RemovePlayer(playerID string) ([]protocol.OutboundMessage, error) {
	idx, ok := c.playerIndex(playerID)
	if !ok {
		return nil, ErrUnknownPlayer
	}

	name := c.Players[idx].Name
	wasCurrent := c.CurrentPlayerID == playerID
	next := c.nextSeat(playerID)

	returned := c.Hands[playerID]
	for _, m := range c.Melds[playerID] {
		returned = append(returned, m.Cards...)
	}
	c.Deck.PutBottom(returned...)

	delete(c.Hands, playerID)
	delete(c.Melds, playerID)
	delete(c.LaidDown, playerID)
	delete(c.LaidDownTurn, playerID)
	delete(c.SkipDraw, playerID)
	delete(c.Warnings, playerID)
	delete(c.PlayerScores, playerID)
	c.Window.Requests = withoutID(c.Window.Requests, playerID)
	c.InitialRequests = withoutID(c.InitialRequests, playerID)
	c.Players = append(c.Players[:idx:idx], c.Players[idx+1:]...)

	msgs := c.buildNotificationMessages(fmt.Sprintf("%s left the game", name))

	if len(c.Players) < minPlayers {
		if c.gamePlay == gameOver {
			return append(msgs, c.buildStateMessages()...), nil
		}
		c.HasRoundEnded = true
		c.closeWindows()
		c.gamePlay = gameOver
		if len(c.Players) > 0 {
			c.CurrentPlayerID = c.Players[0].PlayerID
		}
		return append(msgs, c.buildGameOverMessages()...), nil
	}

	if wasCurrent {
		if c.HasRoundEnded {
			c.CurrentPlayerID = next
		} else {
			c.Window.Open = false
			c.Window.Requests = nil
			c.advanceTurn(next)
			c.InitialRequests = withoutID(c.InitialRequests, next)
		}
	}

	return append(msgs, c.buildStateMessages()...), nil
}
