package game

import (
	"fmt"

	"github.com/minaorangina/continental/deck"
	"github.com/minaorangina/continental/meld"
	"github.com/minaorangina/continental/protocol"
)

func (c *continental) buildSnapshot(playerID string) *protocol.Snapshot {
	req, _ := meld.RequirementFor(c.Round)

	var top *deck.Card
	if len(c.DiscardPile) > 0 {
		card := c.DiscardPile[len(c.DiscardPile)-1]
		top = &card
	}

	window := protocol.DiscardWindow{Open: c.Window.Open, Requesters: []string{}}
	switch {
	case c.Window.Open:
		window.Requesters = append(window.Requesters, c.Window.Requests...)
		deadline := c.Window.Deadline
		window.Deadline = &deadline
	case c.FirstDrawOfRound:
		window.Requesters = append(window.Requesters, c.InitialRequests...)
	}

	return &protocol.Snapshot{
		Round:            c.Round,
		Requirement:      req,
		CurrentPlayerID:  c.CurrentPlayerID,
		Phase:            c.Phase,
		HasDrawn:         c.HasDrawn,
		DeckCount:        len(c.Deck),
		DiscardTop:       top,
		Hand:             copyCards(c.Hands[playerID]),
		LaidDown:         c.LaidDown[playerID],
		Window:           window,
		FirstDrawOfRound: c.FirstDrawOfRound,
		RoundEnded:       c.HasRoundEnded,
		RoundWinnerName:  c.RoundWinnerName,
		GameOver:         c.gamePlay == gameOver,
		Players:          c.buildPublicPlayers(),
	}
}

func (c *continental) buildPublicPlayers() []protocol.PublicPlayer {
	public := make([]protocol.PublicPlayer, 0, len(c.Players))
	for _, p := range c.Players {
		public = append(public, protocol.PublicPlayer{
			PlayerID:  p.PlayerID,
			Name:      p.Name,
			IsHost:    p.IsHost,
			Score:     c.PlayerScores[p.PlayerID],
			Warnings:  c.Warnings[p.PlayerID],
			HandCount: len(c.Hands[p.PlayerID]),
			Melds:     copyMelds(c.Melds[p.PlayerID]),
			LaidDown:  c.LaidDown[p.PlayerID],
		})
	}
	return public
}

func (c *continental) buildStateMessage(playerID string) protocol.OutboundMessage {
	return protocol.OutboundMessage{
		PlayerID: playerID,
		Command:  protocol.GameState,
		State:    c.buildSnapshot(playerID),
	}
}

func (c *continental) buildStateMessages() []protocol.OutboundMessage {
	msgs := []protocol.OutboundMessage{}
	for _, p := range c.Players {
		msgs = append(msgs, c.buildStateMessage(p.PlayerID))
	}
	return msgs
}

func (c *continental) buildNotificationMessages(text string) []protocol.OutboundMessage {
	msgs := []protocol.OutboundMessage{}
	for _, p := range c.Players {
		msgs = append(msgs, c.buildPrivateNotification(p.PlayerID, text))
	}
	return msgs
}

func (c *continental) buildPrivateNotification(playerID, text string) protocol.OutboundMessage {
	return protocol.OutboundMessage{
		PlayerID: playerID,
		Command:  protocol.Notification,
		Message:  text,
	}
}

func (c *continental) buildErrorMessage(playerID string, err error) protocol.OutboundMessage {
	return protocol.OutboundMessage{
		PlayerID: playerID,
		Command:  protocol.Error,
		Error:    err.Error(),
	}
}

func (c *continental) buildGameStartedMessages() []protocol.OutboundMessage {
	msgs := []protocol.OutboundMessage{}
	for _, p := range c.Players {
		msg := c.buildStateMessage(p.PlayerID)
		msg.Command = protocol.GameStarted
		msg.Message = "The game has started!"
		msgs = append(msgs, msg)
	}
	return msgs
}

func (c *continental) buildRoundEndedMessages() []protocol.OutboundMessage {
	msgs := []protocol.OutboundMessage{}
	for _, p := range c.Players {
		msg := c.buildStateMessage(p.PlayerID)
		msg.Command = protocol.RoundEnded
		msg.Message = fmt.Sprintf("Round %d is over. %s won!", c.Round, c.RoundWinnerName)
		msgs = append(msgs, msg)
	}
	return msgs
}

func (c *continental) buildGameOverMessages() []protocol.OutboundMessage {
	standings := c.Standings()

	text := "Game over!"
	if len(standings) > 0 {
		text = fmt.Sprintf("Game over! %s wins with %d points", standings[0].Name, standings[0].Score)
	}

	msgs := []protocol.OutboundMessage{}
	for _, p := range c.Players {
		msg := c.buildStateMessage(p.PlayerID)
		msg.Command = protocol.GameOver
		msg.Message = text
		msg.Ranking = standings
		msgs = append(msgs, msg)
	}
	return msgs
}
