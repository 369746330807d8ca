package engine

import (
	"fmt"

	"github.com/minaorangina/continental/protocol"
)

func buildNewJoinerMessages(joiner protocol.Player, recipients []protocol.Player) []protocol.OutboundMessage {
	msgs := []protocol.OutboundMessage{}
	for _, r := range recipients {
		j := joiner
		msgs = append(msgs, protocol.OutboundMessage{
			PlayerID: r.PlayerID,
			Command:  protocol.NewJoiner,
			Message:  fmt.Sprintf("%s has joined the game!", joiner.Name),
			Joiner:   &j,
		})
	}
	return msgs
}

func buildErrorMessage(playerID string, err error) protocol.OutboundMessage {
	return protocol.OutboundMessage{
		PlayerID: playerID,
		Command:  protocol.Error,
		Error:    err.Error(),
	}
}
