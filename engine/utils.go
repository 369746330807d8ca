package engine

import (
	"sync"
	"time"

	"github.com/minaorangina/continental/protocol"
)

// SpyGame is a game.Game that records what the engine asks of it
type SpyGame struct {
	startCalled  bool
	received     []protocol.InboundMessage
	removed      []string
	roundEnded   bool
	gameOver     bool
	receiveReply []protocol.OutboundMessage
	receiveErr   error
	mu           *sync.Mutex
}

func NewSpyGame() *SpyGame {
	return &SpyGame{mu: &sync.Mutex{}}
}

func (g *SpyGame) Start(players []protocol.Player) ([]protocol.OutboundMessage, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.startCalled = true

	msgs := []protocol.OutboundMessage{}
	for _, p := range players {
		msgs = append(msgs, protocol.OutboundMessage{PlayerID: p.PlayerID, Command: protocol.GameStarted})
	}
	return msgs, nil
}

func (g *SpyGame) Receive(msg protocol.InboundMessage) ([]protocol.OutboundMessage, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.received = append(g.received, msg)
	return g.receiveReply, g.receiveErr
}

func (g *SpyGame) ResolveDiscardWindow(int) ([]protocol.OutboundMessage, error) {
	return nil, nil
}

func (g *SpyGame) DiscardWindow() (int, time.Time, bool) {
	return 0, time.Time{}, false
}

func (g *SpyGame) RemovePlayer(playerID string) ([]protocol.OutboundMessage, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.removed = append(g.removed, playerID)
	return nil, nil
}

func (g *SpyGame) NextRound() ([]protocol.OutboundMessage, error) {
	return nil, nil
}

func (g *SpyGame) StateMessage(playerID string) (protocol.OutboundMessage, bool) {
	return protocol.OutboundMessage{PlayerID: playerID, Command: protocol.GameState}, true
}

func (g *SpyGame) CurrentRound() int {
	return 1
}

func (g *SpyGame) RoundEnded() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.roundEnded
}

func (g *SpyGame) GameOver() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.gameOver
}

func (g *SpyGame) Scores() map[string]int {
	return map[string]int{}
}

func (g *SpyGame) Standings() []protocol.Standing {
	return []protocol.Standing{}
}

func (g *SpyGame) StartCalled() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.startCalled
}

func (g *SpyGame) Received() []protocol.InboundMessage {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]protocol.InboundMessage{}, g.received...)
}

func (g *SpyGame) Removed() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string{}, g.removed...)
}
