package engine

import (
	"errors"
	"sync"

	"github.com/minaorangina/continental/protocol"
)

var errTestPlayerFull = errors.New("test player inbox is full")

// TestPlayer is a Player whose outbound messages can be read back in tests
type TestPlayer struct {
	id       string
	name     string
	received chan protocol.OutboundMessage
	failSend bool
	closed   bool
	mu       sync.Mutex
}

func NewTestPlayer(id, name string) *TestPlayer {
	return &TestPlayer{
		id:       id,
		name:     name,
		received: make(chan protocol.OutboundMessage, 64),
	}
}

// NewUnreachablePlayer returns a TestPlayer whose every Send fails
func NewUnreachablePlayer(id, name string) *TestPlayer {
	tp := NewTestPlayer(id, name)
	tp.failSend = true
	return tp
}

func (tp *TestPlayer) ID() string {
	return tp.id
}

func (tp *TestPlayer) Name() string {
	return tp.name
}

func (tp *TestPlayer) Info() protocol.Player {
	return protocol.Player{PlayerID: tp.id, Name: tp.name}
}

func (tp *TestPlayer) Send(msg protocol.OutboundMessage) error {
	if tp.failSend {
		return errTestPlayerFull
	}
	select {
	case tp.received <- msg:
		return nil
	default:
		return errTestPlayerFull
	}
}

func (tp *TestPlayer) Received() <-chan protocol.OutboundMessage {
	return tp.received
}

func (tp *TestPlayer) Close() {
	tp.mu.Lock()
	defer tp.mu.Unlock()
	tp.closed = true
}

func (tp *TestPlayer) Closed() bool {
	tp.mu.Lock()
	defer tp.mu.Unlock()
	return tp.closed
}

func APlayer(id, name string) *TestPlayer {
	return NewTestPlayer(id, name)
}
