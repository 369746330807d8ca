package players

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/minaorangina/continental/engine"
	"github.com/minaorangina/continental/internal/logging"
	"github.com/minaorangina/continental/protocol"
	"golang.org/x/time/rate"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096

	sendBufferSize = 64
)

var (
	ErrSendBufferFull = errors.New("send buffer is full")
	ErrClosed         = errors.New("connection is closed")
	ErrRateLimited    = errors.New("too many commands, slow down")
	ErrBadMessage     = errors.New("could not read message")
)

// WSPlayer is a seated player connected over a websocket
type WSPlayer struct {
	id      string
	name    string
	conn    *websocket.Conn
	sendCh  chan []byte
	ge      engine.GameEngine
	limiter *rate.Limiter
	log     *log.Logger
	closed  bool
	mu      sync.Mutex
}

type WSPlayerOpts struct {
	Limiter *rate.Limiter
	Logger  *log.Logger
}

// NewWSPlayer constructs a new player. Call Run to start pumping messages.
func NewWSPlayer(id, name string, ws *websocket.Conn, ge engine.GameEngine, opts WSPlayerOpts) *WSPlayer {
	if opts.Limiter == nil {
		opts.Limiter = rate.NewLimiter(rate.Inf, 0)
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}

	return &WSPlayer{
		id:      id,
		name:    name,
		conn:    ws,
		sendCh:  make(chan []byte, sendBufferSize),
		ge:      ge,
		limiter: opts.Limiter,
		log:     opts.Logger.With("player", id),
	}
}

func (p *WSPlayer) ID() string {
	return p.id
}

func (p *WSPlayer) Name() string {
	return p.name
}

// Run starts the read and write pumps
func (p *WSPlayer) Run() {
	go p.writePump()
	go p.readPump()
}

// Send queues a message for the peer without blocking
func (p *WSPlayer) Send(msg protocol.OutboundMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}

	select {
	case p.sendCh <- data:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// Close stops the write pump, which closes the connection
func (p *WSPlayer) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	close(p.sendCh)
}

func (p *WSPlayer) readPump() {
	defer func() {
		if err := p.ge.RemovePlayer(p); err != nil {
			p.log.Debug("room already closed", "err", err)
		}
		p.Close()
	}()

	p.conn.SetReadLimit(maxMessageSize)
	p.conn.SetReadDeadline(time.Now().Add(pongWait))
	p.conn.SetPongHandler(func(string) error {
		p.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := p.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				p.log.Warn("connection lost", "err", err)
			}
			return
		}

		if !p.limiter.Allow() {
			p.sendError(ErrRateLimited)
			continue
		}

		var msg protocol.InboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			p.sendError(fmt.Errorf("%w: %v", ErrBadMessage, err))
			continue
		}

		// the connection decides who is speaking
		msg.PlayerID = p.id
		p.ge.Receive(msg)
	}
}

func (p *WSPlayer) sendError(err error) {
	if sendErr := p.Send(protocol.OutboundMessage{PlayerID: p.id, Command: protocol.Error, Error: err.Error()}); sendErr != nil {
		p.log.Debug("could not send error", "err", sendErr)
	}
}

func (p *WSPlayer) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		p.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-p.sendCh:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				p.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := p.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				p.log.Debug("write failed", "err", err)
				return
			}

		case <-ticker.C:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
