package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/minaorangina/continental/game"
	"github.com/minaorangina/continental/internal/logging"
	"github.com/minaorangina/continental/protocol"
)

// PlayState represents the state of the room
// Idle -> waiting for players
// InProgress -> game in progress
// Over -> game finished
type PlayState int

func (gps PlayState) String() string {
	switch gps {
	case Idle:
		return "idle"
	case InProgress:
		return "inProgress"
	case Over:
		return "over"
	}
	return ""
}

const (
	Idle PlayState = iota
	InProgress
	Over
)

const maxSeats = 10

var (
	ErrNotHost            = errors.New("only the host can do that")
	ErrGameNotStarted     = errors.New("game has not started")
	ErrGameAlreadyStarted = errors.New("game has already started")
	ErrGameFull           = errors.New("game is full")
	ErrAlreadySeated      = errors.New("player is already seated")
	ErrNotSeated          = errors.New("player is not seated")
	ErrCannotKickSelf     = errors.New("you cannot kick yourself")
	ErrClosed             = errors.New("room is closed")
)

// GameEngine runs one room: its roster, its connections and its game
type GameEngine interface {
	ID() string
	CreatorID() string
	PlayState() PlayState
	Seated() []protocol.Player
	FindSeated(playerID string) (protocol.Player, bool)
	SeatPlayer(p protocol.Player) error
	AddPlayer(Player) error
	RemovePlayer(Player) error
	Players() Players
	Receive(protocol.InboundMessage)
	Start() error
	Listen(ctx context.Context)
	Close()
}

// Recorder persists what happens in a room
type Recorder interface {
	RoomStarted(roomID string, players []protocol.Player) error
	PlayerRemoved(roomID, playerID string) error
	RecordRound(roomID string, round int, standings []protocol.Standing) error
}

type nopRecorder struct{}

func (nopRecorder) RoomStarted(string, []protocol.Player) error         { return nil }
func (nopRecorder) PlayerRemoved(string, string) error                  { return nil }
func (nopRecorder) RecordRound(string, int, []protocol.Standing) error { return nil }

type gameEngine struct {
	id            string
	creatorID     string
	playState     PlayState
	seated        []protocol.Player
	players       Players
	registerCh    chan Player
	unregisterCh  chan Player
	inboundCh     chan protocol.InboundMessage
	timerCh       chan int
	game          game.Game
	recorder      Recorder
	log           *log.Logger
	timer         *time.Timer
	timerWindowID int
	recordedRound int
	done          chan struct{}
	closeOnce     sync.Once
	mu            sync.Mutex
}

type GameEngineOpts struct {
	GameID       string
	CreatorID    string
	Seated       []protocol.Player
	Players      Players
	RegisterCh   chan Player
	UnregisterCh chan Player
	InboundCh    chan protocol.InboundMessage
	PlayState    PlayState
	Game         game.Game
	Recorder     Recorder
	Logger       *log.Logger
}

// NewGameEngine constructs a new GameEngine. Nothing happens until Listen is running.
func NewGameEngine(opts GameEngineOpts) (*gameEngine, error) {
	if opts.Game == nil {
		return nil, errors.New("cannot create GameEngine without a Game")
	}
	if opts.RegisterCh == nil {
		opts.RegisterCh = make(chan Player)
	}
	if opts.UnregisterCh == nil {
		opts.UnregisterCh = make(chan Player)
	}
	if opts.InboundCh == nil {
		opts.InboundCh = make(chan protocol.InboundMessage)
	}
	if opts.Players == nil {
		opts.Players = Players{}
	}
	if opts.Recorder == nil {
		opts.Recorder = nopRecorder{}
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}

	seated := make([]protocol.Player, len(opts.Seated))
	copy(seated, opts.Seated)

	return &gameEngine{
		id:           opts.GameID,
		creatorID:    opts.CreatorID,
		playState:    opts.PlayState,
		seated:       seated,
		players:      opts.Players,
		registerCh:   opts.RegisterCh,
		unregisterCh: opts.UnregisterCh,
		inboundCh:    opts.InboundCh,
		timerCh:      make(chan int),
		game:         opts.Game,
		recorder:     opts.Recorder,
		log:          opts.Logger.With("room", opts.GameID),
		done:         make(chan struct{}),
	}, nil
}

func (ge *gameEngine) ID() string {
	return ge.id
}

func (ge *gameEngine) CreatorID() string {
	return ge.creatorID
}

func (ge *gameEngine) PlayState() PlayState {
	ge.mu.Lock()
	defer ge.mu.Unlock()
	return ge.playState
}

// Seated returns a copy of the roster, in seat order
func (ge *gameEngine) Seated() []protocol.Player {
	ge.mu.Lock()
	defer ge.mu.Unlock()

	seated := make([]protocol.Player, len(ge.seated))
	copy(seated, ge.seated)
	return seated
}

func (ge *gameEngine) FindSeated(playerID string) (protocol.Player, bool) {
	ge.mu.Lock()
	defer ge.mu.Unlock()

	if idx := ge.seatIndex(playerID); idx >= 0 {
		return ge.seated[idx], true
	}
	return protocol.Player{}, false
}

// SeatPlayer adds a player to the roster of a room that has not started
func (ge *gameEngine) SeatPlayer(p protocol.Player) error {
	ge.mu.Lock()
	defer ge.mu.Unlock()

	if ge.playState != Idle {
		return ErrGameAlreadyStarted
	}
	if ge.seatIndex(p.PlayerID) >= 0 {
		return ErrAlreadySeated
	}
	if len(ge.seated) >= maxSeats {
		return ErrGameFull
	}

	p.IsHost = p.PlayerID == ge.creatorID
	ge.seated = append(ge.seated, p)
	return nil
}

// Players returns the live connections
func (ge *gameEngine) Players() Players {
	ge.mu.Lock()
	defer ge.mu.Unlock()
	return NewPlayers(ge.players...)
}

// AddPlayer registers the connection of a seated player
func (ge *gameEngine) AddPlayer(p Player) error {
	select {
	case ge.registerCh <- p:
		return nil
	case <-ge.done:
		return ErrClosed
	}
}

// RemovePlayer unregisters a connection. The player keeps their seat.
func (ge *gameEngine) RemovePlayer(p Player) error {
	select {
	case ge.unregisterCh <- p:
		return nil
	case <-ge.done:
		return ErrClosed
	}
}

// Receive forwards InboundMessages from Players for sorting
func (ge *gameEngine) Receive(msg protocol.InboundMessage) {
	select {
	case ge.inboundCh <- msg:
	case <-ge.done:
	}
}

// Start starts the game on behalf of the host
func (ge *gameEngine) Start() error {
	ge.mu.Lock()
	defer ge.mu.Unlock()

	if ge.playState != Idle {
		return nil
	}

	msgs, err := ge.start()
	if err != nil {
		return err
	}
	ge.deliver(msgs)
	ge.afterGameEvent()
	return nil
}

// Close stops the room. Listen returns and every connection is closed.
func (ge *gameEngine) Close() {
	ge.closeOnce.Do(func() {
		close(ge.done)

		ge.mu.Lock()
		defer ge.mu.Unlock()
		ge.stopTimer()
		for _, p := range ge.players {
			p.Close()
		}
		ge.players = Players{}
	})
}

// Listen serializes everything that happens in the room
func (ge *gameEngine) Listen(ctx context.Context) {
	ge.log.Debug("listening")

	for {
		select {
		case <-ctx.Done():
			ge.Close()
			return

		case <-ge.done:
			return

		case joiner := <-ge.registerCh:
			ge.mu.Lock()
			ge.register(joiner)
			ge.mu.Unlock()

		case leaver := <-ge.unregisterCh:
			ge.mu.Lock()
			ge.unregister(leaver)
			ge.mu.Unlock()

		case msg := <-ge.inboundCh:
			ge.mu.Lock()
			ge.handle(msg)
			ge.mu.Unlock()

		case windowID := <-ge.timerCh:
			ge.mu.Lock()
			ge.resolveWindow(windowID)
			ge.mu.Unlock()
		}
	}
}

func (ge *gameEngine) register(joiner Player) {
	info, ok := ge.findSeated(joiner.ID())
	if !ok {
		ge.log.Warn("connection from a player without a seat", "player", joiner.ID())
		joiner.Close()
		return
	}

	if existing, ok := ge.players.Find(joiner.ID()); ok && existing != joiner {
		existing.Close()
	}
	ge.players = AddPlayer(ge.players.Without(joiner.ID()), joiner)
	ge.log.Info("player connected", "player", info.Name)

	if ge.playState == Idle {
		ge.deliver(buildNewJoinerMessages(info, ge.seated))
		return
	}

	if msg, ok := ge.game.StateMessage(joiner.ID()); ok {
		ge.deliver([]protocol.OutboundMessage{msg})
	}
}

func (ge *gameEngine) unregister(leaver Player) {
	existing, ok := ge.players.Find(leaver.ID())
	if !ok || existing != leaver {
		return
	}
	ge.players = ge.players.Without(leaver.ID())
	leaver.Close()
	ge.log.Info("player disconnected", "player", leaver.ID())
}

func (ge *gameEngine) handle(msg protocol.InboundMessage) {
	if _, ok := ge.findSeated(msg.PlayerID); !ok {
		ge.log.Warn("command from a player without a seat", "player", msg.PlayerID, "command", msg.Command)
		return
	}

	var (
		msgs []protocol.OutboundMessage
		err  error
	)

	switch msg.Command {
	case protocol.StartGame:
		msgs, err = ge.hostOnly(msg.PlayerID, ge.start)

	case protocol.KickPlayer:
		msgs, err = ge.hostOnly(msg.PlayerID, func() ([]protocol.OutboundMessage, error) {
			return ge.kick(msg.PlayerID, msg.TargetPlayerID)
		})

	case protocol.ContinueToNextRound:
		msgs, err = ge.hostOnly(msg.PlayerID, ge.nextRound)

	default:
		if ge.playState == Idle {
			err = ErrGameNotStarted
			break
		}
		msgs, err = ge.game.Receive(msg)
	}

	if err != nil {
		ge.log.Debug("command rejected", "player", msg.PlayerID, "command", msg.Command, "err", err)
		if len(msgs) == 0 {
			msgs = []protocol.OutboundMessage{buildErrorMessage(msg.PlayerID, err)}
		}
	}

	ge.deliver(msgs)
	ge.afterGameEvent()
}

func (ge *gameEngine) hostOnly(playerID string, fn func() ([]protocol.OutboundMessage, error)) ([]protocol.OutboundMessage, error) {
	if playerID != ge.creatorID {
		return nil, ErrNotHost
	}
	return fn()
}

func (ge *gameEngine) start() ([]protocol.OutboundMessage, error) {
	if ge.playState != Idle {
		return nil, ErrGameAlreadyStarted
	}

	msgs, err := ge.game.Start(ge.seated)
	if err != nil {
		return nil, err
	}

	ge.playState = InProgress
	ge.log.Info("game started", "players", len(ge.seated))

	if err := ge.recorder.RoomStarted(ge.id, ge.seated); err != nil {
		ge.log.Warn("could not record room", "err", err)
	}

	return msgs, nil
}

func (ge *gameEngine) nextRound() ([]protocol.OutboundMessage, error) {
	if ge.playState == Idle {
		return nil, ErrGameNotStarted
	}
	return ge.game.NextRound()
}

func (ge *gameEngine) kick(hostID, targetID string) ([]protocol.OutboundMessage, error) {
	if targetID == hostID {
		return nil, ErrCannotKickSelf
	}
	idx := ge.seatIndex(targetID)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotSeated, targetID)
	}
	target := ge.seated[idx]

	kicked := protocol.OutboundMessage{
		PlayerID: targetID,
		Command:  protocol.PlayerKicked,
		Message:  "You have been removed from the game",
		Joiner:   &target,
	}

	var msgs []protocol.OutboundMessage
	if ge.playState != Idle {
		gameMsgs, err := ge.game.RemovePlayer(targetID)
		if err != nil {
			return nil, err
		}
		msgs = gameMsgs

		if err := ge.recorder.PlayerRemoved(ge.id, targetID); err != nil {
			ge.log.Warn("could not record kick", "err", err)
		}
	}

	ge.seated = append(ge.seated[:idx:idx], ge.seated[idx+1:]...)
	ge.log.Info("player kicked", "player", target.Name)

	// the kicked player hears about it before their connection goes
	ge.deliver([]protocol.OutboundMessage{kicked})
	if p, ok := ge.players.Find(targetID); ok {
		ge.players = ge.players.Without(targetID)
		p.Close()
	}

	for _, p := range ge.seated {
		msgs = append(msgs, protocol.OutboundMessage{
			PlayerID: p.PlayerID,
			Command:  protocol.PlayerKicked,
			Message:  fmt.Sprintf("%s was removed from the game", target.Name),
			Joiner:   &target,
		})
	}

	return msgs, nil
}

func (ge *gameEngine) resolveWindow(windowID int) {
	if windowID != ge.timerWindowID {
		return
	}
	ge.timer = nil

	msgs, err := ge.game.ResolveDiscardWindow(windowID)
	if err != nil {
		ge.log.Error("could not resolve discard window", "window", windowID, "err", err)
	}
	ge.deliver(msgs)
	ge.afterGameEvent()
}

// afterGameEvent keeps the timer, the play state and the records in step with the game
func (ge *gameEngine) afterGameEvent() {
	if ge.playState == Idle {
		return
	}

	ge.syncTimer()

	if ge.game.RoundEnded() && ge.game.CurrentRound() > ge.recordedRound {
		ge.recordedRound = ge.game.CurrentRound()
		if err := ge.recorder.RecordRound(ge.id, ge.recordedRound, ge.game.Standings()); err != nil {
			ge.log.Warn("could not record round", "round", ge.recordedRound, "err", err)
		}
	}

	if ge.game.GameOver() && ge.playState != Over {
		ge.playState = Over
		ge.log.Info("game over")
	}
}

func (ge *gameEngine) syncTimer() {
	windowID, deadline, open := ge.game.DiscardWindow()
	if !open {
		ge.stopTimer()
		return
	}
	if ge.timer != nil && ge.timerWindowID == windowID {
		return
	}

	ge.stopTimer()
	ge.timerWindowID = windowID
	ge.timer = time.AfterFunc(time.Until(deadline), func() {
		select {
		case ge.timerCh <- windowID:
		case <-ge.done:
		}
	})
}

func (ge *gameEngine) stopTimer() {
	if ge.timer != nil {
		ge.timer.Stop()
		ge.timer = nil
	}
}

// deliver sends each message to its player. A player that cannot be reached is disconnected.
func (ge *gameEngine) deliver(msgs []protocol.OutboundMessage) {
	for _, m := range msgs {
		p, ok := ge.players.Find(m.PlayerID)
		if !ok {
			continue
		}
		if err := p.Send(m); err != nil {
			ge.log.Warn("could not reach player, disconnecting", "player", m.PlayerID, "err", err)
			ge.players = ge.players.Without(m.PlayerID)
			p.Close()
		}
	}
}

func (ge *gameEngine) seatIndex(playerID string) int {
	for i, p := range ge.seated {
		if p.PlayerID == playerID {
			return i
		}
	}
	return -1
}

func (ge *gameEngine) findSeated(playerID string) (protocol.Player, bool) {
	if idx := ge.seatIndex(playerID); idx >= 0 {
		return ge.seated[idx], true
	}
	return protocol.Player{}, false
}
