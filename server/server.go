package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/handlers"
	"github.com/gorilla/websocket"
	"github.com/minaorangina/continental/engine"
	"github.com/minaorangina/continental/game"
	"github.com/minaorangina/continental/internal/logging"
	"github.com/minaorangina/continental/players"
	"github.com/minaorangina/continental/protocol"
	"github.com/minaorangina/continental/store"
	uuid "github.com/satori/go.uuid"
	"golang.org/x/time/rate"
)

const (
	gameIDLength   = 6
	newGameRetries = 5
)

type NewGameReq struct {
	Name string `json:"name"`
}

type PendingGameRes struct {
	GameID   string   `json:"game_id"`
	PlayerID string   `json:"player_id"`
	Name     string   `json:"name"`
	Admin    bool     `json:"is_admin"`
	Players  []string `json:"players"`
}

type JoinGameReq struct {
	GameID string `json:"game_id"`
	Name   string `json:"name"`
}

type GetGameRes struct {
	GameID  string            `json:"game_id"`
	Status  string            `json:"status"`
	Players []protocol.Player `json:"players"`
}

type GetStatsRes struct {
	GameID  string             `json:"game_id"`
	Players []store.PlayerStat `json:"players"`
}

// StatsSource reports what has been recorded about a room
type StatsSource interface {
	RoomStats(roomID string) ([]store.PlayerStat, error)
}

type ServerOpts struct {
	Stats         StatsSource
	Recorder      engine.Recorder
	DiscardWindow time.Duration
	CORSOrigins   []string
	CommandRate   float64
	CommandBurst  int
	Logger        *log.Logger
}

// GameServer is a game server
type GameServer struct {
	store    store.GameStore
	stats    StatsSource
	recorder engine.Recorder
	window   time.Duration
	rate     rate.Limit
	burst    int
	upgrader websocket.Upgrader
	log      *log.Logger

	// rooms listen until the server shuts down
	rooms      context.Context
	closeRooms context.CancelFunc

	http.Server
}

func NewID() string {
	return uuid.NewV4().String()
}

func NewGameID() string {
	letters := []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZ")
	code := make([]byte, gameIDLength)

	for i := range code {
		code[i] = letters[rand.Intn(len(letters))]
	}

	return string(code)
}

func unknownGameIDMsg(unknownID string) string {
	return fmt.Sprintf("unknown game ID '%s'", unknownID)
}

// NewServer creates a new GameServer
func NewServer(gs store.GameStore, opts ServerOpts) *GameServer {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.DiscardWindow <= 0 {
		opts.DiscardWindow = game.DefaultWindowDuration
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}

	s := &GameServer{
		store:    gs,
		stats:    opts.Stats,
		recorder: opts.Recorder,
		window:   opts.DiscardWindow,
		rate:     rate.Inf,
		burst:    opts.CommandBurst,
		log:      opts.Logger,
	}
	if opts.CommandRate > 0 {
		s.rate = rate.Limit(opts.CommandRate)
		if s.burst < 1 {
			s.burst = 1
		}
	}
	s.rooms, s.closeRooms = context.WithCancel(context.Background())
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     checkOrigin(opts.CORSOrigins),
	}

	router := http.NewServeMux()
	router.HandleFunc("/new", s.HandleNewGame)
	router.HandleFunc("/join", s.HandleJoinGame)
	router.HandleFunc("/game/", s.HandleFindGame)
	router.HandleFunc("/stats/", s.HandleStats)
	router.HandleFunc("/ws", s.HandleWS)

	cors := handlers.CORS(
		handlers.AllowedOrigins(opts.CORSOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)
	stdLog := opts.Logger.StandardLog(log.StandardLogOptions{ForceLevel: log.ErrorLevel})

	s.Handler = handlers.RecoveryHandler(handlers.RecoveryLogger(stdLog))(cors(router))

	return s
}

// ServeHTTP serves http
func (g *GameServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.Handler.ServeHTTP(w, r)
}

// Shutdown closes every room, then the listener
func (g *GameServer) Shutdown(ctx context.Context) error {
	g.closeRooms()
	return g.Server.Shutdown(ctx)
}

// HandleNewGame handles a request to create a new game
func (g *GameServer) HandleNewGame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	var data NewGameReq
	err := json.NewDecoder(r.Body).Decode(&data)
	defer r.Body.Close()
	if err != nil {
		writeParseError(err, w, r)
		return
	}

	if data.Name == "" {
		writeText(w, http.StatusBadRequest, "Missing player name")
		return
	}

	playerID := NewID()
	ge, err := g.newRoom(playerID)
	if err != nil {
		g.log.Error("could not create game", "err", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	err = g.store.SeatPlayer(ge.ID(), playerID, data.Name)
	if err != nil {
		g.log.Error("could not seat host", "room", ge.ID(), "err", err)
		g.store.RemoveGame(ge.ID())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	g.log.Info("game created", "room", ge.ID())

	writeJSON(w, http.StatusCreated, PendingGameRes{
		GameID:   ge.ID(),
		PlayerID: playerID,
		Name:     data.Name,
		Admin:    true,
		Players:  []string{data.Name},
	})
}

// newRoom starts a room listening and adds it to the store, retrying on code collisions
func (g *GameServer) newRoom(creatorID string) (engine.GameEngine, error) {
	var err error
	for i := 0; i < newGameRetries; i++ {
		var ge engine.GameEngine
		ge, err = engine.NewGameEngine(engine.GameEngineOpts{
			GameID:    NewGameID(),
			CreatorID: creatorID,
			Game:      game.NewContinental(g.window),
			Recorder:  g.recorder,
			Logger:    g.log,
		})
		if err != nil {
			return nil, err
		}

		err = g.store.AddGame(ge)
		if err == nil {
			go ge.Listen(g.rooms)
			return ge, nil
		}
		ge.Close()
	}
	return nil, err
}

func (g *GameServer) HandleJoinGame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	var data JoinGameReq
	err := json.NewDecoder(r.Body).Decode(&data)
	defer r.Body.Close()
	if err != nil {
		writeParseError(err, w, r)
		return
	}

	if data.GameID == "" {
		writeText(w, http.StatusBadRequest, "Missing game ID")
		return
	}

	if data.Name == "" {
		writeText(w, http.StatusBadRequest, "Missing player name")
		return
	}

	ge := g.store.FindGame(data.GameID)
	if ge == nil {
		writeText(w, http.StatusNotFound, unknownGameIDMsg(data.GameID))
		return
	}

	playerID := NewID()

	err = g.store.SeatPlayer(data.GameID, playerID, data.Name)
	switch {
	case errors.Is(err, engine.ErrGameAlreadyStarted), errors.Is(err, engine.ErrGameFull):
		writeText(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		g.log.Error("could not seat player", "room", data.GameID, "err", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	playerNames := []string{}
	for _, p := range ge.Seated() {
		playerNames = append(playerNames, p.Name)
	}

	writeJSON(w, http.StatusOK, PendingGameRes{
		PlayerID: playerID,
		GameID:   data.GameID,
		Name:     data.Name,
		Players:  playerNames,
	})
}

func (g *GameServer) HandleFindGame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	gameID := strings.TrimPrefix(r.URL.Path, "/game/")
	if gameID == "" {
		writeText(w, http.StatusBadRequest, "missing game ID")
		return
	}

	ge := g.store.FindGame(gameID)
	if ge == nil {
		writeText(w, http.StatusNotFound, unknownGameIDMsg(gameID))
		return
	}

	writeJSON(w, http.StatusOK, GetGameRes{
		GameID:  gameID,
		Status:  ge.PlayState().String(),
		Players: ge.Seated(),
	})
}

func (g *GameServer) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	gameID := strings.TrimPrefix(r.URL.Path, "/stats/")
	if gameID == "" {
		writeText(w, http.StatusBadRequest, "missing game ID")
		return
	}

	if g.stats == nil {
		writeText(w, http.StatusNotFound, "stats are not recorded")
		return
	}

	stats, err := g.stats.RoomStats(gameID)
	if errors.Is(err, store.ErrUnknownGameID) {
		writeText(w, http.StatusNotFound, unknownGameIDMsg(gameID))
		return
	}
	if err != nil {
		g.log.Error("could not read stats", "room", gameID, "err", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, GetStatsRes{GameID: gameID, Players: stats})
}

func (g *GameServer) HandleWS(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	gameID := query.Get("game_id")
	if gameID == "" {
		writeText(w, http.StatusBadRequest, "missing game ID")
		return
	}

	playerID := query.Get("player_id")
	if playerID == "" {
		writeText(w, http.StatusBadRequest, "missing player ID")
		return
	}

	ge := g.store.FindGame(gameID)
	if ge == nil {
		writeText(w, http.StatusNotFound, unknownGameIDMsg(gameID))
		return
	}

	seated := g.store.FindSeatedPlayer(gameID, playerID)
	if seated == nil {
		writeText(w, http.StatusBadRequest, "unknown player ID")
		return
	}

	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader has already replied
		g.log.Warn("could not upgrade to websocket", "room", gameID, "err", err)
		return
	}

	player := players.NewWSPlayer(playerID, seated.Name, conn, ge, players.WSPlayerOpts{
		Limiter: rate.NewLimiter(g.rate, g.burst),
		Logger:  g.log.With("room", gameID),
	})
	player.Run()

	if err := g.store.AddPlayerToGame(gameID, player); err != nil {
		g.log.Warn("could not add player to game", "room", gameID, "player", playerID, "err", err)
		player.Close()
	}
}

func checkOrigin(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == "*" || strings.EqualFold(o, origin) {
				return true
			}
		}
		return false
	}
}

func writeParseError(err error, w http.ResponseWriter, r *http.Request) {
	if errors.Is(err, io.EOF) {
		writeText(w, http.StatusBadRequest, "Missing body")
		return
	}
	writeText(w, http.StatusBadRequest, fmt.Sprintf("could not parse request: %v", err))
}

func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(status)
	w.Write([]byte(msg))
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	bytes, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(bytes)
}
