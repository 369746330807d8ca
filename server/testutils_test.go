package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/minaorangina/continental/engine"
	utils "github.com/minaorangina/continental/internal"
	"github.com/minaorangina/continental/protocol"
	"github.com/minaorangina/continental/store"
	"github.com/stretchr/testify/require"
)

const testTimeout = time.Second

type stubStats struct {
	stats map[string][]store.PlayerStat
}

func (s stubStats) RoomStats(roomID string) ([]store.PlayerStat, error) {
	stats, ok := s.stats[roomID]
	if !ok {
		return nil, store.ErrUnknownGameID
	}
	return stats, nil
}

func NewBasicStore() *store.InMemoryGameStore {
	return store.NewInMemoryGameStore()
}

func mustMakeJson(t *testing.T, input interface{}) []byte {
	t.Helper()

	data, err := json.Marshal(input)
	utils.AssertNoError(t, err)

	return data
}

func newCreateGameRequest(data []byte) *http.Request {
	request, _ := http.NewRequest(http.MethodPost, "/new", bytes.NewBuffer(data))
	return request
}

func newGetGameRequest(gameID string) *http.Request {
	request, _ := http.NewRequest(http.MethodGet, "/game/"+gameID, nil)
	return request
}

func newGetStatsRequest(gameID string) *http.Request {
	request, _ := http.NewRequest(http.MethodGet, "/stats/"+gameID, nil)
	return request
}

func newJoinGameRequest(data []byte) *http.Request {
	if data == nil {
		data = []byte{}
	}
	request, _ := http.NewRequest(http.MethodPost, "/join", bytes.NewBuffer(data))
	return request
}

// newTestGame builds a room that is listening until the test ends
func newTestGame(t *testing.T, opts engine.GameEngineOpts) engine.GameEngine {
	t.Helper()

	if opts.Game == nil {
		opts.Game = engine.NewSpyGame()
	}
	game, err := engine.NewGameEngine(opts)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go game.Listen(ctx)

	return game
}

// newServerWithInactiveGame returns a GameServer with a room that has not started,
// hosted by Hersha and with Penelope seated
func newServerWithInactiveGame(t *testing.T) (*GameServer, string) {
	t.Helper()

	gameID := "PENDIN"
	game := newTestGame(t, engine.GameEngineOpts{GameID: gameID, CreatorID: "hersha-1"})
	require.NoError(t, game.SeatPlayer(protocol.Player{PlayerID: "hersha-1", Name: "Hersha"}))
	require.NoError(t, game.SeatPlayer(protocol.Player{PlayerID: "pending-player-id", Name: "Penelope"}))

	gs := NewBasicStore()
	require.NoError(t, gs.AddGame(game))

	return NewServer(gs, ServerOpts{}), gameID
}

// newTestServer starts and returns a new server, closed when the test ends
func newTestServer(t *testing.T, gs store.GameStore, opts ServerOpts) *httptest.Server {
	t.Helper()

	gameServer := NewServer(gs, opts)
	server := httptest.NewServer(gameServer)
	t.Cleanup(func() {
		gameServer.closeRooms()
		server.Close()
	})
	return server
}

func postJSON(t *testing.T, url string, payload interface{}, into interface{}) int {
	t.Helper()

	resp, err := http.Post(url, "application/json", bytes.NewBuffer(mustMakeJson(t, payload)))
	require.NoError(t, err)
	defer resp.Body.Close()

	if into != nil && resp.StatusCode < 300 {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(into))
	}
	return resp.StatusCode
}

// ASSERTIONS

func assertStatus(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("got status %d, want %d", got, want)
	}
}

func assertPendingGameResponse(t *testing.T, body *bytes.Buffer, want string) PendingGameRes {
	t.Helper()
	bodyBytes, err := io.ReadAll(body)
	utils.AssertNoError(t, err)

	var got PendingGameRes
	err = json.Unmarshal(bodyBytes, &got)
	if err != nil {
		t.Fatalf("could not unmarshal json: %s", err.Error())
	}
	if got.Name != want {
		t.Errorf("got %s, want %s", got.Name, want)
	}
	if len(got.GameID) == 0 {
		t.Error("expected a game id")
	}
	if len(got.PlayerID) == 0 {
		t.Error("expected a player id")
	}
	return got
}

func mustDialWS(t *testing.T, url string) *websocket.Conn {
	t.Helper()

	ws, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		if resp != nil {
			body, _ := io.ReadAll(resp.Body)
			t.Fatalf("could not open a ws connection on %s, code %d: %s, %v", url, resp.StatusCode, body, err)
		}
		t.Fatalf("could not open a ws connection on %s: %v", url, err)
	}
	if ws == nil {
		t.Fatal("unexpected nil websocket conn")
	}
	t.Cleanup(func() { ws.Close() })

	return ws
}

func makeWSUrl(serverURL, gameID, playerID string) string {
	return "ws" + strings.TrimPrefix(serverURL, "http") +
		"/ws?game_id=" + gameID + "&player_id=" + playerID
}

// readUntil reads messages until one with the command arrives
func readUntil(t *testing.T, ws *websocket.Conn, cmd protocol.Cmd) protocol.OutboundMessage {
	t.Helper()

	deadline := time.Now().Add(testTimeout)
	for {
		ws.SetReadDeadline(deadline)
		var msg protocol.OutboundMessage
		if err := ws.ReadJSON(&msg); err != nil {
			t.Fatalf("did not receive %s: %v", cmd, err)
		}
		if msg.Command == cmd {
			return msg
		}
	}
}
