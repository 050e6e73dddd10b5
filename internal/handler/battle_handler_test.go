package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studai/studai-backend/internal/config"
	"github.com/studai/studai-backend/internal/middleware"
	"github.com/studai/studai-backend/internal/service"
	ws "github.com/studai/studai-backend/internal/websocket"
)

type battleServer struct {
	srv     *httptest.Server
	battles *service.BattleService
}

func newBattleServer(t *testing.T) *battleServer {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	log := zerolog.New(io.Discard)
	cfg := config.QuizConfig{PayloadCacheTTL: time.Hour, BattleMaxPlayers: 4, BattleTTL: time.Hour}
	store := newStubStore()
	quizService := service.NewQuizService(store, store, service.NewQuotaService(rdb, cfg), rdb, cfg, log)
	battles := service.NewBattleService(rdb, quizService, cfg, log)
	h := NewBattleHandler(battles, log, nil)

	r := gin.New()
	// Stands in for the JWT middleware: ?uid= picks the player.
	r.Use(func(c *gin.Context) {
		uid, _ := strconv.Atoi(c.Query("uid"))
		c.Set(middleware.ContextKeyClaims, &service.Claims{
			UserID:    uid,
			Username:  "player" + c.Query("uid"),
			TokenType: service.TokenTypeUser,
		})
		c.Next()
	})
	r.GET("/battles/:code", h.GetBattle)
	r.GET("/battles/:code/stream", h.BattleStream)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &battleServer{srv: srv, battles: battles}
}

func (s *battleServer) dial(t *testing.T, code string, uid int) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(s.srv.URL, "http") + "/battles/" + code + "/stream?uid=" + strconv.Itoa(uid)
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

type frame map[string]any

// next reads frames until one with the given event matches ok.
func next(t *testing.T, conn *websocket.Conn, event ws.Event, ok func(frame) bool) frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var f frame
		require.NoError(t, conn.ReadJSON(&f))
		if f["event"] == string(event) && (ok == nil || ok(f)) {
			return f
		}
	}
}

func TestBattleStream_FullRound(t *testing.T) {
	s := newBattleServer(t)
	b, err := s.battles.Create(t.Context(), 1, 1)
	require.NoError(t, err)

	host := s.dial(t, b.Code, 1)
	next(t, host, ws.EventJoined, func(f frame) bool { return f["username"] == "player1" })

	guest := s.dial(t, strings.ToLower(b.Code), 2)
	joined := next(t, host, ws.EventJoined, func(f frame) bool { return f["username"] == "player2" })
	assert.EqualValues(t, 2, joined["players"])

	// Only the host can start.
	require.NoError(t, guest.WriteJSON(ws.RequestPayload{Action: ws.ActionStart}))
	errFrame := next(t, guest, ws.EventError, nil)
	assert.Equal(t, "NOT_BATTLE_HOST", errFrame["code"])

	require.NoError(t, host.WriteJSON(ws.RequestPayload{Action: ws.ActionStart}))
	for _, conn := range []*websocket.Conn{host, guest} {
		started := next(t, conn, ws.EventStarted, nil)
		questions, ok := started["questions"].([]any)
		require.True(t, ok)
		assert.Len(t, questions, 2)
		raw, _ := json.Marshal(started)
		assert.NotContains(t, string(raw), "Lima")
	}

	require.NoError(t, host.WriteJSON(ws.RequestPayload{
		Action:  ws.ActionSubmit,
		Answers: json.RawMessage(`[{"questionId":10,"answer":"Paris"},{"questionId":11,"answer":"lima"}]`),
	}))
	result := next(t, host, ws.EventResult, nil)
	assert.EqualValues(t, 2, result["score"])
	assert.EqualValues(t, 100, result["percentage"])

	require.NoError(t, guest.WriteJSON(ws.RequestPayload{Action: ws.ActionSubmit, Answers: json.RawMessage(`"nope"`)}))
	errFrame = next(t, guest, ws.EventError, nil)
	assert.Equal(t, "INVALID_SUBMISSION", errFrame["code"])

	require.NoError(t, guest.WriteJSON(ws.RequestPayload{Action: ws.ActionSubmit, Answers: json.RawMessage(`[]`)}))
	finished := next(t, host, ws.EventFinished, nil)
	board, ok := finished["scoreboard"].([]any)
	require.True(t, ok)
	require.Len(t, board, 2)
	assert.Equal(t, "player1", board[0].(map[string]any)["username"])

	require.NoError(t, host.WriteJSON(ws.RequestPayload{Action: ws.ActionPing}))
	next(t, host, ws.EventPong, nil)
}

func TestBattleStream_RejectsBeforeUpgrade(t *testing.T) {
	s := newBattleServer(t)

	resp, err := http.Get(s.srv.URL + "/battles/ZZZZZZ/stream?uid=1")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	b, err := s.battles.Create(t.Context(), 1, 1)
	require.NoError(t, err)
	_, err = s.battles.Join(t.Context(), b.Code, 1, "player1")
	require.NoError(t, err)
	require.NoError(t, s.battles.Start(t.Context(), b.Code, 1))

	resp2, err := http.Get(s.srv.URL + "/battles/" + b.Code + "/stream?uid=3")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusConflict, resp2.StatusCode)
}

func TestGetBattle(t *testing.T) {
	s := newBattleServer(t)
	b, err := s.battles.Create(t.Context(), 1, 1)
	require.NoError(t, err)

	resp, err := http.Get(s.srv.URL + "/battles/" + strings.ToLower(b.Code) + "?uid=1")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Data struct {
			Battle struct {
				Code   string `json:"code"`
				Status string `json:"status"`
			} `json:"battle"`
			Scoreboard []any `json:"scoreboard"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, b.Code, body.Data.Battle.Code)
	assert.Equal(t, "waiting", body.Data.Battle.Status)
	assert.Empty(t, body.Data.Scoreboard)
}
