package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/studai/studai-backend/internal/middleware"
	"github.com/studai/studai-backend/internal/model"
	"github.com/studai/studai-backend/internal/response"
	"github.com/studai/studai-backend/internal/service"
	"github.com/studai/studai-backend/internal/validator"
	ws "github.com/studai/studai-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// BattleHandler handles battle lobbies over REST and the live round over WebSocket.
type BattleHandler struct {
	battleService *service.BattleService
	log           zerolog.Logger
	upgrader      websocket.Upgrader
}

// NewBattleHandler creates a new BattleHandler.
func NewBattleHandler(battleService *service.BattleService, log zerolog.Logger, allowedOrigins []string) *BattleHandler {
	return &BattleHandler{
		battleService: battleService,
		log:           log.With().Str("component", "battle_handler").Logger(),
		upgrader:      buildUpgrader(allowedOrigins),
	}
}

// CreateBattle godoc
// POST /api/v1/battles
// Opens a lobby on a quiz and returns its join code.
func (h *BattleHandler) CreateBattle(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req model.CreateBattleRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	b, err := h.battleService.Create(c.Request.Context(), claims.UserID, req.QuizID)
	if err != nil {
		failService(c, h.log, err)
		return
	}

	response.Success(c, http.StatusCreated, b)
}

// GetBattle godoc
// GET /api/v1/battles/:code
// Returns the battle state and current scoreboard.
func (h *BattleHandler) GetBattle(c *gin.Context) {
	code := strings.ToUpper(c.Param("code"))

	b, err := h.battleService.Get(c.Request.Context(), code)
	if err != nil {
		failService(c, h.log, err)
		return
	}

	board, err := h.battleService.Scoreboard(c.Request.Context(), code)
	if err != nil {
		failService(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"battle": b, "scoreboard": board})
}

// BattleStream godoc
// WS /ws/v1/battles/:code/stream?token=...
// Joins the battle and relays its events. Client actions: start, submit, ping.
func (h *BattleHandler) BattleStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	code := strings.ToUpper(c.Param("code"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Subscribe before joining so this player sees its own joined event.
	pubsub := h.battleService.Subscribe(ctx, code)
	defer pubsub.Close()
	if _, err := pubsub.Receive(ctx); err != nil {
		failService(c, h.log, err)
		return
	}

	battle, err := h.battleService.Join(ctx, code, claims.UserID, claims.Username)
	if err != nil {
		failService(c, h.log, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		h.battleService.Leave(ctx, code, claims.UserID, claims.Username)
		return
	}
	client := ws.NewClient(conn)
	defer client.Close()

	wsLog := h.log.With().
		Int("user_id", claims.UserID).
		Str("code", code).
		Logger()
	wsLog.Info().Msg("Player connected")

	defer func() {
		leaveCtx, leaveCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer leaveCancel()
		h.battleService.Leave(leaveCtx, code, claims.UserID, claims.Username)
		wsLog.Info().Msg("Player disconnected")
	}()

	// Reconnecting to a running battle: send the questions right away.
	if battle.Status == model.BattleStatusActive {
		h.sendQuestions(ctx, client, wsLog, code)
	}

	go h.relay(ctx, cancel, client, wsLog, pubsub.Channel(), code)

	for {
		var msg ws.RequestPayload
		if err := client.Read(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			}
			return
		}
		if ctx.Err() != nil {
			return
		}

		switch msg.Action {
		case ws.ActionStart:
			if err := h.battleService.Start(ctx, code, claims.UserID); err != nil {
				h.sendError(client, wsLog, err)
			}
		case ws.ActionSubmit:
			res, err := h.battleService.Submit(ctx, code, claims.UserID, claims.Username, msg.Answers)
			if err != nil {
				h.sendError(client, wsLog, err)
				continue
			}
			client.Send(ws.ResultResponse{Event: ws.EventResult, Percentage: res.Percentage(), Result: res})
		case ws.ActionPing:
			client.Send(ws.PongResponse{Event: ws.EventPong})
		default:
			wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			client.SendError(string(response.ErrInvalidPayload), "unknown action: "+string(msg.Action))
		}
	}
}

// relay forwards battle events to one connection. The started event is
// replaced by this connection's own shuffle of the question set. Closing the
// connection on exit unblocks the read loop.
func (h *BattleHandler) relay(ctx context.Context, cancel context.CancelFunc, client *ws.Client, log zerolog.Logger, ch <-chan *redis.Message, code string) {
	defer func() {
		cancel()
		client.Close()
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var peek struct {
				Event ws.Event `json:"event"`
			}
			if err := json.Unmarshal([]byte(msg.Payload), &peek); err != nil {
				continue
			}
			if peek.Event == ws.EventStarted {
				h.sendQuestions(ctx, client, log, code)
				continue
			}
			if err := client.SendRaw([]byte(msg.Payload)); err != nil {
				return
			}
		}
	}
}

func (h *BattleHandler) sendQuestions(ctx context.Context, client *ws.Client, log zerolog.Logger, code string) {
	b, err := h.battleService.Get(ctx, code)
	if err != nil {
		h.sendError(client, log, err)
		return
	}
	payload, err := h.battleService.Questions(ctx, b)
	if err != nil {
		h.sendError(client, log, err)
		return
	}
	client.Send(ws.StartedResponse{
		Event:     ws.EventStarted,
		QuizID:    payload.QuizID,
		Title:     payload.Title,
		Questions: payload.Questions,
	})
}

func (h *BattleHandler) sendError(client *ws.Client, log zerolog.Logger, err error) {
	status, code := classify(err)
	msg := response.GetMessage(code)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("Battle action failed")
	} else if code == response.ErrInvalidSubmission {
		msg = err.Error()
	}
	client.SendError(string(code), msg)
}
