package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/studai/studai-backend/internal/config"
	"github.com/studai/studai-backend/internal/model"
	"github.com/studai/studai-backend/internal/quiz"
	ws "github.com/studai/studai-backend/internal/websocket"
)

// Battle errors.
var (
	ErrBattleNotFound   = errors.New("battle not found")
	ErrBattleFull       = errors.New("battle is full")
	ErrBattleStarted    = errors.New("battle already started")
	ErrBattleNotActive  = errors.New("battle is not active")
	ErrNotBattleHost    = errors.New("only the host can start the battle")
	ErrNotBattlePlayer  = errors.New("not a player of this battle")
	ErrAlreadySubmitted = errors.New("answers already submitted")
)

var errCodeSpaceExhausted = errors.New("could not allocate battle code")

// QuestionSource provides quizzes and their questions to battles.
type QuestionSource interface {
	GetByID(ctx context.Context, id int64) (*model.Quiz, error)
	GetVisible(ctx context.Context, id int64, userID int) (*model.Quiz, error)
	Payload(ctx context.Context, q *model.Quiz) (*model.QuizPayload, error)
	Questions(ctx context.Context, quizID int64) ([]quiz.Question, error)
}

const (
	battleCodeLength   = 6
	battleCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	battleCodeAttempts = 5
)

// BattleService runs multiplayer quiz rounds. All battle state lives in
// Redis so that players connected to different instances see the same round.
type BattleService struct {
	rdb    *redis.Client
	source QuestionSource
	cfg    config.QuizConfig
	log    zerolog.Logger
	now    func() time.Time
}

// NewBattleService creates a new BattleService.
func NewBattleService(rdb *redis.Client, source QuestionSource, cfg config.QuizConfig, log zerolog.Logger) *BattleService {
	return &BattleService{
		rdb:    rdb,
		source: source,
		cfg:    cfg,
		log:    log.With().Str("component", "battle_service").Logger(),
		now:    time.Now,
	}
}

func newBattleCode() string {
	b := make([]byte, battleCodeLength)
	for i := range b {
		b[i] = battleCodeAlphabet[rand.IntN(len(battleCodeAlphabet))]
	}
	return string(b)
}

// Create opens a waiting battle on a quiz the host can see.
func (s *BattleService) Create(ctx context.Context, hostID int, quizID int64) (*model.Battle, error) {
	if _, err := s.source.GetVisible(ctx, quizID, hostID); err != nil {
		return nil, err
	}
	if _, err := s.source.Questions(ctx, quizID); err != nil {
		return nil, err
	}

	var code string
	for i := 0; ; i++ {
		if i == battleCodeAttempts {
			return nil, errCodeSpaceExhausted
		}
		code = newBattleCode()
		ok, err := s.rdb.HSetNX(ctx, config.CacheKey.BattleKey(code), "quiz_id", quizID).Result()
		if err != nil {
			return nil, fmt.Errorf("reserve battle code: %w", err)
		}
		if ok {
			break
		}
	}

	b := &model.Battle{
		Code:      code,
		QuizID:    quizID,
		HostID:    hostID,
		Status:    model.BattleStatusWaiting,
		CreatedAt: s.now().UTC(),
	}

	key := config.CacheKey.BattleKey(code)
	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, key,
		"host_id", hostID,
		"status", string(b.Status),
		"created_at", b.CreatedAt.Unix(),
	)
	pipe.Expire(ctx, key, s.cfg.BattleTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("create battle: %w", err)
	}

	s.log.Info().Str("code", code).Int64("quiz_id", quizID).Int("host_id", hostID).Msg("Battle created")
	return b, nil
}

// Get reads a battle's state.
func (s *BattleService) Get(ctx context.Context, code string) (*model.Battle, error) {
	fields, err := s.rdb.HGetAll(ctx, config.CacheKey.BattleKey(code)).Result()
	if err != nil {
		return nil, fmt.Errorf("get battle: %w", err)
	}
	if len(fields) == 0 || fields["status"] == "" {
		return nil, ErrBattleNotFound
	}

	b := &model.Battle{Code: code, Status: model.BattleStatus(fields["status"])}
	b.QuizID, _ = strconv.ParseInt(fields["quiz_id"], 10, 64)
	b.HostID, _ = strconv.Atoi(fields["host_id"])
	if ts, err := strconv.ParseInt(fields["created_at"], 10, 64); err == nil {
		b.CreatedAt = time.Unix(ts, 0).UTC()
	}
	return b, nil
}

// Join adds a player to a waiting battle. Players already in the battle may
// reconnect at any time.
func (s *BattleService) Join(ctx context.Context, code string, userID int, username string) (*model.Battle, error) {
	b, err := s.Get(ctx, code)
	if err != nil {
		return nil, err
	}

	playersKey := config.CacheKey.BattlePlayersKey(code)
	member := strconv.Itoa(userID)

	isPlayer, err := s.rdb.SIsMember(ctx, playersKey, member).Result()
	if err != nil {
		return nil, fmt.Errorf("check player: %w", err)
	}
	if !isPlayer {
		if b.Status != model.BattleStatusWaiting {
			return nil, ErrBattleStarted
		}
		if err := s.rdb.SAdd(ctx, playersKey, member).Err(); err != nil {
			return nil, fmt.Errorf("add player: %w", err)
		}
		// Add first, then check, so concurrent joins cannot overshoot the cap.
		n, err := s.rdb.SCard(ctx, playersKey).Result()
		if err != nil {
			return nil, fmt.Errorf("count players: %w", err)
		}
		if s.cfg.BattleMaxPlayers > 0 && n > int64(s.cfg.BattleMaxPlayers) {
			s.rdb.SRem(ctx, playersKey, member)
			return nil, ErrBattleFull
		}
		s.rdb.Expire(ctx, playersKey, s.cfg.BattleTTL)
		s.rdb.HSet(ctx, config.CacheKey.BattleKey(code), nameField(userID), username)
	}

	players, _ := s.rdb.SCard(ctx, playersKey).Result()
	s.publish(ctx, code, ws.BattleEvent{
		Event:    ws.EventJoined,
		UserID:   userID,
		Username: username,
		Players:  int(players),
	})
	return b, nil
}

// Leave removes a player from a waiting battle. Once the battle has started
// the player keeps their seat so they can reconnect.
func (s *BattleService) Leave(ctx context.Context, code string, userID int, username string) {
	b, err := s.Get(ctx, code)
	if err != nil {
		return
	}
	playersKey := config.CacheKey.BattlePlayersKey(code)
	if b.Status == model.BattleStatusWaiting {
		s.rdb.SRem(ctx, playersKey, strconv.Itoa(userID))
	}
	players, _ := s.rdb.SCard(ctx, playersKey).Result()
	s.publish(ctx, code, ws.BattleEvent{
		Event:    ws.EventLeft,
		UserID:   userID,
		Username: username,
		Players:  int(players),
	})
}

// Start moves a waiting battle to active. Host only.
func (s *BattleService) Start(ctx context.Context, code string, userID int) error {
	b, err := s.Get(ctx, code)
	if err != nil {
		return err
	}
	if b.HostID != userID {
		return ErrNotBattleHost
	}
	if b.Status != model.BattleStatusWaiting {
		return ErrBattleStarted
	}

	if err := s.rdb.HSet(ctx, config.CacheKey.BattleKey(code), "status", string(model.BattleStatusActive)).Err(); err != nil {
		return fmt.Errorf("start battle: %w", err)
	}

	s.log.Info().Str("code", code).Msg("Battle started")
	s.publish(ctx, code, ws.BattleEvent{Event: ws.EventStarted})
	return nil
}

// Questions returns the sanitized question set of a battle, with Matching
// items shuffled for this caller.
func (s *BattleService) Questions(ctx context.Context, b *model.Battle) (*model.QuizPayload, error) {
	q, err := s.source.GetByID(ctx, b.QuizID)
	if err != nil {
		return nil, err
	}
	return s.source.Payload(ctx, q)
}

// Submit scores a player's answers. Each player submits once; when every
// player has submitted the battle finishes.
func (s *BattleService) Submit(ctx context.Context, code string, userID int, username string, raw json.RawMessage) (*quiz.Result, error) {
	b, err := s.Get(ctx, code)
	if err != nil {
		return nil, err
	}
	if b.Status != model.BattleStatusActive {
		return nil, ErrBattleNotActive
	}

	member := strconv.Itoa(userID)
	isPlayer, err := s.rdb.SIsMember(ctx, config.CacheKey.BattlePlayersKey(code), member).Result()
	if err != nil {
		return nil, fmt.Errorf("check player: %w", err)
	}
	if !isPlayer {
		return nil, ErrNotBattlePlayer
	}

	submission, err := quiz.ParseSubmission(raw)
	if err != nil {
		return nil, err
	}
	questions, err := s.source.Questions(ctx, b.QuizID)
	if err != nil {
		return nil, err
	}
	result, err := quiz.Score(questions, submission)
	if err != nil {
		return nil, err
	}

	scoresKey := config.CacheKey.BattleScoresKey(code)
	added, err := s.rdb.ZAddNX(ctx, scoresKey, redis.Z{Score: float64(result.Score), Member: member}).Result()
	if err != nil {
		return nil, fmt.Errorf("record score: %w", err)
	}
	if added == 0 {
		return nil, ErrAlreadySubmitted
	}
	s.rdb.Expire(ctx, scoresKey, s.cfg.BattleTTL)

	score := result.Score
	s.publish(ctx, code, ws.BattleEvent{
		Event:    ws.EventScored,
		UserID:   userID,
		Username: username,
		Score:    &score,
		Total:    result.Total,
	})

	board, err := s.Scoreboard(ctx, code)
	if err != nil {
		s.log.Warn().Err(err).Str("code", code).Msg("Scoreboard read failed")
		return result, nil
	}

	players, _ := s.rdb.SCard(ctx, config.CacheKey.BattlePlayersKey(code)).Result()
	if int64(len(board)) >= players {
		// Simultaneous last submitters both get here; one of them finishes.
		won, err := s.finish(ctx, code)
		if err != nil {
			s.log.Warn().Err(err).Str("code", code).Msg("Finish failed")
			return result, nil
		}
		if won {
			s.log.Info().Str("code", code).Int("players", len(board)).Msg("Battle finished")
			s.publish(ctx, code, ws.BattleEvent{Event: ws.EventFinished, Total: result.Total, Scoreboard: board})
		}
		return result, nil
	}

	s.publish(ctx, code, ws.BattleEvent{Event: ws.EventScoreboard, Total: result.Total, Scoreboard: board})
	return result, nil
}

// finish marks the battle finished. Only the first caller gets true.
func (s *BattleService) finish(ctx context.Context, code string) (bool, error) {
	key := config.CacheKey.BattleKey(code)
	won, err := s.rdb.HSetNX(ctx, key, "finished_at", time.Now().Unix()).Result()
	if err != nil || !won {
		return false, err
	}
	if err := s.rdb.HSet(ctx, key, "status", string(model.BattleStatusFinished)).Err(); err != nil {
		return false, err
	}
	return true, nil
}

// Scoreboard returns the battle's scores, best first.
func (s *BattleService) Scoreboard(ctx context.Context, code string) ([]model.ScoreboardEntry, error) {
	zs, err := s.rdb.ZRevRangeWithScores(ctx, config.CacheKey.BattleScoresKey(code), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(zs) == 0 {
		return []model.ScoreboardEntry{}, nil
	}

	fields := make([]string, len(zs))
	board := make([]model.ScoreboardEntry, len(zs))
	for i, z := range zs {
		id, _ := strconv.Atoi(fmt.Sprint(z.Member))
		board[i] = model.ScoreboardEntry{UserID: id, Score: int(z.Score)}
		fields[i] = nameField(id)
	}

	names, err := s.rdb.HMGet(ctx, config.CacheKey.BattleKey(code), fields...).Result()
	if err == nil {
		for i, n := range names {
			if name, ok := n.(string); ok {
				board[i].Username = name
			}
		}
	}
	return board, nil
}

// Subscribe opens a subscription to the battle's event channel.
func (s *BattleService) Subscribe(ctx context.Context, code string) *redis.PubSub {
	return s.rdb.Subscribe(ctx, config.CacheKey.BattleChannel(code))
}

func (s *BattleService) publish(ctx context.Context, code string, ev ws.BattleEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if err := s.rdb.Publish(ctx, config.CacheKey.BattleChannel(code), payload).Err(); err != nil {
		s.log.Warn().Err(err).Str("code", code).Str("event", string(ev.Event)).Msg("Publish failed")
	}
}

func nameField(userID int) string {
	return "name:" + strconv.Itoa(userID)
}
