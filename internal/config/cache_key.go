package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// UserSessionKey returns the cache key holding the active token id of a user.
func (r *CacheKeyStruct) UserSessionKey(userID int) string {
	return fmt.Sprintf("login:%d", userID)
}

// QuizPayloadKey returns the cache key for a quiz's sanitized questions.
func (r *CacheKeyStruct) QuizPayloadKey(quizID int64) string {
	return fmt.Sprintf("quiz:%d:payload", quizID)
}

// QuizAnswerKey returns the cache key for a quiz's question records,
// answer keys included.
func (r *CacheKeyStruct) QuizAnswerKey(quizID int64) string {
	return fmt.Sprintf("quiz:%d:key", quizID)
}

// SubmitCooldownKey returns the cache key that blocks resubmission of a quiz.
func (r *CacheKeyStruct) SubmitCooldownKey(userID int, quizID int64) string {
	return fmt.Sprintf("user:%d:quiz:%d:cooldown", userID, quizID)
}

// DailyQuizCountKey returns the per-day quiz creation counter for a user.
// day is formatted as YYYY-MM-DD.
func (r *CacheKeyStruct) DailyQuizCountKey(userID int, day string) string {
	return fmt.Sprintf("user:%d:quizzes:%s", userID, day)
}

// BattleKey returns the hash holding a battle's state.
func (r *CacheKeyStruct) BattleKey(code string) string {
	return fmt.Sprintf("battle:%s", code)
}

// BattlePlayersKey returns the set of user ids in a battle.
func (r *CacheKeyStruct) BattlePlayersKey(code string) string {
	return fmt.Sprintf("battle:%s:players", code)
}

// BattleScoresKey returns the sorted set of battle scores by user id.
func (r *CacheKeyStruct) BattleScoresKey(code string) string {
	return fmt.Sprintf("battle:%s:scores", code)
}

// BattleChannel returns the Redis PubSub channel name for a battle.
func (r *CacheKeyStruct) BattleChannel(code string) string {
	return fmt.Sprintf("battle:%s:events", code)
}

var CacheKey = NewCacheKeyStruct()
