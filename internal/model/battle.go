package model

import "time"

// BattleStatus enumerates the lifecycle of a battle.
type BattleStatus string

const (
	BattleStatusWaiting  BattleStatus = "waiting"
	BattleStatusActive   BattleStatus = "active"
	BattleStatusFinished BattleStatus = "finished"
)

// Battle is a real-time multiplayer quiz round. It lives in Redis only.
type Battle struct {
	Code      string       `json:"code"`
	QuizID    int64        `json:"quiz_id"`
	HostID    int          `json:"host_id"`
	Status    BattleStatus `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
}

// CreateBattleRequest is the payload for opening a battle lobby.
type CreateBattleRequest struct {
	QuizID int64 `json:"quiz_id" binding:"required,min=1"`
}

// ScoreboardEntry is one row of a battle scoreboard.
type ScoreboardEntry struct {
	UserID   int    `json:"user_id"`
	Username string `json:"username,omitempty"`
	Score    int    `json:"score"`
}

// AdminStats is the summary shown on the admin dashboard.
type AdminStats struct {
	Users         int `json:"users"`
	Quizzes       int `json:"quizzes"`
	AttemptsToday int `json:"attempts_today"`
}
