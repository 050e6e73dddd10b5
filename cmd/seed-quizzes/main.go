package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/studai/studai-backend/internal/config"
	"github.com/studai/studai-backend/internal/database"
	"github.com/studai/studai-backend/internal/logger"
	"github.com/studai/studai-backend/internal/model"
	"github.com/studai/studai-backend/internal/repository"
	"github.com/studai/studai-backend/internal/service"
	"github.com/studai/studai-backend/internal/validator"
)

//go:embed sample_quizzes.json
var sampleQuizzes []byte

func main() {
	var (
		owner string
		file  string
	)
	flag.StringVar(&owner, "owner", "", "Username or email of the quiz owner (required)")
	flag.StringVar(&file, "file", "", "JSON file with an array of quizzes (defaults to the bundled samples)")
	flag.Parse()

	if owner == "" {
		fmt.Println("Usage: seed-quizzes -owner <username> [-file quizzes.json]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	validator.Setup()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	raw := sampleQuizzes
	if file != "" {
		b, err := os.ReadFile(file)
		if err != nil {
			log.Fatal().Err(err).Str("file", file).Msg("Failed to read quiz file")
		}
		raw = b
	}

	var reqs []model.CreateQuizRequest
	if err := json.Unmarshal(raw, &reqs); err != nil {
		log.Fatal().Err(err).Msg("Quiz file is not a JSON array of quizzes")
	}

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	userRepo := repository.NewUserRepository(pool)
	user, err := userRepo.GetByIdentifier(ctx, owner)
	if err != nil {
		log.Fatal().Err(err).Str("owner", owner).Msg("Owner not found")
	}

	// Seeding is not subject to the daily creation quota.
	quizCfg := cfg.Quiz
	quizCfg.DailyQuizLimit = 0
	quota := service.NewQuotaService(nil, quizCfg)
	quizService := service.NewQuizService(
		repository.NewQuizRepository(pool),
		repository.NewQuestionRepository(pool),
		quota, nil, quizCfg, log,
	)

	fmt.Printf("=== Seeding %d quizzes for %s ===\n", len(reqs), user.Username)

	created := 0
	for i, req := range reqs {
		if err := binding.Validator.ValidateStruct(req); err != nil {
			log.Warn().Int("index", i).Interface("errors", validator.TranslateErrors(err)).Msg("Skipping invalid quiz")
			continue
		}

		q, err := quizService.Create(ctx, user.ID, req)
		if err != nil {
			var qe *service.QuestionError
			if errors.As(err, &qe) {
				log.Warn().Int("index", i).Interface("errors", qe.Fields()).Msg("Skipping quiz with invalid question")
				continue
			}
			log.Fatal().Err(err).Int("index", i).Msg("Failed to create quiz")
		}
		created++
		fmt.Printf("Created quiz %d: %s\n", q.ID, q.Title)
	}

	fmt.Printf("\nDone. %d of %d quizzes created.\n", created, len(reqs))
}
