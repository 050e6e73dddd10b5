package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/gin-gonic/gin/binding"
	"github.com/studai/studai-backend/internal/config"
	"github.com/studai/studai-backend/internal/database"
	"github.com/studai/studai-backend/internal/logger"
	"github.com/studai/studai-backend/internal/model"
	"github.com/studai/studai-backend/internal/repository"
	"github.com/studai/studai-backend/internal/service"
	"github.com/studai/studai-backend/internal/validator"
	"golang.org/x/term"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	validator.Setup()

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Initialize Service ────────────────────────────────────────────
	// Password hashing does not touch Redis.
	authService := service.NewAuthService(cfg, nil)
	userService := service.NewUserService(repository.NewUserRepository(pool), authService)

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create New Admin User ===")

	fmt.Print("Enter Username: ")
	username, _ := reader.ReadString('\n')
	username = strings.TrimSpace(username)

	fmt.Print("Enter Email: ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)

	fmt.Print("Enter Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Println("\nError reading password")
		return
	}
	password := string(bytePassword)
	fmt.Println() // Newline after password input

	// Same rules as self-registration.
	req := model.RegisterRequest{Username: username, Email: email, Password: password}
	if err := binding.Validator.ValidateStruct(req); err != nil {
		for field, msg := range validator.TranslateErrors(err) {
			fmt.Printf("Error: %s: %s\n", field, msg)
		}
		return
	}

	// ─── Logic ─────────────────────────────────────────────────────────
	admin, err := userService.CreateAdmin(ctx, req.Username, req.Email, req.Password)
	switch {
	case errors.Is(err, repository.ErrDuplicateUsername):
		fmt.Println("Error: username is already taken")
		return
	case errors.Is(err, repository.ErrDuplicateEmail):
		fmt.Println("Error: email is already registered")
		return
	case err != nil:
		log.Fatal().Err(err).Msg("Failed to create admin")
	}

	fmt.Printf("\nSuccess! Admin '%s' (%s) created with ID: %d\n", admin.Username, admin.Email, admin.ID)
}
