//go:build ignore

package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/robin/questkeeper/internal/auth"
	"github.com/robin/questkeeper/internal/database"
	"github.com/robin/questkeeper/internal/store"
	"github.com/robin/questkeeper/pkg/config"
	"github.com/robin/questkeeper/pkg/util"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLogger(cfg.Server.Env)

	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry())
	authService := auth.NewService(db, jwtService, auth.NewRevocationStore(nil))

	email := os.Getenv("DEMO_EMAIL")
	password := os.Getenv("DEMO_PASSWORD")
	name := os.Getenv("DEMO_NAME")

	if email == "" {
		email = "gm@example.com"
	}
	if password == "" {
		password = "gamemaster1!"
	}
	if name == "" {
		name = "Game Master"
	}

	resp, err := authService.Register(context.Background(), auth.RegisterInput{
		Email:    email,
		Password: password,
		FullName: name,
	})
	if err != nil {
		if err == auth.ErrUserExists {
			fmt.Printf("Demo user already exists: %s\n", email)
			return
		}
		log.Fatalf("failed to create demo user: %v", err)
	}

	campaigns := store.NewCampaigns(db)
	campaign, err := campaigns.Create(context.Background(), resp.User.ID, store.CampaignInput{
		Name:        "The Sunken Citadel",
		RPGSystem:   "D&D 5e",
		Description: "A starter campaign in the ruins beneath the Ashen Hills.",
	})
	if err != nil {
		log.Fatalf("failed to create sample campaign: %v", err)
	}

	fmt.Printf("Demo user created successfully!\n")
	fmt.Printf("Email: %s\n", resp.User.Email)
	fmt.Printf("Campaign: %s\n", campaign.Name)
	fmt.Printf("Token: %s\n", resp.Token)
}
