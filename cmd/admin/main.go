// Operator CLI for the chat backend: seed users, create connection edges,
// mint tokens, and inspect a user's conversations.
package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"linkedup/backend/internal/auth"
	"linkedup/backend/internal/config"
	"linkedup/backend/internal/models"
	"linkedup/backend/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Conversation{}, &models.Message{}); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	store := storage.NewService(db, nil, 0) // no redis needed for the admin CLI

	if len(os.Args) < 2 {
		usage()
	}

	switch os.Args[1] {
	case "seed-user":
		if len(os.Args) < 4 {
			fmt.Println("Usage: admin seed-user <name> <username> [headline]")
			os.Exit(1)
		}
		user := &models.User{Name: os.Args[2], Username: os.Args[3]}
		if len(os.Args) > 4 {
			user.Headline = os.Args[4]
		}
		if err := store.SaveUser(user); err != nil {
			log.Fatalf("error seeding user: %v", err)
		}
		fmt.Printf("User %s created with id %s.\n", user.Username, user.ID)

	case "connect":
		if len(os.Args) != 4 {
			fmt.Println("Usage: admin connect <user_id> <user_id>")
			os.Exit(1)
		}
		if err := store.AddConnection(os.Args[2], os.Args[3]); err != nil {
			log.Fatalf("error creating connection: %v", err)
		}
		fmt.Printf("Users %s and %s are now connected.\n", os.Args[2], os.Args[3])

	case "token":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin token <user_id>")
			os.Exit(1)
		}
		token, err := auth.GenerateToken(os.Args[2], cfg.JWTSecret, 72*time.Hour)
		if err != nil {
			log.Fatalf("error generating token: %v", err)
		}
		fmt.Println(token)

	case "conversations":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin conversations <user_id>")
			os.Exit(1)
		}
		convos, err := store.ListConversationsForUser(os.Args[2])
		if err != nil {
			log.Fatalf("error listing conversations: %v", err)
		}
		for _, convo := range convos {
			fmt.Printf("%s  %s <-> %s  last=%q  updated=%s\n",
				convo.ID, convo.ParticipantLowID, convo.ParticipantHighID,
				convo.LastMessage, convo.UpdatedAt.Format(time.RFC3339))
		}

	default:
		usage()
	}
}

func usage() {
	fmt.Println("Usage: admin <seed-user|connect|token|conversations> [args]")
	os.Exit(1)
}
