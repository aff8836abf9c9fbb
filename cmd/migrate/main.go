package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"ummah-chat/config"
	"ummah-chat/internal/domain/chat"
	"ummah-chat/internal/domain/user"
	"ummah-chat/pkg/database"

	"gorm.io/gorm"
)

const usage = `
Ummah Chat - Database CLI Tool

Usage:
  migrate [command] [flags]

Commands:
  up          Run all migrations (GORM + SQL)
  status      Show database connection status
  seed        Seed the database with development data

Flags:
  -migrations string   Path to migrations directory (default "migrations")
  -users int           Number of test users for seeding (default 5)

Examples:
  go run cmd/migrate/main.go up
  go run cmd/migrate/main.go seed
`

func main() {
	migrationsDir := flag.String("migrations", "migrations", "Path to migrations directory")
	userCount := flag.Int("users", 5, "Number of test users for seeding")

	flag.Usage = func() {
		fmt.Print(usage)
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	command := flag.Arg(0)

	cfg := config.LoadConfig()
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	switch command {
	case "up":
		runMigrationsUp(db, *migrationsDir)
	case "status":
		showStatus(db)
	case "seed":
		runSeed(db, cfg, *userCount)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}

func runMigrationsUp(db *gorm.DB, migrationsDir string) {
	log.Println("Running migrations...")

	if err := db.AutoMigrate(
		&user.User{},
		&chat.Room{},
		&chat.Participant{},
		&chat.Message{},
		&chat.MessageReaction{},
		&chat.MessageRead{},
		&chat.Comment{},
		&chat.Reply{},
	); err != nil {
		log.Fatalf("GORM migration failed: %v", err)
	}

	if err := database.ApplyRawMigrations(db, migrationsDir); err != nil {
		log.Fatalf("Raw migration failed: %v", err)
	}

	log.Println("Migrations completed successfully")
}

func showStatus(db *gorm.DB) {
	log.Println("Checking database status...")

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database handle: %v", err)
	}
	if err := sqlDB.Ping(); err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Database connection: OK")

	tables := []string{"users", "chat_rooms", "room_participants", "messages", "message_reactions", "message_reads", "comments", "replies"}
	for _, table := range tables {
		if !db.Migrator().HasTable(table) {
			log.Printf("Table %-20s does not exist", table)
			continue
		}
		var count int64
		if err := db.Table(table).Count(&count).Error; err != nil {
			log.Printf("Error counting table %s: %v", table, err)
			continue
		}
		log.Printf("Table %-20s exists (%d rows)", table, count)
	}
}

func runSeed(db *gorm.DB, cfg *config.Config, userCount int) {
	seedCfg := database.DefaultSeedConfig()
	seedCfg.RoomName = cfg.RoomName
	seedCfg.TestUserCount = userCount

	if err := database.Seed(db, seedCfg); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
