package database

import (
	"fmt"
	"log"

	"ummah-chat/internal/domain/chat"
	"ummah-chat/internal/domain/user"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedConfig holds configuration for seeding the database
type SeedConfig struct {
	RoomName       string
	TestUserCount  int
	WelcomeMessage string
}

// DefaultSeedConfig returns default seed configuration
func DefaultSeedConfig() *SeedConfig {
	return &SeedConfig{
		RoomName:       "community",
		TestUserCount:  5,
		WelcomeMessage: "Welcome to the community chat!",
	}
}

// Seed populates the database with development data: a set of test
// users, the active room, and a welcome message. Idempotent.
func Seed(db *gorm.DB, cfg *SeedConfig) error {
	if cfg == nil {
		cfg = DefaultSeedConfig()
	}

	log.Println("Starting database seeding...")

	users, err := seedTestUsers(db, cfg.TestUserCount)
	if err != nil {
		return fmt.Errorf("failed to seed test users: %w", err)
	}

	room, err := seedActiveRoom(db, cfg.RoomName)
	if err != nil {
		return fmt.Errorf("failed to seed active room: %w", err)
	}

	if len(users) > 0 && cfg.WelcomeMessage != "" {
		if err := seedWelcomeMessage(db, room, users[0], cfg.WelcomeMessage); err != nil {
			return fmt.Errorf("failed to seed welcome message: %w", err)
		}
	}

	log.Println("Database seeding completed successfully!")
	return nil
}

func seedTestUsers(db *gorm.DB, count int) ([]user.User, error) {
	testUserData := []struct {
		name    string
		picture string
	}{
		{"Amina Yusuf", "https://cdn.example.com/avatars/amina.png"},
		{"Bilal Khan", "https://cdn.example.com/avatars/bilal.png"},
		{"Fatima Noor", "https://cdn.example.com/avatars/fatima.png"},
		{"Omar Farouk", ""},
		{"Zainab Ali", "https://cdn.example.com/avatars/zainab.png"},
		{"Yusuf Ahmed", ""},
		{"Maryam Said", "https://cdn.example.com/avatars/maryam.png"},
		{"Hamza Ibrahim", ""},
	}

	users := make([]user.User, 0, count)
	for i := 0; i < count && i < len(testUserData); i++ {
		data := testUserData[i]

		var existing user.User
		err := db.Where("name = ?", data.name).First(&existing).Error
		if err == nil {
			users = append(users, existing)
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return nil, err
		}

		u := user.User{
			ID:      uuid.New(),
			Name:    data.name,
			Picture: data.picture,
		}
		if err := db.Create(&u).Error; err != nil {
			return nil, fmt.Errorf("failed to create test user %s: %w", data.name, err)
		}
		users = append(users, u)
		log.Printf("Test user seeded: %s", data.name)
	}

	return users, nil
}

func seedActiveRoom(db *gorm.DB, name string) (chat.Room, error) {
	room := chat.Room{
		ID:       uuid.New(),
		Name:     name,
		IsActive: true,
	}
	// The partial unique index makes this a no-op when an active room
	// already exists.
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&room).Error; err != nil {
		return chat.Room{}, err
	}

	var active chat.Room
	if err := db.Where("is_active = ?", true).First(&active).Error; err != nil {
		return chat.Room{}, err
	}
	log.Printf("Active room: %s (%s)", active.Name, active.ID)
	return active, nil
}

func seedWelcomeMessage(db *gorm.DB, room chat.Room, sender user.User, content string) error {
	var count int64
	if err := db.Model(&chat.Message{}).Where("room_id = ?", room.ID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	msg := chat.Message{
		ID:            uuid.New(),
		RoomID:        room.ID,
		SenderID:      sender.ID,
		SenderName:    sender.Name,
		SenderPicture: sender.Picture,
		Content:       content,
	}
	if err := db.Create(&msg).Error; err != nil {
		return err
	}

	read := chat.MessageRead{MessageID: msg.ID, UserID: sender.ID}
	if err := db.Create(&read).Error; err != nil {
		return err
	}

	log.Printf("Welcome message seeded in room %s", room.Name)
	return nil
}
