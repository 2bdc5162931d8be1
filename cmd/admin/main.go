package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/Ivan2330/english-platform-deploy/internal/config"
	"github.com/Ivan2330/english-platform-deploy/internal/models"
	"github.com/Ivan2330/english-platform-deploy/internal/storage"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}
	cfg := config.Load()

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	storageSvc := storage.NewStorageService(db, nil) // No redis needed for admin CLI

	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <command> [args]")
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "create-admin":
		if len(os.Args) != 6 {
			fmt.Println("Usage: admin create-admin <email> <username> <phone> <password>")
			os.Exit(1)
		}
		if err := createAdmin(storageSvc, os.Args[2], os.Args[3], os.Args[4], os.Args[5]); err != nil {
			log.Fatalf("Error creating admin: %v", err)
		}
		fmt.Printf("Admin %s has been created.\n", os.Args[2])
	case "deactivate":
		userID, ok := parseUserID()
		if !ok {
			fmt.Println("Usage: admin deactivate <user_id>")
			os.Exit(1)
		}
		if err := setActive(storageSvc, userID, false); err != nil {
			log.Fatalf("Error deactivating user: %v", err)
		}
		fmt.Printf("User %d has been deactivated.\n", userID)
	case "activate":
		userID, ok := parseUserID()
		if !ok {
			fmt.Println("Usage: admin activate <user_id>")
			os.Exit(1)
		}
		if err := setActive(storageSvc, userID, true); err != nil {
			log.Fatalf("Error activating user: %v", err)
		}
		fmt.Printf("User %d has been activated.\n", userID)
	default:
		fmt.Println("Unknown command")
		os.Exit(1)
	}
}

func parseUserID() (uint, bool) {
	if len(os.Args) != 3 {
		return 0, false
	}
	id, err := strconv.ParseUint(os.Args[2], 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

func createAdmin(s storage.Storage, email, username, phone, password string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.CreateUser(&models.User{
		Email:          email,
		Username:       username,
		PhoneNumber:    phone,
		HashedPassword: string(hashed),
		Role:           models.RoleAdmin,
		IsActive:       true,
	})
}

func setActive(s storage.Storage, userID uint, active bool) error {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}
	user.IsActive = active
	return s.UpdateUser(user)
}
