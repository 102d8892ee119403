// Bootstrap script to create the first admin account. Registration only
// issues AUTHOR and REVIEWER roles, so the initial admin comes from here.
// cmd/create-admin/main.go
package main

import (
	"conference-management-api/config"
	"conference-management-api/models"
	"conference-management-api/utils"
	"errors"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	email := flag.String("email", "", "admin login email")
	firstName := flag.String("first-name", "Conference", "admin first name")
	lastName := flag.String("last-name", "Admin", "admin last name")
	flag.Parse()

	if *email == "" {
		log.Fatal("usage: create-admin -email admin@example.org [-first-name ...] [-last-name ...]")
	}
	if !utils.ValidateEmail(*email) {
		log.Fatalf("invalid email address: %s", *email)
	}

	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	// Initialize database
	config.InitDB()

	var existing models.User
	err := config.DB.Where("email = ? AND delete_at IS NULL", *email).First(&existing).Error
	if err == nil {
		log.Fatalf("An account for %s already exists (user_id %d, role %s)", *email, existing.UserID, existing.Role)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Fatal("Failed to check for existing account:", err)
	}

	plaintext, err := utils.GenerateTemporaryPassword()
	if err != nil {
		log.Fatal("Failed to generate password:", err)
	}
	hashed, err := utils.HashPassword(plaintext)
	if err != nil {
		log.Fatal("Failed to hash password:", err)
	}

	now := time.Now()
	admin := models.User{
		FirstName: *firstName,
		LastName:  *lastName,
		Email:     *email,
		Password:  hashed,
		Role:      models.RoleAdmin,
		CreateAt:  &now,
	}
	if err := config.DB.Create(&admin).Error; err != nil {
		log.Fatal("Failed to create admin account:", err)
	}

	log.Printf("Created admin account %s (user_id %d)", *email, admin.UserID)
	log.Printf("Temporary password: %s", plaintext)
	log.Println("Change this password after the first login.")
}
