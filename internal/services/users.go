package services

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pliro-dev/pliro/internal/models"
)

type UserCreate struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type UserUpdate struct {
	Name     *string `json:"name"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Password *string `json:"password" binding:"omitempty,min=8"`
}

func CreateUser(db *gorm.DB, req UserCreate) (models.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if err := checkEmailAvailable(db, email, 0); err != nil {
		return models.User{}, err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)

	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Name:         req.Name,
		Email:        email,
		PasswordHash: string(passwordHash),
	}

	if err := db.Create(&user).Error; err != nil {
		return models.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

func GetUser(db *gorm.DB, id uint) (models.User, error) {
	var user models.User

	if err := db.First(&user, id).Error; err != nil {
		return models.User{}, err
	}

	return user, nil
}

func ListUsers(db *gorm.DB) ([]models.User, error) {
	var users []models.User

	if err := db.Order("id").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return users, nil
}

// UpdateUser writes the provided fields. A provided password is re-hashed;
// a provided email is re-checked for uniqueness against every other user.
func UpdateUser(db *gorm.DB, id uint, req UserUpdate) (models.User, error) {
	var user models.User

	if err := db.First(&user, id).Error; err != nil {
		return models.User{}, err
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}

	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))

		if email != user.Email {
			if err := checkEmailAvailable(db, email, user.ID); err != nil {
				return models.User{}, err
			}
		}

		user.Email = email
	}

	if req.Password != nil {
		passwordHash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)

		if err != nil {
			return models.User{}, fmt.Errorf("failed to hash password: %w", err)
		}

		user.PasswordHash = string(passwordHash)
	}

	if err := db.Save(&user).Error; err != nil {
		return models.User{}, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

func DeleteUser(db *gorm.DB, id uint) error {
	var user models.User

	if err := db.First(&user, id).Error; err != nil {
		return err
	}

	// Owned projects, memberships and invitations go with the user through
	// the declared foreign-key constraints.
	if err := db.Delete(&user).Error; err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	return nil
}

// checkEmailAvailable enforces email uniqueness as a business rule; the
// column deliberately carries no unique index.
func checkEmailAvailable(db *gorm.DB, email string, selfID uint) error {
	var existing models.User

	err := db.Where("email = ? AND id <> ?", email, selfID).First(&existing).Error

	if err == nil {
		return ErrEmailExists
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check email: %w", err)
	}

	return nil
}
