package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/beerbuddy/beerbuddy/internal/models"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return wrapWriteErr("create user", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return &user, nil
}

// GetByEmail expects an already normalized address.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

// Update writes only the given columns and returns the stored row.
func (r *UserRepository) Update(ctx context.Context, id uint, fields map[string]interface{}) (*models.User, error) {
	if len(fields) > 0 {
		if err := r.db.WithContext(ctx).Model(&models.User{ID: id}).Updates(fields).Error; err != nil {
			return nil, wrapWriteErr("update user", err)
		}
	}
	return r.GetByID(ctx, id)
}

// List returns users by id. A non-positive limit returns everyone.
func (r *UserRepository) List(ctx context.Context, offset, limit int) ([]*models.User, error) {
	var users []*models.User
	db := r.db.WithContext(ctx).Order("id ASC").Offset(offset)
	if limit > 0 {
		db = db.Limit(limit)
	}
	if err := db.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}
