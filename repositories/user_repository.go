package repositories

import (
	"context"

	"kidala/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) Create(_ context.Context, tx *gorm.DB, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	return useTx(r.db, tx).Create(user).Error
}

func (r *GormUserRepository) GetByID(_ context.Context, tx *gorm.DB, userID string) (models.User, error) {
	var user models.User
	err := useTx(r.db, tx).Where("id = ?", userID).First(&user).Error
	return user, err
}

func (r *GormUserRepository) GetByUsername(_ context.Context, tx *gorm.DB, username string) (models.User, error) {
	var user models.User
	err := useTx(r.db, tx).Where("username = ?", username).First(&user).Error
	return user, err
}

func (r *GormUserRepository) ListAll(_ context.Context, tx *gorm.DB) ([]models.User, error) {
	var users []models.User
	err := useTx(r.db, tx).Order("created_at DESC").Find(&users).Error
	return users, err
}
