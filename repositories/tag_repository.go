package repositories

import (
	"context"

	"kidala/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GormTagRepository struct {
	db *gorm.DB
}

func NewGormTagRepository(db *gorm.DB) *GormTagRepository {
	return &GormTagRepository{db: db}
}

func (r *GormTagRepository) Create(_ context.Context, tx *gorm.DB, tag *models.Tag) error {
	if tag.ID == "" {
		tag.ID = uuid.New().String()
	}
	return useTx(r.db, tx).Create(tag).Error
}

func (r *GormTagRepository) GetByText(_ context.Context, tx *gorm.DB, text string) (models.Tag, error) {
	var tag models.Tag
	err := useTx(r.db, tx).Where("tag = ?", text).First(&tag).Error
	return tag, err
}

func (r *GormTagRepository) ListAll(_ context.Context, tx *gorm.DB) ([]models.Tag, error) {
	var tags []models.Tag
	err := useTx(r.db, tx).Order("tag ASC").Find(&tags).Error
	return tags, err
}
