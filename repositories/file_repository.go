package repositories

import (
	"context"

	"kidala/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GormFileRepository struct {
	db *gorm.DB
}

func NewGormFileRepository(db *gorm.DB) *GormFileRepository {
	return &GormFileRepository{db: db}
}

func (r *GormFileRepository) Create(_ context.Context, tx *gorm.DB, file *models.File) error {
	if file.ID == "" {
		file.ID = uuid.New().String()
	}
	return useTx(r.db, tx).Create(file).Error
}

func (r *GormFileRepository) GetByID(_ context.Context, tx *gorm.DB, fileID string) (models.File, error) {
	var file models.File
	err := useTx(r.db, tx).Where("id = ?", fileID).First(&file).Error
	return file, err
}

func (r *GormFileRepository) GetByHash(_ context.Context, tx *gorm.DB, hash string) (models.File, error) {
	var file models.File
	err := useTx(r.db, tx).Where("hash = ?", hash).First(&file).Error
	return file, err
}

func (r *GormFileRepository) ListAll(_ context.Context, tx *gorm.DB) ([]models.File, error) {
	var files []models.File
	err := useTx(r.db, tx).Order("created_at DESC").Find(&files).Error
	return files, err
}

func (r *GormFileRepository) UpdateByID(_ context.Context, tx *gorm.DB, fileID string, updates map[string]interface{}) error {
	return useTx(r.db, tx).Model(&models.File{}).Where("id = ?", fileID).Updates(updates).Error
}

func (r *GormFileRepository) DeleteByID(_ context.Context, tx *gorm.DB, fileID string) error {
	return useTx(r.db, tx).Where("id = ?", fileID).Delete(&models.File{}).Error
}
