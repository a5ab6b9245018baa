package repositories

import (
	"context"

	"kidala/models"

	"gorm.io/gorm"
)

type TxManager interface {
	WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type UserRepository interface {
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	GetByID(ctx context.Context, tx *gorm.DB, userID string) (models.User, error)
	GetByUsername(ctx context.Context, tx *gorm.DB, username string) (models.User, error)
	ListAll(ctx context.Context, tx *gorm.DB) ([]models.User, error)
}

type FileRepository interface {
	Create(ctx context.Context, tx *gorm.DB, file *models.File) error
	GetByID(ctx context.Context, tx *gorm.DB, fileID string) (models.File, error)
	GetByHash(ctx context.Context, tx *gorm.DB, hash string) (models.File, error)
	ListAll(ctx context.Context, tx *gorm.DB) ([]models.File, error)
	UpdateByID(ctx context.Context, tx *gorm.DB, fileID string, updates map[string]interface{}) error
	DeleteByID(ctx context.Context, tx *gorm.DB, fileID string) error
}

type TagRepository interface {
	Create(ctx context.Context, tx *gorm.DB, tag *models.Tag) error
	GetByText(ctx context.Context, tx *gorm.DB, text string) (models.Tag, error)
	ListAll(ctx context.Context, tx *gorm.DB) ([]models.Tag, error)
}

// UploadLockRepository serializes the window between the dedup check
// and the metadata insert for one content hash. Locking is advisory and
// best-effort.
type UploadLockRepository interface {
	TryLock(ctx context.Context, hash string, expireSeconds int) (bool, error)
	Unlock(ctx context.Context, hash string) error
}

type Container struct {
	TxManager   TxManager
	Users       UserRepository
	Files       FileRepository
	Tags        TagRepository
	UploadLocks UploadLockRepository
}
