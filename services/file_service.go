package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"kidala/auth"
	"kidala/config"
	"kidala/logger"
	"kidala/models"
	"kidala/repositories"
	"kidala/storage"

	"gorm.io/gorm"
)

type UploadInput struct {
	Tag         string
	Description string
	Private     bool
}

type UploadAdInput struct {
	PhoneNumber string
	Email       string
	Description string
}

// UploadOutput is the orchestrator result. Created distinguishes a
// fresh upload (201) from a dedup hit (200, existing record returned
// untouched).
type UploadOutput struct {
	Created     bool
	Hash        string
	URL         string
	File        models.File
	Tag         *models.Tag
	AccessToken string
}

type DownloadOutput struct {
	File    models.File
	AbsPath string
	Mime    string
}

type FileService interface {
	Upload(ctx context.Context, caller Caller, file multipart.File, header *multipart.FileHeader, in UploadInput) (UploadOutput, error)
	UploadAd(ctx context.Context, caller Caller, file multipart.File, header *multipart.FileHeader, in UploadAdInput) (UploadOutput, error)
	MakePrivate(ctx context.Context, caller Caller, fileID string) (bool, error)
	Delete(ctx context.Context, caller Caller, fileID string) error
	ListFiles(ctx context.Context) ([]models.File, error)
	ListTags(ctx context.Context) ([]models.Tag, error)
	ResolveDownload(ctx context.Context, hash string) (models.File, string, error)
	GetBlob(ctx context.Context, hash string) (DownloadOutput, error)
	GetThumbnail(ctx context.Context, hash string) (string, error)
}

type fileService struct {
	txManager TxManager
	users     repositories.UserRepository
	files     repositories.FileRepository
	tags      repositories.TagRepository
	locks     repositories.UploadLockRepository
	blobs     *storage.BlobStore
	thumbDir  string
	issuer    *auth.TokenIssuer
}

func NewFileService(
	txManager TxManager,
	users repositories.UserRepository,
	files repositories.FileRepository,
	tags repositories.TagRepository,
	locks repositories.UploadLockRepository,
	blobs *storage.BlobStore,
	thumbDir string,
	issuer *auth.TokenIssuer,
) FileService {
	return &fileService{
		txManager: txManager,
		users:     users,
		files:     files,
		tags:      tags,
		locks:     locks,
		blobs:     blobs,
		thumbDir:  thumbDir,
		issuer:    issuer,
	}
}

func (s *fileService) publicURL(hash string) string {
	return fmt.Sprintf("https://%s/%s", config.AppConfig.Server.PublicHost, hash)
}

func (s *fileService) thumbPath(hash string) string {
	return filepath.Join(s.thumbDir, hash+".jpg")
}

func (s *fileService) existingOutput(file models.File) UploadOutput {
	return UploadOutput{
		Created: false,
		Hash:    file.Hash,
		URL:     s.publicURL(file.Hash),
		File:    file,
	}
}

// hashUpload digests the content and rewinds the stream for the
// subsequent blob write.
func hashUpload(file multipart.File) (string, error) {
	hash, err := storage.HashReader(file)
	if err != nil {
		return "", err
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return hash, nil
}

func (s *fileService) checkDedup(ctx context.Context, hash string) (models.File, bool, error) {
	existing, err := s.files.GetByHash(ctx, nil, hash)
	if err == nil {
		return existing, true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.File{}, false, nil
	}
	return models.File{}, false, err
}

// acquireHashLock serializes the dedup window for one hash. Locking is
// best-effort: a Redis failure degrades to unlocked best-effort dedup,
// and the unique index on hash keeps the race harmless.
func (s *fileService) acquireHashLock(ctx context.Context, hash string) func() {
	ok, err := s.locks.TryLock(ctx, hash, config.AppConfig.Redis.UploadLockExpire)
	if err != nil {
		logger.Debugf("upload lock unavailable for %s: %v", hash, err)
		return func() {}
	}
	if !ok {
		return func() {}
	}
	return func() {
		if err := s.locks.Unlock(ctx, hash); err != nil {
			logger.Debugf("upload unlock failed for %s: %v", hash, err)
		}
	}
}

func (s *fileService) resolveTag(ctx context.Context, text string) (*models.Tag, error) {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return nil, nil
	}

	tag, err := s.tags.GetByText(ctx, nil, text)
	if err == nil {
		return &tag, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	tag = models.Tag{Tag: text}
	if err := s.tags.Create(ctx, nil, &tag); err != nil {
		// Lost a create race; the tag exists now.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			tag, err = s.tags.GetByText(ctx, nil, text)
			if err == nil {
				return &tag, nil
			}
		}
		return nil, err
	}
	return &tag, nil
}

func (s *fileService) persistBlob(hash, name string, file multipart.File) (int64, error) {
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}
	_, size, err := s.blobs.Save(hash, name, file)
	return size, err
}

func (s *fileService) generateThumb(hash, name string) bool {
	if !IsImageFile(name) {
		return false
	}
	if err := GenerateThumbnail(s.blobs.Path(hash, name), s.thumbPath(hash)); err != nil {
		logger.Debugf("thumbnail generation failed for %s: %v", hash, err)
		return false
	}
	return true
}

// cleanupBlob undoes a blob write after a failed metadata insert.
func (s *fileService) cleanupBlob(hash, name string, hadThumb bool) {
	if err := s.blobs.Delete(hash, name); err != nil {
		logger.Debugf("blob cleanup failed for %s: %v", hash, err)
	}
	if hadThumb {
		_ = os.Remove(s.thumbPath(hash))
	}
}

func (s *fileService) Upload(ctx context.Context, caller Caller, file multipart.File, header *multipart.FileHeader, in UploadInput) (UploadOutput, error) {
	if header.Size > config.AppConfig.Storage.MaxUploadSize {
		return UploadOutput{}, newAppError(http.StatusBadRequest, "file too large", nil)
	}

	hash, err := hashUpload(file)
	if err != nil {
		return UploadOutput{}, newAppError(http.StatusInternalServerError, "failed to hash file", err)
	}

	if existing, hit, err := s.checkDedup(ctx, hash); err != nil {
		return UploadOutput{}, newAppError(http.StatusInternalServerError, "failed to check for existing file", err)
	} else if hit {
		return s.existingOutput(existing), nil
	}

	unlock := s.acquireHashLock(ctx, hash)
	defer unlock()

	// Re-check under the lock: a concurrent identical upload may have
	// completed while we waited for it.
	if existing, hit, err := s.checkDedup(ctx, hash); err != nil {
		return UploadOutput{}, newAppError(http.StatusInternalServerError, "failed to check for existing file", err)
	} else if hit {
		return s.existingOutput(existing), nil
	}

	name := storage.SanitizeFilename(header.Filename)
	size, err := s.persistBlob(hash, name, file)
	if err != nil {
		return UploadOutput{}, newAppError(http.StatusInternalServerError, "failed to store file", err)
	}

	hasThumb := s.generateThumb(hash, name)
	mime := s.blobs.DetectMime(hash, name)

	tag, err := s.resolveTag(ctx, in.Tag)
	if err != nil {
		s.cleanupBlob(hash, name, hasThumb)
		return UploadOutput{}, newAppError(http.StatusInternalServerError, "failed to resolve tag", err)
	}

	authorID := caller.UserID
	accessToken := ""
	record := models.File{
		Name:        name,
		Hash:        hash,
		Size:        size,
		Private:     in.Private,
		Description: in.Description,
		MimeType:    mime,
		HasThumb:    hasThumb,
	}
	if tag != nil {
		record.TagID = &tag.ID
	}

	err = s.txManager.WithTransaction(ctx, func(tx *gorm.DB) error {
		if authorID == "" {
			// First unauthenticated upload: bootstrap an anonymous
			// identity keyed by the caller's observed address and
			// hand a token back with the response.
			anon := models.User{IP: caller.IP}
			if err := s.users.Create(ctx, tx, &anon); err != nil {
				return err
			}
			authorID = anon.ID
			token, err := s.issuer.IssueUserToken(anon.ID)
			if err != nil {
				return err
			}
			accessToken = token
		}
		record.AuthorID = authorID
		return s.files.Create(ctx, tx, &record)
	})
	if err != nil {
		// A concurrent uploader of the same content beat us to the
		// insert; the blob is shared, so leave it and return theirs.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if existing, hit, derr := s.checkDedup(ctx, hash); derr == nil && hit {
				return s.existingOutput(existing), nil
			}
		}
		s.cleanupBlob(hash, name, hasThumb)
		return UploadOutput{}, newAppError(http.StatusInternalServerError, "failed to save file record", err)
	}

	return UploadOutput{
		Created:     true,
		Hash:        hash,
		URL:         s.publicURL(hash),
		File:        record,
		Tag:         tag,
		AccessToken: accessToken,
	}, nil
}

func (s *fileService) UploadAd(ctx context.Context, caller Caller, file multipart.File, header *multipart.FileHeader, in UploadAdInput) (UploadOutput, error) {
	if header.Size > config.AppConfig.Storage.MaxUploadSize {
		return UploadOutput{}, newAppError(http.StatusBadRequest, "file too large", nil)
	}
	if strings.TrimSpace(in.PhoneNumber) == "" || strings.TrimSpace(in.Email) == "" {
		return UploadOutput{}, newAppError(http.StatusBadRequest, "phoneNumber and email are required", nil)
	}

	hash, err := hashUpload(file)
	if err != nil {
		return UploadOutput{}, newAppError(http.StatusInternalServerError, "failed to hash file", err)
	}

	if existing, hit, err := s.checkDedup(ctx, hash); err != nil {
		return UploadOutput{}, newAppError(http.StatusInternalServerError, "failed to check for existing file", err)
	} else if hit {
		return s.existingOutput(existing), nil
	}

	unlock := s.acquireHashLock(ctx, hash)
	defer unlock()

	if existing, hit, err := s.checkDedup(ctx, hash); err != nil {
		return UploadOutput{}, newAppError(http.StatusInternalServerError, "failed to check for existing file", err)
	} else if hit {
		return s.existingOutput(existing), nil
	}

	name := storage.SanitizeFilename(header.Filename)
	size, err := s.persistBlob(hash, name, file)
	if err != nil {
		return UploadOutput{}, newAppError(http.StatusInternalServerError, "failed to store file", err)
	}

	hasThumb := s.generateThumb(hash, name)
	mime := s.blobs.DetectMime(hash, name)

	// Ads are always public and authored by the already-authenticated
	// admin; no identity bootstrapping here.
	record := models.File{
		Name:        name,
		Hash:        hash,
		Size:        size,
		AuthorID:    caller.UserID,
		Private:     false,
		Description: in.Description,
		IsAd:        true,
		PhoneNumber: in.PhoneNumber,
		Email:       in.Email,
		MimeType:    mime,
		HasThumb:    hasThumb,
	}

	err = s.txManager.WithTransaction(ctx, func(tx *gorm.DB) error {
		return s.files.Create(ctx, tx, &record)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if existing, hit, derr := s.checkDedup(ctx, hash); derr == nil && hit {
				return s.existingOutput(existing), nil
			}
		}
		s.cleanupBlob(hash, name, hasThumb)
		return UploadOutput{}, newAppError(http.StatusInternalServerError, "failed to save file record", err)
	}

	return UploadOutput{
		Created: true,
		Hash:    hash,
		URL:     s.publicURL(hash),
		File:    record,
	}, nil
}

// MakePrivate toggles the record's visibility and reports the new
// state.
func (s *fileService) MakePrivate(ctx context.Context, caller Caller, fileID string) (bool, error) {
	if caller.Anonymous() {
		return false, newAppError(http.StatusBadRequest, "Invalid authorization", nil)
	}

	file, err := s.files.GetByID(ctx, nil, fileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, newAppError(http.StatusNotFound, "file not found", nil)
		}
		return false, newAppError(http.StatusInternalServerError, "failed to query file", err)
	}

	allowed, err := canMutate(ctx, s.users, caller, file)
	if err != nil {
		return false, newAppError(http.StatusInternalServerError, "failed to check authorization", err)
	}
	if !allowed {
		return false, newAppError(http.StatusForbidden, "Invalid authorization", nil)
	}

	newPrivate := !file.Private
	if err := s.files.UpdateByID(ctx, nil, fileID, map[string]interface{}{"private": newPrivate}); err != nil {
		return false, newAppError(http.StatusInternalServerError, "failed to update file", err)
	}
	return newPrivate, nil
}

// Delete removes the record and the blob. Only admin-domain callers
// reach this path; ownership alone does not grant delete.
func (s *fileService) Delete(ctx context.Context, caller Caller, fileID string) error {
	if !caller.AdminDomain() {
		return newAppError(http.StatusUnauthorized, "authorization required", nil)
	}

	file, err := s.files.GetByID(ctx, nil, fileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newAppError(http.StatusNotFound, "file not found", nil)
		}
		return newAppError(http.StatusInternalServerError, "failed to query file", err)
	}

	err = s.txManager.WithTransaction(ctx, func(tx *gorm.DB) error {
		return s.files.DeleteByID(ctx, tx, file.ID)
	})
	if err != nil {
		return newAppError(http.StatusInternalServerError, "failed to delete file record", err)
	}

	// The unique hash index guarantees no other record references this
	// blob, so removal is safe.
	if err := s.blobs.Delete(file.Hash, file.Name); err != nil {
		logger.Debugf("blob removal failed for %s: %v", file.Hash, err)
	}
	if file.HasThumb {
		_ = os.Remove(s.thumbPath(file.Hash))
	}
	return nil
}

func (s *fileService) ListFiles(ctx context.Context) ([]models.File, error) {
	files, err := s.files.ListAll(ctx, nil)
	if err != nil {
		return nil, newAppError(http.StatusInternalServerError, "failed to list files", err)
	}
	return files, nil
}

func (s *fileService) ListTags(ctx context.Context) ([]models.Tag, error) {
	tags, err := s.tags.ListAll(ctx, nil)
	if err != nil {
		return nil, newAppError(http.StatusInternalServerError, "failed to list tags", err)
	}
	return tags, nil
}

// ResolveDownload maps a content hash to its record and the public
// location of the stored bytes. The catalog is the source of truth; the
// blob's presence is not re-verified here.
func (s *fileService) ResolveDownload(ctx context.Context, hash string) (models.File, string, error) {
	file, err := s.files.GetByHash(ctx, nil, hash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.File{}, "", newAppError(http.StatusNotFound, "file not found", nil)
		}
		return models.File{}, "", newAppError(http.StatusInternalServerError, "failed to query file", err)
	}
	location := fmt.Sprintf("https://%s/files/%s/%s", config.AppConfig.Server.PublicHost, file.Hash, file.Name)
	return file, location, nil
}

func (s *fileService) GetBlob(ctx context.Context, hash string) (DownloadOutput, error) {
	file, err := s.files.GetByHash(ctx, nil, hash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return DownloadOutput{}, newAppError(http.StatusNotFound, "file not found", nil)
		}
		return DownloadOutput{}, newAppError(http.StatusInternalServerError, "failed to query file", err)
	}

	absPath := s.blobs.Path(file.Hash, file.Name)
	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return DownloadOutput{}, newAppError(http.StatusNotFound, "file not found in storage", nil)
	}

	mime := file.MimeType
	if mime == "" {
		mime = s.blobs.DetectMime(file.Hash, file.Name)
	}
	return DownloadOutput{File: file, AbsPath: absPath, Mime: mime}, nil
}

func (s *fileService) GetThumbnail(ctx context.Context, hash string) (string, error) {
	file, err := s.files.GetByHash(ctx, nil, hash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", newAppError(http.StatusNotFound, "file not found", nil)
		}
		return "", newAppError(http.StatusInternalServerError, "failed to query file", err)
	}
	if !file.HasThumb {
		return "", newAppError(http.StatusNotFound, "thumbnail not found", nil)
	}
	path := s.thumbPath(file.Hash)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "", newAppError(http.StatusNotFound, "thumbnail not found", nil)
	}
	return path, nil
}
