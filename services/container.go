package services

import (
	"kidala/auth"
	"kidala/repositories"
	"kidala/storage"
)

type Container struct {
	Auth AuthService
	File FileService
}

func NewContainer(repos repositories.Container, blobs *storage.BlobStore, thumbDir string, issuer *auth.TokenIssuer) *Container {
	return &Container{
		Auth: NewAuthService(repos.Users, issuer),
		File: NewFileService(repos.TxManager, repos.Users, repos.Files, repos.Tags, repos.UploadLocks, blobs, thumbDir, issuer),
	}
}
