package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"kidala/auth"
	"kidala/models"
	"kidala/repositories"

	"gorm.io/gorm"
)

type LoginInput struct {
	Username string
	Password string
}

type LoginOutput struct {
	AccessToken string      `json:"access_token"`
	Info        models.User `json:"info"`
}

type AuthService interface {
	Login(ctx context.Context, in LoginInput) (LoginOutput, error)
	GetUser(ctx context.Context, userID string) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
}

type authService struct {
	users  repositories.UserRepository
	issuer *auth.TokenIssuer
}

func NewAuthService(users repositories.UserRepository, issuer *auth.TokenIssuer) AuthService {
	return &authService{users: users, issuer: issuer}
}

func (s *authService) Login(ctx context.Context, in LoginInput) (LoginOutput, error) {
	user, err := s.users.GetByUsername(ctx, nil, in.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LoginOutput{}, newAppError(http.StatusBadRequest, "user not found", nil)
		}
		return LoginOutput{}, newAppError(http.StatusInternalServerError, "failed to query user", err)
	}

	if !auth.CheckPassword(in.Password, user.Password) {
		return LoginOutput{}, newAppError(http.StatusBadRequest, "incorrect password", nil)
	}

	token, err := s.issuer.IssueAdminToken(user.ID, time.Now().UTC())
	if err != nil {
		return LoginOutput{}, newAppError(http.StatusInternalServerError, "failed to generate token", err)
	}

	return LoginOutput{AccessToken: token, Info: user}, nil
}

func (s *authService) GetUser(ctx context.Context, userID string) (models.User, error) {
	user, err := s.users.GetByID(ctx, nil, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, newAppError(http.StatusNotFound, "user not found", nil)
		}
		return models.User{}, newAppError(http.StatusInternalServerError, "failed to query user", err)
	}
	return user, nil
}

func (s *authService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.users.ListAll(ctx, nil)
	if err != nil {
		return nil, newAppError(http.StatusInternalServerError, "failed to list users", err)
	}
	return users, nil
}
