package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/google/uuid"

	"github.com/ignatzorin/complaint-voice-backend/internal/models"
	"github.com/ignatzorin/complaint-voice-backend/internal/pkg/apperror"
	"github.com/ignatzorin/complaint-voice-backend/internal/repository"
)

// OperatorRepository описывает зависимости AuthService от слоя хранилища.
type OperatorRepository interface {
	Create(ctx context.Context, op *models.Operator) error
	GetByUsername(ctx context.Context, username string) (*models.Operator, error)
	UpdateLastLoginAt(ctx context.Context, id uuid.UUID) error
}

// AuthService инкапсулирует аутентификацию операторов ops API.
type AuthService struct {
	repo         OperatorRepository
	tokenManager *TokenManager
}

// LoginInput содержит данные для входа.
type LoginInput struct {
	Username string
	Password string
}

// AuthResult возвращает итог авторизации.
type AuthResult struct {
	Operator *models.Operator
	Token    *AccessToken
}

// NewAuthService создаёт сервис аутентификации.
func NewAuthService(repo OperatorRepository, tokenManager *TokenManager) *AuthService {
	return &AuthService{
		repo:         repo,
		tokenManager: tokenManager,
	}
}

// Login проверяет учётные данные и выпускает access токен.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	op, err := s.repo.GetByUsername(ctx, in.Username)
	if err != nil {
		if errors.Is(err, repository.ErrOperatorNotFound) {
			// Не раскрываем, существует ли логин.
			return nil, apperror.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("auth service: %w", err)
	}

	if !op.IsActive {
		return nil, apperror.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(in.Password)); err != nil {
		return nil, apperror.ErrInvalidCredentials
	}

	token, err := s.tokenManager.Generate(op)
	if err != nil {
		return nil, fmt.Errorf("auth service: не удалось выпустить токен: %w", err)
	}

	if err := s.repo.UpdateLastLoginAt(ctx, op.ID); err != nil {
		// Не критично для входа, просто фиксация времени не удалась.
		return &AuthResult{Operator: op, Token: token}, nil
	}

	return &AuthResult{Operator: op, Token: token}, nil
}

// HashPassword хэширует пароль оператора (используется утилитой создания учёток).
func HashPassword(password string) (string, error) {
	if len(password) < 8 {
		return "", apperror.New(apperror.ErrCodeValidation, "пароль должен быть не менее 8 символов")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
