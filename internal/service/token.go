package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ignatzorin/complaint-voice-backend/internal/models"
)

// AccessToken хранит выпущенный токен ops API.
type AccessToken struct {
	Token     string        `json:"access_token"`
	ExpiresIn time.Duration `json:"expires_in"`
}

// TokenManager отвечает за выпуск и проверку JWT для операторов.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager создаёт менеджер токенов.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Generate выпускает access токен для оператора.
func (m *TokenManager) Generate(op *models.Operator) (*AccessToken, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  op.ID.String(),
		"name": op.Username,
		"iat":  now.Unix(),
		"exp":  now.Add(m.ttl).Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return nil, err
	}

	return &AccessToken{Token: token, ExpiresIn: m.ttl}, nil
}

// ParseAccess извлекает идентификатор и логин оператора из access токена.
func (m *TokenManager) ParseAccess(token string) (uuid.UUID, string, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return uuid.Nil, "", err
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, "", jwt.ErrTokenInvalidClaims
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return uuid.Nil, "", jwt.ErrTokenInvalidClaims
	}

	name, _ := claims["name"].(string)

	operatorID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, "", err
	}

	return operatorID, name, nil
}
