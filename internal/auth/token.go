package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenManager предоставляет методы для генерации и валидации JWT токенов.
// Токен несёт аутентифицированного принципала: ядру от сессии нужны
// только id (для атрибуции отзывов) и имя с email (для /auth/me).
type TokenManager interface {
	Generate(userID int64, name, email string) (string, error)
	Validate(tokenString string) (*Claims, error)
}

// Claims определяет структуру данных, хранимых в JWT.
type Claims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// UserID извлекает идентификатор пользователя из subject.
// Валидность subject гарантирует Validate, поэтому здесь без ошибки.
func (c *Claims) UserID() int64 {
	id, _ := strconv.ParseInt(c.Subject, 10, 64)
	return id
}

type jwtManager struct {
	secretKey     []byte
	tokenDuration time.Duration
}

// NewTokenManager создает новый экземпляр jwtManager.
func NewTokenManager(secretKey string, tokenDuration time.Duration) (TokenManager, error) {
	if secretKey == "" {
		return nil, fmt.Errorf("JWT secret key cannot be empty")
	}
	return &jwtManager{
		secretKey:     []byte(secretKey),
		tokenDuration: tokenDuration,
	}, nil
}

// Generate создает новый JWT токен для указанного пользователя.
func (m *jwtManager) Generate(userID int64, name, email string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Name:  name,
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "catalogapp",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// Validate проверяет JWT токен и возвращает извлеченные из него Claims.
func (m *jwtManager) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secretKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if _, err := strconv.ParseInt(claims.Subject, 10, 64); err != nil {
		return nil, fmt.Errorf("invalid subject claim: %w", err)
	}
	return claims, nil
}
