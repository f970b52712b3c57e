package services

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/orya-live/padel-engine/config"
	"github.com/orya-live/padel-engine/models"
	"github.com/orya-live/padel-engine/utils"
)

const tokenTTL = 24 * time.Hour

// LoginResult возвращает подписанный токен и роль для клиента панели.
type LoginResult struct {
	Token     string      `json:"token"`
	Role      models.Role `json:"role"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// AuthService authenticates organizer panel accounts configured in the
// environment and issues short-lived HS256 tokens. Player-facing identity
// lives in the surrounding product, not here.
type AuthService interface {
	Login(ctx context.Context, userID, password string) (*LoginResult, error)
}

type authService struct {
	users  map[string]config.PanelUser
	secret []byte
}

func NewAuthService(panelUsers []config.PanelUser, jwtSecret string) AuthService {
	users := make(map[string]config.PanelUser, len(panelUsers))
	for _, u := range panelUsers {
		users[u.ID] = u
	}
	return &authService{users: users, secret: []byte(jwtSecret)}
}

func (s *authService) Login(ctx context.Context, userID, password string) (*LoginResult, error) {
	user, ok := s.users[userID]
	if !ok || !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	expiresAt := now.Add(tokenTTL)
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": string(user.Role),
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &LoginResult{Token: token, Role: user.Role, ExpiresAt: expiresAt}, nil
}
