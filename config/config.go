package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/orya-live/padel-engine/models"
)

// PanelUser — учётная запись панели организатора из окружения.
type PanelUser struct {
	ID           string
	Role         models.Role
	PasswordHash string
}

// R2Settings holds the optional object storage block. Empty AccountID means
// snapshot archival is disabled.
type R2Settings struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicBaseURL   string
}

func (s R2Settings) Enabled() bool {
	return s.AccountID != ""
}

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL  string
	JWTSecretKey string
	ServerPort   int
	PanelUsers   []PanelUser
	R2           R2Settings
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	// Загружаем .env файл, если он есть. Ошибку не считаем фатальной.
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	portStr := os.Getenv("SERVER_PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	users, err := parsePanelUsers(os.Getenv("PANEL_USERS"))
	if err != nil {
		return nil, err
	}

	return &Config{
		DatabaseURL:  dbURL,
		JWTSecretKey: jwtKey,
		ServerPort:   port,
		PanelUsers:   users,
		R2: R2Settings{
			AccountID:       os.Getenv("R2_ACCOUNT_ID"),
			AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
			BucketName:      os.Getenv("R2_BUCKET_NAME"),
			PublicBaseURL:   os.Getenv("R2_PUBLIC_BASE_URL"),
		},
	}, nil
}

// parsePanelUsers разбирает PANEL_USERS: записи через ';', каждая в виде
// id:role:bcrypt-hash. Bcrypt-хэши не содержат ':', поэтому разделитель
// безопасен.
func parsePanelUsers(raw string) ([]PanelUser, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var users []PanelUser
	for _, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, ":", 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf("invalid PANEL_USERS entry %q: want id:role:hash", entry)
		}
		role := models.Role(parts[1])
		if !role.Valid() {
			return nil, fmt.Errorf("invalid PANEL_USERS role %q for user %q", parts[1], parts[0])
		}
		users = append(users, PanelUser{
			ID:           parts[0],
			Role:         role,
			PasswordHash: parts[2],
		})
	}
	return users, nil
}
