package middleware

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v4"

	"github.com/orya-live/padel-engine/models"
)

// GetUserIDFromContext достаёт идентификатор пользователя из JWT claims.
func GetUserIDFromContext(ctx context.Context) (string, error) {
	claims, ok := ctx.Value(userContextKey).(jwt.MapClaims)
	if !ok {
		return "", errors.New("user claims not found in context or invalid type")
	}

	sub, ok := claims["sub"]
	if !ok {
		return "", errors.New("missing 'sub' claim in token")
	}
	id, ok := sub.(string)
	if !ok || id == "" {
		return "", fmt.Errorf("invalid type for 'sub' claim: expected non-empty string, got %T", sub)
	}
	return id, nil
}

// GetUserRoleFromContext достаёт роль из JWT claims.
func GetUserRoleFromContext(ctx context.Context) (models.Role, error) {
	claims, ok := ctx.Value(userContextKey).(jwt.MapClaims)
	if !ok {
		return "", errors.New("user claims not found in context or invalid type")
	}

	roleClaim, ok := claims["role"]
	if !ok {
		return "", errors.New("missing 'role' claim in token")
	}
	roleStr, ok := roleClaim.(string)
	if !ok {
		return "", fmt.Errorf("invalid type for 'role' claim: expected string, got %T", roleClaim)
	}

	role := models.Role(roleStr)
	if !role.Valid() {
		return "", fmt.Errorf("invalid role value in claim: %q", roleStr)
	}
	return role, nil
}
