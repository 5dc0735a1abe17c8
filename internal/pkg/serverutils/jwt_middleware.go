package serverutils

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const workspaceLocal = "workspace_id"

// WorkspaceClaims is the payload of a workspace token.
type WorkspaceClaims struct {
	WorkspaceID string `json:"workspace_id"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies workspace tokens with a shared HMAC secret.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token for workspaceID.
func (t *TokenIssuer) Issue(workspaceID uuid.UUID, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(t.ttl)
	claims := WorkspaceClaims{
		WorkspaceID: workspaceID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   workspaceID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign workspace token: %w", err)
	}
	return signed, expiresAt, nil
}

// Parse verifies tokenStr and returns its workspace id.
func (t *TokenIssuer) Parse(tokenStr string) (uuid.UUID, error) {
	var claims WorkspaceClaims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(tk *jwt.Token) (interface{}, error) {
		if _, ok := tk.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tk.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	if !token.Valid {
		return uuid.Nil, errors.New("invalid token")
	}
	return uuid.Parse(claims.WorkspaceID)
}

// JwtMiddleware rejects requests without a valid workspace token and stores
// the workspace id in the request locals.
func (t *TokenIssuer) JwtMiddleware(ctx *fiber.Ctx) error {
	authHeader := ctx.Get("Authorization")
	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse("Missing token", nil))
	}

	workspaceID, err := t.Parse(authHeader[7:])
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse("Invalid token", nil))
	}

	ctx.Locals(workspaceLocal, workspaceID)
	return ctx.Next()
}

// WorkspaceID returns the workspace set by JwtMiddleware.
func WorkspaceID(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, ok := ctx.Locals(workspaceLocal).(uuid.UUID)
	if !ok {
		return uuid.Nil, fiber.ErrUnauthorized
	}
	return id, nil
}
