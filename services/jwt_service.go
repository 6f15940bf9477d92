package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"

	"github.com/HodeX7/KDJeevraksha/config"
	"github.com/HodeX7/KDJeevraksha/models"
)

// InterfaceJWTService defines the JWT service interface
type InterfaceJWTService interface {
	GenerateToken(userID uint, name string, role models.Role) (string, error)
	ValidateToken(tokenString string) (*jwt.Token, error)
	ExtractClaims(tokenString string) (*JWTClaims, error)
	EnsureUserToken(user *models.User) (string, error)
}

// JWTService issues and validates the bearer tokens used by all protected
// operations.
type JWTService struct {
	DB        *gorm.DB
	secretKey string
	issuer    string
	lifetime  time.Duration
}

// JWTClaims is the identity claim carried by every token
type JWTClaims struct {
	UserID uint        `json:"user_id"`
	Name   string      `json:"name"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

// NewJWTService creates a new JWT service
func NewJWTService(db *gorm.DB, cfg *config.Config) InterfaceJWTService {
	return &JWTService{
		DB:        db,
		secretKey: cfg.JWTSecretKey,
		issuer:    "rescue-case-service",
		// Field staff log in from shared phones; tokens are long-lived and
		// reused across logins until they expire.
		lifetime: 30 * 24 * time.Hour,
	}
}

// GenerateToken generates a signed token for a staff identity
func (s *JWTService) GenerateToken(userID uint, name string, role models.Role) (string, error) {
	now := time.Now()
	claims := &JWTClaims{
		UserID: userID,
		Name:   name,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secretKey))
}

// ValidateToken validates a token string
func (s *JWTService) ValidateToken(tokenString string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secretKey), nil
	})
}

// ExtractClaims extracts the identity claims from a token string
func (s *JWTService) ExtractClaims(tokenString string) (*JWTClaims, error) {
	token, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	jwtClaims := &JWTClaims{}
	if userID, ok := claims["user_id"].(float64); ok {
		jwtClaims.UserID = uint(userID)
	}
	if name, ok := claims["name"].(string); ok {
		jwtClaims.Name = name
	}
	if role, ok := claims["role"].(string); ok {
		jwtClaims.Role = models.Role(role)
	}
	return jwtClaims, nil
}

// EnsureUserToken returns the user's stored access token, minting and
// persisting a fresh one only when the stored token is missing or expired.
func (s *JWTService) EnsureUserToken(user *models.User) (string, error) {
	if user.AccessToken != "" {
		if token, err := s.ValidateToken(user.AccessToken); err == nil && token.Valid {
			return user.AccessToken, nil
		}
	}

	token, err := s.GenerateToken(user.ID, user.Name, user.Role)
	if err != nil {
		return "", err
	}

	user.AccessToken = token
	if err := s.DB.Model(user).Update("access_token", token).Error; err != nil {
		return "", err
	}
	return token, nil
}
