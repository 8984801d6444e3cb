package services

import (
	"errors"
	"time"

	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/RoastedBrotato/TaskManagementSystem/internal/models"
	"github.com/RoastedBrotato/TaskManagementSystem/internal/policy"
	"github.com/RoastedBrotato/TaskManagementSystem/internal/repositories"
)

const tokenIssuer = "task-management-api"

var (
	ErrInvalidToken        = errors.New("invalid token")
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
)

// TokenPair is what a successful login or refresh hands back to the client.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

type AuthService interface {
	// IssueTokens signs an access token asserting {user_id, username, role}
	// and persists a rotating refresh token.
	IssueTokens(user *models.User) (*TokenPair, error)
	// ParseAccessToken verifies the signature and expiry and returns the
	// asserted principal. The token body is trusted only after this.
	ParseAccessToken(token string) (policy.Principal, error)
	Refresh(refreshToken string) (*TokenPair, error)
	Logout(refreshToken string) error
}

type AuthServiceImpl struct {
	users      repositories.UserRepository
	tokens     repositories.RefreshTokenRepository
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewAuthService(users repositories.UserRepository, tokens repositories.RefreshTokenRepository, secret string, accessTTL, refreshTTL time.Duration) *AuthServiceImpl {
	return &AuthServiceImpl{
		users:      users,
		tokens:     tokens,
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (s *AuthServiceImpl) IssueTokens(user *models.User) (*TokenPair, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     string(user.Role),
		"iss":      tokenIssuer,
		"iat":      now.Unix(),
		"exp":      now.Add(s.accessTTL).Unix(),
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, err
	}

	refreshValue, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	stored := models.RefreshToken{
		UserID:    user.ID,
		Token:     refreshValue,
		ExpiresAt: now.Add(s.refreshTTL),
	}
	if err := s.tokens.Add(&stored); err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshValue.String(),
		ExpiresIn:    int64(s.accessTTL.Seconds()),
	}, nil
}

func (s *AuthServiceImpl) ParseAccessToken(tokenStr string) (policy.Principal, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return policy.Principal{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return policy.Principal{}, ErrInvalidToken
	}

	userID, ok := claims["user_id"].(float64)
	if !ok || userID <= 0 {
		return policy.Principal{}, ErrInvalidToken
	}
	roleStr, _ := claims["role"].(string)
	role := models.Role(roleStr)
	if !role.Valid() {
		return policy.Principal{}, ErrInvalidToken
	}

	return policy.Principal{UserID: uint(userID), Role: role}, nil
}

// Refresh exchanges a valid refresh token for a fresh pair. The old token is
// deleted so each refresh token works exactly once.
func (s *AuthServiceImpl) Refresh(refreshToken string) (*TokenPair, error) {
	value, err := uuid.FromString(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	stored, err := s.tokens.GetValid(value, time.Now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}

	user, err := s.users.GetByID(stored.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}

	if err := s.tokens.Delete(value); err != nil {
		return nil, err
	}

	return s.IssueTokens(user)
}

func (s *AuthServiceImpl) Logout(refreshToken string) error {
	value, err := uuid.FromString(refreshToken)
	if err != nil {
		return ErrInvalidRefreshToken
	}
	return s.tokens.Delete(value)
}
