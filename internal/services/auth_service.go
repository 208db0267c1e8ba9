package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/geminiweb/backend/internal/config"
	"github.com/geminiweb/backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUsernameTaken  = errors.New("username already exists")
	ErrUserNotFound   = errors.New("user not found")
	ErrWrongPassword  = errors.New("wrong password")
	ErrInvalidToken   = errors.New("invalid or expired token")
	ErrMissingFields  = errors.New("username and password are required")
	ErrPasswordLength = errors.New("password must be at least 4 characters")
)

// MinPasswordLength is deliberately low; the original product shipped with a
// 4-character floor and existing accounts depend on it.
const MinPasswordLength = 4

type AuthService struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewAuthService(db *gorm.DB, cfg *config.Config) *AuthService {
	return &AuthService{db: db, cfg: cfg}
}

// Identity is the claim set embedded in every issued token.
type Identity struct {
	UserID   string
	Username string
}

// Register creates a user plus its default settings row in one transaction
// and returns a fresh token. Duplicate usernames are rejected by the unique
// index, so concurrent registrations cannot both commit.
func (s *AuthService) Register(username, password string) (*models.User, string, error) {
	if username == "" || password == "" {
		return nil, "", ErrMissingFields
	}
	if len(password) < MinPasswordLength {
		return nil, "", ErrPasswordLength
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		settings := models.UserSettings{
			UserID:       user.ID,
			DefaultModel: config.DefaultModel,
		}
		return tx.Create(&settings).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, "", ErrUsernameTaken
		}
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.IssueToken(user.ID, user.Username)
	if err != nil {
		return nil, "", err
	}
	return &user, token, nil
}

// Login checks the password against the stored bcrypt hash and returns a
// fresh token. "User not found" and "wrong password" stay distinguishable,
// matching the product's existing behavior.
func (s *AuthService) Login(username, password string) (*models.User, string, error) {
	if username == "" || password == "" {
		return nil, "", ErrMissingFields
	}

	var user models.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrUserNotFound
		}
		return nil, "", fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrWrongPassword
	}

	token, err := s.IssueToken(user.ID, user.Username)
	if err != nil {
		return nil, "", err
	}
	return &user, token, nil
}

// IssueToken signs an HS256 token carrying userId and username, valid for
// the configured lifetime (30 days by default). Tokens are stateless; there
// is no revocation list and no refresh protocol.
func (s *AuthService) IssueToken(userID, username string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"userId":   userID,
		"username": username,
		"iat":      now.Unix(),
		"exp":      now.Add(s.cfg.TokenExpiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken checks signature and expiry and returns the embedded identity.
// Pure computation, no I/O.
func (s *AuthService) VerifyToken(tokenString string) (*Identity, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	userID, _ := claims["userId"].(string)
	username, _ := claims["username"].(string)
	if userID == "" {
		return nil, ErrInvalidToken
	}

	return &Identity{UserID: userID, Username: username}, nil
}
