package services

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"socialhub/internal/models"
	"socialhub/internal/store"
	"socialhub/internal/utils"
	"socialhub/wire"
)

var (
	ErrUserExists         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
)

type UserService struct {
	store store.Store
}

func NewUserService(st store.Store) *UserService {
	return &UserService{store: st}
}

func (s *UserService) Register(ctx context.Context, req wire.RegisterRequest) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: string(hash),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) Login(ctx context.Context, req wire.LoginRequest) (*wire.AuthResponse, error) {
	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issueTokens(user)
}

// Refresh validates a refresh token and issues a fresh token pair.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*wire.AuthResponse, error) {
	userID, err := validateToken(refreshToken, "refresh")
	if err != nil {
		return nil, err
	}
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, ErrTokenInvalid
	}
	return s.issueTokens(user)
}

func (s *UserService) GetUser(ctx context.Context, id int) (*models.User, error) {
	return s.store.GetUserByID(ctx, id)
}

func (s *UserService) issueTokens(user *models.User) (*wire.AuthResponse, error) {
	access, err := generateToken(user.ID, "access", accessTokenTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := generateToken(user.ID, "refresh", refreshTokenTTL)
	if err != nil {
		return nil, err
	}
	return &wire.AuthResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         user.Summary(),
	}, nil
}

func jwtSecret() []byte {
	return []byte(utils.GetEnv("JWT_SECRET", "secret"))
}

func generateToken(userID int, typ string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"typ":     typ,
		"exp":     time.Now().Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret())
}

// GenerateAccessToken is exposed for tests that need a token with a chosen TTL.
func GenerateAccessToken(userID int, ttl time.Duration) (string, error) {
	return generateToken(userID, "access", ttl)
}

func validateToken(tokenString, wantTyp string) (int, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return jwtSecret(), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrTokenExpired
		}
		return 0, ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, ErrTokenInvalid
	}
	if typ, _ := claims["typ"].(string); typ != wantTyp {
		return 0, ErrTokenInvalid
	}
	uid, ok := claims["user_id"].(float64)
	if !ok {
		return 0, ErrTokenInvalid
	}
	return int(uid), nil
}

// ValidateAccessToken returns the authenticated user ID. ErrTokenExpired is
// distinguished from ErrTokenInvalid so the HTTP layer can answer 419 and
// trigger the client's refresh-and-replay path.
func ValidateAccessToken(tokenString string) (int, error) {
	return validateToken(tokenString, "access")
}
