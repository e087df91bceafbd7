package service

import (
	"context"
	"strconv"
	"time"

	"forum/internal/middleware"
	"forum/internal/models"
	"forum/internal/repository"
	"forum/internal/validation"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

// TokenTTL is the lifetime of API tokens.
const TokenTTL = time.Hour

const invalidCredentials = "Invalid email or password"

type AuthService struct {
	users  repository.UserRepository
	secret string
	rdb    *redis.Client
}

// NewAuthService wires the service. rdb may be nil, in which case logout cannot revoke tokens.
func NewAuthService(users repository.UserRepository, secret string, rdb *redis.Client) *AuthService {
	return &AuthService{users: users, secret: secret, rdb: rdb}
}

// Register creates an account with a bcrypt-hashed password.
func (s *AuthService) Register(ctx context.Context, form validation.RegisterForm) (*models.User, error) {
	form.Normalize()
	if fieldErrs := validation.Struct(&form); fieldErrs != nil {
		return nil, models.NewFieldValidationError(fieldErrs)
	}

	existing, err := s.users.GetByEmail(ctx, form.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("Email already registered", nil)
	}
	existing, err = s.users.GetByUsername(ctx, form.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("Username already taken", nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username: form.Username,
		Email:    form.Email,
		Password: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	middleware.Logger.InfoContext(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

// Authenticate checks credentials. Unknown emails and wrong passwords are indistinguishable.
func (s *AuthService) Authenticate(ctx context.Context, form validation.LoginForm) (*models.User, error) {
	form.Normalize()
	if fieldErrs := validation.Struct(&form); fieldErrs != nil {
		return nil, models.NewFieldValidationError(fieldErrs)
	}

	user, err := s.users.GetByEmail(ctx, form.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewUnauthorizedError(invalidCredentials)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(form.Password)); err != nil {
		return nil, models.NewUnauthorizedError(invalidCredentials)
	}
	return user, nil
}

// IssueToken signs an HS256 token for user with a fresh jti.
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(user.ID), 10),
		Issuer:    middleware.TokenIssuer,
		Audience:  jwt.ClaimStrings{middleware.TokenAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		ID:        uuid.NewString(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.secret))
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return signed, nil
}

// RevokeToken blacklists the token's jti until it would have expired anyway.
func (s *AuthService) RevokeToken(ctx context.Context, claims *jwt.RegisteredClaims) error {
	if s.rdb == nil || claims == nil || claims.ID == "" {
		return nil
	}

	ttl := TokenTTL
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if ttl <= 0 {
		return nil
	}

	if err := s.rdb.Set(ctx, middleware.BlacklistKey(claims.ID), "1", ttl).Err(); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
