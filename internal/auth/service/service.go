package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	usermodels "finbank/internal/users/models"
	"finbank/pkg/domain"
	dErrors "finbank/pkg/domain-errors"
)

const issuer = "finbank"

// Claims are the JWT claims carried by an access token. Subject is the
// user ID.
type Claims struct {
	jwt.RegisteredClaims
}

// Users is the identity collaborator. Authentication semantics (uniform
// failure for unknown email and wrong password) live there.
type Users interface {
	Authenticate(ctx context.Context, email, password string) (*usermodels.User, error)
}

// Service issues and validates HS256 access tokens.
type Service struct {
	users      Users
	signingKey []byte
	ttl        time.Duration
	logger     *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func New(users Users, signingKey string, ttl time.Duration, opts ...Option) *Service {
	s := &Service{
		users:      users,
		signingKey: []byte(signingKey),
		ttl:        ttl,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoginResult carries an issued token and its lifetime.
type LoginResult struct {
	Token     string
	UserID    domain.UserID
	ExpiresIn time.Duration
}

// Login verifies credentials and issues an access token.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			ID:        uuid.NewString(),
		},
	})
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign token")
	}

	s.logger.InfoContext(ctx, "user logged in", "user_id", user.ID)
	return &LoginResult{Token: signed, UserID: user.ID, ExpiresIn: s.ttl}, nil
}

// ValidateToken parses and verifies an access token and returns the
// principal it was issued to. Satisfies the transport middleware's
// TokenValidator.
func (s *Service) ValidateToken(tokenString string) (domain.UserID, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.UserID{}, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return domain.UserID{}, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return domain.UserID{}, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}

	userID, err := domain.ParseUserID(claims.Subject)
	if err != nil {
		return domain.UserID{}, dErrors.New(dErrors.CodeUnauthorized, "invalid token subject")
	}
	return userID, nil
}
