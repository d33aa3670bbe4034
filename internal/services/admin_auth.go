package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/yungbote/mentamind-backend/internal/pkg/errors"
	"github.com/yungbote/mentamind-backend/internal/platform/ctxutil"
	"github.com/yungbote/mentamind-backend/internal/platform/logger"
)

const (
	RoleAdmin     = "admin"
	RoleClinician = "clinician"

	apiKeyPrincipal = "api-key"
)

// AdminClaims is the JWT payload for clinician and admin tokens.
type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type AdminAuthConfig struct {
	// APIKey is compared in constant time. APIKeyHash, when set, is a bcrypt
	// hash and takes precedence over APIKey.
	APIKey     string
	APIKeyHash string
	JWTSecret  string
}

type AdminAuthService interface {
	// Authenticate accepts either the admin API key or a signed role token
	// and returns ctx carrying the principal.
	Authenticate(ctx context.Context, token string) (context.Context, error)
	IssueToken(subject, role string, ttl time.Duration) (string, error)
}

type adminAuthService struct {
	log     *logger.Logger
	apiKey  string
	keyHash []byte
	secret  []byte
	now     func() time.Time
}

func NewAdminAuthService(baseLog *logger.Logger, cfg AdminAuthConfig) AdminAuthService {
	s := &adminAuthService{
		log:    baseLog.With("service", "AdminAuthService"),
		apiKey: cfg.APIKey,
		now:    time.Now,
	}
	if h := strings.TrimSpace(cfg.APIKeyHash); h != "" {
		s.keyHash = []byte(h)
	}
	if cfg.JWTSecret != "" {
		s.secret = []byte(cfg.JWTSecret)
	}
	return s
}

func (s *adminAuthService) Authenticate(ctx context.Context, token string) (context.Context, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return ctx, apperrors.ErrUnauthorized
	}
	if s.matchesAPIKey(token) {
		return withPrincipal(ctx, apiKeyPrincipal, RoleAdmin), nil
	}
	if len(s.secret) == 0 {
		return ctx, apperrors.ErrUnauthorized
	}

	claims := &AdminClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		s.log.Debug("admin token rejected", "error", err)
		return ctx, apperrors.ErrUnauthorized
	}
	if claims.Role != RoleAdmin && claims.Role != RoleClinician {
		return ctx, fmt.Errorf("role %q: %w", claims.Role, apperrors.ErrUnauthorized)
	}
	return withPrincipal(ctx, claims.Subject, claims.Role), nil
}

func (s *adminAuthService) matchesAPIKey(token string) bool {
	if len(s.keyHash) > 0 {
		return bcrypt.CompareHashAndPassword(s.keyHash, []byte(token)) == nil
	}
	if s.apiKey == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(s.apiKey), []byte(token)) == 1
}

func (s *adminAuthService) IssueToken(subject, role string, ttl time.Duration) (string, error) {
	if len(s.secret) == 0 {
		return "", errors.New("admin jwt secret not configured")
	}
	if role != RoleAdmin && role != RoleClinician {
		return "", fmt.Errorf("unknown role %q: %w", role, apperrors.ErrInvalidArgument)
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	now := s.now()
	claims := AdminClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func withPrincipal(ctx context.Context, principal, role string) context.Context {
	rd := &ctxutil.RequestData{Principal: principal, Role: role}
	if prev := ctxutil.GetRequestData(ctx); prev != nil {
		rd.AnonymousID = prev.AnonymousID
	}
	return ctxutil.WithRequestData(ctx, rd)
}
