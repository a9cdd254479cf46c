package auth

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"tournament-tracker/internal/config"
	"tournament-tracker/internal/constants"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// Service issues and verifies admin tokens. Admin access guards the record
// store's write routes only; the stats engine itself is unauthenticated.
type Service struct {
	username     string
	passwordHash string
	secret       []byte
	logger       zerolog.Logger
	now          func() time.Time
}

func New(cfg *config.Config, logger zerolog.Logger) *Service {
	return &Service{
		username:     cfg.AdminUsername,
		passwordHash: cfg.AdminPasswordHash,
		secret:       []byte(cfg.JWTSecret),
		logger:       logger,
		now:          time.Now,
	}
}

// VerifyAdmin checks credentials against the configured bcrypt hash.
func (s *Service) VerifyAdmin(username, password string) bool {
	if username != s.username || s.passwordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)) == nil
}

// CreateToken issues a signed admin token.
func (s *Service) CreateToken(username string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(constants.AdminTokenTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// VerifyToken validates a bearer token and returns its subject.
func (s *Service) VerifyToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token claims")
	}
	return claims.Subject, nil
}

// Middleware rejects requests without a valid admin bearer token.
func (s *Service) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if !found || tokenString == "" {
			s.logger.Debug().Str("path", r.URL.Path).Msg("missing admin token")
			writeUnauthorized(w)
			return
		}
		if _, err := s.VerifyToken(tokenString); err != nil {
			s.logger.Debug().Err(err).Str("path", r.URL.Path).Msg("rejected admin token")
			writeUnauthorized(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	fmt.Fprint(w, `{"error":"Invalid or missing token"}`)
}
