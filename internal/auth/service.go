package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/mlukic/fittrack/pkg"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultSessionTTL = 24 * 7 * time.Hour
	minPasswordLen    = 8

	sessionKeyPrefix = "fittrack-session||"
	tokensSetKey     = "fittrack-sessions"
	userKeyPrefix    = "fittrack-user||"
	userIDsByEmail   = "fittrack-user-ids"
)

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type LoginSession struct {
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

type Service struct {
	redisClient *redis.Client
	ttl         time.Duration
	// ability to inject random string generator func for tokens (for unit and dev testing)
	RandStringFunc func(s int) (string, error)
}

func NewService(ttl time.Duration, redisClient *redis.Client) *Service {
	return &Service{
		ttl:            ttl,
		redisClient:    redisClient,
		RandStringFunc: pkg.GenerateRandomString,
	}
}

// Signup creates a new user account and returns its id. Fails with one
// of the taxonomy errors on bad input or an already taken email.
func (s *Service) Signup(ctx context.Context, email, password string) (string, error) {
	if !emailRegex.MatchString(email) {
		return "", ErrInvalidEmail
	}
	if len(password) < minPasswordLen {
		return "", ErrWeakPassword
	}

	exists, err := s.redisClient.HExists(ctx, userIDsByEmail, email).Result()
	if err != nil {
		return "", fmt.Errorf("check email taken: %w", err)
	}
	if exists {
		return "", ErrEmailAlreadyInUse
	}

	passwordHash, err := pkg.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	userID := uuid.NewString()
	userKey := userKeyPrefix + userID
	if err := s.redisClient.HSet(ctx, userKey,
		"id", userID,
		"email", email,
		"password_hash", passwordHash,
		"created_at", time.Now().Unix(),
	).Err(); err != nil {
		return "", fmt.Errorf("store user: %w", err)
	}

	if err := s.redisClient.HSet(ctx, userIDsByEmail, email, userID).Err(); err != nil {
		return "", fmt.Errorf("index user email: %w", err)
	}

	log.Debugf("new user signed up: %s", userID)
	return userID, nil
}

// Login checks the credentials and opens a new session, returning the
// session token and the user id.
func (s *Service) Login(ctx context.Context, email, password string) (token, userID string, err error) {
	userID, err = s.redisClient.HGet(ctx, userIDsByEmail, email).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", "", ErrWrongCredentials
		}
		return "", "", fmt.Errorf("get user id: %w", err)
	}

	passwordHash, err := s.redisClient.HGet(ctx, userKeyPrefix+userID, "password_hash").Result()
	if err != nil {
		return "", "", fmt.Errorf("get password hash: %w", err)
	}
	if !pkg.CheckPasswordHash(password, passwordHash) {
		return "", "", ErrWrongCredentials
	}

	token, err = s.RandStringFunc(35)
	if err != nil {
		return "", "", fmt.Errorf("generate session token: %w", err)
	}

	session := LoginSession{
		UserID:    userID,
		CreatedAt: time.Now(),
	}
	sessionJson, err := json.Marshal(session)
	if err != nil {
		return "", "", fmt.Errorf("marshal session: %w", err)
	}

	if err := s.redisClient.Set(ctx, sessionKeyPrefix+token, sessionJson, 0).Err(); err != nil {
		return "", "", fmt.Errorf("store session: %w", err)
	}

	// add token to the list of sessions, for the periodic cleanup scan
	if err := s.redisClient.SAdd(ctx, tokensSetKey, token).Err(); err != nil {
		return "", "", fmt.Errorf("add session token: %w", err)
	}

	return token, userID, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	sessionKey := sessionKeyPrefix + token
	if err := s.redisClient.Get(ctx, sessionKey).Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("get session: %w", err)
	}

	if err := s.redisClient.Del(ctx, sessionKey).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	// remove token from the list of sessions
	if err := s.redisClient.SRem(ctx, tokensSetKey, token).Err(); err != nil {
		return fmt.Errorf("remove session token: %w", err)
	}

	return nil
}

// ScanAndClean will run through all sessions, check the TTL, and clean them if old
func (s *Service) ScanAndClean(ctx context.Context) {
	sessionTokens, err := s.redisClient.SMembers(ctx, tokensSetKey).Result()
	if err != nil {
		log.Errorf("auth service, scan and clean, get sessions: %s", err)
		return
	}
	if len(sessionTokens) == 0 {
		log.Debugln("auth service, scan and clean abort, no sessions")
		return
	}

	log.Debugf("auth service, scan and clean [%d sessions] start ...", len(sessionTokens))
	var toRemove []string
	for _, token := range sessionTokens {
		sessionJson, err := s.redisClient.Get(ctx, sessionKeyPrefix+token).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				// session value gone, drop the dangling token too
				toRemove = append(toRemove, token)
				continue
			}
			log.Errorf("auth service, scan and clean token %s: %s", token, err)
			continue
		}

		var session LoginSession
		if err := json.Unmarshal([]byte(sessionJson), &session); err != nil {
			log.Errorf("auth service, scan and clean token %s: %s", token, err)
			continue
		}

		if time.Since(session.CreatedAt) > s.ttl {
			toRemove = append(toRemove, token)
		}
	}

	for _, token := range toRemove {
		if err := s.redisClient.Del(ctx, sessionKeyPrefix+token).Err(); err != nil {
			log.Errorf("auth service, clean token %s: %s", token, err)
			continue
		}
		if err := s.redisClient.SRem(ctx, tokensSetKey, token).Err(); err != nil {
			log.Errorf("auth service, clean token %s: %s", token, err)
		}
	}
}
