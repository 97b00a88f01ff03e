package auth

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

var (
	testEmail        = "gym.rat@example.com"
	testPassword     = "testpass-123"
	testPasswordHash = "$2a$14$6Gmhg85si2etd3K9oB8nYu1cxfbrdmhkg6wI6OXsa88IF4L2r/L9i" // testpass
	testUserID       = "user-1"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// INFO: https://github.com/go-redis/redis/issues/1029
		goleak.IgnoreTopFunction(
			"github.com/go-redis/redis/v8/internal/pool.(*ConnPool).reaper",
		),
	)
}

func TestAuthService_Signup_Validation(t *testing.T) {
	db, _ := redismock.NewClientMock()
	defer db.Close()

	service := NewService(time.Hour, db)
	require.NotNil(t, service)

	ctx := context.Background()

	userID, err := service.Signup(ctx, "not-an-email", testPassword)
	assert.ErrorIs(t, err, ErrInvalidEmail)
	assert.Empty(t, userID)

	userID, err = service.Signup(ctx, testEmail, "short")
	assert.ErrorIs(t, err, ErrWeakPassword)
	assert.Empty(t, userID)
}

func TestAuthService_Signup_EmailTaken(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	service := NewService(time.Hour, db)

	mock.ExpectHExists(userIDsByEmail, testEmail).SetVal(true)
	userID, err := service.Signup(context.Background(), testEmail, testPassword)
	assert.ErrorIs(t, err, ErrEmailAlreadyInUse)
	assert.Empty(t, userID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthService_Login(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	service := NewService(time.Hour, db)
	require.NotNil(t, service)
	assert.NotNil(t, service.redisClient)
	assert.Equal(t, time.Hour, service.ttl)

	testToken := "test_token"
	service.RandStringFunc = func(s int) (string, error) {
		return testToken, nil
	}

	ctx := context.Background()

	mock.ExpectHGet(userIDsByEmail, testEmail).SetVal(testUserID)
	mock.ExpectHGet(userKeyPrefix+testUserID, "password_hash").SetVal(testPasswordHash)
	mock.Regexp().ExpectSet(sessionKeyPrefix+testToken, `.*`, 0).SetVal("OK")
	mock.ExpectSAdd(tokensSetKey, testToken).SetVal(1)

	token, userID, err := service.Login(ctx, testEmail, "testpass")
	require.NoError(t, err)
	assert.Equal(t, testToken, token)
	assert.Equal(t, testUserID, userID)

	// wrong password
	mock.ExpectHGet(userIDsByEmail, testEmail).SetVal(testUserID)
	mock.ExpectHGet(userKeyPrefix+testUserID, "password_hash").SetVal(testPasswordHash)
	token, userID, err = service.Login(ctx, testEmail, "invalid_pass")
	assert.ErrorIs(t, err, ErrWrongCredentials)
	assert.Empty(t, token)
	assert.Empty(t, userID)

	// unknown email
	mock.ExpectHGet(userIDsByEmail, "who@example.com").SetErr(redis.Nil)
	token, userID, err = service.Login(ctx, "who@example.com", "testpass")
	assert.ErrorIs(t, err, ErrWrongCredentials)
	assert.Empty(t, token)
	assert.Empty(t, userID)
}

func TestAuthService_Logout(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	service := NewService(time.Hour, db)
	ctx := context.Background()

	testToken := "test_token"
	sessionKey := sessionKeyPrefix + testToken

	mock.ExpectGet(sessionKey).SetVal(`{"userId":"user-1"}`)
	mock.ExpectDel(sessionKey).SetVal(1)
	mock.ExpectSRem(tokensSetKey, testToken).SetVal(1)
	require.NoError(t, service.Logout(ctx, testToken))

	mock.ExpectGet(sessionKey).SetErr(redis.Nil)
	assert.ErrorIs(t, service.Logout(ctx, testToken), ErrSessionNotFound)
}

func TestAuthService_ScanAndClean(t *testing.T) {
	ttl := time.Hour
	now := time.Now()
	then := now.Add(-2 * time.Hour)

	rdb, mock := redismock.NewClientMock()
	defer rdb.Close()

	service := NewService(ttl, rdb)
	require.NotNil(t, service)

	oldSession, err := json.Marshal(LoginSession{UserID: "user-1", CreatedAt: then})
	require.NoError(t, err)
	freshSession, err := json.Marshal(LoginSession{UserID: "user-2", CreatedAt: now})
	require.NoError(t, err)

	t1, t2 := "token1", "token2"
	mock.ExpectSMembers(tokensSetKey).SetVal([]string{t1, t2})
	mock.ExpectGet(sessionKeyPrefix + t1).SetVal(string(oldSession))
	mock.ExpectGet(sessionKeyPrefix + t2).SetVal(string(freshSession))
	// expect deleted only t1, session too old
	mock.ExpectDel(sessionKeyPrefix + t1).SetVal(1)
	mock.ExpectSRem(tokensSetKey, t1).SetVal(1)

	service.ScanAndClean(context.Background())

	assert.NoError(t, mock.ExpectationsWereMet())
}
