package utils

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWT_RoundTrip(t *testing.T) {
	token, err := GenerateJWT(42, "secret", time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWT(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "42", claims.Subject)
}

func TestJWT_Rejects(t *testing.T) {
	valid, _ := GenerateJWT(1, "secret", time.Hour)
	expired, _ := GenerateJWT(1, "secret", -time.Hour)
	noUser, _ := GenerateJWT(0, "secret", time.Hour)
	noneAlg, _ := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: 1}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := []struct {
		name   string
		token  string
		secret string
	}{
		{"WrongSecret", valid, "other"},
		{"Expired", expired, "secret"},
		{"ZeroUser", noUser, "secret"},
		{"NoneAlgorithm", noneAlg, "secret"},
		{"Garbage", "abc.def.ghi", "secret"},
		{"Empty", "", "secret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseJWT(tt.token, tt.secret)
			assert.Error(t, err)
		})
	}
}

func TestCache_SetGetDelete(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer rdb.Close()
	ctx := context.Background()

	type payload struct {
		Balance string `json:"balance"`
	}
	key := AccountCacheKey(7, 0)
	assert.Equal(t, "account:user:7:v0", key)

	var got payload
	found, err := GetCache(ctx, rdb, key, &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, SetCache(ctx, rdb, key, payload{Balance: "10000.00"}, time.Minute))
	found, err = GetCache(ctx, rdb, key, &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "10000.00", got.Balance)

	require.NoError(t, DeleteCache(ctx, rdb, key))
	found, err = GetCache(ctx, rdb, key, &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, SetCache(ctx, rdb, key, payload{Balance: "1"}, time.Second))
	s.FastForward(2 * time.Second)
	found, err = GetCache(ctx, rdb, key, &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestAccountCache_StaleWriteAfterInvalidate(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer rdb.Close()
	ctx := context.Background()

	type payload struct {
		Balance string `json:"balance"`
	}

	// A reader picks its version before loading the summary.
	before, err := AccountCacheVersion(ctx, rdb, 7)
	require.NoError(t, err)
	assert.Zero(t, before)
	require.NoError(t, SetCache(ctx, rdb, AccountCacheKey(7, before), payload{Balance: "10000.00"}, time.Minute))

	// A trade commits and invalidates while the reader is still working.
	require.NoError(t, InvalidateAccountCache(ctx, rdb, 7))
	assert.False(t, s.Exists(AccountCacheKey(7, before)))

	// The reader's late write lands under the old version.
	require.NoError(t, SetCache(ctx, rdb, AccountCacheKey(7, before), payload{Balance: "10000.00"}, time.Minute))

	after, err := AccountCacheVersion(ctx, rdb, 7)
	require.NoError(t, err)
	assert.Equal(t, before+1, after)

	var got payload
	found, err := GetCache(ctx, rdb, AccountCacheKey(7, after), &got)
	require.NoError(t, err)
	assert.False(t, found)

	other, err := AccountCacheVersion(ctx, rdb, 8)
	require.NoError(t, err)
	assert.Zero(t, other)
}
