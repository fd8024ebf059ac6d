package ratelimit

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// skipIfNoRedis skips the test unless BLOODBANK_TEST_REDIS_URL is set.
func skipIfNoRedis(t *testing.T) string {
	t.Helper()
	url := os.Getenv("BLOODBANK_TEST_REDIS_URL")
	if url == "" {
		t.Skip("Skipping Redis tests: BLOODBANK_TEST_REDIS_URL not set")
	}
	return url
}

func TestNewRedisStorage_Validation(t *testing.T) {
	_, err := NewRedisStorage("")
	assert.Error(t, err)

	_, err = NewRedisStorage("not a url")
	assert.Error(t, err)
}

func TestRedisStorage_RoundTrip(t *testing.T) {
	url := skipIfNoRedis(t)
	s, err := NewRedisStorage(url)
	require.NoError(t, err)
	s.prefix = "bloodbank:test:"
	t.Cleanup(func() {
		_ = s.Reset()
		_ = s.Close()
	})

	got, err := s.Get("missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, s.Set("ip:1", []byte("3"), time.Minute))
	got, err = s.Get("ip:1")
	require.NoError(t, err)
	assert.Equal(t, []byte("3"), got)

	require.NoError(t, s.Delete("ip:1"))
	got, err = s.Get("ip:1")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, s.Set("ip:2", []byte("1"), time.Minute))
	require.NoError(t, s.Reset())
	got, err = s.Get("ip:2")
	require.NoError(t, err)
	assert.Nil(t, got)
}
