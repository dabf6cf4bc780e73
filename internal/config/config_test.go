package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "6500", cfg.HTTPPort)
	assert.Equal(t, "storefront", cfg.MongoDBName)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.True(t, cfg.ExposeErrors)
	assert.Empty(t, cfg.RazorpayKeyID)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,,")
	t.Setenv("REQUEST_TIMEOUT", "5s")
	t.Setenv("EXPOSE_ERRORS", "false")
	t.Setenv("RAZORPAY_KEY_ID", "rzp_test_1")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.HTTPPort)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.False(t, cfg.ExposeErrors)
	assert.Equal(t, "rzp_test_1", cfg.RazorpayKeyID)
}

func TestFromEnv_Invalid(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("REQUEST_TIMEOUT", "soon")
	_, err := FromEnv()
	assert.ErrorContains(t, err, "REQUEST_TIMEOUT")
}

func TestFromEnv_RequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := FromEnv()
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestLoad_ReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("JWT_SECRET=from-file\nMONGO_DB_NAME=shop\n"), 0o600))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	t.Setenv("JWT_SECRET", "")
	t.Setenv("MONGO_DB_NAME", "")
	os.Unsetenv("JWT_SECRET")
	os.Unsetenv("MONGO_DB_NAME")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.JWTSecret)
	assert.Equal(t, "shop", cfg.MongoDBName)
}
