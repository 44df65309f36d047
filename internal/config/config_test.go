package config_test

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/archway-network/alertrelay/internal/config"
)

func encodeConfig(t *testing.T, dbURL, jwtSecret string, admins []string) string {
	t.Helper()
	payload, err := json.Marshal(map[string]interface{}{
		"db_url":     dbURL,
		"jwt_secret": base64.StdEncoding.EncodeToString([]byte(jwtSecret)),
		"admins":     admins,
	})
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(payload)
}

func TestLoadDecodesBase64JSON(t *testing.T) {
	v := viper.New()
	v.Set("CONFIG", encodeConfig(t, "postgres://localhost/alerts", "s3cr3t", []string{"alice"}))

	cfg, err := config.Load(v)
	require.NoError(t, err)
	require.Equal(t, "postgres://localhost/alerts", cfg.DBURL)
	require.Equal(t, []byte("s3cr3t"), cfg.JWTSecret)
	require.Equal(t, []string{"alice"}, cfg.Admins)
	require.Equal(t, config.DefaultListenAddr, cfg.ListenAddr)
}

func TestLoadDBURLEnvOverridesDecodedField(t *testing.T) {
	v := viper.New()
	v.Set("CONFIG", encodeConfig(t, "postgres://localhost/alerts", "s3cr3t", nil))
	v.Set("DB_URL", "postgres://override/alerts")

	cfg, err := config.Load(v)
	require.NoError(t, err)
	require.Equal(t, "postgres://override/alerts", cfg.DBURL)
}

func TestLoadJWTSecretEnvOverridesDecodedField(t *testing.T) {
	v := viper.New()
	v.Set("CONFIG", encodeConfig(t, "postgres://localhost/alerts", "s3cr3t", nil))
	v.Set("JWT_SECRET", base64.StdEncoding.EncodeToString([]byte("override-secret")))

	cfg, err := config.Load(v)
	require.NoError(t, err)
	require.Equal(t, []byte("override-secret"), cfg.JWTSecret)
}

func TestLoadMissingConfigIsError(t *testing.T) {
	v := viper.New()
	_, err := config.Load(v)
	require.Error(t, err)
}

func TestLoadMissingDBURLIsError(t *testing.T) {
	v := viper.New()
	v.Set("CONFIG", encodeConfig(t, "", "s3cr3t", nil))
	_, err := config.Load(v)
	require.Error(t, err)
}

func TestIsAdminMatchesConfiguredToken(t *testing.T) {
	v := viper.New()
	v.Set("CONFIG", encodeConfig(t, "postgres://localhost/alerts", "s3cr3t", nil))
	v.Set("ADMIN_TOKEN", "topsecret")

	cfg, err := config.Load(v)
	require.NoError(t, err)
	require.True(t, cfg.IsAdmin("topsecret"))
	require.False(t, cfg.IsAdmin("wrong"))
	require.False(t, cfg.IsAdmin(""))
}
