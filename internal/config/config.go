// Package config loads the service's runtime configuration from the CONFIG
// env var (spec §6, "Config (recognized options)"), using spf13/viper the
// way the teacher's CLI stack (spf13/cobra + spf13/viper) binds individual
// env vars over a decoded base envelope.
package config

import (
	"encoding/base64"
	"encoding/json"
	"strings"

	"cosmossdk.io/errors"
	"github.com/spf13/viper"
)

const (
	codespace = "config"

	envConfig     = "CONFIG"
	envDBURL      = "DB_URL"
	envJWTSecret  = "JWT_SECRET"
	envAdminToken = "ADMIN_TOKEN"

	// DefaultListenAddr is the service's fixed listen address (spec §6:
	// "Service listens on 0.0.0.0:8123").
	DefaultListenAddr = "0.0.0.0:8123"
)

// ErrInvalidConfig is returned when CONFIG is missing, not valid base64, or
// not valid JSON once decoded.
var ErrInvalidConfig = errors.Register(codespace, 2, "CONFIG env var is missing or malformed")

// envelope is the shape of the base64-decoded CONFIG JSON payload.
type envelope struct {
	DBURL     string   `json:"db_url"`
	JWTSecret string   `json:"jwt_secret"`
	Admins    []string `json:"admins"`
}

// Config is the service's fully resolved runtime configuration.
type Config struct {
	DBURL      string
	JWTSecret  []byte
	Admins     []string
	AdminToken string
	ListenAddr string
}

// Load reads CONFIG (base64 JSON), then lets DB_URL, JWT_SECRET, and
// ADMIN_TOKEN override individual fields, matching spec §6's override rule.
// v is the viper instance to bind env vars against; callers typically pass
// viper.GetViper() or a fresh viper.New() in tests.
func Load(v *viper.Viper) (Config, error) {
	v.AutomaticEnv()
	for _, key := range []string{envConfig, envDBURL, envJWTSecret, envAdminToken} {
		_ = v.BindEnv(key)
	}

	raw := v.GetString(envConfig)
	if raw == "" {
		return Config{}, ErrInvalidConfig.Wrap("CONFIG env var not set")
	}

	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return Config{}, ErrInvalidConfig.Wrapf("base64 decode CONFIG: %s", err)
	}

	var env envelope
	if err := json.Unmarshal(decoded, &env); err != nil {
		return Config{}, ErrInvalidConfig.Wrapf("unmarshal CONFIG json: %s", err)
	}

	cfg := Config{
		DBURL:      env.DBURL,
		Admins:     env.Admins,
		AdminToken: v.GetString(envAdminToken),
		ListenAddr: DefaultListenAddr,
	}

	jwtSecret := env.JWTSecret
	if override := v.GetString(envJWTSecret); override != "" {
		jwtSecret = override
	}
	secretBytes, err := base64.StdEncoding.DecodeString(jwtSecret)
	if err != nil {
		return Config{}, ErrInvalidConfig.Wrapf("base64 decode jwt_secret: %s", err)
	}
	cfg.JWTSecret = secretBytes

	if override := v.GetString(envDBURL); override != "" {
		cfg.DBURL = override
	}

	if cfg.DBURL == "" {
		return Config{}, ErrInvalidConfig.Wrap("db_url is required")
	}

	return cfg, nil
}

// IsAdmin reports whether token matches the configured ADMIN_TOKEN (spec
// §6: "ADMIN_TOKEN env var gates the admin surface").
func (c Config) IsAdmin(token string) bool {
	return c.AdminToken != "" && strings.TrimSpace(token) == c.AdminToken
}
