// Package config binds the service settings to environment variables and CLI flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/MJE43/pf-fairness-engine/internal/fairness"
	"github.com/MJE43/pf-fairness-engine/internal/games"
	"github.com/MJE43/pf-fairness-engine/internal/secrets"
)

// ErrNoServerKey is returned when no signing key is configured or stored.
var ErrNoServerKey = errors.New("no server key: set FAIRNESS_SERVER_KEY or run `fairness key set`")

// LoadDotEnv loads .env files into the process environment. Variables that are
// already set win. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Logging configures the logger.
type Logging struct {
	LogLevel  string `name:"log-level" env:"FAIRNESS_LOG_LEVEL" default:"info" enum:"debug,info,warn,error" help:"Log level."`
	LogFormat string `name:"log-format" env:"FAIRNESS_LOG_FORMAT" default:"text" enum:"text,json,logfmt" help:"Log output format."`
}

// Engine configures signing and draw derivation.
type Engine struct {
	ServerKey      string `name:"server-key" env:"FAIRNESS_SERVER_KEY" help:"Signing key. Falls back to the OS keyring."`
	HMACKey        string `name:"hmac-key" env:"FAIRNESS_HMAC_KEY" help:"HMAC key for --signer=hmac. Falls back to the OS keyring."`
	Signer         string `name:"signer" env:"FAIRNESS_SIGNER" default:"legacy" enum:"legacy,hmac" help:"Signature scheme."`
	Derivation     string `name:"derivation" env:"FAIRNESS_DERIVATION" default:"stream" enum:"stream,single" help:"How multi-draw games read the seed."`
	Keys           Keys   `embed:""`
}

// Keys locates stored signing keys.
type Keys struct {
	KeyProfile     string `name:"key-profile" env:"FAIRNESS_KEY_PROFILE" default:"default" help:"Keyring profile holding the keys."`
	KeyringService string `name:"keyring-service" env:"FAIRNESS_KEYRING_SERVICE" default:"pf-fairness-engine" help:"OS keyring service name."`
	SecretsFile    string `name:"secrets-file" env:"FAIRNESS_SECRETS_FILE" help:"File used when no OS keyring is available."`
}

// Storage configures persistence and caching.
type Storage struct {
	SQLitePath  string        `name:"sqlite-path" env:"FAIRNESS_SQLITE_PATH" default:"fairness.db" help:"SQLite database path, used when DATABASE_URL is unset."`
	DatabaseURL string        `name:"database-url" env:"DATABASE_URL" help:"Postgres connection URL."`
	RedisURL    string        `name:"redis-url" env:"REDIS_URL" help:"Redis URL for the token cache."`
	TokenTTL    time.Duration `name:"token-ttl" env:"FAIRNESS_TOKEN_TTL" default:"24h" help:"Lifetime of cached verification tokens."`
}

// Server configures the HTTP listener.
type Server struct {
	Addr            string        `name:"addr" env:"FAIRNESS_ADDR" default:":8080" help:"Listen address."`
	RequestTimeout  time.Duration `name:"request-timeout" env:"FAIRNESS_REQUEST_TIMEOUT" default:"10s" help:"Per-request timeout."`
	ShutdownTimeout time.Duration `name:"shutdown-timeout" env:"FAIRNESS_SHUTDOWN_TIMEOUT" default:"10s" help:"Graceful shutdown deadline."`
}

// KeySource looks up stored keys. *secrets.KeyringStore satisfies it.
type KeySource interface {
	SigningKey(profile string) (string, error)
	HMACKey(profile string) (string, error)
}

// Keyring returns the key store described by the config.
func (c Keys) Keyring() *secrets.KeyringStore {
	return secrets.NewKeyringStore(c.KeyringService, c.SecretsFile)
}

// ResolveKey returns the signing key from the environment or the key source.
func (c Engine) ResolveKey(keys KeySource) (string, error) {
	if c.ServerKey != "" {
		return c.ServerKey, nil
	}
	if keys == nil {
		return "", ErrNoServerKey
	}
	key, err := keys.SigningKey(c.Keys.KeyProfile)
	if errors.Is(err, secrets.ErrNotFound) {
		return "", ErrNoServerKey
	}
	if err != nil {
		return "", fmt.Errorf("read signing key: %w", err)
	}
	return key, nil
}

// NewEngine resolves keys and builds a fairness engine from the config.
func (c Engine) NewEngine(keys KeySource, opts ...fairness.Option) (*fairness.Engine, error) {
	key, err := c.ResolveKey(keys)
	if err != nil {
		return nil, err
	}

	derivation, err := games.ParseDerivation(c.Derivation)
	if err != nil {
		return nil, err
	}
	base := []fairness.Option{fairness.WithDerivation(derivation)}

	switch strings.ToLower(c.Signer) {
	case "", "legacy":
	case "hmac":
		hmacKey := c.HMACKey
		if hmacKey == "" && keys != nil {
			hmacKey, err = keys.HMACKey(c.Keys.KeyProfile)
			if err != nil && !errors.Is(err, secrets.ErrNotFound) {
				return nil, fmt.Errorf("read hmac key: %w", err)
			}
		}
		if hmacKey == "" {
			return nil, fmt.Errorf("%w: hmac signer needs FAIRNESS_HMAC_KEY or a stored hmac key", fairness.ErrInvalidKey)
		}
		base = append(base, fairness.WithSigner(fairness.HMACSigner{Key: []byte(hmacKey)}))
	default:
		return nil, fmt.Errorf("unknown signer %q (want legacy or hmac)", c.Signer)
	}

	return fairness.New(key, append(base, opts...)...)
}
